package requirement

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Bedrooms is either a bedroom count or a studio.
type Bedrooms struct {
	count  int
	studio bool
}

// BedroomCount returns a Bedrooms value for n bedrooms.
func BedroomCount(n int) Bedrooms {
	return Bedrooms{count: n}
}

// Studio returns the studio Bedrooms value.
func Studio() Bedrooms {
	return Bedrooms{studio: true}
}

// ParseBedrooms accepts "studio" (any case) or a non-negative integer.
func ParseBedrooms(s string) (Bedrooms, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "studio") {
		return Studio(), true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Bedrooms{}, false
	}
	return BedroomCount(n), true
}

func (b Bedrooms) IsStudio() bool { return b.studio }
func (b Bedrooms) Count() int     { return b.count }

func (b Bedrooms) String() string {
	if b.studio {
		return "studio"
	}
	return strconv.Itoa(b.count)
}

// Label renders bedrooms the way the requirement panel shows them.
func (b Bedrooms) Label() string {
	if b.studio {
		return "Studio"
	}
	return fmt.Sprintf("%d BHK", b.count)
}

// MarshalJSON encodes a studio as "studio" and a count as a number.
func (b Bedrooms) MarshalJSON() ([]byte, error) {
	if b.studio {
		return []byte(`"studio"`), nil
	}
	return []byte(strconv.Itoa(b.count)), nil
}

// UnmarshalJSON accepts a number, a numeric string or "studio".
func (b *Bedrooms) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*b = BedroomCount(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("bedrooms must be a number or \"studio\": %w", err)
	}
	parsed, ok := ParseBedrooms(s)
	if !ok {
		return fmt.Errorf("invalid bedrooms value %q", s)
	}
	*b = parsed
	return nil
}

// Profile is the structured requirement map built up over a conversation.
// Zero values mean "unknown".
type Profile struct {
	City       string       `json:"city,omitempty"`
	Currency   Currency     `json:"currency,omitempty"`
	BudgetUnit BudgetUnit   `json:"budgetUnit,omitempty"`
	Budget     float64      `json:"budget,omitempty"`
	Bedrooms   *Bedrooms    `json:"bedrooms,omitempty"`
	Purpose    Purpose      `json:"purpose,omitempty"`
	Status     Status       `json:"status,omitempty"`
	Type       PropertyType `json:"type,omitempty"`
}

// Clone returns an independent copy of the profile.
func (p Profile) Clone() Profile {
	out := p
	if p.Bedrooms != nil {
		b := *p.Bedrooms
		out.Bedrooms = &b
	}
	return out
}

// SetCity sets the city together with its currency and budget unit.
func (p *Profile) SetCity(c City) {
	p.City = c.Name
	p.Currency = c.Currency
	p.BudgetUnit = c.BudgetUnit
}

// Normalize re-derives currency and budget unit from the city table. A profile without
// a city has neither; an unsupported city is left untouched.
func (p *Profile) Normalize() {
	if p.City == "" {
		p.Currency = ""
		p.BudgetUnit = ""
		return
	}
	if c, ok := LookupCity(p.City); ok {
		p.SetCity(c)
	}
}

// SetBedrooms stores a copy of b.
func (p *Profile) SetBedrooms(b Bedrooms) {
	p.Bedrooms = &b
}

// Has reports whether the field is known.
func (p Profile) Has(f Field) bool {
	switch f {
	case FieldCity:
		return p.City != ""
	case FieldCurrency:
		return p.Currency != ""
	case FieldBudgetUnit:
		return p.BudgetUnit != ""
	case FieldBudget:
		return p.Budget != 0
	case FieldBedrooms:
		return p.Bedrooms != nil
	case FieldPurpose:
		return p.Purpose != ""
	case FieldStatus:
		return p.Status != ""
	case FieldType:
		return p.Type != ""
	default:
		return false
	}
}

// Clear forgets a field. Clearing the city also clears currency and budget unit.
func (p *Profile) Clear(f Field) {
	switch f {
	case FieldCity, FieldCurrency, FieldBudgetUnit:
		p.City = ""
		p.Currency = ""
		p.BudgetUnit = ""
	case FieldBudget:
		p.Budget = 0
	case FieldBedrooms:
		p.Bedrooms = nil
	case FieldPurpose:
		p.Purpose = ""
	case FieldStatus:
		p.Status = ""
	case FieldType:
		p.Type = ""
	}
}

// allFields is the canonical field order.
var allFields = []Field{
	FieldCity, FieldCurrency, FieldBudgetUnit, FieldBudget,
	FieldBedrooms, FieldPurpose, FieldStatus, FieldType,
}

// Fields returns the known fields in canonical order.
func (p Profile) Fields() []Field {
	var out []Field
	for _, f := range allFields {
		if p.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// IsEmpty reports whether no field is known.
func (p Profile) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// MissingFields returns the required fields that are unknown, in prompt order.
func (p Profile) MissingFields() []Field {
	missing := make([]Field, 0, len(RequiredFields))
	for _, f := range RequiredFields {
		if !p.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}
