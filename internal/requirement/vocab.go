// Package requirement defines the requirement profile accumulated over a conversation
// and the static vocabulary (cities, property types, purposes, statuses) used to fill it.
package requirement

import "strings"

// Field names a requirement profile entry.
type Field string

const (
	FieldCity       Field = "city"
	FieldCurrency   Field = "currency"
	FieldBudgetUnit Field = "budgetUnit"
	FieldBudget     Field = "budget"
	FieldBedrooms   Field = "bedrooms"
	FieldPurpose    Field = "purpose"
	FieldStatus     Field = "status"
	FieldType       Field = "type"
)

// RequiredFields are the fields gathered before recommendations, in prompt order.
var RequiredFields = []Field{FieldCity, FieldPurpose, FieldBudget}

// Currency is the currency a city's listings are priced in.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyAED Currency = "AED"
)

// BudgetUnit is the unit users quote budgets in for a given city.
type BudgetUnit string

const (
	UnitLakh    BudgetUnit = "Lakh"
	UnitCrore   BudgetUnit = "Crore"
	UnitMillion BudgetUnit = "Million"
)

// Multiplier converts an amount in this unit to absolute currency units.
func (u BudgetUnit) Multiplier() float64 {
	switch u {
	case UnitLakh:
		return 1e5
	case UnitCrore:
		return 1e7
	case UnitMillion:
		return 1e6
	default:
		return 1
	}
}

// Aliases returns the spellings accepted after a number for this unit.
func (u BudgetUnit) Aliases() []string {
	switch u {
	case UnitLakh:
		return []string{"lakhs", "lakh", "lacs", "lac"}
	case UnitCrore:
		return []string{"crores", "crore", "cr"}
	case UnitMillion:
		return []string{"millions", "million", "mn"}
	default:
		return nil
	}
}

// Purpose is why the user is buying.
type Purpose string

const (
	PurposePersonal   Purpose = "Personal Use"
	PurposeInvestment Purpose = "Investment"
	PurposeCommercial Purpose = "Commercial"
)

// Status is the construction status of a property.
type Status string

const (
	StatusReady             Status = "Ready to Move"
	StatusUnderConstruction Status = "Under Construction"
)

// PropertyType is the normalized kind of property.
type PropertyType string

const (
	TypeApartment  PropertyType = "apartment"
	TypeVilla      PropertyType = "villa"
	TypePlot       PropertyType = "plot"
	TypePenthouse  PropertyType = "penthouse"
	TypeStudio     PropertyType = "studio"
	TypeCommercial PropertyType = "commercial"
)

// Label returns the display name for the property type.
func (t PropertyType) Label() string {
	switch t {
	case TypeApartment:
		return "Apartment"
	case TypeVilla:
		return "Villa"
	case TypePlot:
		return "Plot"
	case TypePenthouse:
		return "Penthouse"
	case TypeStudio:
		return "Studio Apartment"
	case TypeCommercial:
		return "Commercial"
	default:
		return string(t)
	}
}

// Plural names the property type in running text, e.g. "These villas".
func (t PropertyType) Plural() string {
	switch t {
	case TypeApartment:
		return "apartments"
	case TypeVilla:
		return "villas"
	case TypePlot:
		return "plots"
	case TypePenthouse:
		return "penthouses"
	case TypeStudio:
		return "studio apartments"
	default:
		return "properties"
	}
}

// City is a supported-city table entry. Key is the lowercase spelling matched in text.
type City struct {
	Key        string
	Name       string
	Currency   Currency
	BudgetUnit BudgetUnit
}

// Cities is the supported-city table. Several keys may resolve to the same Name.
var Cities = []City{
	{Key: "gurgaon", Name: "Gurgaon", Currency: CurrencyINR, BudgetUnit: UnitLakh},
	{Key: "gurugram", Name: "Gurgaon", Currency: CurrencyINR, BudgetUnit: UnitLakh},
	{Key: "delhi", Name: "Delhi", Currency: CurrencyINR, BudgetUnit: UnitLakh},
	{Key: "mumbai", Name: "Mumbai", Currency: CurrencyINR, BudgetUnit: UnitCrore},
	{Key: "bombay", Name: "Mumbai", Currency: CurrencyINR, BudgetUnit: UnitCrore},
	{Key: "bangalore", Name: "Bangalore", Currency: CurrencyINR, BudgetUnit: UnitLakh},
	{Key: "bengaluru", Name: "Bangalore", Currency: CurrencyINR, BudgetUnit: UnitLakh},
	{Key: "hyderabad", Name: "Hyderabad", Currency: CurrencyINR, BudgetUnit: UnitLakh},
	{Key: "dubai", Name: "Dubai", Currency: CurrencyAED, BudgetUnit: UnitMillion},
	{Key: "abudhabi", Name: "Abu Dhabi", Currency: CurrencyAED, BudgetUnit: UnitMillion},
	{Key: "abu dhabi", Name: "Abu Dhabi", Currency: CurrencyAED, BudgetUnit: UnitMillion},
	{Key: "sharjah", Name: "Sharjah", Currency: CurrencyAED, BudgetUnit: UnitMillion},
}

// MatchCity finds the first supported city whose key occurs in text.
func MatchCity(text string) (City, bool) {
	lower := strings.ToLower(text)
	for _, c := range Cities {
		if strings.Contains(lower, c.Key) {
			return c, true
		}
	}
	return City{}, false
}

// LookupCity resolves a display name back to its table entry.
func LookupCity(name string) (City, bool) {
	for _, c := range Cities {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return City{}, false
}

// TypeSynonyms maps a property type to the words that imply it.
type TypeSynonyms struct {
	Type     PropertyType
	Synonyms []string
}

// PropertyTypes is checked in order; the first type with a matching synonym wins.
// Studio and penthouse come first since "studio apartment" and "penthouse" contain
// synonyms of later types.
var PropertyTypes = []TypeSynonyms{
	{Type: TypeStudio, Synonyms: []string{"studio"}},
	{Type: TypePenthouse, Synonyms: []string{"penthouse", "duplex"}},
	{Type: TypeApartment, Synonyms: []string{"flat", "apartment", "condo"}},
	{Type: TypeVilla, Synonyms: []string{"villa", "house", "bungalow"}},
	{Type: TypePlot, Synonyms: []string{"plot", "land"}},
	{Type: TypeCommercial, Synonyms: []string{"office", "shop", "showroom", "retail space"}},
}

// MatchPropertyType finds the first property type with a synonym occurring in text.
func MatchPropertyType(text string) (PropertyType, bool) {
	lower := strings.ToLower(text)
	for _, entry := range PropertyTypes {
		for _, syn := range entry.Synonyms {
			if strings.Contains(lower, syn) {
				return entry.Type, true
			}
		}
	}
	return "", false
}

type purposeKeywords struct {
	purpose  Purpose
	keywords []string
}

var purposeTable = []purposeKeywords{
	{purpose: PurposePersonal, keywords: []string{"personal", "live", "own use"}},
	{purpose: PurposeInvestment, keywords: []string{"invest", "rental", "return"}},
	{purpose: PurposeCommercial, keywords: []string{"commercial", "office", "business"}},
}

// MatchPurpose finds the first purpose group with a keyword occurring in text.
func MatchPurpose(text string) (Purpose, bool) {
	lower := strings.ToLower(text)
	for _, group := range purposeTable {
		if containsAny(lower, group.keywords) {
			return group.purpose, true
		}
	}
	return "", false
}

type statusKeywords struct {
	status   Status
	keywords []string
}

var statusTable = []statusKeywords{
	{status: StatusReady, keywords: []string{"ready", "move in"}},
	{status: StatusUnderConstruction, keywords: []string{"under construction", "upcoming"}},
}

// MatchStatus finds the first construction status with a keyword occurring in text.
func MatchStatus(text string) (Status, bool) {
	lower := strings.ToLower(text)
	for _, group := range statusTable {
		if containsAny(lower, group.keywords) {
			return group.status, true
		}
	}
	return "", false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
