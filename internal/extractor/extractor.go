// Package extractor turns a free-text utterance into requirement profile updates using
// deterministic keyword and regex rules. Extraction never fails: an utterance that
// matches nothing leaves the profile unchanged.
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/righthome-ai/property-copilot/internal/requirement"
)

// Result is the outcome of extracting one utterance.
type Result struct {
	Profile requirement.Profile
	// Reset is set when the utterance asked to start over. Profile is then empty.
	Reset bool
	// Cleared lists fields removed by an update cue before extraction ran.
	Cleared []requirement.Field
	// Extracted lists fields newly set by this utterance.
	Extracted []requirement.Field
}

var resetCues = []string{"start over", "reset"}

// IsReset reports whether the utterance asks to start the conversation over.
func IsReset(utterance string) bool {
	return containsAny(strings.ToLower(utterance), resetCues)
}

// Extract applies the reset cue, then the update-cue clear step, then fills every field
// the profile does not already hold. The input profile is not modified.
func Extract(utterance string, current requirement.Profile) Result {
	if IsReset(utterance) {
		return Result{Profile: requirement.Profile{}, Reset: true}
	}

	p := current.Clone()
	res := Result{Cleared: ClearUpdated(utterance, &p)}
	lower := strings.ToLower(utterance)

	if !p.Has(requirement.FieldCity) {
		if city, ok := requirement.MatchCity(lower); ok {
			p.SetCity(city)
			res.Extracted = append(res.Extracted, requirement.FieldCity)
		}
	}
	if !p.Has(requirement.FieldType) {
		if t, ok := requirement.MatchPropertyType(lower); ok {
			p.Type = t
			res.Extracted = append(res.Extracted, requirement.FieldType)
		}
	}
	if !p.Has(requirement.FieldBedrooms) {
		if b, ok := matchBedrooms(lower); ok {
			p.SetBedrooms(b)
			res.Extracted = append(res.Extracted, requirement.FieldBedrooms)
		}
	}
	if !p.Has(requirement.FieldBudget) && p.Has(requirement.FieldCity) {
		if amount, ok := matchBudget(lower, p.Currency, p.BudgetUnit); ok {
			p.Budget = amount
			res.Extracted = append(res.Extracted, requirement.FieldBudget)
		}
	}
	if !p.Has(requirement.FieldPurpose) {
		if purpose, ok := requirement.MatchPurpose(lower); ok {
			p.Purpose = purpose
			res.Extracted = append(res.Extracted, requirement.FieldPurpose)
		}
	}
	if !p.Has(requirement.FieldStatus) {
		if status, ok := requirement.MatchStatus(lower); ok {
			p.Status = status
			res.Extracted = append(res.Extracted, requirement.FieldStatus)
		}
	}

	res.Profile = p
	return res
}

var bedroomsPattern = regexp.MustCompile(`(\d+)\s*-?\s*(?:bhk|bedrooms?|beds?)\b`)

var studioPattern = regexp.MustCompile(`\bstudio\b`)

func matchBedrooms(lower string) (requirement.Bedrooms, bool) {
	if m := bedroomsPattern.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return requirement.BedroomCount(n), true
		}
	}
	if studioPattern.MatchString(lower) {
		return requirement.Studio(), true
	}
	return requirement.Bedrooms{}, false
}

// budgetUnitsFor returns the units a budget may be quoted in for a currency.
// The city's own unit always comes first.
func budgetUnitsFor(currency requirement.Currency, unit requirement.BudgetUnit) []requirement.BudgetUnit {
	units := []requirement.BudgetUnit{unit}
	if currency == requirement.CurrencyINR {
		for _, u := range []requirement.BudgetUnit{requirement.UnitLakh, requirement.UnitCrore} {
			if u != unit {
				units = append(units, u)
			}
		}
	}
	return units
}

// matchBudget finds "<number> <unit>" or "<number> <currency>" and returns the amount in
// absolute currency units. A unit suffix is multiplied out; a currency suffix means the
// number is already absolute.
func matchBudget(lower string, currency requirement.Currency, unit requirement.BudgetUnit) (float64, bool) {
	if unit == "" && currency == "" {
		return 0, false
	}

	multipliers := make(map[string]float64)
	var suffixes []string
	for _, u := range budgetUnitsFor(currency, unit) {
		for _, alias := range u.Aliases() {
			multipliers[alias] = u.Multiplier()
			suffixes = append(suffixes, regexp.QuoteMeta(alias))
		}
	}
	if currency != "" {
		code := strings.ToLower(string(currency))
		multipliers[code] = 1
		suffixes = append(suffixes, code)
	}
	if len(suffixes) == 0 {
		return 0, false
	}

	pattern := regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(` + strings.Join(suffixes, "|") + `)\b`)
	m := pattern.FindStringSubmatch(lower)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value * multipliers[m[2]], true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
