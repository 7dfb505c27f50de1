package requirement

import (
	"math"
	"strconv"
	"strings"
)

// SummaryItem is one labelled row of the requirement panel.
type SummaryItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summary renders the known fields with display labels.
func (p Profile) Summary() []SummaryItem {
	var items []SummaryItem
	if p.Purpose != "" {
		items = append(items, SummaryItem{Label: "Purpose", Value: string(p.Purpose)})
	}
	if p.City != "" {
		items = append(items, SummaryItem{Label: "City", Value: p.City})
	}
	if p.Budget != 0 {
		items = append(items, SummaryItem{Label: "Budget Range", Value: FormatBudget(p.Budget, p.Currency)})
	}
	if p.Bedrooms != nil {
		items = append(items, SummaryItem{Label: "Bedrooms", Value: p.Bedrooms.Label()})
	}
	if p.Type != "" {
		items = append(items, SummaryItem{Label: "Property Type", Value: p.Type.Label()})
	}
	if p.Status != "" {
		items = append(items, SummaryItem{Label: "Construction Status", Value: string(p.Status)})
	}
	return items
}

// String joins the summary into one line, e.g. "City: Gurgaon, Bedrooms: 3 BHK".
func (p Profile) String() string {
	items := p.Summary()
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Label + ": " + item.Value
	}
	return strings.Join(parts, ", ")
}

// FormatBudget renders an absolute amount in the customary unit for the currency.
func FormatBudget(amount float64, currency Currency) string {
	switch currency {
	case CurrencyAED:
		if amount >= UnitMillion.Multiplier() {
			return "AED " + trimAmount(amount/UnitMillion.Multiplier()) + "M"
		}
		return "AED " + trimAmount(amount)
	default:
		if amount >= UnitCrore.Multiplier() {
			return "₹" + trimAmount(amount/UnitCrore.Multiplier()) + " Cr"
		}
		if amount >= UnitLakh.Multiplier() {
			return "₹" + trimAmount(amount/UnitLakh.Multiplier()) + " L"
		}
		return "₹" + trimAmount(amount)
	}
}

func trimAmount(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
