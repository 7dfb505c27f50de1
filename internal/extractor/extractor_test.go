package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/righthome-ai/property-copilot/internal/requirement"
)

func profileIn(t *testing.T, city string) requirement.Profile {
	t.Helper()
	c, ok := requirement.LookupCity(city)
	require.True(t, ok, city)
	var p requirement.Profile
	p.SetCity(c)
	return p
}

func TestExtract_CitySynonym(t *testing.T) {
	res := Extract("Looking for something in Gurugram", requirement.Profile{})

	assert.Equal(t, "Gurgaon", res.Profile.City)
	assert.Equal(t, requirement.CurrencyINR, res.Profile.Currency)
	assert.Equal(t, requirement.UnitLakh, res.Profile.BudgetUnit)
	assert.Equal(t, []requirement.Field{requirement.FieldCity}, res.Extracted)
	assert.False(t, res.Reset)
}

func TestExtract_Budget(t *testing.T) {
	tests := []struct {
		name      string
		city      string
		utterance string
		want      float64
	}{
		{name: "crore in mumbai", city: "Mumbai", utterance: "1.5 crore", want: 15000000},
		{name: "cr shorthand", city: "Mumbai", utterance: "around 3cr", want: 30000000},
		{name: "lakh in gurgaon", city: "Gurgaon", utterance: "budget is 85 lakhs", want: 8500000},
		{name: "lac spelling", city: "Bangalore", utterance: "90 lac max", want: 9000000},
		{name: "crore accepted for lakh city", city: "Gurgaon", utterance: "under 2 crore", want: 20000000},
		{name: "million in dubai", city: "Dubai", utterance: "3.2 million", want: 3200000},
		{name: "currency suffix is absolute", city: "Dubai", utterance: "2500000 AED", want: 2500000},
		{name: "digit grouping", city: "Mumbai", utterance: "1,50,00,000 inr", want: 15000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.utterance, profileIn(t, tt.city))
			assert.InDelta(t, tt.want, res.Profile.Budget, 0.001)
			assert.Contains(t, res.Extracted, requirement.FieldBudget)
		})
	}
}

func TestExtract_BudgetNeedsCity(t *testing.T) {
	res := Extract("my budget is 2 crore", requirement.Profile{})
	assert.False(t, res.Profile.Has(requirement.FieldBudget))

	res = Extract("2 crore in Mumbai", requirement.Profile{})
	assert.Equal(t, "Mumbai", res.Profile.City)
	assert.Equal(t, 20000000.0, res.Profile.Budget)
}

func TestExtract_BudgetUnitMismatch(t *testing.T) {
	res := Extract("5 million", profileIn(t, "Mumbai"))
	assert.False(t, res.Profile.Has(requirement.FieldBudget))

	res = Extract("2 crore", profileIn(t, "Dubai"))
	assert.False(t, res.Profile.Has(requirement.FieldBudget))
}

func TestExtract_Bedrooms(t *testing.T) {
	tests := []struct {
		utterance string
		want      string
	}{
		{utterance: "a 3BHK flat", want: "3"},
		{utterance: "need 2 bedrooms", want: "2"},
		{utterance: "4 bed villa", want: "4"},
		{utterance: "a studio near work", want: "studio"},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			res := Extract(tt.utterance, requirement.Profile{})
			require.NotNil(t, res.Profile.Bedrooms)
			assert.Equal(t, tt.want, res.Profile.Bedrooms.String())
		})
	}

	res := Extract("sector 54 please", requirement.Profile{})
	assert.Nil(t, res.Profile.Bedrooms)
}

func TestExtract_FlatInGurgaon(t *testing.T) {
	res := Extract("I want to buy a flat in Gurgaon", requirement.Profile{})

	assert.Equal(t, "Gurgaon", res.Profile.City)
	assert.Equal(t, requirement.TypeApartment, res.Profile.Type)
	assert.False(t, res.Profile.Has(requirement.FieldPurpose))
	assert.False(t, res.Profile.Has(requirement.FieldBudget))
	assert.Equal(t, []requirement.Field{requirement.FieldPurpose, requirement.FieldBudget}, res.Profile.MissingFields())
}

func TestExtract_PurposeAndStatus(t *testing.T) {
	res := Extract("it's an investment, ready to move preferred", requirement.Profile{})
	assert.Equal(t, requirement.PurposeInvestment, res.Profile.Purpose)
	assert.Equal(t, requirement.StatusReady, res.Profile.Status)
}

func TestExtract_DoesNotOverwrite(t *testing.T) {
	p := profileIn(t, "Gurgaon")
	p.Type = requirement.TypeVilla

	res := Extract("what about a flat in Mumbai", p)
	assert.Equal(t, "Gurgaon", res.Profile.City)
	assert.Equal(t, requirement.TypeVilla, res.Profile.Type)
	assert.Empty(t, res.Extracted)
}

func TestExtract_UpdateCueReplaces(t *testing.T) {
	p := profileIn(t, "Gurgaon")
	p.Budget = 8500000

	res := Extract("change the city to Mumbai", p)
	assert.Equal(t, []requirement.Field{requirement.FieldCity}, res.Cleared)
	assert.Equal(t, "Mumbai", res.Profile.City)
	assert.Equal(t, requirement.UnitCrore, res.Profile.BudgetUnit)
	assert.Equal(t, 8500000.0, res.Profile.Budget)

	res = Extract("update my budget to 2 crore", res.Profile)
	assert.Equal(t, []requirement.Field{requirement.FieldBudget}, res.Cleared)
	assert.Equal(t, 20000000.0, res.Profile.Budget)
}

func TestExtract_UpdateCueWithoutNewValue(t *testing.T) {
	p := profileIn(t, "Gurgaon")
	p.Type = requirement.TypeApartment

	res := Extract("Want different property type", p)
	assert.Equal(t, []requirement.Field{requirement.FieldType}, res.Cleared)
	assert.False(t, res.Profile.Has(requirement.FieldType))
	assert.Equal(t, "Gurgaon", res.Profile.City)
}

func TestExtract_InputNotMutated(t *testing.T) {
	p := profileIn(t, "Gurgaon")
	p.SetBedrooms(requirement.BedroomCount(3))

	_ = Extract("change bhk to 4 bhk", p)
	assert.Equal(t, 3, p.Bedrooms.Count())
}

func TestExtract_Reset(t *testing.T) {
	p := profileIn(t, "Dubai")
	p.Budget = 3e6
	p.Type = requirement.TypeVilla

	for _, utterance := range []string{"let's start over", "Reset please", "START OVER in Mumbai"} {
		t.Run(utterance, func(t *testing.T) {
			res := Extract(utterance, p)
			assert.True(t, res.Reset)
			assert.True(t, res.Profile.IsEmpty())
			assert.Empty(t, res.Extracted)
		})
	}
}

func TestExtract_NoMatch(t *testing.T) {
	p := profileIn(t, "Mumbai")
	res := Extract("hmm, let me think", p)
	assert.Equal(t, p, res.Profile)
	assert.Empty(t, res.Extracted)
	assert.Empty(t, res.Cleared)
}

func TestClearUpdated(t *testing.T) {
	p := profileIn(t, "Mumbai")
	p.Budget = 2e7
	p.Status = requirement.StatusReady

	cleared := ClearUpdated("I'd like to adjust budget and status", &p)
	assert.Equal(t, []requirement.Field{requirement.FieldBudget, requirement.FieldStatus}, cleared)
	assert.Equal(t, "Mumbai", p.City)

	cleared = ClearUpdated("the budget is fine", &p)
	assert.Nil(t, cleared)
}
