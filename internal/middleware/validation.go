package middleware

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/righthome-ai/property-copilot/internal/requirement"
)

// MaxUtteranceLength bounds a single user utterance in bytes.
const MaxUtteranceLength = 2000

// ValidateUtterance validates a user utterance.
func ValidateUtterance(utterance string) error {
	if strings.TrimSpace(utterance) == "" {
		return errors.New("utterance cannot be empty")
	}
	if len(utterance) > MaxUtteranceLength {
		return errors.New("utterance exceeds maximum length")
	}
	if !utf8.ValidString(utterance) {
		return errors.New("utterance must be valid UTF-8")
	}
	return nil
}

// ValidateSessionID validates a session ID.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid session ID format")
	}
	return nil
}

// ValidateProfile checks a caller-supplied profile for values extraction could never
// have produced.
func ValidateProfile(p requirement.Profile) error {
	if p.Budget < 0 {
		return errors.New("budget cannot be negative")
	}
	if p.Bedrooms != nil && !p.Bedrooms.IsStudio() && p.Bedrooms.Count() <= 0 {
		return errors.New("bedrooms must be positive")
	}
	if p.City == "" {
		if p.Currency != "" || p.BudgetUnit != "" {
			return errors.New("currency and budgetUnit require a city")
		}
		return nil
	}
	city, ok := requirement.LookupCity(p.City)
	if !ok {
		return errors.New("unsupported city")
	}
	if p.Currency != "" && p.Currency != city.Currency {
		return errors.New("currency does not match city")
	}
	if p.BudgetUnit != "" && p.BudgetUnit != city.BudgetUnit {
		return errors.New("budgetUnit does not match city")
	}
	return nil
}
