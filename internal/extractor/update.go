package extractor

import (
	"regexp"
	"strings"

	"github.com/righthome-ai/property-copilot/internal/requirement"
)

var updateCue = regexp.MustCompile(`\b(change|update|different|modify|adjust)\b`)

type fieldSynonyms struct {
	field    requirement.Field
	synonyms []string
}

// updateTargets maps words naming a field to the field an update cue clears.
var updateTargets = []fieldSynonyms{
	{field: requirement.FieldCity, synonyms: []string{"city", "location", "area"}},
	{field: requirement.FieldBudget, synonyms: []string{"budget", "price"}},
	{field: requirement.FieldType, synonyms: []string{"type"}},
	{field: requirement.FieldBedrooms, synonyms: []string{"bedroom", "bhk"}},
	{field: requirement.FieldPurpose, synonyms: []string{"purpose"}},
	{field: requirement.FieldStatus, synonyms: []string{"status"}},
}

// ClearUpdated removes every field the utterance explicitly asks to change, e.g.
// "change my budget" or "a different location". It returns the cleared fields.
// Refilling them is left to the extraction rules that run afterwards.
func ClearUpdated(utterance string, p *requirement.Profile) []requirement.Field {
	lower := strings.ToLower(utterance)
	if !updateCue.MatchString(lower) {
		return nil
	}

	var cleared []requirement.Field
	for _, target := range updateTargets {
		if !containsAny(lower, target.synonyms) || !p.Has(target.field) {
			continue
		}
		p.Clear(target.field)
		cleared = append(cleared, target.field)
	}
	return cleared
}
