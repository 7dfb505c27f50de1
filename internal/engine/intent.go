package engine

import (
	"regexp"
	"strings"
)

var (
	negativePattern   = regexp.MustCompile(`\b(don'?t like|not interested|no|nope|nah|other options|different)\b`)
	positivePattern   = regexp.MustCompile(`\b(like|good|interested|yes|yeah|yup|perfect|great)\b`)
	detailPattern     = regexp.MustCompile(`more details|tell me more`)
	schedulingPattern = regexp.MustCompile(`\b(visit|see|tour|call|talk|speak|meeting|appointment)`)
)

// feedback is how the user reacted to a set of recommendations.
type feedback int

const (
	feedbackOther feedback = iota
	feedbackNegative
	feedbackDetails
	feedbackPositive
)

// classifyFeedback checks negative cues first so that "don't like" never reads as "like".
// Approval outranks a request for details.
func classifyFeedback(lower string) feedback {
	switch {
	case negativePattern.MatchString(lower):
		return feedbackNegative
	case positivePattern.MatchString(lower):
		return feedbackPositive
	case detailPattern.MatchString(lower):
		return feedbackDetails
	default:
		return feedbackOther
	}
}

func wantsScheduling(lower string) bool {
	return schedulingPattern.MatchString(lower)
}

// objection is the aspect of the recommendations the user pushed back on.
type objection int

const (
	objectionNone objection = iota
	objectionLocation
	objectionPrice
	objectionType
)

func classifyObjection(lower string) objection {
	switch {
	case strings.Contains(lower, "location") || strings.Contains(lower, "area"):
		return objectionLocation
	case strings.Contains(lower, "price") || strings.Contains(lower, "expensive"):
		return objectionPrice
	case strings.Contains(lower, "type") || strings.Contains(lower, "kind"):
		return objectionType
	default:
		return objectionNone
	}
}
