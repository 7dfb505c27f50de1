package engine

import (
	"context"
	"errors"

	"github.com/righthome-ai/property-copilot/internal/requirement"
)

// ErrPhrasing wraps failures of the optional Phraser.
var ErrPhrasing = errors.New("phrasing failed")

// PhraseRequest carries what a Phraser may use to word a stage 1 or 2 prompt.
type PhraseRequest struct {
	Utterance     string
	Profile       requirement.Profile
	Stage         int
	MissingFields []requirement.Field
	HasMatches    bool
	// Canned is the deterministic reply the engine would send on its own.
	Canned string
}

// Phraser rewords information-gathering prompts. It never extracts fields or ranks
// listings. An empty reply keeps the canned text.
type Phraser interface {
	Phrase(ctx context.Context, req PhraseRequest) (string, error)
}

// NopPhraser keeps every canned reply.
type NopPhraser struct{}

// Phrase implements Phraser.
func (NopPhraser) Phrase(context.Context, PhraseRequest) (string, error) {
	return "", nil
}

// PhraserFunc adapts a function to the Phraser interface.
type PhraserFunc func(ctx context.Context, req PhraseRequest) (string, error)

// Phrase implements Phraser.
func (f PhraserFunc) Phrase(ctx context.Context, req PhraseRequest) (string, error) {
	return f(ctx, req)
}
