package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/righthome-ai/property-copilot/internal/engine"
	"github.com/righthome-ai/property-copilot/pkg/metrics"
)

const phraserSystemPrompt = `You are a friendly real estate assistant helping a buyer shortlist properties.
Rewrite the assistant reply you are given so it sounds natural and warm.
Keep every question it asks and do not invent properties, prices, or locations.
Answer with the rewritten reply only, in at most two sentences.`

// Phraser words stage 1 and 2 prompts with an LLM. It implements engine.Phraser.
type Phraser struct {
	client  Client
	model   string
	timeout time.Duration
}

// NewPhraser creates a phraser. A zero timeout means the caller's context deadline applies.
func NewPhraser(client Client, model string, timeout time.Duration) *Phraser {
	return &Phraser{client: client, model: model, timeout: timeout}
}

// Phrase implements engine.Phraser.
func (p *Phraser) Phrase(ctx context.Context, req engine.PhraseRequest) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := p.client.Complete(ctx, &CompletionRequest{
		Model: p.model,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: phraserSystemPrompt},
			{Role: RoleUser, Content: phraseContext(req)},
		},
		MaxTokens:   200,
		Temperature: 0.3,
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordPhrasing(p.client.Name(), status, time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", p.client.Name(), err)
	}
	return strings.TrimSpace(resp.Content), nil
}

func phraseContext(req engine.PhraseRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Buyer said: %q\n", req.Utterance)
	if known := req.Profile.String(); known != "" {
		fmt.Fprintf(&b, "Known so far: %s\n", known)
	}
	if len(req.MissingFields) > 0 {
		names := make([]string, len(req.MissingFields))
		for i, f := range req.MissingFields {
			names[i] = string(f)
		}
		fmt.Fprintf(&b, "Still missing: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "Reply to rewrite: %s", req.Canned)
	return b.String()
}
