package model

import (
	"time"

	"github.com/righthome-ai/property-copilot/internal/engine"
	"github.com/righthome-ai/property-copilot/internal/requirement"
)

// TurnRequest is the body of a turn against a stored session.
type TurnRequest struct {
	Utterance string `json:"utterance"`
}

// StatelessTurnRequest carries the whole conversation state with the utterance.
type StatelessTurnRequest struct {
	Utterance string              `json:"utterance"`
	Profile   requirement.Profile `json:"profile"`
	Stage     int                 `json:"stage"`
}

// TurnResponse is the turn output record plus session bookkeeping.
type TurnResponse struct {
	engine.Result
	SessionID        string `json:"session_id,omitempty"`
	TurnID           string `json:"turn_id,omitempty"`
	PhrasingFallback bool   `json:"phrasing_fallback"`
}

// TurnRecord is one completed turn in a session transcript.
type TurnRecord struct {
	ID               string              `json:"id"`
	SessionID        string              `json:"session_id"`
	UserID           string              `json:"user_id,omitempty"`
	Utterance        string              `json:"utterance"`
	Response         string              `json:"response"`
	FromStage        int                 `json:"from_stage"`
	ToStage          int                 `json:"to_stage"`
	Profile          requirement.Profile `json:"profile"`
	Extracted        []requirement.Field `json:"extracted,omitempty"`
	Cleared          []requirement.Field `json:"cleared,omitempty"`
	Reset            bool                `json:"reset,omitempty"`
	Pass             string              `json:"pass,omitempty"`
	ListingIDs       []int               `json:"listing_ids,omitempty"`
	PhrasingFallback bool                `json:"phrasing_fallback,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`

	// JetStream metadata, populated on read
	Sequence uint64 `json:"sequence,omitempty"`
}

// TranscriptResponse lists the recorded turns of a session.
type TranscriptResponse struct {
	Turns        []TurnRecord `json:"turns"`
	HasMore      bool         `json:"has_more"`
	LastSequence uint64       `json:"last_sequence"`
}

// ScheduleRequest asks for a contact channel link.
type ScheduleRequest struct {
	Channel   string `json:"channel"`
	ListingID *int   `json:"listing_id,omitempty"`
}

// ScheduleResponse carries the link for the chosen channel.
type ScheduleResponse struct {
	Channel string `json:"channel"`
	URL     string `json:"url"`
	Message string `json:"message"`
}
