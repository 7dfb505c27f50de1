package model

import (
	"github.com/righthome-ai/property-copilot/internal/recommend"
	"github.com/righthome-ai/property-copilot/internal/requirement"
)

// EventType names a server-sent event emitted while streaming a turn.
type EventType string

const (
	EventTypeProfile        EventType = "profile"
	EventTypeRecommendation EventType = "recommendation"
	EventTypeReply          EventType = "reply"
	EventTypeDone           EventType = "done"
	EventTypeError          EventType = "error"
)

// ProfileEvent reports the requirement profile after extraction.
type ProfileEvent struct {
	Profile       requirement.Profile       `json:"profile"`
	Summary       []requirement.SummaryItem `json:"summary"`
	MissingFields []requirement.Field       `json:"missingFields"`
}

// RecommendationEvent carries one ranked listing.
type RecommendationEvent struct {
	Rank  int             `json:"rank"`
	Match recommend.Match `json:"match"`
}

// ReplyEvent carries the assistant reply.
type ReplyEvent struct {
	Response            string   `json:"response"`
	QuickReplies        []string `json:"quickReplies"`
	ShowScheduleOptions bool     `json:"showScheduleOptions"`
}

// DoneEvent closes a streamed turn.
type DoneEvent struct {
	SessionID        string `json:"session_id"`
	TurnID           string `json:"turn_id"`
	Stage            int    `json:"stage"`
	PhrasingFallback bool   `json:"phrasing_fallback"`
}

// ErrorEvent represents an error event.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
