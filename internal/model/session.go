// Package model defines data structures for the property co-pilot API.
package model

import (
	"time"

	"github.com/righthome-ai/property-copilot/internal/requirement"
)

// Session is the stored state of one buyer conversation. Snapshots are replaced
// wholesale after each turn.
type Session struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Stage     int                 `json:"stage"`
	Profile   requirement.Profile `json:"profile"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	TurnCount int                 `json:"turn_count"`
	LastReply string              `json:"last_reply,omitempty"`
}

// Clone returns a copy that shares no mutable state with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Profile = s.Profile.Clone()
	return &c
}

// CreateSessionResponse is returned when a session is opened.
type CreateSessionResponse struct {
	Session      *Session `json:"session"`
	Response     string   `json:"response"`
	QuickReplies []string `json:"quickReplies"`
}

// SessionSummaryResponse renders the requirement panel for a session.
type SessionSummaryResponse struct {
	Session *Session                  `json:"session"`
	Summary []requirement.SummaryItem `json:"summary"`
}
