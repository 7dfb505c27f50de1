// Package service runs conversation turns against stored sessions.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/righthome-ai/property-copilot/internal/engine"
	"github.com/righthome-ai/property-copilot/internal/model"
	"github.com/righthome-ai/property-copilot/internal/session"
	"github.com/righthome-ai/property-copilot/pkg/logger"
	"github.com/righthome-ai/property-copilot/pkg/metrics"
)

// ErrNotFound is returned for missing sessions and for sessions owned by another user.
var ErrNotFound = session.ErrNotFound

// SessionService handles session lifecycle.
type SessionService struct {
	store  session.Store
	logger *logger.Logger
	now    func() time.Time
}

// NewSessionService creates a new session service.
func NewSessionService(store session.Store, log *logger.Logger) *SessionService {
	return &SessionService{
		store:  store,
		logger: log,
		now:    time.Now,
	}
}

// Create opens a session at the greeting stage.
func (s *SessionService) Create(ctx context.Context, userID string) (*model.CreateSessionResponse, error) {
	now := s.now().UTC()
	sess := &model.Session{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    userID,
		Stage:     engine.StageGreeting,
		CreatedAt: now,
		UpdatedAt: now,
		LastReply: engine.Greeting,
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	metrics.SessionsActive.Inc()

	s.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("user_id", userID),
	)

	return &model.CreateSessionResponse{
		Session:      sess,
		Response:     engine.Greeting,
		QuickReplies: engine.StarterReplies,
	}, nil
}

// Get loads a session owned by userID.
func (s *SessionService) Get(ctx context.Context, userID, id string) (*model.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess.UserID != userID {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Save replaces the stored snapshot.
func (s *SessionService) Save(ctx context.Context, sess *model.Session) error {
	if err := s.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session owned by userID.
func (s *SessionService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	metrics.SessionsActive.Dec()

	s.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// Ping checks the session backend.
func (s *SessionService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
