package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/righthome-ai/property-copilot/internal/catalog"
	"github.com/righthome-ai/property-copilot/internal/engine"
	"github.com/righthome-ai/property-copilot/internal/model"
	"github.com/righthome-ai/property-copilot/internal/requirement"
	"github.com/righthome-ai/property-copilot/internal/schedule"
	"github.com/righthome-ai/property-copilot/pkg/logger"
	"github.com/righthome-ai/property-copilot/pkg/metrics"
	"github.com/righthome-ai/property-copilot/pkg/tracing"
)

var (
	// ErrTranscriptUnavailable is returned when no transcript stream is configured.
	ErrTranscriptUnavailable = errors.New("transcript stream not configured")

	// ErrNotReadyToSchedule is returned when a session has not reached the scheduling stage.
	ErrNotReadyToSchedule = errors.New("session has not reached scheduling")
)

// Transcript records completed turns.
type Transcript interface {
	PublishTurn(ctx context.Context, rec *model.TurnRecord) (uint64, error)
	GetTurns(ctx context.Context, sessionID string, afterSequence uint64, limit int) ([]model.TurnRecord, uint64, bool, error)
}

// ListingGetter looks up a catalog listing.
type ListingGetter interface {
	Get(id int) (catalog.Listing, error)
}

// TurnService runs engine turns against stored sessions.
type TurnService struct {
	engine     *engine.Engine
	sessions   *SessionService
	transcript Transcript
	listings   ListingGetter
	links      schedule.Links
	tracer     trace.Tracer
	logger     *logger.Logger
	now        func() time.Time
	locks      *sessionLocks
}

// TurnServiceConfig collects the TurnService collaborators. Transcript may be nil.
type TurnServiceConfig struct {
	Engine     *engine.Engine
	Sessions   *SessionService
	Transcript Transcript
	Listings   ListingGetter
	Links      schedule.Links
	Logger     *logger.Logger
}

// NewTurnService creates a new turn service.
func NewTurnService(cfg TurnServiceConfig) *TurnService {
	return &TurnService{
		engine:     cfg.Engine,
		sessions:   cfg.Sessions,
		transcript: cfg.Transcript,
		listings:   cfg.Listings,
		links:      cfg.Links,
		tracer:     tracing.Tracer("property-copilot/service"),
		logger:     cfg.Logger,
		now:        time.Now,
		locks:      newSessionLocks(),
	}
}

// Run applies one utterance to a stored session and persists the new snapshot.
func (s *TurnService) Run(ctx context.Context, userID, sessionID, utterance string) (*model.TurnResponse, error) {
	if _, err := s.sessions.Get(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	// Reload under the lock so the turn sees the latest snapshot.
	sess, err := s.sessions.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithSession(logger.CorrelationID(ctx), sessionID, userID)
	resp, err := s.run(ctx, log, engine.Input{
		Utterance: utterance,
		Profile:   sess.Profile,
		Stage:     sess.Stage,
	})
	if err != nil {
		return nil, err
	}
	resp.SessionID = sess.ID
	resp.TurnID = uuid.Must(uuid.NewV7()).String()

	fromStage := sess.Stage
	next := sess.Clone()
	next.Stage = resp.UpdatedStage
	next.Profile = resp.UpdatedRequirementMap.Clone()
	next.TurnCount++
	next.LastReply = resp.Response
	next.UpdatedAt = s.now().UTC()
	if err := s.sessions.Save(ctx, next); err != nil {
		return nil, err
	}

	if fromStage != next.Stage {
		log.Info("stage changed",
			zap.Int("from_stage", fromStage),
			zap.Int("to_stage", next.Stage),
		)
	}

	s.publish(ctx, log, turnRecord(resp, userID, utterance, fromStage, next.UpdatedAt))
	return resp, nil
}

// RunStateless runs a turn on caller-supplied state without touching any session.
func (s *TurnService) RunStateless(ctx context.Context, in engine.Input) (*model.TurnResponse, error) {
	return s.run(ctx, s.logger, in)
}

func (s *TurnService) run(ctx context.Context, log *logger.Logger, in engine.Input) (*model.TurnResponse, error) {
	ctx, span := s.tracer.Start(ctx, "turn.run", trace.WithAttributes(
		attribute.Int("turn.from_stage", in.Stage),
	))
	defer span.End()

	res, err := s.engine.Turn(ctx, in)
	resp := &model.TurnResponse{Result: res}
	if err != nil {
		if !errors.Is(err, engine.ErrPhrasing) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("turn failed: %w", err)
		}
		resp.PhrasingFallback = true
		span.AddEvent("phrasing fallback")
		log.Warn("phrasing failed, using canned reply", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int("turn.to_stage", res.UpdatedStage),
		attribute.Bool("turn.reset", res.Reset),
		attribute.Int("turn.recommendations", len(res.Recommendations)),
	)

	extracted := make([]string, len(res.Extracted))
	for i, f := range res.Extracted {
		extracted[i] = string(f)
	}
	metrics.RecordTurn(in.Stage, res.UpdatedStage, extracted)
	if res.ShowRecommendations {
		metrics.RecordRecommendation(string(res.Pass))
	}

	return resp, nil
}

func (s *TurnService) publish(ctx context.Context, log *logger.Logger, rec *model.TurnRecord) {
	if s.transcript == nil {
		return
	}
	if _, err := s.transcript.PublishTurn(ctx, rec); err != nil {
		metrics.TranscriptPublishFailures.Inc()
		log.Warn("failed to publish turn", zap.String("turn_id", rec.ID), zap.Error(err))
	}
}

// Transcript replays the recorded turns of a session.
func (s *TurnService) Transcript(ctx context.Context, userID, sessionID string, afterSequence uint64, limit int) (*model.TranscriptResponse, error) {
	if s.transcript == nil {
		return nil, ErrTranscriptUnavailable
	}
	if _, err := s.sessions.Get(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	turns, lastSeq, hasMore, err := s.transcript.GetTurns(ctx, sessionID, afterSequence, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get turns: %w", err)
	}
	return &model.TranscriptResponse{
		Turns:        turns,
		HasMore:      hasMore,
		LastSequence: lastSeq,
	}, nil
}

// Schedule builds a contact link for a session that has reached the scheduling stage.
func (s *TurnService) Schedule(ctx context.Context, userID, sessionID string, req *model.ScheduleRequest) (*model.ScheduleResponse, error) {
	sess, err := s.sessions.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Stage < engine.StageScheduling {
		return nil, ErrNotReadyToSchedule
	}

	var listing *catalog.Listing
	if req.ListingID != nil {
		l, err := s.listings.Get(*req.ListingID)
		if err != nil {
			return nil, err
		}
		listing = &l
	}

	return s.links.Build(req.Channel, sess.Profile, listing)
}

func turnRecord(resp *model.TurnResponse, userID, utterance string, fromStage int, at time.Time) *model.TurnRecord {
	ids := make([]int, len(resp.Recommendations))
	for i, m := range resp.Recommendations {
		ids[i] = m.ID
	}
	return &model.TurnRecord{
		ID:               resp.TurnID,
		SessionID:        resp.SessionID,
		UserID:           userID,
		Utterance:        utterance,
		Response:         resp.Response,
		FromStage:        fromStage,
		ToStage:          resp.UpdatedStage,
		Profile:          resp.UpdatedRequirementMap.Clone(),
		Extracted:        fieldsOrNil(resp.Extracted),
		Cleared:          fieldsOrNil(resp.Cleared),
		Reset:            resp.Reset,
		Pass:             string(resp.Pass),
		ListingIDs:       ids,
		PhrasingFallback: resp.PhrasingFallback,
		CreatedAt:        at,
	}
}

func fieldsOrNil(fs []requirement.Field) []requirement.Field {
	if len(fs) == 0 {
		return nil
	}
	return fs
}
