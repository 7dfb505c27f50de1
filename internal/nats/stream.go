package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/righthome-ai/property-copilot/internal/model"
	"github.com/righthome-ai/property-copilot/pkg/metrics"
)

const (
	// StreamName is the name of the transcript stream.
	StreamName = "COPILOT"

	// SubjectPrefix is the prefix for all transcript subjects.
	SubjectPrefix = "copilot"

	defaultFetchLimit = 100
)

// StreamManager handles JetStream stream operations.
type StreamManager struct {
	client *Client
	maxAge time.Duration
}

// NewStreamManager creates a new stream manager. Transcripts are kept for maxAge.
func NewStreamManager(client *Client, maxAge time.Duration) *StreamManager {
	return &StreamManager{client: client, maxAge: maxAge}
}

// EnsureStream creates the transcript stream if it does not exist.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      m.maxAge,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Property co-pilot session turn transcripts",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// TurnSubject returns the subject a session's turns are published on.
func TurnSubject(sessionID string) string {
	return fmt.Sprintf("%s.%s.turn", SubjectPrefix, sanitizeToken(sessionID))
}

// sanitizeToken keeps a session id from introducing extra subject tokens or wildcards.
func sanitizeToken(s string) string {
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(s)
}

// PublishTurn appends a completed turn to the transcript.
func (m *StreamManager) PublishTurn(ctx context.Context, rec *model.TurnRecord) (uint64, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal turn: %w", err)
	}

	ack, err := m.client.JetStream().Publish(ctx, TurnSubject(rec.SessionID), data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish turn: %w", err)
	}
	return ack.Sequence, nil
}

// GetTurns replays a session's turns after a stream sequence, oldest first.
func (m *StreamManager) GetTurns(ctx context.Context, sessionID string, afterSequence uint64, limit int) ([]model.TurnRecord, uint64, bool, error) {
	if limit <= 0 {
		limit = defaultFetchLimit
	}

	cfg := jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{TurnSubject(sessionID)},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	}
	if afterSequence > 0 {
		cfg.DeliverPolicy = jetstream.DeliverByStartSequencePolicy
		cfg.OptStartSeq = afterSequence + 1
	}

	consumer, err := m.client.JetStream().OrderedConsumer(ctx, StreamName, cfg)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to create consumer: %w", err)
	}

	batch, err := consumer.Fetch(limit, jetstream.FetchMaxWait(2*time.Second))
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to fetch turns: %w", err)
	}

	turns := []model.TurnRecord{}
	var lastSequence uint64
	for msg := range batch.Messages() {
		var rec model.TurnRecord
		if err := json.Unmarshal(msg.Data(), &rec); err != nil {
			continue
		}
		if meta, err := msg.Metadata(); err == nil {
			rec.Sequence = meta.Sequence.Stream
			lastSequence = meta.Sequence.Stream
		}
		turns = append(turns, rec)
	}

	if err := batch.Error(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, 0, false, fmt.Errorf("batch error: %w", err)
	}

	return turns, lastSequence, len(turns) == limit, nil
}

// RecordStreamSize updates the stream message gauge.
func (m *StreamManager) RecordStreamSize(ctx context.Context) error {
	stream, err := m.client.JetStream().Stream(ctx, StreamName)
	if err != nil {
		return fmt.Errorf("failed to look up stream: %w", err)
	}
	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stream info: %w", err)
	}
	metrics.NATSStreamMessages.WithLabelValues(StreamName).Set(float64(info.State.Msgs))
	return nil
}
