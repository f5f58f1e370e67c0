package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/krishimitra/marketplace-backend/pkg/config"
	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/enums"
	"github.com/krishimitra/marketplace-backend/pkg/logger"
)

type stubOutboxRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	fetchErr  error
}

func (s *stubOutboxRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if len(s.events) > limit {
		return s.events[:limit], nil
	}
	return s.events, nil
}

func (s *stubOutboxRepo) MarkPublished(id uuid.UUID) error {
	s.published = append(s.published, id)
	return nil
}

func (s *stubOutboxRepo) MarkFailed(id uuid.UUID, err error) error {
	s.failed = append(s.failed, id)
	return nil
}

type recordingPublisher struct {
	channels []string
	payloads [][]byte
	err      error
}

func (r *recordingPublisher) Ping(context.Context) error {
	return nil
}

func (r *recordingPublisher) Publish(ctx context.Context, channel string, payload any) error {
	if r.err != nil {
		return r.err
	}
	r.channels = append(r.channels, channel)
	if raw, ok := payload.([]byte); ok {
		r.payloads = append(r.payloads, raw)
	}
	return nil
}

type stubDB struct{}

func (stubDB) Ping(context.Context) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Outbox: config.OutboxConfig{
			BatchSize:      10,
			PollIntervalMS: 10,
			MaxAttempts:    3,
		},
		Realtime: config.RealtimeConfig{
			DealsChannel: "km:deals:changed",
		},
	}
}

func outboxEvent(t *testing.T, eventType enums.OutboxEventType) models.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"dealId": uuid.NewString()})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateDeal,
		AggregateID:   uuid.New(),
		Payload:       payload,
		CreatedAt:     time.Now(),
	}
}

func newTestService(t *testing.T, repo *stubOutboxRepo, pub *recordingPublisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:     testConfig(),
		Logger:     logger.New(logger.Options{ServiceName: "outbox-test"}),
		DB:         stubDB{},
		Repository: repo,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	first := outboxEvent(t, enums.EventDealCreated)
	second := outboxEvent(t, enums.EventDealDecided)
	repo := &stubOutboxRepo{events: []models.OutboxEvent{first, second}}
	pub := &recordingPublisher{}

	svc := newTestService(t, repo, pub)
	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to be processed")
	}

	if len(pub.channels) != 2 {
		t.Fatalf("expected 2 publishes got %d", len(pub.channels))
	}
	for _, ch := range pub.channels {
		if ch != "km:deals:changed" {
			t.Fatalf("unexpected channel %q", ch)
		}
	}
	if len(repo.published) != 2 || repo.published[0] != first.ID || repo.published[1] != second.ID {
		t.Fatalf("events not marked published: %v", repo.published)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("unexpected failures: %v", repo.failed)
	}
}

func TestProcessBatchMarksFailureAndContinues(t *testing.T) {
	event := outboxEvent(t, enums.EventDealCreated)
	repo := &stubOutboxRepo{events: []models.OutboxEvent{event}}
	pub := &recordingPublisher{err: errors.New("redis down")}

	svc := newTestService(t, repo, pub)
	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to be processed")
	}
	if len(repo.failed) != 1 || repo.failed[0] != event.ID {
		t.Fatalf("event not marked failed: %v", repo.failed)
	}
	if len(repo.published) != 0 {
		t.Fatalf("unexpected published ids: %v", repo.published)
	}
}

func TestProcessBatchIdleWhenEmpty(t *testing.T) {
	repo := &stubOutboxRepo{}
	pub := &recordingPublisher{}

	svc := newTestService(t, repo, pub)
	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if processed {
		t.Fatal("expected idle batch")
	}
}

func TestNextBackoffCapsAtMax(t *testing.T) {
	base := 100 * time.Millisecond
	current := base
	for i := 0; i < 10; i++ {
		current = nextBackoff(current, base, maxBackoff)
	}
	if current != maxBackoff {
		t.Fatalf("expected backoff to cap at %s got %s", maxBackoff, current)
	}
}
