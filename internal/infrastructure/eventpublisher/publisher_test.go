package eventpublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
	"github.com/iho/walletledger/internal/usecase"
)

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", EventType: domain.EventTypeOperationCreated}},
	}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected event to be marked published, got %#v", repo.marked)
	}
	if len(repo.pruned) != 1 {
		t.Fatalf("expected published events to be pruned once, got %d", len(repo.pruned))
	}
	if want := fixedNow.Add(-DefaultRetention); !repo.pruned[0].Equal(want) {
		t.Fatalf("expected prune cutoff %v, got %v", want, repo.pruned[0])
	}
}

func TestProcessEventsContinuesOnPublishError(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: domain.EventTypeOperationCreated},
			{ID: "evt-2", EventType: domain.EventTypeOperationDeleted},
		},
	}
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("fail")},
	}
	ep := newTestPublisher(repo, pub)
	m := metrics.New(prometheus.NewRegistry())
	ep.metrics = m

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents returned error: %v", err)
	}

	if len(pub.published) != 1 || pub.published[0].ID != "evt-2" {
		t.Fatalf("expected only evt-2 to be published, got %#v", pub.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-2" {
		t.Fatalf("expected only evt-2 to be marked, got %#v", repo.marked)
	}
	if got := testutil.ToFloat64(m.EventErrors.WithLabelValues(domain.EventTypeOperationCreated)); got != 1 {
		t.Fatalf("expected one publish error, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsPublished.WithLabelValues(domain.EventTypeOperationDeleted)); got != 1 {
		t.Fatalf("expected one published event, got %v", got)
	}
}

func TestProcessEventsSkipsPruneWhenNothingPublished(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", EventType: "type"}},
	}
	pub := &stubPublisher{errorsByID: map[string]error{"evt-1": errors.New("down")}}
	ep := newTestPublisher(repo, pub)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents returned error: %v", err)
	}
	if len(repo.pruned) != 0 {
		t.Fatalf("expected no prune, got %v", repo.pruned)
	}
}

func TestProcessEventsReturnsFetchError(t *testing.T) {
	repo := &stubOutboxRepo{fetchErr: errors.New("db down")}
	ep := newTestPublisher(repo, &stubPublisher{})

	if err := ep.processEvents(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestProcessEventsRespectsBatchSize(t *testing.T) {
	repo := &stubOutboxRepo{}
	for _, id := range []string{"a", "b", "c"} {
		repo.events = append(repo.events, &domain.OutboxEvent{ID: id, EventType: "type"})
	}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)
	ep.batchSize = 2

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}
	if len(pub.published) != 2 {
		t.Fatalf("expected batch of 2, got %d", len(pub.published))
	}
}

func TestNewEventPublisherDefaults(t *testing.T) {
	ep := NewEventPublisher(Config{OutboxRepo: &stubOutboxRepo{}, Publisher: &stubPublisher{}})

	if ep.batchSize != DefaultBatchSize || ep.interval != DefaultInterval || ep.retention != DefaultRetention {
		t.Fatalf("unexpected defaults: batch=%d interval=%v retention=%v", ep.batchSize, ep.interval, ep.retention)
	}
	if ep.logger == nil {
		t.Fatal("expected a no-op logger")
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	repo := &stubOutboxRepo{}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestLogPublisherPublish(t *testing.T) {
	pub := NewLogPublisher(nil)
	event := &domain.OutboxEvent{
		ID:        "evt-1",
		EventType: domain.EventTypeWalletAdjusted,
		Payload:   map[string]any{"wallet_id": "w-1"},
	}
	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("expected log publish to succeed, got %v", err)
	}
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestPublisher(repo *stubOutboxRepo, pub *stubPublisher) *EventPublisher {
	ep := NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
	ep.now = func() time.Time { return fixedNow }
	return ep
}

type stubOutboxRepo struct {
	events   []*domain.OutboxEvent
	marked   []string
	pruned   []time.Time
	fetchErr error
}

func (s *stubOutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if len(s.events) <= limit {
		return append([]*domain.OutboxEvent(nil), s.events...), nil
	}
	return append([]*domain.OutboxEvent(nil), s.events[:limit]...), nil
}

func (s *stubOutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.marked = append(s.marked, id)
	return nil
}

func (s *stubOutboxRepo) DeletePublished(ctx context.Context, before time.Time) error {
	s.pruned = append(s.pruned, before)
	return nil
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}
