package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/bookstore-orders/domain"
	"github.com/fjod/go_cart/bookstore-orders/internal/metrics"
	r "github.com/fjod/go_cart/bookstore-orders/internal/repository"
	"github.com/fjod/go_cart/bookstore-orders/internal/store"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

// MockWriter records written messages and can fail on demand
type MockWriter struct {
	mu       sync.Mutex
	Messages []kafkaGo.Message
	Err      error
	Calls    int
}

func (m *MockWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msgs...)
	return nil
}

func (m *MockWriter) Close() error { return nil }

// MockOutbox implements r.OutboxStore for testing
type MockOutbox struct {
	Events    []*r.OutboxEvent
	FetchErr  error
	MarkErr   error
	Processed []int64
}

func (m *MockOutbox) GetUnprocessedEvents(context.Context, int) ([]*r.OutboxEvent, error) {
	return m.Events, m.FetchErr
}

func (m *MockOutbox) MarkEventAsProcessed(_ context.Context, id int64) error {
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.Processed = append(m.Processed, id)
	return nil
}

// seedOutbox commits n OrderPlaced events into a memory store
func seedOutbox(t *testing.T, s *store.MemoryStore, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		tx, err := s.BeginTx(ctx)
		require.NoError(t, err)
		payload, _ := json.Marshal(domain.OrderPlacedEvent{OrderID: int64(i)})
		require.NoError(t, tx.InsertOutboxEvent(ctx, &r.OutboxEvent{
			EventID:     uuid.NewString(),
			AggregateID: strconv.Itoa(i),
			EventType:   domain.EventTypeOrderPlaced,
			Payload:     payload,
		}))
		require.NoError(t, tx.Commit())
	}
}

func TestProcessUnpublishedEvents_PublishesAndMarks(t *testing.T) {
	s := store.NewMemoryStore()
	seedOutbox(t, s, 3)
	writer := &MockWriter{}
	m := metrics.New(prometheus.NewRegistry())
	poller := NewOutboxPoller(s, writer, m, nil)

	poller.processUnpublishedEvents(context.Background())

	require.Len(t, writer.Messages, 3)
	assert.Equal(t, "1", string(writer.Messages[0].Key))
	assert.Equal(t, "3", string(writer.Messages[2].Key))
	assert.Equal(t, "event_type", writer.Messages[0].Headers[0].Key)
	assert.Equal(t, domain.EventTypeOrderPlaced, string(writer.Messages[0].Headers[0].Value))

	remaining, err := s.GetUnprocessedEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.EventsPublished.WithLabelValues("published")))
}

func TestProcessUnpublishedEvents_StopsOnPublishFailure(t *testing.T) {
	s := store.NewMemoryStore()
	seedOutbox(t, s, 2)
	writer := &MockWriter{Err: errors.New("broker unavailable")}
	poller := NewOutboxPoller(s, writer, nil, nil)

	poller.processUnpublishedEvents(context.Background())

	assert.Equal(t, 1, writer.Calls)
	remaining, err := s.GetUnprocessedEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestProcessUnpublishedEvents_FetchError(t *testing.T) {
	writer := &MockWriter{}
	poller := NewOutboxPoller(&MockOutbox{FetchErr: errors.New("db down")}, writer, nil, nil)

	poller.processUnpublishedEvents(context.Background())

	assert.Zero(t, writer.Calls)
}

func TestProcessUnpublishedEvents_MarkErrorKeepsGoing(t *testing.T) {
	outbox := &MockOutbox{
		Events: []*r.OutboxEvent{
			{ID: 1, AggregateID: "1", EventType: domain.EventTypeOrderPlaced, Payload: json.RawMessage(`{}`)},
			{ID: 2, AggregateID: "2", EventType: domain.EventTypeOrderPlaced, Payload: json.RawMessage(`{}`)},
		},
		MarkErr: errors.New("mark failed"),
	}
	writer := &MockWriter{}
	poller := NewOutboxPoller(outbox, writer, nil, nil)

	poller.processUnpublishedEvents(context.Background())

	assert.Len(t, writer.Messages, 2)
	assert.Empty(t, outbox.Processed)
}

func TestPublish_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	writer := &MockWriter{Err: errors.New("broker unavailable")}
	poller := NewOutboxPoller(&MockOutbox{}, writer, nil, nil)
	event := &r.OutboxEvent{ID: 1, AggregateID: "1", Payload: json.RawMessage(`{}`)}

	for i := 0; i < 5; i++ {
		assert.Error(t, poller.publish(context.Background(), event))
	}
	err := poller.publish(context.Background(), event)

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, writer.Calls, "open breaker must not reach the broker")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := store.NewMemoryStore()
	seedOutbox(t, s, 1)
	writer := &MockWriter{}
	poller := NewOutboxPoller(s, writer, nil, nil)
	poller.eventTick = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		writer.mu.Lock()
		defer writer.mu.Unlock()
		return len(writer.Messages) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestOutboxPoller_PublishesEventsToKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	defer func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}()

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	s := store.NewMemoryStore()
	seedOutbox(t, s, 1)

	writer := NewKafkaWriter(brokers...)
	writer.WriteTimeout = 10 * time.Second
	poller := NewOutboxPoller(s, writer, nil, nil)
	defer poller.Close()

	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	go poller.Run(runCtx)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  brokers,
		Topic:    Topic,
		GroupID:  "test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(runCtx)
	require.NoError(t, err)
	assert.Equal(t, "1", string(msg.Key))

	var payload domain.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, int64(1), payload.OrderID)
}
