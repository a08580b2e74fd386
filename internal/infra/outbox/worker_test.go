package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	doc    *EventDocument
	sent   []string
	failed []string
	next   time.Time
}

func (s *stubSource) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	doc := s.doc
	s.doc = nil
	return doc, nil
}

func (s *stubSource) MarkSent(ctx context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *stubSource) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	s.failed = append(s.failed, id)
	s.next = next
	return nil
}

type stubProducer struct {
	fail    error
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

func (p *stubProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail != nil {
		return p.fail
	}
	p.topic = topic
	p.key = key
	p.payload = payload
	p.headers = headers
	return nil
}

func sampleDoc() *EventDocument {
	return &EventDocument{
		ID:         "evt-1",
		Name:       "reservation.created",
		Payload:    []byte(`{"ReservationID":"res-1"}`),
		OccurredAt: time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC),
		Aggregate:  "res-1",
	}
}

func TestWorkerPublishesClaimedEventAsCloudEvent(t *testing.T) {
	source := &stubSource{doc: sampleDoc()}
	producer := &stubProducer{}
	w := &Worker{Store: source, Producer: producer, ID: "w1"}

	require.NoError(t, w.processOnce(context.Background()))

	assert.Equal(t, "reservation.events.v1", producer.topic)
	assert.Equal(t, "res-1", producer.key)
	assert.Equal(t, "application/cloudevents+json", producer.headers["content-type"])

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(producer.payload, &envelope))
	assert.Equal(t, "1.0", envelope["specversion"])
	assert.Equal(t, "reservation.created.v1", envelope["type"])
	assert.Equal(t, "app://hotelier", envelope["source"])
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "res-1", data["ReservationID"])

	assert.Equal(t, []string{"evt-1"}, source.sent)
	assert.Empty(t, source.failed)
}

func TestWorkerIdleWhenNothingClaimed(t *testing.T) {
	source := &stubSource{}
	producer := &stubProducer{}
	w := &Worker{Store: source, Producer: producer}

	require.NoError(t, w.processOnce(context.Background()))
	assert.Empty(t, producer.topic)
}

func TestWorkerMarksFailedPublishForRetry(t *testing.T) {
	source := &stubSource{doc: sampleDoc()}
	producer := &stubProducer{fail: context.DeadlineExceeded}
	w := &Worker{Store: source, Producer: producer, Backoff: []time.Duration{time.Minute}}

	require.NoError(t, w.processOnce(context.Background()))

	assert.Empty(t, source.sent)
	assert.Equal(t, []string{"evt-1"}, source.failed)
	assert.True(t, source.next.After(time.Now().Add(30*time.Second)), "first retry honors backoff")
}

func TestWorkerMarksMalformedPayloadFailed(t *testing.T) {
	doc := sampleDoc()
	doc.Payload = []byte("not json")
	source := &stubSource{doc: doc}
	w := &Worker{Store: source, Producer: &stubProducer{}}

	require.NoError(t, w.processOnce(context.Background()))
	assert.Equal(t, []string{"evt-1"}, source.failed)
}

func TestTopicForStripsSubtypeAndAppliesPrefix(t *testing.T) {
	w := &Worker{}
	assert.Equal(t, "reservation.events.v1", w.topicFor("reservation.checked_in"))

	w.TopicPrefix = "hotelier."
	assert.Equal(t, "hotelier.reservation.events.v1", w.topicFor("reservation.cancelled"))
}

func TestWorkerRequiresDependencies(t *testing.T) {
	w := &Worker{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx), ErrWorkerNotConfigured)
}
