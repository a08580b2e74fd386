package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "hotelier/internal/app/outbox"
	infraoutbox "hotelier/internal/infra/outbox"
)

// Outbox buffers event records in memory. Flush publishes staged records to
// the relay queue, so the same worker loop drains it as the durable store.
type Outbox struct {
	mu     sync.Mutex
	staged []appoutbox.EventRecord
	queue  []*infraoutbox.EventDocument
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged = append(o.staged, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, rec := range o.staged {
		o.queue = append(o.queue, &infraoutbox.EventDocument{
			ID:          rec.ID,
			Name:        rec.Name,
			Payload:     rec.Payload,
			OccurredAt:  rec.OccurredAt,
			Aggregate:   rec.Aggregate,
			Headers:     rec.Headers,
			NextAttempt: now,
		})
	}
	o.staged = nil
	return nil
}

// Claim hands out the first entry due for delivery.
func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, doc := range o.queue {
		if doc.ClaimedBy != "" || doc.NextAttempt.After(now) {
			continue
		}
		doc.ClaimedBy = workerID
		doc.ClaimedAt = now
		return doc, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, doc := range o.queue {
		if doc.ID == id {
			o.queue = append(o.queue[:i], o.queue[i+1:]...)
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.queue {
		if doc.ID == id {
			doc.ClaimedBy = ""
			doc.Attempts++
			doc.NextAttempt = next
			doc.LastError = errMsg
			return nil
		}
	}
	return nil
}

var (
	_ appoutbox.Outbox        = (*Outbox)(nil)
	_ infraoutbox.RelaySource = (*Outbox)(nil)
)
