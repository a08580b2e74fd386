package middleware_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelier/internal/app/commands"
	"hotelier/internal/app/middleware"
)

type bookCommand struct {
	ID      string
	IdemKey string
}

func (c bookCommand) Key() string            { return "test.book" }
func (c bookCommand) IdempotencyKey() string { return c.IdemKey }
func (c bookCommand) ResultPrototype() any   { return &bookResult{} }

type bookResult struct {
	ID string `json:"id"`
}

type plainCommand struct{}

func (plainCommand) Key() string { return "test.plain" }

type mapStore struct {
	mu    sync.Mutex
	items map[string]middleware.IdempotencyRecord
}

func newMapStore() *mapStore {
	return &mapStore{items: map[string]middleware.IdempotencyRecord{}}
}

func (s *mapStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *mapStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

type countingHandler struct {
	calls int
	err   error
}

func (h *countingHandler) Handle(ctx context.Context, cmd bookCommand) (*bookResult, error) {
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	return &bookResult{ID: cmd.ID}, nil
}

func newBus(handler *countingHandler, store middleware.IdempotencyStore) commands.Bus {
	base := commands.NewInMemoryBus()
	commands.RegisterHandler[bookCommand, *bookResult](base, bookCommand{}.Key(), handler)
	return middleware.ChainCommands(base, middleware.Idempotency(store, nil))
}

func TestIdempotencyReplaysFirstOutcome(t *testing.T) {
	handler := &countingHandler{}
	bus := newBus(handler, newMapStore())
	ctx := context.Background()

	first, err := commands.Dispatch[bookCommand, *bookResult](ctx, bus, bookCommand{ID: "res-1", IdemKey: "k1"})
	require.NoError(t, err)

	// Same key, different payload: the handler must not run again.
	second, err := commands.Dispatch[bookCommand, *bookResult](ctx, bus, bookCommand{ID: "res-2", IdemKey: "k1"})
	require.NoError(t, err)

	assert.Equal(t, 1, handler.calls)
	assert.Equal(t, first.ID, second.ID)
}

func TestIdempotencyReplaysStoredError(t *testing.T) {
	handler := &countingHandler{err: errors.New("room gone")}
	bus := newBus(handler, newMapStore())
	ctx := context.Background()

	_, err := commands.Dispatch[bookCommand, *bookResult](ctx, bus, bookCommand{ID: "res-1", IdemKey: "k1"})
	require.Error(t, err)

	handler.err = nil
	_, err = commands.Dispatch[bookCommand, *bookResult](ctx, bus, bookCommand{ID: "res-1", IdemKey: "k1"})
	require.Error(t, err, "stored failures replay too")
	assert.Equal(t, 1, handler.calls)
}

func TestIdempotencyWithoutKeyRunsEveryTime(t *testing.T) {
	handler := &countingHandler{}
	bus := newBus(handler, newMapStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := commands.Dispatch[bookCommand, *bookResult](ctx, bus, bookCommand{ID: "res-1"})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, handler.calls)
}

func TestIdempotencyIgnoresNonIdempotentCommands(t *testing.T) {
	base := commands.NewInMemoryBus()
	calls := 0
	base.RegisterRaw(plainCommand{}.Key(), func(ctx context.Context, cmd commands.Command) (any, error) {
		calls++
		return nil, nil
	})
	bus := middleware.ChainCommands(base, middleware.Idempotency(newMapStore(), nil))

	for i := 0; i < 2; i++ {
		_, err := bus.Dispatch(context.Background(), plainCommand{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}
