package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"xubot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SubscribeAndEmit(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var mu sync.Mutex
	var received []Event
	done := make(chan struct{})

	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
		close(done)
	})

	bus.Emit(ctx, BalanceChangeEvent{
		UserID:          1,
		OldBalance:      1000,
		NewBalance:      1500,
		TransactionType: models.TransactionTypeBetWin,
		ChangeAmount:    500,
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	change, ok := received[0].(BalanceChangeEvent)
	require.True(t, ok)
	assert.Equal(t, int64(500), change.ChangeAmount)
}

func TestBus_EmitWithoutSubscribers(t *testing.T) {
	bus := NewBus()

	// Must not panic or block
	bus.Emit(context.Background(), AccountCreatedEvent{UserID: 1, InitialBalance: 1000})
}

func TestBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()
	done := make(chan struct{})

	bus.Subscribe(EventTypeBetResolved, func(ctx context.Context, event Event) {
		panic("handler bug")
	})
	bus.Subscribe(EventTypeBetResolved, func(ctx context.Context, event Event) {
		close(done)
	})

	bus.Emit(ctx, BetResolvedEvent{UserID: 1, Game: models.GameCoinFlip, Won: true})

	// The panicking handler must not take down the other one
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second handler was not invoked")
	}
}

func TestBus_OnlyMatchingTypeDispatched(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()
	invoked := make(chan EventType, 2)

	bus.Subscribe(EventTypeBiasChanged, func(ctx context.Context, event Event) {
		invoked <- event.Type()
	})

	bus.Emit(ctx, BalanceChangeEvent{UserID: 1})
	bus.Emit(ctx, BiasChangedEvent{UserID: 1, State: models.BiasStateUnlucky, Added: true})

	select {
	case eventType := <-invoked:
		assert.Equal(t, EventTypeBiasChanged, eventType)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	select {
	case eventType := <-invoked:
		t.Fatalf("unexpected second dispatch: %s", eventType)
	case <-time.After(50 * time.Millisecond):
	}
}
