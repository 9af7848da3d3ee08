package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to subscribers of the event type", func(t *testing.T) {
		dispatcher := NewInMemoryDispatcher()

		var got []Event
		dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
			got = append(got, e)
			return nil
		})

		require.NoError(t, dispatcher.Publish(ctx, Event{Type: EventTicketCreated, TicketID: "INC-1"}))
		require.NoError(t, dispatcher.Publish(ctx, Event{Type: EventTicketStatusChanged, TicketID: "INC-1"}))

		require.Len(t, got, 1)
		assert.Equal(t, "INC-1", got[0].TicketID)
	})

	t.Run("a failing handler does not block the rest", func(t *testing.T) {
		dispatcher := NewInMemoryDispatcher()

		var second bool
		dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
			return errors.New("boom")
		})
		dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
			second = true
			return nil
		})

		require.NoError(t, dispatcher.Publish(ctx, Event{Type: EventTicketCreated}))
		assert.True(t, second)
	})
}
