package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

func TestDispatcherRunsEveryHandler(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	boom := errors.New("boom")

	var calls []string
	d.Subscribe(events.EventTicketCreated, func(_ context.Context, e events.Event) error {
		calls = append(calls, "first:"+e.TicketID)
		return boom
	})
	d.Subscribe(events.EventTicketCreated, func(_ context.Context, e events.Event) error {
		calls = append(calls, "second:"+e.TicketID)
		return nil
	})
	d.Subscribe(events.EventTicketAssigned, func(context.Context, events.Event) error {
		calls = append(calls, "assigned")
		return nil
	})

	evt := events.New(events.EventTicketCreated, "TKT-009", "John Smith", time.Now(), nil)
	err := d.Publish(context.Background(), evt)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first:TKT-009", "second:TKT-009"}, calls)
	assert.NotEmpty(t, evt.ID)
}

func TestDispatcherWithoutListeners(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), events.Event{Type: events.EventApprovalDecided}))
}
