package sla_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/fixtures"
	"github.com/spec-kit/helpdesk-service/internal/sla"
)

var created = time.Date(2026, 1, 27, 8, 0, 0, 0, time.UTC)

func ticket(priority domain.TicketPriority, status domain.TicketStatus) domain.Ticket {
	return domain.Ticket{ID: "TKT-100", Priority: priority, Status: status, CreatedAt: created, UpdatedAt: created}
}

func TestDueDateAddsPriorityWindow(t *testing.T) {
	want := map[domain.TicketPriority]time.Duration{
		domain.TicketPriorityCritical: 4 * time.Hour,
		domain.TicketPriorityHigh:     24 * time.Hour,
		domain.TicketPriorityMedium:   72 * time.Hour,
		domain.TicketPriorityLow:      168 * time.Hour,
	}
	for priority, window := range want {
		tk := ticket(priority, domain.TicketStatusOpen)
		assert.Equal(t, window, sla.DueDate(tk).Sub(tk.CreatedAt), priority)
	}
	for _, tk := range fixtures.Tickets() {
		assert.Equal(t, want[tk.Priority], sla.DueDate(tk).Sub(tk.CreatedAt), tk.ID)
	}
}

func TestCompletedIgnoresDueDate(t *testing.T) {
	for _, status := range []domain.TicketStatus{domain.TicketStatusResolved, domain.TicketStatusClosed} {
		for _, offset := range []time.Duration{-time.Hour, 0, time.Hour, 30 * 24 * time.Hour} {
			res := sla.Status(ticket(domain.TicketPriorityCritical, status), created.Add(offset))
			assert.Equal(t, sla.KindCompleted, res.Kind)
			assert.Equal(t, "Completed", res.Label)
		}
	}
}

func TestPartitionBoundaries(t *testing.T) {
	tk := ticket(domain.TicketPriorityHigh, domain.TicketStatusInProgress)
	due := sla.DueDate(tk)

	cases := []struct {
		name string
		now  time.Time
		kind sla.Kind
	}{
		{name: "one nanosecond past due", now: due.Add(time.Nanosecond), kind: sla.KindOverdue},
		{name: "exactly due", now: due, kind: sla.KindCritical},
		{name: "just under four hours left", now: due.Add(-sla.CriticalWindow + time.Nanosecond), kind: sla.KindCritical},
		{name: "exactly four hours left", now: due.Add(-sla.CriticalWindow), kind: sla.KindOnTrack},
		{name: "just created", now: created, kind: sla.KindOnTrack},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := sla.Status(tk, tc.now)
			assert.Equal(t, tc.kind, res.Kind)
			assert.Equal(t, due, res.Due)
			assert.Equal(t, due.Sub(tc.now), res.Remaining)
		})
	}
}

func TestEveryOpenTicketHasExactlyOneKind(t *testing.T) {
	tk := ticket(domain.TicketPriorityCritical, domain.TicketStatusOpen)
	for offset := -2 * time.Hour; offset <= 8*time.Hour; offset += 7 * time.Minute {
		res := sla.Status(tk, created.Add(offset))
		remaining := res.Remaining
		switch res.Kind {
		case sla.KindOverdue:
			assert.Less(t, remaining, time.Duration(0))
		case sla.KindCritical:
			assert.GreaterOrEqual(t, remaining, time.Duration(0))
			assert.Less(t, remaining, sla.CriticalWindow)
		case sla.KindOnTrack:
			assert.GreaterOrEqual(t, remaining, sla.CriticalWindow)
		default:
			t.Fatalf("unexpected kind %q", res.Kind)
		}
	}
}

func TestLabels(t *testing.T) {
	tk := ticket(domain.TicketPriorityCritical, domain.TicketStatusOpen)
	due := sla.DueDate(tk)

	assert.Equal(t, "3h 15m left", sla.Status(tk, due.Add(-3*time.Hour-15*time.Minute-20*time.Second)).Label)
	assert.Equal(t, "0h 0m left", sla.Status(tk, due).Label)
	assert.Equal(t, "3 hours overdue", sla.Status(tk, due.Add(3*time.Hour)).Label)
	assert.Equal(t, "less than a second overdue", sla.Status(tk, due.Add(time.Nanosecond)).Label)
	assert.Equal(t, "less than a second overdue", sla.Status(tk, due.Add(500*time.Millisecond)).Label)
	assert.Equal(t, "1 second overdue", sla.Status(tk, due.Add(time.Second)).Label)

	low := ticket(domain.TicketPriorityLow, domain.TicketStatusOpen)
	assert.Equal(t, "2 days from now", sla.Status(low, sla.DueDate(low).Add(-48*time.Hour)).Label)
}

func TestUnknownPriorityUsesMediumWindow(t *testing.T) {
	tk := ticket(domain.TicketPriority("urgent"), domain.TicketStatusOpen)
	assert.Equal(t, 72*time.Hour, sla.DueDate(tk).Sub(created))
}
