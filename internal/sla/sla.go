// Package sla derives due dates and SLA standing from ticket priority.
package sla

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Kind is the SLA standing of a ticket.
type Kind string

const (
	KindCompleted Kind = "completed"
	KindOverdue   Kind = "overdue"
	KindCritical  Kind = "critical"
	KindOnTrack   Kind = "on-track"
)

// CriticalWindow is the remaining time under which an open ticket is
// flagged critical.
const CriticalWindow = 4 * time.Hour

// Durations maps priority to the resolution window.
var Durations = map[domain.TicketPriority]time.Duration{
	domain.TicketPriorityCritical: 4 * time.Hour,
	domain.TicketPriorityHigh:     24 * time.Hour,
	domain.TicketPriorityMedium:   72 * time.Hour,
	domain.TicketPriorityLow:      168 * time.Hour,
}

// relMagnitudes is the humanize default table with the sub-second "now"
// replaced, so a label always carries its direction.
var relMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "less than a second %s", DivBy: 1},
	{D: 2 * time.Second, Format: "1 second %s", DivBy: 1},
	{D: time.Minute, Format: "%d seconds %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: 1},
	{D: humanize.Day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 day %s", DivBy: 1},
	{D: humanize.Week, Format: "%d days %s", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "1 week %s", DivBy: 1},
	{D: humanize.Month, Format: "%d weeks %s", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "1 month %s", DivBy: 1},
	{D: humanize.Year, Format: "%d months %s", DivBy: humanize.Month},
	{D: 18 * humanize.Month, Format: "1 year %s", DivBy: 1},
	{D: 2 * humanize.Year, Format: "2 years %s", DivBy: 1},
	{D: humanize.LongTime, Format: "%d years %s", DivBy: humanize.Year},
	{D: math.MaxInt64, Format: "a long while %s", DivBy: 1},
}

// Duration returns the window for p. Unknown priorities get the medium
// window.
func Duration(p domain.TicketPriority) time.Duration {
	if d, ok := Durations[p]; ok {
		return d
	}
	return Durations[domain.TicketPriorityMedium]
}

// DueDate is createdAt plus the priority window.
func DueDate(t domain.Ticket) time.Time {
	return t.CreatedAt.Add(Duration(t.Priority))
}

// Result describes where a ticket stands against its SLA.
type Result struct {
	Kind      Kind          `json:"status"`
	Label     string        `json:"label"`
	Due       time.Time     `json:"dueDate"`
	Remaining time.Duration `json:"-"`
}

// Status classifies t at now. Resolved and closed tickets are completed
// whatever the due date.
func Status(t domain.Ticket, now time.Time) Result {
	due := DueDate(t)
	remaining := due.Sub(now)
	res := Result{Due: due, Remaining: remaining}

	switch {
	case t.Status.Completed():
		res.Kind = KindCompleted
		res.Label = "Completed"
	case remaining < 0:
		res.Kind = KindOverdue
		res.Label = humanize.CustomRelTime(due, now, "overdue", "", relMagnitudes)
	case remaining < CriticalWindow:
		res.Kind = KindCritical
		hours := int(remaining / time.Hour)
		minutes := int(remaining/time.Minute) % 60
		res.Label = fmt.Sprintf("%dh %dm left", hours, minutes)
	default:
		res.Kind = KindOnTrack
		res.Label = humanize.CustomRelTime(due, now, "", "from now", relMagnitudes)
	}
	return res
}
