// Package analytics computes dashboard figures over a ticket collection.
// Every function is a pure scan of its input.
package analytics

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AvgResponseTime is shown on the dashboard. It is not derived from data.
const AvgResponseTime = "2h 15m"

// CriticalRule selects which critical tickets are counted. Both rules
// are in use and callers pick one.
type CriticalRule int

const (
	// CriticalAll counts every ticket with critical priority.
	CriticalAll CriticalRule = iota
	// CriticalExcludingClosed skips closed critical tickets.
	CriticalExcludingClosed
)

// ResolvedTodayRule selects which statuses count as resolved today.
type ResolvedTodayRule int

const (
	// ResolvedOrClosed counts resolved and closed tickets.
	ResolvedOrClosed ResolvedTodayRule = iota
	// ResolvedOnly counts resolved tickets.
	ResolvedOnly
)

// StatsOptions tunes Stats.
type StatsOptions struct {
	Critical      CriticalRule
	ResolvedToday ResolvedTodayRule
	// Location decides the calendar day of "today". Nil means UTC.
	Location *time.Location
}

// DashboardStats are the dashboard headline figures.
type DashboardStats struct {
	OpenTickets       int    `json:"openTickets"`
	InProgressTickets int    `json:"inProgressTickets"`
	ResolvedToday     int    `json:"resolvedToday"`
	AvgResponseTime   string `json:"avgResponseTime"`
	CriticalTickets   int    `json:"criticalTickets"`
	TotalTickets      int    `json:"totalTickets"`
}

const dateLayout = "2006-01-02"

func calendarDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dateLayout)
}

// Stats computes the headline figures at now.
func Stats(tickets []domain.Ticket, now time.Time, opts StatsOptions) DashboardStats {
	today := calendarDay(now, opts.Location)
	stats := DashboardStats{
		AvgResponseTime: AvgResponseTime,
		TotalTickets:    len(tickets),
	}

	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.OpenTickets++
		case domain.TicketStatusInProgress:
			stats.InProgressTickets++
		}
		if countsAsResolved(t.Status, opts.ResolvedToday) && calendarDay(t.UpdatedAt, opts.Location) == today {
			stats.ResolvedToday++
		}
		if countsAsCritical(t, opts.Critical) {
			stats.CriticalTickets++
		}
	}
	return stats
}

func countsAsResolved(status domain.TicketStatus, rule ResolvedTodayRule) bool {
	if rule == ResolvedOnly {
		return status == domain.TicketStatusResolved
	}
	return status.Completed()
}

func countsAsCritical(t domain.Ticket, rule CriticalRule) bool {
	if t.Priority != domain.TicketPriorityCritical {
		return false
	}
	return rule == CriticalAll || t.Status != domain.TicketStatusClosed
}

// VolumePoint is one day of the creation histogram.
type VolumePoint struct {
	Date    string `json:"date"`
	Tickets int    `json:"tickets"`
}

// DefaultVolumeDays is the window used when none is given.
const DefaultVolumeDays = 30

// Volume counts tickets created on each of the trailing windowDays UTC
// calendar days, oldest first, ending today.
func Volume(tickets []domain.Ticket, windowDays int, now time.Time) []VolumePoint {
	if windowDays <= 0 {
		windowDays = DefaultVolumeDays
	}

	counts := make(map[string]int, len(tickets))
	for _, t := range tickets {
		counts[calendarDay(t.CreatedAt, time.UTC)]++
	}

	today := now.UTC()
	points := make([]VolumePoint, 0, windowDays)
	for i := windowDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(dateLayout)
		points = append(points, VolumePoint{Date: day, Tickets: counts[day]})
	}
	return points
}
