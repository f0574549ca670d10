package analytics

import (
	"math"
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Slice is one bar of a distribution.
type Slice struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Breakdowns groups the three distributions shown on the analytics page.
type Breakdowns struct {
	Status   []Slice `json:"statusDistribution"`
	Priority []Slice `json:"priorityDistribution"`
	Category []Slice `json:"categoryDistribution"`
}

// Breakdown counts tickets per status and priority in their fixed order
// and per present category, most frequent first.
func Breakdown(tickets []domain.Ticket) Breakdowns {
	statusCounts := map[domain.TicketStatus]int{}
	priorityCounts := map[domain.TicketPriority]int{}
	categoryCounts := map[domain.TicketCategory]int{}
	for _, t := range tickets {
		statusCounts[t.Status]++
		priorityCounts[t.Priority]++
		categoryCounts[t.Category]++
	}

	out := Breakdowns{
		Status:   make([]Slice, 0, len(domain.TicketStatuses)),
		Priority: make([]Slice, 0, len(domain.TicketPriorities)),
		Category: make([]Slice, 0, len(categoryCounts)),
	}
	for _, s := range domain.TicketStatuses {
		out.Status = append(out.Status, Slice{Key: string(s), Name: s.Label(), Value: statusCounts[s]})
	}
	for _, p := range domain.TicketPriorities {
		out.Priority = append(out.Priority, Slice{Key: string(p), Name: p.Label(), Value: priorityCounts[p]})
	}
	for c, n := range categoryCounts {
		out.Category = append(out.Category, Slice{Key: string(c), Name: c.Label(), Value: n})
	}
	sort.Slice(out.Category, func(i, j int) bool {
		if out.Category[i].Value != out.Category[j].Value {
			return out.Category[i].Value > out.Category[j].Value
		}
		return out.Category[i].Key < out.Category[j].Key
	})
	return out
}

// Summary holds the analytics page figures.
type Summary struct {
	Total          int `json:"total"`
	Open           int `json:"open"`
	InProgress     int `json:"inProgress"`
	Resolved       int `json:"resolved"`
	Critical       int `json:"critical"`
	ResolutionRate int `json:"resolutionRate"`
}

// Analytics computes the summary. Critical skips closed tickets and the
// resolution rate is the rounded percentage of resolved or closed tickets.
func Analytics(tickets []domain.Ticket) Summary {
	s := Summary{Total: len(tickets)}
	completed := 0
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			s.Open++
		case domain.TicketStatusInProgress:
			s.InProgress++
		case domain.TicketStatusResolved:
			s.Resolved++
		}
		if t.Status.Completed() {
			completed++
		}
		if countsAsCritical(t, CriticalExcludingClosed) {
			s.Critical++
		}
	}
	if s.Total > 0 {
		s.ResolutionRate = int(math.Round(float64(completed) / float64(s.Total) * 100))
	}
	return s
}
