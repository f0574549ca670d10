package repository

import (
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Sort keys accepted by TicketFilter.SortBy.
const (
	SortNone      = ""
	SortCreatedAt = "created_at"
	SortUpdatedAt = "updated_at"
	SortPriority  = "priority"
	SortID        = "id"
)

// TicketFilter captures list and search parameters. Filtering runs over
// the collection in memory.
type TicketFilter struct {
	SearchTerm     string
	Statuses       []domain.TicketStatus
	Priorities     []domain.TicketPriority
	Categories     []domain.TicketCategory
	AssigneeID     string
	RequesterID    string
	IncludePending bool
	SortBy         string
	Descending     bool
	Limit          int
	Offset         int
}

// Matches reports whether t passes every clause of the filter.
func (f TicketFilter) Matches(t domain.Ticket) bool {
	if !f.IncludePending && t.PendingApproval() {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !contains(f.Priorities, t.Priority) {
		return false
	}
	if len(f.Categories) > 0 && !contains(f.Categories, t.Category) {
		return false
	}
	if f.AssigneeID != "" && (t.AssignedTo == nil || t.AssignedTo.ID != f.AssigneeID) {
		return false
	}
	if f.RequesterID != "" && t.CreatedBy.ID != f.RequesterID {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.SearchTerm)); term != "" {
		if !strings.Contains(strings.ToLower(t.ID), term) &&
			!strings.Contains(strings.ToLower(t.Subject), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	return true
}

// Apply filters, sorts and pages tickets. It returns the page and the
// number of matches before paging. Without SortBy the collection order is
// kept.
func (f TicketFilter) Apply(tickets []domain.Ticket) ([]domain.Ticket, int) {
	matched := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if f.Matches(t) {
			matched = append(matched, t)
		}
	}

	if less := f.less(); less != nil {
		sort.SliceStable(matched, func(i, j int) bool {
			if f.Descending {
				return less(matched[j], matched[i])
			}
			return less(matched[i], matched[j])
		})
	}

	total := len(matched)
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Ticket{}, total
	}
	end := total
	if f.Limit > 0 && offset+f.Limit < total {
		end = offset + f.Limit
	}
	return matched[offset:end], total
}

func (f TicketFilter) less() func(a, b domain.Ticket) bool {
	switch f.SortBy {
	case SortCreatedAt:
		return func(a, b domain.Ticket) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortUpdatedAt:
		return func(a, b domain.Ticket) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case SortPriority:
		return func(a, b domain.Ticket) bool { return a.Priority.Rank() < b.Priority.Rank() }
	case SortID:
		return func(a, b domain.Ticket) bool { return a.ID < b.ID }
	}
	return nil
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
