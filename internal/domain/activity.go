package domain

import "time"

// ActivityType captures what an activity entry records.
type ActivityType string

const (
	ActivityCreated         ActivityType = "created"
	ActivityStatusChanged   ActivityType = "status_changed"
	ActivityPriorityChanged ActivityType = "priority_changed"
	ActivityAssigned        ActivityType = "assigned"
	ActivityCommentAdded    ActivityType = "comment_added"
	ActivityResolved        ActivityType = "resolved"
	ActivityReopened        ActivityType = "reopened"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityCreated, ActivityStatusChanged, ActivityPriorityChanged, ActivityAssigned,
		ActivityCommentAdded, ActivityResolved, ActivityReopened:
		return true
	}
	return false
}

// ActivityEntry is an immutable audit trail entry. Tickets keep them
// newest-first.
type ActivityEntry struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	User      string       `json:"user"`
	Details   string       `json:"details,omitempty"`
	OldValue  string       `json:"oldValue,omitempty"`
	NewValue  string       `json:"newValue,omitempty"`
}
