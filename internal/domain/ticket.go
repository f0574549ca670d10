package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists statuses in display order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Completed reports whether the ticket no longer needs work.
func (s TicketStatus) Completed() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// Label returns the display label used in activity entries.
func (s TicketStatus) Label() string {
	switch s {
	case TicketStatusOpen:
		return "Open"
	case TicketStatusInProgress:
		return "In Progress"
	case TicketStatusResolved:
		return "Resolved"
	case TicketStatusClosed:
		return "Closed"
	}
	return string(s)
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// TicketPriorities lists priorities from least to most urgent.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityCritical,
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Rank orders priorities, higher is more urgent. Unknown priorities rank 0.
func (p TicketPriority) Rank() int {
	for i, candidate := range TicketPriorities {
		if candidate == p {
			return i + 1
		}
	}
	return 0
}

// Label returns the display label.
func (p TicketPriority) Label() string {
	switch p {
	case TicketPriorityLow:
		return "Low"
	case TicketPriorityMedium:
		return "Medium"
	case TicketPriorityHigh:
		return "High"
	case TicketPriorityCritical:
		return "Critical"
	}
	return string(p)
}

// TicketCategory groups tickets by IT area.
type TicketCategory string

const (
	CategoryHardware TicketCategory = "hardware"
	CategorySoftware TicketCategory = "software"
	CategoryNetwork  TicketCategory = "network"
	CategoryEmail    TicketCategory = "email"
	CategorySecurity TicketCategory = "security"
	CategoryAccess   TicketCategory = "access"
	CategoryOther    TicketCategory = "other"
)

// TicketCategories lists every category.
var TicketCategories = []TicketCategory{
	CategoryHardware,
	CategorySoftware,
	CategoryNetwork,
	CategoryEmail,
	CategorySecurity,
	CategoryAccess,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c TicketCategory) Valid() bool {
	for _, candidate := range TicketCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// Label returns the display label.
func (c TicketCategory) Label() string {
	if c == "" {
		return ""
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// RequestType classifies what the requester is asking for.
type RequestType string

const (
	RequestTypeIncident       RequestType = "incident"
	RequestTypeServiceRequest RequestType = "service_request"
	RequestTypeProblem        RequestType = "problem"
	RequestTypeChangeRequest  RequestType = "change_request"
)

// Valid reports whether r is a known request type.
func (r RequestType) Valid() bool {
	switch r {
	case RequestTypeIncident, RequestTypeServiceRequest, RequestTypeProblem, RequestTypeChangeRequest:
		return true
	}
	return false
}

// ApprovalStatus tracks tickets routed to an approver.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Valid reports whether a is a known approval status.
func (a ApprovalStatus) Valid() bool {
	switch a {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. JSON names match the
// persisted collection layout.
type Ticket struct {
	ID             string          `json:"id"`
	Subject        string          `json:"subject"`
	Description    string          `json:"description"`
	Status         TicketStatus    `json:"status"`
	Priority       TicketPriority  `json:"priority"`
	Category       TicketCategory  `json:"category"`
	Department     string          `json:"department,omitempty"`
	RequestType    RequestType     `json:"requestType,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	AssignedTo     *Agent          `json:"assignedTo,omitempty"`
	CreatedBy      User            `json:"createdBy"`
	ApproverID     string          `json:"approverId,omitempty"`
	ApprovalStatus ApprovalStatus  `json:"approvalStatus,omitempty"`
	Comments       []Comment       `json:"comments"`
	Activities     []ActivityEntry `json:"activities,omitempty"`
	Attachments    []Attachment    `json:"attachments,omitempty"`
	Version        int64           `json:"version,omitempty"`
}

// PendingApproval reports whether the ticket waits for an approver.
func (t *Ticket) PendingApproval() bool {
	return t.ApprovalStatus == ApprovalPending
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (t Ticket) Clone() Ticket {
	out := t
	if t.AssignedTo != nil {
		agent := t.AssignedTo.clone()
		out.AssignedTo = &agent
	}
	out.CreatedBy = t.CreatedBy
	if t.Comments != nil {
		out.Comments = make([]Comment, len(t.Comments))
		for i, c := range t.Comments {
			out.Comments[i] = c.clone()
		}
	}
	if t.Activities != nil {
		out.Activities = append([]ActivityEntry(nil), t.Activities...)
	}
	if t.Attachments != nil {
		out.Attachments = append([]Attachment(nil), t.Attachments...)
	}
	return out
}

// CloneTickets deep-copies a collection.
func CloneTickets(tickets []Ticket) []Ticket {
	if tickets == nil {
		return nil
	}
	out := make([]Ticket, len(tickets))
	for i := range tickets {
		out[i] = tickets[i].Clone()
	}
	return out
}
