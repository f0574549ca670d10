package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/sla"
)

// UpdateTicketRequest is the PATCH /tickets/:id payload. Omitted fields
// stay untouched; an empty assigneeId unassigns.
type UpdateTicketRequest struct {
	Subject     *string                `json:"subject"`
	Description *string                `json:"description"`
	Status      *domain.TicketStatus   `json:"status"`
	Priority    *domain.TicketPriority `json:"priority"`
	Category    *domain.TicketCategory `json:"category"`
	Department  *string                `json:"department"`
	RequestType *domain.RequestType    `json:"requestType"`
	AssigneeID  *string                `json:"assigneeId"`
	Version     *int64                 `json:"version"`
}

// ToInput converts the payload into a service input.
func (r UpdateTicketRequest) ToInput() service.UpdateTicketInput {
	return service.UpdateTicketInput{
		Subject:         r.Subject,
		Description:     r.Description,
		Status:          r.Status,
		Priority:        r.Priority,
		Category:        r.Category,
		Department:      r.Department,
		RequestType:     r.RequestType,
		AssigneeID:      r.AssigneeID,
		ExpectedVersion: r.Version,
	}
}

// TicketListResponse is one page of tickets.
type TicketListResponse struct {
	Items    []domain.Ticket `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// SLAResponse is the SLA badge.
type SLAResponse struct {
	Status    sla.Kind  `json:"status"`
	Label     string    `json:"label"`
	DueDate   time.Time `json:"dueDate"`
	Remaining int64     `json:"remainingSeconds"`
}

// NewSLAResponse maps an SLA result.
func NewSLAResponse(r sla.Result) SLAResponse {
	return SLAResponse{
		Status:    r.Kind,
		Label:     r.Label,
		DueDate:   r.Due,
		Remaining: int64(r.Remaining / time.Second),
	}
}

// TimelineItemResponse is one merged history entry.
type TimelineItemResponse struct {
	Kind     service.TimelineKind  `json:"kind"`
	At       time.Time             `json:"at"`
	Activity *domain.ActivityEntry `json:"activity,omitempty"`
	Comment  *domain.Comment       `json:"comment,omitempty"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	domain.Ticket
	SLA      SLAResponse            `json:"sla"`
	Timeline []TimelineItemResponse `json:"timeline"`
}

// NewTicketDetailResponse maps a service detail view.
func NewTicketDetailResponse(d *service.TicketDetail) TicketDetailResponse {
	items := make([]TimelineItemResponse, 0, len(d.Timeline))
	for _, it := range d.Timeline {
		items = append(items, TimelineItemResponse{
			Kind:     it.Kind,
			At:       it.At,
			Activity: it.Activity,
			Comment:  it.Comment,
		})
	}
	return TicketDetailResponse{
		Ticket:   d.Ticket,
		SLA:      NewSLAResponse(d.SLA),
		Timeline: items,
	}
}

// CategoryGroupResponse is one knowledge base category.
type CategoryGroupResponse struct {
	Category domain.TicketCategory     `json:"category"`
	Label    string                    `json:"label"`
	Articles []domain.KnowledgeArticle `json:"articles"`
}
