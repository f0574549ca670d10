package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPatch is returned when a patch carries an unknown enum value
// or blanks a required field.
var ErrInvalidPatch = errors.New("invalid ticket patch")

// TicketPatch enumerates the mutable ticket fields. Nil fields are left
// untouched.
type TicketPatch struct {
	Subject        *string
	Description    *string
	Status         *TicketStatus
	Priority       *TicketPriority
	Category       *TicketCategory
	Department     *string
	RequestType    *RequestType
	AssignedTo     *Agent
	ClearAssignee  bool
	ApproverID     *string
	ApprovalStatus *ApprovalStatus
	Attachments    *[]Attachment

	// ExpectedVersion, when set, makes the update fail unless the stored
	// ticket is at this version.
	ExpectedVersion *int64
}

// IsEmpty reports whether the patch changes nothing.
func (p TicketPatch) IsEmpty() bool {
	return p.Subject == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.Category == nil && p.Department == nil && p.RequestType == nil && p.AssignedTo == nil &&
		!p.ClearAssignee && p.ApproverID == nil && p.ApprovalStatus == nil && p.Attachments == nil
}

// Validate checks the patch before it is merged.
func (p TicketPatch) Validate() error {
	if p.Subject != nil && strings.TrimSpace(*p.Subject) == "" {
		return fmt.Errorf("%w: subject must not be blank", ErrInvalidPatch)
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return fmt.Errorf("%w: description must not be blank", ErrInvalidPatch)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidPatch, *p.Status)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidPatch, *p.Priority)
	}
	if p.Category != nil && !p.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidPatch, *p.Category)
	}
	if p.RequestType != nil && *p.RequestType != "" && !p.RequestType.Valid() {
		return fmt.Errorf("%w: unknown request type %q", ErrInvalidPatch, *p.RequestType)
	}
	if p.ApprovalStatus != nil && *p.ApprovalStatus != "" && !p.ApprovalStatus.Valid() {
		return fmt.Errorf("%w: unknown approval status %q", ErrInvalidPatch, *p.ApprovalStatus)
	}
	if p.AssignedTo != nil && p.ClearAssignee {
		return fmt.Errorf("%w: cannot assign and clear assignee together", ErrInvalidPatch)
	}
	return nil
}

// Apply merges the patch into t. Timestamps and version are the caller's
// concern.
func (p TicketPatch) Apply(t *Ticket) {
	if p.Subject != nil {
		t.Subject = *p.Subject
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Department != nil {
		t.Department = *p.Department
	}
	if p.RequestType != nil {
		t.RequestType = *p.RequestType
	}
	if p.AssignedTo != nil {
		agent := p.AssignedTo.clone()
		t.AssignedTo = &agent
	}
	if p.ClearAssignee {
		t.AssignedTo = nil
	}
	if p.ApproverID != nil {
		t.ApproverID = *p.ApproverID
	}
	if p.ApprovalStatus != nil {
		t.ApprovalStatus = *p.ApprovalStatus
	}
	if p.Attachments != nil {
		t.Attachments = append([]Attachment(nil), (*p.Attachments)...)
	}
}
