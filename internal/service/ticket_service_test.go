package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestCreateTicketDefaults(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()

	ticket, err := h.tickets.Create(ctx, nil, validInput())
	require.NoError(t, err)

	assert.Equal(t, "TKT-009", ticket.ID)
	assert.Equal(t, "Monitor will not wake up", ticket.Subject)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, "user-1", ticket.CreatedBy.ID)
	assert.Nil(t, ticket.AssignedTo)
	assert.Empty(t, ticket.Comments)
	require.Len(t, ticket.Activities, 1)
	assert.Equal(t, domain.ActivityCreated, ticket.Activities[0].Type)
	assert.Equal(t, "Current User", ticket.Activities[0].User)

	all, total, err := h.tickets.List(ctx, nil, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Equal(t, 9, total)
	assert.Equal(t, "TKT-009", all[0].ID)

	created := h.events.ofType(events.EventTicketCreated)
	require.Len(t, created, 1)
	assert.Equal(t, "TKT-009", created[0].TicketID)
}

func TestCreateTicketUsesSessionUser(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	principal := userPrincipal(t, h, "user-3")

	ticket, err := h.tickets.Create(context.Background(), principal, validInput())
	require.NoError(t, err)
	assert.Equal(t, "user-3", ticket.CreatedBy.ID)
	assert.Equal(t, "Mike Chen", ticket.Activities[0].User)
}

func TestCreateTicketValidation(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())

	tests := []struct {
		name   string
		mutate func(*service.CreateTicketInput)
		field  string
		msg    string
	}{
		{"blank subject", func(in *service.CreateTicketInput) { in.Subject = "   " }, "subject", "Subject is required"},
		{"short subject", func(in *service.CreateTicketInput) { in.Subject = "VPN" }, "subject", "Subject must be at least 5 characters"},
		{"blank description", func(in *service.CreateTicketInput) { in.Description = "" }, "description", "Description is required"},
		{"short description", func(in *service.CreateTicketInput) { in.Description = "It is broken." }, "description", "Please provide more details (at least 20 characters)"},
		{"missing category", func(in *service.CreateTicketInput) { in.Category = "" }, "category", "Please select a category"},
		{"unknown category", func(in *service.CreateTicketInput) { in.Category = "plumbing" }, "category", "Please select a category"},
		{"unknown priority", func(in *service.CreateTicketInput) { in.Priority = "urgent" }, "priority", "Please select a valid priority"},
		{"unknown requester", func(in *service.CreateTicketInput) { in.RequesterID = "user-99" }, "requesterId", "Unknown requester"},
		{"unknown approver", func(in *service.CreateTicketInput) { in.ApproverID = "user-99" }, "approverId", "Unknown approver"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := h.tickets.Create(context.Background(), nil, input)
			de := requireCode(t, err, apperrors.CodeValidationFailed)
			assert.Equal(t, tc.msg, de.Details[tc.field])
		})
	}

	_, total, err := h.tickets.List(context.Background(), nil, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Equal(t, 8, total)
}

func TestCreateTicketWithApproverWaitsForApproval(t *testing.T) {
	cfg := defaultHelpdesk()
	cfg.AutoAssign = true
	h := newHarness(t, cfg)
	ctx := context.Background()

	input := validInput()
	input.ApproverID = "user-4"
	input.RequestType = domain.RequestTypeServiceRequest
	ticket, err := h.tickets.Create(ctx, nil, input)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalPending, ticket.ApprovalStatus)
	assert.Nil(t, ticket.AssignedTo)

	listed, total, err := h.tickets.List(ctx, nil, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	for _, tk := range listed {
		assert.NotEqual(t, ticket.ID, tk.ID)
	}

	pending, err := h.approvals.Pending(ctx, nil)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ticket.ID, pending[0].ID)
}

func TestCreateTicketAutoAssigns(t *testing.T) {
	cfg := defaultHelpdesk()
	cfg.AutoAssign = true
	h := newHarness(t, cfg)

	input := validInput()
	input.Category = domain.CategoryEmail
	ticket, err := h.tickets.Create(context.Background(), nil, input)
	require.NoError(t, err)

	require.NotNil(t, ticket.AssignedTo)
	assert.Equal(t, "agent-2", ticket.AssignedTo.ID)
	require.NotEmpty(t, ticket.Activities)
	assert.Equal(t, domain.ActivityAssigned, ticket.Activities[0].Type)
	assert.Equal(t, "Jessica Lee", ticket.Activities[0].NewValue)

	assigned := h.events.ofType(events.EventTicketAssigned)
	require.Len(t, assigned, 1)
	payload, ok := assigned[0].Payload.(events.TicketAssignedPayload)
	require.True(t, ok)
	assert.True(t, payload.Automatic)
}

func TestCreateTicketCancelledDuringDelay(t *testing.T) {
	cfg := defaultHelpdesk()
	cfg.CreateDelayMS = 5000
	h := newHarness(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := h.tickets.Create(ctx, nil, validInput())
	requireCode(t, err, apperrors.CodeTimeout)

	_, total, err := h.tickets.List(context.Background(), nil, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Equal(t, 8, total)
}

func TestUpdateStatusLogsLabels(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()
	agent := agentPrincipal(t, h, "agent-1")

	updated, err := h.tickets.Update(ctx, agent, "TKT-001", service.UpdateTicketInput{Status: ptr(domain.TicketStatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.Len(t, updated.Activities, 1)
	entry := updated.Activities[0]
	assert.Equal(t, domain.ActivityStatusChanged, entry.Type)
	assert.Equal(t, "Open", entry.OldValue)
	assert.Equal(t, "In Progress", entry.NewValue)
	assert.Equal(t, "Alex Turner", entry.User)
	assert.True(t, !updated.UpdatedAt.Before(updated.CreatedAt))

	again, err := h.tickets.Update(ctx, agent, "TKT-001", service.UpdateTicketInput{Status: ptr(domain.TicketStatusInProgress)})
	require.NoError(t, err)
	assert.Len(t, again.Activities, 1, "same status logs nothing")
	assert.Len(t, h.events.ofType(events.EventTicketStatusChanged), 1)
}

func TestUpdatePriorityAndAssignee(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()

	updated, err := h.tickets.Update(ctx, nil, "TKT-006", service.UpdateTicketInput{
		Priority:   ptr(domain.TicketPriorityHigh),
		AssigneeID: ptr("agent-2"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "agent-2", updated.AssignedTo.ID)
	require.Len(t, updated.Activities, 2)
	assert.Equal(t, domain.ActivityAssigned, updated.Activities[0].Type)
	assert.Equal(t, "Jessica Lee", updated.Activities[0].NewValue)
	assert.Equal(t, domain.ActivityPriorityChanged, updated.Activities[1].Type)
	assert.Equal(t, "Low", updated.Activities[1].OldValue)
	assert.Equal(t, "High", updated.Activities[1].NewValue)

	cleared, err := h.tickets.Update(ctx, nil, "TKT-006", service.UpdateTicketInput{AssigneeID: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedTo)
	assert.Equal(t, "Unassigned", cleared.Activities[0].Details)
	assert.Equal(t, "Jessica Lee", cleared.Activities[0].OldValue)
}

func TestUpdateErrors(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()

	_, err := h.tickets.Update(ctx, nil, "TKT-404", service.UpdateTicketInput{Status: ptr(domain.TicketStatusClosed)})
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = h.tickets.Update(ctx, nil, "TKT-001", service.UpdateTicketInput{Status: ptr(domain.TicketStatus("bogus"))})
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = h.tickets.Update(ctx, nil, "TKT-001", service.UpdateTicketInput{AssigneeID: ptr("agent-99")})
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = h.tickets.Update(ctx, nil, "TKT-001", service.UpdateTicketInput{Priority: ptr(domain.TicketPriorityHigh)})
	require.NoError(t, err, "no change still succeeds")

	_, err = h.tickets.Update(ctx, nil, "TKT-001", service.UpdateTicketInput{
		Priority:        ptr(domain.TicketPriorityCritical),
		ExpectedVersion: ptr(int64(0)),
	})
	requireCode(t, err, apperrors.CodeConflict)
}

func TestInternalCommentsHiddenFromRequesters(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()
	requester := userPrincipal(t, h, "user-5")

	agentView, err := h.tickets.Get(ctx, nil, "TKT-005")
	require.NoError(t, err)
	userView, err := h.tickets.Get(ctx, requester, "TKT-005")
	require.NoError(t, err)

	assert.Len(t, userView.Comments, len(agentView.Comments)-1)
	for _, c := range userView.Comments {
		assert.False(t, c.IsInternal)
	}

	_, err = h.tickets.AddComment(ctx, requester, "TKT-005", service.CommentInput{Content: "secret", IsInternal: true})
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestAddCommentAndTimeline(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()

	_, err := h.tickets.Update(ctx, nil, "TKT-006", service.UpdateTicketInput{Status: ptr(domain.TicketStatusInProgress)})
	require.NoError(t, err)

	comment, err := h.tickets.AddComment(ctx, nil, "TKT-006", service.CommentInput{Content: "  Looking into it  ", IsInternal: true})
	require.NoError(t, err)
	assert.Equal(t, "Looking into it", comment.Content)
	assert.Equal(t, "agent-1", comment.Author.ID, "console comments are posted as the first agent")
	assert.Equal(t, "TKT-006", comment.TicketID)

	_, err = h.tickets.AddComment(ctx, nil, "TKT-006", service.CommentInput{Content: "   "})
	de := requireCode(t, err, apperrors.CodeValidationFailed)
	assert.Equal(t, "Comment cannot be empty", de.Details["content"])

	_, err = h.tickets.AddComment(ctx, nil, "TKT-404", service.CommentInput{Content: "hello"})
	requireCode(t, err, apperrors.CodeNotFound)

	detail, err := h.tickets.Detail(ctx, nil, "TKT-006")
	require.NoError(t, err)
	require.Len(t, detail.Timeline, 2)
	assert.Equal(t, service.TimelineComment, detail.Timeline[0].Kind)
	assert.Equal(t, service.TimelineActivity, detail.Timeline[1].Kind)
	assert.Equal(t, domain.TicketStatusInProgress, detail.Ticket.Status)

	added := h.events.ofType(events.EventTicketCommentAdded)
	require.Len(t, added, 1)
	payload := added[0].Payload.(events.TicketCommentAddedPayload)
	assert.True(t, payload.Internal)
}

func TestAppendActivity(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()

	ticket, err := h.tickets.AppendActivity(ctx, nil, "TKT-003", service.ActivityInput{Type: domain.ActivityReopened})
	require.NoError(t, err)
	require.Len(t, ticket.Activities, 1)
	assert.Equal(t, "Current User", ticket.Activities[0].User)
	assert.NotEmpty(t, ticket.Activities[0].ID)

	_, err = h.tickets.AppendActivity(ctx, nil, "TKT-003", service.ActivityInput{Type: "exploded"})
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = h.tickets.AppendActivity(ctx, nil, "TKT-404", service.ActivityInput{Type: domain.ActivityResolved})
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestSLAAndSuggestions(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()

	res, err := h.tickets.SLA(ctx, "TKT-003")
	require.NoError(t, err)
	assert.Equal(t, "completed", string(res.Kind))

	_, err = h.tickets.SLA(ctx, "TKT-404")
	requireCode(t, err, apperrors.CodeNotFound)

	suggestions, err := h.tickets.Suggestions(ctx, "TKT-001")
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.LessOrEqual(t, len(suggestions), service.DefaultSuggestionLimit)
	ids := make([]string, len(suggestions))
	for i, a := range suggestions {
		ids[i] = a.ID
	}
	assert.Contains(t, ids, "kb-001")
}

func TestResetRestoresFixtures(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()

	_, err := h.tickets.Create(ctx, nil, validInput())
	require.NoError(t, err)
	require.NoError(t, h.tickets.Reset(ctx))

	_, total, err := h.tickets.List(ctx, nil, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Equal(t, 8, total)
}

func TestListFiltersAndPages(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())

	page, total, err := h.tickets.List(context.Background(), nil, repository.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusInProgress},
		SortBy:   repository.SortID,
		Limit:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "TKT-002", page[0].ID)
	assert.Equal(t, "TKT-005", page[1].ID)
}
