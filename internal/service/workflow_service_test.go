package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/analytics"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/fixtures"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func createPending(t *testing.T, h *harness) *domain.Ticket {
	t.Helper()
	input := validInput()
	input.ApproverID = "user-4"
	ticket, err := h.tickets.Create(context.Background(), nil, input)
	require.NoError(t, err)
	return ticket
}

func TestApproveOpensTicket(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()
	pending := createPending(t, h)

	approved, err := h.approvals.Approve(ctx, nil, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApproved, approved.ApprovalStatus)
	assert.Equal(t, domain.TicketStatusOpen, approved.Status)
	assert.Equal(t, domain.ActivityStatusChanged, approved.Activities[0].Type)
	assert.Equal(t, "Ticket approved", approved.Activities[0].Details)
	assert.Equal(t, "Current User", approved.Activities[0].User)

	left, err := h.approvals.Pending(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = h.approvals.Approve(ctx, nil, pending.ID)
	requireCode(t, err, apperrors.CodeConflict)

	decided := h.events.ofType(events.EventApprovalDecided)
	require.Len(t, decided, 1)
	assert.Empty(t, h.events.ofType(events.EventTicketStatusChanged), "open stays open")
}

func TestRejectClosesTicket(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()
	pending := createPending(t, h)

	rejected, err := h.approvals.Reject(ctx, userPrincipal(t, h, "user-4"), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalRejected, rejected.ApprovalStatus)
	assert.Equal(t, domain.TicketStatusClosed, rejected.Status)
	assert.Equal(t, "Ticket rejected", rejected.Activities[0].Details)
	assert.Equal(t, "Emily Davis", rejected.Activities[0].User)
	assert.Len(t, h.events.ofType(events.EventTicketStatusChanged), 1)

	_, err = h.approvals.Reject(ctx, nil, "TKT-001")
	requireCode(t, err, apperrors.CodeConflict)
	_, err = h.approvals.Reject(ctx, nil, "TKT-404")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestOnlyNamedApproverMayDecide(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()
	pending := createPending(t, h)

	requester := userPrincipal(t, h, "user-1")
	queue, err := h.approvals.Pending(ctx, requester)
	require.NoError(t, err)
	assert.Empty(t, queue)

	_, err = h.approvals.Approve(ctx, requester, pending.ID)
	requireCode(t, err, apperrors.CodeForbidden)
	_, err = h.approvals.Reject(ctx, requester, pending.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	stored, err := h.tickets.Get(ctx, nil, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalPending, stored.ApprovalStatus)
	assert.Empty(t, h.events.ofType(events.EventApprovalDecided))

	approver := userPrincipal(t, h, "user-4")
	queue, err = h.approvals.Pending(ctx, approver)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, pending.ID, queue[0].ID)

	queue, err = h.approvals.Pending(ctx, agentPrincipal(t, h, "agent-1"))
	require.NoError(t, err)
	assert.Len(t, queue, 1)

	approved, err := h.approvals.Approve(ctx, approver, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApproved, approved.ApprovalStatus)
}

func TestSelectAgentPrefersLeastLoaded(t *testing.T) {
	agents := []domain.Agent{
		{ID: "a", Name: "A", Specialization: []string{"network"}},
		{ID: "b", Name: "B", Specialization: []string{"network", "email"}},
		{ID: "c", Name: "C", Specialization: []string{"email"}},
	}
	a, b := agents[0], agents[1]
	tickets := []domain.Ticket{
		{ID: "1", Status: domain.TicketStatusOpen, AssignedTo: &a},
		{ID: "2", Status: domain.TicketStatusInProgress, AssignedTo: &a},
		{ID: "3", Status: domain.TicketStatusOpen, AssignedTo: &b},
		{ID: "4", Status: domain.TicketStatusClosed, AssignedTo: &b},
		{ID: "5", Status: domain.TicketStatusResolved, AssignedTo: &b},
	}

	got, ok := service.SelectAgent(agents, tickets, domain.CategoryNetwork)
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)

	got, ok = service.SelectAgent(agents, tickets, domain.CategoryEmail)
	require.True(t, ok)
	assert.Equal(t, "c", got.ID)

	_, ok = service.SelectAgent(agents, tickets, domain.CategoryOther)
	assert.False(t, ok)
}

func TestAutoAssignSkipsAssignedAndUnhandled(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()

	same, err := h.assigner.AutoAssign(ctx, "TKT-001")
	require.NoError(t, err)
	assert.Equal(t, "agent-1", same.AssignedTo.ID)

	input := validInput()
	input.Category = domain.CategoryOther
	ticket, err := h.tickets.Create(ctx, nil, input)
	require.NoError(t, err)
	none, err := h.assigner.AutoAssign(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = h.assigner.AutoAssign(ctx, "TKT-404")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestKnowledgeService(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()

	byTag, err := h.knowledge.Search(ctx, "phishing", "")
	require.NoError(t, err)
	require.NotEmpty(t, byTag)
	assert.Equal(t, "kb-004", byTag[0].ID)

	network, err := h.knowledge.Search(ctx, "", domain.CategoryNetwork)
	require.NoError(t, err)
	require.Len(t, network, 1)

	_, err = h.knowledge.Search(ctx, "", "plumbing")
	requireCode(t, err, apperrors.CodeValidationFailed)

	groups, err := h.knowledge.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 6)

	before := network[0].Views
	viewed, err := h.knowledge.View(ctx, "kb-001")
	require.NoError(t, err)
	assert.Equal(t, before+1, viewed.Views)

	helpful, err := h.knowledge.MarkHelpful(ctx, "kb-001")
	require.NoError(t, err)
	assert.Equal(t, network[0].Helpful+1, helpful.Helpful)

	_, err = h.knowledge.View(ctx, "kb-404")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestSuggestArticlesOrdersByHelpful(t *testing.T) {
	ticket := domain.Ticket{
		Subject:     "Outlook password prompt",
		Description: "Outlook keeps asking for my password on the phone",
		Category:    domain.CategoryEmail,
	}
	got := service.SuggestArticles(fixtures.Articles(), ticket, 0)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Helpful, got[i].Helpful)
	}
	ids := map[string]bool{}
	for _, a := range got {
		ids[a.ID] = true
	}
	assert.True(t, ids["kb-002"], "password tag")
	assert.True(t, ids["kb-003"], "email category")
	assert.False(t, ids["kb-006"])

	assert.Len(t, service.SuggestArticles(fixtures.Articles(), ticket, 1), 1)
}

func TestSearchServiceCombinesResults(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	search := service.NewSearchService(h.tickets, h.knowledge)
	ctx := context.Background()

	results, err := search.Search(ctx, nil, "vpn")
	require.NoError(t, err)
	require.Len(t, results.Tickets, 1)
	assert.Equal(t, "TKT-001", results.Tickets[0].ID)
	require.NotEmpty(t, results.Articles)
	assert.Equal(t, "kb-001", results.Articles[0].ID)

	empty, err := search.Search(ctx, nil, "   ")
	require.NoError(t, err)
	assert.Empty(t, empty.Tickets)
	assert.Empty(t, empty.Articles)
}

func TestDashboardService(t *testing.T) {
	h := newHarness(t, defaultHelpdesk())
	ctx := context.Background()

	stats, err := h.dashboard.Stats(ctx, analytics.StatsOptions{})
	require.NoError(t, err)
	assert.Equal(t, 8, stats.TotalTickets)
	assert.Equal(t, 3, stats.OpenTickets)
	assert.Equal(t, 3, stats.InProgressTickets)
	assert.Equal(t, 1, stats.CriticalTickets)

	recent, err := h.dashboard.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, recent, service.RecentTicketCount)
	assert.Equal(t, "TKT-001", recent[0].ID)

	volume, err := h.dashboard.Volume(ctx, 7)
	require.NoError(t, err)
	require.Len(t, volume, 7)
	assert.Equal(t, "2026-01-28", volume[6].Date)

	_, err = h.dashboard.Volume(ctx, -1)
	requireCode(t, err, apperrors.CodeValidationFailed)

	var buf bytes.Buffer
	name, err := h.dashboard.WriteReport(ctx, &buf, analytics.StatsOptions{})
	require.NoError(t, err)
	assert.Equal(t, "analytics-report-2026-01-28.xlsx", name)
	assert.NotZero(t, buf.Len())
}
