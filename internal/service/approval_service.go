package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// ApprovalService works the queue of tickets waiting for an approver.
type ApprovalService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	cfg        config.HelpdeskConfig
}

// ApprovalDependencies bundles collaborators for the approval service.
type ApprovalDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
	Config     config.HelpdeskConfig
}

// NewApprovalService creates the service.
func NewApprovalService(deps ApprovalDependencies) *ApprovalService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ApprovalService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
		cfg:        deps.Config,
	}
}

// Pending lists tickets whose approval is pending, in collection order.
// A user principal only sees the tickets routed to them.
func (s *ApprovalService) Pending(ctx context.Context, principal *domain.Principal) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := []domain.Ticket{}
	for _, t := range tickets {
		if t.PendingApproval() && mayDecide(principal, t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Approve releases a pending ticket into the open queue.
func (s *ApprovalService) Approve(ctx context.Context, principal *domain.Principal, id string) (*domain.Ticket, error) {
	return s.decide(ctx, principal, id, domain.ApprovalApproved, domain.TicketStatusOpen, "Ticket approved")
}

// Reject closes a pending ticket.
func (s *ApprovalService) Reject(ctx context.Context, principal *domain.Principal, id string) (*domain.Ticket, error) {
	return s.decide(ctx, principal, id, domain.ApprovalRejected, domain.TicketStatusClosed, "Ticket rejected")
}

func (s *ApprovalService) decide(ctx context.Context, principal *domain.Principal, id string, decision domain.ApprovalStatus, status domain.TicketStatus, details string) (*domain.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	if !ticket.PendingApproval() {
		return nil, apperrors.NewConflict("ticket is not awaiting approval", map[string]any{
			"ticket_id":       id,
			"approval_status": string(ticket.ApprovalStatus),
		})
	}
	if !mayDecide(principal, *ticket) {
		return nil, apperrors.NewForbidden("only the assigned approver can decide this ticket")
	}

	version := ticket.Version
	patch := domain.TicketPatch{
		ApprovalStatus:  &decision,
		Status:          &status,
		ExpectedVersion: &version,
	}
	if _, err := s.tickets.Update(ctx, id, patch); err != nil {
		return nil, mapRepoError(err, id)
	}

	actor := principal.Name()
	if actor == "" {
		actor = s.cfg.DefaultActor
	}
	collection, err := s.tickets.AppendActivity(ctx, id, domain.ActivityEntry{
		Type:    domain.ActivityStatusChanged,
		User:    actor,
		Details: details,
	})
	if err != nil {
		return nil, mapRepoError(err, id)
	}

	now := s.now()
	s.publish(ctx, events.New(events.EventApprovalDecided, id, actor, now, events.ApprovalDecidedPayload{Decision: decision}))
	if status != ticket.Status {
		s.publish(ctx, events.New(events.EventTicketStatusChanged, id, actor, now, events.TicketStatusChangedPayload{
			OldStatus: ticket.Status,
			NewStatus: status,
		}))
	}
	s.logger.Info("approval decided", zap.String("ticket_id", id), zap.String("decision", string(decision)))

	decided, ok := ticketIn(collection, id)
	if !ok {
		return nil, mapRepoError(repository.ErrTicketNotFound, id)
	}
	return decided, nil
}

// mayDecide reports whether principal can act on t's approval. Agents and
// the anonymous console can; users only for tickets naming them approver.
func mayDecide(principal *domain.Principal, t domain.Ticket) bool {
	if principal == nil || principal.IsAgent() {
		return true
	}
	return principal.User != nil && principal.User.ID == t.ApproverID
}

func (s *ApprovalService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("ticket_id", event.TicketID), zap.Error(err))
	}
}
