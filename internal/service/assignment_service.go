package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// autoAssignActor names the system in activity entries it writes.
const autoAssignActor = "Auto-assignment"

// AssignmentService routes tickets to agents.
type AssignmentService struct {
	tickets    repository.TicketRepository
	directory  repository.Directory
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo repository.TicketRepository
	Directory  repository.Directory
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
	}
}

// AutoAssign gives an unassigned ticket to the least loaded agent
// specialised in its category. It returns the ticket unchanged when it is
// already assigned and nil when no agent handles the category.
func (s *AssignmentService) AutoAssign(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, mapRepoError(err, ticketID)
	}
	if ticket.AssignedTo != nil {
		return ticket, nil
	}

	agents, err := s.directory.Agents(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	collection, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	agent, ok := SelectAgent(agents, collection, ticket.Category)
	if !ok {
		s.logger.Debug("no agent handles category",
			zap.String("ticket_id", ticketID),
			zap.String("category", string(ticket.Category)))
		return nil, nil
	}

	version := ticket.Version
	if _, err := s.tickets.Update(ctx, ticketID, domain.TicketPatch{AssignedTo: &agent, ExpectedVersion: &version}); err != nil {
		return nil, mapRepoError(err, ticketID)
	}
	collection, err = s.tickets.AppendActivity(ctx, ticketID, domain.ActivityEntry{
		Type:     domain.ActivityAssigned,
		User:     autoAssignActor,
		NewValue: agent.Name,
	})
	if err != nil {
		return nil, mapRepoError(err, ticketID)
	}

	if s.dispatcher != nil {
		event := events.New(events.EventTicketAssigned, ticketID, autoAssignActor, s.now(), events.TicketAssignedPayload{
			AgentID:   agent.ID,
			AgentName: agent.Name,
			Automatic: true,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish event failed", zap.String("ticket_id", ticketID), zap.Error(err))
		}
	}
	s.logger.Info("ticket auto-assigned", zap.String("ticket_id", ticketID), zap.String("agent_id", agent.ID))

	assigned, ok := ticketIn(collection, ticketID)
	if !ok {
		return nil, mapRepoError(repository.ErrTicketNotFound, ticketID)
	}
	return assigned, nil
}

// SelectAgent picks the agent specialised in category with the fewest
// open or in-progress tickets. Ties go to the agent listed first.
func SelectAgent(agents []domain.Agent, tickets []domain.Ticket, category domain.TicketCategory) (domain.Agent, bool) {
	load := make(map[string]int, len(agents))
	for _, t := range tickets {
		if t.AssignedTo == nil || t.Status.Completed() {
			continue
		}
		load[t.AssignedTo.ID]++
	}

	var (
		best  domain.Agent
		found bool
	)
	for _, a := range agents {
		if !a.Handles(category) {
			continue
		}
		if !found || load[a.ID] < load[best.ID] {
			best, found = a, true
		}
	}
	return best, found
}
