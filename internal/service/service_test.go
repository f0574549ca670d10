package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/fixtures"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/storage"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

var testStart = time.Date(2026, 1, 28, 12, 0, 0, 0, time.UTC)

// stepClock advances one second per reading so later writes sort later.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type harness struct {
	repo      repository.TicketRepository
	directory repository.Directory
	tickets   *service.TicketService
	approvals *service.ApprovalService
	assigner  *service.AssignmentService
	knowledge *service.KnowledgeService
	dashboard *service.DashboardService
	events    *recorder
	clock     *stepClock
}

func defaultHelpdesk() config.HelpdeskConfig {
	return config.HelpdeskConfig{DefaultRequesterID: "user-1", DefaultActor: "Current User"}
}

func newHarness(t *testing.T, cfg config.HelpdeskConfig) *harness {
	t.Helper()
	clock := &stepClock{now: testStart}
	repo := repository.NewCollectionTicketRepository(storage.NewMemory(), fixtures.Tickets(), repository.WithClock(clock.Now))
	require.NoError(t, repo.Initialize(context.Background(), fixtures.Tickets()))

	directory := repository.NewDirectory(fixtures.Users(), fixtures.Agents())
	kb := repository.NewKnowledgeRepository(fixtures.Articles())
	dispatcher := events.NewInMemoryDispatcher()
	rec := &recorder{}
	for _, et := range []events.EventType{
		events.EventTicketCreated, events.EventTicketStatusChanged, events.EventTicketPriorityChanged,
		events.EventTicketAssigned, events.EventTicketCommentAdded, events.EventApprovalDecided,
	} {
		dispatcher.Subscribe(et, rec.handle)
	}

	assigner := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo: repo,
		Directory:  directory,
		Dispatcher: dispatcher,
		Clock:      clock.Now,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    repo,
		Directory:     directory,
		KnowledgeRepo: kb,
		Assigner:      assigner,
		Dispatcher:    dispatcher,
		Clock:         clock.Now,
		Config:        cfg,
		Seed:          fixtures.Tickets(),
	})
	approvals := service.NewApprovalService(service.ApprovalDependencies{
		TicketRepo: repo,
		Dispatcher: dispatcher,
		Clock:      clock.Now,
		Config:     cfg,
	})
	return &harness{
		repo:      repo,
		directory: directory,
		tickets:   tickets,
		approvals: approvals,
		assigner:  assigner,
		knowledge: service.NewKnowledgeService(kb),
		dashboard: service.NewDashboardService(service.DashboardDependencies{
			TicketRepo: repo,
			Clock:      func() time.Time { return testStart },
		}),
		events: rec,
		clock:  clock,
	}
}

func validInput() service.CreateTicketInput {
	return service.CreateTicketInput{
		Subject:     "  Monitor will not wake up  ",
		Description: "The external monitor stays black after the laptop resumes from sleep.",
		Category:    domain.CategoryHardware,
	}
}

func requireCode(t *testing.T, err error, code string) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	require.Equal(t, code, de.Code, de.Error())
	return de
}

func userPrincipal(t *testing.T, h *harness, id string) *domain.Principal {
	t.Helper()
	u, err := h.directory.User(context.Background(), id)
	require.NoError(t, err)
	return &domain.Principal{Type: domain.SubjectTypeUser, User: u}
}

func agentPrincipal(t *testing.T, h *harness, id string) *domain.Principal {
	t.Helper()
	a, err := h.directory.Agent(context.Background(), id)
	require.NoError(t, err)
	return &domain.Principal{Type: domain.SubjectTypeAgent, Agent: a}
}

func ptr[T any](v T) *T { return &v }
