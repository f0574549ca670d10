package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const (
	maxCreateAttempts = 3
	maxUpdateAttempts = 3
	previewLength     = 120
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	directory  repository.Directory
	knowledge  repository.KnowledgeRepository
	assigner   *AssignmentService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	cfg        config.HelpdeskConfig
	seed       []domain.Ticket
	validate   *validator.Validate
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	Directory     repository.Directory
	KnowledgeRepo repository.KnowledgeRepository
	Assigner      *AssignmentService
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Clock         func() time.Time
	Config        config.HelpdeskConfig
	// Seed is the collection restored by Reset.
	Seed []domain.Ticket
}

// CreateTicketInput describes the ticket creation form.
type CreateTicketInput struct {
	Subject     string                `json:"subject" validate:"notblank,min=5"`
	Description string                `json:"description" validate:"notblank,min=20"`
	Priority    domain.TicketPriority `json:"priority" validate:"omitempty,ticket_priority"`
	Category    domain.TicketCategory `json:"category" validate:"required,ticket_category"`
	Department  string                `json:"department"`
	RequestType domain.RequestType    `json:"requestType" validate:"omitempty,request_type"`
	ApproverID  string                `json:"approverId"`
	RequesterID string                `json:"requesterId"`
	Attachments []domain.Attachment   `json:"attachments"`
}

// UpdateTicketInput lists the fields a caller may change. Nil fields are
// left untouched; an empty AssigneeID unassigns.
type UpdateTicketInput struct {
	Subject         *string
	Description     *string
	Status          *domain.TicketStatus
	Priority        *domain.TicketPriority
	Category        *domain.TicketCategory
	Department      *string
	RequestType     *domain.RequestType
	AssigneeID      *string
	ExpectedVersion *int64
}

// CommentInput is a reply or internal note.
type CommentInput struct {
	Content    string `json:"content" validate:"notblank"`
	IsInternal bool   `json:"isInternal"`
}

// ActivityInput is a raw activity entry. User defaults to the caller.
type ActivityInput struct {
	Type     domain.ActivityType `json:"type" validate:"required,activity_type"`
	User     string              `json:"user"`
	Details  string              `json:"details"`
	OldValue string              `json:"oldValue"`
	NewValue string              `json:"newValue"`
}

// TimelineKind tells activity and comment timeline items apart.
type TimelineKind string

const (
	TimelineActivity TimelineKind = "activity"
	TimelineComment  TimelineKind = "comment"
)

// TimelineItem is one entry of the merged ticket history.
type TimelineItem struct {
	Kind     TimelineKind
	At       time.Time
	Activity *domain.ActivityEntry
	Comment  *domain.Comment
}

// TicketDetail is a ticket with its SLA standing and history.
type TicketDetail struct {
	Ticket   domain.Ticket
	SLA      sla.Result
	Timeline []TimelineItem
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		directory:  deps.Directory,
		knowledge:  deps.KnowledgeRepo,
		assigner:   deps.Assigner,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
		cfg:        deps.Config,
		seed:       domain.CloneTickets(deps.Seed),
		validate:   newValidator(),
	}
}

// Create validates input, stores a new ticket and announces it. A ticket
// with an approver waits in the approval queue and is not auto-assigned.
func (s *TicketService) Create(ctx context.Context, principal *domain.Principal, input CreateTicketInput) (*domain.Ticket, error) {
	input.Subject = strings.TrimSpace(input.Subject)
	input.Description = strings.TrimSpace(input.Description)
	input.ApproverID = strings.TrimSpace(input.ApproverID)
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	requester, err := s.resolveRequester(ctx, principal, input.RequesterID)
	if err != nil {
		return nil, err
	}
	if input.ApproverID != "" {
		if _, err := s.directory.User(ctx, input.ApproverID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, apperrors.NewValidationError("validation failed", map[string]any{"approverId": "Unknown approver"})
			}
			return nil, apperrors.MapError(err)
		}
	}

	if err := s.simulateLatency(ctx); err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	actor := s.actorName(principal)
	ticket := domain.Ticket{
		Subject:     input.Subject,
		Description: input.Description,
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		Category:    input.Category,
		Department:  strings.TrimSpace(input.Department),
		RequestType: input.RequestType,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   *requester,
		ApproverID:  input.ApproverID,
		Comments:    []domain.Comment{},
		Attachments: input.Attachments,
		Activities: []domain.ActivityEntry{{
			ID:        "act-" + uuid.NewString(),
			Type:      domain.ActivityCreated,
			Timestamp: now,
			User:      actor,
			Details:   "Ticket created",
		}},
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if ticket.ApproverID != "" {
		ticket.ApprovalStatus = domain.ApprovalPending
	}

	created, err := s.add(ctx, ticket)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket created",
		zap.String("ticket_id", created.ID),
		zap.String("priority", string(created.Priority)),
		zap.String("category", string(created.Category)),
		zap.Bool("pending_approval", created.PendingApproval()))

	s.publishEvent(ctx, events.New(events.EventTicketCreated, created.ID, actor, now, events.TicketCreatedPayload{
		Subject:         created.Subject,
		Priority:        created.Priority,
		Category:        created.Category,
		RequesterID:     created.CreatedBy.ID,
		PendingApproval: created.PendingApproval(),
	}))

	if s.cfg.AutoAssign && s.assigner != nil && !created.PendingApproval() {
		assigned, err := s.assigner.AutoAssign(ctx, created.ID)
		if err != nil {
			s.logger.Warn("auto-assignment failed", zap.String("ticket_id", created.ID), zap.Error(err))
		} else if assigned != nil {
			created = assigned
		}
	}

	out := redact(*created, principal)
	return &out, nil
}

func (s *TicketService) add(ctx context.Context, ticket domain.Ticket) (*domain.Ticket, error) {
	for attempt := 1; ; attempt++ {
		id, err := s.tickets.NextID(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket.ID = id
		collection, err := s.tickets.Add(ctx, ticket)
		if errors.Is(err, repository.ErrDuplicateID) && attempt < maxCreateAttempts {
			s.logger.Debug("ticket id taken, retrying", zap.String("ticket_id", id))
			continue
		}
		if err != nil {
			return nil, mapRepoError(err, id)
		}
		if stored, ok := ticketIn(collection, id); ok {
			return stored, nil
		}
		// The slot dropped the write; hand back what was built.
		return &ticket, nil
	}
}

// List filters, sorts and pages the collection.
func (s *TicketService) List(ctx context.Context, principal *domain.Principal, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	page, total := filter.Apply(tickets)
	out := make([]domain.Ticket, len(page))
	for i := range page {
		out[i] = redact(page[i], principal)
	}
	return out, total, nil
}

// Get returns one ticket as the principal may see it.
func (s *TicketService) Get(ctx context.Context, principal *domain.Principal, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	out := redact(*ticket, principal)
	return &out, nil
}

// Detail returns the ticket with SLA standing and the merged timeline.
func (s *TicketService) Detail(ctx context.Context, principal *domain.Principal, id string) (*TicketDetail, error) {
	ticket, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	return &TicketDetail{
		Ticket:   *ticket,
		SLA:      sla.Status(*ticket, s.now()),
		Timeline: Timeline(*ticket),
	}, nil
}

// SLA returns the SLA standing of a ticket.
func (s *TicketService) SLA(ctx context.Context, id string) (sla.Result, error) {
	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		return sla.Result{}, mapRepoError(err, id)
	}
	return sla.Status(*ticket, s.now()), nil
}

// Update applies input and logs one activity per tracked change. Without
// an expected version the update is pinned to the version read and
// retried when another writer gets in first.
func (s *TicketService) Update(ctx context.Context, principal *domain.Principal, id string, input UpdateTicketInput) (*domain.Ticket, error) {
	patch, err := s.buildPatch(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, mapRepoError(err, id)
	}
	if patch.IsEmpty() {
		return s.Get(ctx, principal, id)
	}

	var (
		before     domain.Ticket
		collection []domain.Ticket
	)
	for attempt := 1; ; attempt++ {
		current, err := s.tickets.Get(ctx, id)
		if err != nil {
			return nil, mapRepoError(err, id)
		}
		pinned := patch
		if pinned.ExpectedVersion == nil {
			version := current.Version
			pinned.ExpectedVersion = &version
		}
		collection, err = s.tickets.Update(ctx, id, pinned)
		if errors.Is(err, repository.ErrVersionConflict) && input.ExpectedVersion == nil && attempt < maxUpdateAttempts {
			continue
		}
		if err != nil {
			return nil, mapRepoError(err, id)
		}
		before = *current
		break
	}

	actor := s.actorName(principal)
	now := s.now()
	for _, change := range diff(before, patch) {
		collection, err = s.tickets.AppendActivity(ctx, id, change.entry(actor))
		if err != nil {
			return nil, mapRepoError(err, id)
		}
		s.publishEvent(ctx, events.New(change.event, id, actor, now, change.payload))
	}

	after, ok := ticketIn(collection, id)
	if !ok {
		return nil, mapRepoError(repository.ErrTicketNotFound, id)
	}
	out := redact(*after, principal)
	return &out, nil
}

func (s *TicketService) buildPatch(ctx context.Context, input UpdateTicketInput) (domain.TicketPatch, error) {
	patch := domain.TicketPatch{
		Status:          input.Status,
		Priority:        input.Priority,
		Category:        input.Category,
		Department:      input.Department,
		RequestType:     input.RequestType,
		ExpectedVersion: input.ExpectedVersion,
	}
	if input.Subject != nil {
		subject := strings.TrimSpace(*input.Subject)
		patch.Subject = &subject
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		patch.Description = &description
	}
	if input.AssigneeID != nil {
		if *input.AssigneeID == "" {
			patch.ClearAssignee = true
		} else {
			agent, err := s.directory.Agent(ctx, *input.AssigneeID)
			if err != nil {
				return patch, mapRepoError(err, *input.AssigneeID)
			}
			patch.AssignedTo = agent
		}
	}
	return patch, nil
}

// AddComment appends a reply or, for agents, an internal note. Callers
// without a session post as the first directory agent.
func (s *TicketService) AddComment(ctx context.Context, principal *domain.Principal, id string, input CommentInput) (*domain.Comment, error) {
	input.Content = strings.TrimSpace(input.Content)
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}
	if input.IsInternal && !canSeeInternal(principal) {
		return nil, apperrors.NewForbidden("only agents can post internal notes")
	}
	author, err := s.commentAuthor(ctx, principal)
	if err != nil {
		return nil, err
	}

	now := s.now()
	comment := domain.Comment{
		ID:         "comment-" + uuid.NewString(),
		Author:     author,
		Content:    input.Content,
		CreatedAt:  now,
		IsInternal: input.IsInternal,
	}
	collection, err := s.tickets.AppendComment(ctx, id, comment)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	if _, ok := ticketIn(collection, id); !ok {
		return nil, mapRepoError(repository.ErrTicketNotFound, id)
	}
	comment.TicketID = id

	s.publishEvent(ctx, events.New(events.EventTicketCommentAdded, id, author.Name, now, events.TicketCommentAddedPayload{
		CommentID:   comment.ID,
		AuthorID:    author.ID,
		Internal:    comment.IsInternal,
		BodyPreview: stringPreview(comment.Content, previewLength),
	}))
	return &comment, nil
}

// AppendActivity logs a raw activity entry on a ticket.
func (s *TicketService) AppendActivity(ctx context.Context, principal *domain.Principal, id string, input ActivityInput) (*domain.Ticket, error) {
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}
	user := strings.TrimSpace(input.User)
	if user == "" {
		user = s.actorName(principal)
	}
	collection, err := s.tickets.AppendActivity(ctx, id, domain.ActivityEntry{
		Type:     input.Type,
		User:     user,
		Details:  input.Details,
		OldValue: input.OldValue,
		NewValue: input.NewValue,
	})
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	ticket, ok := ticketIn(collection, id)
	if !ok {
		return nil, mapRepoError(repository.ErrTicketNotFound, id)
	}
	out := redact(*ticket, principal)
	return &out, nil
}

// Suggestions returns knowledge articles related to a ticket.
func (s *TicketService) Suggestions(ctx context.Context, id string) ([]domain.KnowledgeArticle, error) {
	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	if s.knowledge == nil {
		return []domain.KnowledgeArticle{}, nil
	}
	articles, err := s.knowledge.List(ctx, repository.ArticleFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return SuggestArticles(articles, *ticket, DefaultSuggestionLimit), nil
}

// Reset restores the fixture collection.
func (s *TicketService) Reset(ctx context.Context) error {
	if err := s.tickets.Reset(ctx, s.seed); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("ticket collection reset", zap.Int("tickets", len(s.seed)))
	return nil
}

// Timeline merges activities and comments newest first.
func Timeline(t domain.Ticket) []TimelineItem {
	items := make([]TimelineItem, 0, len(t.Activities)+len(t.Comments))
	for i := range t.Activities {
		items = append(items, TimelineItem{Kind: TimelineActivity, At: t.Activities[i].Timestamp, Activity: &t.Activities[i]})
	}
	for i := range t.Comments {
		items = append(items, TimelineItem{Kind: TimelineComment, At: t.Comments[i].CreatedAt, Comment: &t.Comments[i]})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].At.After(items[j].At) })
	return items
}

func (s *TicketService) resolveRequester(ctx context.Context, principal *domain.Principal, requesterID string) (*domain.User, error) {
	if principal != nil && principal.User != nil && !principal.IsAgent() {
		user := *principal.User
		return &user, nil
	}
	id := strings.TrimSpace(requesterID)
	if id == "" {
		id = s.cfg.DefaultRequesterID
	}
	user, err := s.directory.User(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewValidationError("validation failed", map[string]any{"requesterId": "Unknown requester"})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *TicketService) commentAuthor(ctx context.Context, principal *domain.Principal) (domain.Author, error) {
	switch {
	case principal.IsAgent():
		return principal.Agent.AsAuthor(), nil
	case principal != nil && principal.User != nil:
		return principal.User.AsAuthor(), nil
	}
	agents, err := s.directory.Agents(ctx)
	if err != nil {
		return domain.Author{}, apperrors.MapError(err)
	}
	if len(agents) == 0 {
		return domain.Author{}, apperrors.NewConflict("no agent available to author the comment", nil)
	}
	return agents[0].AsAuthor(), nil
}

func (s *TicketService) actorName(principal *domain.Principal) string {
	if name := principal.Name(); name != "" {
		return name
	}
	return s.cfg.DefaultActor
}

func (s *TicketService) simulateLatency(ctx context.Context) error {
	delay := s.cfg.CreateDelay()
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

// change is one tracked field difference produced by an update.
type change struct {
	activity domain.ActivityEntry
	event    events.EventType
	payload  any
}

func (c change) entry(actor string) domain.ActivityEntry {
	e := c.activity
	e.User = actor
	return e
}

// diff lists the tracked changes patch makes to before. Fields the patch
// sets to their current value produce nothing.
func diff(before domain.Ticket, patch domain.TicketPatch) []change {
	var changes []change
	if patch.Status != nil && *patch.Status != before.Status {
		changes = append(changes, change{
			activity: domain.ActivityEntry{
				Type:     domain.ActivityStatusChanged,
				OldValue: before.Status.Label(),
				NewValue: patch.Status.Label(),
			},
			event:   events.EventTicketStatusChanged,
			payload: events.TicketStatusChangedPayload{OldStatus: before.Status, NewStatus: *patch.Status},
		})
	}
	if patch.Priority != nil && *patch.Priority != before.Priority {
		changes = append(changes, change{
			activity: domain.ActivityEntry{
				Type:     domain.ActivityPriorityChanged,
				OldValue: before.Priority.Label(),
				NewValue: patch.Priority.Label(),
			},
			event:   events.EventTicketPriorityChanged,
			payload: events.TicketPriorityChangedPayload{OldPriority: before.Priority, NewPriority: *patch.Priority},
		})
	}

	oldName := ""
	if before.AssignedTo != nil {
		oldName = before.AssignedTo.Name
	}
	switch {
	case patch.AssignedTo != nil && (before.AssignedTo == nil || before.AssignedTo.ID != patch.AssignedTo.ID):
		changes = append(changes, change{
			activity: domain.ActivityEntry{
				Type:     domain.ActivityAssigned,
				OldValue: oldName,
				NewValue: patch.AssignedTo.Name,
			},
			event:   events.EventTicketAssigned,
			payload: events.TicketAssignedPayload{AgentID: patch.AssignedTo.ID, AgentName: patch.AssignedTo.Name},
		})
	case patch.ClearAssignee && before.AssignedTo != nil:
		changes = append(changes, change{
			activity: domain.ActivityEntry{
				Type:     domain.ActivityAssigned,
				Details:  "Unassigned",
				OldValue: oldName,
			},
			event:   events.EventTicketAssigned,
			payload: events.TicketAssignedPayload{},
		})
	}
	return changes
}

// canSeeInternal reports whether internal notes are visible. Callers
// without a session use the agent console.
func canSeeInternal(principal *domain.Principal) bool {
	return principal == nil || principal.IsAgent()
}

// redact hides internal notes from requesters.
func redact(t domain.Ticket, principal *domain.Principal) domain.Ticket {
	out := t.Clone()
	if canSeeInternal(principal) {
		return out
	}
	visible := make([]domain.Comment, 0, len(out.Comments))
	for _, c := range out.Comments {
		if !c.IsInternal {
			visible = append(visible, c)
		}
	}
	out.Comments = visible
	return out
}

func ticketIn(collection []domain.Ticket, id string) (*domain.Ticket, bool) {
	for i := range collection {
		if collection[i].ID == id {
			t := collection[i].Clone()
			return &t, true
		}
	}
	return nil, false
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
