package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

var (
	// ErrTicketNotFound is returned when no ticket has the requested id.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrVersionConflict is returned when a patch carries a stale version.
	ErrVersionConflict = errors.New("ticket version conflict")
	// ErrDuplicateID is returned when adding a ticket whose id is taken.
	ErrDuplicateID = errors.New("ticket id already exists")
)

// TicketRepository stores the ticket collection. Mutators return the
// full collection, newest first.
type TicketRepository interface {
	Initialize(ctx context.Context, seed []domain.Ticket) error
	List(ctx context.Context) ([]domain.Ticket, error)
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	Add(ctx context.Context, ticket domain.Ticket) ([]domain.Ticket, error)
	Update(ctx context.Context, id string, patch domain.TicketPatch) ([]domain.Ticket, error)
	AppendActivity(ctx context.Context, id string, entry domain.ActivityEntry) ([]domain.Ticket, error)
	AppendComment(ctx context.Context, id string, comment domain.Comment) ([]domain.Ticket, error)
	NextID(ctx context.Context) (string, error)
	Reset(ctx context.Context, seed []domain.Ticket) error
}

// Option customizes a ticket repository.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *zap.Logger
}

// WithClock overrides the time source used for updatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used for storage fallbacks.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:    func() time.Time { return time.Now().UTC() },
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// touch stamps updatedAt without letting it precede createdAt and bumps
// the version.
func touch(t *domain.Ticket, now time.Time) {
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
	t.Version++
}

func applyPatch(t *domain.Ticket, patch domain.TicketPatch, now time.Time) error {
	if patch.ExpectedVersion != nil && *patch.ExpectedVersion != t.Version {
		return fmt.Errorf("%w: %s is at version %d, patch expects %d", ErrVersionConflict, t.ID, t.Version, *patch.ExpectedVersion)
	}
	patch.Apply(t)
	touch(t, now)
	return nil
}

func prependActivity(t *domain.Ticket, entry domain.ActivityEntry, now time.Time) {
	entry.ID = "act-" + uuid.NewString()
	entry.Timestamp = now
	t.Activities = append([]domain.ActivityEntry{entry}, t.Activities...)
	touch(t, now)
}

func appendComment(t *domain.Ticket, comment domain.Comment, now time.Time) {
	if comment.ID == "" {
		comment.ID = "comment-" + uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.TicketID = t.ID
	t.Comments = append(t.Comments, comment)
	touch(t, now)
}

func prepareNew(t domain.Ticket) domain.Ticket {
	out := t.Clone()
	if out.Comments == nil {
		out.Comments = []domain.Comment{}
	}
	if out.Version == 0 {
		out.Version = 1
	}
	return out
}

func prepareSeed(seed []domain.Ticket) []domain.Ticket {
	out := domain.CloneTickets(seed)
	if out == nil {
		out = []domain.Ticket{}
	}
	for i := range out {
		if out[i].Comments == nil {
			out[i].Comments = []domain.Comment{}
		}
	}
	return out
}

func ticketIDs(tickets []domain.Ticket) []string {
	ids := make([]string, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
	}
	return ids
}

func findTicket(tickets []domain.Ticket, id string) int {
	for i := range tickets {
		if tickets[i].ID == id {
			return i
		}
	}
	return -1
}
