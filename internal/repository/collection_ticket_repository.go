package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/storage"
)

// TicketsKey is the slot holding the serialized ticket collection.
const TicketsKey = "helpdesk_tickets"

type slotState int

const (
	slotLoaded slotState = iota
	slotEmpty
	slotCorrupt
	slotUnavailable
)

// collectionTicketRepository keeps the whole collection as one JSON array.
// Writers within the process are serialized; writers in other processes
// are last-writer-wins.
type collectionTicketRepository struct {
	kv       storage.KeyValue
	opts     options
	mu       sync.Mutex
	fallback []domain.Ticket
}

// NewCollectionTicketRepository stores tickets in a single slot of kv.
// fallback is served whenever the slot is empty, corrupt or unavailable.
func NewCollectionTicketRepository(kv storage.KeyValue, fallback []domain.Ticket, opts ...Option) TicketRepository {
	return &collectionTicketRepository{
		kv:       kv,
		opts:     buildOptions(opts),
		fallback: prepareSeed(fallback),
	}
}

func (r *collectionTicketRepository) load(ctx context.Context) ([]domain.Ticket, slotState, error) {
	raw, err := r.kv.Get(ctx, TicketsKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return domain.CloneTickets(r.fallback), slotEmpty, nil
	case errors.Is(err, storage.ErrUnavailable):
		r.opts.logger.Debug("ticket slot unavailable, serving fixtures", zap.Error(err))
		return domain.CloneTickets(r.fallback), slotUnavailable, nil
	case err != nil:
		return nil, slotLoaded, fmt.Errorf("read tickets: %w", err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.CloneTickets(r.fallback), slotEmpty, nil
	}

	var tickets []domain.Ticket
	if err := json.Unmarshal(raw, &tickets); err != nil {
		r.opts.logger.Warn("ticket slot is corrupt, serving fixtures", zap.Error(err))
		return domain.CloneTickets(r.fallback), slotCorrupt, nil
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	for i := range tickets {
		if tickets[i].Comments == nil {
			tickets[i].Comments = []domain.Comment{}
		}
	}
	return tickets, slotLoaded, nil
}

func (r *collectionTicketRepository) save(ctx context.Context, tickets []domain.Ticket) error {
	raw, err := json.Marshal(tickets)
	if err != nil {
		return fmt.Errorf("encode tickets: %w", err)
	}
	err = r.kv.Put(ctx, TicketsKey, raw)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrUnavailable):
		r.opts.logger.Debug("ticket slot unavailable, write dropped", zap.Error(err))
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("write tickets: %w", err)
	default:
		r.opts.logger.Warn("ticket write failed", zap.Error(err))
		return nil
	}
}

func (r *collectionTicketRepository) Initialize(ctx context.Context, seed []domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fallback = prepareSeed(seed)
	_, state, err := r.load(ctx)
	if err != nil {
		return err
	}
	if state != slotEmpty && state != slotCorrupt {
		return nil
	}
	r.opts.logger.Info("seeding ticket slot", zap.Int("tickets", len(r.fallback)))
	return r.save(ctx, r.fallback)
}

func (r *collectionTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tickets, _, err := r.load(ctx)
	return tickets, err
}

func (r *collectionTicketRepository) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	tickets, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	idx := findTicket(tickets, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}
	return &tickets[idx], nil
}

func (r *collectionTicketRepository) Add(ctx context.Context, ticket domain.Ticket) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tickets, _, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if findTicket(tickets, ticket.ID) >= 0 {
		return tickets, fmt.Errorf("%w: %s", ErrDuplicateID, ticket.ID)
	}
	tickets = append([]domain.Ticket{prepareNew(ticket)}, tickets...)
	if err := r.save(ctx, tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// mutate runs fn against the ticket with id and persists the collection.
// An unknown id leaves storage untouched.
func (r *collectionTicketRepository) mutate(ctx context.Context, id string, fn func(*domain.Ticket) error) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tickets, _, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := findTicket(tickets, id)
	if idx < 0 {
		return tickets, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}

	updated := tickets[idx].Clone()
	if err := fn(&updated); err != nil {
		return tickets, err
	}
	tickets[idx] = updated
	if err := r.save(ctx, tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *collectionTicketRepository) Update(ctx context.Context, id string, patch domain.TicketPatch) ([]domain.Ticket, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return r.mutate(ctx, id, func(t *domain.Ticket) error {
		return applyPatch(t, patch, r.opts.now())
	})
}

func (r *collectionTicketRepository) AppendActivity(ctx context.Context, id string, entry domain.ActivityEntry) ([]domain.Ticket, error) {
	return r.mutate(ctx, id, func(t *domain.Ticket) error {
		prependActivity(t, entry, r.opts.now())
		return nil
	})
}

func (r *collectionTicketRepository) AppendComment(ctx context.Context, id string, comment domain.Comment) ([]domain.Ticket, error) {
	return r.mutate(ctx, id, func(t *domain.Ticket) error {
		appendComment(t, comment, r.opts.now())
		return nil
	})
}

func (r *collectionTicketRepository) NextID(ctx context.Context) (string, error) {
	tickets, err := r.List(ctx)
	if err != nil {
		return "", err
	}
	return domain.NextTicketID(ticketIDs(tickets)), nil
}

func (r *collectionTicketRepository) Reset(ctx context.Context, seed []domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = prepareSeed(seed)
	return r.save(ctx, r.fallback)
}
