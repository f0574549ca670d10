package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type postgresTicketRepository struct {
	pool *pgxpool.Pool
	opts options
}

// NewPostgresTicketRepository stores tickets one JSONB row per id.
func NewPostgresTicketRepository(pool *pgxpool.Pool, opts ...Option) TicketRepository {
	return &postgresTicketRepository{pool: pool, opts: buildOptions(opts)}
}

func (r *postgresTicketRepository) insert(ctx context.Context, tx pgx.Tx, t domain.Ticket) error {
	doc, err := encodeTicketDocument(t)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO tickets (id, version, document, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO NOTHING`
	cmd, err := tx.Exec(ctx, query, t.ID, t.Version, doc, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket %s: %w", t.ID, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	return nil
}

func (r *postgresTicketRepository) seed(ctx context.Context, tx pgx.Tx, seed []domain.Ticket) error {
	for _, t := range seedInsertOrder(seed) {
		if err := r.insert(ctx, tx, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresTicketRepository) Initialize(ctx context.Context, seed []domain.Ticket) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Serializes concurrent initializers so the seed lands once.
		if _, err := tx.Exec(ctx, `LOCK TABLE tickets IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock tickets: %w", err)
		}
		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&count); err != nil {
			return fmt.Errorf("count tickets: %w", err)
		}
		if count > 0 {
			return nil
		}
		r.opts.logger.Info("seeding postgres tickets", zap.Int("tickets", len(seed)))
		return r.seed(ctx, tx, seed)
	})
}

func (r *postgresTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, version, document FROM tickets ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		var (
			id      string
			version int64
			doc     []byte
		)
		if err := rows.Scan(&id, &version, &doc); err != nil {
			return nil, err
		}
		t, err := decodeTicketDocument(doc, version)
		if err != nil {
			r.opts.logger.Warn("skipping corrupt ticket row", zap.String("id", id), zap.Error(err))
			continue
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *postgresTicketRepository) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	var (
		version int64
		doc     []byte
	)
	err := r.pool.QueryRow(ctx, `SELECT version, document FROM tickets WHERE id = $1`, id).Scan(&version, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket %s: %w", id, err)
	}
	t, err := decodeTicketDocument(doc, version)
	if err != nil {
		return nil, fmt.Errorf("decode ticket %s: %w", id, err)
	}
	return &t, nil
}

func (r *postgresTicketRepository) listWith(ctx context.Context, cause error) ([]domain.Ticket, error) {
	tickets, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, cause
}

func (r *postgresTicketRepository) Add(ctx context.Context, ticket domain.Ticket) ([]domain.Ticket, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return r.insert(ctx, tx, prepareNew(ticket))
	})
	if errors.Is(err, ErrDuplicateID) {
		return r.listWith(ctx, err)
	}
	if err != nil {
		return nil, err
	}
	return r.List(ctx)
}

// errKeep marks failures that should still return the collection.
type errKeep struct{ err error }

func (e errKeep) Error() string { return e.err.Error() }
func (e errKeep) Unwrap() error { return e.err }

func (r *postgresTicketRepository) mutate(ctx context.Context, id string, fn func(*domain.Ticket) error) ([]domain.Ticket, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var (
			version int64
			doc     []byte
		)
		err := tx.QueryRow(ctx, `SELECT version, document FROM tickets WHERE id = $1 FOR UPDATE`, id).Scan(&version, &doc)
		if errors.Is(err, pgx.ErrNoRows) {
			return errKeep{fmt.Errorf("%w: %s", ErrTicketNotFound, id)}
		}
		if err != nil {
			return fmt.Errorf("load ticket %s: %w", id, err)
		}

		t, err := decodeTicketDocument(doc, version)
		if err != nil {
			return fmt.Errorf("decode ticket %s: %w", id, err)
		}
		if err := fn(&t); err != nil {
			return errKeep{err}
		}

		updated, err := encodeTicketDocument(t)
		if err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx,
			`UPDATE tickets SET document = $1, version = $2, updated_at = $3 WHERE id = $4 AND version = $5`,
			updated, t.Version, t.UpdatedAt, id, version)
		if err != nil {
			return fmt.Errorf("update ticket %s: %w", id, err)
		}
		if cmd.RowsAffected() == 0 {
			return errKeep{fmt.Errorf("%w: %s", ErrVersionConflict, id)}
		}
		return nil
	})

	var keep errKeep
	if errors.As(err, &keep) {
		return r.listWith(ctx, keep.err)
	}
	if err != nil {
		return nil, err
	}
	return r.List(ctx)
}

func (r *postgresTicketRepository) Update(ctx context.Context, id string, patch domain.TicketPatch) ([]domain.Ticket, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return r.mutate(ctx, id, func(t *domain.Ticket) error {
		return applyPatch(t, patch, r.opts.now())
	})
}

func (r *postgresTicketRepository) AppendActivity(ctx context.Context, id string, entry domain.ActivityEntry) ([]domain.Ticket, error) {
	return r.mutate(ctx, id, func(t *domain.Ticket) error {
		prependActivity(t, entry, r.opts.now())
		return nil
	})
}

func (r *postgresTicketRepository) AppendComment(ctx context.Context, id string, comment domain.Comment) ([]domain.Ticket, error) {
	return r.mutate(ctx, id, func(t *domain.Ticket) error {
		appendComment(t, comment, r.opts.now())
		return nil
	})
}

func (r *postgresTicketRepository) NextID(ctx context.Context) (string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM tickets`)
	if err != nil {
		return "", fmt.Errorf("list ticket ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return "", err
	}
	return domain.NextTicketID(ids), nil
}

func (r *postgresTicketRepository) Reset(ctx context.Context, seed []domain.Ticket) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE tickets RESTART IDENTITY`); err != nil {
			return fmt.Errorf("clear tickets: %w", err)
		}
		return r.seed(ctx, tx, seed)
	})
}
