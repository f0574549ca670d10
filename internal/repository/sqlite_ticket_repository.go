package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type sqliteTicketRepository struct {
	db   *sql.DB
	opts options
}

// NewSQLiteTicketRepository stores tickets one row per id in SQLite. The
// schema comes from persistence.RunSQLiteMigrations.
func NewSQLiteTicketRepository(db *sql.DB, opts ...Option) TicketRepository {
	return &sqliteTicketRepository{db: db, opts: buildOptions(opts)}
}

func sqliteTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (r *sqliteTicketRepository) insert(ctx context.Context, tx *sql.Tx, t domain.Ticket) error {
	doc, err := encodeTicketDocument(t)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO tickets (id, seq, version, document, created_at, updated_at)
        VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM tickets), ?, ?, ?, ?)
        ON CONFLICT (id) DO NOTHING`
	res, err := tx.ExecContext(ctx, query, t.ID, t.Version, string(doc), sqliteTime(t.CreatedAt), sqliteTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert ticket %s: %w", t.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	return nil
}

func (r *sqliteTicketRepository) seed(ctx context.Context, tx *sql.Tx, seed []domain.Ticket) error {
	for _, t := range seedInsertOrder(seed) {
		if err := r.insert(ctx, tx, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *sqliteTicketRepository) Initialize(ctx context.Context, seed []domain.Ticket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&count); err != nil {
		return fmt.Errorf("count tickets: %w", err)
	}
	if count > 0 {
		return nil
	}
	r.opts.logger.Info("seeding sqlite tickets", zap.Int("tickets", len(seed)))
	if err := r.seed(ctx, tx, seed); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *sqliteTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, version, document FROM tickets ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		var (
			id      string
			version int64
			doc     string
		)
		if err := rows.Scan(&id, &version, &doc); err != nil {
			return nil, err
		}
		t, err := decodeTicketDocument([]byte(doc), version)
		if err != nil {
			r.opts.logger.Warn("skipping corrupt ticket row", zap.String("id", id), zap.Error(err))
			continue
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *sqliteTicketRepository) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	var (
		version int64
		doc     string
	)
	err := r.db.QueryRowContext(ctx, `SELECT version, document FROM tickets WHERE id = ?`, id).Scan(&version, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket %s: %w", id, err)
	}
	t, err := decodeTicketDocument([]byte(doc), version)
	if err != nil {
		return nil, fmt.Errorf("decode ticket %s: %w", id, err)
	}
	return &t, nil
}

func (r *sqliteTicketRepository) Add(ctx context.Context, ticket domain.Ticket) ([]domain.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := r.insert(ctx, tx, prepareNew(ticket)); err != nil {
		_ = tx.Rollback()
		if errors.Is(err, ErrDuplicateID) {
			return r.listWith(ctx, err)
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.List(ctx)
}

// listWith returns the current collection alongside cause.
func (r *sqliteTicketRepository) listWith(ctx context.Context, cause error) ([]domain.Ticket, error) {
	tickets, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, cause
}

func (r *sqliteTicketRepository) mutate(ctx context.Context, id string, fn func(*domain.Ticket) error) ([]domain.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	var (
		version int64
		doc     string
	)
	err = tx.QueryRowContext(ctx, `SELECT version, document FROM tickets WHERE id = ?`, id).Scan(&version, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()
		return r.listWith(ctx, fmt.Errorf("%w: %s", ErrTicketNotFound, id))
	}
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("load ticket %s: %w", id, err)
	}

	t, err := decodeTicketDocument([]byte(doc), version)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("decode ticket %s: %w", id, err)
	}
	if err := fn(&t); err != nil {
		_ = tx.Rollback()
		return r.listWith(ctx, err)
	}

	updated, err := encodeTicketDocument(t)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE tickets SET document = ?, version = ?, updated_at = ? WHERE id = ? AND version = ?`,
		string(updated), t.Version, sqliteTime(t.UpdatedAt), id, version)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("update ticket %s: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		_ = tx.Rollback()
		return r.listWith(ctx, fmt.Errorf("%w: %s", ErrVersionConflict, id))
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.List(ctx)
}

func (r *sqliteTicketRepository) Update(ctx context.Context, id string, patch domain.TicketPatch) ([]domain.Ticket, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return r.mutate(ctx, id, func(t *domain.Ticket) error {
		return applyPatch(t, patch, r.opts.now())
	})
}

func (r *sqliteTicketRepository) AppendActivity(ctx context.Context, id string, entry domain.ActivityEntry) ([]domain.Ticket, error) {
	return r.mutate(ctx, id, func(t *domain.Ticket) error {
		prependActivity(t, entry, r.opts.now())
		return nil
	})
}

func (r *sqliteTicketRepository) AppendComment(ctx context.Context, id string, comment domain.Comment) ([]domain.Ticket, error) {
	return r.mutate(ctx, id, func(t *domain.Ticket) error {
		appendComment(t, comment, r.opts.now())
		return nil
	})
}

func (r *sqliteTicketRepository) NextID(ctx context.Context) (string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM tickets`)
	if err != nil {
		return "", fmt.Errorf("list ticket ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return domain.NextTicketID(ids), nil
}

func (r *sqliteTicketRepository) Reset(ctx context.Context, seed []domain.Ticket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets`); err != nil {
		return fmt.Errorf("clear tickets: %w", err)
	}
	if err := r.seed(ctx, tx, seed); err != nil {
		return err
	}
	return tx.Commit()
}
