package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// pgxConn is the subset of pgxpool.Pool the store needs.
type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps records in the portal_sessions table.
type PostgresStore struct {
	db     pgxConn
	now    func() time.Time
	tracer trace.Tracer
}

// NewPostgresStore wraps a pgx pool (or anything with the same Exec/QueryRow).
func NewPostgresStore(db pgxConn) *PostgresStore {
	if db == nil {
		panic("sessions: pgx pool required")
	}
	return &PostgresStore{
		db:     db,
		now:    time.Now,
		tracer: otel.Tracer("clinicportal.internal.sessions.postgres"),
	}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	ctx, span := s.tracer.Start(ctx, "sessions.postgres.get")
	defer span.End()

	query := `
		SELECT payload
		FROM portal_sessions
		WHERE id = $1 AND expires_at > $2
	`
	var payload []byte
	if err := s.db.QueryRow(ctx, query, id, s.now().UTC()).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("sessions: load record: %w", err)
	}
	return decodeRecord(payload)
}

func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	ctx, span := s.tracer.Start(ctx, "sessions.postgres.save")
	defer span.End()

	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO portal_sessions (id, user_id, payload, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at
	`
	if _, err := s.db.Exec(ctx, query, rec.ID, rec.Session.UserID, data, rec.CreatedAt.UTC(), rec.ExpiresAt.UTC()); err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: persist record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "sessions.postgres.delete")
	defer span.End()

	if _, err := s.db.Exec(ctx, `DELETE FROM portal_sessions WHERE id = $1`, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: delete record: %w", err)
	}
	return nil
}

// Sweep deletes expired rows and returns how many were removed.
func (s *PostgresStore) Sweep(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM portal_sessions WHERE expires_at <= $1`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sessions: sweep expired: %w", err)
	}
	return tag.RowsAffected(), nil
}
