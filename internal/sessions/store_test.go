package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-portal/internal/access"
	"github.com/wolfman30/clinic-portal/internal/booking"
)

func sampleRecord(expiresAt time.Time) *Record {
	return &Record{
		ID: "s1",
		Session: access.Session{
			ID:     "s1",
			UserID: "P1",
			Name:   "Pat Patient",
			Role:   access.RolePatient,
		},
		BackendToken: "backend-token-123",
		Wizard:       &booking.State{Step: booking.StepDoctor, Department: "Neurology", Status: booking.StatusIdle},
		CreatedAt:    expiresAt.Add(-time.Hour).UTC(),
		ExpiresAt:    expiresAt.UTC(),
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := sampleRecord(time.Now().Add(time.Hour))

	require.NoError(t, store.Save(ctx, rec))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "P1", got.Session.UserID)
	require.NotNil(t, got.Wizard)
	assert.Equal(t, "Neurology", got.Wizard.Department)

	got.Wizard.Department = "Cardiology"
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Neurology", again.Wizard.Department, "store must not share state with callers")

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, sampleRecord(now.Add(time.Minute))))
	_, err := store.Get(ctx, "s1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestMemoryStoreRejectsMissingID(t *testing.T) {
	err := NewMemoryStore().Save(context.Background(), &Record{})
	assert.Error(t, err)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	rec := sampleRecord(time.Now().Add(time.Hour))

	require.NoError(t, store.Save(ctx, rec))
	assert.True(t, mr.Exists("portal:session:s1"))
	ttl := mr.TTL("portal:session:s1")
	assert.Greater(t, ttl, 50*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, rec.BackendToken, got.BackendToken)
	assert.Equal(t, booking.StepDoctor, got.Wizard.Step)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	require.NoError(t, store.Save(ctx, sampleRecord(time.Now().Add(time.Minute))))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreSaveExpiredDeletes(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	require.NoError(t, store.Save(ctx, sampleRecord(time.Now().Add(time.Hour))))
	require.NoError(t, store.Save(ctx, sampleRecord(time.Now().Add(-time.Second))))
	assert.False(t, mr.Exists("portal:session:s1"))
}

func TestRedisStoreCorruptValue(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set("portal:session:bad", "{not json"))
	_, err := store.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestPostgresStoreSave(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := sampleRecord(time.Date(2025, 1, 1, 13, 0, 0, 0, time.UTC))
	mock.ExpectExec("INSERT INTO portal_sessions").
		WithArgs("s1", "P1", pgxmock.AnyArg(), rec.CreatedAt, rec.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewPostgresStore(mock)
	require.NoError(t, store.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	payload, err := json.Marshal(sampleRecord(now.Add(time.Hour)))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT payload").
		WithArgs("s1", now).
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(payload))

	store := NewPostgresStore(mock)
	store.now = func() time.Time { return now }
	got, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, access.RolePatient, got.Session.Role)
	assert.Equal(t, "Neurology", got.Wizard.Department)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT payload").
		WithArgs("gone", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgresStore(mock).Get(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreDeleteAndSweep(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM portal_sessions WHERE id").
		WithArgs("s1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM portal_sessions WHERE expires_at").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	store := NewPostgresStore(mock)
	require.NoError(t, store.Delete(context.Background(), "s1"))
	removed, err := store.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
