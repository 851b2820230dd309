package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/clinic-portal/internal/access"
	"github.com/wolfman30/clinic-portal/internal/booking"
	"github.com/wolfman30/clinic-portal/internal/clinicapi"
	"github.com/wolfman30/clinic-portal/pkg/logging"
)

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 12 * time.Hour

// Manager ties the cookie token to stored records.
type Manager struct {
	store  Store
	signer *TokenSigner
	ttl    time.Duration
	now    func() time.Time
	logger *logging.Logger
}

// NewManager constructs a session manager.
func NewManager(store Store, signer *TokenSigner, ttl time.Duration, logger *logging.Logger) *Manager {
	if store == nil {
		panic("sessions: store required")
	}
	if signer == nil {
		panic("sessions: token signer required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{store: store, signer: signer, ttl: ttl, now: time.Now, logger: logger}
}

// TTL is the lifetime given to new sessions.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Create stores a new record for a logged-in user and returns it with the
// cookie token. Users whose role is outside the known set are refused.
func (m *Manager) Create(ctx context.Context, user clinicapi.User, backendToken string) (*Record, string, error) {
	role, err := access.ParseRole(user.Role)
	if err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(backendToken) == "" {
		return nil, "", errors.New("sessions: backend token required")
	}
	now := m.now().UTC()
	id := uuid.NewString()
	rec := &Record{
		ID: id,
		Session: access.Session{
			ID:             id,
			UserID:         user.ID,
			Name:           user.Name,
			Email:          user.Email,
			Role:           role,
			Phone:          user.Phone,
			Department:     user.Department,
			Specialization: user.Specialization,
		},
		BackendToken: backendToken,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, "", err
	}
	token, err := m.signer.Sign(id, rec.ExpiresAt)
	if err != nil {
		_ = m.store.Delete(ctx, id)
		return nil, "", err
	}
	m.logger.WithSession(id, string(role)).Info("session created", "user_id", user.ID)
	return rec, token, nil
}

// Restore resolves a cookie token to its record. Unknown, expired and tampered
// tokens return ErrInvalidToken or ErrNotFound; callers treat both as anonymous.
func (m *Manager) Restore(ctx context.Context, token string) (*Record, error) {
	id, err := m.signer.Parse(token)
	if err != nil {
		return nil, err
	}
	return m.Get(ctx, id)
}

// Get loads a live record by id.
func (m *Manager) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Expired(m.now()) {
		return nil, ErrNotFound
	}
	return rec, nil
}

// SaveWizard persists the booking wizard state on the record.
func (m *Manager) SaveWizard(ctx context.Context, rec *Record, state booking.State) error {
	if rec == nil {
		return fmt.Errorf("sessions: save wizard: %w", ErrNotFound)
	}
	rec.Wizard = &state
	return m.store.Save(ctx, rec)
}

// ClearWizard discards the booking wizard state.
func (m *Manager) ClearWizard(ctx context.Context, rec *Record) error {
	if rec == nil || rec.Wizard == nil {
		return nil
	}
	rec.Wizard = nil
	return m.store.Save(ctx, rec)
}

// Destroy removes the record (logout or backend expiry).
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.logger.Info("session destroyed", "session_id", id)
	return nil
}
