// Package managers contains the session manager, which owns the full
// lifecycle of authenticated sessions: issuance on login, lookup by bearer
// token, renewal on every authorized request and expiry. The database is
// the single source of truth; a session whose expiry has passed is treated
// as nonexistent by lookups, no explicit deletion is required.
package managers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"kanzlei-server/internal/interfaces"
	"kanzlei-server/internal/schemas"
)

// ErrSessionNotFound is returned when no valid session matches a token or ID.
// Unknown and expired tokens intentionally map to the same error so callers
// cannot probe token validity.
var ErrSessionNotFound = errors.New("session not found")

// SessionMgr defines the interface for session lifecycle management.
type SessionMgr interface {
	CreateSession(ctx context.Context, userID uuid.UUID) (*schemas.Session, error)
	FindValidByToken(ctx context.Context, token string) (*schemas.Session, error)
	RenewSession(ctx context.Context, sessionID uuid.UUID) (*schemas.Session, error)
	ExpireSession(ctx context.Context, sessionID uuid.UUID) error
	TTL() time.Duration
}

// SessionManager implements SessionMgr on top of the sessions table.
type SessionManager struct {
	Pool        interfaces.PgxPoolIface
	PasswordMgr PasswordMgr
	SessionTTL  time.Duration
}

// NewSessionManager creates a new SessionManager. The password manager is
// used for its secure token generator, the TTL comes from the configuration.
func NewSessionManager(pool interfaces.PgxPoolIface, passwordMgr PasswordMgr, ttl time.Duration) SessionMgr {
	log.Info("Initializing session manager")
	return &SessionManager{Pool: pool, PasswordMgr: passwordMgr, SessionTTL: ttl}
}

// TTL returns the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.SessionTTL
}

// CreateSession issues a new session for the given user. The returned session
// carries the plaintext token; this is the only time it is observable.
func (sm *SessionManager) CreateSession(ctx context.Context, userID uuid.UUID) (*schemas.Session, error) {
	token, err := sm.PasswordMgr.GenerateToken()
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New()
	now := time.Now()
	expiresAt := now.Add(sm.SessionTTL)

	queryString := "INSERT INTO sessions (session_id, user_id, token, created_at, updated_at, expires_at) VALUES ($1, $2, $3, $4, $5, $6)"
	if _, err = sm.Pool.Exec(ctx, queryString, sessionID, userID, token, now, now, expiresAt); err != nil {
		return nil, err
	}

	return &schemas.Session{
		ID:        &sessionID,
		UserID:    &userID,
		Token:     token,
		CreatedAt: &now,
		UpdatedAt: &now,
		ExpiresAt: &expiresAt,
	}, nil
}

// FindValidByToken resolves a bearer token to its session. A token matching
// no row and a token matching an expired row both return ErrSessionNotFound.
func (sm *SessionManager) FindValidByToken(ctx context.Context, token string) (*schemas.Session, error) {
	session := &schemas.Session{}

	queryString := "SELECT session_id, user_id, token, created_at, updated_at, expires_at FROM sessions WHERE token = $1 AND expires_at > $2"
	row := sm.Pool.QueryRow(ctx, queryString, token, time.Now())
	if err := row.Scan(&session.ID, &session.UserID, &session.Token, &session.CreatedAt, &session.UpdatedAt, &session.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}

		return nil, err
	}

	return session, nil
}

// RenewSession extends the session expiry to a fresh full TTL window. The
// update is a single conditional row write, so two concurrent renewals of the
// same session settle on last-writer-wins without corrupting state; expiry
// only ever moves forward.
func (sm *SessionManager) RenewSession(ctx context.Context, sessionID uuid.UUID) (*schemas.Session, error) {
	session := &schemas.Session{}
	now := time.Now()
	expiresAt := now.Add(sm.SessionTTL)

	queryString := "UPDATE sessions SET expires_at = $1, updated_at = $2 WHERE session_id = $3 AND expires_at > $2 RETURNING session_id, user_id, token, created_at, updated_at, expires_at"
	row := sm.Pool.QueryRow(ctx, queryString, expiresAt, now, sessionID)
	if err := row.Scan(&session.ID, &session.UserID, &session.Token, &session.CreatedAt, &session.UpdatedAt, &session.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}

		return nil, err
	}

	return session, nil
}

// ExpireSession forces the session expiry to now, revoking it immediately.
// Used for logout; passive expiry needs no call at all.
func (sm *SessionManager) ExpireSession(ctx context.Context, sessionID uuid.UUID) error {
	queryString := "UPDATE sessions SET expires_at = $1, updated_at = $1 WHERE session_id = $2"
	tag, err := sm.Pool.Exec(ctx, queryString, time.Now(), sessionID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}
