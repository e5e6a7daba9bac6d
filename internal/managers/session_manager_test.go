package managers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestSessionManager(t *testing.T) (SessionMgr, pgxmock.PgxPoolIface) {
	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)

	passwordMgr, err := NewPasswordManager("test-pepper", bcrypt.MinCost)
	require.NoError(t, err)

	return NewSessionManager(poolMock, passwordMgr, time.Hour), poolMock
}

func TestCreateSession(t *testing.T) {
	sessionMgr, poolMock := newTestSessionManager(t)
	userId := uuid.New()

	poolMock.ExpectExec("INSERT INTO sessions").
		WithArgs(pgxmock.AnyArg(), userId, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	before := time.Now()
	session, err := sessionMgr.CreateSession(context.Background(), userId)
	require.NoError(t, err)

	assert.Equal(t, userId, *session.UserID)
	assert.Len(t, session.Token, TokenLength*2)
	assert.True(t, session.ExpiresAt.After(before.Add(59*time.Minute)))

	require.NoError(t, poolMock.ExpectationsWereMet())
}

func TestCreateSessionTokensAreUnique(t *testing.T) {
	sessionMgr, poolMock := newTestSessionManager(t)
	userId := uuid.New()

	seen := make(map[string]struct{})
	for i := 0; i < 10; i++ {
		poolMock.ExpectExec("INSERT INTO sessions").
			WithArgs(pgxmock.AnyArg(), userId, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		session, err := sessionMgr.CreateSession(context.Background(), userId)
		require.NoError(t, err)

		_, duplicate := seen[session.Token]
		assert.False(t, duplicate, "token issued twice")
		seen[session.Token] = struct{}{}
	}

	require.NoError(t, poolMock.ExpectationsWereMet())
}

func TestFindValidByToken(t *testing.T) {
	sessionMgr, poolMock := newTestSessionManager(t)

	sessionId := uuid.New()
	userId := uuid.New()
	now := time.Now()
	expiresAt := now.Add(time.Hour)

	poolMock.ExpectQuery("SELECT session_id, user_id, token").
		WithArgs("valid-token", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"session_id", "user_id", "token", "created_at", "updated_at", "expires_at"}).
			AddRow(&sessionId, &userId, "valid-token", &now, &now, &expiresAt))

	session, err := sessionMgr.FindValidByToken(context.Background(), "valid-token")
	require.NoError(t, err)
	assert.Equal(t, sessionId, *session.ID)
	assert.Equal(t, userId, *session.UserID)

	require.NoError(t, poolMock.ExpectationsWereMet())
}

func TestFindValidByTokenUnknown(t *testing.T) {
	sessionMgr, poolMock := newTestSessionManager(t)

	// Unknown and expired tokens produce the same empty result set, so both
	// surface as the identical not-found error.
	poolMock.ExpectQuery("SELECT session_id, user_id, token").
		WithArgs("unknown-or-expired", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := sessionMgr.FindValidByToken(context.Background(), "unknown-or-expired")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, poolMock.ExpectationsWereMet())
}

func TestRenewSessionExtendsExpiry(t *testing.T) {
	sessionMgr, poolMock := newTestSessionManager(t)

	sessionId := uuid.New()
	userId := uuid.New()
	createdAt := time.Now().Add(-30 * time.Minute)
	renewedAt := time.Now()
	newExpiry := renewedAt.Add(time.Hour)

	poolMock.ExpectQuery("UPDATE sessions SET expires_at").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), sessionId).
		WillReturnRows(pgxmock.NewRows([]string{"session_id", "user_id", "token", "created_at", "updated_at", "expires_at"}).
			AddRow(&sessionId, &userId, "token", &createdAt, &renewedAt, &newExpiry))

	session, err := sessionMgr.RenewSession(context.Background(), sessionId)
	require.NoError(t, err)
	assert.True(t, session.ExpiresAt.After(time.Now()), "renewed expiry must lie in the future")
	assert.True(t, session.ExpiresAt.After(*session.CreatedAt))

	require.NoError(t, poolMock.ExpectationsWereMet())
}

func TestRenewSessionGone(t *testing.T) {
	sessionMgr, poolMock := newTestSessionManager(t)
	sessionId := uuid.New()

	poolMock.ExpectQuery("UPDATE sessions SET expires_at").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), sessionId).
		WillReturnError(pgx.ErrNoRows)

	_, err := sessionMgr.RenewSession(context.Background(), sessionId)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, poolMock.ExpectationsWereMet())
}

func TestExpireSession(t *testing.T) {
	sessionMgr, poolMock := newTestSessionManager(t)
	sessionId := uuid.New()

	poolMock.ExpectExec("UPDATE sessions SET expires_at").
		WithArgs(pgxmock.AnyArg(), sessionId).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, sessionMgr.ExpireSession(context.Background(), sessionId))
	require.NoError(t, poolMock.ExpectationsWereMet())
}

func TestExpireSessionUnknown(t *testing.T) {
	sessionMgr, poolMock := newTestSessionManager(t)
	sessionId := uuid.New()

	poolMock.ExpectExec("UPDATE sessions SET expires_at").
		WithArgs(pgxmock.AnyArg(), sessionId).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := sessionMgr.ExpireSession(context.Background(), sessionId)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, poolMock.ExpectationsWereMet())
}
