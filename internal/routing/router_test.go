package routing

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kanzlei-server/internal/capabilities"
	"kanzlei-server/internal/config"
	"kanzlei-server/internal/managers"
	"kanzlei-server/internal/managers/mocks"
	"kanzlei-server/internal/middleware"
	"kanzlei-server/internal/utils"
)

type testEnvironment struct {
	server      *httptest.Server
	poolMock    pgxmock.PgxPoolIface
	mailMgrMock *mocks.MockMailManager
	passwordMgr managers.PasswordMgr
}

func setupTestEnvironment(t *testing.T) *testEnvironment {
	t.Setenv("ENVIRONMENT", "test")

	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)

	databaseMgrMock := &mocks.MockDatabaseManager{}
	databaseMgrMock.On("GetPool").Return(poolMock)

	passwordMgr, err := managers.NewPasswordManager("test-pepper", bcrypt.MinCost)
	require.NoError(t, err)

	sessionMgr := managers.NewSessionManager(poolMock, passwordMgr, time.Hour)

	mailMgrMock := &mocks.MockMailManager{}

	cfg := &config.Config{
		Environment:   "test",
		SessionTTL:    time.Hour,
		ActivationTTL: 24 * time.Hour,
	}

	router := InitRouter(databaseMgrMock, sessionMgr, passwordMgr, mailMgrMock, cfg)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnvironment{
		server:      server,
		poolMock:    poolMock,
		mailMgrMock: mailMgrMock,
		passwordMgr: passwordMgr,
	}
}

// expectSessionLookup queues the guard's session and user queries for a
// request arriving with the given bearer token.
func (env *testEnvironment) expectSessionLookup(token string, sessionId, userId uuid.UUID, features []string) {
	now := time.Now()
	expiresAt := now.Add(time.Hour)
	activatedAt := now.Add(-24 * time.Hour)

	env.poolMock.ExpectQuery("SELECT session_id, user_id, token").
		WithArgs(token, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"session_id", "user_id", "token", "created_at", "updated_at", "expires_at"}).
			AddRow(&sessionId, &userId, token, &now, &now, &expiresAt))

	env.poolMock.ExpectQuery("SELECT user_id, name, email, password, features").
		WithArgs(&userId).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "name", "email", "password", "features", "created_at", "updated_at", "activated_at"}).
			AddRow(&userId, "Anna Admin", "anna@kanzlei-weber.de", "hash", features, &now, &now, &activatedAt))
}

// expectSessionRenewal queues the conditional expiry update the guard runs
// after a successful capability check.
func (env *testEnvironment) expectSessionRenewal(token string, sessionId, userId uuid.UUID) {
	now := time.Now()
	newExpiry := now.Add(time.Hour)

	env.poolMock.ExpectQuery("UPDATE sessions SET expires_at").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), sessionId).
		WillReturnRows(pgxmock.NewRows([]string{"session_id", "user_id", "token", "created_at", "updated_at", "expires_at"}).
			AddRow(&sessionId, &userId, token, &now, &now, &newExpiry))
}

func TestLoginAndReadSelf(t *testing.T) {
	env := setupTestEnvironment(t)
	expect := httpexpect.Default(t, env.server.URL)

	userId := uuid.New()
	activatedAt := time.Now().Add(-24 * time.Hour)
	hash, err := env.passwordMgr.HashPassword("Secur3.Passw0rd!")
	require.NoError(t, err)

	env.poolMock.ExpectQuery("SELECT user_id, name, email, password, features, activated_at").
		WithArgs("anna@kanzlei-weber.de").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "name", "email", "password", "features", "activated_at"}).
			AddRow(&userId, "Anna Admin", "anna@kanzlei-weber.de", hash, []string{capabilities.ReadUserSelf}, &activatedAt))
	env.poolMock.ExpectExec("INSERT INTO sessions").
		WithArgs(pgxmock.AnyArg(), userId, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	loginResponse := expect.POST("/api/sessions").
		WithJSON(map[string]string{"email": "anna@kanzlei-weber.de", "password": "Secur3.Passw0rd!"}).
		Expect().Status(http.StatusOK)
	loginResponse.JSON().Object().HasValue("email", "anna@kanzlei-weber.de")

	cookie := loginResponse.Cookie(middleware.SessionCookieName)
	cookie.Value().NotEmpty()
	cookie.MaxAge().IsEqual(time.Hour)
	token := cookie.Value().Raw()

	sessionId := uuid.New()
	env.expectSessionLookup(token, sessionId, userId, []string{capabilities.ReadUserSelf})
	env.expectSessionRenewal(token, sessionId, userId)

	selfResponse := expect.GET("/api/users/self").
		WithCookie(middleware.SessionCookieName, token).
		Expect().Status(http.StatusOK)
	selfResponse.JSON().Object().HasValue("email", "anna@kanzlei-weber.de")

	// Renewal slides the expiry but never rotates the token: the re-issued
	// cookie carries the same value and a fresh full TTL window, so its
	// absolute expiry lies beyond the login-issued one.
	renewedCookie := selfResponse.Cookie(middleware.SessionCookieName)
	renewedCookie.Value().IsEqual(token)
	renewedCookie.MaxAge().IsEqual(time.Hour)

	require.NoError(t, env.poolMock.ExpectationsWereMet())
}

func TestGuardedRouteWithoutCookie(t *testing.T) {
	env := setupTestEnvironment(t)
	expect := httpexpect.Default(t, env.server.URL)

	response := expect.GET("/api/users/self").Expect().Status(http.StatusUnauthorized)
	response.JSON().Object().Value("error").Object().HasValue("name", "UnauthorizedError")

	// No query must reach the database for an unauthenticated request.
	require.NoError(t, env.poolMock.ExpectationsWereMet())
}

func TestGuardedRouteWithoutCapability(t *testing.T) {
	env := setupTestEnvironment(t)
	expect := httpexpect.Default(t, env.server.URL)

	token := strings.Repeat("cd", 32)
	sessionId := uuid.New()
	userId := uuid.New()

	// The user holds read-user-self only, yet tries to create a user.
	env.expectSessionLookup(token, sessionId, userId, []string{capabilities.ReadUserSelf})

	response := expect.POST("/api/users").
		WithCookie(middleware.SessionCookieName, token).
		WithJSON(map[string]interface{}{"name": "Neue Nutzerin", "email": "neu@kanzlei-weber.de"}).
		Expect().Status(http.StatusForbidden)
	errorObject := response.JSON().Object().Value("error").Object()
	errorObject.HasValue("name", "ForbiddenError")
	errorObject.HasValue("status_code", http.StatusForbidden)

	// Forbidden requests leave the session untouched: no renewal was queued,
	// so any session write would fail the expectation check.
	require.NoError(t, env.poolMock.ExpectationsWereMet())
}

func TestCreateUserChecksEmailReachability(t *testing.T) {
	env := setupTestEnvironment(t)
	expect := httpexpect.Default(t, env.server.URL)

	validator := utils.GetValidator()
	originalVerify := validator.VerifyEmail
	t.Cleanup(func() { validator.VerifyEmail = originalVerify })

	token := strings.Repeat("ef", 32)
	sessionId := uuid.New()
	adminId := uuid.New()
	payload := map[string]interface{}{
		"name":     "Neue Nutzerin",
		"email":    "neu@kanzlei-weber.de",
		"features": []string{},
	}

	// An unreachable address aborts the creation, nothing is inserted.
	validator.VerifyEmail = func(string) bool { return false }

	env.expectSessionLookup(token, sessionId, adminId, []string{capabilities.CreateUser})
	env.expectSessionRenewal(token, sessionId, adminId)
	env.poolMock.ExpectBegin()
	env.poolMock.ExpectQuery("SELECT EXISTS").
		WithArgs("neu@kanzlei-weber.de").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	env.poolMock.ExpectRollback()

	response := expect.POST("/api/users").
		WithCookie(middleware.SessionCookieName, token).
		WithJSON(payload).
		Expect().Status(http.StatusBadRequest)
	response.JSON().Object().Value("error").Object().HasValue("name", "ValidationError")

	// A reachable address runs the full creation flow.
	validator.VerifyEmail = func(string) bool { return true }
	env.mailMgrMock.On("SendActivationMail", "neu@kanzlei-weber.de", "Neue Nutzerin", mock.AnythingOfType("string")).Return(nil)

	env.expectSessionLookup(token, sessionId, adminId, []string{capabilities.CreateUser})
	env.expectSessionRenewal(token, sessionId, adminId)
	env.poolMock.ExpectBegin()
	env.poolMock.ExpectQuery("SELECT EXISTS").
		WithArgs("neu@kanzlei-weber.de").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	env.poolMock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "Neue Nutzerin", "neu@kanzlei-weber.de", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	env.poolMock.ExpectExec("INSERT INTO activation_tokens").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	env.poolMock.ExpectCommit()

	created := expect.POST("/api/users").
		WithCookie(middleware.SessionCookieName, token).
		WithJSON(payload).
		Expect().Status(http.StatusCreated)
	created.JSON().Object().HasValue("active", false)

	env.mailMgrMock.AssertCalled(t, "SendActivationMail", "neu@kanzlei-weber.de", "Neue Nutzerin", mock.AnythingOfType("string"))
	require.NoError(t, env.poolMock.ExpectationsWereMet())
}

func TestChangePasswordRejectsWrongCurrentPassword(t *testing.T) {
	env := setupTestEnvironment(t)
	expect := httpexpect.Default(t, env.server.URL)

	token := strings.Repeat("12", 32)
	sessionId := uuid.New()
	userId := uuid.New()

	env.expectSessionLookup(token, sessionId, userId, []string{capabilities.ReadUserSelf})
	env.expectSessionRenewal(token, sessionId, userId)

	response := expect.PATCH("/api/users/self/password").
		WithCookie(middleware.SessionCookieName, token).
		WithJSON(map[string]string{"oldPassword": "Wrong.Passw0rd!", "newPassword": "Fresh3r.Passw0rd!"}).
		Expect().Status(http.StatusForbidden)
	errorObject := response.JSON().Object().Value("error").Object()
	errorObject.HasValue("name", "PasswordMismatchError")
	errorObject.HasValue("status_code", http.StatusForbidden)

	// The stored password is never touched on a mismatch.
	require.NoError(t, env.poolMock.ExpectationsWereMet())
}

func TestActivationTokenIsOneShot(t *testing.T) {
	env := setupTestEnvironment(t)
	expect := httpexpect.Default(t, env.server.URL)

	userId := uuid.New()
	tokenId := uuid.New()
	token := strings.Repeat("ab", 32)
	expiresAt := time.Now().Add(12 * time.Hour)
	payload := map[string]string{"token": token, "password": "Secur3.Passw0rd!"}

	env.mailMgrMock.On("SendConfirmationMail", "anna@kanzlei-weber.de", "Anna Admin").Return(nil)

	// First consumption activates the account.
	env.poolMock.ExpectBegin()
	env.poolMock.ExpectQuery("SELECT token_id, used, expires_at").
		WithArgs(userId, token).
		WillReturnRows(pgxmock.NewRows([]string{"token_id", "used", "expires_at"}).
			AddRow(tokenId, false, expiresAt))
	env.poolMock.ExpectExec("UPDATE users SET password").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), userId).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	env.poolMock.ExpectExec("UPDATE activation_tokens SET used = TRUE").
		WithArgs(tokenId).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	env.poolMock.ExpectQuery("SELECT user_id, name, email, features").
		WithArgs(userId).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "name", "email", "features"}).
			AddRow(&userId, "Anna Admin", "anna@kanzlei-weber.de", []string{}))
	env.poolMock.ExpectCommit()

	firstResponse := expect.POST("/api/users/"+userId.String()+"/activate").
		WithJSON(payload).
		Expect().Status(http.StatusOK)
	firstResponse.JSON().Object().HasValue("active", true)

	// The second attempt finds the token burned and must fail.
	env.poolMock.ExpectBegin()
	env.poolMock.ExpectQuery("SELECT token_id, used, expires_at").
		WithArgs(userId, token).
		WillReturnRows(pgxmock.NewRows([]string{"token_id", "used", "expires_at"}).
			AddRow(tokenId, true, expiresAt))
	env.poolMock.ExpectRollback()

	secondResponse := expect.POST("/api/users/"+userId.String()+"/activate").
		WithJSON(payload).
		Expect().Status(http.StatusBadRequest)
	secondResponse.JSON().Object().Value("error").Object().HasValue("name", "ValidationError")

	require.NoError(t, env.poolMock.ExpectationsWereMet())
}

func TestContactFormSubmission(t *testing.T) {
	env := setupTestEnvironment(t)
	expect := httpexpect.Default(t, env.server.URL)

	env.mailMgrMock.On("SendContactMail", "Max Mustermann", "max@example.com", "Terminanfrage", "Ich bitte um einen Beratungstermin.").Return(nil)

	expect.POST("/api/contact").
		WithJSON(map[string]string{
			"name":    "Max Mustermann",
			"email":   "max@example.com",
			"subject": "Terminanfrage",
			"message": "Ich bitte um einen Beratungstermin.",
		}).
		Expect().Status(http.StatusNoContent)

	env.mailMgrMock.AssertCalled(t, "SendContactMail", "Max Mustermann", "max@example.com", "Terminanfrage", "Ich bitte um einen Beratungstermin.")
	require.NoError(t, env.poolMock.ExpectationsWereMet())
}

func TestMethodNotAllowedCarriesAllowHeader(t *testing.T) {
	env := setupTestEnvironment(t)
	expect := httpexpect.Default(t, env.server.URL)

	response := expect.PATCH("/api/team").Expect().Status(http.StatusMethodNotAllowed)
	response.JSON().Object().Value("error").Object().HasValue("name", "MethodNotAllowedError")

	allowHeader := response.Header("Allow")
	allowHeader.Contains("GET")
	allowHeader.Contains("POST")
	allowHeader.NotContains("PATCH")
}

func TestPublicArticleListing(t *testing.T) {
	env := setupTestEnvironment(t)
	expect := httpexpect.Default(t, env.server.URL)

	articleId := uuid.New()
	now := time.Now()

	env.poolMock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	env.poolMock.ExpectQuery("SELECT article_id, title, slug, body, published").
		WithArgs(0, 10).
		WillReturnRows(pgxmock.NewRows([]string{"article_id", "title", "slug", "body", "published", "created_at", "updated_at"}).
			AddRow(&articleId, "Neues Mietrecht 2026", "neues-mietrecht-2026", "<p>Inhalt</p>", true, &now, &now))

	response := expect.GET("/api/articles").Expect().Status(http.StatusOK)
	records := response.JSON().Object().Value("records").Array()
	records.Length().IsEqual(1)
	records.Value(0).Object().HasValue("slug", "neues-mietrecht-2026")

	require.NoError(t, env.poolMock.ExpectationsWereMet())
}
