// Package middleware contains the request guard that turns a bearer cookie
// into an authenticated, authorized request. The guard resolves the session,
// loads the owning user, enforces exactly one required capability, renews the
// session and re-attaches the cookie so expiry slides forward on every
// authorized call.
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"kanzlei-server/internal/capabilities"
	"kanzlei-server/internal/managers"
	"kanzlei-server/internal/schemas"
	"kanzlei-server/internal/utils"
)

// SessionCookieName is the cookie carrying the opaque bearer token.
const SessionCookieName = "session_id"

// SessionCookiePath scopes the cookie to the API.
const SessionCookiePath = "/api"

// SetSessionCookie attaches the session token to the response as a scoped,
// HttpOnly cookie. Secure is set outside development so the token never
// travels over plain HTTP in production.
func SetSessionCookie(c *gin.Context, token string, maxAge int, environment string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, token, maxAge, SessionCookiePath, "", environment != "development", true)
}

// ClearSessionCookie removes the session cookie from the client.
func ClearSessionCookie(c *gin.Context, environment string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, "", -1, SessionCookiePath, "", environment != "development", true)
}

// RequireCapability wraps the handlers of a route with the session guard.
//
// The guard fails with 401 when the cookie is missing, the token resolves to
// no valid session (expired and unknown tokens are indistinguishable on
// purpose) or the owning user no longer exists. It fails with 403 when the
// user is authenticated but the required capability is not in their feature
// set. Only after the capability check passes is the session renewed, so an
// unauthenticated or forbidden request never mutates session state.
func RequireCapability(databaseMgr managers.DatabaseMgr, sessionMgr managers.SessionMgr, environment, capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			utils.WriteAndLogError(c, schemas.UnauthorizedError, errors.New("session cookie missing"))
			return
		}

		session, err := sessionMgr.FindValidByToken(c, token)
		if err != nil {
			if errors.Is(err, managers.ErrSessionNotFound) {
				utils.WriteAndLogError(c, schemas.UnauthorizedError, err)
				return
			}

			utils.WriteAndLogError(c, schemas.DatabaseError, err)
			return
		}

		user, err := loadUser(c, databaseMgr, session)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Orphaned session, the user row is gone.
				utils.WriteAndLogError(c, schemas.UnauthorizedError, err)
				return
			}

			utils.WriteAndLogError(c, schemas.DatabaseError, err)
			return
		}

		if !capabilities.Can(user, capability) {
			utils.WriteAndLogError(c, schemas.ForbiddenError, errors.New("missing capability: "+capability))
			return
		}

		renewed, err := sessionMgr.RenewSession(c, *session.ID)
		if err != nil {
			if errors.Is(err, managers.ErrSessionNotFound) {
				// The session vanished between lookup and renewal; treat as unauthorized.
				utils.WriteAndLogError(c, schemas.UnauthorizedError, err)
				return
			}

			utils.WriteAndLogError(c, schemas.DatabaseError, err)
			return
		}

		SetSessionCookie(c, renewed.Token, int(sessionMgr.TTL().Seconds()), environment)

		c.Set(utils.UserKey.String(), user)
		c.Set(utils.SessionKey.String(), renewed)
		c.Next()
	}
}

// loadUser fetches the user row owning the session.
func loadUser(c *gin.Context, databaseMgr managers.DatabaseMgr, session *schemas.Session) (*schemas.User, error) {
	user := &schemas.User{}

	queryString := "SELECT user_id, name, email, password, features, created_at, updated_at, activated_at FROM users WHERE user_id = $1"
	row := databaseMgr.GetPool().QueryRow(c, queryString, session.UserID)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Features, &user.CreatedAt, &user.UpdatedAt, &user.ActivatedAt); err != nil {
		return nil, err
	}

	return user, nil
}

// GetContextUser returns the user the guard stored in the request context.
func GetContextUser(c *gin.Context) (*schemas.User, bool) {
	value, ok := c.Get(utils.UserKey.String())
	if !ok {
		return nil, false
	}

	user, ok := value.(*schemas.User)
	return user, ok
}

// GetContextSession returns the session the guard stored in the request context.
func GetContextSession(c *gin.Context) (*schemas.Session, bool) {
	value, ok := c.Get(utils.SessionKey.String())
	if !ok {
		return nil, false
	}

	session, ok := value.(*schemas.Session)
	return session, ok
}
