package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"kanzlei-server/internal/config"
	"kanzlei-server/internal/managers"
	"kanzlei-server/internal/middleware"
	"kanzlei-server/internal/schemas"
	"kanzlei-server/internal/utils"
)

type SessionHdl interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
	GetSelf(c *gin.Context)
}

type SessionHandler struct {
	DatabaseManager managers.DatabaseMgr
	SessionManager  managers.SessionMgr
	PasswordManager managers.PasswordMgr
	Validator       *utils.Validator
	Environment     string
}

func NewSessionHandler(databaseManager managers.DatabaseMgr, sessionManager managers.SessionMgr, passwordManager managers.PasswordMgr, cfg *config.Config) SessionHdl {
	return &SessionHandler{
		DatabaseManager: databaseManager,
		SessionManager:  sessionManager,
		PasswordManager: passwordManager,
		Validator:       utils.GetValidator(),
		Environment:     cfg.Environment,
	}
}

// Login verifies the credentials and issues a new session. The response
// carries the session cookie; the body never reveals whether the email or
// the password was the wrong half of a failed attempt.
func (handler *SessionHandler) Login(c *gin.Context) {
	loginRequest := &schemas.LoginRequest{}
	if err := c.ShouldBindJSON(loginRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	if err := handler.Validator.Validate.Struct(loginRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	user := &schemas.User{}
	queryString := "SELECT user_id, name, email, password, features, activated_at FROM users WHERE email = $1"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, loginRequest.Email)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Features, &user.ActivatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.InvalidCredentialsError, err)
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	if user.ActivatedAt == nil {
		utils.WriteAndLogError(c, schemas.UserNotActivatedError, errors.New("user not activated"))
		return
	}

	if !handler.PasswordManager.ComparePassword(loginRequest.Password, user.Password) {
		utils.WriteAndLogError(c, schemas.InvalidCredentialsError, errors.New("password mismatch"))
		return
	}

	session, err := handler.SessionManager.CreateSession(c, *user.ID)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	middleware.SetSessionCookie(c, session.Token, int(handler.SessionManager.TTL().Seconds()), handler.Environment)

	userDto := &schemas.UserDTO{
		UserID:   user.ID.String(),
		Name:     user.Name,
		Email:    user.Email,
		Features: user.Features,
		Active:   true,
	}

	utils.WriteAndLogResponse(c, userDto, http.StatusOK)
}

// Logout revokes the session carried by the cookie and clears the cookie.
// No capability is required; holding the valid cookie is enough.
func (handler *SessionHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || token == "" {
		utils.WriteAndLogError(c, schemas.UnauthorizedError, errors.New("session cookie missing"))
		return
	}

	session, err := handler.SessionManager.FindValidByToken(c, token)
	if err != nil {
		if errors.Is(err, managers.ErrSessionNotFound) {
			utils.WriteAndLogError(c, schemas.UnauthorizedError, err)
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	if err := handler.SessionManager.ExpireSession(c, *session.ID); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	middleware.ClearSessionCookie(c, handler.Environment)
	c.Status(http.StatusNoContent)
}

// GetSelf returns the metadata of the session the guard resolved, so a client
// can inspect when its sliding window currently ends.
func (handler *SessionHandler) GetSelf(c *gin.Context) {
	session, ok := middleware.GetContextSession(c)
	if !ok {
		utils.WriteAndLogError(c, schemas.UnauthorizedError, errors.New("no session in context"))
		return
	}

	response := gin.H{
		"sessionId": session.ID.String(),
		"createdAt": session.CreatedAt.Format(time.RFC3339),
		"expiresAt": session.ExpiresAt.Format(time.RFC3339),
	}

	utils.WriteAndLogResponse(c, response, http.StatusOK)
}
