// Package handlers contains the gin handlers orchestrating the business
// logic between the HTTP layer and the database.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kanzlei-server/internal/config"
	"kanzlei-server/internal/managers"
	"kanzlei-server/internal/middleware"
	"kanzlei-server/internal/schemas"
	"kanzlei-server/internal/utils"
)

type UserHdl interface {
	CreateUser(c *gin.Context)
	ActivateUser(c *gin.Context)
	GetSelf(c *gin.Context)
	ListUsers(c *gin.Context)
	UpdateFeatures(c *gin.Context)
	GetActivationToken(c *gin.Context)
	ChangePassword(c *gin.Context)
}

type UserHandler struct {
	DatabaseManager managers.DatabaseMgr
	PasswordManager managers.PasswordMgr
	MailManager     managers.MailMgr
	Validator       *utils.Validator
	ActivationTTL   time.Duration
}

func NewUserHandler(databaseManager managers.DatabaseMgr, passwordManager managers.PasswordMgr, mailManager managers.MailMgr, cfg *config.Config) UserHdl {
	return &UserHandler{
		DatabaseManager: databaseManager,
		PasswordManager: passwordManager,
		MailManager:     mailManager,
		Validator:       utils.GetValidator(),
		ActivationTTL:   cfg.ActivationTTL,
	}
}

// CreateUser creates a new inactive user and issues a one-time activation
// token. The account cannot log in until the token is consumed and a first
// password is set.
func (handler *UserHandler) CreateUser(c *gin.Context) {
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	createUserRequest := &schemas.CreateUserRequest{}
	if err = c.ShouldBindJSON(createUserRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	if err = handler.Validator.Validate.Struct(createUserRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	// Check if the email is taken
	var taken bool
	queryString := "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)"
	if err = tx.QueryRow(c, queryString, createUserRequest.Email).Scan(&taken); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	if taken {
		err = errors.New("email already in use")
		utils.WriteAndLogError(c, schemas.EmailTakenError, err)
		return
	}

	// Check the address is reachable before an activation mail goes out to it
	if !handler.Validator.VerifyEmail(createUserRequest.Email) {
		err = errors.New("email unreachable")
		utils.WriteAndLogError(c, schemas.EmailUnreachableError, err)
		return
	}

	// Insert the user without a password; it is set during activation
	userId := uuid.New()
	createdAt := time.Now()
	features := createUserRequest.Features
	if features == nil {
		features = []string{}
	}

	queryString = "INSERT INTO users (user_id, name, email, password, features, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $6)"
	if _, err = tx.Exec(c, queryString, userId, createUserRequest.Name, createUserRequest.Email, "", features, createdAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	// Issue the activation token and mail it to the new user
	token, err := handler.PasswordManager.GenerateToken()
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, err)
		return
	}

	queryString = "INSERT INTO activation_tokens (token_id, user_id, token, used, created_at, expires_at) VALUES ($1, $2, $3, FALSE, $4, $5)"
	if _, err = tx.Exec(c, queryString, uuid.New(), userId, token, createdAt, createdAt.Add(handler.ActivationTTL)); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	if err = handler.MailManager.SendActivationMail(createUserRequest.Email, createUserRequest.Name, token); err != nil {
		utils.WriteAndLogError(c, schemas.ServiceError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	userDto := &schemas.UserDTO{
		UserID:   userId.String(),
		Name:     createUserRequest.Name,
		Email:    createUserRequest.Email,
		Features: features,
		Active:   false,
	}

	utils.WriteAndLogResponse(c, userDto, http.StatusCreated)
}

// ActivateUser consumes an activation token and sets the user's first
// password. The token is strictly one-shot: the password is applied before
// the token is flipped to used, so a crash in between leaves the token
// consumable rather than burned without effect.
func (handler *UserHandler) ActivateUser(c *gin.Context) {
	tx := utils.BeginTransaction(c, handler.DatabaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	activationRequest := &schemas.ActivationRequest{}
	if err = c.ShouldBindJSON(activationRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	if err = handler.Validator.Validate.Struct(activationRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	userId, err := uuid.Parse(c.Param(utils.UserIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	// Look up the token. A token that is unknown, expired or already used
	// fails with the same validation error, nothing is leaked about which.
	var tokenId uuid.UUID
	var used bool
	var expiresAt time.Time
	queryString := "SELECT token_id, used, expires_at FROM activation_tokens WHERE user_id = $1 AND token = $2"
	if err = tx.QueryRow(c, queryString, userId, activationRequest.Token).Scan(&tokenId, &used, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.ValidationError, errors.New("activation token invalid"))
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	if used || time.Now().After(expiresAt) {
		err = errors.New("activation token used or expired")
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	hashedPassword, err := handler.PasswordManager.HashPassword(activationRequest.Password)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, err)
		return
	}

	// Set the password and activation state first, then burn the token.
	activatedAt := time.Now()
	queryString = "UPDATE users SET password = $1, activated_at = $2, updated_at = $2 WHERE user_id = $3"
	if _, err = tx.Exec(c, queryString, hashedPassword, activatedAt, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	// The conditional update makes consumption exactly-once even under
	// concurrent requests with the same token.
	queryString = "UPDATE activation_tokens SET used = TRUE WHERE token_id = $1 AND used = FALSE"
	tag, err := tx.Exec(c, queryString, tokenId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	if tag.RowsAffected() == 0 {
		err = errors.New("activation token already consumed")
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	user := &schemas.User{}
	queryString = "SELECT user_id, name, email, features FROM users WHERE user_id = $1"
	if err = tx.QueryRow(c, queryString, userId).Scan(&user.ID, &user.Name, &user.Email, &user.Features); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	if err := handler.MailManager.SendConfirmationMail(user.Email, user.Name); err != nil {
		utils.LogMessageWithFieldsAndError(c, "warn", "Error sending confirmation mail", err)
	}

	userDto := &schemas.UserDTO{
		UserID:   user.ID.String(),
		Name:     user.Name,
		Email:    user.Email,
		Features: user.Features,
		Active:   true,
	}

	utils.WriteAndLogResponse(c, userDto, http.StatusOK)
}

// GetSelf returns the user resolved by the request guard.
func (handler *UserHandler) GetSelf(c *gin.Context) {
	user, ok := middleware.GetContextUser(c)
	if !ok {
		utils.WriteAndLogError(c, schemas.UnauthorizedError, errors.New("no user in context"))
		return
	}

	userDto := &schemas.UserDTO{
		UserID:   user.ID.String(),
		Name:     user.Name,
		Email:    user.Email,
		Features: user.Features,
		Active:   user.ActivatedAt != nil,
	}

	utils.WriteAndLogResponse(c, userDto, http.StatusOK)
}

// ListUsers returns a paginated list of all users.
func (handler *UserHandler) ListUsers(c *gin.Context) {
	offset, limit := utils.ParsePaginationParams(c)
	pool := handler.DatabaseManager.GetPool()

	var totalRecords int
	queryString := "SELECT COUNT(*) FROM users"
	if err := pool.QueryRow(c, queryString).Scan(&totalRecords); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	queryString = "SELECT user_id, name, email, features, activated_at FROM users ORDER BY created_at ASC OFFSET $1 LIMIT $2"
	rows, err := pool.Query(c, queryString, offset, limit)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}
	defer rows.Close()

	users := make([]*schemas.UserDTO, 0)
	for rows.Next() {
		user := &schemas.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Features, &user.ActivatedAt); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, err)
			return
		}

		users = append(users, &schemas.UserDTO{
			UserID:   user.ID.String(),
			Name:     user.Name,
			Email:    user.Email,
			Features: user.Features,
			Active:   user.ActivatedAt != nil,
		})
	}

	utils.SendPaginatedResponse(c, users, offset, limit, totalRecords)
}

// UpdateFeatures replaces the capability set of a user. Every entry has been
// validated against the catalog, so a typo'd feature can never be granted.
func (handler *UserHandler) UpdateFeatures(c *gin.Context) {
	updateFeaturesRequest := &schemas.UpdateFeaturesRequest{}
	if err := c.ShouldBindJSON(updateFeaturesRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	if err := handler.Validator.Validate.Struct(updateFeaturesRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	userId, err := uuid.Parse(c.Param(utils.UserIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	user := &schemas.User{}
	queryString := "UPDATE users SET features = $1, updated_at = $2 WHERE user_id = $3 RETURNING user_id, name, email, features, activated_at"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, updateFeaturesRequest.Features, time.Now(), userId)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Features, &user.ActivatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.NotFoundError, err)
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	userDto := &schemas.UserDTO{
		UserID:   user.ID.String(),
		Name:     user.Name,
		Email:    user.Email,
		Features: user.Features,
		Active:   user.ActivatedAt != nil,
	}

	utils.WriteAndLogResponse(c, userDto, http.StatusOK)
}

// GetActivationToken returns the newest consumable activation token of a
// user, so an administrator can hand it over when mail delivery is off.
func (handler *UserHandler) GetActivationToken(c *gin.Context) {
	userId, err := uuid.Parse(c.Param(utils.UserIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	token := &schemas.ActivationToken{}
	queryString := "SELECT token_id, token, expires_at FROM activation_tokens WHERE user_id = $1 AND used = FALSE AND expires_at > $2 ORDER BY created_at DESC LIMIT 1"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, userId, time.Now())
	if err := row.Scan(&token.ID, &token.Token, &token.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.NotFoundError, err)
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	tokenDto := &schemas.ActivationTokenDTO{
		TokenID:   token.ID.String(),
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt.Format(time.RFC3339),
	}

	utils.WriteAndLogResponse(c, tokenDto, http.StatusOK)
}

// ChangePassword changes the password of the requesting user.
func (handler *UserHandler) ChangePassword(c *gin.Context) {
	user, ok := middleware.GetContextUser(c)
	if !ok {
		utils.WriteAndLogError(c, schemas.UnauthorizedError, errors.New("no user in context"))
		return
	}

	changePasswordRequest := &schemas.ChangePasswordRequest{}
	if err := c.ShouldBindJSON(changePasswordRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	if err := handler.Validator.Validate.Struct(changePasswordRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	if !handler.PasswordManager.ComparePassword(changePasswordRequest.OldPassword, user.Password) {
		utils.WriteAndLogError(c, schemas.PasswordMismatchError, errors.New("old password mismatch"))
		return
	}

	hashedPassword, err := handler.PasswordManager.HashPassword(changePasswordRequest.NewPassword)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, err)
		return
	}

	queryString := "UPDATE users SET password = $1, updated_at = $2 WHERE user_id = $3"
	if _, err := handler.DatabaseManager.GetPool().Exec(c, queryString, hashedPassword, time.Now(), user.ID); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	c.Status(http.StatusNoContent)
}
