package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/microcosm-cc/bluemonday"

	"kanzlei-server/internal/managers"
	"kanzlei-server/internal/middleware"
	"kanzlei-server/internal/schemas"
	"kanzlei-server/internal/utils"
)

type ArticleHdl interface {
	ListPublished(c *gin.Context)
	GetPublished(c *gin.Context)
	ListAll(c *gin.Context)
	CreateArticle(c *gin.Context)
	UpdateArticle(c *gin.Context)
	DeleteArticle(c *gin.Context)
}

type ArticleHandler struct {
	DatabaseManager managers.DatabaseMgr
	Validator       *utils.Validator
	Policy          *bluemonday.Policy
}

func NewArticleHandler(databaseManager managers.DatabaseMgr) ArticleHdl {
	return &ArticleHandler{
		DatabaseManager: databaseManager,
		Validator:       utils.GetValidator(),
		Policy:          bluemonday.UGCPolicy(),
	}
}

// ListPublished returns the published articles for the public blog page.
func (handler *ArticleHandler) ListPublished(c *gin.Context) {
	handler.listArticles(c, true)
}

// ListAll returns every article, drafts included, for the admin area.
func (handler *ArticleHandler) ListAll(c *gin.Context) {
	handler.listArticles(c, false)
}

func (handler *ArticleHandler) listArticles(c *gin.Context, publishedOnly bool) {
	offset, limit := utils.ParsePaginationParams(c)
	pool := handler.DatabaseManager.GetPool()

	countQuery := "SELECT COUNT(*) FROM articles"
	listQuery := "SELECT article_id, title, slug, body, published, created_at, updated_at FROM articles ORDER BY created_at DESC OFFSET $1 LIMIT $2"
	if publishedOnly {
		countQuery = "SELECT COUNT(*) FROM articles WHERE published = TRUE"
		listQuery = "SELECT article_id, title, slug, body, published, created_at, updated_at FROM articles WHERE published = TRUE ORDER BY created_at DESC OFFSET $1 LIMIT $2"
	}

	var totalRecords int
	if err := pool.QueryRow(c, countQuery).Scan(&totalRecords); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	rows, err := pool.Query(c, listQuery, offset, limit)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}
	defer rows.Close()

	articles := make([]*schemas.ArticleDTO, 0)
	for rows.Next() {
		article := &schemas.Article{}
		if err := rows.Scan(&article.ID, &article.Title, &article.Slug, &article.Body, &article.Published, &article.CreatedAt, &article.UpdatedAt); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, err)
			return
		}

		articles = append(articles, articleToDto(article))
	}

	utils.SendPaginatedResponse(c, articles, offset, limit, totalRecords)
}

// GetPublished returns a single published article by its ID.
func (handler *ArticleHandler) GetPublished(c *gin.Context) {
	articleId, err := uuid.Parse(c.Param(utils.ArticleIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	article := &schemas.Article{}
	queryString := "SELECT article_id, title, slug, body, published, created_at, updated_at FROM articles WHERE article_id = $1 AND published = TRUE"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, articleId)
	if err := row.Scan(&article.ID, &article.Title, &article.Slug, &article.Body, &article.Published, &article.CreatedAt, &article.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.NotFoundError, err)
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	utils.WriteAndLogResponse(c, articleToDto(article), http.StatusOK)
}

// CreateArticle creates a new article. The body is sanitized before it is
// stored, so stored markup is safe to render as-is.
func (handler *ArticleHandler) CreateArticle(c *gin.Context) {
	user, ok := middleware.GetContextUser(c)
	if !ok {
		utils.WriteAndLogError(c, schemas.UnauthorizedError, errors.New("no user in context"))
		return
	}

	articleRequest := &schemas.ArticleRequest{}
	if err := c.ShouldBindJSON(articleRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	if err := handler.Validator.Validate.Struct(articleRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	article := &schemas.Article{}
	articleId := uuid.New()
	now := time.Now()

	queryString := "INSERT INTO articles (article_id, author_id, title, slug, body, published, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING article_id, title, slug, body, published, created_at, updated_at"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, articleId, user.ID, articleRequest.Title, articleRequest.Slug, handler.Policy.Sanitize(articleRequest.Body), articleRequest.Published, now)
	if err := row.Scan(&article.ID, &article.Title, &article.Slug, &article.Body, &article.Published, &article.CreatedAt, &article.UpdatedAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	utils.WriteAndLogResponse(c, articleToDto(article), http.StatusCreated)
}

// UpdateArticle updates an existing article.
func (handler *ArticleHandler) UpdateArticle(c *gin.Context) {
	articleId, err := uuid.Parse(c.Param(utils.ArticleIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	articleRequest := &schemas.ArticleRequest{}
	if err := c.ShouldBindJSON(articleRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	if err := handler.Validator.Validate.Struct(articleRequest); err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	article := &schemas.Article{}
	queryString := "UPDATE articles SET title = $1, slug = $2, body = $3, published = $4, updated_at = $5 WHERE article_id = $6 RETURNING article_id, title, slug, body, published, created_at, updated_at"
	row := handler.DatabaseManager.GetPool().QueryRow(c, queryString, articleRequest.Title, articleRequest.Slug, handler.Policy.Sanitize(articleRequest.Body), articleRequest.Published, time.Now(), articleId)
	if err := row.Scan(&article.ID, &article.Title, &article.Slug, &article.Body, &article.Published, &article.CreatedAt, &article.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.NotFoundError, err)
			return
		}

		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	utils.WriteAndLogResponse(c, articleToDto(article), http.StatusOK)
}

// DeleteArticle removes an article.
func (handler *ArticleHandler) DeleteArticle(c *gin.Context) {
	articleId, err := uuid.Parse(c.Param(utils.ArticleIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.ValidationError, err)
		return
	}

	queryString := "DELETE FROM articles WHERE article_id = $1"
	tag, err := handler.DatabaseManager.GetPool().Exec(c, queryString, articleId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, err)
		return
	}

	if tag.RowsAffected() == 0 {
		utils.WriteAndLogError(c, schemas.NotFoundError, errors.New("article not found"))
		return
	}

	c.Status(http.StatusNoContent)
}

func articleToDto(article *schemas.Article) *schemas.ArticleDTO {
	return &schemas.ArticleDTO{
		ArticleID: article.ID.String(),
		Title:     article.Title,
		Slug:      article.Slug,
		Body:      article.Body,
		Published: article.Published,
		CreatedAt: article.CreatedAt.Format(time.RFC3339),
		UpdatedAt: article.UpdatedAt.Format(time.RFC3339),
	}
}
