// Package routing assembles the gin engine: common middleware, public routes
// and the admin routes guarded by the capability middleware.
package routing

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"kanzlei-server/internal/capabilities"
	"kanzlei-server/internal/config"
	"kanzlei-server/internal/handlers"
	"kanzlei-server/internal/managers"
	"kanzlei-server/internal/middleware"
	"kanzlei-server/internal/schemas"
	"kanzlei-server/internal/utils"
)

const apiVersion = "1.0"

var imprintDto = &schemas.ImprintDTO{
	Text: "Impressum\n\nKanzlei Weber & Partner Rechtsanwälte\nRheinuferstraße 12\n68159 Mannheim\n\n" +
		"Kontakt:\nTelefon: +49 621 123456\nE-Mail: kontakt@kanzlei-weber.de\n\n" +
		"Die Rechtsanwältinnen und Rechtsanwälte der Kanzlei sind Mitglieder der Rechtsanwaltskammer " +
		"Karlsruhe und unterliegen den berufsrechtlichen Regelungen der Bundesrechtsanwaltsordnung " +
		"(BRAO), der Berufsordnung für Rechtsanwälte (BORA) und dem Rechtsanwaltsvergütungsgesetz " +
		"(RVG).\n\nHaftungsausschluss:\nDie Kanzlei übernimmt keine Haftung für die Inhalte externer " +
		"Links. Für den Inhalt der verlinkten Seiten sind ausschließlich deren Betreiber verantwortlich.",
}

// InitRouter builds the complete engine with middleware and routes.
func InitRouter(databaseMgr managers.DatabaseMgr, sessionMgr managers.SessionMgr, passwordMgr managers.PasswordMgr, mailMgr managers.MailMgr, cfg *config.Config) *gin.Engine {
	router := gin.New()
	setupCommonMiddleware(router)
	setupMethodNotAllowed(router)
	setupRoutes(router, databaseMgr, sessionMgr, passwordMgr, mailMgr, cfg)

	return router
}

func setupCommonMiddleware(router *gin.Engine) {
	router.Use(middleware.InjectTrace())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "https://kanzlei-weber.de"},
		AllowMethods:     []string{"GET", "PATCH", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

// setupMethodNotAllowed makes unsupported verbs answer with the error
// envelope plus an Allow header listing the permitted methods for the path.
func setupMethodNotAllowed(router *gin.Engine) {
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		allowed := allowedMethods(router, c.Request.URL.Path)
		if len(allowed) > 0 {
			c.Header("Allow", strings.Join(allowed, ", "))
		}
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, &schemas.ErrorDTO{Error: *schemas.MethodNotAllowedError})
	})
}

// allowedMethods collects the verbs registered for a concrete request path.
func allowedMethods(router *gin.Engine, path string) []string {
	methods := make([]string, 0)
	for _, route := range router.Routes() {
		if pathMatches(route.Path, path) {
			methods = append(methods, route.Method)
		}
	}

	return methods
}

// pathMatches compares a registered route pattern against a concrete path,
// treating :param segments as wildcards.
func pathMatches(pattern, path string) bool {
	patternSegments := strings.Split(strings.Trim(pattern, "/"), "/")
	pathSegments := strings.Split(strings.Trim(path, "/"), "/")
	if len(patternSegments) != len(pathSegments) {
		return false
	}

	for i, segment := range patternSegments {
		if strings.HasPrefix(segment, ":") || strings.HasPrefix(segment, "*") {
			continue
		}

		if segment != pathSegments[i] {
			return false
		}
	}

	return true
}

func setupRoutes(router *gin.Engine, databaseMgr managers.DatabaseMgr, sessionMgr managers.SessionMgr, passwordMgr managers.PasswordMgr, mailMgr managers.MailMgr, cfg *config.Config) {
	// Set up version route
	router.GET("/", func(c *gin.Context) {
		metadata := &schemas.MetadataDTO{
			ApiVersion: apiVersion,
			ApiName:    "Kanzlei Weber & Partner",
		}
		utils.WriteAndLogResponse(c, metadata, http.StatusOK)
	})

	// Set up health route
	router.GET("/health", func(c *gin.Context) {
		if err := databaseMgr.GetPool().Ping(c); err != nil {
			c.String(http.StatusInternalServerError, "Database not responding")
			return
		}
		c.Status(http.StatusOK)
	})

	guard := func(capability string) gin.HandlerFunc {
		return middleware.RequireCapability(databaseMgr, sessionMgr, cfg.Environment, capability)
	}

	apiRouter := router.Group("/api")
	{
		// Set up imprint route
		apiRouter.GET("/imprint", func(c *gin.Context) {
			utils.WriteAndLogResponse(c, imprintDto, http.StatusOK)
		})

		// Set up contact route
		contactHdl := handlers.NewContactHandler(mailMgr)
		apiRouter.POST("/contact", contactHdl.SubmitContactForm)

		// Set up session routes
		sessionRouter := apiRouter.Group("/sessions")
		sessionHdl := handlers.NewSessionHandler(databaseMgr, sessionMgr, passwordMgr, cfg)
		sessionRoutes(sessionRouter, sessionHdl, guard)

		// Set up user routes
		userRouter := apiRouter.Group("/users")
		userHdl := handlers.NewUserHandler(databaseMgr, passwordMgr, mailMgr, cfg)
		userRoutes(userRouter, userHdl, guard)

		// Set up article routes
		articleRouter := apiRouter.Group("/articles")
		articleHdl := handlers.NewArticleHandler(databaseMgr)
		articleRoutes(articleRouter, articleHdl, guard)

		// Set up team routes
		teamRouter := apiRouter.Group("/team")
		teamHdl := handlers.NewTeamHandler(databaseMgr)
		teamRoutes(teamRouter, teamHdl, guard)
	}
}

func sessionRoutes(sessionRouter *gin.RouterGroup, sessionHdl handlers.SessionHdl, guard func(string) gin.HandlerFunc) {
	sessionRouter.POST("", sessionHdl.Login)
	sessionRouter.DELETE("/self", sessionHdl.Logout)
	sessionRouter.GET("/self", guard(capabilities.ReadSession), sessionHdl.GetSelf)
}

func userRoutes(userRouter *gin.RouterGroup, userHdl handlers.UserHdl, guard func(string) gin.HandlerFunc) {
	// The activation route is public, the token itself is the credential
	userRouter.POST("/:userId/activate", userHdl.ActivateUser)

	userRouter.GET("/self", guard(capabilities.ReadUserSelf), userHdl.GetSelf)
	userRouter.PATCH("/self/password", guard(capabilities.ReadUserSelf), userHdl.ChangePassword)
	userRouter.GET("", guard(capabilities.ReadUserList), userHdl.ListUsers)
	userRouter.POST("", guard(capabilities.CreateUser), userHdl.CreateUser)
	userRouter.PUT("/:userId/features", guard(capabilities.UpdateUserFeatures), userHdl.UpdateFeatures)
	userRouter.GET("/:userId/activation-token", guard(capabilities.ReadActivationToken), userHdl.GetActivationToken)
}

func articleRoutes(articleRouter *gin.RouterGroup, articleHdl handlers.ArticleHdl, guard func(string) gin.HandlerFunc) {
	articleRouter.GET("", articleHdl.ListPublished)
	articleRouter.GET("/:articleId", articleHdl.GetPublished)

	articleRouter.GET("/drafts", guard(capabilities.ReadArticle), articleHdl.ListAll)
	articleRouter.POST("", guard(capabilities.CreateArticle), articleHdl.CreateArticle)
	articleRouter.PUT("/:articleId", guard(capabilities.UpdateArticle), articleHdl.UpdateArticle)
	articleRouter.DELETE("/:articleId", guard(capabilities.DeleteArticle), articleHdl.DeleteArticle)
}

func teamRoutes(teamRouter *gin.RouterGroup, teamHdl handlers.TeamHdl, guard func(string) gin.HandlerFunc) {
	teamRouter.GET("", teamHdl.ListMembers)

	teamRouter.POST("", guard(capabilities.CreateTeamMember), teamHdl.CreateMember)
	teamRouter.PUT("/:memberId", guard(capabilities.UpdateTeamMember), teamHdl.UpdateMember)
	teamRouter.DELETE("/:memberId", guard(capabilities.DeleteTeamMember), teamHdl.DeleteMember)
}
