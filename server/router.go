package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"social-hub/domain/repository"
	"social-hub/infrastructure/realtime"
	httpHandler "social-hub/interfaces/http"
	"social-hub/interfaces/middleware"
)

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	accountHandler httpHandler.IAccountHandler,
	syncHandler httpHandler.ISyncHandler,
	undoHandler httpHandler.IUndoHandler,
	healthHandler httpHandler.IHealthHandler,
	userRepository repository.IUser,
	syncHub *realtime.Hub,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "http://localhost:4201", "https://localhost:4200", "https://localhost:4201"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)
	router.POST("/healthz", healthHandler.Health)
	// provider redirect: a bare browser GET carrying only code and state, so
	// it cannot sit behind the JWT middleware
	router.GET("/api/accounts/callback/:platform", accountHandler.Callback)

	api := router.Group("api")
	api.Use(middleware.Auth(userRepository))

	accounts := api.Group("/accounts")
	{
		accounts.GET("", accountHandler.List)
		accounts.POST("/credentials/:platform", accountHandler.RegisterCredential)
		accounts.POST("/connect/:platform", accountHandler.Connect)
		accounts.DELETE("/:accountId", accountHandler.Disconnect)
		accounts.GET("/activity", accountHandler.Activity)
	}

	syncGroup := api.Group("/sync")
	{
		syncGroup.POST("/accounts/:accountId/analytics", syncHandler.SyncAccountAnalytics)
		syncGroup.POST("/workspaces/:workspaceId/analytics", syncHandler.SyncWorkspaceAnalytics)
		syncGroup.POST("/posts/:postId/comments", syncHandler.SyncPostComments)
		syncGroup.POST("/workspaces/:workspaceId/catalog/:platform", syncHandler.SyncWorkspaceCatalog)
		syncGroup.GET("/stream/:workspaceId", func(c *gin.Context) { syncHub.Serve(c) })
	}

	undo := api.Group("/undo")
	{
		undo.GET("", undoHandler.List)
		undo.POST("/:id/undo", undoHandler.Undo)
		undo.DELETE("/:id", undoHandler.Clear)
	}

	return router
}
