package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware for the curation frontend
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/", handler.GetRoot)
	r.GET("/health", handler.GetHealth)

	// Public read endpoints
	r.GET("/content", handler.ListContent)
	r.GET("/content/approved", handler.GetApprovedContent)
	r.GET("/content/categories", handler.GetCategories)
	r.GET("/content/search", handler.SearchContent)

	// Reader feedback stays open like the display endpoints
	r.POST("/content/feedback", handler.SubmitFeedback)

	// Pipeline triggers and curation, guarded when a key is configured
	protected := r.Group("/")
	if apiAccessKey != "" {
		protected.Use(authMiddleware(apiAccessKey))
		slog.Info("Pipeline and curation endpoints enabled with authentication")
	} else {
		slog.Warn("API_ACCESS_KEY not set, pipeline and curation endpoints are unauthenticated")
	}
	{
		protected.POST("/pipeline/run", handler.RunPipeline)
		protected.POST("/pipeline/run-complete", handler.RunCompletePipeline)
		protected.GET("/content/pending", handler.GetPendingContent)
		protected.GET("/content/status-counts", handler.GetStatusCounts)
		protected.POST("/content/curate", handler.CurateContent)
		protected.POST("/content/approve-latest", handler.ApproveLatest)
	}

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for protected endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
