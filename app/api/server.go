package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ymdt/tdnet-watch/app/cfg"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, appPassword string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-App-Password, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, appPassword)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, appPassword string) {
	// Health and status endpoints stay open
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Data endpoints, password-gated when a password is configured
	data := r.Group("/")
	if appPassword != "" {
		data.Use(authMiddleware(appPassword))
		slog.Info("Password protection enabled for data endpoints")
	} else {
		slog.Info("Data endpoints are open, APP_PASSWORD not set")
	}
	{
		data.GET("/disclosures", handler.GetDisclosures)
		data.GET("/analyses", handler.ListAnalyses)
		data.GET("/analyses/lookup", handler.GetAnalysisLookup)
		data.POST("/analyses", handler.PostAnalysis)
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "TDnet Watch",
			"version":     cfg.GetVersion(),
			"description": "TDnet disclosure feed watcher with screening and AI earnings analysis",
			"endpoints": map[string]string{
				"disclosures": "/disclosures",
				"analyses":    "/analyses",
				"lookup":      "/analyses/lookup?url=<doc_url>",
				"health":      "/health",
				"stats":       "/stats",
			},
			"auth": map[string]interface{}{
				"required": appPassword != "",
				"header":   "X-App-Password",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware gates data endpoints behind the configured app password
func authMiddleware(appPassword string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-App-Password")

		if provided == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				provided = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if provided == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Password required",
				"message": "Provide the app password in X-App-Password header or Authorization: Bearer <password>",
			})
			c.Abort()
			return
		}

		if provided != appPassword {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid password",
				"message": "The provided password is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
