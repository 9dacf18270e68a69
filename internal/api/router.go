// Package api exposes the contact service as a REST API.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contactbook/internal/config"
	"gitlab.com/dirk.krummacker/contactbook/internal/service"
	"gitlab.com/dirk.krummacker/contactbook/pkg/model"
	"go.uber.org/zap"
)

// handler keeps the dependencies of the endpoints.
type handler struct {
	svc           *service.Service
	log           *zap.Logger
	maxImageBytes int64
}

// SetupHttpRouter initializes the REST API router and registers all endpoints below the
// configured prefix.
func SetupHttpRouter(svc *service.Service, cfg config.Config, log *zap.Logger) *gin.Engine {
	log = log.Named("api")
	router := gin.New()
	router.Use(recovery(log))
	if cfg.RequestLogging() {
		router.Use(requestLogger(log))
	} else {
		log.Info("Turning off HTTP request logging.")
	}
	router.Use(cors(cfg.CORSAllowOrigin))
	router.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, model.Response{Success: false, Message: "Route not found"})
	})

	h := &handler{svc: svc, log: log, maxImageBytes: cfg.MaxImageBytes}
	api := router.Group(cfg.APIPrefix)
	api.GET("/contacts", h.listContacts)
	api.POST("/contact", h.createContact)
	api.GET("/contact/:id", h.getContact)
	api.PUT("/contact/:id", h.updateContact)
	api.DELETE("/contact/:id", h.deleteContact)
	api.POST("/contact/image", h.uploadImage)
	api.GET("/contact/image/:id", h.getImage)
	return router
}

// cors allows the configured frontend origin and answers preflight requests.
func cors(allowOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", allowOrigin)
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestLogger writes one log entry per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client", c.ClientIP()),
		)
	}
}

// recovery turns a panic into a 500 response.
func recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic while handling request",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.Response{
			Success: false,
			Message: "Internal server error",
		})
	})
}
