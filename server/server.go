// Package server builds the HTTP handler: gin with recovery, trace id,
// request logging and CORS middleware, the liveness route and the generated
// OpenAPI document.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/spoton-app/spoton/config"
	"github.com/spoton-app/spoton/ctxutil"
	"github.com/spoton-app/spoton/logging/logger"
	"github.com/spoton-app/spoton/net/resp"
)

// HealthPath is the liveness route.
const HealthPath = "/health"

// New creates the gin engine for cfg.
func New(cfg *config.Config, l *logger.Logger) *gin.Engine {
	if cfg.RunMode != "" {
		gin.SetMode(cfg.RunMode)
	}

	e := gin.New()
	e.HandleMethodNotAllowed = true
	e.Use(gin.CustomRecovery(recoveryHandler(l)))
	e.Use(traceMiddleware())
	e.Use(loggerMiddleware(l))
	e.Use(corsMiddleware())

	e.GET(HealthPath, health)
	e.GET(cfg.OpenAPIPath(), openAPIHandler(e, cfg))

	e.NoRoute(func(c *gin.Context) {
		resp.Fail(c.Writer, resp.NotFound("the requested resource was not found"))
	})
	e.NoMethod(func(c *gin.Context) {
		resp.Fail(c.Writer, resp.MethodNotAllowed())
	})

	return e
}

// APIGroup returns the router group under the API prefix, where feature
// handlers attach.
func APIGroup(e *gin.Engine, cfg *config.Config) *gin.RouterGroup {
	return e.Group(cfg.APIV1Str)
}

// health reports liveness. It never touches the database.
func health(c *gin.Context) {
	resp.Success(c.Writer, map[string]string{"status": "ok"})
}

// recoveryHandler answers a panicking request with the 500 envelope.
func recoveryHandler(l *logger.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, err any) {
		l.Errorf(ctxutil.FromGinContext(c), "panic recovered: %v", err)
		resp.Fail(c.Writer, resp.InternalServer())
		c.Abort()
	}
}

// corsMiddleware allows any origin with credentials. The request origin is
// echoed back because browsers reject "*" on credentialed requests, and a
// preflight gets its requested headers echoed for the same reason.
func corsMiddleware() gin.HandlerFunc {
	h := cors.New(cors.Options{
		AllowOriginFunc: func(string) bool { return true },
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:       []string{"*"},
		ExposedHeaders:       []string{ctxutil.TraceIDHeader},
		AllowCredentials:     true,
		MaxAge:               int((12 * time.Hour).Seconds()),
		OptionsSuccessStatus: http.StatusNoContent,
	})
	return func(c *gin.Context) {
		h.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
