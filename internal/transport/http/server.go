package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/dmchat-server/internal/config"
	"github.com/vovakirdan/dmchat-server/internal/core"
	"github.com/vovakirdan/dmchat-server/internal/upload"
)

// NewServer builds the HTTP server: health check, file upload API, static
// uploads dir and the WebSocket endpoint.
func NewServer(hub *core.Hub, uploads *upload.Service, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	uploadHandlers := NewUploadHandlers(uploads, logger)
	router.POST("/api/upload", uploadHandlers.Upload)
	router.Static("/uploads", cfg.UploadDir)

	wsHandler := NewWSHandler(hub, cfg.WSRateLimit, logger)
	router.GET("/ws", gin.WrapH(wsHandler))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
