package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fuzichat/fuzichat-server/internal/config"
	"github.com/fuzichat/fuzichat-server/internal/core"
)

const healthBody = "Health check successful. Server is running."

// NewServer builds the HTTP server: health check, media upload and the
// WebSocket endpoint. uploads may be nil when media storage is not
// configured; the route is simply not registered then.
func NewServer(hub *core.Hub, uploads *UploadHandler, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	router.GET("/health", healthHandler)
	if uploads != nil {
		router.POST("/api/upload", uploads.Upload)
	}

	// The WebSocket upgrade hijacks the raw connection, which gin's wrapped
	// ResponseWriter does not allow. /ws lives on a plain mux; everything
	// else goes through the gin router.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, healthBody)
}
