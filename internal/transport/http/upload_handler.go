package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fuzichat/fuzichat-server/internal/media"
)

// UploadHandler accepts media uploads and returns the resolved reference.
type UploadHandler struct {
	resolver media.Resolver
	log      *zerolog.Logger
}

// NewUploadHandler creates an upload handler around a media resolver.
func NewUploadHandler(resolver media.Resolver, logger *zerolog.Logger) *UploadHandler {
	return &UploadHandler{resolver: resolver, log: logger}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Upload handles a single-file multipart upload.
// POST /api/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no file uploaded"})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	defer file.Close()

	ref, err := h.resolver.Resolve(
		c.Request.Context(),
		file,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
	)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedMedia) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported media type"})
			return
		}
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("failed to store upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	switch ref.Kind {
	case media.KindVideo:
		c.JSON(http.StatusOK, gin.H{"videoUrl": ref.URL})
	default:
		c.JSON(http.StatusOK, gin.H{"imageUrl": ref.URL})
	}
}
