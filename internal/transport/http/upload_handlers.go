package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/dmchat-server/internal/upload"
)

// UploadHandlers provides the HTTP handler for file uploads.
type UploadHandlers struct {
	uploads *upload.Service
	log     *zerolog.Logger
}

// NewUploadHandlers creates a new upload handlers instance.
func NewUploadHandlers(uploads *upload.Service, logger *zerolog.Logger) *UploadHandlers {
	return &UploadHandlers{
		uploads: uploads,
		log:     logger,
	}
}

// UploadResponse is the success response body.
type UploadResponse struct {
	Success bool         `json:"success"`
	File    *upload.File `json:"file"`
}

// UploadErrorResponse is the failure response body.
type UploadErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Upload accepts one multipart file, stores it and returns its metadata.
// POST /api/upload
func (h *UploadHandlers) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploads.MaxBytes()+1024)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, UploadErrorResponse{Error: "no file provided"})
		return
	}

	src, err := header.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to open multipart file")
		c.JSON(http.StatusInternalServerError, UploadErrorResponse{Error: "failed to process the file"})
		return
	}
	defer src.Close()

	file, err := h.uploads.Save(header.Filename, src)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrTooLarge):
			c.JSON(http.StatusBadRequest, UploadErrorResponse{Error: "file is too large (max 10MB)"})
		case errors.Is(err, upload.ErrDisallowedType):
			c.JSON(http.StatusBadRequest, UploadErrorResponse{Error: "file type is not allowed"})
		default:
			h.log.Error().Err(err).Str("name", header.Filename).Msg("failed to store upload")
			c.JSON(http.StatusInternalServerError, UploadErrorResponse{Error: "failed to store the file"})
		}
		return
	}

	h.log.Info().Str("name", file.Name).Str("kind", file.Kind).Int64("size", file.Size).Msg("file uploaded")
	c.JSON(http.StatusOK, UploadResponse{Success: true, File: file})
}
