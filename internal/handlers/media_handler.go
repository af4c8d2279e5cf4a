package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/aray/backend/internal/media"
	"github.com/anonto42/aray/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// multipartSlack leaves room for multipart headers on top of the file itself
const multipartSlack = 1 << 20

// MediaHandler handles uploads and serves stored media
type MediaHandler struct {
	store    media.Store
	maxBytes int64
	baseURL  string
}

// NewMediaHandler creates a new MediaHandler. baseURL prefixes returned media urls.
func NewMediaHandler(store media.Store, maxBytes int64, baseURL string) *MediaHandler {
	return &MediaHandler{store: store, maxBytes: maxBytes, baseURL: baseURL}
}

// RegisterMediaRoutes registers upload and download routes
func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group, guards Guards) {
	g.POST("/upload/image", h.upload(models.MediaTypeImage), guards.Required, guards.Limit)
	g.POST("/upload/video", h.upload(models.MediaTypeVideo), guards.Required, guards.Limit)
	g.GET("/media/:id", h.GetMedia)
}

func (h *MediaHandler) upload(mediaType string) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxBytes+multipartSlack)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")
			}
			return models.NewValidationError("No file provided")
		}
		if fileHeader.Filename == "" {
			return models.NewValidationError("No file selected")
		}
		if fileHeader.Size > h.maxBytes {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")
		}

		contentType, err := media.ContentTypeFor(mediaType, fileHeader.Filename)
		if err != nil {
			return err
		}

		src, err := fileHeader.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		id, err := h.store.Save(req.Context(), getUserIDFromContext(c), fileHeader.Filename, contentType, src)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusCreated, echo.Map{
			"media_url":  h.baseURL + "/media/" + id,
			"media_type": mediaType,
		})
	}
}

// GetMedia streams a stored file
func (h *MediaHandler) GetMedia(c echo.Context) error {
	id := c.Param("id")
	obj, err := h.store.Open(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			return models.NewNotFoundError("Media", id)
		}
		return err
	}
	defer obj.Close()

	header := c.Response().Header()
	header.Set(echo.HeaderContentLength, strconv.FormatInt(obj.Size, 10))
	header.Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.Stream(http.StatusOK, obj.ContentType, obj)
}
