package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) upload(t *testing.T, path, filename string, content []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestMediaUploadAndDownload(t *testing.T) {
	s := newTestServer(t)
	owner, token := s.user(t, "alice")
	png := []byte("\x89PNG fake image")

	body := requireStatus(t, s.upload(t, "/api/v1/upload/image", "cat.png", png, token), http.StatusCreated)
	assert.Equal(t, models.MediaTypeImage, body["media_type"])
	mediaURL := body["media_url"].(string)
	require.True(t, strings.HasPrefix(mediaURL, "/api/v1/media/"))

	id := strings.TrimPrefix(mediaURL, "/api/v1/media/")
	assert.Equal(t, owner.ID, s.store.files[id].ownerID)

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, mediaURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, png, rec.Body.Bytes())

	t.Run("missing media", func(t *testing.T) {
		body := requireStatus(t, s.do(t, http.MethodGet, "/api/v1/media/deadbeef", nil, ""), http.StatusNotFound)
		assert.Equal(t, models.CodeNotFound, body["code"])
	})

	t.Run("wrong extension", func(t *testing.T) {
		body := requireStatus(t, s.upload(t, "/api/v1/upload/video", "cat.png", png, token), http.StatusBadRequest)
		assert.Equal(t, models.CodeValidation, body["code"])
	})

	t.Run("too large", func(t *testing.T) {
		big := bytes.Repeat([]byte("a"), maxUploadBytes+1)
		requireStatus(t, s.upload(t, "/api/v1/upload/video", "clip.mp4", big, token), http.StatusRequestEntityTooLarge)
	})

	t.Run("requires auth", func(t *testing.T) {
		requireStatus(t, s.upload(t, "/api/v1/upload/image", "cat.png", png, ""), http.StatusUnauthorized)
	})

	t.Run("missing file field", func(t *testing.T) {
		requireStatus(t, s.do(t, http.MethodPost, "/api/v1/upload/image", map[string]string{}, token), http.StatusBadRequest)
	})
}
