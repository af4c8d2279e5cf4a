package media

import (
	"testing"

	"github.com/anonto42/aray/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		filename  string
		want      string
		wantErr   bool
	}{
		{"png image", models.MediaTypeImage, "cat.png", "image/png", false},
		{"upper case extension", models.MediaTypeImage, "CAT.JPG", "image/jpeg", false},
		{"mov video", models.MediaTypeVideo, "clip.mov", "video/quicktime", false},
		{"video as image", models.MediaTypeImage, "clip.mp4", "", true},
		{"no extension", models.MediaTypeVideo, "clip", "", true},
		{"unknown media type", "audio", "song.mp3", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ContentTypeFor(tt.mediaType, tt.filename)
			if tt.wantErr {
				assert.True(t, models.IsCode(err, models.CodeValidation))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
