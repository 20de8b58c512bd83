package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clipverse/clipverse/internal/config"
)

func TestObjectKeyLayout(t *testing.T) {
	key := objectKey("avatars", "Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "avatars/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"), "extension must be lowered: %s", key)
	assert.Equal(t, 5, len(strings.Split(key, "/")), "folder/yyyy/mm/dd/name: %s", key)

	// Same input twice must never collide.
	assert.NotEqual(t, key, objectKey("avatars", "Photo.JPG"))

	// Extension-less uploads still get a valid key.
	bare := objectKey("covers", "upload")
	assert.True(t, strings.HasPrefix(bare, "covers/"))
	assert.False(t, strings.Contains(bare, "."))
}

func TestPublicURLPrecedence(t *testing.T) {
	key := "avatars/2026/08/28/abc.png"

	u := &Uploader{cfg: config.MediaConfig{PublicURL: "https://cdn.example.com/", Bucket: "b", Region: "us-east-1"}}
	assert.Equal(t, "https://cdn.example.com/"+key, u.publicURL(key))

	u = &Uploader{cfg: config.MediaConfig{Endpoint: "http://localhost:9000", Bucket: "media", Region: "us-east-1"}}
	assert.Equal(t, "http://localhost:9000/media/"+key, u.publicURL(key))

	u = &Uploader{cfg: config.MediaConfig{Bucket: "media", Region: "eu-west-1"}}
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/"+key, u.publicURL(key))
}
