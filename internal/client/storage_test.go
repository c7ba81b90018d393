package client

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	s := NewMemoryStorage("http://localhost:8000/files/")
	ctx := context.Background()

	url, err := s.Upload(ctx, "audio-uploads/a.webm", strings.NewReader("voice"), "audio/webm")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/files/audio-uploads/a.webm", url)

	data, err := s.Download(ctx, "audio-uploads/a.webm")
	require.NoError(t, err)
	assert.Equal(t, "voice", string(data))

	ct, ok := s.ContentType("audio-uploads/a.webm")
	assert.True(t, ok)
	assert.Equal(t, "audio/webm", ct)
	assert.Equal(t, []string{"audio-uploads/a.webm"}, s.Keys("audio-uploads/"))

	signed, err := s.GetSignedURL(ctx, "audio-uploads/a.webm", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signed, url+"?expires="))

	require.NoError(t, s.Delete(ctx, "audio-uploads/a.webm"))
	_, err = s.Download(ctx, "audio-uploads/a.webm")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
