package media

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubFetcher struct {
	url     string
	data    []byte
	urlErr  error
	dataErr error
}

func (s *stubFetcher) MediaURL(context.Context, string) (string, error) {
	return s.url, s.urlErr
}

func (s *stubFetcher) DownloadMedia(context.Context, string) ([]byte, error) {
	return s.data, s.dataErr
}

type stubStore struct {
	url        string
	err        error
	lastPrefix string
	lastMime   string
}

func (s *stubStore) Upload(_ context.Context, _ []byte, mimeType, prefix string) (string, error) {
	s.lastPrefix = prefix
	s.lastMime = mimeType
	return s.url, s.err
}

func TestRehost(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches and uploads under the incidents prefix", func(t *testing.T) {
		store := &stubStore{url: "https://cdn.example.com/incidents/x.jpg"}
		svc := NewService(&stubFetcher{url: "https://platform/media", data: []byte{0xFF}}, store, zap.NewNop())

		url, err := svc.Rehost(ctx, "media-1", "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, store.url, url)
		assert.Equal(t, "incidents", store.lastPrefix)
		assert.Equal(t, "image/jpeg", store.lastMime)
	})

	t.Run("propagates fetch failures", func(t *testing.T) {
		svc := NewService(&stubFetcher{urlErr: errors.New("media expired")}, &stubStore{}, zap.NewNop())
		_, err := svc.Rehost(ctx, "media-1", "image/jpeg")
		assert.Error(t, err)
	})

	t.Run("propagates upload failures", func(t *testing.T) {
		svc := NewService(&stubFetcher{url: "u", data: []byte{1}}, &stubStore{err: errors.New("bucket offline")}, zap.NewNop())
		_, err := svc.Rehost(ctx, "media-1", "image/jpeg")
		assert.Error(t, err)
	})
}

func TestUploadResolutionPhoto(t *testing.T) {
	store := &stubStore{url: "https://cdn.example.com/resolutions/y.jpg"}
	svc := NewService(&stubFetcher{}, store, zap.NewNop())

	url, err := svc.UploadResolutionPhoto(context.Background(), []byte{0xFF}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, store.url, url)
	assert.Equal(t, "resolutions", store.lastPrefix)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".jpg", extensionFor("image/jpeg"))
	assert.Equal(t, ".png", extensionFor("image/png"))
	assert.Equal(t, ".jpg", extensionFor("image/jpeg; quality=80"))
	assert.Equal(t, "", extensionFor("application/x-unknown-thing"))
}
