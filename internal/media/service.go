package media

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/safetydesk/incident-service/internal/config"
)

// Fetcher retrieves attachment binaries from the chat platform.
type Fetcher interface {
	MediaURL(ctx context.Context, mediaID string) (string, error)
	DownloadMedia(ctx context.Context, url string) ([]byte, error)
}

// Uploader stores binaries on durable object storage and returns a
// stable public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, mimeType, prefix string) (string, error)
}

// Service re-hosts platform attachments: fetch from the platform,
// upload to the bucket, return the durable URL.
type Service struct {
	fetcher  Fetcher
	uploader Uploader
	logger   *zap.Logger
}

// NewService constructs the media service.
func NewService(fetcher Fetcher, uploader Uploader, logger *zap.Logger) *Service {
	return &Service{fetcher: fetcher, uploader: uploader, logger: logger}
}

// Rehost downloads the platform media and uploads it to object storage.
func (s *Service) Rehost(ctx context.Context, providerMediaID, mimeType string) (string, error) {
	url, err := s.fetcher.MediaURL(ctx, providerMediaID)
	if err != nil {
		return "", fmt.Errorf("resolve media url: %w", err)
	}
	data, err := s.fetcher.DownloadMedia(ctx, url)
	if err != nil {
		return "", fmt.Errorf("download media: %w", err)
	}
	hosted, err := s.uploader.Upload(ctx, data, mimeType, "incidents")
	if err != nil {
		return "", fmt.Errorf("upload media: %w", err)
	}
	return hosted, nil
}

// UploadResolutionPhoto stores resolution evidence. Unlike inbound
// attachments this upload is on the critical path of the RESOLVED
// transition; the caller must abort on error.
func (s *Service) UploadResolutionPhoto(ctx context.Context, data []byte, mimeType string) (string, error) {
	return s.uploader.Upload(ctx, data, mimeType, "resolutions")
}

// MinioUploader implements Uploader over a minio bucket.
type MinioUploader struct {
	client *minio.Client
	cfg    config.ObjectStorageConfig
}

// NewMinioUploader connects to the object storage endpoint.
func NewMinioUploader(cfg config.ObjectStorageConfig) (*MinioUploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioUploader{client: client, cfg: cfg}, nil
}

// Upload stores the object under a date-partitioned key and returns its
// public URL.
func (u *MinioUploader) Upload(ctx context.Context, data []byte, mimeType, prefix string) (string, error) {
	key := fmt.Sprintf("%s/%s/%s%s",
		prefix,
		time.Now().UTC().Format("2006/01/02"),
		uuid.NewString(),
		extensionFor(mimeType))

	_, err := u.client.PutObject(ctx, u.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: mimeType})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.cfg.PublicBaseURL, "/"), u.cfg.Bucket, key), nil
}

func extensionFor(mimeType string) string {
	// strip codec parameters like "audio/ogg; codecs=opus"
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
