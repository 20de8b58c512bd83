// Package media uploads user images to an S3-compatible object store and
// hands back the public URL persisted on the user record.  Transcoding,
// resizing and CDN invalidation are out of scope here.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/clipverse/clipverse/internal/config"
)

// Uploader wraps an S3 client with the bucket and URL layout the service
// uses for avatars and cover images.
type Uploader struct {
	client *s3.Client
	cfg    config.MediaConfig
}

// NewUploader builds an S3 client from the media configuration.  Static
// credentials are only injected when both keys are set, so IAM-role based
// deployments keep working with the default provider chain.
func NewUploader(ctx context.Context, cfg config.MediaConfig) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO and most self-hosted stores require path-style addressing.
			o.UsePathStyle = true
		}
	})
	return &Uploader{client: client, cfg: cfg}, nil
}

// Upload stores an image under a random key below the given folder
// ("avatars", "covers") and returns its public URL.  The original file
// name only contributes its extension.
func (u *Uploader) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (string, error) {
	key := objectKey(folder, filename)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return u.publicURL(key), nil
}

// PresignGet returns a time-limited GET URL for an object key.  Used when
// the bucket is private and images cannot be served directly.
func (u *Uploader) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	presigner := s3.NewPresignClient(u.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// objectKey builds "folder/<date>/<uuid><ext>" so listings group by day
// and keys never collide.
func objectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	d := time.Now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s%s",
		folder, d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

func (u *Uploader) publicURL(key string) string {
	if u.cfg.PublicURL != "" {
		return strings.TrimRight(u.cfg.PublicURL, "/") + "/" + key
	}
	if u.cfg.Endpoint != "" {
		return strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}
