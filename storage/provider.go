// Package storage keeps uploaded files either on the local disk or in an
// S3-compatible bucket.
package storage

import (
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/yeremiapane/duty-roster/config"
)

type Provider interface {
	Put(key string, body io.ReadSeeker, contentType string) error
	Delete(key string) error
	// URL is where a client can fetch the stored object.
	URL(key string) string
}

// New picks the backend named by upload.provider.
func New(cfg config.UploadConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "local":
		return NewLocalProvider(cfg.Dir, "/uploads")
	case "s3":
		sess, err := session.NewSession(&aws.Config{
			Credentials:      credentials.NewStaticCredentials(cfg.KeyID, cfg.AppKey, ""),
			Endpoint:         aws.String(cfg.Endpoint),
			Region:           aws.String(cfg.Region),
			S3ForcePathStyle: aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("s3 session: %w", err)
		}
		return NewS3Provider(sess, cfg.Bucket, cfg.Endpoint), nil
	default:
		return nil, fmt.Errorf("unknown upload provider %q", cfg.Provider)
	}
}
