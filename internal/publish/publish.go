// Package publish copies written reports to Google Cloud Storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/testkube/testreport/internal/artifacts"
)

// Uploader stores one object.
type Uploader interface {
	Upload(ctx context.Context, object string, data []byte, contentType string) error
	Close() error
}

// GCSUploader writes objects into a single bucket.
type GCSUploader struct {
	client *storage.Client
	bucket string
}

// GCSOptions configures the storage client. Empty fields fall back to the
// application default credentials and the public endpoint.
type GCSOptions struct {
	Bucket          string
	CredentialsFile string
	Endpoint        string
}

func NewGCSUploader(ctx context.Context, cfg GCSOptions) (*GCSUploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSUploader{client: client, bucket: cfg.Bucket}, nil
}

func (u *GCSUploader) Upload(ctx context.Context, object string, data []byte, contentType string) error {
	w := u.client.Bucket(u.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write error: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close error: %w", err)
	}
	return nil
}

func (u *GCSUploader) Close() error {
	return u.client.Close()
}

// Publisher uploads the files of one run under a common prefix.
type Publisher struct {
	uploader Uploader
	prefix   string
	logger   *zap.Logger
}

func NewPublisher(uploader Uploader, prefix string, logger *zap.Logger) *Publisher {
	return &Publisher{uploader: uploader, prefix: prefix, logger: logger}
}

// Publish uploads every successfully written report. Failed writes are
// skipped. The returned error joins every upload failure.
func (p *Publisher) Publish(ctx context.Context, results []artifacts.WriteResult) error {
	var errs []error
	for _, res := range results {
		if res.Err != nil || res.Path == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		object := path.Join(p.prefix, filepath.Base(res.Path))
		data, err := os.ReadFile(res.Path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", res.Path, err))
			continue
		}
		if err := p.uploader.Upload(ctx, object, data, contentType(res.Ext)); err != nil {
			p.logger.Error("Upload failed", zap.String("object", object), zap.Error(err))
			errs = append(errs, fmt.Errorf("upload %s: %w", object, err))
			continue
		}
		p.logger.Info("Report published", zap.String("object", object))
	}
	return errors.Join(errs...)
}

func contentType(ext string) string {
	switch ext {
	case "html":
		return "text/html; charset=utf-8"
	case "json":
		return "application/json"
	case "md":
		return "text/markdown; charset=utf-8"
	}
	return "application/octet-stream"
}
