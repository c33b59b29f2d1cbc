// Package archive persists export payload snapshots for audit and
// replay, either to a local directory or an S3 bucket.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/me/sked/pkg/optimizer"
)

// DirArchiver writes one JSON file per export into a local directory.
type DirArchiver struct {
	dir    string
	logger *slog.Logger
}

// NewDirArchiver creates a DirArchiver rooted at dir, creating it if
// needed.
func NewDirArchiver(dir string, logger *slog.Logger) (*DirArchiver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir %s: %w", dir, err)
	}
	return &DirArchiver{
		dir:    dir,
		logger: logger.With("component", "archive"),
	}, nil
}

// Archive writes the payload as indented JSON named by its export ID.
func (a *DirArchiver) Archive(ctx context.Context, payload *optimizer.ExportPayload) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling payload: %w", err)
	}

	path := filepath.Join(a.dir, payload.Metadata.ExportID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	a.logger.Debug("payload archived to disk", "path", path, "bytes", len(data))
	return path, nil
}

// S3Archiver uploads export payloads to an S3 bucket under exports/.
type S3Archiver struct {
	uploader *manager.Uploader
	bucket   string
	logger   *slog.Logger
}

// NewS3Archiver creates an S3Archiver using the ambient AWS credential
// chain.
func NewS3Archiver(ctx context.Context, bucket string, logger *slog.Logger) (*S3Archiver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Archiver{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		logger:   logger.With("component", "archive"),
	}, nil
}

// Archive uploads the payload as JSON and returns its s3:// location.
func (a *S3Archiver) Archive(ctx context.Context, payload *optimizer.ExportPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling payload: %w", err)
	}

	key := "exports/" + payload.Metadata.ExportID + ".json"
	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", a.bucket, key)
	a.logger.Debug("payload archived to s3", "location", location, "bytes", len(data))
	return location, nil
}
