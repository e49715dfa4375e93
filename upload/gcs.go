package upload

import (
	"context"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

const defaultGCSPublicBaseURL = "https://storage.googleapis.com"

// GCS stores attachments in a Google Cloud Storage bucket and hands out
// public object URLs.
type GCS struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

func NewGCS(ctx context.Context, bucket, credentialsFile, publicBaseURL string) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs: missing bucket name")
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: create client: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = defaultGCSPublicBaseURL
	}
	return &GCS{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (g *GCS) Upload(ctx context.Context, file File, folder string) (Result, error) {
	key := ObjectKey(folder, file.Name)
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	if file.ContentType != "" {
		w.ContentType = file.ContentType
	}
	if _, err := w.Write(file.Data); err != nil {
		_ = w.Close()
		return Result{}, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if err := w.Close(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return Result{URL: g.publicBaseURL + "/" + g.bucket + "/" + key, ID: key}, nil
}

func (g *GCS) Delete(ctx context.Context, uploaded Result) error {
	return g.client.Bucket(g.bucket).Object(uploaded.ID).Delete(ctx)
}

func (g *GCS) Close() error {
	return g.client.Close()
}

// ObjectKey builds a unique key under folder that keeps the original base name.
func ObjectKey(folder, name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	return path.Join(folder, uuid.NewString()+"-"+base)
}
