// Package upload relays submitted files to an external media host.
package upload

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/andrewpaige1/formcraft-api/logger"
)

var (
	ErrNotConfigured = errors.New("media host is not configured")
	ErrUpload        = errors.New("failed to upload file")
)

// File is one in-memory attachment from a submission.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Result is where an uploaded file ended up. ResourceType is the host's
// asset class, needed to delete it again.
type Result struct {
	URL          string `json:"url"`
	ID           string `json:"id"`
	ResourceType string `json:"resourceType,omitempty"`
}

type Relay interface {
	Upload(ctx context.Context, file File, folder string) (Result, error)
	Delete(ctx context.Context, uploaded Result) error
}

// Disabled is used when no media host credentials are configured. Every
// upload fails with ErrNotConfigured instead of dropping the file.
type Disabled struct {
	Reason string
}

func (d Disabled) Upload(ctx context.Context, file File, folder string) (Result, error) {
	return Result{}, d.err()
}

func (d Disabled) Delete(ctx context.Context, uploaded Result) error {
	return d.err()
}

func (d Disabled) err() error {
	if d.Reason == "" {
		return ErrNotConfigured
	}
	return fmt.Errorf("%w: %s", ErrNotConfigured, d.Reason)
}

// UploadAll uploads files with at most concurrency uploads in flight.
// Results keep the order of files. If any upload fails the whole batch fails
// and files that did make it are deleted again on a best-effort basis.
func UploadAll(ctx context.Context, relay Relay, files []File, folder string, concurrency int, log *logger.Logger) ([]Result, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]Result, len(files))
	done := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, f := range files {
		g.Go(func() error {
			res, err := relay.Upload(gctx, f, folder)
			if err != nil {
				return fmt.Errorf("upload %q: %w", f.Name, err)
			}
			results[i] = res
			done[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var uploaded []Result
		for i, ok := range done {
			if ok {
				uploaded = append(uploaded, results[i])
			}
		}
		Cleanup(context.WithoutCancel(ctx), relay, uploaded, log)
		return nil, err
	}
	return results, nil
}

// Cleanup deletes already-uploaded files. Failures are only logged.
func Cleanup(ctx context.Context, relay Relay, uploaded []Result, log *logger.Logger) {
	for _, r := range uploaded {
		if err := relay.Delete(ctx, r); err != nil {
			log.Warn("Failed to delete orphaned upload", "id", r.ID, "error", err)
		}
	}
}

func URLs(results []Result) []string {
	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}
	return urls
}
