package upload

import (
	"context"
	"fmt"
	"strings"

	"github.com/andrewpaige1/formcraft-api/config"
	"github.com/andrewpaige1/formcraft-api/logger"
)

// New picks the relay for cfg.Provider. Missing credentials give a Disabled
// relay rather than an error so the service still starts.
func New(ctx context.Context, cfg config.MediaConfig, log *logger.Logger) (Relay, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "cloudinary":
		if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
			log.Warn("Cloudinary is not configured, file uploads are disabled")
			return Disabled{Reason: "set CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET"}, nil
		}
		return NewCloudinary(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	case "gcs":
		if cfg.GCSBucket == "" {
			log.Warn("GCS bucket is not configured, file uploads are disabled")
			return Disabled{Reason: "set GCS_BUCKET_NAME"}, nil
		}
		return NewGCS(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile, cfg.GCSPublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown media provider: %s", cfg.Provider)
	}
}
