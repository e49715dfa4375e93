package upload

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, file File, folder string) (Result, error) {
	resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(file.Data), uploader.UploadParams{
		Folder:         folder,
		ResourceType:   "auto",
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if resp.Error.Message != "" {
		return Result{}, fmt.Errorf("%w: %s", ErrUpload, resp.Error.Message)
	}
	return Result{URL: resp.SecureURL, ID: resp.PublicID, ResourceType: resp.ResourceType}, nil
}

// Delete destroys the asset. Files uploaded as "auto" land under image, video
// or raw, and Destroy only finds them under the same resource type.
func (c *Cloudinary) Delete(ctx context.Context, uploaded Result) error {
	resourceType := uploaded.ResourceType
	if resourceType == "" {
		resourceType = "image"
	}
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     uploaded.ID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", uploaded.ID, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", uploaded.ID, resp.Error.Message)
	}
	return nil
}
