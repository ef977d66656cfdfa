// Package assets uploads profile pictures to the image host.
package assets

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Uploader stores an image and returns the reference to save on the profile.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

type cloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	preset string
}

// NewCloudinaryUploader creates an Uploader using an unsigned upload preset.
// uploadPrefix may be empty for the public API.
func NewCloudinaryUploader(uploadPrefix, cloudName, preset string) (Uploader, error) {
	conf, err := config.NewFromParams(cloudName, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	if uploadPrefix != "" {
		conf.API.UploadPrefix = uploadPrefix
	}
	cld, err := cloudinary.NewFromConfiguration(*conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &cloudinaryUploader{cld: cld, preset: preset}, nil
}

// Upload returns the secure URL of the stored image, or its public id when
// the host did not report a URL.
func (u *cloudinaryUploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	res, err := u.cld.Upload.UnsignedUpload(ctx, content, u.preset, uploader.UploadParams{
		FilenameOverride: filename,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("image upload failed: %s", res.Error.Message)
	}
	if res.SecureURL != "" {
		return res.SecureURL, nil
	}
	if res.PublicID == "" {
		return "", fmt.Errorf("image upload failed: empty response")
	}
	return res.PublicID, nil
}
