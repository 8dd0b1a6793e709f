package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sirupsen/logrus"
)

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

var Cloudinary *CloudinaryService

func InitializeCloudinary(cloudinaryURL string) error {
	if cloudinaryURL == "" {
		return fmt.Errorf("cloudinary URL is required")
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	Cloudinary = &CloudinaryService{cld: cld}
	logrus.Info("Cloudinary initialized")
	return nil
}

func (cs *CloudinaryService) UploadImage(file multipart.File, folder string) (*uploader.UploadResult, error) {
	ctx := context.Background()

	publicID := fmt.Sprintf("%s/%d", folder, time.Now().UnixNano())
	useFilename := true
	uniqueFilename := true
	overwrite := false

	result, err := cs.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         folder,
		UseFilename:    &useFilename,
		UniqueFilename: &uniqueFilename,
		Overwrite:      &overwrite,
		ResourceType:   "image",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	// Normalize URLs to HTTPS to avoid mixed-content blocking
	if result.SecureURL == "" && result.URL != "" {
		result.SecureURL = forceHTTPS(result.URL)
	}
	result.URL = forceHTTPS(result.URL)

	return result, nil
}

func forceHTTPS(url string) string {
	if strings.HasPrefix(url, "http://") {
		return "https://" + strings.TrimPrefix(url, "http://")
	}
	return url
}
