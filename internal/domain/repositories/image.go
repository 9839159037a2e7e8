package repositories

import (
	"context"

	"imgtree/internal/domain/models"
)

// ImageRepository defines backend operations for images.
type ImageRepository interface {
	ListImages(ctx context.Context, s models.Session, folderID string) ([]models.Image, error)

	// UploadImage streams file.Content to the backend. The caller owns the reader.
	UploadImage(ctx context.Context, s models.Session, folderID string, file models.UploadFile) (*models.Image, error)

	DeleteImage(ctx context.Context, s models.Session, imageID string) error
}
