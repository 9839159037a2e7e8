package repositories

import (
	"context"
	"io"

	"imgtree/internal/domain/models"
)

// DriveRepository is the picker collaborator: it lists and reads files in
// the user's Google Drive with an OAuth access token.
type DriveRepository interface {
	ListImages(ctx context.Context, accessToken string, pageSize int) ([]models.PickedFile, error)

	// Open streams a file's content. The caller must close the reader.
	Open(ctx context.Context, accessToken, fileID string) (io.ReadCloser, error)
}

// Backend groups the collaborators a workspace talks to.
type Backend interface {
	FolderRepository
	ImageRepository
	PermissionRepository
}
