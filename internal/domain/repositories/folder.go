package repositories

import (
	"context"

	"imgtree/internal/domain/models"
)

// FolderRepository defines backend operations for folders.
// Every call acts on behalf of the explicit session.
type FolderRepository interface {
	// ListFolders returns the user's full flat folder list
	ListFolders(ctx context.Context, s models.Session) ([]models.Folder, error)

	// CreateFolder creates a folder under parentID (nil = root level)
	CreateFolder(ctx context.Context, s models.Session, name string, parentID *string) (*models.Folder, error)

	// UpdateFolder applies a rename or flag change
	UpdateFolder(ctx context.Context, s models.Session, id string, patch models.FolderPatch) (*models.Folder, error)

	// MoveFolder re-parents a folder (nil = root level)
	MoveFolder(ctx context.Context, s models.Session, id string, parentID *string) (*models.Folder, error)

	// DeleteFolder deletes a folder; the backend removes its descendants too
	DeleteFolder(ctx context.Context, s models.Session, id string) error
}
