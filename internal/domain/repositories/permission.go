package repositories

import (
	"context"

	"imgtree/internal/domain/models"
)

// PermissionRepository defines backend operations for folder sharing.
type PermissionRepository interface {
	ListPermissions(ctx context.Context, s models.Session, folderID string) ([]models.Permission, error)

	// SetPermissions replaces the folder's whole permission list
	SetPermissions(ctx context.Context, s models.Session, folderID string, perms []models.Permission) error
}
