package services

import (
	"context"

	"imgtree/internal/domain/models"
)

// WorkspaceService is one session's view of its folders and images.
// Folder mutations are validated locally, sent to the backend, and rolled
// back if the backend refuses them.
type WorkspaceService interface {
	// Refresh reloads the folder list from the backend and drops cached images
	Refresh(ctx context.Context) error

	// Folders returns the flat folder list in backend order
	Folders() []models.Folder

	// Tree returns the nested view
	Tree() []*models.FolderTreeNode

	// Render returns the tree as indented text
	Render() string

	// ChildrenOf lists direct children; nil lists root-level folders
	ChildrenOf(parentID *string) ([]models.Folder, error)

	AddFolder(ctx context.Context, parentID *string, name string) (models.Folder, error)

	// DeleteFolder removes a folder and its subtree, returning removed ids descendants-first
	DeleteFolder(ctx context.Context, id string) ([]string, error)

	UpdateFolder(ctx context.Context, id string, patch models.FolderPatch) (models.Folder, error)
	MoveFolder(ctx context.Context, id string, parentID *string) (models.Folder, error)

	// EditFolder applies a patch and an optional move as one change: if any
	// part is rejected, none of it is kept
	EditFolder(ctx context.Context, id string, patch models.FolderPatch, move *models.FolderMove) (models.Folder, error)

	SelectFolder(id *string) error
	Selected() *string

	// Contents is the grid view: child folders plus the folder's images
	Contents(ctx context.Context, folderID *string) (*models.FolderContents, error)

	Images(ctx context.Context, folderID string) ([]models.Image, error)

	// UploadImages uploads files concurrently. On error the images that did
	// upload are still returned.
	UploadImages(ctx context.Context, folderID string, files []models.UploadFile) ([]models.Image, error)

	DeleteImage(ctx context.Context, imageID string) error

	Permissions(ctx context.Context, folderID string) ([]models.Permission, error)
	Share(ctx context.Context, folderID, email string, grants []models.Grant) ([]models.Permission, error)
	Unshare(ctx context.Context, folderID, email string) ([]models.Permission, error)

	// PickerImages lists image files in the user's Drive
	PickerImages(ctx context.Context, driveToken string, pageSize int) ([]models.PickedFile, error)

	// ImportPicked copies picked Drive files into a sync-enabled folder
	ImportPicked(ctx context.Context, folderID, driveToken string, files []models.PickedFile) (*models.ImportResult, error)

	// Export encodes the nested tree as json or yaml
	Export(format string) ([]byte, error)
}

// WorkspaceProvider hands out the workspace bound to a session.
type WorkspaceProvider interface {
	Workspace(ctx context.Context, s models.Session) (WorkspaceService, error)
}
