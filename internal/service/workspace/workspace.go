package workspace

import (
	"context"
	"log/slog"
	"sync"

	"imgtree/internal/config"
	"imgtree/internal/domain"
	"imgtree/internal/domain/models"
	"imgtree/internal/domain/repositories"
	"imgtree/internal/domain/services"
	"imgtree/internal/foldertree"
)

// Config holds the collaborators and limits a workspace needs
type Config struct {
	Backend     repositories.Backend
	Drive       repositories.DriveRepository
	Concurrency int // parallel uploads per request
	Logger      *slog.Logger

	// TreeOptions are passed to foldertree.New
	TreeOptions []foldertree.Option
}

// workspace implements services.WorkspaceService for one session.
//
// mu serializes every tree operation, including the backend call a mutation
// waits on. imagesMu guards the image cache and is never held across a
// network call.
type workspace struct {
	mu      sync.Mutex
	session models.Session
	tree    *foldertree.Tree

	imagesMu sync.RWMutex
	images   map[string][]models.Image // folder id -> cached images

	backend     repositories.Backend
	drive       repositories.DriveRepository
	concurrency int
	logger      *slog.Logger
}

// New creates an empty workspace for the session. Call Refresh to load it.
func New(s models.Session, cfg *Config) services.WorkspaceService {
	return newWorkspace(s, cfg)
}

func newWorkspace(s models.Session, cfg *Config) *workspace {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = config.DefaultUploadConcurrency
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &workspace{
		session:     s,
		tree:        foldertree.New(cfg.TreeOptions...),
		images:      make(map[string][]models.Image),
		backend:     cfg.Backend,
		drive:       cfg.Drive,
		concurrency: concurrency,
		logger:      logger.With("user_id", s.UserID),
	}
}

func (w *workspace) currentSession() models.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

// Refresh reloads the folder list and drops every cached image list
func (w *workspace) Refresh(ctx context.Context) error {
	w.mu.Lock()
	err := w.reload(ctx)
	w.mu.Unlock()
	if err != nil {
		return err
	}

	w.imagesMu.Lock()
	clear(w.images)
	w.imagesMu.Unlock()
	return nil
}

// reload replaces the tree with the backend's list. Caller holds mu.
func (w *workspace) reload(ctx context.Context) error {
	folders, err := w.backend.ListFolders(ctx, w.session)
	if err != nil {
		return err
	}
	if err := w.tree.Load(folders); err != nil {
		w.logger.Error("backend folder list rejected", "error", err, "count", len(folders))
		return err
	}
	w.pruneImages()
	return nil
}

// mutate applies a local change, forwards it to the backend and then
// refreshes from the backend. A backend failure rolls the local change back.
// Caller holds mu.
func (w *workspace) mutate(ctx context.Context, op string, local func() error, remote func() error) error {
	snap := w.tree.Snapshot()
	if err := local(); err != nil {
		// local may apply several steps before one fails
		w.tree.Restore(snap)
		return err
	}

	if err := remote(); err != nil {
		w.tree.Restore(snap)
		w.logger.Warn("backend rejected change, rolled back", "op", op, "error", err)
		return err
	}

	if err := w.reload(ctx); err != nil {
		w.logger.Warn("refresh after change failed, keeping local state", "op", op, "error", err)
	}
	return nil
}

func (w *workspace) Folders() []models.Folder {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tree.Folders()
}

func (w *workspace) Tree() []*models.FolderTreeNode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tree.Build()
}

func (w *workspace) Render() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tree.Render()
}

// ChildrenOf lists direct children of parentID; an unknown parent is NotFound
func (w *workspace) ChildrenOf(parentID *string) ([]models.Folder, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if parentID != nil {
		if _, ok := w.tree.Get(*parentID); !ok {
			return nil, domain.NewNotFound("folder", *parentID)
		}
	}
	return w.tree.ChildrenOf(parentID), nil
}

// AddFolder validates and creates a folder. The returned folder carries the
// backend's id once the backend has answered.
func (w *workspace) AddFolder(ctx context.Context, parentID *string, name string) (models.Folder, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	before := w.tree.Folders()
	var tentative models.Folder
	var created *models.Folder

	err := w.mutate(ctx, "add folder",
		func() (err error) {
			tentative, err = w.tree.AddFolder(parentID, name)
			return err
		},
		func() (err error) {
			created, err = w.backend.CreateFolder(ctx, w.session, tentative.Name, parentID)
			return err
		},
	)
	if err != nil {
		return models.Folder{}, err
	}

	// after a successful refresh the tentative id is gone
	if _, ok := w.tree.Get(tentative.ID); ok && created != nil {
		if err := w.tree.Load(append(before, *created)); err != nil {
			w.logger.Warn("could not swap in backend folder", "folder_id", created.ID, "error", err)
			return tentative, nil
		}
	}

	if created != nil {
		if f, ok := w.tree.Get(created.ID); ok {
			return f, nil
		}
		return *created, nil
	}
	if f, ok := findNew(before, w.tree.Folders(), tentative); ok {
		return f, nil
	}
	return tentative, nil
}

// findNew finds the folder the backend created when it did not echo it back.
func findNew(before, after []models.Folder, want models.Folder) (models.Folder, bool) {
	known := make(map[string]struct{}, len(before))
	for _, f := range before {
		known[f.ID] = struct{}{}
	}
	for _, f := range after {
		if _, ok := known[f.ID]; ok || f.ID == want.ID {
			continue
		}
		if f.Name == want.Name && sameParent(f.ParentID, want.ParentID) {
			return f, true
		}
	}
	return models.Folder{}, false
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// DeleteFolder removes the folder, its subtree and their cached images
func (w *workspace) DeleteFolder(ctx context.Context, id string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var removed []string
	err := w.mutate(ctx, "delete folder",
		func() (err error) {
			removed, err = w.tree.DeleteFolder(id)
			return err
		},
		func() error {
			return w.backend.DeleteFolder(ctx, w.session, id)
		},
	)
	if err != nil {
		return nil, err
	}

	w.imagesMu.Lock()
	for _, fid := range removed {
		delete(w.images, fid)
	}
	w.imagesMu.Unlock()

	w.logger.Info("folder deleted", "folder_id", id, "removed", len(removed))
	return removed, nil
}

// UpdateFolder renames a folder or toggles its upload and sync flags
func (w *workspace) UpdateFolder(ctx context.Context, id string, patch models.FolderPatch) (models.Folder, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var updated models.Folder
	err := w.mutate(ctx, "update folder",
		func() (err error) {
			updated, err = w.tree.UpdateFolder(id, patch)
			return err
		},
		func() error {
			if patch.Name != nil {
				// send the trimmed name the tree accepted
				name := updated.Name
				patch.Name = &name
			}
			_, err := w.backend.UpdateFolder(ctx, w.session, id, patch)
			return err
		},
	)
	if err != nil {
		return models.Folder{}, err
	}
	if f, ok := w.tree.Get(id); ok {
		return f, nil
	}
	return updated, nil
}

// MoveFolder re-parents a folder; nil moves it to root level
func (w *workspace) MoveFolder(ctx context.Context, id string, parentID *string) (models.Folder, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var moved models.Folder
	err := w.mutate(ctx, "move folder",
		func() (err error) {
			moved, err = w.tree.MoveFolder(id, parentID)
			return err
		},
		func() error {
			_, err := w.backend.MoveFolder(ctx, w.session, id, parentID)
			return err
		},
	)
	if err != nil {
		return models.Folder{}, err
	}
	if f, ok := w.tree.Get(id); ok {
		return f, nil
	}
	return moved, nil
}

// EditFolder renames/toggles and moves a folder in one mutation. Both parts
// are validated locally before the backend sees either. If the backend
// rejects the move after accepting the patch, the patch is reverted there too.
func (w *workspace) EditFolder(ctx context.Context, id string, patch models.FolderPatch, move *models.FolderMove) (models.Folder, error) {
	if move == nil {
		return w.UpdateFolder(ctx, id, patch)
	}
	if patch.IsEmpty() {
		return w.MoveFolder(ctx, id, move.ParentID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	original, ok := w.tree.Get(id)
	if !ok {
		return models.Folder{}, domain.NewNotFound("folder", id)
	}

	var edited models.Folder
	err := w.mutate(ctx, "edit folder",
		func() error {
			updated, err := w.tree.UpdateFolder(id, patch)
			if err != nil {
				return err
			}
			if patch.Name != nil {
				name := updated.Name
				patch.Name = &name
			}
			edited, err = w.tree.MoveFolder(id, move.ParentID)
			return err
		},
		func() error {
			if _, err := w.backend.UpdateFolder(ctx, w.session, id, patch); err != nil {
				return err
			}
			if _, err := w.backend.MoveFolder(ctx, w.session, id, move.ParentID); err != nil {
				revert := revertPatch(original, patch)
				if _, rerr := w.backend.UpdateFolder(ctx, w.session, id, revert); rerr != nil {
					w.logger.Error("could not revert folder patch after failed move",
						"folder_id", id,
						"error", rerr,
					)
				}
				return err
			}
			return nil
		},
	)
	if err != nil {
		return models.Folder{}, err
	}
	if f, ok := w.tree.Get(id); ok {
		return f, nil
	}
	return edited, nil
}

// revertPatch builds the patch restoring the fields p changed on f.
func revertPatch(f models.Folder, p models.FolderPatch) models.FolderPatch {
	var out models.FolderPatch
	if p.Name != nil {
		name := f.Name
		out.Name = &name
	}
	if p.AllowUpload != nil {
		v := f.AllowUpload
		out.AllowUpload = &v
	}
	if p.AllowSync != nil {
		v := f.AllowSync
		out.AllowSync = &v
	}
	return out
}

// SelectFolder records the folder being viewed; nil clears it
func (w *workspace) SelectFolder(id *string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if id != nil {
		if _, ok := w.tree.Get(*id); !ok {
			return domain.NewNotFound("folder", *id)
		}
	}
	w.tree.SelectFolder(id)
	return nil
}

func (w *workspace) Selected() *string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tree.Selected()
}

// Contents returns the grid view of a folder. nil is the root level, which holds no images.
func (w *workspace) Contents(ctx context.Context, folderID *string) (*models.FolderContents, error) {
	w.mu.Lock()
	var folder *models.Folder
	if folderID != nil {
		f, ok := w.tree.Get(*folderID)
		if !ok {
			w.mu.Unlock()
			return nil, domain.NewNotFound("folder", *folderID)
		}
		folder = &f
	}
	children := w.tree.ChildrenOf(folderID)
	w.mu.Unlock()

	contents := &models.FolderContents{
		Folder:  folder,
		Folders: children,
		Images:  []models.Image{},
	}
	if folder == nil {
		return contents, nil
	}

	images, err := w.Images(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	contents.Images = images
	return contents, nil
}

// requireFolder returns the folder or NotFound.
func (w *workspace) requireFolder(id string) (models.Folder, models.Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, ok := w.tree.Get(id)
	if !ok {
		return models.Folder{}, w.session, domain.NewNotFound("folder", id)
	}
	return f, w.session, nil
}
