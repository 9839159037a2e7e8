// Package foldertree holds the flat, insertion-ordered folder collection of a
// workspace and the tree-shaped operations over it.
//
// A Tree is not safe for concurrent use.
package foldertree

import (
	"fmt"
	"strings"

	"imgtree/internal/config"
	"imgtree/internal/domain"
	"imgtree/internal/domain/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// rootKey is the children-index key for folders without a parent.
const rootKey = "\x00root"

// maxIDAttempts bounds retries when the id generator collides.
const maxIDAttempts = 3

// Tree is the canonical flat list of folders plus derived lookups.
type Tree struct {
	folders  []models.Folder
	index    map[string]int      // id -> position in folders
	children map[string][]string // parent key -> child ids; nil when stale
	selected *string
	newID    func() string
}

// Option configures a Tree.
type Option func(*Tree)

// WithIDGenerator replaces the uuid generator used by AddFolder.
func WithIDGenerator(fn func() string) Option {
	return func(t *Tree) { t.newID = fn }
}

// New creates an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{
		index: make(map[string]int),
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Len returns the number of folders.
func (t *Tree) Len() int { return len(t.folders) }

// Folders returns a copy of the flat list in insertion order.
func (t *Tree) Folders() []models.Folder {
	out := make([]models.Folder, len(t.folders))
	copy(out, t.folders)
	return out
}

// Get returns the folder with the given id.
func (t *Tree) Get(id string) (models.Folder, bool) {
	i, ok := t.index[id]
	if !ok {
		return models.Folder{}, false
	}
	return t.folders[i], true
}

// ChildrenOf returns the folders whose parent is parentID (nil = roots), in insertion order.
func (t *Tree) ChildrenOf(parentID *string) []models.Folder {
	ids := t.childIDs(parentKey(parentID))
	out := make([]models.Folder, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.folders[t.index[id]])
	}
	return out
}

// AddFolder creates a folder under parentID with upload and sync allowed.
func (t *Tree) AddFolder(parentID *string, name string) (models.Folder, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return models.Folder{}, err
	}
	if parentID != nil {
		if _, ok := t.index[*parentID]; !ok {
			return models.Folder{}, domain.NewValidation("parent folder %s does not exist", *parentID)
		}
	}

	id, err := t.freshID()
	if err != nil {
		return models.Folder{}, err
	}

	folder := models.Folder{
		ID:          id,
		Name:        name,
		ParentID:    cloneID(parentID),
		AllowUpload: true,
		AllowSync:   true,
	}
	t.append(folder)
	return folder, nil
}

// DeleteFolder removes the folder and all of its descendants.
//
// The returned ids are ordered descendants-first: every id appears before its
// parent, and id itself is last. On error nothing is removed.
func (t *Tree) DeleteFolder(id string) ([]string, error) {
	if _, ok := t.index[id]; !ok {
		return nil, domain.NewNotFound("folder", id)
	}

	preorder, err := t.collectSubtree(id)
	if err != nil {
		return nil, err
	}

	removed := make(map[string]struct{}, len(preorder))
	for _, fid := range preorder {
		removed[fid] = struct{}{}
	}

	kept := make([]models.Folder, 0, len(t.folders)-len(preorder))
	for _, f := range t.folders {
		if _, gone := removed[f.ID]; !gone {
			kept = append(kept, f)
		}
	}
	t.reset(kept)

	if t.selected != nil {
		if _, gone := removed[*t.selected]; gone {
			t.selected = nil
		}
	}

	// reverse pre-order puts every descendant before its ancestors
	out := make([]string, len(preorder))
	for i, fid := range preorder {
		out[len(preorder)-1-i] = fid
	}
	return out, nil
}

// UpdateFolder merges the patch into the folder. ID and ParentID never change here.
func (t *Tree) UpdateFolder(id string, patch models.FolderPatch) (models.Folder, error) {
	i, ok := t.index[id]
	if !ok {
		return models.Folder{}, domain.NewNotFound("folder", id)
	}
	if patch.IsEmpty() {
		return models.Folder{}, domain.NewValidation("at least one field must be provided")
	}

	folder := t.folders[i]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateName(name); err != nil {
			return models.Folder{}, err
		}
		folder.Name = name
	}
	if patch.AllowUpload != nil {
		folder.AllowUpload = *patch.AllowUpload
	}
	if patch.AllowSync != nil {
		folder.AllowSync = *patch.AllowSync
	}

	t.folders[i] = folder
	return folder, nil
}

// MoveFolder re-parents a folder. Moving a folder under itself or one of its
// descendants is a conflict.
func (t *Tree) MoveFolder(id string, newParentID *string) (models.Folder, error) {
	i, ok := t.index[id]
	if !ok {
		return models.Folder{}, domain.NewNotFound("folder", id)
	}

	if newParentID != nil {
		if *newParentID == id {
			return models.Folder{}, &domain.ConflictError{
				Message:      "cannot move folder to be its own parent",
				ResourceType: "folder",
				ResourceID:   id,
			}
		}
		if _, ok := t.index[*newParentID]; !ok {
			return models.Folder{}, domain.NewValidation("parent folder %s does not exist", *newParentID)
		}
		ancestors, err := t.Ancestors(*newParentID)
		if err != nil {
			return models.Folder{}, err
		}
		for _, a := range ancestors {
			if a.ID == id {
				return models.Folder{}, &domain.ConflictError{
					Message:      "cannot move folder to be a child of its own descendant",
					ResourceType: "folder",
					ResourceID:   id,
				}
			}
		}
	}

	folder := t.folders[i]
	folder.ParentID = cloneID(newParentID)
	t.folders[i] = folder
	t.children = nil
	return folder, nil
}

// SelectFolder records the currently viewed folder. nil clears the selection.
func (t *Tree) SelectFolder(id *string) {
	t.selected = cloneID(id)
}

// Selected returns the currently viewed folder id, or nil.
func (t *Tree) Selected() *string {
	return cloneID(t.selected)
}

// Load replaces the whole collection, typically with the backend's list.
// Duplicate ids and dangling parent references are rejected and leave the
// current collection in place.
func (t *Tree) Load(folders []models.Folder) error {
	seen := make(map[string]struct{}, len(folders))
	for _, f := range folders {
		if f.ID == "" {
			return domain.NewValidation("folder %q has no id", f.Name)
		}
		if _, dup := seen[f.ID]; dup {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("duplicate folder id %s", f.ID),
				ResourceType: "folder",
				ResourceID:   f.ID,
			}
		}
		seen[f.ID] = struct{}{}
	}
	for _, f := range folders {
		if f.ParentID == nil {
			continue
		}
		if *f.ParentID == f.ID {
			return domain.NewValidation("folder %s is its own parent", f.ID)
		}
		if _, ok := seen[*f.ParentID]; !ok {
			return domain.NewValidation("folder %s references missing parent %s", f.ID, *f.ParentID)
		}
	}

	list := make([]models.Folder, len(folders))
	for i, f := range folders {
		f.ParentID = cloneID(f.ParentID)
		list[i] = f
	}
	t.reset(list)

	if t.selected != nil {
		if _, ok := t.index[*t.selected]; !ok {
			t.selected = nil
		}
	}
	return nil
}

// Ancestors returns the chain from the folder's parent up to its root.
func (t *Tree) Ancestors(id string) ([]models.Folder, error) {
	folder, ok := t.Get(id)
	if !ok {
		return nil, domain.NewNotFound("folder", id)
	}

	var chain []models.Folder
	visited := map[string]struct{}{id: {}}
	for folder.ParentID != nil {
		parentID := *folder.ParentID
		if _, seen := visited[parentID]; seen {
			return nil, &domain.CycleDetectedError{FolderID: parentID}
		}
		visited[parentID] = struct{}{}

		parent, ok := t.Get(parentID)
		if !ok {
			return nil, domain.NewNotFound("folder", parentID)
		}
		chain = append(chain, parent)
		folder = parent
	}
	return chain, nil
}

// Path returns the slash-joined names from the root down to the folder.
// It is for display only; names may themselves contain slashes.
func (t *Tree) Path(id string) (string, error) {
	folder, ok := t.Get(id)
	if !ok {
		return "", domain.NewNotFound("folder", id)
	}
	ancestors, err := t.Ancestors(id)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		parts = append(parts, ancestors[i].Name)
	}
	parts = append(parts, folder.Name)
	return strings.Join(parts, "/"), nil
}

// Snapshot captures the collection and selection for a later Restore.
type Snapshot struct {
	folders  []models.Folder
	selected *string
}

// Snapshot returns a copy of the current state.
func (t *Tree) Snapshot() Snapshot {
	return Snapshot{folders: t.Folders(), selected: t.Selected()}
}

// Restore puts back a state captured by Snapshot.
func (t *Tree) Restore(s Snapshot) {
	list := make([]models.Folder, len(s.folders))
	copy(list, s.folders)
	t.reset(list)
	t.selected = cloneID(s.selected)
}

// collectSubtree walks the subtree rooted at id with an explicit stack and
// returns its ids in pre-order.
func (t *Tree) collectSubtree(id string) ([]string, error) {
	visited := make(map[string]struct{})
	var order []string

	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[cur]; seen {
			return nil, &domain.CycleDetectedError{FolderID: cur}
		}
		visited[cur] = struct{}{}
		order = append(order, cur)

		kids := t.childIDs(cur)
		// push in reverse so children pop in insertion order
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return order, nil
}

// childIDs returns child ids for a parent key, rebuilding the index when stale.
func (t *Tree) childIDs(key string) []string {
	if t.children == nil {
		t.children = make(map[string][]string)
		for _, f := range t.folders {
			k := parentKey(f.ParentID)
			t.children[k] = append(t.children[k], f.ID)
		}
	}
	return t.children[key]
}

func (t *Tree) append(f models.Folder) {
	t.index[f.ID] = len(t.folders)
	t.folders = append(t.folders, f)
	t.children = nil
}

func (t *Tree) reset(list []models.Folder) {
	t.folders = list
	t.index = make(map[string]int, len(list))
	for i, f := range list {
		t.index[f.ID] = i
	}
	t.children = nil
}

func (t *Tree) freshID() (string, error) {
	for range maxIDAttempts {
		id := t.newID()
		if id == "" {
			continue
		}
		if _, taken := t.index[id]; !taken {
			return id, nil
		}
	}
	return "", &domain.ConflictError{
		Message:      "could not generate a unique folder id",
		ResourceType: "folder",
	}
}

func validateName(name string) error {
	err := validation.Validate(name,
		validation.Required.Error("folder name is required"),
		validation.RuneLength(1, config.MaxFolderNameLength),
	)
	if err != nil {
		return domain.NewValidation("invalid folder name: %v", err)
	}
	return nil
}

func parentKey(parentID *string) string {
	if parentID == nil {
		return rootKey
	}
	return *parentID
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
