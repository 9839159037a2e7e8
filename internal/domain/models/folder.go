package models

// Folder is a named node in the user's folder tree.
type Folder struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	ParentID    *string `json:"parent_id" yaml:"parent_id"` // nil = root level
	AllowUpload bool    `json:"allow_upload" yaml:"allow_upload"`
	AllowSync   bool    `json:"allow_sync" yaml:"allow_sync"`
}

// IsRoot reports whether the folder sits at the top level.
func (f Folder) IsRoot() bool { return f.ParentID == nil }

// FolderPatch carries the mutable fields of a folder. Nil fields are left untouched.
type FolderPatch struct {
	Name        *string `json:"name,omitempty"`
	AllowUpload *bool   `json:"allow_upload,omitempty"`
	AllowSync   *bool   `json:"allow_sync,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p FolderPatch) IsEmpty() bool {
	return p.Name == nil && p.AllowUpload == nil && p.AllowSync == nil
}

// FolderMove requests a new parent; a nil ParentID means root level.
type FolderMove struct {
	ParentID *string
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	ParentID    *string           `json:"parent_id" yaml:"parent_id,omitempty"`
	AllowUpload bool              `json:"allow_upload" yaml:"allow_upload"`
	AllowSync   bool              `json:"allow_sync" yaml:"allow_sync"`
	Folders     []*FolderTreeNode `json:"folders" yaml:"folders,omitempty"` // Pointers for proper nesting
}

// FolderContents is what the grid view shows for one folder.
type FolderContents struct {
	Folder  *Folder  `json:"folder,omitempty"` // nil for root
	Folders []Folder `json:"folders"`
	Images  []Image  `json:"images"`
}
