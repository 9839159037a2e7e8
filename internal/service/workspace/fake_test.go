package workspace

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"imgtree/internal/domain"
	"imgtree/internal/domain/models"
)

// fakeBackend is an in-memory backend with integer ids, like the real one.
type fakeBackend struct {
	mu      sync.Mutex
	folders []models.Folder
	images  map[string][]models.Image
	perms   map[string][]models.Permission
	nextID  int

	fail       map[string]error // op -> error to return
	listCalls  int
	uploads    int
	noEcho     bool // CreateFolder answers without a body
	uploadHook func(name string) error
}

func newFakeBackend(folders ...models.Folder) *fakeBackend {
	return &fakeBackend{
		folders: folders,
		images:  make(map[string][]models.Image),
		perms:   make(map[string][]models.Permission),
		nextID:  100,
		fail:    make(map[string]error),
	}
}

func (b *fakeBackend) failOn(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[op] = err
}

func (b *fakeBackend) check(op string) error {
	return b.fail[op]
}

func (b *fakeBackend) id() string {
	b.nextID++
	return strconv.Itoa(b.nextID)
}

func (b *fakeBackend) ListFolders(ctx context.Context, s models.Session) ([]models.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++
	if err := b.check("list"); err != nil {
		return nil, err
	}
	out := make([]models.Folder, len(b.folders))
	copy(out, b.folders)
	return out, nil
}

func (b *fakeBackend) CreateFolder(ctx context.Context, s models.Session, name string, parentID *string) (*models.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("create"); err != nil {
		return nil, err
	}
	f := models.Folder{ID: b.id(), Name: name, ParentID: parentID, AllowUpload: true, AllowSync: true}
	b.folders = append(b.folders, f)
	if b.noEcho {
		return nil, nil
	}
	return &f, nil
}

func (b *fakeBackend) UpdateFolder(ctx context.Context, s models.Session, id string, patch models.FolderPatch) (*models.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("update"); err != nil {
		return nil, err
	}
	for i, f := range b.folders {
		if f.ID != id {
			continue
		}
		if patch.Name != nil {
			f.Name = *patch.Name
		}
		if patch.AllowUpload != nil {
			f.AllowUpload = *patch.AllowUpload
		}
		if patch.AllowSync != nil {
			f.AllowSync = *patch.AllowSync
		}
		b.folders[i] = f
		return &f, nil
	}
	return nil, domain.NewUpstreamError("update folder", 404, "not found")
}

func (b *fakeBackend) MoveFolder(ctx context.Context, s models.Session, id string, parentID *string) (*models.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("move"); err != nil {
		return nil, err
	}
	for i, f := range b.folders {
		if f.ID == id {
			f.ParentID = parentID
			b.folders[i] = f
			return &f, nil
		}
	}
	return nil, domain.NewUpstreamError("move folder", 404, "not found")
}

func (b *fakeBackend) DeleteFolder(ctx context.Context, s models.Session, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("delete"); err != nil {
		return err
	}
	gone := map[string]bool{id: true}
	for changed := true; changed; {
		changed = false
		for _, f := range b.folders {
			if f.ParentID != nil && gone[*f.ParentID] && !gone[f.ID] {
				gone[f.ID] = true
				changed = true
			}
		}
	}
	kept := b.folders[:0:0]
	for _, f := range b.folders {
		if !gone[f.ID] {
			kept = append(kept, f)
		}
	}
	b.folders = kept
	return nil
}

func (b *fakeBackend) ListImages(ctx context.Context, s models.Session, folderID string) ([]models.Image, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("list images"); err != nil {
		return nil, err
	}
	out := make([]models.Image, len(b.images[folderID]))
	copy(out, b.images[folderID])
	return out, nil
}

func (b *fakeBackend) UploadImage(ctx context.Context, s models.Session, folderID string, file models.UploadFile) (*models.Image, error) {
	data, err := io.ReadAll(file.Content)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadHook != nil {
		if err := b.uploadHook(file.Name); err != nil {
			return nil, err
		}
	}
	b.uploads++
	img := models.Image{
		ID:          b.id(),
		Name:        file.Name,
		URL:         "http://img/" + file.Name,
		FolderID:    folderID,
		ContentType: file.ContentType,
		Size:        int64(len(data)),
	}
	b.images[folderID] = append(b.images[folderID], img)
	return &img, nil
}

func (b *fakeBackend) DeleteImage(ctx context.Context, s models.Session, imageID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("delete image"); err != nil {
		return err
	}
	for fid, list := range b.images {
		for i, img := range list {
			if img.ID == imageID {
				b.images[fid] = append(list[:i:i], list[i+1:]...)
				return nil
			}
		}
	}
	return domain.NewUpstreamError("delete image", 404, "not found")
}

func (b *fakeBackend) ListPermissions(ctx context.Context, s models.Session, folderID string) ([]models.Permission, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Permission, len(b.perms[folderID]))
	copy(out, b.perms[folderID])
	return out, nil
}

func (b *fakeBackend) SetPermissions(ctx context.Context, s models.Session, folderID string, perms []models.Permission) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("set permissions"); err != nil {
		return err
	}
	b.perms[folderID] = perms
	return nil
}

// fakeDrive serves file contents by id.
type fakeDrive struct {
	files map[string]string
}

func (d *fakeDrive) ListImages(ctx context.Context, token string, pageSize int) ([]models.PickedFile, error) {
	var out []models.PickedFile
	for id := range d.files {
		out = append(out, models.PickedFile{ID: id, Name: id + ".jpg", MimeType: "image/jpeg"})
	}
	return out, nil
}

func (d *fakeDrive) Open(ctx context.Context, token, fileID string) (io.ReadCloser, error) {
	content, ok := d.files[fileID]
	if !ok {
		return nil, domain.NewUpstreamError(fmt.Sprintf("open drive file %s", fileID), 404, "File not found")
	}
	return io.NopCloser(strings.NewReader(content)), nil
}
