package workspace

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"imgtree/internal/config"
	"imgtree/internal/domain"
	"imgtree/internal/domain/models"
)

// Images returns the folder's images, from cache when present
func (w *workspace) Images(ctx context.Context, folderID string) ([]models.Image, error) {
	_, session, err := w.requireFolder(folderID)
	if err != nil {
		return nil, err
	}

	w.imagesMu.RLock()
	cached, ok := w.images[folderID]
	w.imagesMu.RUnlock()
	if ok {
		return cloneImages(cached), nil
	}

	images, err := w.backend.ListImages(ctx, session, folderID)
	if err != nil {
		return nil, err
	}

	w.imagesMu.Lock()
	w.images[folderID] = images
	w.imagesMu.Unlock()
	return cloneImages(images), nil
}

// UploadImages validates every file first and uploads none if any is
// invalid. Uploads then run concurrently; the first failure cancels the rest.
func (w *workspace) UploadImages(ctx context.Context, folderID string, files []models.UploadFile) ([]models.Image, error) {
	folder, session, err := w.requireFolder(folderID)
	if err != nil {
		return nil, err
	}
	if !folder.AllowUpload {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("uploads are disabled for folder %q", folder.Name)}
	}
	if len(files) == 0 {
		return nil, domain.NewValidation("no files to upload")
	}
	if len(files) > config.MaxUploadBatch {
		return nil, domain.NewValidation("at most %d files can be uploaded at once", config.MaxUploadBatch)
	}

	prepared := make([]models.UploadFile, len(files))
	for i, f := range files {
		p, err := prepareUpload(f)
		if err != nil {
			return nil, err
		}
		prepared[i] = p
	}

	results := make([]*models.Image, len(prepared))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i, f := range prepared {
		g.Go(func() error {
			img, err := w.backend.UploadImage(gctx, session, folderID, f)
			if err != nil {
				return fmt.Errorf("upload %s: %w", f.Name, err)
			}
			results[i] = img
			return nil
		})
	}
	err = g.Wait()

	uploaded := make([]models.Image, 0, len(results))
	for _, img := range results {
		if img != nil {
			uploaded = append(uploaded, *img)
		}
	}
	w.cacheAppend(folderID, uploaded)

	if err != nil {
		w.logger.Warn("upload failed", "folder_id", folderID, "uploaded", len(uploaded), "requested", len(files), "error", err)
		return uploaded, err
	}
	w.logger.Info("images uploaded", "folder_id", folderID, "count", len(uploaded))
	return uploaded, nil
}

// DeleteImage removes the image on the backend and from every cached list
func (w *workspace) DeleteImage(ctx context.Context, imageID string) error {
	if imageID == "" {
		return domain.NewValidation("image id is required")
	}
	if err := w.backend.DeleteImage(ctx, w.currentSession(), imageID); err != nil {
		return err
	}

	w.imagesMu.Lock()
	defer w.imagesMu.Unlock()
	for fid, list := range w.images {
		kept := list[:0:0]
		for _, img := range list {
			if img.ID != imageID {
				kept = append(kept, img)
			}
		}
		w.images[fid] = kept
	}
	return nil
}

// prepareUpload fills in a missing content type and enforces the image rules.
func prepareUpload(f models.UploadFile) (models.UploadFile, error) {
	if f.Content == nil {
		return f, domain.NewValidation("%s: no content", f.Name)
	}
	contentType, err := checkImage(f.Name, f.ContentType, f.Size)
	if err != nil {
		return f, err
	}
	f.ContentType = contentType
	f.Content = guardSize(f.Content, f.Name)
	return f, nil
}

// checkImage validates the metadata of one image and returns its normalized content type.
func checkImage(name, contentType string, size int64) (string, error) {
	contentType = contentTypeOf(name, contentType)
	if !strings.HasPrefix(contentType, "image/") {
		return "", domain.NewValidation("%s is not an image (%s)", name, contentType)
	}
	if size > config.MaxImageSize {
		return "", domain.NewValidation("%s is larger than %d MiB", name, config.MaxImageSize>>20)
	}
	return contentType, nil
}

// guardSize caps the bytes read from r at MaxImageSize. Declared sizes come
// from the caller and are not trusted.
func guardSize(r io.Reader, name string) io.Reader {
	return &sizeGuard{r: r, name: name, remaining: config.MaxImageSize}
}

// contentTypeOf strips parameters and falls back to the file extension.
func contentTypeOf(name, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			return mt
		}
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		mt, _, _ := mime.ParseMediaType(byExt)
		return mt
	}
	if declared == "" {
		return "application/octet-stream"
	}
	return declared
}

// sizeGuard fails the read once more than MaxImageSize bytes come through.
type sizeGuard struct {
	r         io.Reader
	name      string
	remaining int64
}

func (g *sizeGuard) Read(p []byte) (int, error) {
	n, err := g.r.Read(p)
	g.remaining -= int64(n)
	if g.remaining < 0 {
		return n, domain.NewValidation("%s is larger than %d MiB", g.name, config.MaxImageSize>>20)
	}
	return n, err
}

func (w *workspace) cacheAppend(folderID string, images []models.Image) {
	if len(images) == 0 {
		return
	}
	w.imagesMu.Lock()
	defer w.imagesMu.Unlock()
	// only extend lists already fetched; a missing entry is loaded on demand
	if list, ok := w.images[folderID]; ok {
		w.images[folderID] = append(list, images...)
	}
}

// pruneImages drops cached lists of folders that no longer exist. Caller holds mu.
func (w *workspace) pruneImages() {
	w.imagesMu.Lock()
	defer w.imagesMu.Unlock()
	for fid := range w.images {
		if _, ok := w.tree.Get(fid); !ok {
			delete(w.images, fid)
		}
	}
}

func cloneImages(images []models.Image) []models.Image {
	out := make([]models.Image, len(images))
	copy(out, images)
	return out
}
