package workspace

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"imgtree/internal/config"
	"imgtree/internal/domain"
	"imgtree/internal/domain/models"
)

// PickerImages lists image files from the user's Drive
func (w *workspace) PickerImages(ctx context.Context, driveToken string, pageSize int) ([]models.PickedFile, error) {
	if w.drive == nil {
		return nil, domain.NewUpstreamError("list drive images", 0, "drive is not configured")
	}
	if driveToken == "" {
		return nil, &domain.UnauthorizedError{Message: "drive access token required"}
	}
	return w.drive.ListImages(ctx, driveToken, pageSize)
}

// ImportPicked copies the picked files into a sync-enabled folder.
// Non-images are skipped. A file that fails is recorded in the result
// without stopping the others.
func (w *workspace) ImportPicked(ctx context.Context, folderID, driveToken string, files []models.PickedFile) (*models.ImportResult, error) {
	folder, session, err := w.requireFolder(folderID)
	if err != nil {
		return nil, err
	}
	if !folder.AllowSync {
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("sync is disabled for folder %q", folder.Name)}
	}
	if w.drive == nil {
		return nil, domain.NewUpstreamError("import from drive", 0, "drive is not configured")
	}
	if driveToken == "" {
		return nil, &domain.UnauthorizedError{Message: "drive access token required"}
	}
	if len(files) == 0 {
		return nil, domain.NewValidation("no files picked")
	}
	if len(files) > config.MaxUploadBatch {
		return nil, domain.NewValidation("at most %d files can be imported at once", config.MaxUploadBatch)
	}

	result := &models.ImportResult{
		Imported: []models.Image{},
		Skipped:  []string{},
		Failed:   []models.ImportFailed{},
	}

	type outcome struct {
		image *models.Image
		err   error
	}
	outcomes := make([]*outcome, len(files))

	var g errgroup.Group
	g.SetLimit(w.concurrency)
	for i, pf := range files {
		if !pf.IsImage() {
			result.Skipped = append(result.Skipped, pf.Name)
			continue
		}
		g.Go(func() error {
			img, err := w.importOne(ctx, session, folderID, driveToken, pf)
			outcomes[i] = &outcome{image: img, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var imported []models.Image
	for i, o := range outcomes {
		if o == nil {
			continue
		}
		if o.err != nil {
			result.Failed = append(result.Failed, models.ImportFailed{
				FileID: files[i].ID,
				Name:   files[i].Name,
				Error:  o.err.Error(),
			})
			continue
		}
		imported = append(imported, *o.image)
	}
	if imported != nil {
		result.Imported = imported
	}
	w.cacheAppend(folderID, imported)

	w.logger.Info("drive import finished",
		"folder_id", folderID,
		"imported", len(result.Imported),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
	)
	return result, nil
}

func (w *workspace) importOne(ctx context.Context, s models.Session, folderID, driveToken string, pf models.PickedFile) (*models.Image, error) {
	if pf.ID == "" {
		return nil, domain.NewValidation("picked file %q has no id", pf.Name)
	}

	contentType, err := checkImage(pf.Name, pf.MimeType, pf.Size)
	if err != nil {
		return nil, err
	}

	content, err := w.drive.Open(ctx, driveToken, pf.ID)
	if err != nil {
		return nil, err
	}
	defer content.Close()

	return w.backend.UploadImage(ctx, s, folderID, models.UploadFile{
		Name:        pf.Name,
		ContentType: contentType,
		Size:        pf.Size,
		Content:     guardSize(content, pf.Name),
	})
}
