package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"imgtree/internal/config"
	"imgtree/internal/domain/models"
	"imgtree/internal/domain/services"
	"imgtree/internal/httputil"
)

// uploadMemory is how much of a multipart body is kept in memory before spilling to disk.
const uploadMemory = 32 << 20

// ImageHandler handles image listing, upload and deletion
type ImageHandler struct {
	workspaces services.WorkspaceProvider
	logger     *slog.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(workspaces services.WorkspaceProvider, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		workspaces: workspaces,
		logger:     logger,
	}
}

// ListImages returns the images of one folder
// GET /api/folders/{id}/images
func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	images, err := ws.Images(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"images": images})
}

// UploadImages uploads the multipart "files" field into a folder
// POST /api/folders/{id}/images
func (h *ImageHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	extendDeadlines(w, config.TransferTimeout)
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadRequestSize)
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", maxErr.Limit))
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "no files provided")
		return
	}

	files, closeAll, err := openUploads(headers)
	defer closeAll()
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folderID := r.PathValue("id")
	images, err := ws.UploadImages(r.Context(), folderID, files)
	if err != nil {
		if len(images) > 0 {
			status, detail, extras := problemFor(err)
			if extras == nil {
				extras = map[string]interface{}{}
			}
			extras["uploaded"] = images
			httputil.RespondErrorWithExtras(w, status, detail, extras)
			return
		}
		handleError(w, err)
		return
	}

	h.logger.Info("images uploaded",
		"folder_id", folderID,
		"count", len(images),
		"user_id", httputil.GetUserID(r),
	)
	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{"images": images})
}

// DeleteImage removes one image
// DELETE /api/images/{id}
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	if err := ws.DeleteImage(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// openUploads opens every part. The returned func closes whatever was opened.
func openUploads(headers []*multipart.FileHeader) ([]models.UploadFile, func(), error) {
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	files := make([]models.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		files = append(files, models.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		})
	}
	return files, closeAll, nil
}
