package rest

import (
	"context"
	"fmt"

	"imgtree/internal/domain/models"
)

// folderDTO accepts both the snake_case and camelCase shapes the backend has used.
type folderDTO struct {
	ID             flexID  `json:"id"`
	Name           string  `json:"name"`
	ParentID       *flexID `json:"parent_id"`
	ParentIDCamel  *flexID `json:"parentId"`
	AllowUpload    *bool   `json:"allow_upload"`
	AllowUploadCml *bool   `json:"allowUpload"`
	AllowSync      *bool   `json:"allow_sync"`
	AllowSyncCml   *bool   `json:"allowSync"`
}

func (d folderDTO) toModel() models.Folder {
	return models.Folder{
		ID:          string(d.ID),
		Name:        d.Name,
		ParentID:    firstID(d.ParentID, d.ParentIDCamel).ptr(),
		AllowUpload: firstBool(true, d.AllowUpload, d.AllowUploadCml),
		AllowSync:   firstBool(true, d.AllowSync, d.AllowSyncCml),
	}
}

// firstBool returns the first set flag; flags the backend omits default to def.
func firstBool(def bool, vals ...*bool) bool {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return def
}

// ListFolders returns every folder the user owns, in backend order
func (c *Client) ListFolders(ctx context.Context, s models.Session) ([]models.Folder, error) {
	resp, err := c.request(ctx, &s).Get("/user/{uid}/folders")
	if err := checkResponse("list folders", resp, err); err != nil {
		return nil, err
	}

	dtos, err := decodeList[folderDTO](resp.Body(), "folders")
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	folders := make([]models.Folder, len(dtos))
	for i, d := range dtos {
		folders[i] = d.toModel()
	}
	return folders, nil
}

// CreateFolder creates a folder. The returned folder is nil when the backend
// answers without a body; callers re-list to learn the id.
func (c *Client) CreateFolder(ctx context.Context, s models.Session, name string, parentID *string) (*models.Folder, error) {
	body := map[string]any{
		"name":      name,
		"parent_id": wireID(parentID),
		"owner":     wireID(&s.UserID),
	}

	resp, err := c.request(ctx, &s).SetBody(body).Post("/user/{uid}/folders")
	if err := checkResponse("create folder", resp, err); err != nil {
		return nil, err
	}
	return decodeFolder(resp.Body(), "create folder")
}

// UpdateFolder sends only the fields the patch sets
func (c *Client) UpdateFolder(ctx context.Context, s models.Session, id string, patch models.FolderPatch) (*models.Folder, error) {
	body := map[string]any{}
	if patch.Name != nil {
		body["name"] = *patch.Name
	}
	if patch.AllowUpload != nil {
		body["allow_upload"] = *patch.AllowUpload
	}
	if patch.AllowSync != nil {
		body["allow_sync"] = *patch.AllowSync
	}

	resp, err := c.request(ctx, &s).
		SetPathParam("fid", id).
		SetBody(body).
		Patch("/user/{uid}/folder/{fid}")
	if err := checkResponse("update folder", resp, err); err != nil {
		return nil, err
	}
	return decodeFolder(resp.Body(), "update folder")
}

// MoveFolder re-parents a folder; nil parentID moves it to root level
func (c *Client) MoveFolder(ctx context.Context, s models.Session, id string, parentID *string) (*models.Folder, error) {
	resp, err := c.request(ctx, &s).
		SetPathParam("fid", id).
		SetBody(map[string]any{"parent_id": wireID(parentID)}).
		Patch("/user/{uid}/folder/{fid}")
	if err := checkResponse("move folder", resp, err); err != nil {
		return nil, err
	}
	return decodeFolder(resp.Body(), "move folder")
}

// DeleteFolder deletes a folder; the backend cascades to descendants and their images
func (c *Client) DeleteFolder(ctx context.Context, s models.Session, id string) error {
	resp, err := c.request(ctx, &s).
		SetPathParam("fid", id).
		Delete("/user/{uid}/folder/{fid}")
	return checkResponse("delete folder", resp, err)
}

func decodeFolder(body []byte, op string) (*models.Folder, error) {
	var dto folderDTO
	ok, err := decodeObject(body, &dto, "folder")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok || dto.ID == "" {
		return nil, nil
	}
	f := dto.toModel()
	return &f, nil
}
