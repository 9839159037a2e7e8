package rest

import (
	"context"
	"fmt"
	"time"

	"imgtree/internal/domain/models"
)

type imageDTO struct {
	ID            flexID  `json:"id"`
	Name          string  `json:"name"`
	URL           string  `json:"url"`
	ImageURL      string  `json:"image_url"`
	FolderID      *flexID `json:"folder_id"`
	FolderIDCamel *flexID `json:"folderId"`
	ContentType   string  `json:"content_type"`
	Size          int64   `json:"size"`
	CreatedAt     string  `json:"created_at"`
	CreatedAtCml  string  `json:"createdAt"`
}

func (d imageDTO) toModel(folderID string) models.Image {
	img := models.Image{
		ID:          string(d.ID),
		Name:        d.Name,
		URL:         d.URL,
		FolderID:    folderID,
		ContentType: d.ContentType,
		Size:        d.Size,
		CreatedAt:   parseTime(d.CreatedAt, d.CreatedAtCml),
	}
	if img.URL == "" {
		img.URL = d.ImageURL
	}
	if id := firstID(d.FolderID, d.FolderIDCamel); id != nil {
		img.FolderID = string(*id)
	}
	return img
}

// parseTime returns the first timestamp that parses; unknown formats yield the zero time.
func parseTime(values ...string) time.Time {
	for _, v := range values {
		if v == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// ListImages returns the images stored in one folder
func (c *Client) ListImages(ctx context.Context, s models.Session, folderID string) ([]models.Image, error) {
	resp, err := c.request(ctx, &s).
		SetPathParam("fid", folderID).
		Get("/user/{uid}/folder/{fid}/images")
	if err := checkResponse("list images", resp, err); err != nil {
		return nil, err
	}

	dtos, err := decodeList[imageDTO](resp.Body(), "images")
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	images := make([]models.Image, len(dtos))
	for i, d := range dtos {
		images[i] = d.toModel(folderID)
	}
	return images, nil
}

// UploadImage posts one file as multipart field "file"
func (c *Client) UploadImage(ctx context.Context, s models.Session, folderID string, file models.UploadFile) (*models.Image, error) {
	resp, err := c.request(ctx, &s).
		SetPathParam("fid", folderID).
		SetMultipartField("file", file.Name, file.ContentType, file.Content).
		Post("/user/{uid}/folder/{fid}/images")
	if err := checkResponse("upload image", resp, err); err != nil {
		return nil, err
	}

	var dto imageDTO
	ok, err := decodeObject(resp.Body(), &dto, "image")
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	img := models.Image{
		Name:        file.Name,
		FolderID:    folderID,
		ContentType: file.ContentType,
		Size:        file.Size,
		CreatedAt:   time.Now().UTC(),
	}
	if ok {
		got := dto.toModel(folderID)
		img.ID, img.URL = got.ID, got.URL
		if got.Name != "" {
			img.Name = got.Name
		}
		if got.ContentType != "" {
			img.ContentType = got.ContentType
		}
		if got.Size > 0 {
			img.Size = got.Size
		}
		if !got.CreatedAt.IsZero() {
			img.CreatedAt = got.CreatedAt
		}
	}
	return &img, nil
}

// DeleteImage removes one image
func (c *Client) DeleteImage(ctx context.Context, s models.Session, imageID string) error {
	resp, err := c.request(ctx, &s).
		SetPathParam("iid", imageID).
		Delete("/user/{uid}/image/{iid}")
	return checkResponse("delete image", resp, err)
}
