package models

import (
	"io"
	"strings"
	"time"
)

// Image belongs to exactly one folder.
type Image struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	FolderID    string    `json:"folder_id"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadFile is one file handed to the workspace for upload.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// PickedFile is a remote file descriptor returned by the Drive picker.
type PickedFile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MimeType       string `json:"mimeType"`
	ThumbnailLink  string `json:"thumbnailLink,omitempty"`
	WebContentLink string `json:"webContentLink,omitempty"`
	Size           int64  `json:"size,omitempty,string"`
}

// IsImage reports whether the picker marked the file as an image.
// An empty MIME type is accepted; the upload step re-checks the content type.
func (p PickedFile) IsImage() bool {
	return p.MimeType == "" || strings.HasPrefix(p.MimeType, "image/")
}

// Link returns the best display link, preferring the thumbnail.
func (p PickedFile) Link() string {
	if p.ThumbnailLink != "" {
		return p.ThumbnailLink
	}
	return p.WebContentLink
}

// ImportResult summarizes a picker import.
type ImportResult struct {
	Imported []Image        `json:"imported"`
	Skipped  []string       `json:"skipped"`
	Failed   []ImportFailed `json:"failed"`
}

// ImportFailed records one picked file that could not be imported.
type ImportFailed struct {
	FileID string `json:"file_id"`
	Name   string `json:"name"`
	Error  string `json:"error"`
}
