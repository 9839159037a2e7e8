package workspace

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"imgtree/internal/config"
	"imgtree/internal/domain"
	"imgtree/internal/domain/models"
)

func upload(name, contentType, body string) models.UploadFile {
	return models.UploadFile{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Content:     strings.NewReader(body),
	}
}

func TestWorkspace_UploadImages(t *testing.T) {
	b := photosBackend()
	ws := loadedWorkspace(t, b)
	ctx := context.Background()

	// populate the cache so the upload extends it
	_, err := ws.Images(ctx, "2")
	require.NoError(t, err)

	files := make([]models.UploadFile, 6)
	for i := range files {
		files[i] = upload(fmt.Sprintf("img%d.png", i), "image/png", "data")
	}
	files[5].ContentType = ""
	files[5].Name = "guess.jpg"

	images, err := ws.UploadImages(ctx, "2", files)
	require.NoError(t, err)
	assert.Len(t, images, 6)
	assert.Equal(t, 6, b.uploads)
	assert.Equal(t, "img0.png", images[0].Name, "results keep request order")
	assert.Equal(t, "image/jpeg", b.images["2"][indexOfImage(b.images["2"], "guess.jpg")].ContentType)

	cached, err := ws.Images(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, cached, 6)
}

func TestWorkspace_UploadImages_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		folder  string
		files   []models.UploadFile
		wantErr error
	}{
		{"missing folder", "nope", []models.UploadFile{upload("a.png", "image/png", "x")}, domain.ErrNotFound},
		{"upload disabled", "4", []models.UploadFile{upload("a.png", "image/png", "x")}, domain.ErrForbidden},
		{"no files", "2", nil, domain.ErrValidation},
		{"not an image", "2", []models.UploadFile{upload("a.png", "image/png", "x"), upload("notes.txt", "text/plain", "x")}, domain.ErrValidation},
		{"too large", "2", []models.UploadFile{{Name: "big.png", ContentType: "image/png", Size: config.MaxImageSize + 1, Content: strings.NewReader("")}}, domain.ErrValidation},
		{"no content", "2", []models.UploadFile{{Name: "a.png", ContentType: "image/png", Size: 1}}, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := photosBackend()
			ws := loadedWorkspace(t, b)

			_, err := ws.UploadImages(context.Background(), tt.folder, tt.files)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, b.uploads, "nothing is uploaded when validation fails")
		})
	}
}

func TestWorkspace_UploadImages_TooManyFiles(t *testing.T) {
	ws := loadedWorkspace(t, photosBackend())

	files := make([]models.UploadFile, config.MaxUploadBatch+1)
	for i := range files {
		files[i] = upload("a.png", "image/png", "x")
	}
	_, err := ws.UploadImages(context.Background(), "2", files)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWorkspace_UploadImages_UnknownSizeOverLimit(t *testing.T) {
	b := photosBackend()
	ws := loadedWorkspace(t, b)

	big := models.UploadFile{
		Name:        "big.png",
		ContentType: "image/png",
		Content:     io.LimitReader(zeroReader{}, config.MaxImageSize+1),
	}
	_, err := ws.UploadImages(context.Background(), "2", []models.UploadFile{big})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, b.uploads)
}

func TestWorkspace_UploadImages_PartialFailure(t *testing.T) {
	b := photosBackend()
	b.uploadHook = func(name string) error {
		if name == "bad.png" {
			return domain.NewUpstreamError("upload image", 500, "disk full")
		}
		return nil
	}
	ws := loadedWorkspace(t, b)
	ws.concurrency = 1

	images, err := ws.UploadImages(context.Background(), "2", []models.UploadFile{
		upload("good.png", "image/png", "x"),
		upload("bad.png", "image/png", "x"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "bad.png")
	require.Len(t, images, 1)
	assert.Equal(t, "good.png", images[0].Name)
}

func TestWorkspace_DeleteImage(t *testing.T) {
	b := photosBackend()
	b.images["2"] = []models.Image{{ID: "50", FolderID: "2"}, {ID: "51", FolderID: "2"}}
	ws := loadedWorkspace(t, b)
	ctx := context.Background()

	_, err := ws.Images(ctx, "2")
	require.NoError(t, err)

	require.NoError(t, ws.DeleteImage(ctx, "50"))
	cached, err := ws.Images(ctx, "2")
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "51", cached[0].ID)

	err = ws.DeleteImage(ctx, "50")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, ws.DeleteImage(ctx, ""), domain.ErrValidation)
}

func TestWorkspace_Share(t *testing.T) {
	b := photosBackend()
	b.perms["2"] = []models.Permission{{Email: "Ana@x.io", Grants: []models.Grant{models.GrantRead}}}
	ws := loadedWorkspace(t, b)
	ctx := context.Background()

	perms, err := ws.Share(ctx, "2", " ana@x.io ", []models.Grant{models.GrantDelete, models.GrantRead, models.GrantRead})
	require.NoError(t, err)
	require.Len(t, perms, 1, "existing email is merged, not duplicated")
	assert.Equal(t, []models.Grant{models.GrantRead, models.GrantDelete}, perms[0].Grants)

	perms, err = ws.Share(ctx, "2", "bo@x.io", []models.Grant{models.GrantWrite})
	require.NoError(t, err)
	require.Len(t, perms, 2)
	assert.Equal(t, perms, b.perms["2"])

	got, err := ws.Permissions(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestWorkspace_Share_Validation(t *testing.T) {
	tests := []struct {
		name    string
		folder  string
		email   string
		grants  []models.Grant
		wantErr error
	}{
		{"bad email", "2", "not-an-email", []models.Grant{models.GrantRead}, domain.ErrValidation},
		{"no grants", "2", "a@x.io", nil, domain.ErrValidation},
		{"unknown grant", "2", "a@x.io", []models.Grant{"admin"}, domain.ErrValidation},
		{"self", "2", "ME@example.com", []models.Grant{models.GrantRead}, domain.ErrValidation},
		{"missing folder", "nope", "a@x.io", []models.Grant{models.GrantRead}, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := photosBackend()
			ws := loadedWorkspace(t, b)

			_, err := ws.Share(context.Background(), tt.folder, tt.email, tt.grants)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, b.perms)
		})
	}
}

func TestWorkspace_Unshare(t *testing.T) {
	b := photosBackend()
	b.perms["2"] = []models.Permission{
		{Email: "a@x.io", Grants: []models.Grant{models.GrantRead}},
		{Email: "b@x.io", Grants: []models.Grant{models.GrantWrite}},
	}
	ws := loadedWorkspace(t, b)
	ctx := context.Background()

	perms, err := ws.Unshare(ctx, "2", "A@x.io")
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, "b@x.io", perms[0].Email)
	assert.Len(t, b.perms["2"], 1)

	_, err = ws.Unshare(ctx, "2", "a@x.io")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkspace_ImportPicked(t *testing.T) {
	b := photosBackend()
	ws := loadedWorkspace(t, b)

	result, err := ws.ImportPicked(context.Background(), "2", "gtok", []models.PickedFile{
		{ID: "d1", Name: "one.jpg", MimeType: "image/jpeg", Size: 6},
		{ID: "doc", Name: "notes.txt", MimeType: "text/plain"},
		{ID: "gone", Name: "lost.jpg", MimeType: "image/jpeg"},
		{ID: "d2", Name: "two.jpg", MimeType: "image/jpeg"},
	})
	require.NoError(t, err)

	require.Len(t, result.Imported, 2)
	assert.Equal(t, "one.jpg", result.Imported[0].Name)
	assert.Equal(t, "two.jpg", result.Imported[1].Name)
	assert.Equal(t, []string{"notes.txt"}, result.Skipped)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "gone", result.Failed[0].FileID)
	assert.Contains(t, result.Failed[0].Error, "File not found")
	assert.Equal(t, int64(6), b.images["2"][0].Size)
}

func TestWorkspace_ImportPicked_UnderstatedSize(t *testing.T) {
	b := photosBackend()
	ws := loadedWorkspace(t, b)
	ws.drive = &fakeDrive{files: map[string]string{
		"big": strings.Repeat("x", config.MaxImageSize+1024),
	}}

	result, err := ws.ImportPicked(context.Background(), "2", "gtok", []models.PickedFile{
		{ID: "big", Name: "big.jpg", MimeType: "image/jpeg", Size: 1},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Imported)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "big", result.Failed[0].FileID)
	assert.Contains(t, result.Failed[0].Error, "larger than")
	assert.Empty(t, b.images["2"])
}

func TestWorkspace_UploadImages_UnderstatedSize(t *testing.T) {
	b := photosBackend()
	ws := loadedWorkspace(t, b)

	_, err := ws.UploadImages(context.Background(), "2", []models.UploadFile{{
		Name:        "big.png",
		ContentType: "image/png",
		Size:        10,
		Content:     strings.NewReader(strings.Repeat("x", config.MaxImageSize+1)),
	}})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, b.images["2"])
}

func TestWorkspace_ImportPicked_Rejections(t *testing.T) {
	picked := []models.PickedFile{{ID: "d1", Name: "one.jpg", MimeType: "image/jpeg"}}

	tests := []struct {
		name    string
		folder  string
		token   string
		files   []models.PickedFile
		wantErr error
	}{
		{"sync disabled", "4", "gtok", picked, domain.ErrForbidden},
		{"missing folder", "nope", "gtok", picked, domain.ErrNotFound},
		{"no token", "2", "", picked, domain.ErrUnauthorized},
		{"nothing picked", "2", "gtok", nil, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := photosBackend()
			ws := loadedWorkspace(t, b)

			_, err := ws.ImportPicked(context.Background(), tt.folder, tt.token, tt.files)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, b.uploads)
		})
	}
}

func TestWorkspace_PickerImages(t *testing.T) {
	ws := loadedWorkspace(t, photosBackend())

	files, err := ws.PickerImages(context.Background(), "gtok", 10)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = ws.PickerImages(context.Background(), "", 10)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestContentTypeOf(t *testing.T) {
	tests := []struct {
		name, declared, want string
	}{
		{"a.png", "image/png", "image/png"},
		{"a.png", "image/png; charset=binary", "image/png"},
		{"a.JPG", "", "image/jpeg"},
		{"a.gif", "application/octet-stream", "image/gif"},
		{"blob", "", "application/octet-stream"},
		{"blob", "text/plain", "text/plain"},
	}
	for _, tt := range tests {
		if got := contentTypeOf(tt.name, tt.declared); got != tt.want {
			t.Errorf("contentTypeOf(%q, %q) = %q, want %q", tt.name, tt.declared, got, tt.want)
		}
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func indexOfImage(images []models.Image, name string) int {
	for i, img := range images {
		if img.Name == name {
			return i
		}
	}
	return -1
}
