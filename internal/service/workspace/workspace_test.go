package workspace

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"imgtree/internal/domain"
	"imgtree/internal/domain/models"
)

var testSession = models.Session{UserID: "1", Token: "tok", Email: "me@example.com"}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// photosBackend holds Photos(1) > Trip(2) > Day(3) and Family(4).
func photosBackend() *fakeBackend {
	return newFakeBackend(
		models.Folder{ID: "1", Name: "Photos", AllowUpload: true, AllowSync: true},
		models.Folder{ID: "2", Name: "Trip", ParentID: strPtr("1"), AllowUpload: true, AllowSync: true},
		models.Folder{ID: "3", Name: "Day", ParentID: strPtr("2"), AllowUpload: true, AllowSync: true},
		models.Folder{ID: "4", Name: "Family", AllowUpload: false, AllowSync: false},
	)
}

func loadedWorkspace(t *testing.T, b *fakeBackend) *workspace {
	t.Helper()
	ws := newWorkspace(testSession, &Config{
		Backend: b,
		Drive:   &fakeDrive{files: map[string]string{"d1": "jpeg-1", "d2": "jpeg-2"}},
		Logger:  discardLogger(),
	})
	require.NoError(t, ws.Refresh(context.Background()))
	return ws
}

func TestWorkspace_Refresh(t *testing.T) {
	b := photosBackend()
	ws := loadedWorkspace(t, b)

	assert.Len(t, ws.Folders(), 4)
	roots, err := ws.ChildrenOf(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4"}, folderIDs(roots))

	_, err = ws.ChildrenOf(strPtr("missing"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkspace_Refresh_RejectsDanglingParent(t *testing.T) {
	b := newFakeBackend(models.Folder{ID: "2", Name: "orphan", ParentID: strPtr("9")})
	ws := newWorkspace(testSession, &Config{Backend: b, Logger: discardLogger()})

	err := ws.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, ws.Folders())
}

func TestWorkspace_AddFolder(t *testing.T) {
	b := photosBackend()
	ws := loadedWorkspace(t, b)

	f, err := ws.AddFolder(context.Background(), strPtr("1"), "  Beach  ")
	require.NoError(t, err)
	assert.Equal(t, "101", f.ID, "backend id replaces the tentative one")
	assert.Equal(t, "Beach", f.Name)

	children, err := ws.ChildrenOf(strPtr("1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "101"}, folderIDs(children))
	assert.Len(t, ws.Folders(), 5)
}

func TestWorkspace_AddFolder_NoEcho(t *testing.T) {
	b := photosBackend()
	b.noEcho = true
	ws := loadedWorkspace(t, b)

	f, err := ws.AddFolder(context.Background(), nil, "Inbox")
	require.NoError(t, err)
	assert.Equal(t, "101", f.ID)
}

func TestWorkspace_AddFolder_Validation(t *testing.T) {
	b := photosBackend()
	ws := loadedWorkspace(t, b)
	listCalls := b.listCalls

	for _, name := range []string{"", "   ", "a/b"} {
		_, err := ws.AddFolder(context.Background(), nil, name)
		assert.ErrorIs(t, err, domain.ErrValidation, "name %q", name)
	}
	_, err := ws.AddFolder(context.Background(), strPtr("missing"), "x")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Len(t, ws.Folders(), 4)
	assert.Len(t, b.folders, 4, "backend must not be called")
	assert.Equal(t, listCalls, b.listCalls)
}

func TestWorkspace_BackendFailureRollsBack(t *testing.T) {
	upstream := domain.NewUpstreamError("op", 500, "boom")

	tests := []struct {
		name string
		op   string
		run  func(ws *workspace) error
	}{
		{"add", "create", func(ws *workspace) error {
			_, err := ws.AddFolder(context.Background(), nil, "New")
			return err
		}},
		{"delete", "delete", func(ws *workspace) error {
			_, err := ws.DeleteFolder(context.Background(), "1")
			return err
		}},
		{"update", "update", func(ws *workspace) error {
			_, err := ws.UpdateFolder(context.Background(), "2", models.FolderPatch{Name: strPtr("Renamed")})
			return err
		}},
		{"move", "move", func(ws *workspace) error {
			_, err := ws.MoveFolder(context.Background(), "3", nil)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := photosBackend()
			ws := loadedWorkspace(t, b)
			require.NoError(t, ws.SelectFolder(strPtr("2")))
			before := ws.Folders()

			b.failOn(tt.op, upstream)
			err := tt.run(ws)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUpstream)
			assert.Equal(t, before, ws.Folders())
			assert.Equal(t, "2", *ws.Selected())
		})
	}
}

func TestWorkspace_RefreshFailureKeepsLocalChange(t *testing.T) {
	b := photosBackend()
	ws := loadedWorkspace(t, b)

	b.failOn("list", domain.NewUpstreamError("list folders", 0, "connection refused"))
	removed, err := ws.DeleteFolder(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, removed)
	assert.Equal(t, []string{"1", "4"}, folderIDs(ws.Folders()))
}

func TestWorkspace_DeleteFolder(t *testing.T) {
	b := photosBackend()
	ws := loadedWorkspace(t, b)
	ctx := context.Background()

	_, err := ws.Images(ctx, "3")
	require.NoError(t, err)
	_, err = ws.Images(ctx, "4")
	require.NoError(t, err)
	require.NoError(t, ws.SelectFolder(strPtr("3")))

	removed, err := ws.DeleteFolder(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "1"}, removed)
	assert.Equal(t, []string{"4"}, folderIDs(ws.Folders()))
	assert.Nil(t, ws.Selected())

	ws.imagesMu.RLock()
	_, cached3 := ws.images["3"]
	_, cached4 := ws.images["4"]
	ws.imagesMu.RUnlock()
	assert.False(t, cached3, "images of removed folders are dropped")
	assert.True(t, cached4)

	_, err = ws.DeleteFolder(ctx, "1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkspace_UpdateFolder(t *testing.T) {
	b := photosBackend()
	ws := loadedWorkspace(t, b)

	f, err := ws.UpdateFolder(context.Background(), "2", models.FolderPatch{AllowUpload: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, f.AllowUpload)
	assert.True(t, f.AllowSync)
	assert.Equal(t, "Trip", f.Name)

	f, err = ws.UpdateFolder(context.Background(), "2", models.FolderPatch{Name: strPtr("  Road Trip ")})
	require.NoError(t, err)
	assert.Equal(t, "Road Trip", f.Name)
	assert.Equal(t, "Road Trip", b.folders[1].Name, "backend receives the trimmed name")

	_, err = ws.UpdateFolder(context.Background(), "2", models.FolderPatch{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWorkspace_MoveFolder(t *testing.T) {
	b := photosBackend()
	ws := loadedWorkspace(t, b)

	f, err := ws.MoveFolder(context.Background(), "3", strPtr("4"))
	require.NoError(t, err)
	assert.Equal(t, "4", *f.ParentID)

	_, err = ws.MoveFolder(context.Background(), "1", strPtr("2"))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Nil(t, b.folders[0].ParentID, "backend untouched by rejected move")
}

func TestWorkspace_EditFolder(t *testing.T) {
	b := photosBackend()
	ws := loadedWorkspace(t, b)

	f, err := ws.EditFolder(context.Background(), "2", models.FolderPatch{Name: strPtr(" Renamed ")}, &models.FolderMove{})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", f.Name)
	assert.Nil(t, f.ParentID)
	assert.Equal(t, "Renamed", b.folders[1].Name)
	assert.Nil(t, b.folders[1].ParentID)
}

func TestWorkspace_EditFolder_AllOrNothing(t *testing.T) {
	upstream := domain.NewUpstreamError("move folder", 500, "boom")

	tests := []struct {
		name     string
		id       string
		parentID *string
		failMove bool
		wantErr  error
	}{
		{"missing parent", "2", strPtr("999"), false, domain.ErrValidation},
		{"into own subtree", "1", strPtr("3"), false, domain.ErrConflict},
		{"backend rejects move", "2", strPtr("4"), true, domain.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := photosBackend()
			ws := loadedWorkspace(t, b)
			if tt.failMove {
				b.failOn("move", upstream)
			}
			before := ws.Folders()
			backendBefore := append([]models.Folder(nil), b.folders...)

			_, err := ws.EditFolder(context.Background(), tt.id,
				models.FolderPatch{Name: strPtr("Renamed"), AllowSync: boolPtr(false)},
				&models.FolderMove{ParentID: tt.parentID})
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, before, ws.Folders(), "local tree unchanged")
			assert.Equal(t, backendBefore, b.folders, "backend unchanged")
		})
	}
}

func TestWorkspace_Contents(t *testing.T) {
	b := photosBackend()
	b.images["1"] = []models.Image{{ID: "50", Name: "a.jpg", FolderID: "1"}}
	ws := loadedWorkspace(t, b)
	ctx := context.Background()

	root, err := ws.Contents(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, root.Folder)
	assert.Equal(t, []string{"1", "4"}, folderIDs(root.Folders))
	assert.NotNil(t, root.Images)
	assert.Empty(t, root.Images)

	photos, err := ws.Contents(ctx, strPtr("1"))
	require.NoError(t, err)
	assert.Equal(t, "Photos", photos.Folder.Name)
	assert.Equal(t, []string{"2"}, folderIDs(photos.Folders))
	require.Len(t, photos.Images, 1)
	assert.Equal(t, "50", photos.Images[0].ID)

	_, err = ws.Contents(ctx, strPtr("nope"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkspace_SelectFolder(t *testing.T) {
	ws := loadedWorkspace(t, photosBackend())

	assert.ErrorIs(t, ws.SelectFolder(strPtr("nope")), domain.ErrNotFound)
	require.NoError(t, ws.SelectFolder(strPtr("4")))
	assert.Equal(t, "4", *ws.Selected())
	require.NoError(t, ws.SelectFolder(nil))
	assert.Nil(t, ws.Selected())
}

func TestWorkspace_Export(t *testing.T) {
	ws := loadedWorkspace(t, photosBackend())

	data, err := ws.Export("json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "["))
	assert.Contains(t, string(data), `"name": "Day"`)

	data, err = ws.Export("yaml")
	require.NoError(t, err)
	var nodes []*models.FolderTreeNode
	require.NoError(t, yaml.Unmarshal(data, &nodes))
	require.Len(t, nodes, 2)
	assert.Equal(t, "Trip", nodes[0].Folders[0].Name)

	_, err = ws.Export("xml")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWorkspace_Render(t *testing.T) {
	ws := loadedWorkspace(t, photosBackend())
	want := "Photos/\n" +
		"└── Trip/\n" +
		"    └── Day/\n" +
		"Family/ [no-upload,no-sync]"
	assert.Equal(t, want, ws.Render())
}

func TestRegistry(t *testing.T) {
	b := photosBackend()
	reg := NewRegistry(&Config{Backend: b, Logger: discardLogger()}, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }
	ctx := context.Background()

	ws1, err := reg.Workspace(ctx, testSession)
	require.NoError(t, err)
	assert.Len(t, ws1.Folders(), 4)
	assert.Equal(t, 1, b.listCalls)

	again, err := reg.Workspace(ctx, testSession)
	require.NoError(t, err)
	assert.Same(t, ws1, again)
	assert.Equal(t, 1, b.listCalls, "same token reuses the loaded workspace")

	renewed := testSession
	renewed.Token = "tok-2"
	ws2, err := reg.Workspace(ctx, renewed)
	require.NoError(t, err)
	assert.NotSame(t, ws1, ws2)
	assert.Equal(t, 2, b.listCalls, "a new token loads from the backend")
	assert.Equal(t, "tok-2", ws2.(*workspace).currentSession().Token)
	assert.Equal(t, 1, reg.Len())

	_, err = reg.Workspace(ctx, models.Session{UserID: "1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, reg.Evict())
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_OtherTokenNeedsBackend(t *testing.T) {
	b := photosBackend()
	b.images["1"] = []models.Image{{ID: "50", Name: "private.jpg", FolderID: "1"}}
	reg := NewRegistry(&Config{Backend: b, Logger: discardLogger()}, 0)
	ctx := context.Background()

	owner, err := reg.Workspace(ctx, testSession)
	require.NoError(t, err)
	_, err = owner.Images(ctx, "1")
	require.NoError(t, err)

	// the backend refuses a token it did not issue
	b.failOn("list", domain.NewUpstreamError("list folders", 401, "invalid token"))
	forged := testSession
	forged.Token = "forged"
	ws, err := reg.Workspace(ctx, forged)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Nil(t, ws)

	b.failOn("list", nil)
	still, err := reg.Workspace(ctx, testSession)
	require.NoError(t, err)
	assert.Same(t, owner, still)
	assert.Equal(t, "tok", still.(*workspace).currentSession().Token)
}

func TestRegistry_LoadFailureNotCached(t *testing.T) {
	b := photosBackend()
	b.failOn("list", domain.NewUpstreamError("list folders", 401, "expired"))
	reg := NewRegistry(&Config{Backend: b, Logger: discardLogger()}, 0)

	_, err := reg.Workspace(context.Background(), testSession)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 0, reg.Evict())

	b.failOn("list", nil)
	_, err = reg.Workspace(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	reg.Drop(testSession.UserID)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_Run_StopsOnCancel(t *testing.T) {
	reg := NewRegistry(&Config{Backend: photosBackend(), Logger: discardLogger()}, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func folderIDs(folders []models.Folder) []string {
	out := make([]string, len(folders))
	for i, f := range folders {
		out[i] = f.ID
	}
	return out
}
