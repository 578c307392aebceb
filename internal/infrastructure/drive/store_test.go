package drive_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/drive"
	"github.com/jhoicas/inventario-sheets/internal/testutil/fakegoogle"
)

func newStore(t *testing.T, srv *fakegoogle.Server) *drive.Store {
	t.Helper()
	store, err := drive.New(context.Background(), drive.Config{BaseURL: srv.URL, ParentFolderID: "padre", FolderName: "QR"}, srv.Client(), nil, nil)
	require.NoError(t, err)
	return store
}

func TestStore_CreaCarpetaYSubeArchivo(t *testing.T) {
	srv := fakegoogle.New(t)
	store := newStore(t, srv)

	id, err := store.Put(context.Background(), "RMEC-1.png", []byte("png-1"), "image/png")
	require.NoError(t, err)

	files := srv.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "QR", files[0].Name)
	assert.Equal(t, "application/vnd.google-apps.folder", files[0].MimeType)
	assert.Equal(t, []string{"padre"}, files[0].Parents)

	assert.Equal(t, id, files[1].ID)
	assert.Equal(t, "RMEC-1.png", files[1].Name)
	assert.Equal(t, []string{files[0].ID}, files[1].Parents)
	assert.Equal(t, []byte("png-1"), files[1].Data)
}

// Un archivo con el mismo nombre se reemplaza, no se duplica.
func TestStore_ReemplazaExistente(t *testing.T) {
	srv := fakegoogle.New(t)
	folder := srv.AddFile("QR", "application/vnd.google-apps.folder", "padre", nil)
	existing := srv.AddFile("RMEC-1.png", "image/png", folder, []byte("viejo"))
	store := newStore(t, srv)

	id, err := store.Put(context.Background(), "RMEC-1.png", []byte("nuevo"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, existing, id)

	files := srv.Files()
	require.Len(t, files, 2)
	assert.Equal(t, []byte("nuevo"), files[1].Data)
	assert.Equal(t, 1, srv.CountCalls(http.MethodPatch, "/upload/drive/v3/files/"))

	ok, err := store.Exists(context.Background(), "RMEC-1.png")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_APIDeshabilitada(t *testing.T) {
	srv := fakegoogle.New(t)
	srv.FailNext("files.list", http.StatusForbidden,
		`{"error":{"code":403,"message":"Google Drive API has not been used in project 1 before or it is disabled.","details":[{"reason":"SERVICE_DISABLED"}]}}`)
	store := newStore(t, srv)

	_, err := store.Put(context.Background(), "x.png", []byte("x"), "image/png")
	assert.ErrorIs(t, err, domain.ErrServiceNotEnabled)
}
