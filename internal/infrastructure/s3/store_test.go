package s3_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sheets/internal/infrastructure/s3"
)

// fakeS3 bucket en memoria con estilo de ruta (/bucket/clave).
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		f.types[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newStore(t *testing.T) (*s3.Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := s3.New(context.Background(), s3.Config{
		Bucket:          "qr-bucket",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		PathStyle:       true,
		Folder:          "QR",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	}, nil, nil)
	require.NoError(t, err)
	return store, fake
}

func TestStore_PutSobrescribeYExists(t *testing.T) {
	store, fake := newStore(t)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "RMEC-1.png")
	require.NoError(t, err)
	assert.False(t, ok)

	key, err := store.Put(ctx, "RMEC-1.png", []byte("v1"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "QR/RMEC-1.png", key)

	_, err = store.Put(ctx, "RMEC-1.png", []byte("v2"), "image/png")
	require.NoError(t, err)

	fake.mu.Lock()
	assert.Equal(t, []byte("v2"), fake.objects["qr-bucket/QR/RMEC-1.png"])
	assert.Equal(t, "image/png", fake.types["qr-bucket/QR/RMEC-1.png"])
	fake.mu.Unlock()

	ok, err = store.Exists(ctx, "RMEC-1.png")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNew_SinBucket(t *testing.T) {
	_, err := s3.New(context.Background(), s3.Config{}, nil, nil)
	assert.Error(t, err)
}
