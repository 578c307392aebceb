// Package drive sube imágenes QR a una carpeta de Google Drive (API v3).
package drive

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/google"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

const folderMime = "application/vnd.google-apps.folder"

// Config parámetros de la carpeta destino.
type Config struct {
	BaseURL        string // https://www.googleapis.com
	ParentFolderID string // vacío = raíz de "Mi unidad"
	FolderName     string
}

// Store implementa el almacén de QR sobre Drive. El http.Client debe venir autenticado.
type Store struct {
	cfg     Config
	svc     *gdrive.Service
	metrics *metrics.Recorder
	log     *logger.Logger

	mu       sync.Mutex
	folderID string
}

// New crea el almacén.
func New(ctx context.Context, cfg Config, client *http.Client, rec *metrics.Recorder, log *logger.Logger) (*Store, error) {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.FolderName == "" {
		cfg.FolderName = "QR"
	}
	svc, err := gdrive.NewService(ctx,
		option.WithHTTPClient(client),
		option.WithEndpoint(cfg.BaseURL+"/drive/v3/"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: cliente de Drive: %v", domain.ErrServiceMisconfigured, err)
	}
	return &Store{cfg: cfg, svc: svc, metrics: rec, log: logger.OrNop(log).Component("drive")}, nil
}

// Put sube la imagen; si ya existe un archivo con ese nombre en la carpeta se
// reemplaza su contenido. Devuelve el ID del archivo.
func (s *Store) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	folder, err := s.folder(ctx)
	if err != nil {
		return "", err
	}
	existing, err := s.find(ctx, name, folder, "")
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := s.replace(ctx, existing.Id, data, contentType); err != nil {
			return "", err
		}
		s.log.Info().Str("operation", "replace").Str("identifier", name).Str("file_id", existing.Id).Msg("QR reemplazado en Drive")
		return existing.Id, nil
	}
	id, err := s.create(ctx, name, folder, data, contentType)
	if err != nil {
		return "", err
	}
	s.log.Info().Str("operation", "create").Str("identifier", name).Str("file_id", id).Msg("QR subido a Drive")
	return id, nil
}

// Exists indica si ya hay un archivo con ese nombre en la carpeta.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	folder, err := s.folder(ctx)
	if err != nil {
		return false, err
	}
	f, err := s.find(ctx, name, folder, "")
	return f != nil, err
}

// folder obtiene o crea la carpeta destino; el ID se recuerda durante la vida del Store.
func (s *Store) folder(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.folderID != "" {
		return s.folderID, nil
	}
	parent := s.cfg.ParentFolderID
	if parent == "" {
		parent = "root"
	}
	f, err := s.find(ctx, s.cfg.FolderName, parent, folderMime)
	if err != nil {
		return "", err
	}
	if f != nil {
		s.folderID = f.Id
		return f.Id, nil
	}
	created, err := s.call("folder.create", func() (*gdrive.File, error) {
		return s.svc.Files.Create(&gdrive.File{
			Name:     s.cfg.FolderName,
			MimeType: folderMime,
			Parents:  []string{parent},
		}).Fields("id").Context(ctx).Do()
	})
	if err != nil {
		return "", err
	}
	s.log.Info().Str("operation", "folder.create").Str("identifier", s.cfg.FolderName).Msg("carpeta de QR creada")
	s.folderID = created.Id
	return created.Id, nil
}

func (s *Store) find(ctx context.Context, name, parent, mimeType string) (*gdrive.File, error) {
	q := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", escapeQuery(name), escapeQuery(parent))
	if mimeType != "" {
		q += fmt.Sprintf(" and mimeType = '%s'", mimeType)
	}
	start := time.Now()
	list, err := s.svc.Files.List().
		Q(q).
		Fields("files(id,name)").
		Spaces("drive").
		PageSize(10).
		Context(ctx).Do()
	err = google.Translate("drive", "files.list", err)
	s.metrics.Observe("drive", "files.list", start, err)
	if err != nil {
		return nil, err
	}
	if len(list.Files) == 0 {
		return nil, nil
	}
	return list.Files[0], nil
}

func (s *Store) create(ctx context.Context, name, folder string, data []byte, contentType string) (string, error) {
	created, err := s.call("files.create", func() (*gdrive.File, error) {
		return s.svc.Files.Create(&gdrive.File{Name: name, Parents: []string{folder}}).
			Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
			Fields("id").
			Context(ctx).Do()
	})
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

func (s *Store) replace(ctx context.Context, fileID string, data []byte, contentType string) error {
	_, err := s.call("files.update", func() (*gdrive.File, error) {
		return s.svc.Files.Update(fileID, &gdrive.File{}).
			Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
			Fields("id").
			Context(ctx).Do()
	})
	return err
}

// call ejecuta una llamada que devuelve un archivo, con métricas y errores de dominio.
func (s *Store) call(op string, fn func() (*gdrive.File, error)) (*gdrive.File, error) {
	start := time.Now()
	f, err := fn()
	err = google.Translate("drive", op, err)
	s.metrics.Observe("drive", op, start, err)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
