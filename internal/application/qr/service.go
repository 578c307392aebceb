// Package qr genera y publica los códigos QR que enlazan al detalle de cada producto.
package qr

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jhoicas/inventario-sheets/internal/application/dto"
	"github.com/jhoicas/inventario-sheets/internal/application/ports"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/internal/domain/sheet"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

// ErrStoreDisabled se devuelve al publicar sin almacenamiento configurado (QR_DRIVER=none).
var ErrStoreDisabled = errors.New("almacenamiento de QR deshabilitado")

const maxFileNameLen = 100

// DeepLink enlace al detalle del producto: <base>/product/detail/<id escapado>.
func DeepLink(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/product/detail/" + url.PathEscape(id)
}

// FileName nombre de la imagen: el código saneado; si está vacío, el identificador;
// si también, "unknown".
func FileName(code, id string) string {
	name := sanitize(code)
	if name == "" {
		name = sanitize(id)
	}
	if name == "" {
		name = "unknown"
	}
	return name + ".png"
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, s)
	if r := []rune(s); len(r) > maxFileNameLen {
		s = string(r[:maxFileNameLen])
	}
	return s
}

// Service renderiza y publica imágenes QR. store puede ser nil (sin publicación).
type Service struct {
	renderer ports.ImageRenderer
	store    ports.ObjectStore
	baseURL  string
	log      *logger.Logger
}

// NewService construye el servicio.
func NewService(renderer ports.ImageRenderer, store ports.ObjectStore, baseURL string, log *logger.Logger) *Service {
	return &Service{
		renderer: renderer,
		store:    store,
		baseURL:  baseURL,
		log:      logger.OrNop(log).Component("qr"),
	}
}

// Enabled indica si hay almacenamiento configurado.
func (s *Service) Enabled() bool {
	return s.store != nil
}

// Link enlace profundo para el identificador.
func (s *Service) Link(id string) string {
	return DeepLink(s.baseURL, id)
}

// Image renderiza el PNG del enlace al producto sin publicarlo.
func (s *Service) Image(id string) ([]byte, error) {
	return s.renderer.PNG(s.Link(id))
}

// Publish renderiza y sube la imagen, sobrescribiendo la existente con el mismo nombre.
func (s *Service) Publish(ctx context.Context, id, code string) (*dto.QRResponse, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	link := s.Link(id)
	png, err := s.renderer.PNG(link)
	if err != nil {
		return nil, fmt.Errorf("generar QR de %q: %w", id, err)
	}
	name := FileName(code, id)
	fileID, err := s.store.Put(ctx, name, png, "image/png")
	if err != nil {
		s.log.Error().Str("operation", "qr-upload").Str("identifier", id).Err(err).Msg("no se pudo subir el QR")
		return nil, err
	}
	s.log.Info().Str("operation", "qr-upload").Str("identifier", id).Str("file", name).Msg("QR publicado")
	return &dto.QRResponse{FileName: name, FileID: fileID, Link: link}, nil
}

// BatchOptions opciones de la generación masiva.
type BatchOptions struct {
	SkipExisting bool
	Limit        int // 0 = sin límite
}

// PublishAll genera el QR de cada registro. El identificador del enlace es la
// Referencia cuando existe y el identificador del registro si no.
func (s *Service) PublishAll(ctx context.Context, records []entity.Record, opts BatchOptions) (*dto.QRBatchResponse, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	out := &dto.QRBatchResponse{}
	processed := 0
	for _, r := range records {
		if opts.Limit > 0 && processed >= opts.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		id := r.Lookup(entity.FieldReference...)
		if id == "" {
			id, _ = sheet.Identifier(r)
		}
		code := r.Lookup(entity.FieldCode...)
		processed++

		if opts.SkipExisting {
			exists, err := s.store.Exists(ctx, FileName(code, id))
			if err != nil {
				out.Failed++
				out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", id, err))
				continue
			}
			if exists {
				out.Skipped++
				continue
			}
		}
		if _, err := s.Publish(ctx, id, code); err != nil {
			out.Failed++
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		out.Generated++
	}
	s.log.Info().Str("operation", "qr-batch").
		Int("generated", out.Generated).Int("skipped", out.Skipped).Int("failed", out.Failed).
		Msg("generación masiva de QR terminada")
	return out, nil
}
