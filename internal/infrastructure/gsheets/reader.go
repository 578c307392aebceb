package gsheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/internal/domain/sheet"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/google"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

// Table contenido crudo de una pestaña: encabezado normalizado y filas no vacías.
type Table struct {
	Header []string
	Rows   [][]string
}

// Records arma un Record por fila (sin filtrar por identificador).
func (t Table) Records() []entity.Record {
	out := make([]entity.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, entity.NewRecord(t.Header, row))
	}
	return out
}

// Reader lee pestañas vía el endpoint de exportación CSV. Cada lectura vuelve a
// descargar la tabla completa; no hay caché.
type Reader struct {
	client     *http.Client
	exportBase string
	metrics    *metrics.Recorder
	log        *logger.Logger
}

// NewReader crea el lector. Si client es nil se usa uno con el timeout indicado.
func NewReader(client *http.Client, exportBase string, timeout time.Duration, rec *metrics.Recorder, log *logger.Logger) *Reader {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Reader{
		client:     client,
		exportBase: exportBase,
		metrics:    rec,
		log:        logger.OrNop(log).Component("gsheets.reader"),
	}
}

// ReadTable descarga y parsea la pestaña. Cualquier falla de red o de formato es
// ErrDataUnavailable: "no se pudo leer", nunca "está vacía".
func (r *Reader) ReadTable(ctx context.Context, loc Locator) (Table, error) {
	start := time.Now()
	t, err := r.readTable(ctx, loc)
	r.metrics.Observe("sheets", "export.csv", start, err)
	if err != nil {
		r.log.Error().Str("operation", "read").Str("identifier", loc.String()).Err(err).Msg("no se pudo leer la hoja")
	}
	return t, err
}

// Records lee la pestaña de inventario y devuelve sólo las filas con identificador.
func (r *Reader) Records(ctx context.Context, loc Locator) ([]entity.Record, error) {
	t, err := r.ReadTable(ctx, loc)
	if err != nil {
		return nil, err
	}
	return sheet.Materialize(t.Header, t.Rows), nil
}

func (r *Reader) readTable(ctx context.Context, loc Locator) (Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.ExportURL(r.exportBase), nil)
	if err != nil {
		return Table{}, fmt.Errorf("%w: export: %v", domain.ErrDataUnavailable, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Table{}, google.TranslateTransport("sheets", "export", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Table{}, google.TranslateStatus("sheets", "export", resp.StatusCode, body)
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return Table{}, fmt.Errorf("%w: export: la hoja %s no está compartida públicamente", domain.ErrDataUnavailable, loc)
	}
	return ParseCSV(resp.Body)
}

// ParseCSV parsea la exportación: recorta encabezados, completa filas cortas y
// descarta filas totalmente vacías.
func ParseCSV(body io.Reader) (Table, error) {
	cr := csv.NewReader(body)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("%w: CSV ilegible: %v", domain.ErrDataUnavailable, err)
	}
	t := Table{Header: sheet.NormalizeHeaders(header)}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: CSV ilegible: %v", domain.ErrDataUnavailable, err)
		}
		if blankRow(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
