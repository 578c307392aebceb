package gsheets

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/google"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/metrics"
)

// ValuesClient envoltorio de spreadsheets.values (API v4) que traduce errores a
// errores de dominio y registra métricas. El http.Client debe venir autenticado
// (google.Credentials.HTTPClient).
type ValuesClient struct {
	svc     *sheets.Service
	metrics *metrics.Recorder
}

// NewValuesClient crea el cliente contra baseURL (https://sheets.googleapis.com).
func NewValuesClient(ctx context.Context, client *http.Client, baseURL string, rec *metrics.Recorder) (*ValuesClient, error) {
	svc, err := sheets.NewService(ctx,
		option.WithHTTPClient(client),
		option.WithEndpoint(strings.TrimRight(baseURL, "/")+"/"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: cliente de Sheets: %v", domain.ErrServiceMisconfigured, err)
	}
	return &ValuesClient{svc: svc, metrics: rec}, nil
}

// SheetTitle resuelve el título de la pestaña con el gid indicado.
func (c *ValuesClient) SheetTitle(ctx context.Context, spreadsheetID, gid string) (title string, err error) {
	defer c.observe("spreadsheets.get", time.Now(), &err)

	meta, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties(sheetId,title)").
		Context(ctx).Do()
	if err != nil {
		return "", google.Translate("sheets", "spreadsheets.get", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && strconv.FormatInt(s.Properties.SheetId, 10) == gid {
			return s.Properties.Title, nil
		}
	}
	return "", fmt.Errorf("%w: no existe la pestaña gid=%s en %s", domain.ErrDataUnavailable, gid, spreadsheetID)
}

// Get lee el rango como texto formateado.
func (c *ValuesClient) Get(ctx context.Context, spreadsheetID, rng string) (rows [][]string, err error) {
	defer c.observe("values.get", time.Now(), &err)

	vr, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		MajorDimension("ROWS").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, google.Translate("sheets", "values.get", err)
	}
	out := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = cellString(cell)
		}
	}
	return out, nil
}

// Update reemplaza el rango con una sola fila (valueInputOption=RAW).
func (c *ValuesClient) Update(ctx context.Context, spreadsheetID, rng string, row []string) (err error) {
	defer c.observe("values.update", time.Now(), &err)

	body := &sheets.ValueRange{Range: rng, MajorDimension: "ROWS", Values: [][]interface{}{toCells(row)}}
	if _, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, rng, body).
		ValueInputOption("RAW").
		Context(ctx).Do(); err != nil {
		return google.Translate("sheets", "values.update", err)
	}
	return nil
}

// Append agrega una fila al final de la tabla del rango (INSERT_ROWS).
func (c *ValuesClient) Append(ctx context.Context, spreadsheetID, rng string, row []string) (err error) {
	defer c.observe("values.append", time.Now(), &err)

	body := &sheets.ValueRange{MajorDimension: "ROWS", Values: [][]interface{}{toCells(row)}}
	if _, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, rng, body).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do(); err != nil {
		return google.Translate("sheets", "values.append", err)
	}
	return nil
}

func (c *ValuesClient) observe(op string, start time.Time, err *error) {
	c.metrics.Observe("sheets", op, start, *err)
}

func toCells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
