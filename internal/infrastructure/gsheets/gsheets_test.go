package gsheets_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/gsheets"
	"github.com/jhoicas/inventario-sheets/internal/testutil/fakegoogle"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const sheetID = "inv123"

var inventoryRows = [][]string{
	{"ID", "Codigo", "Descripcion", "cantidad", "Ubicación"},
	{"1", "RMEC-1", "Tornillo", "5", "A-1"},
	{"", "", "", "", ""},
	{"2", "RMEC-2", "Tuerca", "3", "A-2"},
}

type fixture struct {
	srv    *fakegoogle.Server
	reader *gsheets.Reader
	writer *gsheets.Writer
	loc    gsheets.Locator
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	srv := fakegoogle.New(t)
	srv.SetTab(sheetID, "0", "Inventario", inventoryRows)
	values, err := gsheets.NewValuesClient(context.Background(), srv.Client(), srv.URL, nil)
	require.NoError(t, err)
	return fixture{
		srv:    srv,
		reader: gsheets.NewReader(srv.Client(), srv.URL, 5*time.Second, nil, nil),
		writer: gsheets.NewWriter(values, nil),
		loc:    gsheets.Locator{SpreadsheetID: sheetID, GID: "0"},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Locator
// ──────────────────────────────────────────────────────────────────────────────

func TestParseLocator_URLYIDDesnudo(t *testing.T) {
	loc, err := gsheets.ParseLocator("https://docs.google.com/spreadsheets/d/1AbC_d-9/edit#gid=42")
	require.NoError(t, err)
	assert.Equal(t, gsheets.Locator{SpreadsheetID: "1AbC_d-9", GID: "42"}, loc)

	loc, err = gsheets.ParseLocator("https://docs.google.com/spreadsheets/d/XYZ/export?format=csv&gid=7")
	require.NoError(t, err)
	assert.Equal(t, "7", loc.GID)

	loc, err = gsheets.ParseLocator("1AbC_d-9")
	require.NoError(t, err)
	assert.Equal(t, "0", loc.GID)

	_, err = gsheets.ParseLocator("https://example.com/no-es-hoja")
	assert.ErrorIs(t, err, domain.ErrServiceMisconfigured)
}

func TestLocator_ExportURL(t *testing.T) {
	loc := gsheets.Locator{SpreadsheetID: "abc", GID: "9"}
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/export?format=csv&gid=9",
		loc.ExportURL("https://docs.google.com/"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reader
// ──────────────────────────────────────────────────────────────────────────────

// La fila separadora en blanco no aparece entre los registros.
func TestReader_RecordsDescartaFilasVacias(t *testing.T) {
	f := newFixture(t)
	recs, err := f.reader.Records(context.Background(), f.loc)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Tuerca", recs[1].Lookup(entity.FieldDescription...))
}

func TestReader_FallaRemotaEsDatosNoDisponibles(t *testing.T) {
	f := newFixture(t)
	f.srv.FailNext("export", http.StatusInternalServerError, `{"error":{"code":500,"message":"backend"}}`)

	recs, err := f.reader.Records(context.Background(), f.loc)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Nil(t, recs, "falla no es lo mismo que inventario vacío")
}

func TestReader_HojaPrivadaDevuelveHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>login</html>"))
	}))
	defer srv.Close()

	reader := gsheets.NewReader(srv.Client(), srv.URL, time.Second, nil, nil)
	_, err := reader.ReadTable(context.Background(), gsheets.Locator{SpreadsheetID: sheetID})
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestParseCSV_EncabezadosYFilasCortas(t *testing.T) {
	tbl, err := gsheets.ParseCSV(strings.NewReader("\ufeff ID ,Nota,Nota\n1,a\n,,\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Nota", "Nota.1"}, tbl.Header)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "", tbl.Records()[0].Value("Nota.1"))

	tbl, err = gsheets.ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tbl.Header)
}

// ──────────────────────────────────────────────────────────────────────────────
// Writer
// ──────────────────────────────────────────────────────────────────────────────

// Actualizar una columna conserva las demás (verificado con una lectura posterior).
func TestWriter_UpdateConservaColumnas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.writer.Update(ctx, f.loc, "2", map[string]string{"CANTIDAD": "9", "Inexistente": "x"})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Row)
	assert.Equal(t, []string{"Inexistente"}, res.Dropped)

	recs, err := f.reader.Records(ctx, f.loc)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "9", recs[1].Value("cantidad"))
	assert.Equal(t, "Tuerca", recs[1].Value("Descripcion"))
	assert.Equal(t, "A-2", recs[1].Value("Ubicación"))
	assert.Equal(t, "5", recs[0].Value("cantidad"), "otras filas intactas")
}

func TestWriter_UpdateNoEncontrado(t *testing.T) {
	f := newFixture(t)
	_, err := f.writer.Update(context.Background(), f.loc, "99", map[string]string{"cantidad": "1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.srv.CountCalls(http.MethodPut, "/values/"))
}

func TestWriter_UpdateSinColumnaID(t *testing.T) {
	f := newFixture(t)
	f.srv.SetTab(sheetID, "0", "Inventario", [][]string{{"Nombre", "cantidad"}, {"Bolt", "1"}})
	_, err := f.writer.Update(context.Background(), f.loc, "Bolt", map[string]string{"cantidad": "2"})
	assert.ErrorIs(t, err, domain.ErrNoIdentifierColumn)
}

// La API deshabilitada se reporta con su propio error.
func TestWriter_APIDeshabilitada(t *testing.T) {
	f := newFixture(t)
	f.srv.FailNext("values.get", http.StatusForbidden, fakegoogle.ServiceDisabledBody)

	_, err := f.writer.Update(context.Background(), f.loc, "1", map[string]string{"cantidad": "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServiceNotEnabled)
	assert.True(t, domain.IsMisconfiguration(err))
}

func TestWriter_CredencialRechazada(t *testing.T) {
	f := newFixture(t)
	f.srv.FailNext("values.update", http.StatusUnauthorized, `{"error":{"code":401,"message":"Request had invalid authentication credentials."}}`)

	_, err := f.writer.Update(context.Background(), f.loc, "1", map[string]string{"cantidad": "1"})
	assert.ErrorIs(t, err, domain.ErrServiceMisconfigured)
}

func TestWriter_AppendOrdenDelEncabezado(t *testing.T) {
	f := newFixture(t)
	rec, err := f.writer.Append(context.Background(), f.loc, map[string]string{
		"descripcion": "Arandela", "id": "3", "Cantidad": "0",
	})
	require.NoError(t, err)
	assert.Equal(t, "3", rec.Value("ID"))

	rows := f.srv.Rows(sheetID, "0")
	assert.Equal(t, []string{"3", "", "Arandela", "0", ""}, rows[len(rows)-1])
}

// Pestañas distintas de la primera se califican con su título.
func TestWriter_PestanaNoPrincipal(t *testing.T) {
	f := newFixture(t)
	f.srv.SetTab(sheetID, "77", "Bodega 'B'", [][]string{{"id", "cantidad"}, {"x1", "4"}})
	loc := gsheets.Locator{SpreadsheetID: sheetID, GID: "77"}

	_, err := f.writer.Update(context.Background(), loc, "x1", map[string]string{"cantidad": "3"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "cantidad"}, {"x1", "3"}}, f.srv.Rows(sheetID, "77"))
	assert.Equal(t, inventoryRows, f.srv.Rows(sheetID, "0"))
}

// gid 0 también se califica con el título: un rango desnudo apunta a la primera
// pestaña visible, que no tiene por qué ser gid 0.
func TestWriter_PestanaCeroSeCalificaConTitulo(t *testing.T) {
	f := newFixture(t)
	f.srv.SetTab(sheetID, "55", "Resumen", [][]string{{"id", "cantidad"}, {"1", "100"}})

	_, err := f.writer.Update(context.Background(), f.loc, "1", map[string]string{"cantidad": "8"})
	require.NoError(t, err)

	assert.Equal(t, 1, f.srv.CountCalls(http.MethodGet, "/v4/spreadsheets/"+sheetID+"/values/'Inventario'!"))
	assert.Equal(t, 1, f.srv.CountCalls(http.MethodPut, "/values/'Inventario'!2:2"))
	assert.Equal(t, 0, f.srv.CountCalls(http.MethodPut, "/values/2:2"))
	assert.Equal(t, "8", f.srv.Rows(sheetID, "0")[1][3])
	assert.Equal(t, [][]string{{"id", "cantidad"}, {"1", "100"}}, f.srv.Rows(sheetID, "55"))
}

func TestWriter_AppendRowPosicional(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.writer.AppendRow(context.Background(), f.loc, []string{"9", "RMEC-9", "Clavo"}))

	rows := f.srv.Rows(sheetID, "0")
	assert.Equal(t, []string{"9", "RMEC-9", "Clavo"}, rows[len(rows)-1])
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios
// ──────────────────────────────────────────────────────────────────────────────

func TestHistoryRepository_AppendYListRecent(t *testing.T) {
	f := newFixture(t)
	f.srv.SetTab("hist", "0", "Historico", [][]string{entity.HistoryColumns})
	repo := gsheets.NewHistoryRepository(gsheets.Locator{SpreadsheetID: "hist"}, f.reader, f.writer, time.UTC)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, actor := range []string{"ana", "luis", "eva"} {
		e := entity.HistoryEntry{Code: "RMEC-1", Method: entity.MethodIngreso, Actor: actor, Timestamp: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, repo.Append(ctx, e))
	}

	got, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "eva", got[0].Actor)
	assert.Equal(t, "luis", got[1].Actor)
	assert.Equal(t, "2024-05-01 10:00:00", got[0].Timestamp.Format(entity.HistoryTimeLayout))
}

// Pestaña vacía: el primer movimiento escribe el encabezado y luego la fila.
func TestHistoryRepository_PestanaVaciaEscribeEncabezado(t *testing.T) {
	f := newFixture(t)
	f.srv.SetTab("hist", "0", "Historico", nil)
	repo := gsheets.NewHistoryRepository(gsheets.Locator{SpreadsheetID: "hist"}, f.reader, f.writer, time.UTC)
	ctx := context.Background()

	at := time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC)
	e := entity.HistoryEntry{Code: "RMEC-1", Method: entity.MethodSalida, Actor: "ana", Timestamp: at}
	require.NoError(t, repo.Append(ctx, e))
	require.NoError(t, repo.Append(ctx, e))

	rows := f.srv.Rows("hist", "0")
	require.Len(t, rows, 3)
	assert.Equal(t, entity.HistoryColumns, rows[0])
	assert.Equal(t, e.Row(time.UTC), rows[1])
}

// Encabezados con otra grafía no hacen perder columnas: la fila es posicional.
func TestHistoryRepository_EncabezadosVariantesConservanDatos(t *testing.T) {
	f := newFixture(t)
	f.srv.SetTab("hist", "0", "Historico", [][]string{{
		"Codigo", "Referencia", "Descripcion", "Unidad medida", "Cantidad", "Ubicacion",
		"Stock min", "Estado", "Metodo", "Fecha Movimiento", "Usuario", "Unidades utilizadas",
	}})
	repo := gsheets.NewHistoryRepository(gsheets.Locator{SpreadsheetID: "hist"}, f.reader, f.writer, time.UTC)
	ctx := context.Background()

	at := time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC)
	e := entity.HistoryEntry{
		Code: "RMEC-1", Reference: "REF-1", Description: "Tornillo", Unit: "und",
		Quantity: decimal.NewFromInt(3), Location: "A-1", MinStock: "1", Status: "OK",
		Method: entity.MethodSalida, Actor: "ana", UnitsMoved: decimal.NewFromInt(2), Timestamp: at,
	}
	require.NoError(t, repo.Append(ctx, e))

	rows := f.srv.Rows("hist", "0")
	require.Len(t, rows, 2)
	row := rows[1]
	require.Len(t, row, len(entity.HistoryColumns))
	assert.Equal(t, "A-1", row[5])
	assert.Equal(t, "2024-06-02 09:30:00", row[9])
	assert.Equal(t, "2", row[11])

	got, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A-1", got[0].Location)
	assert.True(t, got[0].Timestamp.Equal(at))
	assert.True(t, got[0].UnitsMoved.Equal(decimal.NewFromInt(2)))
}

func TestUserRepository_FindByUsername(t *testing.T) {
	f := newFixture(t)
	f.srv.SetTab("users", "0", "Usuarios", [][]string{{"User", "pass"}, {" Ana ", "clave "}, {"luis", "x"}})
	repo := gsheets.NewUserRepository(gsheets.Locator{SpreadsheetID: "users"}, f.reader, "User", "pass")

	u, err := repo.FindByUsername(context.Background(), "ANA")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Username)
	assert.Equal(t, "clave ", u.PasswordHash, "la contraseña no se recorta")

	_, err = repo.FindByUsername(context.Background(), "pedro")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepository_FindByID(t *testing.T) {
	f := newFixture(t)
	repo := gsheets.NewProductRepository(f.loc, f.reader, f.writer)
	rec, err := repo.FindByID(context.Background(), "RMEC-2")
	require.Error(t, err, "Codigo no es el identificador cuando hay ID")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rec, err = repo.FindByID(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "RMEC-2", rec.Lookup(entity.FieldCode...))
}
