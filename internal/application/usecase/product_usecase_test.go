package usecase_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sheets/internal/application/dto"
	"github.com/jhoicas/inventario-sheets/internal/application/qr"
	"github.com/jhoicas/inventario-sheets/internal/application/usecase"
	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/drive"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/gsheets"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/pdf"
	qrimg "github.com/jhoicas/inventario-sheets/internal/infrastructure/qr"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/xlsx"
	"github.com/jhoicas/inventario-sheets/internal/testutil/fakegoogle"
)

const sheetID = "inv-e2e"

var header = []string{"ID", "Codigo", "Referencia", "Descripcion", "Unidad-medida", "cantidad", "Ubicación"}

func newUseCase(t *testing.T, rows [][]string) (*usecase.ProductUseCase, *fakegoogle.Server) {
	t.Helper()
	srv := fakegoogle.New(t)
	srv.SetTab(sheetID, "0", "Inventario", append([][]string{header}, rows...))

	reader := gsheets.NewReader(srv.Client(), srv.URL, 5*time.Second, nil, nil)
	values, err := gsheets.NewValuesClient(context.Background(), srv.Client(), srv.URL, nil)
	require.NoError(t, err)
	writer := gsheets.NewWriter(values, nil)
	repo := gsheets.NewProductRepository(gsheets.Locator{SpreadsheetID: sheetID, GID: "0"}, reader, writer)

	store, err := drive.New(context.Background(), drive.Config{BaseURL: srv.URL, ParentFolderID: "padre", FolderName: "QR"}, srv.Client(), nil, nil)
	require.NoError(t, err)
	qrSvc := qr.NewService(qrimg.NewRenderer(), store, "https://inv.example.com", nil)

	uc := usecase.NewProductUseCase(repo, qrSvc, pdf.NewMarotoPDFGenerator("Inventario"), xlsx.NewExporter(), "RMEC", nil)
	return uc, srv
}

var seedRows = [][]string{
	{"3", "RMEC-1", "REF-1", "Tornillo", "und", "5", "A-1"},
	{"", "", "", "nota de bodega", "", "", ""},
	{"7", "RMEC-10", "REF-2", "Tuerca", "kg", "2", "A-2"},
	{"foo", "RMEC-2X", "", "Arandela", "und", "1", "B-1"},
}

// Alta con {Codigo: RMEC-5, Descripcion: Bolt, cantidad: 0}: recibe el siguiente
// ID entero, la fila queda en el orden del encabezado y el detalle la devuelve igual.
func TestCreate_AsignaIDYSeLeeIgual(t *testing.T) {
	uc, srv := newUseCase(t, seedRows)
	ctx := context.Background()

	res, err := uc.Create(ctx, dto.CreateProductRequest{"Codigo": "RMEC-5", "Descripcion": "Bolt", "cantidad": "0"}, "ana")
	require.NoError(t, err)
	assert.Equal(t, "8", res.ID)
	assert.Equal(t, domain.OutcomeOK, res.Outcome)
	assert.Equal(t, "RMEC-5.png", res.QRFile)

	rows := srv.Rows(sheetID, "0")
	last := rows[len(rows)-1]
	assert.Equal(t, []string{"8", "RMEC-5", "", "Bolt", "", "0", ""}, last)

	got, err := uc.Get(ctx, "8")
	require.NoError(t, err)
	assert.Equal(t, "8", got.ID)
	assert.Equal(t, res.Product.Map(), got.Product.Map())
	assert.Equal(t, header, got.Product.Columns())
}

func TestCreate_SinCodigoAsignaConsecutivo(t *testing.T) {
	uc, srv := newUseCase(t, seedRows)

	res, err := uc.Create(context.Background(), dto.CreateProductRequest{"descripcion": "Perno", "ID": "999"}, "ana")
	require.NoError(t, err)
	assert.Equal(t, "8", res.ID, "el ID enviado se ignora")

	rows := srv.Rows(sheetID, "0")
	last := rows[len(rows)-1]
	assert.Equal(t, "RMEC-11", last[1])
	assert.Equal(t, "Perno", last[3])
}

func TestCreate_CantidadInvalidaNoEscribe(t *testing.T) {
	uc, srv := newUseCase(t, seedRows)
	before := len(srv.Rows(sheetID, "0"))

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{"Descripcion": "X", "cantidad": "-1"}, "ana")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(context.Background(), dto.CreateProductRequest{}, "ana")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Len(t, srv.Rows(sheetID, "0"), before)
}

// Si la subida del QR falla, el producto queda creado y el resultado es parcial.
func TestCreate_QRFallidoEsParcial(t *testing.T) {
	uc, srv := newUseCase(t, seedRows)
	srv.FailNext("files.list", http.StatusInternalServerError, `{"error":{"code":500,"message":"boom"}}`)

	res, err := uc.Create(context.Background(), dto.CreateProductRequest{"Codigo": "RMEC-6", "Descripcion": "Clavo"}, "ana")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePartial, res.Outcome)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "qr", res.Warnings[0].Step)
	assert.NotContains(t, res.Warnings[0].Message, "boom")

	_, err = uc.Get(context.Background(), res.ID)
	assert.NoError(t, err)
}

func TestFormDefaults(t *testing.T) {
	uc, _ := newUseCase(t, seedRows)

	got, err := uc.FormDefaults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, got.NextID)
	assert.Equal(t, "RMEC-11", got.NextCode)
	assert.Equal(t, []string{"und", "kg"}, got.Units)
}

func TestListYGet(t *testing.T) {
	uc, _ := newUseCase(t, seedRows)
	ctx := context.Background()

	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total, "la fila sin identificador se descarta")

	got, err := uc.Get(ctx, "REF-2")
	require.NoError(t, err)
	assert.Equal(t, "7", got.ID)

	_, err = uc.Get(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_HojaNoDisponible(t *testing.T) {
	uc, srv := newUseCase(t, seedRows)
	srv.FailNext("export", http.StatusInternalServerError, "boom")

	_, err := uc.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestPublishQRYPublishAll(t *testing.T) {
	uc, srv := newUseCase(t, seedRows)
	ctx := context.Background()

	out, err := uc.PublishQR(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "RMEC-1.png", out.FileName)
	assert.Equal(t, "https://inv.example.com/product/detail/3", out.Link)

	batch, err := uc.PublishAllQR(ctx, qr.BatchOptions{SkipExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Skipped)
	assert.Equal(t, 2, batch.Generated)
	assert.Len(t, srv.Files(), 4, "carpeta más tres imágenes")
}

func TestDerivados_QRLabelXLSXYReporte(t *testing.T) {
	uc, _ := newUseCase(t, seedRows)
	ctx := context.Background()

	png, err := uc.QRImage(ctx, "3")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	label, err := uc.Label(ctx, "3")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(label, []byte("%PDF")))

	report, err := uc.ReportPDF(ctx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(report, []byte("%PDF")))

	book, err := uc.ExportXLSX(ctx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(book, []byte("PK")))

	_, err = uc.Label(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
