package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sheets/internal/application/inventory"
	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/internal/domain/sheet"
)

type fakeProducts struct {
	header  []string
	rows    [][]string
	updates []map[string]string
}

func (f *fakeProducts) records() []entity.Record {
	return sheet.Materialize(f.header, f.rows)
}

func (f *fakeProducts) List(context.Context) ([]entity.Record, error) { return f.records(), nil }

func (f *fakeProducts) FindByID(_ context.Context, id string) (entity.Record, error) {
	return sheet.FindByIdentifier(f.records(), id)
}

func (f *fakeProducts) Update(_ context.Context, id string, changes map[string]string) error {
	col, err := sheet.IdentifierColumn(f.header)
	if err != nil {
		return err
	}
	idx, ok := sheet.FindRow(f.rows, col, id)
	if !ok {
		return domain.ErrNotFound
	}
	f.rows[idx] = sheet.MergeRow(f.header, f.rows[idx], changes)
	f.updates = append(f.updates, changes)
	return nil
}

func (f *fakeProducts) Create(_ context.Context, values map[string]string) (entity.Record, error) {
	row := sheet.BuildRow(f.header, values)
	f.rows = append(f.rows, row)
	return entity.NewRecord(f.header, row), nil
}

type fakeHistory struct {
	entries []entity.HistoryEntry
	err     error
}

func (f *fakeHistory) Append(_ context.Context, e entity.HistoryEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeHistory) ListRecent(_ context.Context, limit int) ([]entity.HistoryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []entity.HistoryEntry{}
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func newProducts() *fakeProducts {
	return &fakeProducts{
		header: []string{"ID", "Codigo", "Referencia", "Descripcion", "Cantidad", "Ubicación", "Stock-min"},
		rows: [][]string{
			{"1", "RMEC-1", "REF-A", "Tornillo", "5", "A-1", "2"},
			{"2", "RMEC-2", "REF-B", "Tuerca", "", "A-2", ""},
		},
	}
}

func TestEdit_SalidaHastaCeroSeAcepta(t *testing.T) {
	products, history := newProducts(), &fakeHistory{}
	uc := inventory.NewStockUseCase(products, history, nil)

	res, err := uc.Edit(context.Background(), inventory.EditInput{ID: "1", Method: "Salida", Units: "5", Actor: "ana"})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeOK, res.Outcome)
	assert.Equal(t, "0", res.Quantity)
	assert.Equal(t, "0", products.rows[0][4])

	require.Len(t, history.entries, 1)
	e := history.entries[0]
	assert.Equal(t, "RMEC-1", e.Code)
	assert.Equal(t, entity.MethodSalida, e.Method)
	assert.Equal(t, "0", e.Quantity.String())
	assert.Equal(t, "5", e.UnitsMoved.String())
	assert.Equal(t, "ana", e.Actor)
	assert.False(t, e.Timestamp.IsZero())
}

func TestEdit_SalidaMayorAlStockSeRechazaSinEscribir(t *testing.T) {
	products, history := newProducts(), &fakeHistory{}
	uc := inventory.NewStockUseCase(products, history, nil)

	_, err := uc.Edit(context.Background(), inventory.EditInput{ID: "1", Method: "Salida", Units: "6"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, products.updates)
	assert.Empty(t, history.entries)
	assert.Equal(t, "5", products.rows[0][4])
}

func TestEdit_CeroUnidadesSoloEditaSinHistorico(t *testing.T) {
	products, history := newProducts(), &fakeHistory{}
	uc := inventory.NewStockUseCase(products, history, nil)

	res, err := uc.Edit(context.Background(), inventory.EditInput{
		ID:     "1",
		Fields: map[string]string{"Ubicación": "B-7"},
		Units:  "0",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeOK, res.Outcome)
	assert.Equal(t, "5", res.Quantity)
	assert.Equal(t, "B-7", products.rows[0][5])
	assert.Equal(t, "5", products.rows[0][4])
	assert.Empty(t, history.entries)
}

func TestEdit_UnidadesInvalidasNoEscriben(t *testing.T) {
	for _, units := range []string{"abc", "-2"} {
		products, history := newProducts(), &fakeHistory{}
		uc := inventory.NewStockUseCase(products, history, nil)

		_, err := uc.Edit(context.Background(), inventory.EditInput{ID: "1", Method: "Ingreso", Units: units})
		assert.ErrorIs(t, err, domain.ErrInvalidUnits, units)
		assert.Empty(t, products.updates)
	}
}

func TestEdit_IngresoSobreCantidadVaciaYPorReferencia(t *testing.T) {
	products, history := newProducts(), &fakeHistory{}
	uc := inventory.NewStockUseCase(products, history, nil)

	res, err := uc.Edit(context.Background(), inventory.EditInput{ID: "REF-B", Method: "ingreso", Units: "2,5"})
	require.NoError(t, err)
	assert.Equal(t, "2", res.ID, "se escribe con la columna ID aunque se buscó por Referencia")
	assert.Equal(t, "2.5", products.rows[1][4])
	require.Len(t, history.entries, 1)
	assert.Equal(t, entity.MethodIngreso, history.entries[0].Method)
}

func TestEdit_HistoricoFallidoEsExitoParcial(t *testing.T) {
	products := newProducts()
	history := &fakeHistory{err: errors.New("hoja de histórico caída")}
	uc := inventory.NewStockUseCase(products, history, nil)

	res, err := uc.Edit(context.Background(), inventory.EditInput{ID: "1", Method: "Ingreso", Units: "1"})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePartial, res.Outcome)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "history", res.Warnings[0].Step)
	assert.NotContains(t, res.Warnings[0].Message, "caída", "el error interno no llega al cliente")
	assert.NotEmpty(t, res.Warnings[0].Message)
	assert.Equal(t, "6", products.rows[0][4], "la actualización primaria se conserva")
}

// El encabezado es "Cantidad" y el formulario manda "cantidad": la cantidad escrita
// es la del movimiento, igual a la que queda en el histórico.
func TestEdit_CantidadDelFormularioNoPisaElMovimiento(t *testing.T) {
	products, history := newProducts(), &fakeHistory{}
	uc := inventory.NewStockUseCase(products, history, nil)

	res, err := uc.Edit(context.Background(), inventory.EditInput{
		ID:     "1",
		Fields: map[string]string{"cantidad": "5", " CANTIDAD ": "9", "Descripcion": "Tornillo 1/4"},
		Method: "Salida",
		Units:  "2",
	})
	require.NoError(t, err)
	assert.Equal(t, "3", products.rows[0][4])
	assert.Equal(t, "Tornillo 1/4", products.rows[0][3])
	assert.Equal(t, "3", res.Quantity)
	require.Len(t, history.entries, 1)
	assert.Equal(t, "3", history.entries[0].Quantity.String())
}

func TestEdit_NoCambiaLaColumnaID(t *testing.T) {
	products, history := newProducts(), &fakeHistory{}
	uc := inventory.NewStockUseCase(products, history, nil)

	_, err := uc.Edit(context.Background(), inventory.EditInput{
		ID:     "1",
		Fields: map[string]string{"id": "99", "Descripcion": "Tornillo largo"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1", products.rows[0][0])
	assert.Equal(t, "Tornillo largo", products.rows[0][3])
}

func TestEdit_ProductoInexistente(t *testing.T) {
	uc := inventory.NewStockUseCase(newProducts(), &fakeHistory{}, nil)
	_, err := uc.Edit(context.Background(), inventory.EditInput{ID: "404"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecent_MasRecientePrimero(t *testing.T) {
	products, history := newProducts(), &fakeHistory{}
	uc := inventory.NewStockUseCase(products, history, nil)
	ctx := context.Background()

	_, err := uc.Edit(ctx, inventory.EditInput{ID: "1", Method: "Ingreso", Units: "1"})
	require.NoError(t, err)
	_, err = uc.Edit(ctx, inventory.EditInput{ID: "2", Method: "Ingreso", Units: "4"})
	require.NoError(t, err)

	res, err := uc.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "RMEC-2", res.Items[0].Code)
	assert.Equal(t, "RMEC-1", res.Items[1].Code)
}

func TestRecent_FallaEsDatosNoDisponibles(t *testing.T) {
	uc := inventory.NewStockUseCase(newProducts(), &fakeHistory{err: errors.New("disco lleno")}, nil)
	_, err := uc.Recent(context.Background(), 10)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}
