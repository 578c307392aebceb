package sheet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/internal/domain/sheet"
)

func TestNormalizeHeaders_RecortaNombraYDesambigua(t *testing.T) {
	got := sheet.NormalizeHeaders([]string{"\ufeffID", " Codigo ", "", "Nota", "Nota", "Nota"})
	assert.Equal(t, []string{"ID", "Codigo", "Unnamed: 2", "Nota", "Nota.1", "Nota.2"}, got)
}

// Encabezado exacto "ID, Codigo, Nombre": la columna de ID es la posición 0
// aunque más adelante exista otra columna "codigo".
func TestIdentifierColumn_IDEnPosicionCero(t *testing.T) {
	col, err := sheet.IdentifierColumn([]string{"ID", "Codigo", "Nombre", "codigo"})
	require.NoError(t, err)
	assert.Equal(t, 0, col)
}

func TestIdentifierColumn_Prioridades(t *testing.T) {
	col, err := sheet.IdentifierColumn([]string{"Codigo", "Nombre", "Id"})
	require.NoError(t, err)
	assert.Equal(t, 2, col, "id sin distinguir mayúsculas gana sobre codigo")

	col, err = sheet.IdentifierColumn([]string{"Nombre", "CÓDIGO"})
	require.NoError(t, err)
	assert.Equal(t, 1, col)

	_, err = sheet.IdentifierColumn([]string{"Nombre", "Referencia"})
	assert.ErrorIs(t, err, domain.ErrNoIdentifierColumn)

	_, err = sheet.IdentifierColumn(nil)
	assert.ErrorIs(t, err, domain.ErrNoHeaders)
}

func TestFindRow_ComparaTextoRecortado(t *testing.T) {
	rows := [][]string{{"1", "a"}, {" 2 ", "b"}, {"2", "c"}}
	idx, ok := sheet.FindRow(rows, 0, "2")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = sheet.FindRow(rows, 0, "3")
	assert.False(t, ok)
}

// Actualizar {A: "x"} conserva B = "y".
func TestMergeRow_ConservaColumnasNoMencionadas(t *testing.T) {
	header := []string{"ID", "A", "B"}
	got := sheet.MergeRow(header, []string{"1", "old", "y"}, map[string]string{"a": "x"})
	assert.Equal(t, []string{"1", "x", "y"}, got)
}

func TestMergeRow_FilaCortaYClavesDesconocidas(t *testing.T) {
	header := []string{"ID", "A", "B", "C"}
	changes := map[string]string{"C": "nuevo", "Fantasma": "se descarta"}
	got := sheet.MergeRow(header, []string{"1", "a"}, changes)
	assert.Equal(t, []string{"1", "a", "", "nuevo"}, got)
	assert.Equal(t, []string{"Fantasma"}, sheet.UnmatchedKeys(header, changes))
}

func TestBuildRow_OrdenDelEncabezado(t *testing.T) {
	header := []string{"ID", "Codigo", "Descripcion", "cantidad"}
	got := sheet.BuildRow(header, map[string]string{
		"CANTIDAD": "0", "descripcion": "Bolt", "id": "8",
	})
	assert.Equal(t, []string{"8", "", "Bolt", "0"}, got)
}

// Un registro encontrado por Referencia se escribe usando la columna Codigo.
func TestWriteIdentifier_UsaColumnaDeEscritura(t *testing.T) {
	r := entity.NewRecord([]string{"Referencia", "Codigo", "cantidad"}, []string{"REF-9", " RMEC-4 ", "3"})
	id, err := sheet.WriteIdentifier(r)
	require.NoError(t, err)
	assert.Equal(t, "RMEC-4", id)

	_, err = sheet.WriteIdentifier(entity.NewRecord([]string{"Referencia"}, []string{"REF-9"}))
	assert.ErrorIs(t, err, domain.ErrNoIdentifierColumn)

	_, err = sheet.WriteIdentifier(entity.NewRecord([]string{"ID", "Referencia"}, []string{"", "REF-9"}))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
