package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/inventario-sheets/pkg/jwt"
)

func TestGenerateParse_DevuelveUsuario(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", "ana", "inventario-test", 5)
	require.NoError(t, err)

	user, err := pkgjwt.Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, "ana", user)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", "ana", "inventario-test", 5)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", "ana", "inventario-test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("secreto", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretOUsuarioVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "ana", "x", 5)
	assert.Error(t, err)
	_, err = pkgjwt.Generate("s", "", "x", 5)
	assert.Error(t, err)
}
