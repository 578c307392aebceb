package auth_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"

	"github.com/jhoicas/inventario-sheets/internal/application/auth"
	"github.com/jhoicas/inventario-sheets/internal/application/dto"
	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/pkg/jwt"
)

type fakeUsers struct {
	users map[string]string
	err   error
}

func (f fakeUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	pass, ok := f.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entity.User{Username: username, PasswordHash: pass}, nil
}

var jwtCfg = auth.JWTConfig{Secret: "secreto-de-prueba", ExpMinutes: 60, Issuer: "inventario-sheets"}

func TestVerifyPassword_TextoPlanoTolerante(t *testing.T) {
	assert.True(t, auth.VerifyPassword("clave", "clave"))
	assert.True(t, auth.VerifyPassword("clave ", "clave"))
	assert.True(t, auth.VerifyPassword(" clave", "clave "))
	assert.False(t, auth.VerifyPassword("clave", "Clave"))
	assert.False(t, auth.VerifyPassword("", ""))
}

func TestVerifyPassword_Bcrypt(t *testing.T) {
	h, err := auth.HashPassword("s3creta")
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword(h, "s3creta"))
	assert.False(t, auth.VerifyPassword(h, "otra"))
}

func TestVerifyPassword_WerkzeugPBKDF2(t *testing.T) {
	dk := pbkdf2.Key([]byte("s3creta"), []byte("sal123"), 1000, sha256.Size, sha256.New)
	stored := "pbkdf2:sha256:1000$sal123$" + hex.EncodeToString(dk)
	assert.True(t, auth.VerifyPassword(stored, "s3creta"))
	assert.False(t, auth.VerifyPassword(stored, "otra"))
	assert.False(t, auth.VerifyPassword("pbkdf2:md5:1000$sal123$"+hex.EncodeToString(dk), "s3creta"))
}

func TestVerifyPassword_WerkzeugScrypt(t *testing.T) {
	dk, err := scrypt.Key([]byte("s3creta"), []byte("sal"), 1024, 8, 1, 64)
	require.NoError(t, err)
	stored := "scrypt:1024:8:1$sal$" + hex.EncodeToString(dk)
	assert.True(t, auth.VerifyPassword(stored, "s3creta"))
	assert.False(t, auth.VerifyPassword(stored, "otra"))
}

func TestLogin_EmiteTokenValido(t *testing.T) {
	uc := auth.NewAuthUseCase(fakeUsers{users: map[string]string{"ana": "clave"}}, jwtCfg, nil)

	res, err := uc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: "clave"})
	require.NoError(t, err)
	assert.Equal(t, "ana", res.Username)

	username, err := jwt.Parse(jwtCfg.Secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana", username)
}

func TestLogin_CredencialesIncorrectas(t *testing.T) {
	uc := auth.NewAuthUseCase(fakeUsers{users: map[string]string{"ana": "clave"}}, jwtCfg, nil)
	ctx := context.Background()

	_, err := uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ana"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_HojaNoDisponibleSePropaga(t *testing.T) {
	uc := auth.NewAuthUseCase(fakeUsers{err: errors.Join(domain.ErrDataUnavailable, errors.New("timeout"))}, jwtCfg, nil)
	_, err := uc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: "clave"})
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}
