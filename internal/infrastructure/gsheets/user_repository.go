package gsheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
	"github.com/jhoicas/inventario-sheets/internal/domain/repository"
)

// UserRepository usuarios leídos de la hoja de usuarios (columnas configurables).
type UserRepository struct {
	loc            Locator
	reader         *Reader
	usernameColumn string
	passwordColumn string
}

// NewUserRepository crea el repositorio con los nombres de columna configurados.
func NewUserRepository(loc Locator, reader *Reader, usernameColumn, passwordColumn string) *UserRepository {
	return &UserRepository{loc: loc, reader: reader, usernameColumn: usernameColumn, passwordColumn: passwordColumn}
}

// FindByUsername implementa repository.UserRepository. La contraseña se devuelve
// sin recortar.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	t, err := r.reader.ReadTable(ctx, r.loc)
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(strings.TrimSpace(username))
	if want == "" {
		return nil, domain.ErrNotFound
	}
	for _, rec := range t.Records() {
		userCol, ok := rec.Column(r.usernameColumn)
		if !ok {
			return nil, fmt.Errorf("%w: la hoja de usuarios no tiene columna %q", domain.ErrServiceMisconfigured, r.usernameColumn)
		}
		if strings.ToLower(strings.TrimSpace(rec.Value(userCol))) != want {
			continue
		}
		pass, _ := rec.Get(r.passwordColumn)
		return &entity.User{Username: strings.TrimSpace(rec.Value(userCol)), PasswordHash: pass}, nil
	}
	return nil, domain.ErrNotFound
}

var _ repository.UserRepository = (*UserRepository)(nil)
