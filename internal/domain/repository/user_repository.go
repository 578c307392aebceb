package repository

import (
	"context"

	"github.com/jhoicas/inventario-sheets/internal/domain/entity"
)

// UserRepository define el puerto de la hoja de usuarios.
type UserRepository interface {
	// FindByUsername compara el usuario recortado y sin distinguir mayúsculas.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}
