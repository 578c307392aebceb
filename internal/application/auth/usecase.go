package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/inventario-sheets/internal/application/dto"
	"github.com/jhoicas/inventario-sheets/internal/domain"
	"github.com/jhoicas/inventario-sheets/internal/domain/repository"
	"github.com/jhoicas/inventario-sheets/pkg/jwt"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login contra la hoja de usuarios.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, log: logger.OrNop(log).Component("auth")}
}

// Login verifica usuario/contraseña y emite el JWT de sesión. Usuario inexistente
// y contraseña incorrecta devuelven el mismo ErrUnauthorized; fallas al leer la
// hoja se propagan tal cual.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn().Str("operation", "login").Str("identifier", in.Username).Msg("usuario no encontrado")
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !VerifyPassword(user.PasswordHash, in.Password) {
		uc.log.Warn().Str("operation", "login").Str("identifier", user.Username).Msg("contraseña incorrecta")
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.Username, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("operation", "login").Str("identifier", user.Username).Msg("sesión iniciada")
	return &dto.LoginResponse{
		Token:     token,
		Username:  user.Username,
		ExpiresAt: time.Now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
	}, nil
}
