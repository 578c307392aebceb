// Package bootstrap arma el grafo de dependencias a partir de la configuración.
// Lo comparten el servidor HTTP y la CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jhoicas/inventario-sheets/internal/application/auth"
	"github.com/jhoicas/inventario-sheets/internal/application/inventory"
	"github.com/jhoicas/inventario-sheets/internal/application/ports"
	"github.com/jhoicas/inventario-sheets/internal/application/qr"
	"github.com/jhoicas/inventario-sheets/internal/application/usecase"
	"github.com/jhoicas/inventario-sheets/internal/domain/repository"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/drive"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/google"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/gsheets"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/postgres"
	qrimg "github.com/jhoicas/inventario-sheets/internal/infrastructure/qr"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/s3"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/sqlite"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/xlsx"
	"github.com/jhoicas/inventario-sheets/pkg/config"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

// App dependencias listas para usar.
type App struct {
	Credentials *google.Credentials
	Metrics     *metrics.Recorder
	Products    repository.ProductRepository
	AuthUC      *auth.AuthUseCase
	ProductUC   *usecase.ProductUseCase
	StockUC     *inventory.StockUseCase
	QR          *qr.Service

	closers []func()
}

// Close libera conexiones abiertas (pool de Postgres, archivo SQLite).
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build arma la aplicación. Un token ausente o ilegible no impide arrancar: las
// lecturas usan el export público y las escrituras devolverán ErrServiceMisconfigured.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	log = logger.OrNop(log)
	app := &App{Metrics: metrics.NewRecorder()}

	invLoc, err := gsheets.ParseLocator(cfg.Sheets.InventoryURL)
	if err != nil {
		return nil, fmt.Errorf("INVENTORY_SHEET_URL: %w", err)
	}

	// sin token, Google responde 401 a toda escritura (ErrServiceMisconfigured)
	authed := &http.Client{}
	loaded, err := google.Load(google.Source{JSON: cfg.Google.TokenJSON, Files: cfg.Google.TokenFiles})
	if err != nil {
		log.Warn().Err(err).Msg("sin credenciales de Google; sólo lectura")
	} else {
		app.Credentials = google.NewCredentials(ctx, loaded, log)
		authed = app.Credentials.HTTPClient(ctx)
		log.Info().Str("origin", loaded.Origin).Msg("credenciales de Google cargadas")
	}

	reader := gsheets.NewReader(nil, cfg.Sheets.ExportBaseURL, cfg.Sheets.ReadTimeout, app.Metrics, log)
	values, err := gsheets.NewValuesClient(ctx, authed, cfg.Sheets.APIBaseURL, app.Metrics)
	if err != nil {
		return nil, err
	}
	writer := gsheets.NewWriter(values, log)
	products := gsheets.NewProductRepository(invLoc, reader, writer)
	app.Products = products

	history, err := app.history(ctx, cfg, reader, writer, log)
	if err != nil {
		app.Close()
		return nil, err
	}

	users, err := usersRepository(cfg, reader)
	if err != nil {
		app.Close()
		return nil, err
	}

	store, err := app.qrStore(ctx, cfg, authed, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.QR = qr.NewService(qrimg.NewRenderer(), store, cfg.App.BaseURL, log)

	app.ProductUC = usecase.NewProductUseCase(products, app.QR,
		pdf.NewMarotoPDFGenerator(cfg.App.Name), xlsx.NewExporter(), cfg.Sheets.CodePrefix, log)
	app.StockUC = inventory.NewStockUseCase(products, history, log)
	app.AuthUC = auth.NewAuthUseCase(users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	return app, nil
}

func (a *App) history(ctx context.Context, cfg *config.Config, reader *gsheets.Reader, writer *gsheets.Writer, log *logger.Logger) (repository.HistoryRepository, error) {
	switch cfg.History.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.History.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("histórico en PostgreSQL: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		repo := postgres.NewHistoryRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("histórico en PostgreSQL: %w", err)
		}
		log.Info().Str("driver", "postgres").Msg("histórico configurado")
		return repo, nil
	case "sqlite":
		repo, err := sqlite.Open(ctx, cfg.History.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("histórico en SQLite: %w", err)
		}
		a.closers = append(a.closers, func() { _ = repo.Close() })
		log.Info().Str("driver", "sqlite").Str("path", cfg.History.SQLitePath).Msg("histórico configurado")
		return repo, nil
	default:
		if cfg.Sheets.HistoryURL == "" {
			return nil, errors.New("HISTORY_SHEET_URL es obligatorio con HISTORY_DRIVER=sheet")
		}
		loc, err := gsheets.ParseLocator(cfg.Sheets.HistoryURL)
		if err != nil {
			return nil, fmt.Errorf("HISTORY_SHEET_URL: %w", err)
		}
		log.Info().Str("driver", "sheet").Msg("histórico configurado")
		return gsheets.NewHistoryRepository(loc, reader, writer, cfg.App.Location()), nil
	}
}

func usersRepository(cfg *config.Config, reader *gsheets.Reader) (repository.UserRepository, error) {
	if cfg.Sheets.UsersURL == "" {
		return nil, errors.New("USERS_SHEET_URL es obligatorio")
	}
	loc, err := gsheets.ParseLocator(cfg.Sheets.UsersURL)
	if err != nil {
		return nil, fmt.Errorf("USERS_SHEET_URL: %w", err)
	}
	return gsheets.NewUserRepository(loc, reader, cfg.Sheets.UsernameColumn, cfg.Sheets.PasswordColumn), nil
}

// qrStore devuelve nil (interfaz sin valor) con QR_DRIVER=none.
func (a *App) qrStore(ctx context.Context, cfg *config.Config, authed *http.Client, log *logger.Logger) (ports.ObjectStore, error) {
	switch cfg.QR.Driver {
	case "s3":
		store, err := s3.New(ctx, s3.Config{
			Bucket:    cfg.QR.S3Bucket,
			Region:    cfg.QR.S3Region,
			Endpoint:  cfg.QR.S3Endpoint,
			PathStyle: cfg.QR.S3PathStyle,
			Folder:    cfg.QR.FolderName,
		}, a.Metrics, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "none":
		return nil, nil
	default:
		store, err := drive.New(ctx, drive.Config{
			BaseURL:        cfg.QR.DriveBaseURL,
			ParentFolderID: cfg.QR.ParentFolderID,
			FolderName:     cfg.QR.FolderName,
		}, authed, a.Metrics, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
