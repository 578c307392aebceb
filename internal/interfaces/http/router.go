package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/inventario-sheets/internal/application/auth"
	"github.com/jhoicas/inventario-sheets/internal/application/inventory"
	"github.com/jhoicas/inventario-sheets/internal/application/usecase"
	"github.com/jhoicas/inventario-sheets/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	ProductUC    *usecase.ProductUseCase
	StockUC      *inventory.StockUseCase
	Metrics      *metrics.Recorder
	JWTSecret    string
	CookieSecure bool
	AppName      string
	Log          *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.CookieSecure, deps.Log)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)

	requireAuth := AuthMiddleware(deps.JWTSecret)
	dashboardHandler := NewDashboardHandler(deps.ProductUC, deps.Log)
	productHandler := NewProductHandler(deps.ProductUC, deps.StockUC, deps.Log)
	inventoryHandler := NewInventoryHandler(deps.StockUC, deps.ProductUC, deps.Log)

	api.Get("/dashboard", requireAuth, dashboardHandler.List)
	api.Get("/units", requireAuth, dashboardHandler.Units)
	api.Get("/history", requireAuth, inventoryHandler.History)
	api.Get("/inventory/export.xlsx", requireAuth, inventoryHandler.ExportXLSX)
	api.Get("/inventory/report.pdf", requireAuth, inventoryHandler.ReportPDF)

	products := api.Group("/products", requireAuth)
	products.Get("/new", productHandler.Form)
	products.Post("/", productHandler.Create)
	products.Get("/:id/qr.png", productHandler.QRImage)
	products.Get("/:id/label.pdf", productHandler.Label)
	products.Post("/:id/qr", productHandler.PublishQR)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/:id", productHandler.Edit)
	products.Put("/:id", productHandler.Edit)

	// Enlaces impresos en los QR.
	app.Get("/product/detail/:id", requireAuth, productHandler.GetByID)
	app.Get("/product/:id", requireAuth, productHandler.GetByID)
}
