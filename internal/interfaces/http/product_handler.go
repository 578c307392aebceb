package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sheets/internal/application/dto"
	"github.com/jhoicas/inventario-sheets/internal/application/inventory"
	"github.com/jhoicas/inventario-sheets/internal/application/usecase"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

// ProductHandler maneja las peticiones HTTP para productos (protegido).
type ProductHandler struct {
	uc    *usecase.ProductUseCase
	stock *inventory.StockUseCase
	log   *logger.Logger
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, stock *inventory.StockUseCase, log *logger.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, stock: stock, log: logger.OrNop(log).Component("http.products")}
}

// productID devuelve el :id decodificado una sola vez (fiber entrega el segmento
// escapado). Capas de abajo comparan el valor tal cual.
func productID(c *fiber.Ctx) string {
	id := c.Params("id")
	if decoded, err := url.PathUnescape(id); err == nil {
		return decoded
	}
	return id
}

// Form godoc
// @Summary      Valores sugeridos para crear producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProductFormDefaults
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/products/new [get]
func (h *ProductHandler) Form(c *fiber.Ctx) error {
	out, err := h.uc.FormDefaults(c.Context())
	if err != nil {
		return writeError(c, h.log, "new-form", "", err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear producto
// @Description  Las claves del cuerpo son nombres de columna de la hoja. Se asigna el siguiente ID y, si falta, el siguiente código.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "columna -> valor"
// @Success      201   {object}  dto.ProductWriteResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), in, GetUsername(c))
	if err != nil {
		return writeError(c, h.log, "create", "", err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Detalle de producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID, Codigo o Referencia"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id := productID(c)
	out, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, "detail", id, err)
	}
	return c.JSON(out)
}

// Edit godoc
// @Summary      Editar producto y mover stock
// @Description  unidades vacío o 0 sólo edita campos. Una salida que deja stock negativo se rechaza sin escribir.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID, Codigo o Referencia"
// @Param        body  body  dto.EditProductRequest  true  "campos y movimiento"
// @Success      200   {object}  dto.ProductWriteResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Edit(c *fiber.Ctx) error {
	id := productID(c)
	var in dto.EditProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.stock.Edit(c.Context(), inventory.EditInput{
		ID:     id,
		Fields: in.Fields,
		Method: in.Method,
		Units:  in.Units,
		Actor:  GetUsername(c),
	})
	if err != nil {
		return writeError(c, h.log, "edit", id, err)
	}
	return c.JSON(out)
}

// QRImage godoc
// @Summary      Imagen QR del producto
// @Tags         products
// @Security     Bearer
// @Produce      png
// @Param        id   path  string  true  "ID, Codigo o Referencia"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/qr.png [get]
func (h *ProductHandler) QRImage(c *fiber.Ctx) error {
	id := productID(c)
	png, err := h.uc.QRImage(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, "qr-image", id, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// PublishQR godoc
// @Summary      Regenerar y subir el QR del producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID, Codigo o Referencia"
// @Success      200  {object}  dto.QRResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/qr [post]
func (h *ProductHandler) PublishQR(c *fiber.Ctx) error {
	id := productID(c)
	out, err := h.uc.PublishQR(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, "qr-publish", id, err)
	}
	return c.JSON(out)
}

// Label godoc
// @Summary      Etiqueta PDF con QR
// @Tags         products
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID, Codigo o Referencia"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/label.pdf [get]
func (h *ProductHandler) Label(c *fiber.Ctx) error {
	id := productID(c)
	doc, err := h.uc.Label(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, "label", id, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(doc)
}
