package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/logistica-api/internal/application/dto"
	"github.com/jhoicas/logistica-api/internal/application/inventory"
)

// ProductHandler maneja las peticiones HTTP del libro de inventario (protegido).
type ProductHandler struct {
	ledger   *inventory.Ledger
	validate *Validator
}

// NewProductHandler construye el handler.
func NewProductHandler(ledger *inventory.Ledger, validate *Validator) *ProductHandler {
	return &ProductHandler{ledger: ledger, validate: validate}
}

// Create godoc
// @Summary      Registrar producto
// @Description  Solo la autoridad. El producto nace con cantidad 0.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if ok, err := parseBody(c, h.validate, &in); !ok {
		return err
	}
	p, err := h.ledger.AddProduct(c.Context(), GetPartyID(c), inventory.AddProductInput{
		Name:           in.Name,
		UnitPrice:      in.UnitPrice,
		MinTemperature: in.MinTemperature,
		MaxTemperature: in.MaxTemperature,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToProductResponse(p))
}

// GetByName godoc
// @Summary      Obtener producto por nombre
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        name  path  string  true  "Nombre del producto"
// @Success      200   {object}  dto.ProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{name} [get]
func (h *ProductHandler) GetByName(c *fiber.Ctx) error {
	p, err := h.ledger.GetProduct(c.Context(), nameParam(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToProductResponse(p))
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite (máx. 100)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200     {object}  dto.ProductListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := parseQuery(c, h.validate, &page); !ok {
		return err
	}
	page.DefaultPage()
	list, err := h.ledger.ListProducts(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.ToProductResponse(p))
	}
	return c.JSON(dto.ProductListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// AddStock godoc
// @Summary      Sumar stock
// @Description  Solo la autoridad. Registra un movimiento IN en el libro.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        name  path  string               true  "Nombre del producto"
// @Param        body  body  dto.AddStockRequest  true  "Cantidad a sumar"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{name}/stock [post]
func (h *ProductHandler) AddStock(c *fiber.Ctx) error {
	var in dto.AddStockRequest
	if ok, err := parseBody(c, h.validate, &in); !ok {
		return err
	}
	p, err := h.ledger.AddStock(c.Context(), GetPartyID(c), nameParam(c), in.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{Name: p.Name, Quantity: p.Quantity})
}

// GetStock godoc
// @Summary      Consultar stock
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        name  path  string  true  "Nombre del producto"
// @Success      200   {object}  dto.StockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{name}/stock [get]
func (h *ProductHandler) GetStock(c *fiber.Ctx) error {
	p, err := h.ledger.GetProduct(c.Context(), nameParam(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{Name: p.Name, Quantity: p.Quantity})
}

// ListMovements godoc
// @Summary      Libro de movimientos del producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        name    path   string  true   "Nombre del producto"
// @Param        limit   query  int     false  "Límite (máx. 100)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200     {object}  dto.StockMovementListResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/products/{name}/movements [get]
func (h *ProductHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := parseQuery(c, h.validate, &page); !ok {
		return err
	}
	page.DefaultPage()
	list, err := h.ledger.ListMovements(c.Context(), nameParam(c), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.ToStockMovementResponse(m))
	}
	return c.JSON(dto.StockMovementListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// nameParam devuelve el nombre del producto decodificado (los nombres admiten espacios).
// Copia el valor: fiber reutiliza el buffer de la petición.
func nameParam(c *fiber.Ctx) string {
	raw := utils.CopyString(c.Params("name"))
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}
