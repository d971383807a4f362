package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/logistica-api/internal/application/dto"
	"github.com/jhoicas/logistica-api/internal/application/ports"
	"github.com/jhoicas/logistica-api/internal/application/trade"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/domain/logistics"
)

// TradeHandler maneja las peticiones HTTP del registro de tratos (protegido).
type TradeHandler struct {
	registry *trade.Registry
	waybill  ports.WaybillGenerator
	validate *Validator
}

// NewTradeHandler construye el handler. waybill puede ser nil (la ruta responde 501).
func NewTradeHandler(registry *trade.Registry, waybill ports.WaybillGenerator, validate *Validator) *TradeHandler {
	return &TradeHandler{registry: registry, waybill: waybill, validate: validate}
}

// Create godoc
// @Summary      Crear trato
// @Description  Solo la autoridad. Reserva stock y registra el trato en estado Created de forma atómica.
// @Description  Con dry_run=true valida y calcula precio y temperaturas sin confirmar nada.
// @Tags         trades
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body             body    dto.CreateTradeRequest  true   "Cliente, producto y cantidad"
// @Param        dry_run          query   bool                    false  "Solo previsualizar"
// @Param        Idempotency-Key  header  string                  false  "Llave para reintentos seguros"
// @Success      201  {object}  dto.TradeResponse
// @Success      200  {object}  dto.TradeResponse  "dry_run"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.InsufficientStockResponse
// @Router       /api/trades [post]
func (h *TradeHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTradeRequest
	if ok, err := parseBody(c, h.validate, &in); !ok {
		return err
	}
	dryRun := c.QueryBool("dry_run")
	t, err := h.registry.CreateTrade(c.Context(), GetPartyID(c), trade.CreateTradeInput{
		Customer:    in.Customer,
		ProductName: in.ProductName,
		Quantity:    in.Quantity,
		DryRun:      dryRun,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ToTradeResponse(t)
	if dryRun {
		out.DryRun = true
		return c.Status(fiber.StatusOK).JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener trato por ID
// @Tags         trades
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del trato"
// @Success      200  {object}  dto.TradeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/trades/{id} [get]
func (h *TradeHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.registry.GetTrade(c.Context(), idParam(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToTradeResponse(t))
}

// List godoc
// @Summary      Listar tratos
// @Tags         trades
// @Security     Bearer
// @Produce      json
// @Param        customer  query  string  false  "Filtrar por cliente"
// @Param        state     query  string  false  "Filtrar por estado (Created, InTransit, Complete, Cancel, Done)"
// @Param        limit     query  int     false  "Límite (máx. 100)"
// @Param        offset    query  int     false  "Desplazamiento"
// @Success      200       {object}  dto.TradeListResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/trades [get]
func (h *TradeHandler) List(c *fiber.Ctx) error {
	var q dto.TradeListRequest
	if ok, err := parseQuery(c, h.validate, &q); !ok {
		return err
	}
	q.DefaultPage()
	filter := entity.TradeFilter{Customer: q.Customer}
	if q.State != "" {
		st, err := logistics.ParseTransportState(q.State)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		filter.State = &st
	}
	list, err := h.registry.ListTrades(c.Context(), filter, q.Limit, q.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.TradeResponse, 0, len(list))
	for _, t := range list {
		items = append(items, dto.ToTradeResponse(t))
	}
	return c.JSON(dto.TradeListResponse{Items: items, Page: dto.PageResponse{Limit: q.Limit, Offset: q.Offset}})
}

// Advance godoc
// @Summary      Avanzar estado del trato
// @Description  Created → InTransit → Complete → Done. Solo la autoridad.
// @Tags         trades
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del trato"
// @Success      200  {object}  dto.TradeResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/trades/{id}/advance [post]
func (h *TradeHandler) Advance(c *fiber.Ctx) error {
	t, err := h.registry.Advance(c.Context(), GetPartyID(c), idParam(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToTradeResponse(t))
}

// Cancel godoc
// @Summary      Cancelar trato
// @Description  Solo desde Created o InTransit. No repone stock. Solo la autoridad.
// @Tags         trades
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del trato"
// @Success      200  {object}  dto.TradeResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/trades/{id}/cancel [post]
func (h *TradeHandler) Cancel(c *fiber.Ctx) error {
	t, err := h.registry.Cancel(c.Context(), GetPartyID(c), idParam(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToTradeResponse(t))
}

// ListTransitions godoc
// @Summary      Historial de estados del trato
// @Tags         trades
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del trato"
// @Success      200  {array}   dto.TradeTransitionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/trades/{id}/transitions [get]
func (h *TradeHandler) ListTransitions(c *fiber.Ctx) error {
	list, err := h.registry.ListTransitions(c.Context(), idParam(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.TradeTransitionResponse, 0, len(list))
	for _, tr := range list {
		out = append(out, dto.ToTradeTransitionResponse(tr))
	}
	return c.JSON(out)
}

// Waybill godoc
// @Summary      Guía de transporte en PDF
// @Tags         trades
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del trato"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      501  {object}  dto.ErrorResponse
// @Router       /api/trades/{id}/waybill [get]
func (h *TradeHandler) Waybill(c *fiber.Ctx) error {
	if h.waybill == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "generador de guías no configurado"})
	}
	id := idParam(c)
	t, err := h.registry.GetTrade(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	history, err := h.registry.ListTransitions(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	doc, err := h.waybill.GenerateWaybill(c.Context(), t, history)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="guia-`+t.ID+`.pdf"`)
	return c.Send(doc)
}

// idParam copia el id de la ruta fuera del buffer de fiber antes de que llegue a los repositorios.
func idParam(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}
