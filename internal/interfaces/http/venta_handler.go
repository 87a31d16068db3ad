package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lvidela/facturador-api/internal/application/billing"
	"github.com/lvidela/facturador-api/internal/application/dto"
	"github.com/lvidela/facturador-api/internal/domain"
)

// VentaHandler maneja las peticiones HTTP de ventas (protegido).
type VentaHandler struct {
	uc *billing.VentaUseCase
}

// NewVentaHandler construye el handler.
func NewVentaHandler(uc *billing.VentaUseCase) *VentaHandler {
	return &VentaHandler{uc: uc}
}

// Create registra una venta de mostrador.
// POST /api/ventas
func (h *VentaHandler) Create(c *fiber.Ctx) error {
	vendedorID := GetUserID(c)
	if vendedorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateVentaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	venta, err := h.uc.CreateVenta(c.Context(), vendedorID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ítems con descripción, cantidad y precio válidos son requeridos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(venta)
}

// GetByID GET /api/ventas/:id
func (h *VentaHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	venta, err := h.uc.GetVenta(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(venta)
}

// List GET /api/ventas?limit=20&offset=0
func (h *VentaHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit y offset deben ser numéricos"})
	}
	page.DefaultPage()
	list, err := h.uc.ListVentas(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.NewListResponse(list, page))
}
