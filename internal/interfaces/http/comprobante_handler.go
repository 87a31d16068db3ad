package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lvidela/facturador-api/internal/application/billing"
	"github.com/lvidela/facturador-api/internal/application/dto"
	"github.com/lvidela/facturador-api/internal/domain"
)

// ComprobanteHandler maneja el circuito fiscal de comprobantes (protegido).
type ComprobanteHandler struct {
	emitir  *billing.EmitirComprobanteUseCase
	enviar  *billing.EnviarComprobanteUseCase
	derivar *billing.DerivarNotaUseCase
	pdf     *billing.PDFUseCase
}

// NewComprobanteHandler construye el handler.
func NewComprobanteHandler(
	emitir *billing.EmitirComprobanteUseCase,
	enviar *billing.EnviarComprobanteUseCase,
	derivar *billing.DerivarNotaUseCase,
	pdf *billing.PDFUseCase,
) *ComprobanteHandler {
	return &ComprobanteHandler{emitir: emitir, enviar: enviar, derivar: derivar, pdf: pdf}
}

// Emitir genera el comprobante en borrador para una venta.
// POST /api/ventas/:id/comprobante
func (h *ComprobanteHandler) Emitir(c *fiber.Ctx) error {
	ventaID := c.Params("id")
	if ventaID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id de venta requerido"})
	}
	comprobante, err := h.emitir.Emitir(c.Context(), ventaID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
		case errors.Is(err, domain.ErrDuplicate):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "YA_FACTURADA", Message: "la venta ya tiene un comprobante emitido"})
		case errors.Is(err, domain.ErrComprobanteInvalido), errors.Is(err, domain.ErrDesgloseInvalido):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "COMPROBANTE_INVALIDO", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(comprobante)
}

// GetByID obtiene el detalle completo de un comprobante.
// GET /api/comprobantes/:id
func (h *ComprobanteHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	comprobante, err := h.emitir.GetComprobante(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(comprobante)
}

// Estado devuelve solo estado, número y CAE (pensado para polling).
// GET /api/comprobantes/:id/estado
func (h *ComprobanteHandler) Estado(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	estado, err := h.emitir.GetEstado(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(estado)
}

// List GET /api/comprobantes?limit=20&offset=0
func (h *ComprobanteHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit y offset deben ser numéricos"})
	}
	page.DefaultPage()
	list, err := h.emitir.ListComprobantes(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.NewListResponse(list, page))
}

// Enviar solicita el CAE a AFIP para un comprobante en borrador o con error.
// POST /api/comprobantes/:id/enviar
func (h *ComprobanteHandler) Enviar(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	estado, err := h.enviar.Enviar(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no encontrado"})
		case errors.Is(err, domain.ErrEstadoInvalido):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ESTADO_INVALIDO", Message: "el estado del comprobante no admite el envío"})
		case errors.Is(err, domain.ErrEnvioEnCurso):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ENVIO_EN_CURSO", Message: "ya hay un envío en curso para el comprobante"})
		case errors.Is(err, domain.ErrComprobanteInvalido), errors.Is(err, domain.ErrDesgloseInvalido):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "COMPROBANTE_INVALIDO", Message: err.Error()})
		case errors.Is(err, domain.ErrOriginalNoAutorizado):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ORIGEN_NO_AUTORIZADO", Message: "el comprobante de origen no está autorizado"})
		case errors.Is(err, domain.ErrRechazado):
			// El rechazo de AFIP no es un fallo del servidor: se devuelve el
			// estado ERROR con el diagnóstico para que el caller lo muestre.
			return c.Status(fiber.StatusUnprocessableEntity).JSON(estado)
		case errors.Is(err, domain.ErrTransporte):
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AFIP_NO_DISPONIBLE", Message: "falla de transporte con AFIP, reintente más tarde"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(estado)
}

// CrearNota deriva una nota de crédito o débito desde un comprobante autorizado.
// POST /api/comprobantes/:id/notas
func (h *ComprobanteHandler) CrearNota(c *fiber.Ctx) error {
	origenID := c.Params("id")
	if origenID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id de origen requerido"})
	}
	var in dto.CreateNotaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	nota, err := h.derivar.Derivar(c.Context(), origenID, in.Kind, in.Items)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante de origen no encontrado"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "kind debe ser nota_credito o nota_debito, con ítems válidos"})
		case errors.Is(err, domain.ErrOriginalNoAutorizado):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ORIGEN_NO_AUTORIZADO", Message: "el comprobante de origen no está autorizado"})
		case errors.Is(err, domain.ErrComprobanteInvalido), errors.Is(err, domain.ErrDesgloseInvalido):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "COMPROBANTE_INVALIDO", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(nota)
}

// ListNotas lista las notas derivadas de un comprobante.
// GET /api/comprobantes/:id/notas
func (h *ComprobanteHandler) ListNotas(c *fiber.Ctx) error {
	origenID := c.Params("id")
	if origenID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id de origen requerido"})
	}
	notas, err := h.derivar.ListNotas(c.Context(), origenID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante de origen no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(notas)
}

// PDF descarga la representación impresa de un comprobante autorizado.
// GET /api/comprobantes/:id/pdf
func (h *ComprobanteHandler) PDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	pdfBytes, filename, err := h.pdf.DownloadComprobantePDF(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no encontrado"})
		case errors.Is(err, domain.ErrEstadoInvalido):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ESTADO_INVALIDO", Message: "solo los comprobantes autorizados tienen representación impresa"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
