package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lvidela/facturador-api/internal/application/dto"
	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/fiscal"
	"github.com/lvidela/facturador-api/internal/domain/repository"
)

// VentaUseCase registra ventas del back-office. La venta es la dueña del
// comprobante que la factura; acá todavía no hay nada fiscal, solo líneas con
// precio final.
type VentaUseCase struct {
	ventaRepo   repository.VentaRepository
	clienteRepo repository.ClienteRepository
}

// NewVentaUseCase construye el caso de uso.
func NewVentaUseCase(ventaRepo repository.VentaRepository, clienteRepo repository.ClienteRepository) *VentaUseCase {
	return &VentaUseCase{ventaRepo: ventaRepo, clienteRepo: clienteRepo}
}

// CreateVenta registra una venta. cliente_id puede ir vacío (venta de
// mostrador a consumidor final sin identificar). Las alícuotas se validan
// contra el catálogo en el alta para que la factura no falle después.
func (uc *VentaUseCase) CreateVenta(ctx context.Context, vendedorID string, in dto.CreateVentaRequest) (*dto.VentaResponse, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la venta necesita al menos un ítem", domain.ErrInvalidInput)
	}
	if in.CostoEnvio.IsNegative() {
		return nil, fmt.Errorf("%w: costo de envío negativo", domain.ErrInvalidInput)
	}

	items := make([]entity.ItemVenta, 0, len(in.Items))
	for i, it := range in.Items {
		if it.Descripcion == "" {
			return nil, fmt.Errorf("%w: ítem %d sin descripción", domain.ErrInvalidInput, i)
		}
		if !it.Cantidad.IsPositive() {
			return nil, fmt.Errorf("%w: ítem %d con cantidad no positiva", domain.ErrInvalidInput, i)
		}
		if it.PrecioUnitario.IsNegative() {
			return nil, fmt.Errorf("%w: ítem %d con precio negativo", domain.ErrInvalidInput, i)
		}
		if _, err := fiscal.Alicuota(it.AlicuotaID); err != nil {
			return nil, fmt.Errorf("ítem %d: %w", i, err)
		}
		items = append(items, entity.ItemVenta{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			AlicuotaID:     it.AlicuotaID,
		})
	}

	cliente := entity.RefByID[entity.Cliente](in.ClienteID)
	if in.ClienteID != "" {
		resuelto, err := uc.clienteRepo.GetByID(in.ClienteID)
		if err != nil || resuelto == nil {
			return nil, domain.ErrNotFound
		}
		cliente = entity.RefResolved(in.ClienteID, resuelto)
	}

	now := time.Now()
	venta := &entity.Venta{
		ID:         uuid.New().String(),
		Cliente:    cliente,
		VendedorID: vendedorID,
		Fecha:      now,
		Items:      items,
		CostoEnvio: in.CostoEnvio,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.ventaRepo.Create(venta); err != nil {
		return nil, err
	}
	return toVentaResponse(venta), nil
}

// GetVenta devuelve una venta por ID.
func (uc *VentaUseCase) GetVenta(ctx context.Context, id string) (*dto.VentaResponse, error) {
	venta, err := uc.ventaRepo.GetByID(id)
	if err != nil || venta == nil {
		return nil, domain.ErrNotFound
	}
	return toVentaResponse(venta), nil
}

// ListVentas lista ventas paginadas.
func (uc *VentaUseCase) ListVentas(ctx context.Context, limit, offset int) ([]*dto.VentaResponse, error) {
	list, err := uc.ventaRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.VentaResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toVentaResponse(v))
	}
	return out, nil
}

// Total calcula el total de la venta (precios finales más envío), solo para
// mostrar en el listado: el desglose fiscal lo hace la emisión.
func Total(v *entity.Venta) decimal.Decimal {
	total := v.CostoEnvio
	for _, it := range v.Items {
		total = total.Add(it.Cantidad.Mul(it.PrecioUnitario))
	}
	return total
}

func toVentaResponse(v *entity.Venta) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:            v.ID,
		ClienteID:     v.Cliente.ID(),
		VendedorID:    v.VendedorID,
		Fecha:         v.Fecha.Format("2006-01-02"),
		CostoEnvio:    v.CostoEnvio,
		ComprobanteID: v.ComprobanteID,
		Items:         make([]dto.ItemVentaRequest, 0, len(v.Items)),
	}
	for _, it := range v.Items {
		resp.Items = append(resp.Items, dto.ItemVentaRequest{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			AlicuotaID:     it.AlicuotaID,
		})
	}
	return resp
}
