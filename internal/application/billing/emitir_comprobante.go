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
	"github.com/lvidela/facturador-api/pkg/afip"
)

// EmitirComprobanteUseCase arma el comprobante DRAFT de una venta: resuelve el
// tipo según el perfil fiscal del receptor, discrimina el IVA por línea y
// persiste comprobante, líneas y el vínculo con la venta en una transacción.
type EmitirComprobanteUseCase struct {
	txRunner        BillingTxRunner
	ventaRepo       repository.VentaRepository
	clienteRepo     repository.ClienteRepository
	comprobanteRepo repository.ComprobanteRepository
	emisor          EmisorConfig
}

// NewEmitirComprobanteUseCase construye el caso de uso.
func NewEmitirComprobanteUseCase(
	txRunner BillingTxRunner,
	ventaRepo repository.VentaRepository,
	clienteRepo repository.ClienteRepository,
	comprobanteRepo repository.ComprobanteRepository,
	emisor EmisorConfig,
) *EmitirComprobanteUseCase {
	return &EmitirComprobanteUseCase{
		txRunner:        txRunner,
		ventaRepo:       ventaRepo,
		clienteRepo:     clienteRepo,
		comprobanteRepo: comprobanteRepo,
		emisor:          emisor,
	}
}

// alícuota general para el costo de envío (21%).
const alicuotaEnvio = afip.AlicIVA21

// Emitir arma y persiste el comprobante DRAFT de la venta. Una venta factura
// una sola vez: si ya tiene comprobante retorna ErrDuplicate.
func (uc *EmitirComprobanteUseCase) Emitir(ctx context.Context, ventaID string) (*dto.ComprobanteResponse, error) {
	venta, err := uc.ventaRepo.GetByID(ventaID)
	if err != nil || venta == nil {
		return nil, domain.ErrNotFound
	}
	if venta.ComprobanteID != "" {
		return nil, fmt.Errorf("%w: la venta %s ya tiene comprobante %s", domain.ErrDuplicate, ventaID, venta.ComprobanteID)
	}

	receptor, err := uc.perfilReceptor(venta)
	if err != nil {
		return nil, err
	}

	res, err := fiscal.Resolver(entity.KindFactura, receptor)
	if err != nil {
		return nil, err
	}

	comprobante, err := uc.armar(venta, receptor, res.CbteTipo)
	if err != nil {
		return nil, err
	}
	if err := fiscal.ValidarComprobante(comprobante); err != nil {
		return nil, err
	}

	err = uc.txRunner.RunBilling(ctx, func(
		ventaRepo repository.VentaRepository,
		comprobanteRepo repository.ComprobanteRepository,
	) error {
		if err := comprobanteRepo.Create(comprobante); err != nil {
			return err
		}
		for i := range comprobante.Items {
			if err := comprobanteRepo.CreateItem(&comprobante.Items[i]); err != nil {
				return err
			}
		}
		return ventaRepo.SetComprobante(venta.ID, comprobante.ID)
	})
	if err != nil {
		return nil, err
	}

	return toComprobanteResponse(comprobante, uc.emisor), nil
}

// perfilReceptor resuelve la referencia al cliente de la venta. Si la venta
// llegó con el cliente ya cargado se usa ese; si no, se busca por ID.
func (uc *EmitirComprobanteUseCase) perfilReceptor(venta *entity.Venta) (entity.PerfilFiscal, error) {
	if cliente, ok := venta.Cliente.Resolved(); ok {
		return cliente.Perfil, nil
	}
	id := venta.Cliente.ID()
	if id == "" {
		// Venta de mostrador sin cliente: consumidor final sin identificar.
		return entity.PerfilFiscal{
			Condicion: entity.CondicionConsumidorFinal,
			TipoDoc:   entity.DocSinIdentificar,
		}, nil
	}
	cliente, err := uc.clienteRepo.GetByID(id)
	if err != nil || cliente == nil {
		return entity.PerfilFiscal{}, domain.ErrNotFound
	}
	return cliente.Perfil, nil
}

// armar construye el comprobante DRAFT: una línea por ítem de venta más la
// línea de envío si corresponde, todas con su IVA discriminado.
func (uc *EmitirComprobanteUseCase) armar(venta *entity.Venta, receptor entity.PerfilFiscal, cbteTipo int) (*entity.Comprobante, error) {
	if len(venta.Items) == 0 {
		return nil, fmt.Errorf("%w: la venta no tiene ítems", domain.ErrInvalidInput)
	}

	id := uuid.New().String()
	now := time.Now()

	items := make([]entity.ItemComprobante, 0, len(venta.Items)+1)
	for _, iv := range venta.Items {
		item, err := fiscal.ItemDesdePrecioFinal(iv)
		if err != nil {
			return nil, err
		}
		item.ID = uuid.New().String()
		item.ComprobanteID = id
		items = append(items, item)
	}
	if venta.CostoEnvio.IsPositive() {
		envio, err := fiscal.ItemDesdePrecioFinal(entity.ItemVenta{
			Descripcion:    "Costo de envío",
			Cantidad:       decimal.NewFromInt(1),
			PrecioUnitario: venta.CostoEnvio,
			AlicuotaID:     alicuotaEnvio,
		})
		if err != nil {
			return nil, err
		}
		envio.ID = uuid.New().String()
		envio.ComprobanteID = id
		items = append(items, envio)
	}

	desglose, err := fiscal.DesgloseDesdeItems(items, fiscal.ExtrasDesglose{})
	if err != nil {
		return nil, err
	}

	return &entity.Comprobante{
		ID:           id,
		Kind:         entity.KindFactura,
		CbteTipo:     cbteTipo,
		PuntoVenta:   uc.emisor.PuntoVenta,
		Concepto:     uc.emisor.Concepto,
		FechaEmision: now,
		Receptor:     receptor,
		Items:        items,
		Desglose:     desglose,
		Moneda:       uc.emisor.Moneda,
		Cotizacion:   uc.emisor.Cotizacion,
		Estado:       entity.EstadoDraft,
		VentaID:      venta.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetComprobante devuelve un comprobante con sus líneas.
func (uc *EmitirComprobanteUseCase) GetComprobante(ctx context.Context, id string) (*dto.ComprobanteResponse, error) {
	c, err := uc.comprobanteRepo.GetByID(id)
	if err != nil || c == nil {
		return nil, domain.ErrNotFound
	}
	if len(c.Items) == 0 {
		items, err := uc.comprobanteRepo.GetItemsByComprobanteID(id)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			c.Items = append(c.Items, *it)
		}
	}
	return toComprobanteResponse(c, uc.emisor), nil
}

// GetEstado devuelve la vista ligera para el polling de autorización.
func (uc *EmitirComprobanteUseCase) GetEstado(ctx context.Context, id string) (*dto.ComprobanteEstadoDTO, error) {
	c, err := uc.comprobanteRepo.GetByID(id)
	if err != nil || c == nil {
		return nil, domain.ErrNotFound
	}
	out := &dto.ComprobanteEstadoDTO{
		ID:           c.ID,
		Estado:       c.Estado,
		Numero:       c.Numero,
		CAE:          c.CAE,
		ErrorDetalle: c.ErrorDetalle,
	}
	if c.CAEVencimiento != nil {
		out.CAEVencimiento = c.CAEVencimiento.Format("2006-01-02")
	}
	return out, nil
}

// ListComprobantes lista comprobantes paginados.
func (uc *EmitirComprobanteUseCase) ListComprobantes(ctx context.Context, limit, offset int) ([]*dto.ComprobanteResponse, error) {
	list, err := uc.comprobanteRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ComprobanteResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toComprobanteResponse(c, uc.emisor))
	}
	return out, nil
}
