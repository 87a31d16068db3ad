package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lvidela/facturador-api/internal/application/dto"
	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/fiscal"
	"github.com/lvidela/facturador-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// DerivarNotaUseCase arma notas de crédito y débito a partir de un comprobante
// autorizado. La nota hereda la clase legal del origen y copia su receptor tal
// cual quedó congelado al autorizar, aunque el cliente haya cambiado de
// condición después.
type DerivarNotaUseCase struct {
	txRunner        BillingTxRunner
	comprobanteRepo repository.ComprobanteRepository
	emisor          EmisorConfig
}

// NewDerivarNotaUseCase construye el caso de uso.
func NewDerivarNotaUseCase(
	txRunner BillingTxRunner,
	comprobanteRepo repository.ComprobanteRepository,
	emisor EmisorConfig,
) *DerivarNotaUseCase {
	return &DerivarNotaUseCase{
		txRunner:        txRunner,
		comprobanteRepo: comprobanteRepo,
		emisor:          emisor,
	}
}

// Derivar crea la nota DRAFT contra el comprobante de origen. kind es
// KindNotaCredito o KindNotaDebito. Si items va vacío la nota replica todas
// las líneas del origen (anulación total). El total de la nota no se topea
// contra el saldo del origen: notas de débito legítimas lo exceden (intereses)
// y el control de saldo es un problema de cuenta corriente, no de emisión.
func (uc *DerivarNotaUseCase) Derivar(ctx context.Context, origenID, kind string, items []dto.ItemVentaRequest) (*dto.ComprobanteResponse, error) {
	if kind != entity.KindNotaCredito && kind != entity.KindNotaDebito {
		return nil, fmt.Errorf("%w: %q no es una clase de nota", domain.ErrInvalidInput, kind)
	}
	origen, err := uc.comprobanteRepo.GetByID(origenID)
	if err != nil || origen == nil {
		return nil, domain.ErrNotFound
	}
	if origen.Estado != entity.EstadoAutorizado {
		return nil, fmt.Errorf("%w: el comprobante %s está en %s", domain.ErrOriginalNoAutorizado, origenID, origen.Estado)
	}

	// La clase sale del tipo del origen, no del perfil actual del cliente.
	cbteTipo, err := fiscal.CbteTipoParaNota(kind, origen.CbteTipo)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	lineas, err := uc.lineasNota(id, origen, items)
	if err != nil {
		return nil, err
	}
	desglose, err := fiscal.DesgloseDesdeItems(lineas, fiscal.ExtrasDesglose{})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	nota := &entity.Comprobante{
		ID:           id,
		Kind:         kind,
		CbteTipo:     cbteTipo,
		PuntoVenta:   origen.PuntoVenta,
		Concepto:     origen.Concepto,
		FechaEmision: now,
		Receptor:     origen.Receptor,
		Items:        lineas,
		Desglose:     desglose,
		Moneda:       origen.Moneda,
		Cotizacion:   origen.Cotizacion,
		Estado:       entity.EstadoDraft,
		OrigenID:     origen.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := fiscal.ValidarComprobante(nota); err != nil {
		return nil, err
	}

	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.VentaRepository,
		comprobanteRepo repository.ComprobanteRepository,
	) error {
		if err := comprobanteRepo.Create(nota); err != nil {
			return err
		}
		for i := range nota.Items {
			if err := comprobanteRepo.CreateItem(&nota.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toComprobanteResponse(nota, uc.emisor), nil
}

// lineasNota arma las líneas de la nota: las pedidas, o todas las del origen.
func (uc *DerivarNotaUseCase) lineasNota(notaID string, origen *entity.Comprobante, items []dto.ItemVentaRequest) ([]entity.ItemComprobante, error) {
	if len(items) == 0 {
		lineas := origen.Items
		if len(lineas) == 0 {
			cargadas, err := uc.comprobanteRepo.GetItemsByComprobanteID(origen.ID)
			if err != nil {
				return nil, err
			}
			for _, it := range cargadas {
				lineas = append(lineas, *it)
			}
		}
		if len(lineas) == 0 {
			return nil, fmt.Errorf("%w: el comprobante de origen no tiene líneas", domain.ErrInvalidInput)
		}
		out := make([]entity.ItemComprobante, 0, len(lineas))
		for _, it := range lineas {
			copia := it
			copia.ID = uuid.New().String()
			copia.ComprobanteID = notaID
			out = append(out, copia)
		}
		return out, nil
	}

	out := make([]entity.ItemComprobante, 0, len(items))
	for _, in := range items {
		linea, err := fiscal.ItemDesdePrecioFinal(entity.ItemVenta{
			Descripcion:    in.Descripcion,
			Cantidad:       in.Cantidad,
			PrecioUnitario: in.PrecioUnitario,
			AlicuotaID:     in.AlicuotaID,
		})
		if err != nil {
			return nil, err
		}
		linea.ID = uuid.New().String()
		linea.ComprobanteID = notaID
		out = append(out, linea)
	}
	return out, nil
}

// ListNotas devuelve las notas emitidas contra un comprobante de origen.
func (uc *DerivarNotaUseCase) ListNotas(ctx context.Context, origenID string) ([]*dto.ComprobanteResponse, error) {
	notas, err := uc.comprobanteRepo.ListByOrigen(origenID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ComprobanteResponse, 0, len(notas))
	for _, n := range notas {
		out = append(out, toComprobanteResponse(n, uc.emisor))
	}
	return out, nil
}

// SaldoNotas suma lo acreditado y debitado contra un origen, solo a título
// informativo para la vista de cuenta corriente.
func (uc *DerivarNotaUseCase) SaldoNotas(ctx context.Context, origenID string) (acreditado, debitado decimal.Decimal, err error) {
	notas, err := uc.comprobanteRepo.ListByOrigen(origenID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	for _, n := range notas {
		if n.Estado != entity.EstadoAutorizado {
			continue
		}
		switch n.Kind {
		case entity.KindNotaCredito:
			acreditado = acreditado.Add(n.Desglose.Total)
		case entity.KindNotaDebito:
			debitado = debitado.Add(n.Desglose.Total)
		}
	}
	return acreditado, debitado, nil
}
