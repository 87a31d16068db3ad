package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemVenta línea de una venta tal como la carga el vendedor: precio final
// (IVA incluido) y alícuota del producto. La discriminación neto/IVA la hace
// el cálculo de importes al armar el comprobante.
type ItemVenta struct {
	Descripcion    string
	Cantidad       decimal.Decimal
	PrecioUnitario decimal.Decimal // precio final unitario (IVA incluido)
	AlicuotaID     int
}

// Venta venta registrada en el back-office. Es la propietaria del comprobante
// que la factura (ComprobanteID).
type Venta struct {
	ID            string
	Cliente       Ref[Cliente] // resuelta en el borde antes de facturar
	VendedorID    string
	Fecha         time.Time
	Items         []ItemVenta
	CostoEnvio    decimal.Decimal // costo de envío con IVA incluido; 0 si no aplica
	ComprobanteID string          // comprobante emitido para esta venta (vacío hasta facturar)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
