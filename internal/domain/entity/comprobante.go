package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clase de comprobante (factura o nota derivada).
const (
	KindFactura     = "FACTURA"
	KindNotaCredito = "NOTA_CREDITO"
	KindNotaDebito  = "NOTA_DEBITO"
)

// Estados del ciclo de autorización ante AFIP.
//
//	DRAFT → PENDING → AUTHORIZED (terminal)
//	        PENDING → ERROR      (reenvíable: vuelve a PENDING con submit)
const (
	EstadoDraft      = "DRAFT"      // armado localmente, editable por el cálculo de importes
	EstadoPending    = "PENDING"    // enviado a AFIP, respuesta pendiente
	EstadoAutorizado = "AUTHORIZED" // CAE otorgado; comprobante inmutable
	EstadoError      = "ERROR"      // rechazo o falla de transporte; diagnóstico en ErrorDetalle
)

// Desglose descompone el importe total de un comprobante en sus componentes
// fiscales. Invariante: Total == Neto + IVA + Exento + NoGravado + OtrosTributos
// a 2 decimales; todos los campos son no negativos.
type Desglose struct {
	Neto          decimal.Decimal
	IVA           decimal.Decimal
	Exento        decimal.Decimal
	NoGravado     decimal.Decimal
	OtrosTributos decimal.Decimal
	Total         decimal.Decimal
}

// ItemComprobante línea de un comprobante con su IVA ya discriminado.
// Invariante: BaseImponible + ImporteIVA reconstruye el precio final de la
// línea; ImporteIVA ≈ BaseImponible × alícuota dentro de la tolerancia de
// redondeo.
type ItemComprobante struct {
	ID             string
	ComprobanteID  string
	Descripcion    string
	Cantidad       decimal.Decimal
	PrecioUnitario decimal.Decimal // precio final unitario (IVA incluido)
	AlicuotaID     int             // Id de alícuota del catálogo AFIP
	BaseImponible  decimal.Decimal
	ImporteIVA     decimal.Decimal
}

// Comprobante documento fiscal (factura o nota). Es propiedad de la venta que
// lo originó (facturas) o de la nota misma; una nota referencia a su
// comprobante de origen por ID (relación de consulta, nunca de propiedad)
// y el origen jamás referencia a sus notas (sin ciclos).
type Comprobante struct {
	ID             string
	Kind           string // KindFactura | KindNotaCredito | KindNotaDebito
	CbteTipo       int    // tipo de comprobante del catálogo AFIP (1, 3, 6, ...)
	PuntoVenta     int
	Numero         *int64 // asignado por AFIP al autorizar; nil en DRAFT
	Concepto       int
	FechaEmision   time.Time
	Receptor       PerfilFiscal
	Items          []ItemComprobante
	Desglose       Desglose
	Moneda         string
	Cotizacion     decimal.Decimal
	Estado         string
	CAE            string     // presente si y solo si Estado == AUTHORIZED
	CAEVencimiento *time.Time // vencimiento del CAE otorgado
	ErrorDetalle   string     // diagnóstico del último ERROR (rechazo o transporte)
	VentaID        string     // venta propietaria (vacío en notas)
	OrigenID       string     // comprobante de origen (solo notas)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EsNota indica si el comprobante es una nota de crédito o débito.
func (c *Comprobante) EsNota() bool {
	return c.Kind == KindNotaCredito || c.Kind == KindNotaDebito
}

// PuedeEnviarse indica si el estado actual admite un envío a AFIP.
// Solo DRAFT y ERROR son reenviables; AUTHORIZED es terminal.
func (c *Comprobante) PuedeEnviarse() bool {
	return c.Estado == EstadoDraft || c.Estado == EstadoError
}
