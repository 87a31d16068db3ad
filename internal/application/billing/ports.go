package billing

import (
	"context"

	"github.com/lvidela/facturador-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye
// los repos de ventas y comprobantes. El commit es responsabilidad del runner:
// si fn retorna error se hace rollback completo.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		ventaRepo repository.VentaRepository,
		comprobanteRepo repository.ComprobanteRepository,
	) error) error
}

// EmisorConfig datos fiscales del emisor, inyectados por configuración.
// Ninguna pieza del dominio los lee de un global: llegan siempre por acá.
type EmisorConfig struct {
	CUIT        int64 // CUIT del emisor (header Auth del WS y QR)
	RazonSocial string
	PuntoVenta  int // punto de venta habilitado ante AFIP
	Concepto    int // concepto por defecto (1=productos)
	Moneda      string
	Cotizacion  decimal.Decimal
}
