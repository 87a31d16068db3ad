// Package afip implementa el cliente del servicio de Facturación Electrónica
// de AFIP (WSFEv1) y el manejo del ticket de acceso WSAA.
package afip

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AlicuotaIVA una entrada del array AlicIva del pedido: subtotal de base
// imponible e IVA por alícuota.
type AlicuotaIVA struct {
	ID      int             // Id del catálogo AFIP (3, 4, 5, 6, 8, 9)
	Base    decimal.Decimal // base imponible acumulada para la alícuota
	Importe decimal.Decimal // IVA acumulado para la alícuota
}

// SolicitudCAE pedido de autorización de un comprobante (FECAESolicitar).
// Los importes van redondeados a 2 decimales; el número de comprobante
// (CbteNumero) lo fija quien envía a partir del último autorizado.
type SolicitudCAE struct {
	CbteTipo     int
	PuntoVenta   int
	Concepto     int
	DocTipo      int   // código de documento del receptor (80, 86, 96, 99)
	DocNro       int64 // 0 para consumidor final sin identificar
	CbteNumero   int64 // número a solicitar (último autorizado + 1)
	FechaEmision time.Time
	ImpTotal     decimal.Decimal
	ImpNeto      decimal.Decimal
	ImpIVA       decimal.Decimal
	ImpOpEx      decimal.Decimal // exento
	ImpTotConc   decimal.Decimal // no gravado
	ImpTrib      decimal.Decimal // otros tributos
	Moneda       string
	Cotizacion   decimal.Decimal
	Alicuotas    []AlicuotaIVA
	// Comprobante asociado (obligatorio en notas de crédito/débito).
	CbteAsocTipo   int
	CbteAsocPtoVta int
	CbteAsocNro    int64
}

// ResultadoCAE respuesta de AFIP a una solicitud de autorización.
type ResultadoCAE struct {
	Aprobado       bool
	CAE            string    // vacío si rechazado
	CAEVencimiento time.Time // vencimiento del CAE (FchVtoCae)
	Numero         int64     // número de comprobante confirmado
	Observaciones  string    // observaciones/errores devueltos por AFIP
}

// Autorizador define el puerto de salida hacia el WS de AFIP. La
// implementación concreta usa SOAP; para tests se inyecta un doble.
type Autorizador interface {
	// Autorizar envía la solicitud y bloquea hasta la respuesta o el timeout
	// del contexto. Un error de retorno es de transporte: el estado remoto
	// queda desconocido y debe reconciliarse antes de reintentar.
	Autorizar(ctx context.Context, s *SolicitudCAE) (*ResultadoCAE, error)
	// UltimoAutorizado consulta el último número autorizado para el par
	// (punto de venta, tipo). La numeración la posee AFIP: el valor local es
	// solo informativo.
	UltimoAutorizado(ctx context.Context, puntoVenta, cbteTipo int) (int64, error)
}
