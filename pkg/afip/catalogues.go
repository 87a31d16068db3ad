// Package afip contiene catálogos y validaciones alineados a las tablas del
// servicio de Facturación Electrónica AFIP (Argentina), WSFEv1.
package afip

// =============================================================================
// Tipos de comprobante (tabla FEParamGetTiposCbte)
// Cada clase legal (A/B/C) tiene su factura, nota de débito y nota de crédito.
// =============================================================================

const (
	CbteFacturaA     = 1  // Factura A (responsable inscripto)
	CbteNotaDebitoA  = 2  // Nota de Débito A
	CbteNotaCreditoA = 3  // Nota de Crédito A
	CbteFacturaB     = 6  // Factura B (consumidor final, exento, monotributo)
	CbteNotaDebitoB  = 7  // Nota de Débito B
	CbteNotaCreditoB = 8  // Nota de Crédito B
	CbteFacturaC     = 11 // Factura C (emisor no inscripto)
	CbteNotaDebitoC  = 12 // Nota de Débito C
	CbteNotaCreditoC = 13 // Nota de Crédito C
)

// ValidCbteTipos contiene los tipos de comprobante que este sistema emite.
var ValidCbteTipos = map[int]bool{
	CbteFacturaA: true, CbteNotaDebitoA: true, CbteNotaCreditoA: true,
	CbteFacturaB: true, CbteNotaDebitoB: true, CbteNotaCreditoB: true,
	CbteFacturaC: true, CbteNotaDebitoC: true, CbteNotaCreditoC: true,
}

// =============================================================================
// Tipos de documento del receptor (tabla FEParamGetTiposDoc)
// =============================================================================

const (
	DocTipoCUIT            = 80 // CUIT (persona jurídica o física inscripta)
	DocTipoCUIL            = 86 // CUIL
	DocTipoDNI             = 96 // DNI
	DocTipoConsumidorFinal = 99 // Sin identificar / consumidor final
)

// =============================================================================
// Alícuotas de IVA (tabla FEParamGetTiposIva). Id usado en el array AlicIva.
// =============================================================================

const (
	AlicIVA0    = 3 // 0%
	AlicIVA10_5 = 4 // 10.5%
	AlicIVA21   = 5 // 21%
	AlicIVA27   = 6 // 27%
	AlicIVA5    = 8 // 5%
	AlicIVA2_5  = 9 // 2.5%
)

// =============================================================================
// Conceptos (tabla FEParamGetTiposConcepto)
// =============================================================================

const (
	ConceptoProductos          = 1
	ConceptoServicios          = 2
	ConceptoProductosServicios = 3
)

// =============================================================================
// Monedas (tabla FEParamGetTiposMonedas), códigos de uso frecuente
// =============================================================================

const (
	MonedaPesos   = "PES" // Peso argentino (cotización 1)
	MonedaDolares = "DOL" // Dólar estadounidense
)
