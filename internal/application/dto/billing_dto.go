package dto

import "github.com/shopspring/decimal"

// CreateClienteRequest body para POST /api/clientes.
// condicion_iva y tipo_doc usan los valores del dominio (RESPONSABLE_INSCRIPTO,
// EXENTO, CONSUMIDOR_FINAL, MONOTRIBUTO / CUIT, CUIL, DNI, CONSUMIDOR_FINAL).
type CreateClienteRequest struct {
	Nombre       string `json:"nombre"`
	CondicionIVA string `json:"condicion_iva"`
	TipoDoc      string `json:"tipo_doc"`
	NroDoc       string `json:"nro_doc,omitempty"`
	RazonSocial  string `json:"razon_social,omitempty"`
	Email        string `json:"email,omitempty"`
	Telefono     string `json:"telefono,omitempty"`
}

// ClienteResponse cliente en respuestas.
type ClienteResponse struct {
	ID           string `json:"id"`
	Nombre       string `json:"nombre"`
	CondicionIVA string `json:"condicion_iva"`
	TipoDoc      string `json:"tipo_doc"`
	NroDoc       string `json:"nro_doc,omitempty"`
	RazonSocial  string `json:"razon_social,omitempty"`
	Email        string `json:"email,omitempty"`
	Telefono     string `json:"telefono,omitempty"`
}

// ItemVentaRequest línea de venta: precio final unitario (IVA incluido) y
// alícuota del catálogo AFIP (3, 4, 5, 6, 8, 9).
type ItemVentaRequest struct {
	Descripcion    string          `json:"descripcion"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	AlicuotaID     int             `json:"alicuota_id"`
}

// CreateVentaRequest body para POST /api/ventas.
type CreateVentaRequest struct {
	ClienteID  string             `json:"cliente_id"`
	Items      []ItemVentaRequest `json:"items"`
	CostoEnvio decimal.Decimal    `json:"costo_envio,omitempty"`
}

// VentaResponse venta en respuestas.
type VentaResponse struct {
	ID            string             `json:"id"`
	ClienteID     string             `json:"cliente_id"`
	VendedorID    string             `json:"vendedor_id"`
	Fecha         string             `json:"fecha"`
	Items         []ItemVentaRequest `json:"items"`
	CostoEnvio    decimal.Decimal    `json:"costo_envio"`
	ComprobanteID string             `json:"comprobante_id,omitempty"`
}

// CreateNotaRequest body para POST /api/comprobantes/:id/notas.
// kind es NOTA_CREDITO o NOTA_DEBITO. Si items va vacío la nota anula el
// comprobante de origen completo (se copian todas sus líneas).
type CreateNotaRequest struct {
	Kind  string             `json:"kind"`
	Items []ItemVentaRequest `json:"items,omitempty"`
}

// DesgloseResponse desglose fiscal de un comprobante.
type DesgloseResponse struct {
	Neto          decimal.Decimal `json:"neto"`
	IVA           decimal.Decimal `json:"iva"`
	Exento        decimal.Decimal `json:"exento"`
	NoGravado     decimal.Decimal `json:"no_gravado"`
	OtrosTributos decimal.Decimal `json:"otros_tributos"`
	Total         decimal.Decimal `json:"total"`
}

// ItemComprobanteResponse línea de comprobante con su IVA discriminado.
type ItemComprobanteResponse struct {
	ID             string          `json:"id"`
	Descripcion    string          `json:"descripcion"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	AlicuotaID     int             `json:"alicuota_id"`
	BaseImponible  decimal.Decimal `json:"base_imponible"`
	ImporteIVA     decimal.Decimal `json:"importe_iva"`
}

// ComprobanteResponse comprobante completo para GET /api/comprobantes/:id.
type ComprobanteResponse struct {
	ID             string                    `json:"id"`
	Kind           string                    `json:"kind"`
	CbteTipo       int                       `json:"cbte_tipo"`
	PuntoVenta     int                       `json:"punto_venta"`
	Numero         *int64                    `json:"numero,omitempty"`
	Concepto       int                       `json:"concepto"`
	FechaEmision   string                    `json:"fecha_emision"`
	Receptor       ClienteResponse           `json:"receptor"`
	Items          []ItemComprobanteResponse `json:"items"`
	Desglose       DesgloseResponse          `json:"desglose"`
	Moneda         string                    `json:"moneda"`
	Cotizacion     decimal.Decimal           `json:"cotizacion"`
	Estado         string                    `json:"estado"`
	CAE            string                    `json:"cae,omitempty"`
	CAEVencimiento string                    `json:"cae_vencimiento,omitempty"`
	ErrorDetalle   string                    `json:"error_detalle,omitempty"`
	VentaID        string                    `json:"venta_id,omitempty"`
	OrigenID       string                    `json:"origen_id,omitempty"`
	QRURL          string                    `json:"qr_url,omitempty"` // URL del QR RG 4892; solo con CAE
}

// ComprobanteEstadoDTO respuesta ligera para el endpoint de polling
// GET /api/comprobantes/:id/estado. El frontend consulta hasta que estado sea
// AUTHORIZED o ERROR.
type ComprobanteEstadoDTO struct {
	ID             string `json:"id"`
	Estado         string `json:"estado"` // DRAFT|PENDING|AUTHORIZED|ERROR
	Numero         *int64 `json:"numero,omitempty"`
	CAE            string `json:"cae,omitempty"`
	CAEVencimiento string `json:"cae_vencimiento,omitempty"`
	ErrorDetalle   string `json:"error_detalle,omitempty"` // rechazo de AFIP o falla de transporte
}
