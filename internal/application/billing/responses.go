package billing

import (
	"strconv"

	"github.com/lvidela/facturador-api/internal/application/dto"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/fiscal"
	"github.com/lvidela/facturador-api/pkg/afip"
)

// toComprobanteResponse mapea la entidad al DTO de respuesta. El QR solo se
// genera cuando el comprobante está autorizado (requiere CAE y número).
func toComprobanteResponse(c *entity.Comprobante, emisor EmisorConfig) *dto.ComprobanteResponse {
	resp := &dto.ComprobanteResponse{
		ID:           c.ID,
		Kind:         c.Kind,
		CbteTipo:     c.CbteTipo,
		PuntoVenta:   c.PuntoVenta,
		Numero:       c.Numero,
		Concepto:     c.Concepto,
		FechaEmision: c.FechaEmision.Format("2006-01-02"),
		Receptor: dto.ClienteResponse{
			CondicionIVA: string(c.Receptor.Condicion),
			TipoDoc:      string(c.Receptor.TipoDoc),
			NroDoc:       c.Receptor.NroDoc,
			RazonSocial:  c.Receptor.RazonSocial,
		},
		Desglose: dto.DesgloseResponse{
			Neto:          c.Desglose.Neto,
			IVA:           c.Desglose.IVA,
			Exento:        c.Desglose.Exento,
			NoGravado:     c.Desglose.NoGravado,
			OtrosTributos: c.Desglose.OtrosTributos,
			Total:         c.Desglose.Total,
		},
		Moneda:       c.Moneda,
		Cotizacion:   c.Cotizacion,
		Estado:       c.Estado,
		CAE:          c.CAE,
		ErrorDetalle: c.ErrorDetalle,
		VentaID:      c.VentaID,
		OrigenID:     c.OrigenID,
		Items:        make([]dto.ItemComprobanteResponse, 0, len(c.Items)),
	}
	if c.CAEVencimiento != nil {
		resp.CAEVencimiento = c.CAEVencimiento.Format("2006-01-02")
	}
	for _, it := range c.Items {
		resp.Items = append(resp.Items, dto.ItemComprobanteResponse{
			ID:             it.ID,
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			AlicuotaID:     it.AlicuotaID,
			BaseImponible:  it.BaseImponible,
			ImporteIVA:     it.ImporteIVA,
		})
	}

	if c.Estado == entity.EstadoAutorizado && c.Numero != nil {
		docCodigo, err := fiscal.DocCodigo(c.Receptor.TipoDoc)
		if err == nil {
			docNro, _ := strconv.ParseInt(c.Receptor.NroDoc, 10, 64)
			url, qrErr := afip.BuildQRURL(afip.QRParams{
				IssueDate:    c.FechaEmision,
				IssuerCUIT:   emisor.CUIT,
				PointOfSale:  c.PuntoVenta,
				CbteTipo:     c.CbteTipo,
				Sequence:     *c.Numero,
				Total:        c.Desglose.Total,
				Currency:     c.Moneda,
				ExchangeRate: c.Cotizacion,
				DocTipo:      docCodigo,
				DocNro:       docNro,
				CAE:          c.CAE,
			})
			if qrErr == nil {
				resp.QRURL = url
			}
		}
	}
	return resp
}
