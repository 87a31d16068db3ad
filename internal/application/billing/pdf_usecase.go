package billing

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/fiscal"
	"github.com/lvidela/facturador-api/internal/domain/repository"
	"github.com/lvidela/facturador-api/pkg/afip"
)

// ComprobantePDFGenerator puerto de salida para la representación gráfica.
// La implementación concreta vive en infrastructure/pdf.
type ComprobantePDFGenerator interface {
	GenerarComprobantePDF(ctx context.Context, c *entity.Comprobante, emisor EmisorConfig, qrURL string) ([]byte, error)
}

// PDFUseCase genera la representación gráfica (PDF) de un comprobante.
// Solo se permite sobre comprobantes autorizados: sin CAE no hay documento
// fiscal que imprimir.
type PDFUseCase struct {
	comprobanteRepo repository.ComprobanteRepository
	generator       ComprobantePDFGenerator
	emisor          EmisorConfig
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	comprobanteRepo repository.ComprobanteRepository,
	generator ComprobantePDFGenerator,
	emisor EmisorConfig,
) *PDFUseCase {
	return &PDFUseCase{
		comprobanteRepo: comprobanteRepo,
		generator:       generator,
		emisor:          emisor,
	}
}

// DownloadComprobantePDF carga el comprobante, verifica que está autorizado y
// genera el PDF con el QR fiscal.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si el comprobante no existe.
//   - domain.ErrEstadoInvalido  si todavía no tiene CAE.
func (uc *PDFUseCase) DownloadComprobantePDF(ctx context.Context, id string) (pdfBytes []byte, filename string, err error) {
	c, err := uc.comprobanteRepo.GetByID(id)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener comprobante: %w", err)
	}
	if c == nil {
		return nil, "", domain.ErrNotFound
	}
	if c.Estado != entity.EstadoAutorizado || c.CAE == "" || c.Numero == nil {
		return nil, "", fmt.Errorf("%w: el comprobante está en %s, solo se imprime un comprobante autorizado",
			domain.ErrEstadoInvalido, c.Estado)
	}

	if len(c.Items) == 0 {
		items, err := uc.comprobanteRepo.GetItemsByComprobanteID(id)
		if err != nil {
			return nil, "", fmt.Errorf("pdf: obtener líneas: %w", err)
		}
		for _, it := range items {
			c.Items = append(c.Items, *it)
		}
	}

	qrURL, err := uc.qrURL(c)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: armar QR: %w", err)
	}

	pdfBytes, err = uc.generator.GenerarComprobantePDF(ctx, c, uc.emisor, qrURL)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("comprobante_%04d-%08d.pdf", c.PuntoVenta, *c.Numero)
	return pdfBytes, filename, nil
}

func (uc *PDFUseCase) qrURL(c *entity.Comprobante) (string, error) {
	docCodigo, err := fiscal.DocCodigo(c.Receptor.TipoDoc)
	if err != nil {
		return "", err
	}
	var docNro int64
	if c.Receptor.NroDoc != "" {
		docNro, err = strconv.ParseInt(c.Receptor.NroDoc, 10, 64)
		if err != nil {
			return "", fmt.Errorf("número de documento %q no numérico", c.Receptor.NroDoc)
		}
	}
	return afip.BuildQRURL(afip.QRParams{
		IssueDate:    c.FechaEmision,
		IssuerCUIT:   uc.emisor.CUIT,
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
}
