// Package pdf implementa la representación gráfica de comprobantes
// electrónicos autorizados (RG 4892/2020: QR fiscal obligatorio).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + CUIT  │  Letra + N° + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RECEPTOR: Razón social + documento + condición IVA          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Alíc. | Importe        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Neto / IVA / Exento / No gravado / TOTAL           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: CAE + Vencimiento + QR fiscal                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/lvidela/facturador-api/internal/application/billing"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/fiscal"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 20, Green: 54, Blue: 102}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.ComprobantePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerarComprobantePDF genera el PDF del comprobante autorizado y devuelve
// sus bytes. qrURL es la URL del QR fiscal ya armada por el caso de uso.
func (g *MarotoPDFGenerator) GenerarComprobantePDF(
	_ context.Context,
	c *entity.Comprobante,
	emisor appbilling.EmisorConfig,
	qrURL string,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(tituloComprobante(c), true).
		WithAuthor(emisor.RazonSocial, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(c, emisor))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(receptorRow(c.Receptor))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(c.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(c.Desglose))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range caeFooterRows(c, qrURL) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: razón social + CUIT (izq), letra grande + N° + fecha (der).
func headerRow(c *entity.Comprobante, emisor appbilling.EmisorConfig) core.Row {
	numero := fmt.Sprintf("%04d-%08d", c.PuntoVenta, derefNumero(c.Numero))
	fecha := c.FechaEmision.Format("02/01/2006")
	letra, _ := fiscal.ClaseDeCbteTipo(c.CbteTipo)

	return row.New(20).Add(
		col.New(6).Add(
			text.New(emisor.RazonSocial, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("CUIT: %d", emisor.CUIT), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(1).Add(
			text.New(letra, props.Text{
				Style: fontstyle.Bold, Size: 22, Align: align.Center, Top: 2,
			}),
			text.New(fmt.Sprintf("COD. %02d", c.CbteTipo), props.Text{
				Size: 6, Align: align.Center, Top: 13, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(tituloComprobante(c), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(numero, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// receptorRow: identificación fiscal del receptor.
func receptorRow(p entity.PerfilFiscal) core.Row {
	nombre := p.RazonSocial
	if nombre == "" {
		nombre = "Consumidor final"
	}
	doc := "Sin identificar"
	if p.NroDoc != "" {
		doc = fmt.Sprintf("%s %s", p.TipoDoc, p.NroDoc)
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("RECEPTOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nombre, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("%s   |   IVA: %s", doc, p.Condicion), props.Text{
				Size: 8, Top: 12, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("P. Unitario", 2, align.Right),
		h("Alíc.", 1, align.Center),
		h("Importe", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea, con el importe final de la línea.
func tableDetailRows(items []entity.ItemComprobante) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		alic, _ := fiscal.Alicuota(it.AlicuotaID)
		importe := it.BaseImponible.Add(it.ImporteIVA)
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				it.Cantidad.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				it.Descripcion,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(it.PrecioUnitario),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				alic.Mul(decimal.NewFromInt(100)).String()+"%",
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				"$"+formatMoney(importe),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales del desglose, alineado a la derecha.
func totalsRow(d entity.Desglose) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(v decimal.Decimal) core.Component {
		return text.New("$"+formatMoney(v), props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := text.New("TOTAL:", props.Text{
		Style: fontstyle.Bold, Size: 11, Align: align.Right,
		Color: colorPrimary, Right: 2, Top: 16,
	})
	grandValue := text.New("$"+formatMoney(d.Total), props.Text{
		Style: fontstyle.Bold, Size: 11, Align: align.Right,
		Color: colorPrimary, Right: 1, Top: 16,
	})

	return row.New(26).Add(
		col.New(4),
		col.New(4).Add(
			label("Importe neto gravado:"),
			label("IVA:"),
			label("Exento / No gravado:"),
			grandLabel,
		),
		col.New(4).Add(
			value(d.Neto),
			value(d.IVA),
			value(d.Exento.Add(d.NoGravado)),
			grandValue,
		),
	)
}

// caeFooterRows: CAE + vencimiento + QR fiscal.
func caeFooterRows(c *entity.Comprobante, qrURL string) []core.Row {
	vto := ""
	if c.CAEVencimiento != nil {
		vto = c.CAEVencimiento.Format("02/01/2006")
	}

	rows := []core.Row{
		row.New(50).Add(
			col.New(4).Add(code.NewQr(qrURL, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("CAE N°: "+c.CAE, props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 6, Left: 3,
				}),
				text.New("Vencimiento CAE: "+vto, props.Text{
					Size: 9, Top: 13, Left: 3, Color: colorGray,
				}),
				text.New("Comprobante Autorizado", props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 24,
					Left: 3, Color: colorPrimary,
				}),
			),
		),
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Esta Agencia no se responsabiliza por los datos ingresados en el detalle de la operación. "+
				"Consulte la validez del comprobante escaneando el código QR.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func tituloComprobante(c *entity.Comprobante) string {
	switch c.Kind {
	case entity.KindNotaCredito:
		return "NOTA DE CRÉDITO"
	case entity.KindNotaDebito:
		return "NOTA DE DÉBITO"
	default:
		return "FACTURA"
	}
}

func derefNumero(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}

// formatMoney formatea un importe con separador de miles y coma decimal.
// Ej: 18648.00 → "18.648,00"
func formatMoney(d decimal.Decimal) string {
	s := fiscal.RoundMoney(d).StringFixed(2)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	entero, dec := s[:len(s)-3], s[len(s)-2:]

	n := len(entero)
	buf := make([]byte, 0, n+n/3+4)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, entero[i])
	}
	out := string(buf) + "," + dec
	if neg {
		return "-" + out
	}
	return out
}
