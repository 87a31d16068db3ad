package fiscal_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/fiscal"
	"github.com/lvidela/facturador-api/pkg/afip"
)

// comprobanteValido arma una factura B coherente para mutar en cada caso.
func comprobanteValido(t *testing.T) *entity.Comprobante {
	t.Helper()
	items := []entity.ItemComprobante{{
		Descripcion:    "Zapatillas running",
		Cantidad:       decimal.NewFromInt(1),
		PrecioUnitario: dec("121.00"),
		AlicuotaID:     afip.AlicIVA21,
		BaseImponible:  dec("100.00"),
		ImporteIVA:     dec("21.00"),
	}}
	desglose, err := fiscal.DesgloseDesdeItems(items, fiscal.ExtrasDesglose{})
	require.NoError(t, err)
	return &entity.Comprobante{
		ID:           "cbte-1",
		Kind:         entity.KindFactura,
		CbteTipo:     afip.CbteFacturaB,
		PuntoVenta:   3,
		Concepto:     afip.ConceptoProductos,
		FechaEmision: time.Now(),
		Receptor: entity.PerfilFiscal{
			Condicion: entity.CondicionConsumidorFinal,
			TipoDoc:   entity.DocDNI,
			NroDoc:    "30123456",
		},
		Items:      items,
		Desglose:   desglose,
		Moneda:     afip.MonedaPesos,
		Cotizacion: decimal.NewFromInt(1),
		Estado:     entity.EstadoDraft,
	}
}

func TestValidarComprobante_FacturaBCoherente(t *testing.T) {
	assert.NoError(t, fiscal.ValidarComprobante(comprobanteValido(t)))
}

// TestValidarComprobante_ClaseAConDNI: la combinación factura A + receptor DNI
// es legalmente inválida y debe cortarse antes del envío, nunca producir un
// comprobante A válido en silencio.
func TestValidarComprobante_ClaseAConDNI(t *testing.T) {
	c := comprobanteValido(t)
	c.CbteTipo = afip.CbteFacturaA
	c.Receptor = entity.PerfilFiscal{
		Condicion: entity.CondicionResponsableInscripto,
		TipoDoc:   entity.DocDNI,
		NroDoc:    "30123456",
	}
	err := fiscal.ValidarComprobante(c)
	assert.ErrorIs(t, err, domain.ErrComprobanteInvalido)
}

func TestValidarComprobante_ClaseAConConsumidorFinal(t *testing.T) {
	c := comprobanteValido(t)
	c.CbteTipo = afip.CbteFacturaA
	c.Receptor = entity.PerfilFiscal{
		Condicion: entity.CondicionResponsableInscripto,
		TipoDoc:   entity.DocSinIdentificar,
	}
	assert.ErrorIs(t, fiscal.ValidarComprobante(c), domain.ErrComprobanteInvalido)
}

func TestValidarComprobante_ClaseAConCUIT(t *testing.T) {
	c := comprobanteValido(t)
	c.CbteTipo = afip.CbteFacturaA
	c.Receptor = entity.PerfilFiscal{
		Condicion: entity.CondicionResponsableInscripto,
		TipoDoc:   entity.DocCUIT,
		NroDoc:    "30500010912",
	}
	assert.NoError(t, fiscal.ValidarComprobante(c), "clase A con CUIT es la combinación legal")
}

func TestValidarComprobante_SinItems(t *testing.T) {
	c := comprobanteValido(t)
	c.Items = nil
	assert.ErrorIs(t, fiscal.ValidarComprobante(c), domain.ErrComprobanteInvalido)
}

func TestValidarComprobante_Nulo(t *testing.T) {
	assert.ErrorIs(t, fiscal.ValidarComprobante(nil), domain.ErrComprobanteInvalido)
}

func TestValidarComprobante_DesgloseIncoherente(t *testing.T) {
	c := comprobanteValido(t)
	c.Desglose.Total = dec("999.99") // rompe Total == suma de componentes
	assert.ErrorIs(t, fiscal.ValidarComprobante(c), domain.ErrComprobanteInvalido)
}

func TestValidarComprobante_NetoNoCoincideConLineas(t *testing.T) {
	c := comprobanteValido(t)
	c.Items[0].BaseImponible = dec("90.00") // desglose quedó calculado con 100.00
	assert.ErrorIs(t, fiscal.ValidarComprobante(c), domain.ErrComprobanteInvalido)
}

func TestValidarComprobante_ReceptorSinNumero(t *testing.T) {
	c := comprobanteValido(t)
	c.Receptor.NroDoc = ""
	assert.ErrorIs(t, fiscal.ValidarComprobante(c), domain.ErrComprobanteInvalido)
}
