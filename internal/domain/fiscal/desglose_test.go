package fiscal_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/fiscal"
	"github.com/lvidela/facturador-api/pkg/afip"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// TestDescomponerFinal_Escenario18648 es el vector de referencia del sistema:
// un precio final de 18648.00 al 21% debe discriminar neto 15411.57 e IVA
// 3236.43. Si alguien toca el criterio de redondeo (neto a piso, IVA absorbe
// el resto) este test falla de inmediato.
// ──────────────────────────────────────────────────────────────────────────────
func TestDescomponerFinal_Escenario18648(t *testing.T) {
	neto, iva, err := fiscal.DescomponerFinal(dec("18648.00"), afip.AlicIVA21)
	require.NoError(t, err)
	assert.True(t, neto.Equal(dec("15411.57")), "neto esperado 15411.57, obtenido %s", neto)
	assert.True(t, iva.Equal(dec("3236.43")), "IVA esperado 3236.43, obtenido %s", iva)
	assert.True(t, neto.Add(iva).Equal(dec("18648.00")), "neto + IVA debe reconstruir el total exacto")
}

// TestDescomponerFinal_RoundTrip verifica que neto + IVA == total exacto a 2
// decimales para los totales de borde del dominio.
func TestDescomponerFinal_RoundTrip(t *testing.T) {
	for _, total := range []string{"0.00", "1.00", "100.00", "18648.00", "0.01"} {
		neto, iva, err := fiscal.DescomponerFinal(dec(total), afip.AlicIVA21)
		require.NoError(t, err, "total %s", total)
		assert.True(t, neto.Add(iva).Equal(dec(total)),
			"total %s: neto (%s) + IVA (%s) debe reconstruir el total", total, neto, iva)
		assert.False(t, neto.IsNegative(), "total %s: neto no puede ser negativo", total)
		assert.False(t, iva.IsNegative(), "total %s: IVA no puede ser negativo", total)
	}
}

func TestDescomponerFinal_TotalNegativo(t *testing.T) {
	_, _, err := fiscal.DescomponerFinal(dec("-1.00"), afip.AlicIVA21)
	assert.ErrorIs(t, err, domain.ErrDesgloseInvalido)
}

func TestDescomponerFinal_AlicuotaFueraDeCatalogo(t *testing.T) {
	_, _, err := fiscal.DescomponerFinal(dec("100.00"), 42)
	assert.ErrorIs(t, err, domain.ErrDesgloseInvalido)
}

// TestRoundMoney_MitadHaciaArriba fija el criterio de desempate del redondeo:
// mitad hacia arriba (x.005 sube), no banker's rounding.
func TestRoundMoney_MitadHaciaArriba(t *testing.T) {
	assert.True(t, fiscal.RoundMoney(dec("2.005")).Equal(dec("2.01")))
	assert.True(t, fiscal.RoundMoney(dec("2.015")).Equal(dec("2.02")))
	assert.True(t, fiscal.RoundMoney(dec("2.004")).Equal(dec("2.00")))
	assert.True(t, fiscal.RoundMoney(dec("0.125")).Equal(dec("0.13")),
		"0.125 debe subir a 0.13 (half-up), no bajar a 0.12 (banker's)")
}

// TestDesgloseDesdeItems_InvarianteSuma genera líneas aleatorias no negativas
// y verifica que Total == Neto + IVA + Exento + NoGravado + OtrosTributos
// siempre, a 2 decimales.
func TestDesgloseDesdeItems_InvarianteSuma(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alicIDs := []int{afip.AlicIVA0, afip.AlicIVA10_5, afip.AlicIVA21, afip.AlicIVA27}
	for caso := 0; caso < 200; caso++ {
		n := 1 + rng.Intn(6)
		items := make([]entity.ItemComprobante, n)
		for i := range items {
			base := decimal.NewFromFloat(rng.Float64() * 10000).Round(2)
			id := alicIDs[rng.Intn(len(alicIDs))]
			rate, err := fiscal.Alicuota(id)
			require.NoError(t, err)
			items[i] = entity.ItemComprobante{
				BaseImponible: base,
				ImporteIVA:    fiscal.RoundMoney(base.Mul(rate)),
				AlicuotaID:    id,
				Cantidad:      decimal.NewFromInt(1),
			}
		}
		extra := fiscal.ExtrasDesglose{
			NoGravado:     decimal.NewFromFloat(rng.Float64() * 100).Round(2),
			Exento:        decimal.NewFromFloat(rng.Float64() * 100).Round(2),
			OtrosTributos: decimal.NewFromFloat(rng.Float64() * 100).Round(2),
		}
		d, err := fiscal.DesgloseDesdeItems(items, extra)
		require.NoError(t, err, "caso %d", caso)
		suma := d.Neto.Add(d.IVA).Add(d.Exento).Add(d.NoGravado).Add(d.OtrosTributos)
		assert.True(t, d.Total.Equal(suma),
			"caso %d: total (%s) debe ser la suma de componentes (%s)", caso, d.Total, suma)
	}
}

func TestDesgloseDesdeItems_BaseNegativa(t *testing.T) {
	_, err := fiscal.DesgloseDesdeItems([]entity.ItemComprobante{
		{BaseImponible: dec("-10.00"), ImporteIVA: dec("0.00"), AlicuotaID: afip.AlicIVA21},
	}, fiscal.ExtrasDesglose{})
	assert.ErrorIs(t, err, domain.ErrDesgloseInvalido)
}

func TestDesgloseDesdeItems_ExtraNegativo(t *testing.T) {
	_, err := fiscal.DesgloseDesdeItems([]entity.ItemComprobante{
		{BaseImponible: dec("100.00"), ImporteIVA: dec("21.00"), AlicuotaID: afip.AlicIVA21},
	}, fiscal.ExtrasDesglose{NoGravado: dec("-1.00")})
	assert.ErrorIs(t, err, domain.ErrDesgloseInvalido)
}

// TestDesgloseDesdeItems_RedondeoPorLinea: el redondeo se aplica línea por
// línea antes de sumar; tres líneas de 0.005 de IVA suman 0.03, no 0.02.
func TestDesgloseDesdeItems_RedondeoPorLinea(t *testing.T) {
	items := make([]entity.ItemComprobante, 3)
	for i := range items {
		items[i] = entity.ItemComprobante{
			BaseImponible: dec("1.00"),
			ImporteIVA:    dec("0.005"),
			AlicuotaID:    afip.AlicIVA21,
		}
	}
	d, err := fiscal.DesgloseDesdeItems(items, fiscal.ExtrasDesglose{})
	require.NoError(t, err)
	assert.True(t, d.IVA.Equal(dec("0.03")),
		"el redondeo por línea debe dar 3 × 0.01 = 0.03, obtenido %s", d.IVA)
}

// TestItemDesdePrecioFinal verifica la descomposición de una línea de venta
// cargada a precio final.
func TestItemDesdePrecioFinal(t *testing.T) {
	item, err := fiscal.ItemDesdePrecioFinal(entity.ItemVenta{
		Descripcion:    "Heladera 300L",
		Cantidad:       decimal.NewFromInt(1),
		PrecioUnitario: dec("18648.00"),
		AlicuotaID:     afip.AlicIVA21,
	})
	require.NoError(t, err)
	assert.True(t, item.BaseImponible.Equal(dec("15411.57")))
	assert.True(t, item.ImporteIVA.Equal(dec("3236.43")))
}

func TestItemDesdePrecioFinal_CantidadNoPositiva(t *testing.T) {
	_, err := fiscal.ItemDesdePrecioFinal(entity.ItemVenta{
		Cantidad:       decimal.Zero,
		PrecioUnitario: dec("10.00"),
		AlicuotaID:     afip.AlicIVA21,
	})
	assert.ErrorIs(t, err, domain.ErrDesgloseInvalido)
}
