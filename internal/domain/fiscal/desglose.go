package fiscal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/pkg/afip"
)

// alicuotas tasas soportadas, por Id del catálogo AFIP.
var alicuotas = map[int]decimal.Decimal{
	afip.AlicIVA0:    decimal.Zero,
	afip.AlicIVA2_5:  decimal.RequireFromString("0.025"),
	afip.AlicIVA5:    decimal.RequireFromString("0.05"),
	afip.AlicIVA10_5: decimal.RequireFromString("0.105"),
	afip.AlicIVA21:   decimal.RequireFromString("0.21"),
	afip.AlicIVA27:   decimal.RequireFromString("0.27"),
}

// RoundMoney redondea un importe a 2 decimales, mitad hacia arriba (half away
// from zero; para montos no negativos equivale a half-up). Es la ÚNICA función
// de redondeo monetario del sistema: todo componente que redondee importes
// pasa por acá para que el criterio sea uno solo y reproducible.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Alicuota devuelve la tasa para un Id del catálogo AFIP.
func Alicuota(id int) (decimal.Decimal, error) {
	rate, ok := alicuotas[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: alícuota %d fuera del catálogo", domain.ErrDesgloseInvalido, id)
	}
	return rate, nil
}

// ExtrasDesglose componentes del total que no surgen de las líneas gravadas.
type ExtrasDesglose struct {
	NoGravado     decimal.Decimal
	Exento        decimal.Decimal
	OtrosTributos decimal.Decimal
}

// DesgloseDesdeItems arma el desglose a partir de líneas con neto e IVA ya
// discriminados. El redondeo es por línea, antes de sumar: la deriva de
// redondeo queda visible en cada línea en lugar de esconderse en el agregado,
// y el resultado es reproducible.
func DesgloseDesdeItems(items []entity.ItemComprobante, extra ExtrasDesglose) (entity.Desglose, error) {
	var neto, iva decimal.Decimal
	for i, it := range items {
		if it.BaseImponible.IsNegative() {
			return entity.Desglose{}, fmt.Errorf("%w: línea %d con base imponible negativa (%s)",
				domain.ErrDesgloseInvalido, i, it.BaseImponible)
		}
		if _, err := Alicuota(it.AlicuotaID); err != nil {
			return entity.Desglose{}, fmt.Errorf("línea %d: %w", i, err)
		}
		neto = neto.Add(RoundMoney(it.BaseImponible))
		iva = iva.Add(RoundMoney(it.ImporteIVA))
	}
	for _, m := range []struct {
		nombre string
		valor  decimal.Decimal
	}{
		{"no gravado", extra.NoGravado},
		{"exento", extra.Exento},
		{"otros tributos", extra.OtrosTributos},
	} {
		if m.valor.IsNegative() {
			return entity.Desglose{}, fmt.Errorf("%w: importe %s negativo (%s)",
				domain.ErrDesgloseInvalido, m.nombre, m.valor)
		}
	}

	noGravado := RoundMoney(extra.NoGravado)
	exento := RoundMoney(extra.Exento)
	otros := RoundMoney(extra.OtrosTributos)
	return entity.Desglose{
		Neto:          neto,
		IVA:           iva,
		NoGravado:     noGravado,
		Exento:        exento,
		OtrosTributos: otros,
		Total:         neto.Add(iva).Add(noGravado).Add(exento).Add(otros),
	}, nil
}

// DescomponerFinal descompone un importe final (IVA incluido) en neto e IVA
// para una alícuota dada. El neto se redondea hacia abajo y el IVA absorbe el
// resto, de modo que neto + IVA == total se cumple exacto a 2 decimales.
func DescomponerFinal(total decimal.Decimal, alicuotaID int) (neto, iva decimal.Decimal, err error) {
	if total.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: importe final negativo (%s)",
			domain.ErrDesgloseInvalido, total)
	}
	rate, err := Alicuota(alicuotaID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	total = RoundMoney(total)
	neto = total.Div(decimal.NewFromInt(1).Add(rate)).RoundFloor(2)
	iva = total.Sub(neto)
	return neto, iva, nil
}

// ItemDesdePrecioFinal arma la línea de comprobante para una línea de venta:
// descompone cantidad × precio final en base imponible e IVA por línea.
func ItemDesdePrecioFinal(in entity.ItemVenta) (entity.ItemComprobante, error) {
	if !in.Cantidad.IsPositive() {
		return entity.ItemComprobante{}, fmt.Errorf("%w: cantidad no positiva (%s)",
			domain.ErrDesgloseInvalido, in.Cantidad)
	}
	totalLinea := in.Cantidad.Mul(in.PrecioUnitario)
	base, iva, err := DescomponerFinal(totalLinea, in.AlicuotaID)
	if err != nil {
		return entity.ItemComprobante{}, err
	}
	return entity.ItemComprobante{
		Descripcion:    in.Descripcion,
		Cantidad:       in.Cantidad,
		PrecioUnitario: in.PrecioUnitario,
		AlicuotaID:     in.AlicuotaID,
		BaseImponible:  base,
		ImporteIVA:     iva,
	}, nil
}
