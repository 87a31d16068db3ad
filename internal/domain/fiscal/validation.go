package fiscal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/pkg/afip"
)

// ValidarComprobante valida un comprobante antes del envío a AFIP.
// Acá se aplica la exclusión legal clase A + DNI/consumidor final: una factura
// A exige receptor con clave tributaria (CUIT). El resolver no rechaza esa
// combinación; este es el punto único donde se corta antes de consumir
// numeración ante AFIP.
func ValidarComprobante(c *entity.Comprobante) error {
	if c == nil {
		return fmt.Errorf("%w: comprobante nulo", domain.ErrComprobanteInvalido)
	}
	var errs []error

	if !afip.ValidCbteTipos[c.CbteTipo] {
		errs = append(errs, fmt.Errorf("tipo de comprobante %d fuera del catálogo", c.CbteTipo))
	}
	if c.PuntoVenta <= 0 {
		errs = append(errs, fmt.Errorf("punto de venta inválido (%d)", c.PuntoVenta))
	}
	if len(c.Items) == 0 {
		errs = append(errs, errors.New("el comprobante debe tener al menos una línea"))
	}

	// Exclusión clase A: DNI o consumidor final no portan clave tributaria.
	if clase, err := ClaseDeCbteTipo(c.CbteTipo); err == nil && clase == ClaseA {
		switch c.Receptor.TipoDoc {
		case entity.DocDNI, entity.DocSinIdentificar:
			errs = append(errs, fmt.Errorf("un comprobante clase A no admite receptor con %s", c.Receptor.TipoDoc))
		}
	}
	if c.Receptor.TipoDoc != entity.DocSinIdentificar && c.Receptor.NroDoc == "" {
		errs = append(errs, fmt.Errorf("receptor con %s sin número de documento", c.Receptor.TipoDoc))
	}

	// Coherencia del desglose con las líneas (mismo criterio de redondeo).
	if len(c.Items) > 0 {
		var sumBase, sumIVA decimal.Decimal
		for _, it := range c.Items {
			sumBase = sumBase.Add(RoundMoney(it.BaseImponible))
			sumIVA = sumIVA.Add(RoundMoney(it.ImporteIVA))
		}
		if !c.Desglose.Neto.Equal(sumBase) {
			errs = append(errs, fmt.Errorf("neto (%s) no coincide con la suma de bases por línea (%s)",
				c.Desglose.Neto, sumBase))
		}
		if !c.Desglose.IVA.Equal(sumIVA) {
			errs = append(errs, fmt.Errorf("IVA (%s) no coincide con la suma de IVA por línea (%s)",
				c.Desglose.IVA, sumIVA))
		}
	}
	if err := validarDesglose(c.Desglose); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{domain.ErrComprobanteInvalido}, errs...)...)
	}
	return nil
}

// validarDesglose verifica no-negatividad y el invariante
// Total == Neto + IVA + Exento + NoGravado + OtrosTributos a 2 decimales.
func validarDesglose(d entity.Desglose) error {
	for _, m := range []struct {
		nombre string
		valor  decimal.Decimal
	}{
		{"neto", d.Neto}, {"IVA", d.IVA}, {"exento", d.Exento},
		{"no gravado", d.NoGravado}, {"otros tributos", d.OtrosTributos}, {"total", d.Total},
	} {
		if m.valor.IsNegative() {
			return fmt.Errorf("importe %s negativo (%s)", m.nombre, m.valor)
		}
	}
	esperado := d.Neto.Add(d.IVA).Add(d.Exento).Add(d.NoGravado).Add(d.OtrosTributos)
	if !RoundMoney(d.Total).Equal(RoundMoney(esperado)) {
		return fmt.Errorf("total (%s) no coincide con la suma de componentes (%s)", d.Total, esperado)
	}
	return nil
}
