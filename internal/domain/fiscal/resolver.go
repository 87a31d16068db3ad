// Package fiscal implementa el núcleo de facturación: resolución de clase de
// comprobante, desglose de importes bajo reglas fijas de redondeo y
// validaciones previas al envío a AFIP. No tiene efectos colaterales ni acceso
// a infraestructura.
package fiscal

import (
	"fmt"

	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/pkg/afip"
)

// Clases legales de comprobante.
const (
	ClaseA = "A"
	ClaseB = "B"
	ClaseC = "C"
)

// Resolucion resultado de resolver el perfil fiscal de un receptor: el tipo
// de comprobante a emitir y el código de documento que exige AFIP.
type Resolucion struct {
	CbteTipo  int // código del catálogo AFIP (1, 3, 6, ...)
	DocCodigo int // 80=CUIT, 86=CUIL, 96=DNI, 99=consumidor final
}

// clasePorCondicion tabla fija condición IVA → clase de comprobante.
// Cualquier condición fuera de la tabla (no categorizado, desconocida) emite C.
var clasePorCondicion = map[entity.CondicionIVA]string{
	entity.CondicionResponsableInscripto: ClaseA,
	entity.CondicionExento:               ClaseB,
	entity.CondicionConsumidorFinal:      ClaseB,
	entity.CondicionMonotributo:          ClaseB,
}

// cbtePorClase tabla fija (clase, kind) → tipo de comprobante AFIP.
var cbtePorClase = map[string]map[string]int{
	ClaseA: {
		entity.KindFactura:     afip.CbteFacturaA,
		entity.KindNotaDebito:  afip.CbteNotaDebitoA,
		entity.KindNotaCredito: afip.CbteNotaCreditoA,
	},
	ClaseB: {
		entity.KindFactura:     afip.CbteFacturaB,
		entity.KindNotaDebito:  afip.CbteNotaDebitoB,
		entity.KindNotaCredito: afip.CbteNotaCreditoB,
	},
	ClaseC: {
		entity.KindFactura:     afip.CbteFacturaC,
		entity.KindNotaDebito:  afip.CbteNotaDebitoC,
		entity.KindNotaCredito: afip.CbteNotaCreditoC,
	},
}

// docCodigoPorTipo tabla fija tipo de documento → código AFIP.
var docCodigoPorTipo = map[entity.TipoDocumento]int{
	entity.DocCUIT:           afip.DocTipoCUIT,
	entity.DocCUIL:           afip.DocTipoCUIL,
	entity.DocDNI:            afip.DocTipoDNI,
	entity.DocSinIdentificar: afip.DocTipoConsumidorFinal,
}

// ClasePorCondicion devuelve la clase de comprobante (A/B/C) para una
// condición de IVA. Lookup puro, sin validaciones cruzadas: la exclusión
// clase A + DNI la aplica el armador del comprobante, no el resolver.
func ClasePorCondicion(cond entity.CondicionIVA) string {
	if clase, ok := clasePorCondicion[cond]; ok {
		return clase
	}
	return ClaseC
}

// ClaseDeCbteTipo devuelve la clase legal de un tipo de comprobante ya
// resuelto. Se usa al derivar notas: la nota hereda la clase del original.
func ClaseDeCbteTipo(cbteTipo int) (string, error) {
	for clase, kinds := range cbtePorClase {
		for _, code := range kinds {
			if code == cbteTipo {
				return clase, nil
			}
		}
	}
	return "", fmt.Errorf("%w: tipo de comprobante %d fuera del catálogo", domain.ErrInvalidInput, cbteTipo)
}

// DocCodigo devuelve el código numérico de documento que exige AFIP para un
// tipo de documento del dominio.
func DocCodigo(tipoDoc entity.TipoDocumento) (int, error) {
	codigo, ok := docCodigoPorTipo[tipoDoc]
	if !ok {
		return 0, fmt.Errorf("%w: tipo de documento %q desconocido", domain.ErrInvalidInput, tipoDoc)
	}
	return codigo, nil
}

// Resolver determina el tipo de comprobante y el código de documento del
// receptor para un perfil fiscal dado. kind es la clase de documento a emitir
// (factura o nota). Lookup fijo, sin efectos colaterales.
func Resolver(kind string, perfil entity.PerfilFiscal) (Resolucion, error) {
	clase := ClasePorCondicion(perfil.Condicion)
	cbteTipo, ok := cbtePorClase[clase][kind]
	if !ok {
		return Resolucion{}, fmt.Errorf("%w: clase de documento %q desconocida", domain.ErrInvalidInput, kind)
	}
	docCodigo, err := DocCodigo(perfil.TipoDoc)
	if err != nil {
		return Resolucion{}, err
	}
	return Resolucion{CbteTipo: cbteTipo, DocCodigo: docCodigo}, nil
}

// CbteTipoParaNota devuelve el tipo de nota (crédito o débito) de la misma
// clase legal que el comprobante de origen (A origina A, B origina B).
func CbteTipoParaNota(kindNota string, cbteTipoOrigen int) (int, error) {
	if kindNota != entity.KindNotaCredito && kindNota != entity.KindNotaDebito {
		return 0, fmt.Errorf("%w: %q no es una clase de nota", domain.ErrInvalidInput, kindNota)
	}
	clase, err := ClaseDeCbteTipo(cbteTipoOrigen)
	if err != nil {
		return 0, err
	}
	return cbtePorClase[clase][kindNota], nil
}
