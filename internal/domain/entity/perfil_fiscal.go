package entity

// CondicionIVA condición del receptor frente al IVA. Determina la clase de
// comprobante (A/B/C) que el emisor debe usar.
type CondicionIVA string

const (
	CondicionResponsableInscripto CondicionIVA = "RESPONSABLE_INSCRIPTO"
	CondicionExento               CondicionIVA = "EXENTO"
	CondicionConsumidorFinal      CondicionIVA = "CONSUMIDOR_FINAL"
	CondicionMonotributo          CondicionIVA = "MONOTRIBUTO"
	CondicionNoCategorizado       CondicionIVA = "NO_CATEGORIZADO"
)

// TipoDocumento tipo de documento identificatorio del receptor. El código
// numérico que exige AFIP se resuelve en el dominio fiscal, no acá.
type TipoDocumento string

const (
	DocCUIT           TipoDocumento = "CUIT"
	DocCUIL           TipoDocumento = "CUIL"
	DocDNI            TipoDocumento = "DNI"
	DocSinIdentificar TipoDocumento = "CONSUMIDOR_FINAL" // sin documento (consumidor final)
)

// PerfilFiscal identifica fiscalmente al receptor de un comprobante.
// Inmutable una vez adjunto a un comprobante: solo se usa para resolver el
// tipo de comprobante y el código de documento, nunca se modifica después.
type PerfilFiscal struct {
	Condicion   CondicionIVA
	TipoDoc     TipoDocumento
	NroDoc      string // número de documento, solo dígitos (vacío para consumidor final)
	RazonSocial string
}
