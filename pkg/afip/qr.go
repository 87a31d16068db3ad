package afip

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// URL base del régimen de QR fiscal (RG 4892/2020). El payload va en el
// parámetro p como JSON codificado en Base64.
const qrBaseURL = "https://www.afip.gob.ar/fe/qr/?p="

// QRParams datos mínimos del comprobante autorizado para el QR fiscal.
type QRParams struct {
	IssueDate    time.Time       // fecha de emisión
	IssuerCUIT   int64           // CUIT del emisor, solo dígitos
	PointOfSale  int             // punto de venta
	CbteTipo     int             // tipo de comprobante (catálogo AFIP)
	Sequence     int64           // número de comprobante
	Total        decimal.Decimal // importe total
	Currency     string          // PES, DOL, ...
	ExchangeRate decimal.Decimal // cotización (1 para PES)
	DocTipo      int             // tipo de documento del receptor
	DocNro       int64           // número de documento del receptor
	CAE          string          // código de autorización otorgado
}

// qrPayload es el JSON exacto que exige la RG 4892 (versión 1, autorización "E").
type qrPayload struct {
	Ver        int     `json:"ver"`
	Fecha      string  `json:"fecha"`
	CUIT       int64   `json:"cuit"`
	PtoVta     int     `json:"ptoVta"`
	TipoCmp    int     `json:"tipoCmp"`
	NroCmp     int64   `json:"nroCmp"`
	Importe    float64 `json:"importe"`
	Moneda     string  `json:"moneda"`
	Ctz        float64 `json:"ctz"`
	TipoDocRec int     `json:"tipoDocRec"`
	NroDocRec  int64   `json:"nroDocRec"`
	TipoCodAut string  `json:"tipoCodAut"`
	CodAut     string  `json:"codAut"`
}

// BuildQRURL genera la URL completa del QR fiscal para un comprobante autorizado.
func BuildQRURL(p QRParams) (string, error) {
	if p.CAE == "" {
		return "", fmt.Errorf("afip: el QR requiere un comprobante autorizado (CAE vacío)")
	}
	importe, _ := p.Total.Round(2).Float64()
	ctz, _ := p.ExchangeRate.Round(2).Float64()
	payload := qrPayload{
		Ver:        1,
		Fecha:      p.IssueDate.Format("2006-01-02"),
		CUIT:       p.IssuerCUIT,
		PtoVta:     p.PointOfSale,
		TipoCmp:    p.CbteTipo,
		NroCmp:     p.Sequence,
		Importe:    importe,
		Moneda:     p.Currency,
		Ctz:        ctz,
		TipoDocRec: p.DocTipo,
		NroDocRec:  p.DocNro,
		TipoCodAut: "E",
		CodAut:     p.CAE,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("afip: serializar payload QR: %w", err)
	}
	return qrBaseURL + base64.StdEncoding.EncodeToString(raw), nil
}
