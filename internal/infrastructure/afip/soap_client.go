package afip

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lvidela/facturador-api/internal/domain/fiscal"
)

// ── Constantes de entorno ──────────────────────────────────────────────────────

const (
	// AppEnvTest es el identificador del ambiente de homologación AFIP.
	AppEnvTest = "test"
	// AppEnvProd es el identificador del ambiente de producción AFIP.
	AppEnvProd = "prod"
	// AppEnvDev es el identificador local: no llama al WS, simula la autorización.
	AppEnvDev = "dev"

	soapURLTest = "https://wswhomo.afip.gov.ar/wsfev1/service.asmx"
	soapURLProd = "https://servicios1.afip.gov.ar/wsfev1/service.asmx"

	soapNS         = "http://schemas.xmlsoap.org/soap/envelope/"
	wsfeNS         = "http://ar.gov.afip.dif.FEV1/"
	soapActionBase = "http://ar.gov.afip.dif.FEV1/"

	fechaWire = "20060102" // CbteFch y CAEFchVto van como yyyymmdd
)

// WSFEClient implementa Autorizador contra el WS SOAP wsfev1 de AFIP.
// Usa net/http de la stdlib; el header Auth sale del TicketSource.
type WSFEClient struct {
	httpClient *http.Client
	tickets    TicketSource
	cuit       int64  // CUIT del emisor, va en el header Auth
	soapURL    string // según ambiente
}

// NewWSFEClient construye el cliente para el ambiente dado ("test" o "prod")
// con un timeout de red generoso: el WS de AFIP puede tardar varios segundos.
func NewWSFEClient(env string, tickets TicketSource, issuerCUIT int64) (*WSFEClient, error) {
	var url string
	switch env {
	case AppEnvProd:
		url = soapURLProd
	case AppEnvTest:
		url = soapURLTest
	default:
		return nil, fmt.Errorf("wsfe: ambiente desconocido %q (usar 'test' o 'prod')", env)
	}
	return &WSFEClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tickets:    tickets,
		cuit:       issuerCUIT,
		soapURL:    url,
	}, nil
}

// ── Estructuras SOAP de pedido ────────────────────────────────────────────────

type soapEnvelope struct {
	XMLName  xml.Name `xml:"soapenv:Envelope"`
	XmlnsEnv string   `xml:"xmlns:soapenv,attr"`
	XmlnsAr  string   `xml:"xmlns:ar,attr"`
	Body     soapBody `xml:"soapenv:Body"`
}

type soapBody struct {
	Content interface{}
}

func (b soapBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "soapenv:Body"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

type authHeader struct {
	Token string `xml:"ar:Token"`
	Sign  string `xml:"ar:Sign"`
	Cuit  int64  `xml:"ar:Cuit"`
}

type feCAESolicitarBody struct {
	XMLName  xml.Name   `xml:"ar:FECAESolicitar"`
	Auth     authHeader `xml:"ar:Auth"`
	FeCAEReq feCAEReq   `xml:"ar:FeCAEReq"`
}

type feCAEReq struct {
	Cabecera feCabReq   `xml:"ar:FeCabReq"`
	Detalle  []feDetReq `xml:"ar:FeDetReq>ar:FECAEDetRequest"`
}

type feCabReq struct {
	CantReg  int `xml:"ar:CantReg"`
	PtoVta   int `xml:"ar:PtoVta"`
	CbteTipo int `xml:"ar:CbteTipo"`
}

type feDetReq struct {
	Concepto   int    `xml:"ar:Concepto"`
	DocTipo    int    `xml:"ar:DocTipo"`
	DocNro     int64  `xml:"ar:DocNro"`
	CbteDesde  int64  `xml:"ar:CbteDesde"`
	CbteHasta  int64  `xml:"ar:CbteHasta"`
	CbteFch    string `xml:"ar:CbteFch"` // yyyymmdd
	ImpTotal   string `xml:"ar:ImpTotal"`
	ImpTotConc string `xml:"ar:ImpTotConc"`
	ImpNeto    string `xml:"ar:ImpNeto"`
	ImpOpEx    string `xml:"ar:ImpOpEx"`
	ImpTrib    string `xml:"ar:ImpTrib"`
	ImpIVA     string `xml:"ar:ImpIVA"`
	MonID      string `xml:"ar:MonId"`
	MonCotiz   string `xml:"ar:MonCotiz"`

	CbtesAsoc []cbteAsoc `xml:"ar:CbtesAsoc>ar:CbteAsoc,omitempty"`
	Iva       []alicIva  `xml:"ar:Iva>ar:AlicIva,omitempty"`
}

type cbteAsoc struct {
	Tipo   int   `xml:"ar:Tipo"`
	PtoVta int   `xml:"ar:PtoVta"`
	Nro    int64 `xml:"ar:Nro"`
}

type alicIva struct {
	ID      int    `xml:"ar:Id"`
	BaseImp string `xml:"ar:BaseImp"`
	Importe string `xml:"ar:Importe"`
}

type feCompUltimoAutorizadoBody struct {
	XMLName  xml.Name   `xml:"ar:FECompUltimoAutorizado"`
	Auth     authHeader `xml:"ar:Auth"`
	PtoVta   int        `xml:"ar:PtoVta"`
	CbteTipo int        `xml:"ar:CbteTipo"`
}

// ── Estructuras SOAP de respuesta ─────────────────────────────────────────────

type soapResponseEnvelope struct {
	Body soapResponseBody `xml:"Body"`
}

type soapResponseBody struct {
	CAEResponse    *feCAESolicitarResponse     `xml:"FECAESolicitarResponse"`
	UltimoResponse *feUltimoAutorizadoResponse `xml:"FECompUltimoAutorizadoResponse"`
	Fault          *soapFault                  `xml:"Fault"`
}

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

type feCAESolicitarResponse struct {
	Result feCAESolicitarResult `xml:"FECAESolicitarResult"`
}

type feCAESolicitarResult struct {
	Cabecera feCabResp   `xml:"FeCabResp"`
	Detalle  []feDetResp `xml:"FeDetResp>FECAEDetResponse"`
	Errores  []codeMsg   `xml:"Errors>Err"`
}

type feCabResp struct {
	Resultado string `xml:"Resultado"` // A=aprobado, R=rechazado, P=parcial
}

type feDetResp struct {
	CbteDesde     int64     `xml:"CbteDesde"`
	Resultado     string    `xml:"Resultado"`
	CAE           string    `xml:"CAE"`
	CAEFchVto     string    `xml:"CAEFchVto"` // yyyymmdd
	Observaciones []codeMsg `xml:"Observaciones>Obs"`
}

type codeMsg struct {
	Code int    `xml:"Code"`
	Msg  string `xml:"Msg"`
}

type feUltimoAutorizadoResponse struct {
	Result feUltimoAutorizadoResult `xml:"FECompUltimoAutorizadoResult"`
}

type feUltimoAutorizadoResult struct {
	PtoVta   int       `xml:"PtoVta"`
	CbteTipo int       `xml:"CbteTipo"`
	CbteNro  int64     `xml:"CbteNro"`
	Errores  []codeMsg `xml:"Errors>Err"`
}

// ── Autorizador ───────────────────────────────────────────────────────────────

var _ Autorizador = (*WSFEClient)(nil)

// Autorizar envía FECAESolicitar con un único detalle y devuelve el resultado.
// Errores de retorno son de transporte o protocolo; un rechazo de negocio
// viene como Aprobado=false con las observaciones de AFIP.
func (c *WSFEClient) Autorizar(ctx context.Context, s *SolicitudCAE) (*ResultadoCAE, error) {
	auth, err := c.auth(ctx)
	if err != nil {
		return nil, err
	}

	det := feDetReq{
		Concepto:   s.Concepto,
		DocTipo:    s.DocTipo,
		DocNro:     s.DocNro,
		CbteDesde:  s.CbteNumero,
		CbteHasta:  s.CbteNumero,
		CbteFch:    s.FechaEmision.Format(fechaWire),
		ImpTotal:   montoWire(s.ImpTotal),
		ImpTotConc: montoWire(s.ImpTotConc),
		ImpNeto:    montoWire(s.ImpNeto),
		ImpOpEx:    montoWire(s.ImpOpEx),
		ImpTrib:    montoWire(s.ImpTrib),
		ImpIVA:     montoWire(s.ImpIVA),
		MonID:      s.Moneda,
		MonCotiz:   montoWire(s.Cotizacion),
	}
	for _, a := range s.Alicuotas {
		det.Iva = append(det.Iva, alicIva{
			ID:      a.ID,
			BaseImp: montoWire(a.Base),
			Importe: montoWire(a.Importe),
		})
	}
	if s.CbteAsocNro > 0 {
		det.CbtesAsoc = append(det.CbtesAsoc, cbteAsoc{
			Tipo:   s.CbteAsocTipo,
			PtoVta: s.CbteAsocPtoVta,
			Nro:    s.CbteAsocNro,
		})
	}

	body := &feCAESolicitarBody{
		Auth: auth,
		FeCAEReq: feCAEReq{
			Cabecera: feCabReq{CantReg: 1, PtoVta: s.PuntoVenta, CbteTipo: s.CbteTipo},
			Detalle:  []feDetReq{det},
		},
	}

	raw, err := c.call(ctx, "FECAESolicitar", body)
	if err != nil {
		return nil, err
	}
	return parseCAEResponse(raw)
}

// UltimoAutorizado consulta FECompUltimoAutorizado para el par (ptoVta, tipo).
func (c *WSFEClient) UltimoAutorizado(ctx context.Context, puntoVenta, cbteTipo int) (int64, error) {
	auth, err := c.auth(ctx)
	if err != nil {
		return 0, err
	}
	raw, err := c.call(ctx, "FECompUltimoAutorizado", &feCompUltimoAutorizadoBody{
		Auth:     auth,
		PtoVta:   puntoVenta,
		CbteTipo: cbteTipo,
	})
	if err != nil {
		return 0, err
	}

	var env soapResponseEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		return 0, fmt.Errorf("wsfe: respuesta SOAP ilegible: %w", err)
	}
	if env.Body.Fault != nil {
		return 0, fmt.Errorf("wsfe: SOAP Fault [%s]: %s", env.Body.Fault.FaultCode, env.Body.Fault.FaultString)
	}
	if env.Body.UltimoResponse == nil {
		return 0, fmt.Errorf("wsfe: respuesta FECompUltimoAutorizado vacía")
	}
	res := env.Body.UltimoResponse.Result
	if len(res.Errores) > 0 {
		return 0, fmt.Errorf("wsfe: FECompUltimoAutorizado: %s", joinCodeMsgs(res.Errores))
	}
	return res.CbteNro, nil
}

// ── helpers privados ──────────────────────────────────────────────────────────

func (c *WSFEClient) auth(ctx context.Context) (authHeader, error) {
	ta, err := c.tickets.Ticket(ctx)
	if err != nil {
		return authHeader{}, fmt.Errorf("wsfe: obtener ticket WSAA: %w", err)
	}
	return authHeader{Token: ta.Token, Sign: ta.Sign, Cuit: c.cuit}, nil
}

// call serializa el envelope, hace el POST y devuelve el cuerpo crudo.
func (c *WSFEClient) call(ctx context.Context, action string, content interface{}) ([]byte, error) {
	envelope := soapEnvelope{
		XmlnsEnv: soapNS,
		XmlnsAr:  wsfeNS,
		Body:     soapBody{Content: content},
	}
	payload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("wsfe: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.soapURL,
		bytes.NewReader(append([]byte(xml.Header), payload...)))
	if err != nil {
		return nil, fmt.Errorf("wsfe: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapActionBase+action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("wsfe: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("wsfe: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, fmt.Errorf("wsfe: leer respuesta: %w", err)
	}
	return raw, nil
}

// parseCAEResponse desempaqueta la respuesta de FECAESolicitar.
func parseCAEResponse(raw []byte) (*ResultadoCAE, error) {
	var env soapResponseEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("wsfe: respuesta SOAP ilegible: %w", err)
	}
	if env.Body.Fault != nil {
		return nil, fmt.Errorf("wsfe: SOAP Fault [%s]: %s", env.Body.Fault.FaultCode, env.Body.Fault.FaultString)
	}
	if env.Body.CAEResponse == nil {
		return nil, fmt.Errorf("wsfe: respuesta FECAESolicitar vacía o inesperada")
	}
	result := env.Body.CAEResponse.Result

	// Errores de servicio (sin detalle procesado): el pedido no se tomó.
	if len(result.Detalle) == 0 {
		if len(result.Errores) > 0 {
			return &ResultadoCAE{Aprobado: false, Observaciones: joinCodeMsgs(result.Errores)}, nil
		}
		return nil, fmt.Errorf("wsfe: FECAESolicitar sin detalle en la respuesta")
	}

	det := result.Detalle[0]
	out := &ResultadoCAE{
		Aprobado:      strings.EqualFold(result.Cabecera.Resultado, "A") && det.CAE != "",
		CAE:           det.CAE,
		Numero:        det.CbteDesde,
		Observaciones: joinCodeMsgs(append(det.Observaciones, result.Errores...)),
	}
	if det.CAEFchVto != "" {
		vto, err := time.Parse(fechaWire, det.CAEFchVto)
		if err != nil {
			return nil, fmt.Errorf("wsfe: CAEFchVto inválido %q: %w", det.CAEFchVto, err)
		}
		out.CAEVencimiento = vto
	}
	return out, nil
}

// montoWire formatea un importe para el wire: punto decimal, 2 decimales.
func montoWire(d decimal.Decimal) string {
	return fiscal.RoundMoney(d).StringFixed(2)
}

func joinCodeMsgs(list []codeMsg) string {
	if len(list) == 0 {
		return ""
	}
	parts := make([]string, 0, len(list))
	for _, cm := range list {
		parts = append(parts, fmt.Sprintf("[%d] %s", cm.Code, cm.Msg))
	}
	return strings.Join(parts, "; ")
}
