package afip

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTickets struct{}

func (staticTickets) Ticket(ctx context.Context) (*TicketAcceso, error) {
	return &TicketAcceso{Token: "tok", Sign: "sig", Expira: time.Now().Add(time.Hour)}, nil
}

const respuestaCAEAprobado = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <FECAESolicitarResponse xmlns="http://ar.gov.afip.dif.FEV1/">
      <FECAESolicitarResult>
        <FeCabResp><Resultado>A</Resultado></FeCabResp>
        <FeDetResp>
          <FECAEDetResponse>
            <CbteDesde>101</CbteDesde>
            <Resultado>A</Resultado>
            <CAE>71234567890123</CAE>
            <CAEFchVto>20260325</CAEFchVto>
          </FECAEDetResponse>
        </FeDetResp>
      </FECAESolicitarResult>
    </FECAESolicitarResponse>
  </soap:Body>
</soap:Envelope>`

const respuestaCAERechazado = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <FECAESolicitarResponse xmlns="http://ar.gov.afip.dif.FEV1/">
      <FECAESolicitarResult>
        <FeCabResp><Resultado>R</Resultado></FeCabResp>
        <FeDetResp>
          <FECAEDetResponse>
            <CbteDesde>101</CbteDesde>
            <Resultado>R</Resultado>
            <CAE></CAE>
            <CAEFchVto></CAEFchVto>
            <Observaciones>
              <Obs><Code>10016</Code><Msg>Campo CbteFch invalido</Msg></Obs>
            </Observaciones>
          </FECAEDetResponse>
        </FeDetResp>
      </FECAESolicitarResult>
    </FECAESolicitarResponse>
  </soap:Body>
</soap:Envelope>`

const respuestaUltimo = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <FECompUltimoAutorizadoResponse xmlns="http://ar.gov.afip.dif.FEV1/">
      <FECompUltimoAutorizadoResult>
        <PtoVta>3</PtoVta>
        <CbteTipo>6</CbteTipo>
        <CbteNro>100</CbteNro>
      </FECompUltimoAutorizadoResult>
    </FECompUltimoAutorizadoResponse>
  </soap:Body>
</soap:Envelope>`

func clienteDePrueba(t *testing.T, respuesta string, capture *string) *WSFEClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			raw, _ := io.ReadAll(r.Body)
			*capture = string(raw)
		}
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		_, _ = io.WriteString(w, respuesta)
	}))
	t.Cleanup(srv.Close)
	return &WSFEClient{
		httpClient: srv.Client(),
		tickets:    staticTickets{},
		cuit:       30500010912,
		soapURL:    srv.URL,
	}
}

func solicitudDePrueba() *SolicitudCAE {
	return &SolicitudCAE{
		CbteTipo:     6,
		PuntoVenta:   3,
		Concepto:     1,
		DocTipo:      96,
		DocNro:       30123456,
		CbteNumero:   101,
		FechaEmision: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		ImpTotal:     decimal.RequireFromString("18648.00"),
		ImpNeto:      decimal.RequireFromString("15411.57"),
		ImpIVA:       decimal.RequireFromString("3236.43"),
		Moneda:       "PES",
		Cotizacion:   decimal.NewFromInt(1),
		Alicuotas: []AlicuotaIVA{
			{ID: 5, Base: decimal.RequireFromString("15411.57"), Importe: decimal.RequireFromString("3236.43")},
		},
	}
}

func TestAutorizar_Aprobado(t *testing.T) {
	var pedido string
	c := clienteDePrueba(t, respuestaCAEAprobado, &pedido)

	res, err := c.Autorizar(context.Background(), solicitudDePrueba())
	require.NoError(t, err)

	assert.True(t, res.Aprobado)
	assert.Equal(t, "71234567890123", res.CAE)
	assert.Equal(t, int64(101), res.Numero)
	assert.Equal(t, time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC), res.CAEVencimiento)

	// El pedido debe llevar el header Auth y los importes con 2 decimales.
	assert.Contains(t, pedido, "<ar:Token>tok</ar:Token>")
	assert.Contains(t, pedido, "<ar:Cuit>30500010912</ar:Cuit>")
	assert.Contains(t, pedido, "<ar:ImpTotal>18648.00</ar:ImpTotal>")
	assert.Contains(t, pedido, "<ar:CbteFch>20260315</ar:CbteFch>")
	assert.Contains(t, pedido, "<ar:CbteDesde>101</ar:CbteDesde>")
	assert.Contains(t, pedido, "<ar:CbteHasta>101</ar:CbteHasta>")
}

func TestAutorizar_RechazadoConObservaciones(t *testing.T) {
	c := clienteDePrueba(t, respuestaCAERechazado, nil)

	res, err := c.Autorizar(context.Background(), solicitudDePrueba())
	require.NoError(t, err, "un rechazo de negocio no es un error de transporte")

	assert.False(t, res.Aprobado)
	assert.Empty(t, res.CAE)
	assert.Contains(t, res.Observaciones, "10016")
	assert.Contains(t, res.Observaciones, "Campo CbteFch invalido")
}

func TestAutorizar_NotaLlevaComprobanteAsociado(t *testing.T) {
	var pedido string
	c := clienteDePrueba(t, respuestaCAEAprobado, &pedido)

	s := solicitudDePrueba()
	s.CbteTipo = 8 // nota de crédito B
	s.CbteAsocTipo = 6
	s.CbteAsocPtoVta = 3
	s.CbteAsocNro = 90

	_, err := c.Autorizar(context.Background(), s)
	require.NoError(t, err)

	assert.Contains(t, pedido, "<ar:CbtesAsoc>")
	assert.Contains(t, pedido, "<ar:Tipo>6</ar:Tipo>")
	assert.Contains(t, pedido, "<ar:Nro>90</ar:Nro>")
}

func TestUltimoAutorizado(t *testing.T) {
	c := clienteDePrueba(t, respuestaUltimo, nil)

	nro, err := c.UltimoAutorizado(context.Background(), 3, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(100), nro)
}

func TestParseCAEResponse_SoapFault(t *testing.T) {
	fault := `<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault>
      <faultcode>soap:Server</faultcode>
      <faultstring>Validacion de Token</faultstring>
    </soap:Fault>
  </soap:Body>
</soap:Envelope>`
	_, err := parseCAEResponse([]byte(fault))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Validacion de Token")
}

func TestNewWSFEClient_Ambientes(t *testing.T) {
	c, err := NewWSFEClient(AppEnvTest, staticTickets{}, 30500010912)
	require.NoError(t, err)
	assert.Equal(t, soapURLTest, c.soapURL)

	c, err = NewWSFEClient(AppEnvProd, staticTickets{}, 30500010912)
	require.NoError(t, err)
	assert.Equal(t, soapURLProd, c.soapURL)

	_, err = NewWSFEClient("staging", staticTickets{}, 30500010912)
	assert.Error(t, err)
}
