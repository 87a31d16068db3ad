package afip_test

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvidela/facturador-api/pkg/afip"
)

// TestBuildQRURL_PayloadDecodificable genera el QR y verifica que el parámetro p
// sea Base64 de un JSON con los campos exactos que exige el régimen.
func TestBuildQRURL_PayloadDecodificable(t *testing.T) {
	url, err := afip.BuildQRURL(afip.QRParams{
		IssueDate:    time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		IssuerCUIT:   30500010912,
		PointOfSale:  3,
		CbteTipo:     afip.CbteFacturaB,
		Sequence:     1042,
		Total:        decimal.RequireFromString("18648.00"),
		Currency:     afip.MonedaPesos,
		ExchangeRate: decimal.NewFromInt(1),
		DocTipo:      afip.DocTipoDNI,
		DocNro:       30123456,
		CAE:          "74123456789012",
	})
	require.NoError(t, err)

	const prefix = "https://www.afip.gob.ar/fe/qr/?p="
	require.True(t, strings.HasPrefix(url, prefix), "la URL debe usar la base del régimen QR")

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	require.NoError(t, err, "el parámetro p debe ser Base64 estándar")

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.EqualValues(t, 1, payload["ver"])
	assert.Equal(t, "2024-07-15", payload["fecha"])
	assert.EqualValues(t, 30500010912, payload["cuit"])
	assert.EqualValues(t, afip.CbteFacturaB, payload["tipoCmp"])
	assert.EqualValues(t, 1042, payload["nroCmp"])
	assert.EqualValues(t, 18648.00, payload["importe"])
	assert.Equal(t, "E", payload["tipoCodAut"])
	assert.Equal(t, "74123456789012", payload["codAut"])
}

// TestBuildQRURL_RequiereCAE: sin CAE no hay comprobante autorizado y no debe
// generarse un QR.
func TestBuildQRURL_RequiereCAE(t *testing.T) {
	_, err := afip.BuildQRURL(afip.QRParams{CAE: ""})
	assert.Error(t, err)
}
