package afip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvidela/facturador-api/pkg/afip"
)

// TestValidateCUIT_Validos verifica CUITs reales con dígito verificador correcto,
// con y sin separadores.
func TestValidateCUIT_Validos(t *testing.T) {
	valid := []string{
		"30500010912",   // persona jurídica
		"30-50001091-2", // mismo CUIT con guiones
		"20-12345678-6", // persona física
		"20.12345678.6", // con puntos
	}
	for _, cuit := range valid {
		assert.NoError(t, afip.ValidateCUIT(cuit), "CUIT %s debe ser válido", cuit)
	}
}

// TestValidateCUIT_DigitoIncorrecto verifica que un verificador alterado se rechaza.
func TestValidateCUIT_DigitoIncorrecto(t *testing.T) {
	err := afip.ValidateCUIT("20-12345678-5")
	assert.Error(t, err, "un dígito verificador incorrecto debe rechazarse")
}

func TestValidateCUIT_LongitudIncorrecta(t *testing.T) {
	assert.Error(t, afip.ValidateCUIT("123456"), "menos de 11 dígitos debe rechazarse")
	assert.Error(t, afip.ValidateCUIT(""), "cadena vacía debe rechazarse")
	assert.Error(t, afip.ValidateCUIT("201234567861"), "más de 11 dígitos debe rechazarse")
}

// TestComputeCUITVerificationDigit verifica el cálculo del verificador contra
// valores conocidos del algoritmo módulo 11.
func TestComputeCUITVerificationDigit(t *testing.T) {
	d, err := afip.ComputeCUITVerificationDigit("3050001091")
	require.NoError(t, err)
	assert.Equal(t, byte('2'), d)

	d, err = afip.ComputeCUITVerificationDigit("2012345678")
	require.NoError(t, err)
	assert.Equal(t, byte('6'), d)
}
