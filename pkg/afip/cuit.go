package afip

import (
	"fmt"
	"unicode"
)

// pesos para el cálculo del dígito verificador de CUIT/CUIL (módulo 11, AFIP).
// Se aplican a los 10 primeros dígitos, de izquierda a derecha.
var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidateCUIT valida que el CUIT/CUIL (con o sin guiones) tenga 11 dígitos y
// un dígito verificador correcto según el algoritmo módulo 11 de AFIP.
// taxID puede ser "20-12345678-6", "20.12345678.6" o "20123456786".
func ValidateCUIT(taxID string) error {
	digits := extractDigits(taxID)
	if len(digits) != 11 {
		return fmt.Errorf("afip: CUIT debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	expected, err := ComputeCUITVerificationDigit(string(digits[:10]))
	if err != nil {
		return err
	}
	if digits[10] != expected {
		return fmt.Errorf("afip: dígito verificador de CUIT inválido: esperado %c, recibido %c", expected, digits[10])
	}
	return nil
}

// ComputeCUITVerificationDigit calcula el dígito verificador para los 10 primeros
// dígitos del CUIT. Si el módulo da 10 el CUIT base no es asignable (AFIP cambia
// el prefijo en ese caso); se reporta como error.
func ComputeCUITVerificationDigit(taxID string) (byte, error) {
	digits := extractDigits(taxID)
	if len(digits) < 10 {
		return 0, fmt.Errorf("afip: se requieren 10 dígitos para calcular el verificador, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits[:10] {
		sum += int(d-'0') * cuitWeights[i]
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0', nil
	case 10:
		return 0, fmt.Errorf("afip: CUIT base sin dígito verificador asignable (resto 10)")
	default:
		return byte('0' + r), nil
	}
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
