package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// Errores del circuito fiscal. Los locales nunca llegan al estado PENDING;
// los remotos siempre terminan con el comprobante en ERROR.
var (
	// ErrComprobanteInvalido: validación local previa al envío (combinación
	// clase A + DNI, sin ítems, montos negativos). Nunca se envía a AFIP.
	ErrComprobanteInvalido = errors.New("comprobante inválido")

	// ErrDesgloseInvalido: precondición aritmética violada (base negativa,
	// alícuota fuera del catálogo).
	ErrDesgloseInvalido = errors.New("desglose de importes inválido")

	// ErrOriginalNoAutorizado: se intentó derivar una nota desde un comprobante
	// sin CAE (no autorizado o inexistente).
	ErrOriginalNoAutorizado = errors.New("el comprobante de origen no está autorizado")

	// ErrEnvioEnCurso: ya hay un envío en vuelo para el mismo comprobante.
	// El caller debe esperar el resultado, no reenviar.
	ErrEnvioEnCurso = errors.New("ya hay un envío en curso para el comprobante")

	// ErrEstadoInvalido: transición de estado no permitida (ej: reenviar un
	// comprobante ya autorizado).
	ErrEstadoInvalido = errors.New("estado del comprobante no admite la operación")

	// ErrRechazado: AFIP rechazó el comprobante (regla de negocio, no
	// transporte). El detalle queda en el diagnóstico del comprobante.
	ErrRechazado = errors.New("comprobante rechazado por AFIP")

	// ErrTransporte: timeout o falla de conectividad. El estado remoto es
	// desconocido y debe reconciliarse antes de reenviar.
	ErrTransporte = errors.New("falla de transporte con AFIP")
)
