package afip

import (
	"context"
	"fmt"
	"sync"
)

// Simulador implementa Autorizador sin llamar al WS. Se usa en ambiente "dev"
// para desarrollar el circuito completo sin ticket WSAA ni conectividad.
// Emite CAE sintéticos y numera cada serie en memoria.
type Simulador struct {
	mu      sync.Mutex
	ultimos map[[2]int]int64 // (puntoVenta, cbteTipo) → último número emitido
}

// NewSimulador construye el autorizador simulado.
func NewSimulador() *Simulador {
	return &Simulador{ultimos: make(map[[2]int]int64)}
}

var _ Autorizador = (*Simulador)(nil)

// Autorizar aprueba siempre y asigna el número pedido en la solicitud.
func (s *Simulador) Autorizar(_ context.Context, sol *SolicitudCAE) (*ResultadoCAE, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]int{sol.PuntoVenta, sol.CbteTipo}
	if sol.CbteNumero > s.ultimos[key] {
		s.ultimos[key] = sol.CbteNumero
	}
	return &ResultadoCAE{
		Aprobado:       true,
		CAE:            fmt.Sprintf("9%013d", sol.CbteNumero),
		CAEVencimiento: sol.FechaEmision.AddDate(0, 0, 10),
		Numero:         sol.CbteNumero,
	}, nil
}

// UltimoAutorizado devuelve el último número emitido en memoria para la serie.
func (s *Simulador) UltimoAutorizado(_ context.Context, puntoVenta, cbteTipo int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ultimos[[2]int{puntoVenta, cbteTipo}], nil
}
