package billing

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/lvidela/facturador-api/internal/application/dto"
	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/fiscal"
	"github.com/lvidela/facturador-api/internal/domain/repository"
	infraafip "github.com/lvidela/facturador-api/internal/infrastructure/afip"
	"github.com/lvidela/facturador-api/pkg/logger"
)

// EnviarComprobanteUseCase maneja el ciclo de autorización ante AFIP:
//
//	DRAFT → PENDING → AUTHORIZED (terminal)
//	        PENDING → ERROR      (reenvíable)
//
// Dos garantías de concurrencia:
//   - A lo sumo un envío en vuelo por comprobante: el segundo Enviar sobre el
//     mismo ID retorna ErrEnvioEnCurso sin tocar nada.
//   - Los envíos de una misma serie (punto de venta, tipo) se serializan: la
//     numeración la asigna AFIP en orden y dos pedidos cruzados chocarían.
type EnviarComprobanteUseCase struct {
	comprobanteRepo repository.ComprobanteRepository
	autorizador     infraafip.Autorizador
	emisor          EmisorConfig
	log             *logger.Logger

	enVuelo sync.Map // comprobante ID → struct{}

	seriesMu sync.Mutex
	series   map[serieKey]*sync.Mutex
}

type serieKey struct {
	puntoVenta int
	cbteTipo   int
}

// NewEnviarComprobanteUseCase construye el caso de uso.
func NewEnviarComprobanteUseCase(
	comprobanteRepo repository.ComprobanteRepository,
	autorizador infraafip.Autorizador,
	emisor EmisorConfig,
	log *logger.Logger,
) *EnviarComprobanteUseCase {
	return &EnviarComprobanteUseCase{
		comprobanteRepo: comprobanteRepo,
		autorizador:     autorizador,
		emisor:          emisor,
		log:             log,
		series:          make(map[serieKey]*sync.Mutex),
	}
}

// Enviar somete el comprobante a autorización y bloquea hasta la respuesta de
// AFIP o el timeout del contexto. El estado final queda siempre persistido:
// AUTHORIZED con CAE, o ERROR con el diagnóstico en ErrorDetalle.
func (uc *EnviarComprobanteUseCase) Enviar(ctx context.Context, id string) (*dto.ComprobanteEstadoDTO, error) {
	if _, enCurso := uc.enVuelo.LoadOrStore(id, struct{}{}); enCurso {
		return nil, fmt.Errorf("%w: comprobante %s", domain.ErrEnvioEnCurso, id)
	}
	defer uc.enVuelo.Delete(id)

	c, err := uc.comprobanteRepo.GetByID(id)
	if err != nil || c == nil {
		return nil, domain.ErrNotFound
	}
	if !c.PuedeEnviarse() {
		return nil, fmt.Errorf("%w: el comprobante %s está en %s", domain.ErrEstadoInvalido, id, c.Estado)
	}
	if len(c.Items) == 0 {
		items, err := uc.comprobanteRepo.GetItemsByComprobanteID(id)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			c.Items = append(c.Items, *it)
		}
	}
	if err := fiscal.ValidarComprobante(c); err != nil {
		return nil, err
	}

	solicitud, err := uc.solicitud(c)
	if err != nil {
		return nil, err
	}

	// Serializar por serie: la numeración se consulta y consume en orden.
	mu := uc.serieMutex(c.PuntoVenta, c.CbteTipo)
	mu.Lock()
	defer mu.Unlock()

	ultimo, err := uc.autorizador.UltimoAutorizado(ctx, c.PuntoVenta, c.CbteTipo)
	if err != nil {
		return nil, fmt.Errorf("%w: consultar último autorizado: %v", domain.ErrTransporte, err)
	}
	numero := ultimo + 1
	solicitud.CbteNumero = numero

	c.Estado = entity.EstadoPending
	c.Numero = &numero
	c.ErrorDetalle = ""
	c.UpdatedAt = time.Now()
	if err := uc.comprobanteRepo.UpdateEstado(c); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("comprobante_id", c.ID).
		Int("cbte_tipo", c.CbteTipo).
		Int64("numero", numero).
		Msg("enviando solicitud de CAE")

	resultado, err := uc.autorizador.Autorizar(ctx, solicitud)
	switch {
	case err != nil:
		// Falla de transporte: el estado remoto es desconocido. Queda en
		// ERROR y el reenvío vuelve a consultar la numeración real.
		uc.marcarError(c, fmt.Sprintf("transporte: %v", err))
		return nil, fmt.Errorf("%w: %v", domain.ErrTransporte, err)

	case !resultado.Aprobado:
		uc.marcarError(c, resultado.Observaciones)
		return uc.estadoDTO(c), fmt.Errorf("%w: %s", domain.ErrRechazado, resultado.Observaciones)
	}

	c.Estado = entity.EstadoAutorizado
	c.CAE = resultado.CAE
	if !resultado.CAEVencimiento.IsZero() {
		vto := resultado.CAEVencimiento
		c.CAEVencimiento = &vto
	}
	if resultado.Numero > 0 {
		c.Numero = &resultado.Numero
	}
	c.ErrorDetalle = ""
	c.UpdatedAt = time.Now()
	if err := uc.comprobanteRepo.UpdateEstado(c); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("comprobante_id", c.ID).
		Str("cae", c.CAE).
		Int64("numero", *c.Numero).
		Msg("comprobante autorizado")

	return uc.estadoDTO(c), nil
}

// serieMutex devuelve el mutex de la serie, creándolo la primera vez.
func (uc *EnviarComprobanteUseCase) serieMutex(puntoVenta, cbteTipo int) *sync.Mutex {
	uc.seriesMu.Lock()
	defer uc.seriesMu.Unlock()
	key := serieKey{puntoVenta: puntoVenta, cbteTipo: cbteTipo}
	mu, ok := uc.series[key]
	if !ok {
		mu = &sync.Mutex{}
		uc.series[key] = mu
	}
	return mu
}

// marcarError persiste ERROR con el diagnóstico. Si además falla la
// persistencia solo se loguea: el error original es el que importa.
func (uc *EnviarComprobanteUseCase) marcarError(c *entity.Comprobante, detalle string) {
	c.Estado = entity.EstadoError
	c.ErrorDetalle = detalle
	c.CAE = ""
	c.CAEVencimiento = nil
	c.UpdatedAt = time.Now()
	if err := uc.comprobanteRepo.UpdateEstado(c); err != nil {
		uc.log.Error().
			Str("comprobante_id", c.ID).
			Err(err).
			Msg("no se pudo persistir el estado ERROR")
	}
	uc.log.Warn().
		Str("comprobante_id", c.ID).
		Str("detalle", detalle).
		Msg("comprobante en ERROR")
}

// solicitud mapea el comprobante a la solicitud FECAESolicitar: importes del
// desglose, alícuotas agrupadas y el comprobante asociado si es una nota.
func (uc *EnviarComprobanteUseCase) solicitud(c *entity.Comprobante) (*infraafip.SolicitudCAE, error) {
	docCodigo, err := fiscal.DocCodigo(c.Receptor.TipoDoc)
	if err != nil {
		return nil, err
	}
	var docNro int64
	if c.Receptor.NroDoc != "" {
		docNro, err = strconv.ParseInt(c.Receptor.NroDoc, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: número de documento %q no numérico", domain.ErrInvalidInput, c.Receptor.NroDoc)
		}
	}

	s := &infraafip.SolicitudCAE{
		CbteTipo:     c.CbteTipo,
		PuntoVenta:   c.PuntoVenta,
		Concepto:     c.Concepto,
		DocTipo:      docCodigo,
		DocNro:       docNro,
		FechaEmision: c.FechaEmision,
		ImpTotal:     c.Desglose.Total,
		ImpNeto:      c.Desglose.Neto,
		ImpIVA:       c.Desglose.IVA,
		ImpOpEx:      c.Desglose.Exento,
		ImpTotConc:   c.Desglose.NoGravado,
		ImpTrib:      c.Desglose.OtrosTributos,
		Moneda:       c.Moneda,
		Cotizacion:   c.Cotizacion,
		Alicuotas:    agruparAlicuotas(c.Items),
	}

	if c.EsNota() {
		origen, err := uc.comprobanteRepo.GetByID(c.OrigenID)
		if err != nil || origen == nil {
			return nil, fmt.Errorf("%w: comprobante de origen %s", domain.ErrNotFound, c.OrigenID)
		}
		if origen.Numero == nil {
			return nil, fmt.Errorf("%w: el origen %s no tiene número asignado", domain.ErrOriginalNoAutorizado, c.OrigenID)
		}
		s.CbteAsocTipo = origen.CbteTipo
		s.CbteAsocPtoVta = origen.PuntoVenta
		s.CbteAsocNro = *origen.Numero
	}
	return s, nil
}

// agruparAlicuotas acumula base e IVA por alícuota, en orden estable de Id.
func agruparAlicuotas(items []entity.ItemComprobante) []infraafip.AlicuotaIVA {
	porID := make(map[int]*infraafip.AlicuotaIVA)
	for _, it := range items {
		acc, ok := porID[it.AlicuotaID]
		if !ok {
			acc = &infraafip.AlicuotaIVA{ID: it.AlicuotaID}
			porID[it.AlicuotaID] = acc
		}
		acc.Base = acc.Base.Add(it.BaseImponible)
		acc.Importe = acc.Importe.Add(it.ImporteIVA)
	}
	ids := make([]int, 0, len(porID))
	for id := range porID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]infraafip.AlicuotaIVA, 0, len(ids))
	for _, id := range ids {
		out = append(out, *porID[id])
	}
	return out
}

func (uc *EnviarComprobanteUseCase) estadoDTO(c *entity.Comprobante) *dto.ComprobanteEstadoDTO {
	out := &dto.ComprobanteEstadoDTO{
		ID:           c.ID,
		Estado:       c.Estado,
		Numero:       c.Numero,
		CAE:          c.CAE,
		ErrorDetalle: c.ErrorDetalle,
	}
	if c.CAEVencimiento != nil {
		out.CAEVencimiento = c.CAEVencimiento.Format("2006-01-02")
	}
	return out
}
