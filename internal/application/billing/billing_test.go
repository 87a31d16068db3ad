package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvidela/facturador-api/internal/application/dto"
	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/repository"
	infraafip "github.com/lvidela/facturador-api/internal/infrastructure/afip"
	"github.com/lvidela/facturador-api/pkg/afip"
	"github.com/lvidela/facturador-api/pkg/logger"
)

// ── fakes en memoria ──────────────────────────────────────────────────────────

type fakeComprobanteRepo struct {
	mu           sync.Mutex
	comprobantes map[string]*entity.Comprobante
	items        map[string][]*entity.ItemComprobante
}

func newFakeComprobanteRepo() *fakeComprobanteRepo {
	return &fakeComprobanteRepo{
		comprobantes: make(map[string]*entity.Comprobante),
		items:        make(map[string][]*entity.ItemComprobante),
	}
}

func (r *fakeComprobanteRepo) Create(c *entity.Comprobante) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *c
	r.comprobantes[c.ID] = &copia
	return nil
}

func (r *fakeComprobanteRepo) CreateItem(item *entity.ItemComprobante) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *item
	r.items[item.ComprobanteID] = append(r.items[item.ComprobanteID], &copia)
	return nil
}

func (r *fakeComprobanteRepo) UpdateEstado(c *entity.Comprobante) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	guardado, ok := r.comprobantes[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	guardado.Estado = c.Estado
	guardado.Numero = c.Numero
	guardado.CAE = c.CAE
	guardado.CAEVencimiento = c.CAEVencimiento
	guardado.ErrorDetalle = c.ErrorDetalle
	guardado.UpdatedAt = c.UpdatedAt
	return nil
}

func (r *fakeComprobanteRepo) GetByID(id string) (*entity.Comprobante, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comprobantes[id]
	if !ok {
		return nil, nil
	}
	copia := *c
	copia.Items = nil
	for _, it := range r.items[id] {
		copia.Items = append(copia.Items, *it)
	}
	return &copia, nil
}

func (r *fakeComprobanteRepo) GetItemsByComprobanteID(comprobanteID string) ([]*entity.ItemComprobante, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[comprobanteID], nil
}

func (r *fakeComprobanteRepo) List(limit, offset int) ([]*entity.Comprobante, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Comprobante, 0, len(r.comprobantes))
	for _, c := range r.comprobantes {
		copia := *c
		out = append(out, &copia)
	}
	return out, nil
}

func (r *fakeComprobanteRepo) ListByOrigen(origenID string) ([]*entity.Comprobante, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Comprobante
	for _, c := range r.comprobantes {
		if c.OrigenID == origenID {
			copia := *c
			out = append(out, &copia)
		}
	}
	return out, nil
}

type fakeVentaRepo struct {
	mu     sync.Mutex
	ventas map[string]*entity.Venta
}

func newFakeVentaRepo() *fakeVentaRepo {
	return &fakeVentaRepo{ventas: make(map[string]*entity.Venta)}
}

func (r *fakeVentaRepo) Create(v *entity.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *v
	r.ventas[v.ID] = &copia
	return nil
}

func (r *fakeVentaRepo) GetByID(id string) (*entity.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return nil, nil
	}
	copia := *v
	return &copia, nil
}

func (r *fakeVentaRepo) SetComprobante(ventaID, comprobanteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[ventaID]
	if !ok {
		return domain.ErrNotFound
	}
	v.ComprobanteID = comprobanteID
	return nil
}

func (r *fakeVentaRepo) List(limit, offset int) ([]*entity.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		copia := *v
		out = append(out, &copia)
	}
	return out, nil
}

type fakeClienteRepo struct {
	clientes map[string]*entity.Cliente
}

func newFakeClienteRepo() *fakeClienteRepo {
	return &fakeClienteRepo{clientes: make(map[string]*entity.Cliente)}
}

func (r *fakeClienteRepo) Create(c *entity.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *fakeClienteRepo) GetByID(id string) (*entity.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (r *fakeClienteRepo) GetByDocumento(tipoDoc entity.TipoDocumento, nroDoc string) (*entity.Cliente, error) {
	for _, c := range r.clientes {
		if c.Perfil.TipoDoc == tipoDoc && c.Perfil.NroDoc == nroDoc {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeClienteRepo) List(limit, offset int) ([]*entity.Cliente, error) {
	out := make([]*entity.Cliente, 0, len(r.clientes))
	for _, c := range r.clientes {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeClienteRepo) Update(c *entity.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *fakeClienteRepo) Delete(id string) error {
	delete(r.clientes, id)
	return nil
}

// fakeTxRunner pasa los repos tal cual, sin transacción real.
type fakeTxRunner struct {
	ventaRepo       repository.VentaRepository
	comprobanteRepo repository.ComprobanteRepository
}

func (r *fakeTxRunner) RunBilling(ctx context.Context, fn func(
	ventaRepo repository.VentaRepository,
	comprobanteRepo repository.ComprobanteRepository,
) error) error {
	return fn(r.ventaRepo, r.comprobanteRepo)
}

// fakeAutorizador doble del WS de AFIP con respuestas configurables.
type fakeAutorizador struct {
	mu         sync.Mutex
	ultimo     int64
	resultado  *infraafip.ResultadoCAE
	errAutoriz error
	solicitud  *infraafip.SolicitudCAE // última recibida
	bloqueo    chan struct{}           // si no es nil, Autorizar espera acá
}

func (f *fakeAutorizador) Autorizar(ctx context.Context, s *infraafip.SolicitudCAE) (*infraafip.ResultadoCAE, error) {
	f.mu.Lock()
	f.solicitud = s
	bloqueo := f.bloqueo
	f.mu.Unlock()
	if bloqueo != nil {
		<-bloqueo
	}
	if f.errAutoriz != nil {
		return nil, f.errAutoriz
	}
	res := *f.resultado
	if res.Numero == 0 {
		res.Numero = s.CbteNumero
	}
	return &res, nil
}

func (f *fakeAutorizador) UltimoAutorizado(ctx context.Context, puntoVenta, cbteTipo int) (int64, error) {
	return f.ultimo, nil
}

// ── fixtures ──────────────────────────────────────────────────────────────────

func emisorDePrueba() EmisorConfig {
	return EmisorConfig{
		CUIT:        30500010912,
		RazonSocial: "Almacén Don Vito SRL",
		PuntoVenta:  3,
		Concepto:    afip.ConceptoProductos,
		Moneda:      afip.MonedaPesos,
		Cotizacion:  decimal.NewFromInt(1),
	}
}

func loggerDePrueba() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

func clienteRI() *entity.Cliente {
	return &entity.Cliente{
		ID:     "cli-ri",
		Nombre: "Distribuidora Norte SA",
		Perfil: entity.PerfilFiscal{
			Condicion:   entity.CondicionResponsableInscripto,
			TipoDoc:     entity.DocCUIT,
			NroDoc:      "30500010912",
			RazonSocial: "Distribuidora Norte SA",
		},
	}
}

func ventaConsumidorFinal(id string) *entity.Venta {
	return &entity.Venta{
		ID:         id,
		Cliente:    entity.RefByID[entity.Cliente](""),
		VendedorID: "user-1",
		Fecha:      time.Now(),
		Items: []entity.ItemVenta{
			{Descripcion: "Yerba mate 1kg", Cantidad: decimal.NewFromInt(2), PrecioUnitario: dec("4500.00"), AlicuotaID: afip.AlicIVA21},
			{Descripcion: "Azúcar 1kg", Cantidad: decimal.NewFromInt(1), PrecioUnitario: dec("1200.00"), AlicuotaID: afip.AlicIVA21},
		},
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type entorno struct {
	comprobantes *fakeComprobanteRepo
	ventas       *fakeVentaRepo
	clientes     *fakeClienteRepo
	emitir       *EmitirComprobanteUseCase
	notas        *DerivarNotaUseCase
}

func nuevoEntorno() *entorno {
	comprobantes := newFakeComprobanteRepo()
	ventas := newFakeVentaRepo()
	clientes := newFakeClienteRepo()
	tx := &fakeTxRunner{ventaRepo: ventas, comprobanteRepo: comprobantes}
	emisor := emisorDePrueba()
	return &entorno{
		comprobantes: comprobantes,
		ventas:       ventas,
		clientes:     clientes,
		emitir:       NewEmitirComprobanteUseCase(tx, ventas, clientes, comprobantes, emisor),
		notas:        NewDerivarNotaUseCase(tx, comprobantes, emisor),
	}
}

// ── Emitir ────────────────────────────────────────────────────────────────────

func TestEmitir_FacturaBConsumidorFinal(t *testing.T) {
	e := nuevoEntorno()
	require.NoError(t, e.ventas.Create(ventaConsumidorFinal("v1")))

	resp, err := e.emitir.Emitir(context.Background(), "v1")
	require.NoError(t, err)

	assert.Equal(t, entity.KindFactura, resp.Kind)
	assert.Equal(t, afip.CbteFacturaB, resp.CbteTipo, "consumidor final recibe factura B")
	assert.Equal(t, entity.EstadoDraft, resp.Estado)
	assert.Equal(t, 3, resp.PuntoVenta)
	assert.Nil(t, resp.Numero, "el número lo asigna AFIP, no la emisión")

	// 2x4500 + 1200 = 10200 final al 21%
	assert.True(t, resp.Desglose.Total.Equal(dec("10200.00")), "total %s", resp.Desglose.Total)
	assert.True(t, resp.Desglose.Neto.Add(resp.Desglose.IVA).Equal(resp.Desglose.Total),
		"neto + IVA debe reconstruir el total")

	// La venta quedó vinculada al comprobante.
	venta, err := e.ventas.GetByID("v1")
	require.NoError(t, err)
	assert.Equal(t, resp.ID, venta.ComprobanteID)
}

func TestEmitir_FacturaAResponsableInscripto(t *testing.T) {
	e := nuevoEntorno()
	require.NoError(t, e.clientes.Create(clienteRI()))
	venta := ventaConsumidorFinal("v2")
	venta.Cliente = entity.RefByID[entity.Cliente]("cli-ri")
	require.NoError(t, e.ventas.Create(venta))

	resp, err := e.emitir.Emitir(context.Background(), "v2")
	require.NoError(t, err)
	assert.Equal(t, afip.CbteFacturaA, resp.CbteTipo)
	assert.Equal(t, "30500010912", resp.Receptor.NroDoc)
}

func TestEmitir_VentaYaFacturada(t *testing.T) {
	e := nuevoEntorno()
	require.NoError(t, e.ventas.Create(ventaConsumidorFinal("v3")))

	_, err := e.emitir.Emitir(context.Background(), "v3")
	require.NoError(t, err)

	_, err = e.emitir.Emitir(context.Background(), "v3")
	assert.ErrorIs(t, err, domain.ErrDuplicate, "una venta factura una sola vez")
}

func TestEmitir_CostoEnvioComoLinea(t *testing.T) {
	e := nuevoEntorno()
	venta := ventaConsumidorFinal("v4")
	venta.CostoEnvio = dec("1500.00")
	require.NoError(t, e.ventas.Create(venta))

	resp, err := e.emitir.Emitir(context.Background(), "v4")
	require.NoError(t, err)

	require.Len(t, resp.Items, 3, "el envío va como línea propia")
	assert.Equal(t, "Costo de envío", resp.Items[2].Descripcion)
	assert.True(t, resp.Desglose.Total.Equal(dec("11700.00")))
}

func TestEmitir_VentaInexistente(t *testing.T) {
	e := nuevoEntorno()
	_, err := e.emitir.Emitir(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── Derivar notas ─────────────────────────────────────────────────────────────

// autoriza marca el comprobante como AUTHORIZED directamente en el repo.
func autoriza(t *testing.T, repo *fakeComprobanteRepo, id string, numero int64) {
	t.Helper()
	c, err := repo.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, c)
	vto := time.Now().AddDate(0, 0, 10)
	c.Estado = entity.EstadoAutorizado
	c.Numero = &numero
	c.CAE = "71234567890123"
	c.CAEVencimiento = &vto
	require.NoError(t, repo.UpdateEstado(c))
}

func TestDerivar_NotaCreditoTotal(t *testing.T) {
	e := nuevoEntorno()
	require.NoError(t, e.ventas.Create(ventaConsumidorFinal("v1")))
	factura, err := e.emitir.Emitir(context.Background(), "v1")
	require.NoError(t, err)
	autoriza(t, e.comprobantes, factura.ID, 101)

	nota, err := e.notas.Derivar(context.Background(), factura.ID, entity.KindNotaCredito, nil)
	require.NoError(t, err)

	assert.Equal(t, afip.CbteNotaCreditoB, nota.CbteTipo, "la nota hereda la clase B del origen")
	assert.Equal(t, entity.EstadoDraft, nota.Estado)
	assert.Equal(t, factura.ID, nota.OrigenID)
	assert.Empty(t, nota.VentaID, "la nota no pertenece a la venta")
	assert.True(t, nota.Desglose.Total.Equal(dec("10200.00")), "anulación total replica el importe")
	assert.Len(t, nota.Items, len(factura.Items))
}

func TestDerivar_DosNotasContraElMismoOrigen(t *testing.T) {
	e := nuevoEntorno()
	require.NoError(t, e.ventas.Create(ventaConsumidorFinal("v1")))
	factura, err := e.emitir.Emitir(context.Background(), "v1")
	require.NoError(t, err)
	autoriza(t, e.comprobantes, factura.ID, 101)

	primera, err := e.notas.Derivar(context.Background(), factura.ID, entity.KindNotaCredito, nil)
	require.NoError(t, err)
	segunda, err := e.notas.Derivar(context.Background(), factura.ID, entity.KindNotaCredito, nil)
	require.NoError(t, err)

	// Cada derivación crea una nota nueva; el cálculo sobre el mismo origen
	// reproduce el mismo desglose.
	assert.NotEqual(t, primera.ID, segunda.ID, "cada nota es un comprobante propio")
	assert.True(t, segunda.Desglose.Total.Equal(primera.Desglose.Total))
	assert.True(t, segunda.Desglose.Neto.Equal(primera.Desglose.Neto))
	assert.True(t, segunda.Desglose.IVA.Equal(primera.Desglose.IVA))

	notas, err := e.comprobantes.ListByOrigen(factura.ID)
	require.NoError(t, err)
	assert.Len(t, notas, 2)
}

func TestDerivar_ReceptorCongelado(t *testing.T) {
	e := nuevoEntorno()
	require.NoError(t, e.clientes.Create(clienteRI()))
	venta := ventaConsumidorFinal("v1")
	venta.Cliente = entity.RefByID[entity.Cliente]("cli-ri")
	require.NoError(t, e.ventas.Create(venta))
	factura, err := e.emitir.Emitir(context.Background(), "v1")
	require.NoError(t, err)
	autoriza(t, e.comprobantes, factura.ID, 55)

	// El cliente cambia de condición después de autorizada la factura.
	cli, _ := e.clientes.GetByID("cli-ri")
	cli.Perfil.Condicion = entity.CondicionMonotributo
	require.NoError(t, e.clientes.Update(cli))

	nota, err := e.notas.Derivar(context.Background(), factura.ID, entity.KindNotaCredito, nil)
	require.NoError(t, err)

	assert.Equal(t, afip.CbteNotaCreditoA, nota.CbteTipo,
		"la clase sale del comprobante de origen, no del perfil actual")
	assert.Equal(t, string(entity.CondicionResponsableInscripto), nota.Receptor.CondicionIVA)
}

func TestDerivar_OrigenNoAutorizado(t *testing.T) {
	e := nuevoEntorno()
	require.NoError(t, e.ventas.Create(ventaConsumidorFinal("v1")))
	factura, err := e.emitir.Emitir(context.Background(), "v1")
	require.NoError(t, err)

	_, err = e.notas.Derivar(context.Background(), factura.ID, entity.KindNotaCredito, nil)
	assert.ErrorIs(t, err, domain.ErrOriginalNoAutorizado)
}

func TestDerivar_NotaDebitoParcialExcedeOriginal(t *testing.T) {
	e := nuevoEntorno()
	require.NoError(t, e.ventas.Create(ventaConsumidorFinal("v1")))
	factura, err := e.emitir.Emitir(context.Background(), "v1")
	require.NoError(t, err)
	autoriza(t, e.comprobantes, factura.ID, 101)

	// Intereses por mora que superan el total del origen: válido.
	nota, err := e.notas.Derivar(context.Background(), factura.ID, entity.KindNotaDebito, []dto.ItemVentaRequest{
		{Descripcion: "Intereses por mora", Cantidad: decimal.NewFromInt(1), PrecioUnitario: dec("50000.00"), AlicuotaID: afip.AlicIVA21},
	})
	require.NoError(t, err)
	assert.Equal(t, afip.CbteNotaDebitoB, nota.CbteTipo)
	assert.True(t, nota.Desglose.Total.GreaterThan(dec("10200.00")))
}

func TestDerivar_KindInvalido(t *testing.T) {
	e := nuevoEntorno()
	_, err := e.notas.Derivar(context.Background(), "x", entity.KindFactura, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Enviar (ciclo de autorización) ────────────────────────────────────────────

func facturaDraft(t *testing.T, e *entorno) string {
	t.Helper()
	require.NoError(t, e.ventas.Create(ventaConsumidorFinal("venta-envio")))
	factura, err := e.emitir.Emitir(context.Background(), "venta-envio")
	require.NoError(t, err)
	return factura.ID
}

func TestEnviar_Autorizado(t *testing.T) {
	e := nuevoEntorno()
	id := facturaDraft(t, e)

	vto := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	ws := &fakeAutorizador{
		ultimo: 100,
		resultado: &infraafip.ResultadoCAE{
			Aprobado:       true,
			CAE:            "71234567890123",
			CAEVencimiento: vto,
		},
	}
	uc := NewEnviarComprobanteUseCase(e.comprobantes, ws, emisorDePrueba(), loggerDePrueba())

	estado, err := uc.Enviar(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, entity.EstadoAutorizado, estado.Estado)
	assert.Equal(t, "71234567890123", estado.CAE)
	require.NotNil(t, estado.Numero)
	assert.Equal(t, int64(101), *estado.Numero, "número = último autorizado + 1")
	assert.Equal(t, "2026-04-10", estado.CAEVencimiento)

	// El estado quedó persistido.
	c, err := e.comprobantes.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoAutorizado, c.Estado)
	assert.Equal(t, "71234567890123", c.CAE)

	// La solicitud llevó los importes del desglose.
	require.NotNil(t, ws.solicitud)
	assert.True(t, ws.solicitud.ImpTotal.Equal(dec("10200.00")))
	assert.Equal(t, afip.DocTipoConsumidorFinal, ws.solicitud.DocTipo)
	require.Len(t, ws.solicitud.Alicuotas, 1)
	assert.Equal(t, afip.AlicIVA21, ws.solicitud.Alicuotas[0].ID)
}

func TestEnviar_Rechazado(t *testing.T) {
	e := nuevoEntorno()
	id := facturaDraft(t, e)

	ws := &fakeAutorizador{
		ultimo:    100,
		resultado: &infraafip.ResultadoCAE{Aprobado: false, Observaciones: "[10016] Campo CbteFch invalido"},
	}
	uc := NewEnviarComprobanteUseCase(e.comprobantes, ws, emisorDePrueba(), loggerDePrueba())

	_, err := uc.Enviar(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrRechazado)

	c, _ := e.comprobantes.GetByID(id)
	assert.Equal(t, entity.EstadoError, c.Estado)
	assert.Contains(t, c.ErrorDetalle, "10016")
	assert.Empty(t, c.CAE, "un rechazo nunca deja CAE")
}

func TestEnviar_FallaDeTransporte(t *testing.T) {
	e := nuevoEntorno()
	id := facturaDraft(t, e)

	ws := &fakeAutorizador{ultimo: 100, errAutoriz: errors.New("connection reset")}
	uc := NewEnviarComprobanteUseCase(e.comprobantes, ws, emisorDePrueba(), loggerDePrueba())

	_, err := uc.Enviar(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrTransporte)

	c, _ := e.comprobantes.GetByID(id)
	assert.Equal(t, entity.EstadoError, c.Estado)
	assert.Contains(t, c.ErrorDetalle, "transporte")
}

func TestEnviar_ReenvioDespuesDeError(t *testing.T) {
	e := nuevoEntorno()
	id := facturaDraft(t, e)

	ws := &fakeAutorizador{ultimo: 100, errAutoriz: errors.New("timeout")}
	uc := NewEnviarComprobanteUseCase(e.comprobantes, ws, emisorDePrueba(), loggerDePrueba())

	_, err := uc.Enviar(context.Background(), id)
	require.ErrorIs(t, err, domain.ErrTransporte)

	// El WS se recupera; ERROR es reenviable.
	ws.errAutoriz = nil
	ws.resultado = &infraafip.ResultadoCAE{Aprobado: true, CAE: "79999999999999"}

	estado, err := uc.Enviar(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoAutorizado, estado.Estado)
	assert.Empty(t, estado.ErrorDetalle, "el diagnóstico anterior se limpia al autorizar")
}

func TestEnviar_AutorizadoEsTerminal(t *testing.T) {
	e := nuevoEntorno()
	id := facturaDraft(t, e)
	autoriza(t, e.comprobantes, id, 101)

	uc := NewEnviarComprobanteUseCase(e.comprobantes, &fakeAutorizador{}, emisorDePrueba(), loggerDePrueba())
	_, err := uc.Enviar(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrEstadoInvalido)
}

func TestEnviar_EnvioEnCurso(t *testing.T) {
	e := nuevoEntorno()
	id := facturaDraft(t, e)

	bloqueo := make(chan struct{})
	ws := &fakeAutorizador{
		ultimo:    100,
		resultado: &infraafip.ResultadoCAE{Aprobado: true, CAE: "71234567890123"},
		bloqueo:   bloqueo,
	}
	uc := NewEnviarComprobanteUseCase(e.comprobantes, ws, emisorDePrueba(), loggerDePrueba())

	hecho := make(chan error, 1)
	go func() {
		_, err := uc.Enviar(context.Background(), id)
		hecho <- err
	}()

	// Esperar a que el primer envío llegue al WS.
	require.Eventually(t, func() bool {
		ws.mu.Lock()
		defer ws.mu.Unlock()
		return ws.solicitud != nil
	}, time.Second, 5*time.Millisecond)

	_, err := uc.Enviar(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrEnvioEnCurso, "un segundo envío del mismo comprobante se rechaza")

	close(bloqueo)
	require.NoError(t, <-hecho)
}

func TestEnviar_NotaLlevaComprobanteAsociado(t *testing.T) {
	e := nuevoEntorno()
	require.NoError(t, e.ventas.Create(ventaConsumidorFinal("v1")))
	factura, err := e.emitir.Emitir(context.Background(), "v1")
	require.NoError(t, err)
	autoriza(t, e.comprobantes, factura.ID, 101)

	nota, err := e.notas.Derivar(context.Background(), factura.ID, entity.KindNotaCredito, nil)
	require.NoError(t, err)

	ws := &fakeAutorizador{
		ultimo:    7,
		resultado: &infraafip.ResultadoCAE{Aprobado: true, CAE: "75555555555555"},
	}
	uc := NewEnviarComprobanteUseCase(e.comprobantes, ws, emisorDePrueba(), loggerDePrueba())

	estado, err := uc.Enviar(context.Background(), nota.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoAutorizado, estado.Estado)

	require.NotNil(t, ws.solicitud)
	assert.Equal(t, afip.CbteFacturaB, ws.solicitud.CbteAsocTipo)
	assert.Equal(t, int64(101), ws.solicitud.CbteAsocNro)
	assert.Equal(t, 3, ws.solicitud.CbteAsocPtoVta)
}
