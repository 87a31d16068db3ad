package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/lvidela/facturador-api/internal/application/auth"
	"github.com/lvidela/facturador-api/internal/application/billing"
	infraafip "github.com/lvidela/facturador-api/internal/infrastructure/afip"
	infrapdf "github.com/lvidela/facturador-api/internal/infrastructure/pdf"
	"github.com/lvidela/facturador-api/internal/infrastructure/postgres"
	httpRouter "github.com/lvidela/facturador-api/internal/interfaces/http"
	"github.com/lvidela/facturador-api/pkg/config"
	"github.com/lvidela/facturador-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("afip_env", cfg.AFIP.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	usuarioRepo := postgres.NewUsuarioRepository(pool)
	clienteRepo := postgres.NewClienteRepository(pool)
	ventaRepo := postgres.NewVentaRepository(pool)
	comprobanteRepo := postgres.NewComprobanteRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	cotizacion, err := decimal.NewFromString(cfg.AFIP.Cotizacion)
	if err != nil {
		log.Fatal().Err(err).Str("valor", cfg.AFIP.Cotizacion).Msg("AFIP_COTIZACION inválida")
	}
	emisor := billing.EmisorConfig{
		CUIT:        cfg.AFIP.CUIT,
		RazonSocial: cfg.AFIP.RazonSocial,
		PuntoVenta:  cfg.AFIP.PuntoVenta,
		Concepto:    cfg.AFIP.Concepto,
		Moneda:      cfg.AFIP.Moneda,
		Cotizacion:  cotizacion,
	}

	// Autorizador AFIP: WSFEv1 real en "test"/"prod", simulado en "dev".
	// El ticket WSAA se firma out-of-band y se lee del archivo configurado.
	var autorizador infraafip.Autorizador
	if cfg.AFIP.Env == infraafip.AppEnvDev {
		log.Warn().Msg("ambiente dev: autorización AFIP simulada, los CAE no son reales")
		autorizador = infraafip.NewSimulador()
	} else {
		tickets := infraafip.NewFileTicketSource(cfg.AFIP.TAPath)
		autorizador, err = infraafip.NewWSFEClient(cfg.AFIP.Env, tickets, cfg.AFIP.CUIT)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente WSFE")
		}
	}

	clienteUC := billing.NewClienteUseCase(clienteRepo)
	ventaUC := billing.NewVentaUseCase(ventaRepo, clienteRepo)
	emitirUC := billing.NewEmitirComprobanteUseCase(txRunner, ventaRepo, clienteRepo, comprobanteRepo, emisor)
	enviarUC := billing.NewEnviarComprobanteUseCase(comprobanteRepo, autorizador, emisor, log)
	derivarUC := billing.NewDerivarNotaUseCase(txRunner, comprobanteRepo, emisor)

	// PDF: representación impresa del comprobante autorizado (CAE + QR)
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	pdfUC := billing.NewPDFUseCase(comprobanteRepo, pdfGenerator, emisor)

	authUC := auth.NewAuthUseCase(usuarioRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturador API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ClienteUC: clienteUC,
		VentaUC:   ventaUC,
		EmitirUC:  emitirUC,
		EnviarUC:  enviarUC,
		DerivarUC: derivarUC,
		PDFUC:     pdfUC,
		AuthUC:    authUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
