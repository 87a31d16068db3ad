package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lvidela/facturador-api/internal/application/auth"
	"github.com/lvidela/facturador-api/internal/application/billing"
	"github.com/lvidela/facturador-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ClienteUC *billing.ClienteUseCase
	VentaUC   *billing.VentaUseCase
	EmitirUC  *billing.EmitirComprobanteUseCase
	EnviarUC  *billing.EnviarComprobanteUseCase
	DerivarUC *billing.DerivarNotaUseCase
	PDFUC     *billing.PDFUseCase
	AuthUC    *auth.AuthUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Clientes (protegido)
	clientes := protected.Group("/clientes")
	clienteHandler := NewClienteHandler(deps.ClienteUC)
	clientes.Post("/", clienteHandler.Create)
	clientes.Get("/", clienteHandler.List)
	clientes.Get("/:id", clienteHandler.GetByID)
	clientes.Put("/:id", clienteHandler.Update)
	clientes.Delete("/:id", RequireRole(entity.RoleAdmin), clienteHandler.Delete)

	// Ventas (protegido)
	ventas := protected.Group("/ventas")
	ventaHandler := NewVentaHandler(deps.VentaUC)
	ventas.Post("/", ventaHandler.Create)
	ventas.Get("/", ventaHandler.List)
	ventas.Get("/:id", ventaHandler.GetByID)

	// Comprobantes: emisión, envío a AFIP, notas y PDF (protegido)
	comprobanteHandler := NewComprobanteHandler(deps.EmitirUC, deps.EnviarUC, deps.DerivarUC, deps.PDFUC)
	ventas.Post("/:id/comprobante", comprobanteHandler.Emitir)

	comprobantes := protected.Group("/comprobantes")
	comprobantes.Get("/", comprobanteHandler.List)
	comprobantes.Get("/:id", comprobanteHandler.GetByID)
	comprobantes.Get("/:id/estado", comprobanteHandler.Estado)
	comprobantes.Post("/:id/enviar", comprobanteHandler.Enviar)
	comprobantes.Post("/:id/notas", comprobanteHandler.CrearNota)
	comprobantes.Get("/:id/notas", comprobanteHandler.ListNotas)
	comprobantes.Get("/:id/pdf", comprobanteHandler.PDF)
}
