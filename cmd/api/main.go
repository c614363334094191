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
	"github.com/tu-usuario/facturacion-pro/internal/application/auth"
	"github.com/tu-usuario/facturacion-pro/internal/application/billing"
	"github.com/tu-usuario/facturacion-pro/internal/application/usecase"
	infrapdf "github.com/tu-usuario/facturacion-pro/internal/infrastructure/pdf"
	"github.com/tu-usuario/facturacion-pro/internal/infrastructure/postgres"
	"github.com/tu-usuario/facturacion-pro/internal/infrastructure/printer"
	httpRouter "github.com/tu-usuario/facturacion-pro/internal/interfaces/http"
	"github.com/tu-usuario/facturacion-pro/pkg/config"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	printerClient := printer.NewHTTPPrinterClient()
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()

	customerUC := billing.NewCustomerUseCase(customerRepo, invoiceRepo)
	createInvoiceUC := billing.NewCreateInvoiceUseCase(
		txRunner, customerRepo, companyRepo, invoiceRepo, printerClient,
	)
	cancelInvoiceUC := billing.NewCancelInvoiceUseCase(txRunner, invoiceRepo, customerRepo)
	creditNoteUC := billing.NewCreditNoteUseCase(txRunner, invoiceRepo, customerRepo)
	pdfUC := billing.NewPDFUseCase(invoiceRepo, companyRepo, customerRepo, pdfGenerator)
	printUC := billing.NewPrintUseCase(invoiceRepo, customerRepo, companyRepo, printerClient)

	companyUC := usecase.NewCompanyUseCase(companyRepo)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
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
		Title:    "Facturación Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:     companyUC,
		CustomerUC:    customerUC,
		CreateInvoice: createInvoiceUC,
		CancelInvoice: cancelInvoiceUC,
		CreditNoteUC:  creditNoteUC,
		PDFUC:         pdfUC,
		PrintUC:       printUC,
		AuthUC:        authUC,
		JWTSecret:     cfg.JWT.Secret,
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
