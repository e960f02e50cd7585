// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	_ "dmx-service/docs"
	"dmx-service/internal/config"
	"dmx-service/internal/dmx"
	"dmx-service/internal/handler"
	"dmx-service/internal/protocol/serial"
	"dmx-service/internal/routes"
	"dmx-service/internal/utils"
)

// Application represents the main application
type Application struct {
	config        *config.Config
	logger        *zap.Logger
	serviceLogger *utils.ServiceLogger
	server        *http.Server
	router        *routes.Router

	transport  *serial.Transport
	controller *dmx.Controller
	eventBus   *handler.EventBus
}

// @title DMX Service API
// @version 1.0.0
// @description DMX512 output over USB serial interfaces. Levels set through the API are retransmitted continuously until changed.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8085
// @BasePath /api/v1
func main() {
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, cfg.App.Name)
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config:        cfg,
		logger:        logger,
		serviceLogger: serviceLogger,
	}

	app.initializeEventBus()

	if err := app.initializeDMX(); err != nil {
		return nil, fmt.Errorf("failed to initialize dmx output: %w", err)
	}

	app.initializeServer()

	return app, nil
}

// initializeEventBus starts the bus carrying writer state events
func (app *Application) initializeEventBus() {
	app.eventBus = handler.NewEventBus(app.logger)
	go app.eventBus.Start()
}

// initializeDMX creates the serial transport and the DMX controller
func (app *Application) initializeDMX() error {
	timing := dmx.DefaultTiming()

	app.transport = serial.NewTransport(timing.Break, app.logger)
	app.controller = dmx.NewController(app.transport, app.logger,
		dmx.WithTiming(timing),
		dmx.WithBlackoutOnStop(app.config.DMX.BlackoutOnShutdown),
	)
	app.controller.Subscribe(handler.WriterStateListener(
		app.eventBus,
		utils.NewServiceLogger(app.logger, "dmx-writer"),
	))

	if port := app.config.DMX.DefaultPort; port != "" {
		// the writer keeps retrying in the background if the port is absent
		if err := app.controller.Blackout(port); err != nil {
			return fmt.Errorf("failed to select default port %s: %w", port, err)
		}
		app.logger.Info("DMX output started on default port", zap.String("port", port))
	}

	app.logger.Info("DMX controller initialized",
		zap.Duration("cycle", timing.Cycle),
		zap.Duration("break", timing.Break),
		zap.Duration("mark_after_break", timing.MarkAfterBreak),
	)
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() {
	app.router = routes.NewRouter(app.config, app.logger, app.controller, app.eventBus)

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      app.router.SetupRouter(),
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
		zap.Bool("tls_enabled", app.config.Server.TLS.Enabled),
	)
}

// Start serves HTTP until a shutdown signal arrives
func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.waitForShutdown()

	return nil
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown stops the HTTP server first so no level update races the writer stop
func (app *Application) shutdown() {
	app.serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer cancel()

	app.router.Close()
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	if err := app.controller.Shutdown(ctx); err != nil {
		app.logger.Error("DMX writer shutdown error", zap.Error(err))
	} else {
		app.logger.Info("DMX writer stopped")
	}

	app.transport.CloseAll()

	app.eventBus.Stop()

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}
