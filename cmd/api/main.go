package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sangkips/inventario/internal/application/service"
	"github.com/sangkips/inventario/internal/config"
	domainRepo "github.com/sangkips/inventario/internal/domain/repository"
	"github.com/sangkips/inventario/internal/infrastructure/database"
	"github.com/sangkips/inventario/internal/infrastructure/repository"
	"github.com/sangkips/inventario/internal/infrastructure/storage/jsonfile"
	"github.com/sangkips/inventario/internal/presentation/http/handler"
	"github.com/sangkips/inventario/internal/presentation/http/middleware"
	"github.com/sangkips/inventario/internal/presentation/http/routes"
	"github.com/sangkips/inventario/pkg/logger"
	"github.com/sangkips/inventario/pkg/printer"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		logrus.WithError(err).Fatal("invalid logging configuration")
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}

	inventory := service.NewInventoryService(ctx, storage, log)
	sales := service.NewSalesService(ctx, inventory, storage, log)
	carts := service.NewCartService(inventory, sales, log)
	reports := service.NewReportService(sales, log)

	thermalPrinter, err := printer.New(printer.Config{
		Type:      cfg.Printer.Type,
		USBPath:   cfg.Printer.USBPath,
		Address:   cfg.Printer.Address,
		FilePath:  cfg.Printer.FilePath,
		CharWidth: cfg.Printer.CharWidth,
	})
	if err != nil {
		log.WithError(err).Warn("failed to initialize printer, receipts will not be printed")
		thermalPrinter, _ = printer.New(printer.Config{Type: "none"})
	}
	printerService := service.NewPrinterService(thermalPrinter, sales, cfg.Store.Name, cfg.Printer.CharWidth, log)

	handlers := &routes.Handlers{
		Product: handler.NewProductHandler(inventory, cfg.Store.LowStockThreshold),
		Sale:    handler.NewSaleHandler(sales),
		Cart:    handler.NewCartHandler(carts),
		Report:  handler.NewReportHandler(reports),
		Printer: handler.NewPrinterHandler(printerService),
	}

	router := routes.Setup(ctx, handlers, &routes.Deps{
		Cfg:         cfg,
		Log:         log,
		Idempotency: middleware.NewIdempotencyStore(ctx, middleware.IdempotencyKeyTTL),
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"service": cfg.App.Name,
			"port":    port,
			"env":     cfg.App.Env,
			"storage": cfg.Storage.Driver,
		}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "listen")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
}

func openStorage(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (domainRepo.Storage, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := database.NewPostgresDB(ctx, &cfg.Database, cfg.App.Debug, log)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db, log); err != nil {
			return nil, err
		}
		return repository.NewGormStorage(db), nil
	case "json", "":
		store, err := jsonfile.Open(cfg.Storage.DataDir, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q (use json or postgres)", cfg.Storage.Driver)
	}
}
