package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/jvaldezc/tienda-core/internal/config"
	"github.com/jvaldezc/tienda-core/internal/repository/mongodb"
	"github.com/jvaldezc/tienda-core/internal/repository/sheets"
	"github.com/jvaldezc/tienda-core/internal/scheduler"
	"github.com/jvaldezc/tienda-core/internal/server/handlers"
	"github.com/jvaldezc/tienda-core/internal/server/router"
	cartsvc "github.com/jvaldezc/tienda-core/internal/service/cart"
	discountsvc "github.com/jvaldezc/tienda-core/internal/service/discount"
	"github.com/jvaldezc/tienda-core/internal/service/interaction"
	notesvc "github.com/jvaldezc/tienda-core/internal/service/notes"
	ordersvc "github.com/jvaldezc/tienda-core/internal/service/order"
	reportingsvc "github.com/jvaldezc/tienda-core/internal/service/reporting"
	stocksvc "github.com/jvaldezc/tienda-core/internal/service/stock"
	interactionsclient "github.com/jvaldezc/tienda-core/pkg/clients/interactions"
	"github.com/jvaldezc/tienda-core/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	repo, err := mongodb.NewRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := repo.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
	}

	// The interaction sink is optional; without it events are dropped.
	var sink interaction.Sink
	if cfg.Interactions.BaseURL != "" {
		sink = interactionsclient.NewClient(cfg.Interactions)
		baseLogger.Info("interaction sink enabled")
	} else {
		baseLogger.Warn("interaction sink not configured, events will be dropped")
	}
	notifier := interaction.NewNotifier(sink, baseLogger.Named("svc.interaction"))
	defer notifier.Close()

	ledger := stocksvc.NewService(repo, baseLogger.Named("svc.stock"))
	evaluator := discountsvc.NewService(repo, baseLogger.Named("svc.discount"))
	cartSvc := cartsvc.NewService(repo, repo, evaluator, notifier, baseLogger.Named("svc.cart"))
	orderSvc := ordersvc.NewService(repo, repo, ledger, notifier, baseLogger.Named("svc.order"))
	salesSvc := notesvc.NewSalesService(repo, repo, repo, repo, ledger, baseLogger.Named("svc.notes.sales"))
	receivingSvc := notesvc.NewReceivingService(repo, repo, repo, ledger, baseLogger.Named("svc.notes.receiving"))

	// The sheet export is optional; the Mongo snapshot always happens.
	var exporter sheets.Exporter
	if cfg.Sheets.CredentialsPath != "" {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("sheets report export enabled")
	}
	reportingSvc := reportingsvc.NewService(repo, repo, exporter, baseLogger.Named("svc.reporting"))

	engine := router.New(router.Handlers{
		Cart:           handlers.NewCartHandler(cartSvc, baseLogger.Named("handlers.cart")),
		Orders:         handlers.NewOrderHandler(orderSvc, baseLogger.Named("handlers.orders")),
		SalesNotes:     handlers.NewSalesNoteHandler(salesSvc, baseLogger.Named("handlers.sales_notes")),
		ReceivingNotes: handlers.NewReceivingNoteHandler(receivingSvc, baseLogger.Named("handlers.receiving_notes")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, reportingSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
