package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pos/internal/config"
	"github.com/mamadbah2/pos/internal/repository/memory"
	"github.com/mamadbah2/pos/internal/repository/mongodb"
	"github.com/mamadbah2/pos/internal/repository/sheets"
	"github.com/mamadbah2/pos/internal/scheduler"
	"github.com/mamadbah2/pos/internal/server/handlers"
	"github.com/mamadbah2/pos/internal/server/router"
	authsvc "github.com/mamadbah2/pos/internal/service/auth"
	cartsvc "github.com/mamadbah2/pos/internal/service/cart"
	catalogsvc "github.com/mamadbah2/pos/internal/service/catalog"
	checkoutsvc "github.com/mamadbah2/pos/internal/service/checkout"
	customersvc "github.com/mamadbah2/pos/internal/service/customer"
	reportingsvc "github.com/mamadbah2/pos/internal/service/reporting"
	"github.com/mamadbah2/pos/pkg/clients/backend"
	"github.com/mamadbah2/pos/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
	}

	// Tokens survive restarts when MongoDB is configured.
	var tokens backend.TokenStore = memory.NewTokenStore()
	var reportStore scheduler.ReportStore
	if cfg.MongoDB.Enabled() {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		tokens = mongoRepo
		reportStore = mongoRepo
	} else {
		baseLogger.Warn("mongodb not configured, session kept in memory")
	}

	var reporting *reportingsvc.Service
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		reporting = reportingsvc.NewService(sheetsRepo, location, baseLogger.Named("svc.reporting"))
	} else {
		baseLogger.Warn("google sheets not configured, sales journal disabled")
	}

	backendClient := backend.NewClient(cfg.Backend, tokens, baseLogger.Named("client.backend"))
	authService := authsvc.NewService(backendClient, tokens, baseLogger.Named("svc.auth"))
	catalog := catalogsvc.NewService(backendClient, baseLogger.Named("svc.catalog"))

	if cfg.Backend.Email != "" {
		startCtx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
		if _, err := authService.Login(startCtx, cfg.Backend.Email, cfg.Backend.Password); err != nil {
			baseLogger.Warn("automatic login failed", zap.Error(err))
		}
		cancel()
	}
	if loggedIn, _ := authService.LoggedIn(context.Background()); loggedIn {
		startCtx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
		if err := catalog.Refresh(startCtx); err != nil {
			baseLogger.Warn("initial catalog load failed", zap.Error(err))
		}
		cancel()
	}

	cart := cartsvc.NewStore(cfg.Sales.TaxRate, baseLogger.Named("svc.cart"))

	lookup := customersvc.NewLookup(backendClient, cfg.Lookup.Debounce, baseLogger.Named("svc.customer"))
	defer lookup.Close()
	go func() {
		for message := range lookup.Notifications() {
			baseLogger.Info("customer notification", zap.String("message", message))
		}
	}()

	deps := handlers.Dependencies{
		Session:       authService,
		Catalog:       catalog,
		Cart:          cart,
		DocumentTypes: backendClient,
		Customers:     lookup,
		Location:      location,
	}

	var recorder checkoutsvc.SaleRecorder
	var summarizer scheduler.DailySummarizer
	if reporting != nil {
		recorder = reporting
		summarizer = reporting
		deps.Reports = reporting
	}
	deps.Checkout = checkoutsvc.NewOrchestrator(cart, backendClient, lookup, recorder, cfg.Sales, baseLogger.Named("svc.checkout"))

	sched, err := scheduler.NewScheduler(*cfg, catalog, summarizer, reportStore, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(handlers.New(deps, baseLogger.Named("handlers")), baseLogger.Named("router"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     engine,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		// No write timeout: /cart/stream stays open.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

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
