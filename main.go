package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	appinventory "github.com/obrador/storefront/internal/application/inventory"
	appinvoice "github.com/obrador/storefront/internal/application/invoice"
	apporder "github.com/obrador/storefront/internal/application/order"
	apppayment "github.com/obrador/storefront/internal/application/payment"
	"github.com/obrador/storefront/internal/config"
	domcoupon "github.com/obrador/storefront/internal/domain/coupon"
	dominv "github.com/obrador/storefront/internal/domain/inventory"
	dominvoice "github.com/obrador/storefront/internal/domain/invoice"
	domorder "github.com/obrador/storefront/internal/domain/order"
	"github.com/obrador/storefront/internal/infrastructure/id"
	"github.com/obrador/storefront/internal/infrastructure/memory"
	"github.com/obrador/storefront/internal/infrastructure/notification"
	"github.com/obrador/storefront/internal/infrastructure/observability/oteltrace"
	"github.com/obrador/storefront/internal/infrastructure/observability/prometrics"
	"github.com/obrador/storefront/internal/infrastructure/observability/zaplogger"
	"github.com/obrador/storefront/internal/infrastructure/outbox"
	"github.com/obrador/storefront/internal/infrastructure/postgres"
	"github.com/obrador/storefront/internal/observability"
	httptransport "github.com/obrador/storefront/internal/presentation/http"
)

type repositories struct {
	orders    domorder.Repository
	coupons   domcoupon.Repository
	invoices  dominvoice.Repository
	inventory dominv.Repository
	sequence  dominvoice.Sequence
}

func main() {
	cfg := config.Load()

	logger := zaplogger.New(
		observability.F("service", "storefront"),
		observability.F("env", cfg.App.Environment),
	)
	defer func() {
		if s, ok := logger.(interface{ Sync() error }); ok {
			_ = s.Sync()
		}
	}()

	metrics := prometrics.New("storefront", nil)
	tracer := oteltrace.New("storefront")
	obs := observability.New(logger, metrics, tracer)

	repos, err := buildRepositories(cfg)
	if err != nil {
		logger.Error("storage_init_failed", observability.F("error", err))
		os.Exit(1)
	}

	ids := id.NewUUIDGenerator()

	bus := outbox.NewBus(obs)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	// The invoice service resolves buyer profiles through a directory; in
	// this deployment profile it is backed by the in-memory adapter, seeded
	// by staff tooling. The seller identity comes from configuration.
	buyers := memory.NewBuyerDirectory()
	business := memory.NewBusinessInfo(cfg.Seller.Snapshot())

	catalog := memory.NewCatalog()

	invoiceService := appinvoice.NewService(repos.invoices, repos.orders, buyers, business, repos.sequence, ids, obs)
	orderService := apporder.NewService(repos.orders, repos.coupons, catalog, ids, bus, obs)
	paymentService := apppayment.NewService(repos.orders, repos.coupons, repos.inventory, invoiceService, ids, bus, obs)
	inventoryService := appinventory.NewService(repos.inventory, ids, obs)

	notifier := notification.NewWorker(bus, notification.NewLogDispatcher(obs), obs)
	notifier.Start()

	handler := httptransport.NewHandler(orderService, paymentService, invoiceService, inventoryService)
	app := httptransport.NewApp(handler, obs)

	metricsServer := &http.Server{
		Addr:    cfg.App.MetricsAddr,
		Handler: promhttp.Handler(),
	}
	go func() {
		logger.Info("metrics_server_start", observability.F("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics_server_error", observability.F("error", err))
		}
	}()

	go func() {
		logger.Info("http_server_start", observability.F("addr", cfg.App.HTTPAddr))
		if err := app.Listen(cfg.App.HTTPAddr); err != nil {
			logger.Error("http_server_error", observability.F("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", observability.F("error", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics_server_shutdown_error", observability.F("error", err))
	}
	logger.Info("server_stopped")
}

// buildRepositories selects the storage backend: PostgreSQL when configured,
// otherwise the in-memory implementations.
func buildRepositories(cfg *config.Config) (*repositories, error) {
	if !cfg.Database.Enabled() {
		return &repositories{
			orders:    memory.NewOrderRepository(),
			coupons:   memory.NewCouponRepository(),
			invoices:  memory.NewInvoiceRepository(),
			inventory: memory.NewInventoryRepository(),
			sequence:  memory.NewSequence(),
		}, nil
	}

	db, err := postgres.Open(cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	return &repositories{
		orders:    postgres.NewOrderRepository(db),
		coupons:   postgres.NewCouponRepository(db),
		invoices:  postgres.NewInvoiceRepository(db),
		inventory: postgres.NewInventoryRepository(db),
		sequence:  postgres.NewSequence(db),
	}, nil
}
