package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/grocery-orders/internal/api"
	"github.com/xenking/grocery-orders/internal/domain/catalog"
	"github.com/xenking/grocery-orders/internal/domain/offer"
	"github.com/xenking/grocery-orders/internal/domain/order"
	"github.com/xenking/grocery-orders/internal/domain/pricing"
	"github.com/xenking/grocery-orders/internal/notify"
	"github.com/xenking/grocery-orders/internal/storage/postgres"
	"github.com/xenking/grocery-orders/pkg/health"
	"github.com/xenking/grocery-orders/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Catalog and offers are loaded once at startup into immutable snapshots
	// shared read-only across requests.
	repo := postgres.NewCatalogRepository(pool)
	items, err := repo.ListItems(ctx)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	offerRules, err := repo.ListOffers(ctx)
	if err != nil {
		return errors.Wrap(err, "load offers")
	}
	snapshot := catalog.New(items)
	rules := offer.NewRules(offerRules)
	lg.Info("Catalog loaded", zap.Int("items", snapshot.Len()), zap.Int("offers", rules.Len()))

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Notification channels.
	mailer := notify.NewMailClient(cfg.MailSenderURL)
	producer := notify.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() {
		if err := producer.Close(); err != nil {
			lg.Warn("Close producer", zap.Error(err))
		}
	}()

	// Domain services.
	engine := pricing.NewEngine(snapshot, rules)
	orderService := order.NewService(snapshot, engine, mailer, producer, lg.Named("orders"))

	// Mux: health endpoints + order API on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	api.NewHandler(engine, orderService).Routes(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("grocery-orders", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
