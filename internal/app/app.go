// Package app wires the application together and runs the HTTP server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/amankrmj01/bakery-order-service/internal/client"
	"github.com/amankrmj01/bakery-order-service/internal/domain/discount"
	"github.com/amankrmj01/bakery-order-service/internal/domain/inventory"
	"github.com/amankrmj01/bakery-order-service/internal/domain/order"
	"github.com/amankrmj01/bakery-order-service/internal/domain/payment"
	"github.com/amankrmj01/bakery-order-service/internal/handler"
	"github.com/amankrmj01/bakery-order-service/internal/repository"
	"github.com/amankrmj01/bakery-order-service/pkg/health"
	"github.com/amankrmj01/bakery-order-service/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, _ *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service. The upstream services are readiness inputs:
	// orders cannot be created while either is unreachable.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddReadinessCheck("product-service", 5*time.Second,
		health.HTTPEndpointCheck(nil, cfg.ProductServiceURL+"/actuator/health"))
	healthSvc.AddReadinessCheck("payment-service", 5*time.Second,
		health.HTTPEndpointCheck(nil, cfg.PaymentServiceURL+"/actuator/health"))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	orderRepo := repository.NewOrderRepository(pool)
	discountRepo := repository.NewDiscountRepository(pool)

	// Outbound service clients.
	productClient := client.NewProductClient(cfg.ProductServiceURL, cfg.ClientTimeout)
	paymentClient := client.NewPaymentClient(cfg.PaymentServiceURL, cfg.ClientTimeout)

	// Domain services.
	orderService := order.NewService(
		order.Config{
			TaxRate:            cfg.Order.TaxRate,
			DeliveryFee:        cfg.Order.DeliveryFee,
			MaxItemsPerOrder:   cfg.Order.MaxItems,
			MaxOrderValue:      cfg.Order.MaxOrderValue,
			DefaultPrepMinutes: cfg.Order.DefaultPrepMinutes,
			Currency:           cfg.Order.Currency,
		},
		orderRepo,
		productClient,
		inventory.NewCoordinator(productClient, lg.Named("inventory")),
		payment.NewOrchestrator(paymentClient, lg.Named("payment")),
		discount.NewRepoResolver(discountRepo),
		lg.Named("order"),
	)

	// HTTP handlers: health endpoints + API routes on one server.
	h := handler.NewHandler(orderService)
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", http.StripPrefix("/api", h.Routes()))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
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
