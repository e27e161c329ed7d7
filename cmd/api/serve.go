package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendorledger/internal/auth"
	"vendorledger/internal/cache"
	"vendorledger/internal/config"
	"vendorledger/internal/database"
	"vendorledger/internal/handler"
	"vendorledger/internal/logger"
	"vendorledger/internal/middleware"
	"vendorledger/internal/repository"
	"vendorledger/internal/service"
	"vendorledger/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "migrate the schema before serving")
	rootCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "migrate the schema before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, log)

	if autoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}
	if err := middleware.RegisterValidators(); err != nil {
		return err
	}

	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)
	if err != nil {
		return err
	}

	store, err := newIdempotencyStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log, cfg.CORS.AllowOrigins)
	go wsHub.Run()
	defer wsHub.Stop()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	partyRepo := repository.NewPartyRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	advanceRepo := repository.NewAdvanceRepository(db)
	productRepo := repository.NewProductRepository(db)

	authService := service.NewAuthService(partyRepo, auditRepo, txManager, tokens, log)
	saleService := service.NewSaleService(saleRepo, productRepo, partyRepo, auditRepo, txManager, wsHub, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, saleRepo, partyRepo, auditRepo, txManager, wsHub, log)
	paymentService := service.NewPaymentService(invoiceRepo, paymentRepo, advanceRepo, partyRepo, auditRepo, txManager, wsHub, log)
	advanceService := service.NewAdvanceService(advanceRepo, partyRepo, auditRepo, txManager, wsHub, log)
	statisticsService := service.NewStatisticsService(repository.NewStatisticsRepository(db))
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(authService, cfg.IsRelease())
	saleHandler := handler.NewSaleHandler(saleService, tokens)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, paymentService, tokens,
		middleware.Idempotency(store, cfg.Idempotency.TTL, log))
	advanceHandler := handler.NewAdvanceHandler(advanceService, tokens)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService, tokens)
	auditHandler := handler.NewAuditHandler(auditService, tokens)

	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(logger.RequestID(), logger.GinMiddleware(log), logger.Recovery(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.IdempotencyHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/ws", wsHub.ServeWs(tokens))

	api := router.Group("")
	userHandler.RegisterRoutes(api)
	saleHandler.RegisterRoutes(api)
	invoiceHandler.RegisterRoutes(api)
	advanceHandler.RegisterRoutes(api)
	statisticsHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newIdempotencyStore uses Redis when REDIS_ADDR is set so keys survive restarts and
// are shared between replicas.
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) (cache.IdempotencyStore, error) {
	if cfg.Redis.Addr == "" {
		log.Info("idempotency keys kept in memory")
		return cache.NewInMemoryIdempotencyStore(time.Minute), nil
	}
	store, err := cache.NewRedisIdempotencyStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	log.Info("idempotency keys kept in redis", zap.String("addr", cfg.Redis.Addr))
	return store, nil
}
