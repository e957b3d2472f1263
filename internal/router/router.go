package router

import (
	"context"
	"time"

	"arcadeorders/internal/config"
	"arcadeorders/internal/handler"
	"arcadeorders/internal/infra"
	"arcadeorders/internal/middleware"
	"arcadeorders/internal/model"
	"arcadeorders/internal/repository"
	"arcadeorders/internal/service"
	"arcadeorders/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil: notifications, catalog cache and shared rate limiting are
// then disabled. ctx bounds background goroutines started here.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	apiLimiter := middleware.NewLimiter(rdb, "api", cfg.RateLimitPerMinute, time.Minute)
	loginLimiter := middleware.NewLimiter(rdb, "login", 20, time.Minute)
	apiLimiter.StartPurge(ctx, 5*time.Minute)
	loginLimiter.StartPurge(ctx, 5*time.Minute)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimit(apiLimiter, "Demasiadas solicitudes. Intente nuevamente en un momento."))

	// ── Infrastructure ───────────────────────────────────────────────────────
	catalogCache := infra.NewCache(rdb, "catalog:", time.Duration(cfg.CatalogCacheTTLSec)*time.Second)
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	productRepo := repository.NewProductRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	ledgerSvc := service.NewLedgerService(ledgerRepo, userRepo)
	clientSvc := service.NewClientService(userRepo, ledgerSvc, cfg.BusinessName)
	productSvc := service.NewProductService(productRepo, orderRepo, historyRepo, userRepo, catalogCache)
	orderSvc := service.NewOrderService(orderRepo, productRepo, userRepo, deliveryRepo, ledgerSvc, dispatcher, cfg.DebitPolicy)
	deliverySvc := service.NewDeliveryService(orderRepo, deliveryRepo, userRepo, ledgerSvc, dispatcher, cfg.DebitPolicy)
	paymentSvc := service.NewPaymentService(paymentRepo, userRepo, ledgerSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	clientsH := handler.NewClientsHandler(clientSvc)
	productsH := handler.NewProductsHandler(productSvc)
	ordersH := handler.NewOrdersHandler(orderSvc, deliverySvc)
	paymentsH := handler.NewPaymentsHandler(paymentSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.RateLimit(loginLimiter, "Demasiados intentos de login. Intente en 1 minuto."), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	admin := middleware.RequireRole(model.RoleAdmin)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleClient)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		// Orders: clients create and read their own, admins manage all
		v1.POST("/orders", anyRole, ordersH.Create)
		v1.GET("/orders", anyRole, ordersH.List)
		v1.GET("/orders/:id", anyRole, ordersH.Get)
		v1.POST("/orders/:id/deliveries", admin, ordersH.RegisterDelivery)
		v1.PATCH("/orders/:id/status", admin, ordersH.UpdateStatus)
		v1.PATCH("/order-items/:id/ready", admin, ordersH.ToggleItemReady)
		v1.GET("/production", admin, ordersH.ProductionQueue)

		v1.POST("/payments", admin, paymentsH.Register)
		v1.GET("/payments", anyRole, paymentsH.List)

		v1.GET("/catalog", anyRole, productsH.Catalog)
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/:id", anyRole, productsH.Get)
		v1.GET("/products/:id/price-history", admin, productsH.PriceHistory)
		prods := v1.Group("/products", admin)
		{
			prods.POST("", productsH.Create)
			prods.POST("/bulk-price", productsH.BulkPrice)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Delete)
		}

		clients := v1.Group("/clients", admin)
		{
			clients.POST("", clientsH.Create)
			clients.GET("", clientsH.List)
			clients.GET("/:id", clientsH.Get)
			clients.PUT("/:id", clientsH.Update)
			clients.GET("/:id/statement", clientsH.Statement)
			clients.GET("/:id/statement.pdf", clientsH.StatementPDF)
		}

		v1.GET("/me/statement", anyRole, clientsH.MyStatement)
		v1.GET("/me/statement.pdf", anyRole, clientsH.MyStatementPDF)
	}

	// Swagger UI only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
