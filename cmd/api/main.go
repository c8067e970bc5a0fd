package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ksilverstone/b2b/internal/application/accounting"
	"github.com/ksilverstone/b2b/internal/application/auth"
	appcart "github.com/ksilverstone/b2b/internal/application/cart"
	"github.com/ksilverstone/b2b/internal/application/checkout"
	"github.com/ksilverstone/b2b/internal/application/inventory"
	"github.com/ksilverstone/b2b/internal/application/ledger"
	apporder "github.com/ksilverstone/b2b/internal/application/order"
	"github.com/ksilverstone/b2b/internal/application/pricing"
	"github.com/ksilverstone/b2b/internal/application/usecase"
	infrapdf "github.com/ksilverstone/b2b/internal/infrastructure/pdf"
	"github.com/ksilverstone/b2b/internal/infrastructure/postgres"
	httpRouter "github.com/ksilverstone/b2b/internal/interfaces/http"
	"github.com/ksilverstone/b2b/pkg/config"
	"github.com/ksilverstone/b2b/pkg/logger"
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
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	tierRepo := postgres.NewPriceTierRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	txnRepo := postgres.NewTransactionRepository(pool)
	cartRepo := postgres.NewCartRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	resolver := pricing.NewResolver(tierRepo, log.Zerolog())
	guard := inventory.NewStockGuard()
	ledgerUC := ledger.New()

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	companyUC := usecase.NewCompanyUseCase(companyRepo)
	productUC := usecase.NewProductUseCase(productRepo, tierRepo, companyRepo)
	cartUC := appcart.NewUseCase(cartRepo, productRepo, customerRepo, companyRepo, resolver, ledgerUC)
	checkoutUC := checkout.NewUseCase(txRunner, companyRepo, customerRepo, guard, ledgerUC)
	orderUC := apporder.NewUseCase(orderRepo, txRunner, guard, ledgerUC)

	pdfGenerator := infrapdf.NewMarotoStatementGenerator()
	accountingUC := accounting.NewUseCase(customerRepo, txnRepo, txRunner, ledgerUC, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "B2B API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		CompanyUC:    companyUC,
		ProductUC:    productUC,
		CartUC:       cartUC,
		CheckoutUC:   checkoutUC,
		OrderUC:      orderUC,
		AccountingUC: accountingUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
