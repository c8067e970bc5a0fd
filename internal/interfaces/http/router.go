package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ksilverstone/b2b/internal/application/accounting"
	"github.com/ksilverstone/b2b/internal/application/auth"
	"github.com/ksilverstone/b2b/internal/application/cart"
	"github.com/ksilverstone/b2b/internal/application/checkout"
	"github.com/ksilverstone/b2b/internal/application/order"
	"github.com/ksilverstone/b2b/internal/application/usecase"
	"github.com/ksilverstone/b2b/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	CompanyUC    *usecase.CompanyUseCase
	ProductUC    *usecase.ProductUseCase
	CartUC       *cart.UseCase
	CheckoutUC   *checkout.UseCase
	OrderUC      *order.UseCase
	AccountingUC *accounting.UseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Companies (lectura para todos; alta solo admin)
	companies := protected.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Post("/", RequireRole(entity.RoleAdmin), companyHandler.Create)

	// Products (catálogo; mutaciones solo seller/admin)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/price-tiers", productHandler.ListPriceTiers)
	sellerOnly := RequireRole(entity.RoleSeller, entity.RoleAdmin)
	products.Post("/", sellerOnly, productHandler.Create)
	products.Put("/:id", sellerOnly, productHandler.Update)
	products.Delete("/:id", sellerOnly, productHandler.Delete)
	products.Post("/:id/price-tiers", sellerOnly, productHandler.AddPriceTier)
	products.Delete("/:id/price-tiers/:tierId", sellerOnly, productHandler.RemovePriceTier)

	// Cart + checkout (lado comprador)
	cartGroup := protected.Group("/cart")
	cartHandler := NewCartHandler(deps.CartUC, deps.CheckoutUC)
	cartGroup.Get("/", cartHandler.GetActive)
	cartGroup.Post("/items", cartHandler.AddItem)
	cartGroup.Put("/items/:id", cartHandler.UpdateItem)
	cartGroup.Delete("/items/:id", cartHandler.RemoveItem)
	cartGroup.Post("/:id/checkout", cartHandler.Checkout)

	// Orders (ambos lados; cambio de estado lo valida el caso de uso)
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Get("/my", orderHandler.My)
	orders.Get("/incoming", orderHandler.Incoming)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/history", orderHandler.StatusHistory)
	orders.Put("/:id/status", orderHandler.UpdateStatus)

	// Accounting (cartera; solo seller/admin)
	acc := protected.Group("/accounting", sellerOnly)
	accountingHandler := NewAccountingHandler(deps.AccountingUC)
	acc.Get("/accounts", accountingHandler.Accounts)
	acc.Get("/accounts/:id/statement", accountingHandler.Statement)
	acc.Get("/accounts/:id/statement.pdf", accountingHandler.StatementPDF)
	acc.Post("/payments", accountingHandler.RecordPayment)
}
