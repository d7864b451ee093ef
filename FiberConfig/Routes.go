package FiberConfig

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"Stockbook/Controllers"
	"Stockbook/Services"
	"Stockbook/config"
	"Stockbook/middleware"
)

func SetupRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB, log *logrus.Logger, seq Services.Sequencer) {
	validator := Services.NewValidator()
	ledger := Services.NewLedger(db, log, validator)

	// Initialize handlers
	authController := Controllers.NewAuthController(db, log, validator, cfg.Auth.JWTSecret, cfg.IsProduction())
	customerController := Controllers.NewCustomerController(db, log, validator)
	vendorController := Controllers.NewVendorController(db, log, validator)
	productController := Controllers.NewProductController(db, log, validator, ledger)
	invoiceController := Controllers.NewInvoiceController(Services.NewInvoiceService(db, log, validator, seq), log)
	purchaseController := Controllers.NewPurchaseController(Services.NewPurchaseService(db, log, validator), log)
	stockController := Controllers.NewStockController(db, ledger, log)
	creditController := Controllers.NewCreditController(Services.NewCreditService(db, log, validator), log)
	salesController := Controllers.NewSalesController(Services.NewReportService(db, log), log)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("API is running...")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes stay open so a client can log in
	auth := app.Group("/api/auth")
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)
	auth.Post("/logout", authController.Logout)
	auth.Get("/me", middleware.Verify(cfg.Auth.JWTSecret, db), authController.Me)

	// API group
	api := app.Group("/api")
	if cfg.Auth.Enforce {
		api.Use(middleware.Verify(cfg.Auth.JWTSecret, db))
	}

	// Customer routes
	customers := api.Group("/customers")
	customers.Get("/", customerController.GetCustomers)
	customers.Post("/", customerController.CreateCustomer)
	customers.Get("/:id", customerController.GetCustomer)
	customers.Put("/:id", customerController.UpdateCustomer)
	customers.Delete("/:id", customerController.DeleteCustomer)

	// Vendor routes
	vendors := api.Group("/vendors")
	vendors.Get("/", vendorController.GetVendors)
	vendors.Post("/", vendorController.CreateVendor)
	vendors.Get("/:id", vendorController.GetVendor)
	vendors.Put("/:id", vendorController.UpdateVendor)
	vendors.Delete("/:id", vendorController.DeleteVendor)

	// Product routes
	products := api.Group("/products")
	products.Get("/", productController.GetProducts)
	products.Post("/", productController.CreateProduct)
	products.Get("/:id", productController.GetProduct)
	products.Put("/:id", productController.UpdateProduct)
	products.Delete("/:id", productController.DeleteProduct)

	// Invoice routes
	invoices := api.Group("/invoices")
	invoices.Get("/", invoiceController.GetInvoices)
	invoices.Post("/", invoiceController.CreateInvoice)
	invoices.Get("/:id", invoiceController.GetInvoice)
	invoices.Delete("/:id", invoiceController.DeleteInvoice)

	// Purchase routes
	purchases := api.Group("/purchases")
	purchases.Get("/", purchaseController.GetPurchases)
	purchases.Post("/", purchaseController.CreatePurchase)
	purchases.Get("/:id", purchaseController.GetPurchase)
	purchases.Delete("/:id", purchaseController.DeletePurchase)

	// Stock routes
	stock := api.Group("/stock")
	stock.Get("/", stockController.GetStock)
	stock.Get("/movements", stockController.GetMovements)
	stock.Post("/adjustments", stockController.CreateAdjustment)
	stock.Delete("/adjustments/:id", stockController.DeleteAdjustment)
	stock.Get("/audit", stockController.GetAudit)

	// Credit and payment routes - place these BEFORE any ID route to avoid conflicts
	credits := api.Group("/credits")
	credits.Get("/", creditController.GetCredits)
	credits.Post("/", creditController.CreateCredit)
	credits.Get("/payments", creditController.GetPayments)
	credits.Post("/payments", creditController.CreatePayment)
	credits.Get("/payments/invoice/:invoiceId", creditController.GetInvoicePayments)
	credits.Delete("/payments/:id", creditController.DeletePayment)
	credits.Get("/outstanding", creditController.GetOutstanding)
	credits.Get("/customer/:customerId", creditController.GetCustomerHistory)

	// Sales report routes
	sales := api.Group("/sales")
	sales.Get("/", salesController.GetSales)
	sales.Get("/summary", salesController.Summary)
	sales.Get("/summary/export", salesController.ExportSummary)
	sales.Get("/top-products", salesController.TopProducts)
}

// New builds the Fiber app with middleware and routes. seq may be nil, in
// which case invoice numbers come from the database sequence.
func New(cfg *config.Config, db *gorm.DB, log *logrus.Logger, seq Services.Sequencer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Stockbook",
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler:          errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(middleware.LoggingMiddleware(log))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	origins := strings.Join(cfg.Server.CORSOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Requested-With, " + middleware.RequestIDHeader,
		// Fiber refuses credentials together with a wildcard origin.
		AllowCredentials: origins != "*",
		MaxAge:           300,
	}))

	SetupRoutes(app, cfg, db, log, seq)
	return app
}

// errorHandler answers anything a handler returned instead of writing a
// response, including panics caught by recover.
func errorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			config.LogError(log, "FiberConfig", "errorHandler", c.Method()+" "+c.Path(), nil, err)
			message = "Internal server error"
		}
		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}
