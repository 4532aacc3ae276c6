package FiberConfig

import (
	"log"

	"AgriDealer/Constants"
	"AgriDealer/Controllers"
	"AgriDealer/Models"
	"AgriDealer/Weather"
	"AgriDealer/Whatsapp"
	"AgriDealer/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, weather Weather.Provider, whatsapp *Whatsapp.Client) {
	// Initialize handlers
	authController := Controllers.NewAuthController(db)
	farmerController := Controllers.NewFarmerController(db)
	ledgerController := Controllers.NewLedgerController(db)
	statementController := Controllers.NewStatementController(db)
	forecastController := Controllers.NewForecastController(db, weather)
	insightsController := Controllers.NewInsightsController(db)
	deviceController := Controllers.NewDeviceController(db)
	logsController := Controllers.NewLogsController()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)
	auth.Post("/logout", authController.Logout)

	// Farmer routes
	farmers := api.Group("/farmers", middleware.Verify(Models.PermissionViewer))
	farmers.Get("/", farmerController.GetFarmers)
	farmers.Post("/", middleware.Verify(Models.PermissionStaff), farmerController.CreateFarmer)
	farmers.Get("/:id", farmerController.GetFarmer)
	farmers.Post("/:id/plots", middleware.Verify(Models.PermissionStaff), farmerController.AddPlot)

	// Ledger routes under farmers
	farmers.Get("/:id/ledger", ledgerController.GetLedger)
	farmers.Post("/:id/ledger", middleware.Verify(Models.PermissionStaff), ledgerController.CreateEntry)
	farmers.Post("/:id/ledger/import", middleware.Verify(Models.PermissionStaff), ledgerController.ImportLedger)
	farmers.Get("/:id/statement", statementController.GetStatement)
	farmers.Get("/:id/statement/export", statementController.ExportStatement)

	// Direct ledger entry routes
	ledger := api.Group("/ledger", middleware.Verify(Models.PermissionStaff))
	ledger.Put("/:entry_id/dispute", ledgerController.Dispute)
	ledger.Put("/:entry_id/resolve", ledgerController.Resolve)

	// Dealer analytics
	api.Get("/dealers/:dealer_id/forecast", middleware.Verify(Models.PermissionViewer), forecastController.GetForecast)

	insights := api.Group("/insights", middleware.Verify(Models.PermissionViewer))
	insights.Get("/segments", insightsController.GetSegments)
	insights.Get("/bundles", insightsController.GetBundles)

	vendors := api.Group("/vendors", middleware.Verify(Models.PermissionViewer))
	vendors.Get("/:vendor_id/trend", insightsController.GetTrend)
	vendors.Get("/:vendor_id/trend/export", insightsController.ExportTrend)

	api.Post("/devices", middleware.Verify(Models.PermissionViewer), deviceController.RegisterDevice)

	api.Get("/logs/stats", middleware.Verify(Models.PermissionDealer), logsController.GetLogStats)

	if whatsapp != nil {
		api.Get("/whatsapp/status", middleware.Verify(Models.PermissionDealer), whatsapp.StatusHandler)
	}
}

// NewApp builds the fiber app with the shared middleware and every route
func NewApp(db *gorm.DB, weather Weather.Provider, whatsapp *Whatsapp.Client) *fiber.App {
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(middleware.ErrorLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app, db, weather, whatsapp)
	return app
}

func FiberConfig(weather Weather.Provider, whatsapp *Whatsapp.Client) {
	log.Println("Server Up...")
	app := NewApp(Models.DB, weather, whatsapp)
	if err := app.Listen(Constants.ServerAddr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
