// Package routes defines the API routing configuration: it wires
// repositories, services and handlers together and groups endpoints by
// the permissions they require.
package routes

import (
	"payvault/internal/config"
	"payvault/internal/handlers"
	"payvault/internal/middleware"
	"payvault/internal/models"
	"payvault/internal/repositories"
	"payvault/internal/services/attachment"
	"payvault/internal/services/auth"
	"payvault/internal/services/history"
	"payvault/internal/services/payout"
	"payvault/internal/services/transaction"
	"payvault/internal/services/user"
	"payvault/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	walletRepo := repositories.NewWalletRepository(db)
	userRepo := repositories.NewUserRepository(db, repositories.CacheService)

	authService := auth.NewService(userRepo)
	userService := user.NewService(userRepo)
	walletService := wallet.NewService(walletRepo, repositories.CacheService, &wallet.NoopMetricsCollector{})
	historyService := history.NewService(walletRepo)
	attachmentResolver := attachment.NewResolver(db)

	var payoutProvider payout.Provider = payout.NoopProvider{}
	if settings := config.Payout(); settings.StripeKey != "" {
		payoutProvider = payout.NewStripeProvider(settings.StripeKey, settings.Currency)
	}

	processor := transaction.NewProcessor(
		walletRepo,
		payoutProvider,
		repositories.CacheService,
		&wallet.NoopMetricsCollector{},
		transaction.Config{MaxRetries: config.DecisionMaxRetries()},
	)

	authHandler := handlers.NewAuthHandler(authService, userService)
	walletHandler := handlers.NewWalletHandler(walletService, historyService, attachmentResolver)
	adminHandler := handlers.NewAdminHandler(processor, historyService)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to PayVault API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	authMiddleware := middleware.AuthMiddleware(authService)
	protected := api.Use(authMiddleware)

	protected.Post("/logout", authHandler.Logout)
	protected.Post("/change-password", middleware.HasPermission(models.PermissionChangePassword), authHandler.ChangePassword)

	walletGroup := protected.Group("/wallet")
	walletGroup.Get("/", middleware.HasPermission(models.PermissionWalletRead), walletHandler.GetWallet)
	walletGroup.Get("/ledger", middleware.HasPermission(models.PermissionWalletRead), walletHandler.ListLedger)
	walletGroup.Post("/topup", middleware.HasPermission(models.PermissionRequestWrite), walletHandler.SubmitTopUp)
	walletGroup.Post("/topup/:id/proof", middleware.HasPermission(models.PermissionRequestWrite), walletHandler.UploadTopUpProof)
	walletGroup.Post("/withdraw", middleware.HasPermission(models.PermissionRequestWrite), walletHandler.SubmitWithdraw)
	walletGroup.Get("/topups", middleware.HasPermission(models.PermissionRequestRead), walletHandler.ListTopUps)
	walletGroup.Get("/withdrawals", middleware.HasPermission(models.PermissionRequestRead), walletHandler.ListWithdrawals)

	admin := app.Group("/api/admin", authMiddleware, middleware.AdminAuthMiddleware())
	admin.Get("/topups", middleware.HasPermission(models.PermissionReadAdmin), adminHandler.ListTopUps)
	admin.Get("/withdrawals", middleware.HasPermission(models.PermissionReadAdmin), adminHandler.ListWithdrawals)
	admin.Get("/wallets/:id/ledger", middleware.HasPermission(models.PermissionReadAdmin), adminHandler.ListWalletLedger)
	admin.Post("/topups/:id/decision", middleware.HasPermission(models.PermissionRequestDecide), adminHandler.DecideTopUp)
	admin.Post("/withdrawals/:id/decision", middleware.HasPermission(models.PermissionRequestDecide), adminHandler.DecideWithdraw)
}
