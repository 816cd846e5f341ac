package main

import (
	"storeops/docs"
	"storeops/internal/config"
	"storeops/internal/handlers"
	"storeops/internal/middleware"
	"storeops/internal/models"
	"storeops/internal/services"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type routeDeps struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      handlers.Pinger
	cache   handlers.Pinger
	version *middleware.VersionMiddleware

	auth          services.AuthService
	users         services.UserService
	invitations   services.InvitationService
	products      services.ProductService
	customers     services.CustomerService
	sales         services.SaleService
	serviceOrders services.ServiceOrderService
	invoices      services.InvoiceService
	notifications services.NotificationService
	settings      services.SettingService
	transactions  services.TransactionService
	dashboard     services.DashboardService
}

func registerRoutes(e *echo.Echo, d routeDeps) {
	health := handlers.NewHealthHandlers(d.db, d.cache, d.version.Build(), d.logger)
	e.GET("/health", health.HealthCheck)
	e.GET("/health/ready", health.ReadinessCheck)

	api := e.Group("/api", d.version.VersionHeader())
	api.GET("/version", handlers.VersionInfo(d.version))
	api.GET("/health", health.HealthCheck)
	api.GET("/health/ready", health.ReadinessCheck)

	if d.cfg.Swagger.Enabled {
		docs.SwaggerInfo.Version = d.version.Build()
		api.GET("/docs/*", echoSwagger.WrapHandler)
	}

	jwt := middleware.JWTMiddleware(d.auth)
	admin := middleware.RequireRole(models.RoleAdmin)
	managers := middleware.RequireRole(models.RoleAdmin, models.RoleManager)

	// Authentication
	authHandlers := handlers.NewAuthHandlers(d.auth)
	auth := api.Group("/auth", middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:  d.cfg.RateLimit.Enabled,
		Requests: d.cfg.RateLimit.AuthRequests,
		Window:   d.cfg.RateLimit.AuthWindow,
		Logger:   d.logger,
	}))
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/logout", authHandlers.Logout, jwt)
	auth.GET("/me", authHandlers.Me, jwt)
	auth.PUT("/me/password", authHandlers.ChangePassword, jwt)

	// Public invitation acceptance
	invitationHandlers := handlers.NewInvitationHandlers(d.invitations)
	api.GET("/invitations/accept/:token", invitationHandlers.PreviewInvitation)
	api.POST("/invitations/accept", invitationHandlers.AcceptInvitation)

	protected := api.Group("", jwt)

	invitations := protected.Group("/invitations", admin)
	invitations.POST("", invitationHandlers.CreateInvitation)
	invitations.GET("", invitationHandlers.ListInvitations)
	invitations.DELETE("/:id", invitationHandlers.RevokeInvitation)

	userHandlers := handlers.NewUserHandlers(d.users)
	users := protected.Group("/users")
	users.GET("", userHandlers.ListUsers, managers)
	users.GET("/:id", userHandlers.GetUser, admin)
	users.PUT("/:id", userHandlers.UpdateUser, admin)
	users.DELETE("/:id", userHandlers.DeleteUser, admin)

	productHandlers := handlers.NewProductHandlers(d.products)
	products := protected.Group("/products")
	products.GET("", productHandlers.ListProducts)
	products.GET("/low-stock", productHandlers.LowStock)
	products.GET("/export", productHandlers.ExportProducts, managers)
	products.POST("", productHandlers.CreateProduct, managers)
	products.GET("/:id", productHandlers.GetProduct)
	products.PUT("/:id", productHandlers.UpdateProduct, managers)
	products.DELETE("/:id", productHandlers.DeleteProduct, managers)
	products.POST("/:id/stock", productHandlers.AdjustStock, managers)
	products.GET("/:id/movements", productHandlers.ListMovements)
	products.POST("/:id/image", productHandlers.UploadImage, managers)
	products.GET("/:id/image", productHandlers.GetImage)
	products.DELETE("/:id/image", productHandlers.DeleteImage, managers)

	customerHandlers := handlers.NewCustomerHandlers(d.customers)
	customers := protected.Group("/customers")
	customers.GET("", customerHandlers.ListCustomers)
	customers.POST("", customerHandlers.CreateCustomer)
	customers.GET("/:id", customerHandlers.GetCustomer)
	customers.PUT("/:id", customerHandlers.UpdateCustomer)
	customers.DELETE("/:id", customerHandlers.DeleteCustomer, managers)
	customers.GET("/:id/sales", customerHandlers.CustomerSales)

	saleHandlers := handlers.NewSaleHandlers(d.sales)
	sales := protected.Group("/sales")
	sales.GET("", saleHandlers.ListSales)
	sales.POST("", saleHandlers.CreateSale)
	sales.GET("/summary", saleHandlers.SalesSummary)
	sales.GET("/export", saleHandlers.ExportSales, managers)
	sales.GET("/:id", saleHandlers.GetSale)
	sales.POST("/:id/cancel", saleHandlers.CancelSale, managers)

	orderHandlers := handlers.NewServiceOrderHandlers(d.serviceOrders)
	orders := protected.Group("/service-orders")
	orders.GET("", orderHandlers.ListServiceOrders)
	orders.POST("", orderHandlers.CreateServiceOrder)
	orders.GET("/:id", orderHandlers.GetServiceOrder)
	orders.PUT("/:id", orderHandlers.UpdateServiceOrder)
	orders.DELETE("/:id", orderHandlers.DeleteServiceOrder, managers)
	orders.PATCH("/:id/status", orderHandlers.ChangeServiceOrderStatus)

	invoiceHandlers := handlers.NewInvoiceHandlers(d.invoices)
	invoices := protected.Group("/invoices")
	invoices.GET("", invoiceHandlers.ListInvoices)
	invoices.POST("", invoiceHandlers.CreateInvoice, managers)
	invoices.GET("/:id", invoiceHandlers.GetInvoice)
	invoices.PUT("/:id", invoiceHandlers.UpdateInvoice, managers)
	invoices.DELETE("/:id", invoiceHandlers.DeleteInvoice, managers)
	invoices.PATCH("/:id/status", invoiceHandlers.UpdateInvoiceStatus, managers)
	invoices.GET("/:id/pdf", invoiceHandlers.InvoicePDF)
	invoices.POST("/:id/send", invoiceHandlers.SendInvoice)

	notificationHandlers := handlers.NewNotificationHandlers(d.notifications)
	notifs := protected.Group("/notifications")
	notifs.GET("", notificationHandlers.ListNotifications)
	notifs.POST("/email", notificationHandlers.SendEmail)
	notifs.POST("/whatsapp", notificationHandlers.SendWhatsApp)
	notifs.GET("/:id", notificationHandlers.GetNotification)
	notifs.POST("/:id/retry", notificationHandlers.RetryNotification)

	settingHandlers := handlers.NewSettingHandlers(d.settings)
	settings := protected.Group("/settings")
	settings.GET("", settingHandlers.GetSettings)
	settings.PUT("", settingHandlers.UpdateSettings, admin)
	settings.GET("/logo", settingHandlers.GetLogo)
	settings.POST("/logo", settingHandlers.UploadLogo, admin)
	settings.POST("/test-email", settingHandlers.TestEmail, admin)
	settings.POST("/test-whatsapp", settingHandlers.TestWhatsApp, admin)

	transactionHandlers := handlers.NewTransactionHandlers(d.transactions)
	transactions := protected.Group("/transactions", managers)
	transactions.GET("", transactionHandlers.ListTransactions)
	transactions.POST("", transactionHandlers.CreateTransaction)
	transactions.GET("/summary", transactionHandlers.TransactionSummary)
	transactions.GET("/:id", transactionHandlers.GetTransaction)
	transactions.PATCH("/:id/pay", transactionHandlers.PayTransaction)
	transactions.PATCH("/:id/cancel", transactionHandlers.CancelTransaction)

	dashboardHandlers := handlers.NewDashboardHandlers(d.dashboard)
	protected.GET("/dashboard/summary", dashboardHandlers.Summary)
}
