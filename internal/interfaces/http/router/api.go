package router

import (
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/identity"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/interfaces/http/handler"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers of the bakery API
type Handlers struct {
	Auth       *handler.AuthHandler
	Category   *handler.CategoryHandler
	Product    *handler.ProductHandler
	Order      *handler.OrderHandler
	Inventory  *handler.InventoryHandler
	Production *handler.ProductionHandler
	Print      *handler.PrintHandler
	Settings   *handler.SettingsHandler
	Employee   *handler.EmployeeHandler
	Dashboard  *handler.DashboardHandler
	Outbox     *handler.OutboxHandler
	System     *handler.SystemHandler
}

// Guards holds the authentication middleware of the API
type Guards struct {
	// Required rejects requests without a valid access token
	Required gin.HandlerFunc
	// Optional reads the token when present, for guest checkout
	Optional gin.HandlerFunc
	// AuthLimit throttles the credential endpoints. Nil disables it.
	AuthLimit gin.HandlerFunc
}

// RegisterAPI adds the bakery route groups to r
func RegisterAPI(r *Router, h Handlers, g Guards) {
	staff := middleware.RequireStaff()
	admin := middleware.RequireRoles(identity.RoleAdmin)
	desk := middleware.RequireRoles(identity.RoleAdmin, identity.RoleVendor)
	kitchen := middleware.RequireRoles(identity.RoleAdmin, identity.RoleBaker)

	// storefront, no account needed
	storefront := NewDomainGroup("storefront", "")
	storefront.GET("/categories", h.Category.ListPublic)
	storefront.GET("/categories/:slug", h.Category.GetBySlug)
	storefront.GET("/products", h.Product.ListPublic)
	storefront.GET("/products/:slug", h.Product.GetBySlug)
	storefront.GET("/settings", h.Settings.ListPublic)
	storefront.POST("/cart/quote", h.Order.Quote)
	storefront.POST("/cart/checkout", g.Optional, h.Order.Checkout)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.Info)

	authRoutes := NewDomainGroup("auth", "/auth")
	credentials := authRoutes.Group("credentials", "")
	if g.AuthLimit != nil {
		credentials.Use(g.AuthLimit)
	}
	credentials.POST("/register", h.Auth.Register)
	credentials.POST("/login", h.Auth.Login)
	credentials.POST("/refresh", h.Auth.Refresh)
	session := authRoutes.Group("session", "").Use(g.Required)
	session.POST("/logout", h.Auth.Logout)
	session.GET("/me", h.Auth.Me)
	session.PUT("/me", h.Auth.UpdateProfile)
	session.PUT("/password", h.Auth.ChangePassword)

	me := NewDomainGroup("customer", "/me").Use(g.Required)
	me.GET("/orders", h.Order.ListMine)
	me.GET("/orders/:id", h.Order.GetMine)
	me.POST("/orders/:id/cancel", h.Order.CancelMine)

	orders := NewDomainGroup("orders", "/orders").Use(g.Required, staff)
	orders.GET("", h.Order.List)
	orders.GET("/number/:number", h.Order.GetByNumber)
	orders.GET("/:id", h.Order.Get)
	orders.GET("/:id/receipt", h.Print.Receipt)
	orders.PUT("/:id/status", h.Order.ChangeStatus)
	orders.POST("/:id/cancel", desk, h.Order.Cancel)
	orders.POST("/:id/pay", desk, h.Order.MarkPaid)
	orders.PUT("/:id/baker", desk, h.Order.AssignBaker)

	bakers := NewDomainGroup("bakers", "/bakers").Use(g.Required, desk)
	bakers.GET("", h.Employee.ListBakers)

	pos := NewDomainGroup("pos", "/pos").Use(g.Required, desk)
	pos.POST("/sales", h.Order.Sell)

	baker := NewDomainGroup("baker", "/baker/production").Use(g.Required, kitchen)
	baker.GET("/queue", h.Production.Queue)
	baker.GET("/plan", h.Production.Plan)
	baker.GET("/batches", h.Production.ListBatches)
	baker.POST("/batches", h.Production.RecordBatch)
	baker.GET("/sheet", h.Print.ProductionSheet)

	inventory := NewDomainGroup("inventory", "/inventory").Use(g.Required, staff)
	inventory.GET("/stock", h.Inventory.ListStock)
	inventory.GET("/stock/:product_id", h.Inventory.GetStock)
	inventory.PUT("/stock/:product_id/minimum", admin, h.Inventory.SetMinimum)
	inventory.GET("/low-stock", h.Inventory.LowStock)
	inventory.GET("/movements", h.Inventory.ListMovements)
	inventory.POST("/restock", kitchen, h.Inventory.Restock)
	inventory.POST("/adjust", admin, h.Inventory.Adjust)
	inventory.POST("/waste", kitchen, h.Inventory.RegisterWaste)

	ingredients := NewDomainGroup("ingredients", "/ingredients").Use(g.Required, kitchen)
	ingredients.GET("", h.Inventory.ListIngredients)
	ingredients.GET("/:id", h.Inventory.GetIngredient)
	ingredients.POST("", admin, h.Inventory.CreateIngredient)
	ingredients.PUT("/:id", admin, h.Inventory.UpdateIngredient)
	ingredients.POST("/:id/purchase", h.Inventory.PurchaseIngredient)
	ingredients.POST("/:id/adjust", h.Inventory.AdjustIngredient)

	adminRoutes := NewDomainGroup("admin", "/admin").Use(g.Required, admin)
	adminRoutes.GET("/dashboard", h.Dashboard.Summary)

	categories := adminRoutes.Group("categories", "/categories")
	categories.GET("", h.Category.List)
	categories.POST("", h.Category.Create)
	categories.GET("/:id", h.Category.GetByID)
	categories.PUT("/:id", h.Category.Update)
	categories.DELETE("/:id", h.Category.Delete)
	categories.POST("/:id/activate", h.Category.Activate)
	categories.POST("/:id/deactivate", h.Category.Deactivate)

	products := adminRoutes.Group("products", "/products")
	products.GET("", h.Product.List)
	products.POST("", h.Product.Create)
	products.GET("/:id", h.Product.GetByID)
	products.PUT("/:id", h.Product.Update)
	products.DELETE("/:id", h.Product.Delete)
	products.POST("/:id/activate", h.Product.Activate)
	products.POST("/:id/deactivate", h.Product.Deactivate)
	products.PUT("/:id/recipe", h.Product.SetRecipe)
	products.POST("/:id/image/upload", h.Product.RequestImageUpload)
	products.PUT("/:id/image", h.Product.AttachImage)
	products.DELETE("/:id/image", h.Product.RemoveImage)

	employees := adminRoutes.Group("employees", "/employees")
	employees.GET("", h.Employee.List)
	employees.POST("", h.Employee.Create)
	employees.GET("/:id", h.Employee.Get)
	employees.PUT("/:id", h.Employee.Update)
	employees.POST("/:id/deactivate", h.Employee.Deactivate)

	settings := adminRoutes.Group("settings", "/settings")
	settings.GET("", h.Settings.ListAll)
	settings.PUT("/:key", h.Settings.Update)

	outbox := adminRoutes.Group("outbox", "/outbox")
	outbox.GET("/stats", h.Outbox.Stats)
	outbox.GET("/dead", h.Outbox.ListDead)
	outbox.POST("/dead/retry", h.Outbox.RetryAll)
	outbox.GET("/:id", h.Outbox.Get)
	outbox.POST("/:id/retry", h.Outbox.Retry)

	r.Register(storefront).
		Register(system).
		Register(authRoutes).
		Register(me).
		Register(orders).
		Register(bakers).
		Register(pos).
		Register(baker).
		Register(inventory).
		Register(ingredients).
		Register(adminRoutes)
}
