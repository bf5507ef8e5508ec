package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go-pos-backend/internal/handler"
	"go-pos-backend/internal/middleware"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/internal/ws"
	"go-pos-backend/pkg/apperr"
	"go-pos-backend/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	if err := db.AutoMigrate(
		&model.User{}, &model.UserDetail{}, &model.UserSystemRole{},
		&model.SystemRole{}, &model.SystemPermission{}, &model.SystemRolePermission{},
		&model.BusinessCategory{}, &model.Business{}, &model.BusinessUserPosition{},
		&model.Position{}, &model.Feature{}, &model.Action{}, &model.FeatureAction{},
		&model.BusinessPermission{}, &model.BusinessPermissionOverride{},
		&model.Unit{}, &model.ProductCategory{}, &model.Product{},
		&model.RecipeIngredient{}, &model.ComboItem{},
		&model.Inventory{}, &model.InventoryTransaction{},
		&model.StockIn{}, &model.StockInItem{},
		&model.Purchase{}, &model.SaleTransaction{}, &model.PurchaseItem{},
		&model.AuditLog{}, &model.BusinessLog{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// 3. Seed defaults
	seedDefaults(db)

	// 4. WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	businessRepo := repository.NewBusinessRepo(db)
	positionRepo := repository.NewPositionRepo(db)
	permissionRepo := repository.NewPermissionRepo(db)
	productRepo := repository.NewProductRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	logRepo := repository.NewLogRepo(db)
	analysisRepo := repository.NewAnalysisRepo(db)

	logService := service.NewLogService(logRepo)
	permService := service.NewPermissionService(permissionRepo)
	authService := service.NewAuthService(userRepo)
	businessService := service.NewBusinessService(db, businessRepo, userRepo, logService, permService)
	inventoryService := service.NewInventoryService(db, inventoryRepo, productRepo, logService, wsHub)
	saleService := service.NewSaleService(db, saleRepo, productRepo, inventoryRepo, logService, wsHub)

	authHandler := handler.NewAuthHandler(authService)
	businessHandler := handler.NewBusinessHandler(businessService)
	rbacHandler := handler.NewRBACHandler(permissionRepo, positionRepo, userRepo, permService)
	productHandler := handler.NewProductHandler(productRepo)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	saleHandler := handler.NewSaleHandler(saleService)
	analysisHandler := handler.NewAnalysisHandler(analysisRepo)
	logHandler := handler.NewLogHandler(logService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "POS Backend v1.0",
		ErrorHandler: apperr.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	auth.Post("/logout", middleware.RequireAuth(userRepo), authHandler.Logout)
	auth.Post("/change-password", middleware.RequireAuth(userRepo), authHandler.ChangePassword)

	protected.Get("/users/me", authHandler.GetProfile)
	protected.Put("/users/me/details", authHandler.UpdateDetail)

	protected.Get("/business-categories", businessHandler.ListCategories)
	protected.Get("/units", productHandler.ListUnits)
	protected.Post("/businesses", businessHandler.RegisterBusiness)
	protected.Get("/businesses", businessHandler.ListMyBusinesses)

	// Position presets are global; editing them is a system-admin concern.
	protected.Get("/positions", rbacHandler.ListPositions)
	admin := protected.Group("", middleware.RequireSystemRole(model.SystemRoleAdmin, model.SystemRoleSuperAdmin))
	admin.Post("/positions", rbacHandler.CreatePosition)
	admin.Put("/positions/:positionId", rbacHandler.RenamePosition)
	admin.Delete("/positions/:positionId", rbacHandler.DeletePosition)
	admin.Get("/positions/:positionId/matrix", rbacHandler.GetPositionMatrix)
	admin.Put("/positions/:positionId/permissions", rbacHandler.SyncPositionPermissions)
	admin.Get("/rbac/feature-actions", rbacHandler.ListFeatureActions)
	admin.Get("/rbac/cache-stats", rbacHandler.CacheStats)
	admin.Get("/rbac/system-roles", rbacHandler.ListSystemRoles)
	admin.Get("/admin/audit-logs", logHandler.ListAllAuditLogs)
	admin.Put("/users/:userId/system-role",
		middleware.RequireSystemRole(model.SystemRoleSuperAdmin),
		rbacHandler.AssignSystemRole)
	protected.Post("/auth/reset-password",
		middleware.RequireSystemRole(model.SystemRoleSuperAdmin),
		authHandler.ResetPassword)

	// Business-scoped routes carry the scope in the path and run the full
	// chain: auth, business access, permission, audit.
	biz := protected.Group("/businesses/:businessId", middleware.RequireBusinessAccess(businessRepo))

	biz.Get("", businessHandler.GetBusiness)
	biz.Put("/settings",
		middleware.RequirePermission(permService, "business_settings:update"),
		businessHandler.UpdateSettings)

	biz.Get("/employees",
		middleware.RequirePermission(permService, "employee:read"),
		businessHandler.ListEmployees)
	biz.Post("/employees",
		middleware.RequirePermission(permService, "employee:create"),
		businessHandler.AddEmployee)
	biz.Put("/employees/:userId",
		middleware.RequirePermission(permService, "employee:update"),
		businessHandler.UpdateEmployeePosition)
	biz.Delete("/employees/:userId",
		middleware.RequirePermission(permService, "employee:delete"),
		businessHandler.RemoveEmployee)

	biz.Get("/permissions/me", rbacHandler.GetMyPermissions)
	biz.Put("/positions/:positionId/overrides",
		middleware.RequirePermission(permService, "position:update"),
		rbacHandler.SetOverride)
	biz.Get("/positions/:positionId/overrides",
		middleware.RequirePermission(permService, "position:read"),
		rbacHandler.ListOverrides)
	biz.Delete("/positions/:positionId/overrides/:featureActionId",
		middleware.RequirePermission(permService, "position:update"),
		rbacHandler.RemoveOverride)
	biz.Delete("/positions/:positionId/overrides",
		middleware.RequirePermission(permService, "position:update"),
		rbacHandler.ResetOverrides)

	biz.Get("/products",
		middleware.RequirePermission(permService, "product:read"),
		productHandler.ListProducts)
	biz.Post("/products",
		middleware.RequirePermission(permService, "product:create"),
		middleware.Audit(logService, model.ModuleMenuProducts, model.ActionCreate, "product_table"),
		productHandler.CreateProduct)
	biz.Get("/products/:productId",
		middleware.RequirePermission(permService, "product:read"),
		productHandler.GetProduct)
	biz.Put("/products/:productId",
		middleware.RequirePermission(permService, "product:update"),
		middleware.Audit(logService, model.ModuleMenuProducts, model.ActionUpdate, "product_table"),
		productHandler.UpdateProduct)
	biz.Post("/products/:productId/archive",
		middleware.RequirePermission(permService, "product:archive"),
		middleware.Audit(logService, model.ModuleMenuProducts, model.ActionArchive, "product_table"),
		productHandler.ArchiveProduct)
	biz.Post("/products/:productId/restore",
		middleware.RequirePermission(permService, "product:update"),
		middleware.Audit(logService, model.ModuleMenuProducts, model.ActionUpdate, "product_table"),
		productHandler.RestoreProduct)
	biz.Delete("/products/:productId",
		middleware.RequirePermission(permService, "product:delete"),
		middleware.Audit(logService, model.ModuleMenuProducts, model.ActionDelete, "product_table"),
		productHandler.DeleteProduct)

	biz.Get("/products/:productId/recipe",
		middleware.RequirePermission(permService, "recipe:read"),
		productHandler.GetRecipe)
	biz.Put("/products/:productId/recipe",
		middleware.RequirePermission(permService, "recipe:update"),
		middleware.Audit(logService, model.ModuleMenuProducts, model.ActionUpdate, "recipe_ingredients_table"),
		productHandler.SetRecipe)
	biz.Get("/products/:productId/combo",
		middleware.RequirePermission(permService, "combo:read"),
		productHandler.GetCombo)
	biz.Put("/products/:productId/combo",
		middleware.RequirePermission(permService, "combo:update"),
		middleware.Audit(logService, model.ModuleMenuProducts, model.ActionUpdate, "combo_items_table"),
		productHandler.SetCombo)

	biz.Get("/categories",
		middleware.RequirePermission(permService, "category:read"),
		productHandler.ListCategories)
	biz.Post("/categories",
		middleware.RequirePermission(permService, "category:create"),
		middleware.Audit(logService, model.ModuleMenuProducts, model.ActionCreate, "product_category_table"),
		productHandler.CreateCategory)
	biz.Put("/categories/:categoryId",
		middleware.RequirePermission(permService, "category:update"),
		middleware.Audit(logService, model.ModuleMenuProducts, model.ActionUpdate, "product_category_table"),
		productHandler.UpdateCategory)
	biz.Delete("/categories/:categoryId",
		middleware.RequirePermission(permService, "category:delete"),
		middleware.Audit(logService, model.ModuleMenuProducts, model.ActionDelete, "product_category_table"),
		productHandler.DeleteCategory)

	// Inventory services write their own log entries, so no Audit middleware.
	biz.Get("/inventory",
		middleware.RequirePermission(permService, "inventory:read"),
		inventoryHandler.ListStock)
	biz.Post("/inventory/adjust",
		middleware.RequirePermission(permService, "inventory:update"),
		inventoryHandler.Adjust)
	biz.Post("/inventory/adjust-batch",
		middleware.RequirePermission(permService, "inventory:update"),
		inventoryHandler.AdjustBatch)
	biz.Get("/inventory/transactions",
		middleware.RequirePermission(permService, "inventory:read"),
		inventoryHandler.ListTransactions)

	biz.Post("/stockins",
		middleware.RequirePermission(permService, "stockin:create"),
		inventoryHandler.CreateStockIn)
	biz.Get("/stockins",
		middleware.RequirePermission(permService, "stockin:read"),
		inventoryHandler.ListStockIns)
	biz.Get("/stockins/:stockinId",
		middleware.RequirePermission(permService, "stockin:read"),
		inventoryHandler.GetStockIn)

	biz.Post("/production",
		middleware.RequirePermission(permService, "production:create"),
		inventoryHandler.Produce)

	biz.Post("/sales",
		middleware.RequirePermission(permService, "order:create"),
		saleHandler.CreateSale)
	biz.Get("/orders",
		middleware.RequirePermission(permService, "order:read"),
		saleHandler.ListOrders)
	biz.Get("/orders/:transactionId",
		middleware.RequirePermission(permService, "order:read"),
		saleHandler.GetOrder)
	biz.Post("/orders/:transactionId/cancel",
		middleware.RequirePermission(permService, "order:cancel"),
		saleHandler.CancelOrder)
	biz.Post("/orders/:transactionId/finish",
		middleware.RequirePermission(permService, "order:update"),
		saleHandler.FinishOrder)

	biz.Get("/analysis/dashboard",
		middleware.RequirePermission(permService, "dashboard:read"),
		analysisHandler.Dashboard)
	biz.Get("/analysis/top-products",
		middleware.RequirePermission(permService, "dashboard:read"),
		analysisHandler.TopProducts)
	biz.Get("/analysis/sales-by-date",
		middleware.RequirePermission(permService, "dashboard:read"),
		analysisHandler.SalesByDate)
	biz.Get("/analysis/stock-alerts",
		middleware.RequirePermission(permService, "dashboard:read"),
		analysisHandler.StockAlerts)

	biz.Get("/logs",
		middleware.RequirePermission(permService, "business_logs:read"),
		logHandler.ListBusinessLogs)
	biz.Get("/logs/export",
		middleware.RequirePermission(permService, "business_logs:export"),
		logHandler.ExportBusinessLogs)
	biz.Get("/audit-logs",
		middleware.RequireSystemRole(model.SystemRoleAdmin, model.SystemRoleSuperAdmin),
		logHandler.ListAuditLogs)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(wsHub.Handler()))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exited")
}

// seedDefaults creates the RBAC vocabulary, position presets with their
// default grants, lookup tables and the superadmin account.
func seedDefaults(db *gorm.DB) {
	permissionRepo := repository.NewPermissionRepo(db)
	positionRepo := repository.NewPositionRepo(db)
	businessRepo := repository.NewBusinessRepo(db)
	productRepo := repository.NewProductRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := permissionRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: failed to seed permissions: %v", err)
	}
	if err := positionRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: failed to seed positions: %v", err)
	}
	if err := businessRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: failed to seed business categories: %v", err)
	}
	if err := productRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: failed to seed units: %v", err)
	}

	seedPositionGrants(permissionRepo, positionRepo)
	seedSuperadmin(userRepo)
}

// seedPositionGrants gives each preset its starting permission set. Presets
// that already have grants are left alone so admin edits survive restarts.
func seedPositionGrants(permissionRepo repository.PermissionRepository, positionRepo repository.PositionRepository) {
	pairs, err := permissionRepo.ListFeatureActions()
	if err != nil {
		log.Printf("Warning: failed to list feature actions: %v", err)
		return
	}

	keep := func(position string, key string) bool {
		switch position {
		case "Owner":
			return true
		case "Manager":
			return !strings.HasPrefix(key, "business_settings:")
		case "Cashier":
			switch key {
			case "order:create", "order:read", "order:cancel", "product:read", "category:read", "dashboard:read":
				return true
			}
			return false
		case "Kitchen":
			switch key {
			case "production:create", "production:read", "recipe:read", "combo:read", "inventory:read", "product:read":
				return true
			}
			return false
		}
		return false
	}

	positions, err := positionRepo.FindAll()
	if err != nil {
		log.Printf("Warning: failed to list positions: %v", err)
		return
	}
	for _, position := range positions {
		existing, err := positionRepo.ListPositionPermissions(position.ID)
		if err != nil || len(existing) > 0 {
			continue
		}
		var ids []uint
		for _, pair := range pairs {
			if keep(position.PositionName, pair.Key) {
				ids = append(ids, pair.FeatureActionID)
			}
		}
		if _, err := permissionRepo.BulkAssignPositionPermissions(position.ID, ids); err != nil {
			log.Printf("Warning: failed to grant %s permissions: %v", position.PositionName, err)
		}
	}
}

func seedSuperadmin(userRepo repository.UserRepository) {
	username := os.Getenv("SUPERADMIN_USERNAME")
	if username == "" {
		username = "superadmin"
	}
	if _, err := userRepo.FindByUsername(username); err == nil {
		return
	}

	password := os.Getenv("SUPERADMIN_PASSWORD")
	if password == "" {
		log.Println("Warning: SUPERADMIN_PASSWORD not set, skipping superadmin seed")
		return
	}

	admin := model.User{Username: username, Email: username + "@localhost"}
	if err := admin.SetPassword(password); err != nil {
		log.Printf("Warning: failed to hash superadmin password: %v", err)
		return
	}
	if err := userRepo.Create(&admin); err != nil {
		log.Printf("Warning: failed to create superadmin: %v", err)
		return
	}
	if err := userRepo.AssignSystemRole(admin.ID, model.SystemRoleSuperAdmin); err != nil {
		log.Printf("Warning: failed to assign superadmin role: %v", err)
	}
	log.Printf("Seeded superadmin account %q", username)
}
