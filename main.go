package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"simop-pkpt/auth"
	"simop-pkpt/common"
	"simop-pkpt/programs"
	"simop-pkpt/users"
)

// Migrate creates all tables
func Migrate(db *gorm.DB) error {
	if err := users.AutoMigrate(db); err != nil {
		return err
	}
	if err := programs.AutoMigrate(db); err != nil {
		return err
	}
	return common.AutoMigrateMetrics(db)
}

// SetupRouter wires all routes onto a gin engine
func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()
	r.RedirectTrailingSlash = false

	r.Use(common.MetricsMiddleware(db))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authHandler := auth.NewHandler(db)
	programHandler := programs.NewHandler(db)
	userHandler := users.NewHandler(db)

	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/session", authHandler.Session)
			authRoutes.POST("/logout", authHandler.Logout)
		}

		public := api.Group("/public")
		{
			public.GET("/programs", programHandler.PublicList)
			public.GET("/programs/export", programHandler.PublicExport)
		}

		programRoutes := api.Group("/programs", auth.RequireSession(db))
		{
			programRoutes.GET("", programHandler.List)
			programRoutes.POST("", programHandler.Create)
			programRoutes.PATCH("/:id", programHandler.Update)
			programRoutes.DELETE("/:id", programHandler.Delete)
		}

		userRoutes := api.Group("/users", auth.RequireSession(db), auth.RequireAdmin())
		{
			userRoutes.GET("", userHandler.List)
			userRoutes.POST("", userHandler.Create)
			userRoutes.PATCH("/:id", userHandler.Update)
			userRoutes.DELETE("/:id", userHandler.Delete)
		}
	}

	return r
}

func main() {
	if err := auth.InitJWTSecret(); err != nil {
		log.Fatal(err)
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "simop.db"
	}

	db, err := common.OpenDatabase(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := common.CloseDatabase(db); err != nil {
			log.Println("Failed to close database:", err)
		}
	}()

	if err := Migrate(db); err != nil {
		log.Fatal("Migration failed: ", err)
	}

	// The directory must always contain at least one admin.
	if err := users.EnsureAdmin(db, os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		log.Fatal(err)
	}

	r := SetupRouter(db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
