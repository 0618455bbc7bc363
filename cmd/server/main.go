package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	config "github.com/forepost/api/configs"
	"github.com/forepost/api/internal/api/handlers"
	"github.com/forepost/api/internal/api/middleware"
	"github.com/forepost/api/internal/events"
	"github.com/forepost/api/internal/notify"
	"github.com/forepost/api/internal/repository"
	"github.com/forepost/api/internal/scheduler"
	"github.com/forepost/api/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout: 10 * time.Minute,
		BodyLimit:   20 * 1024 * 1024, // 20 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	notifier := notify.New(cfg)
	broker := events.NewBroker()
	defer broker.Close()

	xClient := service.NewXClient(cfg)
	s3Service := service.NewS3Service(cfg)
	deliveryService := service.NewDeliveryService(postRepo, xClient, notifier, broker, cfg.UploadDir)
	postService := service.NewPostService(postRepo, deliveryService)
	settingsService := service.NewSettingsService(settingsRepo)
	aiService := service.NewAIService(cfg, settingsService)
	authService := service.NewAuthService(cfg, userRepo)
	uploadService := service.NewUploadService(cfg, s3Service)

	if err := authService.EnsureAdminUser(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to ensure admin user: %v", err)
	}

	auth := handlers.NewAuthHandler(authService)
	app.Post("/api/login", auth.Login)

	upload := handlers.NewUploadHandler(uploadService, cfg.UploadDir)
	app.Get("/files/:filename", upload.ServeFile)

	eventsHandler := handlers.NewEventsHandler(broker)
	app.Get("/api/events", eventsHandler.Stream)

	api := app.Group("/api")
	api.Use(middleware.Protected(cfg.JWTSecret))

	api.Put("/credentials", auth.UpdateCredentials)

	post := handlers.NewPostHandler(postService)
	api.Post("/posts", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)
	api.Put("/posts/:id", post.UpdatePost)
	api.Delete("/posts/:id", post.RemovePost)

	settings := handlers.NewSettingsHandler(settingsService, aiService)
	api.Get("/settings", settings.GetSettings)
	api.Put("/settings", settings.UpdateSettings)
	api.Post("/ai/generate", settings.GenerateAIContent)

	api.Post("/upload", upload.UploadFile)

	sched := scheduler.New(postRepo, deliveryService, notifier, cfg.SchedulerInterval, cfg.SchedulerAdvance)
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, sched, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, sched *scheduler.Scheduler, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	sched.Shutdown()
	closeDB(db)
	log.Println("Server shutdown complete.")
}
