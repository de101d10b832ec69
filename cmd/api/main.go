package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	config "github.com/sivagurunathan-sta/a-intern-management-sub000/configs"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/database"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/handlers"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/jobs"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/notifications"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/routes"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/services"
	"github.com/sivagurunathan-sta/a-intern-management-sub000/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}

	db, err := database.ConnectDB(cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminFullName); err != nil {
		log.Fatalf("🔥 %v", err)
	}

	var files services.FileStore = services.LocalStore{Dir: cfg.UploadDir, BaseURL: cfg.PublicBaseURL + "/uploads"}
	if cfg.CloudinaryURL != "" {
		store, err := services.NewCloudinaryStore(cfg.CloudinaryURL, "intern_portal")
		if err != nil {
			log.Fatalf("🔥 Failed to initialize Cloudinary: %v", err)
		}
		files = store
	} else {
		log.Printf("⚠️ CLOUDINARY_URL not set, storing uploads under %s", cfg.UploadDir)
	}

	hub := websocket.NewHub()
	dispatcher := &notifications.Dispatcher{DB: db, Pusher: hub}
	if mailer := notifications.NewBrevoService(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName); mailer != nil {
		dispatcher.Mailer = mailer
	}
	auditor := services.DBAuditor{DB: db}

	svc := services.New(db, services.Options{
		Notifier:           dispatcher,
		Files:              files,
		Auditor:            auditor,
		Renderer:           services.ChromeRenderer{TemplatePath: cfg.CertificateTemplate},
		ResubmissionWindow: cfg.ResubmissionWindow,
		CertificatePrefix:  cfg.CertificatePrefix,
		MaxProofBytes:      cfg.MaxProofBytes,
	})

	if cfg.CatalogSeedFile != "" {
		n, err := svc.Catalog.SeedFromFile(context.Background(), cfg.CatalogSeedFile)
		if err != nil {
			log.Fatalf("🔥 Failed to seed catalog: %v", err)
		}
		log.Printf("✅ Catalog seed done, %d new internship(s)", n)
	}

	c := cron.New()
	if cfg.JobsEnabled {
		runner := &jobs.Runner{DB: db, Notifier: dispatcher}
		if err := runner.Schedule(c); err != nil {
			log.Fatalf("🔥 Failed to schedule jobs: %v", err)
		}
		c.Start()
	}

	h := &handlers.Handler{
		DB:            db,
		Services:      svc,
		Notifications: dispatcher,
		Hub:           hub,
		Auditor:       auditor,
		Mailer:        dispatcher.Mailer,
		JWTSecret:     cfg.JWTSecret,
	}

	app := fiber.New(fiber.Config{
		AppName:       "Intern Portal",
		CaseSensitive: true,
		StrictRouting: true,
		BodyLimit:     int(cfg.MaxProofBytes) + 1<<20,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  60 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	if cfg.CloudinaryURL == "" {
		app.Static("/uploads", cfg.UploadDir)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	routes.Register(app, h)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		<-c.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️ Shutdown error: %v", err)
		}
	}()

	log.Printf("✅ Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
