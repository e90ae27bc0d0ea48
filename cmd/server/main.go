package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/saeid-a/TrainerScheduleBack/internal/config"
	"github.com/saeid-a/TrainerScheduleBack/internal/database"
	"github.com/saeid-a/TrainerScheduleBack/internal/routes"
	"github.com/saeid-a/TrainerScheduleBack/internal/scheduler"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	services, err := routes.RegisterRoutes(app, cfg, pool)
	if err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	sweeps := scheduler.New(services.Reminders, services.Waitlist, scheduler.Config{
		ReminderInterval: cfg.ReminderInterval,
		ExpiryInterval:   cfg.ExpirySweepPeriod,
	})
	sweeps.Start(ctx)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}

	sweeps.Wait()
}
