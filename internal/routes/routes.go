package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/TrainerScheduleBack/internal/config"
	"github.com/saeid-a/TrainerScheduleBack/internal/handlers"
	"github.com/saeid-a/TrainerScheduleBack/internal/middleware"
	"github.com/saeid-a/TrainerScheduleBack/internal/repository"
	"github.com/saeid-a/TrainerScheduleBack/internal/services"
	notifyws "github.com/saeid-a/TrainerScheduleBack/internal/websocket"
)

// RegisterRoutes wires repositories, services and handlers onto the
// fiber app. The returned services are also consumed by the background
// scheduler, so they are exposed for cmd/server to pick up.
type Services struct {
	Reminders *services.ReminderService
	Waitlist  *services.WaitlistService
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) (*Services, error) {
	userRepo := repository.NewUserRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	planRepo := repository.NewServicePlanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	hub := notifyws.NewHub()
	go hub.Run()

	notificationService := services.NewNotificationService(notificationRepo, hub)
	scheduleService := services.NewScheduleService(appointmentRepo, availabilityRepo)
	appointmentService := services.NewAppointmentService(
		db,
		appointmentRepo,
		participantRepo,
		availabilityRepo,
		planRepo,
		paymentRepo,
		scheduleService,
		notificationService,
	)
	groupService := services.NewGroupService(db, appointmentRepo, participantRepo, notificationService)
	availabilityService := services.NewAvailabilityService(db, availabilityRepo)
	waitlistService := services.NewWaitlistService(db, waitlistRepo, appointmentRepo, notificationService, cfg.OfferTTL)
	recurringService := services.NewRecurringService(db, appointmentRepo, templateRepo, planRepo)
	analyticsService := services.NewAnalyticsService(appointmentRepo)
	calendarService := services.NewCalendarService(appointmentRepo, participantRepo)
	reminderService := services.NewReminderService(appointmentRepo, planRepo, notificationService)
	evaluationService := services.NewEvaluationService(appointmentRepo, participantRepo, evaluationRepo)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	groupHandler := handlers.NewGroupHandler(groupService)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService, scheduleService)
	waitlistHandler := handlers.NewWaitlistHandler(waitlistService)
	recurringHandler := handlers.NewRecurringHandler(recurringService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	calendarHandler := handlers.NewCalendarHandler(calendarService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	evaluationHandler := handlers.NewEvaluationHandler(evaluationService)
	wsHandler := handlers.NewWSHandler(hub, cfg.JWTSecret)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if err := registerDocsRoutes(app, cfg); err != nil {
		return nil, err
	}

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	appointments := authProtected.Group("/appointments")
	appointments.Post("", appointmentHandler.Create)
	appointments.Post("/book", appointmentHandler.Book)
	appointments.Get("", appointmentHandler.List)
	appointments.Get("/upcoming", appointmentHandler.Upcoming)
	appointments.Get("/day", appointmentHandler.Day)
	appointments.Get("/week", appointmentHandler.Week)
	appointments.Get("/:id", appointmentHandler.Get)
	appointments.Put("/:id", appointmentHandler.Update)
	appointments.Delete("/:id", appointmentHandler.Delete)
	appointments.Post("/:id/confirm", appointmentHandler.Confirm)
	appointments.Post("/:id/cancel", appointmentHandler.Cancel)
	appointments.Post("/:id/reschedule", appointmentHandler.Reschedule)
	appointments.Post("/:id/complete", appointmentHandler.Complete)
	appointments.Post("/:id/attendance", appointmentHandler.MarkAttendance)
	appointments.Get("/:id/export", calendarHandler.ExportAppointment)
	appointments.Post("/:id/evaluations", evaluationHandler.Create)
	appointments.Get("/:id/evaluations", evaluationHandler.List)

	groups := authProtected.Group("/group-sessions")
	groups.Post("", groupHandler.Create)
	groups.Post("/:id/participants", groupHandler.AddParticipants)
	groups.Get("/:id/participants", groupHandler.ListParticipants)
	groups.Delete("/:id/participants/:studentId", groupHandler.RemoveParticipant)
	groups.Post("/:id/participants/:studentId/attendance", groupHandler.MarkParticipantAttendance)

	availability := authProtected.Group("/availability")
	availability.Get("/windows/:trainerId", availabilityHandler.ListWindows)
	availability.Put("/windows", availabilityHandler.ReplaceWindows)
	availability.Post("/blocked-slots", availabilityHandler.CreateBlockedSlot)
	availability.Get("/blocked-slots", availabilityHandler.ListBlockedSlots)
	availability.Delete("/blocked-slots/:id", availabilityHandler.DeleteBlockedSlot)
	availability.Get("/settings", availabilityHandler.Settings)
	availability.Put("/settings", availabilityHandler.UpdateSettings)
	availability.Get("/slots/:trainerId", availabilityHandler.AvailableSlots)
	availability.Post("/check-conflicts", availabilityHandler.CheckConflicts)

	waitlist := authProtected.Group("/waitlist")
	waitlist.Post("", waitlistHandler.Join)
	waitlist.Get("", waitlistHandler.List)
	waitlist.Post("/:id/offer", waitlistHandler.OfferSlot)
	waitlist.Post("/:id/accept", waitlistHandler.AcceptOffer)
	waitlist.Delete("/:id", waitlistHandler.Leave)

	recurring := authProtected.Group("/recurring")
	recurring.Post("/auto-generate", recurringHandler.AutoGenerate)
	recurring.Post("/pattern", recurringHandler.GeneratePattern)
	recurring.Post("/duplicate-week", recurringHandler.DuplicateWeek)
	recurring.Post("/apply-templates", recurringHandler.ApplyTemplates)

	templates := authProtected.Group("/templates")
	templates.Post("", recurringHandler.CreateTemplate)
	templates.Get("", recurringHandler.ListTemplates)
	templates.Put("/:id", recurringHandler.UpdateTemplate)
	templates.Delete("/:id", recurringHandler.DeleteTemplate)

	analytics := authProtected.Group("/analytics")
	analytics.Get("/schedule", analyticsHandler.Schedule)
	analytics.Get("/reliability/:studentId", analyticsHandler.Reliability)

	authProtected.Get("/calendar/export", calendarHandler.Export)

	notifications := authProtected.Group("/notifications")
	notifications.Get("", notificationHandler.List)
	notifications.Post("/:id/read", notificationHandler.MarkRead)

	api.Use("/v1/ws", wsHandler.Upgrade)
	api.Get("/v1/ws", websocket.New(wsHandler.Handle))

	return &Services{Reminders: reminderService, Waitlist: waitlistService}, nil
}
