package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"

	"alfredoptarigan/resume-analyzer/internal/middleware"
	"alfredoptarigan/resume-analyzer/internal/services"
)

// Services is everything the HTTP layer needs. Search may be nil.
type Services struct {
	Auth          services.AuthService
	Resumes       services.ResumeService
	Search        services.SearchService
	Subscriptions services.SubscriptionService
	Reports       services.ReportService
	// Ping checks the database. Nil means there is nothing to check.
	Ping func(ctx context.Context) error
}

// NewApp creates the fiber app with the shared middleware stack and all routes.
func NewApp(svc Services, bodyLimit int, log logrus.FieldLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Resume Analyzer API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler(log),
	})

	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	registerRoutes(app, svc)
	return app
}

func registerRoutes(app *fiber.App, svc Services) {
	resumeHandler := NewResumeHandler(svc.Resumes, svc.Search)
	userHandler := NewUserHandler(svc.Auth)
	subscriptionHandler := NewSubscriptionHandler(svc.Subscriptions)
	reportHandler := NewReportHandler(svc.Reports)
	healthHandler := NewHealthHandler(svc.Ping)

	app.Get("/", healthHandler.HandleRoot)
	app.Get("/health", healthHandler.HandleHealth)

	app.Post("/analyze_resume", resumeHandler.HandleAnalyze)
	app.Get("/resumes/:filename", resumeHandler.HandleGetFile)
	app.Get("/analyses/:id", resumeHandler.HandleGetAnalysis)
	app.Post("/analyses/search", resumeHandler.HandleSearch)

	users := app.Group("/users")
	users.Post("/register", userHandler.HandleRegister)
	users.Post("/login", userHandler.HandleLogin)

	subscriptions := app.Group("/subscriptions")
	subscriptions.Post("/subscribe/:user_id", subscriptionHandler.HandleSubscribe)
	subscriptions.Get("/status/:user_id", subscriptionHandler.HandleStatus)

	reports := app.Group("/reports")
	reports.Post("/generate/:user_id", reportHandler.HandleGenerate)
	reports.Get("/download/:user_id", reportHandler.HandleDownload)

	app.Get("/secure-data", middleware.RequireAuth(svc.Auth), userHandler.HandleSecureData)
}
