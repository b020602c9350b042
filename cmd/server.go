package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/logx"
	"github.com/meridian-hr/funnel/recruitment/application/applicationapi"
	"github.com/meridian-hr/funnel/recruitment/evaluation/evaluationapi"
	"github.com/meridian-hr/funnel/recruitment/lake/lakeapi"
	"github.com/meridian-hr/funnel/recruitment/notification/notificationapi"
	"github.com/meridian-hr/funnel/recruitment/offer/offerapi"
	"github.com/meridian-hr/funnel/recruitment/user/userapi"
	"github.com/meridian-hr/funnel/recruitment/user/userauth"
)

// drainTimeout bounds how long shutdown waits for in-flight lake dispatches.
// It exceeds the dispatch budget so a final retry can still land or write its
// reconciliation record.
const drainTimeout = 20 * time.Second

func main() {
	cfg := LoadConfig()
	logx.SetLevel(cfg.LogLevel)
	logx.Info("Starting Funnel API Server...")

	if err := cfg.Validate(); err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}

	container := NewContainer(cfg)
	defer container.DB.Close()
	defer container.Redis.Close()

	app := fiber.New(fiber.Config{
		AppName:               "Funnel Recruitment API",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Webhook-Token",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"db":     container.DB.Ping() == nil,
			"redis":  container.Redis.Ping(c.Context()).Err() == nil,
		})
	})

	// Routes
	userauth.RegisterRoutes(app, container.AuthHandlers, container.AuthMiddleware.Authenticate())
	userapi.RegisterRoutes(app, container.UserHandlers, container.AuthMiddleware)
	offerapi.RegisterRoutes(app, container.OfferHandlers, container.AuthMiddleware)
	applicationapi.RegisterRoutes(app, container.ApplicationHandlers, container.AuthMiddleware)
	notificationapi.RegisterRoutes(app, container.NotificationHandlers, container.AuthMiddleware)
	evaluationapi.RegisterRoutes(app, container.EvaluationHandlers, container.AuthMiddleware)
	lakeapi.RegisterRoutes(app, container.LakeHandlers, container.AuthMiddleware, cfg.WebhookSecret)

	// Start Server with Graceful Shutdown
	go func() {
		logx.Infof("Server listening on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logx.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	// In-flight submission fan-outs either deliver or leave a reconciliation
	// record before the process exits.
	container.Dispatcher.Drain(drainTimeout)

	logx.Info("Server exited")
}

// globalErrorHandler converts internal errors to standard HTTP responses
func globalErrorHandler(c *fiber.Ctx, err error) error {
	// If it's a Fiber error (e.g., 404 handler not found)
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"error": e.Message,
			"code":  e.Code,
		})
	}

	// If it's our custom errx.Error
	if e, ok := err.(*errx.Error); ok {
		return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
	}

	// Default unknown error
	logx.Errorf("Internal Server Error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"type":    "INTERNAL",
		"code":    "INTERNAL_ERROR",
		"message": "An unexpected error occurred",
	})
}
