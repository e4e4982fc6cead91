package main

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HSouheill/homeservices_backend/config"
	"github.com/HSouheill/homeservices_backend/controllers"
	"github.com/HSouheill/homeservices_backend/metrics"
	"github.com/HSouheill/homeservices_backend/middleware"
	"github.com/HSouheill/homeservices_backend/repositories"
	"github.com/HSouheill/homeservices_backend/repositories/memstore"
	"github.com/HSouheill/homeservices_backend/routes"
	"github.com/HSouheill/homeservices_backend/services"
	"github.com/HSouheill/homeservices_backend/utils"
	"github.com/HSouheill/homeservices_backend/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg)

	// Ensure correct MIME type for SVG files
	_ = mime.AddExtensionType(".svg", "image/svg+xml")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, mongoClient := openStore(ctx, cfg, log)

	var app *firebase.App
	if cfg.AuthProvider == "firebase" {
		var err error
		app, err = config.NewFirebaseApp(ctx, cfg, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize Firebase")
		}
	}
	verifier := newVerifier(ctx, cfg, app, log)

	var cache services.Cache = services.NewMemoryCache()
	redisClient := config.ConnectRedis(cfg, log)
	if redisClient != nil {
		cache = services.NewRedisCache(redisClient)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	// push notifications need Firebase; without it only the socket channel is used
	var devices services.DevicePusher
	if app != nil {
		if client, err := app.Messaging(ctx); err != nil {
			log.WithError(err).Warn("Firebase messaging unavailable, device push disabled")
		} else {
			devices = services.NewFCMPusher(client)
		}
	}

	var mailer services.Mailer = services.NewLogMailer(log)
	if cfg.SMTPHost != "" && cfg.SMTPUser != "" {
		mailer = services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.WithError(err).Fatal("Failed to create upload directory")
	}

	validator := utils.NewValidator()
	auth := services.NewAuthenticator(verifier, store.Users)
	systemLogger := services.NewSystemLogger(store.SystemLogs, log)
	gateway := services.NewRazorpayService(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret, log)
	renderer := services.NewInvoiceRenderer("HomeServices", "")
	images := utils.NewLocalImageStorage(cfg.UploadDir, "/uploads")

	notificationService := services.NewNotificationService(auth, store.Notifications, store.Users, hub, devices, log)
	invoiceService := services.NewInvoiceService(store.Bookings, store.Invoices, renderer, cache, log)
	bookingService := services.NewBookingService(auth, store.Bookings, validator, systemLogger, notificationService, cache, log)
	paymentService := services.NewPaymentService(auth, store.Bookings, gateway, invoiceService, cache, validator, systemLogger, notificationService, log)
	reviewService := services.NewReviewService(auth, store.Bookings, store.Reviews, store.Technicians, validator, systemLogger, notificationService, log)
	technicianService := services.NewTechnicianService(auth, store.Technicians, store.Users, validator, systemLogger, notificationService, mailer, log)
	jobService := services.NewJobService(auth, store.Bookings, store.Technicians, systemLogger, notificationService, log)
	userService := services.NewUserService(auth, store.Users, validator, systemLogger)
	adminService := services.NewAdminService(auth, store, validator, systemLogger, notificationService, log)
	catalogService := services.NewCatalogService(auth, store.Services, images, cache, validator, systemLogger, log)
	systemLogService := services.NewSystemLogService(auth, store.SystemLogs)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator

	rateLimiter := middleware.NewRateLimiter()
	go rateLimiter.Cleanup(ctx, 5*time.Minute)

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(metrics.Middleware())
	e.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	e.Use(middleware.SecurityHeaders(middleware.SecurityConfig{
		AllowedDomains: cfg.CORSAllowedOrigins,
		AllowInlineJS:  !cfg.IsProduction(),
	}))
	e.Use(rateLimiter.RateLimit())

	routes.SetupRoutes(e, routes.Controllers{
		Bookings:      controllers.NewBookingController(bookingService, log),
		Payments:      controllers.NewPaymentController(paymentService, log),
		Invoices:      controllers.NewInvoiceController(invoiceService, log),
		Reviews:       controllers.NewReviewController(reviewService, log),
		Users:         controllers.NewUserController(userService, log),
		Technicians:   controllers.NewTechnicianController(technicianService, jobService, log),
		Notifications: controllers.NewNotificationController(notificationService, log),
		Admin:         controllers.NewAdminController(adminService, technicianService, userService, systemLogService, log),
		Catalog:       controllers.NewCatalogController(catalogService, log),
		Diagnostics:   controllers.NewDiagnosticsController(cfg),
		WebSocket:     websocket.NewHandler(hub, verifier, cfg.CORSAllowedOrigins, log),
	}, cfg.UploadDir)

	go func() {
		log.WithField("port", cfg.Port).Info("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP shutdown failed")
	}
	if err := systemLogger.Close(shutdownCtx); err != nil {
		log.WithError(err).Warn("System log queue not fully drained")
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.WithError(err).Error("MongoDB disconnect failed")
		}
	}
	if redisClient != nil {
		closeRedis(redisClient, log)
	}
}

// openStore returns the repository set for the configured driver
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*repositories.Store, *mongo.Client) {
	if cfg.StoreDriver == "memory" {
		log.Warn("Using in-memory store; data is lost on restart")
		return memstore.NewStore(), nil
	}

	client, err := config.ConnectDB(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	return repositories.NewMongoStore(client.Database(cfg.DBName)), client
}

func newVerifier(ctx context.Context, cfg *config.Config, app *firebase.App, log *logrus.Logger) services.IdentityVerifier {
	if app != nil {
		verifier, err := services.NewFirebaseVerifier(ctx, app)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize Firebase auth")
		}
		return verifier
	}

	verifier, err := services.NewJWTVerifier(cfg.JWTSecret)
	if err != nil {
		log.WithError(err).Fatal("JWT_SECRET is required when AUTH_PROVIDER=jwt")
	}
	return verifier
}

func closeRedis(client *redis.Client, log *logrus.Logger) {
	if err := client.Close(); err != nil {
		log.WithError(err).Warn("Redis close failed")
	}
}
