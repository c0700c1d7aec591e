package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/CampusStoresCanada/csc-institution-management/internal/application"
	"github.com/CampusStoresCanada/csc-institution-management/internal/config"
	apiinfra "github.com/CampusStoresCanada/csc-institution-management/internal/infrastructure/api"
	"github.com/CampusStoresCanada/csc-institution-management/internal/infrastructure/email"
	appmiddleware "github.com/CampusStoresCanada/csc-institution-management/internal/infrastructure/middleware"
	"github.com/CampusStoresCanada/csc-institution-management/internal/infrastructure/notion"
	"github.com/CampusStoresCanada/csc-institution-management/internal/infrastructure/oauth"
	"github.com/CampusStoresCanada/csc-institution-management/internal/infrastructure/state"
	"github.com/CampusStoresCanada/csc-institution-management/internal/infrastructure/storage"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/CampusStoresCanada/csc-institution-management/internal/token"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load AWS configuration")
	}

	// Infrastructure
	notionClient := notion.NewClient(cfg.NotionToken, logger)
	directory := notion.NewDirectory(
		notionClient,
		cfg.NotionOrganizationsDBID,
		cfg.NotionContactsDBID,
		cfg.NotionTagSystemDBID,
		logger,
	)

	googleClient := oauth.NewGoogleClient(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.AppURL+"/api/auth/google",
		logger,
	)
	circleClient := oauth.NewCircleClient(cfg.CircleAPIToken, logger)

	stateStore, err := state.NewRedisStore(cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	objectStore := storage.NewS3Store(s3.NewFromConfig(awsCfg), cfg.AWSS3Bucket, cfg.AWSRegion, logger)

	var mailer ports.Mailer
	if cfg.ReportFromEmail != "" {
		mailer = email.NewSESMailer(sesv2.NewFromConfig(awsCfg), cfg.ReportFromEmail, logger)
	} else {
		logger.Warn().Msg("REPORT_FROM_EMAIL not set, email delivery disabled")
	}

	codec := token.NewCodec(cfg.SessionSigningKey)

	// Application services
	sessionService := application.NewSessionService(directory, codec, mailer, cfg.FrontendURL, logger)
	organizationService := application.NewOrganizationService(directory, logger)
	teamService := application.NewTeamService(directory, logger)
	uploadService := application.NewUploadService(objectStore, logger)
	reportService := application.NewReportService(directory, mailer, logger)

	// HTTP handlers
	authHandler := apiinfra.NewAuthHandler(googleClient, stateStore, sessionService, cfg.FrontendURL, logger)
	bridgeHandler := apiinfra.NewBridgeHandler(
		circleClient,
		sessionService,
		codec,
		cfg.CircleClientID,
		cfg.CircleClientSecret,
		cfg.FrontendURL,
		logger,
	)
	organizationHandler := apiinfra.NewOrganizationHandler(organizationService, teamService, logger)
	filesHandler := apiinfra.NewFilesHandler(uploadService, reportService, logger)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appmiddleware.SecurityHeaders())
	r.Use(appmiddleware.Metrics())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Auth routes
	r.Post("/api/auth/google", authHandler.InitGoogle)
	r.Get("/api/auth/google", authHandler.GoogleCallback)
	r.Post("/api/auth/circle/verify", bridgeHandler.Verify)
	r.Get("/api/auth/circle/authorize", bridgeHandler.Authorize)
	r.Post("/api/auth/circle/authenticate", bridgeHandler.Authenticate)
	r.Post("/api/auth/circle/token", bridgeHandler.Token)
	r.Get("/api/auth/circle/profile", bridgeHandler.Profile)
	r.Post("/api/link-account", authHandler.LinkAccount)
	r.Post("/api/request-access", authHandler.RequestAccess)

	// Session-protected routes
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.RequireSession(codec, logger))

		r.Get("/api/organization", organizationHandler.Get)
		r.Patch("/api/organization", organizationHandler.Update)
		r.Get("/api/organization/contacts", organizationHandler.ListContacts)
		r.Patch("/api/organization/contacts/{contactID}", organizationHandler.UpdateContact)
		r.Post("/api/organization/contacts/{contactID}/primary", organizationHandler.SetPrimary)

		r.Post("/api/uploads", filesHandler.Upload)
		r.Post("/api/reports/issues", filesHandler.ReportIssues)
	})

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	logger.Info().Msg("Swagger documentation available at http://localhost:" + cfg.Port + "/swagger/index.html")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
