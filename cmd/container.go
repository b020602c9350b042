package main

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/meridian-hr/funnel/internal/pdf"
	"github.com/meridian-hr/funnel/pkg/fsx"
	"github.com/meridian-hr/funnel/pkg/fsx/fsxs3"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/logx"
	"github.com/meridian-hr/funnel/recruitment/application"
	"github.com/meridian-hr/funnel/recruitment/application/applicationapi"
	"github.com/meridian-hr/funnel/recruitment/application/applicationinfra"
	"github.com/meridian-hr/funnel/recruitment/application/applicationsrv"
	"github.com/meridian-hr/funnel/recruitment/evaluation/evaluationapi"
	"github.com/meridian-hr/funnel/recruitment/evaluation/evaluationinfra"
	"github.com/meridian-hr/funnel/recruitment/evaluation/evaluationsrv"
	"github.com/meridian-hr/funnel/recruitment/lake/lakeapi"
	"github.com/meridian-hr/funnel/recruitment/lake/lakeinfra"
	"github.com/meridian-hr/funnel/recruitment/lake/lakesrv"
	"github.com/meridian-hr/funnel/recruitment/notification/notificationapi"
	"github.com/meridian-hr/funnel/recruitment/notification/notificationinfra"
	"github.com/meridian-hr/funnel/recruitment/notification/notificationsrv"
	"github.com/meridian-hr/funnel/recruitment/offer/offerapi"
	"github.com/meridian-hr/funnel/recruitment/offer/offerinfra"
	"github.com/meridian-hr/funnel/recruitment/offer/offersrv"
	"github.com/meridian-hr/funnel/recruitment/user/userapi"
	"github.com/meridian-hr/funnel/recruitment/user/userauth"
	"github.com/meridian-hr/funnel/recruitment/user/userinfra"
	"github.com/meridian-hr/funnel/recruitment/user/usersrv"
)

// requiredSchemaVersion is the schema_migrations version this build expects.
// It moves in lockstep with the files under migrations/.
const requiredSchemaVersion = 9

// Container holds all application dependencies
type Container struct {
	// Config
	Config *Config

	// Infrastructure
	DB       *sqlx.DB
	Redis    *redis.Client
	S3Client *s3.Client
	Lake     fsx.FileSystem

	// Services
	TokenService        *auth.TokenService
	AuthService         *userauth.AuthService
	UserService         *usersrv.UserService
	OfferService        *offersrv.OfferService
	ApplicationService  *applicationsrv.ApplicationService
	NotificationService *notificationsrv.NotificationService
	EvaluationService   *evaluationsrv.EvaluationService
	Projector           *lakesrv.Projector
	Dispatcher          *lakesrv.Dispatcher

	// API Handlers
	AuthHandlers         *userauth.Handlers
	UserHandlers         *userapi.Handlers
	OfferHandlers        *offerapi.Handlers
	ApplicationHandlers  *applicationapi.Handlers
	NotificationHandlers *notificationapi.Handlers
	EvaluationHandlers   *evaluationapi.Handlers
	LakeHandlers         *lakeapi.Handlers

	// Middleware
	AuthMiddleware *auth.Middleware
}

// NewContainer initializes the dependency injection container
func NewContainer(cfg *Config) *Container {
	c := &Container{Config: cfg}
	c.initInfrastructure()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	// 1. Database Connection
	db, err := sqlx.Connect("postgres", c.Config.DatabaseURL)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(30)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	c.DB = db

	// 2. Schema Gate
	// Migrations are applied by external tooling; the process only verifies
	// it is running against the schema it was compiled for.
	c.checkSchemaVersion()

	// 3. Redis Connection
	// Redis only backs the idempotency window, so a missing Redis degrades
	// duplicate-replay detection instead of blocking startup.
	c.Redis = redis.NewClient(&redis.Options{
		Addr: c.Config.RedisAddr,
		DB:   0,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}

	// 4. Object Lake (S3 or S3-compatible endpoint)
	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		logx.Fatalf("unable to load SDK config, %v", err)
	}
	c.S3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Config.ObjectStoreConnection != "" {
			o.BaseEndpoint = aws.String(c.Config.ObjectStoreConnection)
			o.UsePathStyle = true
		}
	})
	c.Lake = fsxs3.NewS3FileSystem(c.S3Client, c.Config.ObjectStoreContainer, "")
}

// checkSchemaVersion refuses to start against a database whose
// schema_migrations version differs from requiredSchemaVersion or whose last
// migration was left dirty.
func (c *Container) checkSchemaVersion() {
	driver, err := postgres.WithInstance(c.DB.DB, &postgres.Config{})
	if err != nil {
		logx.Fatalf("Failed to inspect database schema: %v", err)
	}
	version, dirty, err := driver.Version()
	if closeErr := driver.Close(); closeErr != nil {
		logx.Warnf("Schema inspector close failed: %v", closeErr)
	}
	if err != nil {
		logx.Fatalf("Failed to read schema version: %v", err)
	}
	if dirty {
		logx.Fatalf("Database schema is dirty at version %d, repair it before starting", version)
	}
	if version != requiredSchemaVersion {
		logx.Fatalf("Database schema version is %d, this build requires %d (run migrations)", version, requiredSchemaVersion)
	}
}

func (c *Container) initServices() {
	cfg := c.Config

	// --- Repositories ---
	userRepo := userinfra.NewPostgresUserRepository(c.DB)
	profileRepo := userinfra.NewPostgresProfileRepository(c.DB)
	accessRequestRepo := userinfra.NewPostgresAccessRequestRepository(c.DB)
	refreshTokenRepo := userinfra.NewPostgresRefreshTokenRepository(c.DB)
	offerRepo := offerinfra.NewPostgresOfferRepository(c.DB)
	applicationRepo := applicationinfra.NewPostgresApplicationRepository(c.DB)
	notificationRepo := notificationinfra.NewPostgresNotificationRepository(c.DB)
	evaluationRepo := evaluationinfra.NewPostgresEvaluationRepository(c.DB)
	reconciliationRepo := lakeinfra.NewPostgresReconciliationRepository(c.DB)
	bundleReader := lakeinfra.NewPostgresBundleReader(c.DB)

	// --- Infrastructure Services ---
	passwordService := auth.NewBcryptPasswordService()
	c.TokenService = auth.NewTokenService(cfg.TokenSecret, cfg.AccessTokenTTL, tokenIssuer, tokenAudience)

	idempotencyStore := applicationinfra.NewRedisIdempotencyStore(c.Redis, cfg.IdempotencyWindow)
	documentValidator := application.NewDocumentValidator(cfg.DocumentSizeCapBytes)

	// --- Lake Pipeline ---
	c.Dispatcher = lakesrv.NewDispatcher(lakesrv.DispatcherConfig{
		BaseURL: cfg.APIBaseURL,
		Secret:  cfg.WebhookSecret,
	}, reconciliationRepo)
	c.Projector = lakesrv.NewProjector(
		bundleReader,
		c.Lake,
		reconciliationRepo,
		pdf.NewFitzInspector(),
		cfg.LakeWriteAttempts,
	)

	// --- Domain Services ---
	c.AuthService = userauth.NewAuthService(userRepo, refreshTokenRepo, c.TokenService, passwordService, cfg.RefreshTokenTTL)
	c.UserService = usersrv.NewUserService(userRepo, profileRepo, accessRequestRepo, refreshTokenRepo, notificationRepo, passwordService)
	c.OfferService = offersrv.NewOfferService(offerRepo)
	c.ApplicationService = applicationsrv.NewApplicationService(
		applicationRepo,
		offerRepo,
		notificationRepo,
		idempotencyStore,
		documentValidator,
		c.Dispatcher,
	)
	c.NotificationService = notificationsrv.NewNotificationService(notificationRepo)
	c.EvaluationService = evaluationsrv.NewEvaluationService(evaluationRepo, applicationRepo)

	// --- Handlers ---
	c.AuthHandlers = userauth.NewHandlers(c.AuthService)
	c.UserHandlers = userapi.NewHandlers(c.UserService)
	c.OfferHandlers = offerapi.NewHandlers(c.OfferService)
	c.ApplicationHandlers = applicationapi.NewHandlers(c.ApplicationService)
	c.NotificationHandlers = notificationapi.NewHandlers(c.NotificationService)
	c.EvaluationHandlers = evaluationapi.NewHandlers(c.EvaluationService)
	c.LakeHandlers = lakeapi.NewHandlers(c.Projector)

	// --- Middleware ---
	c.AuthMiddleware = auth.NewMiddleware(c.TokenService)
}
