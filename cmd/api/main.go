package main

import (
	appcontext "github.com/SeakMengs/AutoSign/internal/app_context"
	"github.com/SeakMengs/AutoSign/internal/auth"
	"github.com/SeakMengs/AutoSign/internal/config"
	"github.com/SeakMengs/AutoSign/internal/controller"
	"github.com/SeakMengs/AutoSign/internal/database"
	"github.com/SeakMengs/AutoSign/internal/env"
	filestorage "github.com/SeakMengs/AutoSign/internal/file_storage"
	"github.com/SeakMengs/AutoSign/internal/mailer"
	"github.com/SeakMengs/AutoSign/internal/metrics"
	"github.com/SeakMengs/AutoSign/internal/middleware"
	"github.com/SeakMengs/AutoSign/internal/notifier"
	"github.com/SeakMengs/AutoSign/internal/queue"
	ratelimiter "github.com/SeakMengs/AutoSign/internal/rate_limiter"
	"github.com/SeakMengs/AutoSign/internal/repository"
	"github.com/SeakMengs/AutoSign/internal/route"
	"github.com/SeakMengs/AutoSign/internal/service"
	"github.com/SeakMengs/AutoSign/internal/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)
	logger.Debugf("Configuration: %+v \n", cfg)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	s3, err := filestorage.NewMinioClient(&cfg.Minio)
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}

	rdb, err := database.ConnectRedis(cfg.Redis)
	if err != nil {
		logger.Panicf("Error connecting to redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		logger.Info("Redis connected \n")
	}

	// Custom validation
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := util.RegisterCustomValidations(v); err != nil {
			logger.Panicf("Failed to register custom validations: %v", err)
		}
	}

	inviter, closeInviter := newNotifier(cfg, logger)
	defer closeInviter()

	m := metrics.New()
	jwtService := auth.NewJwt(cfg.Auth, logger)
	repo := repository.NewRepository(db, logger)
	stores := service.NewStores(repo)
	storage := filestorage.NewMinioStorage(s3, cfg.Minio.BUCKET)

	app := appcontext.Application{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		JWTService: jwtService,
		Metrics:    m,
		Services: appcontext.Services{
			Document: service.NewDocumentService(repo.Document, stores, storage, logger),
			Layout:   service.NewLayoutService(stores, logger),
			Issuer:   service.NewIssuerService(stores, inviter, m, cfg.Signing.SigningLink, logger),
			Signing:  service.NewSigningService(stores, m, cfg.Signing.Location(), logger),
		},
	}

	globalLimiter, signerLimiter := ratelimiter.NewFromConfig(cfg.RateLimiter, rdb, logger)
	_middleware := middleware.NewMiddleware(&app, globalLimiter, signerLimiter)

	if cfg.IsProduction() {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept"}
	r.Use(cors.New(corsConfig))
	r.Use(_middleware.MetricsMiddleware)
	r.Use(_middleware.RateLimiterMiddleware)
	r.MaxMultipartMemory = 32 << 20

	_controller := controller.NewController(&app)

	route.Ops(r, _controller.Index, m)

	rApi := r.Group("/api")

	route.V1_Documents(rApi, _controller.Document, _controller.Field, _controller.Session, _middleware)
	route.V1_Sign(rApi, _controller.Signing, _middleware)

	if err := r.Run("0.0.0.0:" + app.Config.Port); err != nil {
		logger.Panicf("Error running server: %v \n", err)
	}
}

// newNotifier picks how invitations leave the api: through the mail queue
// when RabbitMQ is enabled, otherwise mailed inline.
func newNotifier(cfg config.Config, logger *zap.SugaredLogger) (notifier.Notifier, func()) {
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.GetConnectionString())
		if err != nil {
			logger.Panic("Error connecting to RabbitMQ: ", err)
		}
		logger.Info("RabbitMQ connected \n")

		return notifier.NewQueueNotifier(rabbitMQ, cfg.FrontendURL, logger), func() {
			if err := rabbitMQ.Close(); err != nil {
				logger.Errorf("Failed to close RabbitMQ connection: %v", err)
			}
		}
	}

	switch cfg.Mail.PROVIDER {
	case "gmail":
		return notifier.NewMailNotifier(mailer.NewGmailMailer(cfg.Mail.GMAIL_USERNAME, cfg.Mail.GMAIL_APP_PASSWORD, logger), cfg.FrontendURL, logger), func() {}
	case "sendgrid":
		return notifier.NewMailNotifier(mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger), cfg.FrontendURL, logger), func() {}
	default:
		logger.Warn("No mail provider configured, invitations are only logged")
		return notifier.NewLogNotifier(logger), func() {}
	}
}
