package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Igor-Vicente/English.Registration.API/api/swagger"
	"github.com/Igor-Vicente/English.Registration.API/internal/handler"
	internalmiddleware "github.com/Igor-Vicente/English.Registration.API/internal/middleware"
	"github.com/Igor-Vicente/English.Registration.API/internal/models"
	"github.com/Igor-Vicente/English.Registration.API/internal/repository"
	"github.com/Igor-Vicente/English.Registration.API/internal/service"
	"github.com/Igor-Vicente/English.Registration.API/pkg/cache"
	"github.com/Igor-Vicente/English.Registration.API/pkg/config"
	"github.com/Igor-Vicente/English.Registration.API/pkg/database"
	"github.com/Igor-Vicente/English.Registration.API/pkg/logger"
	"github.com/Igor-Vicente/English.Registration.API/pkg/mail"
	corsmiddleware "github.com/Igor-Vicente/English.Registration.API/pkg/middleware/cors"
	"github.com/Igor-Vicente/English.Registration.API/pkg/middleware/recovery"
	reqidmiddleware "github.com/Igor-Vicente/English.Registration.API/pkg/middleware/requestid"
	"github.com/Igor-Vicente/English.Registration.API/pkg/storage"
)

// @title English Registration API
// @version 1.0.0
// @description Accounts, learner profiles and the lesson catalog for the English course
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const localImagePath = "/imgs"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Env}); err != nil {
			logr.Sugar().Warnw("sentry disabled", "error", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database unavailable", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	blobs, err := newBlobStore(ctx, cfg.Blob)
	if err != nil {
		logr.Sugar().Fatalw("blob storage unavailable", "error", err)
	}

	metrics := service.NewMetricsService()

	sender, err := mail.NewSMTPSender(cfg.Mail)
	if err != nil {
		logr.Sugar().Fatalw("mail sender misconfigured", "error", err)
	}
	dispatcher := mail.NewDispatcher(sender, cfg.Mail.Workers, cfg.Mail.Retries, logr)
	dispatcher.OnAttempt(metrics.RecordMailDelivery)
	// Deliveries outlive the signal context; they are drained after the server stops.
	dispatcher.Start(context.Background())

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	moduleRepo := repository.NewModuleRepository(db)

	tokens, err := service.NewTokenService(userRepo, service.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	if err != nil {
		logr.Sugar().Fatalw("token service misconfigured", "error", err)
	}

	validate := newValidator()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled)

	authSvc := service.NewAuthService(
		userRepo,
		profileRepo,
		tokens,
		service.NewResetCodeSigner(cfg.JWT.Secret, cfg.Reset.CodeTTL),
		dispatcher,
		validate,
		metrics,
		logr,
		service.AuthConfig{
			ResetLinkBase: strings.TrimRight(cfg.JWT.Audience, "/"),
			Lockout:       service.NewLockoutPolicy(cfg.Lockout),
		},
	)
	profileSvc := service.NewProfileService(profileRepo, userRepo, blobs, validate, logr)
	moduleSvc := service.NewModuleService(moduleRepo, cacheSvc, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	registrationHandler := handler.NewRegistrationHandler(profileSvc)
	moduleHandler := handler.NewModuleHandler(moduleSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
		"database": db.PingContext,
		"cache":    cacheRepo.Ping,
	})

	r := gin.New()
	r.Use(recovery.Middleware(logr))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.Env != config.EnvProduction, cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(recovery.ReportErrors())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if local, ok := blobs.(*storage.LocalStorage); ok {
		r.Static(localImagePath, local.Dir())
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/authentication")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/signin", authHandler.SignIn)
	auth.POST("/refresh-token", authHandler.RefreshToken)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/new-password", authHandler.ResetPassword)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(tokens))

	registration := secured.Group("/registration")
	registration.GET("", registrationHandler.Get)
	registration.POST("", registrationHandler.Create)
	registration.PUT("", registrationHandler.Update)
	registration.DELETE("", registrationHandler.Delete)
	registration.GET("/users/range", registrationHandler.Nearby)

	modules := secured.Group("/modules")
	modules.GET("", moduleHandler.List)
	modules.POST("", internalmiddleware.RequireClaim(models.ClaimIsAdmin, "true"), moduleHandler.Create)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelDrain()
	if err := dispatcher.Shutdown(drainCtx); err != nil {
		logr.Warn("mail queue not fully drained", zap.Error(err))
	}
}

func newBlobStore(ctx context.Context, cfg config.BlobConfig) (storage.BlobStore, error) {
	if cfg.Endpoint != "" {
		return storage.NewObjectStorage(ctx, cfg)
	}
	prefix := cfg.PublicURL + localImagePath
	return storage.NewLocalStorage(cfg.LocalDir, prefix)
}

// newValidator reports field errors by their JSON or form names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}
