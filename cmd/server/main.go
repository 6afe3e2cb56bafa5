package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/api"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/config"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/editor"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/logging"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/metrics"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/notify"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository/memory"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository/mongo"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository/postgres"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/storage"
)

// @title FitPlan API
// @version 1.0
// @description Program builder, workout library, clubs and workout sync.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// a .env file is optional, the environment wins anyway
	if err := godotenv.Load(); err == nil {
		log.Debugln("loaded .env")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.Log.File,
		LogToStdout:      cfg.Log.Stdout,
		LogLevel:         cfg.Log.Level,
		LogFormatJSON:    cfg.Log.JSON,
		Environment:      cfg.Sentry.Environment,
		SentryEnabled:    cfg.Sentry.Enabled,
		SentryDSN:        cfg.Sentry.DSN,
		SentryServerName: cfg.Sentry.ServerName,
	})
	if cfg.Sentry.Enabled {
		defer sentry.Flush(2 * time.Second)
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager("fitplan", "server", promRegistry)

	var (
		repos       service.Repos
		clubRepos   service.ClubRepos
		logRepo     repository.WorkoutLogRepository
		revocations service.TokenRevocations
		limiter     api.RequestRateLimiter
	)

	switch cfg.Storage.Driver {
	case "mongo":
		dbClient, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			log.Fatalf("could not connect to mongodb: %s", err)
		}
		defer func() {
			log.Println("disconnecting mongodb")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				log.Errorf("disconnect mongodb: %s", err)
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)

		indexCtx, indexCancel := context.WithTimeout(ctx, time.Minute)
		if err := mongo.EnsureIndexes(indexCtx, appDB); err != nil {
			log.Errorf("ensure indexes: %s", err)
		}
		indexCancel()

		repos = service.Repos{
			Tx:        mongo.NewTransactor(dbClient, cfg.Database.Transactions),
			Programs:  mongo.NewMongoProgramRepository(appDB),
			Weeks:     mongo.NewMongoWeekRepository(appDB),
			Workouts:  mongo.NewMongoWorkoutRepository(appDB),
			Exercises: mongo.NewMongoExerciseRepository(appDB),
			Sets:      mongo.NewMongoSetRepository(appDB),
			Circuits:  mongo.NewMongoCircuitRepository(appDB),
			Purchases: mongo.NewMongoPurchaseRepository(appDB),
		}
		profiles := mongo.NewMongoProfileRepository(appDB)
		logRepo = mongo.NewMongoWorkoutLogRepository(appDB)

		pool := mustPostgres(ctx, cfg.Postgres)
		defer pool.Close()
		clubRepos = service.ClubRepos{
			Clubs:    postgres.NewClubRepo(pool),
			Events:   postgres.NewEventRepo(pool),
			Content:  postgres.NewContentRepo(pool),
			Commerce: postgres.NewCommerceRepo(pool),
			Shares:   postgres.NewShareRepo(pool),
			Profiles: profiles,
		}

		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("could not reach redis at %s: %s", cfg.Redis.Addr, err)
		}
		revocations = service.NewRedisRevocations(redisClient)
		if cfg.RateLimit.Enabled {
			limiter = redis_rate.NewLimiter(redisClient)
		}
	case "memory":
		log.Warnln("using the in-memory store, nothing survives a restart")
		store := memory.NewStore()
		repos = service.Repos{
			Tx:        store,
			Programs:  store.Programs(),
			Weeks:     store.Weeks(),
			Workouts:  store.Workouts(),
			Exercises: store.Exercises(),
			Sets:      store.Sets(),
			Circuits:  store.Circuits(),
			Purchases: store.Purchases(),
		}
		logRepo = store.WorkoutLogs()
		clubRepos = service.ClubRepos{
			Clubs:    store.Clubs(),
			Events:   store.ClubEvents(),
			Content:  store.ClubContent(),
			Commerce: store.ClubCommerce(),
			Shares:   store.ClubShares(),
			Profiles: store.Profiles(),
		}
		revocations = service.NewMemoryRevocations()
	}

	fileStorage, err := storage.New(ctx, cfg.S3)
	if err != nil {
		log.Fatalf("could not initialize s3 storage: %s", err)
	}

	content := service.NewContent(service.ContentParams{
		Repos:          repos,
		Metrics:        metricsManager,
		SlugCacheBytes: cfg.Cache.SlugCacheBytes,
		SlugTTL:        cfg.Cache.SlugTTL,
	})
	programs := service.NewProgramService(content)
	weeks := service.NewWeekService(content)
	workouts := service.NewWorkoutService(content)
	exercises := service.NewExerciseService(content)
	sets := service.NewSetService(content)
	circuits := service.NewCircuitService(content)
	library := service.NewLibraryService(content)

	sessions := editor.NewManager(editor.Services{
		Programs:  programs,
		Weeks:     weeks,
		Workouts:  workouts,
		Exercises: exercises,
		Sets:      sets,
		Circuits:  circuits,
		Library:   library,
	}, metricsManager, cfg.Editor.IdleTimeout)
	go sessions.Run(ctx, cfg.Editor.SweepInterval)

	router := gin.New()
	api.SetupRoutes(router, api.Services{
		Auth:      service.NewAuthService(clubRepos.Profiles, revocations, cfg.JWT.Secret, cfg.JWT.Expiration),
		Programs:  programs,
		Weeks:     weeks,
		Workouts:  workouts,
		Exercises: exercises,
		Sets:      sets,
		Circuits:  circuits,
		Library:   library,
		Clubs:     service.NewClubService(clubRepos, content, notify.NewSender(cfg.Email.Provider, cfg.Email.APIKey, cfg.Email.From)),
		Media:     service.NewMediaService(content, fileStorage, cfg.S3.PresignExpiry),
		Analytics: service.NewAnalyticsService(content, logRepo),
		Editor:    sessions,
	}, api.RouterOptions{
		Metrics:            metricsManager,
		Gatherer:           promRegistry,
		Limiter:            limiter,
		RateLimitPerMinute: cfg.RateLimit.PerMinute,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen and serve: %s", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced to shutdown: %s", err)
	}
	log.Println("server exiting")
}

// mustPostgres opens the club database and brings its schema up to date.
func mustPostgres(ctx context.Context, cfg config.PostgresConfig) *pgxpool.Pool {
	pool, err := postgres.NewDBPool(ctx, postgres.NewDBPoolParams{
		DSN:            cfg.DSN,
		MaxConns:       cfg.MaxConns,
		TracingEnabled: cfg.Tracing,
	})
	if err != nil {
		log.Fatalf("could not connect to postgres: %s", err)
	}
	applied, err := postgres.NewMigrationManager(log.StandardLogger(), pool, postgres.Migrations).Run(ctx)
	if err != nil {
		pool.Close()
		log.Fatalf("postgres migrations: %s", err)
	}
	if applied > 0 {
		log.Infof("applied %d postgres migrations", applied)
	}
	return pool
}
