package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	"tutorhub_backend/internal/config"
	"tutorhub_backend/internal/controller"
	"tutorhub_backend/internal/repository"
	"tutorhub_backend/internal/service"
	"tutorhub_backend/internal/util"
	"tutorhub_backend/pkg/configwatcher"
	"tutorhub_backend/pkg/database"
	"tutorhub_backend/pkg/logger"
	"tutorhub_backend/pkg/monitoring"
	"tutorhub_backend/pkg/security"
	"tutorhub_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigPath      string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	student    *repository.StudentRepository
	assignment *repository.AssignmentRepository
	submission *repository.SubmissionRepository
}

type services struct {
	auth       *service.AuthService
	student    *service.StudentService
	assignment *service.AssignmentService
	attempt    *service.AttemptService
	submission *service.SubmissionService
	hub        *service.ResultsHub
}

type controllers struct {
	auth             *controller.AuthController
	student          *controller.StudentController
	assignment       *controller.AssignmentController
	publicAssignment *controller.PublicAssignmentController
	health           *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		student:    repository.NewStudentRepository(db),
		assignment: repository.NewAssignmentRepository(db),
		submission: repository.NewSubmissionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	storage := service.NewStorageProvider(&cfg.Storage)

	// 未启用快照时退回客户端计时
	var snapshots service.SnapshotStore
	if cfg.Assignments.SnapshotAttempts && rdb != nil {
		snapshots = service.NewRedisSnapshotStore(rdb)
	}

	gate := service.NewGate(repos.assignment)
	identity := service.NewIdentityService(repos.student)

	s.auth = service.NewAuthService(repos.user, cfg)
	s.student = service.NewStudentService(repos.student)
	s.assignment = service.NewAssignmentService(repos.assignment, repos.student, repos.submission, storage, cfg.Server.PublicURL)
	s.attempt = service.NewAttemptService(gate, repos.assignment, snapshots, &cfg.Assignments)
	s.submission = service.NewSubmissionService(gate, identity, s.attempt, repos.assignment, repos.submission)

	// 老师端实时成绩
	s.hub = service.NewResultsHub()
	s.submission.Feed = s.hub

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:             controller.NewAuthController(s.auth),
		student:          controller.NewStudentController(s.student),
		assignment:       controller.NewAssignmentController(s.assignment, s.hub),
		publicAssignment: controller.NewPublicAssignmentController(s.attempt, s.submission),
		health:           controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// watchConfig reloads configs/config.yaml on change and fans the new config
// out to the registered callbacks.
func (a *App) watchConfig() {
	if a.ConfigPath == "" {
		return
	}
	go configwatcher.WatchConfig(filepath.Join(a.ConfigPath, "config.yaml"), func(cfg *config.Config) {
		for _, cb := range a.configCallbacks {
			cb(cfg)
		}
		logger.Log.Info("Config reloaded", zap.String("mode", cfg.Server.Mode))
	})
}

func NewApp(cfg *config.Config, configPath string) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config:     cfg,
		ConfigPath: configPath,
		DB:         db,
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(context.Background(), &cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, app.Redis)
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("tutorhub-assignments", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	util.ExposeStoreErrors(cfg.Server.Mode == gin.DebugMode)
	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetMode(c.Server.Mode)
		util.ExposeStoreErrors(c.Server.Mode == gin.DebugMode)
	})
	app.watchConfig()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
