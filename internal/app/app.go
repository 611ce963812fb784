package app

import (
	"algo_prep_backend/internal/config"
	"algo_prep_backend/internal/controller"
	"algo_prep_backend/internal/repository"
	"algo_prep_backend/internal/service"
	"algo_prep_backend/pkg/configwatcher"
	"algo_prep_backend/pkg/database"
	"algo_prep_backend/pkg/logger"
	"algo_prep_backend/pkg/monitoring"
	"algo_prep_backend/pkg/security"
	"algo_prep_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	problem      *repository.ProblemRepository
	progress     *repository.ProgressRepository
	webhookEvent *repository.WebhookEventRepository
}

type services struct {
	session     *service.SessionService
	auth        *service.AuthService
	entitlement *service.EntitlementService
	catalog     *service.CatalogService
	progress    *service.ProgressService
	stats       *service.StatsService
	billing     *service.BillingService
	storage     *service.StorageService
}

type controllers struct {
	auth     *controller.AuthController
	user     *controller.UserController
	problem  *controller.ProblemController
	progress *controller.ProgressController
	billing  *controller.BillingController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		problem:      repository.NewProblemRepository(db),
		progress:     repository.NewProgressRepository(db),
		webhookEvent: repository.NewWebhookEventRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.session = service.NewSessionService(repos.user, rdb)
	s.auth = service.NewAuthService(repos.user, s.session, cfg)
	s.entitlement = service.NewEntitlementService()
	s.catalog = service.NewCatalogService(repos.problem, repos.progress, s.entitlement, rdb)
	s.progress = service.NewProgressService(repos.progress, repos.problem)
	s.stats = service.NewStatsService(repos.problem, repos.progress)
	s.billing = service.NewBillingService(repos.user, repos.webhookEvent, s.session, cfg)
	s.storage = service.NewStorageService(cfg)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		user:     controller.NewUserController(s.auth, s.storage, a.Config),
		problem:  controller.NewProblemController(s.catalog, s.progress),
		progress: controller.NewProgressController(s.stats),
		billing:  controller.NewBillingController(s.billing, a.Config),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(repos *repositories) {
	// webhook 审计记录保留 90 天，每天清理一次
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		for range ticker.C {
			cutoff := time.Now().AddDate(0, 0, -90)
			pruned, err := repos.webhookEvent.PruneBefore(cutoff)
			if err != nil {
				logger.Log.Error("webhook audit prune error", zap.Error(err))
				continue
			}
			if pruned > 0 {
				logger.Log.Info("webhook audit pruned", zap.Int64("rows", pruned))
			}
		}
	}()
}

func (a *App) watchConfig() {
	go configwatcher.WatchConfig("configs/config.yaml", a.Config, func(cfg interface{}) {
		newCfg, ok := cfg.(*config.Config)
		if !ok {
			return
		}
		// 可热更的段：计费 price id 与 CORS 白名单（均按请求读取）
		a.Config.Billing = newCfg.Billing
		a.Config.CORS = newCfg.CORS
		for _, callback := range a.configCallbacks {
			callback(newCfg)
		}
		logger.Log.Info("config reloaded")
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := database.SeedCatalog(db, cfg.Catalog.SeedFile); err != nil {
		logger.Log.Fatal("Failed to seed catalog", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("algo-prep", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(repos)
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
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
