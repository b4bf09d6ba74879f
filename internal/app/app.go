package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assesspro_backend/internal/config"
	"assesspro_backend/internal/controller"
	"assesspro_backend/internal/repository"
	"assesspro_backend/internal/service"
	"assesspro_backend/pkg/database"
	"assesspro_backend/pkg/logger"
	"assesspro_backend/pkg/monitoring"
	"assesspro_backend/pkg/security"
	"assesspro_backend/pkg/tracing"

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
	stopSweeper     chan struct{}
}

type repositories struct {
	user      *repository.UserRepository
	test      *repository.TestRepository
	category  *repository.CategoryRepository
	attempt   *repository.AttemptRepository
	answer    *repository.UserAnswerRepository
	exception *repository.CooldownExceptionRepository
}

type services struct {
	auth     *service.AuthService
	cooldown *service.CooldownService
	passing  *service.TestPassingService
	test     *service.TestService
	admin    *service.AdminService
}

type controllers struct {
	auth     *controller.AuthController
	attempt  *controller.AttemptController
	catalog  *controller.CatalogController
	test     *controller.TestController
	cooldown *controller.CooldownController
	admin    *controller.AdminController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig is invoked by the config watcher after a successful reload.
func (a *App) ReloadConfig(cfg *config.Config) {
	a.Config = cfg
	logger.Log.Info("Configuration reloaded")
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		test:      repository.NewTestRepository(db),
		category:  repository.NewCategoryRepository(db),
		attempt:   repository.NewAttemptRepository(db),
		answer:    repository.NewUserAnswerRepository(db),
		exception: repository.NewCooldownExceptionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.cooldown = service.NewCooldownService(repos.attempt, repos.exception)
	s.passing = service.NewTestPassingService(repos.test, repos.attempt, repos.answer, repos.user, s.cooldown, db)
	s.test = service.NewTestService(repos.test, repos.category, rdb, cfg, db)
	s.admin = service.NewAdminService(repos.user, repos.attempt, s.passing)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		attempt:  controller.NewAttemptController(s.passing),
		catalog:  controller.NewCatalogController(s.test, s.cooldown),
		test:     controller.NewTestController(s.test),
		cooldown: controller.NewCooldownController(s.cooldown, s.test),
		admin:    controller.NewAdminController(s.admin),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks launches the attempt expirer: attempts whose test time
// limit has elapsed are closed with TIMEOUT status so they stop blocking the
// one-open-attempt rule and enter the cooldown window.
func (a *App) startBackgroundTasks(s *services) {
	a.stopSweeper = make(chan struct{})
	interval := time.Duration(a.Config.Attempts.ExpirySweepSeconds) * time.Second

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.passing.ProcessExpiredAttempts(time.Now()); err != nil {
					logger.Log.Error("attempt expiry sweep error", zap.Error(err))
				}
			case <-a.stopSweeper:
				return
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
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
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("assesspro", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.stopSweeper != nil {
		close(a.stopSweeper)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
