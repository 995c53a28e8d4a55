package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	httpHandler "collaborative-workspace/internal/handler/http"
	wsHandler "collaborative-workspace/internal/handler/websocket"
	"collaborative-workspace/internal/hub"
	gormpersistence "collaborative-workspace/internal/infra/persistence/gorm"
	"collaborative-workspace/internal/infra/setup"
	redisstate "collaborative-workspace/internal/infra/state/redis"
	"collaborative-workspace/internal/middleware"
	"collaborative-workspace/internal/presence"
	"collaborative-workspace/internal/service"
	"collaborative-workspace/internal/worker"
)

// App 包含应用的所有组件和配置
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	Worker      *worker.WorkerServer
	Hub         *hub.Hub
	HttpServer  *http.Server
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		// logrus 还未配置，直接写 stderr
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. 初始化 Logger，同时作为全局 logger 供各层使用
	log := newLogger(cfg)
	log.Info("Configuration loaded successfully")

	// 3. 初始化基础设施
	gormLevel := gormlogger.Warn
	if cfg.AppEnv != "production" && cfg.LogLevel == "debug" {
		gormLevel = gormlogger.Info
	}
	db, err := setup.InitDB(setup.DBOptions{
		Driver:     cfg.DBDriver,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		Name:       cfg.DBName,
		SQLitePath: cfg.SQLitePath,
		LogLevel:   gormLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.WithField("driver", cfg.DBDriver).Info("Database initialized and migrated")

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	log.Info("Redis client initialized")

	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)

	// 4. Repositories
	userRepo := gormpersistence.NewGormUserRepository(db)
	roomRepo := gormpersistence.NewGormRoomRepository(db)
	folderRepo := gormpersistence.NewGormFolderRepository(db)
	fileRepo := gormpersistence.NewGormFileRepository(db)
	convRepo := gormpersistence.NewGormConversationRepository(db)
	stateRepo := redisstate.NewRedisStateRepository(redisClient, cfg.KeyPrefix)

	// 5. Services
	authService, err := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create AuthService: %w", err)
	}
	roomService := service.NewRoomService(roomRepo, userRepo, fileRepo, folderRepo, asynqClient)
	treeService := service.NewTreeService(folderRepo, fileRepo)
	docService := service.NewDocumentService(fileRepo, stateRepo, cfg.EditRateLimit, time.Second)
	chatService := service.NewChatService(convRepo, userRepo)
	log.Info("Services initialized")

	// 6. Hub
	hubInstance := hub.NewHub(hub.Services{
		Auth:  authService,
		Rooms: roomService,
		Tree:  treeService,
		Docs:  docService,
		Chat:  chatService,
	}, presence.NewStore(), cfg.CommandTimeout)

	// 7. Worker
	workerServer := worker.NewWorkerServer(
		redisClientOpt,
		worker.NewRoomCleanupHandler(roomService),
		worker.NewPresenceSweepHandler(hubInstance, roomService.IsMember),
		cfg.PresenceSweepSchedule,
		log,
	)

	// 8. 路由
	router := newRouter(cfg, log, redisClient, routerDeps{
		auth:   httpHandler.NewAuthHandler(authService),
		rooms:  httpHandler.NewRoomHandler(roomService),
		ws:     wsHandler.NewWebSocketHandler(hubInstance, authService, cfg.CORSAllowedOrigin),
		verify: authService,
		health: httpHandler.NewHealthHandler(map[string]httpHandler.Pinger{
			"database": httpHandler.PingerFunc(func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}),
			"redis": stateRepo,
		}),
	})

	app := &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		RedisClient: redisClient,
		AsynqClient: asynqClient,
		Worker:      workerServer,
		Hub:         hubInstance,
		HttpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	log.Info("Application assembled successfully")
	return app, nil
}

func newLogger(cfg *Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel) // LoadConfig 已校验
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
	log.Infof("Logger initialized (Level: %s, Format: %T)", level.String(), log.Formatter)
	return log
}

type routerDeps struct {
	auth   *httpHandler.AuthHandler
	rooms  *httpHandler.RoomHandler
	ws     *wsHandler.WebSocketHandler
	health *httpHandler.HealthHandler
	verify middleware.TokenVerifier
}

func newRouter(cfg *Config, log *logrus.Logger, redisClient *redis.Client, deps routerDeps) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(middleware.Metrics())
	router.Use(CORSMiddleware(cfg.CORSAllowedOrigin))

	router.GET("/ping", deps.health.Ping)
	router.GET("/healthz", deps.health.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket 握手自行校验 token，不经过 Auth 中间件
	router.GET("/ws", deps.ws.HandleConnection)

	api := router.Group("/api")
	api.Use(middleware.RateLimit(redisClient, cfg.KeyPrefix, cfg.RateLimitMax, cfg.RateLimitWindow))
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", deps.auth.Register)
		authRoutes.POST("/login", deps.auth.Login)
	}
	roomRoutes := api.Group("/rooms").Use(middleware.Auth(deps.verify))
	{
		roomRoutes.GET("", deps.rooms.ListMyRooms)
	}
	return router
}

// Start 启动 Hub、Worker 和 HTTP 服务器
func (a *App) Start() {
	go a.Hub.Run()
	a.Log.Info("Hub routine started")

	go a.Worker.Start()
	a.Log.Info("Asynq worker server routine started")

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// Shutdown 优雅地关闭应用：先停止接收新连接，再关闭 Hub、Worker 和外部连接。
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	// 已升级的 WebSocket 连接不受 HttpServer.Shutdown 管理，由 Hub 关闭
	if a.Hub != nil {
		a.Hub.Stop()
	}
	if a.Worker != nil {
		a.Worker.Shutdown()
	}

	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.Log.Errorf("Error closing database connection: %v", err)
		}
	}

	a.Log.Info("Application shutdown complete.")
}

// LoggerMiddleware 创建一个 Gin 中间件用于记录请求日志。
// 不记录查询串，/ws?token= 中的 token 不进日志。
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		statusCode := c.Writer.Status()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  time.Since(startTime).Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
		})

		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			entry.Error(errorMessage)
			return
		}
		switch {
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}

// CORSMiddleware 为浏览器客户端设置跨域响应头
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
