package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/eduplay-api/internal/config"
	"github.com/yourusername/eduplay-api/internal/handler"
	"github.com/yourusername/eduplay-api/internal/middleware"
	pgRepo "github.com/yourusername/eduplay-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/eduplay-api/internal/repository/redis"
	"github.com/yourusername/eduplay-api/internal/service"
	ws "github.com/yourusername/eduplay-api/internal/websocket"
	"github.com/yourusername/eduplay-api/pkg/database"
	"github.com/yourusername/eduplay-api/pkg/logger"
	"github.com/yourusername/eduplay-api/pkg/monitoring"
	"github.com/yourusername/eduplay-api/pkg/storage"
)

func main() {
	// Консольный логгер до чтения конфигурации
	logger.Init(logger.Options{Level: "info", Console: true})

	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	logger.Log.Info("Загрузка конфигурации", zap.String("path", configPath))

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Log.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Console:    true,
	})
	defer logger.Sync()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), !isProduction)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	logger.Log.Info("Successfully connected to Redis")

	// Хранилище вложений
	mediaStorage, err := storage.New(&cfg.Storage)
	if err != nil {
		logger.Log.Fatal("Failed to initialize storage", zap.Error(err))
	}
	if minioStorage, ok := mediaStorage.(*storage.MinioProvider); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := minioStorage.EnsureBucket(ctx)
		cancel()
		if err != nil {
			logger.Log.Fatal("Failed to prepare storage bucket", zap.Error(err))
		}
	}

	monitoring.Init()

	// Инициализируем репозитории
	gameRepo := pgRepo.NewGameRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	profileRepo := pgRepo.NewProfileRepo(db)
	playResultRepo := pgRepo.NewPlayResultRepo(db)

	sessionRepo, err := redisRepo.NewSessionRepo(redisClient)
	if err != nil {
		logger.Log.Fatal("Failed to initialize SessionRepo", zap.Error(err))
	}

	// Инициализируем сервисы
	emailSender := service.NewEmailSender(cfg.Email.ResendAPIKey, cfg.Email.From)
	gameService := service.NewGameService(gameRepo, questionRepo, cfg.Game.MaxQuestions)
	playService := service.NewPlayService(gameRepo, playResultRepo, sessionRepo, cfg.Session.TTL)
	shareService := service.NewShareService(gameRepo, emailSender, cfg.Share.BaseURL, cfg.Share.QRBase)
	profileService := service.NewProfileService(profileRepo, gameRepo, playResultRepo)
	mediaService := service.NewMediaService(questionRepo, mediaStorage, cfg.Storage.MaxUploadBytes)

	// Инициализируем обработчики
	clientCfg := ws.DefaultClientConfig()
	clientCfg.MessagesPerSecond = cfg.Session.MessagesPerSecond
	clientCfg.MessageBurst = cfg.Session.MessageBurst

	gameHandler := handler.NewGameHandler(gameService, mediaService)
	playHandler := handler.NewPlayHandler(playService)
	wsHandler := handler.NewWSHandler(playService, cfg.Server.AllowedOrigins, clientCfg)
	shareHandler := handler.NewShareHandler(shareService)
	profileHandler := handler.NewProfileHandler(profileService)
	mediaHandler := handler.NewMediaHandler(mediaService)

	rateLimiter := middleware.NewRateLimiter(redisClient)
	strictLimit := func(c *gin.Context) { c.Next() }
	apiLimit := func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		strictLimit = rateLimiter.Limit(middleware.StrictRateLimitConfig())
		apiLimit = rateLimiter.LimitByIP(middleware.APIRateLimitConfig(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window))
	}

	// Инициализируем роутер Gin
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery(), monitoring.MetricsMiddleware())

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	// В production не доверяем прокси-заголовкам, в development доверяем localhost
	trustedProxies := []string{"127.0.0.1", "::1"}
	if isProduction {
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		logger.Log.Warn("Failed to set trusted proxies", zap.Error(err))
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Локальные вложения раздаются самим сервером
	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		health := database.CheckHealth(ctx, db, redisClient)
		if !health.Healthy() {
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		c.JSON(http.StatusOK, health)
	})

	// Настраиваем маршруты API
	api := router.Group("/api", apiLimit)
	{
		// Каталог и конструктор игр
		games := api.Group("/games")
		{
			games.GET("", gameHandler.ListCatalog)
			games.POST("", gameHandler.CreateGame)

			gameWithID := games.Group("/:id")
			gameWithID.Use(middleware.ExtractUintParam("id", "gameID"))
			{
				gameWithID.GET("", gameHandler.GetGame)
				gameWithID.PUT("", gameHandler.UpdateGame)
				gameWithID.DELETE("", gameHandler.DeleteGame)
				gameWithID.POST("/questions", gameHandler.AddQuestion)
				gameWithID.POST("/publish", gameHandler.PublishGame)
				gameWithID.POST("/unpublish", gameHandler.UnpublishGame)
				gameWithID.POST("/duplicate", gameHandler.DuplicateGame)
				gameWithID.GET("/export", gameHandler.ExportGame)
				gameWithID.GET("/results", playHandler.GetGameResults)
				gameWithID.GET("/share", shareHandler.GetLinks)
				gameWithID.POST("/share/email", strictLimit, shareHandler.SendEmail)
			}
		}

		// Вопросы и вложения
		questions := api.Group("/questions/:qid")
		questions.Use(middleware.ExtractUintParam("qid", "questionID"))
		{
			questions.PUT("", gameHandler.UpdateQuestion)
			questions.DELETE("", gameHandler.DeleteQuestion)
			questions.POST("/media/:kind", strictLimit, mediaHandler.UploadMedia)
			questions.DELETE("/media/:kind", mediaHandler.DeleteMedia)
		}

		// Прохождения
		sessions := api.Group("/sessions")
		{
			sessions.POST("", playHandler.StartSession)

			sessionWithID := sessions.Group("/:sid")
			sessionWithID.Use(middleware.ExtractSessionID("sid", "sessionID"))
			{
				sessionWithID.GET("", playHandler.GetSession)
				sessionWithID.POST("/select", playHandler.SelectAnswer)
				sessionWithID.POST("/advance", playHandler.Advance)
				sessionWithID.POST("/back", playHandler.GoBack)
				sessionWithID.POST("/restart", playHandler.Restart)
				sessionWithID.DELETE("", playHandler.CloseSession)
			}
		}

		// Профили авторов
		profiles := api.Group("/profiles")
		{
			profiles.POST("", profileHandler.CreateProfile)

			profileWithID := profiles.Group("/:pid")
			profileWithID.Use(middleware.ExtractUintParam("pid", "profileID"))
			{
				profileWithID.GET("", profileHandler.GetProfile)
				profileWithID.PUT("", profileHandler.UpdateProfile)
				profileWithID.GET("/games", profileHandler.GetProfileGames)
				profileWithID.GET("/stats", profileHandler.GetProfileStats)
			}
		}
	}

	// WebSocket маршрут прохождения
	router.GET("/ws/sessions/:sid", middleware.ExtractSessionID("sid", "sessionID"), wsHandler.HandleConnection)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		logger.Log.Warn("Error closing Redis client", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exited properly")
}
