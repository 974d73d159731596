package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/yourusername/examprep-api/internal/config"
	"github.com/yourusername/examprep-api/internal/domain/entity"
	"github.com/yourusername/examprep-api/internal/domain/repository"
	"github.com/yourusername/examprep-api/internal/handler"
	"github.com/yourusername/examprep-api/internal/middleware"
	"github.com/yourusername/examprep-api/internal/questionbank"
	pgRepo "github.com/yourusername/examprep-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/examprep-api/internal/repository/redis"
	"github.com/yourusername/examprep-api/internal/service"
	"github.com/yourusername/examprep-api/internal/service/studysession"
	ws "github.com/yourusername/examprep-api/internal/websocket"
	"github.com/yourusername/examprep-api/pkg/auth"
	"github.com/yourusername/examprep-api/pkg/database"
)

func main() {
	// .env не обязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	isProduction := gin.Mode() == gin.ReleaseMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- PostgreSQL: банк вопросов, журнал ответов, история сессий ---
	var (
		questionRepo repository.QuestionRepository
		progressRepo repository.ProgressRepository
		sessionRepo  repository.StudySessionRepository
	)
	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), !isProduction)
		if err != nil {
			log.Printf("Failed to connect to database: %v", err)
			os.Exit(1)
		}
		if err := database.MigrateDB(db, database.DefaultMigrationsPath); err != nil {
			log.Printf("Failed to migrate database: %v", err)
			os.Exit(1)
		}
		questionRepo = pgRepo.NewQuestionRepo(db)
		progressRepo = pgRepo.NewProgressRepo(db)
		sessionRepo = pgRepo.NewStudySessionRepo(db)
	} else {
		log.Println("Database disabled: questions come from static documents, answers are not persisted")
	}

	// --- Redis: кеш дашборда и rate limiting ---
	var (
		redisClient redis.UniversalClient
		cacheRepo   repository.CacheRepository
	)
	if len(cfg.Redis.Addrs) > 0 || cfg.Redis.Addr != "" {
		redisClient, err = database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			// Redis не обязателен: работаем без кеша
			log.Printf("Warning: Redis unavailable, continuing without cache: %v", err)
			redisClient = nil
		} else {
			log.Println("Successfully connected to Redis")
			repo, err := redisRepo.NewCacheRepo(redisClient)
			if err != nil {
				log.Printf("Failed to initialize CacheRepo: %v", err)
				os.Exit(1)
			}
			cacheRepo = repo
		}
	}

	// --- Банк вопросов ---
	var remote questionbank.Source
	if cfg.Questions.RemoteEnabled && questionRepo != nil {
		remote = questionbank.NewRemoteSource(questionRepo)
	}
	var docs []questionbank.StaticDocument
	if cfg.Questions.UseBundled {
		bundled, err := questionbank.BundledDocuments()
		if err != nil {
			log.Printf("Failed to read bundled questions: %v", err)
			os.Exit(1)
		}
		docs = append(docs, bundled...)
	}
	if len(cfg.Questions.StaticFiles) > 0 {
		files, err := questionbank.ReadDocuments(cfg.Questions.StaticFiles...)
		if err != nil {
			log.Printf("Failed to read static question files: %v", err)
			os.Exit(1)
		}
		docs = append(docs, files...)
	}
	store := questionbank.NewStore(remote, questionbank.NewStaticSource(docs...))

	loadCtx, loadCancel := context.WithTimeout(ctx, cfg.Questions.LoadTimeout)
	loaded := store.Load(loadCtx)
	loadCancel()
	log.Printf("Question bank loaded: %d questions from %s", loaded.Count, loaded.Source)

	// --- WebSocket ---
	wsHub := ws.NewHub(time.Minute, cfg.Study.SessionTTL)
	go wsHub.Run()
	wsManager := ws.NewManager(wsHub)

	// --- Сервисы ---
	progressService := service.NewProgressService(progressRepo, cacheRepo, store, service.ProgressConfig{
		CacheTTL:            cfg.Progress.CacheTTL,
		WeakThreshold:       cfg.Progress.WeakThreshold,
		StrongThreshold:     cfg.Progress.StrongThreshold,
		MinAttempts:         cfg.Progress.MinAttempts,
		ReadinessMinAnswers: cfg.Progress.ReadinessMinAnswer,
		RecentLimit:         cfg.Progress.RecentLimit,
	})

	var relay *studysession.Relay
	if progressRepo != nil {
		relay = studysession.NewRelay(progressRepo,
			studysession.WithTimeout(cfg.Study.WriteTimeout),
			studysession.WithSuccessHandler(func(record entity.UserProgress) {
				progressService.OnProgressSaved(record)
			}),
		)
	}

	studyService := service.NewStudyService(store, relay, sessionRepo, wsManager, service.StudyConfig{
		SessionTTL:      cfg.Study.SessionTTL,
		CleanupInterval: cfg.Study.CleanupInterval,
		MaxSessions:     cfg.Study.MaxSessions,
		WriteTimeout:    cfg.Study.WriteTimeout,
	})
	go studyService.RunCleanup(ctx)

	questionService := service.NewQuestionService(store, progressService)

	// --- Аутентификация ---
	verifier, err := auth.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Leeway)
	if err != nil {
		log.Printf("Failed to initialize token verifier: %v", err)
		os.Exit(1)
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier, cfg.JWT.AdminRole)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// --- Обработчики ---
	questionHandler := handler.NewQuestionHandler(questionService)
	studyHandler := handler.NewStudyHandler(studyService)
	progressHandler := handler.NewProgressHandler(progressService)
	wsHandler := handler.NewWSHandler(studyService, wsManager, cfg.CORS.AllowedOrigins)

	router := gin.Default()

	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"questions":       store.Len(),
			"question_source": store.Source(),
			"active_sessions": studyService.ActiveCount(),
		})
	})

	api := router.Group("/api")
	{
		api.GET("/ws/health", gin.WrapF(ws.HealthHandler(wsHub)))

		questions := api.Group("/questions")
		{
			questions.GET("", questionHandler.ListQuestions)
			questions.GET("/stats", questionHandler.GetQuestionStats)
			questions.GET("/:id", questionHandler.GetQuestion)
		}

		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.POST("/questions/reload", questionHandler.ReloadQuestions)
			admin.GET("/ws/metrics", gin.WrapF(ws.MetricsHandler(wsHub)))
		}

		// Сессии доступны и анонимно, тогда ответы не сохраняются
		study := api.Group("/study/sessions")
		study.Use(authMiddleware.OptionalAuth())
		{
			study.POST("", studyHandler.StartSession)

			withID := study.Group("/:id")
			withID.Use(middleware.SessionParam("id"))
			{
				withID.GET("", studyHandler.GetSession)
				withID.PUT("/filters", studyHandler.UpdateFilters)
				withID.DELETE("/filters", studyHandler.ResetFilters)
				withID.POST("/next", studyHandler.Next)
				withID.POST("/previous", studyHandler.Previous)
				withID.POST("/jump", studyHandler.Jump)
				withID.POST("/answer",
					rateLimiter.Limit(middleware.AnswerRateLimitConfig(cfg.RateLimit.AnswerMaxRequests, cfg.RateLimit.AnswerWindow)),
					studyHandler.SubmitAnswer)
				withID.DELETE("", studyHandler.EndSession)
			}
		}

		// Без базы журнала ответов нет, аналитика недоступна
		if progressRepo != nil {
			progress := api.Group("/progress")
			progress.Use(authMiddleware.RequireAuth())
			{
				progress.GET("/dashboard", progressHandler.GetDashboard)
				progress.GET("/export", progressHandler.ExportProgress)
			}
		}

		api.GET("/ws/study/:id",
			authMiddleware.OptionalAuth(),
			middleware.SessionParam("id"),
			wsHandler.HandleConnection)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Дожидаемся начатых записей в журнал, затем закрываем соединения WebSocket
	relay.Wait()
	wsHub.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}

	log.Println("Server exited properly")
}
