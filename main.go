package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"quiz-app/internal/auth"
	"quiz-app/internal/config"
	"quiz-app/internal/dao"
	"quiz-app/internal/db"
	"quiz-app/internal/event"
	"quiz-app/internal/handlers"
	"quiz-app/internal/interactor"
	"quiz-app/internal/logger"
	"quiz-app/internal/notify"
	"quiz-app/internal/repository"
	"quiz-app/internal/service"
	"quiz-app/pkg/discovery"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const inboxLimit = 20

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system env")
	}

	cfg := config.Load()
	log := logger.New(cfg.Server.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, database, err := db.ConnectMongo(&cfg.MongoDB)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.WithError(err).Warn("Failed to ensure MongoDB indexes")
	}

	redisClient := db.ConnectRedis(&cfg.Redis)

	minioClient, err := db.ConnectMinIO(ctx, &cfg.MinIO)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MinIO")
	}

	sessions := dao.NewSessionStore(redisClient, cfg.Auth.SessionTTL)
	authRepo := repository.NewUserAuthRepository(dao.NewMongoUserAuthDAO(database, sessions))
	userRepo := repository.NewUserDetailsRepository(
		dao.NewMongoUserDetailsDAO(database),
		dao.NewRedisLocalUserDetailsDAO(redisClient, cfg.Redis.UserDetailsTTL),
	)

	publisher, err := event.NewPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.WithError(err).Warn("Failed to initialize event publisher, events will not be published")
		publisher = event.NopPublisher{}
	}

	dispatcher := interactor.NewDispatcher(cfg.Quiz.Workers)
	uc := service.New(service.Deps{
		Auth:       authRepo,
		Users:      userRepo,
		Tests:      repository.NewTestRepository(dao.NewMongoTestDAO(database)),
		Results:    repository.NewTestResultRepository(dao.NewMongoTestResultDAO(database), userRepo),
		Images:     repository.NewImageRepository(dao.NewMinioImageDAO(minioClient, cfg.MinIO.Bucket, cfg.MinIO.LinkExpiry)),
		Events:     publisher,
		Dispatcher: dispatcher,
		Timeout:    cfg.Quiz.InteractorTimeout,
		PageSize:   cfg.Quiz.PageSize,
	})

	var consumer *event.Consumer
	if cfg.RabbitMQ.URI != "" {
		consumer, err = event.NewConsumer(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.QueueName,
			func(ctx context.Context, imageID string) error {
				if _, err := uc.PurgeImage.Run(ctx, imageID); err != nil {
					return err
				}
				return nil
			})
		if err != nil {
			log.WithError(err).Warn("Failed to initialize event consumer")
			consumer = nil
		} else if err := consumer.Start(); err != nil {
			log.WithError(err).Warn("Failed to start event consumer")
		} else {
			log.Info("Successfully started event consumer")
		}
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		log.Warn("JWT_SECRET is not set, tokens will not survive a restart")
		secret = uuid.NewString() + uuid.NewString()
	}
	tokens := auth.NewTokenManager(secret, cfg.Auth.SessionTTL)

	testFeeds := handlers.NewTestFeeds(uc, cfg.Quiz.FeedIdleTimeout)
	resultFeeds := handlers.NewResultFeeds(uc, cfg.Quiz.FeedIdleTimeout)
	go testFeeds.Run(ctx)
	go resultFeeds.Run(ctx)

	h := handlers.NewHandler(uc, notify.NewInbox(inboxLimit), tokens, testFeeds, resultFeeds, handlers.Options{
		MaxPageSize: cfg.Quiz.MaxPageSize,
	})

	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.Server.ServiceName})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.RegisterRoutes(r, auth.NewMiddleware(tokens, authRepo))

	var registry *discovery.ServiceRegistry
	if cfg.Consul.Enabled {
		registry, err = discovery.NewServiceRegistry(cfg.Consul, cfg.Server)
		if err != nil {
			log.WithError(err).Warn("Failed to create service registry")
		} else if err := registry.Register(); err != nil {
			log.WithError(err).Warn("Failed to register with Consul")
			registry = nil
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("Starting quiz app")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			log.WithError(err).Error("Failed to deregister from Consul")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.WithError(err).Error("Error closing event consumer")
		}
	}
	dispatcher.Wait()
	publisher.Close()

	if err := redisClient.Close(); err != nil {
		log.WithError(err).Error("Error closing Redis client")
	}
	db.DisconnectMongo(mongoClient)

	log.Info("Server exited")
}
