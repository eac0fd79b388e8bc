package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcppubsub "cloud.google.com/go/pubsub"
	"golang.org/x/sync/errgroup"

	"social-hub/domain/repository"
	"social-hub/infrastructure/cache"
	platformclient "social-hub/infrastructure/clients/platform"
	"social-hub/infrastructure/configuration"
	"social-hub/infrastructure/logger"
	"social-hub/infrastructure/persistence"
	"social-hub/infrastructure/pubsub"
	"social-hub/infrastructure/realtime"
	"social-hub/infrastructure/servicebus"
	"social-hub/infrastructure/vault"
	httpHandler "social-hub/interfaces/http"
	"social-hub/server"
	"social-hub/usecase"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	db, err := InitiateDatabase()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Database initialization failed")
		os.Exit(1)
	}
	if err := persistence.EnsureUserSchema(db); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed ensuring user schema")
	}
	if err := persistence.EnsureAccountSchema(db); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed ensuring account schema")
	}
	if err := persistence.EnsureSyncSchema(db); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed ensuring sync schema")
	}

	mongoDb, err := persistence.NewMongoDb(
		configuration.C.Database.Mongo.Host,
		configuration.C.Database.Mongo.Port,
		configuration.C.Database.Mongo.User,
		configuration.C.Database.Mongo.Password,
		configuration.C.Database.Mongo.Name,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - continuing without activity log")
		mongoDb = nil
	} else if err := mongoDb.Ping(ctx, nil); err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - continuing without activity log")
		mongoDb = nil
	}

	pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		pubSubClient = nil
	}
	azServiceBusClient, err := servicebus.NewServiceBus(configuration.C.ServiceBus.Namespace)
	if err != nil {
		azServiceBusClient = nil
	}
	redisClient, _ := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)

	credVault, err := vault.New(configuration.VaultKey())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Vault key invalid")
		os.Exit(1)
	}

	// Repository wiring: MSSQL in production, otherwise PostgreSQL. Core sync
	// repositories are PostgreSQL only.
	var userRepository repository.IUser
	if os.Getenv("ENV") == "production" || os.Getenv("DB_VENDOR") == "mssql" {
		userRepository = persistence.NewUserRepositoryMSSQL(db)
	} else {
		userRepository = persistence.NewUserRepository(db)
	}
	credentialRepository := persistence.NewCredentialRepository(db)
	accountRepository := persistence.NewSocialAccountRepository(db)
	analyticsRepository := persistence.NewAnalyticsRepository(db)
	commentRepository := persistence.NewCommentRepository(db)
	catalogRepository := persistence.NewCatalogRepository(db)
	activityRepository := persistence.NewActivityRepository(mongoDb)

	syncLock := cache.NewSyncLock(redisClient)
	platformClient := platformclient.NewClient()
	syncHub := realtime.NewSyncHub()
	eventPublisher := pubsub.NewSyncEventPublisher(pubSubClient)
	eventBus := servicebus.NewSyncEventBus(azServiceBusClient, configuration.C.ServiceBus.Queue)

	userUsecase := usecase.NewUserUsecase(userRepository, app.SecretKey)
	oauthUsecase := usecase.NewOAuthUsecase(
		credentialRepository,
		accountRepository,
		activityRepository,
		platformClient,
		credVault,
		app.BaseURL,
		time.Duration(configuration.C.OAuth.StateTTLMinutes)*time.Minute,
	)
	syncUsecase := usecase.NewSyncUsecase(
		accountRepository,
		analyticsRepository,
		commentRepository,
		catalogRepository,
		activityRepository,
		syncLock,
		platformClient,
		credVault,
		eventPublisher,
		eventBus,
		syncHub,
		configuration.C.Pubsub.Topic,
		configuration.C.Sync.Parallelism,
		time.Duration(configuration.C.Sync.DeadlineSeconds)*time.Second,
	)
	undoLedger := usecase.NewUndoLedger(time.Duration(configuration.C.Undo.TTLMs) * time.Millisecond)
	defer undoLedger.Stop()

	userHandler := httpHandler.NewUserHandler(userUsecase)
	accountHandler := httpHandler.NewAccountHandler(oauthUsecase, undoLedger)
	syncHandler := httpHandler.NewSyncHandler(syncUsecase)
	undoHandler := httpHandler.NewUndoHandler(undoLedger)
	healthHandler := httpHandler.NewHealthHandler(db)

	router := server.InitiateRouter(
		userHandler,
		accountHandler,
		syncHandler,
		undoHandler,
		healthHandler,
		userRepository,
		syncHub,
	)

	// Relay sync events published by other replicas into this instance's SSE
	// hub, so subscribers see progress regardless of which replica ran the sync.
	if pubSubClient != nil && configuration.C.Pubsub.Subscription != "" {
		g.Go(func() error {
			sub, err := eventPublisher.GetSubscription(configuration.C.Pubsub.Subscription)
			if err != nil {
				logger.GetLogger().WithField("error", err).Warn("PubSub subscription unavailable")
				return nil
			}
			return sub.Receive(ctx, func(_ context.Context, msg *gcppubsub.Message) {
				var evt realtime.SyncStatusEvent
				if err := json.Unmarshal(msg.Data, &evt); err == nil {
					syncHub.BroadcastSyncStatus(evt)
				}
				msg.Ack()
			})
		})
	}
	if azServiceBusClient != nil && configuration.C.ServiceBus.Consume {
		g.Go(func() error {
			for {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				bodies, err := eventBus.GetMessage(ctx, 10)
				if err != nil {
					logger.GetLogger().WithField("error", err).Warn("Service Bus receive failed")
					time.Sleep(5 * time.Second)
					continue
				}
				for _, body := range bodies {
					var evt realtime.SyncStatusEvent
					if err := json.Unmarshal(body, &evt); err == nil {
						syncHub.BroadcastSyncStatus(evt)
					}
				}
			}
		})
	}

	// Scheduled analytics sync for the configured workspaces
	if len(configuration.C.Sync.Workspaces) > 0 {
		interval := time.Duration(configuration.C.Sync.IntervalSeconds) * time.Second
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					for _, workspaceID := range configuration.C.Sync.Workspaces {
						results, err := syncUsecase.SyncWorkspaceAnalytics(ctx, workspaceID, 7)
						if err != nil {
							logger.GetLogger().
								WithField("workspaceId", workspaceID).
								WithField("error", err).
								Warn("Scheduled analytics sync failed")
							continue
						}
						logger.GetLogger().
							WithField("workspaceId", workspaceID).
							WithField("accounts", len(results)).
							Info("Scheduled analytics sync completed")
					}
				}
			}
		})
	}

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

func InitiateDatabase() (*sql.DB, error) {
	env := os.Getenv("ENV")
	if v := os.Getenv("DB_VENDOR"); v == "mssql" {
		return persistence.NewMSSQLDB()
	}
	if env == "production" || env == "prod" {
		return persistence.NewMSSQLDB()
	}
	return persistence.NewPostgreSQLDB()
}
