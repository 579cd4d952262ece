package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"alertaya/internal/cache"
	"alertaya/internal/config"
	"alertaya/internal/database"
	"alertaya/internal/handler"
	"alertaya/internal/queue"
	"alertaya/internal/redis"
	"alertaya/internal/repository"
	"alertaya/internal/service"
	"alertaya/internal/worker"
)

// userNameResolver adapts the user repository to the worker's NameProvider.
type userNameResolver struct {
	users repository.UserRepository
}

func (r *userNameResolver) GetUserName(ctx context.Context, userID int64) (string, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Connect to Redis
	rdb, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	// 4. Repositories
	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)
	entityRepo := repository.NewEntityRepository(db)
	neighborhoodRepo := repository.NewNeighborhoodRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	tokenRepo := repository.NewDeviceTokenRepository(db)
	pkgRepo := repository.NewMediaPackageRepository(db)

	// 5. Queue + cache
	publisher := queue.NewPublisher(rdb.Client)
	consumer := queue.NewConsumer(rdb.Client)
	recipientCache := cache.NewRecipientCache(rdb.Client)

	// 6. Services
	mailer := service.NewSendgridMailer(cfg.SendgridAPIKey, cfg.MailFrom)
	authService := service.NewAuthService(userRepo, mailer, cfg)
	userService := service.NewUserService(userRepo, tokenRepo, cfg)
	alertService := service.NewAlertService(alertRepo, publisher)
	contactService := service.NewContactService(contactRepo, userRepo, publisher)
	entityService := service.NewEntityService(entityRepo, userRepo, publisher)
	mediaService, err := service.NewMediaService(ctx, cfg, pkgRepo)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	fcmClient, err := service.NewFCMClient(ctx, cfg.FirebaseProjectID, cfg.FirebaseClientEmail, cfg.FirebasePrivateKey)
	if err != nil {
		return fmt.Errorf("failed to create fcm client: %w", err)
	}

	// 7. Alert fan-out workers
	eventHandler := worker.NewHandler(recipientCache, contactRepo, entityRepo, tokenRepo, fcmClient)
	eventHandler.SetNameProvider(&userNameResolver{users: userRepo})
	manager := worker.NewManager(consumer, eventHandler, worker.DefaultManagerConfig())
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker manager: %w", err)
	}

	// 8. HTTP server
	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(authService),
		UserHandler:         handler.NewUserHandler(userService),
		PanicHandler:        handler.NewPanicHandler(alertService),
		ContactHandler:      handler.NewContactHandler(contactService),
		EntityHandler:       handler.NewEntityHandler(entityService),
		NeighborhoodHandler: handler.NewNeighborhoodHandler(neighborhoodRepo),
		MediaHandler:        handler.NewMediaHandler(mediaService),
		JWTSecret:           cfg.JWTSecret,
	})

	srv := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on :%s", cfg.ServerPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		manager.Stop()
		return err
	case <-ctx.Done():
	}

	log.Println("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] Shutdown error: %v", err)
	}
	manager.Stop()

	return nil
}
