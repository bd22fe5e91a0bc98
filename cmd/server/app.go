package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/greenleaf-study/greenleaf/internal/config"
	"github.com/greenleaf-study/greenleaf/internal/domain/srs"
	"github.com/greenleaf-study/greenleaf/internal/events"
	"github.com/greenleaf-study/greenleaf/internal/platform/postgres"
	"github.com/greenleaf-study/greenleaf/internal/scheduler"
	"github.com/greenleaf-study/greenleaf/internal/service"
	"github.com/greenleaf-study/greenleaf/internal/service/auth"
	"github.com/greenleaf-study/greenleaf/internal/service/card_review"
	"github.com/greenleaf-study/greenleaf/internal/store"
	"github.com/greenleaf-study/greenleaf/internal/task"
)

// application holds the shared dependencies so they can be wired once and
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore    store.UserStore
	deckStore    store.DeckStore
	cardStore    store.CardStore
	studyStore   store.StudyStore
	friendStore  store.FriendStore
	messageStore store.MessageStore

	jwtService        auth.JWTService
	userService       service.UserService
	deckService       service.DeckService
	cardService       service.CardService
	cardReviewService card_review.CardReviewService
	studyService      service.StudyService
	socialService     service.SocialService

	eventEmitter events.EventEmitter
	taskQueue    *task.TaskQueue
	workerPool   *task.WorkerPool
	scheduler    *scheduler.Scheduler
}

// newApplication wires stores, services and background jobs. It does not
// start anything.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	app.deckStore = postgres.NewPostgresDeckStore(db, logger)
	app.cardStore = postgres.NewPostgresCardStore(db, logger)
	app.studyStore = postgres.NewPostgresStudyStore(db, logger)
	app.friendStore = postgres.NewPostgresFriendStore(db, logger)
	app.messageStore = postgres.NewPostgresMessageStore(db, logger)

	app.taskQueue = task.NewTaskQueue(cfg.Worker.QueueSize, logger)
	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{
		WorkerCount: cfg.Worker.Count,
		TaskTimeout: time.Duration(cfg.Worker.TaskTimeoutSeconds) * time.Second,
	}, logger)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewAsyncEventHandler(app.taskQueue, events.NewActivityLogHandler(logger), logger))
	app.eventEmitter = emitter

	if err := app.initServices(); err != nil {
		return nil, err
	}

	if cfg.Scheduler.Enabled {
		app.scheduler, err = scheduler.New(app.studyService, cfg.Scheduler.StreakRefreshAt, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create scheduler: %w", err)
		}
	}

	logger.Info("application initialized")
	return app, nil
}

func (app *application) initServices() error {
	cfg, logger := app.config, app.logger
	var err error

	app.userService, err = service.NewUserService(
		app.userStore,
		auth.NewBcryptVerifier(),
		auth.NewTOTPService(cfg.Auth.TOTPIssuer),
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}

	app.deckService, err = service.NewDeckService(
		app.db, app.deckStore, app.cardStore, app.friendStore, app.eventEmitter, logger)
	if err != nil {
		return fmt.Errorf("failed to create deck service: %w", err)
	}

	app.cardService, err = service.NewCardService(app.deckStore, app.cardStore, logger)
	if err != nil {
		return fmt.Errorf("failed to create card service: %w", err)
	}

	app.cardReviewService, err = card_review.NewCardReviewService(
		app.db, app.cardStore, app.deckStore, srs.NewDefaultService(), app.eventEmitter, logger)
	if err != nil {
		return fmt.Errorf("failed to create card review service: %w", err)
	}

	app.studyService, err = service.NewStudyService(
		app.db,
		app.userStore,
		app.deckStore,
		app.studyStore,
		app.eventEmitter,
		cfg.Streak.DayBoundary == config.DayBoundaryUser,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create study service: %w", err)
	}

	app.socialService, err = service.NewSocialService(
		app.userStore, app.friendStore, app.messageStore, app.eventEmitter, logger)
	if err != nil {
		return fmt.Errorf("failed to create social service: %w", err)
	}

	return nil
}

// Run starts background jobs and serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if app.workerPool != nil {
		app.workerPool.Start()
	}
	if app.scheduler != nil {
		if err := app.scheduler.Start(); err != nil {
			app.cleanup()
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background jobs, drains queued tasks and closes the
// database.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.taskQueue != nil && app.workerPool != nil {
		app.taskQueue.Close()
		ctx, cancel := context.WithTimeout(context.Background(),
			time.Duration(app.config.Server.ShutdownTimeoutSeconds)*time.Second)
		if err := app.workerPool.Stop(ctx); err != nil {
			app.logger.Warn("background tasks did not finish before shutdown", slog.String("error", err.Error()))
		}
		cancel()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
