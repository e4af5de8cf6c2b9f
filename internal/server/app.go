// Package server initializes and runs the application: configuration,
// logging, the repository manager with its migrations, the domain services,
// the HTTP server and the background reminder dispatcher, with graceful
// shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/healthboard/healthboard/internal/logging"
	"github.com/healthboard/healthboard/internal/server/config"
	"github.com/healthboard/healthboard/internal/server/fitness"
	"github.com/healthboard/healthboard/internal/server/healthlogs"
	"github.com/healthboard/healthboard/internal/server/httpapi"
	"github.com/healthboard/healthboard/internal/server/reminders"
	"github.com/healthboard/healthboard/internal/server/repomanager"
	"github.com/healthboard/healthboard/internal/server/users"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	manager    repomanager.RepositoryManager
	httpServer *httpapi.Server
	dispatcher *reminders.Dispatcher
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	manager, err := repomanager.NewPostgresRepositoryManager(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	us := users.NewService(manager.Users(), cfg)
	ls := healthlogs.NewService(manager.HealthLogs())
	rs := reminders.NewService(manager.Reminders())
	fs := fitness.NewService(cfg.FitnessClientID)

	httpServer := httpapi.NewServer(cfg.EndpointAddr, logger, cfg.SecretKey, us, ls, rs, fs)

	// the dispatcher is the only component handed the privileged store
	dispatcher := reminders.NewDispatcher(
		manager.SystemReminders(),
		&reminders.LogNotifier{Log: logger},
		cfg.ReminderPollInterval,
		logger,
	)

	return &App{
		config:     cfg,
		logger:     logger,
		manager:    manager,
		httpServer: httpServer,
		dispatcher: dispatcher,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server error", "error", err)
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.dispatcher.Run(ctx)
	}()

	wg.Wait()

	app.manager.Close()
	app.logger.Info(ctx, "App stopped")
}
