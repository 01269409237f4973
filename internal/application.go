package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/clipgames-backend/internal/config"
	"github.com/rocketscienceinc/clipgames-backend/internal/repository"
	"github.com/rocketscienceinc/clipgames-backend/internal/repository/storage"
	"github.com/rocketscienceinc/clipgames-backend/internal/usecase"
	"github.com/rocketscienceinc/clipgames-backend/transport/rest"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	sessionRepo, closeRepo, err := newSessionRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	directory := usecase.NewSessionDirectory(logger, sessionRepo,
		usecase.WithWinningScore(conf.RPS.WinningScore),
	)

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage)
	if err = rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, directory, conf.PublicURL)); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func newSessionRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.SessionRepository, func(), error) {
	if conf.Storage != config.StorageRedis {
		return repository.NewMemorySessionRepository(), func() {}, nil
	}

	redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeFn := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewRedisSessionRepository(redisStorage), closeFn, nil
}
