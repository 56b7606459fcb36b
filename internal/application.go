package application

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/config"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/repository"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/session"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/transport/tcp"
)

// RunApp - listens, waits for two players and plays a single game.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return Run(ctx, logger, conf)
}

// Run is RunApp with a caller supplied context.
func Run(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	var gameRepo repository.GameRepository
	if conf.Redis.Enabled {
		redisClient, err := storage.New(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisClient.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		gameRepo = repository.NewGameRepository(redisClient, conf.Redis.TTL)
		log.Info("game snapshots enabled", "redis", conf.Redis.GetRedisAddr())
	}

	srv, err := tcp.Listen(logger, conf.Server.GetAddr(),
		session.WithMoveTimeout(conf.Server.MoveTimeout),
		session.WithWriteTimeout(conf.Server.WriteTimeout),
	)
	if err != nil {
		return err
	}

	defer func() {
		if err = srv.Close(); err != nil {
			log.Error("could not close listener", "error", err)
		}
	}()

	log.Info("Server listening", "addr", srv.Addr().String())

	players, err := srv.AcceptPlayers(ctx)
	if err != nil {
		return fmt.Errorf("could not accept players: %w", err)
	}

	// single session server: nothing else is accepted
	if err = srv.Close(); err != nil {
		log.Error("could not close listener", "error", err)
	}

	log.Info("Both players connected, starting game")

	gameSession := session.New(logger, players, gameRepo)
	if _, err = gameSession.Run(ctx); err != nil {
		return fmt.Errorf("game session %s failed: %w", gameSession.ID, err)
	}

	log.Info("Game session ended", "session_id", gameSession.ID)

	return nil
}
