package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/reversi-backend/internal/agent"
	"github.com/rocketscienceinc/reversi-backend/internal/config"
	"github.com/rocketscienceinc/reversi-backend/internal/engine"
	"github.com/rocketscienceinc/reversi-backend/internal/repository"
	"github.com/rocketscienceinc/reversi-backend/internal/repository/storage"
	"github.com/rocketscienceinc/reversi-backend/internal/usecase"
	"github.com/rocketscienceinc/reversi-backend/transport/rest"
	"github.com/rocketscienceinc/reversi-backend/transport/terminal"
	"github.com/rocketscienceinc/reversi-backend/transport/websocket"
)

var (
	ErrAddrNotFound = errors.New("redis address string is empty")
	ErrUnknownMode  = errors.New("unknown mode")
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

	redisStorage, err := connectRedis(ctx, conf)
	if err != nil {
		return err
	}

	if redisStorage != nil {
		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()
	}

	first, second, err := buildContenders(conf)
	if err != nil {
		return err
	}

	log.Info("Starting", "mode", conf.Mode, "first", first.Kind, "second", second.Kind)

	switch conf.Mode {
	case config.ModeBatch:
		return runBatch(ctx, logger, conf, first, second, redisStorage)
	case config.ModeServer:
		return runServer(ctx, logger, conf, first, second, redisStorage)
	case config.ModeTerminal:
		return runTerminal(ctx, logger, first, second, redisStorage)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, conf.Mode)
	}
}

func connectRedis(ctx context.Context, conf *config.Config) (*redis.Client, error) {
	if !conf.Redis.Enabled {
		return nil, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return redisStorage, nil
}

func buildContenders(conf *config.Config) (usecase.Contender, usecase.Contender, error) {
	seed := conf.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint: gosec // it's ok

	build := func(kind string) (usecase.Contender, error) {
		built, err := agent.New(kind, agent.Options{
			PollInterval: conf.HumanPollInterval,
			// each agent gets its own source, math/rand sources are not safe for concurrent use
			Rand: rand.New(rand.NewSource(rng.Int63())), //nolint: gosec // it's ok
			Neural: agent.NeuralConfig{
				HiddenLayers: conf.Network.HiddenLayers,
				Record:       conf.Network.Record,
				LearningRate: conf.Network.LearningRate,
				Epochs:       conf.Network.Epochs,
				WeightsFile:  conf.Network.WeightsFile,
			},
		})
		if err != nil {
			return usecase.Contender{}, fmt.Errorf("could not build agent: %w", err)
		}

		return usecase.Contender{Kind: kind, Agent: built}, nil
	}

	first, err := build(conf.FirstAgent)
	if err != nil {
		return usecase.Contender{}, usecase.Contender{}, err
	}

	second, err := build(conf.SecondAgent)
	if err != nil {
		return usecase.Contender{}, usecase.Contender{}, err
	}

	return first, second, nil
}

func runBatch(ctx context.Context, logger *slog.Logger, conf *config.Config, first, second usecase.Contender, redisStorage *redis.Client) error {
	var resultRepo repository.ResultRepository
	if redisStorage != nil {
		resultRepo = repository.NewResultRepository(redisStorage)
	}

	tally, err := usecase.NewMatchRunner(logger, first, second, resultRepo).Play(ctx, conf.Games)

	fmt.Printf("first wins: %d, second wins: %d, draws: %d\n", tally.FirstWins, tally.SecondWins, tally.Draws)

	if conf.Network.Record && conf.Network.WeightsFile != "" {
		saveNetworks(logger, conf.Network.WeightsFile, first, second)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("match failed: %w", err)
	}

	return nil
}

// saveNetworks keeps what the learning agents trained on. Only the first one is kept when both learn.
func saveNetworks(logger *slog.Logger, path string, contenders ...usecase.Contender) {
	log := logger.With("component", "app")

	for _, contender := range contenders {
		neural, ok := contender.Agent.(*agent.Neural)
		if !ok {
			continue
		}

		if err := neural.Save(path); err != nil {
			log.Error("could not save network", "path", path, "error", err)
			return
		}

		log.Info("Network saved", "path", path)
		return
	}
}

func runServer(ctx context.Context, logger *slog.Logger, conf *config.Config, first, second usecase.Contender, redisStorage *redis.Client) error {
	log := logger.With("component", "app")

	game := newGame(ctx, logger, first, second, redisStorage)
	if err := game.Start(ctx); err != nil {
		return fmt.Errorf("could not start game: %w", err)
	}
	defer game.Stop()

	stream := websocket.New(logger, game, 0)
	router := rest.NewRouter(logger, game, stream)

	log.Info("Starting HTTP server", "port", conf.HTTPPort)
	if err := rest.Start(ctx, conf.HTTPPort, router); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func runTerminal(ctx context.Context, logger *slog.Logger, first, second usecase.Contender, redisStorage *redis.Client) error {
	game := newGame(ctx, logger, first, second, redisStorage)
	if err := game.Start(ctx); err != nil {
		return fmt.Errorf("could not start game: %w", err)
	}
	defer game.Stop()

	renderer := terminal.NewRenderer(os.Stdout, true)
	term := terminal.New(logger, game, os.Stdin, renderer, 0)

	fmt.Println("type <row> <col> to play, restart or quit")

	return term.Run(ctx)
}

// newGame builds the interactive game. Learning agents settle after every game, and
// finished games are stored when Redis is enabled.
func newGame(ctx context.Context, logger *slog.Logger, first, second usecase.Contender, redisStorage *redis.Client) *engine.Game {
	log := logger.With("component", "results")

	var resultRepo repository.ResultRepository
	if redisStorage != nil {
		resultRepo = repository.NewResultRepository(redisStorage)
	}

	return engine.NewGame(logger, first.Agent, second.Agent, engine.WithOnFinish(func(snapshot engine.Snapshot) {
		usecase.Settle(log, snapshot.Board, first, second)

		if resultRepo == nil {
			return
		}

		result := usecase.NewMatchResult(snapshot, first.Kind, second.Kind)
		if err := resultRepo.Save(ctx, result); err != nil {
			log.Error("could not save result", "game", snapshot.ID, "error", err)
		}
	}))
}
