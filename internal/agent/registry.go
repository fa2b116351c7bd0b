package agent

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
)

const (
	KindHuman   = "human"
	KindRandom  = "random"
	KindTactics = "tactics"
	KindNeural  = "nnet"
)

type Options struct {
	PollInterval time.Duration
	Rand         *rand.Rand
	Neural       NeuralConfig
}

// New builds the agent registered under kind.
func New(kind string, opts Options) (Agent, error) {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // it's ok
	}

	switch kind {
	case KindHuman:
		return NewHuman(opts.PollInterval), nil
	case KindRandom:
		return NewRandom(rng), nil
	case KindTactics:
		return NewTactics(rng), nil
	case KindNeural:
		return newNeuralFromOptions(opts.Neural)
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownAgent, kind)
	}
}

func newNeuralFromOptions(config NeuralConfig) (Agent, error) {
	if len(config.HiddenLayers) == 0 {
		config.HiddenLayers = DefaultNeuralConfig().HiddenLayers
	}

	if config.WeightsFile == "" {
		return NewNeural(config), nil
	}

	neural, err := LoadNeural(config.WeightsFile, config)
	if errors.Is(err, fs.ErrNotExist) {
		return NewNeural(config), nil
	}
	if err != nil {
		return nil, err
	}

	return neural, nil
}
