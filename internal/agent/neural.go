package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
	"github.com/rocketscienceinc/reversi-backend/internal/reversi"
)

const neuralInputs = 2 * entity.BoardSize * entity.BoardSize

// NeuralConfig describes the value network. Weights, when set and shaped like
// the layout, are applied on top of the random initialisation.
type NeuralConfig struct {
	HiddenLayers []int
	Record       bool
	Weights      [][][]float64
	LearningRate float64
	Epochs       int
	// WeightsFile is loaded by the registry when it exists.
	WeightsFile  string
}

func DefaultNeuralConfig() NeuralConfig {
	return NeuralConfig{
		HiddenLayers: []int{256, 256},
		LearningRate: 0.01,
		Epochs:       1,
	}
}

// Neural scores the board resulting from every legal move with a value network
// and plays the best one.
type Neural struct {
	network *deep.Neural
	record  bool
	layout  []int
	trainer *training.OnlineTrainer
	epochs  int

	mu        sync.Mutex
	moverSeen [][]float64
	rivalSeen [][]float64
	examples  training.Examples
}

func NewNeural(config NeuralConfig) *Neural {
	layout := append(append([]int{}, config.HiddenLayers...), 1)

	network := deep.NewNeural(&deep.Config{
		Inputs:     neuralInputs,
		Layout:     layout,
		Activation: deep.ActivationTanh,
		Mode:       deep.ModeRegression,
		Weight:     deep.NewNormal(0.1, 0.0),
		Bias:       true,
	})

	if config.Weights != nil && sameShape(network.Weights(), config.Weights) {
		network.ApplyWeights(config.Weights)
	}

	return &Neural{
		network: network,
		record:  config.Record,
		layout:  config.HiddenLayers,
		trainer: newTrainer(config),
		epochs:  max(config.Epochs, 1),
	}
}

type savedNetwork struct {
	HiddenLayers []int         `json:"hidden_layers"`
	Weights      [][][]float64 `json:"weights"`
}

// LoadNeural restores a network saved with Save. The layout stored in the file wins over config.HiddenLayers.
func LoadNeural(path string, config NeuralConfig) (*Neural, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network: %w", err)
	}

	var saved savedNetwork
	if err = json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network: %w", err)
	}

	for _, size := range saved.HiddenLayers {
		if size <= 0 {
			return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidNetwork, path)
		}
	}

	config.HiddenLayers = saved.HiddenLayers
	config.Weights = nil

	neural := NewNeural(config)
	if !sameShape(neural.Weights(), saved.Weights) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidNetwork, path)
	}
	neural.network.ApplyWeights(saved.Weights)

	return neural, nil
}

// sameShape reports whether weights has the layer, neuron and fan-in sizes of want.
func sameShape(want, weights [][][]float64) bool {
	if len(weights) != len(want) {
		return false
	}

	for i := range want {
		if len(weights[i]) != len(want[i]) {
			return false
		}
		for j := range want[i] {
			if len(weights[i][j]) != len(want[i][j]) {
				return false
			}
		}
	}

	return true
}

func newTrainer(config NeuralConfig) *training.OnlineTrainer {
	learningRate := config.LearningRate
	if learningRate <= 0 {
		learningRate = DefaultNeuralConfig().LearningRate
	}

	return training.NewTrainer(training.NewSGD(learningRate, 0.5, 0.0, false), 0)
}

func (that *Neural) Propose(_ context.Context, _ Game, mover, opponent entity.Grid) (entity.Grid, entity.Grid, error) {
	moves := reversi.ListValidMoves(mover, opponent)
	if len(moves) == 0 {
		return mover, opponent, apperror.ErrNoAvailableMoves
	}

	bestScore := math.Inf(-1)
	var best entity.Cell
	var bestMover, bestOpponent entity.Grid
	for _, move := range moves {
		afterMover, afterOpponent := reversi.MoveOutcome(mover.With(move), opponent, mover, opponent)

		score := that.Score(afterMover, afterOpponent)
		if score > bestScore {
			bestScore = score
			best = move
			bestMover, bestOpponent = afterMover, afterOpponent
		}
	}

	if that.record {
		that.recordTransition(bestMover, bestOpponent)
	}

	return mover.With(best), opponent, nil
}

// Score evaluates a position from the mover's point of view.
func (that *Neural) Score(mover, opponent entity.Grid) float64 {
	return that.network.Predict(features(mover, opponent))[0]
}

// recordTransition stores the chosen position under all board symmetries, once
// from the mover's side and once from the opponent's.
func (that *Neural) recordTransition(mover, opponent entity.Grid) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, sym := range reversi.Symmetries {
		m, o := mover.Transform(sym), opponent.Transform(sym)
		that.moverSeen = append(that.moverSeen, features(m, o))
		that.rivalSeen = append(that.rivalSeen, features(o, m))
	}
}

// Finish labels the transitions recorded during the finished game.
func (that *Neural) Finish(label float64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, input := range that.moverSeen {
		that.examples = append(that.examples, training.Example{Input: input, Response: []float64{label}})
	}
	for _, input := range that.rivalSeen {
		that.examples = append(that.examples, training.Example{Input: input, Response: []float64{-label}})
	}

	that.moverSeen = nil
	that.rivalSeen = nil
}

// DrainExamples hands over the labelled examples collected so far.
func (that *Neural) DrainExamples() training.Examples {
	that.mu.Lock()
	defer that.mu.Unlock()

	examples := that.examples
	that.examples = nil
	return examples
}

// Learn trains the network on the labelled examples and drops them. It returns the
// number of examples used. It must not run while a game is using the agent.
func (that *Neural) Learn() int {
	examples := that.DrainExamples()
	if len(examples) == 0 {
		return 0
	}

	examples.Shuffle()
	that.trainer.Train(that.network, examples, nil, that.epochs)

	return len(examples)
}

// Weights returns a copy of the current network weights, suitable for NeuralConfig.Weights.
func (that *Neural) Weights() [][][]float64 {
	return that.network.Dump().Weights
}

// Save writes the network and its weights to path.
func (that *Neural) Save(path string) error {
	data, err := json.Marshal(savedNetwork{HiddenLayers: that.layout, Weights: that.Weights()})
	if err != nil {
		return fmt.Errorf("failed to marshal network: %w", err)
	}

	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write network: %w", err)
	}

	return nil
}

// Pending returns the number of recorded transitions not yet labelled.
func (that *Neural) Pending() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.moverSeen) + len(that.rivalSeen)
}

func features(mover, opponent entity.Grid) []float64 {
	return append(mover.Features(), opponent.Features()...)
}
