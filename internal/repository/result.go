package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/reversi-backend/internal/apperror"
	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

const tallyKey = "results:tally"

type ResultRepository interface {
	Save(ctx context.Context, result *entity.MatchResult) error
	GetByID(ctx context.Context, id string) (*entity.MatchResult, error)
	Tally(ctx context.Context) (entity.Tally, error)
}

type dbResult struct {
	client *redis.Client
}

func NewResultRepository(client *redis.Client) ResultRepository {
	return &dbResult{
		client: client,
	}
}

// Save stores the result and counts its outcome in a single transaction.
func (that *dbResult) Save(ctx context.Context, result *entity.MatchResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal result: %w", err)
	}

	pipe := that.client.TxPipeline()
	pipe.Set(ctx, resultKey(result.ID), resultJSON, 0)
	pipe.HIncrBy(ctx, tallyKey, string(result.Outcome), 1)

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	return nil
}

func (that *dbResult) GetByID(ctx context.Context, id string) (*entity.MatchResult, error) {
	response, err := that.client.Get(ctx, resultKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.MatchResult{}, apperror.ErrResultNotFound
	}

	if err != nil {
		return &entity.MatchResult{}, fmt.Errorf("%w by id", err)
	}

	var result entity.MatchResult
	if err = json.Unmarshal([]byte(response), &result); err != nil {
		return &entity.MatchResult{}, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

func (that *dbResult) Tally(ctx context.Context) (entity.Tally, error) {
	counts, err := that.client.HGetAll(ctx, tallyKey).Result()
	if err != nil {
		return entity.Tally{}, fmt.Errorf("failed to get tally: %w", err)
	}

	var tally entity.Tally
	for field, value := range counts {
		count, err := strconv.Atoi(value)
		if err != nil {
			return entity.Tally{}, fmt.Errorf("invalid tally count for %q: %w", field, err)
		}

		switch entity.Outcome(field) {
		case entity.OutcomeFirstWins:
			tally.FirstWins = count
		case entity.OutcomeSecondWins:
			tally.SecondWins = count
		case entity.OutcomeDraw:
			tally.Draws = count
		}
	}

	return tally, nil
}

func resultKey(id string) string {
	return "result:" + id
}
