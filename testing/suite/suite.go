package suite

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/reversi-backend/internal/entity"
)

const (
	containerTTL = 120
	startTimeout = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// finishedAt is the fixed finish time of every fixture result.
var finishedAt = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

// Suite is a Redis container with an empty database, scoped to one test.
type Suite struct {
	*testing.T

	Storage *redis.Client
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	t.Cleanup(cancel)

	return ctx, &Suite{
		T:       t,
		Storage: startRedis(ctx, t),
	}
}

// Result builds a finished match between a random and a tactics agent. The
// counts follow the outcome so that results read back consistently.
func (that *Suite) Result(id string, outcome entity.Outcome) *entity.MatchResult {
	that.Helper()

	first, second := 40, 24
	switch outcome {
	case entity.OutcomeSecondWins:
		first, second = second, first
	case entity.OutcomeDraw:
		first, second = 32, 32
	}

	return &entity.MatchResult{
		ID:          id,
		FirstAgent:  "random",
		SecondAgent: "tactics",
		FirstCount:  first,
		SecondCount: second,
		Outcome:     outcome,
		Moves:       60,
		FinishedAt:  finishedAt,
	}
}

// startRedis runs a disposable Redis container and returns a client to its flushed database.
func startRedis(ctx context.Context, t *testing.T) *redis.Client {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}
	pool.MaxWait = startTimeout

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis container: %v", err)
	}

	// hard kill in case Cleanup never runs
	_ = resource.Expire(containerTTL)

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge redis container: %v", err)
		}
	})

	client := redis.NewClient(&redis.Options{Addr: resource.GetHostPort(redisPort)})
	t.Cleanup(func() {
		_ = client.Close()
	})

	// the server may still be booting
	if err = pool.Retry(func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		t.Fatalf("could not connect to redis: %v", err)
	}

	if err = client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	return client
}
