package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stepKeyPrefix       = "blogsmith:wf:step:"
	latestKeyPrefix     = "blogsmith:wf:latest:"
	checkpointKeyPrefix = "blogsmith:wf:checkpoint:"
)

// RedisStore is a Redis-backed implementation of Store[S].
//
// State is stored as JSON values under prefixed keys:
//   - blogsmith:wf:step:<runID>:<step>    one record per step
//   - blogsmith:wf:latest:<runID>         pointer record for LoadLatest
//   - blogsmith:wf:checkpoint:<cpID>      named checkpoints
//
// A TTL may be configured so abandoned run state expires on its own.
// Checkpoints are persisted without TTL.
//
// Type parameter S is the state type to persist (must be
// JSON-serializable).
type RedisStore[S any] struct {
	client *redis.Client
	ttl    time.Duration
}

// redisRecord is the JSON envelope stored for steps and checkpoints.
type redisRecord[S any] struct {
	Step   int    `json:"step"`
	NodeID string `json:"node_id,omitempty"`
	State  S      `json:"state"`
}

// NewRedisStore creates a Redis-backed store from an already-configured
// client. ttl of zero means run state never expires.
func NewRedisStore[S any](client *redis.Client, ttl time.Duration) (*RedisStore[S], error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore[S]{client: client, ttl: ttl}, nil
}

// SaveStep persists a step record and updates the run's latest pointer.
func (r *RedisStore[S]) SaveStep(ctx context.Context, runID string, step int, nodeID string, state S) error {
	data, err := json.Marshal(redisRecord[S]{Step: step, NodeID: nodeID, State: state})
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf("%s%s:%d", stepKeyPrefix, runID, step), data, r.ttl)
	pipe.Set(ctx, latestKeyPrefix+runID, data, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save step: %w", err)
	}
	return nil
}

// LoadLatest retrieves the most recent state for a run.
func (r *RedisStore[S]) LoadLatest(ctx context.Context, runID string) (S, int, error) {
	var zero S

	data, err := r.client.Get(ctx, latestKeyPrefix+runID).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, 0, ErrNotFound
	}
	if err != nil {
		return zero, 0, fmt.Errorf("failed to load latest step: %w", err)
	}

	var rec redisRecord[S]
	if err := json.Unmarshal(data, &rec); err != nil {
		return zero, 0, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return rec.State, rec.Step, nil
}

// SaveCheckpoint stores a named snapshot without expiry.
func (r *RedisStore[S]) SaveCheckpoint(ctx context.Context, cpID string, state S, step int) error {
	data, err := json.Marshal(redisRecord[S]{Step: step, State: state})
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := r.client.Set(ctx, checkpointKeyPrefix+cpID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint retrieves a named checkpoint.
func (r *RedisStore[S]) LoadCheckpoint(ctx context.Context, cpID string) (S, int, error) {
	var zero S

	data, err := r.client.Get(ctx, checkpointKeyPrefix+cpID).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, 0, ErrNotFound
	}
	if err != nil {
		return zero, 0, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	var rec redisRecord[S]
	if err := json.Unmarshal(data, &rec); err != nil {
		return zero, 0, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return rec.State, rec.Step, nil
}
