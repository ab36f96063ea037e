package main

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Comparator sends a prepared multimodal message to a model and returns the
// first text segment of its answer.
type Comparator interface {
	Compare(ctx context.Context, blocks []contentBlock) (string, error)
	Name() string
}

// TaskSource queries the external task database for one date range.
type TaskSource interface {
	QueryTasks(ctx context.Context, startDate, endDate string) (taskFetch, error)
}

// HistoryStore persists finished comparison and analysis runs.
type HistoryStore interface {
	Close() error
	RecordRun(run historyRun) error
	RecentRuns(limit int) ([]historyRun, error)
}

// RedisClient abstracts the Redis operations used for job state.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Close() error
}

// AsynqClient abstracts task enqueue operations.
type AsynqClient interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

var _ RedisClient = (*redis.Client)(nil)
var _ AsynqClient = (*asynq.Client)(nil)
var _ HistoryStore = (*historyStore)(nil)
var _ TaskSource = (*notionClient)(nil)
var _ Comparator = (*anthropicClient)(nil)
var _ Comparator = (*geminiClient)(nil)
