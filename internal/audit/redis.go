package audit

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

const (
	DefaultRedisURL    = "redis://localhost:6379/0"
	DefaultRedisStream = "smshook:audit"
)

type redisSink struct {
	cli          *redis.Client
	stream       string
	maxLen       int64
	maxLenApprox bool
}

// NewRedis appends records to a Redis stream as a single "data" field holding
// the JSON record.
func NewRedis(url, stream string, maxLen int64, approx bool) (Sink, error) {
	if url == "" {
		url = DefaultRedisURL
	}
	if stream == "" {
		stream = DefaultRedisStream
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis audit url: %w", err)
	}
	return &redisSink{cli: redis.NewClient(opt), stream: stream, maxLen: maxLen, maxLenApprox: approx}, nil
}

func (s *redisSink) Emit(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{Stream: s.stream, Values: map[string]any{"data": string(b)}}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = s.maxLenApprox
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	return s.cli.XAdd(ctx, args).Err()
}

func (s *redisSink) Close() error { return s.cli.Close() }
