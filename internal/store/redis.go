package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/climate-viewer/internal/climate"
	"github.com/i474232898/climate-viewer/internal/pkg/logger"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // key namespace, e.g. "meteo"
	Version  int    // schema version, part of every key
	Timeout  time.Duration
}

// RedisStore keeps one hash per table at "<prefix>:v<version>:<table>",
// field = period label, value = JSON point. Hashes appear on first write.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	version int
	logger  logger.Logger
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, opts RedisOptions, log logger.Logger) (*RedisStore, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "meteo"
	}
	version := opts.Version
	if version <= 0 {
		version = 1
	}

	log = log.WithField("component", "redis_store")
	log.Infof("redis cache store ready at %s (%s:v%d)", opts.Addr, prefix, version)

	return &RedisStore{
		client:  client,
		prefix:  prefix,
		version: version,
		logger:  log,
	}, nil
}

func (s *RedisStore) key(table climate.Table) string {
	return fmt.Sprintf("%s:v%d:%s", s.prefix, s.version, table)
}

// ReadAll returns every row of table ordered by period label.
func (s *RedisStore) ReadAll(ctx context.Context, table climate.Table) ([]climate.Point, error) {
	fields, err := s.client.HGetAll(ctx, s.key(table)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", s.key(table), err)
	}

	out := make([]climate.Point, 0, len(fields))
	for label, raw := range fields {
		var p climate.Point
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			s.logger.Warnf("skipping corrupt row %s/%s: %v", table, label, err)
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].T < out[j].T })
	return out, nil
}

// PutAll writes points in one MULTI/EXEC transaction, one HSET per point.
func (s *RedisStore) PutAll(ctx context.Context, table climate.Table, points []climate.Point) error {
	if len(points) == 0 {
		return nil
	}
	key := s.key(table)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range points {
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", p.T, err)
			}
			pipe.HSet(ctx, key, p.T, data)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
