package redis

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/julianstephens/pibble/internal/cache"
	"github.com/julianstephens/pibble/internal/constants"
)

// DefaultTTL bounds how long an entry lives without being refreshed
const DefaultTTL = 7 * 24 * time.Hour

const (
	fieldBody    = "body"
	fieldFetched = "fetched_at"
)

type Store struct {
	rawURL    string
	namespace string
	ttl       time.Duration
	client    *goredis.Client
}

// IsURL reports whether location selects this backend
func IsURL(location string) bool {
	return strings.HasPrefix(location, "redis://") || strings.HasPrefix(location, "rediss://")
}

func New(rawURL string) *Store {
	return &Store{
		rawURL:    rawURL,
		namespace: constants.AppName + ":cache:",
		ttl:       DefaultTTL,
	}
}

func (s *Store) connect() error {
	if s.client != nil {
		return nil
	}

	opts, err := goredis.ParseURL(s.rawURL)
	if err != nil {
		return fmt.Errorf("invalid Redis URL: %w", err)
	}
	if opts.Password == "" {
		opts.Password = os.Getenv("REDIS_PASSWORD")
	}
	s.client = goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		_ = s.client.Close()
		s.client = nil
		return fmt.Errorf("failed to connect to Redis cache: %w", err)
	}
	return nil
}

// Init connects; Redis needs no schema
func (s *Store) Init() error {
	return s.connect()
}

func (s *Store) Load() error {
	return s.connect()
}

func (s *Store) Close() error {
	if s.client != nil {
		err := s.client.Close()
		s.client = nil
		return err
	}
	return nil
}

func (s *Store) key(k string) string {
	return s.namespace + k
}

func (s *Store) Get(ctx context.Context, key string) (cache.Entry, error) {
	fields, err := s.client.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return cache.Entry{}, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	body, ok := fields[fieldBody]
	if !ok {
		return cache.Entry{}, cache.ErrMiss
	}
	at, err := time.Parse(time.RFC3339Nano, fields[fieldFetched])
	if err != nil {
		return cache.Entry{}, fmt.Errorf("corrupt fetched_at for %s: %w", key, err)
	}
	return cache.Entry{Key: key, Body: []byte(body), FetchedAt: at}, nil
}

func (s *Store) Put(ctx context.Context, key string, body []byte, fetchedAt time.Time) error {
	k := s.key(key)
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, k, map[string]any{
			fieldBody:    string(body),
			fieldFetched: fetchedAt.UTC().Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

func (s *Store) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache entries: %w", err)
	}
	return nil
}

func (s *Store) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, escapeGlob(s.key(prefix))+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to invalidate prefix %s: %w", prefix, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan prefix %s: %w", prefix, err)
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to invalidate prefix %s: %w", prefix, err)
		}
	}
	return nil
}

// Clear removes this application's entries and leaves the rest of the database alone
func (s *Store) Clear(ctx context.Context) error {
	return s.InvalidatePrefix(ctx, "")
}

// Location returns the URL with any password redacted
func (s *Store) Location() string {
	u, err := url.Parse(s.rawURL)
	if err != nil {
		return "redis"
	}
	return u.Redacted()
}

var errNotConnected = errors.New("redis cache is not connected")

// Ping checks the connection for diagnostics
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return errNotConnected
	}
	return s.client.Ping(ctx).Err()
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\', '^', '-':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
