package manifest

import (
	"context"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisManifest shares the generation ledger across processes and survives
// restarts. Pair it with a redis-backed store so ledger and entries live in
// the same place.
//
// Layout:
//
//	<prefix>:gens            - SET of generation names
//	<prefix>:gen:<name>      - SET of member request keys
type RedisManifest struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ Manifest = (*RedisManifest)(nil)

// NewRedisManifest creates a redis-backed ledger under the given key prefix
// (e.g. "offgate"). The prefix must match across replicas of the same app.
func NewRedisManifest(client redis.UniversalClient, prefix string) *RedisManifest {
	return &RedisManifest{rdb: client, prefix: prefix}
}

func (m *RedisManifest) registryKey() string       { return m.prefix + ":gens" }
func (m *RedisManifest) genKey(name string) string { return m.prefix + ":gen:" + name }

func (m *RedisManifest) Add(ctx context.Context, generation, key string) error {
	_, err := m.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.SAdd(ctx, m.registryKey(), generation)
		p.SAdd(ctx, m.genKey(generation), key)
		return nil
	})
	return err
}

func (m *RedisManifest) Keys(ctx context.Context, generation string) ([]string, error) {
	keys, err := m.rdb.SMembers(ctx, m.genKey(generation)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *RedisManifest) Generations(ctx context.Context, prefix string) ([]string, error) {
	names, err := m.rdb.SMembers(ctx, m.registryKey()).Result()
	if err != nil {
		return nil, err
	}
	out := names[:0]
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *RedisManifest) Drop(ctx context.Context, generation string) error {
	_, err := m.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.SRem(ctx, m.registryKey(), generation)
		p.Del(ctx, m.genKey(generation))
		return nil
	})
	return err
}

// Close is a no-op; the manifest does not own the client.
func (m *RedisManifest) Close(context.Context) error { return nil }
