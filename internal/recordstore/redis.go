package recordstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each record as a hash at "<collection>:<key>" and
// maintains a set "<collection>:_keys" of member keys so ScanAll does not
// have to walk the whole keyspace.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func recordKey(collection, key string) string {
	return collection + ":" + key
}

func indexKey(collection string) string {
	return collection + ":_keys"
}

func (s *RedisStore) Get(ctx context.Context, collection, key string) (Record, error) {
	fields, err := s.client.HGetAll(ctx, recordKey(collection, key)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: hgetall %s: %v", ErrUnavailable, recordKey(collection, key), err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return Record(fields), nil
}

func (s *RedisStore) ScanAll(ctx context.Context, collection string) ([]Record, error) {
	keys, err := s.client.SMembers(ctx, indexKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: smembers %s: %v", ErrUnavailable, indexKey(collection), err)
	}

	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		record, err := s.Get(ctx, collection, key)
		if err != nil {
			// Index entry without a hash: the record was deleted between
			// the scan and the read, skip it.
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *RedisStore) Put(ctx context.Context, collection, key string, record Record) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, recordKey(collection, key), flatten(record))
	pipe.SAdd(ctx, indexKey(collection), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrUnavailable, recordKey(collection, key), err)
	}
	return nil
}

func (s *RedisStore) UpdateFields(ctx context.Context, collection, key string, fields Record) (Record, error) {
	if len(fields) == 0 {
		return Record{}, nil
	}

	exists, err := s.client.Exists(ctx, recordKey(collection, key)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: exists %s: %v", ErrUnavailable, recordKey(collection, key), err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	if err := s.client.HSet(ctx, recordKey(collection, key), flatten(fields)).Err(); err != nil {
		return nil, fmt.Errorf("%w: hset %s: %v", ErrUnavailable, recordKey(collection, key), err)
	}
	return fields.Clone(), nil
}

func (s *RedisStore) Delete(ctx context.Context, collection, key string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, recordKey(collection, key))
	pipe.SRem(ctx, indexKey(collection), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrUnavailable, recordKey(collection, key), err)
	}
	return nil
}

func flatten(record Record) []string {
	out := make([]string, 0, len(record)*2)
	for field, value := range record {
		out = append(out, field, value)
	}
	return out
}
