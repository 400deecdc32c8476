// Package redisgw implements resource.Gateway on Redis. Each record is a
// JSON string under "<table>:<id>" and every table keeps a set of its ids.
package redisgw

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/eringen/folio/resource"
)

const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Store is a Redis-backed resource.Gateway. Filtering and ordering happen
// client side after the table's records are fetched in one pipeline.
type Store struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix namespaces every key, so several sites can share a database.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// NewStore creates a Store on an existing client.
func NewStore(client *redis.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to the Redis server at addr and pings it.
func Dial(ctx context.Context, addr, password string, db int, opts ...Option) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return NewStore(client, opts...), nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) setKey(table string) string {
	return s.prefix + table
}

func (s *Store) recordKey(table, id string) string {
	return fmt.Sprintf("%s%s:%s", s.prefix, table, id)
}

// Query returns the records of table matching q.
func (s *Store) Query(ctx context.Context, table string, q resource.Query) ([]resource.Record, error) {
	var ids []string
	if id, ok := q.Where[resource.FieldID].(string); ok {
		ids = []string{id}
	} else {
		var err error
		ids, err = s.client.SMembers(ctx, s.setKey(table)).Result()
		if err != nil {
			return nil, err
		}
	}
	if len(ids) == 0 {
		return []resource.Record{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, s.recordKey(table, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	recs := make([]resource.Record, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		rec, err := resource.DecodeRecord(data)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", table, ids[i], err)
		}
		if resource.Matches(rec, q.Where) {
			recs = append(recs, rec)
		}
	}
	if q.Order.Field != "" {
		// Ties keep creation order, matching the SQL gateway.
		resource.SortRecords(recs, resource.Order{Field: resource.FieldCreatedAt, Desc: q.Order.Desc})
		resource.SortRecords(recs, q.Order)
	}
	return recs, nil
}

// Insert stores rec under a new id and returns the stored record.
func (s *Store) Insert(ctx context.Context, table string, rec resource.Record) (resource.Record, error) {
	saved := rec.Without(resource.FieldID, resource.FieldCreatedAt, resource.FieldUpdatedAt)
	id := uuid.NewString()
	saved[resource.FieldID] = id
	saved[resource.FieldCreatedAt] = s.now().Format(timeLayout)
	data, err := resource.EncodeRecord(saved)
	if err != nil {
		return nil, err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.recordKey(table, id), data, 0)
	pipe.SAdd(ctx, s.setKey(table), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return resource.DecodeRecord(data)
}

// Update merges rec onto the stored record with the given id. The read and
// write run under WATCH so a concurrent update is retried, not lost.
func (s *Store) Update(ctx context.Context, table, id string, rec resource.Record) error {
	key := s.recordKey(table, id)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return resource.ErrNotFound
		}
		if err != nil {
			return err
		}
		current, err := resource.DecodeRecord(data)
		if err != nil {
			return err
		}
		for k, v := range rec.Without(resource.FieldID, resource.FieldCreatedAt, resource.FieldUpdatedAt) {
			current[k] = v
		}
		current[resource.FieldUpdatedAt] = s.now().Format(timeLayout)
		merged, err := resource.EncodeRecord(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, merged, 0)
			return nil
		})
		return err
	}

	for i := 0; i < 3; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s %s: too much contention", table, id)
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.recordKey(table, id))
	pipe.SRem(ctx, s.setKey(table), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if del.Val() == 0 {
		return resource.ErrNotFound
	}
	return nil
}

// Count returns the number of records in table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	n, err := s.client.SCard(ctx, s.setKey(table)).Result()
	return int(n), err
}
