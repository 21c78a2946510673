package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coachfolio/portfolio"
	"github.com/go-redis/redis/v8"
)

// maxTxRetries bounds the optimistic transaction retries of Update.
const maxTxRetries = 16

// Redis is a Store keeping each ledger as a JSONL string under
// "session:<id>". Sessions expire ttl after their last update, never if ttl is 0.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// DialRedis connects to a redis server and checks it answers.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func key(id string) string { return "session:" + id }

func encode(l *portfolio.Ledger) (string, error) {
	var b bytes.Buffer
	if err := portfolio.EncodeLedger(&b, l); err != nil {
		return "", err
	}
	return b.String(), nil
}

func decode(id, val string) (*portfolio.Ledger, error) {
	l, err := portfolio.DecodeLedger(strings.NewReader(val))
	if err != nil {
		return nil, fmt.Errorf("session %s is corrupted: %w", id, err)
	}
	return l, nil
}

func (r *Redis) Create(ctx context.Context, l *portfolio.Ledger) (string, error) {
	val, err := encode(l)
	if err != nil {
		return "", err
	}
	id := newID()
	ok, err := r.client.SetNX(ctx, key(id), val, r.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("session id %s already in use", id)
	}
	return id, nil
}

func (r *Redis) Load(ctx context.Context, id string) (*portfolio.Ledger, error) {
	val, err := r.client.Get(ctx, key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(id, val)
}

// Update runs fn in an optimistic transaction: the key is watched while the
// ledger is decoded and updated, and the write is retried from scratch when
// another client changed the session in between.
func (r *Redis) Update(ctx context.Context, id string, fn func(*portfolio.Ledger) error) (*portfolio.Ledger, error) {
	k := key(id)
	for range maxTxRetries {
		var updated *portfolio.Ledger
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			val, err := tx.Get(ctx, k).Result()
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			l, err := decode(id, val)
			if err != nil {
				return err
			}
			if err := fn(l); err != nil {
				return err
			}
			next, err := encode(l)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, k, next, r.ttl)
				return nil
			})
			updated = l
			return err
		}, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("session %s: too many concurrent updates", id)
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, key(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
