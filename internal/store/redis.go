package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/legalvoice/api/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	caseKeyPrefix = "case:"
	caseIndexKey  = "cases:index"
	maxTxAttempts = 16
)

// RedisStore keeps each case as a JSON record under case:<id> and indexes
// ids by creation time in a sorted set.
type RedisStore struct {
	redis *redis.Client
	now   func() time.Time
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{redis: redisClient, now: time.Now}
}

// caseRecord carries the internal fields that the API view omits.
type caseRecord struct {
	*model.Case
	AudioKey string `json:"audioKey,omitempty"`
}

func caseKey(id string) string {
	return caseKeyPrefix + id
}

func encodeCase(c *model.Case) ([]byte, error) {
	return json.Marshal(caseRecord{Case: c, AudioKey: c.AudioKey})
}

func decodeCase(data []byte) (*model.Case, error) {
	rec := caseRecord{Case: &model.Case{}}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	rec.Case.AudioKey = rec.AudioKey
	return rec.Case, nil
}

func (s *RedisStore) Create(ctx context.Context, c *model.Case) (string, error) {
	rec := prepare(c, s.now())
	data, err := encodeCase(rec)
	if err != nil {
		return "", err
	}

	ok, err := s.redis.SetNX(ctx, caseKey(rec.ID), data, 0).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("case %s already exists", rec.ID)
	}
	if err := s.redis.ZAdd(ctx, caseIndexKey, redis.Z{
		Score:  float64(rec.CreatedAt.UnixNano()),
		Member: rec.ID,
	}).Err(); err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*model.Case, error) {
	data, err := s.redis.Get(ctx, caseKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeCase(data)
}

func (s *RedisStore) List(ctx context.Context) ([]*model.Case, error) {
	ids, err := s.redis.ZRevRange(ctx, caseIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Case{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = caseKey(id)
	}
	values, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*model.Case, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		c, err := decodeCase([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Update runs fn inside an optimistic WATCH transaction and retries when
// another writer touched the case in between.
func (s *RedisStore) Update(ctx context.Context, id string, fn UpdateFunc) (*model.Case, error) {
	key := caseKey(id)
	var updated *model.Case

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				return ErrNotFound
			}
			return err
		}
		working, err := decodeCase(data)
		if err != nil {
			return err
		}
		if err := fn(working); err != nil {
			return err
		}
		working.ID = id
		working.UpdatedAt = s.now()

		out, err := encodeCase(working)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err == nil {
			updated = working
		}
		return err
	}

	for i := 0; i < maxTxAttempts; i++ {
		err := s.redis.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update case %s: too much contention", id)
}
