package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/aggregates/draft"
	"github.com/aquaops/pond-miniapp/modules/miniapp/infrastructure/persistence/models"
)

const sharedField = "_shared"

// DraftRepository keeps every draft of an operator in one Redis hash, one
// field per form plus the shared selection. The whole hash expires ttl after
// the last write.
type DraftRepository struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

func NewDraftRepository(client *redis.Client, ttl time.Duration) *DraftRepository {
	return &DraftRepository{redis: client, prefix: "miniapp:drafts:v1", ttl: ttl}
}

func (r *DraftRepository) Get(ctx context.Context, userID int64, variant string) (draft.Draft, error) {
	var model models.Draft
	if err := r.hget(ctx, userID, variant, &model); err != nil {
		return nil, err
	}
	return ToDomainDraft(model)
}

func (r *DraftRepository) Save(ctx context.Context, d draft.Draft) error {
	model := ToDBDraft(d)
	return r.hset(ctx, model.UserID, model.Variant, model)
}

func (r *DraftRepository) Delete(ctx context.Context, userID int64, variant string) error {
	if err := r.redis.HDel(ctx, r.hashKey(userID), variant).Err(); err != nil {
		return errors.Wrap(err, "delete draft")
	}
	return nil
}

func (r *DraftRepository) GetShared(ctx context.Context, userID int64) (draft.Shared, error) {
	var model models.Shared
	if err := r.hget(ctx, userID, sharedField, &model); err != nil {
		return nil, err
	}
	return ToDomainShared(model)
}

func (r *DraftRepository) SaveShared(ctx context.Context, s draft.Shared) error {
	return r.hset(ctx, s.UserID(), sharedField, ToDBShared(s))
}

func (r *DraftRepository) hget(ctx context.Context, userID int64, field string, out any) error {
	result, err := r.redis.HGet(ctx, r.hashKey(userID), field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return draft.ErrDraftNotFound
		}
		return errors.Wrap(err, "read draft")
	}
	if err := json.Unmarshal([]byte(result), out); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to decode draft field %s", field))
	}
	return nil
}

func (r *DraftRepository) hset(ctx context.Context, userID int64, field string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encode draft")
	}
	key := r.hashKey(userID)
	pipe := r.redis.TxPipeline()
	pipe.HSet(ctx, key, field, raw)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "write draft")
	}
	return nil
}

func (r *DraftRepository) hashKey(userID int64) string {
	return fmt.Sprintf("%s:{%s}", r.prefix, strconv.FormatInt(userID, 10))
}
