package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/debemdeboas/campaign-editor/internal/model"
)

const DefaultRedisPrefix = "campaign-editor:campaign:"

// RedisCampaignRepository keeps one JSON record per campaign and a sorted set
// of campaign IDs scored by modification time.
type RedisCampaignRepository struct { // implements CampaignRepository
	client *backend.Client
	prefix string

	now func() time.Time
}

type RedisOption func(*RedisCampaignRepository)

// WithPrefix sets the key prefix for campaign records.
func WithPrefix(prefix string) RedisOption {
	return func(r *RedisCampaignRepository) {
		r.prefix = prefix
	}
}

type redisRecord struct {
	ID           model.CampaignID `json:"id"`
	Content      json.RawMessage  `json:"content"`
	ContentHash  string           `json:"contentHash"`
	CreatedDate  time.Time        `json:"createdDate"`
	ModifiedDate time.Time        `json:"modifiedDate"`
}

func NewRedisCampaignRepository(address, password string, db int, opts ...RedisOption) *RedisCampaignRepository {
	return NewRedisCampaignRepositoryFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

func NewRedisCampaignRepositoryFromClient(client *backend.Client, opts ...RedisOption) *RedisCampaignRepository {
	r := &RedisCampaignRepository{
		client: client,
		prefix: DefaultRedisPrefix,

		now: func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *RedisCampaignRepository) key(id model.CampaignID) string {
	return r.prefix + string(id)
}

func (r *RedisCampaignRepository) indexKey() string {
	return r.prefix + "index"
}

func (r *RedisCampaignRepository) load(ctx context.Context, id model.CampaignID) (*redisRecord, error) {
	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal campaign %s: %w", id, err)
	}
	return &rec, nil
}

func (r *RedisCampaignRepository) SaveContent(ctx context.Context, id model.CampaignID, content model.Content) error {
	if content == nil {
		return fmt.Errorf("error saving campaign %s: no content", id)
	}

	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}
	hash, err := contentHash(content)
	if err != nil {
		return err
	}

	now := r.now()
	rec := redisRecord{ID: id, Content: data, ContentHash: hash, CreatedDate: now, ModifiedDate: now}

	existing, err := r.load(ctx, id)
	switch {
	case err == nil:
		if existing.ContentHash == hash {
			repoLogger.Debug().Str("campaign_id", string(id)).Msg("Campaign content unchanged, skipping write")
			return nil
		}
		rec.CreatedDate = existing.CreatedDate
	case !errors.Is(err, ErrCampaignNotFound):
		return err
	}

	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal campaign record: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(id), encoded, 0)
	pipe.ZAdd(ctx, r.indexKey(), backend.Z{
		Score:  float64(now.UnixMilli()),
		Member: string(id),
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	repoLogger.Debug().Str("campaign_id", string(id)).Msg("Campaign saved")
	return nil
}

func (r *RedisCampaignRepository) GetContent(ctx context.Context, id model.CampaignID) (*model.StoredCampaign, error) {
	rec, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.stored()
}

func (r *RedisCampaignRepository) ListCampaigns(ctx context.Context) ([]model.CampaignSummary, error) {
	ids, err := r.client.ZRevRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	summaries := make([]model.CampaignSummary, 0, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(model.CampaignID(id))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load campaigns: %w", err)
	}

	var orphans []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			orphans = append(orphans, ids[i])
			continue
		}

		var rec redisRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal campaign %s: %w", ids[i], err)
		}
		stored, err := rec.stored()
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, stored.Summary())
	}

	if len(orphans) > 0 {
		// Index entries whose record is gone.
		if err := r.client.ZRem(ctx, r.indexKey(), orphans...).Err(); err != nil {
			repoLogger.Warn().Err(err).Int("count", len(orphans)).Msg("Failed to prune campaign index")
		}
	}

	return summaries, nil
}

func (r *RedisCampaignRepository) DeleteCampaign(ctx context.Context, id model.CampaignID) error {
	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, r.key(id))
	pipe.ZRem(ctx, r.indexKey(), string(id))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	if del.Val() == 0 {
		return notFound(id)
	}
	return nil
}

// Close closes the redis client.
func (r *RedisCampaignRepository) Close() error {
	return r.client.Close()
}

func (rec *redisRecord) stored() (*model.StoredCampaign, error) {
	content, err := model.DecodeContent(rec.Content)
	if err != nil {
		return nil, fmt.Errorf("campaign %s: %w", rec.ID, err)
	}

	return &model.StoredCampaign{
		ID:           rec.ID,
		Content:      content,
		ContentHash:  rec.ContentHash,
		CreatedDate:  rec.CreatedDate,
		ModifiedDate: rec.ModifiedDate,
	}, nil
}
