package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository stores serialized store state under a storage key.
type SnapshotRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

type redisSnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotRepository keeps snapshots as plain redis strings. A
// zero ttl keeps them forever; otherwise every save refreshes the expiry.
func NewRedisSnapshotRepository(client *redis.Client, ttl time.Duration) SnapshotRepository {
	return &redisSnapshotRepository{client: client, ttl: ttl}
}

func (r *redisSnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *redisSnapshotRepository) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	logger.Debug("Snapshot saved to redis", map[string]interface{}{
		"key":   key,
		"bytes": len(data),
	})
	return nil
}

type gormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository keeps snapshots in the storage_snapshots table.
func NewGormSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &gormSnapshotRepository{db: db}
}

func (r *gormSnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var row model.StorageSnapshot
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		logger.Error("Failed to load snapshot from database", err, map[string]interface{}{
			"key": key,
		})
		return nil, err
	}
	return []byte(row.Value), nil
}

func (r *gormSnapshotRepository) Save(ctx context.Context, key string, data []byte) error {
	row := model.StorageSnapshot{Key: key, Value: string(data)}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		logger.Error("Failed to save snapshot to database", err, map[string]interface{}{
			"key": key,
		})
		return err
	}

	logger.Debug("Snapshot saved to database", map[string]interface{}{
		"key":   key,
		"bytes": len(data),
	})
	return nil
}
