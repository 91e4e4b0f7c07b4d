package repository

import (
	"fmt"

	"github.com/debemdeboas/campaign-editor/internal/config"
	"github.com/debemdeboas/campaign-editor/internal/db"
	"github.com/debemdeboas/campaign-editor/internal/util/compression"
)

// Open builds the repository selected by cfg. The returned func releases it.
func Open(cfg config.StorageConfig, redisPassword string) (CampaignRepository, func() error, error) {
	switch cfg.Backend {
	case config.StorageRedis:
		repo := NewRedisCampaignRepository(cfg.Redis.Addr, redisPassword, cfg.Redis.DB, WithPrefix(cfg.Redis.Prefix))
		return repo, repo.Close, nil

	case config.StorageSQLite:
		compressor, err := compression.New(cfg.Compression)
		if err != nil {
			return nil, nil, err
		}
		database := db.NewSQLite(cfg.SQLitePath)
		if err := database.InitDB(); err != nil {
			return nil, nil, fmt.Errorf(config.ErrInitializeDatabaseFmt, err)
		}
		return NewDBCampaignRepository(database, compressor), database.Close, nil
	}

	return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
}
