package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debemdeboas/campaign-editor/internal/config"
	"github.com/debemdeboas/campaign-editor/internal/model"
)

func storageConfig(t *testing.T) config.StorageConfig {
	cfg := config.StorageConfig{}
	config.ApplyDefaults(&cfg)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "campaigns.db")
	return cfg
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		cfg := storageConfig(t)
		cfg.Compression = config.CompressionGzip

		repo, closeRepo, err := Open(cfg, "")
		require.NoError(t, err)
		defer closeRepo()

		assert.IsType(t, &DBCampaignRepository{}, repo)
		require.NoError(t, repo.SaveContent(ctx, "c1", model.HTMLContent{Markup: "<p/>"}))
		stored, err := repo.GetContent(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "<p/>", stored.Content.HTML())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := storageConfig(t)
		cfg.Backend = config.StorageRedis
		cfg.Redis.Addr = mr.Addr()

		repo, closeRepo, err := Open(cfg, "")
		require.NoError(t, err)
		defer closeRepo()

		require.NoError(t, repo.SaveContent(ctx, "c1", model.HTMLContent{Markup: "<p/>"}))
		assert.True(t, mr.Exists(cfg.Redis.Prefix+"c1"))
	})

	t.Run("unknown compression", func(t *testing.T) {
		cfg := storageConfig(t)
		cfg.Compression = "lz4"
		_, _, err := Open(cfg, "")
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := storageConfig(t)
		cfg.Backend = "postgres"
		_, _, err := Open(cfg, "")
		assert.Error(t, err)
	})
}
