package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	SetLogger(logger)
}

func TestApplyDefaults(t *testing.T) {
	t.Run("Config struct defaults", func(t *testing.T) {
		config := &Config{}
		applyDefaults(config)

		if config.Server.Host != "0.0.0.0" {
			t.Errorf("Expected host '0.0.0.0', got %q", config.Server.Host)
		}
		if config.Server.Port != "12600" {
			t.Errorf("Expected port '12600', got %q", config.Server.Port)
		}
		if config.Logging.Level != "info" {
			t.Errorf("Expected logging level 'info', got %q", config.Logging.Level)
		}
		if config.Logging.Format != LogFormatConsole {
			t.Errorf("Expected logging format %q, got %q", LogFormatConsole, config.Logging.Format)
		}

		if config.Storage.Backend != StorageSQLite {
			t.Errorf("Expected storage backend %q, got %q", StorageSQLite, config.Storage.Backend)
		}
		if config.Storage.Compression != CompressionZstd {
			t.Errorf("Expected compression %q, got %q", CompressionZstd, config.Storage.Compression)
		}
		if config.Storage.Redis.Addr != "localhost:6379" {
			t.Errorf("Expected redis addr 'localhost:6379', got %q", config.Storage.Redis.Addr)
		}
		if config.Storage.Redis.Prefix != "campaign-editor:campaign:" {
			t.Errorf("Expected redis prefix, got %q", config.Storage.Redis.Prefix)
		}

		if config.Gallery.Backend != GalleryLegacy {
			t.Errorf("Expected gallery backend %q, got %q", GalleryLegacy, config.Gallery.Backend)
		}
		if config.Gallery.Legacy.Timeout() != 30*time.Second {
			t.Errorf("Expected legacy timeout 30s, got %v", config.Gallery.Legacy.Timeout())
		}
		if config.Gallery.S3.PageSize != 50 {
			t.Errorf("Expected S3 page size 50, got %d", config.Gallery.S3.PageSize)
		}
		if config.Gallery.S3.Endpoint != "" {
			t.Errorf("Expected empty S3 endpoint, got %q", config.Gallery.S3.Endpoint)
		}

		if config.Editor.ExportTimeout() != 30*time.Second {
			t.Errorf("Expected export timeout 30s, got %v", config.Editor.ExportTimeout())
		}
		if config.Editor.DefaultCampaignName != "Untitled campaign" {
			t.Errorf("Expected default campaign name, got %q", config.Editor.DefaultCampaignName)
		}
		if config.Render.SourceStyle != "gruvbox" {
			t.Errorf("Expected source style 'gruvbox', got %q", config.Render.SourceStyle)
		}
		if !config.Metrics.Enabled {
			t.Error("Expected metrics to be enabled by default")
		}
		if config.Metrics.Path != "/metrics" {
			t.Errorf("Expected metrics path '/metrics', got %q", config.Metrics.Path)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("Expected defaults to validate, got %v", err)
		}
	})

	t.Run("Custom struct with various field types", func(t *testing.T) {
		type TestStruct struct {
			StringField  string   `default:"test-string"`
			BoolField    bool     `default:"true"`
			IntField     int      `default:"42"`
			Float64Field float64  `default:"3.14"`
			SliceField   []string `default:"a,b,c"`
			NoDefault    string
		}

		test := &TestStruct{}
		ApplyDefaults(test)

		if test.StringField != "test-string" {
			t.Errorf("Expected string field 'test-string', got %q", test.StringField)
		}
		if !test.BoolField {
			t.Error("Expected bool field to be true")
		}
		if test.IntField != 42 {
			t.Errorf("Expected int field 42, got %d", test.IntField)
		}
		if test.Float64Field != 3.14 {
			t.Errorf("Expected float64 field 3.14, got %f", test.Float64Field)
		}
		if !reflect.DeepEqual(test.SliceField, []string{"a", "b", "c"}) {
			t.Errorf("Expected slice [a b c], got %v", test.SliceField)
		}
		if test.NoDefault != "" {
			t.Errorf("Expected no default field to be empty, got %q", test.NoDefault)
		}
	})

	t.Run("Invalid default values", func(t *testing.T) {
		type InvalidStruct struct {
			BadBool bool `default:"not-a-bool"`
			BadInt  int  `default:"not-an-int"`
		}

		test := &InvalidStruct{}
		applyDefaults(test)

		if test.BadBool {
			t.Error("Expected invalid bool default to remain false")
		}
		if test.BadInt != 0 {
			t.Errorf("Expected invalid int default to remain 0, got %d", test.BadInt)
		}
	})

	t.Run("Non-struct input", func(t *testing.T) {
		stringVar := "test"
		applyDefaults(&stringVar)
		applyDefaults(stringVar)
		applyDefaults(42)
		applyDefaults(nil)
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	SetLogger(zerolog.Nop())

	t.Run("Load non-existent config file", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("Expected no error for non-existent config file, got %v", err)
		}
		if AppConfig != config {
			t.Error("Expected AppConfig to hold the loaded config")
		}
		if config.Storage.Backend != StorageSQLite {
			t.Errorf("Expected default storage backend, got %q", config.Storage.Backend)
		}
	})

	t.Run("Load valid config file", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		path := writeConfig(t, `
server:
  port: "9000"
storage:
  backend: redis
  compression: gzip
  redis:
    addr: redis:6379
gallery:
  backend: s3
  s3:
    bucket: newsletter-images
    public_url: https://images.example.com
editor:
  export_timeout_seconds: 5
`)

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if config.Server.Port != "9000" {
			t.Errorf("Expected port '9000', got %q", config.Server.Port)
		}
		if config.Server.Host != "0.0.0.0" {
			t.Errorf("Expected default host to survive partial file, got %q", config.Server.Host)
		}
		if config.Storage.Backend != StorageRedis || config.Storage.Compression != CompressionGzip {
			t.Errorf("Unexpected storage config %+v", config.Storage)
		}
		if config.Storage.Redis.Addr != "redis:6379" {
			t.Errorf("Expected redis addr 'redis:6379', got %q", config.Storage.Redis.Addr)
		}
		if config.Storage.Redis.Prefix != "campaign-editor:campaign:" {
			t.Errorf("Expected default redis prefix, got %q", config.Storage.Redis.Prefix)
		}
		if config.Gallery.S3.Bucket != "newsletter-images" {
			t.Errorf("Expected bucket 'newsletter-images', got %q", config.Gallery.S3.Bucket)
		}
		if config.Editor.ExportTimeout() != 5*time.Second {
			t.Errorf("Expected export timeout 5s, got %v", config.Editor.ExportTimeout())
		}
	})

	t.Run("Load invalid YAML", func(t *testing.T) {
		path := writeConfig(t, "server: [unclosed")

		if _, err := LoadConfig(path); err == nil {
			t.Error("Expected error for invalid YAML")
		} else if !strings.Contains(err.Error(), "failed to parse config file") {
			t.Errorf("Expected parse error, got %v", err)
		}
	})

	t.Run("Load config that fails validation", func(t *testing.T) {
		path := writeConfig(t, "storage:\n  backend: postgres\n")

		_, err := LoadConfig(path)
		if err == nil || !strings.Contains(err.Error(), "postgres") {
			t.Errorf("Expected unsupported backend error, got %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		applyDefaults(c)
		return c
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown compression", func(c *Config) { c.Storage.Compression = "lz4" }, "compression"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "log format"},
		{"unknown gallery", func(c *Config) { c.Gallery.Backend = "ftp" }, "gallery backend"},
		{"zero export timeout", func(c *Config) { c.Editor.ExportTimeoutSeconds = 0 }, "export_timeout_seconds"},
		{"negative legacy timeout", func(c *Config) { c.Gallery.Legacy.TimeoutSeconds = -1 }, "timeout_seconds"},
		{"zero page size", func(c *Config) { c.Gallery.S3.PageSize = 0 }, "page_size"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)

			err := c.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSecretsFromEnv(t *testing.T) {
	t.Setenv(EnvS3AccessKeyID, "key")
	t.Setenv(EnvS3AccessKeySecret, "secret")
	t.Setenv(EnvRedisPassword, "hunter2")
	t.Setenv(EnvLegacySession, "cookie")

	s := SecretsFromEnv()
	if s.S3AccessKeyID != "key" || s.S3AccessKeySecret != "secret" {
		t.Errorf("Unexpected S3 secrets %+v", s)
	}
	if s.RedisPassword != "hunter2" {
		t.Errorf("Expected redis password, got %q", s.RedisPassword)
	}
	if s.LegacySession != "cookie" {
		t.Errorf("Expected legacy session, got %q", s.LegacySession)
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	if got := ConfigPath(); got != DefaultConfigPath {
		t.Errorf("Expected %q, got %q", DefaultConfigPath, got)
	}

	t.Setenv(EnvConfigPath, "/etc/campaign-editor.yaml")
	if got := ConfigPath(); got != "/etc/campaign-editor.yaml" {
		t.Errorf("Expected env override, got %q", got)
	}
}
