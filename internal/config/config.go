package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
	Gallery GalleryConfig `yaml:"gallery"`
	Editor  EditorConfig  `yaml:"editor"`
	Render  RenderConfig  `yaml:"render"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12600"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"console"`
}

type StorageConfig struct {
	Backend     string      `yaml:"backend" default:"sqlite"`
	SQLitePath  string      `yaml:"sqlite_path" default:"./campaigns.db"`
	Compression string      `yaml:"compression" default:"zstd"`
	Redis       RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr   string `yaml:"addr" default:"localhost:6379"`
	DB     int    `yaml:"db" default:"0"`
	Prefix string `yaml:"prefix" default:"campaign-editor:campaign:"`
}

type GalleryConfig struct {
	Backend string              `yaml:"backend" default:"legacy"`
	Legacy  LegacyGalleryConfig `yaml:"legacy"`
	S3      S3GalleryConfig     `yaml:"s3"`
}

type LegacyGalleryConfig struct {
	BaseURL        string `yaml:"base_url" default:"http://localhost:8080"`
	TimeoutSeconds int    `yaml:"timeout_seconds" default:"30"`
}

type S3GalleryConfig struct {
	Bucket    string `yaml:"bucket" default:"campaign-images"`
	Endpoint  string `yaml:"endpoint" default:""`
	PublicURL string `yaml:"public_url" default:""`
	Region    string `yaml:"region" default:"auto"`
	PageSize  int    `yaml:"page_size" default:"50"`
}

type EditorConfig struct {
	ExportTimeoutSeconds int    `yaml:"export_timeout_seconds" default:"30"`
	DefaultCampaignName  string `yaml:"default_campaign_name" default:"Untitled campaign"`
}

type RenderConfig struct {
	SourceStyle string `yaml:"source_style" default:"gruvbox"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

func (e EditorConfig) ExportTimeout() time.Duration {
	return time.Duration(e.ExportTimeoutSeconds) * time.Second
}

func (l LegacyGalleryConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

var AppConfig *Config

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		AppConfig = config
		return config, nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	AppConfig = config
	return config, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageSQLite, StorageRedis:
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}

	switch c.Storage.Compression {
	case CompressionZstd, CompressionGzip:
	default:
		return fmt.Errorf("unsupported compression %q", c.Storage.Compression)
	}

	switch c.Logging.Format {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("unsupported log format %q", c.Logging.Format)
	}

	switch c.Gallery.Backend {
	case GalleryLegacy, GalleryS3:
	default:
		return fmt.Errorf("unsupported gallery backend %q", c.Gallery.Backend)
	}

	if c.Editor.ExportTimeoutSeconds <= 0 {
		return fmt.Errorf("editor.export_timeout_seconds must be positive, got %d", c.Editor.ExportTimeoutSeconds)
	}
	if c.Gallery.Legacy.TimeoutSeconds <= 0 {
		return fmt.Errorf("gallery.legacy.timeout_seconds must be positive, got %d", c.Gallery.Legacy.TimeoutSeconds)
	}
	if c.Gallery.S3.PageSize <= 0 {
		return fmt.Errorf("gallery.s3.page_size must be positive, got %d", c.Gallery.S3.PageSize)
	}

	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
