package config

import "os"

// Secrets are read from the environment (or a .env file), never from config.yaml.
const (
	EnvConfigPath        = "CAMPAIGN_EDITOR_CONFIG"
	EnvS3AccessKeyID     = "S3_ACCESS_KEY_ID"
	EnvS3AccessKeySecret = "S3_SECRET_ACCESS_KEY"
	EnvRedisPassword     = "REDIS_PASSWORD"
	EnvLegacySession     = "LEGACY_SESSION_COOKIE"
)

const DefaultConfigPath = "config.yaml"

type Secrets struct {
	S3AccessKeyID     string
	S3AccessKeySecret string
	RedisPassword     string
	LegacySession     string
}

func SecretsFromEnv() Secrets {
	return Secrets{
		S3AccessKeyID:     os.Getenv(EnvS3AccessKeyID),
		S3AccessKeySecret: os.Getenv(EnvS3AccessKeySecret),
		RedisPassword:     os.Getenv(EnvRedisPassword),
		LegacySession:     os.Getenv(EnvLegacySession),
	}
}

// ConfigPath returns the config file location, honoring the environment override.
func ConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath
}
