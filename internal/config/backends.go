package config

const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"

	CompressionZstd = "zstd"
	CompressionGzip = "gzip"

	GalleryLegacy = "legacy"
	GalleryS3     = "s3"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)
