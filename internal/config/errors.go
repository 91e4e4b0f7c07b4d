package config

const (
	// Database errors
	ErrInitializeDatabaseFmt = "failed to initialize database: %w"

	// Storage errors
	ErrCreateRepositoryFmt = "failed to create campaign repository: %w"
	ErrCreateGalleryFmt    = "failed to create image gallery: %w"

	// Config errors
	ErrLoadConfigFmt         = "Failed to load config: %v"
	ErrWriteConfigContentFmt = "failed to write config content: %w"
)
