package config

import "time"

// Worker intervals and engine tuning constants.
const (
	// RedisBackupInterval defines how often dirty observations are saved to Redis
	RedisBackupInterval = 10 * time.Second

	// PostgresBackupInterval defines how often observations are saved to PostgreSQL
	PostgresBackupInterval = 60 * time.Second

	// FeatureCacheTTL is how long cached upstream feature payloads stay in Redis
	FeatureCacheTTL = 6 * time.Hour

	// FetchTimeout bounds every external feature-source call
	FetchTimeout = 8 * time.Second

	// FetchMaxRetries bounds the exponential-backoff retry loop at the
	// external-data-fetch boundary
	FetchMaxRetries = 4

	// DefaultGridSize is the per-axis cell count of a feature grid
	DefaultGridSize = 30

	// DefaultSearchRadiusM is the neighborhood radius scanned for
	// alternative sites
	DefaultSearchRadiusM = 800.0

	// MaxFetchConcurrency bounds parallel batch fetches to the external
	// feature sources
	MaxFetchConcurrency = 4
)
