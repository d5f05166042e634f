package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// HTTP server
	ListenAddr string

	// Redis configuration (estimation store + resolved product stream)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration (provider rate-limit blocking)
	MemcacheAddr string

	// Extraction provider configuration
	BrowserAddr      string
	BrowserTimeout   time.Duration
	AIExtractURL     string
	AIExtractAPIKey  string
	AIExtractTimeout time.Duration
	SelectorTimeout  time.Duration
	BarcodeAPIURL    string
	BarcodeAPIKey    string
	BarcodeTimeout   time.Duration

	// Batch coordinator
	BatchGroupSize int
	BatchPause     time.Duration
	MaxBatchSize   int

	// Estimation store tuning
	CacheMaxAge        time.Duration
	CacheConfidence    float64
	ConfidenceFloor    float64
	MinRetailerSamples int
	MinCategorySamples int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	groupSize, _ := strconv.Atoi(getEnv("BATCH_GROUP_SIZE", "3"))
	batchPauseMs, _ := strconv.Atoi(getEnv("BATCH_PAUSE_MS", "2000"))
	maxBatch, _ := strconv.Atoi(getEnv("MAX_BATCH_SIZE", "20"))
	cacheMaxAgeDays, _ := strconv.Atoi(getEnv("CACHE_MAX_AGE_DAYS", "7"))
	minRetailerSamples, _ := strconv.Atoi(getEnv("MIN_RETAILER_SAMPLES", "3"))
	minCategorySamples, _ := strconv.Atoi(getEnv("MIN_CATEGORY_SAMPLES", "5"))

	return &Config{
		ListenAddr:           getEnv("LISTEN_ADDR", ":8080"),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "resolved_products"),
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		BrowserAddr:          getEnv("BROWSER_ADDR", ""),
		BrowserTimeout:       getEnvSeconds("BROWSER_TIMEOUT_SECONDS", 30),
		AIExtractURL:         getEnv("AI_EXTRACT_URL", ""),
		AIExtractAPIKey:      getEnv("AI_EXTRACT_API_KEY", ""),
		AIExtractTimeout:     getEnvSeconds("AI_EXTRACT_TIMEOUT_SECONDS", 20),
		SelectorTimeout:      getEnvSeconds("SELECTOR_TIMEOUT_SECONDS", 15),
		BarcodeAPIURL:        getEnv("BARCODE_API_URL", ""),
		BarcodeAPIKey:        getEnv("BARCODE_API_KEY", ""),
		BarcodeTimeout:       getEnvSeconds("BARCODE_TIMEOUT_SECONDS", 10),
		BatchGroupSize:       groupSize,
		BatchPause:           time.Duration(batchPauseMs) * time.Millisecond,
		MaxBatchSize:         maxBatch,
		CacheMaxAge:          time.Duration(cacheMaxAgeDays) * 24 * time.Hour,
		CacheConfidence:      getEnvFloat("CACHE_CONFIDENCE", 0.8),
		ConfidenceFloor:      getEnvFloat("CONFIDENCE_FLOOR", 0.5),
		MinRetailerSamples:   minRetailerSamples,
		MinCategorySamples:   minCategorySamples,
		Environment:          getEnv("SHIPWORKER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for inconsistent values
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.BatchGroupSize < 1 {
		return fmt.Errorf("batch group size must be at least 1, got %d", c.BatchGroupSize)
	}
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("max batch size must be at least 1, got %d", c.MaxBatchSize)
	}
	if c.CacheConfidence < 0 || c.CacheConfidence > 1 {
		return fmt.Errorf("cache confidence must be in [0,1], got %f", c.CacheConfidence)
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		return fmt.Errorf("confidence floor must be in [0,1], got %f", c.ConfidenceFloor)
	}
	if c.MinRetailerSamples < 0 || c.MinCategorySamples < 0 {
		return fmt.Errorf("sample minimums must not be negative")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvSeconds retrieves an integer environment variable as a duration in seconds
func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		value = defaultSeconds
	}
	return time.Duration(value) * time.Second
}

// getEnvFloat retrieves a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}
