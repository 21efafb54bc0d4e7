// Package config loads all application settings from the environment into one
// explicit structure that is passed into the pipeline entry points.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// SheetConfig locates the curated spreadsheet and names the columns the
// pipelines operate on.
type SheetConfig struct {
	InputPath   string
	SheetName   string // empty means first worksheet
	AddressCol  string
	CategoryCol string
	OutputPath  string
}

// GeocodeConfig controls the rate-limited Nominatim lookups and the on-disk
// address cache.
type GeocodeConfig struct {
	BaseURL     string
	UserAgent   string
	CachePath   string
	MinDelay    time.Duration
	MaxRetries  int
	HTTPTimeout time.Duration
}

// StorageConfig points at an optional object-storage bucket holding the
// curated workbook. All fields empty disables the storage layer.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether object storage has been configured.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// NotifyConfig points at an optional Kafka broker that receives a
// dataset-refresh event after a successful prepare run.
type NotifyConfig struct {
	Broker string
	Topic  string
}

// Enabled reports whether event publishing has been configured.
func (n NotifyConfig) Enabled() bool {
	return n.Broker != "" && n.Topic != ""
}

// Config is the root configuration for both binaries.
type Config struct {
	ServerAddr string

	RunGeocoding bool
	RunRecat     bool

	Sheet   SheetConfig
	Geocode GeocodeConfig
	Storage StorageConfig
	Notify  NotifyConfig
}

// Load reads configuration from the environment, tolerating a missing .env
// file.
func Load() *Config {
	_ = godotenv.Load()

	input := getEnv("INPUT_PATH", "input_data/resources.xlsx")
	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		RunGeocoding: getEnvBool("RUN_GEOCODING", true),
		RunRecat:     getEnvBool("RUN_RECAT", true),
		Sheet: SheetConfig{
			InputPath:   input,
			SheetName:   getEnv("SHEET_NAME", ""),
			AddressCol:  getEnv("ADDRESS_COL", "Address"),
			CategoryCol: getEnv("CATEGORY_COL", "Cateogry of Help"),
			OutputPath:  getEnv("OUTPUT_PATH", withSuffix(input, "_geocoded")),
		},
		Geocode: GeocodeConfig{
			BaseURL:     getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
			UserAgent:   getEnv("GEOCODER_USER_AGENT", "resourcemap-geocoder/1.0"),
			CachePath:   getEnv("CACHE_PATH", withExt(input, "_geocache.csv")),
			MinDelay:    time.Duration(getEnvInt("GEOCODER_MIN_DELAY_MS", 1200)) * time.Millisecond,
			MaxRetries:  getEnvInt("GEOCODER_MAX_RETRIES", 3),
			HTTPTimeout: time.Duration(getEnvInt("GEOCODER_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("RESOURCE_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Notify: NotifyConfig{
			Broker: getEnv("KAFKA_BROKER", ""),
			Topic:  getEnv("KAFKA_TOPIC", ""),
		},
	}
}

// withSuffix inserts suffix before the file extension of path.
func withSuffix(path, suffix string) string {
	ext := ""
	base := path
	if i := lastDot(path); i >= 0 {
		base, ext = path[:i], path[i:]
	}
	return base + suffix + ext
}

// withExt replaces the file extension of path with repl.
func withExt(path, repl string) string {
	base := path
	if i := lastDot(path); i >= 0 {
		base = path[:i]
	}
	return base + repl
}

func lastDot(path string) int {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return i
		case '/', '\\':
			return -1
		}
	}
	return -1
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}
