package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the service-level configuration (database, redis, worker,
// storage). Per-import parameters live in the importer package.
type Config struct {
	// Environment
	Environment string

	// Database configuration
	Database DatabaseConfig

	// Redis configuration (cache and task queue)
	Redis RedisConfig

	// Worker configuration
	WorkerConcurrency int
	WorkerQueues      map[string]int

	// Dataset storage
	StorageBasePath string
	MaxFileSizeMB   int64
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	LogLevel        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // minutes
	MaxConnIdleTime int // minutes
}

// RedisConfig holds Redis connection settings shared by cache and queue
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	DialTimeout  int // seconds
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	PoolSize     int
	MinIdleConns int
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using environment variables only")
		}
	}

	viper.SetDefault("ENV", "development")

	// Database defaults
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_NAME", "repertoireimport")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_LOG_LEVEL", "silent")
	viper.SetDefault("DB_MAX_CONNECTIONS", 20)
	viper.SetDefault("DB_MIN_CONNECTIONS", 2)
	viper.SetDefault("DB_MAX_CONN_LIFETIME_MINUTES", 30)
	viper.SetDefault("DB_MAX_CONN_IDLE_MINUTES", 5)

	// Redis defaults
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_DIAL_TIMEOUT_SECONDS", 5)
	viper.SetDefault("REDIS_READ_TIMEOUT_SECONDS", 3)
	viper.SetDefault("REDIS_WRITE_TIMEOUT_SECONDS", 3)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 2)

	// Worker defaults
	viper.SetDefault("WORKER_CONCURRENCY", 10)

	// Storage defaults
	viper.SetDefault("STORAGE_BASE_PATH", "/tmp/repertoire-datasets")
	viper.SetDefault("MAX_FILE_SIZE_MB", 500)

	viper.AutomaticEnv()

	config := &Config{
		Environment: viper.GetString("ENV"),
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			LogLevel:        viper.GetString("DB_LOG_LEVEL"),
			MaxConnections:  viper.GetInt("DB_MAX_CONNECTIONS"),
			MinConnections:  viper.GetInt("DB_MIN_CONNECTIONS"),
			MaxConnLifetime: viper.GetInt("DB_MAX_CONN_LIFETIME_MINUTES"),
			MaxConnIdleTime: viper.GetInt("DB_MAX_CONN_IDLE_MINUTES"),
		},
		Redis: RedisConfig{
			Host:         viper.GetString("REDIS_HOST"),
			Port:         viper.GetInt("REDIS_PORT"),
			Password:     viper.GetString("REDIS_PASSWORD"),
			DB:           viper.GetInt("REDIS_DB"),
			DialTimeout:  viper.GetInt("REDIS_DIAL_TIMEOUT_SECONDS"),
			ReadTimeout:  viper.GetInt("REDIS_READ_TIMEOUT_SECONDS"),
			WriteTimeout: viper.GetInt("REDIS_WRITE_TIMEOUT_SECONDS"),
			PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
		},
		WorkerConcurrency: viper.GetInt("WORKER_CONCURRENCY"),
		WorkerQueues: map[string]int{
			"critical": 6,
			"high":     3,
			"default":  1,
		},
		StorageBasePath: viper.GetString("STORAGE_BASE_PATH"),
		MaxFileSizeMB:   viper.GetInt64("MAX_FILE_SIZE_MB"),
	}

	// Validate required fields
	if config.Database.User == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if config.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	return config, nil
}

// GetRedisURL constructs the Redis address
func (c *Config) GetRedisURL() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LogConfig logs the configuration (hiding sensitive data)
func (c *Config) LogConfig() {
	log.Printf("Configuration loaded:")
	log.Printf("  Environment: %s", c.Environment)
	log.Printf("  Database: %s:%d/%s", c.Database.Host, c.Database.Port, c.Database.Database)
	log.Printf("  Redis: %s:%d (DB: %d)", c.Redis.Host, c.Redis.Port, c.Redis.DB)
	log.Printf("  Worker Concurrency: %d", c.WorkerConcurrency)
	log.Printf("  Storage: %s", c.StorageBasePath)
}
