package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds application configuration
type Config struct {
	Port     string
	LogLevel string

	DBDriver    string // postgres | sqlite
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	SQLitePath  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TokenSecret string
	TokenTTL    time.Duration

	HomeCurrency    string
	InitialCash     decimal.Decimal
	FallbackUSDRate decimal.Decimal
	MarketTimeout   time.Duration
	YahooChartURL   string
	YahooSearchURL  string
}

// Load reads configuration from the environment, after loading .env if it
// exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warnln(".env file not found, using system environment variables")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getEnv("DB_NAME", "portfolio"),
		DBPort:      getEnv("DB_PORT", "5432"),
		SQLitePath:  getEnv("SQLITE_PATH", "portfolio.db"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		TokenSecret: getEnv("TOKEN_SECRET", "defaultSecret"),
		TokenTTL:    getEnvDuration("TOKEN_TTL", 365*24*time.Hour),

		HomeCurrency:    strings.ToUpper(getEnv("HOME_CURRENCY", "KRW")),
		InitialCash:     getEnvDecimal("INITIAL_CASH", decimal.NewFromInt(10_000_000)),
		FallbackUSDRate: getEnvDecimal("FALLBACK_USD_RATE", decimal.NewFromInt(1380)),
		MarketTimeout:   getEnvDuration("MARKET_TIMEOUT", 8*time.Second),
		YahooChartURL:   os.Getenv("YAHOO_CHART_URL"),
		YahooSearchURL:  os.Getenv("YAHOO_SEARCH_URL"),
	}

	if cfg.TokenSecret == "defaultSecret" {
		log.Warnln("using default TOKEN_SECRET, set it in your environment")
	}
	return cfg
}

// InitLogger configures the global logrus logger.
func InitLogger(cfg *Config) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warnln("unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Seoul",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// InitDB opens the configured database and sizes its connection pool.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// InitRedis connects to Redis. It returns a nil client when REDIS_ADDR is
// not set.
func InitRedis(cfg *Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return rdb, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.WithFields(log.Fields{"key": key, "error": err}).Warnln("invalid integer, using default")
		return defaultValue
	}
	return intValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		log.WithFields(log.Fields{"key": key, "error": err}).Warnln("invalid decimal, using default")
		return defaultValue
	}
	return d
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.WithFields(log.Fields{"key": key, "error": err}).Warnln("invalid duration, using default")
		return defaultValue
	}
	return d
}
