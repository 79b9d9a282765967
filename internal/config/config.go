package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Environment    string
	Storage        string
	DBDSN          string
	TelegramToken  string
	MigrationsPath string

	Location  *time.Location
	WeekStart time.Weekday

	BatchInterval   time.Duration
	BatchWorkers    int
	BatchMaxRetries uint64

	StaffBackfillWindow   time.Duration
	StaffBackfillCanceled bool
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("ENV", "development")
	v.SetDefault("STORAGE", StoragePostgres)
	v.SetDefault("DB_DSN", "")
	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("MIGRATIONS_PATH", "migrations")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("WEEK_START", "MONDAY")
	v.SetDefault("BATCH_INTERVAL", 24*time.Hour)
	v.SetDefault("BATCH_WORKERS", 4)
	v.SetDefault("BATCH_MAX_RETRIES", 3)
	v.SetDefault("ENROLLMENT_STAFF_BACKFILL_WINDOW", 7*24*time.Hour)
	v.SetDefault("ENROLLMENT_STAFF_BACKFILL_CANCELED", true)

	v.AutomaticEnv()
	return v
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return fromViper(newViper())
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment:           v.GetString("ENV"),
		Storage:               strings.ToLower(v.GetString("STORAGE")),
		DBDSN:                 v.GetString("DB_DSN"),
		TelegramToken:         v.GetString("TELEGRAM_TOKEN"),
		MigrationsPath:        v.GetString("MIGRATIONS_PATH"),
		BatchInterval:         v.GetDuration("BATCH_INTERVAL"),
		BatchWorkers:          v.GetInt("BATCH_WORKERS"),
		BatchMaxRetries:       v.GetUint64("BATCH_MAX_RETRIES"),
		StaffBackfillWindow:   v.GetDuration("ENROLLMENT_STAFF_BACKFILL_WINDOW"),
		StaffBackfillCanceled: v.GetBool("ENROLLMENT_STAFF_BACKFILL_CANCELED"),
	}

	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	cfg.Location = loc

	cfg.WeekStart, err = schedule.ParseWeekday(v.GetString("WEEK_START"))
	if err != nil {
		return nil, fmt.Errorf("parse WEEK_START: %w", err)
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}

	if cfg.BatchInterval <= 0 {
		return nil, fmt.Errorf("BATCH_INTERVAL must be positive, got %s", cfg.BatchInterval)
	}
	if cfg.BatchWorkers <= 0 {
		return nil, fmt.Errorf("BATCH_WORKERS must be positive, got %d", cfg.BatchWorkers)
	}

	return cfg, nil
}

// WeekPolicy неделя платформы по WEEK_START
func (c *Config) WeekPolicy() schedule.WeekPolicy {
	return schedule.WeekPolicy{Start: c.WeekStart}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
