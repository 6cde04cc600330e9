package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/fastygo/taskpulse/domain"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string `validate:"required"`
	Environment string `validate:"required"`
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Outbox      OutboxConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
	Scheduler   SchedulerConfig
	Reminder    ReminderConfig
	Digest      DigestConfig
	Board       BoardConfig
	Notifier    NotifierConfig
}

type HTTPConfig struct {
	Host         string
	Port         string `validate:"required,numeric"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string `validate:"required"`
	User            string
	Password        string
	MaxOpenConns    int `validate:"gte=0"`
	MaxIdleConns    int `validate:"gte=0"`
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL          string `validate:"required"`
	Password     string
	DB           int
	BoardListTTL time.Duration
}

type JWTConfig struct {
	Secret string
	Issuer string
}

// OutboxConfig controls the bbolt store holding audit comments that could not reach the board.
type OutboxConfig struct {
	Path          string `validate:"required"`
	FlushInterval time.Duration
	BatchSize     int `validate:"gte=0"`
	MaxRetry      int `validate:"gte=0"`
	Retention     time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string `validate:"oneof=debug info warn error dpanic panic fatal"`
	Encoding string `validate:"oneof=json console"`
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// SchedulerConfig holds job triggers. Times of day are "HH:MM" in Timezone.
type SchedulerConfig struct {
	Timezone        string        `validate:"required"`
	SweepInterval   time.Duration `validate:"gt=0"`
	MorningAt       string        `validate:"required"`
	EveningAt       string        `validate:"required"`
	CleanupAt       string        `validate:"required"`
	JobTimeout      time.Duration
	DistributedLock bool
}

type ReminderConfig struct {
	Windows       string        `validate:"required"`
	OverdueRepeat time.Duration `validate:"gt=0"`
	Retention     time.Duration `validate:"gt=0"`
}

type DigestConfig struct {
	ItemCap int `validate:"gt=0"`
}

type BoardConfig struct {
	BaseURL        string `validate:"required,url"`
	Token          string
	DefaultBoardID string
	Timeout        time.Duration `validate:"gt=0"`
	MaxRetries     int           `validate:"gte=0,lte=10"`
}

type NotifierConfig struct {
	BaseURL    string `validate:"required,url"`
	Token      string
	Timeout    time.Duration `validate:"gt=0"`
	MaxRetries int           `validate:"gte=0,lte=10"`
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "taskpulse"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "taskpulse"),
			User:            getString("DB_USER", "taskpulse"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 2),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:          getString("REDIS_URL", "redis://localhost:6379"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           getInt("REDIS_DB", 0),
			BoardListTTL: getDuration("BOARD_LIST_CACHE_TTL", 10*time.Minute),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", "taskpulse"),
		},
		Outbox: OutboxConfig{
			Path:          getString("OUTBOX_PATH", "./data/outbox.db"),
			FlushInterval: getDuration("OUTBOX_FLUSH_INTERVAL", time.Minute),
			BatchSize:     getInt("OUTBOX_BATCH_SIZE", 50),
			MaxRetry:      getInt("OUTBOX_MAX_RETRY", 5),
			Retention:     getDuration("OUTBOX_RETENTION", 72*time.Hour),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 15*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 30*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
		Scheduler: SchedulerConfig{
			Timezone:        getString("SCHEDULER_TZ", "UTC"),
			SweepInterval:   getDuration("SWEEP_INTERVAL", 5*time.Minute),
			MorningAt:       getString("DIGEST_MORNING_AT", "09:00"),
			EveningAt:       getString("DIGEST_EVENING_AT", "18:00"),
			CleanupAt:       getString("CLEANUP_AT", "03:00"),
			JobTimeout:      getDuration("JOB_TIMEOUT", 4*time.Minute),
			DistributedLock: getBool("JOB_DISTRIBUTED_LOCK", true),
		},
		Reminder: ReminderConfig{
			Windows:       getString("REMINDER_WINDOWS", "24h,6h,2h"),
			OverdueRepeat: getDuration("OVERDUE_REPEAT", 24*time.Hour),
			Retention:     getDuration("REMINDER_RETENTION", 30*24*time.Hour),
		},
		Digest: DigestConfig{
			ItemCap: getInt("DIGEST_ITEM_CAP", 5),
		},
		Board: BoardConfig{
			BaseURL:        getString("BOARD_BASE_URL", "http://localhost:3000"),
			Token:          os.Getenv("BOARD_TOKEN"),
			DefaultBoardID: os.Getenv("BOARD_ID"),
			Timeout:        getDuration("BOARD_TIMEOUT", 10*time.Second),
			MaxRetries:     getInt("BOARD_MAX_RETRIES", 3),
		},
		Notifier: NotifierConfig{
			BaseURL:    getString("NOTIFIER_BASE_URL", "https://api.telegram.org"),
			Token:      os.Getenv("NOTIFIER_TOKEN"),
			Timeout:    getDuration("NOTIFIER_TIMEOUT", 10*time.Second),
			MaxRetries: getInt("NOTIFIER_MAX_RETRIES", 3),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks struct constraints plus the values that need parsing.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: SCHEDULER_TZ: %w", err)
	}
	if _, err := c.ReminderWindows(); err != nil {
		return fmt.Errorf("invalid config: REMINDER_WINDOWS: %w", err)
	}
	for name, value := range map[string]string{
		"DIGEST_MORNING_AT": c.Scheduler.MorningAt,
		"DIGEST_EVENING_AT": c.Scheduler.EveningAt,
		"CLEANUP_AT":        c.Scheduler.CleanupAt,
	} {
		if _, _, err := ParseClock(value); err != nil {
			return fmt.Errorf("invalid config: %s: %w", name, err)
		}
	}
	return nil
}

// Location resolves the scheduler timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Scheduler.Timezone)
}

// ReminderWindows parses the configured window list in ascending lead order.
func (c *Config) ReminderWindows() ([]domain.ReminderWindow, error) {
	return domain.ParseWindows(c.Reminder.Windows)
}

// ParseClock reads "HH:MM" into hour and minute.
func ParseClock(value string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
