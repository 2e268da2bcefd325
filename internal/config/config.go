package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultStorageKey is the slot the roster blob lives under.
const DefaultStorageKey = "students.v1"

type Config struct {
	ServerPort     string   `yaml:"server_port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	LogLevel       string   `yaml:"log_level"`
	Storage        Storage  `yaml:"storage"`
}

// Storage selects and configures the blob driver holding the roster.
type Storage struct {
	Driver string `yaml:"driver"` // memory, file, sqlite, postgres, redis, s3
	Key    string `yaml:"key"`

	FileDir    string `yaml:"file_dir"`
	SQLitePath string `yaml:"sqlite_path"`

	DBHost     string `yaml:"db_host"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBPort     string `yaml:"db_port"`
	DBSSLMode  string `yaml:"db_sslmode"`

	RedisURL string `yaml:"redis_url"`

	S3Bucket    string `yaml:"s3_bucket"`
	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

func defaults() *Config {
	return &Config{
		ServerPort:     "8080",
		AllowedOrigins: []string{"http://localhost:3000"},
		LogLevel:       "info",
		Storage: Storage{
			Driver:     "file",
			Key:        DefaultStorageKey,
			FileDir:    "data",
			SQLitePath: "roster.db",
			DBHost:     "localhost",
			DBPort:     "5432",
			DBName:     "roster",
			DBSSLMode:  "disable",
			S3Region:   "us-east-1",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then a .env file in the working directory, then ROSTER_* and DB_*
// environment variables.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = getEnv("ROSTER_PORT", cfg.ServerPort)
	cfg.LogLevel = getEnv("ROSTER_LOG_LEVEL", cfg.LogLevel)
	if v, ok := os.LookupEnv("ROSTER_ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = splitList(v)
	}

	s := &cfg.Storage
	s.Driver = getEnv("ROSTER_STORAGE_DRIVER", s.Driver)
	s.Key = getEnv("ROSTER_STORAGE_KEY", s.Key)
	s.FileDir = getEnv("ROSTER_FILE_DIR", s.FileDir)
	s.SQLitePath = getEnv("ROSTER_SQLITE_PATH", s.SQLitePath)

	s.DBHost = getEnv("DB_HOST", s.DBHost)
	s.DBUser = getEnv("DB_USER", s.DBUser)
	s.DBPassword = getEnv("DB_PASSWORD", s.DBPassword)
	s.DBName = getEnv("DB_NAME", s.DBName)
	s.DBPort = getEnv("DB_PORT", s.DBPort)
	s.DBSSLMode = getEnv("DB_SSLMODE", s.DBSSLMode)

	s.RedisURL = getEnv("ROSTER_REDIS_URL", s.RedisURL)

	s.S3Bucket = getEnv("ROSTER_S3_BUCKET", s.S3Bucket)
	s.S3Region = getEnv("ROSTER_S3_REGION", s.S3Region)
	s.S3Endpoint = getEnv("ROSTER_S3_ENDPOINT", s.S3Endpoint)
	s.S3PathStyle = getEnvAsBool("ROSTER_S3_PATH_STYLE", s.S3PathStyle)
}

// Validate checks the fields the selected driver depends on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage key must not be empty")
	}
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres":
	case "file":
		if c.Storage.FileDir == "" {
			return errors.New("file driver requires ROSTER_FILE_DIR")
		}
	case "redis":
		if c.Storage.RedisURL == "" {
			return errors.New("redis driver requires ROSTER_REDIS_URL")
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return errors.New("s3 driver requires ROSTER_S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// PostgresDSN formats the connection string the same way for every caller.
func (s Storage) PostgresDSN() string {
	return "host=" + s.DBHost + " user=" + s.DBUser + " password=" + s.DBPassword +
		" dbname=" + s.DBName + " port=" + s.DBPort + " sslmode=" + s.DBSSLMode
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
