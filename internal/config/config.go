package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AWS      AWSConfig      `yaml:"aws"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	APNs     APNsConfig     `yaml:"apns"`
	Stats    StatsConfig    `yaml:"stats"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

// AWSConfig holds object storage configuration for media uploads
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`   // S3-compatible providers
	PublicURL string `yaml:"public_url"` // base URL of uploaded objects
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// RedisConfig holds the analytics cache configuration. Empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// APNsConfig holds push notification configuration. Empty CertFile disables it.
type APNsConfig struct {
	CertFile   string `yaml:"cert_file"`
	CertPass   string `yaml:"cert_password"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// StatsConfig holds analytics configuration
type StatsConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Default returns the configuration used when no file overrides a value
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "crimewatch",
			DBName:   "crimewatch",
			SSLMode:  "disable",
			MaxConns: 10,
		},
		AWS:   AWSConfig{Region: "us-east-1"},
		JWT:   JWTConfig{TTL: 30 * 24 * time.Hour},
		Log:   LogConfig{Level: "info"},
		Stats: StatsConfig{CacheTTL: time.Minute},
	}
}

// Load reads configuration from a YAML file, then applies .env and environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// .env is optional, real environment wins over it
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setString("CRIMEWATCH_DB_HOST", &c.Database.Host)
	setString("CRIMEWATCH_DB_USER", &c.Database.User)
	setString("CRIMEWATCH_DB_PASSWORD", &c.Database.Password)
	setString("CRIMEWATCH_DB_NAME", &c.Database.DBName)
	setString("CRIMEWATCH_JWT_SECRET", &c.JWT.Secret)
	setString("CRIMEWATCH_AWS_ACCESS_KEY", &c.AWS.AccessKey)
	setString("CRIMEWATCH_AWS_SECRET_KEY", &c.AWS.SecretKey)
	setString("CRIMEWATCH_REDIS_ADDR", &c.Redis.Addr)
	setString("CRIMEWATCH_REDIS_PASSWORD", &c.Redis.Password)
	setString("CRIMEWATCH_LOG_LEVEL", &c.Log.Level)

	if v, ok := os.LookupEnv("CRIMEWATCH_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CRIMEWATCH_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks that the configuration can start the server
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("database.host and database.dbname are required")
	}
	if len(c.JWT.Secret) < 16 {
		return fmt.Errorf("jwt.secret must be at least 16 characters")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt.ttl must be positive")
	}
	if c.APNs.CertFile != "" && c.APNs.Topic == "" {
		return fmt.Errorf("apns.topic is required when apns.cert_file is set")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
