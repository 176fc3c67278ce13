package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores service settings.
type Config struct {
	Port      int
	DB        DB
	Auth      Auth
	S3        S3
	Kafka     Kafka
	Relay     Relay
	RateLimit RateLimit
	Features  Features
	Debug     Debug
}

// DB holds PostgreSQL connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a postgres connection URL.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Auth holds signing secrets and token lifetimes.
type Auth struct {
	AccessSecret  string
	RefreshSecret string
	SessionSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SessionTTL    time.Duration
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
}

// S3 holds object store settings.
type S3 struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// Kafka holds broker settings.
type Kafka struct {
	Brokers            []string
	NotificationsTopic string
	GroupID            string
}

// Relay controls the outbox relay loop.
type Relay struct {
	Interval  time.Duration
	BatchSize int
}

// RateLimit controls the per-client limiter on auth endpoints.
type RateLimit struct {
	Enabled bool
	RPS     float64
	Burst   int
	TTL     time.Duration
}

// Debug controls the pprof listener. An empty Addr disables it.
type Debug struct {
	Addr string
	User string
	Pass string
}

// Features holds behavior switches.
type Features struct {
	RequireAvailableDrivers bool
	LegacyBidErrors         bool
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:      defaultPort,
		DB:        DefaultDB(),
		Auth:      DefaultAuth(),
		Kafka:     DefaultKafka(),
		Relay:     DefaultRelay(),
		RateLimit: DefaultRateLimit(),
	}

	var err error
	if cfg.Port, err = envInt("PORT", cfg.Port); err != nil {
		return nil, err
	}

	cfg.DB.Host = envString("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = envString("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = envString("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Pass = envString("POSTGRES_PASSWORD", cfg.DB.Pass)
	cfg.DB.Name = envString("POSTGRES_DB", cfg.DB.Name)
	if _, err := strconv.Atoi(cfg.DB.Port); err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_PORT %q: %w", cfg.DB.Port, err)
	}

	cfg.Auth.AccessSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	cfg.Auth.RefreshSecret = os.Getenv("REFRESH_TOKEN_SECRET")
	cfg.Auth.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.Auth.AccessTTL, err = envDuration("ACCESS_TOKEN_TTL", cfg.Auth.AccessTTL); err != nil {
		return nil, err
	}
	if cfg.Auth.RefreshTTL, err = envDuration("REFRESH_TOKEN_TTL", cfg.Auth.RefreshTTL); err != nil {
		return nil, err
	}
	if cfg.Auth.SessionTTL, err = envDuration("SESSION_TTL", cfg.Auth.SessionTTL); err != nil {
		return nil, err
	}
	if cfg.Auth.SecureCookie, err = envBool("SESSION_COOKIE_SECURE", cfg.Auth.SecureCookie); err != nil {
		return nil, err
	}

	cfg.S3 = S3{
		Bucket:        os.Getenv("S3_BUCKET"),
		Region:        envString("S3_REGION", "us-east-1"),
		Endpoint:      os.Getenv("S3_ENDPOINT"),
		PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	cfg.Kafka.NotificationsTopic = envString("KAFKA_NOTIFICATIONS_TOPIC", cfg.Kafka.NotificationsTopic)
	cfg.Kafka.GroupID = envString("KAFKA_GROUP_ID", cfg.Kafka.GroupID)

	if cfg.Relay.Interval, err = envDuration("RELAY_INTERVAL", cfg.Relay.Interval); err != nil {
		return nil, err
	}
	if cfg.Relay.BatchSize, err = envInt("RELAY_BATCH_SIZE", cfg.Relay.BatchSize); err != nil {
		return nil, err
	}

	if cfg.RateLimit.Enabled, err = envBool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled); err != nil {
		return nil, err
	}
	if cfg.RateLimit.RPS, err = envFloat("RATE_LIMIT_RPS", cfg.RateLimit.RPS); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst, err = envInt("RATE_LIMIT_BURST", cfg.RateLimit.Burst); err != nil {
		return nil, err
	}
	if cfg.RateLimit.TTL, err = envDuration("RATE_LIMIT_TTL", cfg.RateLimit.TTL); err != nil {
		return nil, err
	}

	if cfg.Features.RequireAvailableDrivers, err = envBool("ORDERS_REQUIRE_AVAILABLE_DRIVERS", false); err != nil {
		return nil, err
	}
	if cfg.Features.LegacyBidErrors, err = envBool("BIDS_LEGACY_ERRORS", false); err != nil {
		return nil, err
	}

	cfg.Debug = Debug{
		Addr: os.Getenv("PPROF_ADDR"),
		User: os.Getenv("PPROF_USER"),
		Pass: os.Getenv("PPROF_PASS"),
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Relay.Interval <= 0 {
		return fmt.Errorf("invalid RELAY_INTERVAL: %s", c.Relay.Interval)
	}
	if c.Relay.BatchSize <= 0 {
		return fmt.Errorf("invalid RELAY_BATCH_SIZE: %d", c.Relay.BatchSize)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate limit requires positive RATE_LIMIT_RPS and RATE_LIMIT_BURST")
	}
	return nil
}

// RequireSecrets fails when any signing secret is empty.
func (c *Config) RequireSecrets() error {
	var missing []string
	if c.Auth.AccessSecret == "" {
		missing = append(missing, "ACCESS_TOKEN_SECRET")
	}
	if c.Auth.RefreshSecret == "" {
		missing = append(missing, "REFRESH_TOKEN_SECRET")
	}
	if c.Auth.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing secrets: %s", strings.Join(missing, ", "))
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
