package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config captures everything the host needs to run the compliance gate.
type Config struct {
	ClientID    string
	ClientToken string
	Host        string
	CacheDir    string
	DeviceID    string
	Lang        string
	SDKVersion  string

	UseAgeRange       bool
	ShowSwitchAccount bool
	TestMode          bool
	HeartbeatInterval time.Duration

	Redis       RedisConfig
	MetricsAddr string
	LogLevel    string
}

// RedisConfig configures the optional Redis document store. An empty URL
// keeps documents on disk.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from PLAYGATE_* variables. An optional .env file
// in the working directory is loaded first; variables already set win.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}

	var errs []error
	cfg := Config{
		ClientID:          os.Getenv("PLAYGATE_CLIENT_ID"),
		ClientToken:       os.Getenv("PLAYGATE_CLIENT_TOKEN"),
		Host:              os.Getenv("PLAYGATE_HOST"),
		CacheDir:          envOr("PLAYGATE_CACHE_DIR", cacheDir),
		DeviceID:          os.Getenv("PLAYGATE_DEVICE_ID"),
		Lang:              os.Getenv("PLAYGATE_LANG"),
		SDKVersion:        os.Getenv("PLAYGATE_SDK_VERSION"),
		UseAgeRange:       envBool("PLAYGATE_USE_AGE_RANGE", true, &errs),
		ShowSwitchAccount: envBool("PLAYGATE_SHOW_SWITCH_ACCOUNT", false, &errs),
		TestMode:          envBool("PLAYGATE_TEST_MODE", false, &errs),
		HeartbeatInterval: envDuration("PLAYGATE_HEARTBEAT_INTERVAL", 2*time.Minute, &errs),
		Redis: RedisConfig{
			URL:          os.Getenv("PLAYGATE_REDIS_URL"),
			PoolSize:     envInt("PLAYGATE_REDIS_POOL_SIZE", 10, &errs),
			MinIdleConns: envInt("PLAYGATE_REDIS_MIN_IDLE_CONNS", 2, &errs),
			DialTimeout:  envDuration("PLAYGATE_REDIS_DIAL_TIMEOUT", 5*time.Second, &errs),
			ReadTimeout:  envDuration("PLAYGATE_REDIS_READ_TIMEOUT", 3*time.Second, &errs),
			WriteTimeout: envDuration("PLAYGATE_REDIS_WRITE_TIMEOUT", 3*time.Second, &errs),
		},
		MetricsAddr: os.Getenv("PLAYGATE_METRICS_ADDR"),
		LogLevel:    envOr("PLAYGATE_LOG_LEVEL", "info"),
	}
	if cfg.ClientID == "" {
		errs = append(errs, errors.New("PLAYGATE_CLIENT_ID is required"))
	}
	if cfg.ClientToken == "" {
		errs = append(errs, errors.New("PLAYGATE_CLIENT_TOKEN is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func envInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func envDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
