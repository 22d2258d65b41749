package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/Yobibbb/Lost-and-Found-IOT/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultRateLimit    = 100
	defaultRateWindow   = 60 * time.Second
	defaultTokenTTL     = 30 * 24 * time.Hour
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the lostfound service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Redis to back the rate limiter
	// Optional: when empty an in-process limiter is used instead
	RedisURL string

	// Secret key
	// Used to sign the bearer tokens, symmetric, so keep it secret
	SecretKey string

	// Environment
	Environment string

	// Requests allowed per client per rate limit window
	RateLimit int

	// Rate limit window length
	RateWindow time.Duration

	// Bearer token lifetime
	TokenTTL time.Duration

	// Accept tokens from the ?token= query parameter
	// Convenient for device-side testing, leaks tokens into logs otherwise
	AllowQueryToken bool
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		Environment: defaultEnvironment,
		RateLimit:   defaultRateLimit,
		RateWindow:  defaultRateWindow,
		TokenTTL:    defaultTokenTTL,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if v, err := strconv.Atoi(value); err == nil {
				*o = v
			}
		}
	}
	setBool := func(o *bool) func(value string) {
		return func(value string) {
			if v, err := strconv.ParseBool(value); err == nil {
				*o = v
			}
		}
	}
	setDuration := func(o *time.Duration) func(value string) {
		return func(value string) {
			if v, err := time.ParseDuration(value); err == nil {
				*o = v
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":       setString(&c.ListenAddr),
		"DATABASE_URI":      setString(&c.DatabaseDSN),
		"REDIS_URL":         setString(&c.RedisURL),
		"SECRET_KEY":        setString(&c.SecretKey),
		"LOG_LEVEL":         setString(&c.LogLevel),
		"ENVIRONMENT":       setString(&c.Environment),
		"RATE_LIMIT":        setInt(&c.RateLimit),
		"RATE_WINDOW":       setDuration(&c.RateWindow),
		"TOKEN_TTL":         setDuration(&c.TokenTTL),
		"ALLOW_QUERY_TOKEN": setBool(&c.AllowQueryToken),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("lostfound", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.RedisURL, "redis", "r", c.RedisURL, "Redis URL for the rate limiter (optional)")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.IntVar(&c.RateLimit, "rate-limit", c.RateLimit, "Requests allowed per client per window")
	fs.DurationVar(&c.RateWindow, "rate-window", c.RateWindow, "Rate limit window length")
	fs.DurationVar(&c.TokenTTL, "token-ttl", c.TokenTTL, "Bearer token lifetime")
	fs.BoolVar(&c.AllowQueryToken, "allow-query-token", c.AllowQueryToken, "Accept tokens from the ?token= query parameter")

	return fs.Parse(args)
}
