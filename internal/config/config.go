// Package config loads settings from defaults, an optional config file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Summary store backends.
const (
	StoreMemory    = "memory"
	StoreSurrealDB = "surrealdb"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	Port          int
	FallbackPorts []int
	PortFile      string

	// Legacy WordPress APIs. The blog store lives on the .net API.
	NetBaseURL  string
	NetToken    string
	ComBaseURL  string
	ComToken    string
	HTTPTimeout time.Duration

	// Paging
	DefaultLimit int
	FetchLimit   int

	// Migration
	MigrationConcurrency int
	SummaryStore         string

	// SurrealDB connection, used when SummaryStore is "surrealdb"
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Client side
	APIURL        string
	ClientTimeout time.Duration
	ContentDir    string
	SiteURL       string
	CacheTTL      time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 3001)
	v.SetDefault("fallback_ports", "3001,3011,3021,3031")
	v.SetDefault("port_file", "../../.api-port.json")

	v.SetDefault("poesyliang_net_api_base_url", "http://poesyliang.net/api.php")
	v.SetDefault("poesyliang_net_bearer_token", "")
	v.SetDefault("poesyliang_com_api_base_url", "http://archive.poesyliang.com/api.php")
	v.SetDefault("poesyliang_com_bearer_token", "")
	v.SetDefault("http_timeout", "30s")

	v.SetDefault("default_limit", 5000)
	v.SetDefault("fetch_limit", 5000)

	v.SetDefault("migration_concurrency", 1)
	v.SetDefault("summary_store", StoreMemory)

	v.SetDefault("surrealdb_url", "ws://localhost:8000/rpc")
	v.SetDefault("surrealdb_namespace", "poesy")
	v.SetDefault("surrealdb_database", "migration")
	v.SetDefault("surrealdb_user", "root")
	v.SetDefault("surrealdb_pass", "root")
	v.SetDefault("surrealdb_auth_level", "root")

	v.SetDefault("log_file", "/tmp/poesy-api.log")
	v.SetDefault("log_level", "INFO")

	v.SetDefault("api_url", "")
	v.SetDefault("client_timeout", "30m")
	v.SetDefault("content_dir", "content")
	v.SetDefault("site_url", "https://poesyliang.com")
	v.SetDefault("cache_ttl", "5m")
}

// Load reads configuration from defaults, configFile (if it exists) and
// environment variables, in increasing precedence. Environment variables are
// the upper-case keys, e.g. POESYLIANG_NET_BEARER_TOKEN.
func Load(configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	fallbacks, err := parsePorts(v.GetString("fallback_ports"))
	if err != nil {
		return Config{}, fmt.Errorf("fallback_ports: %w", err)
	}

	return Config{
		Port:          v.GetInt("port"),
		FallbackPorts: fallbacks,
		PortFile:      v.GetString("port_file"),

		NetBaseURL:  v.GetString("poesyliang_net_api_base_url"),
		NetToken:    v.GetString("poesyliang_net_bearer_token"),
		ComBaseURL:  v.GetString("poesyliang_com_api_base_url"),
		ComToken:    v.GetString("poesyliang_com_bearer_token"),
		HTTPTimeout: v.GetDuration("http_timeout"),

		DefaultLimit: v.GetInt("default_limit"),
		FetchLimit:   v.GetInt("fetch_limit"),

		MigrationConcurrency: v.GetInt("migration_concurrency"),
		SummaryStore:         strings.ToLower(v.GetString("summary_store")),

		SurrealDBURL:       v.GetString("surrealdb_url"),
		SurrealDBNamespace: v.GetString("surrealdb_namespace"),
		SurrealDBDatabase:  v.GetString("surrealdb_database"),
		SurrealDBUser:      v.GetString("surrealdb_user"),
		SurrealDBPass:      v.GetString("surrealdb_pass"),
		SurrealDBAuthLevel: v.GetString("surrealdb_auth_level"),

		LogFile:  v.GetString("log_file"),
		LogLevel: parseLogLevel(v.GetString("log_level")),

		APIURL:        v.GetString("api_url"),
		ClientTimeout: v.GetDuration("client_timeout"),
		ContentDir:    v.GetString("content_dir"),
		SiteURL:       v.GetString("site_url"),
		CacheTTL:      v.GetDuration("cache_ttl"),
	}, nil
}

// Validate checks the settings the API server needs.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.NetBaseURL == "" {
		errs = append(errs, errors.New("poesyliang_net_api_base_url is required"))
	}
	if c.ComBaseURL == "" {
		errs = append(errs, errors.New("poesyliang_com_api_base_url is required"))
	}
	if c.NetToken == "" {
		errs = append(errs, errors.New("poesyliang_net_bearer_token is required"))
	}
	if c.ComToken == "" {
		errs = append(errs, errors.New("poesyliang_com_bearer_token is required"))
	}
	if c.DefaultLimit <= 0 {
		errs = append(errs, errors.New("default_limit must be positive"))
	}
	if c.FetchLimit <= 0 {
		errs = append(errs, errors.New("fetch_limit must be positive"))
	}
	if c.MigrationConcurrency <= 0 {
		errs = append(errs, errors.New("migration_concurrency must be positive"))
	}
	switch c.SummaryStore {
	case StoreMemory:
	case StoreSurrealDB:
		if c.SurrealDBURL == "" {
			errs = append(errs, errors.New("surrealdb_url is required for the surrealdb summary store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown summary_store %q", c.SummaryStore))
	}
	return errors.Join(errs...)
}

func parsePorts(s string) ([]int, error) {
	var ports []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil || p <= 0 || p > 65535 {
			return nil, fmt.Errorf("invalid port %q", part)
		}
		ports = append(ports, p)
	}
	return ports, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
