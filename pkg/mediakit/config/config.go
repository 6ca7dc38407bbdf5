// Package config builds a mediakit service from declarative configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iptvkit/mediakit/pkg/mediakit"
	ledgermemory "github.com/iptvkit/mediakit/pkg/mediakit/ledger/memory"
	ledgerpg "github.com/iptvkit/mediakit/pkg/mediakit/ledger/postgres"
	fsstorage "github.com/iptvkit/mediakit/pkg/mediakit/storage/fs"
	"github.com/iptvkit/mediakit/pkg/mediakit/storage/httpapi"
	memorystorage "github.com/iptvkit/mediakit/pkg/mediakit/storage/memory"
	s3storage "github.com/iptvkit/mediakit/pkg/mediakit/storage/s3"
	"github.com/iptvkit/mediakit/pkg/mediakit/transcode"
	"github.com/iptvkit/mediakit/pkg/mediakit/urlstrategy"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:        "8080",
		Environment: "development",
		LedgerType:  "memory",
		FileStore: StorageBackendConfig{
			Type:   "memory",
			Config: map[string]interface{}{},
		},
		VideoStore: StorageBackendConfig{
			Type:   "memory",
			Config: map[string]interface{}{"key_prefix": "/videos/"},
		},
		TranscoderType: "none",
	}
}

// ServerConfig represents server configuration for the mediakit service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Ledger configuration
	LedgerType  string // "memory", "postgres"
	DatabaseURL string

	// Storage configuration
	FileStore  StorageBackendConfig
	VideoStore StorageBackendConfig

	// Transcoder configuration
	TranscoderType  string // "none", "http"
	TranscoderURL   string
	TranscoderToken string

	// Document API configuration
	DocumentAPIURL   string
	DocumentDatabase string
	DocumentToken    string

	// Extra locale catalog entries, code -> display name
	ExtraLanguages map[string]string
}

// StorageBackendConfig represents configuration for a storage backend
type StorageBackendConfig struct {
	Type   string // "memory", "fs", "s3", "http"
	Config map[string]interface{}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.LedgerType != "memory" && c.LedgerType != "postgres" {
		return errors.New("ledger_type must be 'memory' or 'postgres'")
	}

	if c.LedgerType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.TranscoderType {
	case "none", "http":
	default:
		return errors.New("transcoder_type must be 'none' or 'http'")
	}

	if c.TranscoderType == "http" && c.TranscoderURL == "" {
		return errors.New("transcoder_url is required when using the http transcoder")
	}

	return nil
}

// BuildService creates a mediakit.Service from the server configuration
func (c *ServerConfig) BuildService() (mediakit.Service, error) {
	var options []mediakit.Option

	files, err := c.buildFileStore(c.FileStore)
	if err != nil {
		return nil, fmt.Errorf("failed to build file store: %w", err)
	}
	options = append(options, mediakit.WithFileStore(files))

	videos, err := c.buildVideoStore(c.VideoStore)
	if err != nil {
		return nil, fmt.Errorf("failed to build video store: %w", err)
	}
	if videos != nil {
		options = append(options, mediakit.WithVideoStore(videos))
	}

	ledger, err := c.buildLedger()
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger: %w", err)
	}
	options = append(options, mediakit.WithLedger(ledger))

	if c.TranscoderType == "http" {
		transcoder, err := transcode.New(transcode.Config{
			BaseURL: c.TranscoderURL,
			Token:   c.TranscoderToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build transcoder: %w", err)
		}
		options = append(options, mediakit.WithTranscoder(transcoder))
	}

	return mediakit.New(options...)
}

// BuildCatalog returns the locale catalog, extended with any configured
// extra languages.
func (c *ServerConfig) BuildCatalog() *mediakit.Catalog {
	if len(c.ExtraLanguages) == 0 {
		return mediakit.DefaultCatalog()
	}
	// Map iteration order is random; sort the codes so the catalog is the
	// same on every start.
	codes := make([]string, 0, len(c.ExtraLanguages))
	for code := range c.ExtraLanguages {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	langs := mediakit.DefaultCatalog().Languages()
	for _, code := range codes {
		langs = append(langs, mediakit.Language{Code: code, Name: c.ExtraLanguages[code]})
	}
	return mediakit.NewCatalog(langs...)
}

// buildLedger creates a Ledger based on the configuration
func (c *ServerConfig) buildLedger() (mediakit.Ledger, error) {
	switch c.LedgerType {
	case "memory":
		return ledgermemory.New(), nil
	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return ledgerpg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported ledger type: %s", c.LedgerType)
	}
}

// PingPostgres verifies connectivity to the ledger database.
func PingPostgres(databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (c *ServerConfig) buildFileStore(config StorageBackendConfig) (mediakit.FileStore, error) {
	switch config.Type {
	case "memory":
		return memorystorage.NewWithPrefix(getString(config.Config, "key_prefix", "")), nil

	case "fs":
		urls, err := buildURLStrategy(config.Config)
		if err != nil {
			return nil, err
		}
		return fsstorage.New(fsstorage.Config{
			BaseDir:     getString(config.Config, "base_dir", "./data/storage"),
			URLStrategy: urls,
			KeyPrefix:   getString(config.Config, "key_prefix", ""),
		})

	case "s3":
		urls, err := buildURLStrategy(config.Config)
		if err != nil {
			return nil, err
		}
		return s3storage.New(s3storage.Config{
			Region:                 getString(config.Config, "region", "us-east-1"),
			Bucket:                 getString(config.Config, "bucket", ""),
			AccessKeyID:            getString(config.Config, "access_key_id", ""),
			SecretAccessKey:        getString(config.Config, "secret_access_key", ""),
			Endpoint:               getString(config.Config, "endpoint", ""),
			UsePathStyle:           getBool(config.Config, "use_path_style", false),
			KeyPrefix:              getString(config.Config, "key_prefix", ""),
			URLStrategy:            urls,
			CreateBucketIfNotExist: getBool(config.Config, "create_bucket_if_not_exist", false),
		})

	case "http":
		return httpapi.NewFileClient(httpapi.Config{
			BaseURL: getString(config.Config, "base_url", ""),
			Token:   getString(config.Config, "token", ""),
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", config.Type)
	}
}

func (c *ServerConfig) buildVideoStore(config StorageBackendConfig) (mediakit.VideoStore, error) {
	switch config.Type {
	case "none":
		return nil, nil

	case "http":
		return httpapi.NewVideoClient(httpapi.Config{
			BaseURL: getString(config.Config, "base_url", ""),
			Token:   getString(config.Config, "token", ""),
		})

	default:
		store, err := c.buildFileStore(config)
		if err != nil {
			return nil, err
		}
		videos, ok := store.(mediakit.VideoStore)
		if !ok {
			return nil, fmt.Errorf("storage backend type %s cannot store videos", config.Type)
		}
		return videos, nil
	}
}

// buildURLStrategy reads the URL generation settings of a storage backend.
// "url_prefix" alone means direct CDN-style URLs under that base;
// "url_strategy" picks the strategy type explicitly. Neither set leaves URL
// generation to the backend itself.
func buildURLStrategy(config map[string]interface{}) (urlstrategy.Strategy, error) {
	typ := getString(config, "url_strategy", "")
	base := getString(config, "url_prefix", "")
	if typ == "" {
		if base == "" {
			return nil, nil
		}
		typ = string(urlstrategy.TypeCDN)
	}
	return urlstrategy.New(urlstrategy.Config{Type: urlstrategy.Type(typ), BaseURL: base})
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if parsed, err := strconv.ParseBool(str); err == nil {
				return parsed
			}
		}
	}
	return defaultValue
}
