package config

import (
	"fmt"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithLedger configures the asset ledger backend
func WithLedger(ledgerType, url string) Option {
	return func(c *ServerConfig) error {
		if ledgerType != "memory" && ledgerType != "postgres" {
			return fmt.Errorf("ledger type must be 'memory' or 'postgres', got: %s", ledgerType)
		}
		if ledgerType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.LedgerType = ledgerType
		c.DatabaseURL = url
		return nil
	}
}

// WithFileStore configures the image storage backend
func WithFileStore(backendType string, backendConfig map[string]interface{}) Option {
	return func(c *ServerConfig) error {
		if backendType == "" {
			return fmt.Errorf("file store type cannot be empty")
		}
		if backendConfig == nil {
			backendConfig = map[string]interface{}{}
		}
		c.FileStore = StorageBackendConfig{Type: backendType, Config: backendConfig}
		return nil
	}
}

// WithVideoStore configures the video storage backend
func WithVideoStore(backendType string, backendConfig map[string]interface{}) Option {
	return func(c *ServerConfig) error {
		if backendType == "" {
			return fmt.Errorf("video store type cannot be empty")
		}
		if backendConfig == nil {
			backendConfig = map[string]interface{}{}
		}
		c.VideoStore = StorageBackendConfig{Type: backendType, Config: backendConfig}
		return nil
	}
}

// WithTranscoder configures the HTTP transcoder
func WithTranscoder(url, token string) Option {
	return func(c *ServerConfig) error {
		if url == "" {
			c.TranscoderType = "none"
			c.TranscoderURL = ""
			c.TranscoderToken = ""
			return nil
		}
		c.TranscoderType = "http"
		c.TranscoderURL = url
		c.TranscoderToken = token
		return nil
	}
}

// WithDocumentAPI configures the external Document API
func WithDocumentAPI(url, database, token string) Option {
	return func(c *ServerConfig) error {
		if url != "" && database == "" {
			return fmt.Errorf("document database name is required")
		}
		c.DocumentAPIURL = url
		c.DocumentDatabase = database
		c.DocumentToken = token
		return nil
	}
}

// WithExtraLanguages adds languages to the locale catalog, code -> display name
func WithExtraLanguages(langs map[string]string) Option {
	return func(c *ServerConfig) error {
		if c.ExtraLanguages == nil {
			c.ExtraLanguages = map[string]string{}
		}
		for code, name := range langs {
			if code == "" {
				return fmt.Errorf("language code cannot be empty")
			}
			c.ExtraLanguages[code] = name
		}
		return nil
	}
}
