package urlstrategy

import "fmt"

// Type selects a URL strategy in configuration.
type Type string

const (
	// TypeCDN serves assets straight from a CDN base URL.
	TypeCDN Type = "cdn"

	// TypeRouted serves assets through the file server's /file/ endpoint.
	TypeRouted Type = "routed"
)

// Config holds configuration for strategy creation.
type Config struct {
	Type    Type
	BaseURL string
}

// New creates a URL strategy from configuration.
func New(config Config) (Strategy, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for the %s strategy", config.Type)
	}
	switch config.Type {
	case TypeCDN:
		return NewCDN(config.BaseURL), nil
	case TypeRouted:
		return NewRouted(config.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown URL strategy type: %s", config.Type)
	}
}
