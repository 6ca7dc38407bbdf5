package main

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/chi-demo/middleware"

	"github.com/iptvkit/mediakit/pkg/mediakit/api"
	"github.com/iptvkit/mediakit/pkg/mediakit/config"
	"github.com/iptvkit/mediakit/pkg/mediakit/docstore"
)

type Config struct {
	Environment  string `env:"ENVIRONMENT" env-default:"development"`
	ApiKeySHA256 string `env:"API_KEY_SHA256" env-default:"1"`
	JWTSecret    string `env:"JWT_SECRET" env-default:""`

	Ledger     LedgerConfig
	FileStore  StoreConfig `env-prefix:"FILE_"`
	VideoStore StoreConfig `env-prefix:"VIDEO_"`
	Transcoder TranscoderConfig
	Documents  DocumentConfig
}

type LedgerConfig struct {
	Type        string `env:"LEDGER_TYPE" env-default:"memory"`
	DatabaseURL string `env:"DATABASE_URL" env-default:""`
}

type StoreConfig struct {
	Type    string `env:"STORE_TYPE" env-default:"memory"`
	BaseURL string `env:"STORE_URL" env-default:""`
	Token   string `env:"STORE_TOKEN" env-default:""`
	BaseDir string `env:"STORE_DIR" env-default:""`
	Bucket  string `env:"STORE_BUCKET" env-default:""`
	Region  string `env:"STORE_REGION" env-default:"us-east-1"`
	Prefix  string `env:"STORE_PREFIX" env-default:""`

	// URLStrategy selects how public URLs are built ("cdn" or "routed");
	// empty leaves it to the backend, or "cdn" when STORE_URL is set.
	URLStrategy string `env:"STORE_URL_STRATEGY" env-default:""`
}

type TranscoderConfig struct {
	URL   string `env:"TRANSCODER_URL" env-default:""`
	Token string `env:"TRANSCODER_TOKEN" env-default:""`
}

type DocumentConfig struct {
	URL      string `env:"DOCUMENT_API_URL" env-default:"http://localhost:3000"`
	Database string `env:"DOCUMENT_DATABASE" env-default:"iptv"`
	Token    string `env:"DOCUMENT_TOKEN" env-default:""`
}

func (c StoreConfig) toBackend() (string, map[string]interface{}) {
	backendConfig := map[string]interface{}{}
	switch c.Type {
	case "http":
		backendConfig["base_url"] = c.BaseURL
		backendConfig["token"] = c.Token
	case "fs":
		backendConfig["base_dir"] = c.BaseDir
		backendConfig["url_prefix"] = c.BaseURL
		backendConfig["url_strategy"] = c.URLStrategy
		backendConfig["key_prefix"] = c.Prefix
	case "s3":
		backendConfig["bucket"] = c.Bucket
		backendConfig["region"] = c.Region
		backendConfig["url_prefix"] = c.BaseURL
		backendConfig["url_strategy"] = c.URLStrategy
		backendConfig["key_prefix"] = c.Prefix
	default:
		backendConfig["key_prefix"] = c.Prefix
	}
	return c.Type, backendConfig
}

func main() {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	fileType, fileBackend := cfg.FileStore.toBackend()
	videoType, videoBackend := cfg.VideoStore.toBackend()
	if videoType != "http" && videoBackend["key_prefix"] == "" {
		videoBackend["key_prefix"] = "/videos/"
	}

	serverCfg, err := config.Load(
		config.WithEnvironment(cfg.Environment),
		config.WithLedger(cfg.Ledger.Type, cfg.Ledger.DatabaseURL),
		config.WithFileStore(fileType, fileBackend),
		config.WithVideoStore(videoType, videoBackend),
		config.WithTranscoder(cfg.Transcoder.URL, cfg.Transcoder.Token),
		config.WithDocumentAPI(cfg.Documents.URL, cfg.Documents.Database, cfg.Documents.Token),
	)
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	svc, err := serverCfg.BuildService()
	if err != nil {
		slog.Error("Failed to build media service", "err", err)
		os.Exit(1)
	}

	docs, err := docstore.New(docstore.Config{
		BaseURL:  serverCfg.DocumentAPIURL,
		Database: serverCfg.DocumentDatabase,
		Token:    serverCfg.DocumentToken,
	})
	if err != nil {
		slog.Error("Failed to build document client", "err", err)
		os.Exit(1)
	}

	var handlerOpts []api.Option
	if cfg.JWTSecret != "" {
		handlerOpts = append(handlerOpts, api.WithJWTAuth(jwtauth.New("HS256", []byte(cfg.JWTSecret), nil)))
	}
	handler := api.NewHandler(svc, docs, serverCfg.BuildCatalog(), handlerOpts...)

	server := app.DefaultWithoutRoutes()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	apiKeyMiddleware, err := middleware.ApiKeyMiddleware(middleware.ApiKeyConfig{
		APIKeys: map[string]string{
			"key1": cfg.ApiKeySHA256,
		},
	})
	if err != nil {
		slog.Error("Failed to initialize API Key middleware", "err", err)
		return
	}

	server.R.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(apiKeyMiddleware)
			r.Mount("/", handler.Routes())
		})
	})

	server.Run()
}
