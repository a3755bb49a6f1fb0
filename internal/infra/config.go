package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alpacahq/example-hftish/internal/domain"
)

const (
	// DefaultLiveURL is the production trading endpoint.
	DefaultLiveURL = "https://api.alpaca.markets"
	// DefaultPaperURL is the paper trading endpoint, inferred when the key
	// id carries the paper "PK" prefix.
	DefaultPaperURL = "https://paper-api.alpaca.markets"
	// DefaultDataWSURL is the market data stream endpoint.
	DefaultDataWSURL = "wss://stream.data.alpaca.markets/v2/iex"
)

// Config holds the full application configuration, loaded from YAML and
// overridden by environment variables for secrets.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Trading struct {
		Mode      string   `yaml:"mode"`    // PAPER, LIVE, MOCK
		Symbols   []string `yaml:"symbols"` // normalized to upper
		MaxShares int64    `yaml:"max_shares"`
		SimFill   string   `yaml:"sim_fill"` // fill, partial, none (PAPER mode)
	} `yaml:"trading"`

	API struct {
		Alpaca struct {
			KeyID      string `yaml:"key_id"`
			SecretKey  string `yaml:"secret_key"`
			BaseURL    string `yaml:"base_url"`
			DataWSURL  string `yaml:"data_ws_url"`
			TradeWSURL string `yaml:"trade_ws_url"`
		} `yaml:"alpaca"`
	} `yaml:"api"`

	Journal struct {
		Path string `yaml:"path"` // empty disables the diagnostics journal
	} `yaml:"journal"`

	Metrics struct {
		Addr string `yaml:"addr"` // empty disables the metrics endpoint
	} `yaml:"metrics"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text or json
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies environment
// overrides and defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv lets environment variables take precedence over the file
// so secrets never have to live on disk.
func overrideWithEnv(cfg *Config) {
	if cfg.API.Alpaca.SecretKey != "" {
		fmt.Println("WARNING: API secret found in config file; prefer APCA_API_KEY_ID / APCA_API_SECRET_KEY environment variables")
	}

	if key := os.Getenv("APCA_API_KEY_ID"); key != "" {
		cfg.API.Alpaca.KeyID = key
	}
	if secret := os.Getenv("APCA_API_SECRET_KEY"); secret != "" {
		cfg.API.Alpaca.SecretKey = secret
	}
	if base := os.Getenv("APCA_API_BASE_URL"); base != "" {
		cfg.API.Alpaca.BaseURL = base
	}
}

func applyDefaults(cfg *Config) {
	for i, s := range cfg.Trading.Symbols {
		cfg.Trading.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	if cfg.Trading.Mode == "" {
		cfg.Trading.Mode = "PAPER"
	}
	if cfg.Trading.SimFill == "" {
		cfg.Trading.SimFill = "fill"
	}

	if cfg.API.Alpaca.BaseURL == "" {
		// Key ids starting with "PK" are paper keys.
		if strings.HasPrefix(cfg.API.Alpaca.KeyID, "PK") {
			cfg.API.Alpaca.BaseURL = DefaultPaperURL
		} else {
			cfg.API.Alpaca.BaseURL = DefaultLiveURL
		}
	}
	if cfg.API.Alpaca.DataWSURL == "" {
		cfg.API.Alpaca.DataWSURL = DefaultDataWSURL
	}
	if cfg.API.Alpaca.TradeWSURL == "" {
		cfg.API.Alpaca.TradeWSURL = "wss://" + strings.TrimPrefix(cfg.API.Alpaca.BaseURL, "https://") + "/stream"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if len(c.Trading.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	for _, s := range c.Trading.Symbols {
		if s == "" {
			return fmt.Errorf("empty symbol in symbol list")
		}
	}

	if c.Trading.MaxShares < domain.Lot {
		return fmt.Errorf("max_shares must be at least %d, got %d", domain.Lot, c.Trading.MaxShares)
	}
	if c.Trading.MaxShares%domain.Lot != 0 {
		return fmt.Errorf("max_shares must be a multiple of the %d-share lot, got %d", domain.Lot, c.Trading.MaxShares)
	}

	switch c.Trading.Mode {
	case "PAPER", "LIVE", "MOCK":
	default:
		return fmt.Errorf("unknown trading mode: %s", c.Trading.Mode)
	}

	switch c.Trading.SimFill {
	case "fill", "partial", "none":
	default:
		return fmt.Errorf("unknown sim_fill: %s", c.Trading.SimFill)
	}

	if !strings.HasPrefix(c.API.Alpaca.DataWSURL, "ws://") && !strings.HasPrefix(c.API.Alpaca.DataWSURL, "wss://") {
		return fmt.Errorf("invalid data WS URL: %s", c.API.Alpaca.DataWSURL)
	}

	if c.Trading.Mode == "LIVE" && (c.API.Alpaca.KeyID == "" || c.API.Alpaca.SecretKey == "") {
		return fmt.Errorf("LIVE mode requires API credentials")
	}

	return nil
}

// IsPaperEndpoint reports whether the configured REST endpoint is the paper
// venue. The real-money safety latch only applies to the live endpoint.
func (c *Config) IsPaperEndpoint() bool {
	return strings.Contains(c.API.Alpaca.BaseURL, "paper-api")
}
