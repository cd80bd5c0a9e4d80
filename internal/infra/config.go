package infra

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"som_trader/internal/learner"
)

// Feed source modes.
const (
	FeedSourceWebsocket = "websocket"
	FeedSourceReplay    = "replay"
)

// Config holds the full application configuration. Sensitive fields can
// be overridden through environment variables after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Feed struct {
		Source string `yaml:"source"` // websocket | replay
		WSURL  string `yaml:"ws_url"`
		Token  string `yaml:"token"`
		Symbol string `yaml:"symbol"`
	} `yaml:"feed"`

	Trade struct {
		BaseSize    decimal.Decimal `yaml:"base_size"`
		InitialCash decimal.Decimal `yaml:"initial_cash"`
		FeeRate     decimal.Decimal `yaml:"fee_rate"`
	} `yaml:"trade"`

	Learner struct {
		WindowLength  int    `yaml:"window_length"`
		ForwardWindow int    `yaml:"forward_window"`
		Nodes         int    `yaml:"nodes"`
		ActionMemory  int    `yaml:"action_memory"`
		IncludeVolume bool   `yaml:"include_volume"`
		Metric        string `yaml:"metric"` // cosine | euclidean

		Exploration float64 `yaml:"exploration"`
		SigmaFactor float64 `yaml:"sigma_factor"`
		Beta        float64 `yaml:"beta"`
		Gamma       float64 `yaml:"gamma"`
		DecayFactor float64 `yaml:"decay_factor"`

		DelayBars   int `yaml:"delay_bars"`
		WarmupBars  int `yaml:"warmup_bars"`
		UpdateEvery int `yaml:"update_every"`

		Seed int64 `yaml:"seed"` // 0 means seed from entropy

		Reward struct {
			VolPenaltyFactor      float64 `yaml:"vol_penalty_factor"`
			VolPenaltyCap         float64 `yaml:"vol_penalty_cap"`
			PositionPenaltyFactor float64 `yaml:"position_penalty_factor"`
			TradingPenalty        float64 `yaml:"trading_penalty"`
			DirectionalBonus      float64 `yaml:"directional_bonus"`
		} `yaml:"reward"`
	} `yaml:"learner"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Environment override for secrets and deployment-specific values
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	switch c.Feed.Source {
	case FeedSourceWebsocket:
		if c.Feed.WSURL == "" || (!hasPrefix(c.Feed.WSURL, "ws://") && !hasPrefix(c.Feed.WSURL, "wss://")) {
			return fmt.Errorf("invalid feed WS URL: %s", c.Feed.WSURL)
		}
	case FeedSourceReplay:
		// replay reads bars from storage, no URL needed
	default:
		return fmt.Errorf("unknown feed source: %s", c.Feed.Source)
	}
	if c.Feed.Symbol == "" {
		return fmt.Errorf("feed symbol is required")
	}
	if c.Trade.BaseSize.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("trade base size must be positive")
	}
	if c.Trade.FeeRate.IsNegative() {
		return fmt.Errorf("fee rate must be non-negative")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	// Learner parameters are validated for real by learner.Params; this only
	// catches values yaml could not have meant.
	if c.Learner.WindowLength <= 0 {
		return fmt.Errorf("learner window length must be positive")
	}
	if c.Learner.ForwardWindow <= 0 {
		return fmt.Errorf("learner forward window must be positive")
	}
	if c.Learner.Nodes <= 0 {
		return fmt.Errorf("learner node count must be positive")
	}

	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// LearnerParams maps the configuration onto learner.Params. Zero-valued
// optional fields fall through to the learner defaults.
func (c *Config) LearnerParams() learner.Params {
	return learner.Params{
		WindowLength:  c.Learner.WindowLength,
		ForwardWindow: c.Learner.ForwardWindow,
		NodeCount:     c.Learner.Nodes,
		ActionMemory:  c.Learner.ActionMemory,
		IncludeVolume: c.Learner.IncludeVolume,
		Metric:        learner.MetricKind(c.Learner.Metric),

		Reward: learner.RewardParams{
			VolPenaltyFactor:      c.Learner.Reward.VolPenaltyFactor,
			VolPenaltyCap:         c.Learner.Reward.VolPenaltyCap,
			PositionPenaltyFactor: c.Learner.Reward.PositionPenaltyFactor,
			TradingPenalty:        c.Learner.Reward.TradingPenalty,
			DirectionalBonus:      c.Learner.Reward.DirectionalBonus,
		},

		InitialExploration: c.Learner.Exploration,
		InitialSigmaFactor: c.Learner.SigmaFactor,
		InitialBeta:        c.Learner.Beta,
		InitialGamma:       c.Learner.Gamma,
		DecayFactor:        c.Learner.DecayFactor,

		DelayBars:    c.Learner.DelayBars,
		WarmupBars:   c.Learner.WarmupBars,
		UpdateEveryN: c.Learner.UpdateEvery,
	}
}

// overrideWithEnv applies environment variable overrides when present.
func overrideWithEnv(cfg *Config) {
	if token := os.Getenv("SOM_FEED_TOKEN"); token != "" {
		cfg.Feed.Token = token
	}
	if url := os.Getenv("SOM_FEED_URL"); url != "" {
		cfg.Feed.WSURL = url
	}
	if symbol := os.Getenv("SOM_FEED_SYMBOL"); symbol != "" {
		cfg.Feed.Symbol = symbol
	}
	if path := os.Getenv("SOM_STORAGE_PATH"); path != "" {
		cfg.Storage.Path = path
	}
}
