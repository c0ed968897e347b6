// Package config loads the trading floor configuration from the environment,
// an optional .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/tradingfloor/core"
	"github.com/hupe1980/tradingfloor/market"
	"github.com/hupe1980/tradingfloor/model/provider"
	"github.com/hupe1980/tradingfloor/tool/mcp"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var (
	// ErrInvalidRoster reports an empty, malformed or duplicate roster.
	ErrInvalidRoster = errors.New("invalid roster")
	// ErrMissingCredential reports a roster model without provider credentials.
	ErrMissingCredential = provider.ErrMissingCredential
)

// Member is one roster entry.
type Member struct {
	Name      string `mapstructure:"name"`
	Strategy  string `mapstructure:"strategy"`
	ModelID   string `mapstructure:"model"`
	ModelName string `mapstructure:"model_name"`
}

// Config is the process configuration.
type Config struct {
	Interval          time.Duration
	RunWhenClosed     bool
	UseManyModels     bool
	Credentials       provider.Credentials
	PolygonAPIKey     string
	PolygonPlan       market.Plan
	BraveAPIKey       string
	PushoverUser      string
	PushoverToken     string
	DBPath            string
	MemoryDir         string
	StartupTimeout    time.Duration
	InvocationTimeout time.Duration
	MaxTurns          int
	LogLevel          string
	LogFormat         string

	Roster            []Member
	TraderServers     []mcp.ServerSpec
	ResearcherServers []mcp.ServerSpec
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("RUN_EVERY_N_MINUTES", 60)
	v.SetDefault("RUN_EVEN_WHEN_MARKET_IS_CLOSED", false)
	v.SetDefault("USE_MANY_MODELS", false)
	v.SetDefault("POLYGON_PLAN", string(market.PlanFree))
	v.SetDefault("DB_PATH", "accounts.db")
	v.SetDefault("MEMORY_DIR", "memory")
	v.SetDefault("MCP_STARTUP_TIMEOUT", mcp.DefaultStartupTimeout)
	v.SetDefault("INVOCATION_TIMEOUT", 15*time.Minute)
	v.SetDefault("MAX_TURNS", 30)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Load reads .env (overriding the process environment), then the
// environment, then the YAML file at path if path is not empty. The result
// is validated.
func Load(path string) (*Config, error) {
	_ = godotenv.Overload()
	return load(path)
}

// Read is Load without validation, for commands that only inspect the
// stores and the market clock.
func Read(path string) (*Config, error) {
	_ = godotenv.Overload()
	return read(path)
}

func load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Interval:      time.Duration(v.GetInt("RUN_EVERY_N_MINUTES")) * time.Minute,
		RunWhenClosed: v.GetBool("RUN_EVEN_WHEN_MARKET_IS_CLOSED"),
		UseManyModels: v.GetBool("USE_MANY_MODELS"),
		Credentials: provider.Credentials{
			OpenAI:     v.GetString("OPENAI_API_KEY"),
			DeepSeek:   v.GetString("DEEPSEEK_API_KEY"),
			Grok:       v.GetString("GROK_API_KEY"),
			Google:     v.GetString("GOOGLE_API_KEY"),
			OpenRouter: v.GetString("OPENROUTER_API_KEY"),
			Anthropic:  v.GetString("ANTHROPIC_API_KEY"),
		},
		PolygonAPIKey:     v.GetString("POLYGON_API_KEY"),
		PolygonPlan:       market.ParsePlan(v.GetString("POLYGON_PLAN")),
		BraveAPIKey:       v.GetString("BRAVE_API_KEY"),
		PushoverUser:      v.GetString("PUSHOVER_USER"),
		PushoverToken:     v.GetString("PUSHOVER_TOKEN"),
		DBPath:            v.GetString("DB_PATH"),
		MemoryDir:         v.GetString("MEMORY_DIR"),
		StartupTimeout:    durationSetting(v, "MCP_STARTUP_TIMEOUT"),
		InvocationTimeout: durationSetting(v, "INVOCATION_TIMEOUT"),
		MaxTurns:          v.GetInt("MAX_TURNS"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
	}

	weak := func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			secondsHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}

	if v.IsSet("roster") {
		if err := v.UnmarshalKey("roster", &cfg.Roster, weak); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
		}
	} else {
		cfg.Roster = DefaultRoster(cfg.UseManyModels)
	}

	if v.IsSet("trader_servers") {
		if err := v.UnmarshalKey("trader_servers", &cfg.TraderServers, weak); err != nil {
			return nil, fmt.Errorf("parsing trader_servers: %w", err)
		}
	} else {
		cfg.TraderServers = DefaultTraderServers(cfg.PolygonPlan, cfg.PolygonAPIKey)
	}

	if v.IsSet("researcher_servers") {
		if err := v.UnmarshalKey("researcher_servers", &cfg.ResearcherServers, weak); err != nil {
			return nil, fmt.Errorf("parsing researcher_servers: %w", err)
		}
	} else {
		cfg.ResearcherServers = DefaultResearcherServers(cfg.BraveAPIKey)
	}

	applyStartupTimeout(cfg.TraderServers, cfg.StartupTimeout)
	applyStartupTimeout(cfg.ResearcherServers, cfg.StartupTimeout)

	return cfg, nil
}

// secondsDuration reads a bare number as seconds, so MCP_STARTUP_TIMEOUT=120
// means two minutes. Strings with a unit ("90s", "2m") are left to the
// duration parser.
func secondsDuration(raw any) (time.Duration, bool) {
	switch n := raw.(type) {
	case int:
		return time.Duration(n) * time.Second, true
	case int64:
		return time.Duration(n) * time.Second, true
	case float64:
		return time.Duration(n * float64(time.Second)), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return time.Duration(f * float64(time.Second)), true
	}
	return 0, false
}

func durationSetting(v *viper.Viper, key string) time.Duration {
	if d, ok := secondsDuration(v.Get(key)); ok {
		return d
	}
	return v.GetDuration(key)
}

func secondsHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	if d, ok := secondsDuration(data); ok {
		return d, nil
	}
	return data, nil
}

func applyStartupTimeout(specs []mcp.ServerSpec, d time.Duration) {
	for i := range specs {
		if specs[i].StartupTimeout == 0 {
			specs[i].StartupTimeout = d
		}
	}
}

// Validate checks the roster shape and that every roster model can be
// served with the configured credentials.
func (c *Config) Validate() error {
	if len(c.Roster) == 0 {
		return fmt.Errorf("%w: no traders", ErrInvalidRoster)
	}
	seen := make(map[string]struct{}, len(c.Roster))
	for i, m := range c.Roster {
		if m.Name == "" || m.ModelID == "" {
			return fmt.Errorf("%w: entry %d needs a name and a model", ErrInvalidRoster, i)
		}
		key := core.TraderKey(m.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate trader %q", ErrInvalidRoster, m.Name)
		}
		seen[key] = struct{}{}

		route := provider.RouteFor(m.ModelID)
		if c.Credentials.Key(route.Provider) == "" {
			return fmt.Errorf("%w: %s needs a %s key for model %q", ErrMissingCredential, m.Name, route.Provider, m.ModelID)
		}
	}
	if c.Interval <= 0 {
		return fmt.Errorf("RUN_EVERY_N_MINUTES must be positive")
	}
	return nil
}

// PushoverEnabled reports whether push notifications go through Pushover
// directly instead of the push MCP server.
func (c *Config) PushoverEnabled() bool { return c.PushoverUser != "" && c.PushoverToken != "" }
