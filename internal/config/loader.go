// Package config provides centralized configuration management for the
// gateway. Values resolve in three layers: built-in defaults, an optional
// YAML file, and WEBINSIGHTS_* environment variables (highest precedence).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces all environment overrides, e.g.
// WEBINSIGHTS_SERVER_PORT or WEBINSIGHTS_AILINK_API_KEY.
const EnvPrefix = "WEBINSIGHTS"

// Load resolves the configuration. path names an explicit YAML file; when
// empty, no file layer is used and defaults plus environment apply.
func Load(path string) (*Config, error) {
	return load(path, true)
}

// LoadCLI resolves configuration for one-shot CLI commands, which need the
// model credentials but not the server's auth token.
func LoadCLI(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, requireAuth bool) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so bind
	// the secret-bearing keys that have no default explicitly.
	for _, key := range []string{"auth.token", "ailink.api_key", "store.password"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg, requireAuth); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("store.addr", "localhost:6379")
	v.SetDefault("store.db", 0)
	v.SetDefault("store.dial_timeout", "5s")

	v.SetDefault("rate_limit.limit", 5)
	v.SetDefault("rate_limit.window", "60s")

	v.SetDefault("session.ttl", "24h")

	v.SetDefault("extract.timeout", "10s")
	v.SetDefault("extract.user_agent", "webinsights/1.0")

	v.SetDefault("ailink.base_url", "")
	v.SetDefault("ailink.model", "gemini-2.0-flash")
	v.SetDefault("ailink.timeout", "60s")

	v.SetDefault("logging.level", "info")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
}

func validate(cfg *Config, requireAuth bool) error {
	var problems []string

	if requireAuth && strings.TrimSpace(cfg.Auth.Token) == "" {
		problems = append(problems, "auth.token is required (WEBINSIGHTS_AUTH_TOKEN)")
	}
	if strings.TrimSpace(cfg.AILink.APIKey) == "" {
		problems = append(problems, "ailink.api_key is required (WEBINSIGHTS_AILINK_API_KEY)")
	}
	if cfg.RateLimit.Limit <= 0 {
		problems = append(problems, "rate_limit.limit must be positive")
	}
	if cfg.RateLimit.Window <= 0 {
		problems = append(problems, "rate_limit.window must be positive")
	}
	if cfg.Session.TTL <= 0 {
		problems = append(problems, "session.ttl must be positive")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}

	return nil
}
