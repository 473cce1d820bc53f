package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	LogLevel   string        `mapstructure:"log_level"`
	Secret     string        `mapstructure:"secret"`
	Origins    []string      `mapstructure:"allowed_origins"`
	Signal     SignalConfig  `mapstructure:"signal"`
	Metrics    MetricsConfig `mapstructure:"metrics"`
	OIDC       OIDCConfig    `mapstructure:"oidc"`
}

// SignalConfig tunes the signaling websocket.
type SignalConfig struct {
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	PongWait     time.Duration `mapstructure:"pong_wait"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	RateLimit    int           `mapstructure:"rate_limit"`
	RateInterval time.Duration `mapstructure:"rate_interval"`
	// KickSlow closes members whose send queue overflows instead of dropping frames.
	KickSlow bool `mapstructure:"kick_slow"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// OIDCConfig configures the login provider. Auth routes are off when Issuer is empty.
type OIDCConfig struct {
	Issuer       string   `mapstructure:"issuer"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	RedirectURL  string   `mapstructure:"redirect_url"`
	LogoutURL    string   `mapstructure:"logout_url"`
	Scopes       []string `mapstructure:"scopes"`
}

func (c OIDCConfig) Enabled() bool { return c.Issuer != "" }

func GetFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("live-translate", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "path to a yaml config file")
	fs.IntP("port", "p", 0, "listen port")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	return fs
}

// Load reads config/config.<CONFIG_ENV>.yaml (or the --config file),
// then SIGNAL_* environment variables, then flags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	if fs != nil {
		if p, _ := fs.GetString("config"); p != "" {
			fileName = p
		}
	}
	v.SetConfigFile(fileName)

	setDefaults(v)

	v.SetEnvPrefix("SIGNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if f := fs.Lookup("port"); f != nil && f.Changed {
			if err := v.BindPFlag("port", f); err != nil {
				return nil, fmt.Errorf("bind port flag: %w", err)
			}
		}
		if f := fs.Lookup("log-level"); f != nil && f.Changed {
			if err := v.BindPFlag("log_level", f); err != nil {
				return nil, fmt.Errorf("bind log-level flag: %w", err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Bool("oidc", cfg.OIDC.Enabled()).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("static_path", "./web")
	v.SetDefault("log_level", "info")
	v.SetDefault("secret", "live-translate-session-secret")
	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("signal.read_limit", 65536)
	v.SetDefault("signal.ping_period", "25s")
	v.SetDefault("signal.pong_wait", "60s")
	v.SetDefault("signal.write_wait", "5s")
	v.SetDefault("signal.send_buffer", 64)
	v.SetDefault("signal.rate_limit", 50)
	v.SetDefault("signal.rate_interval", "1s")
	v.SetDefault("signal.kick_slow", true)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("oidc.scopes", []string{"openid", "email", "profile"})
}
