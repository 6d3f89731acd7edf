package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sirene SireneConfig `yaml:"sirene" mapstructure:"sirene"`
	BAN    BANConfig    `yaml:"ban" mapstructure:"ban"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SireneConfig holds INSEE Sirene API settings.
type SireneConfig struct {
	APIKey    string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// BANConfig holds Base Adresse Nationale geocoder settings.
type BANConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	CacheSize int     `yaml:"cache_size" mapstructure:"cache_size"`
}

// DataConfig locates the QPV and ZRR reference datasets. Either point
// manifest at a YAML file describing both datasets, or override the
// individual paths against the built-in defaults.
type DataConfig struct {
	Manifest string `yaml:"manifest" mapstructure:"manifest"`
	QPVPath  string `yaml:"qpv_path" mapstructure:"qpv_path"`
	QPVLayer string `yaml:"qpv_layer" mapstructure:"qpv_layer"`
	ZRRPath  string `yaml:"zrr_path" mapstructure:"zrr_path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("QPVZRR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sirene.base_url", "https://api.insee.fr/api-sirene/3.11")
	v.SetDefault("sirene.rate_limit", 0.5)
	v.SetDefault("ban.base_url", "https://api-adresse.data.gouv.fr")
	v.SetDefault("ban.rate_limit", 10.0)
	v.SetDefault("ban.cache_size", 512)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Keys that usually arrive via environment only; registering them
	// keeps AutomaticEnv visible to Unmarshal.
	v.SetDefault("sirene.api_key", "")
	v.SetDefault("data.manifest", "")
	v.SetDefault("data.qpv_path", "")
	v.SetDefault("data.qpv_layer", "")
	v.SetDefault("data.zrr_path", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command scope depends on are present.
// The "siret" scope needs registry credentials; "adresse" and "serve" run
// without them (SIRET queries are then rejected at request time).
func (c *Config) Validate(scope string) error {
	switch scope {
	case "siret":
		if c.Sirene.APIKey == "" {
			return eris.New("config: sirene.api_key is required (set QPVZRR_SIRENE_API_KEY)")
		}
	case "adresse":
		// No hard requirements.
	case "serve":
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			return eris.Errorf("config: server.port %d is out of range", c.Server.Port)
		}
	default:
		return eris.Errorf("config: unknown validation scope %q", scope)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
