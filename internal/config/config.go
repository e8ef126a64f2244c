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
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Views  ViewsConfig  `yaml:"views" mapstructure:"views"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the two input documents and the optional field catalog.
type DataConfig struct {
	RecordsURL   string `yaml:"records_url" mapstructure:"records_url"`
	CountriesURL string `yaml:"countries_url" mapstructure:"countries_url"`
	FieldsFile   string `yaml:"fields_file" mapstructure:"fields_file"`

	// DiscoverFields adds every numeric record column to the field catalog.
	DiscoverFields bool `yaml:"discover_fields" mapstructure:"discover_fields"`
}

// FetchConfig configures how input documents are downloaded.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ViewsConfig holds the initial control values and the fixed line-chart range.
type ViewsConfig struct {
	DefaultField string `yaml:"default_field" mapstructure:"default_field"`
	DefaultYear  int    `yaml:"default_year" mapstructure:"default_year"`
	LineYearMin  int    `yaml:"line_year_min" mapstructure:"line_year_min"`
	LineYearMax  int    `yaml:"line_year_max" mapstructure:"line_year_max"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	CORSOrigins    []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	SessionTTLMins int      `yaml:"session_ttl_mins" mapstructure:"session_ttl_mins"`
}

// StoreConfig configures the dataset snapshot backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
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
	v.SetEnvPrefix("LIFEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.records_url", "life_expec.json")
	v.SetDefault("data.countries_url", "countries.json")
	v.SetDefault("data.fields_file", "")
	v.SetDefault("data.discover_fields", true)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 1)
	v.SetDefault("fetch.user_agent", "lifemap/1.0")
	v.SetDefault("views.default_field", "Life expectancy")
	v.SetDefault("views.default_year", 2000)
	v.SetDefault("views.line_year_min", 2000)
	v.SetDefault("views.line_year_max", 2015)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.session_ttl_mins", 60)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "lifemap.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the views cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Views.DefaultField) == "" {
		return eris.New("config: views.default_field is required")
	}
	if c.Views.LineYearMin > c.Views.LineYearMax {
		return eris.Errorf("config: views.line_year_min (%d) is after views.line_year_max (%d)",
			c.Views.LineYearMin, c.Views.LineYearMax)
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
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
