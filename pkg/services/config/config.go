package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "ENERGY_ATLAS"

type Config struct {
	EIA      EIAConfig      `mapstructure:"eia"`
	NOAA     NOAAConfig     `mapstructure:"noaa"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

type EIAConfig struct {
	APIKey   string `mapstructure:"api_key" validate:"required"`
	Timezone string `mapstructure:"timezone" validate:"oneof=Eastern Central Mountain Pacific"`
	BaseURL  string `mapstructure:"base_url" validate:"required,url"`
	PageSize int    `mapstructure:"page_size" validate:"gte=1,lte=5000"`
}

type NOAAConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

type HTTPConfig struct {
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries      int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	InitialInterval time.Duration `mapstructure:"initial_interval" validate:"gt=0"`
	MaxInterval     time.Duration `mapstructure:"max_interval" validate:"gte=0"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

type DefaultsConfig struct {
	Region    string `mapstructure:"region" validate:"required"`
	Fuel      string `mapstructure:"fuel" validate:"required"`
	Category  string `mapstructure:"category" validate:"required"`
	StartYear int    `mapstructure:"start_year" validate:"gte=1900"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("eia.api_key", "")
	v.SetDefault("eia.timezone", "Eastern")
	v.SetDefault("eia.base_url", "https://api.eia.gov/v2")
	v.SetDefault("eia.page_size", 5000)
	v.SetDefault("noaa.base_url", "https://ftp.cpc.ncep.noaa.gov/htdocs/degree_days/weighted/daily_data")
	v.SetDefault("http.timeout", 60*time.Second)
	v.SetDefault("http.max_retries", 0)
	v.SetDefault("http.initial_interval", 500*time.Millisecond)
	v.SetDefault("http.max_interval", 10*time.Second)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("defaults.region", "EAST")
	v.SetDefault("defaults.fuel", "NG")
	v.SetDefault("defaults.category", "RESIDENTIAL")
	v.SetDefault("defaults.start_year", 2019)
}

// Load reads an optional YAML file and overlays ENERGY_ATLAS_* environment
// variables. EIA_API_KEY, SERVER_HOST and SERVER_PORT are honoured as well.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("eia.api_key", envPrefix+"_EIA_API_KEY", "EIA_API_KEY")
	_ = v.BindEnv("server.host", envPrefix+"_SERVER_HOST", "SERVER_HOST")
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "SERVER_PORT")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and reports every failing field.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("invalid config: %s: %w", strings.Join(fields, ", "), err)
}
