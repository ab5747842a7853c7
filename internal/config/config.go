package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. ORBIT_GEOLOCATION_PROVIDER.
const EnvPrefix = "ORBIT"

// Config holds the configuration settings for the tracker.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the HTTP server started by "serve".
// - Timeout: Overall timeout of every upstream HTTP request.
// - Timezone: IANA zone used to print rise times; empty means the local zone.
// - IPEcho, Geolocation, FlyOver: Upstream endpoints for the three lookups.
// - Retry: Opt-in retry policy applied to each lookup.
type Config struct {
	Env         string            `mapstructure:"env"`         // Env is the current environment: local, development, production.
	Port        int               `mapstructure:"port"`        // Port is the HTTP server port.
	Timeout     time.Duration     `mapstructure:"timeout"`     // Timeout for each upstream request.
	Timezone    string            `mapstructure:"timezone"`    // Timezone used to render rise times.
	IPEcho      EndpointConfig    `mapstructure:"ip_echo"`     // IPEcho is the public IP echo service.
	Geolocation GeolocationConfig `mapstructure:"geolocation"` // Geolocation selects and configures the provider.
	FlyOver     EndpointConfig    `mapstructure:"flyover"`     // FlyOver is the pass-prediction service.
	Retry       RetryConfig       `mapstructure:"retry"`       // Retry holds the per-step retry policy.
}

// EndpointConfig points at a single upstream HTTP API.
type EndpointConfig struct {
	URL string `mapstructure:"url"`
}

// GeolocationConfig struct holds the settings of the geolocation provider.
type GeolocationConfig struct {
	Provider string `mapstructure:"provider"` // Provider is one of ipwhois, google, maxmind.
	URL      string `mapstructure:"url"`      // URL is the base URL of the ipwho.is API.
	APIKey   string `mapstructure:"api_key"`  // APIKey for the Google Geolocation API.
	DBPath   string `mapstructure:"db_path"`  // DBPath of the GeoLite2-City database.
}

// RetryConfig struct holds the opt-in retry policy. Attempts <= 1 disables retries.
type RetryConfig struct {
	Attempts int           `mapstructure:"attempts"`
	MinDelay time.Duration `mapstructure:"min_delay"`
	MaxDelay time.Duration `mapstructure:"max_delay"`
}

// Load reads configuration from defaults, an optional YAML file at path, a .env file
// and ORBIT_* environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	vpr := viper.New()
	setDefaults(vpr)

	vpr.SetEnvPrefix(EnvPrefix)
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()

	if path != "" {
		vpr.SetConfigFile(path)
		vpr.SetConfigType("yaml")
		if err := vpr.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := vpr.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad is like Load but panics when the configuration cannot be loaded.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	return cfg
}

// Location resolves Timezone, falling back to the local zone when it is empty.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}

	return loc, nil
}

func setDefaults(vpr *viper.Viper) {
	const (
		defaultPort    = 8080
		defaultTimeout = 10 * time.Second
		defaultMin     = 200 * time.Millisecond
		defaultMax     = 5 * time.Second
	)

	vpr.SetDefault("env", "production")
	vpr.SetDefault("port", defaultPort)
	vpr.SetDefault("timeout", defaultTimeout)
	vpr.SetDefault("timezone", "")
	vpr.SetDefault("ip_echo.url", "https://api.ipify.org?format=json")
	vpr.SetDefault("geolocation.provider", "ipwhois")
	vpr.SetDefault("geolocation.url", "http://ipwho.is")
	vpr.SetDefault("geolocation.api_key", "")
	vpr.SetDefault("geolocation.db_path", "")
	vpr.SetDefault("flyover.url", "https://iss-flyover.herokuapp.com/json/")
	vpr.SetDefault("retry.attempts", 1)
	vpr.SetDefault("retry.min_delay", defaultMin)
	vpr.SetDefault("retry.max_delay", defaultMax)
}
