// Package config loads resumekit runtime settings from a TOML file.
//
// Settings cover the ambient concerns around the build pipeline: log
// level, fetch transport behaviour, the resolved-record cache and span
// export. A missing configuration file is not an error; defaults apply.
//
//	[log]
//	level = "info"
//
//	[fetch]
//	user_agent = "resumekit/1.0"
//	timeout = "30s"
//	requests_per_second = 4
//	burst = 4
//
//	[cache]
//	path = "/tmp/resume.cache.db"
//	disabled = false
//
//	[telemetry]
//	endpoint = "localhost:4317"
//	protocol = "grpc"
//	insecure = true
//	debug = false
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vinayprograms/resumekit/errors"
)

// EnvPath names the environment variable that overrides the config search.
const EnvPath = "RESUMEKIT_CONFIG"

// DefaultUserAgent identifies the fetch transport.
const DefaultUserAgent = "resumekit/1.0"

// Config is the root of resumekit.toml.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Fetch     FetchConfig     `toml:"fetch"`
	Cache     CacheConfig     `toml:"cache"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// LogConfig holds diagnostic output settings.
type LogConfig struct {
	// Level is used when RESUMEKIT_LOG is unset.
	Level string `toml:"level"`
}

// FetchConfig holds transport settings for citation and project fetches.
type FetchConfig struct {
	UserAgent string `toml:"user_agent"`

	// Timeout is a Go duration string applied per request. Empty means 30s.
	Timeout string `toml:"timeout"`

	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// CacheConfig holds resolved-record cache settings.
type CacheConfig struct {
	// Path of the bbolt file. Empty means "<input>.cache.db".
	Path     string `toml:"path"`
	Disabled bool   `toml:"disabled"`
}

// TelemetryConfig holds span export settings.
type TelemetryConfig struct {
	Endpoint string `toml:"endpoint"`
	Protocol string `toml:"protocol"`
	Insecure bool   `toml:"insecure"`
	Debug    bool   `toml:"debug"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log:   LogConfig{Level: "warn"},
		Fetch: FetchConfig{UserAgent: DefaultUserAgent, Timeout: "30s"},
	}
}

// StandardPaths returns the config file locations in order of priority.
func StandardPaths() []string {
	paths := []string{"resumekit.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "resumekit", "resumekit.toml"))
	}
	return paths
}

// Load reads RESUMEKIT_CONFIG when set, otherwise the first existing
// standard path. It returns the path used, or "" when defaults apply.
func Load() (*Config, string, error) {
	if path := os.Getenv(EnvPath); path != "" {
		cfg, err := LoadFile(path)
		return cfg, path, err
	}
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			cfg, err := LoadFile(path)
			return cfg, path, err
		}
	}
	return Default(), "", nil
}

// LoadFile reads one TOML file over the defaults. Unknown keys are rejected
// so typos do not silently fall back to defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeBadConfig, "reading "+path)
	}
	return Parse(string(data))
}

// Parse decodes TOML text over the defaults.
func Parse(text string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeBadConfig, "decoding config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Newf(errors.ErrCodeBadConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that TOML typing cannot.
func (c *Config) Validate() error {
	if _, err := c.FetchTimeout(); err != nil {
		return err
	}
	if c.Fetch.RequestsPerSecond < 0 {
		return errors.New(errors.ErrCodeBadConfig, "fetch.requests_per_second must not be negative")
	}
	if c.Fetch.Burst < 0 {
		return errors.New(errors.ErrCodeBadConfig, "fetch.burst must not be negative")
	}
	switch c.Telemetry.Protocol {
	case "", "grpc", "http":
	default:
		return errors.Newf(errors.ErrCodeBadConfig, "telemetry.protocol %q (use grpc or http)", c.Telemetry.Protocol)
	}
	return nil
}

// FetchTimeout parses fetch.timeout.
func (c *Config) FetchTimeout() (time.Duration, error) {
	if c.Fetch.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrCodeBadConfig, "fetch.timeout")
	}
	if d < 0 {
		return 0, errors.New(errors.ErrCodeBadConfig, "fetch.timeout must not be negative")
	}
	return d, nil
}

// CachePath returns the bbolt file for an input file, or "" when the cache
// is disabled.
func (c *Config) CachePath(input string) string {
	if c.Cache.Disabled {
		return ""
	}
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return input + ".cache.db"
}
