package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultFile is read from the working directory when present.
const DefaultFile = "codegraph.toml"

const envPrefix = "CODEGRAPH_"

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Analysis AnalysisConfig `koanf:"analysis"`
	Acquire  AcquireConfig  `koanf:"acquire"`
	Cache    CacheConfig    `koanf:"cache"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port           int      `koanf:"port"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type AnalysisConfig struct {
	MaxFiles      int      `koanf:"max_files"`
	IncludeTests  bool     `koanf:"include_tests"`
	Workers       int      `koanf:"workers"`
	MostConnected int      `koanf:"most_connected"`
	SourceRoots   []string `koanf:"source_roots"`
}

type AcquireConfig struct {
	AllowedHosts []string      `koanf:"allowed_hosts"`
	MaxRepoMB    int64         `koanf:"max_repo_mb"`
	MaxRepoFiles int           `koanf:"max_repo_files"`
	CloneTimeout time.Duration `koanf:"clone_timeout"`
}

type CacheConfig struct {
	Size int           `koanf:"size"`
	TTL  time.Duration `koanf:"ttl"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// FlagKeys maps command-line flag names to configuration keys. Flags not
// listed here are not configuration.
var FlagKeys = map[string]string{
	"port":           "server.port",
	"max-files":      "analysis.max_files",
	"include-tests":  "analysis.include_tests",
	"workers":        "analysis.workers",
	"most-connected": "analysis.most_connected",
	"source-root":    "analysis.source_roots",
	"allowed-host":   "acquire.allowed_hosts",
	"clone-timeout":  "acquire.clone_timeout",
	"log-level":      "log.level",
	"log-format":     "log.format",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.port":             8000,
		"server.allowed_origins":  []string{"http://localhost:3000", "http://localhost:5173"},
		"analysis.max_files":      100,
		"analysis.include_tests":  false,
		"analysis.workers":        runtime.NumCPU(),
		"analysis.most_connected": 5,
		"analysis.source_roots":   []string{".", "src"},
		"acquire.allowed_hosts":   []string{"github.com"},
		"acquire.max_repo_mb":     200,
		"acquire.max_repo_files":  20000,
		"acquire.clone_timeout":   "2m",
		"cache.size":              32,
		"cache.ttl":               "10m",
		"log.level":               "info",
		"log.format":              "compact",
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults. An empty configFile reads
// DefaultFile if it exists; an explicit configFile must exist.
func Load(f *pflag.FlagSet, configFile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := configFile
	if path == "" {
		path = DefaultFile
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if configFile != "" || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// .env only fills variables that are not already set.
	_ = godotenv.Load()

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, flagKey(f)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps CODEGRAPH_ANALYSIS_MAX_FILES to analysis.max_files.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	section, rest, ok := strings.Cut(s, "_")
	if !ok {
		return section
	}
	return section + "." + rest
}

func flagKey(fs *pflag.FlagSet) func(*pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		key, ok := FlagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}

// Validate rejects settings no component can honour.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if c.Analysis.MaxFiles < 0 {
		errs = append(errs, fmt.Errorf("analysis.max_files must be >= 0, got %d", c.Analysis.MaxFiles))
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("analysis.workers must be >= 0, got %d", c.Analysis.Workers))
	}
	if c.Acquire.MaxRepoMB < 0 || c.Acquire.MaxRepoFiles < 0 {
		errs = append(errs, errors.New("acquire limits must be >= 0"))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size must be >= 0, got %d", c.Cache.Size))
	}
	return errors.Join(errs...)
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

// Read unflattens the dotted keys so they merge with nested file sections.
func (p *mapProvider) Read() (map[string]interface{}, error) {
	out := map[string]interface{}{}
	for key, value := range p.m {
		section, name, ok := strings.Cut(key, ".")
		if !ok {
			out[key] = value
			continue
		}
		sub, _ := out[section].(map[string]interface{})
		if sub == nil {
			sub = map[string]interface{}{}
			out[section] = sub
		}
		sub[name] = value
	}
	return out, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
