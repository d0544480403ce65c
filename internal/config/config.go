// Package config loads exsanitize configuration.
//
// Values are layered, lowest to highest precedence: built-in defaults, an
// optional YAML file, EXSANITIZE_* environment variables and explicitly set
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "EXSANITIZE_"

// DefaultFiles are the config file names looked up in the working
// directory when no file is given explicitly.
var DefaultFiles = []string{"exsanitize.yaml", "exsanitize.yml"}

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatNone  = "none"
)

// Config holds all configuration options.
type Config struct {
	DataSheet   string       `koanf:"data_sheet"`
	RangesSheet string       `koanf:"ranges_sheet"`
	Output      OutputConfig `koanf:"output"`
	Log         LogConfig    `koanf:"log"`
	Server      ServerConfig `koanf:"server"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// OutputConfig controls what the CLI prints and writes.
type OutputConfig struct {
	Dir         string `koanf:"dir"`
	CleanFile   string `koanf:"clean_file"`
	BadFile     string `koanf:"bad_file"`
	Format      string `koanf:"format"`
	PreviewRows int    `koanf:"preview_rows"`
	Pretty      bool   `koanf:"pretty"`
	Write       bool   `koanf:"write"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	MaxUploadBytes  int64         `koanf:"max_upload_bytes"`
	MaxResults      int           `koanf:"max_results"`
	ResultTTL       time.Duration `koanf:"result_ttl"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Defaults returns the built-in configuration values keyed by config path.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"data_sheet":              "",
		"ranges_sheet":            "",
		"output.dir":              ".",
		"output.clean_file":       "clean_data.xlsx",
		"output.bad_file":         "bad_data.xlsx",
		"output.format":           FormatTable,
		"output.preview_rows":     0,
		"output.pretty":           false,
		"output.write":            true,
		"log.level":               "info",
		"log.format":              "text",
		"server.addr":             "127.0.0.1:8501",
		"server.max_upload_bytes": int64(32 << 20),
		"server.max_results":      100,
		"server.result_ttl":       time.Hour,
		"server.read_timeout":     30 * time.Second,
		"server.write_timeout":    60 * time.Second,
		"server.shutdown_timeout": 10 * time.Second,
	}
}

// flagKeys maps command-line flag names to config paths.
var flagKeys = map[string]string{
	"data-sheet":       "data_sheet",
	"ranges-sheet":     "ranges_sheet",
	"out-dir":          "output.dir",
	"clean-file":       "output.clean_file",
	"bad-file":         "output.bad_file",
	"format":           "output.format",
	"preview-rows":     "output.preview_rows",
	"pretty":           "output.pretty",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"addr":             "server.addr",
	"max-upload-bytes": "server.max_upload_bytes",
}

var sections = []string{"output", "log", "server"}

// Load loads configuration from defaults, the config file, the environment
// and flags. cfgFile may be empty; flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	path := findConfigFile(cfgFile)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment: EXSANITIZE_LOG_LEVEL -> log.level
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			if f.Name == "no-write" {
				noWrite, _ := flags.GetBool("no-write")
				return "output.write", !noWrite
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns the explicit path, or the first default file that
// exists in the working directory, or "".
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// envKey turns an environment variable name into a config path. The first
// underscore after a known section name becomes the path separator.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// Validate checks option values.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]string{FormatTable, FormatJSON, FormatNone}, c.Output.Format) {
		errs = append(errs, fmt.Errorf("invalid output format: %q (must be table, json, or none)", c.Output.Format))
	}
	if c.Output.CleanFile == "" || c.Output.BadFile == "" {
		errs = append(errs, errors.New("output file names cannot be empty"))
	}
	if c.Output.PreviewRows < 0 {
		errs = append(errs, errors.New("preview rows cannot be negative"))
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("invalid log format: %q (must be text or json)", c.Log.Format))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server max upload bytes must be positive"))
	}
	if c.Server.MaxResults <= 0 {
		errs = append(errs, errors.New("server max results must be positive"))
	}
	if c.Server.ResultTTL <= 0 {
		errs = append(errs, errors.New("server result ttl must be positive"))
	}

	return errors.Join(errs...)
}
