package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"github.com/tobsdb/tabq/internal/auth"
	"github.com/tobsdb/tabq/internal/paging"
	"github.com/tobsdb/tabq/internal/source"
	"github.com/tobsdb/tabq/pkg"
)

const (
	DEFAULT_PORT         = 7085
	DEFAULT_CONFIG_FILE  = "tabq.yaml"
	DEFAULT_REMOTE_DELAY = 300
	DEFAULT_LOG_LEVEL    = "info"
	DEFAULT_LOG_MAX_SIZE = 10
	DEFAULT_LOG_BACKUPS  = 3
	ENV_PREFIX           = "TABQ_"
)

type LogConfig struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
}

type UserConfig struct {
	Name     string `koanf:"name"`
	Password string `koanf:"password"`
	Role     string `koanf:"role"`
}

// RemoteConfig points a table's search at a table on another server.
type RemoteConfig struct {
	URL      string `koanf:"url"`
	Table    string `koanf:"table"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

type TableConfig struct {
	Source source.Config `koanf:"source"`
	Remote *RemoteConfig `koanf:"remote"`
}

type Config struct {
	Port             int                    `koanf:"port"`
	Schema           string                 `koanf:"schema"`
	ItemsPerPage     int                    `koanf:"items_per_page"`
	RemoteDebounceMs int                    `koanf:"remote_debounce_ms"`
	Log              LogConfig              `koanf:"log"`
	Users            []UserConfig           `koanf:"users"`
	Tables           map[string]TableConfig `koanf:"tables"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"port":               DEFAULT_PORT,
		"items_per_page":     paging.DEFAULT_PAGE_SIZE,
		"remote_debounce_ms": DEFAULT_REMOTE_DELAY,
		"log.level":          DEFAULT_LOG_LEVEL,
		"log.max_size_mb":    DEFAULT_LOG_MAX_SIZE,
		"log.max_backups":    DEFAULT_LOG_BACKUPS,
	}
}

func findConfigFile(explicit string) string {
	if len(explicit) > 0 {
		return explicit
	}
	for _, name := range []string{DEFAULT_CONFIG_FILE, "tabq.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// configKey maps TABQ_LOG_LEVEL and --log-level style names to log.level.
func configKey(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "-", "_"))
	if strings.HasPrefix(s, "log_") {
		return "log." + strings.TrimPrefix(s, "log_")
	}
	return s
}

// Load reads configuration with precedence flags > env > file > defaults.
// flags may be nil; only flags that were explicitly set are applied.
func Load(cfg_file string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	cfg_file = findConfigFile(cfg_file)
	if len(cfg_file) > 0 {
		if err := k.Load(file.Provider(cfg_file), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfg_file, err)
		}
	}

	if err := k.Load(env.Provider(ENV_PREFIX, ".", func(s string) string {
		return configKey(strings.TrimPrefix(s, ENV_PREFIX))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return configKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfg_file

	// flag paths are relative to the working directory
	if flags != nil && flags.Changed("schema") {
		if abs, err := filepath.Abs(cfg.Schema); err == nil {
			cfg.Schema = abs
		}
	}

	if len(cfg_file) > 0 {
		if abs, err := filepath.Abs(cfg_file); err == nil {
			cfg.resolvePaths(filepath.Dir(abs))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolvePaths makes file paths in the config relative to base.
func (cfg *Config) resolvePaths(base string) {
	cfg.Schema = resolvePathRelativeTo(cfg.Schema, base)
	for name, t := range cfg.Tables {
		t.Source.Path = resolvePathRelativeTo(t.Source.Path, base)
		cfg.Tables[name] = t
	}
}

func resolvePathRelativeTo(path, base string) string {
	if len(path) == 0 || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func (cfg *Config) Validate() error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("Invalid port: %d", cfg.Port)
	}
	if cfg.ItemsPerPage <= 0 {
		return fmt.Errorf("items_per_page must be positive; got %d", cfg.ItemsPerPage)
	}
	switch cfg.Log.Level {
	case "none", "off", "error", "warn", "warning", "info", "debug":
	default:
		return fmt.Errorf("Invalid log level: %s", cfg.Log.Level)
	}
	for _, u := range cfg.Users {
		if len(u.Name) == 0 {
			return fmt.Errorf("user without a name")
		}
		if _, err := auth.ParseUserRole(u.Role); err != nil {
			return fmt.Errorf("user %s: %w", u.Name, err)
		}
	}
	for name, t := range cfg.Tables {
		if len(t.Source.Path) == 0 && len(t.Source.DSN) == 0 {
			return fmt.Errorf("table %s: source needs a path or dsn", name)
		}
		if t.Remote != nil && len(t.Remote.URL) == 0 {
			return fmt.Errorf("table %s: remote needs a url", name)
		}
	}
	return nil
}

// BuildUsers hashes the configured passwords.
func (cfg *Config) BuildUsers() (auth.Users, error) {
	users := auth.Users{}
	for _, u := range cfg.Users {
		role, err := auth.ParseUserRole(u.Role)
		if err != nil {
			return nil, err
		}
		user, err := auth.NewUser(u.Name, u.Password, role)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", u.Name, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// ApplyLogging sets the global log level and file output.
func (cfg *Config) ApplyLogging() {
	pkg.SetLogLevel(pkg.ParseLogLevel(cfg.Log.Level))
	if len(cfg.Log.File) > 0 {
		pkg.SetLogFile(pkg.LogFileOptions{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		})
	}
}
