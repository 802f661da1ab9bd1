package cliparse

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBaseURL   string
	StateDir     string
	Token        string
	PollInterval time.Duration
	LogLevel     string
}

// fileConfig is the optional YAML config file shape.
type fileConfig struct {
	APIURL       string `yaml:"api_url"`
	StateDir     string `yaml:"state_dir"`
	Token        string `yaml:"token"`
	PollInterval string `yaml:"poll_interval"`
	LogLevel     string `yaml:"log_level"`
}

// Parse resolves configuration in precedence order: flags, then environment
// variables, then the YAML config file, then defaults. The returned slice
// holds the remaining positional arguments (subcommand and its operands).
func Parse(args []string) (Config, []string, error) {
	var cfg Config
	var configPath string
	var intervalStr string

	fs := flag.NewFlagSet("votespace", flag.ContinueOnError)
	fs.StringVar(&cfg.APIBaseURL, "api", "", "VoteSpace API base URL")
	fs.StringVar(&cfg.StateDir, "state-dir", "", "Local state directory")
	fs.StringVar(&cfg.Token, "token", "", "Bearer token (prefer env)")
	fs.StringVar(&intervalStr, "interval", "", "Watch refresh interval (e.g. 5s)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&configPath, "config", "", "Path to config.yaml")

	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}

	// Fall back to environment variables
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = os.Getenv("VOTESPACE_API_URL")
	}
	if cfg.StateDir == "" {
		cfg.StateDir = os.Getenv("VOTESPACE_STATE_DIR")
	}
	if cfg.Token == "" {
		cfg.Token = os.Getenv("VOTESPACE_TOKEN")
	}
	if intervalStr == "" {
		intervalStr = os.Getenv("VOTESPACE_POLL_INTERVAL")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("VOTESPACE_LOG_LEVEL")
	}

	// Then the config file
	fc, err := loadFile(configPath)
	if err != nil {
		return Config{}, nil, err
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = fc.APIURL
	}
	if cfg.StateDir == "" {
		cfg.StateDir = fc.StateDir
	}
	if cfg.Token == "" {
		cfg.Token = fc.Token
	}
	if intervalStr == "" {
		intervalStr = fc.PollInterval
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = fc.LogLevel
	}

	// Then defaults
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfg.StateDir = filepath.Join(home, ".votespace")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if intervalStr == "" {
		cfg.PollInterval = 5 * time.Second
	} else {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return Config{}, nil, fmt.Errorf("invalid interval %q: %w", intervalStr, err)
		}
		if d <= 0 {
			return Config{}, nil, fmt.Errorf("interval must be positive")
		}
		cfg.PollInterval = d
	}

	return cfg, fs.Args(), nil
}

// loadFile reads the YAML config file. When no path is given the default
// location is tried and a missing file is not an error; an explicit path
// that cannot be read is.
func loadFile(path string) (fileConfig, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return fileConfig{}, nil
		}
		path = filepath.Join(home, ".votespace", "config.yaml")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return fileConfig{}, fmt.Errorf("cannot read config file: %w", err)
		}
		return fileConfig{}, nil
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return fc, nil
}
