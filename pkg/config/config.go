// Package config loads the yaml config file and applies SHIFTDB_* env
// overrides on top. Flags beat env, env beats file.
package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
	} `yaml:"server"`
	Migration struct {
		// Phase is one of source_only, dual_write, target_primary,
		// target_only.
		Phase string `yaml:"phase"`
	} `yaml:"migration"`
	Storage struct {
		SourcePath string `yaml:"source_path"`
		TargetPath string `yaml:"target_path"`
	} `yaml:"storage"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Verify struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron"`
	} `yaml:"verify"`
	Backfill struct {
		RatePerSec float64 `yaml:"rate_per_sec"`
	} `yaml:"backfill"`
}

// Default returns a config with workable local defaults.
func Default() *Config {
	var cfg Config
	cfg.Server.Address = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Migration.Phase = "source_only"
	cfg.Storage.SourcePath = "./.source"
	cfg.Storage.TargetPath = "./.target"
	cfg.Logging.Level = "info"
	return &cfg
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// Load reads a yaml config file. A missing file is an error; callers that
// treat the file as optional should check for it first.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (addr, phase, cfgPath string, setFlags map[string]bool) {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	phasePtr := flag.String("phase", "", "migration phase override")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrPtr, *phasePtr, *cfgPtr, setFlags
}

// LoadEnvOverrides applies environment overrides onto cfg and reports
// whether any env var was used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false

	if v := os.Getenv("SHIFTDB_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	}
	if v := os.Getenv("SHIFTDB_PHASE"); v != "" {
		envUsed = true
		cfg.Migration.Phase = strings.TrimSpace(v)
	}
	if v := os.Getenv("SHIFTDB_SOURCE_PATH"); v != "" {
		envUsed = true
		cfg.Storage.SourcePath = v
	}
	if v := os.Getenv("SHIFTDB_TARGET_PATH"); v != "" {
		envUsed = true
		cfg.Storage.TargetPath = v
	}
	if v := os.Getenv("SHIFTDB_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SHIFTDB_VERIFY_ENABLED"); v != "" {
		envUsed = true
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Verify.Enabled = b
		}
	}
	if v := os.Getenv("SHIFTDB_VERIFY_CRON"); v != "" {
		envUsed = true
		cfg.Verify.Cron = v
	}
	if v := os.Getenv("SHIFTDB_BACKFILL_RATE"); v != "" {
		envUsed = true
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backfill.RatePerSec = f
		}
	}
	return envUsed
}
