package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"initcheck/internal/diag"
)

const configFileName = "initcheck.toml"

// fileConfig mirrors initcheck.toml.
//
//	[check]
//	format = "short"
//	jobs = 4
//	cache = true
//	request-default = ["Vehicle"]
//
//	[severity]
//	UnreachableStatement = "off"
//	DLG3002 = "warning"
type fileConfig struct {
	Check    checkConfig       `toml:"check"`
	Severity map[string]string `toml:"severity"`
}

type checkConfig struct {
	Format           string   `toml:"format"`
	Jobs             int      `toml:"jobs"`
	Cache            bool     `toml:"cache"`
	CacheDir         string   `toml:"cache-dir"`
	NoWarnings       bool     `toml:"no-warnings"`
	WarningsAsErrors bool     `toml:"warnings-as-errors"`
	WithNotes        *bool    `toml:"with-notes"`
	RequestDefault   []string `toml:"request-default"`
	MaxDiagnostics   int      `toml:"max-diagnostics"`
}

type loadedConfig struct {
	Path   string
	Config fileConfig
	Policy *diag.Policy
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadConfigFile(path string) (*loadedConfig, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Check.Jobs < 0 {
		return nil, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	if err := checkMaxDiagnostics(cfg.Check.MaxDiagnostics); err != nil {
		return nil, fmt.Errorf("%s: [check].%w", path, err)
	}
	if cfg.Check.CacheDir != "" && !filepath.IsAbs(cfg.Check.CacheDir) {
		cfg.Check.CacheDir = filepath.Join(filepath.Dir(path), cfg.Check.CacheDir)
	}
	policy, err := diag.ParsePolicy(cfg.Severity)
	if err != nil {
		return nil, fmt.Errorf("%s: [severity]: %w", path, err)
	}
	return &loadedConfig{Path: path, Config: cfg, Policy: policy}, nil
}

// loadConfig reads the explicit --config file or the nearest initcheck.toml
// above startDir. A missing file yields an empty config.
func loadConfig(explicit, startDir string) (*loadedConfig, error) {
	if explicit != "" {
		return loadConfigFile(explicit)
	}
	path, ok, err := findConfig(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &loadedConfig{}, nil
	}
	return loadConfigFile(path)
}

// checkMaxDiagnostics rejects limits the diagnostic bag cannot hold.
func checkMaxDiagnostics(n int) error {
	if n < 0 || n > diag.MaxLimit {
		return fmt.Errorf("max-diagnostics must be between 0 and %d, got %d", diag.MaxLimit, n)
	}
	return nil
}
