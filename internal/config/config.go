// Package config loads config.toml and an optional .env overlay, and merges
// them with CLI flags under a fixed precedence: CLI flag > config file >
// built-in default.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/platform"
)

// FileConfig is the shape of config.toml.
type FileConfig struct {
	Roots          []string          `toml:"roots"`
	TimeoutSeconds *int              `toml:"timeout_seconds"`
	Verbose        *bool             `toml:"verbose"`
	Progressive    *bool             `toml:"progressive"`
	Disable        []string          `toml:"disable"`
	NoDocker       *bool             `toml:"no_docker"`
	Caches         map[string]string `toml:"caches"`
}

// LoadFile reads config.toml at path. A missing file is not an error — it
// returns a zero-value FileConfig, matching "optional config file" in the
// external-interfaces contract.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fc, nil
	}
	_, err := toml.DecodeFile(path, &fc)
	return fc, err
}

// LoadDotEnv loads a .env file from the current directory, if present, into
// the process environment. Resolve reads no environment variables itself.
// It is best-effort: a missing .env is silently skipped.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Flags carries the subset of CLI flags relevant to config resolution. A
// nil pointer means "the flag was not explicitly passed" so the config file
// value (or default) applies instead.
type Flags struct {
	Roots    []string
	Timeout  *time.Duration
	Verbose  *bool
	Disable  []string
	NoDocker *bool
}

const defaultTimeout = 30 * time.Second

// Resolve merges CLI flags over the config file over built-in defaults into
// a ready-to-use detector Config.
func Resolve(file FileConfig, flags Flags, plat *platform.Platform) *bloat.Config {
	cfg := &bloat.Config{
		Platform:          plat,
		DockerEnabled:     true,
		Disabled:          map[string]bool{},
		SubprocessTimeout: defaultTimeout,
		CacheOverrides:    map[string]string{},
	}

	if len(flags.Roots) > 0 {
		cfg.Roots = flags.Roots
	} else if len(file.Roots) > 0 {
		cfg.Roots = file.Roots
	} else {
		cfg.Roots = []string{plat.Home()}
	}

	if flags.Timeout != nil {
		cfg.SubprocessTimeout = *flags.Timeout
	} else if file.TimeoutSeconds != nil {
		cfg.SubprocessTimeout = time.Duration(*file.TimeoutSeconds) * time.Second
	}

	if flags.Verbose != nil {
		cfg.Verbose = *flags.Verbose
	} else if file.Verbose != nil {
		cfg.Verbose = *file.Verbose
	}

	// A detector is disabled only when named in the file's or the flag's
	// disable list; absence from both never disables anything.
	for _, name := range file.Disable {
		cfg.Disabled[name] = true
	}
	for _, name := range flags.Disable {
		cfg.Disabled[name] = true
	}

	dockerDisabledByFile := file.NoDocker != nil && *file.NoDocker
	dockerDisabledByFlag := flags.NoDocker != nil && *flags.NoDocker
	cfg.DockerEnabled = !dockerDisabledByFile && !dockerDisabledByFlag

	for tool, path := range file.Caches {
		cfg.CacheOverrides[tool] = path
	}

	return cfg
}
