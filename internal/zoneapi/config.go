package zoneapi

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zoneinfo/go-tzif/zoneinfo"
)

// Config is the tzserve configuration file.
type Config struct {
	// Address is the listen address.
	Address string `yaml:"address"`
	// ZoneinfoDir is the directory zones are served from.
	ZoneinfoDir string `yaml:"zoneinfo_dir"`
	// LogLevel is a zap level name such as "debug" or "warn".
	LogLevel string `yaml:"log_level"`
}

// DefaultAddress is used when neither the config file nor a flag names
// a listen address.
const DefaultAddress = "127.0.0.1:8321"

// LoadConfig reads the YAML configuration at path. A missing file is
// not an error; it yields the zero configuration so flag and built-in
// defaults take over.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveZoneinfoDir picks the directory to serve: the configured one
// when set, otherwise the first search path that exists on this host.
func ResolveZoneinfoDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	for _, dir := range zoneinfo.SearchPaths() {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			return dir, nil
		}
	}
	return "", errors.New("no zoneinfo directory found; configure one explicitly")
}
