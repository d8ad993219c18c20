package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr       string `yaml:"addr"`
	TickRateHz int    `yaml:"tick_rate_hz"`

	ContentDir string `yaml:"content_dir"`
	SchemaPath string `yaml:"schema_path"`
	DataDir    string `yaml:"data_dir"`
	DBPath     string `yaml:"db_path"`

	DisableDB bool `yaml:"disable_db"`
}

func Default() Config {
	return Config{
		Addr:       ":8080",
		TickRateHz: 20,
		ContentDir: "./configs/expeditions",
		SchemaPath: "./schemas/expedition.schema.json",
		DataDir:    "./data",
		DBPath:     "./data/progress.db",
	}
}

// Load reads server.yaml over the defaults. A missing file keeps the
// defaults.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("server.yaml: %w", err)
	}
	if c.TickRateHz <= 0 {
		return c, fmt.Errorf("server.yaml: tick_rate_hz must be > 0")
	}
	return c, nil
}
