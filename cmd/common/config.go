package common

import (
	"errors"
	"fmt"
	"os"

	"github.com/divviup/divviup-android/client"
	"github.com/divviup/divviup-android/vdaf"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration of the dap-client command.
type Config struct {
	Task client.TaskConfig `yaml:"task"`

	// LeaderHpkeConfigList and HelperHpkeConfigList are paths to files
	// holding each aggregator's encoded HpkeConfigList.
	LeaderHpkeConfigList string `yaml:"leader_hpke_config_list"`
	HelperHpkeConfigList string `yaml:"helper_hpke_config_list"`

	// Upload sends the report to the leader instead of writing it out.
	Upload bool `yaml:"upload"`

	// Output is where the encoded report is written when not uploading.
	// Empty or "-" means stdout.
	Output string `yaml:"output"`

	Log LogConfig `yaml:"log"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DefaultConfig returns a Count task with one-hour time precision.
func DefaultConfig() *Config {
	return &Config{
		Task: client.TaskConfig{
			TimePrecision: 3600,
			Vdaf:          vdaf.Params{Scheme: vdaf.SchemeCount},
		},
		Output: "-",
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the task and that both config lists are given. The leader
// endpoint is required only when uploading.
func (c *Config) Validate() error {
	validate := c.Task.Validate
	if c.Upload {
		validate = c.Task.ValidateForUpload
	}
	if err := validate(); err != nil {
		return fmt.Errorf("task: %w", err)
	}
	if c.LeaderHpkeConfigList == "" || c.HelperHpkeConfigList == "" {
		return errors.New("leader_hpke_config_list and helper_hpke_config_list are required")
	}
	return nil
}
