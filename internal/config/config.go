package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Orientation OrientationConfig `yaml:"orientation"`
	Web         WebConfig         `yaml:"web"`
	UDP         UDPConfig         `yaml:"udp"`
	Indicator   IndicatorConfig   `yaml:"indicator"`
	Log         LogConfig         `yaml:"log"`
}

type OrientationConfig struct {
	// Mode is "auto" (prefer relative orientation, fall back to absolute
	// once) or "absolute".
	Mode string `yaml:"mode"`
	// Interval is the tick cadence while the pump is running.
	Interval time.Duration `yaml:"interval"`
	// Source is "sim" or "shm".
	Source string    `yaml:"source"`
	SHM    SHMConfig `yaml:"shm"`
}

type SHMConfig struct {
	RelativePath string `yaml:"relative_path"`
	AbsolutePath string `yaml:"absolute_path"`
}

type WebConfig struct {
	Enable bool   `yaml:"enable"`
	Addr   string `yaml:"addr"`
}

type UDPConfig struct {
	Enable bool   `yaml:"enable"`
	Dest   string `yaml:"dest"`
}

type IndicatorConfig struct {
	Enable  bool          `yaml:"enable"`
	GPIOPin int           `yaml:"gpio_pin"`
	Pulse   time.Duration `yaml:"pulse"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Orientation.Mode == "" {
		cfg.Orientation.Mode = "auto"
	}
	if cfg.Orientation.Mode != "auto" && cfg.Orientation.Mode != "absolute" {
		return Config{}, fmt.Errorf("orientation.mode must be auto or absolute, got %q", cfg.Orientation.Mode)
	}
	if cfg.Orientation.Interval <= 0 {
		cfg.Orientation.Interval = 16 * time.Millisecond
	}
	if cfg.Orientation.Source == "" {
		cfg.Orientation.Source = "sim"
	}
	switch cfg.Orientation.Source {
	case "sim":
	case "shm":
		if cfg.Orientation.SHM.RelativePath == "" && cfg.Orientation.SHM.AbsolutePath == "" {
			return Config{}, fmt.Errorf("orientation.shm requires at least one buffer path when orientation.source is shm")
		}
		if cfg.Orientation.Mode == "absolute" && cfg.Orientation.SHM.AbsolutePath == "" {
			return Config{}, fmt.Errorf("orientation.shm.absolute_path is required in absolute mode")
		}
	default:
		return Config{}, fmt.Errorf("orientation.source must be sim or shm, got %q", cfg.Orientation.Source)
	}

	if cfg.Web.Addr == "" {
		cfg.Web.Addr = ":8080"
	}

	if cfg.UDP.Enable && cfg.UDP.Dest == "" {
		return Config{}, fmt.Errorf("udp.dest is required when udp.enable is true")
	}

	// Indicator defaults (safe even if disabled).
	if cfg.Indicator.GPIOPin == 0 {
		cfg.Indicator.GPIOPin = 18
	}
	if cfg.Indicator.Pulse <= 0 {
		cfg.Indicator.Pulse = 50 * time.Millisecond
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}
