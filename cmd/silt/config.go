package main

import (
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/siltdb/silt"
)

type shellConfig struct {
	Logger loggerConfig `yaml:"logger"`
	Dir    string       `yaml:"dir"`
	DB     dbConfig     `yaml:"db"`
}

type loggerConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type dbConfig struct {
	MemtableLimit int `yaml:"memtable_limit"`
	MaxSegments   int `yaml:"max_segments"`
}

func defaultShellConfig() shellConfig {
	def := silt.DefaultConfig()
	return shellConfig{
		Logger: loggerConfig{Level: "info"},
		Dir:    "./data",
		DB: dbConfig{
			MemtableLimit: def.MemtableLimit,
			MaxSegments:   def.MaxSegments,
		},
	}
}

// initConfig loads the shell config from a YAML file. A missing file is
// not an error; defaults are used instead.
func initConfig(path string) (shellConfig, error) {
	cfg := defaultShellConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("config file not found, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// initLogger configures the global slog.Logger (JSON or text).
func initLogger(cfg *shellConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Logger.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logger.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
