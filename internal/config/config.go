package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds CLI-level defaults. Everything has a sensible zero-config
// fallback; a missing config file is not an error.
type Config struct {
	Model struct {
		Path string `yaml:"path"` // model file or fragment directory
	} `yaml:"model"`
	Diagram struct {
		Format string `yaml:"format"`
		Zoom   string `yaml:"zoom"`
	} `yaml:"diagram"`
	Extract struct {
		// Ignore lists directory names skipped during extraction, on top
		// of the crawler's built-in exclusions.
		Ignore []string `yaml:"ignore"`
	} `yaml:"extract"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Model.Path = "architecture"
	cfg.Diagram.Format = "mermaid"
	cfg.Diagram.Zoom = "landscape"
	return cfg
}

// Load reads the YAML config file and applies environment overrides.
// A .env file is honored if present. A missing config file falls back to
// defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	raw, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if modelPath := os.Getenv("ARCHMAP_MODEL_PATH"); modelPath != "" {
		cfg.Model.Path = modelPath
	}
	if format := os.Getenv("ARCHMAP_DIAGRAM_FORMAT"); format != "" {
		cfg.Diagram.Format = format
	}
	if zoom := os.Getenv("ARCHMAP_DIAGRAM_ZOOM"); zoom != "" {
		cfg.Diagram.Zoom = zoom
	}

	if cfg.Model.Path == "" {
		cfg.Model.Path = "architecture"
	}
	if cfg.Diagram.Format == "" {
		cfg.Diagram.Format = "mermaid"
	}
	if cfg.Diagram.Zoom == "" {
		cfg.Diagram.Zoom = "landscape"
	}

	return cfg, nil
}
