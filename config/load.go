package config

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads configuration from the given YAML file, falling back to
// environment variables only when the path is empty. The path may also be
// supplied through CYBERMAP_CONFIG.
func Load(path string) (*AppConfig, error) {
	if path == "" {
		path = os.Getenv("CYBERMAP_CONFIG")
	}
	cfg := &AppConfig{}
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
