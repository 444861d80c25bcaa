package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load читает YAML-пресет поверх конфигурации по умолчанию.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение пресета %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор пресета %s: %w", path, err)
	}
	return cfg, nil
}

// Save сохраняет конфигурацию как YAML-пресет.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
