package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file.
// If path is empty, it loads from ".env" in the current directory.
// A missing file is not an error. Variables already set in the environment
// keep their values.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// LoadConfig loads configuration from a .env file (optional) and PGML_*
// environment variables, the environment taking precedence.
func LoadConfig(envPath string) (AppConfig, error) {
	if err := LoadDotEnv(envPath); err != nil {
		return AppConfig{}, fmt.Errorf("load %s: %w", envPath, err)
	}

	envCfg, err := LoadFromEnv()
	if err != nil {
		return AppConfig{}, err
	}

	return envCfg.ToAppConfig()
}
