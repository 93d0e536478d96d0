package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read by Load when no path is given.
const DefaultFile = "mdsl.yaml"

// EnvPrefix prefixes the environment variables that override file settings.
const EnvPrefix = "MDSL_"

// Config holds all settings for migrate and codegen.
type Config struct {
	DSN           string `yaml:"database_url"`
	SchemaPath    string `yaml:"schema"`
	ModelOutDir   string `yaml:"out"`
	MigrationsDir string `yaml:"migrations"`
	Package       string `yaml:"package"`
}

// Default returns the settings used when nothing else is configured.
func Default() *Config {
	return &Config{
		SchemaPath:    "model.mdsl",
		ModelOutDir:   "models",
		MigrationsDir: "migrations",
	}
}

var reEnvRef = regexp.MustCompile(`^env\(\s*"([^"]+)"\s*\)$`)

// Load reads path (or mdsl.yaml when path is empty and the file exists),
// loads .env into the environment and applies MDSL_* overrides on top.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	file, explicit := path, path != ""
	if !explicit {
		file = DefaultFile
	}
	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(cfg)
	cfg.DSN = resolve(cfg.DSN)
	if cfg.DSN == "" {
		cfg.DSN = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

// resolve expands an env("NAME") reference.
func resolve(value string) string {
	if m := reEnvRef.FindStringSubmatch(strings.TrimSpace(value)); m != nil {
		return os.Getenv(m[1])
	}
	return value
}

func applyEnv(cfg *Config) {
	for name, dst := range map[string]*string{
		"DATABASE_URL": &cfg.DSN,
		"SCHEMA":       &cfg.SchemaPath,
		"OUT":          &cfg.ModelOutDir,
		"MIGRATIONS":   &cfg.MigrationsDir,
		"PACKAGE":      &cfg.Package,
	} {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
}
