package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name commands look for in the working
// directory.
const DefaultFile = "vnforge.yaml"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultDSN          = "sqlite://vnforge.db"
	defaultAssetsRoot   = "assets"
	defaultManifestFile = "assets_manifest.json"
	defaultCanvasWidth  = 600
	defaultCanvasHeight = 800
)

type ProjectConfig struct {
	Project    string            `yaml:"project"`
	Version    int               `yaml:"version"`
	Storage    StorageConfig     `yaml:"storage"`
	Assets     AssetsConfig      `yaml:"assets"`
	Canvas     CanvasConfig      `yaml:"canvas"`
	Log        LogConfig         `yaml:"log"`
	Characters *CharactersConfig `yaml:"characters,omitempty"`

	// dir is the directory holding the config file; relative asset paths
	// are resolved against it.
	dir string
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type AssetsConfig struct {
	Root     string `yaml:"root"`
	Manifest string `yaml:"manifest"`
}

type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
	Output   string `yaml:"output"`
}

// envOverrides are read from VNFORGE_* variables and win over the file.
type envOverrides struct {
	StorageDriver string `envconfig:"STORAGE_DRIVER"`
	StorageDSN    string `envconfig:"STORAGE_DSN"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
	AssetsRoot    string `envconfig:"ASSETS_ROOT"`
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	cfg.dir = filepath.Dir(path)

	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	applyDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration vnforge init writes.
func Default(project string) *ProjectConfig {
	cfg := &ProjectConfig{
		Project: project,
		Version: 1,
		Log:     LogConfig{Level: "info", Encoding: "console"},
		dir:     ".",
	}
	applyDefaults(cfg)
	return cfg
}

// Write stores cfg as YAML at path.
func Write(path string, cfg *ProjectConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding project config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// AssetsRoot returns the assets directory resolved against the config file.
func (c *ProjectConfig) AssetsRoot() string {
	return c.resolve(c.Assets.Root)
}

// ManifestPath returns the manifest file resolved against the config file.
func (c *ProjectConfig) ManifestPath() string {
	return c.resolve(c.Assets.Manifest)
}

func (c *ProjectConfig) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

func applyEnv(cfg *ProjectConfig) error {
	var env envOverrides
	if err := envconfig.Process("vnforge", &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.StorageDriver != "" {
		cfg.Storage.Driver = env.StorageDriver
	}
	if env.StorageDSN != "" {
		cfg.Storage.DSN = env.StorageDSN
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.AssetsRoot != "" {
		cfg.Assets.Root = env.AssetsRoot
	}
	return nil
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = driverFromDSN(cfg.Storage.DSN)
	}
	if cfg.Storage.DSN == "" && cfg.Storage.Driver == DriverSQLite {
		cfg.Storage.DSN = defaultDSN
	}
	if cfg.Assets.Root == "" {
		cfg.Assets.Root = defaultAssetsRoot
	}
	if cfg.Assets.Manifest == "" {
		cfg.Assets.Manifest = defaultManifestFile
	}
	if cfg.Canvas.Width == 0 {
		cfg.Canvas.Width = defaultCanvasWidth
	}
	if cfg.Canvas.Height == 0 {
		cfg.Canvas.Height = defaultCanvasHeight
	}
	if cfg.Log.Output == "" {
		// stdout carries command output and the MCP stdio transport
		cfg.Log.Output = "stderr"
	}
}

func driverFromDSN(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres
	default:
		return DriverSQLite
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}

	switch cfg.Storage.Driver {
	case DriverSQLite:
		if !strings.HasPrefix(cfg.Storage.DSN, "sqlite://") {
			return fmt.Errorf("sqlite dsn must start with sqlite://")
		}
	case DriverPostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("postgres dsn is required")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}

	if cfg.Canvas.Width <= 0 || cfg.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", cfg.Canvas.Width, cfg.Canvas.Height)
	}

	if cfg.Characters != nil {
		if err := validateCharacters(cfg.Characters); err != nil {
			return err
		}
	}

	return nil
}
