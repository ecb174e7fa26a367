// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source kinds for the remote query collaborator
const (
	SourceWeb       = "web"
	SourcePostgres  = "postgres"
	SourceSQLite    = "sqlite"
	SourceSnowflake = "snowflake"
)

// Config represents the application configuration
type Config struct {
	// Query source
	Source         string `yaml:"source"`
	TargetChEMBLID string `yaml:"target_chembl_id"`
	TargetName     string `yaml:"target_name"`
	StandardType   string `yaml:"standard_type"`
	AssayType      string `yaml:"assay_type"`

	// Storage
	DataPath   string `yaml:"data_path"`
	OutputPath string `yaml:"output_path"`

	// Cleaning
	StandardUnit    string `yaml:"standard_unit"`
	StructureFormat string `yaml:"structure_format"`

	// ChEMBL web services
	APIBaseURL  string        `yaml:"api_base_url"`
	PageSize    int           `yaml:"page_size"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Database copies of ChEMBL
	Postgres  *PostgresConfig  `yaml:"postgres"`
	SQLite    *SQLiteConfig    `yaml:"sqlite"`
	Snowflake *SnowflakeConfig `yaml:"snowflake"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// LoadConfig loads configuration from environment variables. Variables in
// the given .env files (default ".env") are loaded first without
// overriding ones already set; a missing default file is ignored.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles); err != nil {
		return nil, err
	}

	cfg := envDefaults()

	// Load the database configuration for the selected source only
	var err error
	switch cfg.Source {
	case SourcePostgres:
		cfg.Postgres, err = LoadPostgresConfig()
	case SourceSQLite:
		cfg.SQLite, err = LoadSQLiteConfig()
	case SourceSnowflake:
		cfg.Snowflake, err = LoadSnowflakeConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", cfg.Source, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfigFile loads the environment configuration and overlays the YAML
// file at path on top of it
func LoadConfigFile(path string, envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment values are the base; keys present in the file win
	cfg := envDefaults()
	if pg, err := LoadPostgresConfig(); err == nil {
		cfg.Postgres = pg
	}
	if lite, err := LoadSQLiteConfig(); err == nil {
		cfg.SQLite = lite
	}
	if sf, err := LoadSnowflakeConfig(); err == nil {
		cfg.Snowflake = sf
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.Source = strings.ToLower(cfg.Source)
	if cfg.TargetName == "" {
		cfg.TargetName = cfg.TargetChEMBLID
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envDefaults reads the non-database settings from the environment
func envDefaults() *Config {
	cfg := &Config{
		Source:          strings.ToLower(getEnv("CHEMBL_SOURCE", SourceWeb)),
		TargetChEMBLID:  getEnv("CHEMBL_TARGET_ID", ""),
		TargetName:      getEnv("CHEMBL_TARGET_NAME", ""),
		StandardType:    getEnv("CHEMBL_STANDARD_TYPE", "IC50"),
		AssayType:       getEnv("CHEMBL_ASSAY_TYPE", "B"),
		DataPath:        getEnv("CHEMBL_DATA_PATH", "data"),
		OutputPath:      getEnv("CHEMBL_OUTPUT_PATH", ""),
		StandardUnit:    getEnv("CHEMBL_STANDARD_UNIT", "nM"),
		StructureFormat: getEnv("CHEMBL_STRUCTURE_FORMAT", "json"),
		APIBaseURL:      getEnv("CHEMBL_API_URL", "https://www.ebi.ac.uk/chembl/api/data"),
		PageSize:        getEnvAsInt("CHEMBL_PAGE_SIZE", 1000),
		HTTPTimeout:     time.Duration(getEnvAsInt("CHEMBL_HTTP_TIMEOUT_SECONDS", 60)) * time.Second,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
	}
	if cfg.TargetName == "" {
		cfg.TargetName = cfg.TargetChEMBLID
	}
	return cfg
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.TargetChEMBLID == "" {
		return errors.New("target ChEMBL ID is required (CHEMBL_TARGET_ID)")
	}

	if c.DataPath == "" {
		return errors.New("data path cannot be empty")
	}

	// Cached tables always hold structures as text
	switch c.StructureFormat {
	case "json":
	case "mapping":
		return errors.New("structure format \"mapping\" cannot read cached tables (want json)")
	default:
		return fmt.Errorf("unknown structure format %q (want json)", c.StructureFormat)
	}

	switch c.Source {
	case SourceWeb:
		if c.APIBaseURL == "" {
			return errors.New("ChEMBL API URL is required for the web source")
		}
		if c.PageSize <= 0 {
			return errors.New("page size must be positive")
		}
	case SourcePostgres:
		if c.Postgres == nil {
			return errors.New("postgreSQL configuration is required")
		}
	case SourceSQLite:
		if c.SQLite == nil || c.SQLite.Path == "" {
			return errors.New("sqlite configuration is required")
		}
	case SourceSnowflake:
		if c.Snowflake == nil {
			return errors.New("snowflake configuration is required")
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}

	return nil
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
