package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for fabpulse-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Engine database (report cache, migrations)
	Database DatabaseConfig `yaml:"database"`

	// Warehouse database (production data, read-only)
	Warehouse WarehouseConfig `yaml:"warehouse"`

	// AI configuration for the defect report generator
	AI AIConfig `yaml:"ai"`

	// Dashboard defaults
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// DatabaseConfig holds the engine's own PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"fabpulse"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"fabpulse_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`

	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"PGCONN_MAX_LIFETIME" env-default:"1h"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"PGCONN_MAX_IDLE_TIME" env-default:"30m"`
}

// WarehouseConfig holds the manufacturing data warehouse connection.
type WarehouseConfig struct {
	Host           string `yaml:"host" env:"WAREHOUSE_HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"WAREHOUSE_PORT" env-default:"5432"`
	User           string `yaml:"user" env:"WAREHOUSE_USER" env-default:"fabpulse_ro"`
	Password       string `yaml:"-" env:"WAREHOUSE_PASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"WAREHOUSE_DATABASE" env-default:"mes"`
	Schema         string `yaml:"schema" env:"WAREHOUSE_SCHEMA" env-default:"public"`
	SSLMode        string `yaml:"ssl_mode" env:"WAREHOUSE_SSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"WAREHOUSE_MAX_CONNECTIONS" env-default:"10"`

	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"WAREHOUSE_CONN_MAX_LIFETIME" env-default:"1h"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"WAREHOUSE_CONN_MAX_IDLE_TIME" env-default:"30m"`
}

// AIConfig holds the text generation endpoint used for defect reports.
// Provider selects the client implementation: "openai" (any OpenAI-compatible
// endpoint, including vLLM) or "anthropic".
type AIConfig struct {
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
}

// DashboardConfig holds defaults for the dashboard endpoints.
type DashboardConfig struct {
	// DefaultTable is the process table used when a request names none.
	DefaultTable string `yaml:"default_table" env:"DASHBOARD_DEFAULT_TABLE" env-default:"simulation_results"`

	// TablesStr is a comma-separated list of process tables the overview
	// endpoint fans out over. Defaults to the default table alone.
	TablesStr string `yaml:"tables" env:"DASHBOARD_TABLES" env-default:""`

	// DefaultLanguage is the report language when a request names none.
	DefaultLanguage string `yaml:"default_language" env:"DASHBOARD_DEFAULT_LANGUAGE" env-default:"ko"`

	// Tables is parsed from TablesStr at load time.
	Tables []string `yaml:"-"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	cfg.Dashboard.Tables = parseTables(cfg.Dashboard.TablesStr)
	if len(cfg.Dashboard.Tables) == 0 {
		cfg.Dashboard.Tables = []string{cfg.Dashboard.DefaultTable}
	}

	return cfg, nil
}

func parseTables(value string) []string {
	var tables []string
	for _, t := range strings.Split(value, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tables = append(tables, t)
		}
	}
	return tables
}

// ConnectionString returns the engine database connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// ConnectionString returns the warehouse connection string.
func (c *WarehouseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
