package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Environment string `json:"environment"`
	APIPrefix   string `json:"api_prefix"`
	LogLevel    string `json:"log_level"`

	// CORS
	CORSOrigins []string `json:"cors_origins"`

	// Rate Limiting
	RateLimitPerMinute    int `json:"rate_limit_per_minute"`
	AskRateLimitPerMinute int `json:"ask_rate_limit_per_minute"` // each /ask spends an oracle completion; 0 disables

	// Database: DatabaseURL wins over the discrete settings
	DatabaseURL      string `json:"database_url"`
	PostgresUser     string `json:"postgres_user"`
	PostgresPassword string `json:"postgres_password"`
	PostgresDB       string `json:"postgres_db"`
	PostgresHost     string `json:"postgres_host"`
	PostgresPort     int    `json:"postgres_port"`
	DBMaxConns       int32  `json:"db_max_conns"`

	// Query safety
	StatementTimeoutMs int  `json:"statement_timeout_ms"`
	MaxResultRows      int  `json:"max_result_rows"`
	QueryAllowList     bool `json:"query_allow_list"`

	// Oracle
	OracleProvider       string `json:"oracle_provider"` // anthropic | openai
	OracleModel          string `json:"oracle_model"`
	OracleTimeoutSeconds int    `json:"oracle_timeout_seconds"`
	AnthropicAPIKey      string `json:"anthropic_api_key"`
	AnthropicBaseURL     string `json:"anthropic_base_url"` // override for a compatible proxy
	OpenAIAPIKey         string `json:"openai_api_key"`
	OpenAIBaseURL        string `json:"openai_base_url"`

	// Security
	MaxQuestionLength  int      `json:"max_question_length"`
	EnablePHIDetection bool     `json:"enable_phi_detection"`
	PHIKeywords        []string `json:"phi_keywords"`
	EnableAuditLogging bool     `json:"enable_audit_logging"`

	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds"`
}

func Load() (*Config, error) {
	if err := loadDotEnv(getEnv("COSTNAV_ENV_FILE", DefaultEnvFile)); err != nil {
		return nil, err
	}

	cfg := &Config{
		Host:                   DefaultHost,
		Port:                   DefaultPort,
		Environment:            DefaultEnvironment,
		APIPrefix:              DefaultAPIPrefix,
		LogLevel:               DefaultLogLevel,
		CORSOrigins:            DefaultCORSOrigins,
		RateLimitPerMinute:     DefaultRateLimitPerMinute,
		AskRateLimitPerMinute:  DefaultAskRateLimitPerMinute,
		PostgresHost:           DefaultPostgresHost,
		PostgresPort:           DefaultPostgresPort,
		PostgresDB:             DefaultPostgresDB,
		DBMaxConns:             DefaultDBMaxConns,
		StatementTimeoutMs:     DefaultStatementTimeoutMs,
		MaxResultRows:          DefaultMaxResultRows,
		QueryAllowList:         true,
		OracleProvider:         DefaultOracleProvider,
		OracleTimeoutSeconds:   DefaultOracleTimeoutSeconds,
		MaxQuestionLength:      DefaultMaxQuestionLength,
		EnablePHIDetection:     true,
		PHIKeywords:            DefaultPHIKeywords,
		EnableAuditLogging:     true,
		ShutdownTimeoutSeconds: DefaultShutdownTimeoutSeconds,
	}

	// Load from JSON config file if specified
	if path := getEnv("COSTNAV_CONFIG", ""); path != "" {
		if err := loadJSON(path, cfg); err != nil {
			return nil, err
		}
	}

	// Environment overrides
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv fills unset environment variables from path. A missing file is fine.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func loadJSON(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("COSTNAV_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("COSTNAV_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := getEnv("COSTNAV_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("COSTNAV_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("COSTNAV_CORS_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = r
		}
	}
	if v := getEnv("ASK_RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.AskRateLimitPerMinute = r
		}
	}

	if v := getEnv("DATABASE_URL", ""); v != "" {
		cfg.DatabaseURL = v
	}
	if v := getEnv("POSTGRES_USER", ""); v != "" {
		cfg.PostgresUser = v
	}
	if v := getEnv("POSTGRES_PASSWORD", ""); v != "" {
		cfg.PostgresPassword = v
	}
	if v := getEnv("POSTGRES_DB", ""); v != "" {
		cfg.PostgresDB = v
	}
	if v := getEnv("POSTGRES_HOST", ""); v != "" {
		cfg.PostgresHost = v
	}
	if v := getEnv("POSTGRES_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.PostgresPort = p
		}
	}
	if v := getEnv("STATEMENT_TIMEOUT_MS", ""); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.StatementTimeoutMs = ms
		}
	}
	if v := getEnv("MAX_RESULT_ROWS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxResultRows = n
		}
	}
	if v := getEnv("QUERY_ALLOW_LIST", ""); v != "" {
		cfg.QueryAllowList = v == "true" || v == "1"
	}

	if v := getEnv("ORACLE_PROVIDER", ""); v != "" {
		cfg.OracleProvider = strings.ToLower(v)
	}
	if v := getEnv("ORACLE_MODEL", ""); v != "" {
		cfg.OracleModel = v
	}
	if v := getEnv("ORACLE_TIMEOUT_SECONDS", ""); v != "" {
		if s, err := strconv.Atoi(v); err == nil {
			cfg.OracleTimeoutSeconds = s
		}
	}
	if v := getEnv("ANTHROPIC_API_KEY", ""); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := getEnv("ANTHROPIC_BASE_URL", ""); v != "" {
		cfg.AnthropicBaseURL = v
	}
	if v := getEnv("OPENAI_API_KEY", ""); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := getEnv("OPENAI_BASE_URL", ""); v != "" {
		cfg.OpenAIBaseURL = v
	}
	if v := getEnv("ENABLE_PHI_DETECTION", ""); v != "" {
		cfg.EnablePHIDetection = v == "true" || v == "1"
	}
	if v := getEnv("ENABLE_AUDIT_LOGGING", ""); v != "" {
		cfg.EnableAuditLogging = v == "true" || v == "1"
	}
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.OracleProvider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("config: unknown oracle_provider %q (want anthropic or openai)", c.OracleProvider)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.MaxResultRows < 0 {
		return fmt.Errorf("config: max_result_rows must not be negative")
	}
	return nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DSN returns DatabaseURL, or a postgres URL assembled from the discrete
// settings when it is unset.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.PostgresHost, strconv.Itoa(c.PostgresPort)),
		Path:   "/" + c.PostgresDB,
	}
	if c.PostgresUser != "" {
		if c.PostgresPassword != "" {
			u.User = url.UserPassword(c.PostgresUser, c.PostgresPassword)
		} else {
			u.User = url.User(c.PostgresUser)
		}
	}
	return u.String()
}

// OracleAPIKey returns the key for the configured provider.
func (c *Config) OracleAPIKey() string {
	if c.OracleProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.AnthropicAPIKey
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
