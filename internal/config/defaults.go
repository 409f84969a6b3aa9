package config

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"
	DefaultEnvFile     = ".env"

	DefaultRateLimitPerMinute    = 60
	DefaultAskRateLimitPerMinute = 10

	DefaultPostgresHost = "localhost"
	DefaultPostgresPort = 5432
	DefaultPostgresDB   = "healthcare"
	DefaultDBMaxConns   = 10

	DefaultStatementTimeoutMs = 5000
	DefaultMaxResultRows      = 100

	DefaultOracleProvider       = "anthropic"
	DefaultOracleTimeoutSeconds = 30

	DefaultMaxQuestionLength = 2000

	DefaultShutdownTimeoutSeconds = 30
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}

// DefaultPHIKeywords are refused in questions on top of the built-in
// SSN, MRN and date-of-birth patterns.
var DefaultPHIKeywords = []string{
	"social security", "patient id", "insurance member id",
	"policy number", "credit card",
}
