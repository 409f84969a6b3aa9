package server

import (
	"fmt"
	"time"

	"github.com/costnav/costnav/internal/agent"
	"github.com/costnav/costnav/internal/config"
	"github.com/costnav/costnav/internal/security"
	"github.com/costnav/costnav/internal/service"
)

// NewOracle builds the configured oracle client.
func NewOracle(cfg *config.Config) (agent.Oracle, error) {
	switch cfg.OracleProvider {
	case "anthropic":
		return agent.NewAnthropicOracle(cfg.AnthropicAPIKey, cfg.OracleModel, cfg.AnthropicBaseURL), nil
	case "openai":
		return agent.NewOpenAIOracle(cfg.OpenAIAPIKey, cfg.OracleModel, cfg.OpenAIBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.OracleProvider)
	}
}

// NewResolver wires the question pipeline around an oracle and an executor.
func NewResolver(cfg *config.Config, oracle agent.Oracle, executor agent.Executor) *agent.Resolver {
	return agent.NewResolver(
		agent.NewClassifier(oracle, time.Duration(cfg.OracleTimeoutSeconds)*time.Second),
		security.NewQueryValidator(cfg.MaxResultRows, cfg.QueryAllowList),
		executor,
		service.NewFormatter(),
		security.NewAuditLogger(cfg.EnableAuditLogging),
	)
}

// NewPHIDetector returns a detector, or one with no keywords and no
// patterns applied when detection is disabled.
func NewPHIDetector(cfg *config.Config) *security.PHIDetector {
	if !cfg.EnablePHIDetection {
		return security.NewDisabledPHIDetector()
	}
	return security.NewPHIDetector(cfg.PHIKeywords)
}
