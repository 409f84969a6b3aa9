package main

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/costnav/costnav/internal/security"
	"github.com/costnav/costnav/internal/server"
	"github.com/costnav/costnav/internal/service"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Resolve one question and print the answer envelope as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		question := strings.Join(args, " ")

		if vr := security.NewPromptValidator(cfg.MaxQuestionLength).Validate(question); !vr.Valid {
			return errors.New(vr.Message)
		}
		if found, kind := server.NewPHIDetector(cfg).Detect(question); found {
			return errors.New("please remove personal health information (" + kind + ") from your question")
		}
		if cfg.OracleAPIKey() == "" {
			return errors.New("no API key configured for oracle provider " + cfg.OracleProvider)
		}

		ctx := cmd.Context()
		store, err := service.NewPostgresService(ctx, cfg.DSN(), 2,
			time.Duration(cfg.StatementTimeoutMs)*time.Millisecond)
		if err != nil {
			return err
		}
		defer store.Close()

		oracle, err := server.NewOracle(cfg)
		if err != nil {
			return err
		}

		env := server.NewResolver(cfg, oracle, store).Resolve(ctx, question)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	},
}
