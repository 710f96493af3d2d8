package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gigainfosystems/buffi/config"
	"github.com/gigainfosystems/buffi/pipeline"
)

func newVerifyHermeticityCmd(logger *logrus.Logger) *cobra.Command {
	var docPath, configPath, ledgerURI string

	cmd := &cobra.Command{
		Use:   "verify-hermeticity",
		Short: "Regenerate in memory and compare against the last recorded run (Testable Property 1)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fatalf(logger, err, "load config")
			}
			if err := cfg.Validate(); err != nil {
				return fatalf(logger, err, "validate config")
			}

			raw, err := os.ReadFile(docPath)
			if err != nil {
				return fatalf(logger, err, "read doc")
			}

			ledger, closeStore, err := dialLedger(cmd.Context(), ledgerURI)
			if err != nil {
				return fatalf(logger, err, "connect hermeticity ledger")
			}
			defer closeStore()

			drift, err := pipeline.VerifyHermeticity(cmd.Context(), raw, cfg, ledger)
			if err != nil {
				return fatalf(logger, err, "verify hermeticity")
			}
			if len(drift) > 0 {
				logger.WithField("drift_count", len(drift)).Error("hermeticity drift detected")
				for _, d := range drift {
					fmt.Println(d)
				}
				return fmt.Errorf("hermeticity drift detected: %d file(s) differ from the recorded run", len(drift))
			}

			logger.Info("no hermeticity drift detected")
			return nil
		},
	}

	cmd.Flags().StringVar(&docPath, "doc", "", "path to the rustdoc JSON dump (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to the YAML config file")
	cmd.Flags().StringVar(&ledgerURI, "ledger-uri", "", "MongoDB URI for the hermeticity ledger (required)")
	_ = cmd.MarkFlagRequired("doc")
	_ = cmd.MarkFlagRequired("ledger-uri")

	return cmd
}
