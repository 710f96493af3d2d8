package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gigainfosystems/buffi/cache"
	"github.com/gigainfosystems/buffi/config"
	"github.com/gigainfosystems/buffi/pipeline"
	"github.com/gigainfosystems/buffi/writer"
)

func newGenerateCmd(logger *logrus.Logger) *cobra.Command {
	var docPath, configPath, outDir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the full pipeline once and write the emitted C++ files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fatalf(logger, err, "load config")
			}
			if outDir != "" {
				cfg.OutputDir = outDir
			}
			if err := cfg.Validate(); err != nil {
				return fatalf(logger, err, "validate config")
			}

			raw, err := os.ReadFile(docPath)
			if err != nil {
				return fatalf(logger, err, "read doc")
			}

			deps := pipeline.Deps{Logger: logger}
			if cfg.CacheRedisAddr != "" {
				rc := cache.NewRedisCache(cfg.CacheRedisAddr, 0, cfg.DocSchemaMax)
				defer rc.Close()
				deps.DocCache = rc
			}
			if cfg.LedgerMongoURI != "" {
				store, closeStore, err := dialLedger(cmd.Context(), cfg.LedgerMongoURI)
				if err != nil {
					return fatalf(logger, err, "connect hermeticity ledger")
				}
				defer closeStore()
				deps.Ledger = store
			}

			result, err := pipeline.Generate(cmd.Context(), raw, cfg, deps)
			if err != nil {
				return fatalf(logger, err, "generate")
			}

			if err := writer.Write(cfg.OutputDir, cfg.NamespaceToken, result.Files); err != nil {
				return fatalf(logger, err, "write output")
			}

			logger.WithField("file_count", len(result.Files)).Info("generation complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&docPath, "doc", "", "path to the rustdoc JSON dump (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to the YAML config file")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory, overriding the config file's output_dir")
	_ = cmd.MarkFlagRequired("doc")

	return cmd
}
