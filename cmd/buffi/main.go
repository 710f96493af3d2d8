// Command buffi generates a buffer-based C++ facade and bincode-compatible
// type model from an annotated Rust crate's rustdoc JSON dump (spec §1-§8).
//
// # Usage
//
//	buffi generate --doc <path> --config <path> [--out <dir>]
//	buffi verify-hermeticity --doc <path> --config <path> --ledger-uri <mongo-uri>
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gigainfosystems/buffi/errtax"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := newRootCmd(logger).Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func newRootCmd(logger *logrus.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "buffi",
		Short:         "Generate a buffer-based C++ facade from an annotated Rust crate's doc dump",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newGenerateCmd(logger))
	root.AddCommand(newVerifyHermeticityCmd(logger))
	return root
}

// exitCodeFor maps a returned error to a process exit code per spec §10.3:
// each errtax.Kind gets a distinct code so CI can distinguish "bad input
// doc" from "internal invariant failure".
func exitCodeFor(err error) int {
	var taxErr *errtax.Error
	if !errors.As(err, &taxErr) {
		return 1
	}
	switch taxErr.Kind {
	case errtax.KindDocLoad:
		return 10
	case errtax.KindUnsupportedDocSchema:
		return 11
	case errtax.KindUnsupportedConstruct:
		return 12
	case errtax.KindDanglingReference:
		return 13
	case errtax.KindAmbiguousProxy:
		return 14
	case errtax.KindNameCollision:
		return 15
	case errtax.KindCycleWithoutBoxing:
		return 20
	default:
		return 1
	}
}

func fatalf(logger *logrus.Logger, err error, msg string) error {
	logger.WithError(err).Error(msg)
	return fmt.Errorf("%s: %w", msg, err)
}
