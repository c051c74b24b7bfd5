package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/headerlint/cmd/internal/lintcfg"
)

var (
	flagConfig   string
	flagDebugLog string
	flagNoColor  bool
	flagVerbose  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "headerlint",
		Short:         "Canonicalize include blocks and banners of Unreal plugin sources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Base configuration file (default $"+lintcfg.EnvConfigPath+" or config/base_config.json beside the executable)")
	root.PersistentFlags().StringVar(&flagDebugLog, "debug-log", "", "Write run events as JSON lines to this file")
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable styled console output")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "List every modified or skipped file")

	root.AddCommand(newLintCmd(), newValidateCmd(), newAuditCmd(), newIndexCmd(), newRegenCmd())
	return root
}
