package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/headerlint/cmd/internal/lintcfg"
	"github.com/lexcodex/headerlint/framework"
	"github.com/lexcodex/headerlint/framework/cxxindex"
	"github.com/lexcodex/headerlint/framework/lint"
	"github.com/lexcodex/headerlint/framework/rewrite"
)

func newLintCmd() *cobra.Command {
	var dryRun, noValidate bool
	cmd := &cobra.Command{
		Use:   "lint <SolutionDir> <CurrentFileDir>",
		Short: "Rewrite the include blocks of every module in the current plugin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			run, err := s.resolve(args[0], args[1])
			if err != nil {
				return err
			}
			cfg := s.setConfig(run)
			set, err := cxxindex.BuildSet(run.Layout, cfg)
			if err != nil {
				return err
			}
			files, err := cxxindex.LocalFiles(run.Layout, cfg)
			if err != nil {
				return err
			}
			proc := rewrite.NewProcessor(set, rewrite.Options{
				Conventions:    run.Conventions(),
				Whitelist:      run.Plugin.WhitelistIncludes,
				DryRun:         dryRun,
				SkipValidation: noValidate,
				Telemetry:      s.sink,
			})
			summary, err := proc.Run(cmd.Context(), rewrite.CandidatesFromRecords(files))
			if err != nil {
				return err
			}
			if _, err := s.auditFilenames(run); err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d files could not be processed", summary.Failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing files")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip the Blueprint category check on headers")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <SolutionDir> <CurrentFileDir>",
		Short: "Report Blueprint-exposed metadata without a Category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			run, err := s.resolve(args[0], args[1])
			if err != nil {
				return err
			}
			files, err := cxxindex.LocalFiles(run.Layout, s.setConfig(run))
			if err != nil {
				return err
			}
			validator := lint.NewMetadataValidator()
			total, failed := 0, 0
			for _, rec := range files {
				if rec.Ext != "h" {
					continue
				}
				data, err := os.ReadFile(rec.FullPath())
				if err != nil {
					failed++
					framework.Emit(s.sink, framework.Event{
						Type:    framework.EventFileFailed,
						Path:    rec.FullPath(),
						Message: err.Error(),
					})
					continue
				}
				for _, f := range validator.Validate(rec.FullPath(), rewrite.SplitLines(data)) {
					total++
					framework.Emit(s.sink, framework.Event{
						Type:     framework.EventMissingCategory,
						Path:     f.Path,
						Line:     f.Line,
						Metadata: map[string]interface{}{"text": f.Text},
					})
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d headers could not be read", failed)
			}
			if total > 0 {
				return fmt.Errorf("%d metadata declarations lack a category", total)
			}
			s.console.Infof("No missing categories")
			return nil
		},
	}
}

func newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <SolutionDir> <CurrentFileDir>",
		Short: "Report plugin files whose paths are too long",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			run, err := s.resolve(args[0], args[1])
			if err != nil {
				return err
			}
			n, err := s.auditFilenames(run)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%d files exceed %d characters", n, run.MaxFilenameLength())
			}
			return nil
		},
	}
}

// auditFilenames reports long paths under the plugin root. It never fails
// the run by itself.
func (s *session) auditFilenames(run *lintcfg.Run) (int, error) {
	limit := run.MaxFilenameLength()
	long, err := lint.AuditFilenames(run.PluginRoot, limit)
	if err != nil {
		return 0, err
	}
	if len(long) == 0 {
		return 0, nil
	}
	s.console.Errorf("The following files in the '%s' plugin have filenames greater than %d characters:", run.PluginName(), limit)
	for _, lp := range long {
		framework.Emit(s.sink, framework.Event{
			Type: framework.EventLongFilename,
			Path: lp.Path,
			Metadata: map[string]interface{}{
				"length": lp.Length,
				"limit":  limit,
			},
		})
	}
	return len(long), nil
}
