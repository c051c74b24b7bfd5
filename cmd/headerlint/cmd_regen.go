package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexcodex/headerlint/cmd/internal/cliutils"
	"github.com/lexcodex/headerlint/cmd/internal/lintcfg"
	"github.com/lexcodex/headerlint/cmd/internal/toolchain"
)

func newRegenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regen <SolutionDir>",
		Short: "Regenerate IDE project files with the engine's Build.bat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := cliutils.LoadDotEnv(args[0]); err != nil {
				s.console.Warnf("load .env: %v", err)
			}
			project, err := lintcfg.FindProject(args[0])
			if err != nil {
				return err
			}
			version, err := lintcfg.EngineVersion(project)
			if err != nil {
				return err
			}
			base, err := lintcfg.LoadBase(baseConfigPath())
			if err != nil {
				return err
			}
			engineSource, ok := base.EnginePath[version]
			if !ok {
				return fmt.Errorf("%w: %s", lintcfg.ErrUnsupportedEngine, version)
			}
			s.console.Infof("Project: %s", project)
			s.console.Infof("Engine: %s", version)
			s.console.Infof("Build script: %s", toolchain.BuildScript(engineSource))
			return toolchain.NewRegenerator(engineSource, s.sink).Run(cmd.Context(), project)
		},
	}
}
