package main

import (
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexcodex/headerlint/cmd/internal/cliutils"
	"github.com/lexcodex/headerlint/cmd/internal/lintcfg"
	"github.com/lexcodex/headerlint/framework"
	"github.com/lexcodex/headerlint/framework/cxxindex"
)

// session bundles the console and telemetry sinks of one command invocation.
type session struct {
	console  *cliutils.Console
	sink     framework.Telemetry
	debugLog *framework.JSONFileTelemetry
}

func openSession(cmd *cobra.Command) (*session, error) {
	console := cliutils.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr(), !flagNoColor, flagVerbose)
	s := &session{console: console, sink: console}
	if flagDebugLog != "" {
		debugLog, err := framework.NewJSONFileTelemetry(flagDebugLog)
		if err != nil {
			return nil, err
		}
		s.debugLog = debugLog
		s.sink = framework.MultiplexTelemetry{Sinks: []framework.Telemetry{console, debugLog}}
	}
	return s, nil
}

func (s *session) Close() {
	if n := s.console.Warnings(); n > 0 {
		s.console.Infof("Warnings: %s", s.console.Count(n))
	}
	if s.debugLog == nil {
		return
	}
	if err := s.debugLog.Close(); err != nil {
		log.Printf("close debug log: %v", err)
		return
	}
	s.console.Infof("Debug information has been written to %s", s.debugLog.Path())
}

// resolve loads the solution's .env and checks every precondition.
func (s *session) resolve(solutionDir, currentDir string) (*lintcfg.Run, error) {
	if err := cliutils.LoadDotEnv(solutionDir); err != nil {
		s.console.Warnf("load .env: %v", err)
	}
	run, err := lintcfg.Resolve(lintcfg.Options{
		SolutionDir:    solutionDir,
		CurrentDir:     currentDir,
		BaseConfigPath: baseConfigPath(),
	})
	if err != nil {
		return nil, err
	}
	s.console.Infof("Engine: %s", run.EngineVersion)
	s.console.Infof("Plugin: %s", run.PluginName())
	s.console.Infof("Modules: %s", strings.Join(run.ModuleNames(), ", "))
	for _, missing := range run.MissingRoots {
		s.console.Errorf("Cannot find %s", missing)
	}
	return run, nil
}

// baseConfigPath prefers --config, then $HEADERLINT_CONFIG (which the
// solution's .env may set), then the file beside the executable.
func baseConfigPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return cliutils.EnvOrDefault(lintcfg.EnvConfigPath, lintcfg.DefaultBaseConfigPath())
}

func (s *session) setConfig(run *lintcfg.Run) cxxindex.SetConfig {
	return cxxindex.SetConfig{
		Scores:    run.Scores(),
		Ignore:    run.Plugin.IgnoreFiles,
		Telemetry: s.sink,
	}
}
