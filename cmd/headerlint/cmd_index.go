package main

import (
	"github.com/spf13/cobra"

	"github.com/lexcodex/headerlint/framework/cxxindex"
)

func newIndexCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "index <SolutionDir> <CurrentFileDir>",
		Short: "Build the include indices and optionally snapshot them to SQLite",
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
			set, err := cxxindex.BuildSet(run.Layout, s.setConfig(run))
			if err != nil {
				return err
			}
			s.console.Infof("Engine headers: %s", s.console.Count(set.Engine.Len()))
			s.console.Infof("Local headers:  %s", s.console.Count(set.LocalHeaders.Len()))
			s.console.Infof("Local sources:  %s", s.console.Count(set.LocalSources.Len()))
			if dbPath == "" {
				return nil
			}
			store, err := cxxindex.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.SaveSet(set, run.Scores()); err != nil {
				return err
			}
			s.console.Infof("Snapshot written to %s", dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file receiving the index snapshot")
	return cmd
}
