package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/qubit/internal/application"
	"github.com/JonMunkholm/qubit/internal/config"
	"github.com/JonMunkholm/qubit/internal/logging"
)

var (
	importFrom            int
	importTo              int
	importUser            string
	importLang            string
	importParent          int64
	importContinueOnError bool
	importCountries       string
	importDryRun          bool

	rootCmd = &cobra.Command{
		Use:           "qubit",
		Short:         "Maintain archival description trees and import repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	importCmd = &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import repositories from a contact spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport, // cmd_import.go
	}

	verifyCmd = &cobra.Command{
		Use:   "verify [kind]",
		Short: "Check the nested-set invariants of one kind or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runVerify, // cmd_tree.go
	}

	rebuildCmd = &cobra.Command{
		Use:   "rebuild <kind>",
		Short: "Recompute lft/rgt of a kind from its parent links",
		Args:  cobra.ExactArgs(1),
		RunE:  runRebuild, // cmd_tree.go
	}
)

func init() {
	f := importCmd.Flags()
	f.IntVar(&importFrom, "from", 1, "first line to import (the header is line 1)")
	f.IntVar(&importTo, "to", -1, "last line to import, -1 for the end of the file")
	f.StringVar(&importUser, "user", "", "username that owns imported notes")
	f.StringVar(&importLang, "lang", "", "culture of the imported text")
	f.Int64Var(&importParent, "parent", 0, "actor id the repositories are placed under")
	f.BoolVar(&importContinueOnError, "continue-on-error", false, "skip failing rows instead of stopping")
	f.StringVar(&importCountries, "countries", "", "YAML file of country name aliases")
	f.BoolVar(&importDryRun, "dry-run", false, "import into memory and report without touching the database")

	rootCmd.AddCommand(importCmd, verifyCmd, rebuildCmd)
}

// loadConfig reads the environment and sets up logging on stderr so that
// command output on stdout stays clean.
func loadConfig(offline bool) (*config.Config, error) {
	load := config.Load
	if offline {
		load = config.LoadOffline
	}
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	logging.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func openApp(ctx context.Context) (*application.App, error) {
	cfg, err := loadConfig(false)
	if err != nil {
		return nil, err
	}
	return application.Open(ctx, cfg)
}
