package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/qubit/internal/application"
	"github.com/JonMunkholm/qubit/internal/core"
	"github.com/JonMunkholm/qubit/internal/importer"
)

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(importDryRun)
	if err != nil {
		return err
	}
	if importCountries != "" {
		cfg.Import.CountriesFile = importCountries
	}

	var app *application.App
	if importDryRun {
		// the in-memory store only knows the configured owner and parent
		if importUser != "" {
			cfg.Import.DefaultUser = importUser
		}
		if importParent > 0 {
			cfg.Import.ParentID = importParent
		}
		app, _, err = application.OpenMemory(cfg)
	} else {
		app, err = application.Open(ctx, cfg)
	}
	if err != nil {
		return err
	}
	defer app.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	res, err := app.Service.Import(ctx, f, info.Size(), importer.Options{
		From:            importFrom,
		To:              importTo,
		User:            importUser,
		Lang:            importLang,
		ParentID:        importParent,
		ContinueOnError: importContinueOnError,
	})
	printResult(cmd.OutOrStdout(), args[0], res, importDryRun)
	return err
}

func printResult(w io.Writer, file string, res importer.Result, dryRun bool) {
	mode := ""
	if dryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "%s%s: imported %d, failed %d in %s\n",
		file, mode, res.Imported, res.Failed, res.Duration.Round(time.Millisecond))
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  line %d (%s): %s\n", f.Line, f.Name, core.FormatUserError(f.Err))
	}
}
