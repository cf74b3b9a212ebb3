package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/qubit/internal/core"
)

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	var reports []core.VerifyReport
	if len(args) == 1 {
		r, err := app.Service.Verify(ctx, args[0])
		if err != nil {
			return err
		}
		reports = append(reports, r)
	} else {
		reports, err = app.Service.VerifyAll(ctx)
		if err != nil {
			return err
		}
	}

	if invalid := printReports(cmd.OutOrStdout(), reports); invalid > 0 {
		return fmt.Errorf("%d kind(s) failed verification", invalid)
	}
	return nil
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Service.Rebuild(ctx, args[0]); err != nil {
		return err
	}
	r, err := app.Service.Verify(ctx, args[0])
	if err != nil {
		return err
	}
	printReports(cmd.OutOrStdout(), []core.VerifyReport{r})
	return nil
}

// printReports writes one line per kind plus its violations and returns
// the number of invalid kinds.
func printReports(w io.Writer, reports []core.VerifyReport) int {
	invalid := 0
	for _, r := range reports {
		if r.Valid {
			fmt.Fprintf(w, "%-20s ok\n", r.Kind)
			continue
		}
		invalid++
		fmt.Fprintf(w, "%-20s %d violation(s)\n", r.Kind, len(r.Violations))
		for _, v := range r.Violations {
			fmt.Fprintf(w, "  %s\n", v)
		}
	}
	return invalid
}
