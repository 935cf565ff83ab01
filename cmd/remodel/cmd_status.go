package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show prepared table, cached artifacts, and recorded runs",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if info, err := os.Stat(cfg.Output.Prepared); err == nil {
		fmt.Fprintf(out, "Prepared table: %s (%d bytes)\n", cfg.Output.Prepared, info.Size())
	} else {
		fmt.Fprintf(out, "Prepared table: missing (run 'remodel prepare')\n")
	}

	artifacts, reg, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	names, err := artifacts.List()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Artifacts: %d cached\n", len(names))
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", name)
	}

	runs, err := reg.List()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Runs: %d recorded\n", len(runs))
	for _, run := range runs {
		switch run.Kind {
		case "fit":
			fmt.Fprintf(out, "  %s  fit      %-40s rhat=%.3f ess=%.0f converged=%v\n",
				run.StartedAt, run.Target, run.MaxRHat, run.MinESS, run.Converged)
		default:
			fmt.Fprintf(out, "  %s  %-8s %-40s rows=%d dropped=%d defaulted=%d\n",
				run.StartedAt, run.Kind, run.Target, run.RowsOut, run.Dropped, run.Defaulted)
		}
	}
	return nil
}
