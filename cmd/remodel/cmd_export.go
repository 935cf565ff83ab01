package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"remodel/internal/posterior"
)

var exportFlags struct {
	response  string
	covariate string
	min       float64
	max       float64
	steps     int
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a marginal-effect curve for cross-analysis plotting",
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.response, "response", "", "Response variable (required)")
	f.StringVar(&exportFlags.covariate, "covariate", "period", "Covariate to sweep")
	f.Float64Var(&exportFlags.min, "min", 1, "Grid lower bound")
	f.Float64Var(&exportFlags.max, "max", 4, "Grid upper bound")
	f.IntVar(&exportFlags.steps, "steps", 25, "Grid points")

	_ = exportCmd.MarkFlagRequired("response")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	artifacts, reg, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	name, err := selectedArtifact(reg, cfg, exportFlags.response)
	if err != nil {
		return err
	}
	m, ok, err := artifacts.Load(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no artifact %q: run 'remodel fit %s' first", name, exportFlags.response)
	}

	grid := posterior.Grid(exportFlags.min, exportFlags.max, exportFlags.steps)
	points, err := posterior.MarginalEffect(m, exportFlags.covariate, grid, cfg.Confidence)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.Output.Exports,
		fmt.Sprintf("%s-%s.csv", exportFlags.covariate, exportFlags.response))
	if err := posterior.WriteMarginal(path, points); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d points to %s\n", len(points), path)
	return nil
}
