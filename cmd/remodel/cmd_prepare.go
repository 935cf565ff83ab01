package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"remodel/internal/logging"
	"remodel/internal/prepare"
	"remodel/internal/store"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Build the prepared analysis table from the three raw tables",
	RunE:  runPrepare,
}

func runPrepare(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := prepare.Run(prepare.Config{
		RequirementsPath: cfg.Data.Requirements,
		ObservationsPath: cfg.Data.Observations,
		DemographicsPath: cfg.Data.Demographics,
		Excluded:         cfg.Excluded,
		Logger:           logging.New("prepare"),
	})
	if err != nil {
		return err
	}
	if err := prepare.WritePrepared(cfg.Output.Prepared, res.Rows); err != nil {
		return err
	}

	reg, err := store.OpenRegistry(cfg.Output.Registry)
	if err != nil {
		return err
	}
	defer reg.Close()
	if _, err := reg.Record(&store.Run{
		Kind:      "prepare",
		Target:    cfg.Output.Prepared,
		RowsIn:    len(res.Rows) + res.Audit.Dropped + res.Audit.Excluded,
		RowsOut:   len(res.Rows),
		Dropped:   res.Audit.Dropped,
		Defaulted: res.Audit.Defaulted(),
		Excluded:  res.Audit.Excluded,
	}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Prepared: %s (%d rows, %d participants, %d requirements)\n",
		cfg.Output.Prepared, len(res.Rows), len(res.Participants), len(res.Requirements))
	fmt.Fprintf(out, "Audit:    %s\n", res.Audit.Summary())
	return nil
}
