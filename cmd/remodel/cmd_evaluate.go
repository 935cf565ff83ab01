package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"remodel/internal/posterior"
)

var evaluateFlags struct {
	response  string
	treatment int
	seed      uint64
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Report the posterior-predicted sign of a treatment effect",
	Long: "Evaluate draws posterior-predictive samples at a synthetic covariate setting\n" +
		"with and without the treatment, everything else held at the sample means, and\n" +
		"reports the proportion of draws in which the treatment decreases, leaves\n" +
		"unchanged, or increases the response.",
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.StringVar(&evaluateFlags.response, "response", "", "Response variable (required)")
	f.IntVar(&evaluateFlags.treatment, "treatment", 0, "Treatment level 1-3 (0 evaluates all three)")
	f.Uint64Var(&evaluateFlags.seed, "seed", 1, "Seed for the predictive draws")

	_ = evaluateCmd.MarkFlagRequired("response")
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	artifacts, reg, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	name, err := selectedArtifact(reg, cfg, evaluateFlags.response)
	if err != nil {
		return err
	}
	m, ok, err := artifacts.Load(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no artifact %q: run 'remodel fit %s' first", name, evaluateFlags.response)
	}

	var effects []posterior.Effect
	if evaluateFlags.treatment == 0 {
		effects, err = posterior.EvaluateAll(m, evaluateFlags.seed)
	} else {
		var eff posterior.Effect
		eff, err = posterior.EvaluateEffect(m, evaluateFlags.treatment, evaluateFlags.seed)
		effects = []posterior.Effect{eff}
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Model:  %s\n", m.Name())
	for _, eff := range effects {
		fmt.Fprintf(out, "Treatment %d vs baseline: negative %.3f  zero %.3f  positive %.3f\n",
			eff.Treatment, eff.Negative, eff.Zero, eff.Positive)
	}
	return nil
}
