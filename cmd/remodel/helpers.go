package main

import (
	"fmt"
	"strings"

	"remodel/internal/bayes"
	"remodel/internal/config"
	"remodel/internal/model"
	"remodel/internal/prepare"
	"remodel/internal/store"
)

func loadConfig() (*config.Config, error) {
	return config.LoadFromPath(rootFlags.config)
}

func loadPrepared(cfg *config.Config) ([]prepare.Row, error) {
	rows, err := prepare.LoadPrepared(cfg.Output.Prepared)
	if err != nil {
		return nil, fmt.Errorf("load prepared table (run 'remodel prepare' first): %w", err)
	}
	return rows, nil
}

func openStores(cfg *config.Config) (*store.FileStore, *store.Registry, error) {
	fs, err := store.NewFileStore(cfg.Output.Artifacts)
	if err != nil {
		return nil, nil, err
	}
	reg, err := store.OpenRegistry(cfg.Output.Registry)
	if err != nil {
		return nil, nil, err
	}
	return fs, reg, nil
}

func newHarness(cfg *config.Config, cache model.Cache) *model.Harness {
	opts := bayes.Options{
		Chains:     cfg.Sampler.Chains,
		Iterations: cfg.Sampler.Iterations,
		Warmup:     cfg.Sampler.Warmup,
		Seed:       cfg.Sampler.Seed,
	}
	h := model.NewHarness(bayes.NewMetropolis(), opts)
	h.Cache = cache
	return h
}

// specFor converts one response's configuration into a model spec.
func specFor(rc *config.ResponseConfig) (model.Spec, error) {
	family, err := model.ParseFamily(rc.Family)
	if err != nil {
		return model.Spec{}, err
	}
	spec := model.Spec{
		Response:              rc.Name,
		Family:                family,
		Trials:                rc.Trials,
		Covariates:            rc.Covariates,
		TreatmentInteractions: rc.TreatmentInteractions,
	}
	if rc.Compare != "" {
		compare, err := model.ParseFamily(rc.Compare)
		if err != nil {
			return model.Spec{}, err
		}
		spec.Compare = compare
	}
	return spec, nil
}

// selectedArtifact resolves the artifact name for a response's chosen
// fit: the most recent converged fit run in the registry wins, falling
// back to the configured family when no run is recorded yet.
func selectedArtifact(reg *store.Registry, cfg *config.Config, response string) (string, error) {
	runs, err := reg.List()
	if err != nil {
		return "", err
	}
	for _, run := range runs {
		if run.Kind == "fit" && run.Converged && strings.HasPrefix(run.Target, response+"-") {
			return run.Target, nil
		}
	}
	rc, ok := cfg.Response(response)
	if !ok {
		return "", fmt.Errorf("response %q is not in the configuration", response)
	}
	return model.ArtifactName(response, model.Family(rc.Family), false), nil
}
