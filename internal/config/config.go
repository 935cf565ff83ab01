// Package config loads the study configuration: raw data locations,
// the exclusion list, sampler settings, and the per-response model
// specifications that the fitting harness consumes.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// knownFamilies lists the model families the harness can fit.
var knownFamilies = map[string]bool{
	"binomial":    true,
	"negbinomial": true,
	"zinb":        true,
	"gaussian":    true,
	"skewnormal":  true,
}

// DataPaths locates the three raw tables.
type DataPaths struct {
	Requirements string `yaml:"requirements"`
	Observations string `yaml:"observations"`
	Demographics string `yaml:"demographics"`
}

// OutputPaths locates every artifact the pipeline writes.
type OutputPaths struct {
	Prepared  string `yaml:"prepared"`
	Artifacts string `yaml:"artifacts"`
	Exports   string `yaml:"exports"`
	Registry  string `yaml:"registry"`
}

// SamplerConfig carries the fixed sampling parameters for every fit.
type SamplerConfig struct {
	Chains     int    `yaml:"chains"`
	Iterations int    `yaml:"iterations"`
	Warmup     int    `yaml:"warmup"`
	Seed       uint64 `yaml:"seed"`
}

// ResponseConfig specifies one response variable and its model.
type ResponseConfig struct {
	Name   string `yaml:"name"`
	Family string `yaml:"family"`
	// Compare names an alternative family fit alongside Family and kept
	// only if it wins the leave-one-out comparison (e.g. zinb against
	// negbinomial, skewnormal against gaussian).
	Compare string `yaml:"compare,omitempty"`
	// Trials is the column holding the trial count for binomial
	// responses (the matching "expected" column).
	Trials     string   `yaml:"trials,omitempty"`
	Covariates []string `yaml:"covariates,omitempty"`
	// TreatmentInteractions lists covariates interacted with the
	// treatment factor. Period is always interacted to capture
	// carryover effects.
	TreatmentInteractions []string `yaml:"treatment_interactions,omitempty"`
}

// Config is the parsed study configuration.
type Config struct {
	Data       DataPaths        `yaml:"data"`
	Output     OutputPaths      `yaml:"output"`
	Excluded   []string         `yaml:"excluded"`
	Confidence float64          `yaml:"confidence"`
	Sampler    SamplerConfig    `yaml:"sampler"`
	Responses  []ResponseConfig `yaml:"responses"`
}

// LoadFromPath reads and validates a study config YAML file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	return Load(data)
}

// Load parses study config YAML bytes, applies defaults, and validates.
func Load(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Confidence == 0 {
		c.Confidence = 0.95
	}
	if c.Sampler.Chains == 0 {
		c.Sampler.Chains = 4
	}
	if c.Sampler.Iterations == 0 {
		c.Sampler.Iterations = 4000
	}
	if c.Sampler.Warmup == 0 {
		c.Sampler.Warmup = 1000
	}
	for i := range c.Responses {
		r := &c.Responses[i]
		if len(r.Covariates) == 0 {
			r.Covariates = []string{"period", "education", "exp_se", "exp_re", "modeling_freq", "tool_familiarity"}
		}
		if len(r.TreatmentInteractions) == 0 {
			r.TreatmentInteractions = []string{"period"}
		}
	}
}

func (c *Config) validate() error {
	if c.Data.Requirements == "" || c.Data.Observations == "" || c.Data.Demographics == "" {
		return fmt.Errorf("config: all three raw data paths are required")
	}
	if c.Output.Prepared == "" {
		return fmt.Errorf("config: output.prepared is required")
	}
	if c.Confidence <= 0 || c.Confidence >= 1 {
		return fmt.Errorf("config: confidence %v outside (0,1)", c.Confidence)
	}
	if c.Sampler.Warmup >= c.Sampler.Iterations {
		return fmt.Errorf("config: warmup %d must be below iterations %d", c.Sampler.Warmup, c.Sampler.Iterations)
	}
	for _, r := range c.Responses {
		if r.Name == "" {
			return fmt.Errorf("config: response with empty name")
		}
		if !knownFamilies[r.Family] {
			return fmt.Errorf("config: response %q: unknown family %q", r.Name, r.Family)
		}
		if r.Compare != "" && !knownFamilies[r.Compare] {
			return fmt.Errorf("config: response %q: unknown compare family %q", r.Name, r.Compare)
		}
		if r.Family == "binomial" && r.Trials == "" {
			return fmt.Errorf("config: response %q: binomial family needs a trials column", r.Name)
		}
	}
	return nil
}

// Response returns the configuration for a named response variable.
func (c *Config) Response(name string) (*ResponseConfig, bool) {
	for i := range c.Responses {
		if c.Responses[i].Name == name {
			return &c.Responses[i], true
		}
	}
	return nil, false
}
