package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// schema constrains settings files before they are decoded.
const schema = `
#Settings: {
	risk_thresholds?: [string]: int & >=1 & <=365
	targets?: [string]: int & >=0
	staleness_days?:   int & >=1
	leaderboard_size?: int & >=1
}
`

// file mirrors Settings with optional fields so absent keys keep defaults.
type file struct {
	RiskThresholds  map[string]int `yaml:"risk_thresholds"`
	Targets         map[string]int `yaml:"targets"`
	StalenessDays   *int           `yaml:"staleness_days"`
	LeaderboardSize *int           `yaml:"leaderboard_size"`
}

// Load reads a YAML settings file on top of Default.
// A file that sets risk_thresholds replaces the default rules entirely.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return Parse(data)
}

// Parse decodes settings from YAML bytes on top of Default.
func Parse(data []byte) (*Settings, error) {
	if err := validate(data); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	var f file
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	s := Default()
	if f.RiskThresholds != nil {
		s.RiskThresholds = f.RiskThresholds
	}
	if f.Targets != nil {
		s.Targets = f.Targets
	}
	if f.StalenessDays != nil {
		s.StalenessDays = *f.StalenessDays
	}
	if f.LeaderboardSize != nil {
		s.LeaderboardSize = *f.LeaderboardSize
	}
	return s, nil
}

// validate checks raw YAML against the CUE schema.
func validate(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	ctx := cuecontext.New()
	def := ctx.CompileString(schema).LookupPath(cue.ParsePath("#Settings"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	v := def.Unify(ctx.Encode(raw))
	return v.Validate(cue.Concrete(true))
}
