// Package settings holds the per-session analysis configuration: risk
// thresholds, monthly targets and ranking knobs.
//
// A Settings value is passed explicitly into the engines. Each session works
// on its own Clone; only a Priest may change it, and changes last for the
// session only.
package settings

import (
	"fmt"
	"sort"

	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/scope"
)

// Bounds enforced on every update path.
const (
	MinThresholdDays = 1
	MaxThresholdDays = 365

	DefaultStalenessDays   = 90
	DefaultLeaderboardSize = 10
	DefaultTarget          = 1
)

// Settings is the analysis configuration for one session.
type Settings struct {
	// RiskThresholds maps an activity name to the days of absence that
	// flag a student.
	RiskThresholds map[string]int `json:"risk_thresholds" yaml:"risk_thresholds"`

	// Targets maps an activity name to the minimum attendances expected per
	// month. Activities without an entry expect DefaultTarget.
	Targets map[string]int `json:"targets" yaml:"targets"`

	// StalenessDays separates Medium from Low priority on the roster.
	StalenessDays int `json:"staleness_days" yaml:"staleness_days"`

	// LeaderboardSize caps the leaderboard.
	LeaderboardSize int `json:"leaderboard_size" yaml:"leaderboard_size"`
}

// Default returns the settings a fresh session starts from.
func Default() *Settings {
	return &Settings{
		RiskThresholds: map[string]int{
			"Sunday Meeting":   30,
			"Quddas (Liturgy)": 45,
		},
		Targets:         map[string]int{},
		StalenessDays:   DefaultStalenessDays,
		LeaderboardSize: DefaultLeaderboardSize,
	}
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	c := *s
	c.RiskThresholds = make(map[string]int, len(s.RiskThresholds))
	for k, v := range s.RiskThresholds {
		c.RiskThresholds[k] = v
	}
	c.Targets = make(map[string]int, len(s.Targets))
	for k, v := range s.Targets {
		c.Targets[k] = v
	}
	return &c
}

// Rule is one risk threshold.
type Rule struct {
	Activity string `json:"activity"`
	Days     int    `json:"days"`
}

// Rules returns the risk thresholds ordered by activity name.
func (s *Settings) Rules() []Rule {
	rules := make([]Rule, 0, len(s.RiskThresholds))
	for name, days := range s.RiskThresholds {
		rules = append(rules, Rule{Activity: name, Days: days})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Activity < rules[j].Activity })
	return rules
}

// Target returns the monthly target of an activity.
func (s *Settings) Target(activity string) int {
	if n, ok := s.Targets[activity]; ok {
		return n
	}
	return DefaultTarget
}

// SetThreshold changes or adds the risk threshold of an activity.
func (s *Settings) SetThreshold(role model.Role, activity string, days int) error {
	if err := scope.CanEditSettings(role); err != nil {
		return err
	}
	if activity == "" {
		return fmt.Errorf("set threshold: activity name is required")
	}
	if days < MinThresholdDays || days > MaxThresholdDays {
		return fmt.Errorf("set threshold for %q: %d days outside %d..%d", activity, days, MinThresholdDays, MaxThresholdDays)
	}
	s.RiskThresholds[activity] = days
	return nil
}

// RemoveThreshold drops the risk rule of an activity.
func (s *Settings) RemoveThreshold(role model.Role, activity string) error {
	if err := scope.CanEditSettings(role); err != nil {
		return err
	}
	delete(s.RiskThresholds, activity)
	return nil
}

// SetTarget changes the monthly target of an activity. Zero disables it.
func (s *Settings) SetTarget(role model.Role, activity string, count int) error {
	if err := scope.CanEditSettings(role); err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("set target for %q: %d is negative", activity, count)
	}
	s.Targets[activity] = count
	return nil
}

// SetStaleness changes the roster staleness threshold.
func (s *Settings) SetStaleness(role model.Role, days int) error {
	if err := scope.CanEditSettings(role); err != nil {
		return err
	}
	if days < 1 {
		return fmt.Errorf("set staleness: %d days must be positive", days)
	}
	s.StalenessDays = days
	return nil
}
