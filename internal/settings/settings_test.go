package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/scope"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, 30, s.RiskThresholds["Sunday Meeting"])
	assert.Equal(t, 45, s.RiskThresholds["Quddas (Liturgy)"])
	assert.Equal(t, 90, s.StalenessDays)
	assert.Equal(t, 10, s.LeaderboardSize)
	assert.Equal(t, DefaultTarget, s.Target("anything"))
}

func TestRulesOrderedByActivity(t *testing.T) {
	rules := Default().Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, Rule{Activity: "Quddas (Liturgy)", Days: 45}, rules[0])
	assert.Equal(t, Rule{Activity: "Sunday Meeting", Days: 30}, rules[1])
}

func TestCloneIsDeep(t *testing.T) {
	s := Default()
	c := s.Clone()
	require.NoError(t, c.SetThreshold(model.RolePriest, "Sunday Meeting", 7))
	require.NoError(t, c.SetTarget(model.RolePriest, "Retreat", 3))

	assert.Equal(t, 30, s.RiskThresholds["Sunday Meeting"])
	assert.NotContains(t, s.Targets, "Retreat")
}

func TestUpdatesArePriestOnly(t *testing.T) {
	for _, r := range []model.Role{model.RoleChiefManager, model.RoleDepartmentManager, model.RoleServant} {
		s := Default()
		assert.ErrorIs(t, s.SetThreshold(r, "Sunday Meeting", 10), scope.ErrForbidden)
		assert.ErrorIs(t, s.RemoveThreshold(r, "Sunday Meeting"), scope.ErrForbidden)
		assert.ErrorIs(t, s.SetTarget(r, "Sunday Meeting", 2), scope.ErrForbidden)
		assert.ErrorIs(t, s.SetStaleness(r, 30), scope.ErrForbidden)
		assert.Equal(t, Default(), s)
	}
}

func TestSetThresholdBounds(t *testing.T) {
	s := Default()
	assert.Error(t, s.SetThreshold(model.RolePriest, "Sunday Meeting", 0))
	assert.Error(t, s.SetThreshold(model.RolePriest, "Sunday Meeting", 366))
	assert.Error(t, s.SetThreshold(model.RolePriest, "", 10))
	require.NoError(t, s.SetThreshold(model.RolePriest, "Retreat", 365))
	assert.Equal(t, 365, s.RiskThresholds["Retreat"])

	require.NoError(t, s.RemoveThreshold(model.RolePriest, "Retreat"))
	assert.NotContains(t, s.RiskThresholds, "Retreat")
}

func TestSetTargetAndStaleness(t *testing.T) {
	s := Default()
	assert.Error(t, s.SetTarget(model.RolePriest, "Sunday Meeting", -1))
	require.NoError(t, s.SetTarget(model.RolePriest, "Sunday Meeting", 0))
	assert.Equal(t, 0, s.Target("Sunday Meeting"))

	assert.Error(t, s.SetStaleness(model.RolePriest, 0))
	require.NoError(t, s.SetStaleness(model.RolePriest, 60))
	assert.Equal(t, 60, s.StalenessDays)
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte(`
risk_thresholds:
  Sunday Meeting: 21
targets:
  Retreat: 0
staleness_days: 120
`))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Sunday Meeting": 21}, s.RiskThresholds)
	assert.Equal(t, 0, s.Target("Retreat"))
	assert.Equal(t, 120, s.StalenessDays)
	assert.Equal(t, DefaultLeaderboardSize, s.LeaderboardSize)
}

func TestParse_Empty(t *testing.T) {
	s, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"threshold too high": "risk_thresholds:\n  Sunday Meeting: 400\n",
		"threshold zero":     "risk_thresholds:\n  Sunday Meeting: 0\n",
		"negative target":    "targets:\n  Retreat: -2\n",
		"unknown field":      "risk_threshold:\n  Sunday Meeting: 30\n",
		"wrong type":         "staleness_days: soon\n",
		"malformed":          "risk_thresholds: [\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("leaderboard_size: 5\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, s.LeaderboardSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
