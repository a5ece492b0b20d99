package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Dosada05/tournament-progression/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const standingsYAML = `standings:
  - {group: A, participant: a1, points: 9}
  - {group: A, participant: a2, points: 6}
  - {group: A, participant: a3, points: 3}
  - {group: B, participant: b1, points: 7}
  - {group: B, participant: b2, points: 4}
  - {group: B, participant: b3, points: 1}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeStandings(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "standings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(standingsYAML), 0o600))
	return path
}

func TestPlanCommand(t *testing.T) {
	out, err := execute(t, "plan", "--qualifiers", "12")
	require.NoError(t, err)

	var plan models.BracketPlan
	require.NoError(t, yaml.Unmarshal([]byte(out), &plan))
	assert.Equal(t, models.BracketPlan{Qualifiers: 12, BracketSize: 8, Byes: 4, PlayInMatches: 4, HasBronze: true}, plan)
}

func TestPlanCommandRejectsOneQualifier(t *testing.T) {
	_, err := execute(t, "plan", "-n", "1")
	assert.Error(t, err)
}

func TestSeedCommand(t *testing.T) {
	out, err := execute(t, "seed", "--standings", writeStandings(t), "--qualifiers", "4")
	require.NoError(t, err)

	var seeds models.SeedAssignment
	require.NoError(t, yaml.Unmarshal([]byte(out), &seeds))
	assert.Equal(t, []string{"a1", "b1", "a2", "b2"}, seeds.ParticipantIDs())
}

func TestPairingsCommand(t *testing.T) {
	out, err := execute(t, "pairings", "-s", writeStandings(t), "-n", "6")
	require.NoError(t, err)

	var pairings models.Pairings
	require.NoError(t, yaml.Unmarshal([]byte(out), &pairings))
	assert.Len(t, pairings.Byes, 2)
	assert.Len(t, pairings.PlayIns, 2)
	assert.Len(t, pairings.FirstRound, 2)
}

func TestSeedCommandMissingFile(t *testing.T) {
	_, err := execute(t, "seed", "-s", filepath.Join(t.TempDir(), "nope.yaml"), "-n", "4")
	assert.Error(t, err)
}
