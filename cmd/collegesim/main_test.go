package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/talgya/collegesim/internal/config"
	"github.com/talgya/collegesim/internal/persistence"
	"github.com/talgya/collegesim/internal/report"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "collegesim version "+version)
}

func TestParams_PrintsDefaults(t *testing.T) {
	out, err := execute(t, "params")
	require.NoError(t, err)

	var p config.Params
	require.NoError(t, yaml.Unmarshal([]byte(out), &p))
	assert.Equal(t, config.Unset, p.MaxYears)
	assert.Equal(t, 4000, p.InitNumPeople)
	assert.Equal(t, 5.0, p.Weights.Race)
}

func TestParams_OverlaysConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_years: 3\ninit_num_people: 12\n"), 0644))

	out, err := execute(t, "params", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "max_years: 3")
	assert.Contains(t, out, "init_num_people: 12")
}

func TestRun_RequiresMaxTimeAndSimtag(t *testing.T) {
	_, err := execute(t, "run", "--simtag", "1", "--out", t.TempDir())
	assert.ErrorIs(t, err, config.ErrMissingParam)

	_, err = execute(t, "run", "--max-time", "1", "--out", t.TempDir())
	assert.ErrorIs(t, err, config.ErrMissingParam)
}

func TestRun_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	out, err := execute(t, "run",
		"--max-time", "2",
		"--simtag", "5",
		"--seed", "17",
		"--init-num-people", "30",
		"--num-freshmen-per-year", "8",
		"--init-num-groups", "3",
		"--num-new-groups-per-year", "1",
		"--race-weight", "4",
		"--out", dir,
		"--db", dbPath,
		"--log-level", "warn",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Run 5 finished after 2 of 2 years (seed 17)")

	for _, stem := range []string{report.FilePeople, report.FileFriendships, report.FileEncounters,
		report.FileSimilarity, report.FileDropout, report.FileGraduated, report.FileChange} {
		assert.FileExists(t, filepath.Join(dir, report.FileName(stem, 5)))
	}

	saved, err := config.Load(filepath.Join(dir, "sim_params5.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2, saved.MaxYears)
	assert.Equal(t, int64(17), saved.Seed)
	assert.Equal(t, 4.0, saved.Weights.Race)
	assert.Equal(t, 30, saved.InitNumPeople)

	people, err := os.ReadFile(filepath.Join(dir, "people5.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(people)), "\n")
	assert.Equal(t, "period,id,numFriends,numGroups,race,gender,alienation,yearInSchool", lines[0])
	assert.Greater(t, len(lines), 30, "two years of snapshots")

	db, err := persistence.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.RunIDs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	year0, err := db.PeopleInYear(runs[0], 0)
	require.NoError(t, err)
	assert.Len(t, year0, 38)
}
