package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	subsetsFlags.problem, subsetsFlags.customers, subsetsFlags.countOnly = "", 0, false
	solveFlags.problem, solveFlags.writeLP, solveFlags.output, solveFlags.basic = "", "", "", false
	solveFlags.format = "json"
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSubsetsCommand(t *testing.T) {
	out, err := execute(t, "subsets", "--customers", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"[2 3]", "[1 3]", "[1 2]", "[1 2 3]", "4 subsets"}, lines)

	out, err = execute(t, "subsets", "-n", "10", "--count")
	require.NoError(t, err)
	assert.Equal(t, "1013\n", out)

	_, err = execute(t, "subsets")
	assert.Error(t, err)
}

func writeTriangle(t *testing.T, dir string) string {
	t.Helper()
	problem := filepath.Join(dir, "problem.json")
	require.NoError(t, os.WriteFile(problem, []byte(`{
  "vehicle_count": 1,
  "working_time_budget": 1000,
  "customers": [{"id": 0, "window_latest": 1000}, {"id": 1, "window_latest": 1000}, {"id": 2, "window_latest": 1000}],
  "distance": [[0, 5, 5], [5, 0, 5], [5, 5, 0]]
}`), 0o644))
	return problem
}

func TestSolveCommand(t *testing.T) {
	dir := t.TempDir()
	problem := writeTriangle(t, dir)
	lpPath := filepath.Join(dir, "model.lp")
	resPath := filepath.Join(dir, "result.json")

	_, err := execute(t, "solve", "-p", problem, "--basic", "--write-lp", lpPath, "-o", resPath)
	require.NoError(t, err)

	lp, err := os.ReadFile(lpPath)
	require.NoError(t, err)
	assert.Contains(t, string(lp), "Minimize")

	data, err := os.ReadFile(resPath)
	require.NoError(t, err)
	var res struct {
		Variant   string  `json:"variant"`
		Objective float64 `json:"objective"`
		Optimal   bool    `json:"optimal"`
	}
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "basic", res.Variant)
	assert.InDelta(t, 15, res.Objective, 1e-6)
	assert.True(t, res.Optimal)
}

func TestSolveCommandCSV(t *testing.T) {
	dir := t.TempDir()
	resPath := filepath.Join(dir, "routes.csv")
	_, err := execute(t, "solve", "-p", writeTriangle(t, dir), "--basic", "--format", "csv", "-o", resPath)
	require.NoError(t, err)

	data, err := os.ReadFile(resPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "vehicle,position,customer,arrival", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0,1,"))
}

func TestSolveRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "solve", "-p", "unused.json", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestSolveRequiresProblem(t *testing.T) {
	_, err := execute(t, "solve")
	assert.Error(t, err)
}
