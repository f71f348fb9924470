package problemfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vrptw/core/model"
)

const yamlDoc = `vehicle_count: 2
vehicles:
  - working_time_budget: 480
  - working_time_budget: 300
customers:
  - {id: 0, window_latest: 600}
  - {id: 4, service_time: 10, window_earliest: 30, window_latest: 90, penalty_rate: 1.5}
distance:
  - [0, 12]
  - [12, 0]
`

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, p.VehicleCount)
	assert.Equal(t, 480.0, p.Budget())
	assert.Equal(t, 600.0, p.Horizon())
	require.Len(t, p.Customers, 2)
	assert.Equal(t, model.Customer{ID: 4, ServiceTime: 10, WindowEarliest: 30, WindowLatest: 90, PenaltyRate: 1.5}, p.Customers[1])
	assert.Equal(t, [][]float64{{0, 12}, {12, 0}}, p.Distance)
}

func TestParseJSONWithTopLevelBudget(t *testing.T) {
	doc := `{
  "vehicle_count": 1,
  "working_time_budget": 100,
  "customers": [{"id": 0, "window_latest": 50}, {"id": 1, "window_latest": 50}],
  "distance": [[0, 3], [3, 0]]
}`
	p, err := Parse([]byte(doc), "json")
	require.NoError(t, err)
	require.Len(t, p.Vehicles, 1)
	assert.Equal(t, 100.0, p.Budget())
}

func TestLoadRejectsInvalidProblems(t *testing.T) {
	doc := `{"vehicle_count": 1, "working_time_budget": 10, "customers": [{"id": 0}], "distance": [[0, 1]]}`
	_, err := Parse([]byte(doc), "json")
	assert.True(t, errors.Is(err, model.ErrInvalidProblem), "got %v", err)
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := Load("problem.toml")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	_, err = Parse(nil, "csv")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
