package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		sc, err := Load(f)
		require.NoError(t, err, f)
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestScenarioOptions(t *testing.T) {
	for variant, want := range map[string]string{
		"": "full", "full": "full", "basic": "basic", "penalties": "penalties", "wait": "wait",
	} {
		o, err := (&Scenario{Variant: variant}).Options()
		require.NoError(t, err)
		assert.Equal(t, want, o.Variant())
	}
	_, err := (&Scenario{Variant: "cvrp"}).Options()
	assert.Error(t, err)
}

func TestScenarioProblem(t *testing.T) {
	sc := &Scenario{
		Vehicles:          2,
		WorkingTimeBudget: 50,
		Customers:         []CustomerDef{{ID: 0, WindowLatest: 100}, {ID: 3, ServiceTime: 2}},
		Distance:          [][]float64{{0, 1}, {1, 0}},
	}
	p := sc.Problem()
	require.NoError(t, p.Validate())
	assert.Len(t, p.Vehicles, 2)
	assert.Equal(t, 50.0, p.Budget())
	assert.Equal(t, []int{3}, p.CustomerIDs())
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load("no-file.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
