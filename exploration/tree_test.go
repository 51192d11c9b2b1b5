package exploration

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallRun = "rewrite,runtime,valid,timestamp\na,10,True,0\na,8,True,1\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// touch pins the modification time of 'path' to base + offset seconds.
func touch(t *testing.T, path string, offset int) {
	t.Helper()
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Second)
	require.NoError(t, os.Chtimes(path, when, when))
}

// TestLoadBenchmark_ModTimeOrder verifies methods are ordered by modification time, not by name.
func TestLoadBenchmark_ModTimeOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "random", "csv", "run_1.csv"), smallRun)
	writeFile(t, filepath.Join(root, "random", "csv", "run_0.csv"), smallRun)
	writeFile(t, filepath.Join(root, "random", "csv", "notes.txt"), "ignored")
	writeFile(t, filepath.Join(root, "exhaustive", "csv", "run_0.csv"), smallRun)
	writeFile(t, filepath.Join(root, "annealing", "csv", "run_0.csv"), smallRun)

	touch(t, filepath.Join(root, "random"), 10)
	touch(t, filepath.Join(root, "exhaustive"), 20)
	touch(t, filepath.Join(root, "annealing"), 30)

	benchmark, err := LoadBenchmark(root)
	require.NoError(t, err)
	require.Len(t, benchmark.Methods, 3)

	names := []string{}
	for i, m := range benchmark.Methods {
		assert.Equal(t, i, m.Index)
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"random", "exhaustive", "annealing"}, names)

	random := benchmark.Method("random")
	require.NotNil(t, random)
	require.Len(t, random.Runs, 2, "non-csv files are ignored")
	assert.Equal(t, "run_0.csv", random.Runs[0].Name)
	assert.NotNil(t, random.Run("run_1.csv"))
	assert.Nil(t, benchmark.Method("missing"))
}

// TestLoadBenchmark_EmptyCSVDir verifies a method without run files is not an error.
func TestLoadBenchmark_EmptyCSVDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "random", "csv"), 0755))

	benchmark, err := LoadBenchmark(root)
	require.NoError(t, err)
	require.Len(t, benchmark.Methods, 1)
	assert.Empty(t, benchmark.Methods[0].Runs)
}

// TestLoadBenchmark_MissingCSVDir verifies a method directory without csv/ is fatal.
func TestLoadBenchmark_MissingCSVDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "random", "logs"), 0755))

	_, err := LoadBenchmark(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

// TestLoadBenchmark_PropagatesSchemaError verifies a bad run file aborts the load.
func TestLoadBenchmark_PropagatesSchemaError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "random", "csv", "run_0.csv"), "a,b\n1,2\n")

	_, err := LoadBenchmark(root)
	assert.ErrorIs(t, err, ErrSchema)
}

// TestLoadExperiment verifies the extra benchmark level.
func TestLoadExperiment(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "mm", "random", "csv", "run_0.csv"), smallRun)
	writeFile(t, filepath.Join(root, "asum", "random", "csv", "run_0.csv"), smallRun)
	writeFile(t, filepath.Join(root, "asum", "local", "csv", "run_0.csv"), smallRun)
	touch(t, filepath.Join(root, "asum", "random"), 1)
	touch(t, filepath.Join(root, "asum", "local"), 2)
	touch(t, filepath.Join(root, "mm"), 5)
	touch(t, filepath.Join(root, "asum"), 6)

	experiment, err := LoadExperiment(root)
	require.NoError(t, err)
	require.Len(t, experiment.Benchmarks, 2)
	assert.Equal(t, "mm", experiment.Benchmarks[0].Name)
	assert.Equal(t, 1, experiment.Benchmarks[1].Index)

	asum := experiment.Benchmark("asum")
	require.NotNil(t, asum)
	require.Len(t, asum.Methods, 2)
	assert.Equal(t, "random", asum.Methods[0].Name)
	assert.Equal(t, "local", asum.Methods[1].Name)
}

// TestLoadExperiment_SameModTime verifies equal modification times fall back to name order.
func TestLoadExperiment_SameModTime(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"c", "a", "b"} {
		writeFile(t, filepath.Join(root, name, "m", "csv", "r.csv"), smallRun)
		touch(t, filepath.Join(root, name), 0)
	}

	experiment, err := LoadExperiment(root)
	require.NoError(t, err)
	require.Len(t, experiment.Benchmarks, 3)
	assert.Equal(t, "a", experiment.Benchmarks[0].Name)
	assert.Equal(t, "b", experiment.Benchmarks[1].Name)
	assert.Equal(t, "c", experiment.Benchmarks[2].Name)
}

// TestLoadOrderedExperiment verifies the order level between benchmark and method.
func TestLoadOrderedExperiment(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "mm", "order_b", "random", "csv", "run_0.csv"), smallRun)
	writeFile(t, filepath.Join(root, "mm", "order_a", "random", "csv", "run_0.csv"), smallRun)
	touch(t, filepath.Join(root, "mm", "order_b"), 1)
	touch(t, filepath.Join(root, "mm", "order_a"), 2)

	experiment, err := LoadOrderedExperiment(root)
	require.NoError(t, err)
	require.Len(t, experiment.Benchmarks, 1)
	orders := experiment.Benchmarks[0].Orders
	require.Len(t, orders, 2)
	assert.Equal(t, "order_b", orders[0].Name)
	assert.Equal(t, 1, orders[1].Index)
	assert.Equal(t, 2, orders[0].Methods[0].Runs[0].Len())
}

// TestLoadExperiment_MissingRoot verifies a missing input root is invalid input.
func TestLoadExperiment_MissingRoot(t *testing.T) {
	_, err := LoadExperiment(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
