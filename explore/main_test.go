package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tuningplot/scheduler"
)

func writeMethod(t *testing.T, root, method string) {
	t.Helper()
	dir := filepath.Join(root, method, "csv")
	require.NoError(t, os.MkdirAll(dir, 0755))
	content := "rewrite,runtime,valid,timestamp\n" +
		"r0,10,True,0\n" +
		"r0,8,True,60000\n" +
		"r1,-1,False,120000\n" +
		"r1,5,True,180000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run_0.csv"), []byte(content), 0644))
}

func execute(args ...string) error {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(new(nopWriter))
	cmd.SetErr(new(nopWriter))
	return cmd.Execute()
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// TestExplore_Scatter verifies a full invocation writes the chart.
func TestExplore_Scatter(t *testing.T) {
	root := filepath.Join(t.TempDir(), "mm")
	writeMethod(t, root, "random")
	out := t.TempDir()

	require.NoError(t, execute("-p", "scatter", "-i", root, "-o", out, "-n", "mm", "-f", "svg", "-e", "4"))
	_, err := os.Stat(filepath.Join(out, "mm_random_scatter.svg"))
	assert.NoError(t, err)
}

// TestExplore_DefaultOutput verifies charts land in the input directory by default.
func TestExplore_DefaultOutput(t *testing.T) {
	root := filepath.Join(t.TempDir(), "mm")
	writeMethod(t, root, "random")

	require.NoError(t, execute("--plot", "speedup", "--input", root, "--format", "png", "--log"))
	_, err := os.Stat(filepath.Join(root, "mm_speedup_log.png"))
	assert.NoError(t, err)
}

// TestExplore_MissingFlags verifies plot and input are required.
func TestExplore_MissingFlags(t *testing.T) {
	assert.Error(t, execute("-p", "scatter"))
	assert.Error(t, execute("-i", t.TempDir()))
}

// TestExplore_InvalidConfig verifies configuration errors are reported.
func TestExplore_InvalidConfig(t *testing.T) {
	root := t.TempDir()
	assert.ErrorIs(t, execute("-p", "pie", "-i", root), scheduler.ErrConfig)
	assert.ErrorIs(t, execute("-p", "scatter", "-i", root, "-u", "seconds"), scheduler.ErrConfig)
}

// TestExplore_Args verifies positional arguments are rejected.
func TestExplore_Args(t *testing.T) {
	assert.Error(t, execute("-p", "scatter", "-i", t.TempDir(), "extra"))
}
