package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeda/internal/config"
)

const peopleCSV = "name,age,city,notes\na,30,Paris,x\nb,,Lyon,\nc,40,,y\nd,50,Paris,\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cmd := newRootCmd(cfg, logr.Discard())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), err
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "people.csv", peopleCSV)

	out, err := run(t, "inspect", data)
	require.NoError(t, err)
	assert.Contains(t, out, "people.csv: 4 rows, 4 columns")
	lines := strings.Split(out, "\n")
	var ageLine string
	for _, l := range lines {
		if strings.HasPrefix(l, "age ") {
			ageLine = l
		}
	}
	require.NotEmpty(t, ageLine)
	assert.Contains(t, ageLine, "integer")
	assert.Contains(t, ageLine, "numeric")
	assert.Contains(t, ageLine, "mean,median")
}

func TestApplyPlan(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "people.csv", peopleCSV)
	planPath := writeFile(t, dir, "clean.yaml", `
types:
  notes: delete
steps:
  - rename: {from: city, to: location}
  - impute: {column: age, strategy: Median}
  - impute: {column: location, strategy: custom, value: Unknown}
`)
	outPath := filepath.Join(dir, "clean.csv")

	out, err := run(t, "apply", data, "--plan", planPath, "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "step 1: rename city -> location")
	assert.Contains(t, out, "filled 1, dropped 0, remaining 0")
	assert.Contains(t, out, "4 rows, 3 columns")

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "name,age,location\na,30,Paris\nb,40,Lyon\nc,40,Unknown\nd,50,Paris\n", string(b))
}

func TestApplyRequiresPlan(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "people.csv", peopleCSV)
	_, err := run(t, "apply", data)
	assert.Error(t, err)
}

func TestApplyStopsAtFailingStep(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "people.csv", peopleCSV)
	planPath := writeFile(t, dir, "bad.yaml", `
steps:
  - impute: {column: city, strategy: mean}
`)
	_, err := run(t, "apply", data, "--plan", planPath, "--out", filepath.Join(dir, "out.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1 (impute) failed")
	assert.NoFileExists(t, filepath.Join(dir, "out.csv"))
}

func TestSummarize(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "people.csv", peopleCSV)

	out, err := run(t, "summarize", data, "--select", "numeric")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Variable,Mean"))
	assert.True(t, strings.HasPrefix(lines[1], "age,40"))
}

func TestPairwise(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "people.csv", peopleCSV)

	out, err := run(t, "pairwise", data, "age", "city")
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "kruskal_wallis"`)

	_, err = run(t, "pairwise", data, "age", "ghost")
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "people.csv", peopleCSV)
	outPath := filepath.Join(dir, "report.md")

	_, err := run(t, "report", data, "--pair", "age,city", "--out", outPath)
	require.NoError(t, err)
	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "# people.csv")
	assert.Contains(t, string(b), "kruskal_wallis")

	_, err = run(t, "report", data, "--pair", "age", "--out", outPath)
	assert.Error(t, err)
}
