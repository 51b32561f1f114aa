package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harnessScenarios holds the harness package's conformance scenarios.
var harnessScenarios = filepath.Join("..", "harness", "testdata", "scenarios")

const miniScenario = `name: mini_resume
description: "Resume after a bad counter"
layout_file: ../layouts/mini.cue
lines:
  - "A0001"
  - "AXXXX"
  - "A0003"
steps:
  - action: validate
    expect:
      ok: false
      kind: FIELD_VALIDATION_FAILURE
      field: Counter
      cursor: 2
  - action: validate
    expect:
      ok: true
      cursor: 3
assertions:
  - type: final_state
    cursor: 3
    runs: 2
`

// writeScenarioTree lays out root/scenarios/<name>.yaml next to
// root/layouts/mini.cue and returns the scenarios directory.
func writeScenarioTree(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "layouts"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "layouts", "mini.cue"), []byte(miniLayoutSrc), 0644))

	dir := filepath.Join(root, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range scenarios {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0644))
	}
	return dir
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, _, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "test", t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
	assert.NotNil(t, resp.Data.Scenarios)
}

func TestTestCommandRunsHarnessScenarios(t *testing.T) {
	out, _, err := execute(t, "test", harnessScenarios)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ cielo_full_file")
	assert.Contains(t, out, "✓ cielo_resume")
	assert.Contains(t, out, "✓ mini_blank_line_resume")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandFilter(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "test", harnessScenarios, "--filter", "mini_*")
	require.NoError(t, err)

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "mini_blank_line_resume", resp.Data.Scenarios[0].Name)
	assert.True(t, resp.Data.Scenarios[0].Pass)
}

func TestTestCommandGoldenLifecycle(t *testing.T) {
	dir := writeScenarioTree(t, map[string]string{"mini_resume": miniScenario})
	goldenPath := filepath.Join(dir, "golden", "mini_resume.golden")

	out, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ mini_resume (golden updated)")
	require.FileExists(t, goldenPath)

	out, _, err = execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ mini_resume\n")

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"scenario_name":"mini_resume","trace":[]}`), 0644))
	out, _, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Golden file mismatch")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommandReportsFailures(t *testing.T) {
	failing := `name: wrong_expectation
description: "Expects a bad counter to pass"
layout_file: ../layouts/mini.cue
lines: ["AXXXX"]
steps:
  - action: validate
    expect:
      ok: true
`
	dir := writeScenarioTree(t, map[string]string{
		"mini_resume":       miniScenario,
		"wrong_expectation": failing,
		"broken":            "name: [",
	})

	out, _, err := execute(t, "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 2, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)

	byName := map[string]ScenarioResult{}
	for _, s := range resp.Data.Scenarios {
		byName[s.Name] = s
	}
	assert.True(t, byName["mini_resume"].Pass)
	require.NotEmpty(t, byName["wrong_expectation"].Errors)
	assert.Contains(t, byName["wrong_expectation"].Errors[0], "step 1")
	assert.Contains(t, byName["broken.yaml"].Errors[0], "failed to load scenario")
}

func TestFindScenarioFiles(t *testing.T) {
	files, err := findScenarioFiles(harnessScenarios, "")
	require.NoError(t, err)
	assert.Len(t, files, 4)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	files, err := findScenarioFiles(harnessScenarios, "cielo_*")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	_, err = findScenarioFiles(harnessScenarios, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "cielo_resume.golden"),
		goldenFilePath(filepath.Join("scenarios", "cielo_resume.yaml")))
}

func TestCompareWithGoldenIgnoresTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.golden")
	require.NoError(t, os.WriteFile(path, []byte("{\"a\":1}\n"), 0644))

	match, err := compareWithGolden(path, []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = compareWithGolden(path, []byte(`{"a":2}`))
	require.NoError(t, err)
	assert.False(t, match)
}
