package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_MiniBlankLineResume(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/mini_blank_line_resume.yaml")
	require.NoError(t, err)

	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden -update
	require.NoError(t, RunWithGolden(t, scenario))
}

func TestMarshalTrace_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/cielo_resume.yaml")
	require.NoError(t, err)

	var outputs []string
	for i := 0; i < 3; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)
		data, err := MarshalTrace(scenario.Name, result)
		require.NoError(t, err)
		outputs = append(outputs, string(data))
	}

	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[1], outputs[2])
}

func TestMarshalTrace_OmitsEmptyParts(t *testing.T) {
	result := NewResult()
	result.Trace = []TraceEvent{{Step: 1, Action: ActionReset, Status: StatusOK}}

	data, err := MarshalTrace("reset_only", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"reset_only","trace":[{"action":"reset","cursor":0,"status":"ok","step":1}]}`,
		string(data))
}
