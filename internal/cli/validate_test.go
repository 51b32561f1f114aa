package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IgorHorta/acparser/internal/engine"
	"github.com/IgorHorta/acparser/internal/testutil"
)

type validateResponse struct {
	Status string           `json:"status"`
	Data   ValidationResult `json:"data"`
	Error  *CLIError        `json:"error"`
	RunID  string           `json:"run_id"`
}

func decodeValidate(t *testing.T, out string) validateResponse {
	t.Helper()
	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestValidateCieloFile(t *testing.T) {
	file := testutil.WriteLines(t, t.TempDir(), "extrato.txt", append(cieloLines, "")...)

	out, _, err := execute(t, "validate", "--no-store", file)
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "valid (layout cielo)")
}

func TestValidateCieloViolationRendersSnippet(t *testing.T) {
	bad := append([]string(nil), cieloLines...)
	bad[1] = replaceOnce(bad[1], "20230115", "20231340")
	file := testutil.WriteLines(t, t.TempDir(), "extrato.txt", bad...)

	out, _, err := execute(t, "validate", "--no-store", file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "line 2")

	assert.Contains(t, out, "✗ "+file)
	assert.Contains(t, out, "error[FIELD_VALIDATION_FAILURE]: Data da venda/ajuste Erro:")
	assert.Contains(t, out, file+":2:38")
	assert.Contains(t, out, "^^^^^^^^ Data da venda/ajuste")
	assert.NotContains(t, out, "Next run resumes", "no cursor is kept without a store")
}

func TestValidateResumesAcrossInvocations(t *testing.T) {
	layoutsDir := writeLayoutsDir(t, miniLayoutSrc)
	dir := t.TempDir()
	db := filepath.Join(dir, "state.db")
	file := testutil.WriteLines(t, dir, "mini.txt", "A0001", "AXXXX", "A0003")

	out, _, err := execute(t, miniArgs(layoutsDir, "--db", db, "validate", file)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Counter Erro:")
	assert.Contains(t, out, "Next run resumes at line 3")

	out, _, err = execute(t, miniArgs(layoutsDir, "--db", db, "validate", file)...)
	require.NoError(t, err)
	assert.Contains(t, out, "lines 3-3 valid")

	// Completed: nothing left to scan.
	out, _, err = execute(t, miniArgs(layoutsDir, "--db", db, "validate", file)...)
	require.NoError(t, err)
	assert.Contains(t, out, "valid (layout mini)")

	_, _, err = execute(t, miniArgs(layoutsDir, "--db", db, "validate", "--reset", file)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidateJSON(t *testing.T) {
	layoutsDir := writeLayoutsDir(t, miniLayoutSrc)
	dir := t.TempDir()
	db := filepath.Join(dir, "state.db")
	file := testutil.WriteLines(t, dir, "mini.txt", "A0001", "A00X1", "A0003")

	out, _, err := execute(t, miniArgs(layoutsDir, "--db", db, "--format", "json", "validate", file)...)
	require.Error(t, err)

	resp := decodeValidate(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(engine.KindFieldValidation), resp.Error.Code)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, resp.RunID, resp.Data.RunID)

	assert.False(t, resp.Data.Valid)
	assert.Equal(t, 0, resp.Data.StartCursor)
	assert.Equal(t, 2, resp.Data.Cursor)
	assert.Equal(t, 3, resp.Data.LineCount)
	require.NotNil(t, resp.Data.Violation)
	assert.Equal(t, engine.LineAddress{Line: 1, Start: 1, End: 5}, resp.Data.Violation.Address)
	assert.Equal(t, "Counter", resp.Data.Violation.Field)

	out, _, err = execute(t, miniArgs(layoutsDir, "--db", db, "--format", "json", "validate", file)...)
	require.NoError(t, err)
	resp = decodeValidate(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2, resp.Data.StartCursor)
	assert.Equal(t, 3, resp.Data.Cursor)
	assert.Nil(t, resp.Data.Violation)
}

func TestValidateDiscardsCursorOfChangedLayout(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "state.db")
	file := testutil.WriteLines(t, dir, "mini.txt", "A0001", "AXXXX", "A0003")

	_, _, err := execute(t, miniArgs(writeLayoutsDir(t, miniLayoutSrc), "--db", db, "validate", file)...)
	require.Error(t, err)

	// Same layout ID, different revision: the saved cursor no longer applies.
	revised := writeLayoutsDir(t, replaceOnce(miniLayoutSrc, `"Sequential number"`, `"Running number"`))
	out, _, err := execute(t, miniArgs(revised, "--db", db, "--format", "json", "validate", file)...)
	require.Error(t, err)

	resp := decodeValidate(t, out)
	assert.Equal(t, 0, resp.Data.StartCursor)
	assert.Equal(t, 2, resp.Data.Cursor)
}

func TestValidateDiscardsCursorPastEnd(t *testing.T) {
	layoutsDir := writeLayoutsDir(t, miniLayoutSrc)
	dir := t.TempDir()
	db := filepath.Join(dir, "state.db")
	file := testutil.WriteLines(t, dir, "mini.txt", "A0001", "A0002", "A0003", "A0004")

	_, _, err := execute(t, miniArgs(layoutsDir, "--db", db, "validate", file)...)
	require.NoError(t, err)

	// The file is replaced by a shorter, broken one.
	testutil.WriteLines(t, dir, "mini.txt", "AXXXX")
	out, _, err := execute(t, miniArgs(layoutsDir, "--db", db, "--format", "json", "validate", file)...)
	require.Error(t, err)
	resp := decodeValidate(t, out)
	assert.Equal(t, 0, resp.Data.StartCursor)
}

func TestValidateUnknownLayout(t *testing.T) {
	file := testutil.WriteLines(t, t.TempDir(), "extrato.txt", cieloLines...)

	out, _, err := execute(t, "--layout", "rede", "validate", "--no-store", file)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeUnknownLayout)
	assert.Contains(t, out, `unknown layout "rede"`)
}

func TestValidateMissingFile(t *testing.T) {
	_, _, err := execute(t, "validate", "--no-store", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeReadFailed)
}

func TestValidateInvalidLayoutsDir(t *testing.T) {
	file := testutil.WriteLines(t, t.TempDir(), "mini.txt", "A0001")
	broken := replaceOnce(miniLayoutSrc, `code:        "A"`, `code:        "AB"`)

	out, _, err := execute(t, miniArgs(writeLayoutsDir(t, broken), "validate", "--no-store", file)...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E121")
	assert.Contains(t, out, "Error [E121]")
}

func TestValidateVerboseLogsToStderr(t *testing.T) {
	layoutsDir := writeLayoutsDir(t, miniLayoutSrc)
	file := testutil.WriteLines(t, t.TempDir(), "mini.txt", "A0001")

	out, errOut, err := execute(t, miniArgs(layoutsDir, "-v", "--format", "json", "validate", "--no-store", file)...)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Scanning")
	assert.Contains(t, errOut, "scan finished")
	assert.Equal(t, "ok", decodeValidate(t, out).Status)
}

func TestRestoreCursorAppliesSavedPosition(t *testing.T) {
	st := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	state := engine.NewScanState()
	logger := (&RootOptions{}).Logger(nil)

	require.NoError(t, restoreCursor(ctx, st, state, "doc", "mini", "h1", 10, false, logger))
	assert.Equal(t, 0, state.Cursor, "nothing saved yet")

	_, err := st.SaveCursor(ctx, storeCursor("doc", "mini", "h1", 4))
	require.NoError(t, err)

	require.NoError(t, restoreCursor(ctx, st, state, "doc", "mini", "h1", 10, false, logger))
	assert.Equal(t, 4, state.Cursor)

	state.Reset()
	require.NoError(t, restoreCursor(ctx, st, state, "doc", "mini", "h2", 10, false, logger))
	assert.Equal(t, 0, state.Cursor, "hash mismatch")

	require.NoError(t, restoreCursor(ctx, st, state, "doc", "mini", "h1", 3, false, logger))
	assert.Equal(t, 0, state.Cursor, "past end")

	require.NoError(t, restoreCursor(ctx, st, state, "doc", "mini", "h1", 10, true, logger))
	_, ok, err := st.LoadCursor(ctx, "doc", "mini")
	require.NoError(t, err)
	assert.False(t, ok, "reset deletes the saved cursor")
}

func TestRunViolation(t *testing.T) {
	assert.Nil(t, runViolation(nil))

	rv := runViolation(&engine.Violation{
		Kind:    engine.KindBlankLine,
		Message: "O arquivo possui linha vazia",
		Address: engine.LineAddress{Line: 2, Start: 0, End: 250},
	})
	require.NotNil(t, rv)
	assert.Equal(t, "BLANK_LINE", rv.Kind)
	assert.Equal(t, 2, rv.Line)
	assert.Equal(t, 250, rv.End)
	assert.Empty(t, rv.Field)
}
