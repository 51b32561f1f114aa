package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IgorHorta/acparser/internal/store"
	"github.com/IgorHorta/acparser/internal/testutil"
)

// miniLayoutSrc is a five-column layout with one record type.
const miniLayoutSrc = `
package layouts

layout: mini: {
	name:          "Mini"
	version:       "1"
	maxLineLength: 5
	records: [{
		code:        "A"
		name:        "Alpha"
		description: "Counter record"
		lineLength:  5
		fields: [{
			begin: 1, end: 1
			name:        "Type"
			description: "Constant A"
			rule: {kind: "literal", values: ["A"], required: true}
		}, {
			begin: 2, end: 5
			name:        "Counter"
			description: "Sequential number"
			rule: {kind: "integer", required: true}
		}]
	}]
}
`

// cieloLines is a valid Cielo file: header, one sale and trailer.
var cieloLines = []string{
	testutil.Pad("012345678902023011520230101202301310000001CIELO03I                    013", 250),
	testutil.Pad("212345678900000123411111******1111   20230115+00000000100000000   123456                    000123000000000000016                          000000000000112345678                      10153000000000000000000000000000001", 250),
	testutil.Pad("900000000001", 250),
}

// writeLayoutsDir writes src as the only CUE file of a fresh directory.
func writeLayoutsDir(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layouts.cue"), []byte(src), 0644))
	return dir
}

// execute runs the root command with args and an isolated home directory.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// miniArgs prefixes args with the flags selecting the mini layout.
func miniArgs(layoutsDir string, args ...string) []string {
	return append([]string{"--layouts-dir", layoutsDir, "--layout", "mini"}, args...)
}

// lines splits command output into non-empty lines.
func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// replaceOnce replaces the single occurrence of old in s and fails loudly
// if the fixture drifted.
func replaceOnce(s, old, new string) string {
	if strings.Count(s, old) != 1 {
		panic("fixture does not contain exactly one " + old)
	}
	return strings.Replace(s, old, new, 1)
}

// openTestStore opens a temp-dir store closed at test end.
func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "state.db"), store.WithIDGenerator(testutil.NewSequentialIDGenerator("run")))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func storeCursor(document, layoutID, hash string, cursor int) store.Cursor {
	return store.Cursor{Document: document, Layout: layoutID, LayoutHash: hash, Cursor: cursor}
}
