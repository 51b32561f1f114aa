package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/IgorHorta/acparser/internal/store"
)

// defaultDBName is the store file created under the user config directory.
const defaultDBName = "state.db"

// openStore opens the cursor store named by opts.DB, or the default one
// under the user config directory.
func openStore(opts *RootOptions) (*store.Store, error) {
	path := opts.DB
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeStore, Message: fmt.Sprintf("locating config dir: %v", err)}
		}
		dir = filepath.Join(dir, "acparser")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &LoadError{Code: ErrCodeStore, Message: fmt.Sprintf("creating %s: %v", dir, err)}
		}
		path = filepath.Join(dir, defaultDBName)
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStore, Message: err.Error()}
	}
	return st, nil
}

// documentKey is the name a document's cursor and runs are stored under.
// Absolute paths keep runs from different working directories together.
func documentKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
