package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/IgorHorta/acparser/internal/acquirers"
	"github.com/IgorHorta/acparser/internal/compiler"
	"github.com/IgorHorta/acparser/internal/layout"
)

// LoadError represents an error that occurred while loading layouts or
// input files.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
// Structural layout errors reuse the compiler's E1xx codes.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeUnknownLayout = "E008" // --layout names no known layout
	ErrCodeReadFailed    = "E009" // Input file unreadable
	ErrCodeStore         = "E010" // Cursor store unavailable
	ErrCodeInvalidRange  = "E011" // Malformed --lines value
)

// LoadLayoutsDir compiles every CUE layout in dir.
func LoadLayoutsDir(dir string) ([]*layout.Registry, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("layouts directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing layouts directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	regs, err := acquirers.Build(value)
	if err != nil {
		return nil, convertLayoutError(err)
	}
	return regs, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// AvailableLayouts returns the built-in layouts followed by those of
// opts.LayoutsDir. A directory layout replaces a built-in one with the
// same ID in place.
func AvailableLayouts(opts *RootOptions) ([]*layout.Registry, error) {
	builtin, err := acquirers.Builtin()
	if err != nil {
		return nil, convertLayoutError(err)
	}
	regs := append([]*layout.Registry(nil), builtin...)
	if opts.LayoutsDir == "" {
		return regs, nil
	}

	extra, err := LoadLayoutsDir(opts.LayoutsDir)
	if err != nil {
		return nil, err
	}
	for _, reg := range extra {
		replaced := false
		for i, have := range regs {
			if have.ID == reg.ID {
				regs[i] = reg
				replaced = true
				break
			}
		}
		if !replaced {
			regs = append(regs, reg)
		}
	}
	return regs, nil
}

// ResolveLayout returns the layout selected by opts.Layout.
func ResolveLayout(opts *RootOptions) (*layout.Registry, error) {
	id := opts.Layout
	if id == "" {
		id = acquirers.DefaultLayout
	}

	regs, err := AvailableLayouts(opts)
	if err != nil {
		return nil, err
	}
	for _, reg := range regs {
		if reg.ID == id {
			return reg, nil
		}
	}
	return nil, &LoadError{Code: ErrCodeUnknownLayout, Message: fmt.Sprintf("unknown layout %q", id)}
}

// convertLayoutError converts a compiler or structural error to a LoadError
// with position info.
func convertLayoutError(err error) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}

	var layoutErrs acquirers.LayoutErrors
	if errors.As(err, &layoutErrs) && len(layoutErrs) > 0 && len(layoutErrs[0].Errors) > 0 {
		return &LoadError{
			Code:    layoutErrs[0].Errors[0].Code,
			Message: err.Error(),
		}
	}

	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeBuildFailed,
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}

	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// loadErrorCode returns the code of a LoadError, or ErrCodeGeneric.
func loadErrorCode(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}
