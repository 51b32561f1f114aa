// Package engine validates fixed-width settlement files against a layout.
//
// The engine has two entry points on Validator:
//
//   - ValidateFile scans a LineSource from a resumable cursor and stops at the
//     first violation (fail-fast). The cursor lives in an explicit ScanState
//     owned by the caller; after a failure it points one past the failing
//     line, so a repeated call continues with the next line instead of
//     reporting the same one again.
//   - ResolveHints describes the fields of the lines inside a set of line
//     ranges (a viewport). It never fails: lines whose record type cannot be
//     resolved are skipped.
//
// Violations are returned as *Violation errors carrying a Kind, a
// human-readable message and the LineAddress to highlight. Predicate failures
// never escape ValidateLine, and ValidateLine failures never escape
// ValidateFile as anything other than a *Violation.
//
// Concurrency model: single execution context. A ScanState must not be shared
// between goroutines. The annotation flag on ScanState only de-duplicates
// re-entrant hint requests; it is not a lock.
package engine
