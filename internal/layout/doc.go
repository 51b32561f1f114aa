// Package layout provides the schema model for fixed-width settlement files.
//
// A Registry holds the record types of one acquirer layout, keyed by the
// single-character discriminator found in the first column of every line.
// Each RecordType lists its FieldSpecs in declaration order; a FieldSpec
// optionally carries a Predicate describing how its column range is checked.
//
// Predicates are plain data (a tagged variant), not closures, so layouts can
// be compiled from configuration, hashed and serialized. The engine package
// interprets them.
//
// This package imports nothing internal. All other internal packages import
// layout; layout stays the foundational layer.
//
// Key constraints:
//   - Columns are 1-based and inclusive: 1 <= Begin <= End <= LineLength
//   - Columns count characters (runes), not bytes
//   - Discriminator codes are unique within one Registry
//   - A Registry is immutable once built and safe to share
package layout
