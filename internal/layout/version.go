package layout

// Version constants for the layout model and the validation engine.
const (
	// ModelVersion is the layout model schema version. It is folded into
	// layout hashes so a model change invalidates persisted cursors.
	ModelVersion = "1"

	// EngineVersion is the acparser engine version.
	EngineVersion = "0.1.0"
)
