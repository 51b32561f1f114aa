package engine

// LineRange is a half-open interval [Start, End) of line indexes.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Hint describes one field at its column span.
type Hint struct {
	Address     LineAddress `json:"address"`
	Field       string      `json:"field"`
	Description string      `json:"description"`
}

// Message renders the hover text of the hint.
func (h Hint) Message() string {
	return h.Field + " - " + h.Description
}

// ResolveHints emits one hint per field for every distinct line covered by
// ranges, in range order and then field order. Overlapping ranges visit a
// line once; ranges are clipped to the source.
//
// Hints are advisory: a line whose record type cannot be resolved is skipped
// and nothing is raised. If another hint pass is already in flight on state,
// the request is skipped and ok is false.
func (v *Validator) ResolveHints(state *ScanState, src LineSource, ranges []LineRange) (hints []Hint, ok bool) {
	if state.annotating {
		v.logger.Debug("hint pass skipped: already in flight")
		return nil, false
	}
	state.annotating = true
	defer func() { state.annotating = false }()

	total := src.LineCount()
	seen := make(map[int]bool)

	for _, r := range ranges {
		start := max(r.Start, 0)
		end := min(r.End, total)
		for i := start; i < end; i++ {
			if seen[i] {
				continue
			}
			seen[i] = true

			line := src.LineAt(i)
			rt, err := Resolve(v.registry, line)
			if err != nil {
				v.logger.Debug("hint skipped", "line", i, "error", err)
				continue
			}

			for _, field := range rt.Fields {
				hints = append(hints, Hint{
					Address:     LineAddress{Line: i, Start: field.Begin - 1, End: field.End},
					Field:       field.Name,
					Description: field.Description,
				})
			}
		}
	}

	return hints, true
}
