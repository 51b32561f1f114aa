package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IgorHorta/acparser/internal/layout"
)

// =============================================================================
// Helpers
// =============================================================================

func validSpec() *LayoutSpec {
	return &LayoutSpec{
		ID:            "mini",
		Name:          "Mini",
		Version:       "1",
		MaxLineLength: 10,
		Records: []layout.RecordType{
			{
				Code:       "0",
				Name:       "Header",
				LineLength: 10,
				Fields: []layout.FieldSpec{
					{Begin: 1, End: 1, Name: "Tipo", Rule: &layout.Predicate{Kind: layout.KindLiteral, Values: []string{"0"}, Required: true}},
					{Begin: 2, End: 9, Name: "Data", Rule: &layout.Predicate{Kind: layout.KindDate, Format: layout.FormatYYYYMMDD, Required: true}},
					{Begin: 10, End: 10, Name: "Filler"},
				},
			},
			{
				Code:       "9",
				Name:       "Trailer",
				LineLength: 5,
				Fields: []layout.FieldSpec{
					{Begin: 2, End: 5, Name: "Total", Rule: &layout.Predicate{Kind: layout.KindInteger}},
				},
			},
		},
	}
}

func codesOf(errs []ValidationError) []string {
	codes := make([]string, 0, len(errs))
	for _, e := range errs {
		codes = append(codes, e.Code)
	}
	return codes
}

// =============================================================================
// Layout-level checks
// =============================================================================

func TestValidateValidLayout(t *testing.T) {
	errs := Validate(validSpec())
	assert.Empty(t, errs, "valid layout should have no errors")
}

func TestValidateNoRecords(t *testing.T) {
	spec := validSpec()
	spec.Records = nil

	errs := Validate(spec)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrLayoutNoRecords, errs[0].Code)
	assert.Equal(t, "records", errs[0].Field)
}

func TestValidateMaxLineLength(t *testing.T) {
	spec := validSpec()
	spec.MaxLineLength = 0

	errs := Validate(spec)
	assert.Contains(t, codesOf(errs), ErrMaxLineLength)
}

func TestValidateDuplicateCode(t *testing.T) {
	spec := validSpec()
	spec.Records[1].Code = "0"

	errs := Validate(spec)
	require.NotEmpty(t, errs)
	assert.Contains(t, codesOf(errs), ErrDuplicateCode)

	for _, e := range errs {
		if e.Code == ErrDuplicateCode {
			assert.Equal(t, "records[1].code", e.Field)
			assert.Contains(t, e.Message, `"Header"`)
			assert.Contains(t, e.Message, `"Trailer"`)
		}
	}
}

func TestValidateRecordCodeLength(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"two characters", "01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			spec.Records[1].Code = tt.code

			errs := Validate(spec)
			assert.Contains(t, codesOf(errs), ErrRecordCode)
		})
	}
}

func TestValidateMultibyteRecordCode(t *testing.T) {
	spec := validSpec()
	spec.Records[1].Code = "é"

	errs := Validate(spec)
	assert.Empty(t, errs, "a single rune is a valid code regardless of byte width")
}

func TestValidateLineLengthExceedsMax(t *testing.T) {
	spec := validSpec()
	spec.Records[1].LineLength = 11

	errs := Validate(spec)
	assert.Contains(t, codesOf(errs), ErrLineLength)
}

// =============================================================================
// Field checks
// =============================================================================

func TestValidateFieldBounds(t *testing.T) {
	tests := []struct {
		name       string
		begin, end int
	}{
		{"begin zero", 0, 3},
		{"begin after end", 4, 3},
		{"end past line length", 3, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			spec.Records[1].Fields[0].Begin = tt.begin
			spec.Records[1].Fields[0].End = tt.end

			errs := Validate(spec)
			require.Len(t, errs, 1)
			assert.Equal(t, ErrFieldBounds, errs[0].Code)
			assert.Equal(t, "records[1].fields[0]", errs[0].Field)
		})
	}
}

func TestValidateOverlappingFieldsAllowed(t *testing.T) {
	spec := validSpec()
	spec.Records[0].Fields = append(spec.Records[0].Fields,
		layout.FieldSpec{Begin: 2, End: 10, Name: "Uso reservado"})

	errs := Validate(spec)
	assert.Empty(t, errs)
}

func TestValidateInvalidPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{"unbalanced", "[a-z"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			spec.Records[1].Fields[0].Rule = &layout.Predicate{Kind: layout.KindRegex, Pattern: tt.pattern}

			errs := Validate(spec)
			require.Len(t, errs, 1)
			assert.Equal(t, ErrInvalidPattern, errs[0].Code)
		})
	}
}

func TestValidateLiteralWithoutValues(t *testing.T) {
	spec := validSpec()
	spec.Records[1].Fields[0].Rule = &layout.Predicate{Kind: layout.KindLiteral}

	errs := Validate(spec)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrLiteralNoValues, errs[0].Code)
	assert.Equal(t, "records[1].fields[0].rule.values", errs[0].Field)
}

func TestValidateDateWithoutFormat(t *testing.T) {
	spec := validSpec()
	spec.Records[0].Fields[1].Rule.Format = ""

	errs := Validate(spec)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDateNoFormat, errs[0].Code)
}

func TestValidateUnknownRuleKind(t *testing.T) {
	spec := validSpec()
	spec.Records[1].Fields[0].Rule = &layout.Predicate{Kind: "decimal"}

	errs := Validate(spec)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnknownRuleKind, errs[0].Code)
}

func TestValidateDiscriminatorMismatch(t *testing.T) {
	spec := validSpec()
	spec.Records[0].Fields[0].Rule.Values = []string{"1"}

	errs := Validate(spec)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeFieldMismatch, errs[0].Code)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	spec := validSpec()
	spec.MaxLineLength = -1
	spec.Records[1].Code = "0"
	spec.Records[1].Fields[0].Rule = &layout.Predicate{Kind: layout.KindLiteral}

	errs := Validate(spec)
	codes := codesOf(errs)
	assert.Contains(t, codes, ErrMaxLineLength)
	assert.Contains(t, codes, ErrDuplicateCode)
	assert.Contains(t, codes, ErrLiteralNoValues)
}

// =============================================================================
// Build
// =============================================================================

func TestBuildRegistersLayout(t *testing.T) {
	reg, errs := Build(validSpec())
	require.Empty(t, errs)
	require.NotNil(t, reg)

	assert.Equal(t, "mini", reg.ID)
	assert.Equal(t, 10, reg.MaxLineLength)

	rt, ok := reg.Lookup('9')
	require.True(t, ok)
	assert.Equal(t, "Trailer", rt.Name)
}

func TestBuildRejectsInvalidLayout(t *testing.T) {
	spec := validSpec()
	spec.Records[1].Code = "0"

	reg, errs := Build(spec)
	assert.Nil(t, reg)
	assert.Contains(t, codesOf(errs), ErrDuplicateCode)
}

func TestValidationErrorString(t *testing.T) {
	withLine := ValidationError{Field: "records[0].code", Message: "bad", Code: ErrRecordCode, Line: 7}
	assert.Equal(t, "[E121] line 7: records[0].code: bad", withLine.Error())

	noLine := ValidationError{Field: "records", Message: "empty", Code: ErrLayoutNoRecords}
	assert.Equal(t, "[E101] records: empty", noLine.Error())
}
