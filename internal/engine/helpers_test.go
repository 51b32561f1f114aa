package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IgorHorta/acparser/internal/acquirers"
	"github.com/IgorHorta/acparser/internal/layout"
)

// miniRegistry has two five-column record types:
//
//	A: "A" + 4-digit counter
//	B: "B" + 2 letters + 2-digit code
func miniRegistry(t *testing.T) *layout.Registry {
	t.Helper()
	reg, err := layout.NewRegistry("mini", "Mini", "1", 5,
		layout.RecordType{
			Code:       "A",
			Name:       "Alfa",
			LineLength: 5,
			Fields: []layout.FieldSpec{
				{Begin: 1, End: 1, Name: "Tipo", Description: "Constante A",
					Rule: &layout.Predicate{Kind: layout.KindLiteral, Values: []string{"A"}, Required: true}},
				{Begin: 2, End: 5, Name: "Contador", Description: "Sequencial",
					Rule: &layout.Predicate{Kind: layout.KindInteger, Required: true}},
			},
		},
		layout.RecordType{
			Code:       "B",
			Name:       "Beta",
			LineLength: 5,
			Fields: []layout.FieldSpec{
				{Begin: 1, End: 1, Name: "Tipo", Description: "Constante B"},
				{Begin: 2, End: 3, Name: "Sigla", Description: "Duas letras",
					Rule: &layout.Predicate{Kind: layout.KindRegex, Pattern: `^[A-Z]{2}$`, Required: true}},
				{Begin: 4, End: 5, Name: "Código", Description: "Dois dígitos",
					Rule: &layout.Predicate{Kind: layout.KindInteger, Required: true}},
			},
		},
	)
	require.NoError(t, err)
	return reg
}

func cieloRegistry(t *testing.T) *layout.Registry {
	t.Helper()
	reg, err := acquirers.Lookup("cielo")
	require.NoError(t, err)
	return reg
}

// cieloHeader is a valid 250-column Cielo header line.
func cieloHeader() string {
	return pad("0"+"1234567890"+"20230115"+"20230101"+"20230131"+"0000001"+"CIELO"+"03"+"I"+
		strings.Repeat(" ", 20)+"013", 250)
}

func pad(s string, n int) string {
	return s + strings.Repeat(" ", n-len([]rune(s)))
}
