package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/IgorHorta/acparser/internal/layout"
)

// ErrRequired is returned for a blank value in a required field.
var ErrRequired = errors.New("valor obrigatório")

var alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]*$`)

// patterns caches compiled regex predicates by source pattern.
var patterns sync.Map // string -> *regexp.Regexp

// Evaluate applies a predicate to a raw field value.
// Returns nil when the value is accepted. A nil predicate accepts everything.
//
// Evaluation order:
//  1. literal: an exact member of the value set passes, even if blank
//  2. blank values fail with ErrRequired when required, pass otherwise
//  3. the kind-specific check
func Evaluate(p *layout.Predicate, value string) error {
	if p == nil {
		return nil
	}

	if p.Kind == layout.KindLiteral && contains(p.Values, value) {
		return nil
	}

	if strings.TrimSpace(value) == "" {
		if p.Required {
			return ErrRequired
		}
		return nil
	}

	switch p.Kind {
	case layout.KindLiteral:
		return fmt.Errorf("valor %q não é permitido, esperado um de %s", value, quoteList(p.Values))
	case layout.KindAlphanumeric:
		if !alphanumeric.MatchString(value) {
			return fmt.Errorf("valor %q deve conter apenas letras e números", value)
		}
	case layout.KindRegex:
		re, err := compilePattern(p.Pattern)
		if err != nil {
			return fmt.Errorf("padrão inválido %q: %w", p.Pattern, err)
		}
		if !re.MatchString(value) {
			return fmt.Errorf("valor %q não corresponde ao padrão %s", value, p.Pattern)
		}
	case layout.KindInteger:
		return checkInteger(value)
	case layout.KindDate:
		return checkDate(p, value)
	case layout.KindText:
		// any non-blank content
	default:
		return fmt.Errorf("regra desconhecida %q", p.Kind)
	}
	return nil
}

// checkInteger accepts a base-10 integer of any magnitude. Surrounding
// spaces are ignored. Parsing goes through an arbitrary precision decimal so
// wide amount zones never lose digits.
func checkInteger(value string) error {
	d, _, err := apd.NewFromString(strings.TrimSpace(value))
	if err != nil || d.Form != apd.Finite {
		return fmt.Errorf("valor %q não é um número inteiro", value)
	}
	var integ, frac apd.Decimal
	d.Modf(&integ, &frac)
	if !frac.IsZero() {
		return fmt.Errorf("valor %q não é um número inteiro", value)
	}
	return nil
}

// checkDate accepts an escape literal or a strict, zero-padded date in the
// predicate's format.
func checkDate(p *layout.Predicate, value string) error {
	if contains(p.Escapes, value) {
		return nil
	}
	goLayout, ok := p.Format.GoLayout()
	if !ok {
		return fmt.Errorf("formato de data desconhecido %q", p.Format)
	}
	if len(value) != p.Format.Width() || !allDigits(value) {
		return fmt.Errorf("valor %q não é uma data válida no formato %s", value, p.Format)
	}
	if _, err := time.Parse(goLayout, value); err != nil {
		return fmt.Errorf("valor %q não é uma data válida no formato %s", value, p.Format)
	}
	return nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patterns.Store(pattern, re)
	return re, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
