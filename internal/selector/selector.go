// Package selector evaluates build-number range expressions.
//
// A selector gates a release to a range of host application builds. The
// grammar has exactly five forms: "*", "<N", "<=N", ">N", ">=N" and
// "A - B" (inclusive on both ends).
package selector

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidSelector is returned for text outside the selector grammar.
var ErrInvalidSelector = errors.New("invalid selector")

// Op identifies the selector form.
type Op int

const (
	Wildcard Op = iota
	LessThan
	LessEqual
	GreaterThan
	GreaterEqual
	Range
)

var rangeRE = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)

// Selector is a pure predicate over an integer build number.
type Selector struct {
	op Op
	lo int
	hi int
}

// Any is the wildcard selector, matching every build.
var Any = Selector{op: Wildcard}

// Parse parses a selector expression. Whitespace around the "-" of a range
// is insignificant. A range whose lower bound exceeds its upper bound fails.
func Parse(text string) (Selector, error) {
	text = strings.TrimSpace(text)
	if text == "*" {
		return Any, nil
	}

	if m := rangeRE.FindStringSubmatch(text); m != nil {
		lo, err := strconv.Atoi(m[1])
		if err != nil {
			return Selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, text)
		}
		hi, err := strconv.Atoi(m[2])
		if err != nil {
			return Selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, text)
		}
		if lo > hi {
			return Selector{}, fmt.Errorf("%w: range %q is inverted", ErrInvalidSelector, text)
		}
		return Selector{op: Range, lo: lo, hi: hi}, nil
	}

	for _, form := range []struct {
		prefix string
		op     Op
	}{
		{"<=", LessEqual},
		{">=", GreaterEqual},
		{"<", LessThan},
		{">", GreaterThan},
	} {
		if rest, ok := strings.CutPrefix(text, form.prefix); ok {
			n, err := strconv.Atoi(rest)
			if err != nil {
				return Selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, text)
			}
			return Selector{op: form.op, lo: n, hi: n}, nil
		}
	}

	return Selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, text)
}

// Op returns the selector form.
func (s Selector) Op() Op {
	return s.op
}

// Match reports whether build satisfies the selector.
func (s Selector) Match(build int) bool {
	switch s.op {
	case Wildcard:
		return true
	case LessThan:
		return build < s.lo
	case LessEqual:
		return build <= s.lo
	case GreaterThan:
		return build > s.lo
	case GreaterEqual:
		return build >= s.lo
	case Range:
		return build >= s.lo && build <= s.hi
	}
	return false
}

// LowerBound returns the bound used for ${st_build} template substitution:
// "any" for the wildcard, otherwise the selector's single or lower bound.
func (s Selector) LowerBound() string {
	if s.op == Wildcard {
		return "any"
	}
	return strconv.Itoa(s.lo)
}

// String renders the selector in its source form.
func (s Selector) String() string {
	switch s.op {
	case Wildcard:
		return "*"
	case LessThan:
		return "<" + strconv.Itoa(s.lo)
	case LessEqual:
		return "<=" + strconv.Itoa(s.lo)
	case GreaterThan:
		return ">" + strconv.Itoa(s.lo)
	case GreaterEqual:
		return ">=" + strconv.Itoa(s.lo)
	case Range:
		return fmt.Sprintf("%d - %d", s.lo, s.hi)
	}
	return ""
}

// Intersects reports whether any of accepted appears in offered. It backs
// interpreter-version gating: a release lists the interpreter versions it
// supports and the client context lists the versions it can load.
func Intersects(accepted, offered []string) bool {
	for _, a := range accepted {
		for _, o := range offered {
			if a == o {
				return true
			}
		}
	}
	return false
}
