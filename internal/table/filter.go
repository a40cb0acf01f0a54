package table

import (
	"strconv"
	"strings"
)

type operator int

const (
	opBare operator = iota
	opEq
	opNe
	opGt
	opGe
	opLt
	opLe
	opContains
	opDateStartsWith
	opIsBlank
)

// Symbol forms are checked longest first so ">=" wins over ">".
var symbolOperators = []struct {
	prefix string
	op     operator
}{
	{">=", opGe},
	{"<=", opLe},
	{"!=", opNe},
	{"=", opEq},
	{">", opGt},
	{"<", opLt},
}

var wordOperators = map[string]operator{
	"eq":             opEq,
	"ne":             opNe,
	"gt":             opGt,
	"ge":             opGe,
	"lt":             opLt,
	"le":             opLe,
	"contains":       opContains,
	"datestartswith": opDateStartsWith,
}

type filter struct {
	column  string
	op      operator
	value   string
	num     float64
	numeric bool
	invalid bool
}

// parseFilter compiles one column filter expression. ok is false for a
// blank expression, which filters nothing.
func parseFilter(column, expr string) (f filter, ok bool) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return filter{}, false
	}

	f = filter{column: column, op: opBare}

	if strings.EqualFold(expr, "is blank") {
		f.op = opIsBlank
		return f, true
	}

	rest := expr
	matched := false
	for _, so := range symbolOperators {
		if strings.HasPrefix(expr, so.prefix) {
			f.op = so.op
			rest = expr[len(so.prefix):]
			matched = true
			break
		}
	}
	if !matched {
		if word, tail, found := strings.Cut(expr, " "); found {
			if op, known := wordOperators[strings.ToLower(word)]; known {
				f.op = op
				rest = tail
			}
		}
	}

	f.value = unquote(strings.TrimSpace(rest))
	if f.value == "" {
		f.invalid = true
		return f, true
	}
	if n, err := strconv.ParseFloat(f.value, 64); err == nil {
		f.num = n
		f.numeric = true
	}
	return f, true
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'' || first == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func (f filter) match(c Cell) bool {
	if f.invalid {
		return false
	}
	if f.op == opIsBlank {
		return c.Null
	}
	if c.Null {
		return false
	}

	switch f.op {
	case opBare:
		if f.numeric && c.Numeric {
			return c.Num == f.num
		}
		return strings.Contains(c.Text, f.value)
	case opContains:
		return strings.Contains(c.Text, f.value)
	case opDateStartsWith:
		return strings.HasPrefix(c.Text, f.value)
	}

	cmp := f.compare(c)
	switch f.op {
	case opEq:
		return cmp == 0
	case opNe:
		return cmp != 0
	case opGt:
		return cmp > 0
	case opGe:
		return cmp >= 0
	case opLt:
		return cmp < 0
	case opLe:
		return cmp <= 0
	}
	return false
}

// compare orders the cell against the filter value.
func (f filter) compare(c Cell) int {
	if f.numeric && c.Numeric {
		switch {
		case c.Num < f.num:
			return -1
		case c.Num > f.num:
			return 1
		}
		return 0
	}
	return strings.Compare(c.Text, f.value)
}
