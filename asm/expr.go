package asm

import (
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var symbolRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// symbols holds labels and equates, which share one namespace.
type symbols map[string]int64

// define adds a new symbol.
func (s symbols) define(name string, value int64) error {
	if !symbolRe.MatchString(name) || isRegister(name) {
		return ErrLabelInvalid
	}
	if _, ok := s[name]; ok {
		return ErrSymbolDuplicate
	}
	s[name] = value
	return nil
}

// eval evaluates a number, a symbol, or a $(...) Starlark expression.
// here is the address of the line being assembled.
func (s symbols) eval(expr string, here int64) (int64, error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "$(") && strings.HasSuffix(expr, ")") {
		return s.starlarkEval(expr[2:len(expr)-1], here)
	}

	if value, ok := s[expr]; ok {
		return value, nil
	}

	value, err := strconv.ParseInt(expr, 0, 64)
	if err == nil {
		return value, nil
	}

	if symbolRe.MatchString(expr) {
		return 0, ErrSymbolUndefined(expr)
	}

	return 0, ErrParseExpression(expr)
}

// starlarkEval does compile-time $(...) evaluations. Every symbol is
// visible as a predeclared integer, plus HERE for the current address.
func (s symbols) starlarkEval(expr string, here int64) (int64, error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}

	pred := starlark.StringDict{
		"HERE": starlark.MakeInt64(here),
	}
	for name, value := range s {
		pred[name] = starlark.MakeInt64(value)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return 0, ErrParseExpression(expr)
	}

	rc, ok := dict["rc"].(starlark.Int)
	if !ok {
		return 0, ErrParseExpression(expr)
	}

	value, ok := rc.Int64()
	if !ok {
		return 0, ErrParseExpression(expr)
	}

	return value, nil
}

// splitOperands splits on commas that are not nested in parentheses or
// brackets.
func splitOperands(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var (
		operands []string
		depth    int
		start    int
	)
	for i, r := range text {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				operands = append(operands, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
	}

	return append(operands, strings.TrimSpace(text[start:]))
}
