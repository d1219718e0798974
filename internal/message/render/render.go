// Package render implements {{var}} template interpolation for message
// bodies.
package render

import (
	"fmt"
	"regexp"
	"strings"
)

// ErrUnknownVariable wraps the variable name a template referenced but the
// context did not supply.
type ErrUnknownVariable struct {
	Name string
}

func (e ErrUnknownVariable) Error() string {
	return fmt.Sprintf("template references unknown variable %q", e.Name)
}

var variablePattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_.]*)\s*\}\}`)

// Interpolate substitutes {{var}} references with context values. Every
// referenced variable must resolve; a miss aborts the render. Dotted names
// walk nested maps.
func Interpolate(template string, context map[string]any) (string, error) {
	var missing *ErrUnknownVariable
	out := variablePattern.ReplaceAllStringFunc(template, func(match string) string {
		if missing != nil {
			return match
		}
		name := variablePattern.FindStringSubmatch(match)[1]
		value, ok := lookup(context, name)
		if !ok {
			missing = &ErrUnknownVariable{Name: name}
			return match
		}
		return stringify(value)
	})
	if missing != nil {
		return "", *missing
	}
	return out, nil
}

func lookup(context map[string]any, name string) (any, bool) {
	parts := strings.Split(name, ".")
	var current any = context
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
