package intent

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ArgumentError reports model-supplied arguments that do not fit a function's schema
type ArgumentError struct {
	Function string
	Param    string
	Reason   string
	missing  bool
	desc     string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: argument %q %s", e.Function, e.Param, e.Reason)
}

// Clarification is the question put back to the shopper
func (e *ArgumentError) Clarification() string {
	if e.missing {
		return fmt.Sprintf("Could you tell me the %s?", strings.ToLower(e.desc))
	}
	return fmt.Sprintf("I didn't quite get the %s. Could you say it again?", strings.ToLower(e.desc))
}

// Validate checks args against the function's parameters. It returns a cleaned
// copy: unknown keys dropped, whole numbers coerced for integer parameters and
// enum values normalized to their declared spelling. Missing context-resolvable
// identifiers are accepted so the handler can fall back to the session.
func (f Function) Validate(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))

	for _, p := range f.Params {
		raw, ok := args[p.Name]
		if !ok || raw == nil {
			continue
		}
		v, err := coerce(p, raw)
		if err != nil {
			return nil, &ArgumentError{Function: f.Name, Param: p.Name, Reason: err.Error(), desc: p.Description}
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		out[p.Name] = v
	}

	for _, name := range f.Required {
		if _, ok := out[name]; ok {
			continue
		}
		p, _ := f.Param(name)
		if p.ContextResolvable {
			continue
		}
		return nil, &ArgumentError{Function: f.Name, Param: name, Reason: "is required", missing: true, desc: p.Description}
	}

	return out, nil
}

func coerce(p Param, raw any) (any, error) {
	switch p.Type {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			// ids sometimes come back as bare numbers
			if n, isNum := toFloat(raw); isNum {
				return strconv.FormatFloat(n, 'f', -1, 64), nil
			}
			return nil, fmt.Errorf("must be a string")
		}
		s = strings.TrimSpace(s)
		if len(p.Enum) > 0 && s != "" {
			for _, e := range p.Enum {
				if strings.EqualFold(e, s) {
					return e, nil
				}
			}
			return nil, fmt.Errorf("must be one of %s", strings.Join(p.Enum, ", "))
		}
		return s, nil

	case TypeNumber:
		n, ok := toFloat(raw)
		if !ok {
			return nil, fmt.Errorf("must be a number")
		}
		return n, nil

	case TypeInteger:
		n, ok := toFloat(raw)
		if !ok || n != math.Trunc(n) {
			return nil, fmt.Errorf("must be a whole number")
		}
		if n > math.MaxInt32 || n < math.MinInt32 {
			return nil, fmt.Errorf("is out of range")
		}
		return int(n), nil

	case TypeBoolean:
		switch b := raw.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return nil, fmt.Errorf("must be true or false")
			}
			return parsed, nil
		}
		return nil, fmt.Errorf("must be true or false")

	case TypeStringArray:
		switch list := raw.(type) {
		case []string:
			return list, nil
		case []any:
			out := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("must be a list of strings")
				}
				out = append(out, s)
			}
			return out, nil
		}
		return nil, fmt.Errorf("must be a list")
	}
	return raw, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
