package intent

import (
	"fmt"
	"math"
	"strings"
)

// Caller identifies who a function call runs on behalf of
type Caller struct {
	UserID    string
	SessionID string
	IPAddress string
}

// DefaultIPAddress is used for payment calls when the client address is unknown
const DefaultIPAddress = "127.0.0.1"

// Args are the validated model arguments enriched with the caller identity
type Args struct {
	Values    map[string]any
	UserID    string
	SessionID string
	IPAddress string
}

// String returns a trimmed string argument, or "" when absent
func (a Args) String(key string) string {
	switch v := a.Values[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Float returns a numeric argument and whether it was supplied
func (a Args) Float(key string) (float64, bool) {
	return toFloat(a.Values[key])
}

// FloatOr returns a numeric argument or def
func (a Args) FloatOr(key string, def float64) float64 {
	if f, ok := a.Float(key); ok {
		return f
	}
	return def
}

// Int returns an integer argument, or def when absent or outside the int32 range
func (a Args) Int(key string, def int) int {
	f, ok := toFloat(a.Values[key])
	if !ok || math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(f)
}

// Bool returns a boolean argument or false
func (a Args) Bool(key string) bool {
	b, _ := a.Values[key].(bool)
	return b
}

// Strings returns a list argument
func (a Args) Strings(key string) []string {
	switch v := a.Values[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// maxLimit caps list sizes asked for by the model
const maxLimit = 50

// Limit returns the "limit" argument clamped to [1, maxLimit], or def
func (a Args) Limit(def int) int {
	n := a.Int("limit", def)
	if n <= 0 {
		return def
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
