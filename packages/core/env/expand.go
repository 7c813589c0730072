package env

import (
	"os"
	"regexp"
	"strconv"
)

var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expand replaces ${VAR} references in s with values from the process
// environment. Unset variables expand to the empty string; a bare $ is kept.
func Expand(s string) string {
	return variablePattern.ReplaceAllStringFunc(s, func(m string) string {
		name := variablePattern.FindStringSubmatch(m)[1]
		return os.Getenv(name)
	})
}

// Missing returns the names referenced as ${VAR} in s that are not set.
func Missing(s string) []string {
	var names []string
	for _, m := range variablePattern.FindAllStringSubmatch(s, -1) {
		if _, ok := os.LookupEnv(m[1]); !ok {
			names = append(names, m[1])
		}
	}
	return names
}

// ExpandValue walks a decoded document (maps, slices, strings) and expands
// every string in place.
func ExpandValue(v any) any {
	switch val := v.(type) {
	case string:
		return Expand(val)
	case map[string]any:
		for k, item := range val {
			val[k] = ExpandValue(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = ExpandValue(item)
		}
		return val
	default:
		return v
	}
}

// String returns the environment value for key, or defaultVal when unset or empty.
func String(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// Bool returns true for "true", "1" or "yes".
func Bool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

// Int returns the environment value for key parsed as an int.
func Int(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// Float returns the environment value for key parsed as a float64.
func Float(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
