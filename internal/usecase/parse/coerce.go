package parse

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

const defaultRelevance = 0.5

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "True"
		}
		return "False"
	case map[string]any, []any:
		data, _ := json.Marshal(t)
		return string(data)
	default:
		return fmt.Sprint(t)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// toInt coerces a counter to an int. Unparsable values yield nil.
func toInt(v any) *int {
	var n int
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			n = int(i)
		} else if f, err := t.Float64(); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			n = int(f)
		} else {
			return nil
		}
	case float64:
		n = int(t)
	case int:
		n = t
	case bool:
		if t {
			n = 1
		}
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		n = i
	default:
		return nil
	}
	return &n
}

// truthyInt coerces v only when it is truthy; zero or absent counters stay nil.
func truthyInt(v any) *int {
	if !truthy(v) {
		return nil
	}
	return toInt(v)
}

// firstTruthy returns the first truthy value of obj under keys.
func firstTruthy(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && truthy(v) {
			return v
		}
	}
	return nil
}

// relevance reads a number or numeric string, clamped to [0,1].
func relevance(v any) float64 {
	var f float64
	switch t := v.(type) {
	case json.Number:
		x, err := t.Float64()
		if err != nil {
			return defaultRelevance
		}
		f = x
	case float64:
		f = t
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return defaultRelevance
		}
		f = x
	default:
		return defaultRelevance
	}
	if math.IsNaN(f) {
		return defaultRelevance
	}
	return math.Min(1, math.Max(0, f))
}

// date keeps v only when it is a strict YYYY-MM-DD string.
func date(v any) *string {
	if !truthy(v) {
		return nil
	}
	s := str(v)
	if !dateRe.MatchString(s) {
		return nil
	}
	return &s
}

func relevanceOf(item map[string]any) float64 {
	v, ok := item["relevance"]
	if !ok {
		return defaultRelevance
	}
	return relevance(v)
}
