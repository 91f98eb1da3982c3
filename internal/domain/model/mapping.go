package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var mappingSplitRe = regexp.MustCompile(`[,;]`)

// ParseMapping parses a canonical-to-provider model mapping.
//
// Accepted forms:
//
//	{"gpt-5.2":"provider/model-a","gpt-4.1":"provider/model-b"}
//	gpt-5.2=provider/model-a,gpt-4.1=provider/model-b
//	gpt-5.2=provider/model-a;gpt-4.1:provider/model-b
//
// Malformed JSON yields an empty mapping.
func ParseMapping(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]string{}
	}
	if strings.HasPrefix(raw, "{") {
		return parseJSONMapping(raw)
	}

	out := make(map[string]string)
	for _, part := range mappingSplitRe.Split(raw, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var left, right string
		var ok bool
		if left, right, ok = strings.Cut(part, "="); !ok {
			if left, right, ok = strings.Cut(part, ":"); !ok {
				continue
			}
		}
		left, right = strings.TrimSpace(left), strings.TrimSpace(right)
		if left != "" && right != "" {
			out[left] = right
		}
	}
	return out
}

func parseJSONMapping(raw string) map[string]string {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(data))
	for k, v := range data {
		if v == nil {
			continue
		}
		key := strings.TrimSpace(k)
		var val string
		if s, ok := v.(string); ok {
			val = s
		} else {
			val = fmt.Sprint(v)
		}
		val = strings.TrimSpace(val)
		if key != "" && val != "" {
			out[key] = val
		}
	}
	return out
}

// ApplyMapping returns the mapped id, or id itself when unmapped.
func ApplyMapping(id string, mapping map[string]string) string {
	if mapped, ok := mapping[id]; ok {
		return mapped
	}
	return id
}

// ParseFallbackChain parses a fallback model list given as a JSON array or CSV.
// An empty or unparsable value yields defaults. Every entry is mapped.
func ParseFallbackChain(raw string, defaults []string, mapping map[string]string) []string {
	chain := parseList(raw)
	if len(chain) == 0 {
		chain = defaults
	}
	out := make([]string, 0, len(chain))
	for _, id := range chain {
		out = append(out, ApplyMapping(id, mapping))
	}
	return out
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var items []string
	if strings.HasPrefix(raw, "[") {
		var data []any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return nil
		}
		for _, v := range data {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" && v != nil {
				items = append(items, s)
			}
		}
		return items
	}
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			items = append(items, s)
		}
	}
	return items
}
