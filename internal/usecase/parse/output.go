// Package parse turns raw provider payloads into validated items.
//
// Model responses are free-form: output may be a bare string, a list of
// segments or an older chat-style choices array, and the JSON of interest is
// often wrapped in prose. Parsing never fails hard: malformed input yields
// no items plus an error the caller logs.
package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrAPIResponse marks a payload carrying a top-level error field.
	ErrAPIResponse = errors.New("api error in response")
	// ErrNoOutputText marks a payload without any output text.
	ErrNoOutputText = errors.New("no output text in response")
	// ErrNoItems marks output text without a parsable {"items": ...} object.
	ErrNoItems = errors.New("no items object in output")
)

var itemsObjectRe = regexp.MustCompile(`\{[\s\S]*"items"[\s\S]*\}`)

// textStrategy extracts output text from a decoded response, or "".
type textStrategy func(resp map[string]any) string

var textStrategies = []textStrategy{
	outputString,
	outputSegments,
	chatChoices,
}

// decode unmarshals raw keeping numbers as json.Number.
func decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// OutputText extracts the model's text from a Responses or chat payload.
// A non-empty top-level error field wins and is returned as apiErr.
func OutputText(raw []byte) (text, apiErr string) {
	v, err := decode(raw)
	if err != nil {
		return "", ""
	}
	resp, ok := v.(map[string]any)
	if !ok {
		return "", ""
	}
	if e, ok := resp["error"]; ok && truthy(e) {
		return "", errorMessage(e)
	}
	for _, strategy := range textStrategies {
		if text := strategy(resp); text != "" {
			return text, ""
		}
	}
	return "", ""
}

func errorMessage(e any) string {
	if m, ok := e.(map[string]any); ok {
		if msg, ok := m["message"]; ok {
			return str(msg)
		}
		data, _ := json.Marshal(m)
		return string(data)
	}
	return str(e)
}

func outputString(resp map[string]any) string {
	s, _ := resp["output"].(string)
	return s
}

func outputSegments(resp map[string]any) string {
	segments, ok := resp["output"].([]any)
	if !ok {
		return ""
	}
	for _, seg := range segments {
		var text string
		switch s := seg.(type) {
		case string:
			text = s
		case map[string]any:
			if s["type"] == "message" {
				text = messageText(s)
			} else if t, ok := s["text"]; ok {
				text = str(t)
			}
		}
		if text != "" {
			return text
		}
	}
	return ""
}

func messageText(msg map[string]any) string {
	content, _ := msg["content"].([]any)
	for _, c := range content {
		part, ok := c.(map[string]any)
		if ok && part["type"] == "output_text" {
			return str(part["text"])
		}
	}
	return ""
}

func chatChoices(resp map[string]any) string {
	choices, _ := resp["choices"].([]any)
	for _, c := range choices {
		choice, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if msg, ok := choice["message"].(map[string]any); ok {
			return str(msg["content"])
		}
	}
	return ""
}

// ItemsJSON finds the {"items": [...]} object in text and returns its entries.
func ItemsJSON(text string) ([]any, error) {
	match := itemsObjectRe.FindString(text)
	if match == "" {
		return nil, ErrNoItems
	}
	v, err := decode([]byte(match))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoItems, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNoItems
	}
	items, _ := obj["items"].([]any)
	return items, nil
}

// modelItems runs the shared extraction pipeline for LLM responses.
func modelItems(raw []byte) ([]any, error) {
	text, apiErr := OutputText(raw)
	if apiErr != "" {
		return nil, fmt.Errorf("%w: %s", ErrAPIResponse, apiErr)
	}
	if text == "" {
		return nil, ErrNoOutputText
	}
	return ItemsJSON(text)
}
