package scraper

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

// decodeJSON parses one JSON document, keeping numbers as json.Number so
// identifiers like SKUs survive untouched. Trailing content is an error.
func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected content after JSON value")
	}
	return v, nil
}

// toList treats a nil as empty, a list as itself and anything else as a one-item list.
func toList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

// truthy mirrors the loose emptiness test used when picking between alternative keys.
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
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// firstTruthy returns the value of the first key that holds a non-empty value.
func firstTruthy(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v := obj[k]; truthy(v) {
			return v
		}
	}
	return nil
}

// floatValue coerces JSON numbers and numeric strings; anything else is nil.
func floatValue(v any) *float64 {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return nil
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// stringValue returns a trimmed, non-empty string field.
func stringValue(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// scalarString stringifies strings and numbers; objects, lists and booleans are nil.
func scalarString(v any) *string {
	switch t := v.(type) {
	case string:
		return stringValue(t)
	case json.Number:
		s := t.String()
		return &s
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	default:
		return nil
	}
}

// imageRef unwraps a string or an ImageObject-like dict into a URL.
func imageRef(v any) *string {
	switch t := v.(type) {
	case string:
		return stringValue(t)
	case map[string]any:
		if u := stringValue(t["url"]); u != nil {
			return u
		}
		return stringValue(t["contentUrl"])
	default:
		return nil
	}
}

// appendUnique appends s when it is not already present.
func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
