package parking

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// DecodeBody parses a raw response body into a dynamic JSON value.
// An empty body decodes to nil without error. Whitespace alone is not
// empty and fails as invalid JSON. Numbers are kept as
// json.Number so integer fields survive without float rounding.
func DecodeBody(body []byte) (any, error) {
	if len(body) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, &ParseError{Reason: "response body is not valid JSON", Err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Reason: "response body has trailing data after JSON value", Err: err}
	}

	return value, nil
}

func asObject(v any, field string) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, parseErrorf(field, "expected object, got %s", jsonKind(v))
	}
	return obj, nil
}

func asArray(v any, field string) ([]any, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, parseErrorf(field, "expected list, got %s", jsonKind(v))
	}
	return arr, nil
}

// firstObject requires a non-empty array and returns its first element as an object.
func firstObject(v any, field string) (map[string]any, error) {
	arr, err := asArray(v, field)
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return nil, parseErrorf(field, "expected list to have items")
	}
	return asObject(arr[0], field+"[0]")
}

// optionalArray treats a missing or null key as an empty list.
func optionalArray(obj map[string]any, key, field string) ([]any, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, nil
	}
	return asArray(v, field)
}

func stringField(obj map[string]any, key, field string) (string, error) {
	s, ok := obj[key].(string)
	if !ok {
		return "", parseErrorf(field, "expected string, got %s", jsonKind(obj[key]))
	}
	return s, nil
}

func optionalStringField(obj map[string]any, key, field string) (*string, error) {
	v := obj[key]
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, parseErrorf(field, "expected string or null, got %s", jsonKind(v))
	}
	return &s, nil
}

func intField(obj map[string]any, key, field string) (int64, error) {
	return intValue(obj[key], field)
}

// intValue accepts JSON integers and strings holding a base-10 integer.
// Booleans, fractional numbers and other types are rejected.
func intValue(v any, field string) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil || f != float64(int64(f)) {
			return 0, &ParseError{Field: field, Reason: fmt.Sprintf("invalid int %q", n.String()), Err: err}
		}
		return int64(f), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, &ParseError{Field: field, Reason: fmt.Sprintf("invalid int %q", n), Err: err}
		}
		return i, nil
	default:
		return 0, parseErrorf(field, "expected int, got %s", jsonKind(v))
	}
}

// timeField parses a timestamp keeping its original offset.
func timeField(obj map[string]any, key, field string) (time.Time, error) {
	s, ok := obj[key].(string)
	if !ok {
		return time.Time{}, parseErrorf(field, "expected datetime string, got %s", jsonKind(obj[key]))
	}
	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}, &ParseError{Field: field, Reason: fmt.Sprintf("invalid datetime %q", s), Err: err}
	}
	return t, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}
