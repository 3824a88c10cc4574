// Package casing converts JSON object keys between the client's camelCase
// field names and the backend's snake_case wire names.
//
// The rules are character-class based:
//
//   - ToSnakeKey inserts "_" wherever a lowercase letter or digit is followed by
//     an uppercase letter, turns "-" into "_", then lowercases the result.
//   - ToCamelKey replaces every "_x" (x a lowercase letter or digit) with "X".
//
// Both are idempotent on their own output, so a body that is already in the
// target convention passes through unchanged.
package casing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// ToSnakeKey converts a single camelCase or kebab-case key to snake_case.
func ToSnakeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	runes := []rune(key)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteByte('_')
			}
		}
		if r == '-' {
			r = '_'
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ToCamelKey converts a single snake_case key to camelCase.
func ToCamelKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	runes := []rune(key)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '_' && i+1 < len(runes) && isLowerAlnum(runes[i+1]) {
			b.WriteRune(unicode.ToUpper(runes[i+1]))
			i++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isLowerAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Decamelize returns a copy of v with every object key converted by ToSnakeKey.
// Arrays are walked element by element; scalars are returned as-is.
func Decamelize(v any) any {
	return transformKeys(v, ToSnakeKey)
}

// Camelize returns a copy of v with every object key converted by ToCamelKey.
func Camelize(v any) any {
	return transformKeys(v, ToCamelKey)
}

func transformKeys(v any, fn func(string) string) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[fn(k)] = transformKeys(inner, fn)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = transformKeys(inner, fn)
		}
		return out
	default:
		return v
	}
}

// Marshal encodes v as JSON with all object keys in wire (snake_case) form.
func Marshal(v any) ([]byte, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Decamelize(generic))
}

// Unmarshal decodes a wire (snake_case) JSON body into v, whose JSON tags use
// the client's camelCase names.
func Unmarshal(data []byte, v any) error {
	generic, err := decodeGeneric(data)
	if err != nil {
		return err
	}
	camel, err := json.Marshal(Camelize(generic))
	if err != nil {
		return fmt.Errorf("re-encoding camelized body: %w", err)
	}
	return json.Unmarshal(camel, v)
}

// CamelizeJSON rewrites a raw wire body into client naming without binding it
// to a type. The cache stores bodies in this form.
func CamelizeJSON(data []byte) ([]byte, error) {
	generic, err := decodeGeneric(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Camelize(generic))
}

func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeGeneric(raw)
}

// decodeGeneric keeps numbers as json.Number so large integers survive the
// round trip through interface values.
func decodeGeneric(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return generic, nil
}
