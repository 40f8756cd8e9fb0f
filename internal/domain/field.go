package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrTypeMismatch is returned when a JSON value cannot be coerced into the
// field's type.
var ErrTypeMismatch = errors.New("type mismatch")

// Field is an optional request field that tells "absent" apart from "null".
type Field[T any] struct {
	Set   bool
	Value *T
}

// Some returns a set field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null returns a set field with no value.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// Or returns the value, or def when the field is unset or null.
func (f Field[T]) Or(def T) T {
	if f.Value == nil {
		return def
	}
	return *f.Value
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := coerce(b, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// coerce decodes a raw JSON value into dst, accepting numeric strings for
// numbers and scalar values for text.
func coerce(b []byte, dst any) error {
	raw, err := decodeScalar(b)
	if err != nil {
		return err
	}
	switch p := dst.(type) {
	case *string:
		switch v := raw.(type) {
		case string:
			*p = v
		case json.Number:
			*p = v.String()
		case bool:
			*p = strconv.FormatBool(v)
		default:
			return mismatch(b, "a string")
		}
	case *int:
		f, ok := numeric(raw)
		if !ok || f != math.Trunc(f) {
			return mismatch(b, "an integer")
		}
		if f > math.MaxInt32 || f < math.MinInt32 {
			return fmt.Errorf("%w: integer out of range, got %s", ErrTypeMismatch, bytes.TrimSpace(b))
		}
		*p = int(f)
	case *float64:
		f, ok := numeric(raw)
		if !ok {
			return mismatch(b, "a number")
		}
		*p = f
	default:
		return json.Unmarshal(b, dst)
	}
	return nil
}

func decodeScalar(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func numeric(raw any) (float64, bool) {
	var s string
	switch v := raw.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func mismatch(b []byte, want string) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrTypeMismatch, want, bytes.TrimSpace(b))
}
