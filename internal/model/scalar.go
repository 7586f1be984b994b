package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ScalarKind is the closed set of value kinds a spreadsheet cell can hold.
type ScalarKind string

const (
	KindEmpty   ScalarKind = "empty"
	KindString  ScalarKind = "string"
	KindNumber  ScalarKind = "number"
	KindBoolean ScalarKind = "boolean"
)

// Scalar is a single cell value. Only the field matching Kind is meaningful.
type Scalar struct {
	Kind ScalarKind
	Str  string
	Num  float64
	Bool bool
}

func String(s string) Scalar  { return Scalar{Kind: KindString, Str: s} }
func Number(n float64) Scalar { return Scalar{Kind: KindNumber, Num: n} }
func Bool(b bool) Scalar      { return Scalar{Kind: KindBoolean, Bool: b} }
func Empty() Scalar           { return Scalar{Kind: KindEmpty} }

// IsNumber reports whether the value is numeric.
func (s Scalar) IsNumber() bool {
	return s.Kind == KindNumber
}

// IsEmpty treats the zero Scalar as empty too.
func (s Scalar) IsEmpty() bool {
	return s.Kind == KindEmpty || s.Kind == ""
}

// Value returns the value as a plain Go value (string, float64, bool or nil).
func (s Scalar) Value() any {
	switch s.Kind {
	case KindString:
		return s.Str
	case KindNumber:
		return s.Num
	case KindBoolean:
		return s.Bool
	default:
		return nil
	}
}

// MarshalJSON encodes the scalar as its native JSON value.
func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value())
}

// UnmarshalJSON accepts a JSON string, number, boolean or null.
func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = Empty()
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = String(t)
	case float64:
		*s = Number(t)
	case bool:
		*s = Bool(t)
	default:
		return fmt.Errorf("unsupported scalar value %s", string(b))
	}
	return nil
}

// Row maps a column header to the cell value in that column.
type Row map[string]Scalar
