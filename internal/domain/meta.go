package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// MetaKind tags the scalar type held by a MetaValue.
type MetaKind int

const (
	KindString MetaKind = iota
	KindNumber
	KindBool
)

// MetaValue is a tagged scalar union. Vector index metadata is
// restricted to strings, numbers and booleans; anything else must go
// through Canonicalize first.
type MetaValue struct {
	kind MetaKind
	str  string
	num  float64
	b    bool
}

// Metadata is a scalar-valued map attached to documents, chunks and
// indexed records.
type Metadata map[string]MetaValue

func String(s string) MetaValue  { return MetaValue{kind: KindString, str: s} }
func Number(n float64) MetaValue { return MetaValue{kind: KindNumber, num: n} }
func Int(n int) MetaValue        { return MetaValue{kind: KindNumber, num: float64(n)} }
func Bool(b bool) MetaValue      { return MetaValue{kind: KindBool, b: b} }

func (v MetaValue) Kind() MetaKind { return v.kind }

// Number returns the numeric value; zero for non-number kinds.
func (v MetaValue) Number() float64 { return v.num }

// Bool returns the boolean value; false for non-bool kinds.
func (v MetaValue) Bool() bool { return v.b }

// String returns the canonical string form of the value.
func (v MetaValue) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.str
	}
}

// MarshalJSON encodes the value as its raw scalar.
func (v MetaValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.str)
	}
}

// UnmarshalJSON decodes a raw scalar, recovering its kind from the JSON
// type. Non-scalar JSON values are rejected.
func (v *MetaValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = String(x)
	case float64:
		*v = Number(x)
	case bool:
		*v = Bool(x)
	default:
		return fmt.Errorf("metadata value %s is not a scalar", data)
	}
	return nil
}

// Merge returns a copy of m with the entries of other layered on top.
func (m Metadata) Merge(other Metadata) Metadata {
	out := make(Metadata, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Canonicalize converts an arbitrarily-valued map into scalar Metadata.
// Strings, numeric types and booleans pass through; every other value is
// converted to its string representation. The returned slice names the
// keys that were coerced, sorted, so callers can surface the lossy
// transform instead of silently accepting it.
func Canonicalize(raw map[string]any) (Metadata, []string) {
	meta := make(Metadata, len(raw))
	var coerced []string
	for k, val := range raw {
		switch x := val.(type) {
		case string:
			meta[k] = String(x)
		case bool:
			meta[k] = Bool(x)
		case float64:
			meta[k] = Number(x)
		case float32:
			meta[k] = Number(float64(x))
		case int:
			meta[k] = Int(x)
		case int32:
			meta[k] = Number(float64(x))
		case int64:
			meta[k] = Number(float64(x))
		case uint:
			meta[k] = Number(float64(x))
		default:
			meta[k] = String(fmt.Sprintf("%v", x))
			coerced = append(coerced, k)
		}
	}
	sort.Strings(coerced)
	return meta, coerced
}
