package metrics

import (
	"fmt"
	"strconv"
)

// Field names that are attached to a record by the pipeline rather than
// extracted from log text.
const (
	TraceFileField  = "Trace File"
	ExperimentField = "Experiment"
)

// Number is a single extracted statistic: an integer, a floating point value,
// or absent. Absence is an expected state, not an error; a simulator
// configuration simply may not emit the corresponding line.
type Number struct {
	valid   bool
	isFloat bool
	i       int64
	f       float64
}

// FromInt returns a present integer Number.
func FromInt(v int64) Number { return Number{valid: true, i: v} }

// FromFloat returns a present floating point Number.
func FromFloat(v float64) Number { return Number{valid: true, isFloat: true, f: v} }

// Valid reports whether the value is present.
func (n Number) Valid() bool { return n.valid }

// IsFloat reports whether a present value carries a floating point kind.
func (n Number) IsFloat() bool { return n.isFloat }

// Int64 returns the integer value. It is zero for absent or float values.
func (n Number) Int64() int64 { return n.i }

// Float64 returns the value as a float64, converting integers.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// CellValue returns the dynamic value to place in a report cell, or nil when
// the value is absent.
func (n Number) CellValue() interface{} {
	switch {
	case !n.valid:
		return nil
	case n.isFloat:
		return n.f
	default:
		return n.i
	}
}

func (n Number) String() string {
	switch {
	case !n.valid:
		return "<absent>"
	case n.isFloat:
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	default:
		return strconv.FormatInt(n.i, 10)
	}
}

// MarshalJSON encodes absent values as null and present values as bare JSON
// numbers, keeping the persisted cache human-inspectable.
func (n Number) MarshalJSON() ([]byte, error) {
	switch {
	case !n.valid:
		return []byte("null"), nil
	case n.isFloat:
		return []byte(strconv.FormatFloat(n.f, 'g', -1, 64)), nil
	default:
		return []byte(strconv.FormatInt(n.i, 10)), nil
	}
}

// UnmarshalJSON decodes null as absent and preserves the integer/float split
// of the original value.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*n = Number{}
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = FromInt(i)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("metrics: cannot decode %q as a number: %w", s, err)
	}
	*n = FromFloat(f)
	return nil
}

// Record is the fixed-schema set of statistics extracted from one log file.
// Values holds only the fields whose pattern matched; everything else in the
// schema's canonical field list is absent. A record is immutable once
// produced: a changed source file yields a wholly new record.
type Record struct {
	TraceFile  string            `json:"traceFile,omitempty"`
	Experiment string            `json:"experiment,omitempty"`
	Values     map[string]Number `json:"values"`
}

// Value returns the named field and whether it is present.
func (r Record) Value(name string) (Number, bool) {
	n, ok := r.Values[name]
	if !ok || !n.Valid() {
		return Number{}, false
	}
	return n, true
}
