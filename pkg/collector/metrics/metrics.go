// Package metrics extracts ChampSim performance counters from unstructured
// log text. Extraction is driven by declarative rule tables: each rule pairs
// a regular expression with the fields its capture groups populate, so the
// metric schema and the matching logic stay independently testable.
package metrics

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Kind selects the numeric parser for a captured field.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
)

// Schema names accepted by ByName.
const (
	SchemaFull   = "full"
	SchemaLegacy = "legacy"
)

type capture struct {
	field string
	kind  Kind
}

type rule struct {
	re       *regexp.Regexp
	captures []capture
}

// Schema is an ordered table of extraction rules together with the canonical
// field-name list they populate. Schemas are immutable; the package-level
// constructors return shared instances.
type Schema struct {
	name   string
	fields []string
	rules  []rule
}

func col(name string, kind Kind) capture { return capture{field: name, kind: kind} }

func (s *Schema) add(pattern string, caps ...capture) {
	s.rules = append(s.rules, rule{re: regexp.MustCompile(pattern), captures: caps})
	for _, c := range caps {
		s.fields = append(s.fields, c.field)
	}
}

// Name returns the schema's registered name.
func (s *Schema) Name() string { return s.name }

// FieldNames returns the canonical, ordered column list for this schema,
// independent of any particular record. The trace-file column comes first,
// matching the report layout.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.fields)+1)
	names = append(names, TraceFileField)
	names = append(names, s.fields...)
	return names
}

// Extract applies the rule table to raw log text and returns a record. It is
// total: a rule that does not match leaves its fields absent, malformed or
// non-finite numeric text inside a structurally matched rule leaves only the
// affected field absent, and well-formed-but-empty input yields a record with
// every field absent.
func (s *Schema) Extract(text string) Record {
	rec := Record{Values: make(map[string]Number, len(s.fields))}
	for _, ru := range s.rules {
		m := ru.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for i, c := range ru.captures {
			if n, ok := parseNumber(m[i+1], c.kind); ok {
				rec.Values[c.field] = n
			}
		}
	}
	return rec
}

func parseNumber(raw string, kind Kind) (Number, bool) {
	if kind == KindInt {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Number{}, false
		}
		return FromInt(v), true
	}
	v, err := strconv.ParseFloat(raw, 64)
	// Prefetch accuracy lines can read "inf" or "-nan"; a non-finite value
	// cannot round-trip through the JSON cache, so it is treated as absent.
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return Number{}, false
	}
	return FromFloat(v), true
}

var (
	fullSchema   = newFullSchema()
	legacySchema = newLegacySchema()
)

// Full returns the default schema: overall IPC plus, for each of L1D, L2C and
// LLC, the total access/hit/miss/MPKI counters, the prefetch counters with
// accuracy, and the average miss latency.
func Full() *Schema { return fullSchema }

// Legacy returns the older collection schema: LLC total and load breakdowns,
// the L2C data-load MPKI, and the extended L1D prefetch counters.
func Legacy() *Schema { return legacySchema }

// ByName resolves a schema by its registered name.
func ByName(name string) (*Schema, error) {
	switch name {
	case SchemaFull:
		return fullSchema, nil
	case SchemaLegacy:
		return legacySchema, nil
	default:
		return nil, fmt.Errorf("unknown metric schema %q (allowed: %s, %s)", name, SchemaFull, SchemaLegacy)
	}
}

func newFullSchema() *Schema {
	s := &Schema{name: SchemaFull}
	s.add(`CPU 0 cumulative IPC:\s+([\d.]+)`, col("IPC", KindFloat))
	for _, lvl := range []string{"L1D", "L2C", "LLC"} {
		s.add(lvl+` TOTAL\s+ACCESS:\s+(\d+)\s+HIT:\s+(\d+)\s+MISS:\s+(\d+).*?MPKI:\s+([\d.]+)`,
			col(lvl+" Total Access", KindInt),
			col(lvl+" Total Hit", KindInt),
			col(lvl+" Total Miss", KindInt),
			col(lvl+" Total MPKI", KindFloat))
		s.add(lvl+` PREFETCH\s+ACCESS:\s+(\d+)`,
			col(lvl+" Prefetch Access", KindInt))
		s.add(lvl+` PREFETCH\s+REQUESTED:\s+\d+\s+ISSUED:\s+(\d+)\s+USEFUL:\s+(\d+)`,
			col(lvl+" Prefetch Issued", KindInt),
			col(lvl+" Prefetch Useful", KindInt))
		s.add(lvl+` USEFUL LOAD PREFETCHES:.*?ACCURACY:\s+([\d.inf-]+)`,
			col(lvl+" Prefetch Accuracy", KindFloat))
		s.add(lvl+` AVERAGE MISS LATENCY:\s+([\d.]+)`,
			col(lvl+" Average Miss Latency", KindFloat))
	}
	return s
}

func newLegacySchema() *Schema {
	s := &Schema{name: SchemaLegacy}
	s.add(`CPU 0 cumulative IPC:\s+([\d.]+)`, col("IPC", KindFloat))
	s.add(`LLC TOTAL\s+ACCESS:\s+(\d+)\s+HIT:\s+(\d+)\s+MISS:\s+(\d+).*?MPKI:\s+([\d.]+)`,
		col("LLC Total Access", KindInt),
		col("LLC Total Hits", KindInt),
		col("LLC Total Misses", KindInt),
		col("LLC Total MPKI", KindFloat))
	s.add(`LLC LOAD\s+ACCESS:\s+(\d+)\s+HIT:\s+(\d+)\s+MISS:\s+(\d+).*?MPKI:\s+([\d.]+)`,
		col("LLC Load Access", KindInt),
		col("LLC Load Hit", KindInt),
		col("LLC Load Miss", KindInt),
		col("LLC Load MPKI", KindFloat))
	s.add(`L2C DATA LOAD MPKI:\s+([\d.]+)`,
		col("L2C Data Load MPKI", KindFloat))
	s.add(`L1D PREFETCH\s+REQUESTED:\s+(\d+)\s+ISSUED:\s+(\d+)\s+USEFUL:\s+(\d+)\s+USELESS:\s+(\d+)`,
		col("L1D Prefetch Requested", KindInt),
		col("L1D Prefetch Issued", KindInt),
		col("L1D Prefetch Useful", KindInt),
		col("L1D Prefetch Useless", KindInt))
	s.add(`L1D USEFUL LOAD PREFETCHES:\s+(\d+)`,
		col("L1D Useful Load Prefetches", KindInt))
	s.add(`L1D TIMELY PREFETCHES:\s+(\d+)\s+LATE PREFETCHES:\s+(\d+)\s+DROPPED PREFETCHES:\s+(\d+)`,
		col("L1D Timely Prefetches", KindInt),
		col("L1D Late Prefetches", KindInt),
		col("L1D Dropped Prefetches", KindInt))
	s.add(`LLC AVERAGE MISS LATENCY:\s+([\d.]+)`,
		col("LLC Average Miss Latency", KindFloat))
	return s
}
