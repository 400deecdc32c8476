package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Field names every record carries. They are assigned by the Gateway and
// never accepted from a draft.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Record is one persisted instance of a resource: a mapping from field name
// to value. Values are normalised to string, int64, float64, bool, []string
// or nil so records compare equal across a gateway round trip.
type Record map[string]any

// ID returns the record identifier, or "" for an unsaved draft.
func (r Record) ID() string {
	return r.String(FieldID)
}

// String returns the named field as a string. Numbers and booleans are
// formatted; lists are joined with ", ".
func (r Record) String(name string) string {
	switch v := r[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the named field as an int64, or 0 when absent or not numeric.
func (r Record) Int(name string) int64 {
	switch v := r[name].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n
	}
	return 0
}

// Bool returns the named field as a bool.
func (r Record) Bool(name string) bool {
	switch v := r[name].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Strings returns the named list field. The returned slice is a copy.
func (r Record) Strings(name string) []string {
	v, ok := r[name].([]string)
	if !ok {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}

// Clone returns a copy of r that shares no list storage with it.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		if list, ok := v.([]string); ok {
			cp := make([]string, len(list))
			copy(cp, list)
			v = cp
		}
		out[k] = v
	}
	return out
}

// Without returns a copy of r with the given fields removed.
func (r Record) Without(names ...string) Record {
	out := r.Clone()
	for _, n := range names {
		delete(out, n)
	}
	return out
}

// Equal reports whether two records hold the same fields and values.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	for k, v := range r {
		ov, ok := other[k]
		if !ok || !valueEqual(v, ov) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	la, aok := a.([]string)
	lb, bok := b.([]string)
	if aok || bok {
		if !aok || !bok || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if la[i] != lb[i] {
				return false
			}
		}
		return true
	}
	return a == b
}

// EncodeRecord serialises a record as a JSON document.
func EncodeRecord(r Record) ([]byte, error) {
	return json.Marshal(map[string]any(r))
}

// DecodeRecord parses a JSON document produced by EncodeRecord and
// normalises its values: integral numbers become int64, string arrays
// become []string.
func DecodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	raw := map[string]any{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	rec := make(Record, len(raw))
	for k, v := range raw {
		rec[k] = normalizeValue(v)
	}
	return rec, nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return t
			}
			out = append(out, s)
		}
		return out
	}
	return v
}

// Matches reports whether rec satisfies every equality clause in where.
func Matches(rec Record, where map[string]any) bool {
	for field, want := range where {
		if !valueEqual(normalizeValue(rec[field]), normalizeValue(want)) {
			return false
		}
	}
	return true
}

// SortRecords orders recs in place by the given field. A missing value
// compares lower than any present one; ties keep their relative order.
func SortRecords(recs []Record, order Order) {
	if order.Field == "" {
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		c := compareValues(recs[i][order.Field], recs[j][order.Field])
		if order.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	af, aNum := number(a)
	bf, bNum := number(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}
