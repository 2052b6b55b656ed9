package query

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/tobsdb/tabq/internal/types"
	"github.com/tobsdb/tabq/pkg"
	sorted "github.com/tobshub/go-sortedmap"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc, "":
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

type SortKey struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// SortKeys is an ordered comparison chain; earlier keys take precedence.
// Methods never modify the receiver.
type SortKeys []SortKey

func (keys SortKeys) Index(field string) int {
	for i, k := range keys {
		if k.Field == field {
			return i
		}
	}
	return -1
}

// Toggle cycles a field through asc, desc and removed.
func (keys SortKeys) Toggle(field string) SortKeys {
	return keys.toggleFrom(field, Asc)
}

// toggleFrom is Toggle with dir used when the field is not sorted yet.
func (keys SortKeys) toggleFrom(field string, dir Direction) SortKeys {
	idx := keys.Index(field)
	if idx < 0 {
		return append(keys.clone(), SortKey{field, dir})
	}
	if keys[idx].Direction == Asc {
		next := keys.clone()
		next[idx].Direction = Desc
		return next
	}
	return keys.Remove(field)
}

// Add appends a key. Adding an already sorted field is an error; use Toggle
// to change an existing key.
func (keys SortKeys) Add(key SortKey) (SortKeys, error) {
	if keys.Index(key.Field) >= 0 {
		return keys, fmt.Errorf("%w: %s", ErrDuplicateSortKey, key.Field)
	}
	next := append(keys.clone(), key)
	return next, next.Validate()
}

func (keys SortKeys) Remove(field string) SortKeys {
	return pkg.Filter(keys, func(k SortKey) bool { return k.Field != field })
}

func (keys SortKeys) Validate() error {
	seen := map[string]bool{}
	for _, k := range keys {
		if len(k.Field) == 0 {
			return ErrEmptyField
		}
		if k.Direction != Asc && k.Direction != Desc {
			return fmt.Errorf("%w: %q on field %s", ErrInvalidDirection, k.Direction, k.Field)
		}
		if seen[k.Field] {
			return fmt.Errorf("%w: %s", ErrDuplicateSortKey, k.Field)
		}
		seen[k.Field] = true
	}
	return nil
}

func (keys SortKeys) clone() SortKeys {
	next := make(SortKeys, len(keys), len(keys)+1)
	copy(next, keys)
	return next
}

// ParseSortKey reads "field" or "field:asc|desc".
func ParseSortKey(expr string) (SortKey, error) {
	field, dir, _ := strings.Cut(expr, ":")
	field = strings.TrimSpace(field)
	if len(field) == 0 {
		return SortKey{}, ErrEmptyField
	}
	d, err := ParseDirection(dir)
	if err != nil {
		return SortKey{}, err
	}
	return SortKey{field, d}, nil
}

type sortKind int

const (
	sortKindNull sortKind = iota
	sortKindNumber
	sortKindTime
	sortKindText
)

type sortValue struct {
	kind sortKind
	num  float64
	t    time.Time
	text string
}

// compare orders values of different kinds by kind: numbers, then times,
// then text.
func (a sortValue) compare(b sortValue) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case sortKindNumber:
		return compareFloat(a.num, b.num)
	case sortKindTime:
		return a.t.Compare(b.t)
	}
	return strings.Compare(a.text, b.text)
}

// sortValueOf coerces v for comparison under the declared type. An empty
// type infers the kind from the value itself.
func sortValueOf(v any, t types.FieldType) sortValue {
	if v == nil {
		return sortValue{kind: sortKindNull}
	}
	raw, _ := Text(v)
	sv := sortValue{kind: sortKindText, text: fold(raw)}

	switch t {
	case types.FieldTypeNumber:
		n, ok := toNumber(v)
		if !ok {
			return sortValue{kind: sortKindNull}
		}
		sv.kind, sv.num = sortKindNumber, n
	case types.FieldTypeDate:
		tm, ok := toTime(v)
		if !ok {
			return sortValue{kind: sortKindNull}
		}
		sv.kind, sv.t = sortKindTime, tm
	case types.FieldTypeBool:
		b, ok := toBool(v)
		if !ok {
			return sortValue{kind: sortKindNull}
		}
		sv.kind = sortKindNumber
		if b {
			sv.num = 1
		}
	case types.FieldTypeString, types.FieldTypeSelect:
	default:
		switch v := v.(type) {
		case string:
		case bool:
			sv.kind = sortKindNumber
			if v {
				sv.num = 1
			}
		case time.Time:
			sv.kind, sv.t = sortKindTime, v
		default:
			if n, ok := toNumber(v); ok {
				sv.kind, sv.num = sortKindNumber, n
			}
		}
	}
	return sv
}

type sortEntry[R any] struct {
	idx    int
	record R
	values []sortValue
}

func compareEntries[R any](a, b *sortEntry[R], keys SortKeys) int {
	for i, k := range keys {
		va, vb := a.values[i], b.values[i]
		a_null, b_null := va.kind == sortKindNull, vb.kind == sortKindNull
		switch {
		case a_null && b_null:
			continue
		case a_null:
			return 1
		case b_null:
			return -1
		}
		c := va.compare(vb)
		if c == 0 {
			continue
		}
		if k.Direction == Desc {
			c = -c
		}
		return c
	}
	return cmp.Compare(a.idx, b.idx)
}

// Sort orders records by keys without modifying the input. Nil and missing
// values sort last under either direction, and records that tie on every
// key keep their input order.
func Sort[R any](records []R, keys SortKeys, get Accessor[R], typeOf func(field string) (types.FieldType, bool)) []R {
	if len(keys) == 0 || len(records) < 2 {
		return records
	}

	m := sorted.New[int, *sortEntry[R]](len(records), func(a, b *sortEntry[R]) bool {
		return compareEntries(a, b, keys) < 0
	})

	for i, r := range records {
		e := &sortEntry[R]{idx: i, record: r, values: make([]sortValue, len(keys))}
		for k_idx, k := range keys {
			v, _ := get(r, k.Field)
			var t types.FieldType
			if typeOf != nil {
				t, _ = typeOf(k.Field)
			}
			e.values[k_idx] = sortValueOf(v, t)
		}
		m.Insert(i, e)
	}

	iter, err := m.IterCh()
	if err != nil {
		pkg.ErrorLog("sort iteration failed:", err)
		return records
	}

	out := make([]R, 0, len(records))
	for rec := range iter.Records() {
		out = append(out, rec.Val.record)
	}
	return out
}
