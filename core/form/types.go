package form

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// FieldType is the declared scalar type of a form field.
type FieldType string

const (
	TypeBoolean FieldType = "boolean"
	TypeDate    FieldType = "date"
	TypeDouble  FieldType = "double"
	TypeLong    FieldType = "long"
	TypeString  FieldType = "string"

	// List variants hold JSON arrays whose every element has the base type.
	TypeBooleanList FieldType = "boolean-list"
	TypeDateList    FieldType = "date-list"
	TypeDoubleList  FieldType = "double-list"
	TypeLongList    FieldType = "long-list"
	TypeStringList  FieldType = "string-list"
)

// IsList reports whether the type is a list variant.
func (t FieldType) IsList() bool {
	switch t {
	case TypeBooleanList, TypeDateList, TypeDoubleList, TypeLongList, TypeStringList:
		return true
	default:
		return false
	}
}

// Elem returns the element type of a list type, or t itself.
func (t FieldType) Elem() FieldType {
	switch t {
	case TypeBooleanList:
		return TypeBoolean
	case TypeDateList:
		return TypeDate
	case TypeDoubleList:
		return TypeDouble
	case TypeLongList:
		return TypeLong
	case TypeStringList:
		return TypeString
	default:
		return t
	}
}

// dateLayouts are the ISO-8601 shapes accepted for date fields, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses an ISO-8601 date or date-time string.
func ParseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func toBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func toString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func toDate(v any) (time.Time, bool, error) {
	switch val := v.(type) {
	case time.Time:
		return val, true, nil
	case string:
		t, err := ParseDate(val)
		if err != nil {
			return time.Time{}, false, err
		}
		return t, true, nil
	default:
		return time.Time{}, false, nil
	}
}

func toDouble(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toLong(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case float64:
		return floatToLong(val)
	case json.Number:
		if i, err := strconv.ParseInt(string(val), 10, 64); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return 0, false
		}
		return floatToLong(f)
	default:
		return 0, false
	}
}

// floatToLong accepts integral values inside the int64 range.
func floatToLong(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}

// coerce converts a raw body value into the Go value for t.
// ok is false when the runtime type does not match; err carries a parse
// failure for well-formed strings that are not valid dates.
func coerce(t FieldType, v any) (out any, ok bool, err error) {
	switch t {
	case TypeBoolean:
		out, ok = toBool(v)
	case TypeString:
		out, ok = toString(v)
	case TypeDouble:
		out, ok = toDouble(v)
	case TypeLong:
		out, ok = toLong(v)
	case TypeDate:
		out, ok, err = toDate(v)
	default:
		if t.IsList() {
			return coerceList(t, v)
		}
	}
	return out, ok, err
}

func coerceList(t FieldType, v any) (any, bool, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, false, nil
	}

	elem := t.Elem()
	switch elem {
	case TypeBoolean:
		return collect(items, toBool)
	case TypeString:
		return collect(items, toString)
	case TypeDouble:
		return collect(items, toDouble)
	case TypeLong:
		return collect(items, toLong)
	case TypeDate:
		out := make([]time.Time, 0, len(items))
		for _, item := range items {
			d, ok, err := toDate(item)
			if !ok {
				return nil, false, err
			}
			out = append(out, d)
		}
		return out, true, nil
	}
	return nil, false, nil
}

func collect[V any](items []any, conv func(any) (V, bool)) (any, bool, error) {
	out := make([]V, 0, len(items))
	for _, item := range items {
		v, ok := conv(item)
		if !ok {
			return nil, false, nil
		}
		out = append(out, v)
	}
	return out, true, nil
}
