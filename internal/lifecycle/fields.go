package lifecycle

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Fields is a validated payload keyed by column name.
type Fields map[string]interface{}

// Clone returns a shallow copy. Slices held as values are copied too so hooks
// can reshape them freely.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if s, ok := v.([]string); ok {
			v = append(make([]string, 0, len(s)), s...)
		}
		out[k] = v
	}
	return out
}

// Has reports whether key is present, even with a nil value.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Take removes key and returns its value.
func (f Fields) Take(key string) (interface{}, bool) {
	v, ok := f[key]
	if ok {
		delete(f, key)
	}
	return v, ok
}

// String returns the value at key when it is a string.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case *string:
		if s == nil {
			return "", false
		}
		return *s, true
	}
	return "", false
}

// TakeString removes key and returns it when it holds a string.
func (f Fields) TakeString(key string) (string, bool) {
	s, ok := f.String(key)
	delete(f, key)
	return s, ok
}

// TakeStrings removes key and returns it when it holds a string list.
func (f Fields) TakeStrings(key string) ([]string, bool) {
	v, ok := f.Take(key)
	if !ok {
		return nil, false
	}
	switch s := v.(type) {
	case []string:
		return s, true
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}

// Decimal returns the value at key as a decimal. Strings, floats, integers
// and decimals are accepted.
func (f Fields) Decimal(key string) (decimal.Decimal, error) {
	v, ok := f[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("%s is required", key)
	}
	switch d := v.(type) {
	case decimal.Decimal:
		return d, nil
	case string:
		return decimal.NewFromString(d)
	case float64:
		return decimal.NewFromFloat(d), nil
	case int:
		return decimal.NewFromInt(int64(d)), nil
	case int64:
		return decimal.NewFromInt(d), nil
	}
	return decimal.Zero, fmt.Errorf("%s is not a number", key)
}

// Time returns the value at key when it is a time.
func (f Fields) Time(key string) (time.Time, bool) {
	t, ok := f[key].(time.Time)
	return t, ok
}
