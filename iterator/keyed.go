package iterator

import (
	"encoding/json"
	"iter"
	"math"
	"strconv"
)

// DefaultKeyField is the field keyed cursors index by.
const DefaultKeyField = "id"

// KeyedListCall is a lazy cursor over one page, indexed by the value of a
// key field. Iteration keys are the key values.
type KeyedListCall struct {
	lazy
	keyField string
	byKey    map[any]int
}

// NewKeyed creates a KeyedListCall indexing by keyField, or by
// DefaultKeyField when keyField is empty.
func NewKeyed(fetch Fetcher, keyField string) *KeyedListCall {
	if keyField == "" {
		keyField = DefaultKeyField
	}
	c := &KeyedListCall{lazy: newLazy(fetch), keyField: keyField}
	c.materialize = c.index
	return c
}

// KeyField returns the field the cursor indexes by.
func (c *KeyedListCall) KeyField() string {
	return c.keyField
}

// index builds the key index of a fetched page, preserving item order.
// Every item must carry a scalar, non-null key value unique within the page.
func (c *KeyedListCall) index(items []Record) error {
	keys := make([]any, 0, len(items))
	byKey := make(map[any]int, len(items))

	for i, item := range items {
		raw, ok := item[c.keyField]
		if !ok || raw == nil {
			return &IntegrityError{Code: ErrCodeMissingKey, Index: i, KeyField: c.keyField}
		}
		key, ok := normalizeKey(raw)
		if !ok {
			return &IntegrityError{Code: ErrCodeInvalidKey, Index: i, KeyField: c.keyField, Value: raw}
		}
		if _, dup := byKey[key]; dup {
			return &IntegrityError{Code: ErrCodeDuplicateKey, Index: i, KeyField: c.keyField, Value: raw}
		}
		byKey[key] = i
		keys = append(keys, key)
	}

	c.keys = keys
	c.byKey = byKey
	return nil
}

// IDs returns the key values of the current page only, in page order.
func (c *KeyedListCall) IDs() ([]any, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return append([]any(nil), c.keys...), nil
}

// Exists reports whether the current page holds an item with key.
func (c *KeyedListCall) Exists(key any) (bool, error) {
	_, ok, err := c.Get(key)
	return ok, err
}

// Get returns the current page's item with key; ok is false when absent.
func (c *KeyedListCall) Get(key any) (Record, bool, error) {
	if err := c.ensure(); err != nil {
		return nil, false, err
	}
	k, ok := normalizeKey(key)
	if !ok {
		return nil, false, nil
	}
	i, ok := c.byKey[k]
	if !ok {
		return nil, false, nil
	}
	return c.items[i], true, nil
}

// All iterates the current page as (key value, item) pairs, starting with a
// rewind. Check Err after the loop.
func (c *KeyedListCall) All() iter.Seq2[any, Record] {
	return each(c, &c.err)
}

// normalizeKey maps a key value onto a comparable canonical form so that
// 10, 10.0 and json.Number("10") address the same item. Strings stay
// strings. Objects and lists are not valid keys.
func normalizeKey(v any) (any, bool) {
	switch k := v.(type) {
	case string, bool:
		return k, true
	case int:
		return int64(k), true
	case int8:
		return int64(k), true
	case int16:
		return int64(k), true
	case int32:
		return int64(k), true
	case int64:
		return k, true
	case uint:
		return normalizeUint(uint64(k))
	case uint8:
		return int64(k), true
	case uint16:
		return int64(k), true
	case uint32:
		return int64(k), true
	case uint64:
		return normalizeUint(k)
	case float32:
		return normalizeFloat(float64(k))
	case float64:
		return normalizeFloat(k)
	case json.Number:
		if i, err := k.Int64(); err == nil {
			return i, true
		}
		if u, err := strconv.ParseUint(k.String(), 10, 64); err == nil {
			return u, true
		}
		f, err := k.Float64()
		if err != nil {
			return nil, false
		}
		return normalizeFloat(f)
	default:
		return nil, false
	}
}

// normalizeUint keeps values above math.MaxInt64 as uint64 so they never
// collide with negative int64 keys.
func normalizeUint(u uint64) (any, bool) {
	if u > math.MaxInt64 {
		return u, true
	}
	return int64(u), true
}

func normalizeFloat(f float64) (any, bool) {
	if math.IsNaN(f) {
		return nil, false
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f), true
	}
	return f, true
}
