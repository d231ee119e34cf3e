// Package merge combines per-page extraction output into one raw object.
//
// Rules, applied key by key:
//   - null and empty values are skipped and never overwrite anything
//   - array + array concatenates in page order
//   - object + object merges recursively
//   - for scalars the first non-empty value wins
//   - on a kind mismatch the existing non-empty value is kept
//
// Results never alias their inputs.
package merge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the closed set of JSON value kinds the merge rules distinguish.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindOf classifies a decoded JSON value.
func KindOf(v interface{}) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case map[string]interface{}:
		return KindObject
	case []interface{}:
		return KindArray
	default:
		return KindScalar
	}
}

// IsEmpty reports whether v carries no information: null, a blank string, or
// an array/object whose members are all empty.
func IsEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []interface{}:
		for _, e := range t {
			if !IsEmpty(e) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		for _, e := range t {
			if !IsEmpty(e) {
				return false
			}
		}
		return true
	}
	return false
}

// Decode parses a JSON object keeping numbers as json.Number so no precision
// is lost before the transformers see them.
func Decode(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding raw extraction: %w", err)
	}
	return out, nil
}

// Pages folds the per-page objects left to right in page order.
func Pages(pages []map[string]interface{}) map[string]interface{} {
	acc := map[string]interface{}{}
	for _, p := range pages {
		acc = Objects(acc, p)
	}
	return acc
}

// Objects merges src into a copy of dst.
func Objects(dst, src map[string]interface{}) map[string]interface{} {
	out := prune(dst).(map[string]interface{})
	for k, incoming := range src {
		if IsEmpty(incoming) {
			continue
		}
		existing, ok := out[k]
		if !ok {
			out[k] = prune(incoming)
			continue
		}
		out[k] = Values(existing, incoming)
	}
	return out
}

// Values merges one incoming value over an existing one.
func Values(existing, incoming interface{}) interface{} {
	if IsEmpty(incoming) {
		return prune(existing)
	}
	if IsEmpty(existing) {
		return prune(incoming)
	}

	ek, ik := KindOf(existing), KindOf(incoming)
	if ek != ik {
		return prune(existing)
	}

	switch ek {
	case KindArray:
		left := prune(existing).([]interface{})
		right := prune(incoming).([]interface{})
		return append(left, right...)
	case KindObject:
		return Objects(existing.(map[string]interface{}), incoming.(map[string]interface{}))
	default:
		return existing
	}
}

// prune deep-copies v, dropping empty members. A nil map or slice input
// yields an empty (non-nil) container of the same kind.
func prune(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			if IsEmpty(e) {
				continue
			}
			out[k] = prune(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, e := range t {
			if IsEmpty(e) {
				continue
			}
			out = append(out, prune(e))
		}
		return out
	default:
		return v
	}
}

// Copy returns a deep copy of v without empty members.
func Copy(v interface{}) interface{} {
	return prune(v)
}
