// Package references expands embedded document references.
//
// A reference marker is any object with a string "_ref" field. Resolve
// replaces markers with the documents they point to, recursing into the
// result, up to a caller supplied depth. The depth bound is the only
// protection against reference cycles.
package references

import (
	"github.com/custodia-labs/lakesync/internal/core/domain"
)

// Lookup returns the materialized document a reference points to.
// The argument is the raw "_ref" value.
type Lookup func(ref string) (domain.Document, bool)

// RefOf returns the target id if value is a reference marker.
func RefOf(value any) (string, bool) {
	m, ok := asMap(value)
	if !ok {
		return "", false
	}
	ref, ok := m[domain.FieldRef].(string)
	return ref, ok
}

// Resolve returns a structural copy of value with reference markers
// replaced by their targets. Every nesting level, object or array, costs
// one depth step; a marker at a depth beyond maxDepth, or whose target
// lookup cannot find, is returned unchanged.
func Resolve(value any, depth, maxDepth int, lookup Lookup) any {
	switch v := value.(type) {
	case []any:
		if depth > maxDepth {
			return v
		}
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Resolve(item, depth+1, maxDepth, lookup)
		}
		return out

	case domain.Document:
		if v == nil {
			return v
		}
		out := resolveObject(v, depth, maxDepth, lookup)
		if m, ok := out.(map[string]any); ok {
			return domain.Document(m)
		}
		return out

	case map[string]any:
		if v == nil {
			return v
		}
		return resolveObject(v, depth, maxDepth, lookup)

	default:
		return value
	}
}

func resolveObject(obj map[string]any, depth, maxDepth int, lookup Lookup) any {
	if ref, ok := obj[domain.FieldRef].(string); ok {
		if depth > maxDepth {
			return obj
		}
		target, found := lookup(ref)
		if !found || target == nil {
			return obj
		}
		return Resolve(target, depth+1, maxDepth, lookup)
	}

	out := make(map[string]any, len(obj))
	for key, field := range obj {
		out[key] = Resolve(field, depth+1, maxDepth, lookup)
	}
	return out
}

func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, v != nil
	case domain.Document:
		return v, v != nil
	default:
		return nil, false
	}
}
