// Package pathmap converts between nested documents and flat maps keyed by
// dotted paths. Arrays are treated as leaves - they are never expanded into
// indexed paths, so a form field can bind an array value as a unit.
package pathmap

import (
	"fmt"
	"sort"
	"strings"
)

// PathError reports a malformed or ambiguous dotted path. It is fatal to
// the single operation that raised it, never to the session.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// Validate checks that a dotted path is well-formed: non-empty, no leading
// or trailing dot, no empty segment.
func Validate(path string) error {
	if path == "" {
		return &PathError{Path: path, Reason: "path is empty"}
	}
	if strings.HasPrefix(path, ".") {
		return &PathError{Path: path, Reason: "path starts with a dot"}
	}
	if strings.HasSuffix(path, ".") {
		return &PathError{Path: path, Reason: "path ends with a dot"}
	}
	if strings.Contains(path, "..") {
		return &PathError{Path: path, Reason: "path contains an empty segment"}
	}
	return nil
}

// Flatten produces a dotted-key map for every leaf of a nested document.
// Maps are recursed; everything else, including arrays, is a leaf. A nested
// key that itself contains a dot would produce an ambiguous flat key and is
// rejected.
func Flatten(nested map[string]any) (map[string]any, error) {
	flat := make(map[string]any, len(nested))
	if err := flattenInto(flat, "", nested); err != nil {
		return nil, err
	}
	return flat, nil
}

func flattenInto(flat map[string]any, prefix string, nested map[string]any) error {
	for key, value := range nested {
		if key == "" {
			return &PathError{Path: prefix, Reason: "document has an empty key"}
		}
		if strings.Contains(key, ".") {
			return &PathError{Path: joinPath(prefix, key), Reason: "document key contains a dot"}
		}
		path := joinPath(prefix, key)
		if child, ok := value.(map[string]any); ok {
			if err := flattenInto(flat, path, child); err != nil {
				return err
			}
			continue
		}
		flat[path] = value
	}
	return nil
}

// Unflatten is the inverse of Flatten: it rebuilds a nested document from a
// flat dotted-key map, creating intermediate objects on demand.
//
// Collision policy: a flat map in which one key is a strict dotted prefix
// of another (both "user" and "user.name" present) is rejected with a
// PathError naming the colliding prefix. Keys are processed in sorted order
// so the reported collision is deterministic.
func Unflatten(flat map[string]any) (map[string]any, error) {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	nested := make(map[string]any, len(flat))
	for _, path := range keys {
		if err := Validate(path); err != nil {
			return nil, err
		}
		if err := setAtPath(nested, path, flat[path]); err != nil {
			return nil, err
		}
	}
	return nested, nil
}

// setAtPath writes value into nested at the dotted path, creating
// intermediate maps. A leaf already occupying an intermediate segment, or a
// map already occupying the final segment, is a collision.
func setAtPath(nested map[string]any, path string, value any) error {
	segments := strings.Split(path, ".")
	current := nested
	for _, segment := range segments[:len(segments)-1] {
		child, exists := current[segment]
		if !exists {
			next := make(map[string]any)
			current[segment] = next
			current = next
			continue
		}
		childMap, ok := child.(map[string]any)
		if !ok {
			return &PathError{Path: path, Reason: fmt.Sprintf("segment %q already holds a leaf value", segment)}
		}
		current = childMap
	}

	last := segments[len(segments)-1]
	if existing, exists := current[last]; exists {
		if _, ok := existing.(map[string]any); ok {
			return &PathError{Path: path, Reason: fmt.Sprintf("segment %q already holds a nested object", last)}
		}
	}
	current[last] = value
	return nil
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
