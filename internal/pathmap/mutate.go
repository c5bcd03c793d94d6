package pathmap

import "strings"

// Get reads the value at a dotted path inside a nested document.
func Get(nested map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")
	current := nested
	for _, segment := range segments[:len(segments)-1] {
		child, ok := current[segment].(map[string]any)
		if !ok {
			return nil, false
		}
		current = child
	}
	value, ok := current[segments[len(segments)-1]]
	return value, ok
}

// Set writes value at a dotted path inside a nested document, overwriting
// whatever is there. Intermediate leaves are replaced by objects - this is
// the merge semantic document transforms use, distinct from Unflatten's
// strict collision handling.
func Set(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested
	for _, segment := range segments[:len(segments)-1] {
		child, ok := current[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			current[segment] = child
		}
		current = child
	}
	current[segments[len(segments)-1]] = value
}

// Delete removes the value at a dotted path, pruning intermediate objects
// left empty by the removal. Reports whether anything was removed.
func Delete(nested map[string]any, path string) bool {
	segments := strings.Split(path, ".")
	return deleteSegments(nested, segments)
}

func deleteSegments(current map[string]any, segments []string) bool {
	if len(segments) == 1 {
		if _, ok := current[segments[0]]; !ok {
			return false
		}
		delete(current, segments[0])
		return true
	}
	child, ok := current[segments[0]].(map[string]any)
	if !ok {
		return false
	}
	removed := deleteSegments(child, segments[1:])
	if removed && len(child) == 0 {
		delete(current, segments[0])
	}
	return removed
}
