package formula

import (
	"sort"

	"github.com/formweave/formweave/internal/form"
)

// Order returns the computed fields of a form in evaluation order: every
// field appears after the computed fields it depends on. Ordering is
// deterministic (ties broken by path). A dependency cycle is reported as a
// *FormulaError naming the cycle path.
//
// Only edges between computed fields matter for ordering; dependencies on
// plain input fields are satisfied by the values map and impose no order.
func Order(fields []form.FieldConfig) ([]form.FieldConfig, error) {
	computed := make(map[string]form.FieldConfig)
	var paths []string
	for _, f := range fields {
		if f.Computed != nil {
			computed[f.Path] = f
			paths = append(paths, f.Path)
		}
	}
	sort.Strings(paths)

	// dependents[b] lists computed paths that consume b's output.
	dependents := make(map[string][]string)
	inDegree := make(map[string]int, len(paths))
	for _, path := range paths {
		inDegree[path] = 0
	}
	for _, path := range paths {
		for _, dep := range computed[path].Computed.Dependencies {
			if _, ok := computed[dep]; !ok {
				continue
			}
			dependents[dep] = append(dependents[dep], path)
			inDegree[path]++
		}
	}

	var queue []string
	for _, path := range paths {
		if inDegree[path] == 0 {
			queue = append(queue, path)
		}
	}

	ordered := make([]form.FieldConfig, 0, len(paths))
	for len(queue) > 0 {
		sort.Strings(queue)
		path := queue[0]
		queue = queue[1:]
		ordered = append(ordered, computed[path])
		for _, succ := range dependents[path] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(ordered) != len(paths) {
		return nil, &FormulaError{
			Cycle:   findCycle(paths, computed),
			Message: "computed fields form a dependency cycle",
		}
	}
	return ordered, nil
}

// findCycle walks the computed dependency graph depth-first and returns
// one concrete cycle path, closed on the repeated node.
func findCycle(paths []string, computed map[string]form.FieldConfig) []string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(paths))
	var stack []string
	var cycle []string

	var visit func(path string) bool
	visit = func(path string) bool {
		state[path] = inStack
		stack = append(stack, path)
		deps := append([]string(nil), computed[path].Computed.Dependencies...)
		sort.Strings(deps)
		for _, dep := range deps {
			if _, ok := computed[dep]; !ok {
				continue
			}
			switch state[dep] {
			case inStack:
				start := 0
				for i, p := range stack {
					if p == dep {
						start = i
						break
					}
				}
				cycle = append(append([]string(nil), stack[start:]...), dep)
				return true
			case unvisited:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[path] = done
		return false
	}

	for _, path := range paths {
		if state[path] == unvisited && visit(path) {
			break
		}
	}
	return cycle
}
