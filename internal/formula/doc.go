// Package formula evaluates the restricted expression language used by
// computed fields and custom validators.
//
// Formulas are compiled with expr-lang against a closed surface: every
// builtin is disabled and only the ROUND, ABS, MIN, and MAX functions are
// registered, so form-author text can reference field values, literals,
// arithmetic, comparisons, and ternary conditionals - never loops,
// assignment, or arbitrary code.
//
// Identifiers are dotted field paths resolved against the flat
// values+derived bindings map; the evaluator unflattens the bindings so
// "user.total" resolves as member access.
package formula
