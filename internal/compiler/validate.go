package compiler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/formweave/formweave/internal/form"
	"github.com/formweave/formweave/internal/formula"
	"github.com/formweave/formweave/internal/pathmap"
)

// Validation error codes (E200-E299)
const (
	// Form-level errors (E200-E209)
	ErrFormIDEmpty   = "E200" // form id is required
	ErrFormNoFields  = "E201" // at least one field config required
	ErrInvalidPath   = "E202" // malformed dotted path
	ErrDuplicatePath = "E203" // duplicate field path

	// Field-level errors (E210-E219)
	ErrUnknownFieldType  = "E210" // type not in the registry
	ErrInvalidAttributes = "E211" // per-type attribute payload rejected
	ErrInvalidMode       = "E212" // unknown mode in modeConfig
	ErrInvalidRule       = "E213" // inconsistent validation rule bounds
	ErrInvalidPattern    = "E214" // pattern does not compile

	// Formula errors (E220-E229)
	ErrInvalidFormula        = "E220" // formula fails to parse or compile
	ErrUndeclaredDependency  = "E221" // formula references an undeclared path
	ErrComputedEditable      = "E222" // computed field configured editable
	ErrComputedCycle         = "E223" // computed dependency cycle
	ErrUnknownDependencyPath = "E224" // declared dependency not a configured field

	// Conditional logic errors (E230-E239)
	ErrInvalidLogic = "E230" // invalid operator, action, or reference

	// Lifecycle errors (E240-E249)
	ErrInvalidLifecycle = "E240" // bad submit mode, collection, or path ref
)

// ValidationError reports one schema problem in a compiled configuration.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled form configuration against schema rules.
// Returns all errors found (does not fail fast).
func Validate(cfg *form.FormConfiguration) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(cfg.ID) == "" {
		errs = append(errs, ValidationError{
			Field:   "id",
			Message: "form id is required and must be non-empty",
			Code:    ErrFormIDEmpty,
		})
	}
	if len(cfg.FieldConfigs) == 0 {
		errs = append(errs, ValidationError{
			Field:   "fieldConfigs",
			Message: "at least one field config is required",
			Code:    ErrFormNoFields,
		})
	}

	eval := formula.NewEvaluator()
	paths := make(map[string]bool, len(cfg.FieldConfigs))
	for i, field := range cfg.FieldConfigs {
		at := fmt.Sprintf("fieldConfigs[%d]", i)

		if err := pathmap.Validate(field.Path); err != nil {
			errs = append(errs, ValidationError{
				Field:   at + ".path",
				Message: err.Error(),
				Code:    ErrInvalidPath,
			})
		} else if paths[field.Path] {
			errs = append(errs, ValidationError{
				Field:   at + ".path",
				Message: fmt.Sprintf("duplicate field path %q", field.Path),
				Code:    ErrDuplicatePath,
			})
		}
		paths[field.Path] = true

		errs = append(errs, validateField(eval, field, at)...)
	}

	errs = append(errs, validateDependencies(cfg, paths)...)
	errs = append(errs, validateLogicRefs(cfg, paths)...)
	errs = append(errs, validateLifecycle(cfg.Lifecycle, paths)...)

	return errs
}

// validateField checks one field config in isolation: its type and
// attributes, mode lists, validation rule bounds, and formulas.
func validateField(eval *formula.Evaluator, field form.FieldConfig, at string) []ValidationError {
	var errs []ValidationError

	spec, known := form.Spec(field.Type)
	if !known {
		errs = append(errs, ValidationError{
			Field:   at + ".type",
			Message: fmt.Sprintf("unknown field type %q", field.Type),
			Code:    ErrUnknownFieldType,
		})
	}
	if known && spec.ValidateAttributes != nil {
		if err := spec.ValidateAttributes(field.Attributes); err != nil {
			errs = append(errs, ValidationError{
				Field:   at + ".attributes",
				Message: err.Error(),
				Code:    ErrInvalidAttributes,
			})
		}
	}

	if field.ModeConfig != nil {
		lists := map[string][]form.Mode{
			"visibleIn":  field.ModeConfig.VisibleIn,
			"editableIn": field.ModeConfig.EditableIn,
			"requiredIn": field.ModeConfig.RequiredIn,
		}
		for name, modes := range lists {
			for _, mode := range modes {
				if !mode.Valid() {
					errs = append(errs, ValidationError{
						Field:   fmt.Sprintf("%s.modeConfig.%s", at, name),
						Message: fmt.Sprintf("unknown mode %q", mode),
						Code:    ErrInvalidMode,
					})
				}
			}
		}
		if field.Computed != nil && len(field.ModeConfig.EditableIn) > 0 {
			errs = append(errs, ValidationError{
				Field:   at + ".modeConfig.editableIn",
				Message: "computed fields are never editable",
				Code:    ErrComputedEditable,
			})
		}
	}

	if field.Validation != nil {
		errs = append(errs, validateRules(eval, field.Validation, at+".validation")...)
	}

	if field.Computed != nil {
		if err := eval.Check(field.Computed.Formula); err != nil {
			errs = append(errs, ValidationError{
				Field:   at + ".computed.formula",
				Message: err.Error(),
				Code:    ErrInvalidFormula,
			})
		} else {
			errs = append(errs, checkDeclaredDependencies(field, at)...)
		}
	}

	return errs
}

func validateRules(eval *formula.Evaluator, rules *form.ValidationRules, at string) []ValidationError {
	var errs []ValidationError

	if rules.Min != nil && rules.Max != nil && *rules.Min > *rules.Max {
		errs = append(errs, ValidationError{
			Field:   at + ".min",
			Message: fmt.Sprintf("min %v exceeds max %v", *rules.Min, *rules.Max),
			Code:    ErrInvalidRule,
		})
	}
	if rules.MinLength != nil && *rules.MinLength < 0 {
		errs = append(errs, ValidationError{
			Field:   at + ".minLength",
			Message: "minLength must not be negative",
			Code:    ErrInvalidRule,
		})
	}
	if rules.MaxLength != nil && *rules.MaxLength < 0 {
		errs = append(errs, ValidationError{
			Field:   at + ".maxLength",
			Message: "maxLength must not be negative",
			Code:    ErrInvalidRule,
		})
	}
	if rules.MinLength != nil && rules.MaxLength != nil && *rules.MinLength > *rules.MaxLength {
		errs = append(errs, ValidationError{
			Field:   at + ".minLength",
			Message: fmt.Sprintf("minLength %d exceeds maxLength %d", *rules.MinLength, *rules.MaxLength),
			Code:    ErrInvalidRule,
		})
	}
	if rules.Pattern != "" {
		if _, err := regexp.Compile(rules.Pattern); err != nil {
			errs = append(errs, ValidationError{
				Field:   at + ".pattern",
				Message: fmt.Sprintf("pattern does not compile: %v", err),
				Code:    ErrInvalidPattern,
			})
		}
	}
	if rules.CustomValidator != "" {
		if err := eval.Check(rules.CustomValidator); err != nil {
			errs = append(errs, ValidationError{
				Field:   at + ".customValidator",
				Message: err.Error(),
				Code:    ErrInvalidFormula,
			})
		}
	}
	return errs
}

// checkDeclaredDependencies compares the paths a formula actually
// references against the field's declared dependency list. Undeclared use
// is an error; a declared-but-unused dependency is harmless and ignored.
func checkDeclaredDependencies(field form.FieldConfig, at string) []ValidationError {
	identifiers, err := formula.Identifiers(field.Computed.Formula)
	if err != nil {
		return nil // the formula check already reported this
	}

	declared := make(map[string]bool, len(field.Computed.Dependencies))
	for _, dep := range field.Computed.Dependencies {
		declared[dep] = true
	}

	var errs []ValidationError
	for _, id := range identifiers {
		if declaredCovers(declared, id) {
			continue
		}
		errs = append(errs, ValidationError{
			Field:   at + ".computed.dependencies",
			Message: fmt.Sprintf("formula references %q which is not a declared dependency", id),
			Code:    ErrUndeclaredDependency,
		})
	}
	return errs
}

// declaredCovers reports whether an identifier is declared exactly or via
// an object prefix ("user" covers "user.name" and vice versa).
func declaredCovers(declared map[string]bool, id string) bool {
	if declared[id] {
		return true
	}
	for dep := range declared {
		if strings.HasPrefix(dep, id+".") || strings.HasPrefix(id, dep+".") {
			return true
		}
	}
	return false
}

// validateDependencies checks declared dependency paths against the
// configured fields and rejects dependency cycles.
func validateDependencies(cfg *form.FormConfiguration, paths map[string]bool) []ValidationError {
	var errs []ValidationError

	for i, field := range cfg.FieldConfigs {
		if field.Computed == nil {
			continue
		}
		for _, dep := range field.Computed.Dependencies {
			if !pathKnown(paths, dep) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("fieldConfigs[%d].computed.dependencies", i),
					Message: fmt.Sprintf("dependency %q is not a configured field", dep),
					Code:    ErrUnknownDependencyPath,
				})
			}
		}
	}

	if _, err := formula.Order(cfg.FieldConfigs); err != nil {
		var ferr *formula.FormulaError
		msg := err.Error()
		if errors.As(err, &ferr) && len(ferr.Cycle) > 0 {
			msg = fmt.Sprintf("computed fields form a cycle: %s", strings.Join(ferr.Cycle, " -> "))
		}
		errs = append(errs, ValidationError{
			Field:   "fieldConfigs",
			Message: msg,
			Code:    ErrComputedCycle,
		})
	}
	return errs
}

// validateLogicRefs checks each field's conditional logic: known
// operators, actions, logic types, and field references.
func validateLogicRefs(cfg *form.FormConfiguration, paths map[string]bool) []ValidationError {
	var errs []ValidationError

	for i, field := range cfg.FieldConfigs {
		logic := field.ConditionalLogic
		if logic == nil {
			continue
		}
		at := fmt.Sprintf("fieldConfigs[%d].conditionalLogic", i)

		if logic.Action != form.ActionShow && logic.Action != form.ActionHide {
			errs = append(errs, ValidationError{
				Field:   at + ".action",
				Message: fmt.Sprintf("invalid action %q, must be \"show\" or \"hide\"", logic.Action),
				Code:    ErrInvalidLogic,
			})
		}
		if logic.LogicType != "" && logic.LogicType != form.LogicAll && logic.LogicType != form.LogicAny {
			errs = append(errs, ValidationError{
				Field:   at + ".logicType",
				Message: fmt.Sprintf("invalid logicType %q, must be \"all\" or \"any\"", logic.LogicType),
				Code:    ErrInvalidLogic,
			})
		}
		if len(logic.Conditions) == 0 {
			errs = append(errs, ValidationError{
				Field:   at + ".conditions",
				Message: "conditional logic requires at least one condition",
				Code:    ErrInvalidLogic,
			})
		}
		for j, cond := range logic.Conditions {
			condAt := fmt.Sprintf("%s.conditions[%d]", at, j)
			if !cond.Operator.Valid() {
				errs = append(errs, ValidationError{
					Field:   condAt + ".operator",
					Message: fmt.Sprintf("unknown operator %q", cond.Operator),
					Code:    ErrInvalidLogic,
				})
			}
			if cond.Operator.Valid() && cond.Operator.NeedsValue() && cond.Value == nil {
				errs = append(errs, ValidationError{
					Field:   condAt + ".value",
					Message: fmt.Sprintf("operator %q requires a comparison value", cond.Operator),
					Code:    ErrInvalidLogic,
				})
			}
			if !pathKnown(paths, cond.Field) {
				errs = append(errs, ValidationError{
					Field:   condAt + ".field",
					Message: fmt.Sprintf("condition references unknown field %q", cond.Field),
					Code:    ErrInvalidLogic,
				})
			}
		}
	}
	return errs
}

// validateLifecycle checks submit/delete configs and the path lists the
// lifecycle references.
func validateLifecycle(lc *form.Lifecycle, paths map[string]bool) []ValidationError {
	if lc == nil {
		return nil
	}
	var errs []ValidationError

	checkSubmit := func(at string, submit *form.SubmitConfig) {
		if submit == nil {
			return
		}
		if submit.Mode != form.SubmitInsert && submit.Mode != form.SubmitUpdate {
			errs = append(errs, ValidationError{
				Field:   at + ".mode",
				Message: fmt.Sprintf("invalid submit mode %q, must be \"insert\" or \"update\"", submit.Mode),
				Code:    ErrInvalidLifecycle,
			})
		}
		if strings.TrimSpace(submit.Collection) == "" {
			errs = append(errs, ValidationError{
				Field:   at + ".collection",
				Message: "submit config requires a collection",
				Code:    ErrInvalidLifecycle,
			})
		}
	}
	checkPaths := func(at string, refs []string) {
		for _, path := range refs {
			if !pathKnown(paths, path) {
				errs = append(errs, ValidationError{
					Field:   at,
					Message: fmt.Sprintf("references unknown field %q", path),
					Code:    ErrInvalidLifecycle,
				})
			}
		}
	}

	if lc.Create != nil {
		checkSubmit("lifecycle.create.onSubmit", lc.Create.OnSubmit)
		for path := range lc.Create.Defaults {
			checkPaths("lifecycle.create.defaults", []string{path})
		}
	}
	if lc.Edit != nil {
		checkSubmit("lifecycle.edit.onSubmit", lc.Edit.OnSubmit)
		checkPaths("lifecycle.edit.immutableFields", lc.Edit.ImmutableFields)
	}
	if lc.Clone != nil {
		checkSubmit("lifecycle.clone.onSubmit", lc.Clone.OnSubmit)
		checkPaths("lifecycle.clone.clearFields", lc.Clone.ClearFields)
	}
	return errs
}

// pathKnown reports whether a referenced path matches a configured field
// exactly or by object prefix. Hydrated documents may carry extra keys,
// but configuration references must point at configured fields; the one
// exception is the store identifier, which exists on every persisted
// document.
func pathKnown(paths map[string]bool, path string) bool {
	if path == "_id" {
		return true
	}
	if paths[path] {
		return true
	}
	for known := range paths {
		if strings.HasPrefix(known, path+".") {
			return true
		}
	}
	return false
}
