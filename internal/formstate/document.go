package formstate

import (
	"github.com/formweave/formweave/internal/form"
	"github.com/formweave/formweave/internal/pathmap"
)

// PrepareDocument assembles the nested document to hand to the persistence
// executor.
//
// It starts from the state's values, drops every configured field whose
// InDocument resolution is false, and merges in computed outputs that are
// explicitly opted into the document. Values with no matching field config
// pass through untouched; hydrated documents routinely carry keys (like
// the store identifier) that the form never configured.
//
// Submit transforms then run in a fixed order: omitFields, renameFields,
// addFields. A rename of an absent path is a no-op; addFields overwrite.
func PrepareDocument(state *FormState, cfg *form.FormConfiguration, submit *form.SubmitConfig) (map[string]any, error) {
	flat := make(map[string]any, len(state.Values))
	for path, value := range state.Values {
		flat[path] = value
	}
	for _, field := range cfg.FieldConfigs {
		if field.InDocument() {
			continue
		}
		delete(flat, field.Path)
	}
	for _, field := range cfg.FieldConfigs {
		if field.Computed == nil || !field.InDocument() {
			continue
		}
		if out, ok := state.Derived[field.Path]; ok {
			flat[field.Path] = out
		}
	}

	doc, err := pathmap.Unflatten(flat)
	if err != nil {
		return nil, err
	}

	if submit != nil && submit.Transforms != nil {
		applyTransforms(doc, submit.Transforms)
	}
	return doc, nil
}

func applyTransforms(doc map[string]any, t *form.Transforms) {
	for _, path := range t.OmitFields {
		pathmap.Delete(doc, path)
	}
	for from, to := range t.RenameFields {
		value, ok := pathmap.Get(doc, from)
		if !ok {
			continue
		}
		pathmap.Delete(doc, from)
		pathmap.Set(doc, to, value)
	}
	for path, value := range t.AddFields {
		pathmap.Set(doc, path, value)
	}
}
