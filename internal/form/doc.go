// Package form defines the declarative data model the runtime engine
// interprets: field configurations, form configurations, modes, lifecycle
// policies, and conditional logic.
//
// Everything in this package is plain data. A FormConfiguration is an
// immutable input to the engine - nothing here mutates it after
// construction. Field types are a tagged-variant system: the FieldType
// discriminator selects a TypeSpec from the registry, which classifies the
// value kind and supplies per-type defaults.
package form
