// Package resource defines the declarative specs helmwire turns into
// host registrations: chart resources, chart repositories and the
// image-key shapes used for values injection.
//
// Specs are plain data with YAML and JSON tags so they load from
// workspace files and ride HTTP payloads unchanged. Validation lives
// on the types; defaulting (release names, task names, autoInit) is
// explicit via WithDefaults so callers can tell declared values from
// resolved ones.
package resource
