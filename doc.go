// Package odireg builds instances by string key through a typed construction
// registry.
//
// The pieces:
//
//   - registry: Registry[T], the key to rule mapping, with typed errors and
//     a duplicate-key policy fixed at construction
//   - schema: rules whose params are validated by a JSON Schema reflected from
//     a Go struct
//   - manifest: HCL and YAML files listing named instances to build
//   - catalog: a ready-made set of shapes and people rules
//   - cmd/odireg: a CLI that builds a manifest against the catalog
//   - examples/basic: a runnable walk through the API
//
// Keys are data, so callers can be configured with a manifest instead of code,
// and no reflection is used to pick a constructor.
package odireg
