// Command odireg builds the named instances of a manifest through the catalog
// registry and prints each one as a JSON line.
//
// # Usage
//
//	odireg [options] [MANIFEST]
//	odireg -list [-match GLOB]
//	odireg -describe KEY
//
// A manifest is an HCL or YAML file (chosen by extension) listing instances:
//
//	instance "origin" {
//	  kind   = "shape/point"
//	  params = { x = 3, y = 4 }
//	}
//
// Output, one line per built instance:
//
//	{"name":"origin","kind":"shape/point","value":{"x":3,"y":4}}
//
// Building stops at the first failing instance. Lines for the instances built
// before it are still printed.
//
// # Configuration
//
// Flags override the environment:
//
//   - ODIREG_MANIFEST   (-manifest)    manifest path or afs URL
//   - ODIREG_POLICY     (-policy)      duplicate-key policy: reject | replace
//   - ODIREG_LOG_LEVEL  (-log-level)   debug | info | warn | error
//   - ODIREG_LOG_FORMAT (-log-format)  text | json
//
// Logs go to stderr.
//
// # Exit codes
//
//   - 0 success
//   - 1 manifest or build failure
//   - 2 usage or configuration error
package main
