// Package nonesafe declares record types at runtime and constructs records
// whose declared fields are always present:
//
// - Declare/DeclarePreserving/Define build a RecordType from ordered fields
// - RecordType.New merges supplied values, drops unknown keys and defaults
//   every missing field (nil for scalars, a fully built record for nested types)
// - Record.ToMapping rebuilds a mapping that keeps unknown input keys (preserving types)
// - ParseFrom/StreamParse/ParseYAML feed JSON or YAML input into New
//
// Design policy:
// - Keep only public APIs in the root package; put token handling under internal/.
// - JSON drivers live under source/, net/http middleware under middleware/ and
//   the CLI (including an HTTP server) under cmd/nonesafe.
// - Errors are Issues (JSON Pointer, code, message); declaration errors surface
//   from Declare, never from New.
//
// Typical usage:
//
//	c := nonesafe.MustDeclare("C", nil, nonesafe.F("d", nonesafe.Int))
//	a := nonesafe.MustDeclarePreserving("A", nonesafe.Fields{{Name: "c", Type: c}})
//
//	r := a.Zero()
//	_ = r.Record("c").Get("d") // nil, never a missing key
//
//	r, err := nonesafe.ParseFrom(ctx, a, nonesafe.JSONBytes(data))
//	m, err := r.ToMapping() // known fields over the original input
package nonesafe
