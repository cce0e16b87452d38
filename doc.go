// Package bsoncodec provides the value-codec layer underneath a BSON-style
// binary document format.
//
// Every string field and every date field that crosses the format boundary
// passes through this layer, so the routines here decide whether produced
// documents are well formed and whether round-tripped values are exact.
//
// # Architecture Overview
//
//	bsoncodec/          Root package with the Allocator and Memory contracts
//	├── memory/         Zero-filling heap allocator, scopes, fail-fast exhaustion
//	├── text/           UTF-8 legality validation and JSON quote escaping
//	├── datetime/       Epoch milliseconds <-> calendar fields, fixed offsets
//	├── wasmhost/       wazero host module exposing the codec to wasm guests
//	├── errors/         Structured error types
//	└── cmd/bsonutil/   Command line front end
//
// # Quick Start
//
// Validate and escape a string field:
//
//	if v := text.Validate(raw, false); v != text.Valid {
//	    return fmt.Errorf("field %q: %s", name, v)
//	}
//	escaped, err := text.Escape(raw)
//
// Convert a BSON date:
//
//	in, err := datetime.ToCalendar(-1, datetime.UTC())
//	// 1969-12-31T23:59:59.999000 UTC
//
//	ms, err := datetime.ToEpochMillis(in)
//	// -1
//
// # Thread Safety
//
// Validation, escaping and date conversion are pure functions and safe for
// concurrent use. The default allocator is safe for concurrent use.
// memory.Scope belongs to a single call and must not be shared.
//
// # Precision
//
// BSON dates carry milliseconds. Microseconds below a millisecond are
// truncated on the way in and always zero on the way out.
package bsoncodec
