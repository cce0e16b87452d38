// Package wasmhost exposes the codec to WebAssembly guests through wazero.
//
// Instantiate registers a host module named "bson" in a wazero.Runtime.
// Guests import its functions and pass pointers into their own linear
// memory; integers are little-endian.
//
//	utf8_validate(ptr, len, allow_nul i32) i32
//	    0 valid, 1 not UTF-8, 2 contains NUL
//	utf8_escape_for_json(ptr, len, out, out_cap i32) i32
//	    bytes written to out, -1 truncated input, -2 out_cap too small
//	date_to_calendar(ms i64, out i32) i32
//	    writes 8 x i32 {year, month, day, hour, minute, second,
//	    microsecond, offset_minutes}; 0 ok, -1 out of range
//	date_from_calendar(in, out i32) i32
//	    reads 8 x i32 in the same layout, writes i64 ms; 0 ok, -1 invalid
//
// A pointer outside the guest's memory aborts the call with an
// out_of_bounds error, which wazero surfaces like a trap.
//
// Usage:
//
//	rt := wazero.NewRuntime(ctx)
//	if _, err := wasmhost.Instantiate(ctx, rt); err != nil {
//	    return err
//	}
//	mod, err := rt.Instantiate(ctx, guestWasm)
package wasmhost
