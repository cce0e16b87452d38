package wasmhost

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	cerrors "github.com/wippyai/bsoncodec/errors"
)

// validateGuestWASM imports bson.utf8_validate and re-exports it as
// "validate" next to one page of memory exported as "memory".
var validateGuestWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x01, 0x08, 0x01, 0x60, 0x03, 0x7f, 0x7f, 0x7f, 0x01, 0x7f, // type 0: (i32 i32 i32) -> i32
	0x02, 0x16, 0x01, // import section: 1 import
	0x04, 0x62, 0x73, 0x6f, 0x6e, // "bson"
	0x0d, 0x75, 0x74, 0x66, 0x38, 0x5f, 0x76, 0x61, 0x6c, 0x69, 0x64, 0x61, 0x74, 0x65, // "utf8_validate"
	0x00, 0x00, // func, type 0
	0x03, 0x02, 0x01, 0x00, // function section: 1 func of type 0
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page
	0x07, 0x15, 0x02, // export section: 2 exports
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, 0x02, 0x00, // "memory" memory 0
	0x08, 0x76, 0x61, 0x6c, 0x69, 0x64, 0x61, 0x74, 0x65, 0x00, 0x01, // "validate" func 1
	0x0a, 0x0c, 0x01, 0x0a, 0x00, // code section: 1 body, 10 bytes, no locals
	0x20, 0x00, 0x20, 0x01, 0x20, 0x02, // local.get 0 1 2
	0x10, 0x00, // call 0
	0x0b, // end
}

func put(t *testing.T, mod api.Module, offset uint32, data []byte) {
	t.Helper()
	if !mod.Memory().Write(offset, data) {
		t.Fatalf("write %d bytes at %d failed", len(data), offset)
	}
}

func get(t *testing.T, mod api.Module, offset, length uint32) []byte {
	t.Helper()
	data, ok := mod.Memory().Read(offset, length)
	if !ok {
		t.Fatalf("read %d bytes at %d failed", length, offset)
	}
	return data
}

func call(fn api.GoModuleFunc, mod api.Module, params ...uint64) int32 {
	stack := make([]uint64, max(len(params), 1))
	copy(stack, params)
	fn(context.Background(), mod, stack)
	return api.DecodeI32(stack[0])
}

func expectAbort(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("panic = %v, want %v", r, want)
		}
	}()
	fn()
}

func TestUTF8Validate(t *testing.T) {
	mod := memoryModule(t)

	tests := []struct {
		name     string
		data     []byte
		allowNul uint64
		want     int32
	}{
		{"ascii", []byte("hello"), 0, 0},
		{"multibyte", []byte("h\xc3\xa9llo \xe2\x82\xac \xf0\x9f\x98\x80"), 0, 0},
		{"overlong", []byte{0xc0, 0x80}, 0, 1},
		{"truncated", []byte{0xe2, 0x82}, 0, 1},
		{"nul rejected", []byte("a\x00b"), 0, 2},
		{"nul allowed", []byte("a\x00b"), 1, 0},
		{"empty", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			put(t, mod, 100, tt.data)
			got := call(utf8Validate, mod, api.EncodeU32(100), api.EncodeU32(uint32(len(tt.data))), tt.allowNul)
			if got != tt.want {
				t.Errorf("utf8_validate = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUTF8Validate_OutOfBounds(t *testing.T) {
	mod := memoryModule(t)
	expectAbort(t, cerrors.ErrOutOfBounds, func() {
		call(utf8Validate, mod, api.EncodeU32(pageSize-1), api.EncodeU32(2), 0)
	})
}

func TestUTF8EscapeForJSON(t *testing.T) {
	mod := memoryModule(t)

	tests := []struct {
		name   string
		in     string
		outCap uint32
		want   int32
		out    string
	}{
		{"plain", "abc", 16, 3, "abc"},
		{"quote", `say "hi"`, 32, 10, `say \"hi\"`},
		{"backslash", `a\b`, 8, 4, `a\\b`},
		{"exact capacity", `"`, 2, 2, `\"`},
		{"no room", `""`, 3, -2, ""},
		{"truncated", "ok\xe2\x82", 16, -1, ""},
		{"empty", "", 4, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const src, dst = 0, 1024
			put(t, mod, dst, make([]byte, 64)) // clear
			put(t, mod, dst+uint32(tt.outCap), []byte{0xaa})
			put(t, mod, src, []byte(tt.in))

			got := call(utf8EscapeForJSON, mod,
				api.EncodeU32(src), api.EncodeU32(uint32(len(tt.in))),
				api.EncodeU32(dst), api.EncodeU32(tt.outCap))
			if got != tt.want {
				t.Fatalf("utf8_escape_for_json = %d, want %d", got, tt.want)
			}
			if got < 0 {
				return
			}
			if out := get(t, mod, dst, uint32(got)); string(out) != tt.out {
				t.Errorf("output = %q, want %q", out, tt.out)
			}
			if uint32(got) < tt.outCap && get(t, mod, dst+uint32(got), 1)[0] != 0 {
				t.Error("missing terminator")
			}
			if get(t, mod, dst+tt.outCap, 1)[0] != 0xaa {
				t.Error("wrote past out_cap")
			}
		})
	}
}

func TestUTF8EscapeForJSON_OutOfBounds(t *testing.T) {
	mod := memoryModule(t)
	put(t, mod, 0, []byte(`""`))
	expectAbort(t, cerrors.ErrOutOfBounds, func() {
		call(utf8EscapeForJSON, mod, 0, api.EncodeU32(2), api.EncodeU32(pageSize-2), api.EncodeU32(16))
	})
}

func readFields(t *testing.T, mod api.Module, offset uint32) [calendarFields]int32 {
	t.Helper()
	raw := get(t, mod, offset, calendarFields*4)
	var f [calendarFields]int32
	for i := range f {
		f[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return f
}

func writeFields(t *testing.T, mod api.Module, offset uint32, f [calendarFields]int32) {
	t.Helper()
	raw := make([]byte, calendarFields*4)
	for i, v := range f {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(v))
	}
	put(t, mod, offset, raw)
}

func TestDateToCalendar(t *testing.T) {
	mod := memoryModule(t)

	tests := []struct {
		ms   int64
		want [calendarFields]int32
	}{
		{0, [calendarFields]int32{1970, 1, 1, 0, 0, 0, 0, 0}},
		{-1, [calendarFields]int32{1969, 12, 31, 23, 59, 59, 999000, 0}},
		{-62135593138889, [calendarFields]int32{1, 1, 1, 1, 1, 1, 111000, 0}},
		{253402300799999, [calendarFields]int32{9999, 12, 31, 23, 59, 59, 999000, 0}},
	}

	for _, tt := range tests {
		got := call(dateToCalendar, mod, api.EncodeI64(tt.ms), api.EncodeU32(64))
		if got != 0 {
			t.Fatalf("date_to_calendar(%d) = %d", tt.ms, got)
		}
		if f := readFields(t, mod, 64); f != tt.want {
			t.Errorf("date_to_calendar(%d) fields = %v, want %v", tt.ms, f, tt.want)
		}
	}
}

func TestDateToCalendar_DomainError(t *testing.T) {
	mod := memoryModule(t)
	put(t, mod, 64, make([]byte, calendarFields*4))

	if got := call(dateToCalendar, mod, api.EncodeI64(253402300800000), api.EncodeU32(64)); got != -1 {
		t.Errorf("date_to_calendar = %d, want -1", got)
	}
	if f := readFields(t, mod, 64); f != [calendarFields]int32{} {
		t.Errorf("fields written on error: %v", f)
	}
}

func TestDateFromCalendar(t *testing.T) {
	mod := memoryModule(t)

	tests := []struct {
		name   string
		fields [calendarFields]int32
		want   int32
		ms     int64
	}{
		{"epoch", [calendarFields]int32{1970, 1, 1, 0, 0, 0, 0, 0}, 0, 0},
		{"truncates micros", [calendarFields]int32{1, 1, 1, 1, 1, 1, 111111, 0}, 0, -62135593138889},
		{"offset", [calendarFields]int32{1970, 1, 1, 5, 30, 0, 0, 330}, 0, 0},
		{"negative offset", [calendarFields]int32{1969, 12, 31, 16, 0, 0, 0, -480}, 0, 0},
		{"feb 30", [calendarFields]int32{2001, 2, 30, 0, 0, 0, 0, 0}, -1, 0},
		{"bad offset", [calendarFields]int32{2001, 1, 1, 0, 0, 0, 0, 1440}, -1, 0},
		{"year zero", [calendarFields]int32{0, 1, 1, 0, 0, 0, 0, 0}, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeFields(t, mod, 128, tt.fields)
			put(t, mod, 256, make([]byte, 8))

			got := call(dateFromCalendar, mod, api.EncodeU32(128), api.EncodeU32(256))
			if got != tt.want {
				t.Fatalf("date_from_calendar = %d, want %d", got, tt.want)
			}
			if got != 0 {
				return
			}
			if ms := int64(binary.LittleEndian.Uint64(get(t, mod, 256, 8))); ms != tt.ms {
				t.Errorf("ms = %d, want %d", ms, tt.ms)
			}
		})
	}
}

func TestDateFromCalendar_OutOfBounds(t *testing.T) {
	mod := memoryModule(t)
	expectAbort(t, cerrors.ErrOutOfBounds, func() {
		call(dateFromCalendar, mod, api.EncodeU32(pageSize-16), api.EncodeU32(0))
	})
}

func TestDateRoundTrip(t *testing.T) {
	mod := memoryModule(t)
	for _, ms := range []int64{-62135596800000, -1, 0, 1, 951782400123, 253402300799999} {
		if call(dateToCalendar, mod, api.EncodeI64(ms), api.EncodeU32(0)) != 0 {
			t.Fatalf("date_to_calendar(%d) failed", ms)
		}
		if call(dateFromCalendar, mod, api.EncodeU32(0), api.EncodeU32(64)) != 0 {
			t.Fatalf("date_from_calendar(%d) failed", ms)
		}
		if got := int64(binary.LittleEndian.Uint64(get(t, mod, 64, 8))); got != ms {
			t.Errorf("round trip %d -> %d", ms, got)
		}
	}
}

func TestFuncs(t *testing.T) {
	want := map[string]int{
		"utf8_validate":        3,
		"utf8_escape_for_json": 4,
		"date_to_calendar":     2,
		"date_from_calendar":   2,
	}
	funcs := Funcs()
	if len(funcs) != len(want) {
		t.Fatalf("len(Funcs()) = %d, want %d", len(funcs), len(want))
	}
	for _, f := range funcs {
		n, ok := want[f.Name]
		if !ok {
			t.Errorf("unexpected function %q", f.Name)
			continue
		}
		if len(f.Params) != n || len(f.Results) != 1 || f.Results[0] != api.ValueTypeI32 {
			t.Errorf("%s: params %v results %v", f.Name, f.Params, f.Results)
		}
		if f.Handler == nil {
			t.Errorf("%s: nil handler", f.Name)
		}
	}
}

func TestInstantiate(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	host, err := Instantiate(ctx, rt)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if host.Name() != ModuleName {
		t.Errorf("Name() = %q, want %q", host.Name(), ModuleName)
	}
	defs := host.ExportedFunctionDefinitions()
	for _, f := range Funcs() {
		if _, ok := defs[f.Name]; !ok {
			t.Errorf("export %q missing", f.Name)
		}
	}

	if _, err := Instantiate(ctx, rt); err == nil {
		t.Error("second Instantiate in the same runtime should fail")
	}
}

func TestGuestImport(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	if _, err := Instantiate(ctx, rt); err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	guest, err := rt.Instantiate(ctx, validateGuestWASM)
	if err != nil {
		t.Fatalf("instantiate guest: %v", err)
	}
	validate := guest.ExportedFunction("validate")
	if validate == nil {
		t.Fatal("guest export validate missing")
	}

	put(t, guest, 0, []byte("caf\xc3\xa9"))
	put(t, guest, 8, []byte{0xed, 0xa0})

	tests := []struct {
		name     string
		ptr, len uint32
		want     uint64
	}{
		{"valid", 0, 5, 0},
		{"truncated", 8, 2, 1},
	}
	for _, tt := range tests {
		res, err := validate.Call(ctx, api.EncodeU32(tt.ptr), api.EncodeU32(tt.len), 0)
		if err != nil {
			t.Fatalf("%s: call: %v", tt.name, err)
		}
		if res[0] != tt.want {
			t.Errorf("%s: verdict = %d, want %d", tt.name, res[0], tt.want)
		}
	}

	if _, err := validate.Call(ctx, api.EncodeU32(pageSize), api.EncodeU32(1), 0); err == nil {
		t.Error("out-of-bounds pointer should abort the call")
	}
}
