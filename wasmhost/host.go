package wasmhost

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/bsoncodec"
	"github.com/wippyai/bsoncodec/datetime"
	"github.com/wippyai/bsoncodec/errors"
	"github.com/wippyai/bsoncodec/text"
)

// ModuleName is the import module name guests use.
const ModuleName = "bson"

const (
	escapeTruncated int32 = -1
	escapeNoRoom    int32 = -2

	dateOK          int32 = 0
	dateDomainError int32 = -1

	// calendarFields is the number of i32 slots in a guest calendar record.
	calendarFields = 8
)

// Func describes one function exported by the host module.
type Func struct {
	Handler api.GoModuleFunc
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// Funcs returns the host module's functions in export order.
func Funcs() []Func {
	return []Func{
		{
			Name:    "utf8_validate",
			Handler: api.GoModuleFunc(utf8Validate),
			Params:  []api.ValueType{i32, i32, i32},
			Results: []api.ValueType{i32},
		},
		{
			Name:    "utf8_escape_for_json",
			Handler: api.GoModuleFunc(utf8EscapeForJSON),
			Params:  []api.ValueType{i32, i32, i32, i32},
			Results: []api.ValueType{i32},
		},
		{
			Name:    "date_to_calendar",
			Handler: api.GoModuleFunc(dateToCalendar),
			Params:  []api.ValueType{i64, i32},
			Results: []api.ValueType{i32},
		},
		{
			Name:    "date_from_calendar",
			Handler: api.GoModuleFunc(dateFromCalendar),
			Params:  []api.ValueType{i32, i32},
			Results: []api.ValueType{i32},
		},
	}
}

// Instantiate builds the bson host module into rt.
func Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(ModuleName)

	funcs := Funcs()
	for _, f := range funcs {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.Handler, f.Params, f.Results).
			Export(f.Name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("wasmhost: instantiate %q: %w", ModuleName, err)
	}
	Logger().Debug("host module instantiated",
		zap.String("module", ModuleName),
		zap.Int("functions", len(funcs)))
	return mod, nil
}

// guestMemory returns the calling module's memory. Guests without memory
// abort the call.
func guestMemory(mod api.Module) bsoncodec.Memory {
	mem := WrapMemory(mod.Memory())
	if mem == nil {
		err := errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Detail("module %q has no memory", mod.Name()).
			Build()
		Logger().Debug("guest call rejected", zap.Error(err))
		panic(err)
	}
	return mem
}

// must aborts the guest call on a memory access error.
func must[T any](v T, err error) T {
	if err != nil {
		Logger().Debug("guest call aborted", zap.Error(err))
		panic(err)
	}
	return v
}

func check(err error) {
	if err != nil {
		Logger().Debug("guest call aborted", zap.Error(err))
		panic(err)
	}
}

func utf8Validate(_ context.Context, mod api.Module, stack []uint64) {
	ptr := api.DecodeU32(stack[0])
	length := api.DecodeU32(stack[1])
	allowNul := api.DecodeU32(stack[2]) != 0

	data := must(guestMemory(mod).Read(ptr, length))
	verdict := text.Validate(data, allowNul)
	if verdict != text.Valid {
		Logger().Debug("utf8_validate",
			zap.Uint32("ptr", ptr),
			zap.Uint32("len", length),
			zap.Stringer("verdict", verdict))
	}
	stack[0] = api.EncodeI32(int32(verdict))
}

func utf8EscapeForJSON(_ context.Context, mod api.Module, stack []uint64) {
	ptr := api.DecodeU32(stack[0])
	length := api.DecodeU32(stack[1])
	out := api.DecodeU32(stack[2])
	outCap := api.DecodeU32(stack[3])

	mem := guestMemory(mod)
	data := must(mem.Read(ptr, length))

	escaped, err := text.EscapeForJSON(data, len(data))
	if err != nil {
		if !stderrors.Is(err, errors.ErrTruncated) {
			check(err)
		}
		Logger().Debug("utf8_escape_for_json rejected input", zap.Error(err))
		stack[0] = api.EncodeI32(escapeTruncated)
		return
	}
	defer text.Release(escaped)

	n := uint32(len(escaped))
	if n > outCap {
		Logger().Debug("utf8_escape_for_json output too small",
			zap.Uint32("need", n),
			zap.Uint32("cap", outCap))
		stack[0] = api.EncodeI32(escapeNoRoom)
		return
	}

	check(mem.Write(out, escaped))
	if n < outCap {
		check(mem.Write(out+n, []byte{0}))
	}
	stack[0] = api.EncodeI32(int32(n))
}

func dateToCalendar(_ context.Context, mod api.Module, stack []uint64) {
	ms := int64(stack[0])
	out := api.DecodeU32(stack[1])

	mem := guestMemory(mod)
	in, err := datetime.ToCalendar(ms, nil)
	if err != nil {
		Logger().Debug("date_to_calendar rejected timestamp", zap.Int64("ms", ms), zap.Error(err))
		stack[0] = api.EncodeI32(dateDomainError)
		return
	}

	fields := [calendarFields]int{
		in.Year, in.Month, in.Day,
		in.Hour, in.Minute, in.Second,
		in.Microsecond, in.OffsetMinutes(),
	}
	for i, v := range fields {
		check(mem.WriteU32(out+uint32(i)*4, uint32(int32(v))))
	}
	stack[0] = api.EncodeI32(dateOK)
}

func dateFromCalendar(_ context.Context, mod api.Module, stack []uint64) {
	inPtr := api.DecodeU32(stack[0])
	out := api.DecodeU32(stack[1])

	mem := guestMemory(mod)
	var fields [calendarFields]int
	for i := range fields {
		fields[i] = int(int32(must(mem.ReadU32(inPtr + uint32(i)*4))))
	}

	in := datetime.Instant{
		Year:        fields[0],
		Month:       fields[1],
		Day:         fields[2],
		Hour:        fields[3],
		Minute:      fields[4],
		Second:      fields[5],
		Microsecond: fields[6],
	}
	if minutes := fields[7]; minutes != 0 {
		off, err := datetime.NewFixedOffset(datetime.Minutes(minutes), "")
		if err != nil {
			Logger().Debug("date_from_calendar rejected offset", zap.Int("minutes", minutes), zap.Error(err))
			stack[0] = api.EncodeI32(dateDomainError)
			return
		}
		in.Offset = off
	}

	ms, err := datetime.ToEpochMillis(in)
	if err != nil {
		Logger().Debug("date_from_calendar rejected fields", zap.Stringer("instant", in), zap.Error(err))
		stack[0] = api.EncodeI32(dateDomainError)
		return
	}
	check(mem.WriteU64(out, uint64(ms)))
	stack[0] = api.EncodeI32(dateOK)
}
