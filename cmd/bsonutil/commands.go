package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/panjf2000/ants/v2"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/bsoncodec/datetime"
	"github.com/wippyai/bsoncodec/errors"
	"github.com/wippyai/bsoncodec/text"
	"github.com/wippyai/bsoncodec/wasmhost"
)

var (
	validMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")).Render("valid")
	invalidMark = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

type options struct {
	offset   *datetime.FixedOffset
	allowNul bool
	workers  int
	stdin    io.Reader
	stdout   io.Writer
}

// run dispatches one non-interactive mode. ok is false when validation
// found an invalid input.
func run(ctx context.Context, log *zap.Logger, mode string, args []string, opts options) (ok bool, err error) {
	if opts.stdin == nil {
		opts.stdin = os.Stdin
	}
	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}
	log.Debug("run", zap.String("mode", mode), zap.Int("args", len(args)))

	switch mode {
	case "validate":
		return runValidate(opts.stdout, opts.stdin, args, opts.allowNul, opts.workers)
	case "escape":
		return true, runEscape(opts.stdout, opts.stdin, args)
	case "date":
		return true, runDate(opts.stdout, args, opts.offset)
	case "calendar":
		return true, runCalendar(opts.stdout, args)
	case "run":
		return true, runGuest(ctx, opts.stdout, args)
	default:
		return false, errors.InvalidInput(errors.PhaseCLI, fmt.Sprintf("unknown mode %q", mode))
	}
}

type fileResult struct {
	err     error
	name    string
	verdict text.Verdict
}

func validateFile(name string, allowNul bool) fileResult {
	data, err := os.ReadFile(name)
	if err != nil {
		return fileResult{name: name, err: err}
	}
	return fileResult{name: name, verdict: text.Validate(data, allowNul)}
}

// runValidate checks every file on an ants pool and prints results in
// argument order. Without files it validates stdin.
func runValidate(w io.Writer, stdin io.Reader, files []string, allowNul bool, workers int) (bool, error) {
	if len(files) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return false, fmt.Errorf("read stdin: %w", err)
		}
		v := text.Validate(data, allowNul)
		printVerdict(w, "<stdin>", v, nil)
		return v == text.Valid, nil
	}

	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return false, fmt.Errorf("worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]fileResult, len(files))
	var wg sync.WaitGroup
	for i, name := range files {
		i, name := i, name
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i] = validateFile(name, allowNul)
		}); err != nil {
			wg.Done()
			results[i] = fileResult{name: name, err: err}
		}
	}
	wg.Wait()

	ok := true
	for _, r := range results {
		printVerdict(w, r.name, r.verdict, r.err)
		if r.err != nil || r.verdict != text.Valid {
			ok = false
		}
	}
	return ok, nil
}

func printVerdict(w io.Writer, name string, v text.Verdict, err error) {
	switch {
	case err != nil:
		fmt.Fprintf(w, "%s: %s\n", name, invalidMark.Render(err.Error()))
	case v == text.Valid:
		fmt.Fprintf(w, "%s: %s\n", name, validMark)
	default:
		fmt.Fprintf(w, "%s: %s\n", name, invalidMark.Render(v.String()))
	}
}

func runEscape(w io.Writer, stdin io.Reader, args []string) error {
	var inputs [][]byte
	if len(args) == 0 {
		data, err := io.ReadAll(bufio.NewReader(stdin))
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		inputs = append(inputs, data)
	}
	for _, a := range args {
		inputs = append(inputs, []byte(a))
	}

	for _, in := range inputs {
		if err := text.Check(in, true); err != nil {
			return fmt.Errorf("escape: %w", err)
		}
		out, err := text.Escape(in)
		if err != nil {
			return fmt.Errorf("escape: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		text.Release(out)
		if err != nil {
			return err
		}
	}
	return nil
}

func runDate(w io.Writer, args []string, off *datetime.FixedOffset) error {
	if len(args) == 0 {
		return errors.InvalidInput(errors.PhaseCLI, "date needs at least one epoch millisecond value")
	}
	for _, a := range args {
		ms, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return errors.Wrap(errors.PhaseCLI, errors.KindInvalidInput, err, fmt.Sprintf("parse %q", a))
		}
		in, err := datetime.Localize(ms, off)
		if err != nil {
			return fmt.Errorf("date %d: %w", ms, err)
		}
		fmt.Fprintf(w, "%d\t%s\n", ms, in)
	}
	return nil
}

func runCalendar(w io.Writer, args []string) error {
	if len(args) == 0 {
		return errors.InvalidInput(errors.PhaseCLI, "calendar needs at least one RFC 3339 timestamp")
	}
	for _, a := range args {
		t, err := time.Parse(time.RFC3339Nano, a)
		if err != nil {
			return errors.Wrap(errors.PhaseCLI, errors.KindInvalidInput, err, fmt.Sprintf("parse %q", a))
		}
		ms, err := datetime.EpochMillis(t)
		if err != nil {
			return fmt.Errorf("calendar %s: %w", a, err)
		}
		fmt.Fprintf(w, "%s\t%d\n", a, ms)
	}
	return nil
}

// runGuest instantiates a core wasm module with WASI and the bson host
// module, then calls one export with integer arguments.
func runGuest(ctx context.Context, w io.Writer, args []string) error {
	if len(args) == 0 {
		return errors.InvalidInput(errors.PhaseCLI, "run needs a wasm file")
	}
	file, funcName, params := args[0], "_start", args[1:]
	if len(params) > 0 {
		funcName, params = params[0], params[1:]
	}

	wasm, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	if _, err := wasmhost.Instantiate(ctx, rt); err != nil {
		return err
	}

	cfg := wazero.NewModuleConfig().
		WithStdout(w).
		WithStderr(os.Stderr).
		WithArgs(file).
		WithStartFunctions()
	mod, err := rt.InstantiateWithConfig(ctx, wasm, cfg)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer mod.Close(ctx)

	fn := mod.ExportedFunction(funcName)
	if fn == nil {
		return errors.InvalidInput(errors.PhaseCLI, fmt.Sprintf("%s does not export %q", file, funcName))
	}
	def := fn.Definition()
	stack, err := encodeParams(def.ParamTypes(), params)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}

	results, err := fn.Call(ctx, stack...)
	var exit *sys.ExitError
	if stderrors.As(err, &exit) && exit.ExitCode() == 0 {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}

	for i, t := range def.ResultTypes() {
		fmt.Fprintln(w, formatValue(t, results[i]))
	}
	return nil
}

func encodeParams(types []api.ValueType, args []string) ([]uint64, error) {
	if len(args) != len(types) {
		return nil, errors.InvalidInput(errors.PhaseCLI,
			fmt.Sprintf("want %d arguments, got %d", len(types), len(args)))
	}
	stack := make([]uint64, len(args))
	for i, a := range args {
		switch types[i] {
		case api.ValueTypeI32:
			v, err := strconv.ParseInt(a, 0, 32)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseCLI, errors.KindInvalidInput, err, fmt.Sprintf("argument %d", i))
			}
			stack[i] = api.EncodeI32(int32(v))
		case api.ValueTypeI64:
			v, err := strconv.ParseInt(a, 0, 64)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseCLI, errors.KindInvalidInput, err, fmt.Sprintf("argument %d", i))
			}
			stack[i] = api.EncodeI64(v)
		default:
			return nil, errors.InvalidInput(errors.PhaseCLI,
				fmt.Sprintf("argument %d has unsupported type %s", i, api.ValueTypeName(types[i])))
		}
	}
	return stack, nil
}

func formatValue(t api.ValueType, v uint64) string {
	switch t {
	case api.ValueTypeI32:
		return strconv.Itoa(int(api.DecodeI32(v)))
	case api.ValueTypeI64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return fmt.Sprintf("%#x", v)
	}
}
