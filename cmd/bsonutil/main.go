package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/bsoncodec/datetime"
	"github.com/wippyai/bsoncodec/memory"
	"github.com/wippyai/bsoncodec/wasmhost"
)

func main() {
	var (
		mode        = flag.String("mode", "validate", "Operation: validate, escape, date, calendar, run")
		allowNul    = flag.Bool("allow-nul", false, "Accept NUL bytes when validating")
		offset      = flag.Int("offset", 0, "Fixed UTC offset in minutes for date output")
		tzName      = flag.String("tz", "", "Display name for -offset")
		workers     = flag.Int("workers", runtime.NumCPU(), "Concurrent file validations")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Usage = usage
	flag.Parse()

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	memory.SetLogger(log)
	wasmhost.SetLogger(log)

	off, err := resolveOffset(*offset, *tzName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if *interactive || (len(args) == 0 && *mode == "validate" && term.IsTerminal(int(os.Stdin.Fd()))) {
		if err := runInteractive(*allowNul, off); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ok, err := run(context.Background(), log, *mode, args, options{
		allowNul: *allowNul,
		offset:   off,
		workers:  *workers,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: bsonutil [-allow-nul] [-workers n] FILE...       validate files (stdin when none)")
	fmt.Fprintln(os.Stderr, "       bsonutil -mode escape [STRING]                    escape quotes and backslashes")
	fmt.Fprintln(os.Stderr, "       bsonutil -mode date [-offset m -tz name] MS...    epoch milliseconds to calendar")
	fmt.Fprintln(os.Stderr, "       bsonutil -mode calendar RFC3339...                calendar to epoch milliseconds")
	fmt.Fprintln(os.Stderr, "       bsonutil -mode run FILE.wasm [FUNC [ARG...]]      call a guest linked to the bson host module")
	fmt.Fprintln(os.Stderr, "       bsonutil -i                                       interactive mode")
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// resolveOffset returns nil when no offset was requested.
func resolveOffset(minutes int, name string) (*datetime.FixedOffset, error) {
	switch {
	case minutes == 0 && name == "":
		return nil, nil
	case minutes == 0 && name == "UTC":
		return datetime.UTC(), nil
	}
	off, err := datetime.NewFixedOffset(datetime.Minutes(minutes), name)
	if err != nil {
		return nil, fmt.Errorf("offset: %w", err)
	}
	return off, nil
}
