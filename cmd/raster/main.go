package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err == flag.ErrHelp {
		os.Exit(1)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var cmd string
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "", "-h", "--help", "help":
		usage()
		return flag.ErrHelp
	case "simplify":
		return NewSimplifyCommand().Run(ctx, args)
	case "generate":
		return NewGenerateCommand().Run(ctx, args)
	case "eval":
		return NewEvalCommand().Run(ctx, args)
	default:
		return fmt.Errorf(`raster %s: unknown command`, cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `
Raster is a tool for working with raster pipeline expressions.

Usage:

	raster <command> [arguments]

The commands are:

	simplify    parse and simplify an expression
	generate    build and simplify a registered generator
	eval        evaluate an expression under variable bindings
	help        this screen
`[1:])
}

// readSource resolves an expression argument: "-" reads stdin, the path
// of an existing file reads that file, and anything else is taken as the
// source text itself.
func readSource(arg string) (filename, src string, err error) {
	if arg == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return "stdin", string(b), nil
	}
	if st, err := os.Stat(arg); err == nil && !st.IsDir() {
		b, err := os.ReadFile(arg)
		if err != nil {
			return "", "", err
		}
		return arg, string(b), nil
	}
	return "", arg, nil
}
