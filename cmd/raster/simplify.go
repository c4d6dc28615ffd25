package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/rasterlang/raster"
	"github.com/rasterlang/raster/parse"
)

// SimplifyCommand parses an expression, simplifies it, and prints the
// result.
type SimplifyCommand struct{}

// NewSimplifyCommand returns a new instance of SimplifyCommand.
func NewSimplifyCommand() *SimplifyCommand {
	return &SimplifyCommand{}
}

// Run executes the "simplify" subcommand.
func (cmd *SimplifyCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("raster-simplify", flag.ContinueOnError)
	var aligns alignFlags
	fs.Var(&aligns, "align", "alignment fact, name=modulus:remainder")
	showBounds := fs.Bool("bounds", false, "print the result's derived interval")
	debug := fs.Bool("debug", false, "dump expression trees")
	fs.Usage = cmd.usage
	if err := fs.Parse(args); err != nil {
		return err
	} else if fs.NArg() == 0 {
		return fmt.Errorf("expression required")
	} else if fs.NArg() > 1 {
		return fmt.Errorf("too many expressions specified")
	}

	filename, src, err := readSource(fs.Arg(0))
	if err != nil {
		return err
	}

	result, err := parse.Parse(filename, src)
	if err != nil {
		parse.RenderError(os.Stderr, src, err)
		return fmt.Errorf("parse failed")
	}

	for _, a := range aligns {
		if _, ok := result.Types[a.name]; !ok {
			return fmt.Errorf("-align: unknown variable %q", a.name)
		}
		info, ok := result.Scope.Get(a.name)
		if !ok {
			info = raster.VarInfo{Align: raster.NoAlignment()}
		}
		info.Align = raster.ModulusRemainder{Modulus: a.mod, Remainder: a.rem}
		result.Scope.Push(a.name, info)
	}

	simplified := raster.Simplify(result.Expr, result.Scope)

	if *debug {
		spew.Fdump(os.Stderr, result.Expr)
		spew.Fdump(os.Stderr, simplified)
	}

	color.New(color.Faint).Printf("%s\n", result.Expr)
	if simplified == result.Expr {
		fmt.Printf("%s\n", simplified)
	} else {
		color.New(color.FgGreen).Printf("%s\n", simplified)
	}

	if *showBounds {
		fmt.Printf("bounds: %s\n", formatBounds(raster.BoundsOf(simplified, result.Scope)))
	}
	return nil
}

func (cmd *SimplifyCommand) usage() {
	fmt.Fprintln(os.Stderr, `
usage: raster simplify [arguments] <expr|file|->

Arguments:

	-align name=modulus:remainder
	    Declare a congruence fact for a variable. Repeatable.
	-bounds
	    Print the interval derived for the simplified expression.
	-debug
	    Dump the expression trees before and after simplification.
`[1:])
}

func formatBounds(b raster.ConstBounds) string {
	min, max := "?", "?"
	if b.MinDefined {
		min = strconv.FormatInt(b.Min, 10)
	}
	if b.MaxDefined {
		max = strconv.FormatInt(b.Max, 10)
	}
	return "[" + min + ", " + max + "]"
}

// alignFact is one parsed -align flag.
type alignFact struct {
	name     string
	mod, rem int64
}

// alignFlags collects repeated -align flags.
type alignFlags []alignFact

func (f *alignFlags) String() string {
	parts := make([]string, len(*f))
	for i, a := range *f {
		parts[i] = fmt.Sprintf("%s=%d:%d", a.name, a.mod, a.rem)
	}
	return strings.Join(parts, ",")
}

func (f *alignFlags) Set(s string) error {
	name, rest, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=modulus:remainder, got %q", s)
	}
	modStr, remStr, ok := strings.Cut(rest, ":")
	if !ok {
		return fmt.Errorf("expected name=modulus:remainder, got %q", s)
	}
	mod, err := strconv.ParseInt(modStr, 10, 64)
	if err != nil || mod < 1 {
		return fmt.Errorf("invalid modulus %q", modStr)
	}
	rem, err := strconv.ParseInt(remStr, 10, 64)
	if err != nil || rem < 0 || rem >= mod {
		return fmt.Errorf("invalid remainder %q for modulus %d", remStr, mod)
	}
	*f = append(*f, alignFact{name: name, mod: mod, rem: rem})
	return nil
}
