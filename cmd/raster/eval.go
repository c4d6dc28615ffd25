package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rasterlang/raster"
	"github.com/rasterlang/raster/parse"
)

// EvalCommand parses an expression and evaluates it to a literal under
// the given variable bindings.
type EvalCommand struct{}

// NewEvalCommand returns a new instance of EvalCommand.
func NewEvalCommand() *EvalCommand {
	return &EvalCommand{}
}

// Run executes the "eval" subcommand.
func (cmd *EvalCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("raster-eval", flag.ContinueOnError)
	var binds bindFlags
	fs.Var(&binds, "set", "variable binding, name=value")
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

	ev := raster.NewEvaluator()
	for _, b := range binds {
		t, ok := result.Types[b.name]
		if !ok {
			return fmt.Errorf("-set: unknown variable %q", b.name)
		}
		lit, err := literalOf(t.Element(), b.value)
		if err != nil {
			return fmt.Errorf("-set %s: %w", b.name, err)
		}
		ev.Bind(b.name, lit)
	}

	if result.Expr.Type().IsVector() {
		lanes, err := ev.EvalLanes(result.Expr)
		if err != nil {
			return err
		}
		parts := make([]string, len(lanes))
		for i, lane := range lanes {
			parts[i] = fmt.Sprintf("%s", lane)
		}
		fmt.Printf("[%s]\n", strings.Join(parts, ", "))
		return nil
	}

	out, err := ev.Eval(result.Expr)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func (cmd *EvalCommand) usage() {
	fmt.Fprintln(os.Stderr, `
usage: raster eval [arguments] <expr|file|->

Arguments:

	-set name=value
	    Bind a declared variable to a literal value. Repeatable.
`[1:])
}

// literalOf parses a textual value as a literal of the scalar type t.
func literalOf(t raster.Type, s string) (raster.Expr, error) {
	switch {
	case t.IsBool():
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", s)
		}
		return raster.NewBool(v), nil
	case t.IsInt():
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		return raster.NewIntImm(t, v), nil
	case t.IsUInt():
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid unsigned integer %q", s)
		}
		return raster.NewUIntImm(t, v), nil
	case t.IsFloat():
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q", s)
		}
		return raster.NewFloatImm(t, v), nil
	default:
		return nil, fmt.Errorf("cannot bind a value of type %s", t)
	}
}

// bindFact is one parsed -set flag.
type bindFact struct {
	name, value string
}

// bindFlags collects repeated -set flags.
type bindFlags []bindFact

func (f *bindFlags) String() string {
	parts := make([]string, len(*f))
	for i, b := range *f {
		parts[i] = b.name + "=" + b.value
	}
	return strings.Join(parts, ",")
}

func (f *bindFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	*f = append(*f, bindFact{name: name, value: value})
	return nil
}
