package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rasterlang/raster"
)

// GenerateCommand instantiates a registered generator and simplifies the
// expression it builds.
type GenerateCommand struct{}

// NewGenerateCommand returns a new instance of GenerateCommand.
func NewGenerateCommand() *GenerateCommand {
	return &GenerateCommand{}
}

// Run executes the "generate" subcommand.
func (cmd *GenerateCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("raster-generate", flag.ContinueOnError)
	list := fs.Bool("list", false, "list registered generators")
	verbose := fs.Bool("v", false, "verbose")
	params := paramFlags{}
	fs.Var(&params, "p", "generator parameter, key=value")
	fs.Usage = cmd.usage
	if err := fs.Parse(args); err != nil {
		return err
	}

	log.SetFlags(0)
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	registry := raster.NewGeneratorRegistry()
	if err := registerGenerators(registry); err != nil {
		return err
	}
	defer func() {
		for _, name := range registry.Names() {
			registry.Unregister(name)
		}
	}()

	if *list {
		for _, name := range registry.Names() {
			fmt.Println(name)
		}
		return nil
	}

	if fs.NArg() == 0 {
		return fmt.Errorf("generator name required")
	} else if fs.NArg() > 1 {
		return fmt.Errorf("too many generators specified")
	}

	gen, err := registry.Create(fs.Arg(0), raster.GeneratorParams(params))
	if err != nil {
		return err
	}
	log.Printf("created generator %q with params %s", fs.Arg(0), params)
	expr, err := gen.Build()
	if err != nil {
		return err
	}

	simplified := raster.Simplify(expr, nil)
	color.New(color.Faint).Printf("%s\n", expr)
	if simplified == expr {
		fmt.Printf("%s\n", simplified)
	} else {
		color.New(color.FgGreen).Printf("%s\n", simplified)
	}
	return nil
}

func (cmd *GenerateCommand) usage() {
	fmt.Fprintln(os.Stderr, `
usage: raster generate [arguments] <name>

Arguments:

	-list
	    List the registered generators and exit.
	-p key=value
	    Pass a parameter to the generator. Repeatable.
	-v
	    Verbose output.
`[1:])
}

// paramFlags collects repeated -p key=value flags.
type paramFlags map[string]string

func (f paramFlags) String() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (f paramFlags) Set(s string) error {
	key, val, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	f[key] = val
	return nil
}
