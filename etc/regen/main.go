// Command regen re-simplifies every case in the golden simplifier
// corpora and rewrites their expect sections in place. Run it after
// changing rewrite rules, then review the diff.
//
// Corpus format: txtar archives with an optional "decls" section that is
// prepended to every case, then "case/<name>/input" and
// "case/<name>/expect" pairs.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/txtar"

	"github.com/rasterlang/raster"
	"github.com/rasterlang/raster/parse"
)

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("raster-regen", flag.ContinueOnError)
	dir := fs.String("dir", "testdata/simplify", "corpus directory")
	verbose := fs.Bool("v", false, "log each regenerated case")
	if err := fs.Parse(args); err != nil {
		return err
	}

	paths, err := filepath.Glob(filepath.Join(*dir, "*.txt"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no corpora under %s", *dir)
	}

	for _, path := range paths {
		if err := regenerate(path, *verbose); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func regenerate(path string, verbose bool) error {
	archive, err := txtar.ParseFile(path)
	if err != nil {
		return err
	}

	var decls string
	for i := range archive.Files {
		f := &archive.Files[i]
		switch {
		case f.Name == "decls":
			decls = string(f.Data)
		case strings.HasPrefix(f.Name, "case/") && strings.HasSuffix(f.Name, "/input"):
			name := strings.TrimSuffix(strings.TrimPrefix(f.Name, "case/"), "/input")
			result, err := parse.Parse(f.Name, decls+string(f.Data))
			if err != nil {
				return fmt.Errorf("case %s: %w", name, err)
			}
			expect := raster.Simplify(result.Expr, result.Scope).String() + "\n"
			target := "case/" + name + "/expect"
			if !setFile(archive, target, expect) {
				archive.Files = append(archive.Files, txtar.File{Name: target, Data: []byte(expect)})
			}
			if verbose {
				log.Printf("%s: %s => %s", path, name, strings.TrimSpace(expect))
			}
		}
	}

	return os.WriteFile(path, txtar.Format(archive), 0644)
}

// setFile replaces the named archive section, reporting whether it was
// present.
func setFile(archive *txtar.Archive, name, data string) bool {
	for i := range archive.Files {
		if archive.Files[i].Name == name {
			archive.Files[i].Data = []byte(data)
			return true
		}
	}
	return false
}
