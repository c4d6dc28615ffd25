package raster_test

import (
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/rasterlang/raster"
	"github.com/rasterlang/raster/parse"
)

// TestSimplify_Corpus runs every case in the golden corpora under
// testdata/simplify. Each archive may carry a "decls" section shared by
// all of its cases; etc/regen rewrites the expect sections after rule
// changes.
func TestSimplify_Corpus(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "simplify", "*.txt"))
	if err != nil {
		t.Fatal(err)
	} else if len(paths) == 0 {
		t.Fatal("no corpora under testdata/simplify")
	}

	for _, path := range paths {
		t.Run(strings.TrimSuffix(filepath.Base(path), ".txt"), func(t *testing.T) {
			archive, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatal(err)
			}

			var decls string
			expects := make(map[string]string)
			for _, f := range archive.Files {
				switch {
				case f.Name == "decls":
					decls = string(f.Data)
				case strings.HasPrefix(f.Name, "case/") && strings.HasSuffix(f.Name, "/expect"):
					name := strings.TrimSuffix(strings.TrimPrefix(f.Name, "case/"), "/expect")
					expects[name] = string(f.Data)
				}
			}

			for _, f := range archive.Files {
				if !strings.HasPrefix(f.Name, "case/") || !strings.HasSuffix(f.Name, "/input") {
					continue
				}
				name := strings.TrimSuffix(strings.TrimPrefix(f.Name, "case/"), "/input")
				src := decls + string(f.Data)
				t.Run(name, func(t *testing.T) {
					expect, ok := expects[name]
					if !ok {
						t.Fatal("missing expect section")
					}
					result, err := parse.Parse(f.Name, src)
					if err != nil {
						t.Fatal(err)
					}
					got := raster.Simplify(result.Expr, result.Scope).String() + "\n"
					if got != expect {
						t.Fatalf("got %s, want %s", strings.TrimSpace(got), strings.TrimSpace(expect))
					}
				})
			}
		})
	}
}
