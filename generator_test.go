package raster_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rasterlang/raster"
)

// scaleStage builds a strided index expression for a pipeline stage.
type scaleStage struct {
	scale int64
}

func (g *scaleStage) Build() (raster.Expr, error) {
	x := raster.NewVarExpr(raster.Int(32), "x")
	return raster.NewBinaryExpr(raster.MUL, x, raster.NewInt(g.scale)), nil
}

func newScaleStage(params raster.GeneratorParams) (raster.Generator, error) {
	scale, err := params.Int("scale", 1, 1, 16)
	if err != nil {
		return nil, err
	}
	return &scaleStage{scale: scale}, nil
}

func TestGeneratorRegistry(t *testing.T) {
	t.Run("RegisterAndCreate", func(t *testing.T) {
		r := raster.NewGeneratorRegistry()
		if err := r.Register("scale", newScaleStage); err != nil {
			t.Fatal(err)
		}
		g, err := r.Create("scale", raster.GeneratorParams{"scale": "4"})
		if err != nil {
			t.Fatal(err)
		}
		e, err := g.Build()
		if err != nil {
			t.Fatal(err)
		} else if got := e.String(); got != "(x * 4)" {
			t.Fatalf("unexpected expression: %s", got)
		}
	})
	t.Run("DefaultParams", func(t *testing.T) {
		r := raster.NewGeneratorRegistry()
		if err := r.Register("scale", newScaleStage); err != nil {
			t.Fatal(err)
		}
		g, err := r.Create("scale", nil)
		if err != nil {
			t.Fatal(err)
		}
		e, err := g.Build()
		if err != nil {
			t.Fatal(err)
		} else if got := e.String(); got != "(x * 1)" {
			t.Fatalf("unexpected expression: %s", got)
		}
	})
	t.Run("FactoryRejectsParams", func(t *testing.T) {
		r := raster.NewGeneratorRegistry()
		if err := r.Register("scale", newScaleStage); err != nil {
			t.Fatal(err)
		}
		if _, err := r.Create("scale", raster.GeneratorParams{"scale": "99"}); !errors.Is(err, raster.ErrInvalidParam) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("DuplicateRegister", func(t *testing.T) {
		r := raster.NewGeneratorRegistry()
		if err := r.Register("scale", newScaleStage); err != nil {
			t.Fatal(err)
		}
		if err := r.Register("scale", newScaleStage); !errors.Is(err, raster.ErrGeneratorExists) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("EmptyName", func(t *testing.T) {
		r := raster.NewGeneratorRegistry()
		if err := r.Register("", newScaleStage); !errors.Is(err, raster.ErrInvalidParam) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("CreateUnknown", func(t *testing.T) {
		r := raster.NewGeneratorRegistry()
		if err := r.Register("blur", newScaleStage); err != nil {
			t.Fatal(err)
		} else if err := r.Register("scale", newScaleStage); err != nil {
			t.Fatal(err)
		}
		_, err := r.Create("sharpen", nil)
		if !errors.Is(err, raster.ErrGeneratorNotFound) {
			t.Fatalf("unexpected error: %v", err)
		} else if !strings.Contains(err.Error(), "blur, scale") {
			t.Fatalf("expected registered names in error, got: %v", err)
		}
	})
	t.Run("CreateUnknownEmptyRegistry", func(t *testing.T) {
		r := raster.NewGeneratorRegistry()
		if _, err := r.Create("scale", nil); !errors.Is(err, raster.ErrGeneratorNotFound) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("Unregister", func(t *testing.T) {
		r := raster.NewGeneratorRegistry()
		if err := r.Register("scale", newScaleStage); err != nil {
			t.Fatal(err)
		}
		r.Unregister("scale")
		if _, err := r.Create("scale", nil); !errors.Is(err, raster.ErrGeneratorNotFound) {
			t.Fatalf("unexpected error: %v", err)
		}
		r.Unregister("scale") // unknown names are ignored
	})
	t.Run("NamesSorted", func(t *testing.T) {
		r := raster.NewGeneratorRegistry()
		for _, name := range []string{"blur", "sharpen", "downsample"} {
			if err := r.Register(name, newScaleStage); err != nil {
				t.Fatal(err)
			}
		}
		if diff := cmp.Diff(r.Names(), []string{"blur", "downsample", "sharpen"}); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestGeneratorParams(t *testing.T) {
	t.Run("Int", func(t *testing.T) {
		params := raster.GeneratorParams{"radius": "3", "hex": "0x10", "bad": "three", "big": "100"}
		if v, err := params.Int("radius", 1, 0, 8); err != nil {
			t.Fatal(err)
		} else if v != 3 {
			t.Fatalf("unexpected value: %d", v)
		}
		if v, err := params.Int("hex", 1, 0, 64); err != nil {
			t.Fatal(err)
		} else if v != 16 {
			t.Fatalf("unexpected value: %d", v)
		}
		if v, err := params.Int("absent", 7, 0, 8); err != nil {
			t.Fatal(err)
		} else if v != 7 {
			t.Fatalf("unexpected value: %d", v)
		}
		if _, err := params.Int("bad", 1, 0, 8); !errors.Is(err, raster.ErrInvalidParam) {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := params.Int("big", 1, 0, 8); !errors.Is(err, raster.ErrInvalidParam) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("Uint", func(t *testing.T) {
		params := raster.GeneratorParams{"lanes": "8", "neg": "-1"}
		if v, err := params.Uint("lanes", 1); err != nil {
			t.Fatal(err)
		} else if v != 8 {
			t.Fatalf("unexpected value: %d", v)
		}
		if v, err := params.Uint("absent", 4); err != nil {
			t.Fatal(err)
		} else if v != 4 {
			t.Fatalf("unexpected value: %d", v)
		}
		if _, err := params.Uint("neg", 1); !errors.Is(err, raster.ErrInvalidParam) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("Bool", func(t *testing.T) {
		params := raster.GeneratorParams{"vectorize": "true", "unroll": "1", "bad": "yes please"}
		if v, err := params.Bool("vectorize", false); err != nil {
			t.Fatal(err)
		} else if !v {
			t.Fatal("expected true")
		}
		if v, err := params.Bool("unroll", false); err != nil {
			t.Fatal(err)
		} else if !v {
			t.Fatal("expected true")
		}
		if v, err := params.Bool("absent", true); err != nil {
			t.Fatal(err)
		} else if !v {
			t.Fatal("expected default")
		}
		if _, err := params.Bool("bad", false); !errors.Is(err, raster.ErrInvalidParam) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("String", func(t *testing.T) {
		params := raster.GeneratorParams{"name": "blur_x"}
		if v := params.String("name", "stage"); v != "blur_x" {
			t.Fatalf("unexpected value: %s", v)
		}
		if v := params.String("absent", "stage"); v != "stage" {
			t.Fatalf("unexpected value: %s", v)
		}
	})
}
