package main

import (
	"github.com/rasterlang/raster"
)

// registerGenerators installs the example pipeline generators.
func registerGenerators(registry *raster.GeneratorRegistry) error {
	if err := registry.Register("gradient", newGradientGenerator); err != nil {
		return err
	}
	if err := registry.Register("blur3", newBlur3Generator); err != nil {
		return err
	}
	return registry.Register("checker", newCheckerGenerator)
}

func i32Var(name string) raster.Expr {
	return raster.NewVarExpr(raster.Int(32), name)
}

func binary(op raster.BinaryOp, a, b raster.Expr) raster.Expr {
	return raster.NewBinaryExpr(op, a, b)
}

// gradientGenerator builds a diagonal intensity gradient: the pixel value
// rises from 0 at the origin to 255 at the far corner.
type gradientGenerator struct {
	width  int64
	height int64
}

func newGradientGenerator(params raster.GeneratorParams) (raster.Generator, error) {
	width, err := params.Int("width", 256, 2, 1<<20)
	if err != nil {
		return nil, err
	}
	height, err := params.Int("height", 256, 2, 1<<20)
	if err != nil {
		return nil, err
	}
	return &gradientGenerator{width: width, height: height}, nil
}

func (g *gradientGenerator) Build() (raster.Expr, error) {
	x, y := i32Var("x"), i32Var("y")
	gx := binary(raster.DIV, binary(raster.MUL, x, raster.NewInt(255)), raster.NewInt(g.width-1))
	gy := binary(raster.DIV, binary(raster.MUL, y, raster.NewInt(255)), raster.NewInt(g.height-1))
	return binary(raster.DIV, binary(raster.ADD, gx, gy), raster.NewInt(2)), nil
}

// blur3Generator builds a three-tap box blur over an input row accessed
// through the impure "load" call, which the simplifier must treat as a
// barrier.
type blur3Generator struct {
	normalize bool
}

func newBlur3Generator(params raster.GeneratorParams) (raster.Generator, error) {
	normalize, err := params.Bool("normalize", true)
	if err != nil {
		return nil, err
	}
	return &blur3Generator{normalize: normalize}, nil
}

func (g *blur3Generator) Build() (raster.Expr, error) {
	x := i32Var("x")
	load := func(at raster.Expr) raster.Expr {
		return raster.NewCallExpr(raster.Int(32), "load", []raster.Expr{at}, false)
	}
	sum := binary(raster.ADD,
		binary(raster.ADD,
			load(binary(raster.SUB, x, raster.NewInt(1))),
			load(x)),
		load(binary(raster.ADD, x, raster.NewInt(1))))
	if !g.normalize {
		return sum, nil
	}
	return binary(raster.DIV, sum, raster.NewInt(3)), nil
}

// checkerGenerator builds a checkerboard mask: cells of the given size
// alternate between 255 and 0.
type checkerGenerator struct {
	size int64
}

func newCheckerGenerator(params raster.GeneratorParams) (raster.Generator, error) {
	size, err := params.Int("size", 8, 1, 1<<16)
	if err != nil {
		return nil, err
	}
	return &checkerGenerator{size: size}, nil
}

func (g *checkerGenerator) Build() (raster.Expr, error) {
	x, y := i32Var("x"), i32Var("y")
	cell := binary(raster.ADD,
		binary(raster.DIV, x, raster.NewInt(g.size)),
		binary(raster.DIV, y, raster.NewInt(g.size)))
	even := binary(raster.EQ, binary(raster.MOD, cell, raster.NewInt(2)), raster.NewInt(0))
	return raster.NewSelectExpr(even, raster.NewInt(255), raster.NewInt(0)), nil
}
