package raster_test

import (
	"testing"

	"github.com/rasterlang/raster"
)

func TestSimplify_EQ(t *testing.T) {
	x := raster.NewVarExpr(raster.Int(32), "x")
	y := raster.NewVarExpr(raster.Int(32), "y")
	c := raster.NewVarExpr(raster.Bool(), "c")
	eq := func(a, b raster.Expr) raster.Expr { return raster.NewBinaryExpr(raster.EQ, a, b) }

	t.Run("FoldTrue", func(t *testing.T) {
		requireSimplify(t, eq(raster.NewInt(3), raster.NewInt(3)), "true")
	})
	t.Run("FoldFalse", func(t *testing.T) {
		requireSimplify(t, eq(raster.NewInt(3), raster.NewInt(4)), "false")
	})
	t.Run("SelfEqual", func(t *testing.T) {
		requireSimplify(t, eq(x, x), "true")
	})
	t.Run("CanonicalDelta", func(t *testing.T) {
		requireSimplify(t, eq(raster.NewBinaryExpr(raster.ADD, x, raster.NewInt(5)), raster.NewInt(0)),
			"(x == -5)")
	})
	t.Run("SubShape", func(t *testing.T) {
		requireSimplify(t, eq(raster.NewBinaryExpr(raster.SUB, raster.NewInt(10), x), raster.NewInt(0)),
			"(x == 10)")
	})
	t.Run("ConstRight", func(t *testing.T) {
		requireSimplify(t, eq(x, raster.NewInt(5)), "(x == 5)")
	})
	t.Run("ConstLeft", func(t *testing.T) {
		requireSimplify(t, eq(raster.NewInt(5), x), "(x == 5)")
	})
	t.Run("BoundsDisprove", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(1, 10)})
		requireSimplifyScoped(t, eq(x, raster.NewInt(0)), scope, "false")
	})
	t.Run("AlignmentDisprove", func(t *testing.T) {
		e := eq(raster.NewBinaryExpr(raster.ADD,
			raster.NewBinaryExpr(raster.MUL, x, raster.NewInt(4)),
			raster.NewInt(1)), raster.NewInt(0))
		requireSimplify(t, e, "false")
	})
	t.Run("FactorZeroProduct", func(t *testing.T) {
		requireSimplify(t, eq(raster.NewBinaryExpr(raster.MUL, x, y), raster.NewInt(0)),
			"((x == 0) || (y == 0))")
	})
	t.Run("UIntFactorGated", func(t *testing.T) {
		// Splitting x*y == 0 is unsound when the product can wrap back
		// onto zero.
		u := raster.NewVarExpr(raster.UInt(8), "x")
		v := raster.NewVarExpr(raster.UInt(8), "y")
		requireSimplify(t, eq(raster.NewBinaryExpr(raster.MUL, u, v), raster.NewUIntImm(raster.UInt(8), 0)),
			"((x * y) == u8(0))")
	})
	t.Run("Broadcast", func(t *testing.T) {
		requireSimplify(t, eq(raster.NewBroadcastExpr(x, 4), raster.NewBroadcastExpr(raster.NewInt(5), 4)),
			"broadcast((x == 5), 4)")
	})
	t.Run("SelectZeroBranch", func(t *testing.T) {
		e := eq(raster.NewSelectExpr(c, raster.NewInt(0), y), raster.NewInt(0))
		requireSimplify(t, e, "(c || (y == 0))")
	})
	t.Run("SelectNonZeroBranch", func(t *testing.T) {
		e := eq(raster.NewSelectExpr(c, raster.NewInt(5), y), raster.NewInt(0))
		requireSimplify(t, e, "(!c && (y == 0))")
	})
	t.Run("BoolTrueOperand", func(t *testing.T) {
		requireSimplify(t, eq(c, raster.NewBool(true)), "c")
	})
	t.Run("BoolFalseOperand", func(t *testing.T) {
		requireSimplify(t, eq(c, raster.NewBool(false)), "!c")
	})
	t.Run("BoolVars", func(t *testing.T) {
		d := raster.NewVarExpr(raster.Bool(), "d")
		requireSimplify(t, eq(c, d), "(c == d)")
	})
	t.Run("HandleStrings", func(t *testing.T) {
		requireSimplify(t, eq(raster.NewStringImm("a"), raster.NewStringImm("a")), "true")
		requireSimplify(t, eq(raster.NewStringImm("a"), raster.NewStringImm("b")), "false")
	})
}

func TestSimplify_NE(t *testing.T) {
	x := raster.NewVarExpr(raster.Int(32), "x")
	y := raster.NewVarExpr(raster.Int(32), "y")
	ne := func(a, b raster.Expr) raster.Expr { return raster.NewBinaryExpr(raster.NE, a, b) }

	t.Run("Fold", func(t *testing.T) {
		requireSimplify(t, ne(raster.NewInt(3), raster.NewInt(4)), "true")
	})
	t.Run("SelfNotEqual", func(t *testing.T) {
		requireSimplify(t, ne(x, x), "false")
	})
	t.Run("Untouched", func(t *testing.T) {
		requireSimplify(t, ne(x, y), "(x != y)")
	})
	t.Run("CanonicalDelta", func(t *testing.T) {
		requireSimplify(t, ne(raster.NewBinaryExpr(raster.ADD, x, raster.NewInt(1)), raster.NewInt(1)),
			"(x != 0)")
	})
}

func TestSimplify_LT(t *testing.T) {
	x := raster.NewVarExpr(raster.Int(32), "x")
	y := raster.NewVarExpr(raster.Int(32), "y")
	lt := func(a, b raster.Expr) raster.Expr { return raster.NewBinaryExpr(raster.LT, a, b) }

	t.Run("FoldTrue", func(t *testing.T) {
		requireSimplify(t, lt(raster.NewInt(3), raster.NewInt(5)), "true")
	})
	t.Run("FoldFalse", func(t *testing.T) {
		requireSimplify(t, lt(raster.NewInt(5), raster.NewInt(3)), "false")
	})
	t.Run("FoldEqual", func(t *testing.T) {
		requireSimplify(t, lt(raster.NewInt(3), raster.NewInt(3)), "false")
	})
	t.Run("SelfFalse", func(t *testing.T) {
		requireSimplify(t, lt(x, x), "false")
	})
	t.Run("ShiftConstant", func(t *testing.T) {
		requireSimplify(t, lt(raster.NewBinaryExpr(raster.ADD, x, raster.NewInt(1)), raster.NewInt(5)),
			"(x < 4)")
	})
	t.Run("ShiftConstantLeft", func(t *testing.T) {
		requireSimplify(t, lt(raster.NewInt(5), raster.NewBinaryExpr(raster.ADD, x, raster.NewInt(1))),
			"(4 < x)")
	})
	t.Run("DropCommonLeft", func(t *testing.T) {
		requireSimplify(t, lt(x, raster.NewBinaryExpr(raster.ADD, x, y)), "(0 < y)")
	})
	t.Run("DropCommonRight", func(t *testing.T) {
		requireSimplify(t, lt(raster.NewBinaryExpr(raster.ADD, x, y), x), "(y < 0)")
	})
	t.Run("BoundsTrue", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(0, 10)})
		requireSimplifyScoped(t, lt(x, raster.NewInt(20)), scope, "true")
	})
	t.Run("BoundsFalse", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(0, 10)})
		requireSimplifyScoped(t, lt(x, raster.NewInt(0)), scope, "false")
	})
	t.Run("UIntShiftGated", func(t *testing.T) {
		// Shifting a constant across + can flip a wrapped comparison.
		u := raster.NewVarExpr(raster.UInt(8), "x")
		e := lt(raster.NewBinaryExpr(raster.ADD, u, raster.NewUIntImm(raster.UInt(8), 1)), raster.NewUIntImm(raster.UInt(8), 5))
		requireSimplify(t, e, "((x + u8(1)) < u8(5))")
	})
	t.Run("Broadcast", func(t *testing.T) {
		requireSimplify(t, lt(raster.NewBroadcastExpr(x, 4), raster.NewBroadcastExpr(y, 4)),
			"broadcast((x < y), 4)")
	})
	t.Run("BroadcastBounds", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(0, 10)})
		e := lt(raster.NewBroadcastExpr(x, 4), raster.NewBroadcastExpr(raster.NewInt(20), 4))
		requireSimplifyScoped(t, e, scope, "broadcast(true, 4)")
	})
}

func TestSimplify_DerivedCompares(t *testing.T) {
	x := raster.NewVarExpr(raster.Int(32), "x")
	y := raster.NewVarExpr(raster.Int(32), "y")

	t.Run("GTFold", func(t *testing.T) {
		requireSimplify(t, raster.NewBinaryExpr(raster.GT, raster.NewInt(5), raster.NewInt(3)), "true")
	})
	t.Run("GTSelf", func(t *testing.T) {
		requireSimplify(t, raster.NewBinaryExpr(raster.GT, x, x), "false")
	})
	t.Run("GTRestored", func(t *testing.T) {
		requireSimplify(t, raster.NewBinaryExpr(raster.GT, x, raster.NewInt(5)), "(x > 5)")
	})
	t.Run("GTShift", func(t *testing.T) {
		e := raster.NewBinaryExpr(raster.GT,
			raster.NewBinaryExpr(raster.ADD, x, raster.NewInt(1)), raster.NewInt(5))
		requireSimplify(t, e, "(4 < x)")
	})
	t.Run("GTBounds", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(0, 10)})
		requireSimplifyScoped(t, raster.NewBinaryExpr(raster.GT, raster.NewInt(20), x), scope, "true")
	})
	t.Run("LEFold", func(t *testing.T) {
		requireSimplify(t, raster.NewBinaryExpr(raster.LE, raster.NewInt(3), raster.NewInt(5)), "true")
	})
	t.Run("LESelf", func(t *testing.T) {
		requireSimplify(t, raster.NewBinaryExpr(raster.LE, x, x), "true")
	})
	t.Run("LERestored", func(t *testing.T) {
		requireSimplify(t, raster.NewBinaryExpr(raster.LE, x, y), "(x <= y)")
	})
	t.Run("LEShift", func(t *testing.T) {
		e := raster.NewBinaryExpr(raster.LE,
			raster.NewBinaryExpr(raster.ADD, x, raster.NewInt(1)), raster.NewInt(5))
		requireSimplify(t, e, "(x <= 4)")
	})
	t.Run("GEFold", func(t *testing.T) {
		requireSimplify(t, raster.NewBinaryExpr(raster.GE, raster.NewInt(3), raster.NewInt(5)), "false")
	})
	t.Run("GESelf", func(t *testing.T) {
		requireSimplify(t, raster.NewBinaryExpr(raster.GE, x, x), "true")
	})
	t.Run("GERestored", func(t *testing.T) {
		requireSimplify(t, raster.NewBinaryExpr(raster.GE, x, y), "(x >= y)")
	})
	t.Run("GEBounds", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(0, 10)})
		requireSimplifyScoped(t, raster.NewBinaryExpr(raster.GE, x, raster.NewInt(0)), scope, "true")
	})
}
