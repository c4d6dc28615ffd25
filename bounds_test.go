package raster_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rasterlang/raster"
)

// interval builds the closed interval [lo, hi].
func interval(lo, hi int64) raster.ConstBounds {
	return raster.ConstBounds{Min: lo, Max: hi, MinDefined: true, MaxDefined: true}
}

// boundsScope builds a scope binding each named variable to an interval.
func boundsScope(vars map[string]raster.ConstBounds) *raster.Scope {
	scope := raster.NewScope()
	for name, b := range vars {
		scope.Push(name, raster.VarInfo{Align: raster.NoAlignment(), Bounds: b})
	}
	return scope
}

func TestBoundsOf(t *testing.T) {
	x := raster.NewVarExpr(raster.Int(32), "x")
	y := raster.NewVarExpr(raster.Int(32), "y")

	t.Run("IntImm", func(t *testing.T) {
		got := raster.BoundsOf(raster.NewInt(5), nil)
		if diff := cmp.Diff(got, interval(5, 5)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("UIntImm", func(t *testing.T) {
		got := raster.BoundsOf(raster.NewUIntImm(raster.UInt(8), 200), nil)
		if diff := cmp.Diff(got, interval(200, 200)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("FloatUndefined", func(t *testing.T) {
		got := raster.BoundsOf(raster.NewFloatImm(raster.Float(64), 1.5), nil)
		if diff := cmp.Diff(got, raster.ConstBounds{}); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("Var", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(2, 8)})
		got := raster.BoundsOf(x, scope)
		if diff := cmp.Diff(got, interval(2, 8)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("UnboundVar", func(t *testing.T) {
		got := raster.BoundsOf(x, nil)
		if diff := cmp.Diff(got, raster.ConstBounds{}); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("Add", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(0, 10)})
		got := raster.BoundsOf(raster.NewBinaryExpr(raster.ADD, x, raster.NewInt(5)), scope)
		if diff := cmp.Diff(got, interval(5, 15)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Sub", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{
			"x": interval(0, 10),
			"y": interval(2, 8),
		})
		got := raster.BoundsOf(raster.NewBinaryExpr(raster.SUB, x, y), scope)
		if diff := cmp.Diff(got, interval(-8, 8)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("MulCorners", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{
			"x": interval(-3, 5),
			"y": interval(-2, 4),
		})
		got := raster.BoundsOf(raster.NewBinaryExpr(raster.MUL, x, y), scope)
		if diff := cmp.Diff(got, interval(-12, 20)); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("Div", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(10, 20)})
		got := raster.BoundsOf(raster.NewBinaryExpr(raster.DIV, x, raster.NewInt(2)), scope)
		if diff := cmp.Diff(got, interval(5, 10)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("DivMaybeZero", func(t *testing.T) {
		// A divisor interval that straddles zero proves nothing, even
		// though division by zero itself is defined.
		scope := boundsScope(map[string]raster.ConstBounds{
			"x": interval(10, 20),
			"y": interval(-1, 1),
		})
		got := raster.BoundsOf(raster.NewBinaryExpr(raster.DIV, x, y), scope)
		if diff := cmp.Diff(got, raster.ConstBounds{}); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("Mod", func(t *testing.T) {
		got := raster.BoundsOf(raster.NewBinaryExpr(raster.MOD, x, raster.NewInt(7)), nil)
		if diff := cmp.Diff(got, interval(0, 6)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ModNegativeDivisor", func(t *testing.T) {
		// The remainder stays non-negative whatever the divisor's sign.
		got := raster.BoundsOf(raster.NewBinaryExpr(raster.MOD, x, raster.NewInt(-7)), nil)
		if diff := cmp.Diff(got, interval(0, 6)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ModUnknownDivisor", func(t *testing.T) {
		got := raster.BoundsOf(raster.NewBinaryExpr(raster.MOD, x, y), nil)
		if diff := cmp.Diff(got, raster.ConstBounds{Min: 0, MinDefined: true}); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("Min", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(0, 10)})
		got := raster.BoundsOf(raster.NewBinaryExpr(raster.MIN, x, raster.NewInt(5)), scope)
		if diff := cmp.Diff(got, interval(0, 5)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("MinOneSided", func(t *testing.T) {
		// An unbounded operand still cannot raise the minimum's proof,
		// but min keeps the known upper end.
		got := raster.BoundsOf(raster.NewBinaryExpr(raster.MIN, x, raster.NewInt(5)), nil)
		if diff := cmp.Diff(got, raster.ConstBounds{Max: 5, MaxDefined: true}); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Max", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(0, 10)})
		got := raster.BoundsOf(raster.NewBinaryExpr(raster.MAX, x, raster.NewInt(5)), scope)
		if diff := cmp.Diff(got, interval(5, 10)); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("Compare", func(t *testing.T) {
		got := raster.BoundsOf(raster.NewBinaryExpr(raster.LT, x, y), nil)
		if diff := cmp.Diff(got, interval(0, 1)); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("SelectUnion", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(0, 5)})
		c := raster.NewVarExpr(raster.Bool(), "c")
		got := raster.BoundsOf(raster.NewSelectExpr(c, x, raster.NewInt(20)), scope)
		if diff := cmp.Diff(got, interval(0, 20)); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("Broadcast", func(t *testing.T) {
		got := raster.BoundsOf(raster.NewBroadcastExpr(raster.NewInt(3), 4), nil)
		if diff := cmp.Diff(got, interval(3, 3)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Ramp", func(t *testing.T) {
		got := raster.BoundsOf(raster.NewRampExpr(raster.NewInt(0), raster.NewInt(1), 4), nil)
		if diff := cmp.Diff(got, interval(0, 3)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("RampNegativeStride", func(t *testing.T) {
		got := raster.BoundsOf(raster.NewRampExpr(raster.NewInt(0), raster.NewInt(-2), 4), nil)
		if diff := cmp.Diff(got, interval(-6, 0)); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("Let", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(1, 3)})
		tvar := raster.NewVarExpr(raster.Int(32), "t")
		e := raster.NewLetExpr("t",
			raster.NewBinaryExpr(raster.MUL, x, raster.NewInt(2)),
			raster.NewBinaryExpr(raster.ADD, tvar, raster.NewInt(1)))
		got := raster.BoundsOf(e, scope)
		if diff := cmp.Diff(got, interval(3, 7)); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("Abs", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(-5, 3)})
		e := raster.NewCallExpr(raster.Int(32), "abs", []raster.Expr{x}, true)
		got := raster.BoundsOf(e, scope)
		if diff := cmp.Diff(got, interval(0, 5)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("AbsNegativeRange", func(t *testing.T) {
		scope := boundsScope(map[string]raster.ConstBounds{"x": interval(-5, -2)})
		e := raster.NewCallExpr(raster.Int(32), "abs", []raster.Expr{x}, true)
		got := raster.BoundsOf(e, scope)
		if diff := cmp.Diff(got, interval(2, 5)); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("ImpureCall", func(t *testing.T) {
		e := raster.NewCallExpr(raster.Int(32), "load", []raster.Expr{x}, false)
		got := raster.BoundsOf(e, nil)
		if diff := cmp.Diff(got, raster.ConstBounds{}); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestBoundsOf_WrappingTypes(t *testing.T) {
	t.Run("KeptWhenInRange", func(t *testing.T) {
		e := raster.NewBinaryExpr(raster.ADD,
			raster.NewUIntImm(raster.UInt(8), 3),
			raster.NewUIntImm(raster.UInt(8), 4))
		got := raster.BoundsOf(e, nil)
		if diff := cmp.Diff(got, interval(7, 7)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("DiscardedOnPossibleWrap", func(t *testing.T) {
		e := raster.NewBinaryExpr(raster.ADD,
			raster.NewUIntImm(raster.UInt(8), 200),
			raster.NewUIntImm(raster.UInt(8), 100))
		got := raster.BoundsOf(e, nil)
		if diff := cmp.Diff(got, raster.ConstBounds{}); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("NarrowSignedDiscarded", func(t *testing.T) {
		e := raster.NewBinaryExpr(raster.ADD,
			raster.NewIntImm(raster.Int(8), 100),
			raster.NewIntImm(raster.Int(8), 100))
		got := raster.BoundsOf(e, nil)
		if diff := cmp.Diff(got, raster.ConstBounds{}); diff != "" {
			t.Fatal(diff)
		}
	})
}
