package raster_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rasterlang/raster"
)

func TestModulusRemainder_Exact(t *testing.T) {
	if v, ok := raster.ExactAlignment(5).Exact(); !ok || v != 5 {
		t.Fatalf("unexpected exact value: %d, %v", v, ok)
	}
	if _, ok := raster.NoAlignment().Exact(); ok {
		t.Fatal("no-information fact must not be exact")
	}
}

func TestModulusRemainder_Add(t *testing.T) {
	t.Run("SharedModulus", func(t *testing.T) {
		got := raster.ModulusRemainder{Modulus: 4, Remainder: 1}.Add(raster.ModulusRemainder{Modulus: 4, Remainder: 3})
		if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 4, Remainder: 0}); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ExactPlusExact", func(t *testing.T) {
		got := raster.ExactAlignment(3).Add(raster.ExactAlignment(4))
		if diff := cmp.Diff(got, raster.ExactAlignment(7)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("MixedModuli", func(t *testing.T) {
		got := raster.ModulusRemainder{Modulus: 6, Remainder: 1}.Add(raster.ModulusRemainder{Modulus: 4, Remainder: 1})
		if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 2, Remainder: 0}); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestModulusRemainder_Sub(t *testing.T) {
	got := raster.ModulusRemainder{Modulus: 4, Remainder: 1}.Sub(raster.ModulusRemainder{Modulus: 4, Remainder: 3})
	if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 4, Remainder: 2}); diff != "" {
		t.Fatal(diff)
	}
}

func TestModulusRemainder_Mul(t *testing.T) {
	t.Run("ByConstant", func(t *testing.T) {
		// (4x + 2) * 3 = 12x + 6.
		got := raster.ModulusRemainder{Modulus: 4, Remainder: 2}.Mul(raster.ExactAlignment(3))
		if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 12, Remainder: 6}); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("General", func(t *testing.T) {
		// (4a + 1)(6b + 3) = 24ab + 12a + 6b + 3.
		got := raster.ModulusRemainder{Modulus: 4, Remainder: 1}.Mul(raster.ModulusRemainder{Modulus: 6, Remainder: 3})
		if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 6, Remainder: 3}); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ExactTimesExact", func(t *testing.T) {
		got := raster.ExactAlignment(6).Mul(raster.ExactAlignment(7))
		if diff := cmp.Diff(got, raster.ExactAlignment(42)); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestModulusRemainder_Div(t *testing.T) {
	t.Run("ExactDivisor", func(t *testing.T) {
		got := raster.ModulusRemainder{Modulus: 12, Remainder: 6}.Div(raster.ExactAlignment(3))
		if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 4, Remainder: 2}); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("InexactDivisor", func(t *testing.T) {
		got := raster.ModulusRemainder{Modulus: 12, Remainder: 6}.Div(raster.ExactAlignment(5))
		if diff := cmp.Diff(got, raster.NoAlignment()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ZeroDivisor", func(t *testing.T) {
		got := raster.ModulusRemainder{Modulus: 4, Remainder: 1}.Div(raster.ExactAlignment(0))
		if diff := cmp.Diff(got, raster.ExactAlignment(0)); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestModulusRemainder_Mod(t *testing.T) {
	t.Run("ModulusMultiple", func(t *testing.T) {
		// 12k + 7 mod 4 is always 3.
		got := raster.ModulusRemainder{Modulus: 12, Remainder: 7}.Mod(raster.ExactAlignment(4))
		if diff := cmp.Diff(got, raster.ExactAlignment(3)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("PartialInformation", func(t *testing.T) {
		// 6k + 1 mod 4 alternates between 1 and 3, both odd.
		got := raster.ModulusRemainder{Modulus: 6, Remainder: 1}.Mod(raster.ExactAlignment(4))
		if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 2, Remainder: 1}); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ExactDividend", func(t *testing.T) {
		got := raster.ExactAlignment(10).Mod(raster.ExactAlignment(4))
		if diff := cmp.Diff(got, raster.ExactAlignment(2)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ZeroDivisor", func(t *testing.T) {
		got := raster.ModulusRemainder{Modulus: 4, Remainder: 1}.Mod(raster.ExactAlignment(0))
		if diff := cmp.Diff(got, raster.ExactAlignment(0)); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestModulusRemainder_Unify(t *testing.T) {
	t.Run("NestedModuli", func(t *testing.T) {
		got := raster.ModulusRemainder{Modulus: 4, Remainder: 3}.Unify(raster.ModulusRemainder{Modulus: 8, Remainder: 7})
		if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 4, Remainder: 3}); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("SameConstant", func(t *testing.T) {
		got := raster.ExactAlignment(5).Unify(raster.ExactAlignment(5))
		if diff := cmp.Diff(got, raster.ExactAlignment(5)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("DifferentConstants", func(t *testing.T) {
		got := raster.ExactAlignment(5).Unify(raster.ExactAlignment(8))
		if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 3, Remainder: 2}); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestModulusRemainderOf(t *testing.T) {
	x := raster.NewVarExpr(raster.Int(32), "x")

	t.Run("Literal", func(t *testing.T) {
		got := raster.ModulusRemainderOf(raster.NewInt(10), nil)
		if diff := cmp.Diff(got, raster.ExactAlignment(10)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("UnknownVar", func(t *testing.T) {
		got := raster.ModulusRemainderOf(x, nil)
		if diff := cmp.Diff(got, raster.NoAlignment()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ScaledVar", func(t *testing.T) {
		e := raster.NewBinaryExpr(raster.MUL, x, raster.NewInt(4))
		got := raster.ModulusRemainderOf(e, nil)
		if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 4, Remainder: 0}); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ScaledPlusOffset", func(t *testing.T) {
		e := raster.NewBinaryExpr(raster.ADD,
			raster.NewBinaryExpr(raster.MUL, x, raster.NewInt(4)),
			raster.NewInt(2))
		got := raster.ModulusRemainderOf(e, nil)
		if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 4, Remainder: 2}); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ScopeFact", func(t *testing.T) {
		scope := raster.NewScope()
		scope.Push("x", raster.VarInfo{Align: raster.ModulusRemainder{Modulus: 4, Remainder: 1}})
		e := raster.NewBinaryExpr(raster.MUL, x, raster.NewInt(2))
		got := raster.ModulusRemainderOf(e, scope)
		if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 8, Remainder: 2}); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("MinUnifies", func(t *testing.T) {
		e := raster.NewBinaryExpr(raster.MIN,
			raster.NewBinaryExpr(raster.MUL, x, raster.NewInt(6)),
			raster.NewBinaryExpr(raster.ADD,
				raster.NewBinaryExpr(raster.MUL, x, raster.NewInt(4)),
				raster.NewInt(2)))
		got := raster.ModulusRemainderOf(e, nil)
		if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 2, Remainder: 0}); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("RampLanes", func(t *testing.T) {
		// Lanes are 4x, 4x+2, 4x+4, ...: all even.
		e := raster.NewRampExpr(
			raster.NewBinaryExpr(raster.MUL, x, raster.NewInt(4)),
			raster.NewInt(2), 4)
		got := raster.ModulusRemainderOf(e, nil)
		if diff := cmp.Diff(got, raster.ModulusRemainder{Modulus: 2, Remainder: 0}); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("WrappingTypeGated", func(t *testing.T) {
		e := raster.NewBinaryExpr(raster.MUL,
			raster.NewVarExpr(raster.UInt(8), "b"),
			raster.NewUIntImm(raster.UInt(8), 4))
		got := raster.ModulusRemainderOf(e, nil)
		if diff := cmp.Diff(got, raster.NoAlignment()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("NarrowSignedGated", func(t *testing.T) {
		e := raster.NewBinaryExpr(raster.MUL,
			raster.NewVarExpr(raster.Int(16), "h"),
			raster.NewIntImm(raster.Int(16), 4))
		got := raster.ModulusRemainderOf(e, nil)
		if diff := cmp.Diff(got, raster.NoAlignment()); diff != "" {
			t.Fatal(diff)
		}
	})
}
