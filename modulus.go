package raster

import "math"

// ModulusRemainder is a congruence fact about an integer expression: the
// value is congruent to Remainder modulo Modulus. A zero modulus means the
// value is exactly Remainder; a modulus of one carries no information. For
// a modulus greater than one the remainder is canonical, in [0, Modulus).
type ModulusRemainder struct {
	Modulus   int64
	Remainder int64
}

// ExactAlignment returns the congruence fact for a known constant.
func ExactAlignment(v int64) ModulusRemainder {
	return ModulusRemainder{Modulus: 0, Remainder: v}
}

// NoAlignment returns the congruence fact that proves nothing.
func NoAlignment() ModulusRemainder {
	return ModulusRemainder{Modulus: 1, Remainder: 0}
}

// Exact returns the single value the fact pins down, if any.
func (a ModulusRemainder) Exact() (int64, bool) {
	if a.Modulus == 0 {
		return a.Remainder, true
	}
	return 0, false
}

// gcd64 returns the non-negative greatest common divisor. gcd64(0, x)
// is |x|, so an exact constant unifies with a modulus as expected.
func gcd64(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// modReduce maps r to the canonical remainder in [0, m). A zero modulus
// passes r through unchanged.
func modReduce(r, m int64) int64 {
	if m == 0 {
		return r
	}
	if m < 0 {
		m = -m
	}
	r %= m
	if r < 0 {
		r += m
	}
	return r
}

// Add returns a congruence fact for the sum of two values.
func (a ModulusRemainder) Add(b ModulusRemainder) ModulusRemainder {
	r, ok := checkedAdd(a.Remainder, b.Remainder)
	if !ok {
		return NoAlignment()
	}
	g := gcd64(a.Modulus, b.Modulus)
	return ModulusRemainder{Modulus: g, Remainder: modReduce(r, g)}
}

// Sub returns a congruence fact for the difference of two values.
func (a ModulusRemainder) Sub(b ModulusRemainder) ModulusRemainder {
	r, ok := checkedSub(a.Remainder, b.Remainder)
	if !ok {
		return NoAlignment()
	}
	g := gcd64(a.Modulus, b.Modulus)
	return ModulusRemainder{Modulus: g, Remainder: modReduce(r, g)}
}

// Mul returns a congruence fact for the product of two values.
// (ma*x + ra) * (mb*y + rb) expands so that every term except ra*rb is a
// multiple of gcd(ma*mb, ma*rb, mb*ra).
func (a ModulusRemainder) Mul(b ModulusRemainder) ModulusRemainder {
	if a.Modulus == 0 && b.Modulus == 0 {
		p, ok := checkedMul(a.Remainder, b.Remainder)
		if !ok {
			return NoAlignment()
		}
		return ExactAlignment(p)
	}
	mm, ok1 := checkedMul(a.Modulus, b.Modulus)
	mr, ok2 := checkedMul(a.Modulus, b.Remainder)
	rm, ok3 := checkedMul(a.Remainder, b.Modulus)
	rr, ok4 := checkedMul(a.Remainder, b.Remainder)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return NoAlignment()
	}
	g := gcd64(gcd64(mm, mr), rm)
	return ModulusRemainder{Modulus: g, Remainder: modReduce(rr, g)}
}

// Div returns a congruence fact for the quotient. Only exact divisors
// that divide both the modulus and the remainder prove anything; a zero
// divisor quotient is defined as zero.
func (a ModulusRemainder) Div(b ModulusRemainder) ModulusRemainder {
	c, ok := b.Exact()
	if !ok {
		return NoAlignment()
	}
	if c == 0 {
		return ExactAlignment(0)
	}
	if a.Modulus%c != 0 || a.Remainder%c != 0 {
		return NoAlignment()
	}
	m := a.Modulus / c
	if m < 0 {
		m = -m
	}
	return ModulusRemainder{Modulus: m, Remainder: modReduce(a.Remainder/c, m)}
}

// Mod returns a congruence fact for the remainder of division by b.
// Division is Euclidean, so for a positive divisor the result is the
// canonical remainder; a zero divisor remainder is defined as zero.
func (a ModulusRemainder) Mod(b ModulusRemainder) ModulusRemainder {
	c, ok := b.Exact()
	if !ok {
		return NoAlignment()
	}
	if v, aok := a.Exact(); aok {
		return ExactAlignment(modImp(v, c))
	}
	if c == 0 {
		return ExactAlignment(0)
	}
	if c == math.MinInt64 {
		return NoAlignment()
	}
	if c < 0 {
		c = -c
	}
	g := gcd64(a.Modulus, c)
	if g == c {
		return ExactAlignment(modReduce(a.Remainder, c))
	}
	return ModulusRemainder{Modulus: g, Remainder: modReduce(a.Remainder, g)}
}

// Unify returns a congruence fact that holds whichever of the two values
// the expression takes.
func (a ModulusRemainder) Unify(b ModulusRemainder) ModulusRemainder {
	d, ok := checkedSub(a.Remainder, b.Remainder)
	if !ok {
		return NoAlignment()
	}
	g := gcd64(gcd64(a.Modulus, b.Modulus), d)
	if g == 0 {
		return ExactAlignment(a.Remainder)
	}
	return ModulusRemainder{Modulus: g, Remainder: modReduce(a.Remainder, g)}
}

// ModulusRemainderOf computes a congruence fact for an integer expression
// without simplifying it. Facts are only derived for signed integer types
// wide enough that overflow is undefined; narrower or unsigned arithmetic
// wraps, which breaks congruences with non-power-of-two moduli.
func ModulusRemainderOf(e Expr, scope *Scope) ModulusRemainder {
	if scope == nil {
		scope = NewScope()
	}
	return modulusRemainderOf(e, scope)
}

func modulusRemainderOf(e Expr, scope *Scope) ModulusRemainder {
	if !noOverflowInt(e.Type()) {
		return NoAlignment()
	}

	switch e := e.(type) {
	case *IntImm:
		return ExactAlignment(e.Value)
	case *VarExpr:
		info, ok := scope.Get(e.Name)
		if !ok {
			return NoAlignment()
		}
		return info.Align
	case *BinaryExpr:
		a := modulusRemainderOf(e.LHS, scope)
		b := modulusRemainderOf(e.RHS, scope)
		switch e.Op {
		case ADD:
			return a.Add(b)
		case SUB:
			return a.Sub(b)
		case MUL:
			return a.Mul(b)
		case DIV:
			return a.Div(b)
		case MOD:
			return a.Mod(b)
		case MIN, MAX:
			return a.Unify(b)
		default:
			return NoAlignment()
		}
	case *SelectExpr:
		a := modulusRemainderOf(e.Then, scope)
		b := modulusRemainderOf(e.Else, scope)
		return a.Unify(b)
	case *BroadcastExpr:
		return modulusRemainderOf(e.Value, scope)
	case *RampExpr:
		base := modulusRemainderOf(e.Base, scope)
		next := base.Add(modulusRemainderOf(e.Stride, scope))
		return base.Unify(next)
	case *LetExpr:
		scope.Push(e.Name, VarInfo{
			Align:  modulusRemainderOf(e.Value, scope),
			Bounds: boundsOf(e.Value, scope),
		})
		a := modulusRemainderOf(e.Body, scope)
		scope.Pop()
		return a
	case *CallExpr:
		if e.Pure && e.Name == "likely" && len(e.Args) == 1 {
			return modulusRemainderOf(e.Args[0], scope)
		}
		return NoAlignment()
	default:
		return NoAlignment()
	}
}

