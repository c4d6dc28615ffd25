package raster

import "math"

// ConstBounds is a conservative closed interval known to contain every
// runtime value of an integer expression. An undefined endpoint means "no
// proof", never "unbounded". The zero value is fully undefined.
type ConstBounds struct {
	Min        int64
	Max        int64
	MinDefined bool
	MaxDefined bool
}

// exactBounds returns the interval containing exactly v.
func exactBounds(v int64) ConstBounds {
	return ConstBounds{Min: v, Max: v, MinDefined: true, MaxDefined: true}
}

// boolRange is the interval of any boolean result.
func boolRange() ConstBounds {
	return ConstBounds{Min: 0, Max: 1, MinDefined: true, MaxDefined: true}
}

// exact returns the single value of the interval, if it has one.
func (b ConstBounds) exact() (int64, bool) {
	if b.MinDefined && b.MaxDefined && b.Min == b.Max {
		return b.Min, true
	}
	return 0, false
}

// gtZero returns true if the interval proves the value strictly positive.
func (b ConstBounds) gtZero() bool { return b.MinDefined && b.Min > 0 }

// ltZero returns true if the interval proves the value strictly negative.
func (b ConstBounds) ltZero() bool { return b.MaxDefined && b.Max < 0 }

func checkedAdd(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func checkedSub(a, b int64) (int64, bool) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, false
	}
	return a - b, true
}

func checkedMul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

// typeRange returns the representable interval of a scalar integer type.
// Unsigned 64-bit tops out at MaxInt64; larger values are simply beyond
// what ConstBounds can prove.
func typeRange(t Type) (lo, hi int64, ok bool) {
	switch {
	case t.IsInt():
		if t.Bits == 64 {
			return math.MinInt64, math.MaxInt64, true
		}
		return -(1 << uint(t.Bits-1)), 1<<uint(t.Bits-1) - 1, true
	case t.IsUInt():
		if t.Bits == 64 {
			return 0, math.MaxInt64, true
		}
		return 0, 1<<uint(t.Bits) - 1, true
	default:
		return 0, 0, false
	}
}

// constrainToType discards an interval that cannot rule out wraparound.
// Types with undefined overflow keep their interval as computed; wrapping
// types keep it only when it fits entirely within the representable range.
func constrainToType(t Type, b ConstBounds) ConstBounds {
	elem := t.Element()
	if noOverflowInt(elem) {
		return b
	}
	lo, hi, ok := typeRange(elem)
	if !ok || !b.MinDefined || !b.MaxDefined || b.Min < lo || b.Max > hi {
		return ConstBounds{}
	}
	return b
}

// literalBounds returns the exact interval of an integer literal.
func literalBounds(e Expr) ConstBounds {
	switch e := e.(type) {
	case *IntImm:
		return exactBounds(e.Value)
	case *UIntImm:
		if e.Value > math.MaxInt64 {
			return ConstBounds{}
		}
		return exactBounds(int64(e.Value))
	default:
		return ConstBounds{}
	}
}

func addBounds(t Type, a, b ConstBounds) ConstBounds {
	var r ConstBounds
	if a.MinDefined && b.MinDefined {
		r.Min, r.MinDefined = checkedAdd(a.Min, b.Min)
	}
	if a.MaxDefined && b.MaxDefined {
		r.Max, r.MaxDefined = checkedAdd(a.Max, b.Max)
	}
	return constrainToType(t, r)
}

func subBounds(t Type, a, b ConstBounds) ConstBounds {
	var r ConstBounds
	if a.MinDefined && b.MaxDefined {
		r.Min, r.MinDefined = checkedSub(a.Min, b.Max)
	}
	if a.MaxDefined && b.MinDefined {
		r.Max, r.MaxDefined = checkedSub(a.Max, b.Min)
	}
	return constrainToType(t, r)
}

func mulBounds(t Type, a, b ConstBounds) ConstBounds {
	if !a.MinDefined || !a.MaxDefined || !b.MinDefined || !b.MaxDefined {
		return ConstBounds{}
	}
	corners := [4][2]int64{
		{a.Min, b.Min}, {a.Min, b.Max}, {a.Max, b.Min}, {a.Max, b.Max},
	}
	var r ConstBounds
	for i, c := range corners {
		p, ok := checkedMul(c[0], c[1])
		if !ok {
			return ConstBounds{}
		}
		if i == 0 || p < r.Min {
			r.Min = p
		}
		if i == 0 || p > r.Max {
			r.Max = p
		}
	}
	r.MinDefined, r.MaxDefined = true, true
	return constrainToType(t, r)
}

func divBounds(t Type, a, b ConstBounds) ConstBounds {
	// Require a divisor interval that excludes zero; division by a
	// possibly-zero divisor stays undefined.
	if !a.MinDefined || !a.MaxDefined || !b.MinDefined || !b.MaxDefined {
		return ConstBounds{}
	}
	if b.Min <= 0 && b.Max >= 0 {
		return ConstBounds{}
	}
	corners := [4][2]int64{
		{a.Min, b.Min}, {a.Min, b.Max}, {a.Max, b.Min}, {a.Max, b.Max},
	}
	var r ConstBounds
	for i, c := range corners {
		if c[0] == math.MinInt64 && c[1] == -1 {
			return ConstBounds{}
		}
		q := divImp(c[0], c[1])
		if i == 0 || q < r.Min {
			r.Min = q
		}
		if i == 0 || q > r.Max {
			r.Max = q
		}
	}
	r.MinDefined, r.MaxDefined = true, true
	return constrainToType(t, r)
}

func modBounds(t Type, b ConstBounds) ConstBounds {
	// The Euclidean remainder is non-negative and below the divisor's
	// magnitude, whatever the dividend; a zero divisor yields zero.
	r := ConstBounds{Min: 0, MinDefined: true}
	if !b.MinDefined || !b.MaxDefined {
		return r
	}
	r.Max = absMinusOne(b.Min)
	if hi := absMinusOne(b.Max); hi > r.Max {
		r.Max = hi
	}
	r.MaxDefined = true
	return r
}

// absMinusOne returns |v|-1 clamped at zero, saturating at MaxInt64.
func absMinusOne(v int64) int64 {
	if v == math.MinInt64 {
		return math.MaxInt64
	}
	if v < 0 {
		v = -v
	}
	if v > 0 {
		v--
	}
	return v
}

func minBounds(a, b ConstBounds) ConstBounds {
	var r ConstBounds
	if a.MinDefined && b.MinDefined {
		r.MinDefined = true
		r.Min = a.Min
		if b.Min < r.Min {
			r.Min = b.Min
		}
	}
	if a.MaxDefined {
		r.MaxDefined = true
		r.Max = a.Max
	}
	if b.MaxDefined && (!r.MaxDefined || b.Max < r.Max) {
		r.MaxDefined = true
		r.Max = b.Max
	}
	return r
}

func maxBounds(a, b ConstBounds) ConstBounds {
	var r ConstBounds
	if a.MaxDefined && b.MaxDefined {
		r.MaxDefined = true
		r.Max = a.Max
		if b.Max > r.Max {
			r.Max = b.Max
		}
	}
	if a.MinDefined {
		r.MinDefined = true
		r.Min = a.Min
	}
	if b.MinDefined && (!r.MinDefined || b.Min > r.Min) {
		r.MinDefined = true
		r.Min = b.Min
	}
	return r
}

// unionBounds joins the intervals of two alternative values.
func unionBounds(a, b ConstBounds) ConstBounds {
	var r ConstBounds
	if a.MinDefined && b.MinDefined {
		r.MinDefined = true
		r.Min = a.Min
		if b.Min < r.Min {
			r.Min = b.Min
		}
	}
	if a.MaxDefined && b.MaxDefined {
		r.MaxDefined = true
		r.Max = a.Max
		if b.Max > r.Max {
			r.Max = b.Max
		}
	}
	return r
}

func rampBounds(t Type, base, stride ConstBounds, lanes int) ConstBounds {
	var r ConstBounds
	n := int64(lanes - 1)
	if base.MinDefined && stride.MinDefined {
		if ext, ok := checkedMul(n, stride.Min); ok {
			if ext > 0 {
				ext = 0
			}
			r.Min, r.MinDefined = checkedAdd(base.Min, ext)
		}
	}
	if base.MaxDefined && stride.MaxDefined {
		if ext, ok := checkedMul(n, stride.Max); ok {
			if ext < 0 {
				ext = 0
			}
			r.Max, r.MaxDefined = checkedAdd(base.Max, ext)
		}
	}
	return constrainToType(t, r)
}

func absBounds(a ConstBounds) ConstBounds {
	if a.MinDefined && a.Min >= 0 {
		return a
	}
	if !a.MinDefined || !a.MaxDefined || a.Min == math.MinInt64 {
		return ConstBounds{Min: 0, MinDefined: true}
	}
	r := ConstBounds{MinDefined: true, MaxDefined: true}
	hi, lo := a.Max, -a.Min
	if lo > hi {
		hi = lo
	}
	r.Max = hi
	if a.Max < 0 {
		r.Min = -a.Max
	}
	return r
}

// BoundsOf computes a conservative interval for an integer expression
// without simplifying it. Variables consult the scope; float and handle
// expressions report no proof.
func BoundsOf(e Expr, scope *Scope) ConstBounds {
	if scope == nil {
		scope = NewScope()
	}
	return boundsOf(e, scope)
}

func boundsOf(e Expr, scope *Scope) ConstBounds {
	t := e.Type()
	if !t.IsInt() && !t.IsUInt() {
		return ConstBounds{}
	}

	switch e := e.(type) {
	case *IntImm, *UIntImm:
		return literalBounds(e)
	case *VarExpr:
		info, ok := scope.Get(e.Name)
		if !ok {
			return ConstBounds{}
		}
		return info.Bounds
	case *BinaryExpr:
		if e.Op.IsCompare() || e.Op.IsLogical() {
			return boolRange()
		}
		a, b := boundsOf(e.LHS, scope), boundsOf(e.RHS, scope)
		switch e.Op {
		case ADD:
			return addBounds(t, a, b)
		case SUB:
			return subBounds(t, a, b)
		case MUL:
			return mulBounds(t, a, b)
		case DIV:
			return divBounds(t, a, b)
		case MOD:
			return modBounds(t, b)
		case MIN:
			return minBounds(a, b)
		case MAX:
			return maxBounds(a, b)
		default:
			return ConstBounds{}
		}
	case *NotExpr:
		return boolRange()
	case *SelectExpr:
		return unionBounds(boundsOf(e.Then, scope), boundsOf(e.Else, scope))
	case *BroadcastExpr:
		return boundsOf(e.Value, scope)
	case *RampExpr:
		return rampBounds(t, boundsOf(e.Base, scope), boundsOf(e.Stride, scope), e.Lanes)
	case *LetExpr:
		scope.Push(e.Name, VarInfo{
			Align:  modulusRemainderOf(e.Value, scope),
			Bounds: boundsOf(e.Value, scope),
		})
		b := boundsOf(e.Body, scope)
		scope.Pop()
		return b
	case *CallExpr:
		if !e.Pure {
			return ConstBounds{}
		}
		switch e.Name {
		case "abs":
			if len(e.Args) == 1 {
				return absBounds(boundsOf(e.Args[0], scope))
			}
		case "likely":
			if len(e.Args) == 1 {
				return boundsOf(e.Args[0], scope)
			}
		}
		return ConstBounds{}
	default:
		return ConstBounds{}
	}
}
