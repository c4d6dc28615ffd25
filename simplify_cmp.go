package raster

// Equalities are canonicalized through their difference: a == b becomes
// delta == 0 with delta = simplify(a - b), which lets one set of rules and
// both analyzers see every equality the same way. The other comparisons
// derive from < and ==, and a derived node that survives untouched is
// restored to the original so nothing is rebuilt without cause.

// guardNonZeroConst rejects a zero constant in slot 0.
func guardNonZeroConst(m *Match) bool {
	c, ok := m.ConstInt(0)
	return ok && c != 0
}

// guardOperandNoOverflow accepts wildcard 0 of a type whose arithmetic
// cannot wrap.
func guardOperandNoOverflow(m *Match) bool {
	return noOverflow(m.Expr(0).Type())
}

var eqRules = []Rule{
	rewrite(PatBin(EQ, pc0, PatLit(0)), PatFold(EQ, pc0, PatLit(0))),
	rewrite(PatBin(EQ, PatBin(ADD, px, pc0), PatLit(0)),
		PatBin(EQ, px, PatFold(SUB, PatLit(0), pc0))),
	rewrite(PatBin(EQ, PatBin(SUB, pc0, px), PatLit(0)),
		PatBin(EQ, px, pc0)),
}

var eqMutRules = []Rule{
	rewrite(PatBin(EQ, PatBroadcast(px), PatBroadcast(PatLit(0))),
		PatBroadcast(PatBin(EQ, px, PatLit(0)))),
	rewriteIf(PatBin(EQ, PatBin(MUL, px, py), PatLit(0)),
		PatBin(OR, PatBin(EQ, px, PatLit(0)), PatBin(EQ, py, PatLit(0))),
		guardOperandNoOverflow),
	rewrite(PatBin(EQ, PatSelect(px, PatLit(0), py), PatLit(0)),
		PatBin(OR, px, PatBin(EQ, py, PatLit(0)))),
	rewriteIf(PatBin(EQ, PatSelect(px, pc0, py), PatLit(0)),
		PatBin(AND, PatNot(px), PatBin(EQ, py, PatLit(0))),
		guardNonZeroConst),
	rewrite(PatBin(EQ, PatSelect(px, py, PatLit(0)), PatLit(0)),
		PatBin(OR, PatNot(px), PatBin(EQ, py, PatLit(0)))),
	rewriteIf(PatBin(EQ, PatSelect(px, py, pc0), PatLit(0)),
		PatBin(AND, px, PatBin(EQ, py, PatLit(0))),
		guardNonZeroConst),
}

func (s *simplifier) visitEQ(e *BinaryExpr) Expr {
	// Boolean equality reduces to the operand or its negation.
	if e.LHS.Type().IsBool() {
		a, b := s.mutate(e.LHS), s.mutate(e.RHS)
		if shouldCommute(a, b) {
			a, b = b, a
		}
		if IsConstTrue(b) {
			return a
		}
		if IsConstFalse(b) {
			return s.mutate(NewNotExpr(a))
		}
		return rebuildBinary(e, a, b)
	}

	// Handles have no arithmetic; only literal strings decide.
	if e.LHS.Type().IsHandle() {
		a, b := s.mutate(e.LHS), s.mutate(e.RHS)
		if sa, ok := a.(*StringImm); ok {
			if sb, ok := b.(*StringImm); ok {
				return NewBool(sa.Value == sb.Value)
			}
		}
		return rebuildBinary(e, a, b)
	}

	delta := s.mutate(NewBinaryExpr(SUB, e.LHS, e.RHS))
	lanes := e.Type().Lanes

	// An interval or congruence that excludes zero settles the question.
	bd := s.boundsOf(delta)
	if (bd.MinDefined && bd.Min > 0) || (bd.MaxDefined && bd.Max < 0) {
		return constFalse(lanes)
	}
	if delta.Type().IsScalar() && noOverflowInt(delta.Type()) {
		if mr := s.alignOf(delta); mr.Remainder != 0 {
			return constFalse(lanes)
		}
	}

	expr := NewBinaryExpr(EQ, delta, makeZero(delta.Type()))
	if out, ok := ApplyRules(expr, eqRules); ok {
		return out
	}
	if out, ok := ApplyRules(expr, eqMutRules); ok {
		return s.mutate(out)
	}

	// No rule fired. Present the equality in terms of the difference's
	// two halves when it still has them, or the original node when the
	// difference did not budge at all.
	if sub, ok := delta.(*BinaryExpr); ok && sub.Op == SUB {
		if sub.LHS == e.LHS && sub.RHS == e.RHS {
			return e
		}
		return NewBinaryExpr(EQ, sub.LHS, sub.RHS)
	}
	return expr
}

func (s *simplifier) visitNE(e *BinaryExpr) Expr {
	out := s.mutate(NewNotExpr(NewBinaryExpr(EQ, e.LHS, e.RHS)))
	if ne, ok := out.(*BinaryExpr); ok && ne.Op == NE && ne.LHS == e.LHS && ne.RHS == e.RHS {
		return e
	}
	return out
}

var ltRules = []Rule{
	rewrite(PatBin(LT, pc0, pc1), PatFold(LT, pc0, pc1)),
	rewrite(PatBin(LT, px, px), PatLit(0)),
}

// guardLTNoOverflow accepts comparisons whose integer operands cannot
// wrap; rearranging a comparison across + is unsound for wrapping types.
func guardLTNoOverflow(m *Match) bool {
	return noOverflowInt(m.Expr(0).Type())
}

var ltMutRules = []Rule{
	rewrite(PatBin(LT, PatBroadcast(px), PatBroadcast(py)),
		PatBroadcast(PatBin(LT, px, py))),
	rewriteIf(PatBin(LT, PatBin(ADD, px, pc0), pc1),
		PatBin(LT, px, PatFold(SUB, pc1, pc0)), guardLTNoOverflow),
	rewriteIf(PatBin(LT, pc0, PatBin(ADD, px, pc1)),
		PatBin(LT, PatFold(SUB, pc0, pc1), px), guardLTNoOverflow),
	rewriteIf(PatBin(LT, px, PatBin(ADD, px, py)),
		PatBin(LT, PatLit(0), py), guardLTNoOverflow),
	rewriteIf(PatBin(LT, PatBin(ADD, px, py), px),
		PatBin(LT, py, PatLit(0)), guardLTNoOverflow),
}

func (s *simplifier) visitLT(e *BinaryExpr) Expr {
	a, b := s.mutate(e.LHS), s.mutate(e.RHS)
	lanes := e.Type().Lanes

	ba, bb := s.boundsOf(a), s.boundsOf(b)
	if ba.MaxDefined && bb.MinDefined && ba.Max < bb.Min {
		return constTrue(lanes)
	}
	if ba.MinDefined && bb.MaxDefined && ba.Min >= bb.Max {
		return constFalse(lanes)
	}

	expr := rebuildBinary(e, a, b)
	if out, ok := ApplyRules(expr, ltRules); ok {
		return out
	}
	if out, ok := ApplyRules(expr, ltMutRules); ok {
		return s.mutate(out)
	}
	return expr
}

func (s *simplifier) visitLE(e *BinaryExpr) Expr {
	out := s.mutate(NewNotExpr(NewBinaryExpr(LT, e.RHS, e.LHS)))
	if le, ok := out.(*BinaryExpr); ok && le.Op == LE && le.LHS == e.LHS && le.RHS == e.RHS {
		return e
	}
	return out
}

func (s *simplifier) visitGT(e *BinaryExpr) Expr {
	out := s.mutate(NewBinaryExpr(LT, e.RHS, e.LHS))
	if lt, ok := out.(*BinaryExpr); ok && lt.Op == LT && lt.LHS == e.RHS && lt.RHS == e.LHS {
		return e
	}
	return out
}

func (s *simplifier) visitGE(e *BinaryExpr) Expr {
	out := s.mutate(NewNotExpr(NewBinaryExpr(LT, e.LHS, e.RHS)))
	if le, ok := out.(*BinaryExpr); ok && le.Op == LE && le.LHS == e.RHS && le.RHS == e.LHS {
		return e
	}
	return out
}
