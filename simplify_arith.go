package raster

// Rule tables come in pairs: the plain table produces final results, the
// Mut table produces results that are simplified again. Constant operands
// sit on the right of commutative nodes before any table runs.

var addRules = []Rule{
	rewrite(PatBin(ADD, pc0, pc1), PatFold(ADD, pc0, pc1)),
	rewrite(PatBin(ADD, px, PatLit(0)), px),
}

var addMutRules = []Rule{
	rewrite(PatBin(ADD, px, px),
		PatBin(MUL, px, PatLit(2))),
	rewrite(PatBin(ADD, PatRamp(px, py), PatRamp(pz, pw)),
		PatRamp(PatBin(ADD, px, pz), PatBin(ADD, py, pw))),
	rewrite(PatBin(ADD, PatRamp(px, py), PatBroadcast(pz)),
		PatRamp(PatBin(ADD, px, pz), py)),
	rewrite(PatBin(ADD, PatBroadcast(px), PatRamp(py, pz)),
		PatRamp(PatBin(ADD, px, py), pz)),
	rewrite(PatBin(ADD, PatBroadcast(px), PatBroadcast(py)),
		PatBroadcast(PatBin(ADD, px, py))),
	rewrite(PatBin(ADD, PatSelect(px, py, pz), PatSelect(px, pw, pu)),
		PatSelect(px, PatBin(ADD, py, pw), PatBin(ADD, pz, pu))),
	rewriteIf(PatBin(ADD, PatBin(ADD, px, pc0), pc1),
		PatBin(ADD, px, PatFold(ADD, pc0, pc1)), guardNotFloat),
	rewriteIf(PatBin(ADD, PatBin(SUB, pc0, px), pc1),
		PatBin(SUB, PatFold(ADD, pc0, pc1), px), guardNotFloat),
	rewriteIf(PatBin(ADD, PatBin(SUB, px, py), py), px, guardNotFloat),
	rewriteIf(PatBin(ADD, px, PatBin(SUB, py, px)), py, guardNotFloat),
	rewriteIf(PatBin(ADD, PatBin(ADD, px, pc0), py),
		PatBin(ADD, PatBin(ADD, px, py), pc0), guardNotFloat),
	rewriteIf(PatBin(ADD, px, PatBin(ADD, py, pc0)),
		PatBin(ADD, PatBin(ADD, px, py), pc0), guardNotFloat),
	rewriteIf(PatBin(ADD, px, PatBin(SUB, pc0, py)),
		PatBin(ADD, PatBin(SUB, px, py), pc0), guardNotFloat),
	rewriteIf(PatBin(ADD, PatBin(MUL, px, py), PatBin(MUL, px, pz)),
		PatBin(MUL, px, PatBin(ADD, py, pz)), guardNoOverflowInt),
	rewriteIf(PatBin(ADD, px, PatBin(MUL, px, py)),
		PatBin(MUL, px, PatBin(ADD, py, PatLit(1))), guardNoOverflowInt),
	rewriteIf(PatBin(ADD, PatBin(MUL, px, py), px),
		PatBin(MUL, px, PatBin(ADD, py, PatLit(1))), guardNoOverflowInt),
	rewriteIf(PatBin(ADD, PatBin(MIN, px, py), PatBin(MAX, px, py)),
		PatBin(ADD, px, py), guardNotFloat),
	rewriteIf(PatBin(ADD, PatBin(MIN, px, py), PatBin(MAX, py, px)),
		PatBin(ADD, px, py), guardNotFloat),
}

func (s *simplifier) visitAdd(e *BinaryExpr) Expr {
	a, b := s.mutate(e.LHS), s.mutate(e.RHS)
	if shouldCommute(a, b) {
		a, b = b, a
	}
	expr := rebuildBinary(e, a, b)
	if out, ok := ApplyRules(expr, addRules); ok {
		return out
	}
	if out, ok := ApplyRules(expr, addMutRules); ok {
		return s.mutate(out)
	}
	return expr
}

var subRules = []Rule{
	rewrite(PatBin(SUB, pc0, pc1), PatFold(SUB, pc0, pc1)),
	rewrite(PatBin(SUB, px, PatLit(0)), px),
	rewriteIf(PatBin(SUB, px, px), PatLit(0), guardNotFloat),
}

var subMutRules = []Rule{
	rewrite(PatBin(SUB, px, pc0),
		PatBin(ADD, px, PatFold(SUB, PatLit(0), pc0))),
	rewrite(PatBin(SUB, PatRamp(px, py), PatRamp(pz, pw)),
		PatRamp(PatBin(SUB, px, pz), PatBin(SUB, py, pw))),
	rewrite(PatBin(SUB, PatRamp(px, py), PatBroadcast(pz)),
		PatRamp(PatBin(SUB, px, pz), py)),
	rewrite(PatBin(SUB, PatBroadcast(px), PatRamp(py, pz)),
		PatRamp(PatBin(SUB, px, py), PatBin(SUB, PatLit(0), pz))),
	rewrite(PatBin(SUB, PatBroadcast(px), PatBroadcast(py)),
		PatBroadcast(PatBin(SUB, px, py))),
	rewrite(PatBin(SUB, PatSelect(px, py, pz), PatSelect(px, pw, pu)),
		PatSelect(px, PatBin(SUB, py, pw), PatBin(SUB, pz, pu))),
	rewriteIf(PatBin(SUB, PatBin(ADD, px, py), px), py, guardNotFloat),
	rewriteIf(PatBin(SUB, PatBin(ADD, px, py), py), px, guardNotFloat),
	rewriteIf(PatBin(SUB, px, PatBin(ADD, px, py)),
		PatBin(SUB, PatLit(0), py), guardNotFloat),
	rewriteIf(PatBin(SUB, px, PatBin(ADD, py, px)),
		PatBin(SUB, PatLit(0), py), guardNotFloat),
	rewriteIf(PatBin(SUB, px, PatBin(ADD, py, pc0)),
		PatBin(ADD, PatBin(SUB, px, py), PatFold(SUB, PatLit(0), pc0)), guardNotFloat),
	rewriteIf(PatBin(SUB, PatBin(ADD, px, pc0), py),
		PatBin(ADD, PatBin(SUB, px, py), pc0), guardNotFloat),
	rewriteIf(PatBin(SUB, px, PatBin(SUB, pc0, py)),
		PatBin(SUB, PatBin(ADD, px, py), pc0), guardNotFloat),
	rewriteIf(PatBin(SUB, PatBin(MUL, px, py), PatBin(MUL, px, pz)),
		PatBin(MUL, px, PatBin(SUB, py, pz)), guardNoOverflowInt),
}

func (s *simplifier) visitSub(e *BinaryExpr) Expr {
	a, b := s.mutate(e.LHS), s.mutate(e.RHS)
	expr := rebuildBinary(e, a, b)
	if out, ok := ApplyRules(expr, subRules); ok {
		return out
	}
	if out, ok := ApplyRules(expr, subMutRules); ok {
		return s.mutate(out)
	}
	return expr
}

var mulRules = []Rule{
	rewrite(PatBin(MUL, pc0, pc1), PatFold(MUL, pc0, pc1)),
	rewrite(PatBin(MUL, px, PatLit(1)), px),
	rewriteIf(PatBin(MUL, px, PatLit(0)), PatLit(0), guardNotFloat),
}

var mulMutRules = []Rule{
	rewrite(PatBin(MUL, PatBroadcast(px), PatBroadcast(py)),
		PatBroadcast(PatBin(MUL, px, py))),
	rewrite(PatBin(MUL, PatRamp(px, py), PatBroadcast(pz)),
		PatRamp(PatBin(MUL, px, pz), PatBin(MUL, py, pz))),
	rewrite(PatBin(MUL, PatBroadcast(px), PatRamp(py, pz)),
		PatRamp(PatBin(MUL, px, py), PatBin(MUL, px, pz))),
	rewriteIf(PatBin(MUL, PatBin(MUL, px, pc0), pc1),
		PatBin(MUL, px, PatFold(MUL, pc0, pc1)), guardNotFloat),
	rewriteIf(PatBin(MUL, PatBin(ADD, px, pc0), pc1),
		PatBin(ADD, PatBin(MUL, px, pc1), PatFold(MUL, pc0, pc1)), guardNotFloat),
	rewriteIf(PatBin(MUL, PatBin(SUB, pc0, px), pc1),
		PatBin(SUB, PatFold(MUL, pc0, pc1), PatBin(MUL, px, pc1)), guardNotFloat),
}

func (s *simplifier) visitMul(e *BinaryExpr) Expr {
	a, b := s.mutate(e.LHS), s.mutate(e.RHS)
	if shouldCommute(a, b) {
		a, b = b, a
	}
	expr := rebuildBinary(e, a, b)
	if out, ok := ApplyRules(expr, mulRules); ok {
		return out
	}
	if out, ok := ApplyRules(expr, mulMutRules); ok {
		return s.mutate(out)
	}
	return expr
}

// guardExactDiv accepts an integer subject whose two constants divide
// exactly, with a non-zero divisor in slot 1.
func guardExactDiv(m *Match) bool {
	if !noOverflowInt(m.Type()) {
		return false
	}
	c0, ok0 := m.ConstInt(0)
	c1, ok1 := m.ConstInt(1)
	return ok0 && ok1 && c1 != 0 && c0%c1 == 0
}

var divRules = []Rule{
	rewrite(PatBin(DIV, pc0, pc1), PatFold(DIV, pc0, pc1)),
	rewrite(PatBin(DIV, px, PatLit(1)), px),
	rewriteIf(PatBin(DIV, PatLit(0), px), PatLit(0), guardNotFloat),
}

var divMutRules = []Rule{
	rewrite(PatBin(DIV, PatBroadcast(px), PatBroadcast(py)),
		PatBroadcast(PatBin(DIV, px, py))),
	rewrite(PatBin(DIV, px, PatLit(-1)),
		PatBin(SUB, PatLit(0), px)),
	rewriteIf(PatBin(DIV, PatBin(MUL, px, pc0), pc1),
		PatBin(MUL, px, PatFold(DIV, pc0, pc1)), guardExactDiv),
	rewriteIf(PatBin(DIV, PatBin(ADD, px, pc0), pc1),
		PatBin(ADD, PatBin(DIV, px, pc1), PatFold(DIV, pc0, pc1)), guardExactDiv),
}

func (s *simplifier) visitDiv(e *BinaryExpr) Expr {
	a, b := s.mutate(e.LHS), s.mutate(e.RHS)
	expr := rebuildBinary(e, a, b)
	if out, ok := ApplyRules(expr, divRules); ok {
		return out
	}
	if out, ok := ApplyRules(expr, divMutRules); ok {
		return s.mutate(out)
	}
	return expr
}

// guardModReduce accepts a constant addend or factor that a positive
// modulus in slot 1 can shrink into [0, c1).
func guardModReduce(m *Match) bool {
	if !noOverflowInt(m.Type()) {
		return false
	}
	c0, ok0 := m.ConstInt(0)
	c1, ok1 := m.ConstInt(1)
	return ok0 && ok1 && c1 > 0 && (c0 >= c1 || c0 < 0)
}

var modRules = []Rule{
	rewrite(PatBin(MOD, pc0, pc1), PatFold(MOD, pc0, pc1)),
	rewrite(PatBin(MOD, px, PatLit(1)), PatLit(0)),
	rewriteIf(PatBin(MOD, px, px), PatLit(0), guardNotFloat),
	rewriteIf(PatBin(MOD, PatBin(MUL, px, pc0), pc1), PatLit(0), guardExactDiv),
}

var modMutRules = []Rule{
	rewrite(PatBin(MOD, PatBroadcast(px), PatBroadcast(py)),
		PatBroadcast(PatBin(MOD, px, py))),
	rewriteIf(PatBin(MOD, PatBin(ADD, px, pc0), pc1),
		PatBin(MOD, PatBin(ADD, px, PatFold(MOD, pc0, pc1)), pc1), guardModReduce),
	rewriteIf(PatBin(MOD, PatBin(MUL, px, pc0), pc1),
		PatBin(MOD, PatBin(MUL, px, PatFold(MOD, pc0, pc1)), pc1), guardModReduce),
}

func (s *simplifier) visitMod(e *BinaryExpr) Expr {
	a, b := s.mutate(e.LHS), s.mutate(e.RHS)
	expr := rebuildBinary(e, a, b)
	if out, ok := ApplyRules(expr, modRules); ok {
		return out
	}
	if out, ok := ApplyRules(expr, modMutRules); ok {
		return s.mutate(out)
	}

	// The remainder disappears when the dividend provably sits inside
	// [0, c), and folds to a constant when the dividend's alignment is
	// compatible with c.
	if c, ok := constIntValue(b); ok && c != 0 {
		if ba := s.boundsOf(a); ba.MinDefined && ba.MaxDefined && ba.Min >= 0 && ba.Max < c {
			return a
		}
		if mr := s.alignOf(a); mr.Modulus%c == 0 {
			return makeConst(e.Type(), modImp(mr.Remainder, c))
		}
	}
	return expr
}

// guardNonPosConst and guardNonNegConst test the sign of the constant in
// slot 0, deciding min(x + c0, x) and max(x + c0, x) without bounds.
func guardNonPosConst(m *Match) bool {
	c, ok := m.ConstInt(0)
	return ok && c <= 0 && noOverflowInt(m.Type())
}

func guardNonNegConst(m *Match) bool {
	c, ok := m.ConstInt(0)
	return ok && c >= 0 && noOverflowInt(m.Type())
}

var minRules = []Rule{
	rewrite(PatBin(MIN, pc0, pc1), PatFold(MIN, pc0, pc1)),
	rewriteIf(PatBin(MIN, PatBin(ADD, px, pc0), px), PatBin(ADD, px, pc0), guardNonPosConst),
	rewriteIf(PatBin(MIN, PatBin(ADD, px, pc0), px), px, guardNonNegConst),
	rewriteIf(PatBin(MIN, px, PatBin(ADD, px, pc0)), PatBin(ADD, px, pc0), guardNonPosConst),
	rewriteIf(PatBin(MIN, px, PatBin(ADD, px, pc0)), px, guardNonNegConst),
	rewrite(PatBin(MIN, PatBin(MAX, px, py), px), px),
	rewrite(PatBin(MIN, PatBin(MAX, px, py), py), py),
	rewrite(PatBin(MIN, px, PatBin(MAX, px, py)), px),
}

var minMutRules = []Rule{
	rewrite(PatBin(MIN, PatBroadcast(px), PatBroadcast(py)),
		PatBroadcast(PatBin(MIN, px, py))),
	rewrite(PatBin(MIN, PatBin(MIN, px, pc0), pc1),
		PatBin(MIN, px, PatFold(MIN, pc0, pc1))),
	rewrite(PatBin(MIN, PatBin(MIN, px, py), px), PatBin(MIN, px, py)),
	rewrite(PatBin(MIN, PatBin(MIN, px, py), py), PatBin(MIN, px, py)),
	rewriteIf(PatBin(MIN, PatBin(ADD, px, pc0), PatBin(ADD, px, pc1)),
		PatBin(ADD, px, PatFold(MIN, pc0, pc1)), guardNoOverflowInt),
}

func (s *simplifier) visitMin(e *BinaryExpr) Expr {
	a, b := s.mutate(e.LHS), s.mutate(e.RHS)
	if shouldCommute(a, b) {
		a, b = b, a
	}
	if ExprIsPure(a) && ExprEqual(a, b) {
		return a
	}
	ba, bb := s.boundsOf(a), s.boundsOf(b)
	if ba.MaxDefined && bb.MinDefined && ba.Max <= bb.Min {
		return a
	}
	if bb.MaxDefined && ba.MinDefined && bb.Max <= ba.Min {
		return b
	}
	expr := rebuildBinary(e, a, b)
	if out, ok := ApplyRules(expr, minRules); ok {
		return out
	}
	if out, ok := ApplyRules(expr, minMutRules); ok {
		return s.mutate(out)
	}
	return expr
}

var maxRules = []Rule{
	rewrite(PatBin(MAX, pc0, pc1), PatFold(MAX, pc0, pc1)),
	rewriteIf(PatBin(MAX, PatBin(ADD, px, pc0), px), PatBin(ADD, px, pc0), guardNonNegConst),
	rewriteIf(PatBin(MAX, PatBin(ADD, px, pc0), px), px, guardNonPosConst),
	rewriteIf(PatBin(MAX, px, PatBin(ADD, px, pc0)), PatBin(ADD, px, pc0), guardNonNegConst),
	rewriteIf(PatBin(MAX, px, PatBin(ADD, px, pc0)), px, guardNonPosConst),
	rewrite(PatBin(MAX, PatBin(MIN, px, py), px), px),
	rewrite(PatBin(MAX, PatBin(MIN, px, py), py), py),
	rewrite(PatBin(MAX, px, PatBin(MIN, px, py)), px),
}

var maxMutRules = []Rule{
	rewrite(PatBin(MAX, PatBroadcast(px), PatBroadcast(py)),
		PatBroadcast(PatBin(MAX, px, py))),
	rewrite(PatBin(MAX, PatBin(MAX, px, pc0), pc1),
		PatBin(MAX, px, PatFold(MAX, pc0, pc1))),
	rewrite(PatBin(MAX, PatBin(MAX, px, py), px), PatBin(MAX, px, py)),
	rewrite(PatBin(MAX, PatBin(MAX, px, py), py), PatBin(MAX, px, py)),
	rewriteIf(PatBin(MAX, PatBin(ADD, px, pc0), PatBin(ADD, px, pc1)),
		PatBin(ADD, px, PatFold(MAX, pc0, pc1)), guardNoOverflowInt),
}

func (s *simplifier) visitMax(e *BinaryExpr) Expr {
	a, b := s.mutate(e.LHS), s.mutate(e.RHS)
	if shouldCommute(a, b) {
		a, b = b, a
	}
	if ExprIsPure(a) && ExprEqual(a, b) {
		return a
	}
	ba, bb := s.boundsOf(a), s.boundsOf(b)
	if ba.MaxDefined && bb.MinDefined && ba.Max <= bb.Min {
		return b
	}
	if bb.MaxDefined && ba.MinDefined && bb.Max <= ba.Min {
		return a
	}
	expr := rebuildBinary(e, a, b)
	if out, ok := ApplyRules(expr, maxRules); ok {
		return out
	}
	if out, ok := ApplyRules(expr, maxMutRules); ok {
		return s.mutate(out)
	}
	return expr
}
