package raster

// Negation flips simplified comparisons directly rather than re-entering
// them: a comparison that survived its own visit has nothing left to say,
// and flipping again would chase the derivation in a circle.

func (s *simplifier) visitNot(e *NotExpr) Expr {
	x := s.mutate(e.X)

	if sc, ok := scalarConst(x); ok {
		if v, err := foldNot(sc); err == nil {
			return matchLanes(v, e.Type())
		}
	}

	switch x := x.(type) {
	case *BinaryExpr:
		switch x.Op {
		case EQ:
			return NewBinaryExpr(NE, x.LHS, x.RHS)
		case NE:
			return NewBinaryExpr(EQ, x.LHS, x.RHS)
		case LT:
			return NewBinaryExpr(LE, x.RHS, x.LHS)
		case LE:
			return NewBinaryExpr(LT, x.RHS, x.LHS)
		case GT:
			return NewBinaryExpr(LE, x.LHS, x.RHS)
		case GE:
			return NewBinaryExpr(LT, x.LHS, x.RHS)
		}
	case *NotExpr:
		return x.X
	case *BroadcastExpr:
		return s.mutate(NewBroadcastExpr(NewNotExpr(x.Value), x.Lanes))
	}

	if x == e.X {
		return e
	}
	return NewNotExpr(x)
}

var andRules = []Rule{
	rewrite(PatBin(AND, pc0, pc1), PatFold(AND, pc0, pc1)),
	rewrite(PatBin(AND, px, PatLit(1)), px),
	rewrite(PatBin(AND, PatLit(1), px), px),
	rewrite(PatBin(AND, px, PatLit(0)), PatLit(0)),
	rewrite(PatBin(AND, PatLit(0), px), PatLit(0)),
	rewrite(PatBin(AND, px, px), px),
	rewrite(PatBin(AND, px, PatNot(px)), PatLit(0)),
	rewrite(PatBin(AND, PatNot(px), px), PatLit(0)),
	rewrite(PatBin(AND, PatBin(EQ, px, py), PatBin(NE, px, py)), PatLit(0)),
	rewrite(PatBin(AND, PatBin(NE, px, py), PatBin(EQ, px, py)), PatLit(0)),
	rewrite(PatBin(AND, PatBin(LT, px, py), PatBin(LT, py, px)), PatLit(0)),
}

var andMutRules = []Rule{
	rewrite(PatBin(AND, PatBroadcast(px), PatBroadcast(py)),
		PatBroadcast(PatBin(AND, px, py))),
}

func (s *simplifier) visitAnd(e *BinaryExpr) Expr {
	a, b := s.mutate(e.LHS), s.mutate(e.RHS)
	expr := rebuildBinary(e, a, b)
	if out, ok := ApplyRules(expr, andRules); ok {
		return out
	}
	if out, ok := ApplyRules(expr, andMutRules); ok {
		return s.mutate(out)
	}
	return expr
}

var orRules = []Rule{
	rewrite(PatBin(OR, pc0, pc1), PatFold(OR, pc0, pc1)),
	rewrite(PatBin(OR, px, PatLit(0)), px),
	rewrite(PatBin(OR, PatLit(0), px), px),
	rewrite(PatBin(OR, px, PatLit(1)), PatLit(1)),
	rewrite(PatBin(OR, PatLit(1), px), PatLit(1)),
	rewrite(PatBin(OR, px, px), px),
	rewrite(PatBin(OR, px, PatNot(px)), PatLit(1)),
	rewrite(PatBin(OR, PatNot(px), px), PatLit(1)),
	rewrite(PatBin(OR, PatBin(EQ, px, py), PatBin(NE, px, py)), PatLit(1)),
	rewrite(PatBin(OR, PatBin(NE, px, py), PatBin(EQ, px, py)), PatLit(1)),
}

var orMutRules = []Rule{
	rewrite(PatBin(OR, PatBroadcast(px), PatBroadcast(py)),
		PatBroadcast(PatBin(OR, px, py))),
}

func (s *simplifier) visitOr(e *BinaryExpr) Expr {
	a, b := s.mutate(e.LHS), s.mutate(e.RHS)
	expr := rebuildBinary(e, a, b)
	if out, ok := ApplyRules(expr, orRules); ok {
		return out
	}
	if out, ok := ApplyRules(expr, orMutRules); ok {
		return s.mutate(out)
	}
	return expr
}

// guardBoolSubject restricts a rule to boolean-valued selects.
func guardBoolSubject(m *Match) bool {
	return m.Type().IsBool()
}

var selectRules = []Rule{
	rewriteIf(PatSelect(px, PatLit(1), PatLit(0)), px, guardBoolSubject),
}

var selectMutRules = []Rule{
	rewriteIf(PatSelect(px, PatLit(0), PatLit(1)), PatNot(px), guardBoolSubject),
	rewrite(PatSelect(PatNot(px), py, pz), PatSelect(px, pz, py)),
	rewrite(PatSelect(px, PatSelect(px, py, pz), pw), PatSelect(px, py, pw)),
	rewrite(PatSelect(px, py, PatSelect(px, pz, pw)), PatSelect(px, py, pw)),
}

func (s *simplifier) visitSelect(e *SelectExpr) Expr {
	cond := s.mutate(e.Cond)

	// A decided condition picks its branch before the loser is visited.
	if IsConstTrue(cond) {
		return s.mutate(e.Then)
	}
	if IsConstFalse(cond) {
		return s.mutate(e.Else)
	}

	then, els := s.mutate(e.Then), s.mutate(e.Else)
	if ExprIsPure(then) && ExprEqual(then, els) {
		return then
	}

	var expr Expr = e
	if cond != e.Cond || then != e.Then || els != e.Else {
		expr = NewSelectExpr(cond, then, els)
	}
	if out, ok := ApplyRules(expr, selectRules); ok {
		return out
	}
	if out, ok := ApplyRules(expr, selectMutRules); ok {
		return s.mutate(out)
	}
	return expr
}
