package raster

// maxSimplifyDepth bounds the rewriter's recursion. Expressions nested
// deeper than this are passed through untouched rather than risking the
// goroutine stack; the result is still sound, just less simplified.
const maxSimplifyDepth = 2048

// Simplify rewrites an expression into an equivalent, simpler form. The
// scope supplies interval and alignment facts about free variables and
// may be nil. If nothing can be rewritten the original expression is
// returned as-is.
func Simplify(e Expr, scope *Scope) Expr {
	return newSimplifier(scope).mutate(e)
}

type simplifier struct {
	scope *Scope
	depth int
}

func newSimplifier(scope *Scope) *simplifier {
	if scope == nil {
		scope = NewScope()
	}
	return &simplifier{scope: scope}
}

// mutate simplifies one expression bottom-up: children first, then the
// node itself against its rewrite rules.
func (s *simplifier) mutate(e Expr) Expr {
	if s.depth >= maxSimplifyDepth {
		return e
	}
	s.depth++
	defer func() { s.depth-- }()

	switch e := e.(type) {
	case *IntImm, *UIntImm, *FloatImm, *StringImm:
		return e
	case *VarExpr:
		return s.visitVar(e)
	case *BinaryExpr:
		switch e.Op {
		case ADD:
			return s.visitAdd(e)
		case SUB:
			return s.visitSub(e)
		case MUL:
			return s.visitMul(e)
		case DIV:
			return s.visitDiv(e)
		case MOD:
			return s.visitMod(e)
		case MIN:
			return s.visitMin(e)
		case MAX:
			return s.visitMax(e)
		case EQ:
			return s.visitEQ(e)
		case NE:
			return s.visitNE(e)
		case LT:
			return s.visitLT(e)
		case LE:
			return s.visitLE(e)
		case GT:
			return s.visitGT(e)
		case GE:
			return s.visitGE(e)
		case AND:
			return s.visitAnd(e)
		case OR:
			return s.visitOr(e)
		default:
			return e
		}
	case *NotExpr:
		return s.visitNot(e)
	case *SelectExpr:
		return s.visitSelect(e)
	case *BroadcastExpr:
		return s.visitBroadcast(e)
	case *RampExpr:
		return s.visitRamp(e)
	case *LetExpr:
		return s.visitLet(e)
	case *CallExpr:
		return s.visitCall(e)
	default:
		return e
	}
}

func (s *simplifier) boundsOf(e Expr) ConstBounds {
	return boundsOf(e, s.scope)
}

func (s *simplifier) alignOf(e Expr) ModulusRemainder {
	return modulusRemainderOf(e, s.scope)
}

// shouldCommute reports whether a commutative operation should swap its
// operands to put a constant on the right.
func shouldCommute(a, b Expr) bool {
	_, ca := scalarConst(a)
	_, cb := scalarConst(b)
	return ca && !cb
}

// rebuildBinary returns e itself when both children are untouched, else a
// fresh node. Identity here means pointer identity: mutate returns its
// argument unchanged when nothing rewrote.
func rebuildBinary(e *BinaryExpr, a, b Expr) Expr {
	if a == e.LHS && b == e.RHS {
		return e
	}
	return NewBinaryExpr(e.Op, a, b)
}

// makeConst returns the constant v at the given type, broadcast across
// lanes for vectors.
func makeConst(t Type, v int64) Expr {
	if t.IsScalar() {
		return makeImm(t, v)
	}
	return NewBroadcastExpr(makeImm(t.Element(), v), t.Lanes)
}

// makeZero returns the zero of a type.
func makeZero(t Type) Expr {
	return makeConst(t, 0)
}

func constTrue(lanes int) Expr {
	if lanes == 1 {
		return NewBool(true)
	}
	return NewBroadcastExpr(NewBool(true), lanes)
}

func constFalse(lanes int) Expr {
	if lanes == 1 {
		return NewBool(false)
	}
	return NewBroadcastExpr(NewBool(false), lanes)
}

// Wildcard and constant slots shared by every rule table. Patterns are
// stateless, so the same values appear in many rules.
var (
	px  = PatAny(0)
	py  = PatAny(1)
	pz  = PatAny(2)
	pw  = PatAny(3)
	pu  = PatAny(4)
	pc0 = PatConst(0)
	pc1 = PatConst(1)
)

// guardNotFloat rejects floating point subjects; rearrangements that are
// exact on integers usually are not under rounding.
func guardNotFloat(m *Match) bool {
	return !m.Type().IsFloat()
}

// guardNoOverflowInt accepts subjects whose overflow is undefined, where
// rules may assume arithmetic never wraps.
func guardNoOverflowInt(m *Match) bool {
	return noOverflowInt(m.Type())
}

func (s *simplifier) visitVar(e *VarExpr) Expr {
	info, ok := s.scope.Get(e.Name)
	if !ok {
		return e
	}
	// A variable pinned to a single value by its interval folds away.
	if e.Type().IsScalar() && (e.Type().IsInt() || e.Type().IsUInt()) {
		if v, ok := info.Bounds.exact(); ok {
			return makeImm(e.Type(), v)
		}
	}
	return e
}

func (s *simplifier) visitBroadcast(e *BroadcastExpr) Expr {
	value := s.mutate(e.Value)
	if value == e.Value {
		return e
	}
	return NewBroadcastExpr(value, e.Lanes)
}

func (s *simplifier) visitRamp(e *RampExpr) Expr {
	base := s.mutate(e.Base)
	stride := s.mutate(e.Stride)
	if IsConstValue(stride, 0) {
		return NewBroadcastExpr(base, e.Lanes)
	}
	if base == e.Base && stride == e.Stride {
		return e
	}
	return NewRampExpr(base, stride, e.Lanes)
}

func (s *simplifier) visitLet(e *LetExpr) Expr {
	value := s.mutate(e.Value)

	// Trivial values substitute directly into the body; keeping the
	// binding would only hide rewrites from the rules.
	trivial := false
	switch v := value.(type) {
	case *IntImm, *UIntImm, *FloatImm, *StringImm, *VarExpr:
		trivial = true
	case *BroadcastExpr:
		trivial = IsConstExpr(v.Value)
	}
	if trivial {
		return s.mutate(SubstExpr(e.Body, e.Name, value))
	}

	s.scope.Push(e.Name, VarInfo{
		Align:  s.alignOf(value),
		Bounds: s.boundsOf(value),
	})
	body := s.mutate(e.Body)
	s.scope.Pop()

	if !ExprUsesVar(body, e.Name) {
		return body
	}
	if value == e.Value && body == e.Body {
		return e
	}
	return NewLetExpr(e.Name, value, body)
}

func (s *simplifier) visitCall(e *CallExpr) Expr {
	args := make([]Expr, len(e.Args))
	changed := false
	for i, arg := range e.Args {
		args[i] = s.mutate(arg)
		if args[i] != arg {
			changed = true
		}
	}

	// Impure calls are barriers: their arguments simplify but the call
	// itself is never folded, merged, or reordered.
	if e.Pure {
		switch e.Name {
		case "abs":
			if len(args) == 1 {
				if sc, ok := scalarConst(args[0]); ok {
					if v, err := foldAbs(sc); err == nil {
						return matchLanes(v, e.Type())
					}
				}
				if b := s.boundsOf(args[0]); b.MinDefined && b.Min >= 0 {
					return args[0]
				}
			}
		case "likely":
			if len(args) == 1 {
				if _, ok := scalarConst(args[0]); ok {
					return args[0]
				}
			}
		}
	}

	if !changed {
		return e
	}
	return NewCallExpr(e.Type(), e.Name, args, e.Pure)
}
