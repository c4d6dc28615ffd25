package raster

import (
	"fmt"
	"math"
)

// Pattern is one node of a rewrite rule. On the match side a pattern is
// compared against an expression, binding wildcards as it goes; on the
// replace side it is built back into an expression using those bindings.
type Pattern interface {
	match(e Expr, m *Match) bool
	build(m *Match, hint Type) (Expr, error)
	typeless() bool
}

// Match holds the bindings captured while matching one rule: up to six
// wildcard expressions, two constants, the subject's type, and the lane
// count of any vector nodes seen.
type Match struct {
	exprs    [6]Expr
	consts   [2]Expr
	exprSet  uint8
	constSet uint8
	lanes    int
	typ      Type
}

// Expr returns the expression bound to a wildcard slot.
func (m *Match) Expr(slot int) Expr {
	assert(m.exprSet&(1<<uint(slot)) != 0, "wildcard %d is unbound", slot)
	return m.exprs[slot]
}

// Const returns the scalar immediate bound to a constant slot.
func (m *Match) Const(slot int) Expr {
	assert(m.constSet&(1<<uint(slot)) != 0, "constant %d is unbound", slot)
	return m.consts[slot]
}

// ConstInt returns the integer value bound to a constant slot, if the
// bound constant is an integer representable in an int64.
func (m *Match) ConstInt(slot int) (int64, bool) {
	assert(m.constSet&(1<<uint(slot)) != 0, "constant %d is unbound", slot)
	switch c := m.consts[slot].(type) {
	case *IntImm:
		return c.Value, true
	case *UIntImm:
		if c.Value <= math.MaxInt64 {
			return int64(c.Value), true
		}
	}
	return 0, false
}

// Type returns the type of the subject expression the rule matched.
func (m *Match) Type() Type { return m.typ }

// Lanes returns the subject's lane count.
func (m *Match) Lanes() int { return m.lanes }

// PatAny returns a wildcard pattern. The first occurrence binds slot to
// the matched expression; later occurrences only match structurally
// identical expressions.
func PatAny(slot int) Pattern {
	assert(slot >= 0 && slot < 6, "wildcard slot out of range: %d", slot)
	return &anyPat{slot: slot}
}

type anyPat struct{ slot int }

func (p *anyPat) match(e Expr, m *Match) bool {
	bit := uint8(1) << uint(p.slot)
	if m.exprSet&bit != 0 {
		// Two occurrences of one wildcard only unify pure expressions;
		// merging would elide a repeated impure call.
		return ExprIsPure(e) && ExprEqual(m.exprs[p.slot], e)
	}
	m.exprs[p.slot] = e
	m.exprSet |= bit
	return true
}

func (p *anyPat) build(m *Match, hint Type) (Expr, error) {
	return m.Expr(p.slot), nil
}

func (p *anyPat) typeless() bool { return false }

// PatConst returns a pattern matching any numeric immediate, or a
// broadcast of one, binding the scalar to a constant slot.
func PatConst(slot int) Pattern {
	assert(slot >= 0 && slot < 2, "constant slot out of range: %d", slot)
	return &constPat{slot: slot}
}

type constPat struct{ slot int }

func (p *constPat) match(e Expr, m *Match) bool {
	s, ok := scalarConst(e)
	if !ok {
		return false
	}
	bit := uint8(1) << uint(p.slot)
	if m.constSet&bit != 0 {
		return ExprEqual(m.consts[p.slot], s)
	}
	m.consts[p.slot] = s
	m.constSet |= bit
	return true
}

func (p *constPat) build(m *Match, hint Type) (Expr, error) {
	return m.Const(p.slot), nil
}

func (p *constPat) typeless() bool { return false }

// PatLit returns a pattern matching an immediate with the given value, or
// a broadcast of one, whatever its numeric type. When built as a
// replacement the literal takes its type from its context.
func PatLit(value int64) Pattern {
	return &litPat{value: value}
}

type litPat struct{ value int64 }

func (p *litPat) match(e Expr, m *Match) bool {
	s, ok := scalarConst(e)
	if !ok {
		return false
	}
	switch s := s.(type) {
	case *IntImm:
		return s.Value == p.value
	case *UIntImm:
		return p.value >= 0 && s.Value == uint64(p.value)
	case *FloatImm:
		return s.Value == float64(p.value)
	default:
		return false
	}
}

func (p *litPat) build(m *Match, hint Type) (Expr, error) {
	if hint.Bits == 0 {
		return nil, fmt.Errorf("literal %d has no typed context", p.value)
	}
	return makeImm(hint.Element(), p.value), nil
}

func (p *litPat) typeless() bool { return true }

// PatBin returns a pattern matching a binary expression with the given
// operator.
func PatBin(op BinaryOp, a, b Pattern) Pattern {
	return &binPat{op: op, a: a, b: b}
}

type binPat struct {
	op   BinaryOp
	a, b Pattern
}

func (p *binPat) match(e Expr, m *Match) bool {
	be, ok := e.(*BinaryExpr)
	return ok && be.Op == p.op && p.a.match(be.LHS, m) && p.b.match(be.RHS, m)
}

func (p *binPat) build(m *Match, hint Type) (Expr, error) {
	a, b, err := buildPair(p.a, p.b, m, operandHint(p.op, hint))
	if err != nil {
		return nil, err
	}
	a, b = matchOperandLanes(a, b)
	return NewBinaryExpr(p.op, a, b), nil
}

func (p *binPat) typeless() bool { return p.a.typeless() && p.b.typeless() }

// PatNot returns a pattern matching a boolean negation.
func PatNot(x Pattern) Pattern {
	return &notPat{x: x}
}

type notPat struct{ x Pattern }

func (p *notPat) match(e Expr, m *Match) bool {
	ne, ok := e.(*NotExpr)
	return ok && p.x.match(ne.X, m)
}

func (p *notPat) build(m *Match, hint Type) (Expr, error) {
	x, err := p.x.build(m, hint)
	if err != nil {
		return nil, err
	}
	return NewNotExpr(x), nil
}

func (p *notPat) typeless() bool { return false }

// PatSelect returns a pattern matching a select expression.
func PatSelect(cond, then, els Pattern) Pattern {
	return &selPat{cond: cond, then: then, els: els}
}

type selPat struct {
	cond, then, els Pattern
}

func (p *selPat) match(e Expr, m *Match) bool {
	se, ok := e.(*SelectExpr)
	return ok && p.cond.match(se.Cond, m) && p.then.match(se.Then, m) && p.els.match(se.Else, m)
}

func (p *selPat) build(m *Match, hint Type) (Expr, error) {
	cond, err := p.cond.build(m, Type{})
	if err != nil {
		return nil, err
	}
	then, els, err := buildPair(p.then, p.els, m, hint)
	if err != nil {
		return nil, err
	}
	then, els = matchOperandLanes(then, els)
	return NewSelectExpr(cond, then, els), nil
}

func (p *selPat) typeless() bool { return false }

// PatBroadcast returns a pattern matching a broadcast of any lane count;
// the lane count is recorded on the match for the replacement to reuse.
func PatBroadcast(value Pattern) Pattern {
	return &broadcastPat{value: value}
}

type broadcastPat struct{ value Pattern }

func (p *broadcastPat) match(e Expr, m *Match) bool {
	be, ok := e.(*BroadcastExpr)
	if !ok {
		return false
	}
	m.lanes = be.Lanes
	return p.value.match(be.Value, m)
}

func (p *broadcastPat) build(m *Match, hint Type) (Expr, error) {
	v, err := p.value.build(m, hint.Element())
	if err != nil {
		return nil, err
	}
	return NewBroadcastExpr(v, m.lanes), nil
}

func (p *broadcastPat) typeless() bool { return false }

// PatRamp returns a pattern matching a ramp of any lane count.
func PatRamp(base, stride Pattern) Pattern {
	return &rampPat{base: base, stride: stride}
}

type rampPat struct {
	base, stride Pattern
}

func (p *rampPat) match(e Expr, m *Match) bool {
	re, ok := e.(*RampExpr)
	if !ok {
		return false
	}
	m.lanes = re.Lanes
	return p.base.match(re.Base, m) && p.stride.match(re.Stride, m)
}

func (p *rampPat) build(m *Match, hint Type) (Expr, error) {
	base, stride, err := buildPair(p.base, p.stride, m, hint.Element())
	if err != nil {
		return nil, err
	}
	return NewRampExpr(base, stride, m.lanes), nil
}

func (p *rampPat) typeless() bool { return false }

// PatFold returns a replacement-only pattern that constant-folds op over
// two built sub-patterns. A fold that cannot be represented makes the
// whole rule fail so the subject expression is left alone.
func PatFold(op BinaryOp, a, b Pattern) Pattern {
	return &foldPat{op: op, a: a, b: b}
}

type foldPat struct {
	op   BinaryOp
	a, b Pattern
}

func (p *foldPat) match(e Expr, m *Match) bool {
	assert(false, "fold pattern used in match position")
	return false
}

func (p *foldPat) build(m *Match, hint Type) (Expr, error) {
	a, b, err := buildPair(p.a, p.b, m, operandHint(p.op, hint))
	if err != nil {
		return nil, err
	}
	return foldBinary(p.op, a, b)
}

func (p *foldPat) typeless() bool { return false }

// operandHint maps the hint for a binary result to the hint for its
// operands. Comparison operands have their own type, unrelated to the
// boolean result.
func operandHint(op BinaryOp, hint Type) Type {
	if op.IsCompare() {
		return Type{}
	}
	return hint
}

// buildPair builds two sibling patterns, letting a typeless literal take
// its type from the other side.
func buildPair(pa, pb Pattern, m *Match, hint Type) (a, b Expr, err error) {
	switch {
	case pa.typeless() && !pb.typeless():
		if b, err = pb.build(m, hint); err != nil {
			return nil, nil, err
		}
		a, err = pa.build(m, b.Type())
	case pb.typeless() && !pa.typeless():
		if a, err = pa.build(m, hint); err != nil {
			return nil, nil, err
		}
		b, err = pb.build(m, a.Type())
	default:
		if a, err = pa.build(m, hint); err != nil {
			return nil, nil, err
		}
		b, err = pb.build(m, hint)
	}
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// matchOperandLanes broadcasts a scalar operand alongside a vector one.
func matchOperandLanes(a, b Expr) (Expr, Expr) {
	al, bl := a.Type().Lanes, b.Type().Lanes
	if al == bl {
		return a, b
	}
	if al == 1 {
		return NewBroadcastExpr(a, bl), b
	}
	if bl == 1 {
		return a, NewBroadcastExpr(b, al)
	}
	return a, b
}

// Rule rewrites an expression matching Pattern into Replace. A nil Guard
// always passes; otherwise the guard inspects the bindings and may reject
// the match.
type Rule struct {
	Pattern Pattern
	Replace Pattern
	Guard   func(m *Match) bool
}

// rewrite returns an unconditional rule.
func rewrite(pattern, replace Pattern) Rule {
	return Rule{Pattern: pattern, Replace: replace}
}

// rewriteIf returns a guarded rule.
func rewriteIf(pattern, replace Pattern, guard func(m *Match) bool) Rule {
	return Rule{Pattern: pattern, Replace: replace, Guard: guard}
}

// ApplyRules tries each rule in order and returns the replacement built
// by the first rule whose pattern matches and whose guard passes. The
// boolean reports whether any rule fired; if none did, e is returned
// unchanged.
func ApplyRules(e Expr, rules []Rule) (Expr, bool) {
	for i := range rules {
		r := &rules[i]
		m := Match{typ: e.Type(), lanes: e.Type().Lanes}
		if !r.Pattern.match(e, &m) {
			continue
		}
		if r.Guard != nil && !r.Guard(&m) {
			continue
		}
		out, err := r.Replace.build(&m, e.Type())
		if err != nil {
			continue
		}
		return matchLanes(out, e.Type()), true
	}
	return e, false
}

// matchLanes broadcasts a scalar replacement up to the subject's lanes.
func matchLanes(e Expr, t Type) Expr {
	if e.Type().Lanes == t.Lanes {
		return e
	}
	assert(e.Type().IsScalar(), "replacement has %d lanes, want %d", e.Type().Lanes, t.Lanes)
	return NewBroadcastExpr(e, t.Lanes)
}
