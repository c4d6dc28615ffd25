package parse

import (
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/rasterlang/raster"
)

// binaryPrecedence orders the infix operators; higher binds tighter. All
// operators associate left.
var binaryPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

var binaryOps = map[string]raster.BinaryOp{
	"+":  raster.ADD,
	"-":  raster.SUB,
	"*":  raster.MUL,
	"/":  raster.DIV,
	"%":  raster.MOD,
	"==": raster.EQ,
	"!=": raster.NE,
	"<":  raster.LT,
	"<=": raster.LE,
	">":  raster.GT,
	">=": raster.GE,
	"&&": raster.AND,
	"||": raster.OR,
}

// value is a lowered operand: either a concrete expression, or an integer
// or float literal whose type is still open to its surrounding context.
type value struct {
	pos     lexer.Position
	expr    raster.Expr
	isFloat bool
	neg     bool
	digits  uint64
	fval    float64
}

func (v value) pending() bool { return v.expr == nil }

type lowerer struct {
	types map[string]raster.Type
	scope *raster.Scope
}

func lowerFile(f *File) (*Result, error) {
	l := &lowerer{types: map[string]raster.Type{}, scope: raster.NewScope()}
	for _, d := range f.Decls {
		if err := l.declare(d); err != nil {
			return nil, err
		}
	}
	v, err := l.lowerExpr(f.Expr)
	if err != nil {
		return nil, err
	}
	e, err := l.concrete(v)
	if err != nil {
		return nil, err
	}
	return &Result{Expr: e, Scope: l.scope, Types: l.types}, nil
}

func (l *lowerer) declare(d *Decl) error {
	t, err := parseTypeName(d.Type.Name)
	if err != nil {
		return errorf(d.Type.Pos, "%s", err)
	}
	if _, ok := l.types[d.Name]; ok {
		return errorf(d.Pos, "variable %q already declared", d.Name)
	}

	info := raster.VarInfo{Align: raster.NoAlignment()}
	if d.Range != nil {
		if !integral(t) {
			return errorf(d.Pos, "range fact requires an integer variable, %s is %s", d.Name, t)
		}
		lo, err := sintValue(d.Range.Lo)
		if err != nil {
			return err
		}
		hi, err := sintValue(d.Range.Hi)
		if err != nil {
			return err
		}
		if lo > hi {
			return errorf(d.Range.Lo.Pos, "empty range [%d, %d]", lo, hi)
		}
		info.Bounds = raster.ConstBounds{Min: lo, Max: hi, MinDefined: true, MaxDefined: true}
	}
	if d.Align != nil {
		if !integral(t) {
			return errorf(d.Pos, "alignment fact requires an integer variable, %s is %s", d.Name, t)
		}
		m, err := sintValue(d.Align.Mod)
		if err != nil {
			return err
		}
		r, err := sintValue(d.Align.Rem)
		if err != nil {
			return err
		}
		if m < 1 {
			return errorf(d.Align.Mod.Pos, "alignment modulus must be positive, got %d", m)
		}
		if r < 0 || r >= m {
			return errorf(d.Align.Rem.Pos, "alignment remainder %d outside [0, %d)", r, m)
		}
		info.Align = raster.ModulusRemainder{Modulus: m, Remainder: r}
	}

	l.types[d.Name] = t
	l.scope.Push(d.Name, info)
	return nil
}

// integral reports whether t's lanes hold non-boolean integers.
func integral(t raster.Type) bool {
	return (t.IsInt() || t.IsUInt()) && !t.IsBool()
}

// numeric reports whether t's lanes hold numbers arithmetic can act on.
func numeric(t raster.Type) bool {
	return integral(t) || t.IsFloat()
}

func parseTypeName(name string) (raster.Type, error) {
	base, lanes := name, 1
	if i := strings.IndexByte(name, 'x'); i > 0 {
		if n, err := strconv.Atoi(name[i+1:]); err == nil {
			if n < 2 {
				return raster.Type{}, errorString("lane count must be at least 2 in type " + strconv.Quote(name))
			}
			base, lanes = name[:i], n
		}
	}
	switch base {
	case "bool":
		return raster.Bool(lanes), nil
	case "i8":
		return raster.Int(8, lanes), nil
	case "i16":
		return raster.Int(16, lanes), nil
	case "i32":
		return raster.Int(32, lanes), nil
	case "i64":
		return raster.Int(64, lanes), nil
	case "u8":
		return raster.UInt(8, lanes), nil
	case "u16":
		return raster.UInt(16, lanes), nil
	case "u32":
		return raster.UInt(32, lanes), nil
	case "u64":
		return raster.UInt(64, lanes), nil
	case "f32":
		return raster.Float(32, lanes), nil
	case "f64":
		return raster.Float(64, lanes), nil
	}
	return raster.Type{}, errorString("unknown type " + strconv.Quote(name))
}

type errorString string

func (e errorString) Error() string { return string(e) }

func sintValue(s *SInt) (int64, error) {
	digits, err := strconv.ParseUint(s.Digits, 0, 64)
	if err != nil {
		return 0, errorf(s.Pos, "invalid integer %q", s.Digits)
	}
	if s.Neg {
		if digits > 1<<63 {
			return 0, errorf(s.Pos, "integer -%s out of range", s.Digits)
		}
		if digits == 1<<63 {
			return math.MinInt64, nil
		}
		return -int64(digits), nil
	}
	if digits > math.MaxInt64 {
		return 0, errorf(s.Pos, "integer %s out of range", s.Digits)
	}
	return int64(digits), nil
}

func (l *lowerer) lowerExpr(e *Expr) (value, error) {
	if e.Let != nil {
		return l.lowerLet(e.Let)
	}
	return l.lowerBinary(e.Binary)
}

func (l *lowerer) lowerLet(e *LetExpr) (value, error) {
	v, err := l.lowerExpr(e.Value)
	if err != nil {
		return value{}, err
	}
	bound, err := l.concrete(v)
	if err != nil {
		return value{}, err
	}

	old, shadowed := l.types[e.Name]
	l.types[e.Name] = bound.Type()
	body, err := l.lowerExpr(e.Body)
	if shadowed {
		l.types[e.Name] = old
	} else {
		delete(l.types, e.Name)
	}
	if err != nil {
		return value{}, err
	}
	be, err := l.concrete(body)
	if err != nil {
		return value{}, err
	}
	return value{pos: e.Pos, expr: raster.NewLetExpr(e.Name, bound, be)}, nil
}

func (l *lowerer) lowerBinary(b *BinaryExpr) (value, error) {
	lhs, err := l.lowerUnary(b.Left)
	if err != nil {
		return value{}, err
	}
	lhs, _, err = l.climb(lhs, b.Ops, 1)
	return lhs, err
}

// climb folds the flat operator list into a tree by precedence climbing.
// It consumes operators of at least minPrec and returns the rest.
func (l *lowerer) climb(lhs value, ops []*BinOp, minPrec int) (value, []*BinOp, error) {
	for len(ops) > 0 {
		prec := binaryPrecedence[ops[0].Operator]
		if prec < minPrec {
			break
		}
		op := ops[0]
		rhs, err := l.lowerUnary(op.Right)
		if err != nil {
			return value{}, nil, err
		}
		rest := ops[1:]
		for len(rest) > 0 && binaryPrecedence[rest[0].Operator] > prec {
			rhs, rest, err = l.climb(rhs, rest, prec+1)
			if err != nil {
				return value{}, nil, err
			}
		}
		lhs, err = l.combine(op, lhs, rhs)
		if err != nil {
			return value{}, nil, err
		}
		ops = rest
	}
	return lhs, ops, nil
}

func (l *lowerer) combine(op *BinOp, a, b value) (value, error) {
	opcode, ok := binaryOps[op.Operator]
	if !ok {
		return value{}, errorf(op.Pos, "unknown operator %q", op.Operator)
	}

	if opcode.IsLogical() {
		ae, err := l.concrete(a)
		if err != nil {
			return value{}, err
		}
		be, err := l.concrete(b)
		if err != nil {
			return value{}, err
		}
		if !ae.Type().IsBool() || ae.Type() != be.Type() {
			return value{}, errorf(op.Pos, "operator %s requires boolean operands, got %s and %s",
				op.Operator, ae.Type(), be.Type())
		}
		return value{pos: a.pos, expr: raster.NewBinaryExpr(opcode, ae, be)}, nil
	}

	ae, be, err := l.unify(a, b, op.Pos)
	if err != nil {
		return value{}, err
	}
	t := ae.Type()
	switch {
	case opcode == raster.EQ || opcode == raster.NE:
		// Equality is defined for every type.
	case opcode.IsCompare():
		if !numeric(t) {
			return value{}, errorf(op.Pos, "operator %s requires numeric operands, got %s", op.Operator, t)
		}
	default:
		if !numeric(t) {
			return value{}, errorf(op.Pos, "operator %s requires numeric operands, got %s", op.Operator, t)
		}
	}
	return value{pos: a.pos, expr: raster.NewBinaryExpr(opcode, ae, be)}, nil
}

// unify resolves two operands to one type. A literal adopts the type of a
// concrete sibling, broadcasting to its lanes; two literals default.
func (l *lowerer) unify(a, b value, pos lexer.Position) (raster.Expr, raster.Expr, error) {
	switch {
	case !a.pending() && !b.pending():
		if a.expr.Type() != b.expr.Type() {
			return nil, nil, errorf(pos, "type mismatch: %s vs %s", a.expr.Type(), b.expr.Type())
		}
		return a.expr, b.expr, nil

	case a.pending() && b.pending():
		t := raster.Int(32)
		if a.isFloat || b.isFloat {
			t = raster.Float(64)
		}
		ae, err := l.materialize(a, t)
		if err != nil {
			return nil, nil, err
		}
		be, err := l.materialize(b, t)
		if err != nil {
			return nil, nil, err
		}
		return ae, be, nil

	case a.pending():
		ae, err := l.adopt(a, b.expr.Type())
		if err != nil {
			return nil, nil, err
		}
		return ae, b.expr, nil

	default:
		be, err := l.adopt(b, a.expr.Type())
		if err != nil {
			return nil, nil, err
		}
		return a.expr, be, nil
	}
}

// adopt materializes a pending literal at t's element type, broadcasting
// it when t is a vector.
func (l *lowerer) adopt(v value, t raster.Type) (raster.Expr, error) {
	e, err := l.materialize(v, t.Element())
	if err != nil {
		return nil, err
	}
	if t.IsVector() {
		return raster.NewBroadcastExpr(e, t.Lanes), nil
	}
	return e, nil
}

// materialize builds the literal v at the scalar type t, range-checking
// its value.
func (l *lowerer) materialize(v value, t raster.Type) (raster.Expr, error) {
	if v.isFloat {
		if !t.IsFloat() {
			return nil, errorf(v.pos, "float literal where %s expected", t)
		}
		return raster.NewFloatImm(t, v.fval), nil
	}

	switch {
	case t.IsInt():
		var n int64
		switch {
		case v.neg && v.digits == 1<<63:
			n = math.MinInt64
		case v.neg:
			if v.digits > 1<<63 {
				return nil, errorf(v.pos, "literal -%d out of range of %s", v.digits, t)
			}
			n = -int64(v.digits)
		default:
			if v.digits > math.MaxInt64 {
				return nil, errorf(v.pos, "literal %d out of range of %s", v.digits, t)
			}
			n = int64(v.digits)
		}
		lo, hi := intRange(t.Bits)
		if n < lo || n > hi {
			return nil, errorf(v.pos, "literal %d out of range of %s", n, t)
		}
		return raster.NewIntImm(t, n), nil

	case t.IsBool():
		return nil, errorf(v.pos, "integer literal where %s expected", t)

	case t.IsUInt():
		if v.neg && v.digits != 0 {
			return nil, errorf(v.pos, "negative literal for unsigned type %s", t)
		}
		if t.Bits < 64 && v.digits > (1<<uint(t.Bits))-1 {
			return nil, errorf(v.pos, "literal %d out of range of %s", v.digits, t)
		}
		return raster.NewUIntImm(t, v.digits), nil

	case t.IsFloat():
		f := float64(v.digits)
		if v.neg {
			f = -f
		}
		return raster.NewFloatImm(t, f), nil

	default:
		return nil, errorf(v.pos, "numeric literal where %s expected", t)
	}
}

func intRange(bits int) (int64, int64) {
	switch bits {
	case 8:
		return math.MinInt8, math.MaxInt8
	case 16:
		return math.MinInt16, math.MaxInt16
	case 32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

// concrete resolves a value, defaulting a still-pending integer literal
// to i32 and a float literal to f64.
func (l *lowerer) concrete(v value) (raster.Expr, error) {
	if !v.pending() {
		return v.expr, nil
	}
	if v.isFloat {
		return l.materialize(v, raster.Float(64))
	}
	return l.materialize(v, raster.Int(32))
}

func (l *lowerer) lowerUnary(u *UnaryExpr) (value, error) {
	if u.Value != nil {
		return l.lowerPrimary(u.Value)
	}
	inner, err := l.lowerUnary(u.Unary)
	if err != nil {
		return value{}, err
	}

	switch u.Operator {
	case "-":
		if inner.pending() {
			if inner.isFloat {
				inner.fval = -inner.fval
			} else {
				inner.neg = !inner.neg
			}
			inner.pos = u.Pos
			return inner, nil
		}
		t := inner.expr.Type()
		if !numeric(t) {
			return value{}, errorf(u.Pos, "cannot negate %s", t)
		}
		return value{pos: u.Pos, expr: raster.NewBinaryExpr(raster.SUB, zeroOf(t), inner.expr)}, nil

	case "!":
		e, err := l.concrete(inner)
		if err != nil {
			return value{}, err
		}
		if !e.Type().IsBool() {
			return value{}, errorf(u.Pos, "cannot negate non-boolean %s", e.Type())
		}
		return value{pos: u.Pos, expr: raster.NewNotExpr(e)}, nil

	default:
		return value{}, errorf(u.Pos, "unknown unary operator %q", u.Operator)
	}
}

func zeroOf(t raster.Type) raster.Expr {
	var z raster.Expr
	switch e := t.Element(); {
	case e.IsInt():
		z = raster.NewIntImm(e, 0)
	case e.IsFloat():
		z = raster.NewFloatImm(e, 0)
	default:
		z = raster.NewUIntImm(e, 0)
	}
	if t.IsVector() {
		return raster.NewBroadcastExpr(z, t.Lanes)
	}
	return z
}

func (l *lowerer) lowerPrimary(p *PrimaryExpr) (value, error) {
	switch {
	case p.Float != nil:
		f, err := strconv.ParseFloat(*p.Float, 64)
		if err != nil {
			return value{}, errorf(p.Pos, "invalid float %q", *p.Float)
		}
		return value{pos: p.Pos, isFloat: true, fval: f}, nil

	case p.Int != nil:
		d, err := strconv.ParseUint(*p.Int, 0, 64)
		if err != nil {
			return value{}, errorf(p.Pos, "invalid integer %q", *p.Int)
		}
		return value{pos: p.Pos, digits: d}, nil

	case p.Bool != nil:
		return value{pos: p.Pos, expr: raster.NewBool(*p.Bool == "true")}, nil

	case p.Str != nil:
		s, err := strconv.Unquote(*p.Str)
		if err != nil {
			return value{}, errorf(p.Pos, "invalid string literal %s", *p.Str)
		}
		return value{pos: p.Pos, expr: raster.NewStringImm(s)}, nil

	case p.Call != nil:
		return l.lowerCall(p.Call)

	case p.Ident != nil:
		t, ok := l.types[*p.Ident]
		if !ok {
			return value{}, errorf(p.Pos, "undefined variable %q", *p.Ident)
		}
		return value{pos: p.Pos, expr: raster.NewVarExpr(t, *p.Ident)}, nil

	default:
		return l.lowerExpr(p.Parens)
	}
}

func (l *lowerer) lowerCall(c *CallExpr) (value, error) {
	if t, err := parseTypeName(c.Name); err == nil {
		return l.lowerCast(c, t)
	}
	if c.Impure {
		return l.lowerNamedCall(c)
	}

	switch c.Name {
	case "min", "max":
		a, b, err := l.lowerPair(c, 2)
		if err != nil {
			return value{}, err
		}
		ae, be, err := l.unify(a, b, c.Pos)
		if err != nil {
			return value{}, err
		}
		if !numeric(ae.Type()) {
			return value{}, errorf(c.Pos, "%s requires numeric operands, got %s", c.Name, ae.Type())
		}
		opcode := raster.MIN
		if c.Name == "max" {
			opcode = raster.MAX
		}
		return value{pos: c.Pos, expr: raster.NewBinaryExpr(opcode, ae, be)}, nil

	case "select":
		if len(c.Args) != 3 {
			return value{}, errorf(c.Pos, "select takes 3 arguments, got %d", len(c.Args))
		}
		cv, err := l.lowerExpr(c.Args[0])
		if err != nil {
			return value{}, err
		}
		cond, err := l.concrete(cv)
		if err != nil {
			return value{}, err
		}
		if !cond.Type().IsBool() {
			return value{}, errorf(c.Pos, "select condition must be boolean, got %s", cond.Type())
		}
		tv, err := l.lowerExpr(c.Args[1])
		if err != nil {
			return value{}, err
		}
		fv, err := l.lowerExpr(c.Args[2])
		if err != nil {
			return value{}, err
		}
		then, els, err := l.unify(tv, fv, c.Pos)
		if err != nil {
			return value{}, err
		}
		if cond.Type().Lanes != 1 && cond.Type().Lanes != then.Type().Lanes {
			return value{}, errorf(c.Pos, "select condition lanes %d incompatible with value lanes %d",
				cond.Type().Lanes, then.Type().Lanes)
		}
		return value{pos: c.Pos, expr: raster.NewSelectExpr(cond, then, els)}, nil

	case "broadcast":
		if len(c.Args) != 2 {
			return value{}, errorf(c.Pos, "broadcast takes 2 arguments, got %d", len(c.Args))
		}
		lanes, err := l.litLanes(c.Args[1])
		if err != nil {
			return value{}, err
		}
		vv, err := l.lowerExpr(c.Args[0])
		if err != nil {
			return value{}, err
		}
		e, err := l.concrete(vv)
		if err != nil {
			return value{}, err
		}
		if !e.Type().IsScalar() {
			return value{}, errorf(c.Pos, "broadcast requires a scalar value, got %s", e.Type())
		}
		return value{pos: c.Pos, expr: raster.NewBroadcastExpr(e, lanes)}, nil

	case "ramp":
		if len(c.Args) != 3 {
			return value{}, errorf(c.Pos, "ramp takes 3 arguments, got %d", len(c.Args))
		}
		lanes, err := l.litLanes(c.Args[2])
		if err != nil {
			return value{}, err
		}
		bv, err := l.lowerExpr(c.Args[0])
		if err != nil {
			return value{}, err
		}
		sv, err := l.lowerExpr(c.Args[1])
		if err != nil {
			return value{}, err
		}
		base, stride, err := l.unify(bv, sv, c.Pos)
		if err != nil {
			return value{}, err
		}
		if !base.Type().IsScalar() || !numeric(base.Type()) {
			return value{}, errorf(c.Pos, "ramp requires scalar numeric base and stride, got %s", base.Type())
		}
		return value{pos: c.Pos, expr: raster.NewRampExpr(base, stride, lanes)}, nil

	case "abs", "likely":
		if len(c.Args) != 1 {
			return value{}, errorf(c.Pos, "%s takes 1 argument, got %d", c.Name, len(c.Args))
		}
		av, err := l.lowerExpr(c.Args[0])
		if err != nil {
			return value{}, err
		}
		arg, err := l.concrete(av)
		if err != nil {
			return value{}, err
		}
		if c.Name == "abs" && !numeric(arg.Type()) {
			return value{}, errorf(c.Pos, "abs requires a numeric argument, got %s", arg.Type())
		}
		return value{pos: c.Pos, expr: raster.NewCallExpr(arg.Type(), c.Name, []raster.Expr{arg}, true)}, nil

	default:
		return l.lowerNamedCall(c)
	}
}

func (l *lowerer) lowerCast(c *CallExpr, t raster.Type) (value, error) {
	if c.Impure {
		return value{}, errorf(c.Pos, "cast to %s cannot be impure", t)
	}
	if !t.IsScalar() || t.IsBool() {
		return value{}, errorf(c.Pos, "cannot cast a literal to %s", t)
	}
	if len(c.Args) != 1 {
		return value{}, errorf(c.Pos, "cast to %s takes one literal argument, got %d", t, len(c.Args))
	}
	v, err := l.lowerExpr(c.Args[0])
	if err != nil {
		return value{}, err
	}
	if !v.pending() {
		return value{}, errorf(c.Pos, "cast to %s requires a literal argument", t)
	}
	e, err := l.materialize(v, t)
	if err != nil {
		return value{}, err
	}
	return value{pos: c.Pos, expr: e}, nil
}

// lowerNamedCall lowers a call with no builtin meaning. Its type is taken
// from the first argument.
func (l *lowerer) lowerNamedCall(c *CallExpr) (value, error) {
	if len(c.Args) == 0 {
		return value{}, errorf(c.Pos, "cannot infer the type of %q with no arguments", c.Name)
	}
	args := make([]raster.Expr, len(c.Args))
	for i, a := range c.Args {
		v, err := l.lowerExpr(a)
		if err != nil {
			return value{}, err
		}
		if args[i], err = l.concrete(v); err != nil {
			return value{}, err
		}
	}
	return value{pos: c.Pos, expr: raster.NewCallExpr(args[0].Type(), c.Name, args, !c.Impure)}, nil
}

func (l *lowerer) lowerPair(c *CallExpr, n int) (value, value, error) {
	if len(c.Args) != n {
		return value{}, value{}, errorf(c.Pos, "%s takes %d arguments, got %d", c.Name, n, len(c.Args))
	}
	a, err := l.lowerExpr(c.Args[0])
	if err != nil {
		return value{}, value{}, err
	}
	b, err := l.lowerExpr(c.Args[1])
	if err != nil {
		return value{}, value{}, err
	}
	return a, b, nil
}

// litLanes extracts a lane-count argument, which must be a plain integer
// literal of at least 2.
func (l *lowerer) litLanes(e *Expr) (int, error) {
	v, err := l.lowerExpr(e)
	if err != nil {
		return 0, err
	}
	if v.pending() && !v.isFloat && !v.neg && v.digits >= 2 && v.digits <= math.MaxInt32 {
		return int(v.digits), nil
	}
	return 0, errorf(v.pos, "lane count must be an integer literal of at least 2")
}
