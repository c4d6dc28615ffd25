package raster

import (
	"fmt"
	"math"
)

// divImp divides with Euclidean semantics: the quotient rounds so that the
// remainder is always non-negative, and division by zero yields zero.
func divImp(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	q := a / b
	if r := a - q*b; r < 0 {
		if b > 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

// modImp returns the Euclidean remainder, in [0, |b|). A zero divisor
// yields zero.
func modImp(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	r := a % b
	if r < 0 {
		if b > 0 {
			r += b
		} else {
			r -= b
		}
	}
	return r
}

// modImpF is the floating point remainder: a - b*floor(a/b).
func modImpF(a, b float64) float64 {
	return a - b*math.Floor(a/b)
}

// makeImm returns the immediate of a scalar type holding v.
func makeImm(t Type, v int64) Expr {
	assert(t.IsScalar(), "makeImm on vector type %s", t)
	switch t.Code {
	case TypeInt:
		return NewIntImm(t, v)
	case TypeUInt:
		return NewUIntImm(t, uint64(v))
	case TypeFloat:
		return NewFloatImm(t, float64(v))
	default:
		panic(fmt.Sprintf("makeImm on %s", t))
	}
}

// foldBinary applies op to two constant scalars of identical type and
// returns the resulting immediate. Folds whose result cannot be
// represented in 64 bits report ErrFoldOverflow so the caller can leave
// the expression alone.
func foldBinary(op BinaryOp, x, y Expr) (Expr, error) {
	if x.Type() != y.Type() {
		return nil, fmt.Errorf("fold operand types differ: %s vs %s", x.Type(), y.Type())
	}
	switch x := x.(type) {
	case *IntImm:
		y, ok := y.(*IntImm)
		if !ok {
			return nil, fmt.Errorf("fold operand is not a constant: %s", y)
		}
		return foldInt(op, x.Type(), x.Value, y.Value)
	case *UIntImm:
		y, ok := y.(*UIntImm)
		if !ok {
			return nil, fmt.Errorf("fold operand is not a constant: %s", y)
		}
		return foldUInt(op, x.Type(), x.Value, y.Value)
	case *FloatImm:
		y, ok := y.(*FloatImm)
		if !ok {
			return nil, fmt.Errorf("fold operand is not a constant: %s", y)
		}
		return foldFloat(op, x.Type(), x.Value, y.Value)
	default:
		return nil, fmt.Errorf("cannot fold %s on %s", op, x.Type())
	}
}

func foldInt(op BinaryOp, t Type, a, b int64) (Expr, error) {
	switch op {
	case ADD:
		if t.Bits == 64 {
			v, ok := checkedAdd(a, b)
			if !ok {
				return nil, ErrFoldOverflow
			}
			return NewIntImm(t, v), nil
		}
		return NewIntImm(t, a+b), nil
	case SUB:
		if t.Bits == 64 {
			v, ok := checkedSub(a, b)
			if !ok {
				return nil, ErrFoldOverflow
			}
			return NewIntImm(t, v), nil
		}
		return NewIntImm(t, a-b), nil
	case MUL:
		if t.Bits == 64 {
			v, ok := checkedMul(a, b)
			if !ok {
				return nil, ErrFoldOverflow
			}
			return NewIntImm(t, v), nil
		}
		return NewIntImm(t, a*b), nil
	case DIV:
		if t.Bits == 64 && a == math.MinInt64 && b == -1 {
			return nil, ErrFoldOverflow
		}
		return NewIntImm(t, divImp(a, b)), nil
	case MOD:
		return NewIntImm(t, modImp(a, b)), nil
	case MIN:
		if b < a {
			a = b
		}
		return NewIntImm(t, a), nil
	case MAX:
		if b > a {
			a = b
		}
		return NewIntImm(t, a), nil
	case EQ:
		return NewBool(a == b), nil
	case NE:
		return NewBool(a != b), nil
	case LT:
		return NewBool(a < b), nil
	case LE:
		return NewBool(a <= b), nil
	case GT:
		return NewBool(a > b), nil
	case GE:
		return NewBool(a >= b), nil
	default:
		return nil, fmt.Errorf("cannot fold %s on %s", op, t)
	}
}

func foldUInt(op BinaryOp, t Type, a, b uint64) (Expr, error) {
	switch op {
	case ADD:
		return NewUIntImm(t, a+b), nil
	case SUB:
		return NewUIntImm(t, a-b), nil
	case MUL:
		return NewUIntImm(t, a*b), nil
	case DIV:
		if b == 0 {
			return NewUIntImm(t, 0), nil
		}
		return NewUIntImm(t, a/b), nil
	case MOD:
		if b == 0 {
			return NewUIntImm(t, 0), nil
		}
		return NewUIntImm(t, a%b), nil
	case MIN:
		if b < a {
			a = b
		}
		return NewUIntImm(t, a), nil
	case MAX:
		if b > a {
			a = b
		}
		return NewUIntImm(t, a), nil
	case EQ:
		return NewBool(a == b), nil
	case NE:
		return NewBool(a != b), nil
	case LT:
		return NewBool(a < b), nil
	case LE:
		return NewBool(a <= b), nil
	case GT:
		return NewBool(a > b), nil
	case GE:
		return NewBool(a >= b), nil
	case AND:
		return NewBool(a != 0 && b != 0), nil
	case OR:
		return NewBool(a != 0 || b != 0), nil
	default:
		return nil, fmt.Errorf("cannot fold %s on %s", op, t)
	}
}

func foldFloat(op BinaryOp, t Type, a, b float64) (Expr, error) {
	switch op {
	case ADD:
		return NewFloatImm(t, a+b), nil
	case SUB:
		return NewFloatImm(t, a-b), nil
	case MUL:
		return NewFloatImm(t, a*b), nil
	case DIV:
		return NewFloatImm(t, a/b), nil
	case MOD:
		return NewFloatImm(t, modImpF(a, b)), nil
	case MIN:
		if b < a {
			a = b
		}
		return NewFloatImm(t, a), nil
	case MAX:
		if b > a {
			a = b
		}
		return NewFloatImm(t, a), nil
	case EQ:
		return NewBool(a == b), nil
	case NE:
		return NewBool(a != b), nil
	case LT:
		return NewBool(a < b), nil
	case LE:
		return NewBool(a <= b), nil
	case GT:
		return NewBool(a > b), nil
	case GE:
		return NewBool(a >= b), nil
	default:
		return nil, fmt.Errorf("cannot fold %s on %s", op, t)
	}
}

// foldNot negates a constant boolean.
func foldNot(x Expr) (Expr, error) {
	u, ok := x.(*UIntImm)
	if !ok || !u.Type().IsBool() {
		return nil, fmt.Errorf("cannot fold ! on %s", x.Type())
	}
	return NewBool(u.Value == 0), nil
}

// foldAbs returns the absolute value of a constant scalar.
func foldAbs(x Expr) (Expr, error) {
	switch x := x.(type) {
	case *IntImm:
		if x.Value >= 0 {
			return x, nil
		}
		if x.Type().Bits == 64 && x.Value == math.MinInt64 {
			return nil, ErrFoldOverflow
		}
		return NewIntImm(x.Type(), -x.Value), nil
	case *UIntImm:
		return x, nil
	case *FloatImm:
		return NewFloatImm(x.Type(), math.Abs(x.Value)), nil
	default:
		return nil, fmt.Errorf("cannot fold abs on %s", x.Type())
	}
}

// Evaluator evaluates expressions to immediates, resolving variables
// through bound values.
type Evaluator struct {
	bindings map[string]Expr
}

// NewEvaluator returns an evaluator with no bindings.
func NewEvaluator() *Evaluator {
	return &Evaluator{bindings: make(map[string]Expr)}
}

// Bind associates a variable name with a value. The value is evaluated
// lazily at each reference, so it may itself contain bound variables.
func (ev *Evaluator) Bind(name string, value Expr) {
	ev.bindings[name] = value
}

// Eval evaluates a scalar expression to a single immediate.
func (ev *Evaluator) Eval(e Expr) (Expr, error) {
	if e.Type().IsVector() {
		return nil, fmt.Errorf("cannot evaluate vector expression %s as a scalar", e)
	}
	return ev.evalLane(e, 0)
}

// EvalLanes evaluates every lane of an expression, returning one scalar
// immediate per lane.
func (ev *Evaluator) EvalLanes(e Expr) ([]Expr, error) {
	out := make([]Expr, e.Type().Lanes)
	for l := range out {
		v, err := ev.evalLane(e, l)
		if err != nil {
			return nil, err
		}
		out[l] = v
	}
	return out, nil
}

func (ev *Evaluator) evalLane(e Expr, lane int) (Expr, error) {
	switch e := e.(type) {
	case *IntImm, *UIntImm, *FloatImm, *StringImm:
		return e, nil
	case *VarExpr:
		v, ok := ev.bindings[e.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnboundVar, e.Name)
		}
		if v.Type().Element() != e.Type().Element() {
			return nil, fmt.Errorf("bound value for %s has type %s, want %s", e.Name, v.Type(), e.Type())
		}
		if v.Type().IsVector() {
			return ev.evalLane(v, lane)
		}
		return ev.evalLane(v, 0)
	case *BinaryExpr:
		a, err := ev.evalLane(e.LHS, lane)
		if err != nil {
			return nil, err
		}
		b, err := ev.evalLane(e.RHS, lane)
		if err != nil {
			return nil, err
		}
		return foldBinary(e.Op, a, b)
	case *NotExpr:
		x, err := ev.evalLane(e.X, lane)
		if err != nil {
			return nil, err
		}
		return foldNot(x)
	case *SelectExpr:
		cl := 0
		if e.Cond.Type().IsVector() {
			cl = lane
		}
		c, err := ev.evalLane(e.Cond, cl)
		if err != nil {
			return nil, err
		}
		u, ok := c.(*UIntImm)
		if !ok {
			return nil, fmt.Errorf("select condition is not boolean: %s", c)
		}
		if u.Value != 0 {
			return ev.evalLane(e.Then, lane)
		}
		return ev.evalLane(e.Else, lane)
	case *BroadcastExpr:
		return ev.evalLane(e.Value, 0)
	case *RampExpr:
		base, err := ev.evalLane(e.Base, 0)
		if err != nil {
			return nil, err
		}
		stride, err := ev.evalLane(e.Stride, 0)
		if err != nil {
			return nil, err
		}
		step, err := foldBinary(MUL, stride, makeImm(e.Stride.Type(), int64(lane)))
		if err != nil {
			return nil, err
		}
		return foldBinary(ADD, base, step)
	case *LetExpr:
		return ev.evalLane(SubstExpr(e.Body, e.Name, e.Value), lane)
	case *CallExpr:
		if !e.Pure {
			return nil, fmt.Errorf("%w: %s", ErrImpureCall, e.Name)
		}
		switch e.Name {
		case "abs":
			if len(e.Args) == 1 {
				x, err := ev.evalLane(e.Args[0], lane)
				if err != nil {
					return nil, err
				}
				return foldAbs(x)
			}
		case "likely":
			if len(e.Args) == 1 {
				return ev.evalLane(e.Args[0], lane)
			}
		}
		return nil, fmt.Errorf("cannot evaluate call: %s", e.Name)
	default:
		return nil, fmt.Errorf("cannot evaluate %T", e)
	}
}
