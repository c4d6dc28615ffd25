package raster

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Expr represents an immutable node in the typed expression tree. Nodes are
// never modified after construction; rewrites always allocate new nodes, so
// subtrees may be freely shared between parents.
type Expr interface {
	// Type returns the type of the value the expression produces.
	Type() Type

	// String returns the string representation of the expression.
	String() string

	expr()
}

func (*IntImm) expr()        {}
func (*UIntImm) expr()       {}
func (*FloatImm) expr()      {}
func (*StringImm) expr()     {}
func (*VarExpr) expr()       {}
func (*BinaryExpr) expr()    {}
func (*NotExpr) expr()       {}
func (*SelectExpr) expr()    {}
func (*BroadcastExpr) expr() {}
func (*RampExpr) expr()      {}
func (*LetExpr) expr()       {}
func (*CallExpr) expr()      {}

// BinaryOp represents a binary expression operation.
type BinaryOp int

// BinaryExpr operations.
const (
	arithmetic_op_begin = BinaryOp(iota)
	ADD
	SUB
	MUL
	DIV
	MOD
	MIN
	MAX
	arithmetic_op_end

	compare_op_begin
	EQ
	NE
	LT
	LE
	GT
	GE
	compare_op_end

	logical_op_begin
	AND
	OR
	logical_op_end
)

var binaryOps = [...]string{
	ADD: "+",
	SUB: "-",
	MUL: "*",
	DIV: "/",
	MOD: "%",
	MIN: "min",
	MAX: "max",
	EQ:  "==",
	NE:  "!=",
	LT:  "<",
	LE:  "<=",
	GT:  ">",
	GE:  ">=",
	AND: "&&",
	OR:  "||",
}

// String returns the string representation of the operation.
func (op BinaryOp) String() string {
	if op >= 0 && op < BinaryOp(len(binaryOps)) && binaryOps[op] != "" {
		return binaryOps[op]
	}
	return fmt.Sprintf("BinaryOp<%d>", op)
}

// IsArithmetic returns true if op is an arithmetic operator.
func (op BinaryOp) IsArithmetic() bool {
	return op > arithmetic_op_begin && op < arithmetic_op_end
}

// IsCompare returns true if op is a comparison operator.
func (op BinaryOp) IsCompare() bool {
	return op > compare_op_begin && op < compare_op_end
}

// IsLogical returns true if op is a boolean connective.
func (op BinaryOp) IsLogical() bool {
	return op > logical_op_begin && op < logical_op_end
}

// IntImm is a signed integer literal. The value is normalized into the
// type's width at construction so equal bit patterns compare equal.
type IntImm struct {
	typ   Type
	Value int64
}

// NewIntImm returns a new signed integer literal of the given scalar type.
func NewIntImm(t Type, value int64) *IntImm {
	assert(t.IsInt(), "int literal requires a signed integer type, got %s", t)
	assert(t.IsScalar(), "int literal cannot be a vector: %s", t)
	return &IntImm{typ: t, Value: normInt(value, t.Bits)}
}

// NewInt returns a new 32-bit signed integer literal.
func NewInt(value int64) *IntImm {
	return NewIntImm(Int(32), value)
}

// Type returns the type of the literal.
func (e *IntImm) Type() Type { return e.typ }

// String returns the string representation of the literal.
func (e *IntImm) String() string {
	if e.typ == Int(32) {
		return strconv.FormatInt(e.Value, 10)
	}
	return fmt.Sprintf("%s(%d)", e.typ, e.Value)
}

// UIntImm is an unsigned integer or boolean literal, masked to its width.
type UIntImm struct {
	typ   Type
	Value uint64
}

// NewUIntImm returns a new unsigned integer literal of the given scalar type.
func NewUIntImm(t Type, value uint64) *UIntImm {
	assert(t.IsUInt(), "uint literal requires an unsigned type, got %s", t)
	assert(t.IsScalar(), "uint literal cannot be a vector: %s", t)
	return &UIntImm{typ: t, Value: normUInt(value, t.Bits)}
}

// NewBool returns a new boolean literal.
func NewBool(value bool) *UIntImm {
	if value {
		return NewUIntImm(Bool(), 1)
	}
	return NewUIntImm(Bool(), 0)
}

// Type returns the type of the literal.
func (e *UIntImm) Type() Type { return e.typ }

// IsTrue returns true if the literal is boolean true.
func (e *UIntImm) IsTrue() bool { return e.typ.IsBool() && e.Value == 1 }

// IsFalse returns true if the literal is boolean false.
func (e *UIntImm) IsFalse() bool { return e.typ.IsBool() && e.Value == 0 }

// String returns the string representation of the literal.
func (e *UIntImm) String() string {
	if e.typ.IsBool() {
		if e.Value == 1 {
			return "true"
		}
		return "false"
	}
	return fmt.Sprintf("%s(%d)", e.typ, e.Value)
}

// FloatImm is a floating point literal. 32-bit literals are rounded to
// float32 precision at construction.
type FloatImm struct {
	typ   Type
	Value float64
}

// NewFloatImm returns a new floating point literal of the given scalar type.
func NewFloatImm(t Type, value float64) *FloatImm {
	assert(t.IsFloat(), "float literal requires a float type, got %s", t)
	assert(t.IsScalar(), "float literal cannot be a vector: %s", t)
	if t.Bits == 32 {
		value = float64(float32(value))
	}
	return &FloatImm{typ: t, Value: value}
}

// Type returns the type of the literal.
func (e *FloatImm) Type() Type { return e.typ }

// String returns the string representation of the literal.
func (e *FloatImm) String() string {
	s := strconv.FormatFloat(e.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	if e.typ.Bits == 32 {
		return fmt.Sprintf("f32(%s)", s)
	}
	return s
}

// StringImm is a string literal. It is handle-typed and therefore opaque
// to the simplifier.
type StringImm struct {
	Value string
}

// NewStringImm returns a new string literal.
func NewStringImm(value string) *StringImm {
	return &StringImm{Value: value}
}

// Type returns the handle type.
func (e *StringImm) Type() Type { return Handle() }

// String returns the quoted string literal.
func (e *StringImm) String() string { return strconv.Quote(e.Value) }

// VarExpr is a reference to a named variable of known type.
type VarExpr struct {
	typ  Type
	Name string
}

// NewVarExpr returns a new variable reference.
func NewVarExpr(t Type, name string) *VarExpr {
	assert(name != "", "variable name required")
	return &VarExpr{typ: t, Name: name}
}

// Type returns the declared type of the variable.
func (e *VarExpr) Type() Type { return e.typ }

// String returns the variable name.
func (e *VarExpr) String() string { return e.Name }

// BinaryExpr represents an operation on two expressions of equal type.
type BinaryExpr struct {
	typ Type
	Op  BinaryOp
	LHS Expr
	RHS Expr
}

// NewBinaryExpr returns a new binary expression. Operand types must match
// exactly; arithmetic requires numeric non-boolean operands, comparisons
// other than EQ/NE require numeric non-boolean operands, and logical
// connectives require boolean operands.
func NewBinaryExpr(op BinaryOp, lhs, rhs Expr) *BinaryExpr {
	lt, rt := lhs.Type(), rhs.Type()
	assert(lt == rt, "binary expr type mismatch: op=%s %s != %s", op, lt, rt)

	var typ Type
	switch {
	case op.IsArithmetic():
		assert(!lt.IsBool() && !lt.IsHandle(), "arithmetic on non-numeric type %s", lt)
		typ = lt
	case op == EQ || op == NE:
		typ = Bool(lt.Lanes)
	case op.IsCompare():
		assert(!lt.IsBool() && !lt.IsHandle(), "ordering comparison on non-numeric type %s", lt)
		typ = Bool(lt.Lanes)
	case op.IsLogical():
		assert(lt.IsBool(), "logical op on non-boolean type %s", lt)
		typ = lt
	default:
		panic("unreachable")
	}
	return &BinaryExpr{typ: typ, Op: op, LHS: lhs, RHS: rhs}
}

// Type returns the type of the expression.
func (e *BinaryExpr) Type() Type { return e.typ }

// String returns the string representation of the expression.
func (e *BinaryExpr) String() string {
	if e.Op == MIN || e.Op == MAX {
		return fmt.Sprintf("%s(%s, %s)", e.Op, e.LHS, e.RHS)
	}
	return fmt.Sprintf("(%s %s %s)", e.LHS, e.Op, e.RHS)
}

// NotExpr represents boolean negation.
type NotExpr struct {
	X Expr
}

// NewNotExpr returns a new negation of the boolean expression x.
func NewNotExpr(x Expr) *NotExpr {
	assert(x.Type().IsBool(), "negation of non-boolean type %s", x.Type())
	return &NotExpr{X: x}
}

// Type returns the type of the expression.
func (e *NotExpr) Type() Type { return e.X.Type() }

// String returns the string representation of the expression.
func (e *NotExpr) String() string { return fmt.Sprintf("!%s", e.X) }

// SelectExpr chooses between two values by a boolean condition,
// lane-wise for vectors.
type SelectExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

// NewSelectExpr returns a new select expression. The condition must be
// boolean with either a single lane or the branch lane count; both branches
// must have the same type.
func NewSelectExpr(cond, then, els Expr) *SelectExpr {
	assert(cond.Type().IsBool(), "select condition must be boolean, got %s", cond.Type())
	assert(then.Type() == els.Type(), "select branch type mismatch: %s != %s", then.Type(), els.Type())
	assert(cond.Type().Lanes == 1 || cond.Type().Lanes == then.Type().Lanes,
		"select condition lanes %d incompatible with value lanes %d", cond.Type().Lanes, then.Type().Lanes)
	return &SelectExpr{Cond: cond, Then: then, Else: els}
}

// Type returns the type of the branches.
func (e *SelectExpr) Type() Type { return e.Then.Type() }

// String returns the string representation of the expression.
func (e *SelectExpr) String() string {
	return fmt.Sprintf("select(%s, %s, %s)", e.Cond, e.Then, e.Else)
}

// BroadcastExpr replicates a scalar value across lanes.
type BroadcastExpr struct {
	Value Expr
	Lanes int
}

// NewBroadcastExpr returns a new broadcast of a scalar value.
func NewBroadcastExpr(value Expr, lanes int) *BroadcastExpr {
	assert(value.Type().IsScalar(), "broadcast of non-scalar type %s", value.Type())
	assert(lanes >= 2, "broadcast lanes must be at least 2, got %d", lanes)
	return &BroadcastExpr{Value: value, Lanes: lanes}
}

// Type returns the vector type of the broadcast.
func (e *BroadcastExpr) Type() Type { return e.Value.Type().WithLanes(e.Lanes) }

// String returns the string representation of the expression.
func (e *BroadcastExpr) String() string {
	return fmt.Sprintf("broadcast(%s, %d)", e.Value, e.Lanes)
}

// RampExpr is a vector whose lane i holds base + i*stride.
type RampExpr struct {
	Base   Expr
	Stride Expr
	Lanes  int
}

// NewRampExpr returns a new linear ramp vector.
func NewRampExpr(base, stride Expr, lanes int) *RampExpr {
	assert(base.Type() == stride.Type(), "ramp base/stride type mismatch: %s != %s", base.Type(), stride.Type())
	assert(base.Type().IsScalar(), "ramp of non-scalar type %s", base.Type())
	assert(!base.Type().IsBool() && !base.Type().IsHandle(), "ramp requires a numeric type, got %s", base.Type())
	assert(lanes >= 2, "ramp lanes must be at least 2, got %d", lanes)
	return &RampExpr{Base: base, Stride: stride, Lanes: lanes}
}

// Type returns the vector type of the ramp.
func (e *RampExpr) Type() Type { return e.Base.Type().WithLanes(e.Lanes) }

// String returns the string representation of the expression.
func (e *RampExpr) String() string {
	return fmt.Sprintf("ramp(%s, %s, %d)", e.Base, e.Stride, e.Lanes)
}

// LetExpr binds a named value within a body expression.
type LetExpr struct {
	Name  string
	Value Expr
	Body  Expr
}

// NewLetExpr returns a new let binding.
func NewLetExpr(name string, value, body Expr) *LetExpr {
	assert(name != "", "let binding name required")
	return &LetExpr{Name: name, Value: value, Body: body}
}

// Type returns the type of the body.
func (e *LetExpr) Type() Type { return e.Body.Type() }

// String returns the string representation of the expression.
func (e *LetExpr) String() string {
	return fmt.Sprintf("(let %s = %s in %s)", e.Name, e.Value, e.Body)
}

// CallExpr is a call to a named function. Pure calls are value-semantic and
// may be folded or moved; impure calls are barriers the simplifier must not
// fold, reorder, or remove.
type CallExpr struct {
	typ  Type
	Name string
	Args []Expr
	Pure bool
}

// NewCallExpr returns a new call expression of the given result type.
func NewCallExpr(t Type, name string, args []Expr, pure bool) *CallExpr {
	assert(name != "", "call name required")
	return &CallExpr{typ: t, Name: name, Args: args, Pure: pure}
}

// Type returns the result type of the call.
func (e *CallExpr) Type() Type { return e.typ }

// String returns the string representation of the call. Impure calls are
// marked with a trailing "!" on the name.
func (e *CallExpr) String() string {
	var sb strings.Builder
	sb.WriteString(e.Name)
	if !e.Pure {
		sb.WriteString("!")
	}
	sb.WriteString("(")
	for i, arg := range e.Args {
		if i != 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s", arg)
	}
	sb.WriteString(")")
	return sb.String()
}

// normInt sign-extends value from the given width so that equal bit
// patterns are represented identically.
func normInt(value int64, bits int) int64 {
	if bits == 64 {
		return value
	}
	shift := uint(64 - bits)
	return value << shift >> shift
}

// normUInt masks value to the given width.
func normUInt(value uint64, bits int) uint64 {
	if bits == 64 {
		return value
	}
	return value & (1<<uint(bits) - 1)
}

// IsConstExpr returns true if expr is a literal of any kind.
func IsConstExpr(expr Expr) bool {
	switch expr.(type) {
	case *IntImm, *UIntImm, *FloatImm, *StringImm:
		return true
	default:
		return false
	}
}

// IsConstValue returns true if expr is an integer or boolean literal, or a
// broadcast of one, equal to value.
func IsConstValue(expr Expr, value int64) bool {
	switch expr := expr.(type) {
	case *IntImm:
		return expr.Value == value
	case *UIntImm:
		return value >= 0 && expr.Value == uint64(value)
	case *BroadcastExpr:
		return IsConstValue(expr.Value, value)
	default:
		return false
	}
}

// IsConstTrue returns true if expr is boolean true, or a broadcast of it.
func IsConstTrue(expr Expr) bool {
	switch expr := expr.(type) {
	case *UIntImm:
		return expr.IsTrue()
	case *BroadcastExpr:
		return IsConstTrue(expr.Value)
	default:
		return false
	}
}

// IsConstFalse returns true if expr is boolean false, or a broadcast of it.
func IsConstFalse(expr Expr) bool {
	switch expr := expr.(type) {
	case *UIntImm:
		return expr.IsFalse()
	case *BroadcastExpr:
		return IsConstFalse(expr.Value)
	default:
		return false
	}
}

// constIntValue returns the integer value of an integer literal, or a
// broadcast of one, when it is representable in an int64.
func constIntValue(expr Expr) (int64, bool) {
	s, ok := scalarConst(expr)
	if !ok {
		return 0, false
	}
	switch s := s.(type) {
	case *IntImm:
		return s.Value, true
	case *UIntImm:
		if s.Value <= math.MaxInt64 {
			return int64(s.Value), true
		}
	}
	return 0, false
}

// scalarConst returns the scalar literal of expr if expr is a literal or a
// broadcast of one.
func scalarConst(expr Expr) (Expr, bool) {
	switch expr := expr.(type) {
	case *IntImm, *UIntImm, *FloatImm:
		return expr, true
	case *BroadcastExpr:
		return scalarConst(expr.Value)
	default:
		return nil, false
	}
}

// ExprEqual returns true if a and b are structurally identical.
func ExprEqual(a, b Expr) bool {
	return CompareExpr(a, b) == 0
}

// CompareExpr returns an integer comparing two expressions in a total
// structural order. The result will be 0 if a==b, -1 if a < b, and +1 if
// a > b.
func CompareExpr(a, b Expr) int {
	if a == nil && b != nil {
		return -1
	} else if a != nil && b == nil {
		return 1
	} else if a == nil && b == nil {
		return 0
	}

	if ak, bk := exprKind(a), exprKind(b); ak < bk {
		return -1
	} else if ak > bk {
		return 1
	}

	if cmp := compareType(a.Type(), b.Type()); cmp != 0 {
		return cmp
	}

	switch a := a.(type) {
	case *IntImm:
		return compareInt64(a.Value, b.(*IntImm).Value)
	case *UIntImm:
		return compareUint64(a.Value, b.(*UIntImm).Value)
	case *FloatImm:
		return compareFloat64(a.Value, b.(*FloatImm).Value)
	case *StringImm:
		return strings.Compare(a.Value, b.(*StringImm).Value)
	case *VarExpr:
		return strings.Compare(a.Name, b.(*VarExpr).Name)
	case *BinaryExpr:
		return compareBinaryExpr(a, b.(*BinaryExpr))
	case *NotExpr:
		return CompareExpr(a.X, b.(*NotExpr).X)
	case *SelectExpr:
		return compareSelectExpr(a, b.(*SelectExpr))
	case *BroadcastExpr:
		return CompareExpr(a.Value, b.(*BroadcastExpr).Value)
	case *RampExpr:
		return compareRampExpr(a, b.(*RampExpr))
	case *LetExpr:
		return compareLetExpr(a, b.(*LetExpr))
	case *CallExpr:
		return compareCallExpr(a, b.(*CallExpr))
	default:
		panic("unreachable")
	}
}

func compareType(a, b Type) int {
	if a.Code != b.Code {
		return int(a.Code - b.Code)
	} else if a.Bits != b.Bits {
		return a.Bits - b.Bits
	}
	return a.Lanes - b.Lanes
}

func compareInt64(a, b int64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareUint64(a, b uint64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareFloat64(a, b float64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareBinaryExpr(a, b *BinaryExpr) int {
	if a.Op != b.Op {
		return int(a.Op - b.Op)
	} else if cmp := CompareExpr(a.LHS, b.LHS); cmp != 0 {
		return cmp
	}
	return CompareExpr(a.RHS, b.RHS)
}

func compareSelectExpr(a, b *SelectExpr) int {
	if cmp := CompareExpr(a.Cond, b.Cond); cmp != 0 {
		return cmp
	} else if cmp := CompareExpr(a.Then, b.Then); cmp != 0 {
		return cmp
	}
	return CompareExpr(a.Else, b.Else)
}

func compareRampExpr(a, b *RampExpr) int {
	if cmp := CompareExpr(a.Base, b.Base); cmp != 0 {
		return cmp
	}
	return CompareExpr(a.Stride, b.Stride)
}

func compareLetExpr(a, b *LetExpr) int {
	if cmp := strings.Compare(a.Name, b.Name); cmp != 0 {
		return cmp
	} else if cmp := CompareExpr(a.Value, b.Value); cmp != 0 {
		return cmp
	}
	return CompareExpr(a.Body, b.Body)
}

func compareCallExpr(a, b *CallExpr) int {
	if cmp := strings.Compare(a.Name, b.Name); cmp != 0 {
		return cmp
	}
	if a.Pure != b.Pure {
		if a.Pure {
			return -1
		}
		return 1
	}
	if len(a.Args) != len(b.Args) {
		return len(a.Args) - len(b.Args)
	}
	for i := range a.Args {
		if cmp := CompareExpr(a.Args[i], b.Args[i]); cmp != 0 {
			return cmp
		}
	}
	return 0
}

func exprKind(expr Expr) int {
	switch expr.(type) {
	case *IntImm:
		return 0
	case *UIntImm:
		return 1
	case *FloatImm:
		return 2
	case *StringImm:
		return 3
	case *VarExpr:
		return 4
	case *BinaryExpr:
		return 5
	case *NotExpr:
		return 6
	case *SelectExpr:
		return 7
	case *BroadcastExpr:
		return 8
	case *RampExpr:
		return 9
	case *LetExpr:
		return 10
	case *CallExpr:
		return 11
	default:
		panic("unreachable")
	}
}

// ExprVisitor represents a visitor that can be passed to WalkExpr().
type ExprVisitor interface {
	// Executed for every visited node. Return nil to skip the node's children.
	Visit(expr Expr) ExprVisitor
}

// WalkExpr traverses an expression tree in depth-first order. Nodes are
// visited read-only; the tree is never modified.
func WalkExpr(v ExprVisitor, expr Expr) {
	if v = v.Visit(expr); v == nil {
		return
	}

	switch expr := expr.(type) {
	case *IntImm, *UIntImm, *FloatImm, *StringImm, *VarExpr:
		// nop
	case *BinaryExpr:
		WalkExpr(v, expr.LHS)
		WalkExpr(v, expr.RHS)
	case *NotExpr:
		WalkExpr(v, expr.X)
	case *SelectExpr:
		WalkExpr(v, expr.Cond)
		WalkExpr(v, expr.Then)
		WalkExpr(v, expr.Else)
	case *BroadcastExpr:
		WalkExpr(v, expr.Value)
	case *RampExpr:
		WalkExpr(v, expr.Base)
		WalkExpr(v, expr.Stride)
	case *LetExpr:
		WalkExpr(v, expr.Value)
		WalkExpr(v, expr.Body)
	case *CallExpr:
		for _, arg := range expr.Args {
			WalkExpr(v, arg)
		}
	default:
		panic("unreachable")
	}
}

// inspector adapts a function to the ExprVisitor interface.
type inspector func(Expr) bool

func (f inspector) Visit(expr Expr) ExprVisitor {
	if f(expr) {
		return f
	}
	return nil
}

// InspectExpr traverses an expression tree, calling fn for each node. If
// fn returns false, the node's children are skipped.
func InspectExpr(expr Expr, fn func(Expr) bool) {
	WalkExpr(inspector(fn), expr)
}

// ExprIsPure returns true if no impure call appears anywhere in e.
func ExprIsPure(e Expr) bool {
	pure := true
	InspectExpr(e, func(x Expr) bool {
		if c, ok := x.(*CallExpr); ok && !c.Pure {
			pure = false
		}
		return pure
	})
	return pure
}

// ExprUsesVar returns true if e references the named variable, honoring
// shadowing by inner bindings of the same name.
func ExprUsesVar(e Expr, name string) bool {
	switch e := e.(type) {
	case *VarExpr:
		return e.Name == name
	case *BinaryExpr:
		return ExprUsesVar(e.LHS, name) || ExprUsesVar(e.RHS, name)
	case *NotExpr:
		return ExprUsesVar(e.X, name)
	case *SelectExpr:
		return ExprUsesVar(e.Cond, name) || ExprUsesVar(e.Then, name) || ExprUsesVar(e.Else, name)
	case *BroadcastExpr:
		return ExprUsesVar(e.Value, name)
	case *RampExpr:
		return ExprUsesVar(e.Base, name) || ExprUsesVar(e.Stride, name)
	case *LetExpr:
		if ExprUsesVar(e.Value, name) {
			return true
		}
		if e.Name == name {
			return false
		}
		return ExprUsesVar(e.Body, name)
	case *CallExpr:
		for _, arg := range e.Args {
			if ExprUsesVar(arg, name) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// SubstExpr returns expr with every free occurrence of the named variable
// replaced by value. Bindings of the same name shadow the substitution in
// their body but not in their bound value.
func SubstExpr(expr Expr, name string, value Expr) Expr {
	switch e := expr.(type) {
	case *IntImm, *UIntImm, *FloatImm, *StringImm:
		return e
	case *VarExpr:
		if e.Name == name {
			assert(value.Type() == e.Type(), "substitution type mismatch for %s: %s != %s", name, value.Type(), e.Type())
			return value
		}
		return e
	case *BinaryExpr:
		lhs, rhs := SubstExpr(e.LHS, name, value), SubstExpr(e.RHS, name, value)
		if lhs == e.LHS && rhs == e.RHS {
			return e
		}
		return NewBinaryExpr(e.Op, lhs, rhs)
	case *NotExpr:
		if x := SubstExpr(e.X, name, value); x != e.X {
			return NewNotExpr(x)
		}
		return e
	case *SelectExpr:
		cond := SubstExpr(e.Cond, name, value)
		then := SubstExpr(e.Then, name, value)
		els := SubstExpr(e.Else, name, value)
		if cond == e.Cond && then == e.Then && els == e.Else {
			return e
		}
		return NewSelectExpr(cond, then, els)
	case *BroadcastExpr:
		if v := SubstExpr(e.Value, name, value); v != e.Value {
			return NewBroadcastExpr(v, e.Lanes)
		}
		return e
	case *RampExpr:
		base, stride := SubstExpr(e.Base, name, value), SubstExpr(e.Stride, name, value)
		if base == e.Base && stride == e.Stride {
			return e
		}
		return NewRampExpr(base, stride, e.Lanes)
	case *LetExpr:
		v := SubstExpr(e.Value, name, value)
		body := e.Body
		if e.Name != name {
			body = SubstExpr(e.Body, name, value)
		}
		if v == e.Value && body == e.Body {
			return e
		}
		return NewLetExpr(e.Name, v, body)
	case *CallExpr:
		var args []Expr
		changed := false
		for i, arg := range e.Args {
			other := SubstExpr(arg, name, value)
			if other != arg && !changed {
				changed = true
				args = make([]Expr, len(e.Args))
				copy(args, e.Args[:i])
			}
			if changed {
				args[i] = other
			}
		}
		if !changed {
			return e
		}
		return NewCallExpr(e.typ, e.Name, args, e.Pure)
	default:
		panic("unreachable")
	}
}
