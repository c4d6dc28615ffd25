package raster

import "fmt"

// TypeCode enumerates the base kinds of values an expression can produce.
type TypeCode int

const (
	// TypeInt is a signed two's-complement integer.
	TypeInt TypeCode = iota
	// TypeUInt is an unsigned integer. Bool is UInt with a single bit.
	TypeUInt
	// TypeFloat is an IEEE 754 floating point number.
	TypeFloat
	// TypeHandle is an opaque value; handle expressions pass through the
	// simplifier untouched.
	TypeHandle
)

// Type describes the value produced by an expression: a base kind, a
// bit width, and a lane count. Lane counts greater than one denote a
// vector of scalars simplified lane-wise.
type Type struct {
	Code  TypeCode
	Bits  int
	Lanes int
}

// Int returns a signed integer type of the given width.
func Int(bits int, lanes ...int) Type {
	assert(bits == 8 || bits == 16 || bits == 32 || bits == 64, "invalid int width: %d", bits)
	return newType(TypeInt, bits, lanes)
}

// UInt returns an unsigned integer type of the given width.
func UInt(bits int, lanes ...int) Type {
	assert(bits == 1 || bits == 8 || bits == 16 || bits == 32 || bits == 64, "invalid uint width: %d", bits)
	return newType(TypeUInt, bits, lanes)
}

// Float returns a floating point type of the given width.
func Float(bits int, lanes ...int) Type {
	assert(bits == 32 || bits == 64, "invalid float width: %d", bits)
	return newType(TypeFloat, bits, lanes)
}

// Bool returns a boolean type. Booleans are single-bit unsigned integers.
func Bool(lanes ...int) Type {
	return newType(TypeUInt, 1, lanes)
}

// Handle returns the opaque handle type.
func Handle() Type {
	return Type{Code: TypeHandle, Bits: 64, Lanes: 1}
}

func newType(code TypeCode, bits int, lanes []int) Type {
	t := Type{Code: code, Bits: bits, Lanes: 1}
	if len(lanes) > 0 {
		assert(len(lanes) == 1, "too many lane arguments")
		assert(lanes[0] >= 1, "invalid lane count: %d", lanes[0])
		t.Lanes = lanes[0]
	}
	return t
}

// IsInt returns true if t is a signed integer type.
func (t Type) IsInt() bool { return t.Code == TypeInt }

// IsUInt returns true if t is an unsigned integer type, including bool.
func (t Type) IsUInt() bool { return t.Code == TypeUInt }

// IsFloat returns true if t is a floating point type.
func (t Type) IsFloat() bool { return t.Code == TypeFloat }

// IsHandle returns true if t is the opaque handle type.
func (t Type) IsHandle() bool { return t.Code == TypeHandle }

// IsBool returns true if t is boolean (single-bit unsigned).
func (t Type) IsBool() bool { return t.Code == TypeUInt && t.Bits == 1 }

// IsScalar returns true if t has exactly one lane.
func (t Type) IsScalar() bool { return t.Lanes == 1 }

// IsVector returns true if t has more than one lane.
func (t Type) IsVector() bool { return t.Lanes > 1 }

// Element returns the scalar type of one lane of t.
func (t Type) Element() Type {
	t.Lanes = 1
	return t
}

// noOverflowInt returns true if t's element is a signed integer wide
// enough that overflow is undefined rather than wrapping. Rewrites that
// assume overflow never happens are only valid for these types.
func noOverflowInt(t Type) bool {
	return t.Code == TypeInt && t.Bits >= 32
}

// noOverflow returns true if arithmetic on t cannot wrap: floats never
// wrap and wide signed integers treat overflow as undefined.
func noOverflow(t Type) bool {
	return t.Code == TypeFloat || noOverflowInt(t)
}

// WithLanes returns t widened or narrowed to the given lane count.
func (t Type) WithLanes(lanes int) Type {
	assert(lanes >= 1, "invalid lane count: %d", lanes)
	t.Lanes = lanes
	return t
}

// String returns the textual form of the type (e.g. "i32", "u8x4", "bool").
func (t Type) String() string {
	var s string
	switch t.Code {
	case TypeInt:
		s = fmt.Sprintf("i%d", t.Bits)
	case TypeUInt:
		if t.Bits == 1 {
			s = "bool"
		} else {
			s = fmt.Sprintf("u%d", t.Bits)
		}
	case TypeFloat:
		s = fmt.Sprintf("f%d", t.Bits)
	case TypeHandle:
		s = "handle"
	default:
		s = fmt.Sprintf("Type<%d>", t.Code)
	}
	if t.Lanes > 1 {
		s += fmt.Sprintf("x%d", t.Lanes)
	}
	return s
}
