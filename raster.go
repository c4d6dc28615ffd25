package raster

import (
	"errors"
	"fmt"
)

var (
	ErrGeneratorExists   = errors.New("generator already registered")
	ErrGeneratorNotFound = errors.New("generator not found")
	ErrInvalidParam      = errors.New("invalid generator parameter")
	ErrUnboundVar        = errors.New("unbound variable")
	ErrImpureCall        = errors.New("cannot evaluate impure call")
	ErrFoldOverflow      = errors.New("constant fold overflows 64-bit result")
)

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
