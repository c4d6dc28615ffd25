package parse

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fatih/color"
)

// Error is a parse or type error at a source position.
type Error struct {
	Pos lexer.Position
	Msg string
}

// Error returns the position-prefixed message.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Position returns the source position of the error.
func (e *Error) Position() lexer.Position { return e.Pos }

// Message returns the error message without its position.
func (e *Error) Message() string { return e.Msg }

func errorf(pos lexer.Position, format string, args ...interface{}) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// RenderError writes a caret-style diagnostic for err against the source
// it came from. Errors without positions are printed plainly.
func RenderError(w io.Writer, src string, err error) {
	type positioned interface {
		Position() lexer.Position
		Message() string
	}

	pe, ok := err.(positioned)
	if !ok {
		color.New(color.FgRed).Fprintf(w, "error: %s\n", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.New(color.FgRed).Fprintf(w, "error: %s\n", err)
		return
	}

	col := pos.Column
	if col < 1 {
		col = 1
	}
	color.New(color.FgRed).Fprintf(w, "%s: %s\n", pos, pe.Message())
	fmt.Fprintln(w, lines[pos.Line-1])
	color.New(color.FgHiRed).Fprintln(w, strings.Repeat(" ", col-1)+"^")
}
