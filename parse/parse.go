// Package parse implements the textual form of raster expressions: an
// optional block of variable declarations followed by one expression.
// Parsed trees are lowered to raster.Expr values and type-checked against
// the declared environment, so a successful parse can never trip the
// tree's construction asserts.
package parse

import (
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/rasterlang/raster"
)

// parser is built once at init; participle parsers are safe for
// concurrent use.
var parser = participle.MustBuild[File](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(3),
)

// Result is a lowered expression together with the facts and types its
// declarations established.
type Result struct {
	Expr  raster.Expr
	Scope *raster.Scope
	Types map[string]raster.Type
}

// Parse parses and lowers a source string. The filename is used only for
// error positions and may be empty.
func Parse(filename, src string) (*Result, error) {
	file, err := parser.ParseString(filename, src)
	if err != nil {
		return nil, err
	}
	return lowerFile(file)
}

// ParseFile parses and lowers the named file.
func ParseFile(path string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, string(src))
}
