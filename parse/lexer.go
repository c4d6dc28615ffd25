package parse

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var exprLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{Name: "Comment", Pattern: `//[^\n]*`},

		// Literals (floats before ints so "1.5" does not split)
		{Name: "Float", Pattern: `[0-9]+\.[0-9]*([eE][-+]?[0-9]+)?|[0-9]+[eE][-+]?[0-9]+`},
		{Name: "Int", Pattern: `0x[0-9a-fA-F]+|[0-9]+`},
		{Name: "String", Pattern: `"(\\.|[^"\\])*"`},

		// Keywords and identifiers
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

		// Operators (compound forms before single characters)
		{Name: "Operator", Pattern: `\|\||&&|==|!=|<=|>=|[-+*/%<>!=]`},

		// Punctuation
		{Name: "Punct", Pattern: `[()\[\],;:]`},

		// Whitespace
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	},
})
