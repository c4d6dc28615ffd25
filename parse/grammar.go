package parse

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// File is the root of the textual form: variable declarations followed by
// a single expression.
type File struct {
	Decls []*Decl `parser:"@@*"`
	Expr  *Expr   `parser:"@@"`
}

// Decl declares a variable's type and optional analysis facts, e.g.
//
//	x: i32 in [1, 10] % 4 == 1;
type Decl struct {
	Pos   lexer.Position
	Name  string     `parser:"@Ident \":\""`
	Type  *TypeRef   `parser:"@@"`
	Range *RangeFact `parser:"@@?"`
	Align *AlignFact `parser:"@@? \";\""`
}

// TypeRef names a scalar or vector type, e.g. i32, u8, f64, boolx4, i32x8.
type TypeRef struct {
	Pos  lexer.Position
	Name string `parser:"@Ident"`
}

// RangeFact declares an inclusive interval for a variable.
type RangeFact struct {
	Lo *SInt `parser:"\"in\" \"[\" @@ \",\""`
	Hi *SInt `parser:"@@ \"]\""`
}

// AlignFact declares a congruence for a variable: value % Mod == Rem.
type AlignFact struct {
	Mod *SInt `parser:"\"%\" @@ \"==\""`
	Rem *SInt `parser:"@@"`
}

// SInt is an optionally negated integer literal.
type SInt struct {
	Pos    lexer.Position
	Neg    bool   `parser:"@\"-\"?"`
	Digits string `parser:"@Int"`
}

type Expr struct {
	Let    *LetExpr    `parser:"  @@"`
	Binary *BinaryExpr `parser:"| @@"`
}

type LetExpr struct {
	Pos   lexer.Position
	Name  string `parser:"\"let\" @Ident \"=\""`
	Value *Expr  `parser:"@@"`
	Body  *Expr  `parser:"\"in\" @@"`
}

// BinaryExpr is a flat operand/operator list; precedence is resolved
// during lowering.
type BinaryExpr struct {
	Left *UnaryExpr `parser:"@@"`
	Ops  []*BinOp   `parser:"@@*"`
}

type BinOp struct {
	Pos      lexer.Position
	Operator string     `parser:"@(\"||\" | \"&&\" | \"==\" | \"!=\" | \"<=\" | \">=\" | \"<\" | \">\" | \"+\" | \"-\" | \"*\" | \"/\" | \"%\")"`
	Right    *UnaryExpr `parser:"@@"`
}

type UnaryExpr struct {
	Pos      lexer.Position
	Operator string       `parser:"( @(\"!\" | \"-\")"`
	Unary    *UnaryExpr   `parser:"  @@ )"`
	Value    *PrimaryExpr `parser:"| @@"`
}

type PrimaryExpr struct {
	Pos    lexer.Position
	Float  *string   `parser:"  @Float"`
	Int    *string   `parser:"| @Int"`
	Bool   *string   `parser:"| @(\"true\" | \"false\")"`
	Str    *string   `parser:"| @String"`
	Call   *CallExpr `parser:"| @@"`
	Ident  *string   `parser:"| @Ident"`
	Parens *Expr     `parser:"| \"(\" @@ \")\""`
}

// CallExpr covers builtins (min, select, broadcast, ...), typed literal
// casts (i16(5)), and named calls. A "!" after the name marks the call
// impure.
type CallExpr struct {
	Pos    lexer.Position
	Name   string  `parser:"@Ident"`
	Impure bool    `parser:"@\"!\"? \"(\""`
	Args   []*Expr `parser:"( @@ ( \",\" @@ )* )? \")\""`
}
