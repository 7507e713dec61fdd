package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer splits a scenario line into words, quoted strings and parentheses.
// Everything after "--" is a comment.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `--[^\n]*`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Punct", Pattern: `[()]`},
	{Name: "Word", Pattern: `[^\s()"]+`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})

// Build creates the line parser from the struct tags in ast.go.
func Build() *participle.Parser[Line] {
	return participle.MustBuild[Line](
		participle.Lexer(Lexer),
		participle.Unquote("String"),
		participle.Elide("Whitespace", "Comment"),
	)
}
