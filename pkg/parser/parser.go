// Package parser turns FORTH source lines into op sequences and word
// definitions using Participle v2, following the same struct-tag grammar
// style as the PSIL parser this project's interpreter core is descended
// from.
package parser

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/forthjit/forthjit/pkg/ops"
)

// forthLexer tokenizes whitespace-separated input. Number is tried
// before Word and must end at whitespace or end of input (the one
// whitespace character it ends on is part of its text; toOp trims it),
// so "-5" lexes as a number but "-5x", "1.", "5-3" or a bare "-" falls
// through to Word — matching the source format's "parse as i64, else
// it's a word reference" rule.
var forthLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Number", Pattern: `[-+]?[0-9]+(\s|$)`},
	{Name: "Word", Pattern: `\S+`},
})

// token is one lexical element: either an integer literal or anything
// else (word names, the arithmetic/shuffle/IO words, and the ":" / ";"
// definition delimiters, all of which lex as Word).
type token struct {
	Number *string `  @Number`
	Word   *string `| @Word`
}

// definition is a ": name body... ;" block. The source format forbids
// nesting, so Body is a flat run of tokens up to the closing ";".
type definition struct {
	Name string   `":" @Word`
	Body []*token `((?! ";") @@)* ";"`
}

// item is one top-level element: a definition, or a single token
// executed immediately.
type item struct {
	Definition *definition `  @@`
	Token      *token      `| @@`
}

// Program is a parsed line (or file): zero or more items in order.
type Program struct {
	Items []*item `@@*`
}

var grammar = participle.MustBuild[Program](
	participle.Lexer(forthLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Parse parses one line or file's worth of FORTH source.
func Parse(source string) (*Program, error) {
	return grammar.ParseString("", source)
}

// Ops converts a token to the Op it denotes: a literal if it lexed as a
// Number, otherwise one of the fixed primitive words or, failing that, a
// reference to a user-defined word.
func (t *token) toOp() ops.Op {
	if t.Number != nil {
		text := strings.TrimSpace(*t.Number)
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return ops.NewNum(n)
		}
		// A digit run outside the int64 range is not an integer, so it
		// is a word reference like any other non-integer token.
		return wordOp(text)
	}
	return wordOp(*t.Word)
}

// wordOp maps a word token to its primitive Op, or to a Word(name)
// invocation if it names none of the fixed primitives.
func wordOp(name string) ops.Op {
	switch name {
	case "+":
		return ops.Op{Kind: ops.Add}
	case "-":
		return ops.Op{Kind: ops.Sub}
	case "*":
		return ops.Op{Kind: ops.Mul}
	case "/":
		return ops.Op{Kind: ops.Div}
	case ".":
		return ops.Op{Kind: ops.Dot}
	case "emit":
		return ops.Op{Kind: ops.Emit}
	case "dup":
		return ops.Op{Kind: ops.Dup}
	case "swap":
		return ops.Op{Kind: ops.Swap}
	case "over":
		return ops.Op{Kind: ops.Over}
	case "rot":
		return ops.Op{Kind: ops.Rot}
	case "drop":
		return ops.Op{Kind: ops.Drop}
	default:
		return ops.NewWord(name)
	}
}

// Ops flattens a Program into the top-level op sequence to execute
// immediately and the set of word definitions to install, in source
// order. A later definition of the same name overwrites an earlier one
// within the same Program, matching the dictionary's last-wins rule.
func (p *Program) Ops() (exec []ops.Op, defs map[string][]ops.Op) {
	defs = make(map[string][]ops.Op)
	for _, it := range p.Items {
		switch {
		case it.Definition != nil:
			body := make([]ops.Op, 0, len(it.Definition.Body))
			for _, tok := range it.Definition.Body {
				body = append(body, tok.toOp())
			}
			defs[it.Definition.Name] = body
		case it.Token != nil:
			exec = append(exec, it.Token.toOp())
		}
	}
	return exec, defs
}
