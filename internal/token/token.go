// Package token carries source positions through the typed IR so that
// lowering defects can point back at the construct that triggered them.
package token

import "fmt"

// Token is the source anchor of an IR node as handed over by the front end.
type Token struct {
	File   string
	Lexeme string
	Line   int
	Column int
}

// IsZero reports whether the token carries no position.
func (t Token) IsZero() bool {
	return t.Line == 0 && t.Column == 0 && t.File == ""
}

func (t Token) String() string {
	switch {
	case t.IsZero():
		return "<unknown>"
	case t.File == "":
		return fmt.Sprintf("%d:%d", t.Line, t.Column)
	default:
		return fmt.Sprintf("%s:%d:%d", t.File, t.Line, t.Column)
	}
}
