package fsharp

import (
	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/lexer"
	"github.com/funvibe/fsgen/internal/prettyprinter"
)

// PrefixEntry is one distinct string prefix matched in a unit.
type PrefixEntry struct {
	Literal lexer.Literal
	// Uses counts the patterns that share the entry.
	Uses int
}

// PrefixTable interns the string prefixes of a unit by canonical value, so
// prefixes spelled differently in the source share one entry. It also
// records which of the two shared matchers the unit needs.
type PrefixTable struct {
	entries []*PrefixEntry
	byValue map[string]*PrefixEntry

	needPrefix bool
	needParts  bool
}

func NewPrefixTable() *PrefixTable {
	return &PrefixTable{byValue: map[string]*PrefixEntry{}}
}

// Intern canonicalizes raw, the authored spelling of a prefix, and returns
// its entry. Entries keep first-seen order.
func (t *PrefixTable) Intern(raw string) (*PrefixEntry, error) {
	lit, err := lexer.Canonicalize(raw)
	if err != nil {
		return nil, err
	}
	if e, ok := t.byValue[lit.Value]; ok {
		e.Uses++
		return e, nil
	}
	e := &PrefixEntry{Literal: lit, Uses: 1}
	t.byValue[lit.Value] = e
	t.entries = append(t.entries, e)
	return e, nil
}

// Entries returns the interned prefixes in first-seen order.
func (t *PrefixTable) Entries() []*PrefixEntry {
	return t.entries
}

// emit writes the matchers the unit used. The comparison is ordinal so
// control characters and combining marks in a prefix are compared code
// unit by code unit.
func (t *PrefixTable) emit(p *prettyprinter.CodePrinter) {
	if t.needPrefix {
		p.Blank()
		p.Block("let private (|"+config.StringPatternPrefix+"|_|) (prefix: string) (value: string) =", func() {
			p.Line("if value.StartsWith(prefix, System.StringComparison.Ordinal) then")
			p.Line("    Some(value.Substring(prefix.Length))")
			p.Line("else")
			p.Line("    None")
		})
	}
	if t.needParts {
		p.Blank()
		p.Block("let private (|"+config.StringPatternParts+"|_|) (prefix: string) (value: string) =", func() {
			p.Line("if value.StartsWith(prefix, System.StringComparison.Ordinal) then")
			p.Line("    Some(prefix, value.Substring(prefix.Length))")
			p.Line("else")
			p.Line("    None")
		})
	}
}
