package ast

import (
	"github.com/funvibe/fsgen/internal/token"
	"github.com/funvibe/fsgen/internal/typesystem"
)

// BitArray builds a bit array from segments: <<a:16, b:bytes>>.
type BitArray struct {
	Token    token.Token
	Segments []*Segment
	Typ      typesystem.Type
}

func (b *BitArray) expressionNode()          {}
func (b *BitArray) GetToken() token.Token    { return b.Token }
func (b *BitArray) GetType() typesystem.Type { return b.Typ }

// Segment is one construction segment.
type Segment struct {
	Token   token.Token
	Value   Expression
	Options []*SegmentOption
}

// PatternSegment is one deconstruction segment.
type PatternSegment struct {
	Token   token.Token
	Value   Pattern
	Options []*SegmentOption
}

// OptionKind classifies a segment option.
type OptionKind int

const (
	OptType   OptionKind = iota // int, float, bytes, bits, utf8, ...
	OptSize                     // size(n) or a bare :n
	OptUnit                     // unit(n)
	OptEndian                   // big, little, native
	OptSign                     // signed, unsigned
)

func (k OptionKind) String() string {
	switch k {
	case OptType:
		return "type"
	case OptSize:
		return "size"
	case OptUnit:
		return "unit"
	case OptEndian:
		return "endianness"
	case OptSign:
		return "signedness"
	}
	return "unknown"
}

// SegmentOption is one `-`-separated option of a segment.
type SegmentOption struct {
	Token token.Token
	Kind  OptionKind
	// Name carries the keyword for OptType, OptEndian and OptSign.
	Name string
	// Size is an IntLiteral or a Var bound earlier in the same pattern.
	Size Expression
	Unit int
}
