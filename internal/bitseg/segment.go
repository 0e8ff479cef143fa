// Package bitseg resolves bit array segments into a layout: every segment
// gets its type, width, unit, endianness and signedness filled in from the
// defaults, the layout is validated, and literal-only layouts can be packed
// at compile time.
package bitseg

import (
	"fmt"
	"unicode/utf8"

	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/token"
)

// Mode says whether a layout builds or destructures a bit array.
type Mode int

const (
	Construct Mode = iota
	Deconstruct
)

// Type is a segment type.
type Type int

const (
	Int Type = iota
	Float
	Bytes
	Bits
	UTF8
	UTF16
	UTF32
	UTF8Codepoint
	UTF16Codepoint
	UTF32Codepoint
)

var typeNames = map[string]Type{
	"int":             Int,
	"float":           Float,
	"bytes":           Bytes,
	"binary":          Bytes,
	"bits":            Bits,
	"bit_array":       Bits,
	"bit_string":      Bits,
	"utf8":            UTF8,
	"utf16":           UTF16,
	"utf32":           UTF32,
	"utf8_codepoint":  UTF8Codepoint,
	"utf16_codepoint": UTF16Codepoint,
	"utf32_codepoint": UTF32Codepoint,
}

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bytes:
		return "bytes"
	case Bits:
		return "bits"
	case UTF8:
		return "utf8"
	case UTF16:
		return "utf16"
	case UTF32:
		return "utf32"
	case UTF8Codepoint:
		return "utf8_codepoint"
	case UTF16Codepoint:
		return "utf16_codepoint"
	case UTF32Codepoint:
		return "utf32_codepoint"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// IsString reports whether t encodes a whole string.
func (t Type) IsString() bool { return t == UTF8 || t == UTF16 || t == UTF32 }

// IsCodepoint reports whether t encodes a single code point.
func (t Type) IsCodepoint() bool {
	return t == UTF8Codepoint || t == UTF16Codepoint || t == UTF32Codepoint
}

// byteTyped segments must start on a byte boundary.
func (t Type) byteTyped() bool { return t == Bytes || t.IsString() || t.IsCodepoint() }

// Endianness of a segment.
type Endianness int

const (
	Big Endianness = iota
	Little
	Native
)

// String returns the spelling funbit and the source language both use.
func (e Endianness) String() string {
	switch e {
	case Little:
		return "little"
	case Native:
		return "native"
	}
	return "big"
}

// SizeKind classifies how a segment's width is known.
type SizeKind int

const (
	// SizeFixed: width known at compile time.
	SizeFixed SizeKind = iota
	// SizeDynamic: size(n) with n an expression or an earlier capture.
	SizeDynamic
	// SizeValue: an unsized construction segment that takes the whole value.
	SizeValue
	// SizeTail: an unsized deconstruction segment that takes the remainder.
	SizeTail
	// SizeCodepoint: a code point whose encoded width is read at run time.
	SizeCodepoint
)

// Spec is one authored segment: its options plus the construction
// expression or deconstruction pattern it wraps.
type Spec struct {
	Token   token.Token
	Options []*ast.SegmentOption
	Value   ast.Node
}

// SpecsOf collects the segments of a bit array expression.
func SpecsOf(b *ast.BitArray) []Spec {
	specs := make([]Spec, 0, len(b.Segments))
	for _, s := range b.Segments {
		specs = append(specs, Spec{Token: s.Token, Options: s.Options, Value: s.Value})
	}
	return specs
}

// PatternSpecsOf collects the segments of a bit array pattern.
func PatternSpecsOf(p *ast.BitArrayPattern) []Spec {
	specs := make([]Spec, 0, len(p.Segments))
	for _, s := range p.Segments {
		specs = append(specs, Spec{Token: s.Token, Options: s.Options, Value: s.Value})
	}
	return specs
}

func nativeHost() Endianness {
	if funbit.GetNativeEndianness() == "little" {
		return Little
	}
	return Big
}

// ValidCodepoint reports whether v can be encoded by a utf segment.
func ValidCodepoint(v int64) bool {
	return v >= 0 && v <= utf8.MaxRune && (v < 0xD800 || v > 0xDFFF)
}
