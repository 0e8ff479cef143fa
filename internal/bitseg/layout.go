package bitseg

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/diagnostics"
	"github.com/funvibe/fsgen/internal/lexer"
	"github.com/funvibe/fsgen/internal/token"
)

// Field is a resolved segment.
type Field struct {
	Token    token.Token
	Type     Type
	Endian   Endianness
	Signed   bool
	Unit     uint
	Size     uint // in units; meaningful for SizeFixed
	SizeKind SizeKind
	// SizeExpr is the run time size of a SizeDynamic construction segment.
	SizeExpr ast.Expression
	// SizeFrom is the index of the earlier field whose capture gives the
	// size of a SizeDynamic deconstruction segment.
	SizeFrom int
	SizeVar  string
	// Offset is the bit offset from the start, -1 when it depends on an
	// earlier segment of run time width.
	Offset int
	Value  ast.Node
	// Const holds an int64, float64 or string literal value.
	Const any
	// Bind is the variable a deconstruction segment captures.
	Bind string
}

// Width returns the width in bits when it is known at compile time.
func (f *Field) Width() (uint, bool) {
	if f.SizeKind != SizeFixed {
		return 0, false
	}
	return f.Size * f.Unit, true
}

// Layout is a resolved, validated segment list.
type Layout struct {
	Mode    Mode
	Fields  []*Field
	MinBits uint
	HasTail bool
}

// Exact reports whether every field has a compile time width, so a
// matching input must be exactly MinBits long.
func (l *Layout) Exact() bool {
	for _, f := range l.Fields {
		if f.SizeKind != SizeFixed {
			return false
		}
	}
	return true
}

// Captures returns the fields that bind a variable, in order.
func (l *Layout) Captures() []*Field {
	var out []*Field
	for _, f := range l.Fields {
		if f.Bind != "" {
			out = append(out, f)
		}
	}
	return out
}

// Key identifies the layout for matcher sharing: two patterns with the same
// key test the same bits and yield captures in the same positions.
func (l *Layout) Key() string {
	var sb strings.Builder
	for i, f := range l.Fields {
		if i > 0 {
			sb.WriteByte('|')
		}
		fmt.Fprintf(&sb, "%s/%s/%t/%d/%d/%d", f.Type, f.Endian, f.Signed, f.Unit, f.SizeKind, f.Size)
		if f.SizeKind == SizeDynamic {
			fmt.Fprintf(&sb, "@%d", f.SizeFrom)
		}
		switch {
		case f.Const != nil:
			fmt.Fprintf(&sb, "=%#v", f.Const)
		case f.Bind != "":
			sb.WriteString("=$")
		}
	}
	return sb.String()
}

// ResolveExpr resolves a bit array construction.
func ResolveExpr(b *ast.BitArray, native string) (*Layout, error) {
	return Resolve(SpecsOf(b), Construct, native)
}

// ResolvePattern resolves a bit array pattern.
func ResolvePattern(p *ast.BitArrayPattern, native string) (*Layout, error) {
	return Resolve(PatternSpecsOf(p), Deconstruct, native)
}

// Resolve applies defaults to every segment and validates the result.
// native is the native endianness policy; see config.NativeRuntime.
func Resolve(specs []Spec, mode Mode, native string) (*Layout, error) {
	nativeEndian, err := nativeEndianness(native)
	if err != nil {
		return nil, err
	}

	layout := &Layout{Mode: mode}
	bound := map[string]int{}
	offset := 0

	for i, spec := range specs {
		f, err := resolveField(spec, mode, bound)
		if err != nil {
			return nil, err
		}
		if f.Endian == Native {
			f.Endian = nativeEndian
		}

		if f.SizeKind == SizeTail {
			if i != len(specs)-1 {
				return nil, diagnostics.Errorf(diagnostics.ErrL003, spec.Token,
					"unsized %s segment %d must be the last segment of the pattern", f.Type, i)
			}
			layout.HasTail = true
		}

		f.Offset = offset
		if f.Type.byteTyped() && offset >= 0 && offset%8 != 0 {
			return nil, diagnostics.Errorf(diagnostics.ErrL002, spec.Token,
				"%s segment %d starts at bit %d", f.Type, i, offset)
		}
		if w, ok := f.Width(); ok {
			layout.MinBits += w
			if offset >= 0 {
				offset += int(w)
			}
		} else {
			offset = -1
		}

		if f.Bind != "" {
			bound[f.Bind] = i
		}
		layout.Fields = append(layout.Fields, f)
	}
	return layout, nil
}

func nativeEndianness(policy string) (Endianness, error) {
	switch policy {
	case config.NativeRuntime, "":
		return Native, nil
	case config.NativeBig:
		return Big, nil
	case config.NativeLittle:
		return Little, nil
	case config.NativeHost:
		return nativeHost(), nil
	}
	return Big, diagnostics.Errorf(diagnostics.ErrC001, token.Token{}, "unknown native endianness policy %q", policy)
}

type optionSet struct {
	typ, size, unit, endian, sign *ast.SegmentOption
}

func resolveField(spec Spec, mode Mode, bound map[string]int) (*Field, error) {
	var set optionSet
	for _, opt := range spec.Options {
		var slot **ast.SegmentOption
		switch opt.Kind {
		case ast.OptType:
			slot = &set.typ
		case ast.OptSize:
			slot = &set.size
		case ast.OptUnit:
			slot = &set.unit
		case ast.OptEndian:
			slot = &set.endian
		case ast.OptSign:
			slot = &set.sign
		default:
			return nil, invalid(spec, opt, "unknown option kind %d", int(opt.Kind))
		}
		if *slot != nil {
			return nil, invalid(spec, opt, "duplicate %s option", opt.Kind)
		}
		*slot = opt
	}

	f := &Field{Token: spec.Token, Value: spec.Value, SizeFrom: -1}

	// Type
	switch {
	case set.typ != nil:
		t, ok := typeNames[set.typ.Name]
		if !ok {
			return nil, invalid(spec, set.typ, "unknown segment type %q", set.typ.Name)
		}
		f.Type = t
	case isStringValue(spec.Value):
		f.Type = UTF8
	default:
		f.Type = Int
	}

	if err := classifyValue(f, spec, mode); err != nil {
		return nil, err
	}

	// Signedness and endianness
	if set.sign != nil {
		if f.Type != Int {
			return nil, invalid(spec, set.sign, "%s segments cannot be %s", f.Type, set.sign.Name)
		}
		switch set.sign.Name {
		case "signed":
			f.Signed = true
		case "unsigned":
		default:
			return nil, invalid(spec, set.sign, "unknown signedness %q", set.sign.Name)
		}
	}
	if set.endian != nil {
		switch f.Type {
		case Bytes, Bits, UTF8, UTF8Codepoint:
			return nil, invalid(spec, set.endian, "%s segments have no endianness", f.Type)
		}
		switch set.endian.Name {
		case "big":
			f.Endian = Big
		case "little":
			f.Endian = Little
		case "native":
			f.Endian = Native
		default:
			return nil, invalid(spec, set.endian, "unknown endianness %q", set.endian.Name)
		}
	}

	// Unit
	switch f.Type {
	case Bytes:
		f.Unit = 8
	case UTF8, UTF16, UTF32, UTF8Codepoint, UTF16Codepoint, UTF32Codepoint:
		f.Unit = 8
	default:
		f.Unit = 1
	}
	if set.unit != nil {
		if f.Type != Int && f.Type != Float && f.Type != Bits {
			return nil, invalid(spec, set.unit, "unit is not allowed on %s segments", f.Type)
		}
		if set.unit.Unit < 1 || set.unit.Unit > 256 {
			return nil, invalid(spec, set.unit, "unit %d out of range 1..256", set.unit.Unit)
		}
		if set.size == nil {
			return nil, invalid(spec, set.unit, "unit requires a size")
		}
		f.Unit = uint(set.unit.Unit)
	}

	// Size
	if set.size != nil && (f.Type.IsString() || f.Type.IsCodepoint()) {
		return nil, invalid(spec, set.size, "size is not allowed on %s segments", f.Type)
	}
	if err := resolveSize(f, spec, set.size, mode, bound); err != nil {
		return nil, err
	}

	if w, ok := f.Width(); ok {
		if f.Type == Float && w != 16 && w != 32 && w != 64 {
			return nil, invalid(spec, set.size, "float segments must be 16, 32 or 64 bits wide, got %d", w)
		}
		if f.Type == Int && f.Endian != Big && w%8 != 0 {
			return nil, invalid(spec, set.endian, "%s endian int segments must be a whole number of bytes, got %d bits", f.Endian, w)
		}
	}
	return f, nil
}

func resolveSize(f *Field, spec Spec, size *ast.SegmentOption, mode Mode, bound map[string]int) error {
	if size == nil {
		switch f.Type {
		case Int:
			f.Size, f.SizeKind = 8, SizeFixed
		case Float:
			f.Size, f.SizeKind = 64, SizeFixed
		case Bytes, Bits:
			if mode == Deconstruct {
				f.SizeKind = SizeTail
			} else {
				f.SizeKind = SizeValue
			}
		case UTF8, UTF16, UTF32:
			s, ok := f.Const.(string)
			if !ok {
				f.SizeKind = SizeValue
				break
			}
			f.Size, f.SizeKind = encodedLen(f.Type, s), SizeFixed
		case UTF32Codepoint:
			f.Size, f.SizeKind = 4, SizeFixed
		case UTF8Codepoint, UTF16Codepoint:
			cp, ok := f.Const.(int64)
			if !ok {
				f.SizeKind = SizeCodepoint
				break
			}
			f.Size, f.SizeKind = encodedLen(f.Type, string(rune(cp))), SizeFixed
		}
		return nil
	}

	switch s := size.Size.(type) {
	case *ast.IntLiteral:
		if s.Value < 0 {
			return invalid(spec, size, "negative size %d", s.Value)
		}
		f.Size, f.SizeKind = uint(s.Value), SizeFixed
	case nil:
		return invalid(spec, size, "size option without a value")
	default:
		f.SizeKind = SizeDynamic
		if mode == Construct {
			f.SizeExpr = s
			return nil
		}
		v, ok := s.(*ast.Var)
		if !ok {
			return invalid(spec, size, "pattern sizes must be literals or variables")
		}
		idx, ok := bound[v.Name]
		if !ok {
			return invalid(spec, size, "size variable %q is not bound earlier in the pattern", v.Name)
		}
		f.SizeFrom, f.SizeVar = idx, v.Name
	}
	return nil
}

func classifyValue(f *Field, spec Spec, mode Mode) error {
	if mode == Construct {
		c, err := constValue(spec.Value)
		if err != nil {
			return diagnostics.NewError(diagnostics.ErrL005, spec.Token, err.Error())
		}
		f.Const = c
	} else {
		switch p := spec.Value.(type) {
		case *ast.VarPattern:
			f.Bind = p.Name
		case *ast.DiscardPattern:
		case *ast.IntPattern:
			f.Const = p.Value
		case *ast.FloatPattern:
			v, err := parseFloat(p.Value)
			if err != nil {
				return invalid(spec, nil, "bad float literal %q", p.Value)
			}
			f.Const = v
		case *ast.StringPattern:
			lit, err := lexer.Canonicalize(p.Value)
			if err != nil {
				return diagnostics.NewError(diagnostics.ErrL005, spec.Token, err.Error())
			}
			f.Const = lit.Value
		default:
			return invalid(spec, nil, "unsupported pattern %T in bit array segment", spec.Value)
		}
		if f.Type.IsString() && f.Const == nil {
			return invalid(spec, nil, "%s segments in patterns must be string literals", f.Type)
		}
	}

	switch c := f.Const.(type) {
	case string:
		if !f.Type.IsString() {
			return invalid(spec, nil, "string literal in a %s segment", f.Type)
		}
	case float64:
		if f.Type != Float {
			return invalid(spec, nil, "float literal in a %s segment", f.Type)
		}
	case int64:
		if f.Type != Int && !f.Type.IsCodepoint() {
			return invalid(spec, nil, "int literal in a %s segment", f.Type)
		}
		if f.Type.IsCodepoint() && !ValidCodepoint(c) {
			return invalid(spec, nil, "invalid code point %d", c)
		}
	}
	return nil
}

// constValue returns the literal value of a construction expression.
func constValue(e ast.Node) (any, error) {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return v.Value, nil
	case *ast.NegateInt:
		if lit, ok := v.Value.(*ast.IntLiteral); ok {
			return -lit.Value, nil
		}
	case *ast.FloatLiteral:
		if f, err := parseFloat(v.Value); err == nil {
			return f, nil
		}
	case *ast.StringLiteral:
		lit, err := lexer.Canonicalize(v.Value)
		if err != nil {
			return nil, err
		}
		return lit.Value, nil
	}
	return nil, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
}

func isStringValue(n ast.Node) bool {
	switch n.(type) {
	case *ast.StringLiteral, *ast.StringPattern:
		return true
	}
	return false
}

// encodedLen returns the length in bytes of s in the encoding of t.
func encodedLen(t Type, s string) uint {
	switch t {
	case UTF16, UTF16Codepoint:
		return uint(len(utf16.Encode([]rune(s)))) * 2
	case UTF32, UTF32Codepoint:
		return uint(utf8.RuneCountInString(s)) * 4
	}
	return uint(len(s))
}

func invalid(spec Spec, opt *ast.SegmentOption, format string, args ...interface{}) error {
	tok := spec.Token
	if opt != nil && !opt.Token.IsZero() {
		tok = opt.Token
	}
	return diagnostics.Errorf(diagnostics.ErrL004, tok, format, args...)
}
