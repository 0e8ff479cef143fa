package fsharp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/bitseg"
	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/diagnostics"
	"github.com/funvibe/fsgen/internal/lexer"
	"github.com/funvibe/fsgen/internal/prettyprinter"
)

// BitMatcher is a partial active pattern generated for one bit array
// layout. Patterns with the same layout key share it.
type BitMatcher struct {
	Name   string
	Layout *bitseg.Layout
}

type bitMatchers struct {
	byKey map[string]*BitMatcher
	list  []*BitMatcher
}

func newBitMatchers() *bitMatchers {
	return &bitMatchers{byKey: map[string]*BitMatcher{}}
}

func (b *bitMatchers) intern(l *bitseg.Layout) *BitMatcher {
	key := l.Key()
	if m, ok := b.byKey[key]; ok {
		return m
	}
	m := &BitMatcher{Name: fmt.Sprintf("%s%d", config.BitMatcherPrefix, len(b.list)), Layout: l}
	b.byKey[key] = m
	b.list = append(b.list, m)
	return m
}

func (b *bitMatchers) emit(p *prettyprinter.CodePrinter, u *Unit) {
	for _, m := range b.list {
		p.Blank()
		u.matcher(p, m)
	}
}

func endianName(e bitseg.Endianness) string {
	switch e {
	case bitseg.Little:
		return config.BitArrayModule + ".Little"
	case bitseg.Native:
		return config.BitArrayModule + ".Native"
	}
	return config.BitArrayModule + ".Big"
}

func encodingName(t bitseg.Type) string {
	switch t {
	case bitseg.UTF16, bitseg.UTF16Codepoint:
		return config.BitArrayModule + ".Utf16"
	case bitseg.UTF32, bitseg.UTF32Codepoint:
		return config.BitArrayModule + ".Utf32"
	}
	return config.BitArrayModule + ".Utf8"
}

// bitArray lowers a bit array construction. Literal-only layouts are
// packed at generation time; anything else is concatenated at run time by
// the prelude, which masks each integer to its width.
func (u *Unit) bitArray(b *ast.BitArray) string {
	layout, err := bitseg.ResolveExpr(b, u.opts.NativeEndianness)
	if err != nil {
		u.fail(err)
		return config.BitArrayModule + ".empty"
	}
	if data, n, ok := layout.Fold(); ok {
		if n == 0 {
			return config.BitArrayModule + ".empty"
		}
		bytes := make([]string, len(data))
		for i, d := range data {
			bytes[i] = fmt.Sprintf("0x%02Xuy", d)
		}
		return fmt.Sprintf("%s.ofBytes [| %s |] %d", config.BitArrayModule, strings.Join(bytes, "; "), n)
	}

	parts := make([]string, len(layout.Fields))
	multi := false
	for i, f := range layout.Fields {
		parts[i] = u.segment(f)
		multi = multi || prettyprinter.Multiline(parts[i])
	}
	if multi {
		return config.BitArrayModule + ".concat [\n" + prettyprinter.Indent(strings.Join(parts, "\n")) + "\n]"
	}
	return config.BitArrayModule + ".concat [ " + strings.Join(parts, "; ") + " ]"
}

func (u *Unit) segment(f *bitseg.Field) string {
	value, ok := f.Value.(ast.Expression)
	if !ok {
		u.failf(diagnostics.ErrL006, f.Token, "bit array segment without a value")
		return config.BitArrayModule + ".empty"
	}
	v := prettyprinter.Paren(u.expr(value))
	m := config.BitArrayModule

	var width string
	if w, ok := f.Width(); ok {
		width = strconv.FormatUint(uint64(w), 10)
	} else if f.SizeKind == bitseg.SizeDynamic {
		width = "(int " + prettyprinter.Paren(u.expr(f.SizeExpr)) + ")"
		if f.Unit != 1 {
			width = fmt.Sprintf("(int %s * %d)", prettyprinter.Paren(u.expr(f.SizeExpr)), f.Unit)
		}
	}

	switch f.Type {
	case bitseg.Int:
		return fmt.Sprintf("%s.ofInt %s %s %s %t", m, v, width, endianName(f.Endian), f.Signed)
	case bitseg.Float:
		return fmt.Sprintf("%s.ofFloat %s %s %s", m, v, width, endianName(f.Endian))
	case bitseg.Bytes, bitseg.Bits:
		if width == "" {
			return v
		}
		return fmt.Sprintf("%s.take %s %s", m, v, width)
	case bitseg.UTF8:
		return fmt.Sprintf("%s.ofUtf8 %s", m, v)
	case bitseg.UTF16:
		return fmt.Sprintf("%s.ofUtf16 %s %s", m, v, endianName(f.Endian))
	case bitseg.UTF32:
		return fmt.Sprintf("%s.ofUtf32 %s %s", m, v, endianName(f.Endian))
	case bitseg.UTF8Codepoint:
		return fmt.Sprintf("%s.ofUtf8Codepoint %s", m, v)
	case bitseg.UTF16Codepoint:
		return fmt.Sprintf("%s.ofUtf16Codepoint %s %s", m, v, endianName(f.Endian))
	case bitseg.UTF32Codepoint:
		return fmt.Sprintf("%s.ofUtf32Codepoint %s %s", m, v, endianName(f.Endian))
	}
	u.failf(diagnostics.ErrL004, f.Token, "unsupported segment type %s", f.Type)
	return m + ".empty"
}

// bitPattern lowers a bit array pattern to a use of its layout's matcher.
func (u *Unit) bitPattern(p *ast.BitArrayPattern) string {
	layout, err := bitseg.ResolvePattern(p, u.opts.NativeEndianness)
	if err != nil {
		u.fail(err)
		return "_"
	}
	m := u.bits.intern(layout)
	caps := layout.Captures()
	names := make([]string, len(caps))
	for i, f := range caps {
		names[i] = Ident(f.Bind)
	}
	switch len(names) {
	case 0:
		return m.Name
	case 1:
		return m.Name + " " + names[0]
	}
	return m.Name + " (" + strings.Join(names, ", ") + ")"
}

type matchStep struct {
	let   string
	check string
}

// matcher writes the active pattern of m. It checks the length up front,
// reads each segment at its cumulative offset, tests literal segments and
// returns the captures.
func (u *Unit) matcher(p *prettyprinter.CodePrinter, m *BitMatcher) {
	const bits, length = config.TempPrefix + "bits", config.TempPrefix + "len"
	l := m.Layout
	mod := config.BitArrayModule
	v := func(i int) string { return fmt.Sprintf("%sv%d", config.TempPrefix, i) }

	steps := []matchStep{{let: fmt.Sprintf("let %s = %s.bitLength %s", length, mod, bits)}}
	if l.Exact() {
		steps = append(steps, matchStep{check: fmt.Sprintf("%s = %d", length, l.MinBits)})
	} else if l.MinBits > 0 {
		steps = append(steps, matchStep{check: fmt.Sprintf("%s >= %d", length, l.MinBits)})
	}

	off := "0"
	fixedOff := 0
	dynamic := false
	for i, f := range l.Fields {
		var width string
		if w, ok := f.Width(); ok {
			width = strconv.FormatUint(uint64(w), 10)
		} else {
			dynamic = true
			width = fmt.Sprintf("%sw%d", config.TempPrefix, i)
			switch f.SizeKind {
			case bitseg.SizeDynamic:
				src := l.Fields[f.SizeFrom]
				if src.Signed {
					steps = append(steps, matchStep{check: v(f.SizeFrom) + " >= 0L"})
				}
				steps = append(steps, matchStep{let: fmt.Sprintf("let %s = int %s * %d", width, v(f.SizeFrom), f.Unit)})
			case bitseg.SizeTail:
				steps = append(steps, matchStep{let: fmt.Sprintf("let %s = %s - %s", width, length, off)})
				cond := width + " >= 0"
				if f.Unit > 1 {
					cond = fmt.Sprintf("%s && %s %% %d = 0", cond, width, f.Unit)
				}
				steps = append(steps, matchStep{check: cond})
			case bitseg.SizeCodepoint:
				steps = append(steps,
					matchStep{let: fmt.Sprintf("let %s = %s.codepointWidth %s %s %s %s", width, mod, bits, off, encodingName(f.Type), endianName(f.Endian))},
					matchStep{check: width + " >= 0"})
			default:
				u.failf(diagnostics.ErrL006, f.Token, "segment %d of %s has no width", i, m.Name)
				return
			}
		}
		if dynamic && f.SizeKind != bitseg.SizeTail {
			steps = append(steps, matchStep{check: fmt.Sprintf("%s + %s <= %s", off, width, length)})
		}

		steps = append(steps, u.readSegment(f, v(i), bits, off, width)...)

		if w, ok := f.Width(); ok && !dynamic {
			fixedOff += int(w)
			off = strconv.Itoa(fixedOff)
		} else if f.SizeKind != bitseg.SizeTail {
			next := fmt.Sprintf("%so%d", config.TempPrefix, i+1)
			steps = append(steps, matchStep{let: fmt.Sprintf("let %s = %s + %s", next, off, width)})
			off = next
		}
	}
	if !l.HasTail && !l.Exact() {
		steps = append(steps, matchStep{check: off + " = " + length})
	}

	caps := make([]string, 0, len(l.Fields))
	for i, f := range l.Fields {
		if f.Bind != "" {
			caps = append(caps, v(i))
		}
	}
	result := "Some ()"
	switch len(caps) {
	case 0:
	case 1:
		result = "Some " + caps[0]
	default:
		result = "Some (" + strings.Join(caps, ", ") + ")"
	}

	p.Block(fmt.Sprintf("let private (|%s|_|) (%s: %s) =", m.Name, bits, mod), func() {
		writeSteps(p, steps, result)
	})
}

func writeSteps(p *prettyprinter.CodePrinter, steps []matchStep, result string) {
	for i, s := range steps {
		if s.check == "" {
			p.Line(s.let)
			continue
		}
		p.Line("if " + s.check + " then")
		p.Indent()
		writeSteps(p, steps[i+1:], result)
		p.Dedent()
		p.Line("else")
		p.Line("    None")
		return
	}
	p.Line(result)
}

// readSegment reads a captured or literal segment into name and tests
// literals.
func (u *Unit) readSegment(f *bitseg.Field, name, bits, off, width string) []matchStep {
	if f.Bind == "" && f.Const == nil {
		return nil
	}
	mod := config.BitArrayModule
	endian := endianName(f.Endian)

	switch f.Type {
	case bitseg.Int:
		if w, ok := f.Width(); ok && w > 64 {
			u.failf(diagnostics.ErrL004, f.Token, "int segments wider than 64 bits cannot be matched, got %d", w)
			return nil
		}
		steps := []matchStep{{let: fmt.Sprintf("let %s = %s.readInt %s %s %s %s %t", name, mod, bits, off, width, endian, f.Signed)}}
		if c, ok := f.Const.(int64); ok {
			w, _ := f.Width()
			steps = append(steps, matchStep{check: fmt.Sprintf("%s = %dL", name, bitseg.Truncate(c, w, f.Signed))})
		}
		return steps
	case bitseg.Float:
		steps := []matchStep{{let: fmt.Sprintf("let %s = %s.readFloat %s %s %s %s", name, mod, bits, off, width, endian)}}
		if c, ok := f.Const.(float64); ok {
			steps = append(steps, matchStep{check: name + " = " + floatText(c)})
		}
		return steps
	case bitseg.Bytes, bitseg.Bits:
		return []matchStep{{let: fmt.Sprintf("let %s = %s.slice %s %s %s", name, mod, bits, off, width)}}
	case bitseg.UTF8:
		return []matchStep{{check: fmt.Sprintf("%s.equalsAt %s %s (%s.ofUtf8 %s)", mod, bits, off, mod, lexer.Quote(f.Const.(string)))}}
	case bitseg.UTF16, bitseg.UTF32:
		fn := "ofUtf16"
		if f.Type == bitseg.UTF32 {
			fn = "ofUtf32"
		}
		return []matchStep{{check: fmt.Sprintf("%s.equalsAt %s %s (%s.%s %s %s)", mod, bits, off, mod, fn, lexer.Quote(f.Const.(string)), endian)}}
	case bitseg.UTF8Codepoint, bitseg.UTF16Codepoint, bitseg.UTF32Codepoint:
		steps := []matchStep{
			{let: fmt.Sprintf("let %s = %s.readCodepoint %s %s %s %s", name, mod, bits, off, encodingName(f.Type), endian)},
			{check: name + " >= 0"},
		}
		if c, ok := f.Const.(int64); ok {
			steps = append(steps, matchStep{check: fmt.Sprintf("%s = %d", name, c)})
		}
		return steps
	}
	u.failf(diagnostics.ErrL004, f.Token, "unsupported segment type %s", f.Type)
	return nil
}

func floatText(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
