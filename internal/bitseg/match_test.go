package bitseg

import (
	"bytes"

	"github.com/funvibe/funbit/pkg/funbit"
)

// BitsValue is a captured bits segment.
type BitsValue struct {
	Data []byte
	Len  uint
}

type capture struct {
	field *Field
	value func() any
	width func() uint
}

// Match is the reference deconstruction the generated F# matchers are
// checked against. It destructures data with the layout, using funbit's
// matcher, and
// returns the captured values by variable name: int64 for ints and code
// points, float64 for floats, []byte for bytes and BitsValue for bits.
// Literal segments must be equal to their value and, unless the layout
// ends in a tail, the input must be consumed exactly.
func (l *Layout) Match(data []byte) (map[string]any, bool) {
	if l.Mode != Deconstruct {
		return nil, false
	}
	total := uint(len(data)) * 8
	if total < l.MinBits || (l.Exact() && total != l.MinBits) {
		return nil, false
	}

	m := funbit.NewMatcher()
	sizes := map[int]*uint{}
	for _, f := range l.Fields {
		if f.SizeKind == SizeDynamic && sizes[f.SizeFrom] == nil {
			src := l.Fields[f.SizeFrom]
			if src.Type != Int || src.Signed {
				return nil, false
			}
			sizes[f.SizeFrom] = new(uint)
			funbit.RegisterVariable(m, src.Bind, sizes[f.SizeFrom])
		}
	}

	captures := make([]capture, 0, len(l.Fields))
	for i, f := range l.Fields {
		c, ok := addPattern(m, f, sizes[i])
		if !ok {
			return nil, false
		}
		if f.SizeKind == SizeDynamic && (f.Type == Int || f.Type == Float) {
			src, unit := sizes[f.SizeFrom], f.Unit
			c.width = func() uint { return *src * unit }
		}
		captures = append(captures, c)
	}

	var bs *funbit.BitString
	if len(data) == 0 {
		bs = funbit.NewBitString()
	} else {
		b := funbit.NewBuilder()
		funbit.AddBinary(b, data)
		built, err := funbit.Build(b)
		if err != nil {
			return nil, false
		}
		bs = built
	}

	results, err := funbit.Match(m, bs)
	if err != nil {
		return nil, false
	}
	for _, r := range results {
		if !r.Matched {
			return nil, false
		}
	}

	out := map[string]any{}
	var consumed uint
	for _, c := range captures {
		f := c.field
		consumed += c.width()
		if f.Const != nil && !sameConst(f, c.value()) {
			return nil, false
		}
		if f.Bind != "" {
			out[f.Bind] = c.value()
		}
	}
	if !l.HasTail && consumed != total {
		return nil, false
	}
	return out, true
}

func addPattern(m *funbit.Matcher, f *Field, sizeOut *uint) (capture, bool) {
	c := capture{field: f}
	endian := f.Endian
	if endian == Native {
		endian = nativeHost()
	}

	var opts []funbit.SegmentOption
	fixed := func(w uint) func() uint { return func() uint { return w } }
	if w, ok := f.Width(); ok {
		c.width = fixed(w)
		if f.Type == Bytes || f.Type.IsString() {
			opts = append(opts, funbit.WithSize(f.Size))
		} else {
			opts = append(opts, funbit.WithSize(w))
		}
	} else if f.SizeKind == SizeDynamic {
		opts = append(opts, funbit.WithDynamicSizeExpression(f.SizeVar))
		if f.Unit != 1 && f.Type != Bytes {
			opts = append(opts, funbit.WithUnit(f.Unit))
		}
	}

	switch f.Type {
	case Int:
		if w, ok := f.Width(); ok && w > 64 {
			return c, false
		}
		opts = append(opts, funbit.WithEndianness(endian.String()))
		if f.Signed {
			v := new(int)
			funbit.Integer(m, v, append(opts, funbit.WithSigned(true))...)
			c.value = func() any { return int64(*v) }
			return c, true
		}
		v := sizeOut
		if v == nil {
			v = new(uint)
		}
		funbit.Integer(m, v, opts...)
		c.value = func() any { return int64(*v) }
	case Float:
		if w, ok := f.Width(); !ok || (w != 32 && w != 64) {
			return c, false
		}
		v := new(float64)
		funbit.Float(m, v, append(opts, funbit.WithEndianness(endian.String()))...)
		c.value = func() any { return *v }
	case Bytes, UTF8, UTF16, UTF32:
		v := new([]byte)
		if f.SizeKind == SizeTail {
			funbit.RestBinary(m, v)
		} else {
			funbit.Binary(m, v, opts...)
		}
		c.value = func() any { return *v }
		if c.width == nil {
			c.width = func() uint { return uint(len(*v)) * 8 }
		}
	case Bits:
		v := new(*funbit.BitString)
		if f.SizeKind == SizeTail {
			funbit.RestBitstring(m, v)
		} else {
			funbit.Bitstring(m, v, opts...)
		}
		c.value = func() any {
			if *v == nil {
				return BitsValue{Data: []byte{}}
			}
			data, _ := bitsOf(*v)
			return BitsValue{Data: data, Len: (*v).Length()}
		}
		if c.width == nil {
			c.width = func() uint {
				if *v == nil {
					return 0
				}
				return (*v).Length()
			}
		}
	case UTF8Codepoint, UTF16Codepoint, UTF32Codepoint:
		if f.Endian == Little {
			return c, false
		}
		v := new(int)
		switch f.Type {
		case UTF8Codepoint:
			funbit.UTF8(m, v)
		case UTF16Codepoint:
			funbit.UTF16(m, v)
		default:
			funbit.UTF32(m, v)
		}
		c.value = func() any { return int64(*v) }
		c.width = func() uint { return uint(len(Encode(f.Type, Big, string(rune(*v))))) * 8 }
	default:
		return c, false
	}
	if c.width == nil {
		c.width = func() uint { return 0 }
	}
	return c, true
}

func sameConst(f *Field, got any) bool {
	switch want := f.Const.(type) {
	case int64:
		g, ok := got.(int64)
		if !ok {
			return false
		}
		if f.Type.IsCodepoint() {
			return g == want
		}
		w, _ := f.Width()
		return Truncate(g, w, f.Signed) == Truncate(want, w, f.Signed)
	case float64:
		g, ok := got.(float64)
		return ok && g == want
	case string:
		g, ok := got.([]byte)
		return ok && bytes.Equal(g, Encode(f.Type, f.Endian, want))
	}
	return false
}
