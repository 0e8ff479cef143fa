package bitseg

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/funvibe/funbit/pkg/funbit"
)

// Fold packs a construction layout whose segments are all literals with a
// compile time width. It returns the packed bytes (the last one padded with
// zero bits on the right) and the length in bits. ok is false when the
// layout has to be built at run time.
func (l *Layout) Fold() (data []byte, bits uint, ok bool) {
	if l.Mode != Construct {
		return nil, 0, false
	}
	b := funbit.NewBuilder()
	added := false
	for _, f := range l.Fields {
		n, ok := addConst(b, f)
		if !ok {
			return nil, 0, false
		}
		added = added || n > 0
	}
	if !added {
		return []byte{}, 0, true
	}
	bs, err := funbit.Build(b)
	if err != nil {
		return nil, 0, false
	}
	data, err = bitsOf(bs)
	if err != nil {
		return nil, 0, false
	}
	return data, bs.Length(), true
}

// addConst appends a literal field and returns the number of bits added.
func addConst(b *funbit.Builder, f *Field) (uint, bool) {
	w, ok := f.Width()
	if !ok || f.Const == nil {
		return 0, false
	}
	if w == 0 {
		return 0, true
	}
	endian := f.Endian
	if endian == Native {
		if w > 8 {
			return 0, false
		}
		endian = Big
	}

	switch v := f.Const.(type) {
	case int64:
		if f.Type.IsCodepoint() {
			funbit.AddBinary(b, Encode(f.Type, endian, string(rune(v))))
			return w, true
		}
		if w > 64 {
			return 0, false
		}
		signed := f.Signed || (w == 64 && v < 0)
		funbit.AddInteger(b, Truncate(v, w, signed),
			funbit.WithSize(w), funbit.WithSigned(signed), funbit.WithEndianness(endian.String()))
	case float64:
		if w != 32 && w != 64 {
			return 0, false
		}
		funbit.AddFloat(b, v, funbit.WithSize(w), funbit.WithEndianness(endian.String()))
	case string:
		funbit.AddBinary(b, Encode(f.Type, endian, v))
	default:
		return 0, false
	}
	return w, true
}

// Truncate wraps v to width bits. Signed results are sign extended from the
// top bit of the width, unsigned results are the low width bits.
func Truncate(v int64, width uint, signed bool) int64 {
	if width == 0 {
		return 0
	}
	if width >= 64 {
		return v
	}
	mask := (int64(1) << width) - 1
	v &= mask
	if signed && v >= int64(1)<<(width-1) {
		v -= int64(1) << width
	}
	return v
}

// Encode returns s in the encoding of a utf segment type.
func Encode(t Type, e Endianness, s string) []byte {
	var order binary.AppendByteOrder = binary.BigEndian
	if e == Little {
		order = binary.LittleEndian
	}
	switch t {
	case UTF16, UTF16Codepoint:
		units := utf16.Encode([]rune(s))
		out := make([]byte, 0, len(units)*2)
		for _, u := range units {
			out = order.AppendUint16(out, u)
		}
		return out
	case UTF32, UTF32Codepoint:
		out := make([]byte, 0, len(s)*4)
		for _, r := range s {
			out = order.AppendUint32(out, uint32(r))
		}
		return out
	}
	return []byte(s)
}

// bitsOf reads a bit string back into bytes, eight bits at a time.
func bitsOf(bs *funbit.BitString) ([]byte, error) {
	n := bs.Length()
	if n == 0 {
		return []byte{}, nil
	}
	m := funbit.NewMatcher()
	vals := make([]uint, (n+7)/8)
	for i := range vals {
		w := uint(8)
		if rem := n - uint(i)*8; rem < 8 {
			w = rem
		}
		funbit.Integer(m, &vals[i], funbit.WithSize(w))
	}
	if _, err := funbit.Match(m, bs); err != nil {
		return nil, err
	}
	out := make([]byte, len(vals))
	for i, v := range vals {
		out[i] = byte(v)
	}
	if r := n % 8; r != 0 {
		out[len(out)-1] <<= 8 - r
	}
	return out, nil
}
