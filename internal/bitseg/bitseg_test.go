package bitseg

import (
	"bytes"
	"errors"
	"testing"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/diagnostics"
)

func typ(name string) *ast.SegmentOption { return &ast.SegmentOption{Kind: ast.OptType, Name: name} }
func size(n int64) *ast.SegmentOption {
	return &ast.SegmentOption{Kind: ast.OptSize, Size: &ast.IntLiteral{Value: n}}
}
func sizeVar(name string) *ast.SegmentOption {
	return &ast.SegmentOption{Kind: ast.OptSize, Size: &ast.Var{Name: name}}
}
func unit(n int) *ast.SegmentOption      { return &ast.SegmentOption{Kind: ast.OptUnit, Unit: n} }
func endian(e string) *ast.SegmentOption { return &ast.SegmentOption{Kind: ast.OptEndian, Name: e} }
func signed() *ast.SegmentOption         { return &ast.SegmentOption{Kind: ast.OptSign, Name: "signed"} }

func seg(v ast.Expression, opts ...*ast.SegmentOption) *ast.Segment {
	return &ast.Segment{Value: v, Options: opts}
}

func pseg(p ast.Pattern, opts ...*ast.SegmentOption) *ast.PatternSegment {
	return &ast.PatternSegment{Value: p, Options: opts}
}

func intLit(v int64) *ast.IntLiteral     { return &ast.IntLiteral{Value: v} }
func strLit(s string) *ast.StringLiteral { return &ast.StringLiteral{Value: s} }
func bind(name string) *ast.VarPattern   { return &ast.VarPattern{Name: name} }

func construct(t *testing.T, segs ...*ast.Segment) *Layout {
	t.Helper()
	l, err := ResolveExpr(&ast.BitArray{Segments: segs}, config.NativeRuntime)
	if err != nil {
		t.Fatalf("ResolveExpr: %v", err)
	}
	return l
}

func deconstruct(t *testing.T, segs ...*ast.PatternSegment) *Layout {
	t.Helper()
	l, err := ResolvePattern(&ast.BitArrayPattern{Segments: segs}, config.NativeRuntime)
	if err != nil {
		t.Fatalf("ResolvePattern: %v", err)
	}
	return l
}

func TestResolveDefaults(t *testing.T) {
	l := construct(t,
		seg(intLit(1)),
		seg(&ast.FloatLiteral{Value: "1.5"}, typ("float")),
		seg(strLit("ab")),
		seg(&ast.Var{Name: "payload"}, typ("bytes")),
	)
	tests := []struct {
		name     string
		field    *Field
		typ      Type
		unit     uint
		kind     SizeKind
		width    uint
		hasWidth bool
	}{
		{"int", l.Fields[0], Int, 1, SizeFixed, 8, true},
		{"float", l.Fields[1], Float, 1, SizeFixed, 64, true},
		{"string", l.Fields[2], UTF8, 8, SizeFixed, 16, true},
		{"bytes", l.Fields[3], Bytes, 8, SizeValue, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.field
			if f.Type != tt.typ || f.Unit != tt.unit || f.SizeKind != tt.kind {
				t.Errorf("got type=%s unit=%d kind=%d", f.Type, f.Unit, f.SizeKind)
			}
			w, ok := f.Width()
			if ok != tt.hasWidth || w != tt.width {
				t.Errorf("Width() = %d, %v; want %d, %v", w, ok, tt.width, tt.hasWidth)
			}
			if f.Endian != Big || f.Signed {
				t.Errorf("endianness/signedness defaults wrong: %s %v", f.Endian, f.Signed)
			}
		})
	}
	if l.Fields[3].Offset != 8+64+16 {
		t.Errorf("bytes offset = %d", l.Fields[3].Offset)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		v      int64
		width  uint
		signed bool
		want   int64
	}{
		{257, 8, false, 1},
		{-1, 8, false, 255},
		{255, 8, true, -1},
		{128, 8, true, -128},
		{5, 2, false, 1},
		{-2, 64, false, -2},
		{7, 0, false, 0},
	}
	for _, tt := range tests {
		if got := Truncate(tt.v, tt.width, tt.signed); got != tt.want {
			t.Errorf("Truncate(%d, %d, %v) = %d, want %d", tt.v, tt.width, tt.signed, got, tt.want)
		}
	}
}

func TestFoldTruncatesToDeclaredWidth(t *testing.T) {
	data, bits, ok := construct(t, seg(intLit(257), size(8))).Fold()
	if !ok {
		t.Fatalf("literal layout should fold")
	}
	if bits != 8 || !bytes.Equal(data, []byte{0x01}) {
		t.Errorf("Fold() = %x (%d bits), want 01 (8 bits)", data, bits)
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		segs []*ast.Segment
		want []byte
		bits uint
	}{
		{"big", []*ast.Segment{seg(intLit(0x0102), size(16))}, []byte{0x01, 0x02}, 16},
		{"little", []*ast.Segment{seg(intLit(0x0102), size(16), endian("little"))}, []byte{0x02, 0x01}, 16},
		{"signed", []*ast.Segment{seg(intLit(-2), signed())}, []byte{0xFE}, 8},
		{"utf8", []*ast.Segment{seg(intLit(1)), seg(strLit("hi"))}, []byte{0x01, 'h', 'i'}, 24},
		{"utf16", []*ast.Segment{seg(strLit("A"), typ("utf16"))}, []byte{0x00, 'A'}, 16},
		{"codepoint", []*ast.Segment{seg(intLit(0xE9), typ("utf8_codepoint"))}, []byte{0xC3, 0xA9}, 16},
		{"partial", []*ast.Segment{seg(intLit(1), size(1)), seg(intLit(0), size(3))}, []byte{0x80}, 4},
		{"empty", nil, []byte{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, bits, ok := construct(t, tt.segs...).Fold()
			if !ok {
				t.Fatalf("layout should fold")
			}
			if bits != tt.bits || !bytes.Equal(data, tt.want) {
				t.Errorf("Fold() = %x (%d bits), want %x (%d bits)", data, bits, tt.want, tt.bits)
			}
		})
	}
}

func TestFoldDeclinesRuntimeValues(t *testing.T) {
	tests := []struct {
		name string
		seg  *ast.Segment
	}{
		{"variable", seg(&ast.Var{Name: "x"}, size(16))},
		{"native", seg(intLit(1), size(16), endian("native"))},
		{"wide", seg(intLit(1), size(128))},
		{"half float", seg(&ast.FloatLiteral{Value: "1.0"}, typ("float"), size(16))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := construct(t, tt.seg).Fold(); ok {
				t.Errorf("layout should not fold")
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	data, _, ok := construct(t,
		seg(intLit(1), size(16)),
		seg(intLit(200)),
		seg(intLit(-3), signed()),
		seg(strLit("hi")),
	).Fold()
	if !ok {
		t.Fatalf("construction should fold")
	}

	pattern := deconstruct(t,
		pseg(bind("a"), size(16)),
		pseg(bind("b")),
		pseg(bind("c"), signed()),
		pseg(bind("rest"), typ("bytes")),
	)
	got, ok := pattern.Match(data)
	if !ok {
		t.Fatalf("Match(%x) failed", data)
	}
	if got["a"] != int64(1) || got["b"] != int64(200) || got["c"] != int64(-3) {
		t.Errorf("captures = %v", got)
	}
	if rest, _ := got["rest"].([]byte); string(rest) != "hi" {
		t.Errorf("rest = %q", got["rest"])
	}
}

func TestMatchLiteralSegments(t *testing.T) {
	pattern := deconstruct(t,
		pseg(&ast.IntPattern{Value: 0xCA}),
		pseg(&ast.StringPattern{Value: "ok"}),
		pseg(bind("n")),
	)
	if got, ok := pattern.Match([]byte{0xCA, 'o', 'k', 7}); !ok || got["n"] != int64(7) {
		t.Errorf("Match = %v, %v", got, ok)
	}
	if _, ok := pattern.Match([]byte{0xCB, 'o', 'k', 7}); ok {
		t.Errorf("int literal mismatch must not match")
	}
	if _, ok := pattern.Match([]byte{0xCA, 'n', 'o', 7}); ok {
		t.Errorf("string literal mismatch must not match")
	}
}

func TestMatchRejectsShortAndLongInput(t *testing.T) {
	pattern := deconstruct(t, pseg(bind("a"), size(16)), pseg(bind("b")))
	if _, ok := pattern.Match([]byte{0x00, 0x01}); ok {
		t.Errorf("short input must not match")
	}
	if _, ok := pattern.Match([]byte{0x00, 0x01, 0x02, 0x03}); ok {
		t.Errorf("input longer than an exact layout must not match")
	}
	if _, ok := pattern.Match([]byte{0x00, 0x01, 0x02}); !ok {
		t.Errorf("exact input should match")
	}
}

func TestResolveSizeVariable(t *testing.T) {
	l := deconstruct(t,
		pseg(bind("n")),
		pseg(bind("payload"), typ("bytes"), sizeVar("n")),
		pseg(bind("rest"), typ("bits")),
	)
	f := l.Fields[1]
	if f.SizeKind != SizeDynamic || f.SizeFrom != 0 || f.SizeVar != "n" {
		t.Errorf("payload field = %+v", f)
	}
	if l.Fields[2].Offset != -1 {
		t.Errorf("offset after a dynamic field must be unknown, got %d", l.Fields[2].Offset)
	}
	if !l.HasTail || l.Exact() {
		t.Errorf("HasTail=%v Exact=%v", l.HasTail, l.Exact())
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		segs []*ast.PatternSegment
		code diagnostics.ErrorCode
	}{
		{"tail not last", []*ast.PatternSegment{pseg(bind("a"), typ("bytes")), pseg(bind("b"))}, diagnostics.ErrL003},
		{"bits tail not last", []*ast.PatternSegment{pseg(bind("a"), typ("bits")), pseg(bind("b"))}, diagnostics.ErrL003},
		{"unaligned bytes", []*ast.PatternSegment{pseg(bind("a"), size(4)), pseg(bind("b"), typ("bytes"))}, diagnostics.ErrL002},
		{"unaligned string", []*ast.PatternSegment{pseg(bind("a"), size(3)), pseg(&ast.StringPattern{Value: "x"})}, diagnostics.ErrL002},
		{"signed float", []*ast.PatternSegment{pseg(bind("a"), typ("float"), signed())}, diagnostics.ErrL004},
		{"float width", []*ast.PatternSegment{pseg(bind("a"), typ("float"), size(24))}, diagnostics.ErrL004},
		{"duplicate type", []*ast.PatternSegment{pseg(bind("a"), typ("int"), typ("float"))}, diagnostics.ErrL004},
		{"unknown type", []*ast.PatternSegment{pseg(bind("a"), typ("nibble"))}, diagnostics.ErrL004},
		{"unit range", []*ast.PatternSegment{pseg(bind("a"), size(1), unit(300))}, diagnostics.ErrL004},
		{"unit without size", []*ast.PatternSegment{pseg(bind("a"), unit(8))}, diagnostics.ErrL004},
		{"unbound size", []*ast.PatternSegment{pseg(bind("a"), sizeVar("n"))}, diagnostics.ErrL004},
		{"little odd width", []*ast.PatternSegment{pseg(bind("a"), size(12), endian("little"))}, diagnostics.ErrL004},
		{"utf8 capture", []*ast.PatternSegment{pseg(bind("a"), typ("utf8"))}, diagnostics.ErrL004},
		{"bytes endianness", []*ast.PatternSegment{pseg(bind("a"), typ("bytes"), endian("little"))}, diagnostics.ErrL004},
		{"bad escape", []*ast.PatternSegment{pseg(&ast.StringPattern{Value: `\u{}`})}, diagnostics.ErrL005},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolvePattern(&ast.BitArrayPattern{Segments: tt.segs}, config.NativeRuntime)
			var diag *diagnostics.DiagnosticError
			if !errors.As(err, &diag) {
				t.Fatalf("expected a diagnostic, got %v", err)
			}
			if diag.Code != tt.code {
				t.Errorf("code = %s, want %s (%v)", diag.Code, tt.code, err)
			}
		})
	}
}

func TestNativeEndiannessPolicy(t *testing.T) {
	segs := []Spec{{Options: []*ast.SegmentOption{size(16), endian("native")}, Value: bind("x")}}
	tests := []struct {
		policy string
		want   Endianness
	}{
		{config.NativeRuntime, Native},
		{config.NativeBig, Big},
		{config.NativeLittle, Little},
		{config.NativeHost, nativeHost()},
	}
	for _, tt := range tests {
		l, err := Resolve(segs, Deconstruct, tt.policy)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", tt.policy, err)
		}
		if l.Fields[0].Endian != tt.want {
			t.Errorf("policy %s: endianness %s, want %s", tt.policy, l.Fields[0].Endian, tt.want)
		}
	}
	if _, err := Resolve(segs, Deconstruct, "middle"); err == nil {
		t.Errorf("unknown policy should fail")
	}
}

func TestLayoutKey(t *testing.T) {
	a := deconstruct(t, pseg(bind("x"), size(16)), pseg(bind("rest"), typ("bytes")))
	b := deconstruct(t, pseg(bind("y"), size(16)), pseg(bind("tail"), typ("bytes")))
	c := deconstruct(t, pseg(&ast.IntPattern{Value: 1}, size(16)), pseg(bind("rest"), typ("bytes")))
	if a.Key() != b.Key() {
		t.Errorf("binder names must not change the key: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() == c.Key() {
		t.Errorf("literal segments must change the key")
	}
}
