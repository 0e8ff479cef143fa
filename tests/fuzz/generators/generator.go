package generators

import (
	"fmt"
	"math/rand"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/typesystem"
)

// RandomSource abstracts the source of randomness.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// RandSource wraps math/rand.
type RandSource struct {
	*rand.Rand
}

// ByteSource uses a byte slice as a source of randomness.
type ByteSource struct {
	data []byte
	pos  int
}

func (s *ByteSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	if s.pos >= len(s.data) {
		return 0
	}
	v := int(s.data[s.pos])
	s.pos++
	return v % n
}

func (s *ByteSource) Float64() float64 {
	if s.pos >= len(s.data) {
		return 0.0
	}
	v := int(s.data[s.pos])
	s.pos++
	return float64(v) / 255.0
}

var (
	intT   = typesystem.TCon{Name: config.IntTypeName}
	floatT = typesystem.TCon{Name: config.FloatTypeName}
	strT   = typesystem.TCon{Name: config.StringTypeName}
	boolT  = typesystem.TCon{Name: config.BoolTypeName}
	bitsT  = typesystem.TCon{Name: config.BitArrayTypeName}
	shapeT = typesystem.TCon{Module: ModuleName, Name: "Shape"}
	fnT    = typesystem.TFunc{Params: []typesystem.Type{intT, intT, strT, bitsT}, ReturnType: intT}
)

// ModuleName is the module every generated unit is lowered as.
const ModuleName = "fuzz/gen"

// Generator generates random well-formed typed IR modules: every module
// it builds lowers without a diagnostic.
type Generator struct {
	src   RandomSource
	depth int
	scope []string // Int locals in scope
	fns   []string // functions defined so far, all of type fnT
	temps int
}

const (
	MaxDepth      = 4
	MaxStatements = 4
	MaxFunctions  = 4
)

func New(seed int64) *Generator {
	return &Generator{src: &RandSource{rand.New(rand.NewSource(seed))}}
}

func NewFromData(data []byte) *Generator {
	return &Generator{src: &ByteSource{data: data}}
}

// Intn exposes the random source's Intn method for embedded structs.
func (g *Generator) Intn(n int) int {
	return g.src.Intn(n)
}

// Src returns the random source of the generator.
func (g *Generator) Src() RandomSource {
	return g.src
}

func (g *Generator) GenerateModule() *ast.Module {
	mod := &ast.Module{Name: ModuleName}
	mod.Definitions = append(mod.Definitions, shapeType(), g.nameReader())
	count := g.src.Intn(MaxFunctions) + 1
	for i := 0; i < count; i++ {
		mod.Definitions = append(mod.Definitions, g.function(fmt.Sprintf("f%d", i)))
	}
	if g.src.Intn(2) == 0 {
		mod.Definitions = append(mod.Definitions, &ast.ModuleConstant{
			Name:  "greeting",
			Value: &ast.StringLiteral{Value: g.stringValue(), Typ: strT},
		})
	}
	return mod
}

func shapeType() *ast.CustomType {
	return &ast.CustomType{Name: "Shape", Constructors: []*ast.Constructor{
		{Name: "Circle", Fields: []*ast.Field{{Label: "name", Type: strT}, {Label: "radius", Type: floatT}}},
		{Name: "Square", Fields: []*ast.Field{{Label: "name", Type: strT}, {Label: "side", Type: floatT}}},
	}}
}

// nameReader reads the label every Shape variant shares.
func (g *Generator) nameReader() *ast.Function {
	return &ast.Function{
		Name:       "shape_name",
		Params:     []*ast.Param{{Name: "shape", Type: shapeT}},
		ReturnType: strT,
		Body: []ast.Statement{&ast.ExpressionStatement{Value: &ast.RecordAccess{
			Record: &ast.Var{Name: "shape", Kind: ast.LocalVar, Typ: shapeT},
			Label:  "name",
			Index:  -1,
			Typ:    strT,
		}}},
	}
}

func (g *Generator) function(name string) *ast.Function {
	g.scope = []string{"x", "y"}
	g.temps = 0
	f := &ast.Function{
		Name: name,
		Params: []*ast.Param{
			{Name: "x", Type: intT}, {Name: "y", Type: intT},
			{Name: "s", Type: strT}, {Name: "data", Type: bitsT},
		},
		ReturnType: intT,
		Body:       g.body(),
	}
	g.fns = append(g.fns, name)
	return f
}

// body is a few bindings followed by an Int result.
func (g *Generator) body() []ast.Statement {
	mark := len(g.scope)
	var out []ast.Statement
	count := g.src.Intn(MaxStatements)
	for i := 0; i < count; i++ {
		out = append(out, g.statement())
	}
	out = append(out, &ast.ExpressionStatement{Value: g.intExpr()})
	g.scope = g.scope[:mark]
	return out
}

func (g *Generator) fresh(kind string) string {
	g.temps++
	return fmt.Sprintf("%s%d", kind, g.temps)
}

func (g *Generator) statement() ast.Statement {
	switch g.src.Intn(4) {
	case 0:
		// let assert [h, ..] = [a, b]
		name := g.fresh("h")
		value := &ast.List{Elements: []ast.Expression{g.intExpr(), g.intExpr()}, Typ: listOf(intT)}
		g.scope = append(g.scope, name)
		return &ast.Assignment{
			Kind:    ast.LetAssert,
			Pattern: &ast.ListPattern{Elements: []ast.Pattern{&ast.VarPattern{Name: name, Typ: intT}}, Tail: &ast.DiscardPattern{}},
			Value:   value,
		}
	case 1:
		return &ast.Assignment{
			Pattern: &ast.VarPattern{Name: g.fresh("bits"), Typ: bitsT},
			Value:   g.bitArray(),
		}
	default:
		name := g.fresh("v")
		value := g.intExpr()
		g.scope = append(g.scope, name)
		return &ast.Assignment{Pattern: &ast.VarPattern{Name: name, Typ: intT}, Value: value}
	}
}

func (g *Generator) intExpr() ast.Expression {
	if g.depth >= MaxDepth {
		return g.intLeaf()
	}
	g.depth++
	defer func() { g.depth-- }()

	switch g.src.Intn(11) {
	case 0, 1:
		return g.intLeaf()
	case 2, 3:
		ops := []ast.BinOperator{ast.OpAddInt, ast.OpSubInt, ast.OpMultInt, ast.OpDivInt, ast.OpRemainder}
		return &ast.BinOp{Op: ops[g.src.Intn(len(ops))], Left: g.intExpr(), Right: g.intExpr(), Typ: intT}
	case 4:
		return &ast.NegateInt{Value: g.intExpr(), Typ: intT}
	case 5:
		return g.intCase()
	case 6:
		return g.prefixCase()
	case 7:
		n := g.src.Intn(2) + 2
		elems := make([]ast.Expression, n)
		types := make([]typesystem.Type, n)
		for i := range elems {
			elems[i] = g.intExpr()
			types[i] = intT
		}
		tuple := &ast.Tuple{Elements: elems, Typ: typesystem.TTuple{Elements: types}}
		return &ast.TupleIndex{Tuple: tuple, Index: g.src.Intn(n), Typ: intT}
	case 8:
		if len(g.fns) == 0 {
			return g.intLeaf()
		}
		callee := g.fns[g.src.Intn(len(g.fns))]
		return &ast.Call{
			Fun: &ast.Var{Name: callee, Kind: ast.ModuleFn, Typ: fnT},
			Args: []ast.Expression{
				g.intExpr(), g.intExpr(),
				&ast.Var{Name: "s", Kind: ast.LocalVar, Typ: strT},
				&ast.Var{Name: "data", Kind: ast.LocalVar, Typ: bitsT},
			},
			Typ: intT,
		}
	case 9:
		return &ast.Block{Statements: g.body(), Typ: intT}
	default:
		return g.bitCase()
	}
}

func (g *Generator) intLeaf() ast.Expression {
	if len(g.scope) > 0 && g.src.Intn(2) == 0 {
		return &ast.Var{Name: g.scope[g.src.Intn(len(g.scope))], Kind: ast.LocalVar, Typ: intT}
	}
	return &ast.IntLiteral{Value: int64(g.src.Intn(200) - 100), Typ: intT}
}

func (g *Generator) boolExpr() ast.Expression {
	ops := []ast.BinOperator{ast.OpLtInt, ast.OpGtEqInt, ast.OpEq, ast.OpNotEq}
	cmp := &ast.BinOp{Op: ops[g.src.Intn(len(ops))], Left: g.intLeaf(), Right: g.intLeaf(), Typ: boolT}
	if g.src.Intn(4) == 0 {
		return &ast.NegateBool{Value: cmp, Typ: boolT}
	}
	return cmp
}

func (g *Generator) intCase() ast.Expression {
	c := &ast.Case{Subjects: []ast.Expression{g.intExpr()}, Typ: intT}
	arms := g.src.Intn(3) + 1
	for i := 0; i < arms; i++ {
		cl := &ast.Clause{Patterns: []ast.Pattern{&ast.IntPattern{Value: int64(g.src.Intn(20) - 10)}}}
		if g.src.Intn(3) == 0 {
			cl.Alternatives = [][]ast.Pattern{{&ast.IntPattern{Value: int64(g.src.Intn(20) + 10)}}}
		}
		if g.src.Intn(3) == 0 {
			cl.Guard = g.boolExpr()
		}
		cl.Body = g.intExpr()
		c.Clauses = append(c.Clauses, cl)
	}
	c.Clauses = append(c.Clauses, &ast.Clause{Patterns: []ast.Pattern{&ast.DiscardPattern{}}, Body: g.intExpr()})
	return c
}

var prefixes = []string{"GET ", "a", "caf\\u{E9}", "\\\"q", "tab\\t"}

var stringValues = []string{"", "hi", "line\\n", "caf\\u{E9}", "\\\\raw", "quote\\\"d"}

func (g *Generator) stringValue() string {
	return stringValues[g.src.Intn(len(stringValues))]
}

// prefixCase matches s against a string prefix, optionally binding it.
func (g *Generator) prefixCase() ast.Expression {
	p := &ast.StringPrefixPattern{Prefix: prefixes[g.src.Intn(len(prefixes))], Rest: g.fresh("rest")}
	if g.src.Intn(2) == 0 {
		p.PrefixName = g.fresh("pre")
	}
	return &ast.Case{
		Subjects: []ast.Expression{&ast.Var{Name: "s", Kind: ast.LocalVar, Typ: strT}},
		Clauses: []*ast.Clause{
			{Patterns: []ast.Pattern{p}, Body: g.intExpr()},
			{Patterns: []ast.Pattern{&ast.StringPattern{Value: g.stringValue()}}, Body: g.intExpr()},
			{Patterns: []ast.Pattern{&ast.DiscardPattern{}}, Body: g.intExpr()},
		},
		Typ: intT,
	}
}

func sized(n int64) *ast.SegmentOption {
	return &ast.SegmentOption{Kind: ast.OptSize, Size: &ast.IntLiteral{Value: n, Typ: intT}}
}

var widths = []int64{8, 16, 24, 32}

func (g *Generator) bitArray() ast.Expression {
	b := &ast.BitArray{Typ: bitsT}
	count := g.src.Intn(3) + 1
	for i := 0; i < count; i++ {
		seg := &ast.Segment{Value: g.intLeaf(), Options: []*ast.SegmentOption{sized(widths[g.src.Intn(len(widths))])}}
		if g.src.Intn(3) == 0 {
			seg.Options = append(seg.Options, &ast.SegmentOption{Kind: ast.OptEndian, Name: "little"})
		}
		b.Segments = append(b.Segments, seg)
	}
	if g.src.Intn(2) == 0 {
		b.Segments = append(b.Segments, &ast.Segment{Value: &ast.StringLiteral{
			Value: stringValues[1+g.src.Intn(len(stringValues)-1)],
			Typ:   strT,
		}})
	}
	return b
}

// bitCase destructures data into leading int fields and a byte tail.
func (g *Generator) bitCase() ast.Expression {
	mark := len(g.scope)
	pat := &ast.BitArrayPattern{}
	count := g.src.Intn(3) + 1
	for i := 0; i < count; i++ {
		var p ast.Pattern = &ast.DiscardPattern{}
		switch g.src.Intn(3) {
		case 0:
			name := g.fresh("b")
			p = &ast.VarPattern{Name: name, Typ: intT}
			g.scope = append(g.scope, name)
		case 1:
			p = &ast.IntPattern{Value: int64(g.src.Intn(256))}
		}
		opts := []*ast.SegmentOption{sized(widths[g.src.Intn(len(widths))])}
		if g.src.Intn(4) == 0 {
			opts = append(opts, &ast.SegmentOption{Kind: ast.OptSign, Name: "signed"})
		}
		pat.Segments = append(pat.Segments, &ast.PatternSegment{Value: p, Options: opts})
	}
	if g.src.Intn(2) == 0 {
		pat.Segments = append(pat.Segments, &ast.PatternSegment{
			Value:   &ast.DiscardPattern{},
			Options: []*ast.SegmentOption{{Kind: ast.OptType, Name: "bytes"}},
		})
	}
	body := g.intExpr()
	g.scope = g.scope[:mark]
	return &ast.Case{
		Subjects: []ast.Expression{&ast.Var{Name: "data", Kind: ast.LocalVar, Typ: bitsT}},
		Clauses: []*ast.Clause{
			{Patterns: []ast.Pattern{pat}, Body: body},
			{Patterns: []ast.Pattern{&ast.DiscardPattern{}}, Body: g.intExpr()},
		},
		Typ: intT,
	}
}

func listOf(t typesystem.Type) typesystem.Type {
	return typesystem.TCon{Name: config.ListTypeName, Args: []typesystem.Type{t}}
}
