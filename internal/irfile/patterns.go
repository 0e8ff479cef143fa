package irfile

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/token"
)

func (d *decoder) patterns(nodes []*yaml.Node) []ast.Pattern {
	var out []ast.Pattern
	for _, n := range nodes {
		out = append(out, d.pattern(n))
	}
	return out
}

// pattern decodes a pattern node. Scalars are shorthands: an integer is an
// int pattern, _ or _name a discard and any other name a variable.
func (d *decoder) pattern(n *yaml.Node) ast.Pattern {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.ScalarNode {
		tok := d.tok(&object{node: n})
		switch {
		case n.Tag == "!!int":
			if v, ok := parseInt(n.Value); ok {
				return &ast.IntPattern{Token: tok, Value: v}
			}
		case n.Tag == "!!str" && strings.HasPrefix(n.Value, "_"):
			return &ast.DiscardPattern{Token: tok, Name: strings.TrimPrefix(n.Value, "_")}
		case n.Tag == "!!str" && isName(n.Value):
			return &ast.VarPattern{Token: tok, Name: n.Value}
		}
		d.unexpected(n, "pattern")
		return nil
	}

	o := d.object(n, "pattern")
	tok := d.tok(o)
	switch kind := o.reqStr("kind"); kind {
	case "int":
		return &ast.IntPattern{Token: tok, Value: o.int("value", 0)}
	case "float":
		return &ast.FloatPattern{Token: tok, Value: o.scalar("value")}
	case "string":
		return &ast.StringPattern{Token: tok, Value: o.str("value")}
	case "var":
		return &ast.VarPattern{Token: tok, Name: o.reqStr("name"), Typ: o.typ("type")}
	case "discard":
		return &ast.DiscardPattern{Token: tok, Name: o.str("name")}
	case "assign":
		return &ast.AssignPattern{Token: tok, Name: o.reqStr("name"), Pattern: d.pattern(o.require("pattern"))}
	case "list":
		l := &ast.ListPattern{Token: tok, Elements: d.patterns(o.seq("elements"))}
		if tail := o.get("tail"); tail != nil {
			l.Tail = d.pattern(tail)
		}
		return l
	case "tuple":
		return &ast.TuplePattern{Token: tok, Elements: d.patterns(o.seq("elements"))}
	case "string_prefix":
		return &ast.StringPrefixPattern{
			Token:      tok,
			Prefix:     o.str("prefix"),
			PrefixName: o.str("prefix_name"),
			Rest:       o.str("rest"),
		}
	case "constructor":
		c := &ast.ConstructorPattern{
			Token:       tok,
			Constructor: d.constructorInfo(o.require("constructor")),
			Spread:      o.bool("spread"),
			Typ:         o.typ("type"),
		}
		for _, an := range o.seq("args") {
			c.Args = append(c.Args, d.patternArg(an))
		}
		return c
	case "constant":
		return &ast.ConstantPattern{
			Token:  tok,
			Name:   o.reqStr("name"),
			Module: o.str("module"),
			Value:  d.expr(o.require("value")),
		}
	case "bit_array":
		b := &ast.BitArrayPattern{Token: tok}
		for _, sn := range o.seq("segments") {
			b.Segments = append(b.Segments, d.patternSegment(sn))
		}
		return b
	case "":
		return nil
	default:
		d.failf(n, "unknown pattern kind %q", kind)
		return nil
	}
}

// patternArg reads a constructor argument: either a pattern or
// {label, value} for a labelled one.
func (d *decoder) patternArg(n *yaml.Node) *ast.PatternArg {
	if n.Kind == yaml.MappingNode {
		o := d.object(n, "argument")
		if !o.has("kind") && o.has("value") {
			return &ast.PatternArg{Label: o.str("label"), Value: d.pattern(o.get("value"))}
		}
	}
	return &ast.PatternArg{Value: d.pattern(n)}
}

func (d *decoder) segment(n *yaml.Node) *ast.Segment {
	if n.Kind == yaml.ScalarNode {
		e := d.expr(n)
		if e == nil {
			return &ast.Segment{}
		}
		return &ast.Segment{Token: e.GetToken(), Value: e}
	}
	o := d.object(n, "segment")
	s := &ast.Segment{Token: d.tok(o), Value: d.expr(o.require("value"))}
	s.Options = d.segmentOptions(o.seq("options"), s.Token)
	return s
}

func (d *decoder) patternSegment(n *yaml.Node) *ast.PatternSegment {
	if n.Kind == yaml.ScalarNode {
		p := d.pattern(n)
		if p == nil {
			return &ast.PatternSegment{}
		}
		return &ast.PatternSegment{Token: p.GetToken(), Value: p}
	}
	o := d.object(n, "segment")
	s := &ast.PatternSegment{Token: d.tok(o), Value: d.pattern(o.require("value"))}
	s.Options = d.segmentOptions(o.seq("options"), s.Token)
	return s
}

var endianNames = map[string]bool{"big": true, "little": true, "native": true}

// segmentOptions reads option words: a bare width (8), size(8), size(n),
// unit(8), an endianness, a signedness or a segment type name.
func (d *decoder) segmentOptions(nodes []*yaml.Node, tok token.Token) []*ast.SegmentOption {
	var out []*ast.SegmentOption
	for _, n := range nodes {
		if n.Kind != yaml.ScalarNode {
			d.failf(n, "segment option must be a scalar")
			continue
		}
		word := strings.TrimSpace(n.Value)
		opt := &ast.SegmentOption{Token: tok}
		switch {
		case isDigits(word):
			opt.Kind = ast.OptSize
			opt.Size = d.sizeExpr(n, word, tok)
		case strings.HasPrefix(word, "size(") && strings.HasSuffix(word, ")"):
			opt.Kind = ast.OptSize
			opt.Size = d.sizeExpr(n, word[len("size("):len(word)-1], tok)
		case strings.HasPrefix(word, "unit(") && strings.HasSuffix(word, ")"):
			opt.Kind = ast.OptUnit
			u, err := strconv.Atoi(word[len("unit(") : len(word)-1])
			if err != nil {
				d.failf(n, "unit must be an integer: %q", word)
			}
			opt.Unit = u
		case endianNames[word]:
			opt.Kind = ast.OptEndian
			opt.Name = word
		case word == "signed" || word == "unsigned":
			opt.Kind = ast.OptSign
			opt.Name = word
		case isName(word):
			opt.Kind = ast.OptType
			opt.Name = word
		default:
			d.failf(n, "unknown segment option %q", word)
			continue
		}
		out = append(out, opt)
	}
	return out
}

// sizeExpr is an integer literal or the name of an Int variable in scope.
func (d *decoder) sizeExpr(n *yaml.Node, s string, tok token.Token) ast.Expression {
	s = strings.TrimSpace(s)
	if v, ok := parseInt(s); ok {
		return &ast.IntLiteral{Token: tok, Value: v, Typ: intType}
	}
	if !isName(s) {
		d.failf(n, "size must be an integer or a variable: %q", s)
		return nil
	}
	return &ast.Var{Token: tok, Name: s, Kind: ast.LocalVar, Typ: intType}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c >= 'a' && c <= 'z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
