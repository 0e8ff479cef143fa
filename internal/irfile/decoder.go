// Package irfile reads typed IR modules serialized as YAML by the front end.
//
// A file holds one module:
//
//	module: app/shapes
//	source: src/app/shapes.gleam
//	definitions:
//	  - kind: function
//	    name: area
//	    params: [{name: s, type: app/shapes.Shape}]
//	    return: Float
//	    body:
//	      - {kind: var, name: s, type: app/shapes.Shape}
//
// Every node may carry line and column keys pointing into the source file;
// nodes without them are positioned at their place in the IR file instead.
package irfile

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/diagnostics"
	"github.com/funvibe/fsgen/internal/token"
	"github.com/funvibe/fsgen/internal/typesystem"
)

// DecodeFile reads and decodes the IR file at path.
func DecodeFile(path string) (*ast.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diagnostics.Errorf(diagnostics.ErrD001, token.Token{File: path}, "%v", err)
	}
	return Decode(data, path)
}

// Decode reads one IR module. file names the IR file in diagnostics; all
// failures are *diagnostics.DiagnosticError values with code D001.
func Decode(data []byte, file string) (*ast.Module, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, diagnostics.Errorf(diagnostics.ErrD001, token.Token{File: file}, "%v", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, diagnostics.Errorf(diagnostics.ErrD001, token.Token{File: file}, "empty document")
	}
	d := &decoder{file: file, source: file}
	mod := d.module(doc.Content[0])
	if d.err != nil {
		return nil, d.err
	}
	return mod, nil
}

type decoder struct {
	file   string // the IR file
	source string // the source file named by the module
	err    *diagnostics.DiagnosticError
}

// failf records the first decode error. Decoding carries on with zero
// values so callers need no error plumbing; the module is dropped anyway.
func (d *decoder) failf(n *yaml.Node, format string, args ...interface{}) {
	if d.err != nil {
		return
	}
	tok := token.Token{File: d.file}
	if n != nil {
		tok.Line, tok.Column = n.Line, n.Column
	}
	d.err = diagnostics.Errorf(diagnostics.ErrD001, tok, format, args...)
}

func (d *decoder) module(n *yaml.Node) *ast.Module {
	o := d.object(n, "module")
	if src := o.str("source"); src != "" {
		d.source = src
	}
	mod := &ast.Module{Token: d.tok(o), Name: o.reqStr("module")}
	for _, dn := range o.seq("definitions") {
		if def := d.definition(dn); def != nil {
			mod.Definitions = append(mod.Definitions, def)
		}
	}
	return mod
}

func (d *decoder) definition(n *yaml.Node) ast.Definition {
	o := d.object(n, "definition")
	switch kind := o.reqStr("kind"); kind {
	case "import":
		return &ast.Import{Token: d.tok(o), Module: o.reqStr("module")}
	case "custom_type":
		ct := &ast.CustomType{
			Token:     d.tok(o),
			Name:      o.reqStr("name"),
			Params:    o.strs("params"),
			Publicity: o.publicity(),
			Opaque:    o.bool("opaque"),
			Doc:       o.str("doc"),
		}
		for _, cn := range o.seq("constructors") {
			ct.Constructors = append(ct.Constructors, d.constructor(cn))
		}
		return ct
	case "type_alias":
		return &ast.TypeAlias{
			Token:     d.tok(o),
			Name:      o.reqStr("name"),
			Params:    o.strs("params"),
			Publicity: o.publicity(),
			Type:      o.reqType("type"),
		}
	case "constant":
		return &ast.ModuleConstant{
			Token:     d.tok(o),
			Name:      o.reqStr("name"),
			Publicity: o.publicity(),
			Doc:       o.str("doc"),
			Value:     d.expr(o.require("value")),
		}
	case "function":
		return d.function(o)
	case "":
		return nil
	default:
		d.failf(n, "unknown definition kind %q", kind)
		return nil
	}
}

func (d *decoder) constructor(n *yaml.Node) *ast.Constructor {
	o := d.object(n, "constructor")
	c := &ast.Constructor{Token: d.tok(o), Name: o.reqStr("name")}
	for _, fn := range o.seq("fields") {
		// A bare type is an unlabelled field.
		if fn.Kind == yaml.ScalarNode {
			c.Fields = append(c.Fields, &ast.Field{Type: d.parseType(fn)})
			continue
		}
		f := d.object(fn, "field")
		c.Fields = append(c.Fields, &ast.Field{Label: f.str("label"), Type: f.reqType("type")})
	}
	return c
}

func (d *decoder) function(o *object) *ast.Function {
	f := &ast.Function{
		Token:      d.tok(o),
		Name:       o.reqStr("name"),
		Publicity:  o.publicity(),
		Doc:        o.str("doc"),
		Deprecated: o.str("deprecated"),
		Params:     d.params(o.seq("params")),
		ReturnType: o.typ("return"),
	}
	if ext := o.get("external"); ext != nil {
		e := d.object(ext, "external")
		f.External = &ast.External{Module: e.reqStr("module"), Function: e.reqStr("function")}
		return f
	}
	f.Body = d.statements(o.seq("body"))
	return f
}

func (d *decoder) params(nodes []*yaml.Node) []*ast.Param {
	var out []*ast.Param
	for _, pn := range nodes {
		p := d.object(pn, "parameter")
		out = append(out, &ast.Param{Name: p.str("name"), Type: p.typ("type")})
	}
	return out
}

func (d *decoder) parseType(n *yaml.Node) typesystem.Type {
	if n == nil {
		return nil
	}
	var s string
	if err := n.Decode(&s); err != nil {
		d.failf(n, "type must be a string")
		return nil
	}
	t, err := ParseType(s)
	if err != nil {
		d.failf(n, "%v", err)
		return nil
	}
	return t
}

// tok is the source anchor of the node behind o.
func (d *decoder) tok(o *object) token.Token {
	if o.has("line") {
		return token.Token{File: d.source, Line: int(o.int("line", 0)), Column: int(o.int("column", 0))}
	}
	if o.node == nil {
		return token.Token{File: d.file}
	}
	return token.Token{File: d.file, Line: o.node.Line, Column: o.node.Column}
}

// object is a decoded mapping node.
type object struct {
	d      *decoder
	node   *yaml.Node
	fields map[string]*yaml.Node
}

func (d *decoder) object(n *yaml.Node, what string) *object {
	o := &object{d: d, node: n, fields: map[string]*yaml.Node{}}
	if n == nil {
		return o
	}
	if n.Kind == yaml.AliasNode {
		// An alias may point at one of its own ancestors.
		d.failf(n, "aliases are not supported in IR files")
		return o
	}
	if n.Kind != yaml.MappingNode {
		d.failf(n, "%s must be a mapping", what)
		return o
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		o.fields[n.Content[i].Value] = n.Content[i+1]
	}
	return o
}

func (o *object) has(key string) bool { return o.fields[key] != nil }

func (o *object) get(key string) *yaml.Node { return o.fields[key] }

func (o *object) require(key string) *yaml.Node {
	n := o.fields[key]
	if n == nil && o.node != nil {
		o.d.failf(o.node, "missing %q", key)
	}
	return n
}

func (o *object) str(key string) string {
	n := o.fields[key]
	if n == nil {
		return ""
	}
	var s string
	if err := n.Decode(&s); err != nil {
		o.d.failf(n, "%s must be a string", key)
	}
	return s
}

func (o *object) reqStr(key string) string {
	if o.require(key) == nil {
		return ""
	}
	return o.str(key)
}

func (o *object) int(key string, def int64) int64 {
	n := o.fields[key]
	if n == nil {
		return def
	}
	var v int64
	if err := n.Decode(&v); err != nil {
		o.d.failf(n, "%s must be an integer", key)
	}
	return v
}

func (o *object) bool(key string) bool {
	n := o.fields[key]
	if n == nil {
		return false
	}
	var v bool
	if err := n.Decode(&v); err != nil {
		o.d.failf(n, "%s must be a boolean", key)
	}
	return v
}

func (o *object) seq(key string) []*yaml.Node {
	n := o.fields[key]
	if n == nil {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		o.d.failf(n, "%s must be a sequence", key)
		return nil
	}
	return n.Content
}

func (o *object) strs(key string) []string {
	var out []string
	for _, n := range o.seq(key) {
		var s string
		if err := n.Decode(&s); err != nil {
			o.d.failf(n, "%s entries must be strings", key)
		}
		out = append(out, s)
	}
	return out
}

func (o *object) typ(key string) typesystem.Type { return o.d.parseType(o.fields[key]) }

func (o *object) reqType(key string) typesystem.Type { return o.d.parseType(o.require(key)) }

func (o *object) publicity() ast.Publicity {
	switch p := o.str("publicity"); p {
	case "", "public":
		return ast.Public
	case "internal":
		return ast.Internal
	case "private":
		return ast.Private
	default:
		o.d.failf(o.fields["publicity"], "unknown publicity %q", p)
		return ast.Public
	}
}

// constructorInfo reads {type, module, name, labels, arity, variants}.
func (d *decoder) constructorInfo(n *yaml.Node) *ast.ConstructorInfo {
	if n == nil {
		return nil
	}
	o := d.object(n, "constructor")
	ci := &ast.ConstructorInfo{
		TypeName:   o.reqStr("type"),
		TypeModule: o.str("module"),
		Name:       o.reqStr("name"),
		Labels:     o.strs("labels"),
		Variants:   int(o.int("variants", 1)),
	}
	if ci.Labels == nil {
		if arity := o.int("arity", 0); arity > 0 {
			ci.Labels = make([]string, arity)
		}
	}
	return ci
}

func prelude(name string) typesystem.Type { return typesystem.TCon{Name: name} }

func typeOr(t typesystem.Type, name string) typesystem.Type {
	if t != nil {
		return t
	}
	return prelude(name)
}

var intType = prelude(config.IntTypeName)

func parseInt(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 0, 64)
	return v, err == nil
}

func (d *decoder) unexpected(n *yaml.Node, what string) {
	d.failf(n, "unexpected %s node %s", what, describe(n))
}

func describe(n *yaml.Node) string {
	if n == nil {
		return "<missing>"
	}
	if n.Kind == yaml.ScalarNode {
		return fmt.Sprintf("%q", n.Value)
	}
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	}
	return "document"
}
