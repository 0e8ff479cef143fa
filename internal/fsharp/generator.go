// Package fsharp lowers a typed IR module to F# source text.
//
// A Unit holds the per-module tables the lowering builds up: synthesized
// variant accessors, interned string prefixes and the bit matchers shared by
// identical bit array patterns. Units are independent of each other, so
// several modules can be lowered concurrently.
package fsharp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/diagnostics"
	"github.com/funvibe/fsgen/internal/lexer"
	"github.com/funvibe/fsgen/internal/prettyprinter"
	"github.com/funvibe/fsgen/internal/token"
	"github.com/funvibe/fsgen/internal/typesystem"
)

// Output is the result of lowering one module.
type Output struct {
	// Module is the dotted F# module name.
	Module string
	// Path is the relative output file, e.g. "app/shapes.fs".
	Path   string
	Source string

	// Accessors by type name.
	Accessors   map[string][]*Accessor
	Prefixes    []*PrefixEntry
	BitMatchers []*BitMatcher
}

// Unit is the lowering state of one module.
type Unit struct {
	module *ast.Module
	opts   *config.Options

	types     map[string]*ast.CustomType
	accessed  map[string]map[string]token.Token
	accessors map[string][]*Accessor
	prefixes  *PrefixTable
	bits      *bitMatchers
	out       *prettyprinter.CodePrinter

	fnName string // function being lowered, for trap messages
	temps  int
	err    error
}

// NewUnit prepares the lowering of mod. A nil opts uses the defaults.
func NewUnit(mod *ast.Module, opts *config.Options) *Unit {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	return &Unit{
		module:    mod,
		opts:      opts,
		types:     map[string]*ast.CustomType{},
		accessed:  map[string]map[string]token.Token{},
		accessors: map[string][]*Accessor{},
		prefixes:  NewPrefixTable(),
		bits:      newBitMatchers(),
		out:       prettyprinter.NewCodePrinterWithWidth(opts.LineWidth),
	}
}

// Generate lowers mod to F#. Any internal-consistency defect aborts the
// unit and is returned as a *diagnostics.DiagnosticError.
func Generate(mod *ast.Module, opts *config.Options) (*Output, error) {
	if mod == nil {
		return nil, diagnostics.NewError(diagnostics.ErrL006, token.Token{}, "nil module")
	}
	return NewUnit(mod, opts).Generate()
}

// Generate runs the lowering of the unit's module.
func (u *Unit) Generate() (*Output, error) {
	u.collectTypes()
	if err := u.synthesizeAccessors(); err != nil {
		return nil, err
	}

	var defs []string
	var entry string
	for _, d := range u.module.Definitions {
		text := u.definition(d)
		if u.err != nil {
			return nil, u.err
		}
		if text == "" {
			continue
		}
		if f, ok := d.(*ast.Function); ok && isEntryPoint(f) {
			entry = text
			continue
		}
		defs = append(defs, text)
	}
	// The entry point must be the last declaration of the file.
	if entry != "" {
		defs = append(defs, entry)
	}

	p := u.out
	p.Line("module rec " + ModuleName(u.module.Name))
	p.Blank()
	p.Line("open " + u.opts.PreludeModule)
	u.prefixes.emit(p)
	u.bits.emit(p, u)
	if u.err != nil {
		return nil, u.err
	}
	for _, d := range defs {
		p.Blank()
		p.Line(d)
	}

	return &Output{
		Module:      ModuleName(u.module.Name),
		Path:        u.module.Name + config.TargetFileExt,
		Source:      p.String(),
		Accessors:   u.accessors,
		Prefixes:    u.prefixes.Entries(),
		BitMatchers: u.bits.list,
	}, nil
}

// fail records the first defect; rendering carries on with placeholders
// and Generate reports the error.
func (u *Unit) fail(err error) {
	if u.err == nil && err != nil {
		u.err = err
	}
}

func (u *Unit) failf(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) {
	u.fail(diagnostics.Errorf(code, tok, format, args...))
}

// temp returns a fresh temporary name.
func (u *Unit) temp(kind string) string {
	u.temps++
	return fmt.Sprintf("%s%s%d", config.TempPrefix, kind, u.temps)
}

func (u *Unit) collectTypes() {
	for _, d := range u.module.Definitions {
		if ct, ok := d.(*ast.CustomType); ok {
			u.types[ct.Name] = ct
		}
	}
	ast.Walk(u.module, func(n ast.Node) bool {
		ra, ok := n.(*ast.RecordAccess)
		if !ok || ra.Record == nil {
			return true
		}
		if ct := u.localType(ra.Record.GetType()); ct != nil {
			labels := u.accessed[ct.Name]
			if labels == nil {
				labels = map[string]token.Token{}
				u.accessed[ct.Name] = labels
			}
			if _, seen := labels[ra.Label]; !seen {
				labels[ra.Label] = ra.Token
			}
		}
		return true
	})
}

// localType returns the custom type t names when it is declared by the
// module being lowered.
func (u *Unit) localType(t typesystem.Type) *ast.CustomType {
	c, ok := typesystem.Named(t)
	if !ok || (c.Module != "" && c.Module != u.module.Name) {
		return nil
	}
	return u.types[c.Name]
}

func (u *Unit) synthesizeAccessors() error {
	names := make([]string, 0, len(u.types))
	for name := range u.types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ct := u.types[name]
		if isRecordType(ct) {
			accessed := u.accessed[name]
			labels := make([]string, 0, len(accessed))
			for label := range accessed {
				labels = append(labels, label)
			}
			sort.Strings(labels)
			for _, label := range labels {
				if ct.Constructors[0].FieldIndex(label) < 0 {
					return diagnostics.Errorf(diagnostics.ErrL001, accessed[label], "record %s has no field %s", name, label)
				}
			}
			continue
		}
		acc, err := SynthesizeAccessors(ct, u.accessed[name])
		if err != nil {
			return err
		}
		if len(acc) > 0 {
			u.accessors[name] = acc
		}
	}
	return nil
}

func (u *Unit) definition(d ast.Definition) string {
	switch d := d.(type) {
	case *ast.Import:
		return ""
	case *ast.CustomType:
		return u.customType(d)
	case *ast.TypeAlias:
		return fmt.Sprintf("type %s%s = %s", Ident(d.Name), typeParams(d.Params), u.typeName(d.Type))
	case *ast.ModuleConstant:
		return u.constant(d)
	case *ast.Function:
		return u.function(d)
	}
	u.failf(diagnostics.ErrL006, d.GetToken(), "unsupported definition %T", d)
	return ""
}

func docLines(doc string) []string {
	if strings.TrimSpace(doc) == "" {
		return nil
	}
	var out []string
	for _, l := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		if l == "" || strings.HasPrefix(l, " ") {
			out = append(out, "///"+l)
		} else {
			out = append(out, "/// "+l)
		}
	}
	return out
}

func isRecordType(ct *ast.CustomType) bool {
	if len(ct.Constructors) != 1 {
		return false
	}
	c := ct.Constructors[0]
	if c.Name != ct.Name || len(c.Fields) == 0 {
		return false
	}
	for _, f := range c.Fields {
		if f.Label == "" {
			return false
		}
	}
	return true
}

func (u *Unit) customType(ct *ast.CustomType) string {
	p := prettyprinter.NewCodePrinter()
	for _, l := range docLines(ct.Doc) {
		p.Line(l)
	}
	head := "type " + publicity(ct.Publicity) + Ident(ct.Name) + typeParams(ct.Params) + " ="
	access := ""
	if ct.Opaque {
		access = "private "
	}

	switch {
	case len(ct.Constructors) == 0:
		p.Line(head + " class end")
	case isRecordType(ct):
		fields := make([]string, len(ct.Constructors[0].Fields))
		for i, f := range ct.Constructors[0].Fields {
			fields[i] = Ident(f.Label) + ": " + u.typeName(f.Type)
		}
		p.Line(head + " " + access + "{ " + strings.Join(fields, "; ") + " }")
	default:
		p.Block(head, func() {
			if ct.Opaque {
				p.Line("private")
			}
			for _, c := range sortedConstructors(ct) {
				p.Line(u.variant(c))
			}
			for _, acc := range u.accessors[ct.Name] {
				p.Line(acc.render(ct))
			}
		})
	}
	return strings.TrimRight(p.String(), "\n")
}

func (u *Unit) variant(c *ast.Constructor) string {
	if len(c.Fields) == 0 {
		return "| " + Ident(c.Name)
	}
	fields := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		t := u.argTypeName(f.Type)
		if f.Label != "" {
			t = Ident(f.Label) + ": " + t
		}
		fields[i] = t
	}
	return "| " + Ident(c.Name) + " of " + strings.Join(fields, " * ")
}

func sortedConstructors(ct *ast.CustomType) []*ast.Constructor {
	out := append([]*ast.Constructor(nil), ct.Constructors...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (u *Unit) constant(c *ast.ModuleConstant) string {
	p := prettyprinter.NewCodePrinter()
	for _, l := range docLines(c.Doc) {
		p.Line(l)
	}
	if isLiteral(c.Value) {
		p.Line("[<Literal>]")
	}
	value := u.expr(c.Value)
	head := "let " + publicity(c.Publicity) + Ident(c.Name) + " ="
	if prettyprinter.Multiline(value) {
		p.Block(head, func() { p.Line(value) })
	} else {
		p.Line(head + " " + value)
	}
	return strings.TrimRight(p.String(), "\n")
}

func isLiteral(e ast.Expression) bool {
	switch e := e.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral:
		return true
	case *ast.NegateInt:
		_, ok := e.Value.(*ast.IntLiteral)
		return ok
	}
	return false
}

func isEntryPoint(f *ast.Function) bool {
	return f.Name == "main" && f.Publicity == ast.Public && len(f.Params) == 0 && f.External == nil
}

func (u *Unit) function(f *ast.Function) string {
	u.fnName = f.Name
	u.temps = 0
	defer func() { u.fnName = "" }()

	p := prettyprinter.NewCodePrinter()
	for _, l := range docLines(f.Doc) {
		p.Line(l)
	}
	if f.Deprecated != "" {
		p.Line("[<System.Obsolete(" + lexer.Quote(f.Deprecated) + ")>]")
	}

	if isEntryPoint(f) {
		p.Line("[<EntryPoint>]")
		body := u.statements(f.Body)
		p.Block("let main (args: string[]) : int =", func() {
			p.Block("let _ =", func() { p.Line(body) })
			p.Line("0")
		})
		return strings.TrimRight(p.String(), "\n")
	}

	params := make([]string, len(f.Params))
	for i, prm := range f.Params {
		name := "_"
		if prm.Name != "" {
			name = Ident(prm.Name)
		} else if f.External != nil {
			name = fmt.Sprintf("%sarg%d", config.TempPrefix, i)
		}
		params[i] = "(" + name + ": " + u.typeName(prm.Type) + ")"
	}
	if len(params) == 0 {
		params = []string{"()"}
	}
	head := "let " + publicity(f.Publicity) + Ident(f.Name) + " " + strings.Join(params, " ")
	if f.ReturnType != nil {
		head += " : " + u.typeName(f.ReturnType)
	}
	head += " ="

	var body string
	if f.External != nil {
		body = u.externalCall(f)
	} else {
		body = u.statements(f.Body)
	}
	p.Block(head, func() { p.Line(body) })
	return strings.TrimRight(p.String(), "\n")
}

func (u *Unit) externalCall(f *ast.Function) string {
	target := Ident(f.External.Function)
	if f.External.Module != "" {
		target = f.External.Module + "." + target
	}
	if len(f.Params) == 0 {
		return target + " ()"
	}
	args := make([]string, len(f.Params))
	for i, prm := range f.Params {
		if prm.Name == "" {
			args[i] = fmt.Sprintf("%sarg%d", config.TempPrefix, i)
		} else {
			args[i] = Ident(prm.Name)
		}
	}
	return target + " " + strings.Join(args, " ")
}
