package fsharp

import (
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/diagnostics"
	"github.com/funvibe/fsgen/internal/token"
	"github.com/funvibe/fsgen/internal/typesystem"
)

var (
	intT   = typesystem.TCon{Name: config.IntTypeName}
	floatT = typesystem.TCon{Name: config.FloatTypeName}
	strT   = typesystem.TCon{Name: config.StringTypeName}
	boolT  = typesystem.TCon{Name: config.BoolTypeName}
	nilT   = typesystem.TCon{Name: config.NilTypeName}
)

func listOf(t typesystem.Type) typesystem.Type {
	return typesystem.TCon{Name: config.ListTypeName, Args: []typesystem.Type{t}}
}

func local(name string, t typesystem.Type) *ast.Var {
	return &ast.Var{Name: name, Kind: ast.LocalVar, Typ: t}
}

func fnRef(name string) *ast.Var { return &ast.Var{Name: name, Kind: ast.ModuleFn} }

func lit(v int64) *ast.IntLiteral { return &ast.IntLiteral{Value: v, Typ: intT} }

func str(raw string) *ast.StringLiteral { return &ast.StringLiteral{Value: raw, Typ: strT} }

func ret(e ast.Expression) ast.Statement { return &ast.ExpressionStatement{Value: e} }

func param(name string, t typesystem.Type) *ast.Param { return &ast.Param{Name: name, Type: t} }

func fun(name string, params []*ast.Param, rt typesystem.Type, body ...ast.Statement) *ast.Function {
	return &ast.Function{Name: name, Params: params, ReturnType: rt, Body: body}
}

func module(defs ...ast.Definition) *ast.Module {
	return &ast.Module{Name: "app/m", Definitions: defs}
}

func generate(t *testing.T, defs ...ast.Definition) *Output {
	t.Helper()
	out, err := Generate(module(defs...), nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return out
}

func generateErr(t *testing.T, defs ...ast.Definition) *diagnostics.DiagnosticError {
	t.Helper()
	_, err := Generate(module(defs...), nil)
	if err == nil {
		t.Fatalf("Generate succeeded, want an error")
	}
	var de *diagnostics.DiagnosticError
	if !errors.As(err, &de) {
		t.Fatalf("error %v is not a DiagnosticError", err)
	}
	return de
}

// render lowers a single expression in a fresh unit.
func render(t *testing.T, e ast.Expression) string {
	t.Helper()
	u := NewUnit(module(), nil)
	out := u.expr(e)
	if u.err != nil {
		t.Fatalf("expr: %v", u.err)
	}
	return out
}

func mustContain(t *testing.T, src, want string) {
	t.Helper()
	if !strings.Contains(src, want) {
		t.Errorf("output does not contain\n%s\n--- output ---\n%s", want, src)
	}
}

func TestGenerateFunction(t *testing.T) {
	out := generate(t, fun("add",
		[]*ast.Param{param("a", intT), param("b", intT)}, intT,
		ret(&ast.BinOp{Op: ast.OpAddInt, Left: local("a", intT), Right: local("b", intT), Typ: intT}),
	))
	want := "module rec app.m\n" +
		"\n" +
		"open Gleam.Prelude\n" +
		"\n" +
		"let add (a: int64) (b: int64) : int64 =\n" +
		"    a + b\n"
	if out.Source != want {
		t.Errorf("got\n%s\nwant\n%s", out.Source, want)
	}
	if out.Module != "app.m" || out.Path != "app/m.fs" {
		t.Errorf("module %q path %q", out.Module, out.Path)
	}
}

func TestGenerateNilModule(t *testing.T) {
	if _, err := Generate(nil, nil); err == nil {
		t.Fatal("expected an error for a nil module")
	}
}

func TestReservedWords(t *testing.T) {
	out := generate(t, fun("begin", []*ast.Param{param("type", intT)}, intT, ret(local("type", intT))))
	mustContain(t, out.Source, "let ``begin`` (``type``: int64) : int64 =\n    ``type``\n")

	if got := ModuleName("app/module/x"); got != "app.``module``.x" {
		t.Errorf("ModuleName = %q", got)
	}
	if IsReserved("value") || !IsReserved("yield") {
		t.Error("IsReserved misclassifies")
	}
}

func TestPublicityDocsAndDeprecation(t *testing.T) {
	f := fun("plus", []*ast.Param{param("a", intT)}, intT, ret(local("a", intT)))
	f.Doc = " Adds numbers.\n Second line."
	f.Deprecated = "use add"
	f.Publicity = ast.Private
	out := generate(t, f)
	mustContain(t, out.Source,
		"/// Adds numbers.\n"+
			"/// Second line.\n"+
			"[<System.Obsolete(\"use add\")>]\n"+
			"let private plus (a: int64) : int64 =\n")

	g := fun("g", nil, nilT, ret(&ast.Var{Name: "Nil", Kind: ast.ConstructorRef, Typ: nilT,
		Constructor: &ast.ConstructorInfo{TypeName: config.NilTypeName, Name: config.NilCtorName, Variants: 1}}))
	g.Publicity = ast.Internal
	mustContain(t, generate(t, g).Source, "let internal g () : unit =\n    ()\n")
}

func TestEntryPointIsLast(t *testing.T) {
	main := fun("main", nil, nilT, ret(&ast.Call{Fun: fnRef("helper"), Typ: nilT}))
	helper := fun("helper", nil, nilT, ret(&ast.Todo{Typ: nilT}))
	out := generate(t, main, helper)

	entry := "[<EntryPoint>]\n" +
		"let main (args: string[]) : int =\n" +
		"    let _ =\n" +
		"        helper ()\n" +
		"    0\n"
	if !strings.HasSuffix(out.Source, entry) {
		t.Errorf("entry point is not the last declaration:\n%s", out.Source)
	}
	mustContain(t, out.Source, "let helper () : unit =\n    failwith \"Not implemented\"\n")
}

func TestConstantsAndAliases(t *testing.T) {
	out := generate(t,
		&ast.ModuleConstant{Name: "limit", Value: lit(10)},
		&ast.ModuleConstant{Name: "greeting", Publicity: ast.Private, Value: str(`hi\n`)},
		&ast.ModuleConstant{Name: "pair", Value: &ast.Tuple{Elements: []ast.Expression{lit(1), lit(2)}}},
		&ast.TypeAlias{Name: "UserId", Type: intT},
		&ast.TypeAlias{Name: "Pairs", Params: []string{"a"}, Type: listOf(typesystem.TTuple{Elements: []typesystem.Type{typesystem.TVar{Name: "a"}, strT}})},
	)
	mustContain(t, out.Source, "[<Literal>]\nlet limit = 10L\n")
	mustContain(t, out.Source, "[<Literal>]\nlet private greeting = \"hi\\n\"\n")
	mustContain(t, out.Source, "\nlet pair = (1L, 2L)\n")
	mustContain(t, out.Source, "type UserId = int64\n")
	mustContain(t, out.Source, "type Pairs<'a> = list<('a * string)>\n")
}

func TestExternalFunction(t *testing.T) {
	f := fun("now", nil, intT)
	f.External = &ast.External{Module: "Clock", Function: "now"}
	g := fun("shout", []*ast.Param{param("s", strT), param("", intT)}, strT)
	g.External = &ast.External{Module: "Text", Function: "shout"}
	out := generate(t, f, g)
	mustContain(t, out.Source, "let now () : int64 =\n    Clock.now ()\n")
	mustContain(t, out.Source, "let shout (s: string) (gleam__arg1: int64) : string =\n    Text.shout s gleam__arg1\n")
}

func TestTypeNames(t *testing.T) {
	u := NewUnit(module(), nil)
	fnT := typesystem.TFunc{Params: []typesystem.Type{intT}, ReturnType: boolT}
	tests := []struct {
		typ  typesystem.Type
		want string
	}{
		{intT, "int64"},
		{floatT, "float"},
		{nilT, "unit"},
		{typesystem.TCon{Name: config.BitArrayTypeName}, "BitArray"},
		{listOf(strT), "list<string>"},
		{typesystem.TCon{Name: config.ResultTypeName, Args: []typesystem.Type{intT, strT}}, "Result<int64, string>"},
		{typesystem.TCon{Module: "app/m", Name: "Shape"}, "Shape"},
		{typesystem.TCon{Module: "app/geo", Name: "Point", Args: []typesystem.Type{typesystem.TVar{Name: "a"}}}, "app.geo.Point<'a>"},
		{typesystem.TTuple{Elements: []typesystem.Type{intT, fnT}}, "(int64 * (int64 -> bool))"},
		{typesystem.TFunc{ReturnType: intT}, "unit -> int64"},
		{typesystem.TFunc{Params: []typesystem.Type{fnT, intT}, ReturnType: fnT}, "(int64 -> bool) -> int64 -> int64 -> bool"},
	}
	for _, tt := range tests {
		if got := u.typeName(tt.typ); got != tt.want {
			t.Errorf("typeName(%s) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestUnsupportedNodeIsReported(t *testing.T) {
	de := generateErr(t, fun("f", nil, intT, ret(&ast.Tuple{Token: token.Token{Line: 4, Column: 2},
		Elements: []ast.Expression{lit(1)}})))
	if de.Code != diagnostics.ErrL006 || de.Token.Line != 4 {
		t.Errorf("got %v", de)
	}
}

func TestPrelude(t *testing.T) {
	src := Prelude(nil)
	if !strings.HasPrefix(src, "module Gleam.Prelude\n") {
		t.Errorf("prelude starts with %q", strings.SplitN(src, "\n", 2)[0])
	}
	for _, fn := range []string{"let divideInt", "let ofInt", "let readInt", "let concat", "let equalsAt", "let codepointWidth"} {
		mustContain(t, src, fn)
	}

	opts := config.DefaultOptions()
	opts.PreludeModule = "My.Runtime"
	if !strings.HasPrefix(Prelude(opts), "module My.Runtime\n") {
		t.Error("custom prelude module name not applied")
	}
	if PreludeFileName(opts) != "My.Runtime.fs" {
		t.Errorf("PreludeFileName = %q", PreludeFileName(opts))
	}
	out, err := Generate(module(), opts)
	if err != nil {
		t.Fatal(err)
	}
	mustContain(t, out.Source, "open My.Runtime\n")
}
