package fsharp

import (
	"strings"
	"testing"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/diagnostics"
	"github.com/funvibe/fsgen/internal/token"
	"github.com/funvibe/fsgen/internal/typesystem"
)

func field(label string, t typesystem.Type) *ast.Field { return &ast.Field{Label: label, Type: t} }

func variant(name string, fields ...*ast.Field) *ast.Constructor {
	return &ast.Constructor{Name: name, Fields: fields}
}

func shapeType(order ...string) *ast.CustomType {
	variants := map[string]*ast.Constructor{
		"Circle": variant("Circle", field("name", strT), field("radius", floatT)),
		"Square": variant("Square", field("name", strT), field("side", floatT), field("extra", intT)),
	}
	ct := &ast.CustomType{Name: "Shape"}
	for _, name := range order {
		ct.Constructors = append(ct.Constructors, variants[name])
	}
	return ct
}

// readField is a function reading label off a Shape.
func readField(label string, typ typesystem.Type) *ast.Function {
	return fun("get_"+label, []*ast.Param{param("s", shapeT)}, typ,
		ret(&ast.RecordAccess{Token: token.Token{Line: 12}, Record: local("s", shapeT), Label: label, Index: -1, Typ: typ}))
}

const shapeDecl = "type Shape =\n" +
	"    | Circle of name: string * radius: float\n" +
	"    | Square of name: string * side: float * extra: int64\n" +
	"    member this.name =\n" +
	"        match this with\n" +
	"        | Shape.Circle (name, _) -> name\n" +
	"        | Shape.Square (name, _, _) -> name\n"

func TestAccessorMembers(t *testing.T) {
	out := generate(t, shapeType("Circle", "Square"), readField("name", strT))
	mustContain(t, out.Source, shapeDecl)
	mustContain(t, out.Source, "let get_name (s: Shape) : string =\n    s.name\n")

	acc := out.Accessors["Shape"]
	if len(acc) != 1 || acc[0].Label != "name" {
		t.Fatalf("accessors = %+v", acc)
	}
	if arms := acc[0].Arms; len(arms) != 2 || arms[1] != (AccessorArm{Variant: "Square", Index: 0, Arity: 3}) {
		t.Errorf("arms = %+v", arms)
	}
}

func TestAccessorsIgnoreDeclarationOrder(t *testing.T) {
	a := generate(t, shapeType("Circle", "Square"))
	b := generate(t, shapeType("Square", "Circle"))
	if a.Source != b.Source {
		t.Errorf("declaration order changed the output:\n%s\n---\n%s", a.Source, b.Source)
	}
	mustContain(t, b.Source, shapeDecl)
}

func TestSynthesizeAccessors(t *testing.T) {
	tests := []struct {
		name   string
		typ    *ast.CustomType
		want   []string
		access string
		err    string
	}{
		{
			name: "disjoint labels",
			typ: &ast.CustomType{Name: "T", Constructors: []*ast.Constructor{
				variant("A", field("x", intT)), variant("B", field("y", intT))}},
		},
		{
			name: "shared label with different types",
			typ: &ast.CustomType{Name: "T", Constructors: []*ast.Constructor{
				variant("A", field("size", intT)), variant("B", field("size", floatT))}},
			access: "size",
			err:    "size has type Float in variant B",
		},
		{
			name: "label at different positions",
			typ: &ast.CustomType{Name: "T", Constructors: []*ast.Constructor{
				variant("A", field("id", intT), field("tag", strT)), variant("B", field("tag", strT))}},
			want: []string{"tag"},
		},
		{
			name:   "accessed label missing from a variant",
			typ:    shapeType("Circle", "Square"),
			want:   []string{"name"},
			access: "radius",
			err:    "variant Square lacks it",
		},
		{
			name:   "no variants",
			typ:    &ast.CustomType{Name: "Never"},
			access: "x",
			err:    "has no variants",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accessed := map[string]token.Token{}
			if tt.access != "" {
				accessed[tt.access] = token.Token{Line: 1}
			}
			acc, err := SynthesizeAccessors(tt.typ, accessed)
			if tt.err != "" {
				de, ok := err.(*diagnostics.DiagnosticError)
				if !ok || de.Code != diagnostics.ErrL001 || !strings.Contains(de.Error(), tt.err) {
					t.Fatalf("got %v, want L001 mentioning %q", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			var labels []string
			for _, a := range acc {
				labels = append(labels, a.Label)
			}
			if strings.Join(labels, ",") != strings.Join(tt.want, ",") {
				t.Errorf("labels = %v, want %v", labels, tt.want)
			}
		})
	}
}

func TestAccessToMissingField(t *testing.T) {
	de := generateErr(t, shapeType("Circle", "Square"), readField("radius", floatT))
	if de.Code != diagnostics.ErrL001 || de.Token.Line != 12 {
		t.Errorf("got %v", de)
	}

	userType := &ast.CustomType{Name: "User", Constructors: []*ast.Constructor{
		variant("User", field("name", strT))}}
	get := fun("age", []*ast.Param{param("u", userT)}, intT,
		ret(&ast.RecordAccess{Record: local("u", userT), Label: "age", Typ: intT}))
	if de := generateErr(t, userType, get); de.Code != diagnostics.ErrL001 {
		t.Errorf("record access to a missing field: got %v", de)
	}
}

func TestCustomTypeDeclarations(t *testing.T) {
	a := typesystem.TVar{Name: "a"}
	tests := []struct {
		name string
		typ  *ast.CustomType
		want string
	}{
		{
			name: "record",
			typ: &ast.CustomType{Name: "User", Constructors: []*ast.Constructor{
				variant("User", field("name", strT), field("age", intT))}},
			want: "type User = { name: string; age: int64 }\n",
		},
		{
			name: "opaque record",
			typ: &ast.CustomType{Name: "Token", Opaque: true, Constructors: []*ast.Constructor{
				variant("Token", field("raw", strT))}},
			want: "type Token = private { raw: string }\n",
		},
		{
			name: "generic record",
			typ: &ast.CustomType{Name: "Box", Params: []string{"a"}, Constructors: []*ast.Constructor{
				variant("Box", field("value", a))}},
			want: "type Box<'a> = { value: 'a }\n",
		},
		{
			name: "generic union",
			typ: &ast.CustomType{Name: "Maybe", Params: []string{"a"}, Constructors: []*ast.Constructor{
				variant("Nothing"), variant("Just", field("", a))}},
			want: "type Maybe<'a> =\n    | Just of 'a\n    | Nothing\n",
		},
		{
			name: "opaque union",
			typ: &ast.CustomType{Name: "Id", Opaque: true, Publicity: ast.Internal, Constructors: []*ast.Constructor{
				variant("Id", field("", intT))}},
			want: "type internal Id =\n    private\n    | Id of int64\n",
		},
		{
			name: "function field",
			typ: &ast.CustomType{Name: "Handler", Constructors: []*ast.Constructor{
				variant("Handle", field("run", typesystem.TFunc{Params: []typesystem.Type{intT}, ReturnType: nilT})),
				variant("Skip")}},
			want: "type Handler =\n    | Handle of run: (int64 -> unit)\n    | Skip\n",
		},
		{
			name: "no constructors",
			typ:  &ast.CustomType{Name: "Never", Doc: " Uninhabited."},
			want: "/// Uninhabited.\ntype Never = class end\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustContain(t, generate(t, tt.typ).Source, tt.want)
		})
	}
}
