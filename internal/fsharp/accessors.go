package fsharp

import (
	"sort"
	"strings"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/diagnostics"
	"github.com/funvibe/fsgen/internal/prettyprinter"
	"github.com/funvibe/fsgen/internal/token"
	"github.com/funvibe/fsgen/internal/typesystem"
)

// Accessor is a synthesized field getter on a multi-variant type.
type Accessor struct {
	Label string
	Type  typesystem.Type
	Arms  []AccessorArm
}

// AccessorArm reads the field out of one variant.
type AccessorArm struct {
	Variant string
	Index   int // position of the field in the variant
	Arity   int
}

// SynthesizeAccessors returns a getter for every label that all variants of
// t carry with the same type, in the field order of the first variant by
// name. accessed lists the labels read through `value.label` in the
// module; each of them must end up with a getter, otherwise the IR is
// inconsistent and ErrL001 names the variant that lacks the field.
func SynthesizeAccessors(t *ast.CustomType, accessed map[string]token.Token) ([]*Accessor, error) {
	variants := sortedConstructors(t)

	var out []*Accessor
	have := map[string]bool{}
	if len(variants) > 0 {
		for _, f := range variants[0].Fields {
			if f.Label == "" || have[f.Label] {
				continue
			}
			if acc := accessorFor(variants, f.Label, f.Type); acc != nil {
				out = append(out, acc)
				have[f.Label] = true
			}
		}
	}

	labels := make([]string, 0, len(accessed))
	for l := range accessed {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if have[label] {
			continue
		}
		return nil, missingField(t, variants, label, accessed[label])
	}
	return out, nil
}

func accessorFor(variants []*ast.Constructor, label string, typ typesystem.Type) *Accessor {
	acc := &Accessor{Label: label, Type: typ}
	for _, v := range variants {
		i := v.FieldIndex(label)
		if i < 0 || !typesystem.Equal(v.Fields[i].Type, typ) {
			return nil
		}
		acc.Arms = append(acc.Arms, AccessorArm{Variant: v.Name, Index: i, Arity: len(v.Fields)})
	}
	return acc
}

func missingField(t *ast.CustomType, variants []*ast.Constructor, label string, tok token.Token) error {
	if len(variants) == 0 {
		return diagnostics.Errorf(diagnostics.ErrL001, tok, "type %s has no variants, field %s accessed", t.Name, label)
	}
	var want typesystem.Type
	for _, v := range variants {
		i := v.FieldIndex(label)
		if i < 0 {
			return diagnostics.Errorf(diagnostics.ErrL001, tok,
				"type %s: field %s accessed but variant %s lacks it", t.Name, label, v.Name)
		}
		if want == nil {
			want = v.Fields[i].Type
		} else if !typesystem.Equal(want, v.Fields[i].Type) {
			return diagnostics.Errorf(diagnostics.ErrL001, tok,
				"type %s: field %s has type %s in variant %s but %s elsewhere",
				t.Name, label, v.Fields[i].Type, v.Name, want)
		}
	}
	return diagnostics.Errorf(diagnostics.ErrL001, tok, "type %s: no accessor for field %s", t.Name, label)
}

// render writes the getter as a member of the type's declaration.
func (a *Accessor) render(t *ast.CustomType) string {
	p := prettyprinter.NewCodePrinter()
	name := Ident(a.Label)
	p.Block("member this."+name+" =", func() {
		p.Line("match this with")
		for _, arm := range a.Arms {
			slots := make([]string, arm.Arity)
			for i := range slots {
				slots[i] = "_"
			}
			slots[arm.Index] = name
			p.Line("| " + Ident(t.Name) + "." + Ident(arm.Variant) + " (" + strings.Join(slots, ", ") + ") -> " + name)
		}
	})
	return strings.TrimRight(p.String(), "\n")
}
