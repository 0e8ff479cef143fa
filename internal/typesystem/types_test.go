package typesystem

import "testing"

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"prelude", TCon{Name: "Int"}, "Int"},
		{"qualified", TCon{Module: "shapes", Name: "Shape"}, "shapes.Shape"},
		{"applied", TCon{Name: "List", Args: []Type{TVar{Name: "a"}}}, "List(a)"},
		{"tuple", TTuple{Elements: []Type{TCon{Name: "Int"}, TCon{Name: "Bool"}}}, "#(Int, Bool)"},
		{"func", TFunc{Params: []Type{TCon{Name: "Int"}}, ReturnType: TCon{Name: "String"}}, "fn(Int) -> String"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	intT := TCon{Name: "Int"}
	listInt := TCon{Name: "List", Args: []Type{intT}}

	if !Equal(listInt, TCon{Name: "List", Args: []Type{TCon{Name: "Int"}}}) {
		t.Errorf("List(Int) should equal itself")
	}
	if Equal(listInt, TCon{Name: "List", Args: []Type{TCon{Name: "Float"}}}) {
		t.Errorf("List(Int) should not equal List(Float)")
	}
	if Equal(intT, TCon{Module: "other", Name: "Int"}) {
		t.Errorf("module must take part in equality")
	}
	if Equal(TVar{Name: "a"}, TCon{Name: "a"}) {
		t.Errorf("type variable must not equal a constructor")
	}
	fn := TFunc{Params: []Type{intT}, ReturnType: intT}
	if !Equal(fn, TFunc{Params: []Type{intT}, ReturnType: intT}) {
		t.Errorf("identical function types should be equal")
	}
}

func TestPredicates(t *testing.T) {
	if !IsNil(TCon{Name: "Nil"}) || IsNil(TCon{Module: "m", Name: "Nil"}) {
		t.Errorf("IsNil must only accept the prelude Nil")
	}
	if !IsFunc(TFunc{}) || IsFunc(TCon{Name: "Int"}) {
		t.Errorf("IsFunc mismatch")
	}
	if TupleArity(TTuple{Elements: []Type{TVar{Name: "a"}, TVar{Name: "b"}}}) != 2 {
		t.Errorf("TupleArity mismatch")
	}
	if TupleArity(TCon{Name: "Int"}) != -1 {
		t.Errorf("TupleArity of non-tuple should be -1")
	}
}
