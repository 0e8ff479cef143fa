package mutator

import (
	"testing"

	"github.com/funvibe/fsgen/internal/ast"
)

func sample() (*ast.Module, *ast.BinOp, *ast.Function) {
	op := &ast.BinOp{Op: ast.OpAddInt, Left: &ast.IntLiteral{Value: 1}, Right: &ast.IntLiteral{Value: 2}}
	fn := &ast.Function{Name: "f", Body: []ast.Statement{
		&ast.ExpressionStatement{Value: &ast.StringLiteral{Value: "hello"}},
		&ast.ExpressionStatement{Value: op},
	}}
	return &ast.Module{Name: "m", Definitions: []ast.Definition{fn}}, op, fn
}

func unchanged(op *ast.BinOp, fn *ast.Function) bool {
	if len(fn.Body) != 2 || op.Op != ast.OpAddInt {
		return false
	}
	if fn.Body[0].(*ast.ExpressionStatement).Value.(*ast.StringLiteral).Value != "hello" {
		return false
	}
	return op.Left.(*ast.IntLiteral).Value == 1 && op.Right.(*ast.IntLiteral).Value == 2
}

func TestASTMutator_Mutate(t *testing.T) {
	mod, op, fn := sample()
	mutator := NewASTMutator(12345)

	changed := false
	for i := 0; i < 100 && !changed; i++ {
		mutator.Mutate(mod)
		changed = !unchanged(op, fn)
	}
	if !changed {
		t.Error("module was not mutated after multiple attempts")
	}
}

func TestASTMutator_Deterministic(t *testing.T) {
	a, opA, fnA := sample()
	b, opB, fnB := sample()
	NewASTMutator(7).Mutate(a)
	NewASTMutator(7).Mutate(b)
	if opA.Op != opB.Op || len(fnA.Body) != len(fnB.Body) {
		t.Error("same seed mutated differently")
	}
}

func TestASTMutator_EmptyModule(t *testing.T) {
	NewASTMutator(1).Mutate(&ast.Module{Name: "empty"})
}

func TestASTMutator_RandomOperator(t *testing.T) {
	mutator := NewASTMutator(1)
	op := mutator.randomOperator()
	if op == "" {
		t.Error("Returned empty operator")
	}
}
