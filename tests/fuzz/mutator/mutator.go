package mutator

import (
	"math/rand"

	"github.com/funvibe/fsgen/internal/ast"
)

// ASTMutator applies random mutations to a typed IR module. Mutated modules
// may no longer be well formed; the backend must then report a diagnostic
// instead of crashing.
type ASTMutator struct {
	rnd *rand.Rand
}

// NewASTMutator creates a new ASTMutator with the given seed.
func NewASTMutator(seed int64) *ASTMutator {
	return &ASTMutator{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// Mutate applies one random mutation to the module in place.
func (m *ASTMutator) Mutate(mod *ast.Module) {
	var nodes []ast.Node
	ast.Walk(mod, func(n ast.Node) bool {
		nodes = append(nodes, n)
		return true
	})
	if len(nodes) == 0 {
		return
	}
	// Retry a few picks so that a mutation lands most of the time.
	for i := 0; i < 8; i++ {
		if m.mutateNode(nodes[m.rnd.Intn(len(nodes))]) {
			return
		}
	}
}

func (m *ASTMutator) mutateNode(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.IntLiteral:
		n.Value += m.rnd.Int63n(21) - 10 // -10 to +10
	case *ast.StringLiteral:
		n.Value = m.mutateString(n.Value)
	case *ast.StringPrefixPattern:
		n.Prefix = m.mutateString(n.Prefix)
	case *ast.BinOp:
		n.Op = m.randomOperator()
	case *ast.Tuple:
		if len(n.Elements) > 0 {
			n.Elements = n.Elements[:m.rnd.Intn(len(n.Elements))]
		}
	case *ast.TupleIndex:
		n.Index += m.rnd.Intn(5) - 2
	case *ast.Function:
		return m.mutateStatements(&n.Body)
	case *ast.Block:
		return m.mutateStatements(&n.Statements)
	case *ast.Case:
		if len(n.Clauses) == 0 {
			return false
		}
		cl := n.Clauses[m.rnd.Intn(len(n.Clauses))]
		if m.rnd.Float32() < 0.5 {
			cl.Patterns = append(cl.Patterns, &ast.DiscardPattern{})
		} else {
			n.Clauses = append(n.Clauses[:0:0], n.Clauses...)
			n.Clauses = n.Clauses[:len(n.Clauses)-1]
		}
	case *ast.BitArray:
		if len(n.Segments) == 0 {
			return false
		}
		m.mutateOptions(&n.Segments[m.rnd.Intn(len(n.Segments))].Options)
	case *ast.BitArrayPattern:
		if len(n.Segments) == 0 {
			return false
		}
		if m.rnd.Float32() < 0.3 && len(n.Segments) > 1 {
			// Moving the last segment to the front may misplace a tail.
			last := n.Segments[len(n.Segments)-1]
			n.Segments = append([]*ast.PatternSegment{last}, n.Segments[:len(n.Segments)-1]...)
			return true
		}
		m.mutateOptions(&n.Segments[m.rnd.Intn(len(n.Segments))].Options)
	case *ast.RecordAccess:
		n.Label = []string{"name", "radius", "side", "missing"}[m.rnd.Intn(4)]
	default:
		return false
	}
	return true
}

func (m *ASTMutator) mutateStatements(stmts *[]ast.Statement) bool {
	if len(*stmts) < 2 {
		return false
	}
	// Delete a random statement
	idx := m.rnd.Intn(len(*stmts))
	*stmts = append((*stmts)[:idx:idx], (*stmts)[idx+1:]...)
	return true
}

func (m *ASTMutator) mutateString(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return string(rune(m.rnd.Intn(128)))
	}
	idx := m.rnd.Intn(len(runes))
	if m.rnd.Float32() < 0.3 {
		runes[idx] = '\\' // may start an invalid escape
	} else {
		runes[idx] = rune(m.rnd.Intn(128)) // Random ASCII char
	}
	return string(runes)
}

func (m *ASTMutator) mutateOptions(opts *[]*ast.SegmentOption) {
	switch m.rnd.Intn(4) {
	case 0:
		*opts = append(*opts, &ast.SegmentOption{Kind: ast.OptSize, Size: &ast.IntLiteral{Value: int64(m.rnd.Intn(80))}})
	case 1:
		names := []string{"bytes", "bits", "float", "utf8", "utf16", "utf32_codepoint", "bogus"}
		*opts = append(*opts, &ast.SegmentOption{Kind: ast.OptType, Name: names[m.rnd.Intn(len(names))]})
	case 2:
		*opts = append(*opts, &ast.SegmentOption{Kind: ast.OptEndian, Name: "native"})
	default:
		*opts = append(*opts, &ast.SegmentOption{Kind: ast.OptUnit, Unit: m.rnd.Intn(300)})
	}
}

func (m *ASTMutator) randomOperator() ast.BinOperator {
	ops := []ast.BinOperator{
		ast.OpAddInt, ast.OpSubInt, ast.OpMultInt, ast.OpDivInt, ast.OpRemainder,
		ast.OpAddFloat, ast.OpDivFloat, ast.OpEq, ast.OpLtInt, ast.OpAnd, ast.OpConcatenate, "**",
	}
	return ops[m.rnd.Intn(len(ops))]
}
