package ast

// Walk visits node and its children depth first. If fn returns false the
// children of that node are skipped.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *Module:
		for _, d := range n.Definitions {
			Walk(d, fn)
		}
	case *ModuleConstant:
		Walk(n.Value, fn)
	case *Function:
		walkStatements(n.Body, fn)
	case *ExpressionStatement:
		Walk(n.Value, fn)
	case *Assignment:
		Walk(n.Pattern, fn)
		Walk(n.Value, fn)
	case *Call:
		Walk(n.Fun, fn)
		walkExprs(n.Args, fn)
	case *Fn:
		walkStatements(n.Body, fn)
	case *List:
		walkExprs(n.Elements, fn)
		if n.Tail != nil {
			Walk(n.Tail, fn)
		}
	case *Tuple:
		walkExprs(n.Elements, fn)
	case *TupleIndex:
		Walk(n.Tuple, fn)
	case *BinOp:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *NegateInt:
		Walk(n.Value, fn)
	case *NegateBool:
		Walk(n.Value, fn)
	case *Case:
		walkExprs(n.Subjects, fn)
		for _, c := range n.Clauses {
			walkPatterns(c.Patterns, fn)
			for _, alt := range c.Alternatives {
				walkPatterns(alt, fn)
			}
			if c.Guard != nil {
				Walk(c.Guard, fn)
			}
			Walk(c.Body, fn)
		}
	case *Block:
		walkStatements(n.Statements, fn)
	case *Pipeline:
		Walk(n.First, fn)
		for _, s := range n.Steps {
			Walk(s.Fun, fn)
			walkExprs(s.Args, fn)
		}
	case *RecordAccess:
		Walk(n.Record, fn)
	case *RecordUpdate:
		Walk(n.Record, fn)
		for _, f := range n.Fields {
			Walk(f.Value, fn)
		}
	case *BitArray:
		for _, s := range n.Segments {
			Walk(s.Value, fn)
			for _, o := range s.Options {
				if o.Size != nil {
					Walk(o.Size, fn)
				}
			}
		}
	case *Todo:
		if n.Message != nil {
			Walk(n.Message, fn)
		}
	case *Panic:
		if n.Message != nil {
			Walk(n.Message, fn)
		}
	case *AssignPattern:
		Walk(n.Pattern, fn)
	case *ListPattern:
		walkPatterns(n.Elements, fn)
		if n.Tail != nil {
			Walk(n.Tail, fn)
		}
	case *TuplePattern:
		walkPatterns(n.Elements, fn)
	case *ConstructorPattern:
		for _, a := range n.Args {
			Walk(a.Value, fn)
		}
	case *BitArrayPattern:
		for _, s := range n.Segments {
			Walk(s.Value, fn)
		}
	}
}

func walkExprs(exprs []Expression, fn func(Node) bool) {
	for _, e := range exprs {
		Walk(e, fn)
	}
}

func walkPatterns(pats []Pattern, fn func(Node) bool) {
	for _, p := range pats {
		Walk(p, fn)
	}
}

func walkStatements(stmts []Statement, fn func(Node) bool) {
	for _, s := range stmts {
		Walk(s, fn)
	}
}
