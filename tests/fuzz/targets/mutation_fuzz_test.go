package targets

import (
	"testing"

	"github.com/funvibe/fsgen/internal/diagnostics"
	"github.com/funvibe/fsgen/internal/fsharp"
	"github.com/funvibe/fsgen/tests/fuzz/generators"
	"github.com/funvibe/fsgen/tests/fuzz/mutator"
)

// FuzzMutation lowers randomly damaged modules. The backend may reject them
// but must do so with a lowering diagnostic, never a crash.
func FuzzMutation(f *testing.F) {
	f.Add([]byte("seed"), int64(1))
	f.Add([]byte{7, 7, 7, 7, 7, 7}, int64(99))
	f.Add([]byte{10, 10, 10, 10, 10, 10, 10, 10}, int64(3))

	f.Fuzz(func(t *testing.T, data []byte, seed int64) {
		mod := generators.NewFromData(data).GenerateModule()
		m := mutator.NewASTMutator(seed)
		for i := 0; i < 3; i++ {
			m.Mutate(mod)
		}
		if _, err := fsharp.Generate(mod, nil); err != nil {
			requireDiagnostic(t, err,
				diagnostics.ErrL001, diagnostics.ErrL002, diagnostics.ErrL003,
				diagnostics.ErrL004, diagnostics.ErrL005, diagnostics.ErrL006)
		}
	})
}
