package targets

import (
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/funvibe/fsgen/internal/diagnostics"
)

func init() {
	// Cap fuzz worker parallelism unless the caller explicitly set GOMAXPROCS.
	if _, ok := os.LookupEnv("GOMAXPROCS"); !ok {
		max := runtime.NumCPU()
		if max > 4 {
			max = 4
		}
		if runtime.GOMAXPROCS(0) > max {
			runtime.GOMAXPROCS(max)
		}
	}
}

// requireDiagnostic fails unless err is a positioned diagnostic of one of
// the given codes.
func requireDiagnostic(t *testing.T, err error, codes ...diagnostics.ErrorCode) {
	t.Helper()
	var de *diagnostics.DiagnosticError
	if !errors.As(err, &de) {
		t.Fatalf("error %v (%T) is not a DiagnosticError", err, err)
	}
	for _, c := range codes {
		if de.Code == c {
			return
		}
	}
	t.Fatalf("unexpected diagnostic code in %v", de)
}
