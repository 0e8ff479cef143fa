package diagnostics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/funvibe/fsgen/internal/token"
)

func TestNewErrorFormatting(t *testing.T) {
	tok := token.Token{File: "shapes.gleam", Line: 3, Column: 7}
	err := NewError(ErrL001, tok, "Shape.radius missing on Square")

	want := "error at shapes.gleam:3:7 [L001]: field access defect: Shape.radius missing on Square"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !err.IsLowering() {
		t.Errorf("L001 should be a lowering defect")
	}
	if err.File != "shapes.gleam" {
		t.Errorf("File = %q", err.File)
	}
}

func TestErrorWithoutPosition(t *testing.T) {
	err := Errorf(ErrC001, token.Token{}, "line_width must be positive, got %d", -1)
	if err.Error() != "error [C001]: configuration error: line_width must be positive, got -1" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err.IsLowering() {
		t.Errorf("C001 is not a lowering defect")
	}
}

func TestDiagnosticUnwrapsThroughWrapping(t *testing.T) {
	base := NewError(ErrL003, token.Token{Line: 1, Column: 1}, "rest")
	wrapped := fmt.Errorf("lowering unit: %w", base)

	var de *DiagnosticError
	if !errors.As(wrapped, &de) {
		t.Fatalf("errors.As failed on %v", wrapped)
	}
	if de.Code != ErrL003 {
		t.Errorf("code = %s, want L003", de.Code)
	}
}
