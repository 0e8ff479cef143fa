package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.NativeEndianness != NativeRuntime {
		t.Errorf("NativeEndianness = %q, want %q", opts.NativeEndianness, NativeRuntime)
	}
	if opts.PreludeModule != PreludeModule {
		t.Errorf("PreludeModule = %q", opts.PreludeModule)
	}
	if opts.LineWidth != DefaultLineWidth {
		t.Errorf("LineWidth = %d", opts.LineWidth)
	}
	if err := Validate(opts); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestParseOptions(t *testing.T) {
	data := []byte(`
native_endianness: little
emit_prelude: true
prelude_module: My.Runtime
line_width: 80
`)
	opts, err := ParseOptions(data, "fsgen.yaml")
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if opts.NativeEndianness != NativeLittle || !opts.EmitPrelude || opts.PreludeModule != "My.Runtime" || opts.LineWidth != 80 {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.AssertMessage == "" {
		t.Errorf("assert message default not applied")
	}
}

func TestParseOptionsRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"endianness", "native_endianness: middle\n", "native_endianness"},
		{"module", "prelude_module: lower.case\n", "prelude_module"},
		{"width", "line_width: 10\n", "line_width"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOptions([]byte(tt.data), "fsgen.yaml")
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestParseOptionsRejectsBadYAML(t *testing.T) {
	if _, err := ParseOptions([]byte("line_width: [1, 2"), "broken.yaml"); err == nil {
		t.Fatalf("expected parse error")
	} else if !strings.Contains(err.Error(), "broken.yaml") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestFindOptionsWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, OptionsFileName), []byte("emit_prelude: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := FindOptions(nested)
	if err != nil {
		t.Fatalf("FindOptions: %v", err)
	}
	if found != filepath.Join(root, OptionsFileName) {
		t.Errorf("found %q", found)
	}

	opts, err := LoadOptions(found)
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if !opts.EmitPrelude {
		t.Errorf("emit_prelude not loaded")
	}
}
