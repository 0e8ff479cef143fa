package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OptionsFileName is the backend configuration file looked up by the CLI.
const OptionsFileName = "fsgen.yaml"

// Options are the code generation settings of one backend run. They are
// read-only once loaded and may be shared by concurrently lowered units.
type Options struct {
	// NativeEndianness selects how `native` bit segments are resolved:
	// "runtime" defers to the prelude (System.BitConverter.IsLittleEndian),
	// "host" fixes the generating machine's order, "big"/"little" force one.
	NativeEndianness string `yaml:"native_endianness,omitempty" json:"native_endianness"`

	// EmitPrelude writes the F# prelude file next to the generated modules.
	EmitPrelude bool `yaml:"emit_prelude,omitempty" json:"emit_prelude"`

	// PreludeModule is the module opened by every generated file.
	PreludeModule string `yaml:"prelude_module,omitempty" json:"prelude_module"`

	// LineWidth is the soft width used when deciding to break list literals.
	LineWidth int `yaml:"line_width,omitempty" json:"line_width"`

	// AssertMessage prefixes the failure text of `let assert` traps.
	AssertMessage string `yaml:"assert_message,omitempty" json:"assert_message"`
}

// DefaultOptions returns the settings used when no fsgen.yaml exists.
func DefaultOptions() *Options {
	o := &Options{}
	o.setDefaults()
	return o
}

// LoadOptions reads and validates an fsgen.yaml file.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseOptions(data, path)
}

// ParseOptions parses fsgen.yaml content from bytes.
// The path argument is used only for error messages.
func ParseOptions(data []byte, path string) (*Options, error) {
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	opts.setDefaults()
	if err := Validate(&opts); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &opts, nil
}

// FindOptions searches for fsgen.yaml starting from dir and walking up to
// parent directories. It returns "" when no file exists.
func FindOptions(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, OptionsFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (o *Options) setDefaults() {
	if o.NativeEndianness == "" {
		o.NativeEndianness = NativeRuntime
	}
	if o.PreludeModule == "" {
		o.PreludeModule = PreludeModule
	}
	if o.LineWidth == 0 {
		o.LineWidth = DefaultLineWidth
	}
	if o.AssertMessage == "" {
		o.AssertMessage = "let assert failed"
	}
}
