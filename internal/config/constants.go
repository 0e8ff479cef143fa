package config

// SourceFileExtensions are the recognized typed-IR unit file extensions.
var SourceFileExtensions = []string{".yaml", ".yml", ".json"}

// TargetFileExt is the extension of emitted F# files.
const TargetFileExt = ".fs"

// Layout of emitted text
const (
	IndentWidth      = 4
	DefaultLineWidth = 120
)

// Prelude type names as they appear in the typed IR.
const (
	IntTypeName       = "Int"
	FloatTypeName     = "Float"
	StringTypeName    = "String"
	BoolTypeName      = "Bool"
	NilTypeName       = "Nil"
	ListTypeName      = "List"
	ResultTypeName    = "Result"
	BitArrayTypeName  = "BitArray"
	CodepointTypeName = "UtfCodepoint"
)

// Prelude constructor names.
const (
	TrueCtorName  = "True"
	FalseCtorName = "False"
	NilCtorName   = "Nil"
)

// Names of helpers emitted into (or provided by) the F# prelude. They carry
// a double-underscore prefix the source language cannot produce.
const (
	// Active pattern: prefix literal, binds the remainder.
	StringPatternPrefix = "Gleam__codegen__prefix"
	// Active pattern: prefix literal, binds (prefix, remainder).
	StringPatternParts = "Gleam_codegen_string_parts"
	// Prefix of per-unit bit matcher active patterns.
	BitMatcherPrefix = "Gleam__bits__m"
	// Prefix of generated temporaries.
	TempPrefix = "gleam__"
	// Module holding the bit array runtime.
	BitArrayModule = "BitArray"
	// Default module name of the prelude file.
	PreludeModule = "Gleam.Prelude"
)

// Native endianness policies.
const (
	NativeRuntime = "runtime"
	NativeHost    = "host"
	NativeBig     = "big"
	NativeLittle  = "little"
)
