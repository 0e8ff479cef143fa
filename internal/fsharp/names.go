package fsharp

import (
	"strings"

	"github.com/funvibe/fsgen/internal/ast"
)

// reservedWords are F# keywords and reserved identifiers. A source name that
// collides with one is emitted in double backticks.
var reservedWords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`
		asr land lor lsl lsr lxor mod sig
		break checked component const constraint continue event external include
		mixin parallel process protected pure sealed tailcall trait virtual
		abstract and as assert base begin class default delegate do done downcast
		downto elif else end exception extern false finally fixed for fun function
		global if in inherit inline interface internal lazy let match member module
		mutable namespace new not null of open or override private public rec
		return select static struct then to true try type upcast use val void when
		while with yield`) {
		reservedWords[w] = true
	}
}

// IsReserved reports whether name is an F# keyword or reserved identifier.
func IsReserved(name string) bool {
	return reservedWords[name]
}

// Ident returns name as an F# identifier.
func Ident(name string) string {
	if reservedWords[name] {
		return "``" + name + "``"
	}
	return name
}

// ModuleName turns a slash separated module path into a dotted F# module
// name, escaping reserved segments.
func ModuleName(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = Ident(p)
	}
	return strings.Join(parts, ".")
}

// qualify prefixes name with the F# module of path when path names a module
// other than the one being generated.
func (u *Unit) qualify(path, name string) string {
	if path == "" || path == u.module.Name {
		return Ident(name)
	}
	return ModuleName(path) + "." + Ident(name)
}

func publicity(p ast.Publicity) string {
	switch p {
	case ast.Private:
		return "private "
	case ast.Internal:
		return "internal "
	}
	return ""
}

// typeParams renders generic parameters as <'a, 'b>.
func typeParams(params []string) string {
	if len(params) == 0 {
		return ""
	}
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = "'" + p
	}
	return "<" + strings.Join(out, ", ") + ">"
}
