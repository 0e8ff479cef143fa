package irfile

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/funvibe/fsgen/internal/typesystem"
)

// ParseType reads the textual type notation used in IR files. It accepts
// the same text typesystem.Type's String methods produce:
//
//	Int  List(a)  app/shapes.Shape  #(Int, String)  fn(Int) -> Bool
//
// Lower-case names without a module qualifier are type variables.
func ParseType(src string) (typesystem.Type, error) {
	p := &typeParser{src: src}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q after type in %q", p.src[p.pos:], src)
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) accept(s string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *typeParser) expect(s string) error {
	if !p.accept(s) {
		return fmt.Errorf("expected %q at offset %d in %q", s, p.pos, p.src)
	}
	return nil
}

func (p *typeParser) parse() (typesystem.Type, error) {
	switch {
	case p.accept("#("):
		elems, err := p.list()
		if err != nil {
			return nil, err
		}
		return typesystem.TTuple{Elements: elems}, nil
	case p.accept("fn("):
		params, err := p.list()
		if err != nil {
			return nil, err
		}
		if err := p.expect("->"); err != nil {
			return nil, err
		}
		ret, err := p.parse()
		if err != nil {
			return nil, err
		}
		return typesystem.TFunc{Params: params, ReturnType: ret}, nil
	}

	name := p.name()
	if name == "" {
		return nil, fmt.Errorf("expected a type at offset %d in %q", p.pos, p.src)
	}
	module := ""
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		module, name = name[:i], name[i+1:]
	}
	if name == "" || module == "" && strings.ContainsRune(name, '/') {
		return nil, fmt.Errorf("malformed type name %q", p.src)
	}
	if module == "" && unicode.IsLower(rune(name[0])) {
		return typesystem.TVar{Name: name}, nil
	}
	con := typesystem.TCon{Module: module, Name: name}
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		p.pos++
		args, err := p.list()
		if err != nil {
			return nil, err
		}
		con.Args = args
	}
	return con, nil
}

// list reads comma separated types up to the closing parenthesis.
func (p *typeParser) list() ([]typesystem.Type, error) {
	var out []typesystem.Type
	if p.accept(")") {
		return out, nil
	}
	for {
		t, err := p.parse()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if p.accept(")") {
			return out, nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

func (p *typeParser) name() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if c == '_' || c == '/' || c == '.' || unicode.IsLetter(c) || unicode.IsDigit(c) {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}
