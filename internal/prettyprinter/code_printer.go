package prettyprinter

import (
	"bytes"
	"strings"

	"github.com/funvibe/fsgen/internal/config"
)

// --- Code Printer (line oriented F# writer) ---

// Operator precedence of the F# operators the backend emits
// (higher = binds tighter).
var operatorPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"=":  3,
	"<>": 3,
	"<":  3,
	">":  3,
	"<=": 3,
	">=": 3,
	"::": 4,
	"+":  5,
	"-":  5,
	"*":  6,
	"/":  6,
	"%":  6,
}

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return 10 // Default high precedence for unknown ops
}

// Right-associative operators
var rightAssoc = map[string]bool{
	"::": true,
}

// NeedsParens reports whether an operand built with child must be
// parenthesised under parent. isRight tells which side of parent it is on.
func NeedsParens(parent, child string, isRight bool) bool {
	pp, cp := getPrecedence(parent), getPrecedence(child)
	if cp != pp {
		return cp < pp
	}
	if isRight {
		return !rightAssoc[child]
	}
	return rightAssoc[child]
}

// CodePrinter accumulates lines at the current indentation level.
type CodePrinter struct {
	buf       bytes.Buffer
	indent    int
	lineWidth int // soft max line width (0 = unlimited)
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{lineWidth: config.DefaultLineWidth}
}

func NewCodePrinterWithWidth(width int) *CodePrinter {
	return &CodePrinter{lineWidth: width}
}

// Fits reports whether text can go on one line at the current indentation
// without passing the soft width.
func (p *CodePrinter) Fits(text string) bool {
	if p.lineWidth <= 0 {
		return true
	}
	return !Multiline(text) && p.indent*config.IndentWidth+len(text) <= p.lineWidth
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString(strings.Repeat(" ", config.IndentWidth))
	}
}

// Line writes text at the current indentation. Multi-line text keeps its
// own relative indentation; blank lines are written without trailing
// spaces.
func (p *CodePrinter) Line(text string) {
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			p.writeIndent()
			p.buf.WriteString(l)
		}
		p.buf.WriteByte('\n')
	}
}

// Blank writes an empty line.
func (p *CodePrinter) Blank() {
	p.buf.WriteByte('\n')
}

func (p *CodePrinter) Indent() { p.indent++ }

func (p *CodePrinter) Dedent() {
	if p.indent > 0 {
		p.indent--
	}
}

// Block writes header, then body one level deeper.
func (p *CodePrinter) Block(header string, body func()) {
	p.Line(header)
	p.indent++
	body()
	p.indent--
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

// Indent shifts every non-blank line of a fragment one level right.
func Indent(fragment string) string {
	pad := strings.Repeat(" ", config.IndentWidth)
	lines := strings.Split(fragment, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}

// Multiline reports whether a fragment spans more than one line.
func Multiline(fragment string) bool {
	return strings.Contains(fragment, "\n")
}

// Paren wraps a fragment in parentheses. A multi-line fragment is moved
// onto its own indented lines so the closing parenthesis lines up with the
// line that opened it.
func Paren(fragment string) string {
	if !Multiline(fragment) {
		return "(" + fragment + ")"
	}
	return "(\n" + Indent(fragment) + "\n)"
}
