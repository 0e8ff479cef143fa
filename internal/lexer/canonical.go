// Package lexer reads string literal spellings as authored in the source
// language and produces one canonical value and one canonical F# spelling
// for each of them.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxCodepointDigits is the longest hex payload accepted in \u{...}.
const MaxCodepointDigits = 6

// Literal is a canonicalized string literal.
type Literal struct {
	// Value is the decoded string.
	Value string
	// Spelling is the F# source spelling of Value, without quotes.
	Spelling string
}

// Quoted returns the spelling wrapped in double quotes.
func (l Literal) Quoted() string {
	return `"` + l.Spelling + `"`
}

// EscapeError reports a malformed escape sequence.
type EscapeError struct {
	Offset int
	Reason string
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Reason)
}

// Canonicalize decodes the escapes of raw, the body of a string literal
// without its quotes, and re-spells the result. Escapes are consumed left to
// right, so `\\u{41}` is an escaped backslash followed by the characters
// `u{41}` and never a code point escape.
func Canonicalize(raw string) (Literal, error) {
	var sb strings.Builder
	sb.Grow(len(raw))

	for i := 0; i < len(raw); {
		r, w := utf8.DecodeRuneInString(raw[i:])
		if r == utf8.RuneError && w == 1 {
			return Literal{}, &EscapeError{Offset: i, Reason: "invalid UTF-8"}
		}
		if r != '\\' {
			sb.WriteRune(r)
			i += w
			continue
		}

		if i+1 >= len(raw) {
			return Literal{}, &EscapeError{Offset: i, Reason: "trailing backslash"}
		}
		switch c := raw[i+1]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'f':
			sb.WriteByte('\f')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		case 'u':
			cp, n, err := readCodepoint(raw, i)
			if err != nil {
				return Literal{}, err
			}
			sb.WriteRune(cp)
			i += n
			continue
		default:
			return Literal{}, &EscapeError{Offset: i, Reason: fmt.Sprintf("unknown escape \\%c", c)}
		}
		i += 2
	}

	value := sb.String()
	return Literal{Value: value, Spelling: Spell(value)}, nil
}

// readCodepoint reads `\u{X..}` starting at the backslash at raw[start] and
// returns the code point and the number of bytes consumed.
func readCodepoint(raw string, start int) (rune, int, error) {
	i := start + 2
	if i >= len(raw) || raw[i] != '{' {
		return 0, 0, &EscapeError{Offset: start, Reason: "expected { after \\u"}
	}
	i++
	var val int64
	digits := 0
	for ; i < len(raw) && raw[i] != '}'; i++ {
		d, ok := hexDigit(raw[i])
		if !ok {
			return 0, 0, &EscapeError{Offset: i, Reason: fmt.Sprintf("invalid hex digit %q", raw[i])}
		}
		digits++
		if digits > MaxCodepointDigits {
			return 0, 0, &EscapeError{Offset: start, Reason: "code point escape longer than 6 digits"}
		}
		val = val*16 + d
	}
	if i >= len(raw) {
		return 0, 0, &EscapeError{Offset: start, Reason: "unterminated code point escape"}
	}
	if digits == 0 {
		return 0, 0, &EscapeError{Offset: start, Reason: "empty code point escape"}
	}
	if val > utf8.MaxRune {
		return 0, 0, &EscapeError{Offset: start, Reason: fmt.Sprintf("code point %X out of range", val)}
	}
	if val >= 0xD800 && val <= 0xDFFF {
		return 0, 0, &EscapeError{Offset: start, Reason: fmt.Sprintf("surrogate code point %X", val)}
	}
	return rune(val), i + 1 - start, nil
}

func hexDigit(b byte) (int64, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int64(b - '0'), true
	case b >= 'a' && b <= 'f':
		return int64(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return int64(b-'A') + 10, true
	}
	return 0, false
}

// Spell returns the canonical F# spelling of a decoded string value. The
// spelling depends on the value only: the shorthand forms are used where
// they exist, printable ASCII is written as is, and every other code point
// becomes \uXXXX or \UXXXXXXXX with upper-case digits.
func Spell(value string) string {
	var sb strings.Builder
	sb.Grow(len(value))
	for _, r := range value {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\f':
			sb.WriteString(`\f`)
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			switch {
			case r >= 0x20 && r < 0x7F:
				sb.WriteRune(r)
			case r <= 0xFFFF:
				fmt.Fprintf(&sb, `\u%04X`, r)
			default:
				fmt.Fprintf(&sb, `\U%08X`, r)
			}
		}
	}
	return sb.String()
}

// Quote spells value and wraps it in double quotes.
func Quote(value string) string {
	return `"` + Spell(value) + `"`
}
