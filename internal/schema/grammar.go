package schema

import (
	"fmt"
	"strings"
	"unicode"
)

// tokKind classifies one lexical token of the definition-file grammar
// (spec.md §6): identifiers, string literals, punctuators, and numeric
// literals (skipped, never consumed by the parser).
type tokKind int

const (
	tokIdent tokKind = iota
	tokString
	tokNumber
	tokPunct
	tokEOF
)

type token struct {
	kind tokKind
	text string
	line int
}

// lexer tokenizes one definition file. Whitespace is insignificant; line
// (`// ...`) and block (`/* ... */`) comments are skipped.
type lexer struct {
	src  []rune
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1}
}

const punctChars = "(){}[]:,.@<>"

func (l *lexer) peekByte() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

// skipTrivia consumes whitespace and comments.
func (l *lexer) skipTrivia() {
	for l.pos < len(l.src) {
		r := l.peekByte()
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case r == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		case r == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			l.advance()
			l.advance()
			for l.pos < len(l.src) {
				if l.peekByte() == '*' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentCont(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

// next returns the next token, or a tokEOF token at end of input.
func (l *lexer) next() (token, error) {
	l.skipTrivia()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}
	startLine := l.line
	r := l.peekByte()

	switch {
	case isIdentStart(r):
		start := l.pos
		for l.pos < len(l.src) && isIdentCont(l.peekByte()) {
			l.advance()
		}
		return token{kind: tokIdent, text: string(l.src[start:l.pos]), line: startLine}, nil

	case unicode.IsDigit(r):
		start := l.pos
		for l.pos < len(l.src) && (unicode.IsDigit(l.peekByte()) || l.peekByte() == '.') {
			l.advance()
		}
		return token{kind: tokNumber, text: string(l.src[start:l.pos]), line: startLine}, nil

	case r == '"':
		l.advance()
		var sb strings.Builder
		for l.pos < len(l.src) {
			c := l.advance()
			if c == '"' {
				return token{kind: tokString, text: sb.String(), line: startLine}, nil
			}
			if c == '\\' && l.pos < len(l.src) {
				esc := l.advance()
				switch esc {
				case 'n':
					sb.WriteByte('\n')
				case 't':
					sb.WriteByte('\t')
				case '"':
					sb.WriteByte('"')
				case '\\':
					sb.WriteByte('\\')
				default:
					sb.WriteRune(esc)
				}
				continue
			}
			sb.WriteRune(c)
		}
		return token{}, fmt.Errorf("unterminated string literal at line %d", startLine)

	case strings.ContainsRune(punctChars, r):
		l.advance()
		return token{kind: tokPunct, text: string(r), line: startLine}, nil

	default:
		l.advance()
		return token{}, fmt.Errorf("unexpected character %q at line %d", r, startLine)
	}
}

// ---- parser ----

// parser is a small recursive-descent parser over the lexer's token stream,
// one token of lookahead.
type parser struct {
	lex  *lexer
	cur  token
	line int
}

func newParser(src string) (*parser, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	p.line = t.line
	return nil
}

func (p *parser) atEOF() bool { return p.cur.kind == tokEOF }

func (p *parser) expectPunct(s string) error {
	if p.cur.kind != tokPunct || p.cur.text != s {
		return fmt.Errorf("line %d: expected %q, got %q", p.line, s, p.cur.text)
	}
	return p.advance()
}

func (p *parser) expectIdent(s string) error {
	if p.cur.kind != tokIdent || p.cur.text != s {
		return fmt.Errorf("line %d: expected keyword %q, got %q", p.line, s, p.cur.text)
	}
	return p.advance()
}

func (p *parser) isPunct(s string) bool { return p.cur.kind == tokPunct && p.cur.text == s }
func (p *parser) isIdent(s string) bool { return p.cur.kind == tokIdent && p.cur.text == s }

// annotation is one `@name` or `@name("value")` marker.
type annotation struct {
	name  string
	value string
}

// parseAnnotations consumes zero or more `@name("value")` annotations.
func (p *parser) parseAnnotations() ([]annotation, error) {
	var out []annotation
	for p.isPunct("@") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokIdent {
			return nil, fmt.Errorf("line %d: expected annotation name", p.line)
		}
		name := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		value := ""
		if p.isPunct("(") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.kind == tokString {
				value = p.cur.text
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
		}
		out = append(out, annotation{name: name, value: value})
	}
	return out, nil
}

// parseGenericSuffix consumes an optional `<T[,N]>` generic suffix and
// discards it: generic parameterization does not affect the schema model
// the checker and view compiler consult.
func (p *parser) parseGenericSuffix() error {
	if !p.isPunct("<") {
		return nil
	}
	if err := p.advance(); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		if p.atEOF() {
			return fmt.Errorf("line %d: unterminated generic parameter list", p.line)
		}
		if p.isPunct("<") {
			depth++
		} else if p.isPunct(">") {
			depth--
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// skipBody discards a brace-delimited method body: tokenized and discarded
// per spec.md §6.
func (p *parser) skipBody() error {
	if err := p.expectPunct("{"); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		if p.atEOF() {
			return fmt.Errorf("line %d: unterminated method body", p.line)
		}
		if p.isPunct("{") {
			depth++
		} else if p.isPunct("}") {
			depth--
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// parseTypeRef parses `Name` or `Name<Generic>` and returns just Name: the
// schema model tracks bare type names; generic arguments are discarded the
// same way top-level generic suffixes are.
func (p *parser) parseTypeRef() (string, error) {
	if p.cur.kind != tokIdent {
		return "", fmt.Errorf("line %d: expected type name, got %q", p.line, p.cur.text)
	}
	name := p.cur.text
	if err := p.advance(); err != nil {
		return "", err
	}
	if err := p.parseGenericSuffix(); err != nil {
		return "", err
	}
	return name, nil
}

// parseParams parses a comma-separated `Type Name` parameter list between
// already-consumed parentheses.
func (p *parser) parseParams() ([]Param, error) {
	var out []Param
	if p.isPunct(")") {
		return out, nil
	}
	for {
		typ, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokIdent {
			return nil, fmt.Errorf("line %d: expected parameter name, got %q", p.line, p.cur.text)
		}
		name := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		out = append(out, Param{Type: typ, Name: name})
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return out, nil
}

// parseMember parses one `shared? def Name(Params) : Return { body }?`
// member declaration, preceded by its own annotation list.
func (p *parser) parseMember() (Method, error) {
	anns, err := p.parseAnnotations()
	if err != nil {
		return Method{}, err
	}
	shared := false
	if p.isIdent("shared") {
		shared = true
		if err := p.advance(); err != nil {
			return Method{}, err
		}
	}
	if err := p.expectIdent("def"); err != nil {
		return Method{}, err
	}
	if p.cur.kind != tokIdent {
		return Method{}, fmt.Errorf("line %d: expected method name", p.line)
	}
	name := p.cur.text
	if err := p.advance(); err != nil {
		return Method{}, err
	}
	if err := p.expectPunct("("); err != nil {
		return Method{}, err
	}
	params, err := p.parseParams()
	if err != nil {
		return Method{}, err
	}
	if err := p.expectPunct(")"); err != nil {
		return Method{}, err
	}
	ret := ""
	if p.isPunct(":") {
		if err := p.advance(); err != nil {
			return Method{}, err
		}
		ret, err = p.parseTypeRef()
		if err != nil {
			return Method{}, err
		}
	}
	if p.isPunct("{") {
		if err := p.skipBody(); err != nil {
			return Method{}, err
		}
	}

	m := Method{Name: name, Return: ret, Shared: shared, Params: params}
	for _, a := range anns {
		switch a.name {
		case "map":
			m.Mapping = MappingMap
			m.MappingValue = a.value
		case "inline":
			m.Mapping = MappingInline
			m.MappingValue = a.value
		case "intrinsic":
			m.Mapping = MappingIntrinsic
			m.MappingValue = a.value
		}
	}
	return m, nil
}

// parseTypeDecl parses one top-level type declaration, already past its
// annotation list.
func (p *parser) parseTypeDecl(anns []annotation) (Type, error) {
	if err := p.expectIdent("type"); err != nil {
		return Type{}, err
	}
	if p.cur.kind != tokIdent {
		return Type{}, fmt.Errorf("line %d: expected type name", p.line)
	}
	name := p.cur.text
	if err := p.advance(); err != nil {
		return Type{}, err
	}
	if err := p.parseGenericSuffix(); err != nil {
		return Type{}, err
	}
	extends := ""
	if p.isIdent("extends") {
		if err := p.advance(); err != nil {
			return Type{}, err
		}
		parent, err := p.parseTypeRef()
		if err != nil {
			return Type{}, err
		}
		extends = parent
	}
	t := Type{Name: name, Extends: extends}
	for _, a := range anns {
		switch a.name {
		case "builtin":
			t.Builtin = true
		case "nocopy":
			t.NoCopy = true
		case "alias":
			t.AliasOf = a.value
		}
	}

	if err := p.expectPunct("{"); err != nil {
		return Type{}, err
	}
	for !p.isPunct("}") {
		if p.atEOF() {
			return Type{}, fmt.Errorf("line %d: unterminated type body for %q", p.line, name)
		}
		m, err := p.parseMember()
		if err != nil {
			return Type{}, err
		}
		t.Methods = append(t.Methods, m)
	}
	if err := p.advance(); err != nil { // consume "}"
		return Type{}, err
	}
	return t, nil
}

// ParseFile parses one definition file's source text into a sequence of
// type declarations, per the bit-exact grammar in spec.md §6. A parse error
// is returned with the offending line number; the caller (Store.Load)
// reports it per-line and continues with the next file.
func ParseFile(src string) ([]Type, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	var out []Type
	for !p.atEOF() {
		anns, err := p.parseAnnotations()
		if err != nil {
			return out, err
		}
		if p.atEOF() {
			if len(anns) > 0 {
				return out, fmt.Errorf("line %d: dangling annotations at end of file", p.line)
			}
			break
		}
		t, err := p.parseTypeDecl(anns)
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, nil
}
