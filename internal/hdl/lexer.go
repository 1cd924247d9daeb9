// Package hdl implements the lexer and parser for signal declaration and port
// binding strings.
//
package hdl

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Type is the type of a lexical item.
//
type Type int

// Tokens
const (
	EOF Type = iota
	Raw
	Ident
	BracketOpen
	BracketClose
	Comma
	Int
	Equal
)

var typeNames = [...]string{
	EOF:          "end of input",
	Raw:          "character",
	Ident:        "identifier",
	BracketOpen:  "'['",
	BracketClose: "']'",
	Comma:        "','",
	Int:          "integer",
	Equal:        "'='",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

// Item is a lexical item. Pos is the byte offset of the item in the input.
//
type Item struct {
	Type  Type
	Pos   int
	Value interface{}
}

func (i Item) String() string {
	switch i.Type {
	case Ident:
		return "identifier " + strconv.Quote(i.Value.(string))
	case Int:
		return "integer " + strconv.Itoa(i.Value.(int))
	case Raw:
		return "character " + strconv.QuoteRune(i.Value.(rune))
	}
	return i.Type.String()
}

const eof = -1

type stateFn func(l *Lexer) stateFn

// Lexer splits declaration and binding strings into items.
//
type Lexer struct {
	input string
	start int
	pos   int
	width int
	state stateFn
	item  *Item
}

// NewLexer returns a new lexer for the given input.
//
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, state: lexInit}
}

// Lex returns the next item in the input. Once the end of input has been
// reached, Lex keeps returning EOF items.
//
func (l *Lexer) Lex() Item {
	l.item = nil
	for l.item == nil {
		st := l.state(l)
		if st == nil {
			st = lexInit
		}
		l.state = st
	}
	return *l.item
}

func (l *Lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	return r
}

func (l *Lexer) backup() {
	l.pos -= l.width
}

func (l *Lexer) current() rune {
	r, _ := utf8.DecodeRuneInString(l.input[l.start:])
	return r
}

func (l *Lexer) emit(t Type, v interface{}) {
	l.item = &Item{Type: t, Pos: l.start, Value: v}
	l.start = l.pos
}

func (l *Lexer) ignore() {
	l.start = l.pos
}

func lexInit(l *Lexer) stateFn {
	r := l.next()
	switch {
	case r == eof:
		return lexEOF
	case unicode.IsSpace(r):
		for r = l.next(); r != eof && unicode.IsSpace(r); r = l.next() {
		}
		if r != eof {
			l.backup()
		}
		l.ignore()
	case isIdentStart(r):
		return lexIdent
	case '0' <= r && r <= '9':
		return lexNumber
	case r == '[':
		l.emit(BracketOpen, "[")
	case r == ']':
		l.emit(BracketClose, "]")
	case r == ',':
		l.emit(Comma, ",")
	case r == '=':
		l.emit(Equal, "=")
	default:
		l.emit(Raw, r)
		return lexEOF
	}
	return nil
}

func lexNumber(l *Lexer) stateFn {
	i := int(l.current() - '0')
	r := l.next()
	for '0' <= r && r <= '9' {
		i = i*10 + int(r-'0')
		r = l.next()
	}
	if r != eof {
		l.backup()
	}
	l.emit(Int, i)
	return nil
}

// identifiers are ASCII only.
func isIdentStart(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_'
}

func lexIdent(l *Lexer) stateFn {
	r := l.next()
	for isIdentStart(r) || '0' <= r && r <= '9' || r == '$' {
		r = l.next()
	}
	if r != eof {
		l.backup()
	}
	l.emit(Ident, l.input[l.start:l.pos])
	return nil
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
//
func lexEOF(l *Lexer) stateFn {
	l.start = l.pos
	l.emit(EOF, "end of input")
	return lexEOF
}
