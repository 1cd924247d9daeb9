package hdl

import (
	"github.com/pkg/errors"
)

// Decl is a signal declaration: a plain name like "a" (1 bit wide) or a bus
// declaration like "bus[4]" (4 bits wide).
//
type Decl struct {
	Name  string
	Width int
	Pos   int
}

// Binding is a child port to parent signal binding: port=signal.
//
type Binding struct {
	Port   string
	Signal string
	Pos    int
}

// Parser is a simplistic parser for comma separated declarations and
// bindings.
//
type Parser struct {
	Input string
	l     *Lexer
	i     Item
	state int
}

const (
	stateInit = iota
	stateStarted
	stateDone
)

// Next returns the next item in the input stream, either a Decl or, if
// allowBindings is true, a Binding. It returns nil, nil at the end of input.
//
func (p *Parser) Next(allowBindings bool) (interface{}, error) {
	if p.state == stateDone {
		return nil, nil
	}
	if p.l == nil {
		p.l = NewLexer(p.Input)
	}

	p.i = p.l.Lex()
	if p.state == stateInit && p.i.Type == EOF {
		p.state = stateDone
		return nil, nil
	}
	p.state = stateStarted

	d, err := p.getDecl()
	if err != nil {
		p.state = stateDone
		return nil, err
	}
	switch p.i.Type {
	case EOF:
		p.state = stateDone
		fallthrough
	case Comma:
		if allowBindings {
			return nil, parseError(p.Input, d.Pos, "expected '=' after port name")
		}
		return d, nil
	case Equal:
		if allowBindings {
			break
		}
		fallthrough
	default:
		p.state = stateDone
		return nil, parseError(p.Input, p.i.Pos, "unexpected "+p.i.String())
	}
	if d.Width != 1 {
		p.state = stateDone
		return nil, parseError(p.Input, d.Pos, "bus slices are not supported in bindings")
	}

	p.i = p.l.Lex()
	s, err := p.getDecl()
	if err != nil {
		p.state = stateDone
		return nil, err
	}
	if s.Width != 1 {
		p.state = stateDone
		return nil, parseError(p.Input, s.Pos, "bus slices are not supported in bindings")
	}
	switch p.i.Type {
	case EOF:
		p.state = stateDone
		fallthrough
	case Comma:
		return Binding{Port: d.Name, Signal: s.Name, Pos: d.Pos}, nil
	}
	p.state = stateDone
	return nil, parseError(p.Input, p.i.Pos, "unexpected "+p.i.String())
}

func (p *Parser) getDecl() (Decl, error) {
	if p.i.Type != Ident {
		return Decl{}, parseError(p.Input, p.i.Pos, "expected signal name")
	}
	d := Decl{Name: p.i.Value.(string), Width: 1, Pos: p.i.Pos}
	// after ident, expect ',', '[', '=' or EOF
	p.i = p.l.Lex()
	if p.i.Type != BracketOpen {
		return d, nil
	}
	p.i = p.l.Lex()
	if p.i.Type != Int {
		return Decl{}, parseError(p.Input, p.i.Pos, "integer value expected after '['")
	}
	d.Width = p.i.Value.(int)
	if d.Width < 1 {
		return Decl{}, parseError(p.Input, p.i.Pos, "bus width must be at least 1")
	}
	p.i = p.l.Lex()
	if p.i.Type != BracketClose {
		return Decl{}, parseError(p.Input, p.i.Pos, "closing ']' expected after bus width")
	}
	p.i = p.l.Lex()
	return d, nil
}

// ParseDecls parses a declaration string like "a, b, bus[4]".
//
func ParseDecls(input string) ([]Decl, error) {
	var out []Decl
	p := &Parser{Input: input}
	for {
		v, err := p.Next(false)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return out, nil
		}
		out = append(out, v.(Decl))
	}
}

// ParseBindings parses a binding string like "a=x, b=y, out=z".
//
func ParseBindings(input string) ([]Binding, error) {
	var out []Binding
	p := &Parser{Input: input}
	for {
		v, err := p.Next(true)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return out, nil
		}
		out = append(out, v.(Binding))
	}
}

func parseError(in string, pos int, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
