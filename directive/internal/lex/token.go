package lex

import (
	"fmt"
	"go/scanner"
	gotoken "go/token"
	"strings"
)

type Type int

const (
	Comma Type = iota
	Colon
	Open
	Close
	Semicolon
	Text
)

func (t Type) String() string {
	switch t {
	case Comma:
		return "','"
	case Colon:
		return "':'"
	case Open:
		return "opening bracket"
	case Close:
		return "closing bracket"
	case Semicolon:
		return "';'"
	case Text:
		return "text"
	}
	return "unknown"
}

// Token is a lexical element of a directive argument string. Offset is the
// byte offset of the token in the input.
type Token struct {
	Value  string
	Type   Type
	Offset int
}

// Tokenize splits a directive argument string using the Go scanner, so string
// literals, runes and comments inside arguments never produce separators.
func Tokenize(input string) ([]Token, error) {
	fset := gotoken.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(input))

	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, []byte(input), func(pos gotoken.Position, msg string) {
		errs.Add(pos, msg)
	}, 0)

	var tokens []Token
	for {
		pos, tok, lit := s.Scan()
		if tok == gotoken.EOF {
			break
		}
		off := file.Offset(pos)
		switch tok {
		case gotoken.COMMA:
			tokens = append(tokens, Token{",", Comma, off})
		case gotoken.COLON:
			tokens = append(tokens, Token{":", Colon, off})
		case gotoken.LPAREN, gotoken.LBRACK, gotoken.LBRACE:
			tokens = append(tokens, Token{tok.String(), Open, off})
		case gotoken.RPAREN, gotoken.RBRACK, gotoken.RBRACE:
			tokens = append(tokens, Token{tok.String(), Close, off})
		case gotoken.SEMICOLON:
			// The scanner inserts "\n" semicolons at end of input.
			if lit == ";" {
				tokens = append(tokens, Token{";", Semicolon, off})
			}
		default:
			if lit == "" {
				lit = tok.String()
			}
			tokens = append(tokens, Token{lit, Text, off})
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("column %d: %s", errs[0].Pos.Column, errs[0].Msg)
	}
	return tokens, nil
}

// Segment is a slice of the input between top-level separators.
type Segment struct {
	Text   string
	Offset int
}

// Split breaks input at commas that are not nested inside brackets. If
// subject is true the input must start with a segment terminated by a
// top-level colon, returned separately.
func Split(input string, subject bool) (*Segment, []Segment, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, nil, err
	}

	var (
		head  *Segment
		segs  []Segment
		depth int
		start = 0
	)

	cut := func(end int) Segment {
		raw := input[start:end]
		trimmed := strings.TrimLeft(raw, " \t")
		return Segment{
			Text:   strings.TrimSpace(raw),
			Offset: start + len(raw) - len(trimmed),
		}
	}

	for _, t := range tokens {
		switch t.Type {
		case Open:
			depth++
		case Close:
			depth--
			if depth < 0 {
				return nil, nil, fmt.Errorf("column %d: unbalanced %q", t.Offset+1, t.Value)
			}
		case Semicolon:
			return nil, nil, fmt.Errorf("column %d: arguments are separated by ',' not ';'", t.Offset+1)
		case Colon:
			if depth == 0 && subject && head == nil {
				seg := cut(t.Offset)
				head = &seg
				start = t.Offset + 1
			}
		case Comma:
			if depth == 0 {
				if subject && head == nil {
					return nil, nil, fmt.Errorf("column %d: expected ':' after subject before ','", t.Offset+1)
				}
				segs = append(segs, cut(t.Offset))
				start = t.Offset + 1
			}
		}
	}
	if depth != 0 {
		return nil, nil, fmt.Errorf("unbalanced brackets")
	}
	if subject && head == nil {
		return nil, nil, fmt.Errorf("expected ':' after subject")
	}

	last := cut(len(input))
	// A trailing comma is accepted, like in Go composite literals.
	if last.Text != "" || len(segs) == 0 {
		segs = append(segs, last)
	}
	return head, segs, nil
}
