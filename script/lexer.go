package script

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes script source.
type Lexer struct {
	input   string
	pos     int  // offset of ch
	readPos int  // offset after ch
	ch      rune // current character, 0 at EOF
	line    int
	col     int
}

// NewLexer creates a lexer for input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) token(t TokenType, literal string, pos Position) Token {
	return Token{Type: t, Literal: literal, Pos: pos}
}

var delimiters = map[rune]TokenType{
	'(': TokenLParen, ')': TokenRParen,
	'[': TokenLBracket, ']': TokenRBracket,
	'{': TokenLBrace, '}': TokenRBrace,
	'.': TokenPeriod, ';': TokenSemicolon, '|': TokenBar,
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()
	pos := l.position()

	switch {
	case l.ch == 0:
		return l.token(TokenEOF, "", pos)
	case delimiters[l.ch] != 0:
		ch := l.ch
		l.readChar()
		return l.token(delimiters[ch], string(ch), pos)
	case l.ch == ':':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return l.token(TokenAssign, ":=", pos)
		}
		return l.token(TokenError, "unexpected character: :", pos)
	case l.ch == '#':
		return l.readHashToken(pos)
	case l.ch == '\'':
		s, ok := l.readQuoted()
		if !ok {
			return l.token(TokenError, "unterminated string", pos)
		}
		return l.token(TokenString, s, pos)
	case isDigit(l.ch), l.ch == '-' && isDigit(l.peekChar()):
		return l.readNumber(pos)
	case isLetter(l.ch) || l.ch == '_':
		return l.readIdentifierOrKeyword(pos)
	case IsBinaryChar(l.ch):
		start := l.pos
		for IsBinaryChar(l.ch) {
			l.readChar()
		}
		return l.token(TokenBinarySelector, l.input[start:l.pos], pos)
	}

	ch := l.ch
	l.readChar()
	return l.token(TokenError, fmt.Sprintf("unexpected character: %c", ch), pos)
}

// skipWhitespaceAndComments skips whitespace, "double quoted" comments and
// # line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for unicode.IsSpace(l.ch) {
			l.readChar()
		}

		if l.ch == '"' {
			l.readChar()
			for l.ch != '"' && l.ch != 0 {
				l.readChar()
			}
			if l.ch == '"' {
				l.readChar()
			}
			continue
		}

		if l.ch == '#' {
			if peek := l.peekChar(); peek == 0 || unicode.IsSpace(peek) {
				for l.ch != '\n' && l.ch != 0 {
					l.readChar()
				}
				continue
			}
		}
		return
	}
}

func (l *Lexer) readHashToken(pos Position) Token {
	l.readChar() // #

	switch {
	case l.ch == '(':
		l.readChar()
		return l.token(TokenHashLParen, "#(", pos)
	case l.ch == '\'':
		s, ok := l.readQuoted()
		if !ok {
			return l.token(TokenError, "unterminated symbol", pos)
		}
		return l.token(TokenSymbol, s, pos)
	case isLetter(l.ch) || l.ch == '_':
		var sb strings.Builder
		for {
			for isIdentChar(l.ch) {
				sb.WriteRune(l.ch)
				l.readChar()
			}
			if l.ch != ':' {
				break
			}
			sb.WriteRune(':')
			l.readChar()
			if !isLetter(l.ch) && l.ch != '_' {
				break
			}
		}
		return l.token(TokenSymbol, sb.String(), pos)
	case IsBinaryChar(l.ch):
		start := l.pos
		for IsBinaryChar(l.ch) {
			l.readChar()
		}
		return l.token(TokenSymbol, l.input[start:l.pos], pos)
	}
	return l.token(TokenError, "unexpected character after #", pos)
}

// readQuoted reads a single quoted literal in which '' stands for a quote.
func (l *Lexer) readQuoted() (string, bool) {
	l.readChar() // opening '

	var sb strings.Builder
	for l.ch != 0 {
		if l.ch == '\'' {
			if l.peekChar() != '\'' {
				l.readChar()
				return sb.String(), true
			}
			l.readChar()
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	return sb.String(), false
}

func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	isFloat := false

	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == 'r' {
		l.readChar()
		for isHexDigit(l.ch) {
			l.readChar()
		}
		return l.token(TokenInteger, l.input[start:l.pos], pos)
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if isFloat {
		return l.token(TokenFloat, l.input[start:l.pos], pos)
	}
	return l.token(TokenInteger, l.input[start:l.pos], pos)
}

// readIdentifierOrKeyword reads an identifier, a keyword or a dotted class
// name such as shop.Order. A period only joins segments when a letter
// follows it directly; otherwise it ends the statement.
func (l *Lexer) readIdentifierOrKeyword(pos Position) Token {
	start := l.pos
	for isIdentChar(l.ch) {
		l.readChar()
	}
	for l.ch == '.' && isLetter(l.peekChar()) {
		l.readChar()
		for isIdentChar(l.ch) {
			l.readChar()
		}
	}
	literal := l.input[start:l.pos]

	if l.ch == ':' && l.peekChar() != '=' && !strings.Contains(literal, ".") {
		l.readChar()
		return l.token(TokenKeyword, literal+":", pos)
	}
	if t, ok := reservedWords[literal]; ok {
		return l.token(t, literal, pos)
	}
	return l.token(TokenIdentifier, literal, pos)
}

func isLetter(r rune) bool    { return unicode.IsLetter(r) }
func isDigit(r rune) bool     { return r >= '0' && r <= '9' }
func isIdentChar(r rune) bool { return isLetter(r) || isDigit(r) || r == '_' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// Tokenize returns all tokens of input, ending with EOF or the first error.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return tokens
		}
	}
}
