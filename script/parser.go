package script

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports the first problem found while parsing.
type SyntaxError struct {
	Pos Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Pos.Line, e.Msg)
}

// Parser is a recursive descent parser for scripts. Precedence follows
// message kind: unary binds tightest, then binary, then keyword.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	err       *SyntaxError
}

// NewParser creates a parser for input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a complete script.
func Parse(input string) (*Program, error) {
	p := NewParser(input)
	prog := p.ParseProgram()
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

func (p *Parser) curTokenIs(t TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expect(t TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s", t, p.curToken)
	return false
}

// errorf records the first error. Later ones are usually consequences.
func (p *Parser) errorf(format string, args ...any) {
	if p.err == nil {
		p.err = &SyntaxError{Pos: p.curToken.Pos, Msg: fmt.Sprintf(format, args...)}
	}
}

// ParseProgram parses optional temporaries and period separated
// statements up to EOF.
func (p *Parser) ParseProgram() *Program {
	prog := p.parseBody()
	if !p.curTokenIs(TokenEOF) {
		p.errorf("unexpected %s", p.curToken)
	}
	return prog
}

func (p *Parser) parseBody() *Program {
	prog := &Program{}
	if p.curTokenIs(TokenBar) {
		prog.Temps = p.parseTemporaries()
	}
	for !p.curTokenIs(TokenEOF) && !p.curTokenIs(TokenRBracket) && p.err == nil {
		if p.curTokenIs(TokenPeriod) {
			p.nextToken()
			continue
		}
		stmt := p.parseExpression()
		if stmt == nil {
			break
		}
		prog.Statements = append(prog.Statements, stmt)
		if !p.curTokenIs(TokenPeriod) {
			break
		}
		p.nextToken()
	}
	return prog
}

func (p *Parser) parseTemporaries() []string {
	p.nextToken() // |
	var temps []string
	for p.curTokenIs(TokenIdentifier) {
		temps = append(temps, p.curToken.Literal)
		p.nextToken()
	}
	p.expect(TokenBar)
	return temps
}

// parseExpression parses an assignment or a keyword send with optional
// cascade.
func (p *Parser) parseExpression() Node {
	if p.curTokenIs(TokenIdentifier) && p.peekTokenIs(TokenAssign) {
		pos, name := p.curToken.Pos, p.curToken.Literal
		p.nextToken()
		p.nextToken()
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		return &Assignment{At: pos, Name: name, Value: value}
	}

	expr := p.parseKeywordSend()
	if expr != nil && p.curTokenIs(TokenSemicolon) {
		return p.parseCascade(expr)
	}
	return expr
}

func (p *Parser) parseKeywordSend() Node {
	receiver := p.parseBinarySend()
	if receiver == nil || !p.curTokenIs(TokenKeyword) {
		return receiver
	}
	selector, args := p.parseKeywordMessage()
	if args == nil {
		return nil
	}
	return &Send{At: receiver.Pos(), Receiver: receiver, Selector: selector, Arguments: args}
}

// parseKeywordMessage parses keyword: arg pairs. Arguments are parsed at
// binary level so a nested keyword send needs parentheses.
func (p *Parser) parseKeywordMessage() (string, []Node) {
	var selector strings.Builder
	var args []Node
	for p.curTokenIs(TokenKeyword) {
		selector.WriteString(p.curToken.Literal)
		p.nextToken()
		arg := p.parseBinarySend()
		if arg == nil {
			return "", nil
		}
		args = append(args, arg)
	}
	return selector.String(), args
}

func (p *Parser) parseBinarySend() Node {
	left := p.parseUnarySend()
	for left != nil && (p.curTokenIs(TokenBinarySelector) || p.curTokenIs(TokenBar)) {
		selector := p.curToken.Literal
		p.nextToken()
		right := p.parseUnarySend()
		if right == nil {
			return nil
		}
		left = &Send{At: left.Pos(), Receiver: left, Selector: selector, Arguments: []Node{right}}
	}
	return left
}

func (p *Parser) parseUnarySend() Node {
	primary := p.parsePrimary()
	for primary != nil && p.curTokenIs(TokenIdentifier) && !p.peekTokenIs(TokenAssign) {
		primary = &Send{At: primary.Pos(), Receiver: primary, Selector: p.curToken.Literal}
		p.nextToken()
	}
	return primary
}

// parseCascade turns first into the head of a cascade. first must be a
// send; its receiver receives every message.
func (p *Parser) parseCascade(first Node) Node {
	send, ok := first.(*Send)
	if !ok {
		p.errorf("cascade requires a message send")
		return nil
	}
	cascade := &Cascade{
		At:       send.At,
		Receiver: send.Receiver,
		Messages: []Message{{Selector: send.Selector, Arguments: send.Arguments}},
	}

	for p.curTokenIs(TokenSemicolon) {
		p.nextToken()
		msg, ok := p.parseCascadedMessage()
		if !ok {
			return nil
		}
		cascade.Messages = append(cascade.Messages, msg)
	}
	return cascade
}

func (p *Parser) parseCascadedMessage() (Message, bool) {
	switch p.curToken.Type {
	case TokenIdentifier:
		msg := Message{Selector: p.curToken.Literal}
		p.nextToken()
		return msg, true
	case TokenBinarySelector, TokenBar:
		selector := p.curToken.Literal
		p.nextToken()
		arg := p.parseUnarySend()
		if arg == nil {
			return Message{}, false
		}
		return Message{Selector: selector, Arguments: []Node{arg}}, true
	case TokenKeyword:
		selector, args := p.parseKeywordMessage()
		if args == nil {
			return Message{}, false
		}
		return Message{Selector: selector, Arguments: args}, true
	}
	p.errorf("expected message in cascade, got %s", p.curToken)
	return Message{}, false
}

func (p *Parser) parsePrimary() Node {
	pos := p.curToken.Pos
	switch p.curToken.Type {
	case TokenInteger, TokenFloat, TokenString, TokenSymbol, TokenNil, TokenTrue, TokenFalse:
		return p.parseLiteral()
	case TokenHashLParen:
		return &Literal{At: pos, Value: p.parseLiteralArray()}
	case TokenLParen:
		p.nextToken()
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		if !p.expect(TokenRParen) {
			return nil
		}
		return expr
	case TokenLBrace:
		return p.parseDynamicArray()
	case TokenLBracket:
		p.nextToken()
		body := p.parseBody()
		if !p.expect(TokenRBracket) {
			return nil
		}
		return &Block{At: pos, Body: body}
	case TokenIdentifier:
		name := p.curToken.Literal
		p.nextToken()
		return &Variable{At: pos, Name: name}
	case TokenError:
		p.errorf("%s", p.curToken.Literal)
		return nil
	}
	p.errorf("unexpected %s", p.curToken)
	return nil
}

func (p *Parser) parseLiteral() *Literal {
	tok := p.curToken
	lit := &Literal{At: tok.Pos}
	switch tok.Type {
	case TokenInteger:
		lit.Value = p.parseInteger(tok.Literal)
	case TokenFloat:
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorf("invalid float: %s", tok.Literal)
		}
		lit.Value = f
	case TokenString:
		lit.Value = tok.Literal
	case TokenSymbol:
		lit.Value = Symbol(tok.Literal)
	case TokenTrue:
		lit.Value = true
	case TokenFalse:
		lit.Value = false
	}
	p.nextToken()
	return lit
}

// parseInteger handles decimal and radix (16rFF) notation.
func (p *Parser) parseInteger(literal string) int64 {
	var value int64
	var err error
	if idx := strings.Index(literal, "r"); idx > 0 {
		radix, _ := strconv.Atoi(strings.TrimPrefix(literal[:idx], "-"))
		value, err = strconv.ParseInt(literal[idx+1:], radix, 64)
		if strings.HasPrefix(literal, "-") {
			value = -value
		}
	} else {
		value, err = strconv.ParseInt(literal, 10, 64)
	}
	if err != nil {
		p.errorf("invalid integer: %s", literal)
		return 0
	}
	return value
}

// parseLiteralArray parses #( ... ). Bare identifiers inside are symbols
// and nested parentheses are nested arrays.
func (p *Parser) parseLiteralArray() []any {
	p.nextToken() // #( or (
	elements := []any{}
	for !p.curTokenIs(TokenRParen) && !p.curTokenIs(TokenEOF) && p.err == nil {
		switch p.curToken.Type {
		case TokenInteger, TokenFloat, TokenString, TokenSymbol, TokenNil, TokenTrue, TokenFalse:
			elements = append(elements, p.parseLiteral().Value)
		case TokenIdentifier, TokenKeyword:
			elements = append(elements, Symbol(p.curToken.Literal))
			p.nextToken()
		case TokenHashLParen, TokenLParen:
			elements = append(elements, p.parseLiteralArray())
		default:
			p.errorf("unexpected %s in literal array", p.curToken)
			return elements
		}
	}
	p.expect(TokenRParen)
	return elements
}

func (p *Parser) parseDynamicArray() *DynamicArray {
	arr := &DynamicArray{At: p.curToken.Pos}
	p.nextToken() // {
	for !p.curTokenIs(TokenRBrace) && !p.curTokenIs(TokenEOF) && p.err == nil {
		elem := p.parseExpression()
		if elem == nil {
			break
		}
		arr.Elements = append(arr.Elements, elem)
		if !p.curTokenIs(TokenPeriod) {
			break
		}
		p.nextToken()
	}
	p.expect(TokenRBrace)
	return arr
}
