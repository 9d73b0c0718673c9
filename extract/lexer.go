package extract

import "fmt"

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	// TokenEOF marks the end of input.
	TokenEOF TokenKind = iota
	// TokenString is a double-quoted string literal.
	TokenString
	// TokenColon is ':'.
	TokenColon
	// TokenLBrace is '{'.
	TokenLBrace
	// TokenRBrace is '}'.
	TokenRBrace
	// TokenComma is ','.
	TokenComma
	// TokenOther is a run of any other non-space characters (identifiers, '=', ';', ...).
	TokenOther
	// TokenUnterminated is a string literal with no closing quote before end of input.
	TokenUnterminated
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenString:
		return "String"
	case TokenColon:
		return "Colon"
	case TokenLBrace:
		return "LBrace"
	case TokenRBrace:
		return "RBrace"
	case TokenComma:
		return "Comma"
	case TokenOther:
		return "Other"
	case TokenUnterminated:
		return "Unterminated"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a lexical unit of the catalog source.
type Token struct {
	Kind TokenKind
	// Value holds the raw text between the quotes for strings, escapes
	// left untouched, and the literal text for every other kind.
	Value string
	// Escaped is true when a string literal contains a backslash.
	Escaped bool
	// Pos is the byte offset of the token in the source.
	Pos int
}

// Lexer splits semi-structured catalog text into tokens.
// Whitespace, including newlines, separates tokens and is otherwise ignored.
// String literals may span lines and contain backslash escapes.
type Lexer struct {
	src string
	pos int
}

// NewLexer creates a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// NewLexerAt creates a lexer over src that starts scanning at byte offset pos.
func NewLexerAt(src string, pos int) *Lexer {
	return &Lexer{src: src, pos: min(max(pos, 0), len(src))}
}

// Offset returns the byte offset just past the last token returned.
func (l *Lexer) Offset() int {
	return l.pos
}

// Next returns the next token. After the input is exhausted it keeps returning TokenEOF.
func (l *Lexer) Next() Token {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return Token{Kind: TokenEOF, Pos: l.pos}
	}

	start := l.pos
	switch c := l.src[l.pos]; c {
	case '"':
		return l.lexString()
	case ':':
		l.pos++
		return Token{Kind: TokenColon, Value: ":", Pos: start}
	case '{':
		l.pos++
		return Token{Kind: TokenLBrace, Value: "{", Pos: start}
	case '}':
		l.pos++
		return Token{Kind: TokenRBrace, Value: "}", Pos: start}
	case ',':
		l.pos++
		return Token{Kind: TokenComma, Value: ",", Pos: start}
	}

	for l.pos < len(l.src) && !isSpace(l.src[l.pos]) && !isDelimiter(l.src[l.pos]) {
		l.pos++
	}
	return Token{Kind: TokenOther, Value: l.src[start:l.pos], Pos: start}
}

// lexString scans a double-quoted literal starting at the opening quote.
// A backslash always consumes the following byte, so \" never closes the literal.
func (l *Lexer) lexString() Token {
	start := l.pos
	l.pos++ // opening quote
	escaped := false
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			escaped = true
			l.pos += 2
			continue
		case '"':
			value := l.src[start+1 : l.pos]
			l.pos++
			return Token{Kind: TokenString, Value: value, Escaped: escaped, Pos: start}
		}
		l.pos++
	}
	l.pos = len(l.src)
	return Token{Kind: TokenUnterminated, Value: l.src[start+1:], Escaped: escaped, Pos: start}
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
}

// Tokenize returns all tokens of src, excluding the trailing TokenEOF.
func Tokenize(src string) []Token {
	l := NewLexer(src)
	var tokens []Token
	for {
		tok := l.Next()
		if tok.Kind == TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDelimiter(c byte) bool {
	return c == '"' || c == ':' || c == '{' || c == '}' || c == ','
}
