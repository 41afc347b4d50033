package lexer

import "testing"

func TestNextTokenOperators(t *testing.T) {
	input := `== != <= >= += -= -> => = < > + - * / %`
	want := []TokenType{
		EQ, NEQ, LTE, GTE, PLUSEQ, MINUSEQ, ARROW, FATARROW,
		ASSIGN, LT, GT, PLUS, MINUS, STAR, SLASH, PERCENT, EOF,
	}

	l := New(input)
	for i, wt := range want {
		tok := l.NextToken()
		if tok.Type != wt {
			t.Fatalf("token %d: got %s, want %s", i, tok.Type, wt)
		}
	}
}

func TestNextTokenKeywordsAndIdents(t *testing.T) {
	input := `project executable library shared_library static_library
compiler dependency task if else unless for in do end fn return
true false nil and or not myVar`

	l := New(input)
	want := []TokenType{
		PROJECT, EXECUTABLE, LIBRARY, SHARED_LIBRARY, STATIC_LIBRARY, NEWLINE,
		COMPILER, DEPENDENCY, TASK, IF, ELSE, UNLESS, FOR, IN, DO, END, FN, RETURN, NEWLINE,
		TRUE, FALSE, NIL, AND, OR, NOT, IDENT, EOF,
	}
	for i, wt := range want {
		tok := l.NextToken()
		if tok.Type != wt {
			t.Fatalf("token %d: got %s (%q), want %s", i, tok.Type, tok.Lexeme, wt)
		}
	}
}

func TestNextTokenString(t *testing.T) {
	l := New(`"hello\nworld" 'single'`)

	tok := l.NextToken()
	if tok.Type != STRING || tok.Lexeme != "hello\nworld" {
		t.Fatalf("got %#v", tok)
	}

	tok = l.NextToken()
	if tok.Type != STRING || tok.Lexeme != "single" {
		t.Fatalf("got %#v", tok)
	}
}

func TestNextTokenNumber(t *testing.T) {
	l := New(`42 3.14 0`)

	for _, want := range []string{"42", "3.14", "0"} {
		tok := l.NextToken()
		if tok.Type != NUMBER || tok.Lexeme != want {
			t.Fatalf("got %#v, want NUMBER %q", tok, want)
		}
	}
}

func TestNextTokenSymbol(t *testing.T) {
	l := New(`:release :debug_mode`)

	tok := l.NextToken()
	if tok.Type != SYMBOL || tok.Lexeme != "release" {
		t.Fatalf("got %#v", tok)
	}

	tok = l.NextToken()
	if tok.Type != SYMBOL || tok.Lexeme != "debug_mode" {
		t.Fatalf("got %#v", tok)
	}
}

func TestNextTokenComments(t *testing.T) {
	input := "# a comment\nproject // another\n\"x\""
	want := []TokenType{NEWLINE, PROJECT, NEWLINE, STRING, EOF}

	l := New(input)
	for i, wt := range want {
		tok := l.NextToken()
		if tok.Type != wt {
			t.Fatalf("token %d: got %s, want %s", i, tok.Type, wt)
		}
	}
}

func TestNextTokenLineColumn(t *testing.T) {
	l := New("ab\ncd")

	tok := l.NextToken() // ab
	if tok.Line != 1 || tok.Column != 1 {
		t.Fatalf("got line %d col %d", tok.Line, tok.Column)
	}

	l.NextToken() // NEWLINE

	tok = l.NextToken() // cd
	if tok.Line != 2 || tok.Column != 1 {
		t.Fatalf("got line %d col %d", tok.Line, tok.Column)
	}
}

func TestTokenizeReachesEOF(t *testing.T) {
	toks := New("project").Tokenize()
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2", len(toks))
	}
	if toks[len(toks)-1].Type != EOF {
		t.Fatalf("last token is %s, want EOF", toks[len(toks)-1].Type)
	}
}
