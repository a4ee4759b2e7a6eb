package parser

import "testing"

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func tokenizeAll(input string) []Token {
	l := NewLexer(input, "test.s")
	var toks []Token
	for {
		tok := l.Consume()
		toks = append(toks, tok)
		if tok.Kind == TokenEof {
			break
		}
	}
	return toks
}

func TestLexerRegisterVsSymbol(t *testing.T) {
	toks := tokenizeAll("r0 r3 rts r4")
	if toks[0].Kind != TokenRegister || toks[0].Value != 0 {
		t.Fatalf("r0: got %+v", toks[0])
	}
	if toks[1].Kind != TokenRegister || toks[1].Value != 3 {
		t.Fatalf("r3: got %+v", toks[1])
	}
	if toks[2].Kind != TokenSymbol || toks[2].Text != "rts" {
		t.Fatalf("rts should lex as a symbol, got %+v", toks[2])
	}
	if toks[3].Kind != TokenSymbol || toks[3].Text != "r4" {
		t.Fatalf("r4 is out of register range, should lex as a symbol, got %+v", toks[3])
	}
}

func TestLexerNumberLiterals(t *testing.T) {
	toks := tokenizeAll("0x1F 0b00001010 42")
	if toks[0].Kind != TokenHexadecimal || toks[0].Value != 0x1F {
		t.Fatalf("hex: got %+v", toks[0])
	}
	if toks[1].Kind != TokenBinary || toks[1].Value != 0b00001010 {
		t.Fatalf("binary: got %+v", toks[1])
	}
	if toks[2].Kind != TokenDecimal || toks[2].Value != 42 {
		t.Fatalf("decimal: got %+v", toks[2])
	}
}

func TestLexerMalformedHexReportsError(t *testing.T) {
	l := NewLexer("0xA", "test.s")
	l.Consume()
	if !l.Errors().HasErrors() {
		t.Fatalf("expected an error for a one-digit hex literal")
	}
}

func TestLexerDecimalOutOfRange(t *testing.T) {
	l := NewLexer("256", "test.s")
	l.Consume()
	if !l.Errors().HasErrors() {
		t.Fatalf("expected an error for a decimal literal above 255")
	}
}

func TestLexerPunctuationAndComment(t *testing.T) {
	toks := tokenizeAll("r0, r1 # trailing comment\nr2")
	want := []TokenKind{TokenRegister, TokenComma, TokenRegister, TokenComment, TokenRegister, TokenEof}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexerEofIsIdempotent(t *testing.T) {
	l := NewLexer("", "test.s")
	first := l.Consume()
	second := l.Consume()
	if first.Kind != TokenEof || second.Kind != TokenEof {
		t.Fatalf("expected EOF twice, got %v then %v", first, second)
	}
}

func TestLexerPeekDoesNotConsume(t *testing.T) {
	l := NewLexer("r0", "test.s")
	peeked := l.Peek()
	consumed := l.Consume()
	if peeked.Kind != TokenRegister || consumed.Kind != TokenRegister {
		t.Fatalf("peek/consume mismatch: %+v / %+v", peeked, consumed)
	}
	if l.Consume().Kind != TokenEof {
		t.Fatalf("expected exactly one token before EOF")
	}
}
