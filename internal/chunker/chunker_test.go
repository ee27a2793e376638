package chunker

import (
	"strings"
	"testing"
)

func assertPieces(t *testing.T, text string, max int, parts []string) {
	t.Helper()
	if got := strings.Join(parts, ""); got != text {
		t.Errorf("pieces do not rebuild the text:\n got %q\nwant %q", got, text)
	}
	for i, p := range parts {
		if n := len([]rune(p)); n > max {
			t.Errorf("piece %d has %d runes, limit %d", i, n, max)
		}
	}
}

func TestSplit_FitsInOne(t *testing.T) {
	parts := Split("Two plus two is four.", 100)
	if len(parts) != 1 || parts[0] != "Two plus two is four." {
		t.Errorf("unexpected split %q", parts)
	}
}

func TestSplit_Unlimited(t *testing.T) {
	long := strings.Repeat("word ", 1000)
	if parts := Split(long, 0); len(parts) != 1 {
		t.Errorf("expected a single piece, got %d", len(parts))
	}
}

func TestSplit_ParagraphBoundary(t *testing.T) {
	text := "First paragraph here.\n\nSecond paragraph is here too."

	parts := Split(text, 35)

	assertPieces(t, text, 35, parts)
	if parts[0] != "First paragraph here.\n\n" {
		t.Errorf("expected cut after the blank line, got %q", parts[0])
	}
}

func TestSplit_CRLFParagraph(t *testing.T) {
	text := "First one.\r\n\r\nSecond one is longer."

	parts := Split(text, 20)

	assertPieces(t, text, 20, parts)
	if parts[0] != "First one.\r\n\r\n" {
		t.Errorf("expected cut after the CRLF blank line, got %q", parts[0])
	}
}

func TestSplit_SentenceBoundary(t *testing.T) {
	text := "One sentence. Another sentence follows here."

	parts := Split(text, 25)

	assertPieces(t, text, 25, parts)
	if parts[0] != "One sentence. " {
		t.Errorf("expected cut after the sentence, got %q", parts[0])
	}
}

func TestSplit_CJKSentenceBoundary(t *testing.T) {
	text := "二足す二は四です。簡単な足し算です。"

	parts := Split(text, 12)

	assertPieces(t, text, 12, parts)
	if parts[0] != "二足す二は四です。" {
		t.Errorf("expected cut after 。, got %q", parts[0])
	}
}

func TestSplit_WordBoundary(t *testing.T) {
	text := "alpha beta gamma delta epsilon"

	parts := Split(text, 12)

	assertPieces(t, text, 12, parts)
	for _, p := range parts[:len(parts)-1] {
		if !strings.HasSuffix(p, " ") {
			t.Errorf("expected piece to end at a space, got %q", p)
		}
	}
}

func TestSplit_HardCut(t *testing.T) {
	text := strings.Repeat("x", 25)

	parts := Split(text, 10)

	assertPieces(t, text, 10, parts)
	if len(parts) != 3 {
		t.Errorf("expected 3 pieces, got %d", len(parts))
	}
}

func TestSplit_MultibyteLimit(t *testing.T) {
	text := strings.Repeat("안녕하세요 ", 20)

	parts := Split(text, 13)

	assertPieces(t, text, 13, parts)
}
