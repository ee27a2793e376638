package markdown

import (
	"strings"
	"testing"
)

func TestRender_WrapsLongParagraph(t *testing.T) {
	words := strings.Repeat("lorem ipsum dolor sit amet ", 12)

	out, err := Render(words, 40)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected wrapped output, got %q", out)
	}
	if got := strings.Count(out, "amet"); got != 12 {
		t.Errorf("expected every word kept, found %d of 12", got)
	}
}

func TestRender_KeepsContent(t *testing.T) {
	out, err := Render("# 결과\n\n2 더하기 2는 **4**입니다.", 0)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, want := range []string{"결과", "2 더하기 2는", "4"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output %q", want, out)
		}
	}
}
