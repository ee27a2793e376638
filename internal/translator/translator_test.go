package translator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/valpere/perechat/internal/lang"
)

type recordingClient struct {
	prompts []string
	reply   string
	err     error
}

func (c *recordingClient) Name() string { return "recording" }

func (c *recordingClient) Invoke(ctx context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.reply, c.err
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("2+2는 뭐야?", "American English")

	if !strings.HasPrefix(prompt, "Accurately translate the following text into natural American English.") {
		t.Errorf("unexpected prompt opening: %q", prompt)
	}
	if !strings.Contains(prompt, "```\n2+2는 뭐야?\n```") {
		t.Errorf("expected fenced text in prompt, got %q", prompt)
	}
	if !strings.HasSuffix(prompt, "Output only the perfectly translated text.") {
		t.Errorf("unexpected prompt ending: %q", prompt)
	}
}

func TestLLMTranslator_Translate(t *testing.T) {
	client := &recordingClient{reply: "What is 2+2?"}
	tr := NewLLMTranslator(client)

	out, err := tr.Translate(context.Background(), "2+2는 뭐야?", lang.Resolve("American English"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "What is 2+2?" {
		t.Errorf("expected model output to be returned, got %q", out)
	}
	if len(client.prompts) != 1 {
		t.Fatalf("expected exactly one model call, got %d", len(client.prompts))
	}
	if client.prompts[0] != BuildPrompt("2+2는 뭐야?", "American English") {
		t.Errorf("unexpected prompt %q", client.prompts[0])
	}
}

func TestLLMTranslator_Translate_Error(t *testing.T) {
	boom := errors.New("network down")
	tr := NewLLMTranslator(&recordingClient{err: boom})

	_, err := tr.Translate(context.Background(), "hi", lang.Resolve("Korean"))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped client error, got %v", err)
	}
}

func TestLLMTranslator_Name(t *testing.T) {
	if NewLLMTranslator(&recordingClient{}).Name() != "llm" {
		t.Error("expected name 'llm'")
	}
}

func TestGoogleTranslator_UnknownTarget(t *testing.T) {
	tr := NewGoogleTranslator("test-key")

	_, err := tr.Translate(context.Background(), "hello", lang.Resolve("Pirate Speak"))
	if err == nil {
		t.Error("expected error for a language without a tag")
	}
}

func TestGoogleTranslator_Name(t *testing.T) {
	tr := NewGoogleTranslator("")

	if tr.Name() != "google" {
		t.Errorf("expected 'google', got %q", tr.Name())
	}
	if len(tr.opts) != 0 {
		t.Errorf("expected no client options without API key, got %d", len(tr.opts))
	}
}

func fakeBatch(calls *[][]string, reply func(string) string) batchFunc {
	return func(ctx context.Context, segments []string, target language.Tag) ([]string, error) {
		*calls = append(*calls, segments)
		out := make([]string, len(segments))
		for i, s := range segments {
			out[i] = reply(s)
		}
		return out, nil
	}
}

func TestGoogleTranslator_MasksCode(t *testing.T) {
	var calls [][]string
	tr := NewGoogleTranslator("test-key")
	tr.batch = fakeBatch(&calls, func(s string) string {
		return strings.ReplaceAll(s, "Call", "호출:")
	})

	out, err := tr.Translate(context.Background(), "Call `main()` now.", lang.Resolve("Korean"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 1 || len(calls[0]) != 1 {
		t.Fatalf("expected one request with one segment, got %v", calls)
	}
	if calls[0][0] != "Call [PH0] now." {
		t.Errorf("expected code masked before sending, got %q", calls[0][0])
	}
	if out != "호출: `main()` now." {
		t.Errorf("unexpected output %q", out)
	}
}

func TestGoogleTranslator_LongTextBatched(t *testing.T) {
	var calls [][]string
	tr := NewGoogleTranslator("test-key")
	tr.batch = fakeBatch(&calls, strings.ToUpper)

	para := strings.Repeat("word ", 900) + "end."
	text := para + "\n\n" + para

	out, err := tr.Translate(context.Background(), text, lang.Resolve("Korean"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected a single request, got %d", len(calls))
	}
	if len(calls[0]) < 2 {
		t.Errorf("expected long text split into segments, got %d", len(calls[0]))
	}
	for _, seg := range calls[0] {
		if n := len([]rune(seg)); n > googleMaxSegment {
			t.Errorf("segment of %d runes exceeds limit", n)
		}
	}
	if out != strings.ToUpper(text) {
		t.Error("expected segments reassembled with original whitespace")
	}
}

func TestGoogleTranslator_DroppedMarker(t *testing.T) {
	var calls [][]string
	tr := NewGoogleTranslator("test-key")
	tr.batch = fakeBatch(&calls, func(string) string { return "번역됨" })

	_, err := tr.Translate(context.Background(), "see `x`", lang.Resolve("Korean"))
	if err == nil {
		t.Error("expected error when the translation loses protected code")
	}
}

func TestGoogleTranslator_BlankText(t *testing.T) {
	var calls [][]string
	tr := NewGoogleTranslator("test-key")
	tr.batch = fakeBatch(&calls, strings.ToUpper)

	out, err := tr.Translate(context.Background(), "  \n", lang.Resolve("Korean"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "  \n" || len(calls) != 0 {
		t.Errorf("expected blank text returned untouched without a request, got %q after %d calls", out, len(calls))
	}
}

func TestGoogleTranslator_BatchError(t *testing.T) {
	boom := errors.New("quota exceeded")
	tr := NewGoogleTranslator("test-key")
	tr.batch = func(context.Context, []string, language.Tag) ([]string, error) {
		return nil, boom
	}

	_, err := tr.Translate(context.Background(), "hello", lang.Resolve("Korean"))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped batch error, got %v", err)
	}
}

func TestInterfaces(t *testing.T) {
	var _ Translator = (*LLMTranslator)(nil)
	var _ Translator = (*GoogleTranslator)(nil)
	var _ Translator = (*MyMemoryTranslator)(nil)
}
