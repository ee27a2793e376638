package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valpere/perechat/internal/detector"
	"github.com/valpere/perechat/internal/lang"
)

const (
	DefaultMyMemoryURL = "https://api.mymemory.translated.net"

	// MyMemory rejects queries over 500 bytes; 160 runes stays under that
	// for three-byte scripts such as Hangul.
	myMemoryMaxSegment = 160
)

// MyMemoryTranslator uses the free MyMemory API. It needs no key, but it
// wants an explicit source language, which is detected from the text.
type MyMemoryTranslator struct {
	email   string
	baseURL string
	client  *http.Client
	det     *detector.Detector
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  json.Number `json:"responseStatus"`
	ResponseDetails string      `json:"responseDetails"`
}

// NewMyMemoryTranslator builds a translator. email, when set, is sent with
// each query to raise the daily quota.
func NewMyMemoryTranslator(email, baseURL string) *MyMemoryTranslator {
	if baseURL == "" {
		baseURL = DefaultMyMemoryURL
	}
	return &MyMemoryTranslator{
		email:   email,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		det:     detector.New(),
	}
}

func (t *MyMemoryTranslator) Name() string {
	return "mymemory"
}

func (t *MyMemoryTranslator) Translate(ctx context.Context, text string, target lang.Language) (string, error) {
	targetISO := target.ISO()
	if targetISO == "" {
		return "", fmt.Errorf("mymemory: no language tag for %q", target.Name)
	}

	sourceISO, ok := t.det.DetectISO(text)
	if !ok {
		sourceISO = "en"
	}
	if sourceISO == targetISO {
		return text, nil
	}
	pair := sourceISO + "|" + targetISO

	out, err := translateSegmented(ctx, text, myMemoryMaxSegment, func(ctx context.Context, segments []string) ([]string, error) {
		translated := make([]string, len(segments))
		for i, seg := range segments {
			s, err := t.query(ctx, seg, pair)
			if err != nil {
				return nil, fmt.Errorf("segment %d/%d: %w", i+1, len(segments), err)
			}
			translated[i] = s
		}
		return translated, nil
	})
	if err != nil {
		return "", fmt.Errorf("mymemory: %w", err)
	}
	return out, nil
}

func (t *MyMemoryTranslator) query(ctx context.Context, text, pair string) (string, error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("langpair", pair)
	if t.email != "" {
		params.Set("de", t.email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/get?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var out myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if out.ResponseStatus.String() != "200" {
		return "", fmt.Errorf("API error: %s (%s)", out.ResponseDetails, out.ResponseStatus)
	}

	return out.ResponseData.TranslatedText, nil
}
