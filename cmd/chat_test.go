package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/perechat/internal/config"
)

func TestReadRequest(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		args       []string
		want       string
		wantPrompt bool
		wantErr    bool
	}{
		{name: "args joined", args: []string{"What's", "2+2?"}, want: "What's 2+2?"},
		{name: "line", input: "What's 2+2?\nignored\n", want: "What's 2+2?", wantPrompt: true},
		{name: "crlf", input: "hello\r\n", want: "hello", wantPrompt: true},
		{name: "empty line", input: "\n", want: "", wantPrompt: true},
		{name: "eof after text", input: "no newline", want: "no newline", wantPrompt: true},
		{name: "eof only", input: "", wantPrompt: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := readRequest(strings.NewReader(tt.input), &out, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.wantPrompt {
				assert.Equal(t, "User: ", out.String())
			} else {
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	assert.Equal(t, "a b", snippet("a\nb", 10))
	assert.Equal(t, "안녕하세요 여...", snippet("안녕하세요 여러분 반갑습니다", 10))
}

// fakeOllama answers every generate call with "reply N".
func fakeOllama(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n := calls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"response": fmt.Sprintf("reply %d", n)})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_RunsPipelineAndRecordsHistory(t *testing.T) {
	srv, calls := fakeOllama(t)
	db := filepath.Join(t.TempDir(), "history.db")

	out, err := execute(t, "What's 2+2?\n",
		"--provider", "ollama", "--base-url", srv.URL, "--history", db, "--env-file", filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)

	assert.Equal(t, int32(8), calls.Load())
	assert.True(t, strings.HasPrefix(out, "User: "))
	assert.Contains(t, out, "\nHmm.. The user said, \"reply 1\"\n")
	assert.Contains(t, out, "\nRespond in the user's native language. 'Korean'\n")
	assert.True(t, strings.HasSuffix(out, "\nAI: reply 8\n"), "unexpected tail: %q", out)

	aiAt := strings.Index(out, "AI:")
	assert.Less(t, strings.Index(out, "Hmm.."), strings.Index(out, "Respond in"))
	assert.Less(t, strings.Index(out, "Respond in"), aiAt)
	assert.Less(t, strings.LastIndex(out, "Thinking..."), aiAt)

	out, err = execute(t, "", "history", "--history", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Exchanges:     1")
	assert.Contains(t, out, "Model calls:   8")
	assert.Contains(t, out, "ollama")

	out, err = execute(t, "", "history", "--history", db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "What's 2+2?")
	assert.Contains(t, out, "llama3.2")

	out, err = execute(t, "", "history", "--history", db, "list", "--match", "2+2")
	require.NoError(t, err)
	assert.Contains(t, out, "What's 2+2?")

	out, err = execute(t, "", "history", "--history", db, "list", "--match", "weather")
	require.NoError(t, err)
	assert.Contains(t, out, "No exchanges recorded.")

	_, err = execute(t, "", "history", "--history", db, "delete", "%")
	require.Error(t, err)
	out, err = execute(t, "", "history", "--history", db, "list", "--match", "")
	require.NoError(t, err)
	assert.Contains(t, out, "What's 2+2?")
}

func TestRootCommand_MissingCredential(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")

	_, err := execute(t, "hello\n",
		"--provider", "gemini", "--history", "", "--env-file", filepath.Join(t.TempDir(), "missing.env"))

	var missing *config.MissingCredentialError
	require.True(t, errors.As(err, &missing), "expected MissingCredentialError, got %v", err)
	assert.Equal(t, "GOOGLE_API_KEY", missing.Name)
}

func TestRootCommand_MissingCredential_NoModelCalls(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`{"choices":[{"message":{"content":"should not be asked"}}]}`))
	}))
	t.Cleanup(srv.Close)

	out, err := execute(t, "hello\n",
		"--provider", "openrouter", "--base-url", srv.URL, "--history", "",
		"--env-file", filepath.Join(t.TempDir(), "missing.env"))

	var missing *config.MissingCredentialError
	require.True(t, errors.As(err, &missing), "expected MissingCredentialError, got %v", err)
	assert.Equal(t, "OPENROUTER_API_KEY", missing.Name)
	assert.Equal(t, int32(0), requests.Load())
	assert.NotContains(t, out, "User: ")
}

func TestRootCommand_ModelFailureExitsWithError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	out, err := execute(t, "",
		"--provider", "ollama", "--base-url", srv.URL, "--history", "", "hello", "there")
	require.Error(t, err)
	assert.NotContains(t, out, "User: ")
	assert.NotContains(t, out, "AI:")
}

func TestHistoryCommand_RequiresPath(t *testing.T) {
	_, err := execute(t, "", "history", "--history", "", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no history database configured")
}
