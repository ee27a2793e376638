package detector

import "testing"

func TestDetector_DetectISO(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{"empty", "", "", false},
		{"whitespace", "   \n", "", false},
		{"korean", "2 더하기 2는 4입니다. 간단한 덧셈 문제예요.", "ko", true},
		{"english", "Two plus two equals four. It is a simple sum.", "en", true},
		{"japanese", "二足す二は四です。簡単な足し算です。", "ja", true},
		{"german", "Zwei plus zwei ist vier. Das ist eine einfache Rechnung.", "de", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := d.DetectISO(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("DetectISO(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if code != tt.wantCode {
				t.Errorf("DetectISO(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}
