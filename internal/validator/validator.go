// Package validator checks that the final answer came back in the user's
// language.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/perechat/internal/detector"
	"github.com/valpere/perechat/internal/lang"
)

// Below this many runes detection is too unreliable to act on.
const minValidationLength = 20

// MismatchError reports an answer detected in a language other than the one
// requested.
type MismatchError struct {
	Want string
	Got  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected answer in %s but detected %s", e.Want, e.Got)
}

type Validator struct {
	det *detector.Detector
}

func New() *Validator {
	return &Validator{det: detector.New()}
}

// Check returns nil when text looks like it is written in want. Languages
// without a tag, short text and text whose language cannot be determined all
// pass.
func (v *Validator) Check(text string, want lang.Language) error {
	wantISO := want.ISO()
	if wantISO == "" {
		return nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("answer is empty")
	}
	if len([]rune(text)) < minValidationLength {
		return nil
	}

	got, ok := v.det.DetectISO(text)
	if !ok {
		return nil
	}
	if got != wantISO {
		return &MismatchError{Want: wantISO, Got: got}
	}
	return nil
}
