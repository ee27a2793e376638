package llm

import (
	"context"

	"github.com/valpere/perechat/internal/postprocess"
)

// Cleaning runs every completion of next through postprocess.Clean. It is
// only installed when Config.CleanOutput is set; by default model text is
// returned exactly as the provider sent it.
type Cleaning struct {
	next Client
}

func NewCleaning(next Client) *Cleaning {
	return &Cleaning{next: next}
}

func (c *Cleaning) Name() string {
	return c.next.Name()
}

func (c *Cleaning) Model() string {
	return ModelName(c.next)
}

func (c *Cleaning) Invoke(ctx context.Context, prompt string) (string, error) {
	out, err := c.next.Invoke(ctx, prompt)
	if err != nil {
		return "", err
	}
	return postprocess.Clean(out), nil
}
