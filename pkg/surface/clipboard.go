package surface

import (
	"context"

	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
	"github.com/atotto/clipboard"
)

// clipboardBackend is swapped in tests; headless CI has no clipboard utility.
type clipboardBackend interface {
	ReadAll() (string, error)
	WriteAll(text string) error
	Unsupported() bool
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error) {
	return clipboard.ReadAll()
}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

func (systemClipboard) Unsupported() bool {
	return clipboard.Unsupported
}

// Clipboard appends dictated text to the system clipboard contents.
type Clipboard struct {
	backend clipboardBackend
}

func NewClipboard() *Clipboard {
	return &Clipboard{backend: systemClipboard{}}
}

func (c *Clipboard) AppendText(ctx context.Context, text string) error {
	if c == nil || c.backend == nil || c.backend.Unsupported() {
		return ErrDetached
	}
	existing, err := c.backend.ReadAll()
	if err != nil {
		// an empty clipboard reads as an error on some platforms
		existing = ""
	}
	return utils.WrapIfNotNil(c.backend.WriteAll(JoinText(existing, text)))
}
