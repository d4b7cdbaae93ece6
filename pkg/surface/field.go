package surface

import (
	"context"
	"sync"
)

// Field is an in-memory editable element.
type Field struct {
	kind Kind

	mu       sync.RWMutex
	text     string
	detached bool
}

func NewField(kind Kind, initial string) *Field {
	if kind == "" {
		kind = KindValue
	}
	return &Field{kind: kind, text: initial}
}

func (f *Field) Kind() Kind {
	return f.kind
}

func (f *Field) Text() string {
	if f == nil {
		return ""
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.text
}

func (f *Field) Attached() bool {
	if f == nil {
		return false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !f.detached
}

// Detach removes the field; later writes are dropped.
func (f *Field) Detach() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detached = true
}

// AppendText joins text onto the field. A nil field was never attached.
func (f *Field) AppendText(ctx context.Context, text string) error {
	if f == nil {
		return ErrDetached
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.detached {
		return ErrDetached
	}
	f.text = JoinText(f.text, text)
	return nil
}
