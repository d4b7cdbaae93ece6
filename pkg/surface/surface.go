// Package surface provides the editable surfaces dictated text is written into.
package surface

import (
	"context"
	"errors"
	"strings"
)

// ErrDetached is returned when the surface no longer exists.
var ErrDetached = errors.New("surface is detached")

// Kind distinguishes plain value fields from rich editable regions.
type Kind string

const (
	KindValue Kind = "value"
	KindRich  Kind = "rich"
)

// Surface receives dictated text. AppendText must return ErrDetached, and leave
// nothing behind, when the surface is gone.
type Surface interface {
	AppendText(ctx context.Context, text string) error
}

// JoinText appends addition to the trimmed existing content, separated by one space.
func JoinText(existing string, addition string) string {
	current := strings.TrimSpace(existing)
	if current == "" {
		return addition
	}
	return current + " " + addition
}
