package credentials

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/Nephrolytics-ai/voxsyn/pkg/logging"
	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
	"github.com/manifoldco/promptui"
)

var ErrPromptDeclined = errors.New("credential prompt declined")

// Prompter asks the user for a token.
type Prompter interface {
	Prompt(ctx context.Context) (string, error)
}

type PrompterFunc func(ctx context.Context) (string, error)

func (f PrompterFunc) Prompt(ctx context.Context) (string, error) {
	return f(ctx)
}

// TerminalPrompter reads the token from a terminal with masked input.
type TerminalPrompter struct {
	Label  string
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

func (t TerminalPrompter) Prompt(ctx context.Context) (string, error) {
	label := t.Label
	if label == "" {
		label = "Transcription API key"
	}
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return ErrEmptyCredential
			}
			return nil
		},
		Stdin:  t.Stdin,
		Stdout: t.Stdout,
	}

	token, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
			return "", ErrPromptDeclined
		}
		return "", utils.WrapIfNotNil(err)
	}
	return strings.TrimSpace(token), nil
}

// Obtain returns the stored token, prompting once and storing the answer when
// none is present.
func Obtain(ctx context.Context, store Store, prompter Prompter) (string, error) {
	if token, ok := store.Get(); ok {
		return token, nil
	}
	if prompter == nil {
		return "", ErrPromptDeclined
	}

	logging.NewLogger(ctx).Info("no credential stored, prompting")
	token, err := prompter.Prompt(ctx)
	if err != nil {
		return "", err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrPromptDeclined
	}
	if err := store.Set(token); err != nil {
		return "", err
	}
	return token, nil
}
