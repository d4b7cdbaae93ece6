package dictation

import (
	"context"

	"github.com/Nephrolytics-ai/voxsyn/pkg/credentials"
	"github.com/Nephrolytics-ai/voxsyn/pkg/logging"
)

// Controller maps a single activation control onto a session: the first
// activation starts recording, the next stops it.
type Controller struct {
	session  *Session
	store    credentials.Store
	prompter credentials.Prompter
}

func NewController(session *Session, store credentials.Store, prompter credentials.Prompter) *Controller {
	return &Controller{session: session, store: store, prompter: prompter}
}

func (c *Controller) Session() *Session {
	return c.session
}

func (c *Controller) OnResult(fn func(Result)) {
	c.session.OnResult(fn)
}

func (c *Controller) OnError(fn func(error)) {
	c.session.OnError(fn)
}

// OnActivate toggles the session. While Idle it obtains a credential, prompting
// if none is stored, and then starts recording. While Recording it stops and
// returns the pending transcription. While Transcribing it does nothing.
func (c *Controller) OnActivate(ctx context.Context) (*Pending, error) {
	switch c.session.State() {
	case StateIdle:
		if _, err := credentials.Obtain(ctx, c.store, c.prompter); err != nil {
			logging.NewLogger(ctx).WithField("session", c.session.ID()).Warnf("no credential, not recording: %v", err)
			return nil, err
		}
		return nil, c.session.Start(ctx)
	case StateRecording:
		return c.session.Stop(ctx), nil
	default:
		return nil, nil
	}
}
