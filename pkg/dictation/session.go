package dictation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Nephrolytics-ai/voxsyn/pkg/capture"
	"github.com/Nephrolytics-ai/voxsyn/pkg/container"
	"github.com/Nephrolytics-ai/voxsyn/pkg/correction"
	"github.com/Nephrolytics-ai/voxsyn/pkg/credentials"
	"github.com/Nephrolytics-ai/voxsyn/pkg/logging"
	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
	"github.com/Nephrolytics-ai/voxsyn/pkg/surface"
	"github.com/Nephrolytics-ai/voxsyn/pkg/utils"
	"github.com/google/uuid"
)

const DefaultTranscribeTimeout = 60 * time.Second

// Result is the outcome of one successful transcription.
type Result struct {
	Raw      string
	Text     string
	Metadata model.GenerationMetadata
	// Delivered is false when the write-back did not happen; WriteErr says why.
	Delivered bool
	WriteErr  error
}

type Option func(*Session)

func WithCaptureConfig(cfg capture.Config) Option {
	return func(s *Session) {
		s.captureCfg = cfg.WithDefaults()
	}
}

func WithRules(rules *correction.RuleSet) Option {
	return func(s *Session) {
		s.rules = rules
	}
}

// WithTranscribeTimeout bounds the pipeline after Stop. Zero disables the bound.
func WithTranscribeTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		s.timeout = timeout
	}
}

func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// Session owns one capture-and-transcribe cycle for a single target surface.
// Idle -> Recording -> Transcribing -> Idle; no state is skipped.
type Session struct {
	id          string
	device      capture.Device
	target      surface.Surface
	transcriber Transcriber
	credential  credentials.Store
	rules       *correction.RuleSet
	captureCfg  capture.Config
	timeout     time.Duration

	mu        sync.Mutex
	state     State
	starting  bool
	run       uint64
	recording *recording
	onResult  func(Result)
	onError   func(error)
}

func NewSession(
	device capture.Device,
	target surface.Surface,
	transcriber Transcriber,
	credential credentials.Store,
	opts ...Option,
) *Session {
	s := &Session{
		id:          uuid.NewString(),
		device:      device,
		target:      target,
		transcriber: transcriber,
		credential:  credential,
		rules:       correction.DefaultMedicalRules(),
		captureCfg:  capture.DefaultConfig(),
		timeout:     DefaultTranscribeTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) OnResult(fn func(Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onResult = fn
}

func (s *Session) OnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

func (s *Session) logger(ctx context.Context) logging.Logger {
	return logging.NewLogger(ctx).WithField("session", s.id)
}

// Start acquires the input device and begins recording. It blocks only while
// the device is being acquired and never prompts for a credential.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle || s.starting {
		state := s.state
		s.mu.Unlock()
		s.logger(ctx).Warnf("start rejected in state %s", state)
		return ErrSessionBusy
	}
	s.starting = true
	s.mu.Unlock()

	stream, err := s.device.Open(ctx, s.captureCfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.starting = false
	if err != nil {
		s.logger(ctx).Errorf("capture start failed: %v", err)
		return &CaptureError{Err: err}
	}

	rec := newRecording(stream)
	s.recording = rec
	s.state = StateRecording
	go rec.collect()

	s.logger(ctx).Infof("recording started rate=%d channels=%d", stream.Config().SampleRate, stream.Config().Channels)
	return nil
}

// Stop ends the recording and submits it in the background. Outside Recording
// it does nothing and returns nil.
func (s *Session) Stop(ctx context.Context) *Pending {
	s.mu.Lock()
	if s.state != StateRecording {
		state := s.state
		s.mu.Unlock()
		s.logger(ctx).Debugf("stop ignored in state %s", state)
		return nil
	}
	rec := s.recording
	s.recording = nil
	s.state = StateTranscribing
	s.run++
	run := s.run
	s.mu.Unlock()

	pending := newPending()
	go s.finish(context.WithoutCancel(ctx), run, rec, pending)
	return pending
}

func (s *Session) finish(ctx context.Context, run uint64, rec *recording, pending *Pending) {
	log := s.logger(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("transcription pipeline panic: %v", r)
			utils.PrintStack("dictation pipeline", log)
			s.fail(ctx, run, pending, &TranscriptionError{Stage: StageInternal, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	chunks, format, err := rec.finalize()
	if err != nil {
		log.Warnf("closing capture stream: %v", err)
	}

	payload, err := container.Assemble(chunks, format)
	if err != nil {
		s.fail(ctx, run, pending, &TranscriptionError{Stage: StageAssemble, Err: err})
		return
	}

	token, ok := s.credential.Get()
	if !ok {
		s.fail(ctx, run, pending, &TranscriptionError{Stage: StageCredential, Err: ErrCredentialMissing})
		return
	}

	log.Infof("submitting recording chunks=%d bytes=%d", len(chunks), len(payload.Data))
	raw, meta, err := s.transcriber.Transcribe(ctx, payload, token)
	if err != nil {
		s.fail(ctx, run, pending, &TranscriptionError{Stage: StageTranscribe, Err: err})
		return
	}

	text := s.rules.Apply(raw)
	s.setIdle(run)

	result := Result{Raw: raw, Text: text, Metadata: meta, Delivered: true}
	if err := s.writeBack(ctx, text); err != nil {
		result.Delivered = false
		if errors.Is(err, surface.ErrDetached) {
			result.WriteErr = fmt.Errorf("%w: %w", ErrWriteBackSkipped, err)
			log.Warnf("%v", ErrWriteBackSkipped)
		} else {
			result.WriteErr = utils.WrapIfNotNil(err)
			log.Errorf("write-back failed: %v", err)
		}
	}

	log.Infof("transcription complete chars=%d delivered=%t", len(text), result.Delivered)
	pending.resolve(result, nil)
	if fn := s.resultCallback(); fn != nil {
		fn(result)
	}
}

// writeBack appends text to the target. A missing target counts as detached.
func (s *Session) writeBack(ctx context.Context, text string) error {
	if s.target == nil {
		return surface.ErrDetached
	}
	return s.target.AppendText(ctx, text)
}

// fail returns the session to Idle and reports err. The recording is dropped.
// Once the result has been delivered a later panic is only logged.
func (s *Session) fail(ctx context.Context, run uint64, pending *Pending, err error) {
	s.setIdle(run)
	s.logger(ctx).Errorf("%v", err)
	if !pending.resolve(Result{}, err) {
		return
	}
	if fn := s.errorCallback(); fn != nil {
		fn(err)
	}
}

// setIdle ends run. A later Start or Stop already owns the state and is left alone.
func (s *Session) setIdle(run uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == run && s.state == StateTranscribing {
		s.state = StateIdle
	}
}

func (s *Session) resultCallback() func(Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onResult
}

func (s *Session) errorCallback() func(error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onError
}

// recording gathers the chunks of one open stream in arrival order.
type recording struct {
	stream    capture.Stream
	mu        sync.Mutex
	chunks    [][]byte
	collected chan struct{}
}

func newRecording(stream capture.Stream) *recording {
	return &recording{stream: stream, collected: make(chan struct{})}
}

func (r *recording) collect() {
	defer close(r.collected)
	for chunk := range r.stream.Chunks() {
		r.mu.Lock()
		r.chunks = append(r.chunks, chunk)
		r.mu.Unlock()
	}
}

// finalize closes the stream, waits for the last delivered chunk and hands over
// the buffer. It must be called once.
func (r *recording) finalize() ([][]byte, container.Format, error) {
	err := r.stream.Close()
	<-r.collected

	r.mu.Lock()
	defer r.mu.Unlock()
	chunks := r.chunks
	r.chunks = nil
	return chunks, r.stream.Config().Format(), err
}
