package dictation

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionBusy rejects Start while a capture is open or being acquired.
	ErrSessionBusy = errors.New("dictation session is busy")
	// ErrCredentialMissing means no token was available when the recording was submitted.
	ErrCredentialMissing = errors.New("transcription credential is missing")
	// ErrWriteBackSkipped is reported, not raised, when the target surface is gone.
	ErrWriteBackSkipped = errors.New("write-back skipped: target surface detached")
)

// CaptureError is returned by Start when the audio input cannot be acquired.
// The session stays Idle.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture failed: %v", e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// Stage names where a transcription attempt failed.
type Stage string

const (
	StageAssemble   Stage = "assemble"
	StageCredential Stage = "credential"
	StageTranscribe Stage = "transcribe"
	StageInternal   Stage = "internal"
)

// TranscriptionError reports a failed pipeline run. Err carries the raw detail,
// typically a *model.ServiceError from the provider.
type TranscriptionError struct {
	Stage Stage
	Err   error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed at %s: %v", e.Stage, e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}
