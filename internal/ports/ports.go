package ports

import (
	"context"
	"io"

	"anamnesa/internal/domain"
	"anamnesa/internal/view"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
	Bitrate     string
}

// AudioSession is a live capture session. Stop releases the device; Read drains
// buffered audio until EOF once the device is released.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture acquires the microphone.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// ChunkTap receives a copy of every recorded fragment.
type ChunkTap interface {
	SendAudio(chunk []byte) error
}

// Recorder captures one answer at a time.
type Recorder interface {
	Start(ctx context.Context, tap ChunkTap) error
	Stop() (domain.Artifact, error)
	Discard() error
	Active() bool
}

// InterviewBackend is the remote interview API.
type InterviewBackend interface {
	StartInterview(ctx context.Context) (domain.StartInfo, error)
	SubmitStep(ctx context.Context, artifact domain.Artifact, stepID int) (domain.StepResult, error)
	FinishInterview(ctx context.Context) (domain.Summary, error)
}

// StreamingConfig describes provider-agnostic streaming settings.
// An empty Encoding means containerized audio.
type StreamingConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	InterimResults bool
}

// StreamingSession is an active provider websocket session.
type StreamingSession interface {
	ChunkTap
	CloseSend() error
	Events() <-chan domain.TranscriptEvent
	Wait() error
	Close() error
}

// TranscriptionProvider starts streaming transcription sessions.
type TranscriptionProvider interface {
	StartStreaming(ctx context.Context, cfg StreamingConfig) (StreamingSession, error)
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink emits interview state to the UI.
type EventSink interface {
	ViewChanged(model view.Model)
	LiveTranscript(text string)
	SessionError(code domain.ErrorCode, detail string)
}
