// Package recorder accumulates microphone audio into one upload artifact per answer.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"anamnesa/internal/domain"
	"anamnesa/internal/ports"
)

const (
	defaultChunkSize = 4096
	defaultMIMEType  = "audio/webm"
	defaultFilename  = "answer.webm"
	drainTimeout     = 3 * time.Second
)

// Options tunes how fragments are read and how the artifact is labelled.
type Options struct {
	ChunkSize int
	MIMEType  string
	Filename  string
}

// Recorder holds at most one microphone acquisition at a time.
type Recorder struct {
	capture ports.AudioCapture
	audio   ports.AudioConfig
	opts    Options

	mu      sync.Mutex
	current *take
}

func New(capture ports.AudioCapture, audio ports.AudioConfig, opts Options) *Recorder {
	if opts.ChunkSize < 256 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.MIMEType == "" {
		opts.MIMEType = defaultMIMEType
	}
	if opts.Filename == "" {
		opts.Filename = defaultFilename
	}
	return &Recorder{capture: capture, audio: audio, opts: opts}
}

// Start acquires the microphone and begins buffering. tap may be nil.
func (r *Recorder) Start(ctx context.Context, tap ports.ChunkTap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return domain.ErrAlreadyRecording
	}

	session, err := r.capture.Start(ctx, r.audio)
	if err != nil {
		if errors.Is(err, domain.ErrPermissionDenied) || errors.Is(err, domain.ErrDeviceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrDeviceUnavailable, err)
	}

	t := &take{audio: session, tap: tap, done: make(chan struct{})}
	r.current = t
	go t.pump(r.opts.ChunkSize)
	return nil
}

// Stop releases the microphone and returns everything captured so far, in order.
// A device stop error is returned together with the artifact.
func (r *Recorder) Stop() (domain.Artifact, error) {
	r.mu.Lock()
	t := r.current
	r.current = nil
	r.mu.Unlock()

	if t == nil {
		return domain.Artifact{}, domain.ErrNotRecording
	}

	stopErr := t.finish()
	artifact := domain.Artifact{
		Data:     t.bytes(),
		MIMEType: r.opts.MIMEType,
		Filename: r.opts.Filename,
		Chunks:   len(t.chunks),
	}
	if stopErr != nil {
		return artifact, fmt.Errorf("failed to stop audio capture: %w", stopErr)
	}
	return artifact, nil
}

// Discard releases the microphone and drops the buffer. It is a no-op when idle.
func (r *Recorder) Discard() error {
	r.mu.Lock()
	t := r.current
	r.current = nil
	r.mu.Unlock()

	if t == nil {
		return nil
	}
	err := t.finish()
	t.chunks = nil
	return err
}

// Active reports whether a recording is in progress.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

type take struct {
	audio ports.AudioSession
	tap   ports.ChunkTap

	// chunks is written only by pump and read only after done is closed.
	chunks  [][]byte
	readErr error
	done    chan struct{}

	releaseOnce sync.Once
	releaseErr  error
}

func (t *take) pump(chunkSize int) {
	defer close(t.done)

	buf := make([]byte, chunkSize)
	for {
		n, err := t.audio.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			t.chunks = append(t.chunks, chunk)

			if t.tap != nil {
				if tapErr := t.tap.SendAudio(chunk); tapErr != nil {
					log.WithError(tapErr).Warn("detaching live preview from recording")
					t.tap = nil
				}
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				t.readErr = err
				log.WithError(err).Warn("audio capture read failed")
			}
			return
		}
	}
}

// finish releases the device once and waits for the pump to drain.
func (t *take) finish() error {
	t.releaseOnce.Do(func() {
		t.releaseErr = t.audio.Stop()
	})

	select {
	case <-t.done:
	case <-time.After(drainTimeout):
		log.Warn("audio capture did not drain after stop, closing")
		_ = t.audio.Close()
		<-t.done
	}
	_ = t.audio.Close()

	if t.releaseErr != nil {
		return t.releaseErr
	}
	return t.readErr
}

func (t *take) bytes() []byte {
	size := 0
	for _, chunk := range t.chunks {
		size += len(chunk)
	}
	out := make([]byte, 0, size)
	for _, chunk := range t.chunks {
		out = append(out, chunk...)
	}
	return out
}
