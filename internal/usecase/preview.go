package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"anamnesa/internal/domain"
	"anamnesa/internal/ports"
)

// liveText folds streamed transcript events into the text shown while recording.
type liveText struct {
	mu      sync.Mutex
	finals  []string
	partial string
}

func (l *liveText) Add(event domain.TranscriptEvent) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	text := strings.TrimSpace(event.Text)
	if text != "" {
		if event.Kind == domain.TranscriptKindFinal {
			l.finals = append(l.finals, text)
			l.partial = ""
		} else {
			l.partial = text
		}
	}
	return l.textLocked()
}

func (l *liveText) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.textLocked()
}

func (l *liveText) textLocked() string {
	parts := append([]string(nil), l.finals...)
	if l.partial != "" {
		parts = append(parts, l.partial)
	}
	return strings.Join(parts, " ")
}

type previewSession struct {
	stream ports.StreamingSession
	text   *liveText
	cancel context.CancelFunc
	done   chan struct{}
}

// startPreview opens a live transcript stream for one recording. A nil tap
// means no preview is running.
func (c *InterviewController) startPreview(ctx context.Context) (ports.ChunkTap, *previewSession) {
	if c.cfg.Preview == nil {
		return nil, nil
	}

	previewCtx, cancel := context.WithCancel(ctx)
	stream, err := c.cfg.Preview.StartStreaming(previewCtx, c.cfg.Streaming)
	if err != nil {
		cancel()
		log.WithError(err).Warn("live preview unavailable")
		c.events.SessionError(domain.ErrorCodePreview, err.Error())
		return nil, nil
	}

	p := &previewSession{stream: stream, text: &liveText{}, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		for event := range stream.Events() {
			if strings.TrimSpace(event.Text) == "" {
				continue
			}
			c.setLiveTranscript(p.text.Add(event))
		}
	}()
	return stream, p
}

// finish flushes the stream and waits up to grace for trailing transcripts.
func (p *previewSession) finish(grace time.Duration) {
	if p == nil {
		return
	}
	_ = p.stream.CloseSend()
	if err := waitForStream(p.stream, grace); err != nil {
		log.WithError(err).Debug("live preview ended with error")
	}
	<-p.done
	p.cancel()
}

// abort drops the stream without waiting for transcripts.
func (p *previewSession) abort() {
	if p == nil {
		return
	}
	_ = p.stream.Close()
	<-p.done
	p.cancel()
}

func waitForStream(session ports.StreamingSession, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		_ = session.Close()
		return <-done
	}
}
