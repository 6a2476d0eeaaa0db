package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"anamnesa/internal/domain"
	"anamnesa/internal/metrics"
	"anamnesa/internal/ports"
	"anamnesa/internal/render"
	"anamnesa/internal/view"
)

const defaultPreviewGrace = 2 * time.Second

// Config controls optional interview behavior.
type Config struct {
	Layout       render.Layout
	Preview      ports.TranscriptionProvider
	Streaming    ports.StreamingConfig
	PreviewGrace time.Duration
	Metrics      *metrics.Metrics
}

// InterviewController drives one guided interview from the first question to the summary.
//
// Transitions are serialized: an operation claims the controller with begin and
// holds it across blocking recorder and backend calls, so at most one upload is
// in flight and a step is fully processed before the next can be recorded.
type InterviewController struct {
	backend   ports.InterviewBackend
	recorder  ports.Recorder
	clipboard ports.Clipboard
	events    ports.EventSink
	cfg       Config

	mu      sync.Mutex
	busy    bool
	snap    domain.Snapshot
	preview *previewSession
}

func NewInterviewController(
	backend ports.InterviewBackend,
	recorder ports.Recorder,
	clipboard ports.Clipboard,
	events ports.EventSink,
	cfg Config,
) *InterviewController {
	if len(cfg.Layout.Sections) == 0 {
		cfg.Layout = render.DefaultLayout()
	}
	if cfg.PreviewGrace <= 0 {
		cfg.PreviewGrace = defaultPreviewGrace
	}
	return &InterviewController{
		backend:   backend,
		recorder:  recorder,
		clipboard: clipboard,
		events:    events,
		cfg:       cfg,
		snap:      domain.Snapshot{State: domain.StateInitializing, Reason: domain.ReasonStarting},
	}
}

// Initialize loads the interview. It runs once; a failure is terminal.
func (c *InterviewController) Initialize(ctx context.Context) error {
	if err := c.begin(domain.StateInitializing); err != nil {
		return err
	}

	info, err := c.backend.StartInterview(ctx)
	c.cfg.Metrics.IncrementAPICall(err == nil)
	var session *domain.Session
	if err == nil {
		session, err = domain.NewSession(info.Step, info.TotalSteps)
	}
	if err != nil {
		loadErr := fmt.Errorf("%w: %w", domain.ErrLoad, err)
		c.cfg.Metrics.IncrementLoadFailures()
		c.fail(loadErr, func(s *domain.Snapshot) {
			s.State = domain.StateLoadError
			s.Reason = domain.ReasonLoadFailed
		})
		return loadErr
	}

	c.cfg.Metrics.IncrementInterviewsStarted()
	c.release(func(s *domain.Snapshot) {
		s.State = domain.StateAwaitingRecording
		s.Reason = domain.ReasonInterviewLoaded
		s.Session = session
		s.Question = info.Question
	})
	return nil
}

// Record starts capturing an answer for the current question.
func (c *InterviewController) Record(ctx context.Context) error {
	if err := c.begin(domain.StateAwaitingRecording); err != nil {
		return err
	}

	c.mu.Lock()
	c.snap.LiveTranscript = ""
	c.mu.Unlock()

	tap, preview := c.startPreview(ctx)
	if err := c.recorder.Start(ctx, tap); err != nil {
		preview.abort()
		c.cfg.Metrics.IncrementMicFailures()
		c.fail(err, func(s *domain.Snapshot) {
			s.Reason = domain.ReasonMicFailed
		})
		return err
	}

	c.mu.Lock()
	c.preview = preview
	c.mu.Unlock()

	c.release(func(s *domain.Snapshot) {
		s.State = domain.StateRecording
		s.Reason = domain.ReasonRecordingStarted
		s.ErrCode = ""
		s.ErrDetail = ""
	})
	return nil
}

// Stop ends the recording and uploads it as the answer to the current step.
func (c *InterviewController) Stop(ctx context.Context) error {
	if err := c.begin(domain.StateRecording); err != nil {
		return err
	}

	stepID := c.update(func(s *domain.Snapshot) {
		s.State = domain.StateUploading
		s.Reason = domain.ReasonUploading
	}).Session.CurrentStep

	artifact, stopErr := c.recorder.Stop()
	go c.takePreview().finish(c.cfg.PreviewGrace)

	if stopErr != nil {
		log.WithError(stopErr).Warn("audio capture did not stop cleanly")
	}
	if stopErr != nil && !artifact.Empty() {
		c.events.SessionError(domain.ErrorCodeAudioStop, stopErr.Error())
	}
	if artifact.Empty() {
		c.fail(domain.ErrEmptyRecording, func(s *domain.Snapshot) {
			s.State = domain.StateAwaitingRecording
			s.Reason = domain.ReasonRecordingEmpty
		})
		return domain.ErrEmptyRecording
	}

	result, err := c.backend.SubmitStep(ctx, artifact, stepID)
	c.cfg.Metrics.IncrementAPICall(err == nil)
	if err == nil && !result.Finished {
		err = c.currentSession().ValidateNext(result.NextStep)
		if err == nil && result.NextQuestion == nil {
			err = fmt.Errorf("%w: next question missing", domain.ErrProtocol)
		}
	}
	if err != nil {
		c.cfg.Metrics.IncrementUploadFailures()
		c.fail(err, func(s *domain.Snapshot) {
			s.State = domain.StateAwaitingRecording
			s.Reason = domain.ReasonUploadFailed
		})
		return err
	}

	c.cfg.Metrics.IncrementAnswersSubmitted()
	log.WithFields(log.Fields{
		"step":     stepID,
		"chunks":   artifact.Chunks,
		"bytes":    len(artifact.Data),
		"finished": result.Finished,
	}).Info("answer accepted")

	c.release(func(s *domain.Snapshot) {
		s.State = domain.StateAnswerReady
		s.Reason = domain.ReasonAnswerReady
		s.Pending = &result
		s.AnswerText = result.AnswerText
	})
	return nil
}

// Cancel discards the recording in progress.
func (c *InterviewController) Cancel() error {
	if err := c.begin(domain.StateRecording); err != nil {
		return err
	}

	if err := c.recorder.Discard(); err != nil {
		log.WithError(err).Warn("audio capture did not stop cleanly")
	}
	c.takePreview().abort()

	c.release(func(s *domain.Snapshot) {
		s.State = domain.StateAwaitingRecording
		s.Reason = domain.ReasonRecordingDiscarded
		s.LiveTranscript = ""
	})
	return nil
}

// Retry drops the accepted answer so the current question can be recorded again.
func (c *InterviewController) Retry() error {
	if err := c.begin(domain.StateAnswerReady); err != nil {
		return err
	}

	if err := c.recorder.Discard(); err != nil {
		log.WithError(err).Warn("failed to discard previous recording")
	}
	c.cfg.Metrics.IncrementRetries()
	c.release(func(s *domain.Snapshot) {
		s.State = domain.StateAwaitingRecording
		s.Reason = domain.ReasonRetryRequested
		s.Pending = nil
		s.AnswerText = ""
		s.LiveTranscript = ""
	})
	return nil
}

// Continue moves to the next question, or requests the summary after the last answer.
func (c *InterviewController) Continue(ctx context.Context) error {
	if err := c.begin(domain.StateAnswerReady); err != nil {
		return err
	}

	c.mu.Lock()
	pending := c.snap.Pending
	c.mu.Unlock()

	if pending == nil {
		c.release(func(*domain.Snapshot) {})
		return fmt.Errorf("%w: no accepted answer", domain.ErrInvalidTransition)
	}

	if !pending.Finished {
		c.release(func(s *domain.Snapshot) {
			s.Session.Advance(pending.NextStep)
			s.Question = *pending.NextQuestion
			s.State = domain.StateAwaitingRecording
			s.Reason = domain.ReasonNextQuestion
			s.Pending = nil
			s.AnswerText = ""
			s.LiveTranscript = ""
			s.ErrCode = ""
			s.ErrDetail = ""
		})
		return nil
	}

	c.update(func(s *domain.Snapshot) {
		s.State = domain.StateFinishing
		s.Reason = domain.ReasonAnalyzing
		s.Pending = nil
		s.LiveTranscript = ""
	})

	summary, err := c.backend.FinishInterview(ctx)
	c.cfg.Metrics.IncrementAPICall(err == nil)
	if err != nil {
		c.fail(err, func(s *domain.Snapshot) {
			s.Reason = domain.ReasonSummaryFailed
		})
		return err
	}

	c.cfg.Metrics.IncrementInterviewsCompleted()
	c.release(func(s *domain.Snapshot) {
		s.Session.Finished = true
		s.Summary = summary
		s.State = domain.StateFinished
		s.Reason = domain.ReasonSummaryReady
	})
	return nil
}

// CopySummary puts the rendered summary on the clipboard.
func (c *InterviewController) CopySummary(ctx context.Context) error {
	c.mu.Lock()
	state := c.snap.State
	summary := c.snap.Summary
	c.mu.Unlock()

	if state != domain.StateFinished {
		return fmt.Errorf("%w: %s", domain.ErrInvalidTransition, state)
	}
	if c.clipboard == nil {
		return errors.New("clipboard is not available")
	}

	text := render.Render(summary, c.cfg.Layout).PlainText()
	if err := c.clipboard.SetText(ctx, text); err != nil {
		c.events.SessionError(domain.ErrorCodeClipboard, err.Error())
		return fmt.Errorf("failed to copy summary: %w", err)
	}
	return nil
}

// View returns the current view model.
func (c *InterviewController) View() view.Model {
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	return view.Project(snap, c.cfg.Layout)
}

// Close releases the microphone if a recording is still running.
func (c *InterviewController) Close() {
	if c.recorder.Active() {
		if err := c.recorder.Discard(); err != nil {
			log.WithError(err).Warn("failed to release microphone on shutdown")
		}
	}
	c.takePreview().abort()
}

// begin claims the controller for a transition out of from.
func (c *InterviewController) begin(from domain.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap.State == domain.StateUploading {
		return domain.ErrUploadInFlight
	}
	if c.busy || c.snap.State != from {
		return fmt.Errorf("%w: %s", domain.ErrInvalidTransition, c.snap.State)
	}
	c.busy = true
	return nil
}

// update applies fn while keeping the controller claimed.
func (c *InterviewController) update(fn func(*domain.Snapshot)) domain.Snapshot {
	return c.apply(false, fn)
}

// release applies fn and ends the transition.
func (c *InterviewController) release(fn func(*domain.Snapshot)) domain.Snapshot {
	return c.apply(true, fn)
}

// fail records err on the snapshot, ends the transition and reports the error.
func (c *InterviewController) fail(err error, fn func(*domain.Snapshot)) {
	code := domain.CodeOf(err)
	detail := domain.ServerMessage(err)
	if detail == "" {
		detail = err.Error()
	}

	log.WithError(err).WithField("code", code).Warn("interview step failed")
	c.release(func(s *domain.Snapshot) {
		fn(s)
		s.ErrCode = code
		s.ErrDetail = detail
	})
	c.events.SessionError(code, detail)
}

func (c *InterviewController) apply(done bool, fn func(*domain.Snapshot)) domain.Snapshot {
	c.mu.Lock()
	fn(&c.snap)
	if done {
		c.busy = false
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	log.WithFields(log.Fields{"state": snap.State, "reason": snap.Reason}).Debug("interview state changed")
	c.events.ViewChanged(view.Project(snap, c.cfg.Layout))
	return snap
}

func (c *InterviewController) snapshotLocked() domain.Snapshot {
	snap := c.snap
	snap.Session = c.snap.Session.Clone()
	if c.snap.Pending != nil {
		pending := *c.snap.Pending
		snap.Pending = &pending
	}
	return snap
}

func (c *InterviewController) currentSession() *domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Session.Clone()
}

func (c *InterviewController) takePreview() *previewSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.preview
	c.preview = nil
	return p
}

func (c *InterviewController) setLiveTranscript(text string) {
	c.mu.Lock()
	switch {
	case c.snap.State == domain.StateRecording, c.snap.State == domain.StateUploading:
	case c.snap.State == domain.StateAwaitingRecording && c.busy:
	default:
		c.mu.Unlock()
		return
	}
	c.snap.LiveTranscript = text
	c.mu.Unlock()

	c.events.LiveTranscript(text)
}
