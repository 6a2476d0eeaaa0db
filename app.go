package main

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"anamnesa/internal/bootstrap"
	"anamnesa/internal/config"
	"anamnesa/internal/domain"
	"anamnesa/internal/metrics"
	"anamnesa/internal/telemetry"
	"anamnesa/internal/usecase"
	"anamnesa/internal/view"
)

const (
	eventView    = "anamnesa:view"
	eventPartial = "anamnesa:partial"
	eventError   = "anamnesa:error"

	shutdownTimeout = 5 * time.Second
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	controller *usecase.InterviewController
	cfg        config.Config
	metrics    *metrics.Metrics
	shutdown   telemetry.Shutdown
	bootErr    error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(ctx, a, &wailsClipboard{})
	if err != nil {
		a.bootErr = err
		log.WithError(err).Error("startup failed")
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.metrics = services.Metrics
	a.shutdown = services.Shutdown

	go func() {
		if err := a.controller.Initialize(ctx); err != nil {
			log.WithError(err).Warn("interview failed to load")
		}
	}()
}

func (a *App) beforeClose(_ context.Context) bool {
	if a.controller != nil {
		a.controller.Close()
	}
	return false
}

func (a *App) onShutdown(_ context.Context) {
	if a.shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to flush traces")
	}
}

// Record starts recording an answer to the current question.
func (a *App) Record() (view.Model, error) {
	if err := a.requireReady(); err != nil {
		return a.GetView(), err
	}
	err := a.controller.Record(a.ctx)
	return a.controller.View(), err
}

// Stop ends the recording and submits it.
func (a *App) Stop() (view.Model, error) {
	if err := a.requireReady(); err != nil {
		return a.GetView(), err
	}
	err := a.controller.Stop(a.ctx)
	return a.controller.View(), err
}

// Cancel discards an in-progress recording.
func (a *App) Cancel() (view.Model, error) {
	if err := a.requireReady(); err != nil {
		return a.GetView(), err
	}
	err := a.controller.Cancel()
	return a.controller.View(), err
}

// Retry discards the transcribed answer so the question can be recorded again.
func (a *App) Retry() (view.Model, error) {
	if err := a.requireReady(); err != nil {
		return a.GetView(), err
	}
	err := a.controller.Retry()
	return a.controller.View(), err
}

// Continue moves to the next question or requests the summary after the last one.
func (a *App) Continue() (view.Model, error) {
	if err := a.requireReady(); err != nil {
		return a.GetView(), err
	}
	err := a.controller.Continue(a.ctx)
	return a.controller.View(), err
}

// CopySummary writes the rendered summary to the clipboard.
func (a *App) CopySummary() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.controller.CopySummary(a.ctx)
}

// GetView returns the current view model.
func (a *App) GetView() view.Model {
	if a.controller == nil {
		model := view.Model{State: domain.StateInitializing, Status: view.StatusMessage(domain.ReasonStarting)}
		if a.bootErr != nil {
			model.State = domain.StateLoadError
			model.ErrorCode = domain.ErrorCodeStartup
			model.Status = view.ErrorMessage(domain.ErrorCodeStartup, a.bootErr.Error())
		}
		return model
	}
	return a.controller.View()
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	preview := "off"
	if a.cfg.PreviewEnabled() {
		preview = "Deepgram " + a.cfg.Deepgram.Model
	}
	return map[string]string{
		"version":          bootstrap.Version,
		"backend":          a.cfg.Backend.BaseURL,
		"preview":          preview,
		"language":         a.cfg.Deepgram.Language,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
	}
}

// GetMetrics returns the interview counters for this process.
func (a *App) GetMetrics() metrics.Snapshot {
	return a.metrics.GetSnapshot()
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// ViewChanged pushes the projected view to the frontend.
func (a *App) ViewChanged(model view.Model) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventView, model)
}

// LiveTranscript emits live preview text.
func (a *App) LiveTranscript(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPartial, map[string]string{"text": text})
}

// SessionError emits errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, errorPayload(code, detail))
}

func errorPayload(code domain.ErrorCode, detail string) map[string]string {
	return map[string]string{
		"code":    string(code),
		"message": view.ErrorMessage(code, detail),
		"detail":  detail,
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
