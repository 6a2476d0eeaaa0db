package bootstrap

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"anamnesa/internal/audio"
	"anamnesa/internal/backend"
	"anamnesa/internal/config"
	"anamnesa/internal/logging"
	"anamnesa/internal/metrics"
	"anamnesa/internal/ports"
	"anamnesa/internal/providers/deepgram"
	"anamnesa/internal/recorder"
	"anamnesa/internal/render"
	"anamnesa/internal/telemetry"
	"anamnesa/internal/usecase"
)

// Version is reported in traces and runtime info.
const Version = "0.3.0"

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.InterviewController
	Config     config.Config
	Metrics    *metrics.Metrics
	Preview    ports.TranscriptionProvider
	Shutdown   telemetry.Shutdown
}

// Build wires all dependencies for the current runtime.
func Build(ctx context.Context, eventSink ports.EventSink, clipboard ports.Clipboard) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	if err := logging.Setup(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}, nil); err != nil {
		return Services{}, err
	}

	shutdown, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.TelemetryInsecure(),
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     Version,
		SampleRate:  cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return Services{}, err
	}

	layout, err := render.LoadLayout(cfg.Summary.LayoutPath)
	if err != nil {
		_ = shutdown(ctx)
		return Services{}, fmt.Errorf("failed to load summary layout: %w", err)
	}

	client, err := backend.NewClient(backend.Config{
		BaseURL:    cfg.Backend.BaseURL,
		StartPath:  cfg.Backend.StartPath,
		StepPath:   cfg.Backend.StepPath,
		FinishPath: cfg.Backend.FinishPath,
		Timeout:    cfg.BackendTimeout(),
	})
	if err != nil {
		_ = shutdown(ctx)
		return Services{}, err
	}

	audioCfg := ports.AudioConfig{
		SampleRate:  cfg.Audio.SampleRate,
		Channels:    cfg.Audio.Channels,
		InputFormat: cfg.Audio.InputFormat,
		InputDevice: cfg.Audio.InputDevice,
		Bitrate:     cfg.Audio.Bitrate,
	}
	rec := recorder.New(audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand), audioCfg, recorder.Options{
		ChunkSize: cfg.Audio.ChunkSize,
	})

	var preview ports.TranscriptionProvider
	if cfg.PreviewEnabled() {
		preview = deepgram.NewProvider(deepgram.Config{
			APIKey:      cfg.Deepgram.APIKey,
			APIBaseURL:  cfg.Deepgram.APIBaseURL,
			Model:       cfg.Deepgram.Model,
			Language:    cfg.Deepgram.Language,
			SmartFormat: cfg.SmartFormat(),
		})
	}

	counters := metrics.NewMetrics()
	controller := usecase.NewInterviewController(client, rec, clipboard, eventSink, usecase.Config{
		Layout:  layout,
		Preview: preview,
		Streaming: ports.StreamingConfig{
			SampleRate:     cfg.Audio.SampleRate,
			Channels:       cfg.Audio.Channels,
			InterimResults: true,
		},
		PreviewGrace: cfg.PreviewGrace(),
		Metrics:      counters,
	})

	log.WithFields(log.Fields{
		"backend": cfg.Backend.BaseURL,
		"preview": preview != nil,
		"version": Version,
	}).Info("interview client assembled")

	return Services{
		Controller: controller,
		Config:     cfg,
		Metrics:    counters,
		Preview:    preview,
		Shutdown:   shutdown,
	}, nil
}
