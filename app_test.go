package main

import (
	"errors"
	"strings"
	"testing"

	"anamnesa/internal/domain"
)

func TestErrorPayload(t *testing.T) {
	t.Parallel()

	cases := map[domain.ErrorCode]string{
		domain.ErrorCodeStartup:          "Aplikasi gagal dimulai.",
		domain.ErrorCodePermissionDenied: "Gagal mengakses mikrofon. Pastikan izin diberikan.",
		domain.ErrorCodeNetwork:          "Gagal mengirim data.",
		domain.ErrorCodeServer:           "Error: Audio too short",
		domain.ErrorCodeClipboard:        "Gagal menyalin ke clipboard.",
	}
	for code, want := range cases {
		code := code
		want := want
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()
			payload := errorPayload(code, "Audio too short")
			if payload["message"] != want {
				t.Fatalf("unexpected message: %q", payload["message"])
			}
			if payload["code"] != string(code) || payload["detail"] != "Audio too short" {
				t.Fatalf("unexpected payload: %+v", payload)
			}
		})
	}
}

func TestRequireReady(t *testing.T) {
	t.Parallel()

	app := &App{}
	if err := app.requireReady(); err == nil {
		t.Fatalf("expected uninitialized error")
	}

	bootErr := errors.New("boot")
	app.bootErr = bootErr
	if err := app.requireReady(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
}

func TestGetViewWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := &App{}
	model := app.GetView()
	if model.State != domain.StateInitializing || model.Status != "Memuat wawancara..." {
		t.Fatalf("unexpected view: %+v", model)
	}

	app.bootErr = errors.New("boot")
	model = app.GetView()
	if model.State != domain.StateLoadError || model.ErrorCode != domain.ErrorCodeStartup {
		t.Fatalf("unexpected boot view: %+v", model)
	}
	if model.Status != "Aplikasi gagal dimulai." {
		t.Fatalf("unexpected boot status: %q", model.Status)
	}
}

func TestBoundMethodsBeforeStartup(t *testing.T) {
	t.Parallel()

	app := &App{bootErr: errors.New("boot")}
	if _, err := app.Record(); err == nil {
		t.Fatalf("expected record to fail before startup")
	}
	if err := app.CopySummary(); err == nil {
		t.Fatalf("expected copy to fail before startup")
	}
	if info := app.GetRuntimeInfo(); info["error"] != "boot" {
		t.Fatalf("unexpected runtime info: %+v", info)
	}
	if snap := app.GetMetrics(); snap.InterviewsStarted != 0 {
		t.Fatalf("unexpected metrics: %+v", snap)
	}
}

func TestFrontendCallsEveryUserAction(t *testing.T) {
	t.Parallel()

	page, err := assets.ReadFile("frontend/dist/index.html")
	if err != nil {
		t.Fatalf("read embedded page: %v", err)
	}
	for _, action := range []string{"Record", "Stop", "Cancel", "Retry", "Continue", "CopySummary", "GetView"} {
		if !strings.Contains(string(page), "app()."+action+"(") {
			t.Fatalf("page never calls %s", action)
		}
	}
	if !strings.Contains(string(page), `show($("cancel"), model.recording)`) {
		t.Fatalf("cancel control must follow the recording flag")
	}
}
