package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want ErrorCode
	}{
		{nil, ""},
		{fmt.Errorf("%w: %w", ErrLoad, ErrNetwork), ErrorCodeLoad},
		{fmt.Errorf("ffmpeg: %w", ErrPermissionDenied), ErrorCodePermissionDenied},
		{ErrDeviceUnavailable, ErrorCodeDeviceUnavailable},
		{ErrEmptyRecording, ErrorCodeEmptyRecording},
		{fmt.Errorf("post: %w", ErrNetwork), ErrorCodeNetwork},
		{&ServerError{Message: "Audio too short"}, ErrorCodeServer},
		{fmt.Errorf("decode: %w", ErrProtocol), ErrorCodeProtocol},
		{ErrUploadInFlight, ErrorCodeInvalidState},
		{ErrAlreadyRecording, ErrorCodeInvalidState},
		{errors.New("boom"), ErrorCodeUnknown},
	}
	for _, tc := range cases {
		if got := CodeOf(tc.err); got != tc.want {
			t.Fatalf("CodeOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestServerError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("step: %w", &ServerError{Message: "Audio too short"})
	if !errors.Is(err, ErrServer) {
		t.Fatalf("expected server error to match ErrServer")
	}
	if got := ServerMessage(err); got != "Audio too short" {
		t.Fatalf("unexpected server message %q", got)
	}
	if got := (&ServerError{}).Error(); got != ErrServer.Error() {
		t.Fatalf("unexpected fallback message %q", got)
	}
	if got := ServerMessage(ErrNetwork); got != "" {
		t.Fatalf("expected no server message, got %q", got)
	}
}
