package domain

import "errors"

// ErrorCode identifies error categories surfaced to the UI.
type ErrorCode string

const (
	ErrorCodeStartup           ErrorCode = "startup"
	ErrorCodePermissionDenied  ErrorCode = "permission_denied"
	ErrorCodeDeviceUnavailable ErrorCode = "device_unavailable"
	ErrorCodeEmptyRecording    ErrorCode = "empty_recording"
	ErrorCodeAudioStop         ErrorCode = "audio_stop"
	ErrorCodeNetwork           ErrorCode = "network"
	ErrorCodeServer            ErrorCode = "server"
	ErrorCodeProtocol          ErrorCode = "protocol"
	ErrorCodeLoad              ErrorCode = "load"
	ErrorCodePreview           ErrorCode = "preview"
	ErrorCodeClipboard         ErrorCode = "clipboard"
	ErrorCodeInvalidState      ErrorCode = "invalid_state"
	ErrorCodeUnknown           ErrorCode = "unknown"
)

var (
	ErrPermissionDenied  = errors.New("microphone permission denied")
	ErrDeviceUnavailable = errors.New("audio input device unavailable")
	ErrNetwork           = errors.New("backend unreachable")
	ErrServer            = errors.New("backend reported an error")
	ErrProtocol          = errors.New("malformed backend response")
	ErrLoad              = errors.New("interview could not be loaded")

	ErrInvalidTransition = errors.New("action not allowed in current state")
	ErrUploadInFlight    = errors.New("an answer upload is still in progress")
	ErrAlreadyRecording  = errors.New("recording already in progress")
	ErrNotRecording      = errors.New("no active recording")
	ErrEmptyRecording    = errors.New("recording captured no audio")
)

// ServerError carries the message the backend put in its error field.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return ErrServer.Error()
	}
	return e.Message
}

func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

// CodeOf classifies err for presentation. Load failures win over their cause.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLoad):
		return ErrorCodeLoad
	case errors.Is(err, ErrPermissionDenied):
		return ErrorCodePermissionDenied
	case errors.Is(err, ErrDeviceUnavailable):
		return ErrorCodeDeviceUnavailable
	case errors.Is(err, ErrEmptyRecording):
		return ErrorCodeEmptyRecording
	case errors.Is(err, ErrNetwork):
		return ErrorCodeNetwork
	case errors.Is(err, ErrServer):
		return ErrorCodeServer
	case errors.Is(err, ErrProtocol):
		return ErrorCodeProtocol
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrUploadInFlight),
		errors.Is(err, ErrAlreadyRecording),
		errors.Is(err, ErrNotRecording):
		return ErrorCodeInvalidState
	default:
		return ErrorCodeUnknown
	}
}

// ServerMessage returns the backend-provided message carried by err, if any.
func ServerMessage(err error) string {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	return ""
}
