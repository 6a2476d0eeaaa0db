package domain

// State models the interview lifecycle.
type State string

const (
	StateInitializing      State = "initializing"
	StateLoadError         State = "load_error"
	StateAwaitingRecording State = "awaiting_recording"
	StateRecording         State = "recording"
	StateUploading         State = "uploading"
	StateAnswerReady       State = "answer_ready"
	StateFinishing         State = "finishing"
	StateFinished          State = "finished"
)

// Reason provides a structured reason for the latest transition.
type Reason string

const (
	ReasonStarting           Reason = "starting"
	ReasonInterviewLoaded    Reason = "interview_loaded"
	ReasonLoadFailed         Reason = "load_failed"
	ReasonRecordingStarted   Reason = "recording_started"
	ReasonMicFailed          Reason = "mic_failed"
	ReasonRecordingDiscarded Reason = "recording_discarded"
	ReasonUploading          Reason = "uploading"
	ReasonRecordingEmpty     Reason = "recording_empty"
	ReasonUploadFailed       Reason = "upload_failed"
	ReasonAnswerReady        Reason = "answer_ready"
	ReasonRetryRequested     Reason = "retry_requested"
	ReasonNextQuestion       Reason = "next_question"
	ReasonAnalyzing          Reason = "analyzing"
	ReasonSummaryReady       Reason = "summary_ready"
	ReasonSummaryFailed      Reason = "summary_failed"
)

// TranscriptKind identifies whether a stream event is partial or final text.
type TranscriptKind string

const (
	TranscriptKindPartial TranscriptKind = "partial"
	TranscriptKindFinal   TranscriptKind = "final"
)

// TranscriptEvent represents incremental transcription output from a preview provider.
type TranscriptEvent struct {
	Kind          TranscriptKind `json:"kind"`
	Text          string         `json:"text"`
	IsSpeechFinal bool           `json:"isSpeechFinal"`
}

// Question is the prompt shown for one step.
type Question struct {
	Text string `json:"text"`
}

// StartInfo is the backend's answer to a start interview call.
type StartInfo struct {
	Step       int      `json:"step"`
	TotalSteps int      `json:"total_steps"`
	Question   Question `json:"question"`
}

// StepResult is the backend's answer to a submitted step.
// NextStep and NextQuestion are only meaningful when Finished is false.
type StepResult struct {
	AnswerText   string    `json:"answer_text"`
	Finished     bool      `json:"finished"`
	NextStep     int       `json:"next_step,omitempty"`
	NextQuestion *Question `json:"next_question,omitempty"`
}

// Summary is the free-form set of findings produced at the end of an interview.
type Summary map[string]any

// Artifact is one finished recording, ready for upload.
type Artifact struct {
	Data     []byte
	MIMEType string
	Filename string
	Chunks   int
}

// Empty reports whether the recording captured no audio.
func (a Artifact) Empty() bool {
	return len(a.Data) == 0
}

// Snapshot is an immutable copy of controller state used for view projection.
type Snapshot struct {
	State          State
	Reason         Reason
	Session        *Session
	Question       Question
	Pending        *StepResult
	AnswerText     string
	Summary        Summary
	ErrCode        ErrorCode
	ErrDetail      string
	LiveTranscript string
}
