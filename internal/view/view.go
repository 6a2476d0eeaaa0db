// Package view projects interview state into the model consumed by the UI.
package view

import (
	"fmt"
	"math"

	"anamnesa/internal/domain"
	"anamnesa/internal/render"
)

// Model is everything the frontend needs to draw the interview.
type Model struct {
	State           domain.State     `json:"state"`
	Question        string           `json:"question"`
	Step            int              `json:"step"`
	TotalSteps      int              `json:"totalSteps"`
	StepLabel       string           `json:"stepLabel"`
	Progress        float64          `json:"progress"`
	ProgressPercent int              `json:"progressPercent"`
	Recording       bool             `json:"recording"`
	RecordEnabled   bool             `json:"recordEnabled"`
	Status          string           `json:"status"`
	ErrorCode       domain.ErrorCode `json:"errorCode,omitempty"`
	AnswerText      string           `json:"answerText,omitempty"`
	ShowAnswer      bool             `json:"showAnswer"`
	CanRetry        bool             `json:"canRetry"`
	CanContinue     bool             `json:"canContinue"`
	ContinueLabel   string           `json:"continueLabel,omitempty"`
	ShowResult      bool             `json:"showResult"`
	Result          *render.Document `json:"result,omitempty"`
	ResultError     string           `json:"resultError,omitempty"`
	LiveTranscript  string           `json:"liveTranscript,omitempty"`
}

// Project derives the view model from a snapshot. It has no side effects.
func Project(snap domain.Snapshot, layout render.Layout) Model {
	model := Model{
		State:          snap.State,
		Status:         StatusMessage(snap.Reason),
		ErrorCode:      snap.ErrCode,
		LiveTranscript: snap.LiveTranscript,
	}

	if snap.Session != nil {
		model.Step = snap.Session.CurrentStep
		model.TotalSteps = snap.Session.TotalSteps
		model.StepLabel = fmt.Sprintf("Langkah %d dari %d", snap.Session.CurrentStep, snap.Session.TotalSteps)
		model.Progress = snap.Session.Progress()
		model.ProgressPercent = int(math.Round(model.Progress * 100))
		model.Question = snap.Question.Text
	}

	if snap.ErrCode != "" && snap.State != domain.StateFinishing {
		model.Status = ErrorMessage(snap.ErrCode, snap.ErrDetail)
	}

	switch snap.State {
	case domain.StateAwaitingRecording:
		model.RecordEnabled = true
	case domain.StateRecording:
		model.Recording = true
		model.RecordEnabled = true
	case domain.StateAnswerReady:
		model.AnswerText = snap.AnswerText
		model.ShowAnswer = true
		model.CanRetry = true
		model.CanContinue = true
		model.ContinueLabel = labelNextQuestion
		if snap.Pending != nil && snap.Pending.Finished {
			model.ContinueLabel = labelFinish
		}
	case domain.StateFinishing:
		model.ShowResult = true
		if snap.ErrCode != "" {
			model.ResultError = resultErrorMessage(snap.ErrCode)
		}
	case domain.StateFinished:
		model.ShowResult = true
		model.StepLabel = labelDone
		doc := render.Render(snap.Summary, layout)
		model.Result = &doc
	}

	return model
}
