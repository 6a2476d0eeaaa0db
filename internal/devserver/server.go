// Package devserver is a scripted interview backend for local development.
package devserver

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	fiberRecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// MinAudioBytes is the smallest upload accepted as an answer.
const MinAudioBytes = 100

const (
	keyStarted  = "started"
	keyAnswered = "answered"
)

// Paths locates the three interview endpoints.
type Paths struct {
	Start  string
	Step   string
	Finish string
}

type questionBody struct {
	Text string `json:"text"`
}

type startResponse struct {
	Step       int          `json:"step"`
	TotalSteps int          `json:"total_steps"`
	Question   questionBody `json:"question"`
}

type stepResponse struct {
	AnswerText   string        `json:"answer_text"`
	Finished     bool          `json:"finished"`
	NextStep     *int          `json:"next_step"`
	NextQuestion *questionBody `json:"next_question"`
}

type finishResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server answers the interview protocol from a questionnaire. Progress is
// kept per client in a cookie-backed session.
type Server struct {
	questionnaire Questionnaire
	store         *session.Store
}

// New builds the fiber application serving q at paths.
func New(q Questionnaire, paths Paths) *fiber.App {
	if paths.Start == "" {
		paths.Start = "/api/interview/start"
	}
	if paths.Step == "" {
		paths.Step = "/api/interview/step"
	}
	if paths.Finish == "" {
		paths.Finish = "/api/interview/finish"
	}

	s := &Server{questionnaire: q, store: session.New()}

	app := fiber.New(fiber.Config{
		BodyLimit:             32 * 1024 * 1024,
		DisableStartupMessage: true,
	})
	app.Use(fiberRecover.New())
	app.Use(requestLogger())
	app.Post(paths.Start, s.Start)
	app.Post(paths.Step, s.Step)
	app.Post(paths.Finish, s.Finish)
	return app
}

// Start resets the caller's progress and returns the first question.
func (s *Server) Start(ctx *fiber.Ctx) error {
	sess, err := s.store.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "load session")
	}
	sess.Set(keyStarted, true)
	sess.Set(keyAnswered, 0)
	if err := sess.Save(); err != nil {
		return errors.Wrap(err, "save session")
	}

	return ctx.JSON(startResponse{
		Step:       1,
		TotalSteps: len(s.questionnaire.Questions),
		Question:   questionBody{Text: s.questionnaire.Questions[0].Text},
	})
}

// Step accepts the recorded answer for step_id. The current step may be
// answered again until the next one is.
func (s *Server) Step(ctx *fiber.Ctx) error {
	sess, err := s.store.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "load session")
	}
	if started, _ := sess.Get(keyStarted).(bool); !started {
		return ctx.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "Interview has not been started"})
	}
	answered, _ := sess.Get(keyAnswered).(int)

	file, err := ctx.FormFile("audio")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "No audio file provided"})
	}
	if file.Filename == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "No selected file"})
	}

	stepID, err := strconv.Atoi(ctx.FormValue("step_id"))
	total := len(s.questionnaire.Questions)
	if err != nil || stepID < 1 || stepID > total || (stepID != answered && stepID != answered+1) {
		return ctx.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "Invalid step_id"})
	}

	if file.Size < MinAudioBytes {
		log.WithFields(log.Fields{"step": stepID, "size": file.Size}).Warn("audio upload too small")
		return ctx.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "Audio file is too short or empty"})
	}

	sess.Set(keyAnswered, stepID)
	if err := sess.Save(); err != nil {
		return errors.Wrap(err, "save session")
	}

	resp := stepResponse{
		AnswerText: s.questionnaire.answerFor(stepID),
		Finished:   stepID == total,
	}
	if !resp.Finished {
		next := stepID + 1
		resp.NextStep = &next
		resp.NextQuestion = &questionBody{Text: s.questionnaire.Questions[stepID].Text}
	}
	log.WithFields(log.Fields{"step": stepID, "size": file.Size, "finished": resp.Finished}).Info("answer accepted")
	return ctx.JSON(resp)
}

// Finish returns the scripted summary once every step has an answer.
func (s *Server) Finish(ctx *fiber.Ctx) error {
	sess, err := s.store.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "load session")
	}
	answered, _ := sess.Get(keyAnswered).(int)
	if answered < len(s.questionnaire.Questions) {
		return ctx.JSON(finishResponse{Success: false, Error: "Interview is not complete"})
	}
	return ctx.JSON(finishResponse{Success: true, Data: s.questionnaire.Summary})
}
