package devserver

import (
	_ "embed"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed questionnaire.yaml
var defaultQuestionnaire []byte

// Question is one scripted interview step. Answer is returned as the transcript.
type Question struct {
	Text   string `yaml:"text"`
	Answer string `yaml:"answer"`
}

// Questionnaire is the scripted interview served by the development backend.
type Questionnaire struct {
	Questions []Question     `yaml:"questions"`
	Summary   map[string]any `yaml:"summary"`
}

// DefaultQuestionnaire returns the built-in screening interview.
func DefaultQuestionnaire() Questionnaire {
	q, err := ParseQuestionnaire(defaultQuestionnaire)
	if err != nil {
		panic(err)
	}
	return q
}

// LoadQuestionnaire reads path, or returns the built-in interview when path is empty.
func LoadQuestionnaire(path string) (Questionnaire, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultQuestionnaire(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Questionnaire{}, errors.Wrapf(err, "read questionnaire %s", path)
	}
	return ParseQuestionnaire(raw)
}

func ParseQuestionnaire(raw []byte) (Questionnaire, error) {
	var q Questionnaire
	if err := yaml.Unmarshal(raw, &q); err != nil {
		return Questionnaire{}, errors.Wrap(err, "parse questionnaire")
	}
	if len(q.Questions) == 0 {
		return Questionnaire{}, errors.New("questionnaire has no questions")
	}
	for i := range q.Questions {
		q.Questions[i].Text = strings.TrimSpace(q.Questions[i].Text)
		if q.Questions[i].Text == "" {
			return Questionnaire{}, errors.Errorf("question %d has no text", i+1)
		}
	}
	if q.Summary == nil {
		q.Summary = map[string]any{}
	}
	return q, nil
}

// answerFor is the canned transcript for step (1-based).
func (q Questionnaire) answerFor(step int) string {
	if answer := strings.TrimSpace(q.Questions[step-1].Answer); answer != "" {
		return answer
	}
	return "Jawaban untuk pertanyaan " + q.Questions[step-1].Text
}
