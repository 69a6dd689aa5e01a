// Package studyguide turns free text into a summary, key points and practice
// questions, either through Gemini or with a fixed offline placeholder.
package studyguide

import (
	"context"
	"errors"

	"github.com/fastprodman/campushub/internal/config"
)

var (
	ErrEmptyText       = errors.New("text is empty")
	ErrExternalService = errors.New("failed to generate study guide")
)

type PracticeQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type StudyGuide struct {
	Summary           string             `json:"summary"`
	KeyPoints         []string           `json:"keyPoints"`
	PracticeQuestions []PracticeQuestion `json:"practiceQuestions"`
}

type Generator interface {
	Generate(ctx context.Context, text string) (StudyGuide, error)
}

// New returns the Gemini client when an API key is configured and the
// placeholder otherwise.
func New(ctx context.Context, cfg config.StudyGuideConfig) (Generator, error) {
	if cfg.APIKey == "" {
		return Placeholder{}, nil
	}

	return NewGemini(ctx, cfg)
}
