package studyguide

import (
	"context"
	"strings"
)

// Placeholder returns the same guide for any input. It is used when no API key
// is configured.
type Placeholder struct{}

func (Placeholder) Generate(_ context.Context, text string) (StudyGuide, error) {
	if strings.TrimSpace(text) == "" {
		return StudyGuide{}, ErrEmptyText
	}

	return StudyGuide{
		Summary: "This is a mock summary because the Gemini API key is not configured. " +
			"The provided text would be summarized here, highlighting the main ideas and arguments.",
		KeyPoints: []string{
			"This is a key point extracted from the text.",
			"This is another important concept or fact.",
			"And a third key takeaway for quick review.",
		},
		PracticeQuestions: []PracticeQuestion{
			{
				Question: "What is the main topic of the text? (Mock Question)",
				Answer:   "The main topic is whatever the provided text was about.",
			},
			{
				Question: "Can you explain a specific concept? (Mock Question)",
				Answer:   "Yes, this answer would elaborate on a specific concept from the text.",
			},
		},
	}, nil
}
