package studyguide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/genai"

	"github.com/fastprodman/campushub/internal/config"
	"github.com/fastprodman/campushub/internal/infra/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	apiVersion    = "v1beta"
	promptPattern = "Based on the following text, generate a study guide. Provide a concise summary, " +
		"3-5 bulleted key points, and 2-3 practice questions with their answers. Text: %q"
)

// Gemini generates guides with the genai SDK, asking for a JSON response
// shaped by guideSchema.
type Gemini struct {
	client *genai.Client
	model  string
	retry  retryConfig
	log    *slog.Logger
}

func NewGemini(ctx context.Context, cfg config.StudyGuideConfig) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: apiVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  cfg.Model,
		retry:  defaultRetryConfig(cfg.MaxRetries),
		log:    logging.Component("studyguide"),
	}, nil
}

func guideSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type:        genai.TypeString,
				Description: "A concise summary of the provided text.",
			},
			"keyPoints": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "A list of 3-5 key takeaways or important points from the text.",
			},
			"practiceQuestions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"question": {Type: genai.TypeString},
						"answer":   {Type: genai.TypeString},
					},
					Required: []string{"question", "answer"},
				},
				Description: "A list of 2-3 practice questions based on the text, with answers.",
			},
		},
		Required: []string{"summary", "keyPoints", "practiceQuestions"},
	}
}

func (g *Gemini) Generate(ctx context.Context, text string) (StudyGuide, error) {
	if strings.TrimSpace(text) == "" {
		return StudyGuide{}, ErrEmptyText
	}

	contents := genai.Text(fmt.Sprintf(promptPattern, text))
	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   guideSchema(),
	}

	guide, err := retryWithBackoff(ctx, g.retry, func() (StudyGuide, error) {
		return g.call(ctx, contents, genCfg)
	})
	if err != nil {
		g.log.Error("study guide generation failed", "model", g.model, "error", err)
		return StudyGuide{}, fmt.Errorf("%w: %w", ErrExternalService, err)
	}

	return guide, nil
}

func (g *Gemini) call(ctx context.Context, contents []*genai.Content, genCfg *genai.GenerateContentConfig) (StudyGuide, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, genCfg)
	if err != nil {
		if retryable(err) {
			return StudyGuide{}, fmt.Errorf("generate content: %w", err)
		}

		return StudyGuide{}, permanent(fmt.Errorf("generate content: %w", err))
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return StudyGuide{}, permanent(errors.New("empty response"))
	}

	var guide StudyGuide

	err = json.Unmarshal([]byte(raw), &guide)
	if err != nil {
		return StudyGuide{}, permanent(fmt.Errorf("decode study guide: %w", err))
	}

	return guide, nil
}

// retryable reports whether another attempt may succeed: server errors, rate
// limiting and transport failures. Other client errors and malformed
// responses will not improve on retry.
func retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError || apiErr.Code == http.StatusTooManyRequests
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}
