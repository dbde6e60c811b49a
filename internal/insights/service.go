package insights

import (
	"context"
	"fmt"
	"log"

	"github.com/lifedash/backend/internal/metrics"
	"github.com/lifedash/backend/internal/models"
)

// Writer turns a dashboard into a short weekly review.
type Writer struct {
	llm   LLMClient
	model string
}

// NewWriter picks the mock backend when asked to, or when no API key is set.
func NewWriter(apiKey, model string, mock bool) *Writer {
	if mock || apiKey == "" {
		log.Println("[insights] using mock data")
		return &Writer{llm: NewMockClient(), model: "mock"}
	}
	log.Println("[insights] using Anthropic API:", model)
	return &Writer{llm: NewAPIClient(apiKey, model), model: model}
}

func NewWriterWithClient(llm LLMClient, model string) *Writer {
	return &Writer{llm: llm, model: model}
}

func (w *Writer) ModelName() string {
	return w.model
}

func (w *Writer) WeeklyReview(ctx context.Context, d models.DashboardResponse) (*models.WeeklyInsight, error) {
	resp, err := w.llm.Generate(ctx, SystemPrompt(), BuildUserPrompt(d))
	if err != nil {
		metrics.InsightRequests.WithLabelValues("llm_error").Inc()
		return nil, fmt.Errorf("generate weekly review: %w", err)
	}

	insight, err := ParseResponse(resp.Content)
	if err != nil {
		metrics.InsightRequests.WithLabelValues("parse_error").Inc()
		return nil, fmt.Errorf("parse weekly review: %w", err)
	}

	metrics.InsightRequests.WithLabelValues("ok").Inc()
	log.Printf("[insights] weekly review generated (%d prompt / %d output tokens)", resp.PromptTokens, resp.OutputTokens)
	insight.Model = w.model
	return insight, nil
}
