package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lifedash/backend/internal/models"
)

const (
	maxHeadlineLen = 120
	maxHighlights  = 6
)

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseResponse decodes the model's JSON answer, tolerating a code fence.
func ParseResponse(responseBody string) (*models.WeeklyInsight, error) {
	cleaned := stripCodeFences(responseBody)

	var insight models.WeeklyInsight
	if err := json.Unmarshal([]byte(cleaned), &insight); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateInsight(&insight); err != nil {
		return nil, err
	}
	return &insight, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateInsight(in *models.WeeklyInsight) error {
	var errs []string

	in.Headline = strings.TrimSpace(in.Headline)
	in.Suggestion = strings.TrimSpace(in.Suggestion)

	if in.Headline == "" {
		errs = append(errs, "headline is empty")
	} else if len(in.Headline) > maxHeadlineLen {
		errs = append(errs, fmt.Sprintf("headline too long (%d chars)", len(in.Headline)))
	}
	if in.Suggestion == "" {
		errs = append(errs, "suggestion is empty")
	}

	kept := in.Highlights[:0]
	for _, h := range in.Highlights {
		if h = strings.TrimSpace(h); h != "" {
			kept = append(kept, h)
		}
	}
	in.Highlights = kept
	if len(in.Highlights) == 0 {
		errs = append(errs, "no highlights")
	}
	if len(in.Highlights) > maxHighlights {
		in.Highlights = in.Highlights[:maxHighlights]
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
