// Package intent classifies short text or voice snippets into a concise
// food intent like "Spicy Ramen".
package intent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maxdokukin/haaangry-backend/internal/services/ai"
)

// Gateway is the slice of the model client this service needs.
type Gateway interface {
	Complete(ctx context.Context, system, user string, enableTools bool) (string, error)
}

// keywordIntents is the deterministic fallback table, checked in order so
// overlapping keywords resolve consistently.
var keywordIntents = []struct {
	keywords []string
	intent   string
}{
	{[]string{"ramen"}, "Spicy Ramen"},
	{[]string{"taco", "birria"}, "Birria Tacos"},
	{[]string{"sushi", "nigiri"}, "Sushi"},
	{[]string{"burger", "mcdonald", "qpc"}, "Cheeseburger"},
	{[]string{"korean"}, "Korean Street Food"},
}

const defaultIntent = "Street Food"

type Service struct {
	gateway Gateway
}

func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// Classify returns a short food intent for the snippet. The model answer is
// used when it looks like a plausible intent line; otherwise the keyword
// table decides, defaulting to a generic intent. Classification never
// fails, an unconfigured or erroring model just means fallback.
func (s *Service) Classify(ctx context.Context, snippet string) string {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return defaultIntent
	}

	if s.gateway != nil {
		text, err := s.gateway.Complete(ctx, "", ai.BuildIntentPrompt(snippet), false)
		if err == nil {
			if intent := sanitizeIntent(text); intent != "" {
				return intent
			}
		} else {
			slog.DebugContext(ctx, "Intent model call failed, using keyword table", "error", err)
		}
	}

	return FromText(snippet)
}

// sanitizeIntent keeps the first line of the model answer if it is short
// enough to be an intent rather than an explanation.
func sanitizeIntent(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	line = strings.Trim(line, `"'.`)
	if line == "" || len(strings.Fields(line)) > 6 {
		return ""
	}
	return line
}

// FromText is the keyword-table classification on its own, used directly
// where a model round trip is not worth the latency.
func FromText(snippet string) string {
	lower := strings.ToLower(snippet)
	for _, row := range keywordIntents {
		for _, kw := range row.keywords {
			if strings.Contains(lower, kw) {
				return row.intent
			}
		}
	}
	return defaultIntent
}
