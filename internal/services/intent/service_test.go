package intent

import (
	"context"
	"errors"
	"testing"
)

type staticGateway struct {
	text string
	err  error
}

func (g *staticGateway) Complete(ctx context.Context, system, user string, enableTools bool) (string, error) {
	return g.text, g.err
}

func TestFromText(t *testing.T) {
	tests := []struct {
		snippet string
		want    string
	}{
		{"late night RAMEN craving", "Spicy Ramen"},
		{"birria please", "Birria Tacos"},
		{"where can I get tacos", "Birria Tacos"},
		{"fresh nigiri", "Sushi"},
		{"sushi time", "Sushi"},
		{"a mcdonalds qpc", "Cheeseburger"},
		{"korean corn dogs", "Korean Street Food"},
		{"just hungry", "Street Food"},
		{"", "Street Food"},
	}

	for _, tt := range tests {
		if got := FromText(tt.snippet); got != tt.want {
			t.Errorf("FromText(%q) = %q, want %q", tt.snippet, got, tt.want)
		}
	}
}

func TestClassifyUsesModelAnswer(t *testing.T) {
	svc := NewService(&staticGateway{text: "Korean Fried Chicken\n"})

	if got := svc.Classify(context.Background(), "that crunchy chicken video"); got != "Korean Fried Chicken" {
		t.Errorf("Classify() = %q, want model answer", got)
	}
}

func TestClassifyRejectsRambledAnswer(t *testing.T) {
	svc := NewService(&staticGateway{
		text: "Well, based on the snippet you gave me I would guess the user is craving ramen",
	})

	// Too long for an intent line, so the keyword table decides.
	if got := svc.Classify(context.Background(), "ramen tonight"); got != "Spicy Ramen" {
		t.Errorf("Classify() = %q, want keyword fallback", got)
	}
}

func TestClassifyFallsBackOnGatewayError(t *testing.T) {
	svc := NewService(&staticGateway{err: errors.New("down")})

	if got := svc.Classify(context.Background(), "sushi run"); got != "Sushi" {
		t.Errorf("Classify() = %q, want Sushi", got)
	}
}

func TestClassifyEmptySnippet(t *testing.T) {
	svc := NewService(&staticGateway{text: "Anything"})

	if got := svc.Classify(context.Background(), "   "); got != "Street Food" {
		t.Errorf("Classify() = %q, want default intent", got)
	}
}

func TestClassifyNilGateway(t *testing.T) {
	svc := NewService(nil)

	if got := svc.Classify(context.Background(), "taco tuesday"); got != "Birria Tacos" {
		t.Errorf("Classify() = %q, want Birria Tacos", got)
	}
}
