package extract

import (
	"encoding/json"
	"testing"
)

func TestArrayRecoversEmbeddedJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantOK  bool
	}{
		{
			name:   "bare array",
			text:   `[{"title":"a","url":"https://x.com"}]`,
			want:   `[{"title":"a","url":"https://x.com"}]`,
			wantOK: true,
		},
		{
			name:   "array wrapped in prose",
			text:   "Here are the links:\n[{\"title\":\"a\",\"url\":\"https://x.com\"}]\nHope that helps!",
			want:   `[{"title":"a","url":"https://x.com"}]`,
			wantOK: true,
		},
		{
			name:   "array in markdown fence",
			text:   "```json\n[1, 2, 3]\n```",
			want:   `[1, 2, 3]`,
			wantOK: true,
		},
		{
			name:   "no brackets",
			text:   "sorry, I could not find any recipes",
			wantOK: false,
		},
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
		{
			name:   "unbalanced span does not parse",
			text:   "[1, 2",
			wantOK: false,
		},
		{
			name: "two independent blocks span does not parse",
			text: `[1] and also [2]`,
			// first open to last close covers "[1] and also [2]"
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := Array(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("Array(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if string(raw) != tt.want {
				t.Errorf("Array(%q) = %s, want %s", tt.text, raw, tt.want)
			}
		})
	}
}

func TestObjectRecoversEmbeddedJSON(t *testing.T) {
	raw, ok := Object("The answer is {\"restaurants\": []} as requested.")
	if !ok {
		t.Fatal("expected object to be recovered")
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("recovered span does not parse: %v", err)
	}
	if _, ok := parsed["restaurants"]; !ok {
		t.Error("expected restaurants key in recovered object")
	}
}

func TestObjectPrefersOuterSpan(t *testing.T) {
	// Nested objects parse as one span from first { to last }.
	raw, ok := Object(`{"a": {"b": 1}}`)
	if !ok {
		t.Fatal("expected nested object to be recovered")
	}
	if string(raw) != `{"a": {"b": 1}}` {
		t.Errorf("unexpected span: %s", raw)
	}
}
