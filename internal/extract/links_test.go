package extract

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeLinks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		max  int
		want []Link
	}{
		{
			name: "plain records",
			raw:  `[{"title":"Ramen at home","url":"https://food.example/ramen"}]`,
			max:  3,
			want: []Link{{Title: "Ramen at home", URL: "https://food.example/ramen"}},
		},
		{
			name: "alias and case variants",
			raw:  `[{"DESCRIPTION":"Birria guide","LINK":"https://food.example/birria"},{"label":"Gyoza","link":"http://food.example/gyoza"}]`,
			max:  3,
			want: []Link{
				{Title: "Birria guide", URL: "https://food.example/birria"},
				{Title: "Gyoza", URL: "http://food.example/gyoza"},
			},
		},
		{
			name: "title takes priority over description",
			raw:  `[{"title":"Proper title","description":"Longer description","url":"https://food.example/x"}]`,
			max:  3,
			want: []Link{{Title: "Proper title", URL: "https://food.example/x"}},
		},
		{
			name: "drops non-http urls",
			raw:  `[{"title":"ftp link","url":"ftp://food.example"},{"title":"relative","url":"/ramen"},{"title":"ok","url":"https://food.example"}]`,
			max:  3,
			want: []Link{{Title: "ok", URL: "https://food.example"}},
		},
		{
			name: "drops empty after trim",
			raw:  `[{"title":"   ","url":"https://food.example"},{"title":"ok","url":"  https://food.example  "}]`,
			max:  3,
			want: []Link{{Title: "ok", URL: "https://food.example"}},
		},
		{
			name: "caps at max preserving order",
			raw:  `[{"title":"a","url":"https://x/1"},{"title":"b","url":"https://x/2"},{"title":"c","url":"https://x/3"},{"title":"d","url":"https://x/4"}]`,
			max:  3,
			want: []Link{
				{Title: "a", URL: "https://x/1"},
				{Title: "b", URL: "https://x/2"},
				{Title: "c", URL: "https://x/3"},
			},
		},
		{
			name: "not an array",
			raw:  `{"title":"a","url":"https://x/1"}`,
			max:  3,
			want: nil,
		},
		{
			name: "empty input",
			raw:  ``,
			max:  3,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLinks(json.RawMessage(tt.raw), tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeLinks() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeLinksDeterministicOnDuplicateAliases(t *testing.T) {
	// A record carrying two case variants of the same alias must resolve
	// identically on every run, not by map iteration order. "URL" sorts
	// before "url", so it wins.
	raw := json.RawMessage(`[{"title":"dup","URL":"https://x/upper","url":"https://x/lower"}]`)
	want := []Link{{Title: "dup", URL: "https://x/upper"}}

	for i := 0; i < 50; i++ {
		if got := NormalizeLinks(raw, 3); !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d: NormalizeLinks() = %+v, want %+v", i, got, want)
		}
	}
}

func TestNormalizeLinksIdempotent(t *testing.T) {
	links := []Link{
		{Title: "a", URL: "https://x/1"},
		{Title: "b", URL: "https://x/2"},
	}
	raw, _ := json.Marshal(links)

	got := NormalizeLinks(raw, 3)
	if !reflect.DeepEqual(got, links) {
		t.Errorf("normalizing an already-normalized list changed it: %+v", got)
	}
}
