// Package ai builds the instruction prompts sent to the hosted model. All
// builders are pure functions over their inputs.
package ai

import (
	"fmt"
	"strings"

	"github.com/maxdokukin/haaangry-backend/internal/catalog"
)

// SearchMedium selects the target medium for a recipe link search.
type SearchMedium string

const (
	MediumArticle SearchMedium = "article"
	MediumVideo   SearchMedium = "video"
)

const searchRoleSection = `<ROLE>
You are an assistant that finds cooking recipes on the public web for a
short-form food video. You are given the video's title and description and
must locate recipe pages matching the most likely dish.
</ROLE>`

const articleTaskSection = `<TASK>
Search the public web for up to 3 high-quality recipe ARTICLES that match the
most likely dish. Prefer reputable food sites and original sources. Avoid
spam, listicles without recipes, and video-only pages.
</TASK>`

const videoTaskSection = `<TASK>
Search the public web for up to 3 high-quality recipe VIDEOS that match the
most likely dish. Prefer established cooking channels and full walkthroughs.
Avoid shorts without instructions and unrelated compilations.
</TASK>`

const linksOutputSection = `<OUTPUT_FORMAT>
Return ONLY a valid JSON array with this schema:
[ {"title": "string", "url": "https://..."} ]
At most 3 entries. No markdown. No commentary. Ensure absolute HTTP(S) URLs.
</OUTPUT_FORMAT>`

// BuildRecipeSearchPrompt builds the user prompt for one search path. Empty
// title and description are rendered as "N/A" so the model still receives a
// well-formed request.
func BuildRecipeSearchPrompt(medium SearchMedium, title, description string) string {
	var sb strings.Builder
	sb.WriteString(searchRoleSection)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Video title: %s\n", orNA(title)))
	sb.WriteString(fmt.Sprintf("Video description: %s\n\n", orNA(description)))
	if medium == MediumVideo {
		sb.WriteString(videoTaskSection)
	} else {
		sb.WriteString(articleTaskSection)
	}
	sb.WriteString("\n\n")
	sb.WriteString(linksOutputSection)
	return sb.String()
}

const recommendRoleSection = `<ROLE>
You are an assistant that picks restaurants and menu items a viewer is most
likely to order after watching a food video.
</ROLE>`

const recommendOutputSection = `<OUTPUT_FORMAT>
Return ONLY a valid JSON object with this schema:
{"restaurants": [ {"id": "string", "items": ["item name", ...]} ]}
At most 3 restaurants, at most 3 item names each. Use only ids and item
names that appear in the catalog. No markdown. No commentary.
</OUTPUT_FORMAT>`

// BuildRecommendationPrompt embeds a minimized projection of the catalog
// (ids, names, prices and tags only) to bound prompt size.
func BuildRecommendationPrompt(title, description string, restaurants []catalog.Restaurant, menuFor func(string) []catalog.MenuItem) string {
	var sb strings.Builder
	sb.WriteString(recommendRoleSection)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Video title: %s\n", orNA(title)))
	sb.WriteString(fmt.Sprintf("Video description: %s\n\n", orNA(description)))

	sb.WriteString("<CATALOG>\n")
	for _, r := range restaurants {
		sb.WriteString(fmt.Sprintf("restaurant id=%s name=%q\n", r.ID, r.Name))
		for _, m := range menuFor(r.ID) {
			sb.WriteString(fmt.Sprintf("  item name=%q price_cents=%d", m.Name, m.PriceCents))
			if len(m.Tags) > 0 {
				sb.WriteString(" tags=" + strings.Join(m.Tags, ","))
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("</CATALOG>\n\n")
	sb.WriteString(recommendOutputSection)
	return sb.String()
}

const intentRoleSection = `<ROLE>
You classify a short text or voice snippet from a hungry user into a concise
food intent, like "Spicy Ramen" or "Birria Tacos".
</ROLE>`

const intentOutputSection = `<OUTPUT_FORMAT>
Respond with the intent only: two to four words, title case, no punctuation,
no explanation.
</OUTPUT_FORMAT>`

// BuildIntentPrompt builds the classification prompt for /llm/text and
// /llm/voice snippets.
func BuildIntentPrompt(snippet string) string {
	var sb strings.Builder
	sb.WriteString(intentRoleSection)
	sb.WriteString("\n\n")
	sb.WriteString("Snippet: ")
	sb.WriteString(snippet)
	sb.WriteString("\n\n")
	sb.WriteString(intentOutputSection)
	return sb.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
