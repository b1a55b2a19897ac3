package extract

import (
	"encoding/json"
	"sort"
	"strings"
)

// Link is a validated recipe link. Links are only constructed by
// NormalizeLinks, so a Link always carries a non-empty title and an
// absolute http(s) URL.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Models disagree on field names between responses; accept the variants
// seen in practice. Matching is case-insensitive.
var (
	titleKeys = []string{"title", "description", "label"}
	urlKeys   = []string{"url", "link"}
)

// NormalizeLinks parses a raw JSON array of loosely shaped records into at
// most max valid links, preserving input order. Malformed records are
// dropped silently.
func NormalizeLinks(raw json.RawMessage, max int) []Link {
	if len(raw) == 0 {
		return nil
	}

	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	var links []Link
	for _, item := range items {
		title := strings.TrimSpace(fieldString(item, titleKeys))
		url := strings.TrimSpace(fieldString(item, urlKeys))
		if title == "" || url == "" {
			continue
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			continue
		}
		links = append(links, Link{Title: title, URL: url})
		if len(links) == max {
			break
		}
	}
	return links
}

// fieldString tries the aliases in priority order so a record carrying
// both "title" and "description" resolves the same way every time. Case
// variants of one alias are broken by sorted key order; map iteration
// must never decide the winner.
func fieldString(record map[string]any, keys []string) string {
	for _, key := range keys {
		var matches []string
		for recordKey, value := range record {
			if !strings.EqualFold(recordKey, key) {
				continue
			}
			if s, ok := value.(string); ok && s != "" {
				matches = append(matches, recordKey)
			}
		}
		if len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return record[matches[0]].(string)
	}
	return ""
}
