// Package recipes finds recipe links for a feed video by fanning out two
// concurrent model searches, one for articles and one for videos.
package recipes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/maxdokukin/haaangry-backend/internal/cache"
	"github.com/maxdokukin/haaangry-backend/internal/extract"
	"github.com/maxdokukin/haaangry-backend/internal/metrics"
	"github.com/maxdokukin/haaangry-backend/internal/services/ai"
	"github.com/maxdokukin/haaangry-backend/internal/services/anthropic"
	"github.com/maxdokukin/haaangry-backend/internal/worker"
)

// maxLinksPerMedium caps each search path, so a result carries at most six
// links overall.
const maxLinksPerMedium = 3

const cacheTTL = 15 * time.Minute

// Gateway is the slice of the model client this service needs.
type Gateway interface {
	Complete(ctx context.Context, system, user string, enableTools bool) (string, error)
}

// TaggedLink is one recipe link labelled with its medium.
type TaggedLink struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Result is the response payload for one video's recipe search.
type Result struct {
	VideoID string       `json:"video_id"`
	Query   string       `json:"query"`
	Links   []TaggedLink `json:"links"`
}

type Service struct {
	gateway Gateway
	cache   cache.Cache
}

func NewService(gateway Gateway, c cache.Cache) *Service {
	return &Service{gateway: gateway, cache: c}
}

// GetRecipeLinks runs the article and video searches concurrently and merges
// their links, articles first. Each path fails independently; a path error
// only shrinks the result, so two failed paths yield an empty link list
// rather than an error. Link order within a path follows the model's output
// and duplicates across paths are kept.
func (s *Service) GetRecipeLinks(ctx context.Context, videoID, title, description string) Result {
	query := title
	if query == "" {
		query = description
	}
	if query == "" {
		query = "N/A"
	}

	startTime := time.Now()
	defer func() {
		metrics.RecipeSearchDuration.Record(ctx, time.Since(startTime).Seconds())
		metrics.RecipeSearchesTotal.Add(ctx, 1)
	}()

	cacheKey := "recipes:" + videoID + ":" + query
	if s.cache != nil {
		if cached, _ := s.cache.Get(ctx, cacheKey); cached != nil {
			if res, ok := cached.(Result); ok {
				return res
			}
		}
	}

	// Merge order is fixed: the article path at index 0 always precedes
	// the video path at index 1.
	media := []ai.SearchMedium{ai.MediumArticle, ai.MediumVideo}
	paths := make([]func(ctx context.Context) ([]TaggedLink, error), len(media))
	for i, medium := range media {
		medium := medium
		paths[i] = func(ctx context.Context) ([]TaggedLink, error) {
			return s.searchPath(ctx, medium, title, description)
		}
	}

	results, errs := worker.RunParallelWithResults(ctx, paths)

	links := []TaggedLink{}
	for i, pathLinks := range results {
		if errs[i] != nil {
			if !errors.Is(errs[i], anthropic.ErrNotConfigured) {
				slog.WarnContext(ctx, "Recipe search path failed",
					"video_id", videoID,
					"medium", media[i],
					"error", errs[i])
			}
			continue
		}
		links = append(links, pathLinks...)
	}

	res := Result{VideoID: videoID, Query: query, Links: links}
	if s.cache != nil && len(links) > 0 {
		_ = s.cache.Set(ctx, cacheKey, res, cacheTTL)
	}
	return res
}

func (s *Service) searchPath(ctx context.Context, medium ai.SearchMedium, title, description string) ([]TaggedLink, error) {
	prompt := ai.BuildRecipeSearchPrompt(medium, title, description)

	text, err := s.gateway.Complete(ctx, "", prompt, true)
	if err != nil {
		return nil, err
	}

	raw, ok := extract.Array(text)
	if !ok {
		slog.DebugContext(ctx, "No JSON array in model output", "medium", medium)
		return nil, nil
	}

	links := extract.NormalizeLinks(raw, maxLinksPerMedium)

	tagged := make([]TaggedLink, 0, len(links))
	for _, l := range links {
		tagged = append(tagged, TaggedLink{
			Kind:  string(medium),
			Title: titlePrefix(medium) + l.Title,
			URL:   l.URL,
		})
	}
	return tagged, nil
}

func titlePrefix(medium ai.SearchMedium) string {
	if medium == ai.MediumVideo {
		return "Watch: "
	}
	return "Read: "
}
