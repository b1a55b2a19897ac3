// Package recommend picks restaurants and menu items for a video via the
// model, with a deterministic token-overlap ranker as the fallback.
package recommend

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/maxdokukin/haaangry-backend/internal/catalog"
	"github.com/maxdokukin/haaangry-backend/internal/extract"
	"github.com/maxdokukin/haaangry-backend/internal/metrics"
	"github.com/maxdokukin/haaangry-backend/internal/services/ai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	maxRestaurants   = 3
	maxItemsPerBlock = 3
)

// Gateway is the slice of the model client this service needs.
type Gateway interface {
	Complete(ctx context.Context, system, user string, enableTools bool) (string, error)
}

// RestaurantBlock is one recommended restaurant with up to three of its
// menu items. AvgPriceCents is the rounded mean of the item prices, 0 when
// the block carries no items.
type RestaurantBlock struct {
	RestaurantID   string             `json:"restaurant_id"`
	RestaurantName string             `json:"restaurant_name"`
	Items          []catalog.MenuItem `json:"items"`
	AvgPriceCents  int                `json:"avg_price_cents"`
}

// Result is the response payload: up to three restaurant blocks, every id
// guaranteed to exist in the catalog.
type Result struct {
	Recommendations []RestaurantBlock `json:"recommendations"`
}

type Service struct {
	gateway Gateway
	snap    *catalog.Snapshot
}

func NewService(gateway Gateway, snap *catalog.Snapshot) *Service {
	return &Service{gateway: gateway, snap: snap}
}

// Recommend asks the model to pick restaurants for the video and validates
// its answer against the catalog. Unknown restaurant ids are dropped, item
// names resolve case-insensitively, and short item lists are back-filled
// from the restaurant's menu in catalog order. When the model is
// unavailable or its answer validates to nothing, the token-overlap
// fallback ranker takes over.
func (s *Service) Recommend(ctx context.Context, title, description string) Result {
	prompt := ai.BuildRecommendationPrompt(title, description, s.snap.Restaurants(), s.snap.MenuFor)

	text, err := s.gateway.Complete(ctx, "", prompt, false)
	if err != nil {
		s.recordFallback(ctx, "gateway_error")
		return Result{Recommendations: RankRestaurants(s.snap, title, description)}
	}

	blocks := s.buildBlocks(parseCandidates(text))
	if len(blocks) == 0 {
		slog.DebugContext(ctx, "Model recommendation validated to nothing, using fallback ranker")
		s.recordFallback(ctx, "invalid_response")
		return Result{Recommendations: RankRestaurants(s.snap, title, description)}
	}
	return Result{Recommendations: blocks}
}

func (s *Service) recordFallback(ctx context.Context, reason string) {
	metrics.RecommendFallbackTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

type candidateRestaurant struct {
	ID    string   `json:"id"`
	Items []string `json:"items"`
}

type recommendEnvelope struct {
	Restaurants []candidateRestaurant `json:"restaurants"`
}

// parseCandidates accepts the shapes models actually return: the requested
// {"restaurants": [...]} object, a bare array of restaurant records, or a
// singleton array wrapping the object. Anything else parses to nothing.
func parseCandidates(text string) []candidateRestaurant {
	if raw, ok := extract.Object(text); ok {
		var envelope recommendEnvelope
		if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Restaurants) > 0 {
			return envelope.Restaurants
		}
	}

	raw, ok := extract.Array(text)
	if !ok {
		return nil
	}

	var bare []candidateRestaurant
	if err := json.Unmarshal(raw, &bare); err == nil {
		var withIDs []candidateRestaurant
		for _, c := range bare {
			if c.ID != "" {
				withIDs = append(withIDs, c)
			}
		}
		if len(withIDs) > 0 {
			return withIDs
		}
	}

	var wrapped []recommendEnvelope
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped) > 0 {
		return wrapped[0].Restaurants
	}
	return nil
}

func (s *Service) buildBlocks(candidates []candidateRestaurant) []RestaurantBlock {
	var blocks []RestaurantBlock
	for _, cand := range candidates {
		rest, ok := s.snap.RestaurantByID(cand.ID)
		if !ok {
			continue
		}

		menu := s.snap.MenuFor(rest.ID)
		items := resolveItems(menu, cand.Items)
		items = backfillItems(items, menu)

		blocks = append(blocks, RestaurantBlock{
			RestaurantID:   rest.ID,
			RestaurantName: rest.Name,
			Items:          items,
			AvgPriceCents:  avgPriceCents(items),
		})
		if len(blocks) == maxRestaurants {
			break
		}
	}
	return blocks
}

// resolveItems maps requested item names to catalog items by
// case-insensitive exact match. Unmatched names are dropped.
func resolveItems(menu []catalog.MenuItem, names []string) []catalog.MenuItem {
	var items []catalog.MenuItem
	for _, name := range names {
		for _, m := range menu {
			if strings.EqualFold(strings.TrimSpace(name), m.Name) {
				items = append(items, m)
				break
			}
		}
		if len(items) == maxItemsPerBlock {
			break
		}
	}
	return items
}

// backfillItems tops the list up from the menu in catalog order, skipping
// names already included.
func backfillItems(items []catalog.MenuItem, menu []catalog.MenuItem) []catalog.MenuItem {
	for _, m := range menu {
		if len(items) >= maxItemsPerBlock {
			break
		}
		included := false
		for _, have := range items {
			if strings.EqualFold(have.Name, m.Name) {
				included = true
				break
			}
		}
		if !included {
			items = append(items, m)
		}
	}
	return items
}

func avgPriceCents(items []catalog.MenuItem) int {
	if len(items) == 0 {
		return 0
	}
	sum := 0
	for _, m := range items {
		sum += m.PriceCents
	}
	return int(math.Round(float64(sum) / float64(len(items))))
}

// RankRestaurants is the deterministic fallback: restaurants are scored by
// the best token overlap between the video text and any of their menu item
// names, ties broken by catalog order. Each chosen restaurant carries its
// first three menu items.
func RankRestaurants(snap *catalog.Snapshot, title, description string) []RestaurantBlock {
	queryTokens := tokenize(title + " " + description)

	restaurants := snap.Restaurants()
	scores := make([]int, len(restaurants))
	for i, r := range restaurants {
		for _, m := range snap.MenuFor(r.ID) {
			if score := overlap(queryTokens, strings.Fields(strings.ToLower(m.Name))); score > scores[i] {
				scores[i] = score
			}
		}
	}

	order := make([]int, len(restaurants))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	var blocks []RestaurantBlock
	for _, idx := range order {
		if len(blocks) == maxRestaurants {
			break
		}
		r := restaurants[idx]
		menu := snap.MenuFor(r.ID)
		if len(menu) > maxItemsPerBlock {
			menu = menu[:maxItemsPerBlock]
		}
		blocks = append(blocks, RestaurantBlock{
			RestaurantID:   r.ID,
			RestaurantName: r.Name,
			Items:          menu,
			AvgPriceCents:  avgPriceCents(menu),
		})
	}
	return blocks
}

// tokenize lowercases the text and splits it into alphabetic words.
func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		tokens[field] = true
	}
	return tokens
}

func overlap(queryTokens map[string]bool, nameTokens []string) int {
	seen := make(map[string]bool)
	count := 0
	for _, t := range nameTokens {
		if queryTokens[t] && !seen[t] {
			seen[t] = true
			count++
		}
	}
	return count
}
