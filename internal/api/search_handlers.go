package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/maxdokukin/haaangry-backend/internal/catalog"
	"github.com/maxdokukin/haaangry-backend/internal/services/intent"
	"github.com/maxdokukin/haaangry-backend/internal/services/recommend"
)

// HandleRecipes runs the dual-path recipe search for a feed video. Title
// and description query params override the feed lookup when present.
func (s *Server) HandleRecipes(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("video_id")
	if videoID == "" {
		http.Error(w, "video_id is required", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(r.URL.Query().Get("title"))
	description := strings.TrimSpace(r.URL.Query().Get("description"))
	if title == "" && description == "" {
		title, description = s.snap.Lookup(videoID)
	}

	writeJSON(w, http.StatusOK, s.recipes.GetRecipeLinks(r.Context(), videoID, title, description))
}

type RecommendRequest struct {
	VideoID string `json:"video_id"`
}

// HandleRecommend picks restaurants and menu items for a feed video.
func (s *Server) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.VideoID == "" {
		http.Error(w, "video_id is required", http.StatusBadRequest)
		return
	}

	title, description := s.snap.Lookup(req.VideoID)
	writeJSON(w, http.StatusOK, s.recommender.Recommend(r.Context(), title, description))
}

type OrderOptions struct {
	VideoID        string               `json:"video_id"`
	Intent         string               `json:"intent"`
	TopRestaurants []catalog.Restaurant `json:"top_restaurants"`
	Prefill        []OrderItem          `json:"prefill"`
	SuggestedItems []catalog.MenuItem   `json:"suggested_items"`
}

// HandleOrderOptions returns the intent-ranked order sheet for a video.
// The intent comes from the keyword table alone so the endpoint stays fast
// enough for the client to call on every swipe.
func (s *Server) HandleOrderOptions(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("video_id")
	if videoID == "" {
		http.Error(w, "video_id is required", http.StatusBadRequest)
		return
	}

	title := r.URL.Query().Get("title")
	if title == "" {
		title, _ = s.snap.Lookup(videoID)
	}

	writeJSON(w, http.StatusOK, s.optionsFor(videoID, intent.FromText(title)))
}

func (s *Server) optionsFor(videoID, intentLabel string) OrderOptions {
	opts := OrderOptions{
		VideoID:        videoID,
		Intent:         intentLabel,
		TopRestaurants: []catalog.Restaurant{},
		Prefill:        []OrderItem{},
		SuggestedItems: []catalog.MenuItem{},
	}

	for i, block := range recommend.RankRestaurants(s.snap, intentLabel, "") {
		if rest, ok := s.snap.RestaurantByID(block.RestaurantID); ok {
			opts.TopRestaurants = append(opts.TopRestaurants, rest)
		}
		for j, item := range block.Items {
			if i == 0 && j == 0 {
				opts.Prefill = append(opts.Prefill, OrderItem{
					MenuItemID:         item.ID,
					NameSnapshot:       item.Name,
					PriceCentsSnapshot: item.PriceCents,
					Quantity:           1,
				})
				continue
			}
			if len(opts.SuggestedItems) < 3 {
				opts.SuggestedItems = append(opts.SuggestedItems, item)
			}
		}
	}
	return opts
}

type LLMTextRequest struct {
	UserText      string `json:"user_text"`
	RecentVideoID string `json:"recent_video_id"`
}

type LLMVoiceRequest struct {
	Transcript    string `json:"transcript"`
	RecentVideoID string `json:"recent_video_id"`
}

type IntentResponse struct {
	Intent         string               `json:"intent"`
	TopRestaurants []catalog.Restaurant `json:"top_restaurants"`
}

// HandleLLMText classifies a typed snippet into a food intent and ranks
// restaurants against it.
func (s *Server) HandleLLMText(w http.ResponseWriter, r *http.Request) {
	var req LLMTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, s.intentResponse(r, req.UserText))
}

// HandleLLMVoice is the same flow for a voice transcript.
func (s *Server) HandleLLMVoice(w http.ResponseWriter, r *http.Request) {
	var req LLMVoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, s.intentResponse(r, req.Transcript))
}

func (s *Server) intentResponse(r *http.Request, snippet string) IntentResponse {
	intentLabel := s.intents.Classify(r.Context(), snippet)

	restaurants := []catalog.Restaurant{}
	for _, block := range recommend.RankRestaurants(s.snap, intentLabel, snippet) {
		if rest, ok := s.snap.RestaurantByID(block.RestaurantID); ok {
			restaurants = append(restaurants, rest)
		}
	}

	return IntentResponse{Intent: intentLabel, TopRestaurants: restaurants}
}

// HandleNotFound gives a second chance to clients that URL-encode the query
// separator into the path, e.g. GET /recipes%3Fvideo_id%3Dabc. The router
// sees those as unknown paths, so the compat shim re-parses the tail as a
// query string and dispatches to the real handler.
func (s *Server) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	targets := []struct {
		prefix  string
		handler http.HandlerFunc
	}{
		{"/order/options", s.HandleOrderOptions},
		{"/recipes", s.HandleRecipes},
	}

	for _, t := range targets {
		if !strings.HasPrefix(r.URL.Path, t.prefix) {
			continue
		}

		rest := strings.TrimPrefix(r.URL.Path, t.prefix)
		rest = strings.TrimPrefix(rest, "/")
		if unescaped, err := url.PathUnescape(rest); err == nil {
			rest = unescaped
		}
		rest = strings.TrimPrefix(rest, "?")

		values, err := url.ParseQuery(rest)
		if err != nil || len(values) == 0 {
			break
		}

		merged := r.URL.Query()
		for key, vals := range values {
			for _, v := range vals {
				if merged.Get(key) == "" {
					merged.Add(key, v)
				}
			}
		}

		compat := r.Clone(r.Context())
		compat.URL.RawQuery = merged.Encode()
		t.handler(w, compat)
		return
	}

	http.NotFound(w, r)
}
