// Package catalog holds the immutable data snapshots the backend serves
// from: the collected video feed and the restaurant/menu catalog. Both are
// loaded once at startup and never mutated afterwards, so they are safe to
// share across request handlers without locking.
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Restaurant is a catalog-owned restaurant record.
type Restaurant struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	LogoURL          string `json:"logo_url,omitempty"`
	Website          string `json:"website,omitempty"`
	DeliveryEtaMin   int    `json:"delivery_eta_min"`
	DeliveryEtaMax   int    `json:"delivery_eta_max"`
	DeliveryFeeCents int    `json:"delivery_fee_cents"`
}

// MenuItem is a catalog-owned menu item record.
type MenuItem struct {
	ID           string   `json:"id"`
	RestaurantID string   `json:"restaurant_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	PriceCents   int      `json:"price_cents"`
	ImageURL     string   `json:"image_url,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// VideoRecord is one raw entry from the collector's JSON output.
type VideoRecord struct {
	ID           string   `json:"id"`
	VideoID      string   `json:"video_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	LikeCount    int      `json:"like_count"`
	CommentCount int      `json:"comment_count"`
	Thumbnail    string   `json:"thumbnail"`
	ThumbURL     string   `json:"thumb_url"`
	DownloadPath string   `json:"download_path"`
}

// Key returns the identifier used for lookups, preferring "id" over "video_id".
func (r VideoRecord) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return r.VideoID
}

// Video is a feed entry served to clients.
type Video struct {
	ID           string   `json:"id"`
	URL          string   `json:"url"`
	ThumbURL     string   `json:"thumb_url,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	LikeCount    int      `json:"like_count"`
	CommentCount int      `json:"comment_count"`
}

// Snapshot is the immutable startup state: video records plus the
// restaurant catalog.
type Snapshot struct {
	videos      []VideoRecord
	byID        map[string]VideoRecord
	downloadDir string

	restaurants []Restaurant
	menu        []MenuItem
	menuByRest  map[string][]MenuItem
}

// NewSnapshot builds a snapshot from already-loaded records. Menu order is
// preserved per restaurant, which the recommendation backfill relies on.
func NewSnapshot(videos []VideoRecord, downloadDir string, restaurants []Restaurant, menu []MenuItem) *Snapshot {
	s := &Snapshot{
		videos:      videos,
		byID:        make(map[string]VideoRecord, len(videos)),
		downloadDir: downloadDir,
		restaurants: restaurants,
		menu:        menu,
		menuByRest:  make(map[string][]MenuItem),
	}
	for _, v := range videos {
		if key := v.Key(); key != "" {
			s.byID[key] = v
		}
	}
	for _, m := range menu {
		s.menuByRest[m.RestaurantID] = append(s.menuByRest[m.RestaurantID], m)
	}
	return s
}

// Load builds the snapshot from the feed JSON and catalog JSON paths.
// Missing or malformed files degrade to empty collections rather than
// failing startup.
func Load(feedPath, downloadDirOverride, catalogPath string) *Snapshot {
	videos, detectedDir, err := LoadVideoRecords(feedPath)
	if err != nil {
		slog.Warn("Failed to load video feed, serving empty feed", "path", feedPath, "error", err)
	}

	downloadDir := downloadDirOverride
	if downloadDir == "" {
		downloadDir = detectedDir
	}

	restaurants, menu, err := LoadCatalog(catalogPath)
	if err != nil {
		slog.Warn("Failed to load restaurant catalog, using demo catalog", "path", catalogPath, "error", err)
		restaurants, menu = DemoCatalog()
	}

	return NewSnapshot(videos, downloadDir, restaurants, menu)
}

// LoadVideoRecords reads the collector's JSON file. The top level is an
// object mapping category names to lists of records; the categories are
// flattened into one slice. The common parent directory of existing
// download paths is returned so local media can be mounted.
func LoadVideoRecords(path string) ([]VideoRecord, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	var byCategory map[string][]VideoRecord
	if err := json.Unmarshal(data, &byCategory); err != nil {
		return nil, "", fmt.Errorf("failed to parse feed JSON: %w", err)
	}

	var items []VideoRecord
	for _, list := range byCategory {
		items = append(items, list...)
	}

	return items, commonDownloadDir(items), nil
}

func commonDownloadDir(records []VideoRecord) string {
	for _, r := range records {
		if r.DownloadPath == "" {
			continue
		}
		dir := filepath.Dir(r.DownloadPath)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

// catalogFile mirrors the on-disk catalog shape: restaurants with a
// nested menu.
type catalogFile struct {
	Restaurants []struct {
		Restaurant
		Menu []MenuItem `json:"menu"`
	} `json:"restaurants"`
}

// LoadCatalog reads the restaurant catalog JSON. Menu item ids default to
// "<restaurant_id>-<n>" when absent.
func LoadCatalog(path string) ([]Restaurant, []MenuItem, error) {
	if path == "" {
		return nil, nil, os.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var parsed catalogFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	var restaurants []Restaurant
	var menu []MenuItem
	for _, entry := range parsed.Restaurants {
		restaurants = append(restaurants, entry.Restaurant)
		for i, item := range entry.Menu {
			item.RestaurantID = entry.ID
			if item.ID == "" {
				item.ID = fmt.Sprintf("%s-%d", entry.ID, i+1)
			}
			menu = append(menu, item)
		}
	}
	return restaurants, menu, nil
}

// Lookup returns the title and description for a video id, or empty
// strings when there is no match. It never fails.
func (s *Snapshot) Lookup(videoID string) (title, description string) {
	r, ok := s.byID[videoID]
	if !ok {
		return "", ""
	}
	return r.Title, r.Description
}

// DownloadDir returns the directory local video files are served from,
// or "" when none was found.
func (s *Snapshot) DownloadDir() string {
	return s.downloadDir
}

// Restaurants returns the catalog restaurants in catalog order.
func (s *Snapshot) Restaurants() []Restaurant {
	return s.restaurants
}

// RestaurantByID returns the restaurant with the given id.
func (s *Snapshot) RestaurantByID(id string) (Restaurant, bool) {
	for _, r := range s.restaurants {
		if r.ID == id {
			return r, true
		}
	}
	return Restaurant{}, false
}

// MenuFor returns the menu items of a restaurant in catalog order.
func (s *Snapshot) MenuFor(restaurantID string) []MenuItem {
	return s.menuByRest[restaurantID]
}

// BuildFeed projects the raw records into feed entries. Only records with a
// locally downloaded file are included; remote watch pages are not playable
// in the client's player.
func (s *Snapshot) BuildFeed(baseURL, mountPrefix string) []Video {
	out := []Video{}
	base := strings.TrimSuffix(baseURL, "/")
	for _, r := range s.videos {
		if r.DownloadPath == "" || s.downloadDir == "" {
			continue
		}
		filename := filepath.Base(r.DownloadPath)
		if _, err := os.Stat(filepath.Join(s.downloadDir, filename)); err != nil {
			continue
		}

		thumb := r.Thumbnail
		if thumb == "" {
			thumb = r.ThumbURL
		}
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}

		out = append(out, Video{
			ID:           r.Key(),
			URL:          base + mountPrefix + "/" + filename,
			ThumbURL:     thumb,
			Title:        r.Title,
			Description:  r.Description,
			Tags:         tags,
			LikeCount:    r.LikeCount,
			CommentCount: r.CommentCount,
		})
	}
	return out
}

// DemoCatalog returns the built-in demo restaurant catalog used when no
// catalog file is configured.
func DemoCatalog() ([]Restaurant, []MenuItem) {
	restaurants := []Restaurant{
		{ID: "r1", Name: "Ramen Cart", DeliveryEtaMin: 25, DeliveryEtaMax: 40, DeliveryFeeCents: 199},
		{ID: "r2", Name: "Taco Truck Co", DeliveryEtaMin: 20, DeliveryEtaMax: 35, DeliveryFeeCents: 299},
		{ID: "r3", Name: "Sushi Bar", DeliveryEtaMin: 30, DeliveryEtaMax: 50, DeliveryFeeCents: 399},
	}
	menu := []MenuItem{
		{ID: "m1", RestaurantID: "r1", Name: "Spicy Tonkotsu Ramen", Description: "Rich pork broth", PriceCents: 1399, Tags: []string{"ramen", "spicy"}},
		{ID: "m2", RestaurantID: "r1", Name: "Gyoza (6pc)", Description: "Pork dumplings", PriceCents: 599, Tags: []string{"dumplings"}},
		{ID: "m3", RestaurantID: "r2", Name: "Birria Tacos", Description: "Crispy with consome", PriceCents: 1299, Tags: []string{"taco", "birria"}},
		{ID: "m4", RestaurantID: "r3", Name: "Salmon Nigiri (6)", Description: "Fresh cut", PriceCents: 1499, Tags: []string{"sushi"}},
		{ID: "m5", RestaurantID: "r2", Name: "Al Pastor Taco", PriceCents: 399, Tags: []string{"taco"}},
	}
	return restaurants, menu
}
