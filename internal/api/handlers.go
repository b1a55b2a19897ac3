package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/maxdokukin/haaangry-backend/internal/catalog"
	"github.com/maxdokukin/haaangry-backend/internal/config"
	"github.com/maxdokukin/haaangry-backend/internal/services/intent"
	"github.com/maxdokukin/haaangry-backend/internal/services/recipes"
	"github.com/maxdokukin/haaangry-backend/internal/services/recommend"
)

type Server struct {
	cfg         *config.Config
	snap        *catalog.Snapshot
	recipes     *recipes.Service
	recommender *recommend.Service
	intents     *intent.Service
}

func NewServer(cfg *config.Config, snap *catalog.Snapshot, recipeSvc *recipes.Service, recommendSvc *recommend.Service, intentSvc *intent.Service) *Server {
	return &Server{
		cfg:         cfg,
		snap:        snap,
		recipes:     recipeSvc,
		recommender: recommendSvc,
		intents:     intentSvc,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleFeed serves the startup video snapshot with URLs rewritten to this
// server's local media mount.
func (s *Server) HandleFeed(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	base := scheme + "://" + r.Host

	writeJSON(w, http.StatusOK, s.snap.BuildFeed(base, "/videos"))
}

func (s *Server) HandleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Profile)
}

type OrderItem struct {
	MenuItemID         string `json:"menu_item_id"`
	NameSnapshot       string `json:"name_snapshot"`
	PriceCentsSnapshot int    `json:"price_cents_snapshot"`
	Quantity           int    `json:"quantity"`
}

type Order struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id"`
	RestaurantID     string      `json:"restaurant_id"`
	Status           string      `json:"status"`
	Items            []OrderItem `json:"items"`
	SubtotalCents    int         `json:"subtotal_cents"`
	DeliveryFeeCents int         `json:"delivery_fee_cents"`
	TotalCents       int         `json:"total_cents"`
	EtaMinutes       int         `json:"eta_minutes"`
}

// HandleCreateOrder is the demo checkout: the order is echoed back as
// confirmed with a fixed ETA, nothing is persisted.
func (s *Server) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var order Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.Status = "confirmed"
	order.EtaMinutes = 30

	writeJSON(w, http.StatusOK, order)
}

func (s *Server) HandleOrdersHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]Order{"orders": {}})
}
