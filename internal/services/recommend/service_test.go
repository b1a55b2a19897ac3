package recommend

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/maxdokukin/haaangry-backend/internal/catalog"
	"github.com/maxdokukin/haaangry-backend/internal/metrics"
)

func TestMain(m *testing.M) {
	if err := metrics.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type staticGateway struct {
	text string
	err  error
}

func (g *staticGateway) Complete(ctx context.Context, system, user string, enableTools bool) (string, error) {
	return g.text, g.err
}

func demoSnapshot() *catalog.Snapshot {
	restaurants, menu := catalog.DemoCatalog()
	return catalog.NewSnapshot(nil, "", restaurants, menu)
}

func TestRecommendResolvesAndBackfills(t *testing.T) {
	// One valid item named in the wrong case; r1 has two menu items, so the
	// backfill adds the second and the menu is exhausted.
	gw := &staticGateway{text: `{"restaurants":[{"id":"r1","items":["spicy tonkotsu ramen"]}]}`}
	svc := NewService(gw, demoSnapshot())

	res := svc.Recommend(context.Background(), "Ramen night", "")

	if len(res.Recommendations) != 1 {
		t.Fatalf("expected 1 block, got %d", len(res.Recommendations))
	}
	block := res.Recommendations[0]
	if block.RestaurantID != "r1" || block.RestaurantName != "Ramen Cart" {
		t.Errorf("unexpected restaurant: %+v", block)
	}
	if len(block.Items) != 2 {
		t.Fatalf("expected backfill to 2 items (menu exhausted), got %d", len(block.Items))
	}
	if block.Items[0].Name != "Spicy Tonkotsu Ramen" {
		t.Errorf("requested item should come first, got %q", block.Items[0].Name)
	}
	if block.Items[1].Name != "Gyoza (6pc)" {
		t.Errorf("backfill should follow catalog order, got %q", block.Items[1].Name)
	}
	if block.AvgPriceCents != 999 {
		t.Errorf("avg_price_cents = %d, want 999", block.AvgPriceCents)
	}
}

func TestRecommendBackfillsToThreeFromLargerMenu(t *testing.T) {
	restaurants := []catalog.Restaurant{{ID: "r9", Name: "Big Menu"}}
	menu := []catalog.MenuItem{
		{ID: "i1", RestaurantID: "r9", Name: "First", PriceCents: 100},
		{ID: "i2", RestaurantID: "r9", Name: "Second", PriceCents: 200},
		{ID: "i3", RestaurantID: "r9", Name: "Third", PriceCents: 300},
		{ID: "i4", RestaurantID: "r9", Name: "Fourth", PriceCents: 400},
		{ID: "i5", RestaurantID: "r9", Name: "Fifth", PriceCents: 500},
	}
	snap := catalog.NewSnapshot(nil, "", restaurants, menu)

	gw := &staticGateway{text: `{"restaurants":[{"id":"r9","items":["Third"]}]}`}
	svc := NewService(gw, snap)

	res := svc.Recommend(context.Background(), "anything", "")

	block := res.Recommendations[0]
	if len(block.Items) != 3 {
		t.Fatalf("expected 3 items after backfill, got %d", len(block.Items))
	}
	got := []string{block.Items[0].Name, block.Items[1].Name, block.Items[2].Name}
	want := []string{"Third", "First", "Second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if block.AvgPriceCents != 200 {
		t.Errorf("avg_price_cents = %d, want 200", block.AvgPriceCents)
	}
}

func TestRecommendDropsUnknownRestaurants(t *testing.T) {
	gw := &staticGateway{text: `{"restaurants":[{"id":"bogus","items":[]},{"id":"r2","items":["Birria Tacos"]}]}`}
	svc := NewService(gw, demoSnapshot())

	res := svc.Recommend(context.Background(), "tacos", "")

	if len(res.Recommendations) != 1 {
		t.Fatalf("expected unknown id to be dropped, got %d blocks", len(res.Recommendations))
	}
	if res.Recommendations[0].RestaurantID != "r2" {
		t.Errorf("unexpected restaurant %q", res.Recommendations[0].RestaurantID)
	}
}

func TestRecommendTolerantShapes(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"object with restaurants", `{"restaurants":[{"id":"r1","items":[]}]}`},
		{"bare array", `[{"id":"r1","items":[]}]`},
		{"singleton array wrapping object", `[{"restaurants":[{"id":"r1","items":[]}]}]`},
		{"object in prose", "Sure! {\"restaurants\":[{\"id\":\"r1\",\"items\":[]}]} enjoy."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&staticGateway{text: tt.text}, demoSnapshot())
			res := svc.Recommend(context.Background(), "ramen", "")
			if len(res.Recommendations) == 0 {
				t.Fatal("expected at least one block")
			}
			if res.Recommendations[0].RestaurantID != "r1" {
				t.Errorf("unexpected restaurant %q", res.Recommendations[0].RestaurantID)
			}
		})
	}
}

func TestRecommendFallsBackOnGatewayError(t *testing.T) {
	svc := NewService(&staticGateway{err: errors.New("down")}, demoSnapshot())

	res := svc.Recommend(context.Background(), "Spicy Ramen Night", "")

	if len(res.Recommendations) != 3 {
		t.Fatalf("fallback should rank top 3, got %d", len(res.Recommendations))
	}
	if res.Recommendations[0].RestaurantID != "r1" {
		t.Errorf("token overlap on \"ramen\" should rank r1 first, got %q", res.Recommendations[0].RestaurantID)
	}
	if res.Recommendations[0].AvgPriceCents != 999 {
		t.Errorf("avg_price_cents = %d, want round((1399+599)/2) = 999", res.Recommendations[0].AvgPriceCents)
	}
}

func TestRecommendFallsBackOnGarbage(t *testing.T) {
	svc := NewService(&staticGateway{text: "I could not decide, sorry"}, demoSnapshot())

	res := svc.Recommend(context.Background(), "sushi please", "")

	if len(res.Recommendations) == 0 {
		t.Fatal("expected fallback recommendations")
	}
	if res.Recommendations[0].RestaurantID != "r3" {
		t.Errorf("token overlap on \"sushi\" should rank r3 first, got %q", res.Recommendations[0].RestaurantID)
	}
}

func TestRankRestaurantsDeterministic(t *testing.T) {
	snap := demoSnapshot()

	first := RankRestaurants(snap, "Birria tacos forever", "crispy with consome")
	for i := 0; i < 5; i++ {
		again := RankRestaurants(snap, "Birria tacos forever", "crispy with consome")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("fallback ranking is not deterministic: %+v vs %+v", first, again)
		}
	}

	if first[0].RestaurantID != "r2" {
		t.Errorf("expected r2 first for birria tacos, got %q", first[0].RestaurantID)
	}
}

func TestRankRestaurantsTiesFollowCatalogOrder(t *testing.T) {
	snap := demoSnapshot()

	// No overlap at all: every score is zero, catalog order decides.
	blocks := RankRestaurants(snap, "zzz", "qqq")
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	ids := []string{blocks[0].RestaurantID, blocks[1].RestaurantID, blocks[2].RestaurantID}
	if !reflect.DeepEqual(ids, []string{"r1", "r2", "r3"}) {
		t.Errorf("tie order = %v, want catalog order", ids)
	}
}

func TestAvgPriceCentsEmptyItems(t *testing.T) {
	if got := avgPriceCents(nil); got != 0 {
		t.Errorf("avgPriceCents(nil) = %d, want 0", got)
	}
}
