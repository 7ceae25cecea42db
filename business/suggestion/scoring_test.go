package suggestion

import (
	"encoding/json"
	"testing"
	"time"
	"wasgeurtjeInsights/domain"
)

func day(n int) time.Time {
	return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestRecalculateProfile_EmptyOrders(t *testing.T) {
	e := testEngine()
	profile := domain.CustomerProfile{Email: "a@b.nl"}

	e.RecalculateProfile(&profile, nil, day(100))

	if profile.TotalOrders != 0 || profile.ProfileScore != 0 {
		t.Errorf("empty history must zero out orders and score, got %d / %f", profile.TotalOrders, profile.ProfileScore)
	}
	if profile.LastRecalculated == nil {
		t.Error("expected last_recalculated to be stamped")
	}
}

func TestRecalculateProfile_Basics(t *testing.T) {
	e := testEngine()
	profile := domain.CustomerProfile{Email: "a@b.nl"}

	orders := []OrderSummary{
		{Total: 30, Quantity: 2, Date: day(0), ProductIDs: []uint64{1410}},
		{Total: 50, Quantity: 4, Date: day(20), ProductIDs: []uint64{1410, 1822}},
		{Total: 40, Quantity: 3, Date: day(40), ProductIDs: []uint64{1410}},
	}

	e.RecalculateProfile(&profile, orders, day(50))

	if profile.TotalOrders != 3 {
		t.Errorf("total orders = %d, want 3", profile.TotalOrders)
	}
	if profile.AvgOrderValue != 40 {
		t.Errorf("avg order value = %f, want 40", profile.AvgOrderValue)
	}
	if profile.PeakSpendingAmount != 50 || profile.PeakSpendingQuantity != 4 {
		t.Errorf("peak = %f/%d, want 50/4", profile.PeakSpendingAmount, profile.PeakSpendingQuantity)
	}
	if profile.PurchaseCycleDays != 20 {
		t.Errorf("cycle = %f, want 20", profile.PurchaseCycleDays)
	}
	if profile.DaysSinceLastOrder != 10 {
		t.Errorf("days since last = %d, want 10", profile.DaysSinceLastOrder)
	}
	if profile.ProfileScore <= 0 || profile.ProfileScore > 100 {
		t.Errorf("score out of range: %f", profile.ProfileScore)
	}
}

func TestRecalculateProfile_PrimeWindowAroundNextCycle(t *testing.T) {
	e := testEngine()
	profile := domain.CustomerProfile{Email: "a@b.nl"}

	orders := []OrderSummary{
		{Total: 30, Date: day(0)},
		{Total: 30, Date: day(20)},
	}

	e.RecalculateProfile(&profile, orders, day(25))

	if profile.NextPrimeWindowStart == nil || profile.NextPrimeWindowEnd == nil {
		t.Fatal("expected a prime window")
	}
	center := day(20).AddDate(0, 0, 20)
	if profile.NextPrimeWindowStart.After(center) {
		t.Errorf("window start %v after predicted reorder date %v", profile.NextPrimeWindowStart, center)
	}
	if profile.NextPrimeWindowEnd.Before(center) {
		t.Errorf("window end %v before predicted reorder date %v", profile.NextPrimeWindowEnd, center)
	}
}

func TestRecalculateProfile_UnorderedInput(t *testing.T) {
	e := testEngine()
	profile := domain.CustomerProfile{Email: "a@b.nl"}

	orders := []OrderSummary{
		{Total: 40, Date: day(40)},
		{Total: 30, Date: day(0)},
		{Total: 50, Date: day(20)},
	}

	e.RecalculateProfile(&profile, orders, day(50))

	if profile.LastOrderDate == nil || !profile.LastOrderDate.Equal(day(40)) {
		t.Errorf("last order date = %v, want %v", profile.LastOrderDate, day(40))
	}
}

func TestProfileScore_MonotonicInOrders(t *testing.T) {
	prev := 0.0
	for orders := 1; orders <= 15; orders++ {
		score := profileScore(orders, 40, 5, 20)
		if score < prev {
			t.Errorf("score decreased from %f to %f at %d orders", prev, score, orders)
		}
		prev = score
	}
}

func TestProfileScore_MonotonicInRecency(t *testing.T) {
	prev := 101.0
	for days := 0; days <= 120; days += 10 {
		score := profileScore(5, 40, float64(days), 20)
		if score > prev {
			t.Errorf("score increased from %f to %f at %d days since last order", prev, score, days)
		}
		prev = score
	}
}

func TestProfileScore_Clamped(t *testing.T) {
	if score := profileScore(1000, 100000, 0, 20); score > 100 {
		t.Errorf("score %f exceeds 100", score)
	}
	if score := profileScore(0, 0, 100000, 20); score < 0 {
		t.Errorf("score %f below 0", score)
	}
}

func TestFavoriteProducts_OrderedByFrequency(t *testing.T) {
	e := testEngine()
	profile := domain.CustomerProfile{Email: "a@b.nl"}

	orders := []OrderSummary{
		{Total: 30, Date: day(0), ProductIDs: []uint64{1410, 1822}},
		{Total: 30, Date: day(10), ProductIDs: []uint64{1410}},
		{Total: 30, Date: day(20), ProductIDs: []uint64{1410, 1512}},
	}

	e.RecalculateProfile(&profile, orders, day(30))

	var favorites []uint64
	if err := json.Unmarshal(profile.FavoriteProducts, &favorites); err != nil {
		t.Fatalf("unmarshal favorites: %v", err)
	}
	if len(favorites) == 0 || favorites[0] != 1410 {
		t.Errorf("expected 1410 as top favorite, got %v", favorites)
	}
}
