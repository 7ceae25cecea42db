package suggestion

import (
	"encoding/json"
	"math"
	"sort"
	"time"
	"wasgeurtjeInsights/domain"

	"gorm.io/datatypes"
)

// OrderSummary is the already-validated order data the checkout subsystem
// supplies for profile recalculation.
type OrderSummary struct {
	Total      float64
	Quantity   int
	Date       time.Time
	ProductIDs []uint64
}

// RecalculateProfile rebuilds every derived field of a profile from the
// customer's order history: purchase cadence from the inter-order gap
// distribution, average/peak spending, the predicted next-purchase window
// and the profile score. Callers never set these fields directly.
func (e *Engine) RecalculateProfile(profile *domain.CustomerProfile, orders []OrderSummary, now time.Time) {
	profile.LastRecalculated = &now

	if len(orders) == 0 {
		profile.TotalOrders = 0
		profile.ProfileScore = 0
		return
	}

	sorted := make([]OrderSummary, len(orders))
	copy(sorted, orders)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	profile.TotalOrders = len(sorted)

	var totalValue float64
	for _, o := range sorted {
		totalValue += o.Total
		if o.Total > profile.PeakSpendingAmount {
			profile.PeakSpendingAmount = o.Total
			profile.PeakSpendingQuantity = o.Quantity
		}
	}
	profile.AvgOrderValue = totalValue / float64(len(sorted))

	last := sorted[len(sorted)-1].Date
	profile.LastOrderDate = &last
	profile.DaysSinceLastOrder = int(now.Sub(last).Hours() / 24)

	cycle := e.purchaseCycleDays(sorted)
	profile.PurchaseCycleDays = cycle

	tolerance := cycle * e.cfg.CycleToleranceRatio
	if tolerance < e.cfg.MinToleranceDays {
		tolerance = e.cfg.MinToleranceDays
	}
	windowCenter := last.Add(time.Duration(cycle * 24 * float64(time.Hour)))
	windowStart := windowCenter.Add(-time.Duration(tolerance * 24 * float64(time.Hour)))
	windowEnd := windowCenter.Add(time.Duration(tolerance * 24 * float64(time.Hour)))
	profile.NextPrimeWindowStart = &windowStart
	profile.NextPrimeWindowEnd = &windowEnd

	profile.FavoriteProducts = favoriteProducts(sorted)
	profile.ProfileScore = profileScore(len(sorted), profile.AvgOrderValue, float64(profile.DaysSinceLastOrder), cycle)
}

// purchaseCycleDays is the median inter-order gap. The median is robust
// against one long holiday gap skewing the cadence.
func (e *Engine) purchaseCycleDays(sorted []OrderSummary) float64 {
	if len(sorted) < 2 {
		return e.cfg.DefaultCycleDays
	}

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Date.Sub(sorted[i-1].Date).Hours() / 24
		if gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) == 0 {
		return e.cfg.DefaultCycleDays
	}

	sort.Float64s(gaps)
	mid := len(gaps) / 2
	if len(gaps)%2 == 1 {
		return gaps[mid]
	}
	return (gaps[mid-1] + gaps[mid]) / 2
}

// profileScore is a tunable policy: monotonically increasing in order count
// and recency, bounded to [0, 100].
func profileScore(totalOrders int, avgOrderValue, daysSinceLast, cycleDays float64) float64 {
	if cycleDays <= 0 {
		cycleDays = defaultCycleDays
	}

	orderPoints := math.Min(40, float64(totalOrders)*4)
	valuePoints := math.Min(20, avgOrderValue/10)

	// cycle/(cycle+days) decays smoothly from 1 toward 0 as the customer
	// goes quiet, so more recent always scores higher.
	recencyPoints := 40 * cycleDays / (cycleDays + math.Max(0, daysSinceLast))

	score := orderPoints + valuePoints + recencyPoints
	return math.Max(0, math.Min(100, score))
}

// favoriteProducts orders product ids by purchase frequency, ties broken
// by most recent appearance.
func favoriteProducts(sorted []OrderSummary) datatypes.JSON {
	counts := make(map[uint64]int)
	lastIndex := make(map[uint64]int)
	for i, o := range sorted {
		for _, pid := range o.ProductIDs {
			counts[pid]++
			lastIndex[pid] = i
		}
	}

	ids := make([]uint64, 0, len(counts))
	for pid := range counts {
		ids = append(ids, pid)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return lastIndex[ids[i]] > lastIndex[ids[j]]
	})

	raw, err := json.Marshal(ids)
	if err != nil {
		return nil
	}
	return raw
}
