package suggestion

import "wasgeurtjeInsights/domain"

type Config struct {
	FreeShippingThreshold float64

	// Heroes is the ordered candidate list the waterfall walks. The default
	// set is compiled in; deployments can override it via config without
	// touching the algorithm.
	Heroes []domain.SuggestedProduct

	// Catalog maps product ids to their canonical metadata for messaging.
	Catalog map[uint64]domain.SuggestedProduct

	// Profile scoring tunables.
	DefaultCycleDays    float64
	CycleToleranceRatio float64
	MinToleranceDays    float64
}

const (
	defaultFreeShippingThreshold = 40.0
	defaultCycleDays             = 30.0
	defaultCycleToleranceRatio   = 0.2
	defaultMinToleranceDays      = 2.0
)

func DefaultConfig() Config {
	heroes := []domain.SuggestedProduct{
		{ProductID: 2310, Title: "Wasparfum Proefpakket", Price: 14.95, Category: "wasparfum", Kind: domain.ProductKindScent},
		{ProductID: 1410, Title: "Blossom Drip", Price: 12.95, Category: "wasparfum", Kind: domain.ProductKindScent},
		{ProductID: 1512, Title: "Full Moon", Price: 12.95, Category: "wasparfum", Kind: domain.ProductKindScent},
		{ProductID: 1822, Title: "Dryer Balls", Price: 9.95, Category: "accessoires", Kind: domain.ProductKindAccessory},
	}

	catalog := make(map[uint64]domain.SuggestedProduct, len(heroes))
	for _, h := range heroes {
		catalog[h.ProductID] = h
	}

	return Config{
		FreeShippingThreshold: defaultFreeShippingThreshold,
		Heroes:                heroes,
		Catalog:               catalog,
		DefaultCycleDays:      defaultCycleDays,
		CycleToleranceRatio:   defaultCycleToleranceRatio,
		MinToleranceDays:      defaultMinToleranceDays,
	}
}
