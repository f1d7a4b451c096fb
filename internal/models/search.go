package models

// Source tags the provenance of a price response. MOCK covers both the
// geographic-fallback and pure-synthetic tiers; callers cannot tell them
// apart.
type Source string

const (
	SourceLive Source = "LIVE"
	SourceMock Source = "MOCK"
)

type Meta struct {
	Count  int    `json:"count"`
	Source Source `json:"source"`
}

// PriceResponse is the envelope returned by the search endpoint.
// Meta.Count always equals len(Stations).
type PriceResponse struct {
	Stations    []StationPriceData `json:"stations"`
	Meta        Meta               `json:"meta"`
	Stats       *SearchStatistics  `json:"stats,omitempty"`
	Attribution []string           `json:"attribution,omitempty"`
}

// SearchStatistics summarises the price landscape of a search result,
// keyed by fuel type.
type SearchStatistics struct {
	CheapestStations  map[FuelType][]string       `json:"cheapest_stations"`
	LowestPrice       map[FuelType]float64        `json:"lowest_price"`
	AveragePrice      map[FuelType]float64        `json:"average_price"`
	HighestPrice      map[FuelType]float64        `json:"highest_price"`
	PriceDistribution map[FuelType]map[string]int `json:"price_distribution"`
	StandardDeviation map[FuelType]float64        `json:"standard_deviation"`
	BrandDistribution map[BrandName]int           `json:"brand_distribution"`
}

// GeocodeResult is a single forward-geocoding hit.
type GeocodeResult struct {
	DisplayName string  `json:"displayName"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}
