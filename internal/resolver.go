package internal

import (
	"context"
	"log"

	"github.com/tavsec/gin-healthcheck/checks"

	"github.com/servo-saver/servo-saver-api/internal/models"
)

// ATTRIBUTION credits the upstream data sources in search responses.
var ATTRIBUTION = []string{
	"Fuel price data © State of Victoria",
	"Map data © OpenStreetMap contributors",
}

// StationSource yields priced stations around a point. All three tiers
// implement it.
type StationSource interface {
	FetchStations(ctx context.Context, lat, lng, radiusKm float64) ([]models.StationPriceData, error)
}

// Resolver runs the tiered sourcing strategy: live government prices,
// then real OSM locations with synthetic prices, then a fully synthetic
// station set. One pass, no retries; the first tier producing at least
// one station wins. Only the live tier earns the LIVE provenance tag.
type Resolver struct {
	live      StationSource
	fallback  StationSource
	synthetic StationSource
}

func NewResolver(live, fallback, synthetic StationSource) *Resolver {
	return &Resolver{
		live:      live,
		fallback:  fallback,
		synthetic: synthetic,
	}
}

// Resolve never fails: the synthetic tier is infallible, so every valid
// query produces a populated response. Tier failures are logged and
// swallowed.
func (r *Resolver) Resolve(ctx context.Context, lat, lng, radiusKm float64) *models.PriceResponse {
	if r.live != nil {
		stations, err := r.live.FetchStations(ctx, lat, lng, radiusKm)
		switch {
		case err != nil:
			log.Printf("live source failed, using fallback: %v", err)
		case len(stations) == 0:
			log.Printf("live source returned no stations, using fallback")
		default:
			return envelope(stations, models.SourceLive)
		}
	}

	if r.fallback != nil {
		stations, err := r.fallback.FetchStations(ctx, lat, lng, radiusKm)
		if err != nil {
			log.Printf("geographic fallback failed, using synthetic data: %v", err)
		} else if len(stations) > 0 {
			return envelope(stations, models.SourceMock)
		}
	}

	stations, err := r.synthetic.FetchStations(ctx, lat, lng, radiusKm)
	if err != nil {
		// Cannot happen; keep the envelope invariant anyway.
		log.Printf("synthetic source failed: %v", err)
		stations = nil
	}
	return envelope(stations, models.SourceMock)
}

func envelope(stations []models.StationPriceData, source models.Source) *models.PriceResponse {
	if stations == nil {
		stations = []models.StationPriceData{}
	}
	return &models.PriceResponse{
		Stations: stations,
		Meta: models.Meta{
			Count:  len(stations),
			Source: source,
		},
	}
}

// Check exposes the pipeline to the healthcheck endpoint. The pipeline is
// healthy whenever its terminal tier is wired, since that tier cannot fail.
func (r *Resolver) Check() checks.Check {
	return resolverCheck{resolver: r}
}

type resolverCheck struct {
	resolver *Resolver
}

func (c resolverCheck) Pass() bool {
	return c.resolver.synthetic != nil
}

func (c resolverCheck) Name() string {
	return "price-pipeline"
}
