package internal

import (
	"log"
	"strconv"
	"time"

	"github.com/muesli/gominatim"
	"github.com/patrickmn/go-cache"

	"github.com/servo-saver/servo-saver-api/internal/models"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

const (
	geocodeCacheExpiry  = 5 * time.Minute
	geocodeCacheCleanup = 10 * time.Minute
)

// nominatimSearch is swapped out in tests.
type nominatimSearch func(query string) ([]gominatim.SearchResult, error)

// Geocoder resolves free-text place queries to coordinates via Nominatim,
// caching results to stay inside the public instance's usage policy.
type Geocoder struct {
	cache  *cache.Cache
	search nominatimSearch
}

func NewGeocoder(serverURL string) *Geocoder {
	if serverURL == "" {
		serverURL = DefaultNominatimURL
	}
	gominatim.SetServer(serverURL)
	return &Geocoder{
		cache: cache.New(geocodeCacheExpiry, geocodeCacheCleanup),
		search: func(query string) ([]gominatim.SearchResult, error) {
			q := gominatim.SearchQuery{Q: query}
			return q.Get()
		},
	}
}

func (g *Geocoder) Search(query string) ([]models.GeocodeResult, error) {
	if cached, found := g.cache.Get(query); found {
		return cached.([]models.GeocodeResult), nil
	}

	raw, err := g.search(query)
	if err != nil {
		return nil, err
	}

	results := make([]models.GeocodeResult, 0, len(raw))
	for _, r := range raw {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			log.Printf("skipping geocode result with bad latitude %q: %v", r.Lat, err)
			continue
		}
		lng, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			log.Printf("skipping geocode result with bad longitude %q: %v", r.Lon, err)
			continue
		}
		results = append(results, models.GeocodeResult{
			DisplayName: r.DisplayName,
			Lat:         lat,
			Lng:         lng,
		})
	}

	g.cache.Set(query, results, cache.DefaultExpiration)
	return results, nil
}
