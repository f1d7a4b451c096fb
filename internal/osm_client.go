package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kofalt/go-memoize"

	"github.com/servo-saver/servo-saver-api/internal/brands"
	"github.com/servo-saver/servo-saver-api/internal/models"
)

const (
	// DefaultOverpassURL is the public Overpass API interpreter endpoint.
	DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

	// OSM data moves slowly; cache generously to be polite to the public
	// Overpass instance.
	defaultOSMCacheTTL = time.Hour
)

// OSMClientConfig configures the geographic fallback source.
type OSMClientConfig struct {
	URL        string
	HTTPClient *http.Client
	Generator  *PriceGenerator
	CacheTTL   time.Duration
}

// OSMClient queries OpenStreetMap via Overpass for real fuel station
// locations and decorates them with synthetic prices.
type OSMClient struct {
	url    string
	client *http.Client
	gen    *PriceGenerator
	cache  *memoize.Memoizer
}

func NewOSMClient(cfg OSMClientConfig) *OSMClient {
	url := cfg.URL
	if url == "" {
		url = DefaultOverpassURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	gen := cfg.Generator
	if gen == nil {
		gen = NewPriceGenerator(DefaultMarketBasePriceCpl)
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = defaultOSMCacheTTL
	}
	return &OSMClient{
		url:    url,
		client: client,
		gen:    gen,
		cache:  memoize.NewMemoizer(ttl, 10*time.Minute),
	}
}

// FetchStations returns real fuel station locations within the radius,
// each priced by the synthetic generator for all four fuel types.
func (c *OSMClient) FetchStations(ctx context.Context, lat, lng, radiusKm float64) ([]models.StationPriceData, error) {
	// Coalesced callers share one fetch; detach it from the first
	// caller's lifetime so a single disconnect cannot fail the group.
	fetchCtx := context.WithoutCancel(ctx)

	key := cacheKey("osm", lat, lng, radiusKm)
	result, err, _ := c.cache.Memoize(key, func() (interface{}, error) {
		return c.fetchStations(fetchCtx, lat, lng, radiusKm)
	})
	if err != nil {
		return nil, err
	}
	return cloneStations(result.([]models.StationPriceData)), nil
}

func (c *OSMClient) fetchStations(ctx context.Context, lat, lng, radiusKm float64) ([]models.StationPriceData, error) {
	radiusMeters := int(radiusKm * 1000)
	query := fmt.Sprintf(`[out:json][timeout:25];
(
  node["amenity"="fuel"](around:%d,%f,%f);
  way["amenity"="fuel"](around:%d,%f,%f);
);
out center;`, radiusMeters, lat, lng, radiusMeters, lat, lng)

	log.Printf("POST %s", c.url)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", c.url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close body: %v", err)
		}
	}()

	if resp.StatusCode > 299 {
		return nil, &HTTPStatusError{URL: c.url, Status: resp.Status, StatusCode: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var overpass models.OverpassResponse
	if err := json.Unmarshal(bodyBytes, &overpass); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	now := time.Now()
	stations := make([]models.StationPriceData, 0, len(overpass.Elements))
	for i := range overpass.Elements {
		if station, ok := c.toStation(&overpass.Elements[i], now); ok {
			stations = append(stations, station)
		}
	}
	return stations, nil
}

func (c *OSMClient) toStation(el *models.OverpassElement, now time.Time) (models.StationPriceData, bool) {
	stationLat, stationLng, ok := el.Coordinates()
	if !ok {
		return models.StationPriceData{}, false
	}

	tags := el.Tags
	combined := strings.TrimSpace(tags["name"] + " " + tags["brand"] + " " + tags["operator"])
	brand := brands.Resolve(combined)

	name := tags["name"]
	if name == "" {
		name = fmt.Sprintf("%s Station", brand)
	}

	id := fmt.Sprintf("osm-%d", el.ID)
	return models.StationPriceData{
		Station: models.Station{
			ID:      id,
			Name:    name,
			Brand:   brand,
			Address: buildAddress(tags, stationLat, stationLng),
			Lat:     stationLat,
			Lng:     stationLng,
		},
		Prices: c.gen.PricesFor(id, combined, now),
	}, true
}

// buildAddress prefers structured street tags, falling back to a rounded
// coordinate string when OSM carries no address.
func buildAddress(tags map[string]string, lat, lng float64) string {
	street := tags["addr:street"]
	if street == "" {
		return fmt.Sprintf("%.3f, %.3f", lat, lng)
	}

	address := strings.TrimSpace(tags["addr:housenumber"] + " " + street)
	if suburb := tags["addr:suburb"]; suburb != "" {
		address += ", " + suburb
	} else {
		address += " VIC"
	}
	return address
}
