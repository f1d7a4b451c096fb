package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/kofalt/go-memoize"

	"github.com/servo-saver/servo-saver-api/internal/brands"
	"github.com/servo-saver/servo-saver-api/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// DefaultFuelAPIBaseURL is the state government open-data fuel endpoint.
	DefaultFuelAPIBaseURL = "https://api.fuel.service.vic.gov.au/open-data/v1/fuel"

	// clientUserAgent is the fixed client identifier sent upstream.
	clientUserAgent = "ServoSaver/1.0"

	defaultLiveCacheTTL = 5 * time.Minute
)

// ErrNoAPIKey is returned before any network call when no credential is
// configured.
var ErrNoAPIKey = errors.New("no fuel API key configured")

// HTTPStatusError is returned when a remote server responds with a non-2xx
// status.
type HTTPStatusError struct {
	URL        string
	Status     string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status response from %s: %s", e.URL, e.Status)
}

// LiveClientConfig configures the live price source.
type LiveClientConfig struct {
	// BaseURL overrides the government API endpoint (tests, staging).
	BaseURL string

	// APIKey is the static x-consumer-id credential. Empty means the live
	// tier fails immediately without a network call.
	APIKey string

	// HTTPClient overrides the transport (default: 10s timeout).
	HTTPClient *http.Client

	// CacheTTL is how long results are memoized per query (default 5m),
	// mirroring the upstream's revalidation window.
	CacheTTL time.Duration
}

// LiveClient fetches real station and price data from the government
// pricing API and normalizes it into the internal model.
type LiveClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   *memoize.Memoizer
}

func NewLiveClient(cfg LiveClientConfig) *LiveClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultFuelAPIBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = defaultLiveCacheTTL
	}
	return &LiveClient{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  client,
		cache:   memoize.NewMemoizer(ttl, 10*time.Minute),
	}
}

// FetchStations queries the live API for priced stations around a point.
// A missing credential, non-2xx status, malformed body, or an empty result
// after mapping are all errors: a reachable-but-empty live API is treated
// as suspect and handed to the fallback tier.
func (c *LiveClient) FetchStations(ctx context.Context, lat, lng, radiusKm float64) ([]models.StationPriceData, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	// Coalesced callers share one fetch; detach it from the first
	// caller's lifetime so a single disconnect cannot fail the group.
	fetchCtx := context.WithoutCancel(ctx)

	key := cacheKey("live", lat, lng, radiusKm)
	result, err, _ := c.cache.Memoize(key, func() (interface{}, error) {
		return c.fetchStations(fetchCtx, lat, lng, radiusKm)
	})
	if err != nil {
		return nil, err
	}
	return cloneStations(result.([]models.StationPriceData)), nil
}

func (c *LiveClient) fetchStations(ctx context.Context, lat, lng, radiusKm float64) ([]models.StationPriceData, error) {
	url := fmt.Sprintf("%s/stations?latitude=%v&longitude=%v&radius=%d",
		c.baseURL, lat, lng, int(radiusKm*1000))

	log.Printf("GET %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", clientUserAgent)
	req.Header.Set("x-consumer-id", c.apiKey)
	req.Header.Set("x-transactionid", uuid.New().String())
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close body: %v", err)
		}
	}()

	if resp.StatusCode > 299 {
		return nil, &HTTPStatusError{URL: url, Status: resp.Status, StatusCode: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	stations, err := decodeLiveStations(bodyBytes)
	if err != nil {
		return nil, err
	}

	if len(stations) == 0 {
		return nil, fmt.Errorf("no stations returned for (%.4f, %.4f)", lat, lng)
	}
	return stations, nil
}

// decodeLiveStations is the single normalization entry point for the
// upstream envelope. It unwraps the outer shape (bare array vs
// {"stations": [...]}), then dispatches each element on whether it is a
// station or a price-detail wrapper embedding one.
func decodeLiveStations(bodyBytes []byte) ([]models.StationPriceData, error) {
	if len(bodyBytes) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	var raw []jsoniter.RawMessage
	if bodyBytes[0] == '[' {
		if err := json.Unmarshal(bodyBytes, &raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
	} else {
		var envelope struct {
			Stations []jsoniter.RawMessage `json:"stations"`
		}
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		if envelope.Stations == nil {
			return nil, fmt.Errorf("unexpected response envelope")
		}
		raw = envelope.Stations
	}

	now := time.Now()
	out := make([]models.StationPriceData, 0, len(raw))
	for _, entry := range raw {
		var probe struct {
			Station *models.LiveStation `json:"station"`
		}
		if err := json.Unmarshal(entry, &probe); err != nil {
			return nil, fmt.Errorf("failed to unmarshal station entry: %w", err)
		}

		var station models.LiveStation
		var prices []models.LivePrice
		if probe.Station != nil {
			var detail models.LivePriceDetail
			if err := json.Unmarshal(entry, &detail); err != nil {
				return nil, fmt.Errorf("failed to unmarshal price detail: %w", err)
			}
			station = *detail.Station
			prices = detail.Prices
			if len(prices) == 0 {
				prices = station.Prices
			}
		} else {
			if err := json.Unmarshal(entry, &station); err != nil {
				return nil, fmt.Errorf("failed to unmarshal station: %w", err)
			}
			prices = station.Prices
		}

		if mapped, ok := toStationPriceData(&station, prices, now); ok {
			out = append(out, mapped)
		}
	}
	return out, nil
}

// toStationPriceData maps one upstream station into the internal model,
// dropping unrecognised fuel codes and non-positive prices per entry.
func toStationPriceData(s *models.LiveStation, prices []models.LivePrice, now time.Time) (models.StationPriceData, bool) {
	id := s.Identifier()
	if id == "" {
		return models.StationPriceData{}, false
	}

	lat, lng := s.Coordinates()
	mapped := make([]models.Price, 0, len(prices))
	for _, p := range prices {
		fuelType, ok := models.FuelTypeFromCode(p.FuelType)
		if !ok {
			continue
		}
		if p.Price <= 0 {
			continue
		}
		updatedAt, err := time.Parse(time.RFC3339, p.LastUpdated)
		if err != nil {
			updatedAt = now
		}
		mapped = append(mapped, models.Price{
			StationID: id,
			FuelType:  fuelType,
			PriceCpl:  p.Price,
			UpdatedAt: updatedAt,
		})
	}

	return models.StationPriceData{
		Station: models.Station{
			ID:      id,
			Name:    s.Name,
			Brand:   brands.Resolve(s.Brand),
			Address: s.Address,
			Lat:     lat,
			Lng:     lng,
		},
		Prices: mapped,
	}, true
}

func cacheKey(prefix string, lat, lng, radiusKm float64) string {
	return fmt.Sprintf("%s:%.4f:%.4f:%.1f", prefix, lat, lng, radiusKm)
}

// cloneStations deep-copies a cached result, each price list included, so
// callers can filter, sort and annotate without corrupting the cache or
// racing other cache hits.
func cloneStations(stations []models.StationPriceData) []models.StationPriceData {
	out := make([]models.StationPriceData, len(stations))
	for i, s := range stations {
		s.Prices = append([]models.Price(nil), s.Prices...)
		out[i] = s
	}
	return out
}
