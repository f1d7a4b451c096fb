package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servo-saver/servo-saver-api/internal"
	"github.com/servo-saver/servo-saver-api/internal/models"
)

type stubResolver struct {
	stations []models.StationPriceData
	source   models.Source
	lastLat  float64
	lastLng  float64
	lastRad  float64
}

func (s *stubResolver) Resolve(_ context.Context, lat, lng, radiusKm float64) *models.PriceResponse {
	s.lastLat, s.lastLng, s.lastRad = lat, lng, radiusKm
	return &models.PriceResponse{
		Stations: append([]models.StationPriceData(nil), s.stations...),
		Meta:     models.Meta{Count: len(s.stations), Source: s.source},
	}
}

func testStation(id string, brand models.BrandName, lat, lng float64, prices map[models.FuelType]float64) models.StationPriceData {
	s := models.StationPriceData{
		Station: models.Station{ID: id, Name: fmt.Sprintf("%s %s", brand, id), Brand: brand, Lat: lat, Lng: lng},
	}
	for fuelType, price := range prices {
		s.Prices = append(s.Prices, models.Price{StationID: id, FuelType: fuelType, PriceCpl: price})
	}
	return s
}

func searchRouter(resolver PriceResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/fuel-prices/search", Search(resolver, SearchConfig{MinRadiusKm: 1}))
	return r
}

func doSearch(t *testing.T, r *gin.Engine, query string) (*httptest.ResponseRecorder, *models.PriceResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/v1/fuel-prices/search?"+query, nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)

	var resp models.PriceResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, &resp
}

func TestSearchRequiresCoordinates(t *testing.T) {
	r := searchRouter(&stubResolver{source: models.SourceMock})

	for _, query := range []string{"", "lat=-37.8", "lng=144.9", "lat=abc&lng=144.9", "lat=-37.8&lng="} {
		t.Run(query, func(t *testing.T) {
			w, _ := doSearch(t, r, query)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSearchDefaultsAndClampsRadius(t *testing.T) {
	resolver := &stubResolver{source: models.SourceMock}
	r := searchRouter(resolver)

	w, _ := doSearch(t, r, "lat=-37.8&lng=144.9")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5.0, resolver.lastRad)

	doSearch(t, r, "lat=-37.8&lng=144.9&radiusKm=0.2")
	assert.Equal(t, 1.0, resolver.lastRad)

	doSearch(t, r, "lat=-37.8&lng=144.9&radiusKm=12")
	assert.Equal(t, 12.0, resolver.lastRad)

	w, _ = doSearch(t, r, "lat=-37.8&lng=144.9&radiusKm=51")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doSearch(t, r, "lat=-37.8&lng=144.9&radiusKm=wide")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEnvelope(t *testing.T) {
	resolver := &stubResolver{
		source: models.SourceLive,
		stations: []models.StationPriceData{
			testStation("s1", models.BrandShell, -37.81, 144.96, map[models.FuelType]float64{models.FuelU91: 185.9}),
			testStation("s2", models.BrandBP, -37.82, 144.97, map[models.FuelType]float64{models.FuelU91: 189.9}),
		},
	}
	r := searchRouter(resolver)

	w, resp := doSearch(t, r, "lat=-37.8&lng=144.9")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SourceLive, resp.Meta.Source)
	assert.Equal(t, 2, resp.Meta.Count)
	assert.Len(t, resp.Stations, 2)
	assert.NotEmpty(t, resp.Attribution)
	assert.Nil(t, resp.Stats)
}

func TestSearchBrandFilter(t *testing.T) {
	resolver := &stubResolver{
		source: models.SourceMock,
		stations: []models.StationPriceData{
			testStation("s1", models.BrandShell, -37.81, 144.96, map[models.FuelType]float64{models.FuelU91: 185.9}),
			testStation("s2", models.BrandBP, -37.82, 144.97, map[models.FuelType]float64{models.FuelU91: 189.9}),
			testStation("s3", models.BrandCostco, -37.83, 144.98, map[models.FuelType]float64{models.FuelU91: 169.9}),
		},
	}
	r := searchRouter(resolver)

	_, resp := doSearch(t, r, "lat=-37.8&lng=144.9&brands=Shell,Costco")
	assert.Equal(t, 2, resp.Meta.Count)
	for _, s := range resp.Stations {
		assert.Contains(t, []models.BrandName{models.BrandShell, models.BrandCostco}, s.Brand)
	}
}

func TestSearchFuelTypeRestriction(t *testing.T) {
	resolver := &stubResolver{
		source: models.SourceMock,
		stations: []models.StationPriceData{
			testStation("s1", models.BrandShell, -37.81, 144.96, map[models.FuelType]float64{
				models.FuelU91:    185.9,
				models.FuelDiesel: 192.9,
			}),
			testStation("s2", models.BrandBP, -37.82, 144.97, map[models.FuelType]float64{models.FuelU91: 189.9}),
		},
	}
	r := searchRouter(resolver)

	_, resp := doSearch(t, r, "lat=-37.8&lng=144.9&fuelType=Diesel")
	assert.Equal(t, 1, resp.Meta.Count)
	assert.Equal(t, "s1", resp.Stations[0].ID)
	assert.Len(t, resp.Stations[0].Prices, 1)
	assert.Equal(t, models.FuelDiesel, resp.Stations[0].Prices[0].FuelType)

	w, _ := doSearch(t, r, "lat=-37.8&lng=144.9&fuelType=E85")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchSortCheapest(t *testing.T) {
	resolver := &stubResolver{
		source: models.SourceMock,
		stations: []models.StationPriceData{
			testStation("s1", models.BrandShell, -37.81, 144.96, map[models.FuelType]float64{models.FuelU91: 189.9}),
			testStation("s2", models.BrandCostco, -37.82, 144.97, map[models.FuelType]float64{models.FuelU91: 169.9}),
			testStation("s3", models.BrandBP, -37.83, 144.98, map[models.FuelType]float64{models.FuelU91: 185.9}),
		},
	}
	r := searchRouter(resolver)

	_, resp := doSearch(t, r, "lat=-37.8&lng=144.9&fuelType=U91&sort=cheapest")
	require.Len(t, resp.Stations, 3)
	assert.Equal(t, "s2", resp.Stations[0].ID)
	assert.Equal(t, "s3", resp.Stations[1].ID)
	assert.Equal(t, "s1", resp.Stations[2].ID)

	w, _ := doSearch(t, r, "lat=-37.8&lng=144.9&sort=cheapest")
	assert.Equal(t, http.StatusBadRequest, w.Code, "sorting by price needs a fuel type")
}

func TestSearchSortClosest(t *testing.T) {
	resolver := &stubResolver{
		source: models.SourceMock,
		stations: []models.StationPriceData{
			testStation("far", models.BrandShell, -37.95, 145.2, map[models.FuelType]float64{models.FuelU91: 185.9}),
			testStation("near", models.BrandBP, -37.81, 144.97, map[models.FuelType]float64{models.FuelU91: 189.9}),
		},
	}
	r := searchRouter(resolver)

	_, resp := doSearch(t, r, "lat=-37.81&lng=144.96&sort=closest")
	require.Len(t, resp.Stations, 2)
	assert.Equal(t, "near", resp.Stations[0].ID)
}

func TestSearchDiscounts(t *testing.T) {
	resolver := &stubResolver{
		source: models.SourceMock,
		stations: []models.StationPriceData{
			testStation("s1", models.BrandShell, -37.81, 144.96, map[models.FuelType]float64{models.FuelU91: 185.9}),
			testStation("s2", models.BrandBP, -37.82, 144.97, map[models.FuelType]float64{models.FuelU91: 189.9}),
		},
	}
	r := searchRouter(resolver)

	_, resp := doSearch(t, r, "lat=-37.8&lng=144.9&discounts=coles-4c")
	require.Len(t, resp.Stations, 2)
	assert.Equal(t, 181.9, resp.Stations[0].Prices[0].DiscountedCpl)
	assert.Equal(t, 0.0, resp.Stations[1].Prices[0].DiscountedCpl)
}

func TestSearchPartnershipsFilter(t *testing.T) {
	resolver := &stubResolver{
		source: models.SourceMock,
		stations: []models.StationPriceData{
			testStation("s1", models.BrandShell, -37.81, 144.96, map[models.FuelType]float64{models.FuelU91: 185.9}),
			testStation("s2", models.BrandBP, -37.82, 144.97, map[models.FuelType]float64{models.FuelU91: 189.9}),
			testStation("s3", models.BrandUnited, -37.83, 144.98, map[models.FuelType]float64{models.FuelU91: 179.9}),
		},
	}
	r := searchRouter(resolver)

	_, resp := doSearch(t, r, "lat=-37.8&lng=144.9&partnerships=qantas")
	assert.Equal(t, 1, resp.Meta.Count)
	assert.Equal(t, "s2", resp.Stations[0].ID)
}

// Filtering, sorting and discount annotation happen per request; a later
// request served from the same upstream cache must see the original data.
func TestSearchLeavesCachedStationsPristine(t *testing.T) {
	overpassBody := `{"elements": [
		{"type": "node", "id": 1, "lat": -37.80, "lon": 144.95,
			"tags": {"amenity": "fuel", "name": "Shell Carlton"}},
		{"type": "node", "id": 2, "lat": -37.81, "lon": 144.96,
			"tags": {"amenity": "fuel", "name": "BP Fitzroy"}}
	]}`
	overpass := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(overpassBody))
	}))
	defer overpass.Close()

	gen := internal.NewPriceGenerator(internal.DefaultMarketBasePriceCpl)
	gen.Variance = func() float64 { return 0 }
	resolver := internal.NewResolver(
		nil,
		internal.NewOSMClient(internal.OSMClientConfig{URL: overpass.URL, Generator: gen}),
		internal.NewMockSource(gen),
	)
	r := searchRouter(resolver)

	// Exercise every mutating path: brand compaction, fuel restriction,
	// price sort and discount annotation.
	w, resp := doSearch(t, r, "lat=-37.8&lng=144.9&fuelType=U91&brands=BP&sort=cheapest")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, resp.Meta.Count)

	w, resp = doSearch(t, r, "lat=-37.8&lng=144.9&discounts=coles-4c")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, resp.Meta.Count)

	w, resp = doSearch(t, r, "lat=-37.8&lng=144.9")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Stations, 2)

	assert.Equal(t, "osm-1", resp.Stations[0].ID)
	assert.Equal(t, models.BrandShell, resp.Stations[0].Brand)
	assert.Equal(t, "osm-2", resp.Stations[1].ID)
	assert.Equal(t, models.BrandBP, resp.Stations[1].Brand)
	for _, s := range resp.Stations {
		assert.Len(t, s.Prices, 4, "station %s must keep its full price list", s.ID)
		for _, p := range s.Prices {
			assert.Zero(t, p.DiscountedCpl, "station %s must carry no residual discount", s.ID)
		}
	}
}

func TestSearchStats(t *testing.T) {
	resolver := &stubResolver{
		source: models.SourceMock,
		stations: []models.StationPriceData{
			testStation("s1", models.BrandShell, -37.81, 144.96, map[models.FuelType]float64{models.FuelU91: 180.0}),
			testStation("s2", models.BrandBP, -37.82, 144.97, map[models.FuelType]float64{models.FuelU91: 190.0}),
		},
	}
	r := searchRouter(resolver)

	_, resp := doSearch(t, r, "lat=-37.8&lng=144.9&stats=true")
	if assert.NotNil(t, resp.Stats) {
		assert.Equal(t, 180.0, resp.Stats.LowestPrice[models.FuelU91])
		assert.Equal(t, 185.0, resp.Stats.AveragePrice[models.FuelU91])
	}
}
