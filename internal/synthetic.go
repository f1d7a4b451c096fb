package internal

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/servo-saver/servo-saver-api/internal/brands"
	"github.com/servo-saver/servo-saver-api/internal/models"
)

// DefaultMarketBasePriceCpl is the regional U91 price used to anchor
// synthetic prices when no override is configured.
const DefaultMarketBasePriceCpl = 182.9

// Per-brand discount/premium relative to the market base price, in cpl.
var brandOffsets = map[models.BrandName]float64{
	models.BrandCostco:      -15.0,
	models.BrandLiberty:     -8.0,
	models.BrandMetro:       -8.0,
	models.BrandUnited:      -4.0,
	models.BrandAmpol:       0.0, // market base
	models.BrandBP:          1.0,
	models.BrandShell:       1.0,
	models.BrandSevenEleven: 2.0,
	models.BrandIndependent: -5.0,
}

// Per-fuel premium over U91, in cpl.
var fuelOffsets = map[models.FuelType]float64{
	models.FuelU91:    0.0,
	models.FuelU95:    14.0,
	models.FuelU98:    22.0,
	models.FuelDiesel: 2.0,
}

// VarianceFunc produces the random spread added to each synthetic price,
// in [0, 1.8) cpl. Injectable so tests can pin it to zero.
type VarianceFunc func() float64

func defaultVariance() float64 {
	return rand.Float64() * 1.8
}

// PriceGenerator produces plausible cents-per-litre values for a
// (fuel type, brand) pair around a market base price. It never fails:
// every input yields a finite positive price.
type PriceGenerator struct {
	BasePrice float64
	Variance  VarianceFunc
}

func NewPriceGenerator(basePrice float64) *PriceGenerator {
	if basePrice <= 0 {
		basePrice = DefaultMarketBasePriceCpl
	}
	return &PriceGenerator{
		BasePrice: basePrice,
		Variance:  defaultVariance,
	}
}

// Price returns a one-decimal cpl value for the fuel type and brand text.
// The brand text goes through the shared alias table, so "Caltex Woori
// Yallock" prices like an Ampol site.
func (g *PriceGenerator) Price(fuelType models.FuelType, brandText string) float64 {
	brand := brands.Resolve(brandText)
	return round1(g.BasePrice + brandOffsets[brand] + fuelOffsets[fuelType] + g.Variance())
}

// PricesFor returns one price per fuel type for a station.
func (g *PriceGenerator) PricesFor(stationID, brandText string, updatedAt time.Time) []models.Price {
	fuelTypes := models.AllFuelTypes()
	prices := make([]models.Price, 0, len(fuelTypes))
	for _, ft := range fuelTypes {
		prices = append(prices, models.Price{
			StationID: stationID,
			FuelType:  ft,
			PriceCpl:  g.Price(ft, brandText),
			UpdatedAt: updatedAt,
		})
	}
	return prices
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// MockSource is the last-resort tier: it fabricates a station set around
// the requested point. It always succeeds.
type MockSource struct {
	gen *PriceGenerator
}

func NewMockSource(gen *PriceGenerator) *MockSource {
	return &MockSource{gen: gen}
}

// FetchStations scatters 10-19 synthetic stations uniformly inside the
// radius. Roughly 70% carry a major brand, the rest are independents.
func (m *MockSource) FetchStations(_ context.Context, lat, lng, radiusKm float64) ([]models.StationPriceData, error) {
	count := rand.Intn(10) + 10
	stations := make([]models.StationPriceData, 0, count)
	now := time.Now()
	major := models.MajorBrands()

	for i := 0; i < count; i++ {
		// sqrt keeps the scatter uniform over the disc area
		r := (radiusKm / 111) * math.Sqrt(rand.Float64())
		theta := rand.Float64() * 2 * math.Pi
		stationLat := lat + r*math.Cos(theta)
		stationLng := lng + r*math.Sin(theta)/math.Cos(lat*math.Pi/180)

		brand := models.BrandIndependent
		if rand.Float64() > 0.3 {
			brand = major[rand.Intn(len(major))]
		}

		id := fmt.Sprintf("mock-%d", i)
		updatedAt := now.Add(-time.Duration(rand.Intn(24*60)) * time.Minute)

		stations = append(stations, models.StationPriceData{
			Station: models.Station{
				ID:      id,
				Name:    fmt.Sprintf("%s Station %d", brand, i+1),
				Brand:   brand,
				Address: fmt.Sprintf("%d Mock Street, VIC", rand.Intn(100)+1),
				Lat:     stationLat,
				Lng:     stationLng,
			},
			Prices: m.gen.PricesFor(id, string(brand), updatedAt),
		})
	}

	return stations, nil
}
