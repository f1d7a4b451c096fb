// Package routes contains the gin handlers for the fuel price API.
package routes

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/servo-saver/servo-saver-api/internal"
	"github.com/servo-saver/servo-saver-api/internal/models"
	"github.com/servo-saver/servo-saver-api/internal/rewards"
	"github.com/servo-saver/servo-saver-api/internal/stats"
)

const (
	DefaultRadiusKm = 5.0
	MaxRadiusKm     = 50.0
)

// PriceResolver is satisfied by internal.Resolver.
type PriceResolver interface {
	Resolve(ctx context.Context, lat, lng, radiusKm float64) *models.PriceResponse
}

// SearchConfig holds the route's tunable bounds.
type SearchConfig struct {
	MinRadiusKm float64
}

// Search handles GET /v1/fuel-prices/search. Latitude and longitude are
// required; radiusKm defaults to 5 and is clamped to the configured
// minimum. Optional query parameters filter by fuel type, brand, discount
// and partnership, sort the results and attach summary statistics.
func Search(resolver PriceResolver, cfg SearchConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, err := strconv.ParseFloat(c.Query("lat"), 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required and must be numeric"})
			return
		}
		lng, err := strconv.ParseFloat(c.Query("lng"), 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required and must be numeric"})
			return
		}

		radiusKm := DefaultRadiusKm
		if raw := c.Query("radiusKm"); raw != "" {
			radiusKm, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "radiusKm must be numeric"})
				return
			}
		}
		if radiusKm > MaxRadiusKm {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radiusKm must be 50 or less"})
			return
		}
		if radiusKm < cfg.MinRadiusKm {
			radiusKm = cfg.MinRadiusKm
		}

		var fuelType models.FuelType
		if raw := c.Query("fuelType"); raw != "" {
			if !models.IsValidFuelType(raw) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown fuelType"})
				return
			}
			fuelType = models.FuelType(raw)
		}

		sortBy := c.Query("sort")
		if sortBy != "" && sortBy != "cheapest" && sortBy != "closest" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be cheapest or closest"})
			return
		}
		if sortBy == "cheapest" && fuelType == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sort=cheapest requires fuelType"})
			return
		}

		resp := resolver.Resolve(c.Request.Context(), lat, lng, radiusKm)

		if brands := csvParam(c, "brands"); len(brands) > 0 {
			resp.Stations = filterBrands(resp.Stations, brandSet(brands))
		}
		if ids := csvParam(c, "partnerships"); len(ids) > 0 {
			resp.Stations = filterBrands(resp.Stations, rewards.ParticipatingBrands(ids))
		}
		if fuelType != "" {
			resp.Stations = restrictFuel(resp.Stations, fuelType)
		}
		if ids := csvParam(c, "discounts"); len(ids) > 0 {
			rewards.Apply(resp.Stations, ids)
		}

		switch sortBy {
		case "cheapest":
			sortCheapest(resp.Stations, fuelType)
		case "closest":
			sortClosest(resp.Stations, lat, lng)
		}

		resp.Meta.Count = len(resp.Stations)
		if c.Query("stats") == "true" {
			resp.Stats = stats.Derive(resp.Stations, stats.DefaultBucketSize)
		}
		resp.Attribution = internal.ATTRIBUTION

		c.JSON(http.StatusOK, resp)
	}
}

func csvParam(c *gin.Context, name string) []string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func brandSet(names []string) map[models.BrandName]bool {
	set := make(map[models.BrandName]bool, len(names))
	for _, name := range names {
		set[models.BrandName(name)] = true
	}
	return set
}

func filterBrands(stations []models.StationPriceData, allowed map[models.BrandName]bool) []models.StationPriceData {
	filtered := stations[:0]
	for _, s := range stations {
		if allowed[s.Brand] {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// restrictFuel narrows each station's price list to the requested fuel,
// dropping stations that do not sell it.
func restrictFuel(stations []models.StationPriceData, fuelType models.FuelType) []models.StationPriceData {
	filtered := stations[:0]
	for _, s := range stations {
		if price, ok := s.PriceFor(fuelType); ok {
			s.Prices = []models.Price{price}
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func sortCheapest(stations []models.StationPriceData, fuelType models.FuelType) {
	sort.SliceStable(stations, func(i, j int) bool {
		a, aok := stations[i].PriceFor(fuelType)
		b, bok := stations[j].PriceFor(fuelType)
		if aok != bok {
			return aok
		}
		return a.PriceCpl < b.PriceCpl
	})
}

func sortClosest(stations []models.StationPriceData, lat, lng float64) {
	sort.SliceStable(stations, func(i, j int) bool {
		return internal.DistanceKm(lat, lng, stations[i].Lat, stations[i].Lng) <
			internal.DistanceKm(lat, lng, stations[j].Lat, stations[j].Lng)
	})
}
