// Package stats derives summary statistics over a set of priced stations.
package stats

import (
	"fmt"
	"math"

	"github.com/servo-saver/servo-saver-api/internal/models"
)

const DefaultBucketSize = 5

// Derive computes per-fuel price statistics across the given stations:
// the cheapest stations for each fuel, lowest/average/highest prices, a
// bucketed price distribution and a brand distribution. Returns nil when
// no station carries a price.
func Derive(stations []models.StationPriceData, bucketSize int) *models.SearchStatistics {
	if bucketSize <= 0 {
		bucketSize = DefaultBucketSize
	}

	cheapest := make(map[models.FuelType][]string)
	lowest := make(map[models.FuelType]float64)
	highest := make(map[models.FuelType]float64)
	totals := make(map[models.FuelType]float64)
	counts := make(map[models.FuelType]int)
	samples := make(map[models.FuelType][]float64)
	distribution := make(map[models.FuelType]map[string]int)
	brandDistribution := make(map[models.BrandName]int)

	priced := false
	for _, s := range stations {
		brandDistribution[s.Brand]++
		for _, fuelType := range models.AllFuelTypes() {
			price, ok := s.PriceFor(fuelType)
			if !ok || price.PriceCpl <= 0 {
				continue
			}
			priced = true
			v := price.PriceCpl

			if low, seen := lowest[fuelType]; !seen || v < low {
				lowest[fuelType] = v
				cheapest[fuelType] = []string{s.ID}
			} else if v == low {
				cheapest[fuelType] = append(cheapest[fuelType], s.ID)
			}
			if high, seen := highest[fuelType]; !seen || v > high {
				highest[fuelType] = v
			}
			totals[fuelType] += v
			counts[fuelType]++
			samples[fuelType] = append(samples[fuelType], v)

			if distribution[fuelType] == nil {
				distribution[fuelType] = make(map[string]int)
			}
			distribution[fuelType][bucket(v, bucketSize)]++
		}
	}

	if !priced {
		return nil
	}

	average := make(map[models.FuelType]float64, len(totals))
	for fuelType, total := range totals {
		average[fuelType] = round1(total / float64(counts[fuelType]))
	}

	stddev := make(map[models.FuelType]float64)
	for fuelType, values := range samples {
		if len(values) > 1 {
			stddev[fuelType] = round1(standardDeviation(values, average[fuelType]))
		}
	}

	return &models.SearchStatistics{
		CheapestStations:  cheapest,
		LowestPrice:       lowest,
		AveragePrice:      average,
		HighestPrice:      highest,
		PriceDistribution: distribution,
		StandardDeviation: stddev,
		BrandDistribution: brandDistribution,
	}
}

func bucket(price float64, size int) string {
	low := int(math.Floor(price/float64(size))) * size
	return fmt.Sprintf("%d-%d", low, low+size)
}

func standardDeviation(values []float64, mean float64) float64 {
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
