package models

import "time"

// FuelType is the closed set of fuel grades tracked by the API.
type FuelType string

const (
	FuelU91    FuelType = "U91"
	FuelU95    FuelType = "U95"
	FuelU98    FuelType = "U98"
	FuelDiesel FuelType = "Diesel"
)

// AllFuelTypes returns every recognised fuel type, in display order.
func AllFuelTypes() []FuelType {
	return []FuelType{FuelU91, FuelU95, FuelU98, FuelDiesel}
}

// FuelTypeFromCode maps an upstream fuel code onto an internal fuel type.
// Unknown codes return ok=false and must not produce a Price record.
func FuelTypeFromCode(code string) (FuelType, bool) {
	switch code {
	case "U91":
		return FuelU91, true
	case "P95":
		return FuelU95, true
	case "P98":
		return FuelU98, true
	case "DSL", "PDSL":
		return FuelDiesel, true
	default:
		return "", false
	}
}

// IsValidFuelType reports whether s is one of the internal fuel type names.
func IsValidFuelType(s string) bool {
	switch FuelType(s) {
	case FuelU91, FuelU95, FuelU98, FuelDiesel:
		return true
	default:
		return false
	}
}

// BrandName is the closed set of station brands.
type BrandName string

const (
	BrandAmpol       BrandName = "Ampol"
	BrandBP          BrandName = "BP"
	BrandShell       BrandName = "Shell"
	BrandSevenEleven BrandName = "7-Eleven"
	BrandUnited      BrandName = "United"
	BrandCostco      BrandName = "Costco"
	BrandLiberty     BrandName = "Liberty"
	BrandMetro       BrandName = "Metro"
	BrandIndependent BrandName = "Independent"
)

// MajorBrands are the widely recognised national chains, used when
// synthesising station sets.
func MajorBrands() []BrandName {
	return []BrandName{BrandAmpol, BrandBP, BrandShell, BrandSevenEleven, BrandUnited}
}

// IsValidBrand reports whether s is one of the nine brand names.
func IsValidBrand(s string) bool {
	switch BrandName(s) {
	case BrandAmpol, BrandBP, BrandShell, BrandSevenEleven, BrandUnited,
		BrandCostco, BrandLiberty, BrandMetro, BrandIndependent:
		return true
	default:
		return false
	}
}

// Station is a fuel station location. IDs are source-prefixed ("osm-",
// "mock-") except for live stations, which keep their upstream code.
type Station struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Brand   BrandName `json:"brand"`
	Address string    `json:"address"`
	Lat     float64   `json:"lat"`
	Lng     float64   `json:"lng"`
}

// Price is one fuel price at a station, in cents per litre.
type Price struct {
	StationID string    `json:"stationId"`
	FuelType  FuelType  `json:"fuelType"`
	PriceCpl  float64   `json:"priceCpl"`
	UpdatedAt time.Time `json:"updatedAt"`

	// DiscountedCpl is set only when the caller asked for a loyalty
	// discount to be applied to this station's brand.
	DiscountedCpl float64 `json:"discountedCpl,omitempty"`
}

// StationPriceData is a station together with its current prices.
type StationPriceData struct {
	Station
	Prices []Price `json:"prices"`
}

// PriceFor returns the first price of the given fuel type, if any.
// Duplicate entries for the same fuel type are not reconciled; the first
// match wins.
func (s *StationPriceData) PriceFor(fuelType FuelType) (Price, bool) {
	for _, p := range s.Prices {
		if p.FuelType == fuelType {
			return p, true
		}
	}
	return Price{}, false
}
