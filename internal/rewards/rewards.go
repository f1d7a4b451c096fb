// Package rewards models the loyalty discounts and partnership programs
// offered by fuel retailers, and applies selected discounts to priced
// station results.
package rewards

import "github.com/servo-saver/servo-saver-api/internal/models"

// DiscountOption is a per-litre discount a motorist can unlock with a
// shopper docket or a retailer app.
type DiscountOption struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	CentsOff float64            `json:"centsOff"`
	Brands   []models.BrandName `json:"brands"`
}

// Partnership links an external loyalty scheme to the fuel brands where
// membership earns points or unlocks offers.
type Partnership struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Brands []models.BrandName `json:"brands"`
}

var discountOptions = []DiscountOption{
	{ID: "coles-4c", Name: "Coles shopper docket", CentsOff: 4, Brands: []models.BrandName{models.BrandShell}},
	{ID: "woolworths-4c", Name: "Woolworths shopper docket", CentsOff: 4, Brands: []models.BrandName{models.BrandAmpol}},
	{ID: "racv", Name: "RACV member discount", CentsOff: 4, Brands: []models.BrandName{models.BrandAmpol}},
	{ID: "united-2c", Name: "United app offer", CentsOff: 2, Brands: []models.BrandName{models.BrandUnited}},
	{ID: "711-app", Name: "7-Eleven app fuel lock", CentsOff: 2, Brands: []models.BrandName{models.BrandSevenEleven}},
}

var partnerships = []Partnership{
	{ID: "qantas", Name: "Qantas Frequent Flyer", Brands: []models.BrandName{models.BrandBP}},
	{ID: "flybuys", Name: "Flybuys", Brands: []models.BrandName{models.BrandShell}},
	{ID: "everyday-rewards", Name: "Everyday Rewards", Brands: []models.BrandName{models.BrandAmpol}},
	{ID: "velocity", Name: "Velocity", Brands: []models.BrandName{models.BrandSevenEleven}},
	{ID: "racv", Name: "RACV", Brands: []models.BrandName{models.BrandAmpol, models.BrandUnited}},
}

func AvailableDiscounts() []DiscountOption {
	return discountOptions
}

func Partnerships() []Partnership {
	return partnerships
}

func DiscountByID(id string) (DiscountOption, bool) {
	for _, d := range discountOptions {
		if d.ID == id {
			return d, true
		}
	}
	return DiscountOption{}, false
}

// ParticipatingBrands collects the brands covered by the named
// partnerships. Unknown ids are ignored.
func ParticipatingBrands(ids []string) map[models.BrandName]bool {
	brands := make(map[models.BrandName]bool)
	for _, id := range ids {
		for _, p := range partnerships {
			if p.ID != id {
				continue
			}
			for _, b := range p.Brands {
				brands[b] = true
			}
		}
	}
	return brands
}

func (d DiscountOption) appliesTo(brand models.BrandName) bool {
	for _, b := range d.Brands {
		if b == brand {
			return true
		}
	}
	return false
}

// Apply annotates station prices with the discounted per-litre price for
// every selected discount that covers the station's brand. When several
// selected discounts apply to the same brand, the deepest one wins.
// Discounted prices never go below zero.
func Apply(stations []models.StationPriceData, discountIDs []string) {
	var selected []DiscountOption
	for _, id := range discountIDs {
		if d, ok := DiscountByID(id); ok {
			selected = append(selected, d)
		}
	}
	if len(selected) == 0 {
		return
	}

	for i := range stations {
		var best float64
		for _, d := range selected {
			if d.appliesTo(stations[i].Brand) && d.CentsOff > best {
				best = d.CentsOff
			}
		}
		if best == 0 {
			continue
		}
		for j := range stations[i].Prices {
			discounted := stations[i].Prices[j].PriceCpl - best
			if discounted < 0 {
				discounted = 0
			}
			stations[i].Prices[j].DiscountedCpl = discounted
		}
	}
}
