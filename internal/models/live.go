package models

// Wire types for the state government fuel pricing API. The upstream
// envelope has been observed in two incompatible shapes: a flat list of
// stations (bare JSON array, or wrapped in {"stations": [...]}) where each
// station embeds its own prices, and a list of price-detail wrappers where
// each element embeds one station plus one price list. Both decode through
// these types; the client dispatches on the detected shape.

type LiveLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type LivePrice struct {
	FuelType    string  `json:"fuelType"`
	Price       float64 `json:"price"`
	LastUpdated string  `json:"lastUpdated"`
}

type LiveStation struct {
	Code     string        `json:"code"`
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Brand    string        `json:"brand"`
	Address  string        `json:"address"`
	Location *LiveLocation `json:"location"`
	Lat      float64       `json:"lat"`
	Lng      float64       `json:"lng"`
	Prices   []LivePrice   `json:"prices"`
}

// LivePriceDetail is the wrapper-object variant of the upstream envelope.
type LivePriceDetail struct {
	Station *LiveStation `json:"station"`
	Prices  []LivePrice  `json:"prices"`
}

// Identifier returns the station code, falling back to the id field.
func (s *LiveStation) Identifier() string {
	if s.Code != "" {
		return s.Code
	}
	return s.ID
}

// Coordinates prefers the structured location object over the flat fields.
func (s *LiveStation) Coordinates() (lat, lng float64) {
	if s.Location != nil {
		return s.Location.Latitude, s.Location.Longitude
	}
	return s.Lat, s.Lng
}
