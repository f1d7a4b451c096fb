package models

// Wire types for Overpass API responses. Way elements carry their
// coordinates in the "center" object rather than lat/lon.

type OverpassResponse struct {
	Elements []OverpassElement `json:"elements"`
}

type OverpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *OverpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type OverpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinates returns the element position, using the way centre when the
// node fields are absent.
func (el *OverpassElement) Coordinates() (lat, lon float64, ok bool) {
	lat, lon = el.Lat, el.Lon
	if lat == 0 && lon == 0 && el.Center != nil {
		lat, lon = el.Center.Lat, el.Center.Lon
	}
	if lat == 0 && lon == 0 {
		return 0, 0, false
	}
	return lat, lon, true
}
