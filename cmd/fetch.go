package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// Fetch runs the price pipeline once for the given point and prints the
// response envelope to stdout.
func Fetch(lat, lng, radiusKm float64) error {

	resolver, _, minRadiusKm, err := bootstrap()
	if err != nil {
		return err
	}

	if radiusKm < minRadiusKm {
		radiusKm = minRadiusKm
	}

	resp := resolver.Resolve(context.Background(), lat, lng, radiusKm)
	log.Printf("resolved %d stations (%s)", resp.Meta.Count, resp.Meta.Source)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	return nil
}
