package cmd

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rm-hull/godx"

	"github.com/servo-saver/servo-saver-api/internal"
)

// bootstrap initialises shared resources used by both the API server and
// fetch commands: the tiered price resolver and the geocoder.
func bootstrap() (*internal.Resolver, *internal.Geocoder, float64, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	godx.GitVersion()
	godx.EnvironmentVars()
	godx.UserInfo()

	apiKey := os.Getenv("SERVO_SAVER_API_KEY")
	if apiKey == "" {
		log.Println("SERVO_SAVER_API_KEY not set; live prices disabled, serving fallback data")
	}

	basePrice := envFloat("MARKET_BASE_PRICE_CPL", internal.DefaultMarketBasePriceCpl)
	minRadiusKm := envFloat("MIN_RADIUS_KM", 1)

	gen := internal.NewPriceGenerator(basePrice)

	resolver := internal.NewResolver(
		internal.NewLiveClient(internal.LiveClientConfig{
			BaseURL: os.Getenv("FUEL_API_BASE_URL"),
			APIKey:  apiKey,
		}),
		internal.NewOSMClient(internal.OSMClientConfig{
			URL:       os.Getenv("OVERPASS_URL"),
			Generator: gen,
		}),
		internal.NewMockSource(gen),
	)

	geocoder := internal.NewGeocoder(os.Getenv("NOMINATIM_URL"))

	return resolver, geocoder, minRadiusKm, nil
}

func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("ignoring invalid %s=%q: %v", name, raw, err)
		return fallback
	}
	return value
}
