package internal

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

const CRON_SCHEDULE_WARM = "*/15 * * * *"

// Melbourne CBD, the busiest search area and the map's default centre.
const (
	DefaultCenterLat = -37.8136
	DefaultCenterLng = 144.9631
	warmRadiusKm     = 10.0
)

// StartCron schedules a periodic resolve around the default centre so the
// source caches stay warm for the most common query.
func StartCron(resolver *Resolver) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(CRON_SCHEDULE_WARM, func() {
		log.Printf("warming price caches around %.4f, %.4f", DefaultCenterLat, DefaultCenterLng)
		resp := resolver.Resolve(context.Background(), DefaultCenterLat, DefaultCenterLng, warmRadiusKm)
		log.Printf("cache warm complete: %d stations (%s)", resp.Meta.Count, resp.Meta.Source)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
