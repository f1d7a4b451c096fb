package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/servo-saver/servo-saver-api/cmd"
	"github.com/servo-saver/servo-saver-api/internal"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "servo-saver-api",
		Short: "Fuel price API with live, OpenStreetMap and synthetic data tiers",
	}

	var port int
	var debug bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.ApiServer(port, debug)
		},
	}
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	serveCmd.Flags().BoolVar(&debug, "debug", false, "expose pprof endpoints")

	var lat, lng, radiusKm float64
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Resolve prices for a point once and print the result",
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmd.Fetch(lat, lng, radiusKm)
		},
	}
	fetchCmd.Flags().Float64Var(&lat, "lat", internal.DefaultCenterLat, "latitude of the search centre")
	fetchCmd.Flags().Float64Var(&lng, "lng", internal.DefaultCenterLng, "longitude of the search centre")
	fetchCmd.Flags().Float64Var(&radiusKm, "radius", 5, "search radius in kilometres")

	rootCmd.AddCommand(serveCmd, fetchCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
