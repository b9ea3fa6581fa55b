package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"energysim/internal/model"
	"energysim/internal/weather"
)

func main() {
	lat := flag.Float64("lat", 52.52, "station latitude")
	lon := flag.Float64("lon", 13.41, "station longitude")
	startFlag := flag.String("start", "2025-01-01", "first day to cover (YYYY-MM-DD)")
	endFlag := flag.String("end", "2025-01-04", "last day to cover (YYYY-MM-DD, inclusive)")
	seed := flag.Uint64("seed", 42, "synthetic weather seed")
	output := flag.String("output", "input/weather/synthetic.csv", "output CSV path")
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startFlag)
	if err != nil {
		log.Fatalf("Invalid start date %q: %v", *startFlag, err)
	}
	end, err := time.Parse("2006-01-02", *endFlag)
	if err != nil {
		log.Fatalf("Invalid end date %q: %v", *endFlag, err)
	}
	// Cover the full last day so a run ending at midnight still interpolates.
	end = end.Add(24 * time.Hour)

	provider := weather.NewSyntheticProvider(*seed)
	loc := model.Location{Latitude: *lat, Longitude: *lon}
	tr := model.TimeRange{Start: start, End: end}

	log.Printf("Generating %s weather for %.2f,%.2f from %s to %s",
		provider.Name(), *lat, *lon, start.Format("2006-01-02"), end.Format("2006-01-02"))

	series, err := provider.Fetch(context.Background(), loc, tr)
	if err != nil {
		log.Fatalf("Generating weather: %v", err)
	}
	records := series.Records(start, end)

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		log.Fatalf("Creating output directory: %v", err)
	}
	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Creating %s: %v", *output, err)
	}
	if err := weather.WriteCSV(f, records); err != nil {
		f.Close()
		log.Fatalf("Writing CSV: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Closing %s: %v", *output, err)
	}

	fmt.Printf("wrote %d records to %s\n", len(records), *output)
}
