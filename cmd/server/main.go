package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"energysim/internal/sim"
	"energysim/internal/weather"
	"energysim/internal/ws"
)

func main() {
	// .env provides defaults; flags win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Loading .env: %v", err)
	}

	addr := flag.String("addr", envOr("SIM_ADDR", ":8080"), "listen address")
	weatherDir := flag.String("weather-dir", envOr("SIM_WEATHER_DIR", ""), "directory with weather CSVs (empty = synthetic weather)")
	frontendDir := flag.String("frontend-dir", envOr("SIM_FRONTEND_DIR", "frontend/build"), "directory containing frontend build")
	flag.Parse()

	scenario := sim.DefaultScenario()

	var provider weather.Provider
	if *weatherDir != "" {
		provider = weather.NewFileProvider(*weatherDir)
	} else {
		provider = weather.NewSyntheticProvider(42)
	}

	log.Printf("Fetching weather from %s...", provider.Name())
	series, err := provider.Fetch(context.Background(), scenario.Location, scenario.TimeRange())
	if err != nil {
		log.Fatalf("Weather: %v", err)
	}

	hub := ws.NewHub()
	bridge := ws.NewBridge(hub)
	engine, err := scenario.NewEngine(series, bridge)
	if err != nil {
		log.Fatalf("Engine setup: %v", err)
	}
	log.Printf("Run %s loaded: %s to %s, %d steps",
		engine.RunID(),
		scenario.Config.Start.Format("2006-01-02"), scenario.Config.End.Format("2006-01-02"),
		scenario.Config.Steps())

	handler := ws.NewHandler(hub, engine)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("/ws", handler)

	if _, err := os.Stat(*frontendDir); err == nil {
		log.Printf("Serving frontend from %s", *frontendDir)
		mux.Handle("/", http.FileServer(http.Dir(*frontendDir)))
	}

	log.Printf("Starting server on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
