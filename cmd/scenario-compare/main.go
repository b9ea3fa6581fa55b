package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"energysim/internal/sim"
	"energysim/internal/weather"
)

type result struct {
	label   string
	summary sim.Summary
}

func main() {
	startFlag := flag.String("start", "2025-01-01", "simulation start date (YYYY-MM-DD)")
	endFlag := flag.String("end", "2025-01-04", "simulation end date (YYYY-MM-DD, exclusive)")
	stepMin := flag.Int("step-min", 30, "step size in minutes")
	sizesFlag := flag.String("hp-sizes", "5,7,9,12,15", "comma-separated heat pump sizes in kW")
	insulationFlag := flag.String("insulation", "", "compare insulation levels instead of heat pump sizes")
	seed := flag.Uint64("seed", 42, "synthetic weather seed (same weather for every variant)")
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startFlag)
	if err != nil {
		log.Fatalf("Invalid start date %q: %v", *startFlag, err)
	}
	end, err := time.Parse("2006-01-02", *endFlag)
	if err != nil {
		log.Fatalf("Invalid end date %q: %v", *endFlag, err)
	}

	base := sim.DefaultScenario()
	base.Config.Start = start
	base.Config.End = end
	base.Config.Step = time.Duration(*stepMin) * time.Minute

	// One weather series shared by all variants keeps the comparison fair.
	provider := weather.NewSyntheticProvider(*seed)
	series, err := provider.Fetch(context.Background(), base.Location, base.TimeRange())
	if err != nil {
		log.Fatalf("Weather: %v", err)
	}

	var results []result
	if *insulationFlag != "" {
		results = compareInsulation(base, series)
	} else {
		sizes, err := parseSizes(*sizesFlag)
		if err != nil {
			log.Fatalf("Invalid heat pump sizes %q: %v", *sizesFlag, err)
		}
		results = compareHeatPumps(base, series, sizes)
	}

	printTable(base, results)
}

func compareHeatPumps(base sim.Scenario, series *weather.Series, sizes []float64) []result {
	results := make([]result, 0, len(sizes))
	for _, kw := range sizes {
		scenario := base
		scenario.HeatPump.NominalPowerKW = kw
		results = append(results, result{
			label:   fmt.Sprintf("%.1f kW", kw),
			summary: runScenario(scenario, series),
		})
		fmt.Fprintf(os.Stderr, "  %.1f kW done\n", kw)
	}
	return results
}

func compareInsulation(base sim.Scenario, series *weather.Series) []result {
	levels := []sim.InsulationLevel{sim.InsulationOld, sim.InsulationWSVO95, sim.InsulationGEG20}
	results := make([]result, 0, len(levels))
	for _, level := range levels {
		spec, err := sim.HousePreset(150, level)
		if err != nil {
			log.Fatalf("Envelope preset %s: %v", level, err)
		}
		scenario := base
		scenario.Building = spec
		results = append(results, result{
			label:   string(level),
			summary: runScenario(scenario, series),
		})
		fmt.Fprintf(os.Stderr, "  %s done\n", level)
	}
	return results
}

func runScenario(scenario sim.Scenario, series *weather.Series) sim.Summary {
	engine, err := scenario.NewEngine(series, nil)
	if err != nil {
		log.Fatalf("Engine setup: %v", err)
	}
	summary, err := engine.Run(context.Background())
	if err != nil {
		log.Fatalf("Simulation: %v", err)
	}
	return *summary
}

func printTable(base sim.Scenario, results []result) {
	days := base.Config.End.Sub(base.Config.Start).Hours() / 24

	fmt.Println()
	fmt.Println("Scenario Comparison")
	fmt.Printf("  Period: %s to %s (%.0f days), step %s\n",
		base.Config.Start.Format("2006-01-02"), base.Config.End.Format("2006-01-02"), days, base.Config.Step)
	fmt.Println()

	fmt.Printf(" %-12s │ %9s │ %9s │ %6s │ %9s │ %8s │ %8s │ %8s\n",
		"Variant", "Demand", "Output", "COP", "Electric", "Unmet", "Net Cost", "Net CO2")
	fmt.Printf("──────────────┼───────────┼───────────┼────────┼───────────┼──────────┼──────────┼─────────\n")

	for _, r := range results {
		e := r.summary.EnergyDemand
		fmt.Printf(" %-12s │ %7.1f k │ %7.1f k │ %6.2f │ %7.1f k │ %6.1f k │ %7.2f € │ %5.1f kg\n",
			r.label, e.HeatDemandKWh, e.HeatOutputKWh, e.COPAverage,
			e.ElectricityConsumptionKWh, r.summary.UnmetDemandKWh,
			r.summary.Costs.NetEnergyCosts, r.summary.Emissions.NetEmissions)
	}
	fmt.Println()
}

func parseSizes(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	sizes := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("size must be positive, got %v", v)
		}
		sizes = append(sizes, v)
	}
	sort.Float64s(sizes)
	return sizes, nil
}
