package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"energysim/internal/model"
	"energysim/internal/pv"
	"energysim/internal/sim"
	"energysim/internal/weather"
)

func main() {
	lat := flag.Float64("lat", 52.52, "station latitude")
	lon := flag.Float64("lon", 13.41, "station longitude")
	startFlag := flag.String("start", "2025-01-01", "simulation start date (YYYY-MM-DD)")
	endFlag := flag.String("end", "2025-01-04", "simulation end date (YYYY-MM-DD, exclusive)")
	stepMin := flag.Int("step-min", 30, "step size in minutes")
	setpoint := flag.Float64("setpoint", 20, "indoor setpoint in °C")
	floorArea := flag.Float64("floor-area", 150, "heated floor area in m²")
	insulation := flag.String("insulation", string(sim.InsulationGEG20), "envelope preset: old_1977, wsvo_95, geg_2020")
	hpPower := flag.Float64("hp-kw", 9, "heat pump nominal heating power in kW")
	pvPeak := flag.Float64("pv-kwp", 10, "PV peak power in kWp")
	pvTilt := flag.Float64("pv-tilt", 30, "PV tilt in degrees")
	pvAzimuth := flag.Float64("pv-azimuth", 180, "PV azimuth in degrees (180 = south)")
	weatherDir := flag.String("weather-dir", "", "directory with weather CSVs (empty = synthetic weather)")
	seed := flag.Uint64("seed", 42, "synthetic weather seed")
	outDir := flag.String("out-dir", "output", "directory for results")
	flag.Parse()

	scenario, err := buildScenario(*lat, *lon, *startFlag, *endFlag, *stepMin, *setpoint,
		*floorArea, *insulation, *hpPower, *pvPeak, *pvTilt, *pvAzimuth)
	if err != nil {
		log.Fatalf("Invalid scenario: %v", err)
	}

	var provider weather.Provider
	if *weatherDir != "" {
		provider = weather.NewFileProvider(*weatherDir)
	} else {
		provider = weather.NewSyntheticProvider(*seed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Fetching weather from %s...", provider.Name())
	series, err := provider.Fetch(ctx, scenario.Location, scenario.TimeRange())
	if err != nil {
		log.Fatalf("Weather: %v", err)
	}

	engine, err := scenario.NewEngine(series, nil)
	if err != nil {
		log.Fatalf("Engine setup: %v", err)
	}

	log.Printf("Run %s: %d steps of %d min", engine.RunID(), scenario.Config.Steps(), *stepMin)
	summary, err := engine.Run(ctx)
	if err != nil {
		log.Fatalf("Simulation: %v", err)
	}

	if err := writeResults(*outDir, engine, summary); err != nil {
		log.Fatalf("Writing results: %v", err)
	}

	fmt.Printf("Heat demand:       %8.1f kWh\n", summary.EnergyDemand.HeatDemandKWh)
	fmt.Printf("Heat output:       %8.1f kWh\n", summary.EnergyDemand.HeatOutputKWh)
	fmt.Printf("Electricity:       %8.1f kWh (COP %.2f)\n",
		summary.EnergyDemand.ElectricityConsumptionKWh, summary.EnergyDemand.COPAverage)
	fmt.Printf("PV production:     %8.1f kWh (self-consumed %.1f)\n",
		summary.EnergyDemand.PVProductionKWh, summary.EnergyDemand.SelfConsumptionKWh)
	fmt.Printf("Net energy costs:  %8.2f EUR\n", summary.Costs.NetEnergyCosts)
	fmt.Printf("Net emissions:     %8.1f kg CO2\n", summary.Emissions.NetEmissions)
	if summary.UnmetDemandKWh > 0 {
		fmt.Printf("Unmet demand:      %8.1f kWh\n", summary.UnmetDemandKWh)
	}
}

func buildScenario(lat, lon float64, startFlag, endFlag string, stepMin int, setpoint,
	floorArea float64, insulation string, hpPower, pvPeak, pvTilt, pvAzimuth float64) (sim.Scenario, error) {

	start, err := time.Parse("2006-01-02", startFlag)
	if err != nil {
		return sim.Scenario{}, fmt.Errorf("start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", endFlag)
	if err != nil {
		return sim.Scenario{}, fmt.Errorf("end date: %w", err)
	}

	buildingSpec, err := sim.HousePreset(floorArea, sim.InsulationLevel(insulation))
	if err != nil {
		return sim.Scenario{}, err
	}

	scenario := sim.DefaultScenario()
	scenario.Location = model.Location{Latitude: lat, Longitude: lon}
	scenario.Building = buildingSpec
	scenario.HeatPump.NominalPowerKW = hpPower
	scenario.PV = pv.DefaultSpec(pvPeak)
	scenario.PV.TiltDeg = pvTilt
	scenario.PV.AzimuthDeg = pvAzimuth
	scenario.Config.Start = start
	scenario.Config.End = end
	scenario.Config.Step = time.Duration(stepMin) * time.Minute
	scenario.Config.IndoorSetpointC = setpoint
	return scenario, nil
}

func writeResults(dir string, engine *sim.Engine, summary *sim.Summary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	csvPath := filepath.Join(dir, "timeseries.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return err
	}
	if err := sim.WriteCSV(f, engine.Records()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Wrote %s", csvPath)

	jsonPath := filepath.Join(dir, "summary.json")
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(jsonPath, append(data, '\n'), 0o644); err != nil {
		return err
	}
	log.Printf("Wrote %s", jsonPath)
	return nil
}
