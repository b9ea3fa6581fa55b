package sim

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EnergyDemand holds the run energy totals.
type EnergyDemand struct {
	HeatDemandKWh             float64 `json:"heat_demand_kWh"`
	HeatOutputKWh             float64 `json:"heat_output_kWh"`
	COPAverage                float64 `json:"cop_average"`
	ElectricityConsumptionKWh float64 `json:"electricity_consumption_kWh"`
	PVProductionKWh           float64 `json:"pv_production_kWh"`
	SelfConsumptionKWh        float64 `json:"self_consumption_kWh"`
	GridFeedKWh               float64 `json:"grid_feed_kWh"`
	GridDrawKWh               float64 `json:"grid_draw_kWh"`
	SelfSufficiency           float64 `json:"self_sufficiency"`
	RenewableShare            float64 `json:"renewable_share"`
}

// Costs holds the run cost totals in EUR.
type Costs struct {
	ElectricityCosts float64 `json:"electricity_costs"`
	FeedInRevenue    float64 `json:"feed_in_revenue"`
	NetEnergyCosts   float64 `json:"net_energy_costs"`
}

// Emissions holds the run CO2 balance in kg.
type Emissions struct {
	TotalEmissions float64 `json:"total_emissions"`
	EmissionsSaved float64 `json:"emissions_saved"`
	NetEmissions   float64 `json:"net_emissions"`
}

// TimeSeriesSummary holds descriptive statistics over the step records.
type TimeSeriesSummary struct {
	OutsideTempAvg float64 `json:"outside_temp_avg"`
	OutsideTempMin float64 `json:"outside_temp_min"`
	OutsideTempMax float64 `json:"outside_temp_max"`
	// COPAvg is the arithmetic mean of the per-step COP column. It differs
	// from the energy-weighted cop_average whenever load varies.
	COPAvg       float64 `json:"cop_avg"`
	PVPeakOutput float64 `json:"pv_peak_output"` // kW AC
}

// Summary is the final result of a run.
type Summary struct {
	RunID             string            `json:"run_id"`
	EnergyDemand      EnergyDemand      `json:"energy_demand"`
	Costs             Costs             `json:"costs"`
	Emissions         Emissions         `json:"emissions"`
	TimeSeriesSummary TimeSeriesSummary `json:"time_series_summary"`
	UnmetDemandKWh    float64           `json:"unmet_demand_kWh"`
}

// Summarize aggregates the step records into a Summary. The COP average in
// the energy section is energy-weighted (total heat over total electricity);
// the time-series section keeps the plain step mean.
func Summarize(runID string, records []StepRecord, stepHours float64, tariffs Tariffs) Summary {
	s := Summary{RunID: runID}
	if len(records) == 0 {
		return s
	}

	temps := make([]float64, len(records))
	cops := make([]float64, len(records))
	for i, r := range records {
		temps[i] = r.OutsideTemperature
		cops[i] = r.COP

		s.EnergyDemand.HeatDemandKWh += r.HeatDemandKWh
		s.EnergyDemand.HeatOutputKWh += r.HeatOutputKWh
		s.EnergyDemand.ElectricityConsumptionKWh += r.PowerInputKWh
		s.EnergyDemand.PVProductionKWh += r.PVACOutputKWh
		s.EnergyDemand.SelfConsumptionKWh += r.SelfConsumptionKWh
		s.EnergyDemand.GridFeedKWh += r.GridFeedKWh
		s.EnergyDemand.GridDrawKWh += r.GridDrawKWh
		s.UnmetDemandKWh += r.UnmetDemandKWh

		if stepHours > 0 {
			if peak := r.PVACOutputKWh / stepHours; peak > s.TimeSeriesSummary.PVPeakOutput {
				s.TimeSeriesSummary.PVPeakOutput = peak
			}
		}
	}

	if s.EnergyDemand.ElectricityConsumptionKWh > 0 {
		s.EnergyDemand.COPAverage = s.EnergyDemand.HeatOutputKWh / s.EnergyDemand.ElectricityConsumptionKWh
		s.EnergyDemand.SelfSufficiency = s.EnergyDemand.SelfConsumptionKWh / s.EnergyDemand.ElectricityConsumptionKWh
		s.EnergyDemand.RenewableShare = s.EnergyDemand.PVProductionKWh / s.EnergyDemand.ElectricityConsumptionKWh
	}

	s.Costs.ElectricityCosts = s.EnergyDemand.GridDrawKWh * tariffs.ElectricityPriceEUR
	s.Costs.FeedInRevenue = s.EnergyDemand.GridFeedKWh * tariffs.FeedInTariffEUR
	s.Costs.NetEnergyCosts = s.Costs.ElectricityCosts - s.Costs.FeedInRevenue

	s.Emissions.TotalEmissions = s.EnergyDemand.GridDrawKWh * tariffs.GridEmissionFactor
	s.Emissions.EmissionsSaved = s.EnergyDemand.GridFeedKWh * tariffs.GridEmissionFactor
	s.Emissions.NetEmissions = s.Emissions.TotalEmissions - s.Emissions.EmissionsSaved

	s.TimeSeriesSummary.OutsideTempAvg = stat.Mean(temps, nil)
	s.TimeSeriesSummary.OutsideTempMin = floats.Min(temps)
	s.TimeSeriesSummary.OutsideTempMax = floats.Max(temps)
	s.TimeSeriesSummary.COPAvg = stat.Mean(cops, nil)

	return s
}
