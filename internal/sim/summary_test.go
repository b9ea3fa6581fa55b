package sim

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRecords() []StepRecord {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []StepRecord{
		{
			Timestamp:          base,
			OutsideTemperature: -3,
			HeatDemandKWh:      8,
			HeatOutputKWh:      8,
			COP:                4,
			PowerInputKWh:      2,
			PVACOutputKWh:      1,
			SelfConsumptionKWh: 1,
			GridDrawKWh:        1,
			GridFeedKWh:        0,
		},
		{
			Timestamp:          base.Add(30 * time.Minute),
			OutsideTemperature: 5,
			HeatDemandKWh:      1.5,
			HeatOutputKWh:      1,
			COP:                2,
			PowerInputKWh:      0.5,
			PVACOutputKWh:      2,
			SelfConsumptionKWh: 0.5,
			GridDrawKWh:        0,
			GridFeedKWh:        1.5,
			UnmetDemandKWh:     0.5,
		},
	}
}

func TestSummarize_COPAverages(t *testing.T) {
	s := Summarize("run-1", fixtureRecords(), 0.5, DefaultTariffs())

	// The headline average is energy-weighted: 9 kWh heat over 2.5 kWh
	// electricity. The time-series average is the plain mean of the per-step
	// rated COP column. The two disagree whenever load varies.
	assert.InDelta(t, 3.6, s.EnergyDemand.COPAverage, 1e-9)
	assert.InDelta(t, 3.0, s.TimeSeriesSummary.COPAvg, 1e-9)
}

func TestSummarize_EnergyTotals(t *testing.T) {
	s := Summarize("run-1", fixtureRecords(), 0.5, DefaultTariffs())

	assert.Equal(t, "run-1", s.RunID)
	assert.InDelta(t, 9.5, s.EnergyDemand.HeatDemandKWh, 1e-9)
	assert.InDelta(t, 9.0, s.EnergyDemand.HeatOutputKWh, 1e-9)
	assert.InDelta(t, 2.5, s.EnergyDemand.ElectricityConsumptionKWh, 1e-9)
	assert.InDelta(t, 3.0, s.EnergyDemand.PVProductionKWh, 1e-9)
	assert.InDelta(t, 1.5, s.EnergyDemand.SelfConsumptionKWh, 1e-9)
	assert.InDelta(t, 1.0, s.EnergyDemand.GridDrawKWh, 1e-9)
	assert.InDelta(t, 1.5, s.EnergyDemand.GridFeedKWh, 1e-9)
	assert.InDelta(t, 0.5, s.UnmetDemandKWh, 1e-9)

	assert.InDelta(t, 1.5/2.5, s.EnergyDemand.SelfSufficiency, 1e-9)
	assert.InDelta(t, 3.0/2.5, s.EnergyDemand.RenewableShare, 1e-9)
}

func TestSummarize_CostsAndEmissions(t *testing.T) {
	s := Summarize("run-1", fixtureRecords(), 0.5, DefaultTariffs())

	assert.InDelta(t, 1.0*0.32, s.Costs.ElectricityCosts, 1e-9)
	assert.InDelta(t, 1.5*0.08, s.Costs.FeedInRevenue, 1e-9)
	assert.InDelta(t, 1.0*0.32-1.5*0.08, s.Costs.NetEnergyCosts, 1e-9)

	assert.InDelta(t, 1.0*0.388, s.Emissions.TotalEmissions, 1e-9)
	assert.InDelta(t, 1.5*0.388, s.Emissions.EmissionsSaved, 1e-9)
	assert.InDelta(t, (1.0-1.5)*0.388, s.Emissions.NetEmissions, 1e-9)
}

func TestSummarize_TimeSeriesStats(t *testing.T) {
	s := Summarize("run-1", fixtureRecords(), 0.5, DefaultTariffs())

	assert.InDelta(t, 1.0, s.TimeSeriesSummary.OutsideTempAvg, 1e-9)
	assert.InDelta(t, -3.0, s.TimeSeriesSummary.OutsideTempMin, 1e-9)
	assert.InDelta(t, 5.0, s.TimeSeriesSummary.OutsideTempMax, 1e-9)
	// 2 kWh over a half-hour step is 4 kW peak.
	assert.InDelta(t, 4.0, s.TimeSeriesSummary.PVPeakOutput, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize("run-1", nil, 0.5, DefaultTariffs())
	assert.Equal(t, "run-1", s.RunID)
	assert.Zero(t, s.EnergyDemand.HeatDemandKWh)
	assert.Zero(t, s.EnergyDemand.COPAverage)
}

func TestWriteCSV_ColumnOrder(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, fixtureRecords()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t,
		"timestamp,outside_temperature,flow_temperature,solar_radiation,heat_demand,heat_output,cop,power_input,pv_dc_output,pv_ac_output",
		lines[0])
	// JSON-only fields stay out of the CSV.
	assert.NotContains(t, lines[0], "self_consumption")
	assert.NotContains(t, lines[0], "indoor_temperature")
}
