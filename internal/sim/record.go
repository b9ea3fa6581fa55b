package sim

import (
	"io"
	"time"

	"github.com/gocarina/gocsv"
)

// StepRecord is one row of the simulation time series. The csv-tagged fields
// form the export columns in their fixed order; the remaining fields travel
// only over JSON.
type StepRecord struct {
	Timestamp          time.Time `csv:"timestamp" json:"timestamp"`
	OutsideTemperature float64   `csv:"outside_temperature" json:"outside_temperature"`
	FlowTemperature    float64   `csv:"flow_temperature" json:"flow_temperature"`
	SolarRadiation     float64   `csv:"solar_radiation" json:"solar_radiation"`
	HeatDemandKWh      float64   `csv:"heat_demand" json:"heat_demand"`
	HeatOutputKWh      float64   `csv:"heat_output" json:"heat_output"`
	COP                float64   `csv:"cop" json:"cop"`
	PowerInputKWh      float64   `csv:"power_input" json:"power_input"`
	PVDCOutputKWh      float64   `csv:"pv_dc_output" json:"pv_dc_output"`
	PVACOutputKWh      float64   `csv:"pv_ac_output" json:"pv_ac_output"`

	SelfConsumptionKWh float64 `csv:"-" json:"self_consumption"`
	GridDrawKWh        float64 `csv:"-" json:"grid_draw"`
	GridFeedKWh        float64 `csv:"-" json:"grid_feed"`
	IndoorTemperature  float64 `csv:"-" json:"indoor_temperature"`
	HeatPumpMode       string  `csv:"-" json:"heat_pump_mode"`
	UnmetDemandKWh     float64 `csv:"-" json:"unmet_demand"`
	EnvelopeViolation  bool    `csv:"-" json:"envelope_violation"`
	CostEUR            float64 `csv:"-" json:"cost_eur"`
	EmissionsKg        float64 `csv:"-" json:"emissions_kg"`
}

// WriteCSV writes the time series with a header row.
func WriteCSV(w io.Writer, records []StepRecord) error {
	return gocsv.Marshal(&records, w)
}
