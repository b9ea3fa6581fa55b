package sim

import "fmt"

// Sanity bounds for the simulated indoor temperature. Leaving them means the
// explicit integration diverged, usually from a misconfigured capacitance or
// an oversized time step.
const (
	minSaneIndoorC = -40.0
	maxSaneIndoorC = 70.0
)

// InstabilityError aborts a run whose indoor temperature diverged.
type InstabilityError struct {
	Step        int
	IndoorTempC float64
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("indoor temperature %.1f °C out of bounds at step %d: numeric instability", e.IndoorTempC, e.Step)
}
