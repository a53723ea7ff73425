package domain

// Metric names the daily power aggregate is derived from
const (
	MetricVoltage = "Voltage"
	MetricCurrent = "Current"
	MetricPower   = "Power"
)

// DailyPower returns mean(voltages) × mean(currents).
// Business rule: no power figure exists for a day missing either input.
func DailyPower(voltages, currents []float64) (float64, bool) {
	if len(voltages) == 0 || len(currents) == 0 {
		return 0, false
	}
	return mean(voltages) * mean(currents), true
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
