package monitor

import "wifiwatch/internal/models"

// Classify maps one probe outcome onto a qualitative status. A negative
// latency means the probe failed. The threshold comparison is strict: a
// sample equal to the threshold is still ok. Every tick is classified
// on its own sample only; there is no smoothing across ticks.
func Classify(latencyMS int64, maxLatencyMS int) models.PingStatus {
	switch {
	case latencyMS < 0:
		return models.StatusFailed
	case latencyMS > int64(maxLatencyMS):
		return models.StatusHigh
	default:
		return models.StatusOK
	}
}
