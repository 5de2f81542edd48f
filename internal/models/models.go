package models

import "wifiwatch/internal/config"

// PingStatus classifies a single probe outcome.
type PingStatus string

const (
	StatusUnknown PingStatus = "unknown"
	StatusOK      PingStatus = "ok"
	StatusHigh    PingStatus = "high"
	StatusFailed  PingStatus = "failed"
)

// LatencyFailed is the sentinel latency recorded when a probe fails.
const LatencyFailed int64 = -1

// PingResult captures the outcome of a single latency probe.
type PingResult struct {
	LatencyMS int64      `json:"latency_ms"`
	Status    PingStatus `json:"status"`
	Timestamp int64      `json:"timestamp"`
}

// EmptyPingResult is the record exposed before any probe has run.
func EmptyPingResult() PingResult {
	return PingResult{LatencyMS: LatencyFailed, Status: StatusUnknown}
}

// Status is a point-in-time snapshot of the monitor engine.
type Status struct {
	IsMonitoring bool            `json:"is_monitoring"`
	LastPing     PingResult      `json:"last_ping"`
	RestartCount int             `json:"restart_count"`
	Settings     config.Settings `json:"settings"`
}
