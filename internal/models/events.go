package models

// Event type names published on the feed. The ping_result payload is
// the PingResult itself.
const (
	EventPingResult        = "ping_result"
	EventWifiStatusChanged = "wifi_status_changed"
	EventWifiRestarted     = "wifi_restarted"
)

// WifiStatusChanged is emitted on every start/stop transition.
type WifiStatusChanged struct {
	Monitoring bool `json:"monitoring"`
}

// WifiRestarted is emitted after every recovery attempt. On failure the
// count is unchanged and the reason carries the toggle error.
type WifiRestarted struct {
	Count  int    `json:"count"`
	Reason string `json:"reason"`
}
