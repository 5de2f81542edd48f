package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"wifiwatch/internal/config"
	"wifiwatch/internal/events"
	"wifiwatch/internal/metrics"
	"wifiwatch/internal/models"
	"wifiwatch/internal/probe"
	"wifiwatch/internal/radio"
)

// Monitor owns the probe loop and every piece of shared state the
// control surface exposes. One mutex guards settings, the last result,
// the restart counter, and the run state; it is never held across a
// probe or a radio cycle, so control calls stay prompt.
type Monitor struct {
	pinger probe.Pinger
	radio  radio.Controller
	bus    *events.Bus
	stats  *metrics.Collector

	mu           sync.Mutex
	settings     config.Settings
	lastPing     models.PingResult
	restartCount int
	running      bool
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// New creates a stopped monitor with the given collaborators. stats may
// be nil. The enabled flag mirrors the run state, so it starts false
// regardless of the supplied settings; callers start explicitly.
func New(settings config.Settings, pinger probe.Pinger, ctrl radio.Controller, bus *events.Bus, stats *metrics.Collector) *Monitor {
	settings.Enabled = false
	return &Monitor{
		pinger:   pinger,
		radio:    ctrl,
		bus:      bus,
		stats:    stats,
		settings: settings,
		lastPing: models.EmptyPingResult(),
	}
}

// Start transitions to Running and launches the probe loop. The first
// probe runs immediately; after that the loop sleeps check_interval_s
// between ticks. Calling Start on a running monitor is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.settings.Enabled = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	stop, done := m.stopCh, m.doneCh
	m.bus.Publish(events.Event{
		Type:    models.EventWifiStatusChanged,
		Payload: models.WifiStatusChanged{Monitoring: true},
	})
	m.mu.Unlock()

	m.stats.SetMonitoring(true)
	log.Printf("monitor: started")
	go m.run(stop, done)
}

// Stop signals the loop and returns once it has ceased probing; a tick
// already in flight finishes first. Calling Stop on a stopped monitor
// is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.settings.Enabled = false
	stop, done := m.stopCh, m.doneCh
	m.mu.Unlock()

	close(stop)
	<-done

	m.mu.Lock()
	m.bus.Publish(events.Event{
		Type:    models.EventWifiStatusChanged,
		Payload: models.WifiStatusChanged{Monitoring: false},
	})
	m.mu.Unlock()

	m.stats.SetMonitoring(false)
	log.Printf("monitor: stopped")
}

// UpdateSettings validates and applies a new configuration as a whole.
// On validation failure the active settings are untouched. The enabled
// flag is reconciled with the loop: flipping it starts or stops
// monitoring. A sleep already in flight keeps its current timer; the
// next sleep uses the new interval.
func (m *Monitor) UpdateSettings(next config.Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	running := m.running
	m.settings = next
	m.settings.Enabled = running
	m.mu.Unlock()

	if next.Enabled && !running {
		m.Start()
	} else if !next.Enabled && running {
		m.Stop()
	}
	return nil
}

// Settings returns the active configuration.
func (m *Monitor) Settings() config.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Status returns a consistent snapshot of the engine state.
func (m *Monitor) Status() models.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.Status{
		IsMonitoring: m.running,
		LastPing:     m.lastPing,
		RestartCount: m.restartCount,
		Settings:     m.settings,
	}
}

// RunOnce executes a single probe/classify/recover cycle regardless of
// the run state and returns the recorded result.
func (m *Monitor) RunOnce() models.PingResult {
	m.tick()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPing
}

func (m *Monitor) run(stop, done chan struct{}) {
	defer close(done)

	for {
		interval := m.tick()

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
		case <-stop:
			timer.Stop()
			return
		}
		// Both channels may be ready at once; stop wins.
		select {
		case <-stop:
			return
		default:
		}
	}
}

// tick runs one probe/classify/recover cycle and returns the interval
// to sleep before the next one, re-read after the cycle so settings
// updates take effect on the following wait.
func (m *Monitor) tick() time.Duration {
	m.mu.Lock()
	settings := m.settings
	m.mu.Unlock()

	ctx := context.Background()
	latency, err := m.pinger.Ping(ctx, settings.PingHost)
	if err != nil {
		latency = models.LatencyFailed
	}
	status := Classify(latency, settings.MaxLatencyMS)
	result := models.PingResult{
		LatencyMS: latency,
		Status:    status,
		Timestamp: time.Now().Unix(),
	}

	m.mu.Lock()
	m.lastPing = result
	m.bus.Publish(events.Event{Type: models.EventPingResult, Payload: result})
	m.mu.Unlock()
	m.stats.RecordPing(result)

	switch status {
	case models.StatusFailed:
		log.Printf("monitor: probe failed: %v", err)
	case models.StatusHigh:
		log.Printf("monitor: high latency %dms (threshold %dms), cycling radio", latency, settings.MaxLatencyMS)
		m.recover(ctx, latency)
	}

	m.mu.Lock()
	intervalS := m.settings.CheckIntervalS
	m.mu.Unlock()
	if intervalS <= 0 {
		intervalS = config.Default().CheckIntervalS
	}
	return time.Duration(intervalS) * time.Second
}

// recover performs one radio cycle synchronously, so at most one cycle
// is ever in flight. The counter moves only on confirmed success; a
// failure is surfaced through the event's reason string instead.
func (m *Monitor) recover(ctx context.Context, latency int64) {
	err := m.radio.Cycle(ctx)

	m.mu.Lock()
	if err == nil {
		m.restartCount++
	}
	count := m.restartCount
	reason := fmt.Sprintf("High latency: %dms", latency)
	if err != nil {
		reason = fmt.Sprintf("Radio cycle failed: %v", err)
	}
	m.bus.Publish(events.Event{
		Type:    models.EventWifiRestarted,
		Payload: models.WifiRestarted{Count: count, Reason: reason},
	})
	m.mu.Unlock()

	if err != nil {
		log.Printf("monitor: radio cycle failed: %v", err)
		return
	}
	m.stats.RecordRestart()
	log.Printf("monitor: radio cycled (restart #%d)", count)
}
