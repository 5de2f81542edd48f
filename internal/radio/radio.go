package radio

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Controller performs the corrective action: a disable/enable cycle of
// the wireless radio to force reconnection.
type Controller interface {
	Cycle(ctx context.Context) error
}

const defaultSettle = time.Second

// NMCLIController toggles the radio through nmcli. Both toggles are
// quick; the settle delay between them gives the driver time to tear
// the link down before it is brought back.
type NMCLIController struct {
	Settle time.Duration
}

// NewNMCLIController returns a controller with the default settle delay.
func NewNMCLIController() *NMCLIController {
	return &NMCLIController{Settle: defaultSettle}
}

// Cycle disables the radio, waits the settle delay, and re-enables it.
func (c *NMCLIController) Cycle(ctx context.Context) error {
	if err := c.setEnabled(ctx, false); err != nil {
		return fmt.Errorf("disable radio: %w", err)
	}

	settle := c.Settle
	if settle <= 0 {
		settle = defaultSettle
	}
	timer := time.NewTimer(settle)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
	}

	// The radio is off at this point, so the enable step must run even
	// when the surrounding tick is being cancelled.
	if err := c.setEnabled(context.WithoutCancel(ctx), true); err != nil {
		return fmt.Errorf("enable radio: %w", err)
	}
	return nil
}

func (c *NMCLIController) setEnabled(ctx context.Context, enabled bool) error {
	state := "off"
	if enabled {
		state = "on"
	}
	cmd := exec.CommandContext(ctx, "nmcli", "radio", "wifi", state)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("nmcli radio wifi %s: %v (%s)", state, err, strings.TrimSpace(string(out)))
	}
	return nil
}
