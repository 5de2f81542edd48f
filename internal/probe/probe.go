package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Pinger issues a single latency measurement against a host. The
// returned latency is whole milliseconds; failure is a normal
// monitoring outcome, not an exceptional one.
type Pinger interface {
	Ping(ctx context.Context, host string) (int64, error)
}

// ErrProbeFailed wraps every probe failure: spawn errors, timeouts,
// unreachable hosts, unparseable output.
var ErrProbeFailed = errors.New("probe failed")

const (
	echoCount      = 4
	defaultTimeout = 10 * time.Second
)

// SystemPinger shells out to the host ping binary. The overall run is
// bounded by Timeout so the monitor loop never stalls past it, even
// against a blackholed host.
type SystemPinger struct {
	Timeout time.Duration
}

// NewSystemPinger returns a pinger with the default timeout.
func NewSystemPinger() *SystemPinger {
	return &SystemPinger{Timeout: defaultTimeout}
}

// Ping sends a small burst of echo requests and returns the mean
// round-trip time truncated toward zero.
func (p *SystemPinger) Ping(ctx context.Context, host string) (int64, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return 0, fmt.Errorf("%w: empty host", ErrProbeFailed)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ping", "-n", "-q", "-c", strconv.Itoa(echoCount), host)
	out, err := cmd.Output()
	if ctx.Err() != nil {
		return 0, fmt.Errorf("%w: timed out after %s", ErrProbeFailed, timeout)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	return parseMeanRTT(string(out))
}

// Matches both the Linux summary ("rtt min/avg/max/mdev = a/b/c/d ms")
// and the BSD/busybox one ("round-trip min/avg/max = a/b/c ms").
var rttSummary = regexp.MustCompile(`(?m)^(?:rtt|round-trip) min/avg/max[^=]*= *([0-9.]+)/([0-9.]+)/`)

func parseMeanRTT(output string) (int64, error) {
	m := rttSummary.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("%w: no rtt summary in ping output", ErrProbeFailed)
	}
	avg, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse rtt %q: %v", ErrProbeFailed, m[2], err)
	}
	return int64(avg), nil
}
