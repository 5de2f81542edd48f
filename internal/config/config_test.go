package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, 100, s.MaxLatencyMS)
	assert.Equal(t, 10, s.CheckIntervalS)
	assert.Equal(t, "8.8.8.8", s.PingHost)
	assert.False(t, s.Enabled)
	require.NoError(t, s.Validate())
}

func TestValidate(t *testing.T) {
	valid := Default()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults are valid", func(*Settings) {}, false},
		{"zero latency threshold", func(s *Settings) { s.MaxLatencyMS = 0 }, true},
		{"negative latency threshold", func(s *Settings) { s.MaxLatencyMS = -10 }, true},
		{"zero interval", func(s *Settings) { s.CheckIntervalS = 0 }, true},
		{"negative interval", func(s *Settings) { s.CheckIntervalS = -1 }, true},
		{"empty host", func(s *Settings) { s.PingHost = "" }, true},
		{"whitespace host", func(s *Settings) { s.PingHost = "   " }, true},
		{"hostname target", func(s *Settings) { s.PingHost = "dns.google" }, false},
		{"enabled flag irrelevant to validity", func(s *Settings) { s.Enabled = true }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSettings)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
