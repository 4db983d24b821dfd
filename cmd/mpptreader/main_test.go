// cmd/mpptreader/main_test.go
package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/mppt-reader/internal/status"
	"github.com/tamzrod/mppt-reader/internal/telemetry"
)

func TestFormatLine(t *testing.T) {
	line := formatLine(
		time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
		[]telemetry.Value{
			{Name: "battery.voltage", Value: 12.5},
			{Name: "watchdog.faults", Value: []string{}},
			{Name: "battery.remaining", Err: telemetry.ErrZeroSpan},
		},
		status.Snapshot{Health: status.HealthOK},
	)

	require.True(t, strings.HasPrefix(line, "08:30:00 "))
	require.Contains(t, line, "battery.voltage=12.500")
	require.Contains(t, line, "watchdog.faults=-")
	require.Contains(t, line, "battery.remaining=")
	require.Contains(t, line, "ok")
}

func TestVarsCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"vars"})

	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "battery.voltage\n")
	require.Contains(t, out.String(), "watchdog.dipswitches\n")
}

func TestRunRejectsBadConfig(t *testing.T) {
	rootCmd.SetArgs([]string{"run", "--config", "does-not-exist.yaml"})
	require.Error(t, rootCmd.Execute())
}
