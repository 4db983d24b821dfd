// cmd/mpptreader/watch.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/TwiN/go-color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/mppt-reader/internal/reader"
	"github.com/tamzrod/mppt-reader/internal/recorder"
	"github.com/tamzrod/mppt-reader/internal/status"
	"github.com/tamzrod/mppt-reader/internal/telemetry"
)

var watchEvery time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print live readings and device status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}

		// read-only: configured setpoints are not held here
		r, err := reader.Build(c.Reader)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return r.Run(gctx) })
		g.Go(func() error { return watch(gctx, r, cmd.OutOrStdout(), watchEvery) })
		return g.Wait()
	},
}

func init() {
	watchCmd.Flags().DurationVarP(&watchEvery, "every", "e", 2*time.Second, "Print interval")
	rootCmd.AddCommand(watchCmd)
}

var watchColumns = []string{
	"battery.voltage",
	"battery.current",
	"array.voltage",
	"array.current",
	"utils.power_in",
	"utils.charge_state",
	"watchdog.faults",
	"watchdog.alarms",
}

func watch(ctx context.Context, r *reader.Reader, out io.Writer, every time.Duration) error {
	vars, err := telemetry.Resolve(watchColumns)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		f, err := r.Frame()
		if err != nil {
			fmt.Fprintln(out, color.Ize(color.Gray, "waiting for first snapshot"))
			continue
		}
		fmt.Fprintln(out, formatLine(f.At, telemetry.Sample(f, vars), r.Health()))
	}
}

func formatLine(at time.Time, values []telemetry.Value, h status.Snapshot) string {
	var b strings.Builder

	b.WriteString(at.Format("15:04:05"))
	b.WriteString(" ")
	b.WriteString(healthColor(h.Health))

	for _, v := range values {
		text := recorder.FormatValue(v.Value, v.Err)
		switch {
		case v.Err != nil:
			text = color.Ize(color.Red, "err")
		case v.Name == "watchdog.faults" && text != "":
			text = color.Ize(color.Bold+color.Red, text)
		case v.Name == "watchdog.alarms" && text != "":
			text = color.Ize(color.Yellow, text)
		case text == "":
			text = "-"
		}
		fmt.Fprintf(&b, " %s=%s", v.Name, text)
	}
	return b.String()
}

func healthColor(h uint16) string {
	name := status.HealthName(h)
	switch h {
	case status.HealthOK:
		return color.Ize(color.Green, name)
	case status.HealthStale:
		return color.Ize(color.Yellow, name)
	case status.HealthError:
		return color.Ize(color.Red, name)
	default:
		return color.Ize(color.Gray, name)
	}
}
