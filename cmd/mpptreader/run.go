// cmd/mpptreader/run.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/mppt-reader/internal/config"
	"github.com/tamzrod/mppt-reader/internal/reader"
	"github.com/tamzrod/mppt-reader/internal/recorder"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll the controller, hold configured setpoints and record samples",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(ctx, c)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run(ctx context.Context, c *config.Config) error {
	// ---- reader ----
	r, err := reader.Build(c.Reader)
	if err != nil {
		return err
	}

	// ---- recorder (optional) ----
	var rec *recorder.Recorder
	if c.Recorder.Enabled() {
		sinks, closeSinks, err := recorder.BuildSinks(c.Recorder)
		if err != nil {
			_ = r.Close()
			return err
		}
		defer func() {
			if err := closeSinks(); err != nil {
				log.WithError(err).Warn("close sinks")
			}
		}()

		rec, err = recorder.New(recorder.Config{
			Interval:  time.Duration(c.Recorder.IntervalMs) * time.Millisecond,
			Variables: c.Recorder.Variables,
		}, r, sinks)
		if err != nil {
			_ = r.Close()
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return r.Run(gctx) })

	// setpoints need the first snapshot's scaling
	g.Go(func() error {
		if len(c.Reader.Overrides) == 0 {
			return nil
		}
		if err := r.WaitReady(gctx); err != nil {
			return nil
		}
		for _, o := range c.Reader.Overrides {
			if err := r.Hold(o.Name, o.Value); err != nil {
				log.WithError(err).WithField("setpoint", o.Name).Error("cannot hold setpoint")
			}
		}
		return nil
	})

	if rec != nil {
		g.Go(func() error { return rec.Run(gctx) })
	}

	log.WithField("config", cfgPath).Info("running")
	err = g.Wait()
	log.Info("stopped")
	return err
}
