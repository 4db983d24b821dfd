// cmd/mpptreader/root.go
package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tamzrod/mppt-reader/internal/config"
)

var log = logrus.WithField("component", "main")

var (
	cfgPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "mpptreader",
	Short: "Solar charge controller Modbus reader",
	Long: `mpptreader polls a MPPT solar charge controller over Modbus RTU or TCP,
decodes its register map into engineering units, and can hold selected
charge setpoints by echoing them back on every poll.

Samples can be recorded to CSV, pushed to websocket clients, or published
to an MQTT broker.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "mpptreader.yaml", "Config file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Log level, overrides the config file")

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// loadConfig loads the config file and applies the log level.
func loadConfig() (*config.Config, error) {
	c, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	level := c.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(lvl)

	return c, nil
}
