package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sweeney/alarm-clock/internal/config"
	"github.com/sweeney/alarm-clock/internal/logging"
)

// Version is set at build time.
var Version = "dev"

var (
	cfg    *config.Config
	loader *config.Loader
)

var rootCmd = &cobra.Command{
	Use:   "alarm-clock",
	Short: "Menu-driven alarm clock with MQTT reporting",
	Long: `alarm-clock drives a small OLED screen, a joystick with two buttons,
a buzzer and an RGB light. The alarm time, ringtone and light brightness are
set from the on-screen menu; every change is published to MQTT.

Configuration is read from alarm-clock.yaml (/etc/alarm-clock or the working
directory) and ALARMCLOCK_* environment variables.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default: search /etc/alarm-clock and .)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// flagKeys maps command line flags onto config keys. A flag only overrides
// the file and environment when it is given.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"broker":     "broker",
	"http":       "http",
	"ws-broker":  "ws_broker",
	"tick":       "tick",
	"debounce":   "debounce",
	"heartbeat":  "heartbeat",
	"ntp-server": "ntp.server",
	"ringtones":  "ringtones_file",
}

// loadConfig runs before every subcommand.
func loadConfig(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	loader = config.NewLoader(path)

	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := loader.BindFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}

	c, err := loader.Load()
	if err != nil {
		return err
	}
	if err := logging.Init(c.Log, os.Stderr); err != nil {
		return err
	}
	cfg = c
	return nil
}
