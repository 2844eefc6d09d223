package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sweeney/alarm-clock/internal/clock"
	"github.com/sweeney/alarm-clock/internal/device"
	"github.com/sweeney/alarm-clock/internal/logging"
	"github.com/sweeney/alarm-clock/internal/metrics"
	"github.com/sweeney/alarm-clock/internal/mqtt"
	"github.com/sweeney/alarm-clock/internal/sim"
	"github.com/sweeney/alarm-clock/internal/status"
	"github.com/sweeney/alarm-clock/internal/web"
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run the alarm clock in the terminal",
	Long: `Sim runs the same menu, scheduler and feedback as the hardware daemon
against simulated peripherals. Arrow keys move the joystick, enter confirms
and esc cancels. The screen and light are drawn in the terminal.

Events are only published to MQTT when --broker is given.`,
	Args: cobra.NoArgs,
	RunE: runSim,
}

func init() {
	f := simCmd.Flags()
	f.String("broker", "", "Publish events to this MQTT broker")
	f.String("http", "", "Serve the status page on this address")
	f.Duration("tick", device.DefaultTick, "Control loop interval")
	f.Bool("ntp", false, "Set the clock from NTP before starting")
	f.String("ringtones", "", "Ringtone library YAML file")
	f.String("log-file", "alarm-clock-sim.log", "Log file (the terminal is taken by the UI)")
	rootCmd.AddCommand(simCmd)
}

func runSim(cmd *cobra.Command, args []string) error {
	c := cfg

	logFile, _ := cmd.Flags().GetString("log-file")
	out, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer out.Close()
	if err := logging.Init(c.Log, out); err != nil {
		return err
	}

	loc, err := c.Location()
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	broker := ""
	if cmd.Flags().Changed("broker") {
		broker = c.Broker
	}
	publisher, err := newBrokerClient(broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	hw := sim.NewHardware(c.Debounce, c.Light.Pixels)
	rtc := clock.NewSystemRTC(loc)
	src := clock.NewSource(rtc)
	dev, err := buildDevice(c, peripherals{
		axes:    hw.Joystick,
		confirm: hw.Confirm,
		cancel:  hw.Cancel,
		audio:   hw.Speaker,
		light:   hw.Light,
		screen:  hw.Screen,
		clock:   src,
	})
	if err != nil {
		return err
	}

	m := metrics.New()
	m.WatchButton("confirm", hw.Confirm.Stats)
	m.WatchButton("cancel", hw.Cancel.Stats)
	tracker := status.NewTracker(time.Now(), statusConfig(c, resolveWSBroker(c.WSBroker, broker)))
	tracker.SetWallClock(rtc.WallTime)
	tracker.Update(deviceStatus(dev, device.Result{Kind: dev.Menu().Kind()}))

	if useNTP, _ := cmd.Flags().GetBool("ntp"); useNTP {
		syncTime(cmd.Context(), src, clock.NewNTPFetcher(c.NTP.Server, c.NTP.Timeout), loc, tracker, m)
	}

	addr, _ := cmd.Flags().GetString("http")
	if addr != "" {
		srv := web.New(addr, tracker, hw.Screen, m.Handler())
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Str("component", "web").Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	rep := &reporter{dev: dev, publisher: publisher, mqttStatus: publisher, tracker: tracker, metrics: m}
	err = sim.Run(cmd.Context(), dev, hw, c.Tick, func(r device.Result) {
		rep.report(r, r.Took)
	})

	snap := tracker.Snapshot()
	shutdown := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "SHUTDOWN",
		Reason:     "QUIT",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", "QUIT"),
	}
	if perr := publisher.PublishSystem(shutdown); perr != nil {
		log.Warn().Str("component", "main").Err(perr).Msg("failed to publish shutdown event")
	}
	return err
}
