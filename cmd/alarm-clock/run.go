package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sweeney/alarm-clock/internal/clock"
	"github.com/sweeney/alarm-clock/internal/config"
	"github.com/sweeney/alarm-clock/internal/device"
	"github.com/sweeney/alarm-clock/internal/display"
	"github.com/sweeney/alarm-clock/internal/feedback"
	"github.com/sweeney/alarm-clock/internal/gpio"
	"github.com/sweeney/alarm-clock/internal/input"
	"github.com/sweeney/alarm-clock/internal/logging"
	"github.com/sweeney/alarm-clock/internal/logic"
	"github.com/sweeney/alarm-clock/internal/metrics"
	"github.com/sweeney/alarm-clock/internal/mqtt"
	"github.com/sweeney/alarm-clock/internal/status"
	"github.com/sweeney/alarm-clock/internal/web"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the alarm clock on the Pi hardware",
	Long: `Run requests the button, joystick and buzzer GPIO lines, sets the clock
from NTP once, and runs the control loop until SIGINT or SIGTERM.

Alarm events go to MQTT, the light is driven over MQTT, and the status page,
display image and Prometheus metrics are served over HTTP.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	f := runCmd.Flags()
	f.String("broker", "tcp://192.168.1.200:1883", `MQTT broker address ("off" disables)`)
	f.String("http", ":80", "HTTP status address (empty to disable)")
	f.String("ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)
	f.Duration("tick", device.DefaultTick, "Control loop interval")
	f.Duration("debounce", input.DefaultDebounce, "Button debounce duration")
	f.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	f.String("ntp-server", clock.DefaultNTPServer, "NTP server for the boot-time sync")
	f.String("ringtones", "", "Ringtone library YAML file")
	rootCmd.AddCommand(runCmd)
}

// brokerClient is everything the daemon needs from the MQTT side.
type brokerClient interface {
	mqtt.Publisher
	mqtt.ConnectionStatus
	mqtt.FramePublisher
}

func newBrokerClient(broker string) (brokerClient, error) {
	if brokerOff(broker) {
		log.Warn().Str("component", "mqtt").Msg("no broker configured, events are not published")
		return mqtt.Discard{}, nil
	}
	p, err := mqtt.NewRealPublisher(broker)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// newLight picks the light collaborator for the daemon.
func newLight(pixels int, broker string, pub mqtt.FramePublisher) feedback.Light {
	switch {
	case pixels == 0:
		return nil
	case brokerOff(broker):
		return feedback.NewLogLight(pixels)
	default:
		return mqtt.NewLight(pixels, pub)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	c := cfg
	loc, err := c.Location()
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	confirm := input.NewEdge(c.Debounce)
	cancel := input.NewEdge(c.Debounce)
	hw, err := gpio.Open(c.GPIO.Chip, c.GPIO.Pins(), confirm, cancel)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer hw.Close()

	publisher, err := newBrokerClient(c.Broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	screen := display.NewFramebuffer()
	rtc := clock.NewSystemRTC(loc)
	src := clock.NewSource(rtc)
	dev, err := buildDevice(c, peripherals{
		axes:    hw.Joystick,
		confirm: confirm,
		cancel:  cancel,
		audio:   hw.Buzzer,
		light:   newLight(c.Light.Pixels, c.Broker, publisher),
		screen:  screen,
		clock:   src,
	})
	if err != nil {
		return err
	}

	m := metrics.New()
	m.WatchButton("confirm", confirm.Stats)
	m.WatchButton("cancel", cancel.Stats)
	wsBroker := resolveWSBroker(c.WSBroker, c.Broker)
	tracker := status.NewTracker(time.Now(), statusConfig(c, wsBroker))
	tracker.SetWallClock(rtc.WallTime)
	tracker.Update(deviceStatus(dev, device.Result{Kind: dev.Menu().Kind()}))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Boot-time network sync, never retried
	var fetcher clock.NetworkTime
	if c.NTP.Enabled {
		fetcher = clock.NewNTPFetcher(c.NTP.Server, c.NTP.Timeout)
	}
	syncTime(cmd.Context(), src, fetcher, loc, tracker, m)

	// Publish startup event with full status snapshot
	tracker.SetMQTTConnected(publisher.IsConnected())
	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Warn().Str("component", "main").Err(err).Msg("failed to publish startup event")
	}
	if snap.TimeSync.Attempted {
		ev := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "TIME_SYNC",
			RawPayload: status.FormatStatusEvent(snap, "TIME_SYNC", snap.TimeSync.Error),
		}
		if err := publisher.PublishSystem(ev); err != nil {
			log.Warn().Str("component", "main").Err(err).Msg("failed to publish time sync event")
		}
	}

	if c.HTTP != "" {
		srv := web.New(c.HTTP, tracker, screen, m.Handler())
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Str("component", "web").Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info().Str("component", "web").Str("addr", c.HTTP).Msg("http status server listening")
	}

	if loader.Watch(func(n *config.Config) {
		if err := logging.SetLevel(n.Log.Level); err != nil {
			log.Warn().Str("component", "config").Err(err).Msg("log level not applied")
		}
	}) {
		log.Info().Str("component", "config").Str("file", loader.File()).Msg("watching config file")
	}

	log.Info().Str("component", "main").
		Dur("tick", c.Tick).
		Dur("debounce", c.Debounce).
		Dur("heartbeat", c.Heartbeat).
		Str("broker", c.Broker).
		Msg("started")

	ticker := time.NewTicker(c.Tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(dev, publisher, publisher, tracker, m, c.Heartbeat, time.Now, ticker.C, sigCh)
}

// syncTime performs the boot-time sync and records the outcome.
func syncTime(ctx context.Context, src *clock.Source, fetcher clock.NetworkTime, loc *time.Location, tracker *status.Tracker, m *metrics.Metrics) {
	res := clock.SyncOnce(ctx, src, fetcher, loc)
	if !res.Attempted {
		return
	}
	ts := status.TimeSync{Attempted: true, OK: res.OK, Time: res.Time}
	if res.Err != nil {
		ts.Error = res.Err.Error()
	}
	tracker.SetTimeSync(ts)
	m.TimeSync(res.OK)
}

func runLoop(dev *device.Device, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, m *metrics.Metrics, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	hb := logic.NewHeartbeat(now())
	rep := &reporter{dev: dev, publisher: publisher, mqttStatus: mqttStatus, tracker: tracker, metrics: m}

	for {
		select {
		case s := <-sig:
			log.Info().Str("component", "main").Str("signal", s.String()).Msg("shutting down")
			dev.Shutdown()

			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Warn().Str("component", "main").Err(err).Msg("failed to publish shutdown event")
			} else {
				log.Info().Str("component", "main").Msg("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			started := time.Now()
			r := dev.Tick(t)
			rep.report(r, time.Since(started))

			// Check for heartbeat
			if hbData := hb.Check(t, heartbeat, dev.Counts()); hbData != nil {
				log.Info().Str("component", "main").
					Dur("uptime", hbData.Uptime).
					Int("triggered", hbData.Counts.Triggered).
					Int("cancelled", hbData.Counts.Cancelled).
					Int("changes", hbData.Counts.Changes).
					Msg("heartbeat")

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Warn().Str("component", "mqtt").Err(err).Msg("heartbeat publish error")
				}
			}
		}
	}
}

// reporter publishes the outcome of each tick and keeps the status tracker
// and metrics current.
type reporter struct {
	dev        *device.Device
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	metrics    *metrics.Metrics

	clockErrs int
}

func (rep *reporter) report(r device.Result, took time.Duration) {
	for _, event := range r.Events {
		log.Info().Str("component", "main").
			Str("event", string(event.Type)).
			Str("alarm", event.Settings.Alarm.String()).
			Msg("event")
		if err := rep.publisher.Publish(event); err != nil {
			// Don't crash on publish failure
			log.Warn().Str("component", "mqtt").Err(err).Msg("publish error")
			if rep.metrics != nil {
				rep.metrics.PublishError()
			}
		}
	}

	connected := rep.mqttStatus != nil && rep.mqttStatus.IsConnected()
	if m := rep.metrics; m != nil {
		m.ObserveTick(r.Step, took)
		for _, event := range r.Events {
			m.Event(event.Type)
		}
		for ; rep.clockErrs < rep.dev.ClockErrors(); rep.clockErrs++ {
			m.ClockError()
		}
		m.SetFeedbackActive(rep.dev.Sequencer().Active())
		m.SetMQTTConnected(connected)
	}

	if rep.tracker != nil {
		rep.tracker.Update(deviceStatus(rep.dev, r))
		if rep.mqttStatus != nil {
			rep.tracker.SetMQTTConnected(connected)
		}
	}
}
