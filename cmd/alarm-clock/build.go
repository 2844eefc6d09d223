package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/alarm-clock/internal/clock"
	"github.com/sweeney/alarm-clock/internal/config"
	"github.com/sweeney/alarm-clock/internal/device"
	"github.com/sweeney/alarm-clock/internal/display"
	"github.com/sweeney/alarm-clock/internal/feedback"
	"github.com/sweeney/alarm-clock/internal/input"
	"github.com/sweeney/alarm-clock/internal/menu"
	"github.com/sweeney/alarm-clock/internal/status"
)

// peripherals are the platform collaborators of the core.
type peripherals struct {
	axes    input.AxisReader
	confirm *input.Edge
	cancel  *input.Edge
	audio   feedback.Audio
	light   feedback.Light // nil when no light is fitted
	screen  display.Display
	clock   *clock.Source
}

// loadLibrary returns the configured ringtone library, or the built-in one.
func loadLibrary(c *config.Config) (*feedback.Library, error) {
	if c.RingtonesFile == "" {
		return feedback.DefaultLibrary(), nil
	}
	lib, err := feedback.LoadLibrary(c.RingtonesFile)
	if err != nil {
		return nil, fmt.Errorf("load ringtones: %w", err)
	}
	return lib, nil
}

// buildDevice wires the core onto p.
func buildDevice(c *config.Config, p peripherals) (*device.Device, error) {
	lib, err := loadLibrary(c)
	if err != nil {
		return nil, err
	}
	seq := feedback.NewSequencer(p.audio, p.light)
	ctrl := menu.New(menu.Config{
		Display:      p.screen,
		Sequencer:    seq,
		Library:      lib,
		Settings:     c.Settings(),
		ConfirmDelay: c.ConfirmDelay,
	})
	in := input.NewService(p.axes, p.confirm, p.cancel)
	return device.New(in, p.clock, ctrl, seq), nil
}

// deviceStatus extracts the tracked state after a tick.
func deviceStatus(dev *device.Device, r device.Result) status.Device {
	ctrl := dev.Menu()
	d := status.Device{
		Screen:   r.Kind.String(),
		Clock:    r.Clock,
		ClockOK:  r.ClockOK,
		Settings: ctrl.Settings(),
		Ringtone: ctrl.Ringtone().Name,
		Counts:   dev.Counts(),
	}
	if seq := dev.Sequencer(); seq != nil {
		d.FeedbackActive = seq.Active()
		d.SessionID = seq.SessionID()
	}
	return d
}

// statusConfig is the configuration shown on the status page.
func statusConfig(c *config.Config, wsBroker string) status.Config {
	sc := status.Config{
		TickMs:      c.Tick.Milliseconds(),
		DebounceMs:  c.Debounce.Milliseconds(),
		HeartbeatMs: c.Heartbeat.Milliseconds(),
		Broker:      c.Broker,
		HTTPPort:    c.HTTP,
		WSBroker:    wsBroker,
		Timezone:    c.Timezone,
	}
	if c.NTP.Enabled {
		sc.NTPServer = c.NTP.Server
	}
	return sc
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// brokerOff reports whether MQTT is disabled.
func brokerOff(broker string) bool {
	return broker == "" || broker == "off"
}

// resolveWSBroker converts the ws_broker setting into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" || brokerOff(broker) && ws == "=broker" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Warn().Str("component", "main").Str("broker", broker).Err(err).Msg("ws_broker: cannot parse broker")
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
