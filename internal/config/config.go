// Package config loads the alarm clock configuration.
// Supports a YAML config file, ALARMCLOCK_* environment overrides and
// hot reload of the file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sweeney/alarm-clock/internal/gpio"
	"github.com/sweeney/alarm-clock/internal/logic"
	"github.com/sweeney/alarm-clock/internal/logging"
)

// EnvPrefix is the prefix of environment overrides, e.g. ALARMCLOCK_BROKER
// or ALARMCLOCK_NTP_SERVER.
const EnvPrefix = "ALARMCLOCK"

// Config holds all alarm clock configuration.
type Config struct {
	Tick          time.Duration  `mapstructure:"tick"`
	Debounce      time.Duration  `mapstructure:"debounce"`
	ConfirmDelay  time.Duration  `mapstructure:"confirm_delay"`
	Heartbeat     time.Duration  `mapstructure:"heartbeat"`
	Broker        string         `mapstructure:"broker"`
	HTTP          string         `mapstructure:"http"`
	WSBroker      string         `mapstructure:"ws_broker"`
	Timezone      string         `mapstructure:"timezone"`
	NTP           NTPConfig      `mapstructure:"ntp"`
	Alarm         AlarmConfig    `mapstructure:"alarm"`
	Brightness    int            `mapstructure:"brightness"`
	RingtonesFile string         `mapstructure:"ringtones_file"`
	Light         LightConfig    `mapstructure:"light"`
	GPIO          GPIOConfig     `mapstructure:"gpio"`
	Log           logging.Config `mapstructure:"log"`
}

// NTPConfig controls the boot-time network sync.
type NTPConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Server  string        `mapstructure:"server"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AlarmConfig is the alarm loaded at startup.
type AlarmConfig struct {
	Hour    int  `mapstructure:"hour"`
	Minute  int  `mapstructure:"minute"`
	Enabled bool `mapstructure:"enabled"`
}

// LightConfig describes the light strip.
type LightConfig struct {
	Pixels int `mapstructure:"pixels"`
}

// GPIOConfig holds the chip and line offsets.
type GPIOConfig struct {
	Chip    string `mapstructure:"chip"`
	Confirm int    `mapstructure:"confirm"`
	Cancel  int    `mapstructure:"cancel"`
	Up      int    `mapstructure:"up"`
	Down    int    `mapstructure:"down"`
	Left    int    `mapstructure:"left"`
	Right   int    `mapstructure:"right"`
	Buzzer  int    `mapstructure:"buzzer"`
}

// Pins converts the offsets for gpio.Open.
func (g GPIOConfig) Pins() gpio.Pins {
	return gpio.Pins{
		Confirm: g.Confirm,
		Cancel:  g.Cancel,
		Up:      g.Up,
		Down:    g.Down,
		Left:    g.Left,
		Right:   g.Right,
		Buzzer:  g.Buzzer,
	}
}

// Settings returns the settings the menu starts with.
func (c *Config) Settings() logic.Settings {
	s := logic.DefaultSettings()
	s.Alarm = logic.NewAlarmConfig(c.Alarm.Hour, c.Alarm.Minute, c.Alarm.Enabled)
	s.Brightness = c.Brightness
	return s
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func setDefaults(v *viper.Viper) {
	def := logic.DefaultSettings()
	pins := gpio.DefaultPins()
	logCfg := logging.DefaultConfig()

	v.SetDefault("tick", "200ms")
	v.SetDefault("debounce", "250ms")
	v.SetDefault("confirm_delay", "1s")
	v.SetDefault("heartbeat", "15m")
	v.SetDefault("broker", "tcp://192.168.1.200:1883")
	v.SetDefault("http", ":80")
	v.SetDefault("ws_broker", "=broker")
	v.SetDefault("timezone", "Local")
	v.SetDefault("ntp.enabled", true)
	v.SetDefault("ntp.server", "pool.ntp.org")
	v.SetDefault("ntp.timeout", "5s")
	v.SetDefault("alarm.hour", def.Alarm.Hour())
	v.SetDefault("alarm.minute", def.Alarm.Minute())
	v.SetDefault("alarm.enabled", def.Alarm.Enabled())
	v.SetDefault("brightness", def.Brightness)
	v.SetDefault("ringtones_file", "")
	v.SetDefault("light.pixels", 25)
	v.SetDefault("gpio.chip", gpio.DefaultChip)
	v.SetDefault("gpio.confirm", pins.Confirm)
	v.SetDefault("gpio.cancel", pins.Cancel)
	v.SetDefault("gpio.up", pins.Up)
	v.SetDefault("gpio.down", pins.Down)
	v.SetDefault("gpio.left", pins.Left)
	v.SetDefault("gpio.right", pins.Right)
	v.SetDefault("gpio.buzzer", pins.Buzzer)
	v.SetDefault("log.level", logCfg.Level)
	v.SetDefault("log.format", logCfg.Format)
}

// Loader reads configuration from file and environment.
type Loader struct {
	v        *viper.Viper
	explicit bool
}

// NewLoader creates a loader for path. An empty path searches for
// alarm-clock.yaml in /etc/alarm-clock and the working directory and
// tolerates its absence.
func NewLoader(path string) *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("alarm-clock")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/alarm-clock")
		v.AddConfigPath(".")
	}
	return &Loader{v: v, explicit: path != ""}
}

// BindFlag lets a command line flag override key.
func (l *Loader) BindFlag(key string, f *pflag.Flag) error {
	return l.v.BindPFlag(key, f)
}

// File returns the config file in use, or "" if none was found.
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Load reads and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch calls fn with the reloaded configuration whenever the config file
// changes. Invalid edits are logged and ignored. Returns false if no file is
// in use.
func (l *Loader) Watch(fn func(*Config)) bool {
	if l.File() == "" {
		return false
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.Load()
		if err != nil {
			log.Warn().Str("component", "config").Str("file", e.Name).Err(err).Msg("ignoring invalid config change")
			return
		}
		log.Info().Str("component", "config").Str("file", e.Name).Msg("config reloaded")
		fn(cfg)
	})
	l.v.WatchConfig()
	return true
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Tick <= 0 {
		errs = append(errs, fmt.Errorf("tick must be positive, got %v", c.Tick))
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %v", c.Debounce))
	}
	if c.ConfirmDelay < 0 {
		errs = append(errs, fmt.Errorf("confirm_delay must not be negative, got %v", c.ConfirmDelay))
	}
	if c.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat))
	}
	if c.Alarm.Hour < 0 || c.Alarm.Hour > 23 {
		errs = append(errs, fmt.Errorf("alarm.hour must be 0-23, got %d", c.Alarm.Hour))
	}
	if c.Alarm.Minute < 0 || c.Alarm.Minute > 59 {
		errs = append(errs, fmt.Errorf("alarm.minute must be 0-59, got %d", c.Alarm.Minute))
	}
	if c.Brightness < logic.MinBrightness || c.Brightness > logic.MaxBrightness {
		errs = append(errs, fmt.Errorf("brightness must be %d-%d, got %d", logic.MinBrightness, logic.MaxBrightness, c.Brightness))
	}
	if c.Light.Pixels < 0 {
		errs = append(errs, fmt.Errorf("light.pixels must not be negative, got %d", c.Light.Pixels))
	}
	if c.NTP.Enabled && c.NTP.Server == "" {
		errs = append(errs, errors.New("ntp.server is required when ntp is enabled"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
